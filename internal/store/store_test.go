package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	_ "gocloud.dev/blob/memblob"
)

func writeLocalFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write local file: %v", err)
	}
	return path
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestMirror(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	data := []byte("weights and biases")
	path := writeLocalFile(t, data)
	sum := digest(data)

	if err := s.Mirror(ctx, path, "models/test.bin", sum); err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	ok, err := s.Exists(ctx, "models/test.bin")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Error("expected object to exist after mirror")
	}

	got, err := s.Checksum(ctx, "models/test.bin")
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if got != sum {
		t.Errorf("checksum = %q, want %q", got, sum)
	}
}

func TestMirrorSkipsMatchingChecksum(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	data := []byte("stable content")
	path := writeLocalFile(t, data)
	sum := digest(data)

	if err := s.Mirror(ctx, path, "models/stable.bin", sum); err != nil {
		t.Fatalf("first Mirror: %v", err)
	}

	// Remove the local file; a second mirror with the same checksum must
	// short-circuit before touching it.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove local file: %v", err)
	}
	if err := s.Mirror(ctx, path, "models/stable.bin", sum); err != nil {
		t.Fatalf("second Mirror should skip upload: %v", err)
	}
}

func TestMirrorReplacesChangedObject(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	v1 := []byte("version one")
	if err := s.Mirror(ctx, writeLocalFile(t, v1), "models/m.bin", digest(v1)); err != nil {
		t.Fatalf("mirror v1: %v", err)
	}

	v2 := []byte("version two")
	if err := s.Mirror(ctx, writeLocalFile(t, v2), "models/m.bin", digest(v2)); err != nil {
		t.Fatalf("mirror v2: %v", err)
	}

	got, err := s.Checksum(ctx, "models/m.bin")
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if got != digest(v2) {
		t.Errorf("checksum = %q, want updated digest %q", got, digest(v2))
	}
}

func TestChecksumMissingObject(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	got, err := s.Checksum(ctx, "models/absent.bin")
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty checksum for missing object, got %q", got)
	}

	ok, err := s.Exists(ctx, "models/absent.bin")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Error("expected missing object to not exist")
	}
}

func TestMirrorMissingLocalFile(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	err = s.Mirror(ctx, filepath.Join(t.TempDir(), "nope.bin"), "models/nope.bin", digest([]byte("x")))
	if err == nil {
		t.Error("expected error for missing local file")
	}
}
