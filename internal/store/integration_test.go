//go:build integration

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "gocloud.dev/blob/s3blob"

	"github.com/sdow11/live-ad-detection-sub003/internal/testutils"
)

func TestMirrorMinio(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	env := testutils.StartMinioContainer(t, ctx, "model-mirror")
	defer env.Close(ctx)

	s, err := Open(ctx, env.BucketURL)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	data := testutils.GenerateTestData(t, 256*1024)
	path := filepath.Join(t.TempDir(), "model.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write local file: %v", err)
	}
	sum := digest(data)

	if err := s.Mirror(ctx, path, "models/model.bin", sum); err != nil {
		t.Fatalf("Mirror: %v", err)
	}

	ok, err := s.Exists(ctx, "models/model.bin")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("expected object in bucket after mirror")
	}

	got, err := s.Checksum(ctx, "models/model.bin")
	if err != nil {
		t.Fatalf("Checksum: %v", err)
	}
	if got != sum {
		t.Errorf("checksum = %q, want %q", got, sum)
	}

	// Second mirror with the same checksum is a no-op even without the
	// local file.
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove local file: %v", err)
	}
	if err := s.Mirror(ctx, path, "models/model.bin", sum); err != nil {
		t.Fatalf("second Mirror should skip upload: %v", err)
	}
}
