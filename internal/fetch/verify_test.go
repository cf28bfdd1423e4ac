package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVerifyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.onnx")
	content := []byte("model weights")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	ok, err := VerifyFile(path, digest)
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if !ok {
		t.Error("expected matching digest")
	}

	// Case-insensitive comparison.
	ok, err = VerifyFile(path, strings.ToUpper(digest))
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}
	if !ok {
		t.Error("uppercase digest must still match")
	}
}

func TestVerifyFileMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.onnx")
	if err := os.WriteFile(path, []byte("mutated content"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	sum := sha256.Sum256([]byte("original content"))
	ok, err := VerifyFile(path, hex.EncodeToString(sum[:]))
	if err != nil {
		t.Fatalf("mismatch must not be an error: %v", err)
	}
	if ok {
		t.Error("expected mismatch")
	}
}

func TestVerifyFileMissing(t *testing.T) {
	ok, err := VerifyFile(filepath.Join(t.TempDir(), "missing.onnx"), "abc")
	if ok {
		t.Error("missing file cannot match")
	}
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
