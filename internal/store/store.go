package store

import (
	"context"
	"fmt"
	"io"
	"os"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Metadata key under which the content digest is recorded.
const checksumKey = "sha256"

// Store is a mirror target for completed model files.
type Store struct {
	bucket *blob.Bucket
}

// Open opens the bucket at the given gocloud URL.
func Open(ctx context.Context, urlstr string) (*Store, error) {
	bucket, err := blob.OpenBucket(ctx, urlstr)
	if err != nil {
		return nil, fmt.Errorf("open bucket %s: %w", urlstr, err)
	}
	return &Store{bucket: bucket}, nil
}

// Close releases the bucket connection.
func (s *Store) Close() error {
	return s.bucket.Close()
}

// Mirror uploads the local file to key with its SHA-256 recorded as blob
// metadata. An object already carrying the same checksum is left alone.
func (s *Store) Mirror(ctx context.Context, localPath, key, checksum string) error {
	existing, err := s.Checksum(ctx, key)
	if err != nil {
		return err
	}
	if existing != "" && existing == checksum {
		return nil
	}

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer file.Close()

	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		Metadata: map[string]string{checksumKey: checksum},
	})
	if err != nil {
		return fmt.Errorf("create writer for %s: %w", key, err)
	}

	if _, err := io.Copy(w, file); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is present at key.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.bucket.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", key, err)
	}
	return ok, nil
}

// Checksum returns the recorded digest of the object at key, or "" when the
// object does not exist or carries no digest.
func (s *Store) Checksum(ctx context.Context, key string) (string, error) {
	attrs, err := s.bucket.Attributes(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return "", nil
		}
		return "", fmt.Errorf("attributes of %s: %w", key, err)
	}
	return attrs.Metadata[checksumKey], nil
}
