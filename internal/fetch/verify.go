package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// VerifyFile computes the SHA-256 of the file at path and compares it to
// expectedHex (case-insensitive). A mismatch is a normal false result, not
// an error; a missing file is an error distinct from a mismatch.
func VerifyFile(path, expectedHex string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return false, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	digest := sha256.New()
	if _, err := io.Copy(digest, file); err != nil {
		return false, fmt.Errorf("read file: %w", err)
	}

	actual := hex.EncodeToString(digest.Sum(nil))
	return actual == strings.ToLower(expectedHex), nil
}
