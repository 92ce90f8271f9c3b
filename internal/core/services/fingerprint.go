package services

import (
	// SHA-1 is the index service's content identity, not a security boundary.
	"crypto/sha1" //nolint:gosec
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FingerprintFile reads the full content of the file at path and
// returns its lowercase hex SHA-1 digest. Identical content yields an
// identical fingerprint regardless of path or mtime, which is what
// makes the fingerprint usable as both dedup key and document ID.
func FingerprintFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintBytes returns the lowercase hex SHA-1 digest of b.
func FingerprintBytes(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
