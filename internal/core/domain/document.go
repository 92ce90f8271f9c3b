package domain

import (
	"path/filepath"
	"strings"
)

// FileRecord pairs a local file with its content fingerprint.
// The fingerprint doubles as the document ID in the remote index, so
// re-uploading identical content overwrites rather than duplicates.
type FileRecord struct {
	// Path is the location of the file on the local filesystem.
	Path string

	// Fingerprint is the lowercase hex content hash of the file bytes.
	Fingerprint string
}

// WorkItem is the unit placed on the upload queue. Ownership transfers
// from the producer to whichever worker dequeues it.
type WorkItem struct {
	// Path is the file to upload.
	Path string

	// Fingerprint is the document ID to upsert under.
	Fingerprint string
}

// FingerprintSet is the set of fingerprints known to exist in the
// remote index. It is built once before any uploads and afterwards only
// the producing goroutine mutates it, so it carries no lock.
type FingerprintSet struct {
	members map[string]struct{}
}

// NewFingerprintSet creates an empty fingerprint set.
func NewFingerprintSet() *FingerprintSet {
	return &FingerprintSet{members: make(map[string]struct{})}
}

// Add inserts a fingerprint into the set.
func (s *FingerprintSet) Add(fingerprint string) {
	s.members[fingerprint] = struct{}{}
}

// Contains reports whether the fingerprint is in the set.
func (s *FingerprintSet) Contains(fingerprint string) bool {
	_, ok := s.members[fingerprint]
	return ok
}

// Len returns the number of fingerprints in the set.
func (s *FingerprintSet) Len() int {
	return len(s.members)
}

// unsupportedExtensions lists container formats the index service does
// not extract. They are skipped with a counted warning rather than
// uploaded and rejected remotely.
var unsupportedExtensions = map[string]struct{}{
	".csv": {},
	".tar": {},
	".zip": {},
}

// IsUnsupportedFormat reports whether the path has a file extension the
// index service cannot ingest.
func IsUnsupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := unsupportedExtensions[ext]
	return ok
}
