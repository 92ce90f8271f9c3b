package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
)

// --- Shared fakes for service tests ---

// upsertCall records one UpsertDocument invocation.
type upsertCall struct {
	DocumentID  string
	ContentType string
	Content     string
}

// fakeIndex implements driven.IndexService over an in-memory
// fingerprint list. Upserted fingerprints join the list, so a second
// enumeration sees them.
type fakeIndex struct {
	mu           sync.Mutex
	fingerprints []string
	upserts      []upsertCall
	queryCalls   int

	// upsertErrs queues errors returned (and consumed) per document ID
	// before upserts succeed.
	upsertErrs map[string][]error

	partitions     []domain.Partition
	collections    map[string][]domain.Collection
	partitionsErr  error
	collectionsErr error
	queryErr       error
}

var _ driven.IndexService = (*fakeIndex)(nil)

func newFakeIndex(fingerprints ...string) *fakeIndex {
	return &fakeIndex{
		fingerprints: fingerprints,
		upsertErrs:   make(map[string][]error),
		collections:  make(map[string][]domain.Collection),
	}
}

func (f *fakeIndex) failUpsert(documentID string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertErrs[documentID] = append(f.upsertErrs[documentID], errs...)
}

func (f *fakeIndex) ListPartitions(_ context.Context) ([]domain.Partition, error) {
	if f.partitionsErr != nil {
		return nil, f.partitionsErr
	}
	return f.partitions, nil
}

func (f *fakeIndex) ListCollections(_ context.Context, partitionID string) ([]domain.Collection, error) {
	if f.collectionsErr != nil {
		return nil, f.collectionsErr
	}
	return f.collections[partitionID], nil
}

func (f *fakeIndex) QueryFingerprints(_ context.Context, _ domain.Target, prefix string, maxResults int) (int, []string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queryCalls++
	if f.queryErr != nil {
		return 0, nil, f.queryErr
	}

	var matches []string
	for _, fp := range f.fingerprints {
		if strings.HasPrefix(fp, prefix) {
			matches = append(matches, fp)
		}
	}

	total := len(matches)
	if len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return total, matches, nil
}

func (f *fakeIndex) UpsertDocument(_ context.Context, _ domain.Target, documentID string, content io.Reader, contentType string) error {
	body, err := io.ReadAll(content)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if queued := f.upsertErrs[documentID]; len(queued) > 0 {
		next := queued[0]
		f.upsertErrs[documentID] = queued[1:]
		return next
	}

	f.upserts = append(f.upserts, upsertCall{
		DocumentID:  documentID,
		ContentType: contentType,
		Content:     string(body),
	})
	f.fingerprints = append(f.fingerprints, documentID)
	return nil
}

func (f *fakeIndex) upsertedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, len(f.upserts))
	for i, call := range f.upserts {
		ids[i] = call.DocumentID
	}
	return ids
}

// fakeSource implements driven.FileSource over a fixed path list.
type fakeSource struct {
	paths      []string
	walkErrs   []error
	watchPaths chan string
}

var _ driven.FileSource = (*fakeSource)(nil)

func (s *fakeSource) Walk(ctx context.Context, _ []string) (<-chan string, <-chan error) {
	paths := make(chan string)
	errs := make(chan error, len(s.walkErrs)+1)

	go func() {
		defer close(paths)
		defer close(errs)

		for _, err := range s.walkErrs {
			errs <- err
		}
		for _, path := range s.paths {
			select {
			case <-ctx.Done():
				return
			case paths <- path:
			}
		}
	}()

	return paths, errs
}

// Watch forwards watchPaths until the channel is exhausted or the
// context is cancelled, mirroring the filesystem connector's contract
// that the returned channel closes on cancellation.
func (s *fakeSource) Watch(ctx context.Context, _ []string) (<-chan string, error) {
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case path, ok := <-s.watchPaths:
				if !ok {
					return
				}
				select {
				case out <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (s *fakeSource) Close() error { return nil }
