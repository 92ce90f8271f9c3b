package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
	"github.com/corvid-labs/indexfeed-cli/internal/logger"
)

// hexAlphabet is the fingerprint alphabet. Prefix refinements at the
// same level partition the keyspace disjointly, which is what makes the
// enumeration exact: every stored fingerprint is accepted at exactly
// one prefix.
const hexAlphabet = "0123456789abcdef"

// Enumerator defaults.
const (
	// DefaultChunkSize matches the service's per-query result cap.
	DefaultChunkSize = 10000

	// DefaultQueryFanOut bounds concurrent queries; sixteen covers one
	// full refinement level at a time.
	DefaultQueryFanOut = 16
)

// Enumerator retrieves the complete set of fingerprints currently
// stored in the remote index, despite the query API returning at most
// chunkSize matches per call. It subdivides the keyspace by hex prefix
// until every partition of it fits in a single page.
type Enumerator struct {
	index     driven.IndexService
	chunkSize int
	fanOut    int
}

// EnumeratorOption configures an Enumerator.
type EnumeratorOption func(*Enumerator)

// WithChunkSize overrides the per-query result cap.
func WithChunkSize(n int) EnumeratorOption {
	return func(e *Enumerator) {
		if n > 0 {
			e.chunkSize = n
		}
	}
}

// WithQueryFanOut overrides the bounded query concurrency.
func WithQueryFanOut(n int) EnumeratorOption {
	return func(e *Enumerator) {
		if n > 0 {
			e.fanOut = n
		}
	}
}

// NewEnumerator creates an Enumerator over the given index.
func NewEnumerator(index driven.IndexService, opts ...EnumeratorOption) *Enumerator {
	e := &Enumerator{
		index:     index,
		chunkSize: DefaultChunkSize,
		fanOut:    DefaultQueryFanOut,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enumerate returns every fingerprint stored in the target collection.
//
// The empty prefix is the initial unit of work. A prefix whose total
// match count fits within the chunk size resolves to its page of
// fingerprints; one that does not is replaced by its sixteen
// one-character refinements. Prefixes strictly grow, so termination is
// bounded by the fingerprint length. Sibling prefixes are queried
// concurrently on a bounded pool; result order is irrelevant since the
// output is a set.
//
// Documents indexed by other writers while the enumeration runs may or
// may not appear: the result is a point-in-time view.
func (e *Enumerator) Enumerate(ctx context.Context, target domain.Target) (*domain.FingerprintSet, error) {
	pool, err := ants.NewPool(e.fanOut)
	if err != nil {
		return nil, fmt.Errorf("create query pool: %w", err)
	}
	defer pool.Release()

	set := domain.NewFingerprintSet()
	worklist := []string{""}

	var mu sync.Mutex // guards set, next and firstErr across pool workers
	for len(worklist) > 0 {
		var (
			wg       sync.WaitGroup
			next     []string
			firstErr error
		)

		for _, prefix := range worklist {
			prefix := prefix
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()

				total, fingerprints, queryErr := e.index.QueryFingerprints(ctx, target, prefix, e.chunkSize)

				mu.Lock()
				defer mu.Unlock()
				if queryErr != nil {
					if firstErr == nil {
						firstErr = fmt.Errorf("query prefix %q: %w", prefix, queryErr)
					}
					return
				}
				if total > e.chunkSize {
					// Too coarse: the page is truncated, so schedule
					// the sixteen refinements instead.
					for _, c := range hexAlphabet {
						next = append(next, prefix+string(c))
					}
					return
				}
				for _, fp := range fingerprints {
					set.Add(fp)
				}
			})
			if submitErr != nil {
				wg.Done()
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("submit query: %w", submitErr)
				}
				mu.Unlock()
			}
		}

		wg.Wait()
		if firstErr != nil {
			return nil, firstErr
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Debug("Enumerated level done: %d fingerprints known, %d prefixes pending", set.Len(), len(next))
		worklist = next
	}

	logger.Info("Enumerated %d indexed fingerprints", set.Len())
	return set, nil
}
