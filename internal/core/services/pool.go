package services

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
	"github.com/corvid-labs/indexfeed-cli/internal/logger"
)

// Pool defaults. The queue bound equals the worker count so the
// producer cannot outpace the consumers arbitrarily.
const DefaultWorkerCount = 16

// fallbackContentType is used when the extension maps to no MIME type.
const fallbackContentType = "application/octet-stream"

// UploadPool drains a bounded work queue, upserting each file into the
// remote index under its fingerprint. All workers share one
// BackoffClock and one ErrorTally.
//
// A rate-limited item is requeued at the tail and never counted as a
// failure; any other remote status, and any local error, is terminal
// for that item and lands in the tally.
type UploadPool struct {
	index  driven.IndexService
	target domain.Target
	clock  *BackoffClock
	tally  *domain.ErrorTally

	queue    chan domain.WorkItem
	pending  sync.WaitGroup // outstanding items, including requeued ones
	workers  sync.WaitGroup
	uploaded atomic.Int64
	size     int
}

// NewUploadPool creates a pool with the given worker count. The queue
// capacity equals the worker count.
func NewUploadPool(index driven.IndexService, target domain.Target, clock *BackoffClock, tally *domain.ErrorTally, workers int) *UploadPool {
	if workers < 1 {
		workers = DefaultWorkerCount
	}
	return &UploadPool{
		index:  index,
		target: target,
		clock:  clock,
		tally:  tally,
		queue:  make(chan domain.WorkItem, workers),
		size:   workers,
	}
}

// Start launches the workers. Call exactly once.
//
// Workers run on a detached context: cancelling ctx stops intake, not
// work already accepted, so every queued item still resolves into the
// uploaded count or the tally.
func (p *UploadPool) Start(ctx context.Context) {
	work := context.WithoutCancel(ctx)
	for i := 0; i < p.size; i++ {
		p.workers.Add(1)
		go p.workerLoop(work, i)
	}
	logger.Debug("Upload pool started with %d workers", p.size)
}

// Enqueue places an item on the queue, blocking when the queue is full
// (backpressure on the producer).
func (p *UploadPool) Enqueue(ctx context.Context, item domain.WorkItem) error {
	p.pending.Add(1)
	select {
	case p.queue <- item:
		return nil
	case <-ctx.Done():
		p.pending.Done()
		return ctx.Err()
	}
}

// Drain blocks until every enqueued item, including items requeued
// after backoff, has completed, then stops the workers. The pool cannot
// be reused afterwards.
func (p *UploadPool) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	close(p.queue)
	p.workers.Wait()
	return nil
}

// Uploaded returns the number of completed upserts.
func (p *UploadPool) Uploaded() int {
	return int(p.uploaded.Load())
}

func (p *UploadPool) workerLoop(ctx context.Context, id int) {
	defer p.workers.Done()

	for item := range p.queue {
		// Every worker honours the shared deadline before sending.
		if err := p.clock.Wait(ctx); err != nil {
			p.tally.Record(domain.ErrorClassUnknown)
			p.pending.Done()
			continue
		}

		err := p.uploadOne(ctx, item)
		if err == nil {
			p.clock.Observe()
			p.uploaded.Add(1)
			p.pending.Done()
			continue
		}

		if se, ok := driven.AsStatus(err); ok {
			if se.Code == http.StatusTooManyRequests {
				delay := p.clock.Advance(se.RetryAfter)
				logger.Warn("Worker %d rate limited, backing off %s and requeueing %s", id, delay, item.Path)
				p.requeue(ctx, item)
				continue
			}
			logger.Warn("Failing %s due to %v", item.Path, se)
			p.tally.Record(strconv.Itoa(se.Code))
			p.pending.Done()
			continue
		}

		logger.Warn("Failing %s due to %v", item.Path, err)
		p.tally.Record(domain.ErrorClassUnknown)
		p.pending.Done()
	}
}

// requeue puts a rate-limited item back at the tail of the queue.
// The send runs on its own goroutine: with the queue full and every
// worker trying to requeue, a direct send would deadlock.
func (p *UploadPool) requeue(ctx context.Context, item domain.WorkItem) {
	go func() {
		select {
		case p.queue <- item:
		case <-ctx.Done():
			p.tally.Record(domain.ErrorClassUnknown)
			p.pending.Done()
		}
	}()
}

// uploadOne sends a single file to the index under its fingerprint.
// The upsert overwrites any document already stored under that ID.
func (p *UploadPool) uploadOne(ctx context.Context, item domain.WorkItem) error {
	f, err := os.Open(item.Path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(item.Path))
	if contentType == "" {
		contentType = fallbackContentType
	}

	if err := p.index.UpsertDocument(ctx, p.target, item.Fingerprint, f, contentType); err != nil {
		return err
	}

	logger.Debug("Uploaded %s as %s (%s)", item.Path, item.Fingerprint, contentType)
	return nil
}
