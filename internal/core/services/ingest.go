package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driving"
	"github.com/corvid-labs/indexfeed-cli/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.Ingestor = (*IngestOrchestrator)(nil)

// IngestOrchestrator sequences the pipeline: enumerate the remote
// fingerprint set, walk candidate files while uploading the unknown
// ones through the worker pool, drain, and report.
//
// No upload starts before enumeration completes, because dedup
// correctness depends on the complete prior state. Discovery and
// uploading then overlap, bounded by the queue (backpressure).
type IngestOrchestrator struct {
	index  driven.IndexService
	source driven.FileSource
	target domain.Target

	workers     int
	chunkSize   int
	fanOut      int
	backoffBase time.Duration
	backoffMax  time.Duration

	mu      sync.RWMutex
	running bool
	status  driving.IngestStatus
	pool    *UploadPool
	tally   *domain.ErrorTally
}

// OrchestratorOption configures an IngestOrchestrator.
type OrchestratorOption func(*IngestOrchestrator)

// WithWorkerCount sets the upload pool size.
func WithWorkerCount(n int) OrchestratorOption {
	return func(o *IngestOrchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithEnumeration sets the enumerator's chunk size and query fan-out.
func WithEnumeration(chunkSize, fanOut int) OrchestratorOption {
	return func(o *IngestOrchestrator) {
		if chunkSize > 0 {
			o.chunkSize = chunkSize
		}
		if fanOut > 0 {
			o.fanOut = fanOut
		}
	}
}

// WithBackoff sets the shared backoff clock's base and cap.
func WithBackoff(base, max time.Duration) OrchestratorOption {
	return func(o *IngestOrchestrator) {
		o.backoffBase = base
		o.backoffMax = max
	}
}

// NewIngestOrchestrator creates an orchestrator for the given target.
func NewIngestOrchestrator(index driven.IndexService, source driven.FileSource, target domain.Target, opts ...OrchestratorOption) *IngestOrchestrator {
	o := &IngestOrchestrator{
		index:       index,
		source:      source,
		target:      target,
		workers:     DefaultWorkerCount,
		chunkSize:   DefaultChunkSize,
		fanOut:      DefaultQueryFanOut,
		backoffBase: DefaultBackoffBase,
		backoffMax:  DefaultBackoffMax,
		status:      driving.IngestStatus{Phase: driving.PhaseIdle},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ingest executes one pipeline run. Per-file failures are isolated into
// the report tally; only setup and enumeration failures return an error.
func (o *IngestOrchestrator) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestReport, error) {
	if err := o.begin(); err != nil {
		return nil, err
	}
	defer o.end()

	runID := uuid.NewString()[:8]
	started := time.Now()
	logger.Info("Ingest run %s starting (dry_run=%t watch=%t)", runID, req.DryRun, req.Watch)

	// Phase 1: enumerate. Blocks uploads until the full set is known.
	o.setPhase(driving.PhaseEnumerating)
	enumerator := NewEnumerator(o.index, WithChunkSize(o.chunkSize), WithQueryFanOut(o.fanOut))
	known, err := enumerator.Enumerate(ctx, o.target)
	if err != nil {
		return nil, fmt.Errorf("enumerate index: %w", err)
	}
	o.update(func(s *driving.IngestStatus) { s.Known = known.Len() })

	// Phase 2: discover and upload concurrently.
	o.setPhase(driving.PhaseUploading)
	tally := domain.NewErrorTally()

	var pool *UploadPool
	if !req.DryRun {
		clock := NewBackoffClock(o.backoffBase, o.backoffMax)
		pool = NewUploadPool(o.index, o.target, clock, tally, o.workers)
		pool.Start(ctx)
	}
	o.mu.Lock()
	o.pool = pool
	o.tally = tally
	o.mu.Unlock()

	o.produce(ctx, req, known, pool, tally)

	// Phase 3: drain, including items requeued after backoff. The drain
	// runs detached from ctx: cancellation is how a watch run ends, and
	// it stops intake, not accepted work, so the report is still built.
	o.setPhase(driving.PhaseDraining)
	if pool != nil {
		if err := pool.Drain(context.WithoutCancel(ctx)); err != nil {
			return nil, fmt.Errorf("drain pool: %w", err)
		}
	}

	o.setPhase(driving.PhaseReported)
	report := o.report(tally, started)
	logger.Info("Ingest run %s done: %d ingested, %d ignored, %d skipped, %d errors",
		runID, report.Ingested, report.Ignored, report.Skipped, tally.Total())
	return report, nil
}

// Status returns a snapshot of the active run, folding in the live
// pool and tally counters the workers maintain.
func (o *IngestOrchestrator) Status() driving.IngestStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()

	status := o.status
	if o.pool != nil {
		status.Uploaded = o.pool.Uploaded()
	}
	if o.tally != nil {
		status.Errors = o.tally.Total()
	}
	return status
}

// produce walks the requested paths, deciding per file whether to skip,
// ignore or enqueue. With Watch set it then follows filesystem events
// through the same decision path until the context is cancelled.
func (o *IngestOrchestrator) produce(ctx context.Context, req driving.IngestRequest, known *domain.FingerprintSet, pool *UploadPool, tally *domain.ErrorTally) {
	pathsCh, errsCh := o.source.Walk(ctx, req.Paths)

	for pathsCh != nil || errsCh != nil {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			logger.Warn("Walk error: %v", err)
			tally.Record(domain.ErrorClassUnknown)

		case path, ok := <-pathsCh:
			if !ok {
				pathsCh = nil
				continue
			}
			o.produceOne(ctx, path, req.DryRun, known, pool, tally)
		}
	}

	if !req.Watch {
		return
	}

	watchCh, err := o.source.Watch(ctx, req.Paths)
	if err != nil {
		logger.Warn("Watch unavailable: %v", err)
		return
	}
	logger.Info("Watching for new files; interrupt to finish")
	for path := range watchCh {
		o.produceOne(ctx, path, req.DryRun, known, pool, tally)
	}
}

// produceOne applies the per-file decision: reject unsupported
// containers, fingerprint, drop already-indexed content, enqueue the
// rest. Dry-run takes the identical path but stops short of the queue.
func (o *IngestOrchestrator) produceOne(ctx context.Context, path string, dryRun bool, known *domain.FingerprintSet, pool *UploadPool, tally *domain.ErrorTally) {
	o.update(func(s *driving.IngestStatus) { s.Discovered++ })

	if domain.IsUnsupportedFormat(path) {
		logger.Info("Skipping unsupported format: %s", path)
		o.update(func(s *driving.IngestStatus) { s.Skipped++ })
		return
	}

	fingerprint, err := FingerprintFile(path)
	if err != nil {
		logger.Warn("Failing %s due to %v", path, err)
		tally.Record(domain.ErrorClassUnknown)
		return
	}

	if known.Contains(fingerprint) {
		o.update(func(s *driving.IngestStatus) { s.Ignored++ })
		return
	}

	// Remember the fingerprint so identical content discovered later in
	// this run (duplicate files, watch events) is ignored, not re-sent.
	known.Add(fingerprint)

	if dryRun {
		logger.Info("Dry run: would ingest %s as %s", path, fingerprint)
		o.update(func(s *driving.IngestStatus) { s.Queued++ })
		return
	}

	item := domain.WorkItem{Path: path, Fingerprint: fingerprint}
	if err := pool.Enqueue(ctx, item); err != nil {
		return
	}
	o.update(func(s *driving.IngestStatus) { s.Queued++ })
}

func (o *IngestOrchestrator) begin() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return domain.ErrIngestInProgress
	}
	o.running = true
	o.status = driving.IngestStatus{Phase: driving.PhaseIdle}
	return nil
}

func (o *IngestOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
	o.pool = nil
	o.tally = nil
}

func (o *IngestOrchestrator) setPhase(phase string) {
	o.update(func(s *driving.IngestStatus) { s.Phase = phase })
}

func (o *IngestOrchestrator) update(fn func(*driving.IngestStatus)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(&o.status)
}

func (o *IngestOrchestrator) report(tally *domain.ErrorTally, started time.Time) *driving.IngestReport {
	status := o.Status()
	return &driving.IngestReport{
		Known:    status.Known,
		Ingested: status.Queued,
		Ignored:  status.Ignored,
		Skipped:  status.Skipped,
		Errors:   tally.Snapshot(),
		Elapsed:  time.Since(started),
	}
}
