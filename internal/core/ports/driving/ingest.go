package driving

import (
	"context"
	"time"
)

// Ingest pipeline phases, in order.
const (
	PhaseIdle        = "idle"
	PhaseEnumerating = "enumerating"
	PhaseUploading   = "uploading"
	PhaseDraining    = "draining"
	PhaseReported    = "reported"
)

// IngestRequest describes one ingest run.
type IngestRequest struct {
	// Paths are the files and directories to ingest, in order.
	Paths []string

	// DryRun performs identical hashing and dedup decisions but issues
	// zero network writes, reporting what would be ingested.
	DryRun bool

	// Watch keeps the run alive after the initial walk, feeding newly
	// created and modified files through the same pipeline until the
	// context is cancelled.
	Watch bool
}

// IngestStatus is a point-in-time snapshot of a running ingest,
// polled by the CLI for progress display.
type IngestStatus struct {
	// Phase is the pipeline phase (Phase* constants).
	Phase string

	// Known is the size of the enumerated fingerprint set.
	Known int

	// Discovered counts files seen by the producer so far.
	Discovered int

	// Ignored counts files whose content was already indexed.
	Ignored int

	// Skipped counts files rejected for unsupported formats.
	Skipped int

	// Queued counts files handed to the upload pool (or, in dry-run,
	// files that would have been).
	Queued int

	// Uploaded counts completed upserts.
	Uploaded int

	// Errors counts terminal failures so far.
	Errors int
}

// IngestReport is the final observable output of a run.
type IngestReport struct {
	// Known is the number of fingerprints enumerated before uploading.
	Known int

	// Ingested counts files sent (or, in dry-run, that would be sent)
	// to the index.
	Ingested int

	// Ignored counts files dropped because their content was already
	// indexed.
	Ignored int

	// Skipped counts unsupported-format files.
	Skipped int

	// Errors maps failure classifiers (status code string or "UNKNOWN")
	// to occurrence counts. Empty on an all-success run.
	Errors map[string]int

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Ingestor runs the ingestion pipeline.
type Ingestor interface {
	// Ingest executes one full pipeline run: enumerate, discover and
	// upload, drain, report. Only setup failures return an error; per
	// file failures are isolated into the report's tally.
	Ingest(ctx context.Context, req IngestRequest) (*IngestReport, error)

	// Status returns a snapshot of the active run.
	Status() IngestStatus
}
