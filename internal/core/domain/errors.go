package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNoWritablePartition indicates the remote index has no partition
	// that accepts writes. Ingestion cannot proceed.
	ErrNoWritablePartition = errors.New("no writable partition found")

	// ErrNoCollections indicates the target partition has no collections.
	// One must be created before ingesting.
	ErrNoCollections = errors.New("no target collection found")

	// ErrAmbiguousCollection indicates the partition holds more than one
	// collection and none was selected explicitly.
	ErrAmbiguousCollection = errors.New("multiple collections found, select one explicitly")

	// ErrCredentialsMissing indicates the credentials file is absent or
	// lacks a required field.
	ErrCredentialsMissing = errors.New("credentials missing")

	// ErrRateLimited indicates the remote index rejected a request
	// because the collection-wide rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUnsupportedFormat indicates a container format the index does
	// not accept (csv, tar, zip).
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrIngestInProgress indicates an ingest run is already active on
	// this orchestrator.
	ErrIngestInProgress = errors.New("ingest already in progress")
)
