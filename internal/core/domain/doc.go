// Package domain defines the core business entities for indexfeed.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Target: The resolved partition/collection ingestion writes to
//   - FileRecord: A local file paired with its content fingerprint
//   - WorkItem: The queued unit of upload work
//   - FingerprintSet: Fingerprints known to exist in the remote index
//   - ErrorTally: Per-status counts of terminal upload failures
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
