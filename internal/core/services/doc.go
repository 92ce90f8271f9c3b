// Package services implements the driving port interfaces.
// Services contain the core pipeline logic: content fingerprinting,
// remote fingerprint enumeration, the upload worker pool with its
// shared backoff clock, and the ingest orchestrator that wires them
// together. Services call out only through driven ports.
package services
