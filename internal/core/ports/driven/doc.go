// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - IndexService: The remote document index (partitions, collections,
//     fingerprint queries, document upserts)
//   - FileSource: Discovers candidate files on the local filesystem
//   - CredentialsStore: Loads the service connection settings
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
