package domain

// Partition is a top-level container in the remote index service.
// Write-enabled partitions accept document upserts; read-only ones
// (such as a service's bundled sample data) do not.
type Partition struct {
	// ID is the service-assigned partition identifier.
	ID string

	// Name is the human-readable partition name.
	Name string

	// ReadOnly is true for partitions that reject writes.
	ReadOnly bool
}

// Collection is a named grouping of documents within a partition.
type Collection struct {
	// ID is the service-assigned collection identifier.
	ID string

	// Name is the human-readable collection name.
	Name string
}

// Target identifies where ingestion writes: one writable partition and
// one collection within it. It is resolved once at startup and is
// immutable for the lifetime of the process.
type Target struct {
	// PartitionID is the write-enabled partition.
	PartitionID string

	// CollectionID is the collection documents are upserted into.
	CollectionID string
}

// Credentials holds the connection settings for the remote index
// service, loaded from the credentials file.
type Credentials struct {
	// URL is the service base URL.
	URL string

	// APIKey authenticates requests.
	APIKey string

	// PartitionID optionally pins the target partition. When empty the
	// sole writable partition is used.
	PartitionID string

	// CollectionID optionally pins the target collection. Required when
	// the partition holds more than one collection.
	CollectionID string

	// QPS caps outbound request rate. Zero means the adapter default.
	QPS float64
}
