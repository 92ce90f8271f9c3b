package services

import (
	"context"
	"fmt"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
	"github.com/corvid-labs/indexfeed-cli/internal/logger"
)

// ResolveTarget establishes the partition and collection ingestion
// writes to. The partition defaults to the first write-enabled one; the
// collection defaults to the partition's sole collection. Any ambiguity
// or absence is a setup error that must abort the run before the queue
// is touched.
func ResolveTarget(ctx context.Context, index driven.IndexService, creds *domain.Credentials) (domain.Target, error) {
	target := domain.Target{
		PartitionID:  creds.PartitionID,
		CollectionID: creds.CollectionID,
	}

	if target.PartitionID == "" {
		partitions, err := index.ListPartitions(ctx)
		if err != nil {
			return domain.Target{}, fmt.Errorf("list partitions: %w", err)
		}
		for _, p := range partitions {
			if !p.ReadOnly {
				target.PartitionID = p.ID
				break
			}
		}
		if target.PartitionID == "" {
			return domain.Target{}, domain.ErrNoWritablePartition
		}
	}

	if target.CollectionID == "" {
		collections, err := index.ListCollections(ctx, target.PartitionID)
		if err != nil {
			return domain.Target{}, fmt.Errorf("list collections: %w", err)
		}
		switch len(collections) {
		case 0:
			return domain.Target{}, domain.ErrNoCollections
		case 1:
			target.CollectionID = collections[0].ID
		default:
			return domain.Target{}, domain.ErrAmbiguousCollection
		}
	}

	logger.Debug("Resolved target partition=%s collection=%s", target.PartitionID, target.CollectionID)
	return target, nil
}
