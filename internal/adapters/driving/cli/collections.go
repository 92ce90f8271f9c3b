package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List partitions and their collections",
	Long: `Lists every partition visible to the configured credentials and the
collections inside each one. Useful for finding the IDs to put in the
credentials file or to pass via --partition and --collection.`,
	RunE: runCollections,
}

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

func runCollections(cmd *cobra.Command, _ []string) error {
	client, _, err := loadIndexClient()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	partitions, err := client.ListPartitions(ctx)
	if err != nil {
		return fmt.Errorf("list partitions: %w", err)
	}
	if len(partitions) == 0 {
		cmd.Println("No partitions found.")
		return nil
	}

	for _, partition := range partitions {
		access := "writable"
		if partition.ReadOnly {
			access = "read-only"
		}
		cmd.Printf("Partition %s (%s, %s)\n", partition.Name, partition.ID, access)

		collections, err := client.ListCollections(ctx, partition.ID)
		if err != nil {
			return fmt.Errorf("list collections for %s: %w", partition.ID, err)
		}
		if len(collections) == 0 {
			cmd.Println("  (no collections)")
			continue
		}
		for _, collection := range collections {
			cmd.Printf("  Collection %s (%s)\n", collection.Name, collection.ID)
		}
	}

	return nil
}
