package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvid-labs/indexfeed-cli/internal/connectors/filesystem"
	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driving"
	"github.com/corvid-labs/indexfeed-cli/internal/core/services"
)

var (
	ingestDryRun     bool
	ingestWatch      bool
	ingestWorkers    int
	ingestPartition  string
	ingestCollection string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Upload files into the document index",
	Long: `Walks the given files and directories and uploads each file whose
content is not yet in the collection. Content is matched by
fingerprint, so renamed or copied files are still recognised.

With --watch the command keeps running after the initial walk and
uploads files as they appear, until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolVar(&ingestDryRun, "dry-run", false,
		"report what would be uploaded without writing to the index")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false,
		"keep running and upload files as they appear")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", services.DefaultWorkerCount,
		"number of concurrent upload workers")
	ingestCmd.Flags().StringVar(&ingestPartition, "partition", "",
		"partition ID (overrides the credentials file)")
	ingestCmd.Flags().StringVar(&ingestCollection, "collection", "",
		"collection ID (overrides the credentials file)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	client, creds, err := loadIndexClient()
	if err != nil {
		return err
	}
	if ingestPartition != "" {
		creds.PartitionID = ingestPartition
	}
	if ingestCollection != "" {
		creds.CollectionID = ingestCollection
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	target, err := services.ResolveTarget(ctx, client, creds)
	if err != nil {
		return fmt.Errorf("resolve target: %w", err)
	}

	source := filesystem.New()
	defer source.Close()

	orchestrator := services.NewIngestOrchestrator(client, source, target,
		services.WithWorkerCount(ingestWorkers))

	if ingestWatch {
		cmd.Println("Watching for new files. Press Ctrl+C to stop.")
	}

	report, err := ingestWithProgress(ctx, cmd, orchestrator, driving.IngestRequest{
		Paths:  args,
		DryRun: ingestDryRun,
		Watch:  ingestWatch,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	printReport(cmd, report, ingestDryRun)
	return nil
}

// ingestWithProgress runs the ingest while displaying progress updates.
func ingestWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	ingestor driving.Ingestor,
	req driving.IngestRequest,
) (*driving.IngestReport, error) {
	type result struct {
		report *driving.IngestReport
		err    error
	}
	resCh := make(chan result, 1)
	go func() {
		report, err := ingestor.Ingest(ctx, req)
		resCh <- result{report, err}
	}()

	// Poll status every 500ms
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastUploaded := -1
	for {
		select {
		case res := <-resCh:
			if lastUploaded >= 0 {
				cmd.Println()
			}
			return res.report, res.err
		case <-ticker.C:
			status := ingestor.Status()
			if status.Phase == driving.PhaseUploading && status.Uploaded > lastUploaded {
				cmd.Printf("\rUploading... %d/%d", status.Uploaded, status.Queued)
				lastUploaded = status.Uploaded
			}
		}
	}
}

func printReport(cmd *cobra.Command, report *driving.IngestReport, dryRun bool) {
	cmd.Printf("Ignored %d file(s), because they were found in the collection.\n", report.Ignored)
	if report.Skipped > 0 {
		cmd.Printf("Skipped %d file(s) with unsupported formats.\n", report.Skipped)
	}
	if dryRun {
		cmd.Printf("Would have ingested %d file(s) (dry run).\n", report.Ingested)
	} else {
		cmd.Printf("Ingested %d file(s) in %s.\n", report.Ingested, report.Elapsed.Round(time.Millisecond))
	}

	if len(report.Errors) == 0 {
		return
	}
	classifiers := make([]string, 0, len(report.Errors))
	for classifier := range report.Errors {
		classifiers = append(classifiers, classifier)
	}
	sort.Strings(classifiers)
	for _, classifier := range classifiers {
		cmd.Printf("The error %s occurred %d time(s).\n", classifier, report.Errors[classifier])
	}
}
