// Package cli implements the indexfeed command line interface using
// cobra. Commands wire the REST index adapter, the filesystem
// connector and the ingest orchestrator together.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/corvid-labs/indexfeed-cli/internal/adapters/driven/config/file"
	"github.com/corvid-labs/indexfeed-cli/internal/adapters/driven/index/rest"
	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
	"github.com/corvid-labs/indexfeed-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose         bool
	credentialsPath string
)

var rootCmd = &cobra.Command{
	Use:   "indexfeed",
	Short: "Feed local files into a hosted document index",
	Long: `indexfeed uploads local files into a document index collection.
Files whose content is already indexed are ignored, so repeated runs
only send what is new.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "",
		"path to the credentials file (default ~/.indexfeed/credentials.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadIndexClient builds the REST client from the stored credentials.
func loadIndexClient() (*rest.Client, *domain.Credentials, error) {
	store, err := file.NewCredentialsStore(credentialsPath)
	if err != nil {
		return nil, nil, err
	}

	creds, err := store.Load()
	if err != nil {
		return nil, nil, err
	}

	client := rest.NewClient(rest.Config{
		BaseURL: creds.URL,
		APIKey:  creds.APIKey,
		QPS:     creds.QPS,
	})
	return client, creds, nil
}
