package driven

import (
	"context"

	"github.com/corvid-labs/indexfeed-cli/internal/core/domain"
)

// FileSource discovers candidate files for ingestion.
// The filesystem connector implements this with a plain directory walk
// and, optionally, a change watcher.
type FileSource interface {
	// Walk emits the path of every regular file under the given roots.
	// A root that is itself a file is emitted directly. Per-entry
	// problems (unreadable directories, vanished files) are sent on the
	// error channel and do not stop the walk. Both channels are closed
	// when the walk completes or the context is cancelled.
	Walk(ctx context.Context, roots []string) (<-chan string, <-chan error)

	// Watch emits paths of files created or modified under the roots
	// until the context is cancelled, at which point the channel closes.
	Watch(ctx context.Context, roots []string) (<-chan string, error)

	// Close releases watcher resources.
	Close() error
}

// CredentialsStore loads the remote index connection settings.
type CredentialsStore interface {
	// Load reads and validates the stored credentials.
	Load() (*domain.Credentials, error)
}
