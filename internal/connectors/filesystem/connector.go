// Package filesystem implements the FileSource port with a plain
// directory walk and an fsnotify-based change watcher.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/corvid-labs/indexfeed-cli/internal/core/ports/driven"
	"github.com/corvid-labs/indexfeed-cli/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.FileSource = (*Connector)(nil)

// Connector discovers files on the local filesystem.
type Connector struct {
	watcher *fsnotify.Watcher
}

// New creates a filesystem connector.
func New() *Connector {
	return &Connector{}
}

// Walk emits every regular file under the roots in walk order. A root
// that is itself a file is emitted directly. Per-entry problems go to
// the error channel; they do not stop the walk.
func (c *Connector) Walk(ctx context.Context, roots []string) (<-chan string, <-chan error) {
	paths := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		for _, root := range roots {
			if ctx.Err() != nil {
				return
			}
			c.walkRoot(ctx, root, paths, errs)
		}
	}()

	return paths, errs
}

func (c *Connector) walkRoot(ctx context.Context, root string, paths chan<- string, errs chan<- error) {
	info, err := os.Stat(root)
	if err != nil {
		sendErr(ctx, errs, fmt.Errorf("stat %s: %w", root, err))
		return
	}

	if !info.IsDir() {
		sendPath(ctx, paths, root)
		return
	}

	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			sendErr(ctx, errs, fmt.Errorf("walk %s: %w", path, err))
			return nil
		}
		if entry.Type().IsRegular() {
			sendPath(ctx, paths, path)
		}
		return nil
	})
	if walkErr != nil && ctx.Err() == nil {
		sendErr(ctx, errs, fmt.Errorf("walk %s: %w", root, walkErr))
	}
}

// Watch emits files created or written under the roots until the
// context is cancelled. New directories are added to the watch as they
// appear. A file being copied in produces several write events;
// downstream fingerprint dedup collapses the duplicates.
func (c *Connector) Watch(ctx context.Context, roots []string) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	c.watcher = watcher

	for _, root := range roots {
		if err := addRecursive(watcher, root); err != nil {
			watcher.Close()
			c.watcher = nil
			return nil, err
		}
	}

	paths := make(chan string)
	go func() {
		defer close(paths)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				info, err := os.Stat(event.Name)
				if err != nil {
					continue // already gone
				}
				if info.IsDir() {
					if event.Has(fsnotify.Create) {
						if err := addRecursive(watcher, event.Name); err != nil {
							logger.Warn("Watch %s: %v", event.Name, err)
						}
					}
					continue
				}
				sendPath(ctx, paths, event.Name)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return paths, nil
}

// Close releases watcher resources.
func (c *Connector) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// addRecursive watches a directory tree. Watching a file's parent is
// how fsnotify observes the file, so file roots add their directory.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, skip
		}
		if entry.IsDir() {
			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}

func sendPath(ctx context.Context, ch chan<- string, path string) {
	select {
	case ch <- path:
	case <-ctx.Done():
	}
}

func sendErr(ctx context.Context, ch chan<- error, err error) {
	select {
	case ch <- err:
	case <-ctx.Done():
	}
}
