// Package fsnotify watches a single file on disk and sends a message on a channel when it changes.
// The parent folder is watched rather than the file, so editors that replace the file atomically are detected too.
// Updates happening within the batch window are coalesced into a single notification.
package fsnotify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultBatchWindow is the default interval used to coalesce notifications.
const DefaultBatchWindow = 500 * time.Millisecond

// WatchFileOpts contains options for WatchFile.
type WatchFileOpts struct {
	// Interval used to coalesce notifications; defaults to DefaultBatchWindow
	BatchWindow time.Duration
	// Logger used to report watcher errors; defaults to slog.Default()
	Logger *slog.Logger
}

// WatchFile returns a channel that receives a notification when the file at path is created or written to.
// The channel is closed when ctx is canceled.
func WatchFile(ctx context.Context, path string, opts WatchFileOpts) (<-chan struct{}, error) {
	if path == "" {
		return nil, errors.New("path is empty")
	}
	if opts.BatchWindow <= 0 {
		opts.BatchWindow = DefaultBatchWindow
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	folder, name := filepath.Split(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	err = watcher.Add(folder)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to add watched folder: %w", err)
	}

	msgChan := make(chan struct{}, 1)
	batcher := make(chan struct{}, 1)
	var wg sync.WaitGroup

	// Watch for FS events in background
	go func() {
		defer watcher.Close() //nolint:errcheck
		defer func() {
			wg.Wait()
			close(msgChan)
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				// Renames into place show up as Create
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				select {
				case batcher <- struct{}{}:
					wg.Go(func() {
						select {
						case <-time.After(opts.BatchWindow):
						case <-ctx.Done():
							<-batcher
							return
						}
						<-batcher

						// If the channel is full, do not block
						select {
						case msgChan <- struct{}{}:
						default:
						}
					})
				default:
					// There's already a signal batched
				}

			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				opts.Logger.WarnContext(ctx, "Error while watching for changes to file on disk",
					slog.Any("error", watchErr),
					slog.String("file", path),
				)
			}
		}
	}()

	return msgChan, nil
}
