package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dtkav/casemap/aggregate"
	"github.com/dtkav/casemap/logging"
	"github.com/dtkav/casemap/store"
	"github.com/dtkav/casemap/usecase"
)

// loader produces the complete record set on every call.
type loader func(ctx context.Context) ([]aggregate.Record, error)

func fileLoader(path string) loader {
	return func(context.Context) ([]aggregate.Record, error) {
		return usecase.ReadFile(path)
	}
}

func apiLoader(url string) loader {
	client := &http.Client{Timeout: 30 * time.Second}
	return func(ctx context.Context) ([]aggregate.Record, error) {
		return usecase.Fetch(ctx, client, url)
	}
}

func storeLoader(s *store.Store) loader {
	return s.Items
}

// openStore opens the configured list store.
func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, store.Config{
		Kind: cfg.Storage.Kind,
		DSN:  cfg.Storage.DSN,
		List: cfg.ListTitle,
	})
}

// watchFile signals on the returned channel whenever path is written,
// created or renamed into place. Bursts within debounce collapse into one
// signal. The channel closes once ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return nil, err
	}
	// Editors often replace files, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		var timer <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				timer = time.After(debounce)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warn("watch error", "path", abs, "err", err)
			case <-timer:
				timer = nil
				logging.Debug("source changed", "path", abs)
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}
