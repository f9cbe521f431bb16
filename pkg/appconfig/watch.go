package appconfig

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
)

// Watch sends the reloaded config whenever the file at p is written or
// replaced. The parent directory is watched because editors usually rename a
// temporary file into place. Only the newest config is kept when the reader
// falls behind. The channel is closed once ctx is done.
func Watch(ctx context.Context, p string, log logr.Logger) (<-chan *Config, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(p)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}

	target := filepath.Clean(p)
	out := make(chan *Config, 1)
	go func() {
		defer close(out)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				cfg, err := LoadFile(p)
				if err != nil {
					log.Error(err, "reload config", "path", p)
					continue
				}
				log.V(1).Info("config reloaded", "path", p)
				select {
				case <-out:
				default:
				}
				out <- cfg
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Error(err, "config watcher")
			}
		}
	}()
	return out, nil
}
