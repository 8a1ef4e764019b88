package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-loads the config file whenever it changes and hands the result to
// onChange. Only hot-reloadable settings should be consumed from the
// callback (fraud thresholds); backend selection is fixed at startup and a
// changed selection takes effect on restart.
//
// Watch blocks until the context is cancelled.
func Watch(ctx context.Context, cfgFile string, logger *slog.Logger, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors replace files on save and
	// the watch on the old inode would go stale.
	if err := watcher.Add(filepath.Dir(cfgFile)); err != nil {
		return err
	}

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case event := <-watcher.Events:
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(cfgFile) {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(100*time.Millisecond, func() {
				cfg, err := Load(cfgFile, nil)
				if err != nil {
					logger.Error("config reload failed", "error", err)
					return
				}
				logger.Debug("config file changed, reloading", "file", cfgFile)
				onChange(cfg)
			})

		case err := <-watcher.Errors:
			logger.Error("config watcher error", "error", err)
		}
	}
}
