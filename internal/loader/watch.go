package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
)

// Watch reloads path whenever it changes and passes each result to onChange.
// Bursts of events within debounce collapse into one reload. The parent
// directory is watched so editors that replace the file are seen. Watch
// returns nil when ctx is cancelled.
func Watch(ctx context.Context, path string, debounce time.Duration, opts Options, onChange func(Result)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := DetectFormat(abs); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	log := logger.Named("watch").With(zap.String("file", abs))
	log.Info("watching")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Debug("change", zap.Stringer("op", ev.Op))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			onChange(load(abs, opts))
		}
	}
}
