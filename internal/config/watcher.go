package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onReload func(Config)
	debounce time.Duration
	reload   chan struct{}
	logger   zerolog.Logger
}

func NewWatcher(path string, onReload func(Config), logger zerolog.Logger) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	return &Watcher{
		path:     absPath,
		watcher:  w,
		onReload: onReload,
		debounce: 500 * time.Millisecond,
		reload:   make(chan struct{}, 1),
		logger:   logger.With().Str("component", "config-watcher").Logger(),
	}, nil
}

// Run watches the config directory until ctx is cancelled. Watching the
// directory catches editors that replace the file by rename.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	w.logger.Info().Str("path", w.path).Msg("Watching config file")

	name := filepath.Base(w.path)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("Config file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.load()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("Config watcher error")
		}
	}
}

func (w *Watcher) load() {
	cfg, err := LoadConfigFromFile(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Ignoring invalid config change")
		return
	}
	w.logger.Info().Msg("Config reloaded")
	w.onReload(cfg)
}
