package corpus

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after the last filesystem
// event before firing its callback. Editors and sync tools tend to emit
// bursts of events for one logical change.
const DefaultDebounce = 2 * time.Second

// Watcher observes an ingest directory for plain-text document changes and
// invokes a callback after a quiet period. The callback typically re-ingests
// the directory and triggers a full reprocess.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(ctx context.Context)
	logger   *zap.Logger

	fsw *fsnotify.Watcher
}

// NewWatcher creates a watcher over dir. A zero debounce uses DefaultDebounce.
func NewWatcher(dir string, debounce time.Duration, onChange func(ctx context.Context), logger *zap.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	return &Watcher{
		dir:      dir,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Run blocks, dispatching debounced change callbacks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !watchable(event) {
				continue
			}
			w.logger.Debug("corpus change detected",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("corpus watcher error", zap.Error(err))

		case <-fire:
			timer = nil
			fire = nil
			w.logger.Info("corpus changed, dispatching", zap.String("dir", w.dir))
			w.onChange(ctx)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// watchable reports whether the event concerns a supported document file.
func watchable(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".txt", ".md":
		return true
	}
	return false
}
