package engine

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/qrioso-software/qriososls-jest/internal/util"
)

const defaultDebounce = 800 * time.Millisecond

// Watcher re-runs tests when handler or test sources change.
type Watcher struct {
	invoker  *Invoker
	watcher  *fsnotify.Watcher
	patterns []string
	debounce time.Duration
	logger   *log.Logger

	// runs is signalled after every run; used by tests.
	runs chan error
}

// NewWatcher watches files matching patterns under the service root.
func NewWatcher(inv *Invoker, patterns []string, logger *log.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		invoker:  inv,
		watcher:  w,
		patterns: patterns,
		debounce: defaultDebounce,
		logger:   logger,
	}, nil
}

// Watch runs the tests once, then again after every burst of changes, until
// ctx is done. Failed runs are logged, not returned.
func (w *Watcher) Watch(ctx context.Context, opts Options, userConfig map[string]any) error {
	defer w.watcher.Close()

	if err := w.addDirs(w.invoker.cfg.RootPath); err != nil {
		return err
	}

	w.run(ctx, opts, userConfig)
	w.logger.Info("👀 Watching for changes. Press Ctrl+C to stop")

	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	var changed []string

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) {
				// New directories need their own watch.
				_ = w.addDirs(event.Name)
			}
			if !util.MatchesAny(event.Name, w.patterns) {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) ||
				event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
				if !contains(changed, event.Name) {
					changed = append(changed, event.Name)
				}
				debounceTimer.Reset(w.debounce)
			}

		case <-debounceTimer.C:
			if len(changed) > 0 {
				w.logger.Info("🔄 Changes detected", "files", changed)
				changed = nil
				w.run(ctx, opts, userConfig)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", "err", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) run(ctx context.Context, opts Options, userConfig map[string]any) {
	out, err := w.invoker.RunTests(ctx, opts, userConfig)
	var failure *RunFailure
	switch {
	case err == nil:
		w.logger.Info("✅ " + out.Results.Summary())
	case errors.As(err, &failure):
		w.logger.Error("❌ " + failure.Error())
	default:
		w.logger.Error("❌ Test run failed", "err", err)
	}
	if w.runs != nil {
		w.runs <- err
	}
}

// addDirs watches root and every subdirectory that is not hidden or node_modules.
func (w *Watcher) addDirs(root string) error {
	dirs, err := util.FindDirsRecursively(root)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.watcher.Add(d); err != nil {
			w.logger.Warn("⚠️ Could not watch directory", "dir", d, "err", err)
			continue
		}
		w.logger.Debug("👀 Watching", "dir", d)
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
