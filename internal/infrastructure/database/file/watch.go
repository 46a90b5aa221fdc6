package file

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"breakreminder/internal/pkg/logger"
)

// DefaultDebounce collapses the burst of events an editor or an atomic
// rename produces into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls onChange after the settings document at path changes on disk.
// It watches the parent directory so atomic replacements are seen. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(), log logger.Logger) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve settings path %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	name := filepath.Base(abs)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create settings watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info(fmt.Sprintf("Watching %s for changes.", abs))

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	schedule := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			if ctx.Err() != nil {
				return
			}
			onChange()
		})
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				log.Debug(fmt.Sprintf("Settings document event: %s", ev))
				schedule()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn(fmt.Sprintf("Settings watcher error: %v", err))
		}
	}
}
