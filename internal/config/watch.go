package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a config file when it changes on disk. The parent directory is watched so
// editors that save by rename are seen too.
type Watcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(*Config, error)

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// Watch calls onChange from the watcher goroutine with the result of reloading path after
// each burst of writes.
func Watch(path string, onChange func(*Config, error)) (*Watcher, error) {
	return watch(path, defaultDebounce, onChange)
}

func watch(path string, debounce time.Duration, onChange func(*Config, error)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	w := &Watcher{
		fs:       fw,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fs.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			cfg, err := Load(w.path)
			if err != nil {
				slog.Warn("Config reload failed", "path", w.path, "error", err)
			} else {
				slog.Info("Config reloaded", "path", w.path)
			}
			w.onChange(cfg, err)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("Config watcher error", "path", w.path, "error", err)
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}
