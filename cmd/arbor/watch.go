package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/phanxgames/arbor"
	"go.uber.org/zap"
)

// layoutWatcher posts reload onto the arbor scheduler whenever the layout
// file is written or replaced. The directory is watched so editors that
// save by rename are seen too.
type layoutWatcher struct {
	w      *fsnotify.Watcher
	path   string
	reload func()
	done   chan struct{}
}

func watchLayout(path string, reload func()) (*layoutWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	lw := &layoutWatcher{w: w, path: abs, reload: reload, done: make(chan struct{})}
	go lw.loop()
	return lw, nil
}

func (lw *layoutWatcher) loop() {
	defer close(lw.done)
	for {
		select {
		case event, ok := <-lw.w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if name, err := filepath.Abs(event.Name); err != nil || name != lw.path {
				continue
			}
			// Post is the scheduler's only goroutine-safe entry point; the
			// reload itself runs on the game loop's turn.
			arbor.DefaultScheduler().Post(lw.reload)
		case err, ok := <-lw.w.Errors:
			if !ok {
				return
			}
			arbor.Logger().Warn("layout watcher error", zap.Error(err))
		}
	}
}

// Close stops watching and waits for the event loop to exit.
func (lw *layoutWatcher) Close() error {
	err := lw.w.Close()
	<-lw.done
	return err
}
