package view

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch adds dir and its subdirectories to a watcher and clears the cache on
// every write, create, remove or rename under it.
func (e *Engine) watch(dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = filepath.WalkDir(filepath.Clean(dir), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
	if err != nil {
		_ = w.Close()
		return err
	}

	e.watcher = w
	go e.watchLoop(w)
	return nil
}

func (e *Engine) watchLoop(w *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.Add(event.Name)
				}
			}
			if err := e.cache.Clear(context.Background()); err != nil {
				e.logger.Warn("view: failed to clear template cache", "error", err)
				continue
			}
			e.logger.Debug("view: templates reloaded", "file", event.Name, "op", event.Op.String())
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			e.logger.Error("view: watcher error", "error", err)
		}
	}
}
