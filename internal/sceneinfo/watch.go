package sceneinfo

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/skyscene/internal/logger"
)

// Watcher reloads a metadata file whenever it changes on disk. Reloaded
// files are delivered on Reloads; the consumer applies them between frames.
// Only the latest reload is kept if the consumer falls behind.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	reloads chan *Info
	done    chan struct{}
	wg      sync.WaitGroup
	log     *zap.Logger
}

// Watch starts watching path. The containing directory is watched so that
// editors replacing the file by rename are noticed.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		path:    abs,
		fs:      fw,
		reloads: make(chan *Info, 1),
		done:    make(chan struct{}),
		log:     logger.Named("sceneinfo"),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Reloads delivers every successfully parsed revision of the file.
func (w *Watcher) Reloads() <-chan *Info { return w.reloads }

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	info, err := Load(w.path)
	if err != nil {
		// Editors often write in several steps; keep the last good state.
		w.log.Warn("scene info reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	select {
	case <-w.reloads:
	default:
	}
	w.reloads <- info
	w.log.Info("scene info reloaded", zap.String("path", w.path), zap.Int("lights", len(info.Lights)))
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()
	return err
}
