// Package watcher re-validates Salesforce artifacts as they change on
// disk, giving a save-revalidate loop outside the hook runner.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	"github.com/forcekit/forcekit/internal/domain"
	"github.com/forcekit/forcekit/internal/logging"
)

// Validate runs once a changed artifact has settled.
type Validate func(ctx context.Context, path string)

const (
	// debounceWindow batches the rapid write bursts editors produce on
	// save; a path revalidates only after it has been quiet this long.
	debounceWindow = 500 * time.Millisecond
	sweepInterval  = 100 * time.Millisecond
)

// Watcher debounces filesystem events and revalidates settled artifacts.
type Watcher struct {
	fsw      *fsnotify.Watcher
	logger   hclog.Logger
	validate Validate

	mu      sync.Mutex
	pending map[string]time.Time
}

func New(validate Validate) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:      fsw,
		logger:   logging.New("watcher"),
		validate: validate,
		pending:  make(map[string]time.Time),
	}, nil
}

// Watch processes events under root until ctx is cancelled. fsnotify
// watches are not recursive, so every subdirectory is added up front and
// created directories join as they appear.
func (w *Watcher) Watch(ctx context.Context, root string) error {
	if err := w.addTree(root); err != nil {
		return err
	}
	defer w.fsw.Close()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	w.logger.Info("watching", "root", root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "error", err)
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !skipDir(filepath.Base(event.Name)) {
				if err := w.fsw.Add(event.Name); err != nil {
					w.logger.Debug("watch add failed", "dir", event.Name, "error", err)
				}
			}
			return
		}
	}

	switch domain.DetectKind(event.Name) {
	case domain.KindUnknown, domain.KindCredential:
		return
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// sweep revalidates paths whose last event is older than the debounce
// window. Paths deleted while pending are dropped silently.
func (w *Watcher) sweep(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range w.pending {
		if now.Sub(at) >= debounceWindow {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(settled)
	for _, path := range settled {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		w.logger.Debug("revalidating", "path", path)
		w.validate(ctx, path)
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}
