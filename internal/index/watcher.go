package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spetr/mcp-coderag/internal/config"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// DefaultDebounce is how long a file must be quiet before its change is
// delivered. Editors and build tools burst writes; one indexed state
// per burst is enough.
const DefaultDebounce = 2 * time.Second

type pendingChange struct {
	kind types.ChangeKind
	at   time.Time
}

// Watcher watches one project tree and delivers debounced, coalesced
// change sets to the scheduler. Renames surface as delete of the old
// path plus create of the new one.
type Watcher struct {
	config      *config.Config
	projectPath string
	scheduler   *Scheduler

	watcher  *fsnotify.Watcher
	debounce time.Duration

	pendingMu sync.Mutex
	pending   map[string]pendingChange
}

// WatcherConfig contains watcher configuration.
type WatcherConfig struct {
	ProjectPath string
	Config      *config.Config
	Scheduler   *Scheduler
	Debounce    time.Duration // Default: 2s
}

// NewWatcher creates a new file watcher for one project.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
		if cfg.Config != nil && cfg.Config.Watch.DebounceSeconds > 0 {
			debounce = time.Duration(cfg.Config.Watch.DebounceSeconds) * time.Second
		}
	}

	return &Watcher{
		config:      cfg.Config,
		projectPath: cfg.ProjectPath,
		scheduler:   cfg.Scheduler,
		watcher:     fsw,
		debounce:    debounce,
		pending:     make(map[string]pendingChange),
	}, nil
}

// Watch starts watching for file changes. It blocks until the context
// is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	if err := w.addWatchDirs(w.projectPath); err != nil {
		return err
	}

	slog.Info("watching project", "path", w.projectPath, "debounce", w.debounce)

	ticker := time.NewTicker(w.debounce / 4)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("stopping watcher", "path", w.projectPath)
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-ticker.C:
			w.flushStable(ctx)
		}
	}
}

// addWatchDirs recursively adds directories under root to the watch set.
func (w *Watcher) addWatchDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		relPath, _ := filepath.Rel(w.projectPath, path)
		for _, pattern := range w.config.Index.Exclude {
			if matchGlob(pattern, relPath+"/") {
				return filepath.SkipDir
			}
		}
		if relPath != "." && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			slog.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// handleEvent records one filesystem event into the pending map,
// last state per path winning.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(w.projectPath, event.Name)
	if err != nil {
		return
	}
	relPath = filepath.ToSlash(relPath)

	// New directories need a watch before files inside them event.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addWatchDirs(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", relPath, "error", err)
			}
			return
		}
	}

	if !w.pathRelevant(relPath) {
		return
	}

	var kind types.ChangeKind
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		// A rename fires on the old path; the new path arrives as a
		// separate Create, so the pair decomposes naturally.
		kind = types.ChangeDeleted
	case event.Has(fsnotify.Create):
		kind = types.ChangeCreated
	case event.Has(fsnotify.Write):
		kind = types.ChangeModified
	default:
		return
	}

	w.pendingMu.Lock()
	w.pending[relPath] = pendingChange{kind: kind, at: time.Now()}
	w.pendingMu.Unlock()

	slog.Debug("file event", "path", relPath, "kind", kind)
}

func (w *Watcher) pathRelevant(relPath string) bool {
	included := false
	for _, pattern := range w.config.Index.Include {
		if matchGlob(pattern, relPath) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range w.config.Index.Exclude {
		if matchGlob(pattern, relPath) {
			return false
		}
	}
	return true
}

// flushStable delivers paths quiet for at least the debounce window.
func (w *Watcher) flushStable(ctx context.Context) {
	now := time.Now()
	cs := &types.ChangeSet{}

	w.pendingMu.Lock()
	for path, pc := range w.pending {
		if now.Sub(pc.at) < w.debounce {
			continue
		}
		delete(w.pending, path)
		if pc.kind == types.ChangeDeleted {
			cs.Deleted = append(cs.Deleted, path)
		} else {
			cs.Changed = append(cs.Changed, path)
		}
	}
	w.pendingMu.Unlock()

	if cs.Empty() {
		return
	}

	sort.Strings(cs.Changed)
	sort.Strings(cs.Deleted)
	slog.Debug("flushing changes", "project", w.projectPath,
		"changed", len(cs.Changed), "deleted", len(cs.Deleted))
	w.scheduler.EnqueueChanges(ctx, w.projectPath, cs)
}

// Close closes the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// WatchManager tracks active watchers across projects.
type WatchManager struct {
	config    *config.Config
	scheduler *Scheduler

	mu       sync.Mutex
	watchers map[string]*watchHandle
}

type watchHandle struct {
	watcher *Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWatchManager creates a manager that starts watchers feeding the
// given scheduler.
func NewWatchManager(cfg *config.Config, scheduler *Scheduler) *WatchManager {
	return &WatchManager{
		config:    cfg,
		scheduler: scheduler,
		watchers:  make(map[string]*watchHandle),
	}
}

// Start begins watching a project. Starting an already watched project
// is an error.
func (m *WatchManager) Start(ctx context.Context, projectPath string) error {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.watchers[absPath]; ok {
		return fmt.Errorf("project %s is already being watched", absPath)
	}

	w, err := NewWatcher(WatcherConfig{
		ProjectPath: absPath,
		Config:      m.config,
		Scheduler:   m.scheduler,
	})
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	handle := &watchHandle{watcher: w, cancel: cancel, done: make(chan struct{})}
	m.watchers[absPath] = handle

	go func() {
		defer close(handle.done)
		if err := w.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			slog.Error("watcher stopped", "project", absPath, "error", err)
		}
		m.mu.Lock()
		delete(m.watchers, absPath)
		m.mu.Unlock()
	}()

	return nil
}

// Stop stops watching a project.
func (m *WatchManager) Stop(projectPath string) error {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return err
	}

	m.mu.Lock()
	handle, ok := m.watchers[absPath]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("project %s is not being watched", absPath)
	}
	handle.cancel()
	<-handle.done
	return nil
}

// List returns the paths of all watched projects, sorted.
func (m *WatchManager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	paths := make([]string, 0, len(m.watchers))
	for p := range m.watchers {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// StopAll stops every watcher. Used during shutdown.
func (m *WatchManager) StopAll() {
	m.mu.Lock()
	handles := make([]*watchHandle, 0, len(m.watchers))
	for _, h := range m.watchers {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		<-h.done
	}
}
