package index

import (
	"context"
	"log/slog"
	"sync"

	"github.com/spetr/mcp-coderag/pkg/types"
)

// Scheduler serializes index passes per project. Changes arriving while
// a pass runs are coalesced into a single pending set (last state per
// path wins), and a queued full reindex supersedes any pending
// incremental work since the rebuild covers it anyway. Different
// projects index concurrently.
type Scheduler struct {
	indexer *Indexer

	mu       sync.Mutex
	projects map[string]*projectQueue
	wg       sync.WaitGroup
}

type projectQueue struct {
	running     bool
	pending     *types.ChangeSet
	fullPending bool
}

// NewScheduler creates a scheduler running passes on the given indexer.
func NewScheduler(indexer *Indexer) *Scheduler {
	return &Scheduler{
		indexer:  indexer,
		projects: make(map[string]*projectQueue),
	}
}

// EnqueueChanges queues an incremental pass for a project, merging with
// any work already pending.
func (s *Scheduler) EnqueueChanges(ctx context.Context, projectPath string, changes *types.ChangeSet) {
	if changes == nil || changes.Empty() {
		return
	}

	s.mu.Lock()
	q := s.queueFor(projectPath)
	if q.fullPending {
		// The pending rebuild re-reads every file.
		s.mu.Unlock()
		return
	}
	if q.pending == nil {
		q.pending = &types.ChangeSet{}
	}
	mergeChanges(q.pending, changes)
	s.startLocked(ctx, projectPath, q)
	s.mu.Unlock()
}

// EnqueueFull queues a full rebuild for a project, discarding pending
// incremental work.
func (s *Scheduler) EnqueueFull(ctx context.Context, projectPath string) {
	s.mu.Lock()
	q := s.queueFor(projectPath)
	q.fullPending = true
	q.pending = nil
	s.startLocked(ctx, projectPath, q)
	s.mu.Unlock()
}

// RunFull performs a full rebuild synchronously, discarding incremental
// work queued for the project since the rebuild re-reads every file.
// Serialization against a concurrently running pass is provided by the
// indexer's per-project lock.
func (s *Scheduler) RunFull(ctx context.Context, projectPath string) (*types.IndexStats, error) {
	s.mu.Lock()
	if q, ok := s.projects[projectPath]; ok {
		q.pending = nil
	}
	s.mu.Unlock()

	return s.indexer.IndexFull(ctx, projectPath)
}

// Wait blocks until all in-flight and queued passes finish. Intended
// for shutdown and tests.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) queueFor(projectPath string) *projectQueue {
	q, ok := s.projects[projectPath]
	if !ok {
		q = &projectQueue{}
		s.projects[projectPath] = q
	}
	return q
}

// startLocked launches the project's worker if idle. Caller holds s.mu.
func (s *Scheduler) startLocked(ctx context.Context, projectPath string, q *projectQueue) {
	if q.running {
		return
	}
	q.running = true
	s.wg.Add(1)
	go s.run(ctx, projectPath, q)
}

func (s *Scheduler) run(ctx context.Context, projectPath string, q *projectQueue) {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		full := q.fullPending
		pending := q.pending
		q.fullPending = false
		q.pending = nil
		if !full && pending == nil {
			q.running = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		if ctx.Err() != nil {
			s.mu.Lock()
			q.running = false
			s.mu.Unlock()
			return
		}

		var err error
		if full {
			_, err = s.indexer.IndexFull(ctx, projectPath)
		} else {
			_, err = s.indexer.IndexIncremental(ctx, projectPath, pending)
		}
		if err != nil && ctx.Err() == nil {
			slog.Error("index pass failed", "project", projectPath, "full", full, "error", err)
		}
	}
}

// mergeChanges folds src into dst with last-state-wins semantics: a
// path both changed and later deleted ends up deleted only, and a path
// deleted then recreated ends up changed only.
func mergeChanges(dst, src *types.ChangeSet) {
	changed := make(map[string]bool, len(dst.Changed))
	deleted := make(map[string]bool, len(dst.Deleted))
	for _, p := range dst.Changed {
		changed[p] = true
	}
	for _, p := range dst.Deleted {
		deleted[p] = true
	}

	for _, p := range src.Changed {
		changed[p] = true
		delete(deleted, p)
	}
	for _, p := range src.Deleted {
		deleted[p] = true
		delete(changed, p)
	}

	dst.Changed = dst.Changed[:0]
	dst.Deleted = dst.Deleted[:0]
	for p := range changed {
		dst.Changed = append(dst.Changed, p)
	}
	for p := range deleted {
		dst.Deleted = append(dst.Deleted, p)
	}
}
