// Package index implements full and incremental project indexing. A
// full pass builds a fresh collection in staging and swaps it in
// atomically; an incremental pass diffs chunk ids per file so unchanged
// content is never re-embedded.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spetr/mcp-coderag/builtin/chunking/simple"
	"github.com/spetr/mcp-coderag/internal/config"
	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

const (
	embedMaxAttempts = 3
	stagingSuffix    = ".staging"
)

// Indexer builds and maintains per-project collections.
type Indexer struct {
	config    *config.Config
	store     provider.VectorStore
	embedding provider.EmbeddingProvider
	chunker   provider.ChunkingStrategy
	fallback  provider.ChunkingStrategy

	// One lock per project: index passes for the same project never
	// run concurrently, regardless of whether they come from an
	// explicit request or the watcher.
	locks sync.Map
}

func (idx *Indexer) projectLock(absPath string) *sync.Mutex {
	v, _ := idx.locks.LoadOrStore(absPath, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// Config contains indexer configuration.
type Config struct {
	Config    *config.Config
	Store     provider.VectorStore
	Embedding provider.EmbeddingProvider
	Chunker   provider.ChunkingStrategy
	Fallback  provider.ChunkingStrategy
}

// New creates a new indexer. Fallback may be nil, in which case the
// simple line-window strategy is used for files the primary chunker
// cannot handle.
func New(cfg Config) *Indexer {
	fallback := cfg.Fallback
	if fallback == nil {
		fallback = simple.New(simple.Config{
			WindowLines: cfg.Config.Chunking.WindowLines,
			StepLines:   cfg.Config.Chunking.StepLines,
		})
	}
	return &Indexer{
		config:    cfg.Config,
		store:     cfg.Store,
		embedding: cfg.Embedding,
		chunker:   cfg.Chunker,
		fallback:  fallback,
	}
}

// CheckCompatibility verifies that the active embedding provider can
// serve an existing collection. Searching or incrementally updating a
// collection built with a different (provider, model, dimension)
// triple is refused; only a full reindex migrates it.
func CheckCompatibility(manifest *types.ProjectManifest, active types.EmbeddingSignature) error {
	if manifest.Signature.Equal(active) {
		return nil
	}
	return &types.CompatibilityError{
		ProjectPath: manifest.ProjectPath,
		Stored:      manifest.Signature,
		Active:      active,
	}
}

// IndexFull rebuilds a project's collection from scratch. The new index
// is written to a staging collection and promoted only once complete,
// so an interrupted run leaves any previous index untouched.
func (idx *Indexer) IndexFull(ctx context.Context, projectPath string) (*types.IndexStats, error) {
	start := time.Now()
	stats := &types.IndexStats{}

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}
	if info, err := os.Stat(absPath); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project path %s: %w", projectPath, types.ErrNotFound)
	}

	lock := idx.projectLock(absPath)
	lock.Lock()
	defer lock.Unlock()

	files, err := idx.scanFiles(ctx, absPath)
	if err != nil {
		return nil, fmt.Errorf("scanning files: %w", err)
	}
	stats.FilesScanned = len(files)
	slog.Info("scanned project", "path", absPath, "files", len(files))

	chunked, err := idx.chunkFilesParallel(ctx, files, stats)
	if err != nil {
		return nil, err
	}

	var allChunks []*types.Chunk
	for _, fc := range chunked {
		allChunks = append(allChunks, fc.chunks...)
	}

	embedded, err := idx.embedChunks(ctx, allChunks)
	if err != nil {
		return nil, err
	}
	stats.ChunksCreated = len(embedded)

	collection := types.CollectionID(absPath)
	staging := collection + stagingSuffix

	if err := idx.store.CreateCollection(staging, idx.embedding.Dimensions()); err != nil {
		return nil, fmt.Errorf("creating staging collection: %w", err)
	}
	if err := idx.store.UpsertChunks(staging, embedded); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	manifest := &types.ProjectManifest{
		ProjectPath: absPath,
		Collection:  collection,
		Signature:   idx.embedding.Identity(),
		ConfigHash:  idx.config.Hash(),
		CreatedAt:   now,
		UpdatedAt:   now,
		Files:       make(map[string]types.ManifestFile),
	}
	for _, fc := range chunked {
		ids := make([]string, len(fc.chunks))
		for i, c := range fc.chunks {
			ids[i] = c.ID
		}
		manifest.Files[fc.file.Path] = types.ManifestFile{
			Path:      fc.file.Path,
			Hash:      fc.file.Hash,
			ChunkIDs:  ids,
			IndexedAt: now,
		}
	}
	if err := idx.store.InitManifest(staging, manifest); err != nil {
		return nil, err
	}

	if err := idx.store.PromoteCollection(staging, collection); err != nil {
		return nil, err
	}

	stats.FilesIndexed = len(chunked)
	stats.Elapsed = time.Since(start)
	stats.ElapsedSeconds = stats.Elapsed.Seconds()
	slog.Info("full index complete",
		"project", absPath,
		"files", stats.FilesIndexed,
		"chunks", stats.ChunksCreated,
		"duration", stats.Elapsed.Round(time.Millisecond),
	)
	return stats, nil
}

// IndexIncremental applies a coalesced change set to an existing
// collection. For each changed file, chunk ids are diffed against the
// manifest: only chunks with new ids are embedded, and unchanged
// content costs nothing. An embedding failure skips that file (its old
// index state stays intact); a store failure aborts the pass.
func (idx *Indexer) IndexIncremental(ctx context.Context, projectPath string, changes *types.ChangeSet) (*types.IndexStats, error) {
	start := time.Now()
	stats := &types.IndexStats{}

	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, fmt.Errorf("resolving project path: %w", err)
	}
	collection := types.CollectionID(absPath)

	lock := idx.projectLock(absPath)
	lock.Lock()
	defer lock.Unlock()

	manifest, err := idx.store.GetManifest(collection)
	if err != nil {
		return nil, err
	}
	if err := CheckCompatibility(manifest, idx.embedding.Identity()); err != nil {
		return nil, err
	}

	for _, rel := range changes.Deleted {
		if _, ok := manifest.Files[rel]; !ok {
			continue
		}
		if err := idx.store.RemoveFile(collection, rel); err != nil {
			return nil, err
		}
		stats.ChunksDeleted += len(manifest.Files[rel].ChunkIDs)
		stats.FilesDeleted++
		delete(manifest.Files, rel)
	}

	for _, rel := range changes.Changed {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		stats.FilesScanned++

		file, err := idx.readFile(absPath, rel)
		if err != nil {
			if os.IsNotExist(err) {
				// Raced a delete; treat as deleted.
				if _, ok := manifest.Files[rel]; ok {
					if derr := idx.store.RemoveFile(collection, rel); derr != nil {
						return nil, derr
					}
					stats.FilesDeleted++
					delete(manifest.Files, rel)
				}
				continue
			}
			slog.Warn("skipping unreadable file", "file", rel, "error", err)
			stats.FilesFailed++
			continue
		}

		prev, known := manifest.Files[rel]
		if known && prev.Hash == file.Hash {
			stats.FilesSkipped++
			continue
		}

		chunks := idx.chunkFile(file)

		oldIDs := make(map[string]bool, len(prev.ChunkIDs))
		for _, id := range prev.ChunkIDs {
			oldIDs[id] = true
		}
		newIDs := make(map[string]bool, len(chunks))
		var toEmbed []*types.Chunk
		for _, c := range chunks {
			newIDs[c.ID] = true
			if !oldIDs[c.ID] {
				toEmbed = append(toEmbed, c)
			}
		}
		var toDelete []string
		for _, id := range prev.ChunkIDs {
			if !newIDs[id] {
				toDelete = append(toDelete, id)
			}
		}

		embedded, err := idx.embedChunks(ctx, toEmbed)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// The file's previous state stays searchable.
			slog.Warn("embedding failed, file skipped", "file", rel, "error", err)
			stats.FilesFailed++
			continue
		}

		ids := make([]string, len(chunks))
		for i, c := range chunks {
			ids[i] = c.ID
		}
		mf := &types.ManifestFile{
			Path:      rel,
			Hash:      file.Hash,
			ChunkIDs:  ids,
			IndexedAt: time.Now().UTC(),
		}
		if err := idx.store.ApplyFileUpdate(collection, mf, toDelete, embedded); err != nil {
			return nil, err
		}

		manifest.Files[rel] = *mf
		stats.FilesIndexed++
		stats.ChunksCreated += len(toEmbed)
		stats.ChunksDeleted += len(toDelete)
		stats.ChunksReused += len(chunks) - len(toEmbed)
	}

	stats.Elapsed = time.Since(start)
	stats.ElapsedSeconds = stats.Elapsed.Seconds()
	slog.Info("incremental index complete",
		"project", absPath,
		"indexed", stats.FilesIndexed,
		"skipped", stats.FilesSkipped,
		"deleted", stats.FilesDeleted,
		"failed", stats.FilesFailed,
		"chunks_created", stats.ChunksCreated,
		"chunks_reused", stats.ChunksReused,
		"duration", stats.Elapsed.Round(time.Millisecond),
	)
	return stats, nil
}

type fileChunks struct {
	file   *types.SourceFile
	chunks []*types.Chunk
}

// chunkFile runs the primary strategy and degrades to the fallback for
// unsupported languages or parse failures.
func (idx *Indexer) chunkFile(file *types.SourceFile) []*types.Chunk {
	if idx.chunker.SupportsLanguage(file.Language) {
		chunks, err := idx.chunker.Chunk(file)
		if err == nil {
			return chunks
		}
		if errors.Is(err, types.ErrParseError) {
			slog.Debug("parse failed, using fallback chunker", "file", file.Path)
		} else {
			slog.Warn("chunking failed, using fallback chunker", "file", file.Path, "error", err)
		}
	}

	chunks, err := idx.fallback.Chunk(file)
	if err != nil {
		slog.Warn("fallback chunking failed", "file", file.Path, "error", err)
		return nil
	}
	return chunks
}

// chunkFilesParallel chunks files across a worker pool.
func (idx *Indexer) chunkFilesParallel(ctx context.Context, files []*types.SourceFile, stats *types.IndexStats) ([]fileChunks, error) {
	workers := idx.config.Index.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	fileCh := make(chan *types.SourceFile, len(files))
	resultCh := make(chan fileChunks, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				if ctx.Err() != nil {
					return
				}
				resultCh <- fileChunks{file: file, chunks: idx.chunkFile(file)}
			}
		}()
	}

	for _, file := range files {
		fileCh <- file
	}
	close(fileCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var out []fileChunks
	for fc := range resultCh {
		if len(fc.chunks) == 0 {
			stats.FilesSkipped++
			continue
		}
		out = append(out, fc)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// Worker completion order is nondeterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].file.Path < out[j].file.Path })
	return out, nil
}

// embedChunks generates embeddings batch by batch with bounded retry.
func (idx *Indexer) embedChunks(ctx context.Context, chunks []*types.Chunk) ([]*types.ChunkWithEmbedding, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	batchSize := idx.embedding.MaxBatchSize()
	if idx.config.Embedding.BatchSize > 0 && idx.config.Embedding.BatchSize < batchSize {
		batchSize = idx.config.Embedding.BatchSize
	}

	results := make([]*types.ChunkWithEmbedding, len(chunks))
	for i := 0; i < len(chunks); i += batchSize {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Content
		}

		embeddings, err := idx.embedWithRetry(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d: %v", types.ErrEmbeddingFailed, i/batchSize, err)
		}

		for j, c := range batch {
			results[i+j] = &types.ChunkWithEmbedding{Chunk: c, Embedding: embeddings[j]}
		}
	}
	return results, nil
}

// embedWithRetry retries transient failures with exponential backoff.
// Retryable means an HTTP 429/5xx from the provider or a timeout; a
// 4xx other than 429 fails immediately.
func (idx *Indexer) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= embedMaxAttempts; attempt++ {
		embeddings, err := idx.embedding.Embed(ctx, texts)
		if err == nil {
			return embeddings, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isRetryable(err) {
			return nil, err
		}
		if attempt == embedMaxAttempts {
			break
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		slog.Debug("retrying embed batch", "attempt", attempt, "backoff", backoff, "error", err)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", embedMaxAttempts, lastErr)
}

func isRetryable(err error) bool {
	var httpErr *types.ProviderHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	if errors.Is(err, types.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// scanFiles lists indexable files under a project root.
func (idx *Indexer) scanFiles(ctx context.Context, projectPath string) ([]*types.SourceFile, error) {
	if idx.config.Index.UseGitIgnore {
		files, err := idx.scanWithGit(ctx, projectPath)
		if err == nil && len(files) > 0 {
			return files, nil
		}
		slog.Debug("git scan unavailable, walking filesystem", "error", err)
	}

	var files []*types.SourceFile
	err := filepath.WalkDir(projectPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		relPath, _ := filepath.Rel(projectPath, path)
		if d.IsDir() {
			for _, pattern := range idx.config.Index.Exclude {
				if matchGlob(pattern, relPath+"/") {
					return filepath.SkipDir
				}
			}
			return nil
		}

		if !idx.pathIndexable(relPath) {
			return nil
		}

		file, err := idx.readFile(projectPath, relPath)
		if err != nil {
			slog.Debug("skipping file", "path", relPath, "error", err)
			return nil
		}
		files = append(files, file)

		if len(files) >= idx.config.Index.MaxFiles {
			return fmt.Errorf("max files limit reached: %d", idx.config.Index.MaxFiles)
		}
		return nil
	})

	return files, err
}

// scanWithGit uses git ls-files so gitignored files are skipped for free.
func (idx *Indexer) scanWithGit(ctx context.Context, projectPath string) ([]*types.SourceFile, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = projectPath

	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []*types.SourceFile
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !idx.pathIndexable(line) {
			continue
		}

		file, err := idx.readFile(projectPath, line)
		if err != nil {
			slog.Debug("skipping file", "path", line, "error", err)
			continue
		}
		files = append(files, file)

		if len(files) >= idx.config.Index.MaxFiles {
			break
		}
	}
	return files, nil
}

// pathIndexable applies the include then exclude glob lists.
func (idx *Indexer) pathIndexable(relPath string) bool {
	included := false
	for _, pattern := range idx.config.Index.Include {
		if matchGlob(pattern, relPath) {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range idx.config.Index.Exclude {
		if matchGlob(pattern, relPath) {
			return false
		}
	}
	return true
}

// readFile reads one file into a SourceFile keyed by its project-relative path.
func (idx *Indexer) readFile(projectPath, relPath string) (*types.SourceFile, error) {
	absPath := filepath.Join(projectPath, relPath)

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	maxSize := parseSize(idx.config.Index.MaxFileSize)
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("file too large: %d > %d", info.Size(), maxSize)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, err
	}

	file := &types.SourceFile{
		Path:     filepath.ToSlash(relPath),
		AbsPath:  absPath,
		Content:  content,
		Language: simple.DetectLanguage(relPath),
	}
	file.Hash = file.ComputeHash()
	return file, nil
}

// matchGlob matches a project-relative path against a glob pattern,
// handling ** for recursive matching.
func matchGlob(pattern, path string) bool {
	if strings.Contains(pattern, "**") {
		parts := strings.Split(pattern, "**")
		if len(parts) == 2 {
			prefix := strings.TrimSuffix(parts[0], "/")
			suffix := strings.TrimPrefix(parts[1], "/")

			if prefix != "" && !strings.HasPrefix(path, prefix) {
				return false
			}
			if suffix == "" {
				return true
			}
			if strings.Contains(suffix, "*") {
				base := filepath.Base(path)
				if matched, _ := filepath.Match(suffix, base); matched {
					return true
				}
				remaining := path
				if prefix != "" {
					remaining = strings.TrimPrefix(path, prefix)
					remaining = strings.TrimPrefix(remaining, "/")
				}
				matched, _ := filepath.Match(suffix, remaining)
				return matched
			}
			return strings.HasSuffix(path, suffix) || strings.Contains(path, suffix)
		}
	}

	if matched, _ := filepath.Match(pattern, path); matched {
		return true
	}
	matched, _ := filepath.Match(pattern, filepath.Base(path))
	return matched
}

// parseSize parses a size string like "1MB" to bytes.
func parseSize(s string) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	var value int64
	_, _ = fmt.Sscanf(s, "%d", &value)
	return value * multiplier
}
