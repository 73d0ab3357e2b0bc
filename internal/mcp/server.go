// Package mcp exposes indexing, search and topology operations over the
// Model Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/spetr/mcp-coderag/internal/config"
	"github.com/spetr/mcp-coderag/internal/index"
	"github.com/spetr/mcp-coderag/internal/search"
	"github.com/spetr/mcp-coderag/internal/topology"
	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// Server implements the MCP server.
type Server struct {
	mcpServer *server.MCPServer
	config    *config.Config
	store     provider.VectorStore
	embedding provider.EmbeddingProvider

	indexer   *index.Indexer
	scheduler *index.Scheduler
	watches   *index.WatchManager
	search    *search.Engine
	topology  *topology.Builder
}

// Config contains server configuration.
type Config struct {
	Config    *config.Config
	Store     provider.VectorStore
	Embedding provider.EmbeddingProvider
	Chunker   provider.ChunkingStrategy
}

// New creates a new MCP server.
func New(cfg Config) (*Server, error) {
	s := &Server{
		config:    cfg.Config,
		store:     cfg.Store,
		embedding: cfg.Embedding,
	}

	s.indexer = index.New(index.Config{
		Config:    cfg.Config,
		Store:     cfg.Store,
		Embedding: cfg.Embedding,
		Chunker:   cfg.Chunker,
	})
	s.scheduler = index.NewScheduler(s.indexer)
	s.watches = index.NewWatchManager(cfg.Config, s.scheduler)
	s.search = search.New(search.Config{
		Store:       cfg.Store,
		Embedding:   cfg.Embedding,
		DefaultTopK: cfg.Config.Search.DefaultTopK,
	})
	s.topology = topology.New(topology.Config{
		Store:            cfg.Store,
		ClusterThreshold: cfg.Config.Topology.ClusterThreshold,
		EdgeThreshold:    cfg.Config.Topology.EdgeThreshold,
		MaxEdges:         cfg.Config.Topology.MaxEdges,
	})

	mcpServer := server.NewMCPServer(
		"mcp-coderag",
		"0.1.0",
		server.WithLogging(),
	)
	s.registerTools(mcpServer)
	s.mcpServer = mcpServer
	return s, nil
}

// registerTools registers all MCP tools.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(mcp.NewTool("index_project",
		mcp.WithDescription("Index a project directory for semantic code search"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Absolute path to the project root")),
	), s.handleIndexProject)

	mcpServer.AddTool(mcp.NewTool("reindex_project",
		mcp.WithDescription("Rebuild a project's index from scratch (required after changing the embedding provider or model)"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Absolute path to the project root")),
	), s.handleIndexProject)

	mcpServer.AddTool(mcp.NewTool("search_code",
		mcp.WithDescription("Search indexed code using semantic similarity"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project to search")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language search query")),
		mcp.WithNumber("top_k", mcp.Description("Maximum results (default 10)")),
	), s.handleSearchCode)

	mcpServer.AddTool(mcp.NewTool("search_modified_files",
		mcp.WithDescription("Semantic search restricted to files modified in the working tree and recent commits"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project to search")),
		mcp.WithString("query", mcp.Required(), mcp.Description("Natural-language search query")),
		mcp.WithNumber("top_k", mcp.Description("Maximum results (default 10)")),
		mcp.WithNumber("commits", mcp.Description("How many recent commits to include (default 5)")),
	), s.handleSearchModifiedFiles)

	mcpServer.AddTool(mcp.NewTool("get_chunk_context",
		mcp.WithDescription("Show surrounding lines for a chunk returned by search_code"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project the chunk belongs to")),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("File path from the search result")),
		mcp.WithNumber("start_line", mcp.Required(), mcp.Description("Start line of the chunk")),
		mcp.WithNumber("end_line", mcp.Required(), mcp.Description("End line of the chunk")),
		mcp.WithNumber("context_before", mcp.Description("Lines to show before the chunk (default 15)")),
		mcp.WithNumber("context_after", mcp.Description("Lines to show after the chunk (default 15)")),
	), s.handleGetChunkContext)

	mcpServer.AddTool(mcp.NewTool("list_indexed_projects",
		mcp.WithDescription("List all indexed projects with their statistics"),
	), s.handleListIndexedProjects)

	mcpServer.AddTool(mcp.NewTool("get_embedding_status",
		mcp.WithDescription("Show the active embedding provider and per-project compatibility"),
	), s.handleGetEmbeddingStatus)

	mcpServer.AddTool(mcp.NewTool("project_topology",
		mcp.WithDescription("Generate a semantic component map of an indexed project"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project to map")),
	), s.handleProjectTopology)

	mcpServer.AddTool(mcp.NewTool("watch_project",
		mcp.WithDescription("Start watching a project for file changes and re-index incrementally"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project to watch")),
	), s.handleWatchProject)

	mcpServer.AddTool(mcp.NewTool("unwatch_project",
		mcp.WithDescription("Stop watching a project"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project to stop watching")),
	), s.handleUnwatchProject)

	mcpServer.AddTool(mcp.NewTool("list_watched_projects",
		mcp.WithDescription("List projects currently being watched"),
	), s.handleListWatchedProjects)

	mcpServer.AddTool(mcp.NewTool("delete_project_index",
		mcp.WithDescription("Delete a project's index entirely"),
		mcp.WithString("project_path", mcp.Required(), mcp.Description("Project whose index to delete")),
	), s.handleDeleteProjectIndex)
}

func (s *Server) handleIndexProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	if projectPath == "" {
		return mcp.NewToolResultError("project_path is required"), nil
	}

	slog.Info("indexing project", "path", projectPath)
	stats, err := s.scheduler.RunFull(ctx, projectPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	result := map[string]any{
		"success":         true,
		"project_path":    projectPath,
		"files_scanned":   stats.FilesScanned,
		"files_indexed":   stats.FilesIndexed,
		"chunks_created":  stats.ChunksCreated,
		"elapsed_seconds": stats.ElapsedSeconds,
		"provider":        s.embedding.Identity().String(),
	}
	return jsonResult(result), nil
}

func (s *Server) handleSearchCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	query := req.GetString("query", "")
	if projectPath == "" || query == "" {
		return mcp.NewToolResultError("project_path and query are required"), nil
	}

	results, err := s.search.Search(ctx, projectPath, &types.SearchRequest{
		Query: query,
		TopK:  req.GetInt("top_k", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return jsonResult(formatResults(results)), nil
}

func (s *Server) handleSearchModifiedFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	query := req.GetString("query", "")
	if projectPath == "" || query == "" {
		return mcp.NewToolResultError("project_path and query are required"), nil
	}

	results, err := s.search.SearchModifiedFiles(ctx, projectPath, &types.SearchRequest{
		Query: query,
		TopK:  req.GetInt("top_k", 0),
	}, req.GetInt("commits", 5))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if results == nil {
		return mcp.NewToolResultText("no modified files to search"), nil
	}
	return jsonResult(formatResults(results)), nil
}

func (s *Server) handleGetChunkContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	filePath := req.GetString("file_path", "")
	if projectPath == "" || filePath == "" {
		return mcp.NewToolResultError("project_path and file_path are required"), nil
	}

	chunkCtx, err := s.search.ChunkContext(projectPath, filePath,
		req.GetInt("start_line", 0),
		req.GetInt("end_line", 0),
		req.GetInt("context_before", search.DefaultContextLines),
		req.GetInt("context_after", search.DefaultContextLines),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("context failed: %v", err)), nil
	}
	return jsonResult(chunkCtx), nil
}

func (s *Server) handleListIndexedProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	infos, err := s.listProjects()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
	}
	return jsonResult(infos), nil
}

func (s *Server) handleGetEmbeddingStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	active := s.embedding.Identity()

	infos, err := s.listProjects()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing projects failed: %v", err)), nil
	}

	projects := make([]map[string]any, 0, len(infos))
	for _, info := range infos {
		entry := map[string]any{
			"project_path": info.ProjectPath,
			"signature":    info.Signature.String(),
			"compatible":   info.Signature.Equal(active),
		}
		if !info.Signature.Equal(active) {
			entry["hint"] = "run reindex_project to rebuild with the active provider"
		}
		projects = append(projects, entry)
	}

	return jsonResult(map[string]any{
		"active_provider": s.embedding.Name(),
		"signature":       active.String(),
		"dimensions":      active.Dimensions,
		"projects":        projects,
	}), nil
}

func (s *Server) handleProjectTopology(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	if projectPath == "" {
		return mcp.NewToolResultError("project_path is required"), nil
	}

	graph, err := s.topology.Build(projectPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("topology failed: %v", err)), nil
	}
	return jsonResult(graph), nil
}

func (s *Server) handleWatchProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	if projectPath == "" {
		return mcp.NewToolResultError("project_path is required"), nil
	}

	// The watcher must outlive this request.
	if err := s.watches.Start(context.Background(), projectPath); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("watch failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "watching": projectPath}), nil
}

func (s *Server) handleUnwatchProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	if projectPath == "" {
		return mcp.NewToolResultError("project_path is required"), nil
	}

	if err := s.watches.Stop(projectPath); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unwatch failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "stopped": projectPath}), nil
}

func (s *Server) handleListWatchedProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{"watched": s.watches.List()}), nil
}

func (s *Server) handleDeleteProjectIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectPath := req.GetString("project_path", "")
	if projectPath == "" {
		return mcp.NewToolResultError("project_path is required"), nil
	}

	collection := types.CollectionID(projectPath)
	if err := s.store.DeleteCollection(collection); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"success": true, "deleted": projectPath}), nil
}

// listProjects collects ProjectInfo for every non-staging collection.
func (s *Server) listProjects() ([]*types.ProjectInfo, error) {
	collections, err := s.store.ListCollections()
	if err != nil {
		return nil, err
	}

	infos := make([]*types.ProjectInfo, 0, len(collections))
	for _, collection := range collections {
		if strings.HasSuffix(collection, ".staging") {
			continue
		}
		manifest, err := s.store.GetManifest(collection)
		if err != nil {
			slog.Warn("skipping collection without manifest", "collection", collection, "error", err)
			continue
		}
		chunks, err := s.store.CountChunks(collection)
		if err != nil {
			return nil, err
		}
		infos = append(infos, &types.ProjectInfo{
			ProjectPath: manifest.ProjectPath,
			Collection:  collection,
			Signature:   manifest.Signature,
			Files:       len(manifest.Files),
			Chunks:      chunks,
			LastIndexed: manifest.UpdatedAt,
		})
	}
	return infos, nil
}

func formatResults(results []*types.SearchResult) []map[string]any {
	formatted := make([]map[string]any, 0, len(results))
	for _, r := range results {
		formatted = append(formatted, map[string]any{
			"id":         r.Chunk.ID,
			"file":       r.Chunk.FilePath,
			"start_line": r.Chunk.StartLine,
			"end_line":   r.Chunk.EndLine,
			"language":   r.Chunk.Language,
			"kind":       r.Chunk.Kind,
			"name":       r.Chunk.Name,
			"similarity": r.Similarity,
			"content":    r.Chunk.Content,
		})
	}
	return formatted
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(data))
}

// ServeStdio runs the server over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	defer s.watches.StopAll()
	defer s.scheduler.Wait()
	return server.ServeStdio(s.mcpServer)
}
