// mcp-coderag is an MCP server for semantic code search across projects.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/spetr/mcp-coderag/builtin"
	"github.com/spetr/mcp-coderag/internal/config"
	"github.com/spetr/mcp-coderag/internal/index"
	"github.com/spetr/mcp-coderag/internal/mcp"
	"github.com/spetr/mcp-coderag/internal/search"
	"github.com/spetr/mcp-coderag/internal/topology"
	"github.com/spetr/mcp-coderag/pkg/plugin/host"
	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

var (
	version   = "0.1.0"
	cfgFile   string
	logLevel  string
	logFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcp-coderag",
	Short: "MCP server for semantic code search",
	Long: `mcp-coderag is an MCP server that indexes codebases into vector
collections and answers semantic search queries over them.

It supports:
- Multiple embedding providers (Ollama, Google, OpenAI, Voyage)
- TreeSitter-based boundary-aware chunking
- Incremental re-indexing driven by file watching
- Project topology graphs built from embedding similarity`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mcp-coderag %s\n", version)
		fmt.Printf("Go version: %s\n", runtime.Version())
		fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start MCP server on stdio",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a project from scratch",
	Long: `Build a fresh collection for a project. The new collection is built
in a staging area and swapped in atomically, so an existing index keeps
serving searches until the rebuild completes. If no path is provided,
indexes the current directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		runIndex(path)
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [path]",
	Short: "Rebuild a project's index from scratch",
	Long: `Force a full rebuild of a project's collection, discarding the old
one after the staged replacement is complete. Use this after switching
embedding providers or models.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		runIndex(path)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show a project's index status",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		runStatus(path)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search a project's index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		project, _ := cmd.Flags().GetString("project")
		limit, _ := cmd.Flags().GetInt("limit")
		modified, _ := cmd.Flags().GetBool("modified")
		commits, _ := cmd.Flags().GetInt("commits")
		runSearch(args[0], project, limit, modified, commits)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed projects",
	Run: func(cmd *cobra.Command, args []string) {
		runList()
	},
}

var topologyCmd = &cobra.Command{
	Use:   "topology [path]",
	Short: "Show the project topology graph",
	Long: `Cluster a project's indexed chunks by embedding similarity and print
the resulting component graph as JSON.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		runTopology(path)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch a project and re-index on changes",
	Long: `Watch for file changes and incrementally re-index modified files.
If no path is provided, watches the current directory.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		runWatch(path)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [path]",
	Short: "Delete a project's index",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		runDelete(path, force)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigInit()
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Run: func(cmd *cobra.Command, args []string) {
		runConfigValidate()
	},
}

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Plugin management",
}

var pluginListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available embedding plugins",
	Run: func(cmd *cobra.Command, args []string) {
		runPluginList()
	},
}

var pluginLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Load an embedding plugin and run a test embedding",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runPluginLoad(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.mcp-coderag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")

	searchCmd.Flags().StringP("project", "p", ".", "project path")
	searchCmd.Flags().IntP("limit", "l", 0, "maximum results (default from config)")
	searchCmd.Flags().Bool("modified", false, "restrict to files modified in recent git history")
	searchCmd.Flags().Int("commits", 10, "number of recent commits for --modified")

	deleteCmd.Flags().BoolP("force", "f", false, "delete without confirmation")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	pluginCmd.AddCommand(pluginListCmd)
	pluginCmd.AddCommand(pluginLoadCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(topologyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(pluginCmd)
}

func setupLogging() {
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func loadConfig() *config.Config {
	var (
		cfg      *config.Config
		warnings []string
		err      error
	)
	if cfgFile != "" {
		cfg, warnings, err = config.LoadFrom(cfgFile)
	} else {
		cfg, warnings, err = config.Load()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		slog.Warn(w)
	}

	// Flags override the config file.
	if logLevel == "" {
		logLevel = cfg.Logging.Level
	}
	if logFormat == "" {
		logFormat = cfg.Logging.Format
	}
	setupLogging()

	return cfg
}

// embeddingConfigFor builds the per-provider config handed to the
// registry while walking the priority chain. Endpoint and API key from
// the config file only apply to the pinned provider; the others fall
// back to their own defaults and environment variables.
func embeddingConfigFor(cfg *config.Config) func(name string) provider.EmbeddingConfig {
	return func(name string) provider.EmbeddingConfig {
		pc := provider.EmbeddingConfig{
			Provider:  name,
			BatchSize: cfg.Embedding.BatchSize,
			Timeout:   time.Duration(cfg.Embedding.TimeoutSeconds) * time.Second,
		}
		if name == cfg.Embedding.Provider || len(cfg.ProviderOrder()) == 1 {
			pc.Model = cfg.Embedding.Model
			pc.Endpoint = cfg.Embedding.Endpoint
			pc.APIKey = cfg.Embedding.APIKey
		}
		if name == "ollama" && pc.Endpoint == "" {
			pc.Endpoint = cfg.Embedding.Endpoint
		}
		return pc
	}
}

// createProviders creates the store, embedding provider and chunker.
func createProviders(ctx context.Context, cfg *config.Config) (provider.VectorStore, provider.EmbeddingProvider, provider.ChunkingStrategy, error) {
	store, err := provider.DefaultRegistry.CreateVectorStore(cfg.Storage.Provider)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := store.Init(cfg.CollectionsDir()); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to init store: %w", err)
	}

	embedding, err := provider.DefaultRegistry.ResolveEmbedding(ctx, cfg.ProviderOrder(), embeddingConfigFor(cfg))
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	chunker, err := provider.DefaultRegistry.CreateChunking(cfg.Chunking.Strategy, provider.ChunkingConfig{
		Strategy:     cfg.Chunking.Strategy,
		MaxChunkSize: cfg.Chunking.MaxChunkSize,
		WindowLines:  cfg.Chunking.WindowLines,
		StepLines:    cfg.Chunking.StepLines,
	})
	if err != nil {
		embedding.Close()
		store.Close()
		return nil, nil, nil, err
	}

	return store, embedding, chunker, nil
}

func runServe() {
	cfg := loadConfig()
	slog.Info("starting MCP server", "version", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, embedding, chunker, err := createProviders(ctx, cfg)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		slog.Info("received shutdown signal", "signal", sig)
		cancel()

		slog.Info("closing providers...")
		if err := store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
		if err := embedding.Close(); err != nil {
			slog.Warn("failed to close embedding", "error", err)
		}
		if err := chunker.Close(); err != nil {
			slog.Warn("failed to close chunker", "error", err)
		}
		slog.Info("shutdown complete")
		os.Exit(0)
	}()

	defer func() {
		signal.Stop(sigChan)
		store.Close()
		embedding.Close()
		chunker.Close()
	}()

	server, err := mcp.New(mcp.Config{
		Config:    cfg,
		Store:     store,
		Embedding: embedding,
		Chunker:   chunker,
	})
	if err != nil {
		slog.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	slog.Info("MCP server running (press Ctrl+C to stop)")
	if err := server.ServeStdio(); err != nil {
		if ctx.Err() != nil {
			slog.Info("server stopped")
		} else {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}

func runIndex(path string) {
	cfg := loadConfig()
	absPath, _ := filepath.Abs(path)
	slog.Info("indexing", "path", absPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, embedding, chunker, err := createProviders(ctx, cfg)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	go func() {
		sig := <-sigChan
		slog.Info("received interrupt signal, stopping", "signal", sig)
		interrupted = true
		cancel()
	}()

	defer func() {
		signal.Stop(sigChan)
		store.Close()
		embedding.Close()
		chunker.Close()
		if interrupted {
			fmt.Println("\nIndexing interrupted. The previous index, if any, is untouched.")
		}
	}()

	identity := embedding.Identity()
	slog.Info("embedding provider",
		"provider", identity.Provider,
		"model", identity.Model,
		"dimensions", identity.Dimensions,
	)

	indexer := index.New(index.Config{
		Config:    cfg,
		Store:     store,
		Embedding: embedding,
		Chunker:   chunker,
	})

	stats, err := indexer.IndexFull(ctx, absPath)
	if err != nil {
		if ctx.Err() != nil {
			slog.Info("indexing stopped by user")
		} else {
			slog.Error("indexing failed", "error", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Indexing complete!")
	fmt.Printf("Files: %d, Chunks: %d, Elapsed: %.1fs\n",
		stats.FilesIndexed, stats.ChunksCreated, stats.ElapsedSeconds)
}

func runSearch(query, project string, limit int, modified bool, commits int) {
	cfg := loadConfig()
	absPath, _ := filepath.Abs(project)
	slog.Debug("searching", "query", query, "project", absPath, "limit", limit)

	ctx := context.Background()
	store, embedding, chunker, err := createProviders(ctx, cfg)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()

	engine := search.New(search.Config{
		Store:       store,
		Embedding:   embedding,
		DefaultTopK: cfg.Search.DefaultTopK,
	})

	req := &types.SearchRequest{Query: query, TopK: limit}

	var results []*types.SearchResult
	if modified {
		results, err = engine.SearchModifiedFiles(ctx, absPath, req, commits)
	} else {
		results, err = engine.Search(ctx, absPath, req)
	}
	if err != nil {
		slog.Error("search failed", "error", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("No results found")
		return
	}

	for i, r := range results {
		fmt.Printf("\n=== Result %d (similarity: %.3f) ===\n", i+1, r.Similarity)
		fmt.Printf("File: %s:%d-%d\n", r.Chunk.FilePath, r.Chunk.StartLine, r.Chunk.EndLine)
		if r.Chunk.Name != "" {
			fmt.Printf("Name: %s (%s)\n", r.Chunk.Name, r.Chunk.Kind)
		}
		fmt.Printf("\n%s\n", r.Chunk.Content)
	}
}

func runList() {
	cfg := loadConfig()

	store, err := provider.DefaultRegistry.CreateVectorStore(cfg.Storage.Provider)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	if err := store.Init(cfg.CollectionsDir()); err != nil {
		slog.Error("failed to init store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	collections, err := store.ListCollections()
	if err != nil {
		slog.Error("failed to list collections", "error", err)
		os.Exit(1)
	}

	shown := 0
	for _, collection := range collections {
		if strings.HasSuffix(collection, ".staging") {
			continue
		}
		manifest, err := store.GetManifest(collection)
		if err != nil {
			continue
		}
		chunks, _ := store.CountChunks(collection)
		fmt.Printf("%s\n", manifest.ProjectPath)
		fmt.Printf("  collection: %s\n", collection)
		fmt.Printf("  embedding:  %s\n", manifest.Signature.String())
		fmt.Printf("  files: %d, chunks: %d, indexed: %s\n",
			len(manifest.Files), chunks, manifest.UpdatedAt.Format("2006-01-02 15:04:05"))
		shown++
	}

	if shown == 0 {
		fmt.Println("No indexed projects. Run 'mcp-coderag index <path>' to create one.")
	}
}

func runStatus(path string) {
	cfg := loadConfig()
	absPath, _ := filepath.Abs(path)
	collection := types.CollectionID(absPath)

	store, err := provider.DefaultRegistry.CreateVectorStore(cfg.Storage.Provider)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	if err := store.Init(cfg.CollectionsDir()); err != nil {
		slog.Error("failed to init store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if !store.HasCollection(collection) {
		fmt.Printf("%s is not indexed. Run 'mcp-coderag index %s' first.\n", absPath, path)
		return
	}

	manifest, err := store.GetManifest(collection)
	if err != nil {
		slog.Error("failed to read manifest", "error", err)
		os.Exit(1)
	}
	chunks, _ := store.CountChunks(collection)

	fmt.Printf("Project:    %s\n", manifest.ProjectPath)
	fmt.Printf("Collection: %s\n", collection)
	fmt.Printf("Embedding:  %s\n", manifest.Signature.String())
	fmt.Printf("Files:      %d\n", len(manifest.Files))
	fmt.Printf("Chunks:     %d\n", chunks)
	fmt.Printf("Indexed:    %s\n", manifest.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func runTopology(path string) {
	cfg := loadConfig()
	absPath, _ := filepath.Abs(path)

	store, err := provider.DefaultRegistry.CreateVectorStore(cfg.Storage.Provider)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	if err := store.Init(cfg.CollectionsDir()); err != nil {
		slog.Error("failed to init store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	builder := topology.New(topology.Config{
		Store:            store,
		ClusterThreshold: cfg.Topology.ClusterThreshold,
		EdgeThreshold:    cfg.Topology.EdgeThreshold,
		MaxEdges:         cfg.Topology.MaxEdges,
	})

	graph, err := builder.Build(absPath)
	if err != nil {
		slog.Error("failed to build topology", "error", err)
		os.Exit(1)
	}

	printJSON(graph)
}

func runWatch(path string) {
	cfg := loadConfig()
	absPath, _ := filepath.Abs(path)
	slog.Info("watching", "path", absPath, "debounce_seconds", cfg.Watch.DebounceSeconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, embedding, chunker, err := createProviders(ctx, cfg)
	if err != nil {
		slog.Error("failed to create providers", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	defer embedding.Close()
	defer chunker.Close()

	indexer := index.New(index.Config{
		Config:    cfg,
		Store:     store,
		Embedding: embedding,
		Chunker:   chunker,
	})
	scheduler := index.NewScheduler(indexer)
	watches := index.NewWatchManager(cfg, scheduler)

	if err := watches.Start(ctx, absPath); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("Watching for changes (press Ctrl+C to stop)...")
	sig := <-sigChan
	slog.Info("received shutdown signal", "signal", sig)

	watches.StopAll()
	scheduler.Wait()
	cancel()
}

func runDelete(path string, force bool) {
	cfg := loadConfig()
	absPath, _ := filepath.Abs(path)
	collection := types.CollectionID(absPath)

	if !force {
		fmt.Printf("Delete index for %s (collection %s)? [y/N] ", absPath, collection)
		var answer string
		fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return
		}
	}

	store, err := provider.DefaultRegistry.CreateVectorStore(cfg.Storage.Provider)
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}
	if err := store.Init(cfg.CollectionsDir()); err != nil {
		slog.Error("failed to init store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if !store.HasCollection(collection) {
		fmt.Println("No index found for", absPath)
		return
	}

	if err := store.DeleteCollection(collection); err != nil {
		slog.Error("failed to delete collection", "error", err)
		os.Exit(1)
	}

	fmt.Println("Index deleted")
}

func runConfigInit() {
	cfg := config.DefaultConfig()

	if err := config.Save(cfg); err != nil {
		slog.Error("failed to save config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Created config at %s\n", config.ConfigPath())
}

func runConfigValidate() {
	cfg := loadConfig()

	errs := config.Validate(cfg)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("Error: %v\n", e)
		}
		os.Exit(1)
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("Provider order: %s\n", strings.Join(cfg.ProviderOrder(), " -> "))
	fmt.Printf("Chunking:       %s\n", cfg.Chunking.Strategy)
	fmt.Printf("Collections:    %s\n", cfg.CollectionsDir())
}

func runPluginList() {
	cfg := loadConfig()

	if cfg.Plugins.Dir == "" {
		fmt.Println("No plugins directory configured")
		return
	}

	manager := host.NewManager(cfg.Plugins.Dir)
	plugins, err := manager.DiscoverPlugins()
	if err != nil {
		slog.Error("failed to discover plugins", "error", err)
		os.Exit(1)
	}

	if len(plugins) == 0 {
		fmt.Printf("No plugins found in %s\n", cfg.Plugins.Dir)
		return
	}

	fmt.Println("Available plugins:")
	for _, p := range plugins {
		fmt.Printf("  %s\n", p)
	}
	fmt.Println("\nLoad and test one with: mcp-coderag plugin load <name>")
}

func runPluginLoad(name string) {
	cfg := loadConfig()

	if cfg.Plugins.Dir == "" {
		fmt.Println("No plugins directory configured")
		os.Exit(1)
	}

	manager := host.NewManager(cfg.Plugins.Dir)
	defer manager.UnloadAll()

	loaded, err := manager.LoadPlugin(name)
	if err != nil {
		slog.Error("failed to load plugin", "name", name, "error", err)
		os.Exit(1)
	}

	adapter := host.NewEmbeddingAdapter(loaded.Embedding)
	defer adapter.Close()

	identity := adapter.Identity()
	fmt.Printf("Plugin loaded: %s\n", name)
	fmt.Printf("  Provider:       %s\n", identity.Provider)
	fmt.Printf("  Model:          %s\n", identity.Model)
	fmt.Printf("  Dimensions:     %d\n", identity.Dimensions)
	fmt.Printf("  Max batch size: %d\n", adapter.MaxBatchSize())

	ctx := context.Background()
	if !adapter.Available(ctx) {
		fmt.Println("\nPlugin reports itself unavailable.")
		os.Exit(1)
	}

	fmt.Println("\nTesting embedding...")
	embeddings, err := adapter.Embed(ctx, []string{"Hello, world!"})
	if err != nil {
		slog.Error("test embedding failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("  Generated %d embedding(s) of dimension %d\n", len(embeddings), len(embeddings[0]))

	fmt.Println("\nPlugin test complete.")
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		slog.Error("failed to marshal output", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
