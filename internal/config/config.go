// Package config handles configuration loading and validation. Unlike a
// per-project dotfile, configuration is machine-global: every indexed
// project shares one config and one collections directory under the
// user's home.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete configuration.
type Config struct {
	Embedding EmbeddingConfig `mapstructure:"embedding" yaml:"embedding"`
	Chunking  ChunkingConfig  `mapstructure:"chunking" yaml:"chunking"`
	Search    SearchConfig    `mapstructure:"search" yaml:"search"`
	Storage   StorageConfig   `mapstructure:"storage" yaml:"storage"`
	Index     IndexConfig     `mapstructure:"index" yaml:"index"`
	Watch     WatchConfig     `mapstructure:"watch" yaml:"watch"`
	Topology  TopologyConfig  `mapstructure:"topology" yaml:"topology"`
	Plugins   PluginsConfig   `mapstructure:"plugins" yaml:"plugins"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

// EmbeddingConfig contains embedding provider configuration.
type EmbeddingConfig struct {
	// Providers is the priority order tried at startup. The first
	// provider that responds becomes the active one.
	Providers []string `mapstructure:"providers" yaml:"providers"`

	// Provider pins a single provider, bypassing the priority chain.
	Provider string `mapstructure:"provider" yaml:"provider"`

	Model          string `mapstructure:"model" yaml:"model"`
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	BatchSize      int    `mapstructure:"batch_size" yaml:"batch_size"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// ChunkingConfig contains chunking strategy configuration.
type ChunkingConfig struct {
	Strategy     string `mapstructure:"strategy" yaml:"strategy"`             // treesitter, simple
	MaxChunkSize int    `mapstructure:"max_chunk_size" yaml:"max_chunk_size"` // bytes before nested defs split out
	WindowLines  int    `mapstructure:"window_lines" yaml:"window_lines"`     // fallback window size
	StepLines    int    `mapstructure:"step_lines" yaml:"step_lines"`         // fallback window step
}

// SearchConfig contains search configuration.
type SearchConfig struct {
	DefaultTopK int `mapstructure:"default_top_k" yaml:"default_top_k"`
}

// StorageConfig contains vector store configuration.
type StorageConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"` // sqlitevec
	Path     string `mapstructure:"path" yaml:"path"`         // collections directory, defaults under DataDir
}

// IndexConfig contains indexing configuration.
type IndexConfig struct {
	Include      []string      `mapstructure:"include" yaml:"include"`
	Exclude      []string      `mapstructure:"exclude" yaml:"exclude"`
	UseGitIgnore bool          `mapstructure:"use_gitignore" yaml:"use_gitignore"`
	MaxFileSize  string        `mapstructure:"max_file_size" yaml:"max_file_size"` // e.g., "1MB"
	MaxFiles     int           `mapstructure:"max_files" yaml:"max_files"`
	Workers      int           `mapstructure:"workers" yaml:"workers"` // 0 = runtime.NumCPU()
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// WatchConfig contains file watcher configuration.
type WatchConfig struct {
	DebounceSeconds int `mapstructure:"debounce_seconds" yaml:"debounce_seconds"`
}

// TopologyConfig contains project topology analysis configuration.
type TopologyConfig struct {
	ClusterThreshold float64 `mapstructure:"cluster_threshold" yaml:"cluster_threshold"`
	EdgeThreshold    float64 `mapstructure:"edge_threshold" yaml:"edge_threshold"`
	MaxEdges         int     `mapstructure:"max_edges" yaml:"max_edges"`
}

// PluginsConfig contains external provider plugin configuration.
type PluginsConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // directory scanned for provider plugins
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Providers:      []string{"ollama", "google", "openai", "voyage"},
			Endpoint:       "http://localhost:11434",
			BatchSize:      32,
			TimeoutSeconds: 60,
		},
		Chunking: ChunkingConfig{
			Strategy:     "treesitter",
			MaxChunkSize: 6000,
			WindowLines:  50,
			StepLines:    40,
		},
		Search: SearchConfig{
			DefaultTopK: 10,
		},
		Storage: StorageConfig{
			Provider: "sqlitevec",
		},
		Index: IndexConfig{
			Include: []string{
				"**/*.go", "**/*.py", "**/*.js", "**/*.mjs", "**/*.cjs", "**/*.ts",
				"**/*.jsx", "**/*.tsx", "**/*.rs", "**/*.java",
				"**/*.c", "**/*.cpp", "**/*.cc", "**/*.cxx", "**/*.h", "**/*.hpp",
				"**/*.rb", "**/*.php", "**/*.cs", "**/*.kt", "**/*.kts",
				"**/*.swift", "**/*.scala", "**/*.sc",
				"**/*.lua", "**/*.sql",
				"**/*.sh", "**/*.bash",
				"**/*.ex", "**/*.exs",
				"**/*.html", "**/*.htm", "**/*.svelte", "**/*.vue",
				"**/*.yaml", "**/*.yml", "**/*.toml", "**/*.json",
				"**/*.md",
			},
			Exclude: []string{
				"**/vendor/**", "**/node_modules/**", "**/.git/**",
				"**/dist/**", "**/build/**", "**/target/**", "**/bin/**", "**/obj/**",
				"**/*.min.js", "**/*.min.css", "**/*.generated.*",
				"**/package-lock.json", "**/yarn.lock", "**/pnpm-lock.yaml",
				"**/go.sum", "**/Cargo.lock", "**/composer.lock",
			},
			UseGitIgnore: true,
			MaxFileSize:  "1MB",
			MaxFiles:     50000,
			Workers:      0,
			Timeout:      30 * time.Minute,
		},
		Watch: WatchConfig{
			DebounceSeconds: 2,
		},
		Topology: TopologyConfig{
			ClusterThreshold: 0.7,
			EdgeThreshold:    0.5,
			MaxEdges:         20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DataDir returns the global data directory (~/.mcp-coderag).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mcp-coderag"
	}
	return filepath.Join(home, ".mcp-coderag")
}

// ConfigPath returns the path to the global config.yaml.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// CollectionsDir returns the directory holding collection databases,
// honoring a storage.path override.
func (c *Config) CollectionsDir() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	return filepath.Join(DataDir(), "collections")
}

// Load loads the global configuration, falling back to defaults when no
// config file exists. Environment variables prefixed CODERAG_ override
// file values (CODERAG_EMBEDDING_PROVIDER, CODERAG_LOGGING_LEVEL, ...).
func Load() (*Config, []string, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom loads configuration from an explicit path.
func LoadFrom(configPath string) (*Config, []string, error) {
	cfg := DefaultConfig()
	warnings := []string{}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CODERAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		warnings = append(warnings, "No config file found, using defaults")
	} else {
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Env overrides only apply through viper keys it has seen; pull the
	// common ones explicitly so they work without a config file too.
	if p := os.Getenv("CODERAG_EMBEDDING_PROVIDER"); p != "" {
		cfg.Embedding.Provider = p
	}
	if m := os.Getenv("CODERAG_EMBEDDING_MODEL"); m != "" {
		cfg.Embedding.Model = m
	}

	applyDefaults(cfg, &warnings)
	return cfg, warnings, nil
}

func applyDefaults(cfg *Config, warnings *[]string) {
	if len(cfg.Embedding.Providers) == 0 && cfg.Embedding.Provider == "" {
		cfg.Embedding.Providers = []string{"ollama", "google", "openai", "voyage"}
		*warnings = append(*warnings, "Using default provider chain: ollama, google, openai, voyage")
	}
	if cfg.Embedding.Endpoint == "" {
		cfg.Embedding.Endpoint = "http://localhost:11434"
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 60
	}

	if cfg.Chunking.Strategy == "" {
		cfg.Chunking.Strategy = "treesitter"
	}
	if cfg.Chunking.MaxChunkSize == 0 {
		cfg.Chunking.MaxChunkSize = 6000
	}
	if cfg.Chunking.WindowLines == 0 {
		cfg.Chunking.WindowLines = 50
	}
	if cfg.Chunking.StepLines == 0 {
		cfg.Chunking.StepLines = 40
	}

	if cfg.Search.DefaultTopK == 0 {
		cfg.Search.DefaultTopK = 10
	}
	if cfg.Storage.Provider == "" {
		cfg.Storage.Provider = "sqlitevec"
	}
	if cfg.Watch.DebounceSeconds == 0 {
		cfg.Watch.DebounceSeconds = 2
	}
	if cfg.Topology.ClusterThreshold == 0 {
		cfg.Topology.ClusterThreshold = 0.7
	}
	if cfg.Topology.EdgeThreshold == 0 {
		cfg.Topology.EdgeThreshold = 0.5
	}
	if cfg.Topology.MaxEdges == 0 {
		cfg.Topology.MaxEdges = 20
	}
}

// Save saves configuration to the global config path.
func Save(cfg *Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo saves configuration to an explicit path.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.Set("embedding", cfg.Embedding)
	v.Set("chunking", cfg.Chunking)
	v.Set("search", cfg.Search)
	v.Set("storage", cfg.Storage)
	v.Set("index", cfg.Index)
	v.Set("watch", cfg.Watch)
	v.Set("topology", cfg.Topology)
	v.Set("plugins", cfg.Plugins)
	v.Set("logging", cfg.Logging)

	return v.WriteConfig()
}

// Validate validates the configuration.
func Validate(cfg *Config) []error {
	var errs []error

	validProviders := map[string]bool{
		"ollama": true, "google": true, "openai": true, "voyage": true,
	}
	if cfg.Embedding.Provider != "" && !validProviders[cfg.Embedding.Provider] {
		errs = append(errs, fmt.Errorf("invalid embedding provider: %s", cfg.Embedding.Provider))
	}
	for _, p := range cfg.Embedding.Providers {
		if !validProviders[p] {
			errs = append(errs, fmt.Errorf("invalid embedding provider in chain: %s", p))
		}
	}

	validStrategies := map[string]bool{
		"treesitter": true, "simple": true,
	}
	if !validStrategies[cfg.Chunking.Strategy] {
		errs = append(errs, fmt.Errorf("invalid chunking strategy: %s", cfg.Chunking.Strategy))
	}
	if cfg.Chunking.StepLines > cfg.Chunking.WindowLines {
		errs = append(errs, fmt.Errorf("chunking step_lines (%d) must not exceed window_lines (%d)",
			cfg.Chunking.StepLines, cfg.Chunking.WindowLines))
	}

	if cfg.Search.DefaultTopK < 0 {
		errs = append(errs, fmt.Errorf("search default_top_k must be positive"))
	}

	if cfg.Topology.ClusterThreshold < 0 || cfg.Topology.ClusterThreshold > 1 {
		errs = append(errs, fmt.Errorf("topology cluster_threshold must be in [0, 1]"))
	}
	if cfg.Topology.EdgeThreshold < 0 || cfg.Topology.EdgeThreshold > 1 {
		errs = append(errs, fmt.Errorf("topology edge_threshold must be in [0, 1]"))
	}

	if cfg.Watch.DebounceSeconds < 0 {
		errs = append(errs, fmt.Errorf("watch debounce_seconds must not be negative"))
	}

	return errs
}

// Hash returns a hash of the configuration that affects index contents.
// A changed hash means previously indexed projects need a full reindex.
func (c *Config) Hash() string {
	data := fmt.Sprintf("%s:%s:%s:%d:%d:%d",
		c.Embedding.Provider,
		c.Embedding.Model,
		c.Chunking.Strategy,
		c.Chunking.MaxChunkSize,
		c.Chunking.WindowLines,
		c.Chunking.StepLines,
	)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}

// ProviderOrder returns the provider resolution order: a pinned
// provider alone, otherwise the configured chain.
func (c *Config) ProviderOrder() []string {
	if c.Embedding.Provider != "" {
		return []string{c.Embedding.Provider}
	}
	return c.Embedding.Providers
}

// Copy creates a deep copy of the config.
func (c *Config) Copy() *Config {
	cp := *c
	if c.Embedding.Providers != nil {
		cp.Embedding.Providers = append([]string(nil), c.Embedding.Providers...)
	}
	if c.Index.Include != nil {
		cp.Index.Include = append([]string(nil), c.Index.Include...)
	}
	if c.Index.Exclude != nil {
		cp.Index.Exclude = append([]string(nil), c.Index.Exclude...)
	}
	return &cp
}
