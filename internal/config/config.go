package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CallView selects how the call graph is drawn.
type CallView string

const (
	// ViewGraph draws the call graph with a plain spring layout.
	ViewGraph CallView = "graph"
	// ViewTree layers nodes by in-degree.
	ViewTree CallView = "tree"
	// ViewSpring uses a tighter spring layout and highlights high-degree nodes.
	ViewSpring CallView = "spring"
)

// Config holds all configuration for pyg
type Config struct {
	// SourceRoot is the directory (or single file) to analyze
	SourceRoot string `yaml:"source_root" env:"PYG_SOURCE_ROOT"`

	// ClassCache is the JSON edge-list cache for the class inventory
	ClassCache string `yaml:"class_cache" env:"PYG_CLASS_CACHE"`

	// CallCache is the serialized-graph cache for the call graph
	CallCache string `yaml:"call_cache" env:"PYG_CALL_CACHE"`

	// StoreDir, when set, keeps the call graph in a badger store instead of CallCache
	StoreDir string `yaml:"store_dir" env:"PYG_STORE_DIR"`

	// Output is the path of the rendered drawing
	Output string `yaml:"output" env:"PYG_OUTPUT"`

	// MaxDepth bounds call-tree exploration
	MaxDepth int `yaml:"max_depth" env:"PYG_MAX_DEPTH"`

	// Rendering
	CallView        CallView `yaml:"call_view" env:"PYG_CALL_VIEW"`
	DegreeThreshold int      `yaml:"degree_threshold" env:"PYG_DEGREE_THRESHOLD"`
	Width           int      `yaml:"width" env:"PYG_WIDTH"`
	Height          int      `yaml:"height" env:"PYG_HEIGHT"`
	Iterations      int      `yaml:"iterations" env:"PYG_ITERATIONS"`
	Seed            int64    `yaml:"seed" env:"PYG_SEED"`

	// Logging
	Verbose bool `yaml:"verbose" env:"PYG_VERBOSE"`
	LogJSON bool `yaml:"log_json" env:"PYG_LOG_JSON"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SourceRoot:      ".",
		ClassCache:      "class_graph_data.json",
		CallCache:       "call_graph_data.msgpack",
		StoreDir:        "",
		Output:          "graph.svg",
		MaxDepth:        10,
		CallView:        ViewSpring,
		DegreeThreshold: 3,
		Width:           1200,
		Height:          1200,
		Iterations:      50,
		Seed:            1,
		Verbose:         false,
		LogJSON:         false,
	}
}

// GlobalConfigFilePath returns the global config file path (~/.pyg/config.yaml)
func GlobalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pyg", "config.yaml")
	}
	return filepath.Join(home, ".pyg", "config.yaml")
}

// ProjectConfigFilePath returns the project-level config file path (./.pyg/config.yaml)
func ProjectConfigFilePath() string {
	return filepath.Join(".pyg", "config.yaml")
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.pyg/config.yaml)
// 3. Global config (~/.pyg/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range []string{GlobalConfigFilePath(), ProjectConfigFilePath()} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PYG_SOURCE_ROOT"); v != "" {
		cfg.SourceRoot = v
	}
	if v := os.Getenv("PYG_CLASS_CACHE"); v != "" {
		cfg.ClassCache = v
	}
	if v := os.Getenv("PYG_CALL_CACHE"); v != "" {
		cfg.CallCache = v
	}
	if v := os.Getenv("PYG_STORE_DIR"); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv("PYG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("PYG_MAX_DEPTH"); v != "" {
		if i, ok := parseInt(v); ok {
			cfg.MaxDepth = i
		}
	}
	if v := os.Getenv("PYG_CALL_VIEW"); v != "" {
		cfg.CallView = CallView(v)
	}
	if v := os.Getenv("PYG_DEGREE_THRESHOLD"); v != "" {
		if i, ok := parseInt(v); ok && i > 0 {
			cfg.DegreeThreshold = i
		}
	}
	if v := os.Getenv("PYG_WIDTH"); v != "" {
		if i, ok := parseInt(v); ok && i > 0 {
			cfg.Width = i
		}
	}
	if v := os.Getenv("PYG_HEIGHT"); v != "" {
		if i, ok := parseInt(v); ok && i > 0 {
			cfg.Height = i
		}
	}
	if v := os.Getenv("PYG_ITERATIONS"); v != "" {
		if i, ok := parseInt(v); ok && i > 0 {
			cfg.Iterations = i
		}
	}
	if v := os.Getenv("PYG_SEED"); v != "" {
		if i, ok := parseInt(v); ok {
			cfg.Seed = int64(i)
		}
	}
	if v := os.Getenv("PYG_VERBOSE"); v != "" {
		cfg.Verbose = parseBool(v)
	}
	if v := os.Getenv("PYG_LOG_JSON"); v != "" {
		cfg.LogJSON = parseBool(v)
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.SourceRoot == "" {
		return fmt.Errorf("source_root is required")
	}
	if c.ClassCache == "" {
		return fmt.Errorf("class_cache is required")
	}
	if c.CallCache == "" && c.StoreDir == "" {
		return fmt.Errorf("call_cache or store_dir is required")
	}
	if c.Output == "" {
		return fmt.Errorf("output is required")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative")
	}

	switch c.CallView {
	case ViewGraph, ViewTree, ViewSpring:
	default:
		return fmt.Errorf("invalid call_view: %s (must be 'graph', 'tree' or 'spring')", c.CallView)
	}

	if c.DegreeThreshold <= 0 {
		return fmt.Errorf("degree_threshold must be positive")
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("width and height must be positive")
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive")
	}

	return nil
}

// parseInt attempts to parse a string as int
func parseInt(s string) (int, bool) {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0, false
	}
	return i, true
}

func parseBool(s string) bool {
	return s == "true" || s == "1" || s == "yes"
}
