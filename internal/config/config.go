// Package config holds the engine's YAML-loadable configuration: search
// resource budgets and algorithm selection, loaded with environment
// variable expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// OpenListKind names one of the four open-list variants.
type OpenListKind string

const (
	OpenListStandard OpenListKind = "standard"
	OpenListBounded  OpenListKind = "bounded"
	OpenListDouble   OpenListKind = "double"
	OpenListPruned   OpenListKind = "pruned"
)

// NoveltyMetric selects the partition novelty table's score.
type NoveltyMetric string

const (
	NoveltyMetricWidth NoveltyMetric = "width"
	NoveltyMetricCount NoveltyMetric = "count"
)

// LiftedSplitterKind selects the lifted-predicate splitter.
type LiftedSplitterKind string

const (
	SplitterUnderscorePrefix LiftedSplitterKind = "underscore_prefix"
)

// Config is the root engine configuration.
type Config struct {
	Engine EngineOptions `yaml:"engine"`
	Influx InfluxConfig  `yaml:"influx"`
	Output OutputConfig  `yaml:"output"`
}

// EngineOptions configures one search run.
type EngineOptions struct {
	// Resource budgets.
	TimeBudget            time.Duration `yaml:"time_budget"`
	MemoryBudgetMB        float64       `yaml:"memory_budget_mb"`
	MemorySampleInterval  int           `yaml:"memory_sample_interval"`
	DepthBound            int           `yaml:"depth_bound"`

	// Open-list selection.
	OpenList          OpenListKind `yaml:"open_list"`
	BoundedDepth      int          `yaml:"bounded_depth"`
	DoubleAltInterval int          `yaml:"double_alt_interval"`
	PrunedSoftLimit   int          `yaml:"pruned_soft_limit"`
	PrunedAlternating bool         `yaml:"pruned_alternating"`
	PrunedBottom      int          `yaml:"pruned_bottom"`
	PrunedTop         int          `yaml:"pruned_top"`

	// Novelty tables.
	NoveltyArity        int           `yaml:"novelty_arity"`
	NoveltyMetric       NoveltyMetric `yaml:"novelty_metric"`
	NoveltySaturation   uint32        `yaml:"novelty_saturation"`
	FeaturesByPartition bool          `yaml:"features_by_partition"`

	// Relaxed-plan tracking.
	RPTracking bool `yaml:"rp_tracking"`

	LiftedSplitter LiftedSplitterKind `yaml:"lifted_splitter"`
}

// InfluxConfig holds optional InfluxDB export settings (see internal/o11y).
// No default token/org/bucket is hard-coded: leaving URL empty disables
// export entirely.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"` // supports ${ENV_VAR} interpolation
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// OutputConfig holds file-output paths for one run (see internal/report).
type OutputConfig struct {
	Directory       string `yaml:"directory"`
	PreserveHistory bool   `yaml:"preserve_history"`
}

// DefaultConfig returns a config with sensible defaults: greedy 3H ordering
// over a plain binary heap, arity-1 novelty, no resource limits.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineOptions{
			TimeBudget:           0, // 0 means unbounded
			MemoryBudgetMB:       0,
			MemorySampleInterval: 10000,
			DepthBound:           1 << 30,

			OpenList:          OpenListStandard,
			BoundedDepth:      10,
			DoubleAltInterval: 2,
			PrunedSoftLimit:   10000,

			NoveltyArity:      1,
			NoveltyMetric:     NoveltyMetricWidth,
			NoveltySaturation: 0,

			RPTracking:     true,
			LiftedSplitter: SplitterUnderscorePrefix,
		},
		Output: OutputConfig{
			Directory:       "./output",
			PreserveHistory: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, falling back to
// DefaultConfig if path is empty or the file does not exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path as YAML, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ExampleConfig returns a commented example configuration file.
func ExampleConfig() string {
	return `# Planner engine configuration file

engine:
  # Wall-clock budget, 0 = unbounded (e.g. "30s", "5m").
  time_budget: 30s

  # Resident-memory budget in MB, 0 = unbounded.
  memory_budget_mb: 2048

  # How often (in expansions) to sample resident memory.
  memory_sample_interval: 10000

  # Maximum g-value a node may carry before it is closed without expansion.
  depth_bound: 1000

  # standard | bounded | double | pruned
  open_list: standard
  bounded_depth: 10
  double_alt_interval: 2
  pruned_soft_limit: 10000
  pruned_alternating: false
  pruned_bottom: 100
  pruned_top: 1000

  # 1 or 2.
  novelty_arity: 1
  # width | count
  novelty_metric: width
  novelty_saturation: 0
  features_by_partition: false

  rp_tracking: true
  lifted_splitter: underscore_prefix

influx:
  url: ""
  token: ${INFLUX_TOKEN}
  org: ""
  bucket: ""

output:
  directory: ./output
  preserve_history: true
`
}
