package model

import "time"

// Collision policies for identifiers defined by more than one partition
const (
	CollisionWarn = "warn" // last partition wins, a warning is logged
	CollisionFail = "fail" // the load aborts
)

// Config is the complete jyutdb configuration
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Merge     MergeConfig     `yaml:"merge" mapstructure:"merge"`
	Walk      WalkConfig      `yaml:"walk" mapstructure:"walk"`
	Propagate PropagateConfig `yaml:"propagate" mapstructure:"propagate"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
}

// DataConfig says where partitions come from
type DataConfig struct {
	Dir      string `yaml:"dir" mapstructure:"dir"`           // scanned recursively for *.json
	Manifest string `yaml:"manifest" mapstructure:"manifest"` // optional ordered list of partition paths
}

// MergeConfig controls the partition loader
type MergeConfig struct {
	OnCollision string `yaml:"on_collision" mapstructure:"on_collision"`
	Validate    bool   `yaml:"validate" mapstructure:"validate"`
	Parallel    int    `yaml:"parallel" mapstructure:"parallel"` // concurrent file decodes
}

// WalkConfig controls placeholder substitution and text resolution
type WalkConfig struct {
	SelfToken string `yaml:"self_token" mapstructure:"self_token"` // stands for the entry's character in word formats
	WordToken string `yaml:"word_token" mapstructure:"word_token"` // stands for the containing word in sentence formats
	Workers   int    `yaml:"workers" mapstructure:"workers"`
}

// LegacySelfToken is the lowercase placeholder older data uses for both words and sentences
const LegacySelfToken = "__self__"

// PropagateConfig controls relation propagation
type PropagateConfig struct {
	FanOut bool `yaml:"fan_out" mapstructure:"fan_out"` // copy content from a canonical entry onto its variants
}

// OutputConfig controls the merged artifact
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	SQLite  string `yaml:"sqlite" mapstructure:"sqlite"`
	Indent  bool   `yaml:"indent" mapstructure:"indent"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Dir: "./data",
		},
		Merge: MergeConfig{
			OnCollision: CollisionWarn,
			Validate:    true,
			Parallel:    4,
		},
		Walk: WalkConfig{
			SelfToken: "__SELF__",
			WordToken: "__WORD__",
			Workers:   1,
		},
		Propagate: PropagateConfig{
			FanOut: true,
		},
		Output: OutputConfig{
			Dir:     "./dist",
			Name:    "main",
			Version: DefaultVersion,
			Indent:  true,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}
