package skel

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shimware/skel/classify"
)

// Config is the top-level service configuration.
type Config struct {
	HTTPAddr      string          `yaml:"http_addr"`
	EventsDB      string          `yaml:"events_db"` // empty disables the event log
	CacheCapacity int             `yaml:"cache_capacity"`
	Scan          ScanConfig      `yaml:"scan"`
	RulesFile     string          `yaml:"rules_file"`
	Rules         []classify.Rule `yaml:"rules"`
	Layout        string          `yaml:"layout"` // default layout hint override
}

// ScanConfig bounds tree traversal.
type ScanConfig struct {
	MaxNodes int           `yaml:"max_nodes"`
	MaxDepth int           `yaml:"max_depth"`
	MaxTime  time.Duration `yaml:"max_time"`
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("skel: parse config: %w", err)
	}

	cfg.defaults()
	return &cfg, nil
}

func (c *Config) defaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8090"
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 256
	}
	if c.Scan.MaxNodes <= 0 {
		c.Scan.MaxNodes = 200
	}
	if c.Scan.MaxDepth <= 0 {
		c.Scan.MaxDepth = 10
	}
	if c.Scan.MaxTime <= 0 {
		c.Scan.MaxTime = 50 * time.Millisecond
	}
}

// LoadRulesFile reads custom mapping rules from a YAML file. The file
// holds a plain list of rules; invalid entries are dropped later during
// the engine's merge, not here.
func LoadRulesFile(path string) ([]classify.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules []classify.Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("skel: parse rules file: %w", err)
	}
	return rules, nil
}
