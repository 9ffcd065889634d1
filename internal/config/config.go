// Package config loads the controller's YAML configuration file and maps it
// onto the scheduling loop's tuning knobs. Every field has a working default
// so a missing file or empty document still yields a runnable controller.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HarvexIO/harvex/internal/inventory"
	"github.com/HarvexIO/harvex/internal/scheduler"
)

// Duration wraps time.Duration so YAML values can be written as "250ms" or
// "4s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config models the controller configuration file.
type Config struct {
	Listen string `yaml:"listen"`

	Tick          Duration `yaml:"tick"`
	PollInterval  Duration `yaml:"poll_interval"`
	CompletionGap Duration `yaml:"completion_gap"`
	Buffer        Duration `yaml:"deadline_buffer"`
	SubmitTimeout Duration `yaml:"submit_timeout"`
	CacheTTL      Duration `yaml:"cache_ttl"`
	RepeatStride  Duration `yaml:"repeat_stride"`

	ExtractFraction  float64 `yaml:"extract_fraction"`
	ThreadCost       float64 `yaml:"thread_cost"`
	DefenseTolerance float64 `yaml:"defense_tolerance"`
	ReplanFraction   float64 `yaml:"replan_fraction"`

	MaxBatchesPerCycle int `yaml:"max_batches_per_cycle"`
	Eligibility        int `yaml:"eligibility"`

	Repeat   bool   `yaml:"repeat"`
	PrepOnly bool   `yaml:"prep_only"`
	Debug    bool   `yaml:"debug"`
	Target   string `yaml:"target"`

	// Targets is the operator-supplied target inventory used when running
	// against the live agent link, where the substrate cannot discover
	// targets on its own.
	Targets []TargetConfig `yaml:"targets"`
}

// TargetConfig describes one target in the configuration file.
type TargetConfig struct {
	ID               string   `yaml:"id"`
	Controlled       bool     `yaml:"controlled"`
	CurrentValue     float64  `yaml:"current_value"`
	MaxValue         float64  `yaml:"max_value"`
	CurrentDefense   float64  `yaml:"current_defense"`
	MinDefense       float64  `yaml:"min_defense"`
	EligibilityLevel int      `yaml:"eligibility_level"`
	DepressDuration  Duration `yaml:"depress_duration"`
	AmplifyDuration  Duration `yaml:"amplify_duration"`
	ExtractDuration  Duration `yaml:"extract_duration"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:             ":8080",
		Tick:               Duration(4 * time.Second),
		PollInterval:       Duration(time.Second),
		CompletionGap:      Duration(200 * time.Millisecond),
		Buffer:             Duration(500 * time.Millisecond),
		SubmitTimeout:      Duration(2 * time.Second),
		CacheTTL:           Duration(2 * time.Second),
		RepeatStride:       Duration(time.Second),
		ExtractFraction:    0.5,
		ThreadCost:         1.75,
		DefenseTolerance:   1,
		ReplanFraction:     0.2,
		MaxBatchesPerCycle: 200,
		Eligibility:        1,
		Repeat:             true,
	}
}

// Load reads the config file at path, layered over Default. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// TargetInventory maps the configured targets onto the inventory model.
func (c Config) TargetInventory() []inventory.TargetResource {
	out := make([]inventory.TargetResource, 0, len(c.Targets))
	for _, t := range c.Targets {
		out = append(out, inventory.TargetResource{
			ID:               t.ID,
			Controlled:       t.Controlled,
			CurrentValue:     t.CurrentValue,
			MaxValue:         t.MaxValue,
			CurrentDefense:   t.CurrentDefense,
			MinDefense:       t.MinDefense,
			EligibilityLevel: t.EligibilityLevel,
			DepressDuration:  time.Duration(t.DepressDuration),
			AmplifyDuration:  time.Duration(t.AmplifyDuration),
			ExtractDuration:  time.Duration(t.ExtractDuration),
		})
	}
	return out
}

// LoopConfig maps the file onto the scheduler's tuning struct.
func (c Config) LoopConfig() scheduler.Config {
	return scheduler.Config{
		Tick:               time.Duration(c.Tick),
		PollInterval:       time.Duration(c.PollInterval),
		Gap:                time.Duration(c.CompletionGap),
		Buffer:             time.Duration(c.Buffer),
		SubmitTimeout:      time.Duration(c.SubmitTimeout),
		CacheTTL:           time.Duration(c.CacheTTL),
		RepeatStride:       time.Duration(c.RepeatStride),
		ExtractFraction:    c.ExtractFraction,
		ThreadCost:         c.ThreadCost,
		DefenseTolerance:   c.DefenseTolerance,
		ReplanFraction:     c.ReplanFraction,
		MaxBatchesPerCycle: c.MaxBatchesPerCycle,
		Eligibility:        c.Eligibility,
		Repeat:             c.Repeat,
		PrepOnly:           c.PrepOnly,
		TargetOverride:     c.Target,
		Debug:              c.Debug,
	}
}
