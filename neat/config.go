package neat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config stores the configuration parameters for the NEAT algorithm.
// In INI files all keys live in the [NEAT] section.
type Config struct {
	// --- Population and speciation ---
	PopulationSize         int     `ini:"population_size" yaml:"population_size"`
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	ExcessCoefficient      float64 `ini:"excess_coefficient" yaml:"excess_coefficient"`
	DisjointCoefficient    float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	WeightDiffCoefficient  float64 `ini:"weight_diff_coefficient" yaml:"weight_diff_coefficient"`
	SpeciesStagnationLimit int     `ini:"species_stagnation_limit" yaml:"species_stagnation_limit"`
	SpeciesElitismFraction float64 `ini:"species_elitism_fraction" yaml:"species_elitism_fraction"`

	// --- Mutation rates ---
	CrossoverRate       float64 `ini:"crossover_rate" yaml:"crossover_rate"`
	WeightMutationRate  float64 `ini:"weight_mutation_rate" yaml:"weight_mutation_rate"`
	WeightShiftRate     float64 `ini:"weight_shift_rate" yaml:"weight_shift_rate"`
	WeightShiftStrength float64 `ini:"weight_shift_strength" yaml:"weight_shift_strength"`
	AddConnectionRate   float64 `ini:"add_connection_rate" yaml:"add_connection_rate"`
	AddNodeRate         float64 `ini:"add_node_rate" yaml:"add_node_rate"`
	ToggleEnableRate    float64 `ini:"toggle_enable_rate" yaml:"toggle_enable_rate"`

	// --- Structural mutation details ---
	AddConnectionAttempts    int     `ini:"add_connection_attempts" yaml:"add_connection_attempts"`
	NewConnectionWeightRange float64 `ini:"new_connection_weight_range" yaml:"new_connection_weight_range"`
	AddNodeNewLinkWeight     float64 `ini:"add_node_new_link_weight" yaml:"add_node_new_link_weight"`
	AllowRecurrent           bool    `ini:"allow_recurrent" yaml:"allow_recurrent"`

	// --- Topology and activation ---
	InputNodeCount      int    `ini:"input_node_count" yaml:"input_node_count"`
	OutputNodeCount     int    `ini:"output_node_count" yaml:"output_node_count"`
	StartFullyConnected bool   `ini:"start_fully_connected" yaml:"start_fully_connected"`
	HiddenActivation    string `ini:"hidden_activation" yaml:"hidden_activation"`
	OutputActivation    string `ini:"output_activation" yaml:"output_activation"`

	// Seed for the population's random source; 0 seeds from the clock.
	Seed int64 `ini:"seed" yaml:"seed"`

	// Optional overrides for the named activations. Not serialized.
	HiddenActivationFn ActivationFunc `ini:"-" yaml:"-"`
	OutputActivationFn ActivationFunc `ini:"-" yaml:"-"`
}

// DefaultConfig returns a Config populated with the standard defaults for a
// 2-input, 1-output problem.
func DefaultConfig() *Config {
	return &Config{
		PopulationSize:           150,
		CompatibilityThreshold:   3.0,
		ExcessCoefficient:        1.0,
		DisjointCoefficient:      1.0,
		WeightDiffCoefficient:    0.4,
		SpeciesStagnationLimit:   15,
		SpeciesElitismFraction:   0.05,
		CrossoverRate:            0.75,
		WeightMutationRate:       0.8,
		WeightShiftRate:          0.9,
		WeightShiftStrength:      0.1,
		AddConnectionRate:        0.05,
		AddNodeRate:              0.03,
		ToggleEnableRate:         0.01,
		AddConnectionAttempts:    20,
		NewConnectionWeightRange: 2.0,
		AddNodeNewLinkWeight:     1.0,
		AllowRecurrent:           false,
		InputNodeCount:           2,
		OutputNodeCount:          1,
		StartFullyConnected:      false,
		HiddenActivation:         "sigmoid",
		OutputActivation:         "sigmoid",
	}
}

// LoadConfig loads configuration parameters from a file, starting from
// DefaultConfig. Files ending in .yaml or .yml are decoded as YAML; anything
// else is read as INI with the parameters in a [NEAT] section.
func LoadConfig(filePath string) (*Config, error) {
	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to decode yaml config '%s': %w", filePath, err)
		}
	default:
		cfg, err := ini.LoadSources(ini.LoadOptions{
			IgnoreInlineComment:         true,
			UnescapeValueCommentSymbols: true,
		}, filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
		}
		if err := cfg.Section("NEAT").MapTo(config); err != nil {
			return nil, fmt.Errorf("failed to map [NEAT] section: %w", err)
		}
	}

	config.HiddenActivation = cleanIniString(config.HiddenActivation)
	config.OutputActivation = cleanIniString(config.OutputActivation)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// WriteINI writes the configuration as an INI document with a [NEAT] section.
func (c *Config) WriteINI(w io.Writer) error {
	f := ini.Empty()
	if err := f.Section("NEAT").ReflectFrom(c); err != nil {
		return fmt.Errorf("failed to reflect config into [NEAT] section: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks that every parameter is within its legal range.
func (c *Config) Validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("config error: population_size must be positive")
	}
	if c.InputNodeCount <= 0 {
		return fmt.Errorf("config error: input_node_count must be positive")
	}
	if c.OutputNodeCount <= 0 {
		return fmt.Errorf("config error: output_node_count must be positive")
	}
	if c.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if c.ExcessCoefficient < 0 || c.DisjointCoefficient < 0 || c.WeightDiffCoefficient < 0 {
		return fmt.Errorf("config error: compatibility coefficients cannot be negative")
	}
	if c.SpeciesStagnationLimit <= 0 {
		return fmt.Errorf("config error: species_stagnation_limit must be positive")
	}
	if c.AddConnectionAttempts <= 0 {
		return fmt.Errorf("config error: add_connection_attempts must be positive")
	}
	if c.NewConnectionWeightRange < 0 {
		return fmt.Errorf("config error: new_connection_weight_range cannot be negative")
	}
	if c.WeightShiftStrength < 0 {
		return fmt.Errorf("config error: weight_shift_strength cannot be negative")
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"species_elitism_fraction", c.SpeciesElitismFraction},
		{"crossover_rate", c.CrossoverRate},
		{"weight_mutation_rate", c.WeightMutationRate},
		{"weight_shift_rate", c.WeightShiftRate},
		{"add_connection_rate", c.AddConnectionRate},
		{"add_node_rate", c.AddNodeRate},
		{"toggle_enable_rate", c.ToggleEnableRate},
	}
	for _, r := range rates {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", r.name)
		}
	}

	if c.HiddenActivationFn == nil {
		if _, err := GetActivation(c.HiddenActivation); err != nil {
			return fmt.Errorf("config error: hidden_activation: %w", err)
		}
	}
	if c.OutputActivationFn == nil {
		if _, err := GetActivation(c.OutputActivation); err != nil {
			return fmt.Errorf("config error: output_activation: %w", err)
		}
	}
	return nil
}

// HiddenActivationFunc returns the activation used by hidden neurons.
func (c *Config) HiddenActivationFunc() ActivationFunc {
	return c.resolveActivation(c.HiddenActivationFn, c.HiddenActivation)
}

// OutputActivationFunc returns the activation used by output neurons.
func (c *Config) OutputActivationFunc() ActivationFunc {
	return c.resolveActivation(c.OutputActivationFn, c.OutputActivation)
}

// resolveActivation falls back to Sigmoid for unknown names; Validate
// reports those as errors.
func (c *Config) resolveActivation(override ActivationFunc, name string) ActivationFunc {
	if override != nil {
		return override
	}
	if fn, err := GetActivation(name); err == nil {
		return fn
	}
	return Sigmoid
}

// InputNodeIDs returns the IDs assigned to input nodes.
func (c *Config) InputNodeIDs() []int {
	ids := make([]int, c.InputNodeCount)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// OutputNodeIDs returns the IDs assigned to output nodes. They follow the
// input IDs.
func (c *Config) OutputNodeIDs() []int {
	ids := make([]int, c.OutputNodeCount)
	for i := range ids {
		ids[i] = c.InputNodeCount + i
	}
	return ids
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
