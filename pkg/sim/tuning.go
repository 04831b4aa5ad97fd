package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

func (r Range) validate(name string) error {
	if r.Min < 0 || r.Max < r.Min {
		return fmt.Errorf("%s: invalid range [%d,%d]", name, r.Min, r.Max)
	}
	return nil
}

// Tuning holds the simulation's per-turn progression ranges and generator limits.
type Tuning struct {
	TimeStepMinutes Range `yaml:"time_step_minutes"`
	EnergyDecay     Range `yaml:"energy_decay"`
	HungerDecay     Range `yaml:"hunger_decay"`
	MaxOutputTokens int   `yaml:"max_output_tokens"`
	HistoryWindow   int   `yaml:"history_window"`
}

// DefaultTuning returns the standard progression ranges.
func DefaultTuning() Tuning {
	return Tuning{
		TimeStepMinutes: Range{Min: 15, Max: 60},
		EnergyDecay:     Range{Min: 5, Max: 14},
		HungerDecay:     Range{Min: 10, Max: 24},
		MaxOutputTokens: 500,
		HistoryWindow:   4,
	}
}

// Validate checks every range is well formed.
func (t Tuning) Validate() error {
	if err := t.TimeStepMinutes.validate("time_step_minutes"); err != nil {
		return err
	}
	if err := t.EnergyDecay.validate("energy_decay"); err != nil {
		return err
	}
	if err := t.HungerDecay.validate("hunger_decay"); err != nil {
		return err
	}
	if t.MaxOutputTokens <= 0 {
		return fmt.Errorf("max_output_tokens must be positive")
	}
	if t.HistoryWindow < 0 {
		return fmt.Errorf("history_window cannot be negative")
	}
	return nil
}

// ParseTuning decodes YAML on top of the defaults, so a file only needs the
// fields it changes.
func ParseTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tuning{}, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Tuning{}, fmt.Errorf("invalid tuning: %w", err)
	}
	return t, nil
}

// LoadTuning reads a tuning file from disk.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("read tuning file: %w", err)
	}
	return ParseTuning(data)
}
