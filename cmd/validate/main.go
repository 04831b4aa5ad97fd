package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/lifesim-engine/pkg/sim"
)

const (
	maxTimeStepMinutes = 24 * 60
	maxHistoryWindow   = 50
	maxOutputTokens    = 8192
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <tuning.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &TuningValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Tuning file is valid!")
}

// TuningValidator checks a simulation tuning file more strictly than the
// server does at startup: unknown keys are rejected and ranges are bounded.
type TuningValidator struct {
	errors []string
}

func (v *TuningValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	ext := filepath.Ext(filename)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("tuning file must have .yaml or .yml extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	return v.validate(data, filename)
}

func (v *TuningValidator) validate(data []byte, filename string) error {
	v.errors = nil

	t := sim.DefaultTuning()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
	}

	if err := t.Validate(); err != nil {
		v.addError(err.Error())
	}
	v.validateRange("time_step_minutes", t.TimeStepMinutes, 1, maxTimeStepMinutes)
	v.validateRange("energy_decay", t.EnergyDecay, 0, 100)
	v.validateRange("hunger_decay", t.HungerDecay, 0, 100)

	if t.MaxOutputTokens > maxOutputTokens {
		v.addError(fmt.Sprintf("max_output_tokens %d exceeds %d", t.MaxOutputTokens, maxOutputTokens))
	}
	if t.HistoryWindow > maxHistoryWindow {
		v.addError(fmt.Sprintf("history_window %d exceeds %d", t.HistoryWindow, maxHistoryWindow))
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *TuningValidator) validateRange(name string, r sim.Range, lo, hi int) {
	if r.Min < lo || r.Max > hi {
		v.addError(fmt.Sprintf("%s [%d,%d] must stay within [%d,%d]", name, r.Min, r.Max, lo, hi))
	}
}

func (v *TuningValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
