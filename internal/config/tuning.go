package config

import (
	_ "embed"

	"github.com/jwebster45206/lifesim-engine/pkg/sim"
)

//go:embed tuning.yaml
var defaultTuning []byte

// LoadTuning returns the simulation tuning from TuningFile, or the embedded
// defaults when no file is configured.
func (c *Config) LoadTuning() (sim.Tuning, error) {
	if c.TuningFile == "" {
		return sim.ParseTuning(defaultTuning)
	}
	return sim.LoadTuning(c.TuningFile)
}
