// Package sim advances the clock and decays vitals once per turn.
package sim

import "github.com/jwebster45206/lifesim-engine/pkg/state"

// Step records what a single Advance did.
type Step struct {
	Minutes     int `json:"minutes"`
	EnergyDecay int `json:"energy_decay"`
	HungerDecay int `json:"hunger_decay"`
}

// Simulator applies per-turn time passage and vitals decay.
type Simulator struct {
	rng    Rand
	tuning Tuning
}

// New creates a simulator drawing from rng.
func New(rng Rand, tuning Tuning) *Simulator {
	return &Simulator{rng: rng, tuning: tuning}
}

// Advance returns a new state with time moved forward and energy and hunger
// decayed. The input state is not modified.
func (s *Simulator) Advance(prior *state.SimulationState) (*state.SimulationState, Step) {
	next := prior.Copy()
	if next == nil {
		next = state.NewSimulationState()
	}

	step := Step{
		Minutes:     Between(s.rng, s.tuning.TimeStepMinutes.Min, s.tuning.TimeStepMinutes.Max),
		EnergyDecay: Between(s.rng, s.tuning.EnergyDecay.Min, s.tuning.EnergyDecay.Max),
		HungerDecay: Between(s.rng, s.tuning.HungerDecay.Min, s.tuning.HungerDecay.Max),
	}

	next.AdvanceClock(step.Minutes)
	next.Energy -= step.EnergyDecay
	next.Hunger -= step.HungerDecay
	next.Normalize()

	return next, step
}
