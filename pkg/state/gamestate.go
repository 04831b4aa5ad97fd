package state

import (
	"time"
)

const (
	MinVital = 0
	MaxVital = 100

	DefaultEnergy   = 100
	DefaultHunger   = 100
	DefaultMoney    = 1000
	DefaultDay      = 1
	DefaultHour     = 8
	DefaultMinute   = 0
	DefaultMood     = "normal"
	DefaultLocation = "home"

	MoodHappy = "happy"
)

// ChoicePair holds the two open-ended options offered at the end of a narration.
// A player can refer to them on the next turn as "1" or "2".
type ChoicePair [2]string

// Valid reports whether both options are present.
func (cp *ChoicePair) Valid() bool {
	return cp != nil && cp[0] != "" && cp[1] != ""
}

// SimulationState is the per-character snapshot of the life simulation.
// It is replaced wholesale at the end of every turn.
type SimulationState struct {
	Energy         int         `json:"energy"`
	Hunger         int         `json:"hunger"` // 100 means full
	Money          int         `json:"money"`
	Day            int         `json:"day"`
	Hour           int         `json:"hour"`
	Minute         int         `json:"minute"`
	Mood           string      `json:"mood"`
	Location       string      `json:"location"`
	LastAction     string      `json:"last_action"`
	LastResponse   string      `json:"last_response,omitempty"`
	PendingChoices *ChoicePair `json:"previous_choices"`
	Timestamp      time.Time   `json:"timestamp"`
}

// NewSimulationState returns the state a character starts with when nothing
// has been cached for it yet.
func NewSimulationState() *SimulationState {
	return &SimulationState{
		Energy:   DefaultEnergy,
		Hunger:   DefaultHunger,
		Money:    DefaultMoney,
		Day:      DefaultDay,
		Hour:     DefaultHour,
		Minute:   DefaultMinute,
		Mood:     DefaultMood,
		Location: DefaultLocation,
	}
}

// Copy returns an independent copy of the state, including the choice pair.
func (s *SimulationState) Copy() *SimulationState {
	if s == nil {
		return nil
	}
	cp := *s
	if s.PendingChoices != nil {
		choices := *s.PendingChoices
		cp.PendingChoices = &choices
	}
	return &cp
}

// Normalize clamps every bounded field and carries clock overflow.
// It returns the receiver so calls can be chained.
func (s *SimulationState) Normalize() *SimulationState {
	s.Energy = ClampVital(s.Energy)
	s.Hunger = ClampVital(s.Hunger)
	if s.Money < 0 {
		s.Money = 0
	}
	s.Day, s.Hour, s.Minute = normalizeClock(s.Day, s.Hour, s.Minute)
	if s.Mood == "" {
		s.Mood = DefaultMood
	}
	if s.Location == "" {
		s.Location = DefaultLocation
	}
	return s
}

// ClampVital bounds v to [MinVital, MaxVital].
func ClampVital(v int) int {
	if v < MinVital {
		return MinVital
	}
	if v > MaxVital {
		return MaxVital
	}
	return v
}
