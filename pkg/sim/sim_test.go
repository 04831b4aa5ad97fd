package sim

import (
	"sync"
	"testing"

	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seqRand returns values from a fixed sequence, clamped into [0, n).
type seqRand struct {
	values []int
	i      int
}

func (s *seqRand) IntN(n int) int {
	v := s.values[s.i%len(s.values)]
	s.i++
	if v >= n {
		v = n - 1
	}
	return v
}

func TestAdvance_FixedDraws(t *testing.T) {
	// draws: minutes offset 25 (-> 40), energy offset 3 (-> 8), hunger offset 0 (-> 10)
	sim := New(&seqRand{values: []int{25, 3, 0}}, DefaultTuning())
	prior := &state.SimulationState{Energy: 50, Hunger: 50, Money: 10, Day: 1, Hour: 23, Minute: 50, Mood: "normal", Location: "home"}

	next, step := sim.Advance(prior)

	assert.Equal(t, Step{Minutes: 40, EnergyDecay: 8, HungerDecay: 10}, step)
	assert.Equal(t, 2, next.Day)
	assert.Equal(t, 0, next.Hour)
	assert.Equal(t, 30, next.Minute)
	assert.Equal(t, 42, next.Energy)
	assert.Equal(t, 40, next.Hunger)
	assert.Equal(t, 23, prior.Hour, "prior state must not change")
}

func TestAdvance_ClampsAtZero(t *testing.T) {
	sim := New(&seqRand{values: []int{100}}, DefaultTuning())
	prior := &state.SimulationState{Energy: 3, Hunger: 5, Day: 1, Hour: 8}

	next, step := sim.Advance(prior)

	assert.Equal(t, 60, step.Minutes)
	assert.Equal(t, 14, step.EnergyDecay)
	assert.Equal(t, 24, step.HungerDecay)
	assert.Equal(t, 0, next.Energy)
	assert.Equal(t, 0, next.Hunger)
}

func TestAdvance_NilPriorUsesDefaults(t *testing.T) {
	sim := New(&seqRand{values: []int{0}}, DefaultTuning())

	next, _ := sim.Advance(nil)

	require.NotNil(t, next)
	assert.Equal(t, 1, next.Day)
	assert.Equal(t, "08:15", next.ClockString())
	assert.Equal(t, 95, next.Energy)
	assert.Equal(t, 90, next.Hunger)
}

func TestAdvance_BoundsWithSeededRand(t *testing.T) {
	tuning := DefaultTuning()
	sim := New(NewRand(42), tuning)
	s := state.NewSimulationState()

	for i := 0; i < 500; i++ {
		prevTotal := (s.Day*24+s.Hour)*60 + s.Minute
		next, step := sim.Advance(s)

		require.GreaterOrEqual(t, step.Minutes, 15)
		require.LessOrEqual(t, step.Minutes, 60)
		require.GreaterOrEqual(t, step.EnergyDecay, 5)
		require.LessOrEqual(t, step.EnergyDecay, 14)
		require.GreaterOrEqual(t, step.HungerDecay, 10)
		require.LessOrEqual(t, step.HungerDecay, 24)

		require.GreaterOrEqual(t, next.Energy, 0)
		require.LessOrEqual(t, next.Energy, 100)
		require.GreaterOrEqual(t, next.Hunger, 0)
		require.LessOrEqual(t, next.Hunger, 100)
		require.Less(t, next.Hour, 24)
		require.Less(t, next.Minute, 60)

		total := (next.Day*24+next.Hour)*60 + next.Minute
		require.Equal(t, prevTotal+step.Minutes, total)

		// keep vitals from sitting at zero forever
		if i%10 == 0 {
			next.Energy, next.Hunger = 100, 100
		}
		s = next
	}
}

func TestNewRand_SameSeedSameSequence(t *testing.T) {
	a, b := NewRand(7), NewRand(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
	assert.Equal(t, 0, a.IntN(0))
}

func TestLockedRand_Concurrent(t *testing.T) {
	r := NewRand(1)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v := Between(r, 15, 60)
				if v < 15 || v > 60 {
					t.Errorf("value out of range: %d", v)
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseTuning(t *testing.T) {
	tuning, err := ParseTuning([]byte("time_step_minutes:\n  min: 30\n  max: 30\n"))
	require.NoError(t, err)
	assert.Equal(t, Range{Min: 30, Max: 30}, tuning.TimeStepMinutes)
	assert.Equal(t, DefaultTuning().EnergyDecay, tuning.EnergyDecay)
	assert.Equal(t, 500, tuning.MaxOutputTokens)

	_, err = ParseTuning([]byte("energy_decay:\n  min: 10\n  max: 2\n"))
	assert.Error(t, err)

	_, err = ParseTuning([]byte("max_output_tokens: 0\n"))
	assert.Error(t, err)

	_, err = ParseTuning([]byte("time_step_minutes: [oops"))
	assert.Error(t, err)
}
