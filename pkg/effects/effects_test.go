package effects

import (
	"testing"

	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseline() *state.SimulationState {
	return &state.SimulationState{
		Energy: 60, Hunger: 50, Money: 500,
		Day: 2, Hour: 13, Minute: 40,
		Mood: state.DefaultMood, Location: state.DefaultLocation,
	}
}

func prior() *state.SimulationState {
	return &state.SimulationState{
		Energy: 70, Hunger: 65, Money: 500,
		Day: 2, Hour: 13, Minute: 0,
		Mood: state.DefaultMood, Location: state.DefaultLocation,
	}
}

func TestClassify_SingleRules(t *testing.T) {
	tests := []struct {
		name          string
		action        string
		skills        []state.Delta
		relationships []state.Delta
		check         func(t *testing.T, s *state.SimulationState)
	}{
		{
			name:   "music",
			action: "เล่นกีตาร์ที่สวน",
			skills: []state.Delta{{Name: SkillGuitar, Change: 5}},
			check: func(t *testing.T, s *state.SimulationState) {
				assert.Equal(t, state.MoodHappy, s.Mood)
			},
		},
		{
			name:   "study",
			action: "อ่านหนังสือประวัติศาสตร์",
			skills: []state.Delta{{Name: SkillKnowledge, Change: 4}},
		},
		{
			name:   "interview",
			action: "ไปสัมภาษณ์งาน",
			skills: []state.Delta{{Name: SkillSpeaking, Change: 3}},
		},
		{
			name:   "exercise",
			action: "ออกไปวิ่งรอบหมู่บ้าน",
			check: func(t *testing.T, s *state.SimulationState) {
				assert.Equal(t, 40, s.Energy)
				assert.Equal(t, 35, s.Hunger)
			},
		},
		{
			name:   "eating",
			action: "ทานข้าวเที่ยง",
			check: func(t *testing.T, s *state.SimulationState) {
				assert.Equal(t, 90, s.Hunger)
				assert.Equal(t, 80, s.Energy)
				assert.Equal(t, 450, s.Money)
			},
		},
		{
			name:   "no keyword",
			action: "มองท้องฟ้า",
			check: func(t *testing.T, s *state.SimulationState) {
				assert.Equal(t, baseline(), s)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.action, prior(), baseline())
			assert.Equal(t, tt.skills, res.Deltas.Skills)
			assert.Equal(t, tt.relationships, res.Deltas.Relationships)
			if tt.check != nil {
				tt.check(t, res.State)
			}
		})
	}
}

func TestClassify_Cooking(t *testing.T) {
	for _, hunger := range []int{0, 50, 70, 95, 100} {
		base := baseline()
		base.Hunger = hunger

		res := Classify("ทำอาหารเย็น", prior(), base)

		assert.Contains(t, res.Deltas.Skills, state.Delta{Name: SkillCooking, Change: 3})
		assert.Equal(t, min(100, hunger+30), res.State.Hunger, "hunger from %d", hunger)
	}
}

func TestClassify_CookingOutranksEating(t *testing.T) {
	// matches both eating ("กิน") and cooking
	res := Classify("ทำอาหารแล้วกิน", prior(), baseline())

	assert.Equal(t, []string{"eating", "cooking"}, res.Matched)
	assert.Equal(t, 80, res.State.Hunger)
	assert.Equal(t, 80, res.State.Energy, "eating still sets energy")
	assert.Equal(t, 450, res.State.Money)
}

func TestClassify_Sleeping(t *testing.T) {
	base := baseline()
	base.Energy = 3
	base.Day = 3 // simulator already crossed midnight
	base.Hour = 0
	base.Minute = 20

	res := Classify("เข้านอน", prior(), base)

	assert.Equal(t, 100, res.State.Energy)
	assert.Equal(t, 8, res.State.Hour)
	assert.Equal(t, 0, res.State.Minute)
	assert.Equal(t, prior().Day+1, res.State.Day)
	assert.Equal(t, base.Hunger, res.State.Hunger)
}

func TestClassify_SleepingOutranksExercise(t *testing.T) {
	res := Classify("วิ่งแล้วนอน", prior(), baseline())

	assert.Equal(t, []string{"exercise", "sleeping"}, res.Matched)
	assert.Equal(t, 100, res.State.Energy)
	assert.Equal(t, 35, res.State.Hunger, "exercise hunger override survives")
	assert.Equal(t, "08:00", res.State.ClockString())
}

func TestClassify_Social(t *testing.T) {
	tests := []struct {
		name          string
		action        string
		skills        []state.Delta
		relationships []state.Delta
	}{
		{
			name:          "talk to",
			action:        "คุยกับ มะลิ เรื่องงาน",
			skills:        []state.Delta{{Name: SkillSpeaking, Change: 3}},
			relationships: []state.Delta{{Name: "มะลิ", Change: 2}},
		},
		{
			name:          "meet",
			action:        "พบสมชาย",
			relationships: []state.Delta{{Name: "สมชาย", Change: 2}},
		},
		{
			name:   "keyword without a target",
			action: "อยากคุยกับ",
			skills: []state.Delta{{Name: SkillSpeaking, Change: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.action, prior(), baseline())
			assert.Equal(t, tt.skills, res.Deltas.Skills)
			assert.Equal(t, tt.relationships, res.Deltas.Relationships)
		})
	}
}

func TestClassify_DoesNotModifyInputs(t *testing.T) {
	p, b := prior(), baseline()

	Classify("กินแล้วนอน", p, b)

	assert.Equal(t, prior(), p)
	assert.Equal(t, baseline(), b)
}

func TestClassify_ClampsOverrides(t *testing.T) {
	base := baseline()
	base.Energy = 95
	base.Hunger = 90
	base.Money = 20

	res := Classify("กิน", prior(), base)

	assert.Equal(t, 100, res.State.Energy)
	assert.Equal(t, 100, res.State.Hunger)
	assert.Equal(t, 0, res.State.Money)

	base = baseline()
	base.Energy = 5
	res = Classify("ออกกำลังกาย", prior(), base)
	assert.Equal(t, 0, res.State.Energy)
}

func TestClassify_EmptyAndNil(t *testing.T) {
	res := Classify("", nil, nil)
	require.NotNil(t, res.State)
	assert.Empty(t, res.Matched)
	assert.True(t, res.Deltas.IsEmpty())
	assert.Equal(t, state.DefaultEnergy, res.State.Energy)
}

func TestRules_Order(t *testing.T) {
	var names []string
	for _, r := range Rules {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"conversation", "study", "social", "music",
		"exercise", "eating", "cooking", "sleeping",
	}, names)
}

func TestSocialTarget(t *testing.T) {
	assert.Equal(t, "แม่", SocialTarget("คุยกับแม่"))
	assert.Equal(t, "Mali", SocialTarget("พบ Mali at the cafe"))
	assert.Equal(t, "", SocialTarget("เดินเล่น"))
}
