// Package effects maps keywords in a canonical action to skill and
// relationship deltas and to overrides of the simulated state.
//
// Rules are evaluated in table order and every matching rule fires. Overrides
// are computed from the baseline state produced by the simulator, not from
// the output of an earlier rule, so when two rules set the same field the
// later rule in the table wins.
package effects

import (
	"regexp"
	"strings"

	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

// Skill names awarded by the rule table.
const (
	SkillSpeaking  = "การพูด"
	SkillKnowledge = "ความรู้ทั่วไป"
	SkillGuitar    = "กีตาร์"
	SkillCooking   = "ทำอาหาร"
)

// Input is what a rule sees: the canonical action, the state before the turn
// and the simulator's baseline for this turn.
type Input struct {
	Action   string
	Prior    *state.SimulationState
	Baseline *state.SimulationState
}

// Rule is one row of the classification table. Effect writes its overrides
// into next and returns the deltas it contributes.
type Rule struct {
	Name     string
	Keywords []string
	Effect   func(in Input, next *state.SimulationState) state.TurnDelta
}

// Matches reports whether any keyword occurs in action.
func (r Rule) Matches(action string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(action, kw) {
			return true
		}
	}
	return false
}

// Result is the outcome of classifying one action.
type Result struct {
	State   *state.SimulationState
	Deltas  state.TurnDelta
	Matched []string
}

var socialTarget = regexp.MustCompile(`คุยกับ\s*(\S+)|พบ\s*(\S+)`)

// Rules is the classification table, lowest precedence first.
var Rules = []Rule{
	{
		Name:     "conversation",
		Keywords: []string{"พูด", "คุย", "สนทนา", "สัมภาษณ์"},
		Effect: func(Input, *state.SimulationState) state.TurnDelta {
			return skill(SkillSpeaking, 3)
		},
	},
	{
		Name:     "study",
		Keywords: []string{"อ่านหนังสือ", "เรียนรู้"},
		Effect: func(Input, *state.SimulationState) state.TurnDelta {
			return skill(SkillKnowledge, 4)
		},
	},
	{
		Name:     "social",
		Keywords: []string{"คุยกับ", "พบ"},
		Effect: func(in Input, _ *state.SimulationState) state.TurnDelta {
			target := SocialTarget(in.Action)
			if target == "" {
				return state.TurnDelta{}
			}
			return state.TurnDelta{Relationships: []state.Delta{{Name: target, Change: 2}}}
		},
	},
	{
		Name:     "music",
		Keywords: []string{"กีตาร์", "เล่นดนตรี"},
		Effect: func(_ Input, next *state.SimulationState) state.TurnDelta {
			next.Mood = state.MoodHappy
			return skill(SkillGuitar, 5)
		},
	},
	{
		Name:     "exercise",
		Keywords: []string{"ออกกำลังกาย", "วิ่ง"},
		Effect: func(in Input, next *state.SimulationState) state.TurnDelta {
			next.Energy = in.Baseline.Energy - 20
			next.Hunger = in.Baseline.Hunger - 15
			return state.TurnDelta{}
		},
	},
	{
		Name:     "eating",
		Keywords: []string{"กิน", "ทานข้าว"},
		Effect: func(in Input, next *state.SimulationState) state.TurnDelta {
			next.Hunger = in.Baseline.Hunger + 40
			next.Energy = in.Baseline.Energy + 20
			next.Money = in.Baseline.Money - 50
			return state.TurnDelta{}
		},
	},
	{
		Name:     "cooking",
		Keywords: []string{"ทำอาหาร"},
		Effect: func(in Input, next *state.SimulationState) state.TurnDelta {
			next.Hunger = min(state.MaxVital, in.Baseline.Hunger+30)
			return skill(SkillCooking, 3)
		},
	},
	{
		Name:     "sleeping",
		Keywords: []string{"นอน"},
		Effect: func(in Input, next *state.SimulationState) state.TurnDelta {
			next.Energy = state.MaxVital
			next.Day = in.Prior.Day
			next.ResetToMorning()
			return state.TurnDelta{}
		},
	},
}

// Classify runs every matching rule against action. prior and baseline are
// left untouched; the returned state holds the baseline with overrides
// applied and normalized.
func Classify(action string, prior, baseline *state.SimulationState) Result {
	return ClassifyWith(Rules, action, prior, baseline)
}

// ClassifyWith is Classify over a caller-supplied rule table.
func ClassifyWith(rules []Rule, action string, prior, baseline *state.SimulationState) Result {
	in := Input{Action: action, Baseline: baseline.Copy()}
	if in.Baseline == nil {
		in.Baseline = state.NewSimulationState()
	}
	in.Prior = prior.Copy()
	if in.Prior == nil {
		in.Prior = in.Baseline.Copy()
	}
	res := Result{State: in.Baseline.Copy()}
	if action == "" {
		return res
	}

	for _, r := range rules {
		if !r.Matches(action) {
			continue
		}
		res.Matched = append(res.Matched, r.Name)
		d := r.Effect(in, res.State)
		res.Deltas.Skills = append(res.Deltas.Skills, d.Skills...)
		res.Deltas.Relationships = append(res.Deltas.Relationships, d.Relationships...)
	}
	res.State.Normalize()
	return res
}

// SocialTarget returns the first token after "คุยกับ" or "พบ", or "".
func SocialTarget(action string) string {
	m := socialTarget.FindStringSubmatch(action)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func skill(name string, change int) state.TurnDelta {
	return state.TurnDelta{Skills: []state.Delta{{Name: name, Change: change}}}
}
