package state

import "maps"

const (
	// SkillSeed is the value of a skill the character has never used.
	SkillSeed = 0
	// RelationshipSeed is the value a relationship starts from on first contact.
	RelationshipSeed = 50
)

// Delta is a named, signed change to a skill or relationship.
type Delta struct {
	Name   string `json:"name"`
	Change int    `json:"change"`
}

// TurnDelta is the compact result of classifying an action: skill and
// relationship changes plus the overrides applied to the simulated state.
type TurnDelta struct {
	Skills        []Delta `json:"skill_deltas"`
	Relationships []Delta `json:"relationship_deltas"`
}

// IsEmpty checks if the TurnDelta carries no changes
func (td *TurnDelta) IsEmpty() bool {
	return td == nil || (len(td.Skills) == 0 && len(td.Relationships) == 0)
}

// ApplyDeltas folds deltas into a copy of values. Names not yet present start
// from seed. Every touched value is clamped to [MinVital, MaxVital].
func ApplyDeltas(values map[string]int, deltas []Delta, seed int) map[string]int {
	out := make(map[string]int, len(values)+len(deltas))
	maps.Copy(out, values)
	for _, d := range deltas {
		if d.Name == "" {
			continue
		}
		current, ok := out[d.Name]
		if !ok {
			current = seed
		}
		out[d.Name] = ClampVital(current + d.Change)
	}
	return out
}

// ApplySkillDeltas folds skill deltas into a copy of skills.
func ApplySkillDeltas(skills map[string]int, deltas []Delta) map[string]int {
	return ApplyDeltas(skills, deltas, SkillSeed)
}

// ApplyRelationshipDeltas folds relationship deltas into a copy of
// relationships, seeding unknown people at RelationshipSeed.
func ApplyRelationshipDeltas(relationships map[string]int, deltas []Delta) map[string]int {
	return ApplyDeltas(relationships, deltas, RelationshipSeed)
}
