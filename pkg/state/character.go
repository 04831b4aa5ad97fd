package state

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
)

const AttributeMax = 100

// Attribute is a skill or relationship as shown to players and prompts.
type Attribute struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Max   int    `json:"max,omitempty"`
}

// Character is the durable record of a player character.
type Character struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Age           int            `json:"age"`
	Gender        string         `json:"gender,omitempty"`
	Background    string         `json:"background,omitempty"`
	Skills        map[string]int `json:"skills"`
	Relationships map[string]int `json:"relationships"`
	CreatedAt     time.Time      `json:"created_at"`
}

// NewCharacter creates a character with empty skills and relationships.
func NewCharacter(name string, age int) *Character {
	return &Character{
		ID:            uuid.New(),
		Name:          name,
		Age:           age,
		Skills:        make(map[string]int),
		Relationships: make(map[string]int),
		CreatedAt:     time.Now(),
	}
}

// CharacterSummary is the reduced character view used by turns and prompts.
type CharacterSummary struct {
	Name          string      `json:"name"`
	Age           int         `json:"age"`
	Skills        []Attribute `json:"skills"`
	Relationships []Attribute `json:"relationships"`
}

// Summary lists skills and relationships above zero, sorted by name.
func (c *Character) Summary() CharacterSummary {
	return CharacterSummary{
		Name:          c.Name,
		Age:           c.Age,
		Skills:        ToAttributes(c.Skills),
		Relationships: ToAttributes(c.Relationships),
	}
}

// SkillMap returns the summary's skills keyed by name.
func (cs CharacterSummary) SkillMap() map[string]int {
	return fromAttributes(cs.Skills)
}

// RelationshipMap returns the summary's relationships keyed by name.
func (cs CharacterSummary) RelationshipMap() map[string]int {
	return fromAttributes(cs.Relationships)
}

// ToAttributes converts a sparse value map to a sorted attribute list,
// dropping entries that are not above zero.
func ToAttributes(values map[string]int) []Attribute {
	attrs := make([]Attribute, 0, len(values))
	for name, v := range values {
		if v <= 0 {
			continue
		}
		attrs = append(attrs, Attribute{Name: name, Value: v, Max: AttributeMax})
	}
	slices.SortFunc(attrs, func(a, b Attribute) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return attrs
}

func fromAttributes(attrs []Attribute) map[string]int {
	out := make(map[string]int, len(attrs))
	for _, a := range attrs {
		if a.Name == "" {
			continue
		}
		out[a.Name] = ClampVital(a.Value)
	}
	return out
}
