// Package graph defines entity and relationship records and parses them
// from extraction model output.
package graph

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
)

// Record type tags emitted by the extraction prompt.
const (
	RecordEntity       = "entity"
	RecordRelationship = "relationship"
)

// Default entity types offered to the model during extraction.
const (
	EntityOrg    = "organization"
	EntityPerson = "person"
	EntityGeo    = "geo"
	EntityEvent  = "event"
)

// DefaultEntityTypes is the entity type list used when none is configured.
func DefaultEntityTypes() []string {
	return []string{EntityOrg, EntityPerson, EntityGeo, EntityEvent}
}

// EntityRecord is one ("entity", name, type, description) tuple.
type EntityRecord struct {
	RecordType  string `json:"record_type"`
	Name        string `json:"entity_name"`
	Type        string `json:"entity_type"`
	Description string `json:"entity_description"`
}

// RelationshipRecord is one ("relationship", source, target, description,
// strength) tuple.
type RelationshipRecord struct {
	RecordType  string   `json:"record_type"`
	Source      string   `json:"source_entity"`
	Target      string   `json:"target_entity"`
	Description string   `json:"relationship_description"`
	Strength    Strength `json:"relationship_strength"`
}

// StrengthKind tells which representation a Strength holds.
type StrengthKind int

const (
	StrengthText StrengthKind = iota
	StrengthInt
	StrengthFloat
)

// Strength is a relationship strength as written by the model: an integer,
// a float, or text that did not parse as a number.
type Strength struct {
	kind StrengthKind
	i    int64
	f    float64
	text string // set for StrengthText only
}

// IntStrength returns an integer strength.
func IntStrength(v int64) Strength {
	return Strength{kind: StrengthInt, i: v, f: float64(v)}
}

// FloatStrength returns a floating-point strength.
func FloatStrength(v float64) Strength {
	return Strength{kind: StrengthFloat, f: v}
}

// TextStrength returns a strength that holds s verbatim.
func TextStrength(s string) Strength {
	return Strength{kind: StrengthText, text: s}
}

// ParseStrength coerces a strength field. Numbers with no fractional part
// become integers, other numbers floats; anything else is kept as text.
// Integral values outside the int64 range stay floats, and overflowing
// literals such as "1e999" become infinite floats. Numeric strengths keep
// only their value, so "5" and "5.0" parse to equal strengths.
func ParseStrength(field string) Strength {
	f, err := strconv.ParseFloat(field, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return TextStrength(field)
	}
	if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return IntStrength(int64(f))
	}
	return FloatStrength(f)
}

// Kind reports the representation held by s.
func (s Strength) Kind() StrengthKind { return s.kind }

// Int returns the integer value, ok only for StrengthInt.
func (s Strength) Int() (int64, bool) { return s.i, s.kind == StrengthInt }

// Float64 returns the numeric value, ok for StrengthInt and StrengthFloat.
func (s Strength) Float64() (float64, bool) { return s.f, s.kind != StrengthText }

// String returns the text of a StrengthText and the shortest decimal form
// of a number.
func (s Strength) String() string {
	switch s.kind {
	case StrengthInt:
		return strconv.FormatInt(s.i, 10)
	case StrengthFloat:
		return strconv.FormatFloat(s.f, 'g', -1, 64)
	default:
		return s.text
	}
}

// MarshalJSON writes numbers as JSON numbers and text as a JSON string.
// Non-finite floats have no JSON form and are written as the strings
// "+Inf", "-Inf" or "NaN".
func (s Strength) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case StrengthInt:
		return strconv.AppendInt(nil, s.i, 10), nil
	case StrengthFloat:
		if math.IsInf(s.f, 0) || math.IsNaN(s.f) {
			return json.Marshal(s.String())
		}
		return strconv.AppendFloat(nil, s.f, 'g', -1, 64), nil
	default:
		return json.Marshal(s.text)
	}
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (s *Strength) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*s = TextStrength(text)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = ParseStrength(n.String())
	return nil
}

// ExtractedEntity is an entity ready for graph construction.
type ExtractedEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ExtractedRelationship is a weighted edge ready for graph construction.
type ExtractedRelationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// ExtractionResult holds the graph input produced from one model response.
type ExtractionResult struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

// NewExtractionResult converts parsed records into graph input. Text
// strengths carry no weight.
func NewExtractionResult(nodes []EntityRecord, rels []RelationshipRecord) ExtractionResult {
	res := ExtractionResult{
		Entities:      make([]ExtractedEntity, 0, len(nodes)),
		Relationships: make([]ExtractedRelationship, 0, len(rels)),
	}
	for _, n := range nodes {
		res.Entities = append(res.Entities, ExtractedEntity{
			Name:        n.Name,
			Type:        n.Type,
			Description: n.Description,
		})
	}
	for _, r := range rels {
		w, _ := r.Strength.Float64()
		if math.IsNaN(w) || math.IsInf(w, 0) {
			w = 0
		}
		res.Relationships = append(res.Relationships, ExtractedRelationship{
			Source:      r.Source,
			Target:      r.Target,
			Description: r.Description,
			Weight:      w,
		})
	}
	return res
}
