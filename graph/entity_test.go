package graph

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrength(t *testing.T) {
	tests := []struct {
		field      string
		wantKind   StrengthKind
		wantInt    int64
		wantFloat  float64
		wantString string
	}{
		{"5", StrengthInt, 5, 5, "5"},
		{"5.0", StrengthInt, 5, 5, "5"},
		{"-0", StrengthInt, 0, 0, "0"},
		{"1e3", StrengthInt, 1000, 1000, "1000"},
		{"5.5", StrengthFloat, 0, 5.5, "5.5"},
		{"1e19", StrengthFloat, 0, 1e19, "1e+19"},
		{"high", StrengthText, 0, 0, "high"},
		{"5 stars", StrengthText, 0, 0, "5 stars"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			s := ParseStrength(tt.field)
			require.Equal(t, tt.wantKind, s.Kind())

			i, isInt := s.Int()
			assert.Equal(t, tt.wantKind == StrengthInt, isInt)
			if isInt {
				assert.Equal(t, tt.wantInt, i)
			}

			f, isNum := s.Float64()
			assert.Equal(t, tt.wantKind != StrengthText, isNum)
			if isNum {
				assert.Equal(t, tt.wantFloat, f)
			}
			assert.Equal(t, tt.wantString, s.String())
		})
	}
}

func TestParseStrengthEquality(t *testing.T) {
	tests := []struct {
		name string
		a, b Strength
	}{
		{"integral float text", ParseStrength("5.0"), IntStrength(5)},
		{"integer text", ParseStrength("5"), ParseStrength("5.0")},
		{"exponent", ParseStrength("1e3"), ParseStrength("1000")},
		{"negative zero", ParseStrength("-0"), IntStrength(0)},
		{"float", ParseStrength("0.50"), FloatStrength(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.a == tt.b, "%#v != %#v", tt.a, tt.b)
		})
	}

	_, relsA := ParseExtractionOutput("relationship|A|B|d|5", WithRecordDelimiter("\n"), WithTupleDelimiter("|"))
	_, relsB := ParseExtractionOutput("relationship|A|B|d|5.0", WithRecordDelimiter("\n"), WithTupleDelimiter("|"))
	require.Len(t, relsA, 1)
	require.Len(t, relsB, 1)
	assert.Equal(t, relsA[0], relsB[0])
}

func TestParseStrengthOverflow(t *testing.T) {
	s := ParseStrength("-1e999")
	require.Equal(t, StrengthFloat, s.Kind())
	f, _ := s.Float64()
	assert.True(t, math.IsInf(f, -1))
}

func TestRecordJSON(t *testing.T) {
	rel := relationship("Alice", "Bob", "knows", ParseStrength("0.8"))
	b, err := json.Marshal(rel)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"record_type": "relationship",
		"source_entity": "Alice",
		"target_entity": "Bob",
		"relationship_description": "knows",
		"relationship_strength": 0.8
	}`, string(b))

	b, err = json.Marshal(entity("Alice", "Person", "A person"))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"record_type": "entity",
		"entity_name": "Alice",
		"entity_type": "Person",
		"entity_description": "A person"
	}`, string(b))
}

func TestStrengthUnmarshalJSON(t *testing.T) {
	var rels []RelationshipRecord
	err := json.Unmarshal([]byte(`[
		{"record_type": "relationship", "relationship_strength": 7},
		{"record_type": "relationship", "relationship_strength": 0.25},
		{"record_type": "relationship", "relationship_strength": "strong"}
	]`), &rels)
	require.NoError(t, err)
	require.Len(t, rels, 3)

	assert.Equal(t, IntStrength(7), rels[0].Strength)
	assert.Equal(t, FloatStrength(0.25), rels[1].Strength)
	assert.Equal(t, TextStrength("strong"), rels[2].Strength)

	var s Strength
	assert.Error(t, json.Unmarshal([]byte(`{}`), &s))
}

func TestNewExtractionResult(t *testing.T) {
	nodes := []EntityRecord{entity("Alice", "person", "A person")}
	rels := []RelationshipRecord{
		relationship("Alice", "Bob", "knows", ParseStrength("8")),
		relationship("Alice", "Acme", "works at", ParseStrength("0.5")),
		relationship("Bob", "Acme", "visits", ParseStrength("often")),
		relationship("Bob", "Alice", "admires", ParseStrength("inf")),
	}

	res := NewExtractionResult(nodes, rels)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, ExtractedEntity{Name: "Alice", Type: "person", Description: "A person"}, res.Entities[0])

	require.Len(t, res.Relationships, 4)
	weights := make([]float64, len(res.Relationships))
	for i, r := range res.Relationships {
		weights[i] = r.Weight
	}
	assert.Equal(t, []float64{8, 0.5, 0, 0}, weights)
	assert.Equal(t, "works at", res.Relationships[1].Description)
}

func TestNewExtractionResultEmpty(t *testing.T) {
	res := NewExtractionResult(nil, nil)
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities": [], "relationships": []}`, string(b))
}
