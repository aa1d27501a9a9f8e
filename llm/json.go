package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	fenceOpenJSON = "```json"
	fenceClose    = "```"
)

// ErrInvalidJSON is matched by every *ParseError.
var ErrInvalidJSON = errors.New("llm: invalid JSON in model output")

// ParseError reports model output that is not valid JSON once code fences
// are removed.
type ParseError struct {
	// Input is the text that was handed to the decoder.
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm: parsing JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports ErrInvalidJSON as a match so callers need not type-assert.
func (e *ParseError) Is(target error) bool { return target == ErrInvalidJSON }

// StripJSONFence removes one leading "```json" and one trailing "```"
// marker, each only at the very edge of input, then trims whitespace.
func StripJSONFence(input string) string {
	input = strings.TrimPrefix(input, fenceOpenJSON)
	input = strings.TrimSuffix(input, fenceClose)
	return strings.TrimSpace(input)
}

// ExtractJSON decodes model output wrapped in a Markdown ```json fence.
// Objects decode to map[string]any and arrays to []any. Integer literals
// decode exactly: to int64, or to *big.Int when they overflow it. Other
// numbers decode to float64.
func ExtractJSON(input string) (any, error) {
	var raw json.RawMessage
	if err := UnmarshalFenced(input, &raw); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{Input: string(raw), Err: err}
	}
	return convertNumbers(v), nil
}

// convertNumbers replaces every json.Number in v, in place.
func convertNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		return numberValue(v)
	case map[string]any:
		for k, e := range v {
			v[k] = convertNumbers(e)
		}
	case []any:
		for i, e := range v {
			v[i] = convertNumbers(e)
		}
	}
	return v
}

func numberValue(n json.Number) any {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
		if b, ok := new(big.Int).SetString(n.String(), 10); ok {
			return b
		}
	}
	// Out-of-range floats come back as ±Inf along with ErrRange.
	f, _ := n.Float64()
	return f
}

// UnmarshalFenced is ExtractJSON decoding into v.
func UnmarshalFenced(input string, v any) error {
	body := StripJSONFence(input)
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return &ParseError{Input: body, Err: err}
	}
	return nil
}
