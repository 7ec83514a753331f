package prevalence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a clonal prevalence that decodes from either a number or a numeric
// string ("0.6") in JSON, TOML and YAML documents.
type Value float64

// ParseValue parses a numeric string into a Value.
func ParseValue(s string) (Value, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return NewValue(f)
}

// NewValue returns f as a Value. Prevalences are fractions, so f must be
// finite and within [0, 1].
func NewValue(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %g is not finite", ErrInvalidValue, f)
	}
	if f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: %g is outside [0, 1]", ErrInvalidValue, f)
	}
	return Value(f), nil
}

// Float64 returns the value as a float64.
func (v Value) Float64() float64 { return float64(v) }

// MarshalJSON encodes the value as a JSON number.
func (v Value) MarshalJSON() ([]byte, error) { return json.Marshal(float64(v)) }

// UnmarshalJSON accepts a JSON number or a quoted numeric string.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseValue(s)
		if err != nil {
			return err
		}
		*v = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidValue, data)
	}
	parsed, err := NewValue(f)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler for floats, integers and strings.
func (v *Value) UnmarshalTOML(data any) error {
	var (
		parsed Value
		err    error
	)
	switch x := data.(type) {
	case float64:
		parsed, err = NewValue(x)
	case int64:
		parsed, err = NewValue(float64(x))
	case string:
		parsed, err = ParseValue(x)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidValue, data)
	}
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler for scalar nodes.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: line %d: expected scalar", ErrInvalidValue, node.Line)
	}
	parsed, err := ParseValue(node.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
