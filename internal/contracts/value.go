package contracts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value is an optional reported figure.
// The zero Value is absent, which is different from a reported 0.
type Value struct {
	V     float64
	Valid bool
}

// Some returns a present Value
func Some(v float64) Value {
	return Value{V: v, Valid: true}
}

// None returns an absent Value
func None() Value {
	return Value{}
}

// Get returns the figure and whether it is usable.
// NaN and ±Inf count as unusable.
func (v Value) Get() (float64, bool) {
	if !v.Valid || math.IsNaN(v.V) || math.IsInf(v.V, 0) {
		return 0, false
	}
	return v.V, true
}

// Present reports whether the figure is usable
func (v Value) Present() bool {
	_, ok := v.Get()
	return ok
}

func (v Value) String() string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.V, 'g', -1, 64)
}

// MarshalJSON encodes an absent Value as null
func (v Value) MarshalJSON() ([]byte, error) {
	f, ok := v.Get()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON decodes null as absent
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// UnmarshalYAML decodes a scalar number. yaml.v3 never calls this for null
// nodes, which leaves the zero (absent) Value in place.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// MarshalYAML encodes an absent Value as null
func (v Value) MarshalYAML() (interface{}, error) {
	f, ok := v.Get()
	if !ok {
		return nil, nil
	}
	return f, nil
}
