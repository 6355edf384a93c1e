package storage

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/san-kum/iterlab/internal/dynamo"
)

// Value is a float64 that survives JSON when it is NaN or infinite:
// non-finite values are written as the strings "NaN", "+Inf" and "-Inf".
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return json.Marshal(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return json.Marshal(f)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*v = Value(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

func Values(x dynamo.State) []Value {
	out := make([]Value, len(x))
	for i, f := range x {
		out[i] = Value(f)
	}
	return out
}

func (m *RunMetadata) FinalState() dynamo.State {
	out := make(dynamo.State, len(m.Final))
	for i, v := range m.Final {
		out[i] = float64(v)
	}
	return out
}
