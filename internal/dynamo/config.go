package dynamo

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Input is the raw initial value of a run: a bare scalar for root-finders
// or named fields (init_x, init_y, distance) for ODE steppers.
type Input struct {
	Scalar *float64
	Fields map[string]float64
}

func ScalarInput(v float64) Input {
	return Input{Scalar: &v}
}

func FieldInput(fields map[string]float64) Input {
	c := make(map[string]float64, len(fields))
	for k, v := range fields {
		c[k] = v
	}
	return Input{Fields: c}
}

func (in Input) IsZero() bool {
	return in.Scalar == nil && len(in.Fields) == 0
}

func (in Input) Float() (float64, bool) {
	if in.Scalar == nil {
		return 0, false
	}
	return *in.Scalar, true
}

func (in Input) Field(name string) (float64, bool) {
	v, ok := in.Fields[name]
	return v, ok
}

// Require returns the named field or an ErrInvalidInput naming what is missing.
func (in Input) Require(names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, ok := in.Fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrInvalidInput, name)
		}
		out[i] = v
	}
	return out, nil
}

func (in Input) String() string {
	if in.Scalar != nil {
		return fmt.Sprintf("%g", *in.Scalar)
	}
	keys := make([]string, 0, len(in.Fields))
	for k := range in.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := "{"
	for i, k := range keys {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s: %g", k, in.Fields[k])
	}
	return s + "}"
}

func (in *Input) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v float64
		if err := node.Decode(&v); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		in.Scalar = &v
		in.Fields = nil
	case yaml.MappingNode:
		fields := make(map[string]float64)
		if err := node.Decode(&fields); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		in.Scalar = nil
		in.Fields = fields
	default:
		return fmt.Errorf("%w: input must be a number or a mapping", ErrInvalidInput)
	}
	return nil
}

func (in Input) MarshalYAML() (interface{}, error) {
	if in.Scalar != nil {
		return *in.Scalar, nil
	}
	return in.Fields, nil
}

// Config is the validated parameter bundle for one run. Exactly one of
// IterNum and StopDiff must be set.
type Config struct {
	Type         string
	Fn           Func
	Input        Input
	IterNum      *int
	StopDiff     *float64
	PrintInterim bool
	Dx           float64
	// Log is assigned by the caller once the run's log destination exists.
	Log RunLog
}

func Ptr[T any](v T) *T { return &v }

func (c Config) Mode() Mode {
	if c.StopDiff != nil {
		return ModeThreshold
	}
	return ModeFixed
}

// Validate checks the termination policy and returns a normalized copy:
// a negative stop_diff becomes its absolute value and missing optional
// fields receive their defaults.
func (c Config) Validate() (Config, error) {
	hasIter := c.IterNum != nil
	hasDiff := c.StopDiff != nil

	if hasIter && hasDiff {
		return c, fmt.Errorf("%w: use either iter_num or stop_diff, not both", ErrConfig)
	}
	if !hasIter && !hasDiff {
		return c, fmt.Errorf("%w: one of iter_num or stop_diff is required", ErrConfig)
	}
	if hasIter && *c.IterNum <= 0 {
		return c, fmt.Errorf("%w: iter_num should be a positive integer, got %d", ErrConfig, *c.IterNum)
	}
	if c.Fn == nil {
		return c, fmt.Errorf("%w: fn is required", ErrConfig)
	}
	if c.Input.IsZero() {
		return c, fmt.Errorf("%w: input is required", ErrConfig)
	}

	out := c
	if hasDiff && *c.StopDiff < 0 {
		out.StopDiff = Ptr(-*c.StopDiff)
	}
	if out.Dx == 0 {
		out.Dx = DefaultDx
	}
	if out.Log == nil {
		out.Log = NopLog{}
	}
	return out, nil
}
