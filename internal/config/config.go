package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/iterlab/internal/dynamo"
	"github.com/san-kum/iterlab/internal/expr"
	"github.com/san-kum/iterlab/internal/methods"
)

const (
	DefaultType    = "Newton_Raphson"
	DefaultFn      = "x - 5"
	DefaultInput   = 0.0
	DefaultIterNum = 3
)

var ErrInvalid = errors.New("config: invalid run file")

// File is a run file. Only the calculator section is read; the raw bytes
// are kept so the run directory can store an exact copy.
type File struct {
	Calculator Calculator `yaml:"calculator"`

	raw []byte
}

type Calculator struct {
	Type         string             `yaml:"type"`
	Fn           string             `yaml:"fn"`
	Input        dynamo.Input       `yaml:"input"`
	IterNum      *int               `yaml:"iter_num,omitempty"`
	StopDiff     *float64           `yaml:"stop_diff,omitempty"`
	PrintInterim bool               `yaml:"print_interim"`
	Dx           *float64           `yaml:"dx,omitempty"`
	Consts       map[string]float64 `yaml:"consts,omitempty"`
}

// Compiler turns the fn source into a callable.
type Compiler interface {
	Compile(src string, vars []string, consts map[string]float64) (dynamo.Func, error)
}

func DefaultConfig() *File {
	return &File{
		Calculator: Calculator{
			Type:         DefaultType,
			Fn:           DefaultFn,
			Input:        dynamo.ScalarInput(DefaultInput),
			IterNum:      dynamo.Ptr(DefaultIterNum),
			PrintInterim: true,
		},
	}
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.raw = append([]byte(nil), data...)
	return f, nil
}

func Save(path string, f *File) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy without the raw bytes.
func (f *File) Clone() *File {
	c := f.Calculator
	if c.IterNum != nil {
		c.IterNum = dynamo.Ptr(*c.IterNum)
	}
	if c.StopDiff != nil {
		c.StopDiff = dynamo.Ptr(*c.StopDiff)
	}
	if c.Dx != nil {
		c.Dx = dynamo.Ptr(*c.Dx)
	}
	if v, ok := c.Input.Float(); ok {
		c.Input = dynamo.ScalarInput(v)
	} else if c.Input.Fields != nil {
		c.Input = dynamo.FieldInput(c.Input.Fields)
	}
	if c.Consts != nil {
		consts := make(map[string]float64, len(c.Consts))
		for k, v := range c.Consts {
			consts[k] = v
		}
		c.Consts = consts
	}
	return &File{Calculator: c}
}

func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}

// Raw returns the bytes the file was parsed from, or its YAML encoding
// when it was built in code.
func (f *File) Raw() ([]byte, error) {
	if f.raw != nil {
		return f.raw, nil
	}
	return f.Marshal()
}

// Validate checks the fields the loader owns. The termination policy is
// left to the run itself.
func (f *File) Validate() error {
	c := f.Calculator
	if c.Type == "" {
		return fmt.Errorf("%w: calculator.type is required", ErrInvalid)
	}
	if c.Fn == "" {
		return fmt.Errorf("%w: calculator.fn is required", ErrInvalid)
	}
	if c.Input.IsZero() {
		return fmt.Errorf("%w: calculator.input is required", ErrInvalid)
	}
	if c.Dx != nil && *c.Dx == 0 {
		return fmt.Errorf("%w: calculator.dx must be non-zero", ErrInvalid)
	}
	return nil
}

// RunConfig compiles fn with the arguments of the method named by type and
// returns the run configuration. A nil compiler uses the package-level
// expression compiler.
func (f *File) RunConfig(compiler Compiler) (dynamo.Config, error) {
	if err := f.Validate(); err != nil {
		return dynamo.Config{}, err
	}
	c := f.Calculator

	vars := methods.Vars(c.Type)
	var (
		fn  dynamo.Func
		err error
	)
	if compiler != nil {
		fn, err = compiler.Compile(c.Fn, vars, c.Consts)
	} else {
		fn, err = expr.Compile(c.Fn, vars, c.Consts)
	}
	if err != nil {
		return dynamo.Config{}, fmt.Errorf("calculator.fn: %w", err)
	}

	cfg := dynamo.Config{
		Type:         c.Type,
		Fn:           fn,
		Input:        c.Input,
		IterNum:      c.IterNum,
		StopDiff:     c.StopDiff,
		PrintInterim: c.PrintInterim,
	}
	if c.Dx != nil {
		cfg.Dx = *c.Dx
	}
	return cfg, nil
}
