package dynamo

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"
)

func identity(args ...float64) float64 { return args[0] }

func TestValidate(t *testing.T) {
	base := Config{Fn: identity, Input: ScalarInput(1)}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		mode    Mode
	}{
		{"iter_num", func(c *Config) { c.IterNum = Ptr(3) }, nil, ModeFixed},
		{"stop_diff", func(c *Config) { c.StopDiff = Ptr(0.01) }, nil, ModeThreshold},
		{"zero stop_diff", func(c *Config) { c.StopDiff = Ptr(0.0) }, nil, ModeThreshold},
		{"both", func(c *Config) { c.IterNum = Ptr(3); c.StopDiff = Ptr(0.01) }, ErrConfig, 0},
		{"neither", func(c *Config) {}, ErrConfig, 0},
		{"zero iter_num", func(c *Config) { c.IterNum = Ptr(0) }, ErrConfig, 0},
		{"nil fn", func(c *Config) { c.IterNum = Ptr(1); c.Fn = nil }, ErrConfig, 0},
		{"no input", func(c *Config) { c.IterNum = Ptr(1); c.Input = Input{} }, ErrConfig, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)

			out, err := cfg.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.Mode() != tt.mode {
				t.Errorf("mode = %v, expected %v", out.Mode(), tt.mode)
			}
		})
	}
}

func TestValidateNormalizes(t *testing.T) {
	neg := Ptr(-0.25)
	cfg := Config{Fn: identity, Input: ScalarInput(1), StopDiff: neg}

	out, err := cfg.Validate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *out.StopDiff != 0.25 {
		t.Errorf("stop_diff = %v, expected 0.25", *out.StopDiff)
	}
	if *neg != -0.25 {
		t.Errorf("caller's stop_diff was modified to %v", *neg)
	}
	if out.Dx != DefaultDx {
		t.Errorf("dx = %v, expected %v", out.Dx, DefaultDx)
	}
	if _, ok := out.Log.(NopLog); !ok {
		t.Errorf("log = %T, expected NopLog", out.Log)
	}
}

func TestInputYAML(t *testing.T) {
	var scalar struct {
		Input Input `yaml:"input"`
	}
	if err := yaml.Unmarshal([]byte("input: 1000\n"), &scalar); err != nil {
		t.Fatalf("unmarshal scalar: %v", err)
	}
	if v, ok := scalar.Input.Float(); !ok || v != 1000 {
		t.Errorf("scalar input = %v, %v", v, ok)
	}

	var fields struct {
		Input Input `yaml:"input"`
	}
	src := "input:\n  init_x: 0\n  init_y: 1\n  distance: 0.2\n"
	if err := yaml.Unmarshal([]byte(src), &fields); err != nil {
		t.Fatalf("unmarshal fields: %v", err)
	}
	vals, err := fields.Input.Require("init_x", "init_y", "distance")
	if err != nil {
		t.Fatalf("Require: %v", err)
	}
	if vals[0] != 0 || vals[1] != 1 || vals[2] != 0.2 {
		t.Errorf("fields = %v", vals)
	}
	if got := fields.Input.String(); got != "{distance: 0.2, init_x: 0, init_y: 1}" {
		t.Errorf("String() = %q", got)
	}

	var bad struct {
		Input Input `yaml:"input"`
	}
	err = yaml.Unmarshal([]byte("input: [1, 2]\n"), &bad)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for a sequence, got %v", err)
	}
}

func TestInputRequireMissing(t *testing.T) {
	_, err := ScalarInput(3).Require("init_x")
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
