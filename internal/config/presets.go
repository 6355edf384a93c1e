package config

import (
	"sort"

	"github.com/san-kum/iterlab/internal/dynamo"
)

// turbineArea is pi*(11^2)^4.
const turbineArea = 673428285.7813287

const turbineFn = "6411.2*math.Pow(x/(60*A), 1.2727)*(0.5+0.1) - 1531.9 - 5.927*x + 0.0165*x*x"

func odeInput(x, y, h float64) dynamo.Input {
	return dynamo.FieldInput(map[string]float64{"init_x": x, "init_y": y, "distance": h})
}

var Presets = map[string]map[string]*File{
	"newton_raphson": {
		"turbine": {Calculator: Calculator{
			Type: "Newton_Raphson", Fn: turbineFn, Input: dynamo.ScalarInput(1000),
			IterNum: dynamo.Ptr(3), PrintInterim: true,
			Consts: map[string]float64{"A": turbineArea},
		}},
		"turbine_converge": {Calculator: Calculator{
			Type: "Newton_Raphson", Fn: turbineFn, Input: dynamo.ScalarInput(1000),
			StopDiff: dynamo.Ptr(1e-9), PrintInterim: true,
			Consts: map[string]float64{"A": turbineArea},
		}},
		"linear": {Calculator: Calculator{
			Type: "Newton_Raphson", Fn: "x - 5", Input: dynamo.ScalarInput(0),
			IterNum: dynamo.Ptr(1), PrintInterim: true,
		}},
		"sqrt2": {Calculator: Calculator{
			Type: "Newton_Raphson", Fn: "x*x - 2", Input: dynamo.ScalarInput(1),
			StopDiff: dynamo.Ptr(1e-12), PrintInterim: true,
		}},
	},
	"runge_kutta": {
		"linear": {Calculator: Calculator{
			Type: "Runge_Kutta", Fn: "1", Input: odeInput(0, 0, 0.2),
			IterNum: dynamo.Ptr(5), PrintInterim: true,
		}},
		"growth": {Calculator: Calculator{
			Type: "Runge_Kutta", Fn: "y", Input: odeInput(0, 1, 0.1),
			IterNum: dynamo.Ptr(10), PrintInterim: true,
		}},
		"decay": {Calculator: Calculator{
			Type: "Runge_Kutta", Fn: "-2*y + x", Input: odeInput(0, 1, 0.05),
			IterNum: dynamo.Ptr(40), PrintInterim: false,
		}},
	},
}

// GetPreset returns a copy so callers may edit it.
func GetPreset(family, preset string) *File {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	f, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return f.Clone()
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListFamilies() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
