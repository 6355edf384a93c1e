package methods

import (
	"slices"

	"github.com/san-kum/iterlab/internal/dynamo"
	"github.com/san-kum/iterlab/internal/integrators"
	"github.com/san-kum/iterlab/internal/registry"
	"github.com/san-kum/iterlab/internal/roots"
)

// Registry maps method identifiers to constructors of ready-to-run methods.
type Registry = registry.Registry[dynamo.Config, dynamo.Method]

type Factory = registry.Factory[dynamo.Config, dynamo.Method]

const (
	NewtonRaphson = "Newton_Raphson"
	RungeKutta    = "Runge_Kutta"
)

var (
	rootVars = []string{"x"}
	odeVars  = []string{"x", "y"}
)

// methodVars lists the arguments each registered key passes to fn.
var methodVars = map[string][]string{
	NewtonRaphson:    rootVars,
	"newton_raphson": rootVars,
	"roots.newton":   rootVars,
	RungeKutta:       odeVars,
	"runge_kutta":    odeVars,
	"ode.rk4":        odeVars,
	"ode.euler":      odeVars,
}

// Vars returns the names of the arguments the method registered under key
// calls fn with: x for root-finders, x and y for ODE steppers. Unknown keys
// get x and y; resolving them fails later in Build.
func Vars(key string) []string {
	if v, ok := methodVars[key]; ok {
		return slices.Clone(v)
	}
	return slices.Clone(odeVars)
}

func nameOr(cfg dynamo.Config, fallback string) string {
	if cfg.Type != "" {
		return cfg.Type
	}
	return fallback
}

func newNewton(cfg dynamo.Config, _ *Registry) (dynamo.Method, error) {
	dx := cfg.Dx
	if dx == 0 {
		dx = dynamo.DefaultDx
	}
	return roots.NewNewton(nameOr(cfg, NewtonRaphson), cfg.Log, dx)
}

func newRK4(cfg dynamo.Config, _ *Registry) (dynamo.Method, error) {
	return integrators.NewRK4(nameOr(cfg, RungeKutta), cfg.Log), nil
}

func newEuler(cfg dynamo.Config, _ *Registry) (dynamo.Method, error) {
	return integrators.NewEuler(nameOr(cfg, "euler"), cfg.Log), nil
}

// Register installs every known method into root. The flat identifiers live
// in root itself; the roots and ode categories are attached as children.
func Register(root *Registry) error {
	flat := map[string]Factory{
		NewtonRaphson:    newNewton,
		RungeKutta:       newRK4,
		"newton_raphson": newNewton,
		"runge_kutta":    newRK4,
	}
	for key, f := range flat {
		if err := root.Register(key, f); err != nil {
			return err
		}
	}

	rootsReg, err := root.NewChild("root-finders", "roots")
	if err != nil {
		return err
	}
	if err := rootsReg.Register("newton", newNewton); err != nil {
		return err
	}

	odeReg, err := root.NewChild("ode-steppers", "ode")
	if err != nil {
		return err
	}
	if err := odeReg.Register("rk4", newRK4); err != nil {
		return err
	}
	return odeReg.Register("euler", newEuler)
}

// NewRegistry returns a fresh root registry with every method registered.
func NewRegistry() *Registry {
	reg := registry.New[dynamo.Config, dynamo.Method]("methods")
	if err := Register(reg); err != nil {
		panic(err)
	}
	return reg
}
