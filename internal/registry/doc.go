// Package registry provides a hierarchical, name-based factory registry.
//
// A root registry owns a flat namespace. Child registries own a category
// and are addressed with dotted keys:
//
//	methods := registry.New[Config, Method]("methods")
//	ode, _ := methods.NewChild("ode methods", "ode")
//	ode.MustRegister("rk4", newRK4)
//
//	f, err := methods.Resolve("ode.rk4") // resolved in the ode child
//	f, err = ode.Resolve("rk4")          // same factory
//
// # Resolution Order
//
// Resolve splits the key on the first dot:
//
//  1. no dot, or the prefix is the registry's own category: local lookup
//  2. the prefix names a child category: the child resolves the remainder
//  3. otherwise the full key is escalated to the root; a root that does
//     not own the category fails with [ErrNotFound]
//
// # Building
//
// [Registry.Build] resolves a key (or takes a factory directly) and calls it
// with the configuration and the registry itself. Errors raised by the
// factory come back prefixed with the key, wrapped with %w.
package registry
