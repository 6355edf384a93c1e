package registry

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotFound indicates no registry in the chain owns the key.
	ErrNotFound = errors.New("registry: not found")

	// ErrDuplicateKey indicates a key is already registered in this registry.
	ErrDuplicateKey = errors.New("registry: duplicate key")

	// ErrDuplicateCategory indicates a child category already exists under the parent.
	ErrDuplicateCategory = errors.New("registry: duplicate category")

	// ErrMalformedKey indicates an empty key or an empty dotted segment.
	ErrMalformedKey = errors.New("registry: malformed key")

	// ErrInvalidKind indicates Build got neither a key nor a factory.
	ErrInvalidKind = errors.New("registry: invalid kind")
)

// Factory constructs a T from its configuration. reg is the registry Build
// was called on, so factories can build nested components.
type Factory[C, T any] func(cfg C, reg *Registry[C, T]) (T, error)

// Registry maps keys to factories. Registries form a tree: a key of the form
// "category.name" is resolved in the child owning category, and keys whose
// category is unknown locally are escalated to the root.
//
// Registration is expected to happen once at startup; lookups afterwards
// are safe for concurrent use.
type Registry[C, T any] struct {
	mu       sync.RWMutex
	name     string
	category string
	entries  map[string]Factory[C, T]
	children map[string]*Registry[C, T]
	parent   *Registry[C, T]
}

// New creates a root registry. Its category is its name.
func New[C, T any](name string) *Registry[C, T] {
	return &Registry[C, T]{
		name:     name,
		category: name,
		entries:  make(map[string]Factory[C, T]),
		children: make(map[string]*Registry[C, T]),
	}
}

// NewChild creates a registry under r that owns keys prefixed with category.
func (r *Registry[C, T]) NewChild(name, category string) (*Registry[C, T], error) {
	if category == "" || strings.Contains(category, ".") {
		return nil, fmt.Errorf("%w: category %q", ErrMalformedKey, category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.children[category]; exists {
		return nil, fmt.Errorf("%w: category %s exists in %s registry", ErrDuplicateCategory, category, r.name)
	}

	child := New[C, T](name)
	child.category = category
	child.parent = r
	r.children[category] = child
	return child, nil
}

func (r *Registry[C, T]) Name() string            { return r.name }
func (r *Registry[C, T]) Category() string        { return r.category }
func (r *Registry[C, T]) Parent() *Registry[C, T] { return r.parent }

// Root walks the parent chain to the top-level registry.
func (r *Registry[C, T]) Root() *Registry[C, T] {
	root := r
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Child returns the registry owning category, if any.
func (r *Registry[C, T]) Child(category string) (*Registry[C, T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.children[category]
	return c, ok
}

// Register stores factory under key. A key may be registered once.
func (r *Registry[C, T]) Register(key string, factory Factory[C, T]) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrMalformedKey)
	}
	if factory == nil {
		return fmt.Errorf("%w: nil factory for %q", ErrInvalidKind, key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return fmt.Errorf("%w: %s is already stored in %s", ErrDuplicateKey, key, r.name)
	}
	r.entries[key] = factory
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry[C, T]) MustRegister(key string, factory Factory[C, T]) {
	if err := r.Register(key, factory); err != nil {
		panic(err)
	}
}

func splitKey(key string) (category, name string, dotted bool) {
	idx := strings.IndexByte(key, '.')
	if idx == -1 {
		return "", key, false
	}
	return key[:idx], key[idx+1:], true
}

// Resolve returns the factory registered under key.
func (r *Registry[C, T]) Resolve(key string) (Factory[C, T], error) {
	category, name, dotted := splitKey(key)
	if name == "" || (dotted && category == "") {
		return nil, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	if !dotted || category == r.category {
		r.mu.RLock()
		f, ok := r.entries[name]
		r.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %s is not in the %s registry", ErrNotFound, key, r.name)
		}
		return f, nil
	}

	if child, ok := r.Child(category); ok {
		return child.Resolve(name)
	}

	root := r.Root()
	if root == r {
		return nil, fmt.Errorf("%w: no category %s for %s in the %s registry", ErrNotFound, category, key, r.name)
	}
	return root.Resolve(key)
}

// Has reports whether key resolves from r.
func (r *Registry[C, T]) Has(key string) bool {
	_, err := r.Resolve(key)
	return err == nil
}

// Build constructs a T. kind is either a key resolved through r or a
// factory used as is. Construction errors are prefixed with the factory's
// name and keep the original error in the chain.
func (r *Registry[C, T]) Build(kind any, cfg C) (T, error) {
	var zero T
	var factory Factory[C, T]
	var name string

	switch k := kind.(type) {
	case string:
		f, err := r.Resolve(k)
		if err != nil {
			return zero, err
		}
		factory, name = f, k
	case Factory[C, T]:
		factory = k
	case func(C, *Registry[C, T]) (T, error):
		factory = k
	case nil:
		return zero, fmt.Errorf("%w: kind is required", ErrInvalidKind)
	default:
		return zero, fmt.Errorf("%w: kind must be a string or a factory, got %T", ErrInvalidKind, kind)
	}

	if factory == nil {
		return zero, fmt.Errorf("%w: nil factory", ErrInvalidKind)
	}
	if name == "" {
		name = funcName(factory)
	}

	v, err := factory(cfg, r)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func funcName(f any) string {
	fn := runtime.FuncForPC(reflect.ValueOf(f).Pointer())
	if fn == nil {
		return "factory"
	}
	full := fn.Name()
	if idx := strings.LastIndexByte(full, '/'); idx != -1 {
		full = full[idx+1:]
	}
	return full
}

// Keys returns every key resolvable from r, children prefixed with their
// category, in sorted order.
func (r *Registry[C, T]) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	children := make([]*Registry[C, T], 0, len(r.children))
	for _, c := range r.children {
		children = append(children, c)
	}
	r.mu.RUnlock()

	for _, c := range children {
		for _, k := range c.Keys() {
			keys = append(keys, c.category+"."+k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys registered directly in r.
func (r *Registry[C, T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
