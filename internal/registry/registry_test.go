package registry_test

import (
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/iterlab/internal/registry"
)

type params map[string]int

type reg = registry.Registry[params, string]

func constant(v string) registry.Factory[params, string] {
	return func(params, *reg) (string, error) { return v, nil }
}

func build(r *reg, key string) string {
	f, err := r.Resolve(key)
	Expect(err).NotTo(HaveOccurred())
	v, err := f(nil, r)
	Expect(err).NotTo(HaveOccurred())
	return v
}

var _ = Describe("Registry", func() {
	var root *reg

	BeforeEach(func() {
		root = registry.New[params, string]("methods")
	})

	Describe("Register and Resolve", func() {
		It("returns what was registered", func() {
			Expect(root.Register("newton", constant("newton-impl"))).To(Succeed())
			Expect(build(root, "newton")).To(Equal("newton-impl"))
		})

		It("reports unknown keys as not found", func() {
			_, err := root.Resolve("missing")
			Expect(err).To(MatchError(registry.ErrNotFound))
		})

		It("rejects duplicate keys and keeps the first registration", func() {
			Expect(root.Register("newton", constant("first"))).To(Succeed())
			err := root.Register("newton", constant("second"))
			Expect(err).To(MatchError(registry.ErrDuplicateKey))
			Expect(build(root, "newton")).To(Equal("first"))
		})

		It("rejects empty keys and malformed dotted keys", func() {
			Expect(root.Register("", constant("x"))).To(MatchError(registry.ErrMalformedKey))
			for _, key := range []string{"", ".newton", "ode."} {
				_, err := root.Resolve(key)
				Expect(err).To(MatchError(registry.ErrMalformedKey), "key %q", key)
			}
		})

		It("resolves a key prefixed with its own category locally", func() {
			root.MustRegister("newton", constant("newton-impl"))
			Expect(build(root, "methods.newton")).To(Equal("newton-impl"))
		})

		It("panics from MustRegister on duplicates", func() {
			root.MustRegister("newton", constant("x"))
			Expect(func() { root.MustRegister("newton", constant("y")) }).To(Panic())
		})
	})

	Describe("hierarchy", func() {
		var ode, roots *reg

		BeforeEach(func() {
			var err error
			ode, err = root.NewChild("ode methods", "ode")
			Expect(err).NotTo(HaveOccurred())
			roots, err = root.NewChild("root finders", "roots")
			Expect(err).NotTo(HaveOccurred())

			ode.MustRegister("rk4", constant("rk4-impl"))
			ode.MustRegister("euler", constant("euler-impl"))
			roots.MustRegister("newton", constant("newton-impl"))
		})

		It("delegates dotted keys to the matching child", func() {
			Expect(build(root, "ode.rk4")).To(Equal(build(ode, "rk4")))
			Expect(build(root, "ode.euler")).To(Equal(build(ode, "euler")))
		})

		It("escalates unknown categories to the root", func() {
			Expect(build(ode, "roots.newton")).To(Equal("newton-impl"))
		})

		It("does not search children for bare keys", func() {
			_, err := root.Resolve("rk4")
			Expect(err).To(MatchError(registry.ErrNotFound))
		})

		It("fails at the root instead of looping on unknown categories", func() {
			_, err := ode.Resolve("nope.rk4")
			Expect(err).To(MatchError(registry.ErrNotFound))
			_, err = root.Resolve("nope.rk4")
			Expect(err).To(MatchError(registry.ErrNotFound))
		})

		It("rejects a second child with the same category", func() {
			_, err := root.NewChild("other ode", "ode")
			Expect(err).To(MatchError(registry.ErrDuplicateCategory))
		})

		It("lists keys with child categories", func() {
			root.MustRegister("Newton_Raphson", constant("x"))
			Expect(root.Keys()).To(Equal([]string{"Newton_Raphson", "ode.euler", "ode.rk4", "roots.newton"}))
		})

		It("walks to the root", func() {
			Expect(ode.Root()).To(BeIdenticalTo(root))
			Expect(ode.Parent()).To(BeIdenticalTo(root))
			Expect(root.Parent()).To(BeNil())
		})
	})

	Describe("Build", func() {
		It("calls the resolved factory with the config and the registry", func() {
			var seen *reg
			root.MustRegister("sum", func(p params, r *reg) (string, error) {
				seen = r
				return fmt.Sprint(p["a"] + p["b"]), nil
			})

			v, err := root.Build("sum", params{"a": 2, "b": 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("5"))
			Expect(seen).To(BeIdenticalTo(root))
		})

		It("accepts a factory passed directly", func() {
			v, err := root.Build(constant("direct"), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("direct"))

			v, err = root.Build(func(params, *reg) (string, error) { return "plain", nil }, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("plain"))
		})

		It("rejects kinds that are neither keys nor factories", func() {
			_, err := root.Build(42, nil)
			Expect(err).To(MatchError(registry.ErrInvalidKind))
			_, err = root.Build(nil, nil)
			Expect(err).To(MatchError(registry.ErrInvalidKind))
		})

		It("surfaces resolution errors before construction", func() {
			_, err := root.Build("missing", nil)
			Expect(err).To(MatchError(registry.ErrNotFound))
		})

		It("prefixes construction errors with the key and keeps the cause", func() {
			cause := errors.New("boom")
			root.MustRegister("broken", func(params, *reg) (string, error) { return "", cause })

			_, err := root.Build("broken", nil)
			Expect(err).To(MatchError(cause))
			Expect(err.Error()).To(Equal("broken: boom"))
		})
	})
})
