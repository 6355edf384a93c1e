package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/iterlab/internal/dynamo"
	"github.com/san-kum/iterlab/internal/sim"
)

var _ = Describe("Driver", func() {
	var (
		log    *memLog
		m      *fixedPoint
		obs    *stepRecorder
		driver *sim.Driver
		calls  int
	)

	BeforeEach(func() {
		log = &memLog{}
		m = newFixedPoint(log)
		obs = &stepRecorder{}
		driver = sim.New(sim.WithLogger(quietLogger()), sim.WithObserver(obs))
		calls = 0
	})

	config := func(fn func(float64) float64) dynamo.Config {
		return dynamo.Config{
			Fn:           counting(&calls, fn),
			Input:        dynamo.ScalarInput(1),
			PrintInterim: true,
			Log:          log,
		}
	}

	Describe("fixed-count mode", func() {
		It("takes exactly iter_num steps", func() {
			cfg := config(halve)
			cfg.IterNum = dynamo.Ptr(7)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Mode).To(Equal(dynamo.ModeFixed))
			Expect(res.Steps).To(Equal(7))
			Expect(res.Exhausted).To(BeFalse())
			Expect(res.Trace.Len()).To(Equal(8))
			for i, p := range res.Trace.Points {
				Expect(p.Step).To(Equal(i))
			}
			Expect(res.Final).To(Equal(dynamo.State{1.0 / 128}))
			Expect(res.Trace.Final()).To(Equal(res.Final))
			Expect(calls).To(Equal(7))
		})

		It("never checks convergence", func() {
			cfg := config(func(float64) float64 { return 3 })
			cfg.IterNum = dynamo.Ptr(5)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(5))
		})

		It("reports step 0 to observers and the interim log", func() {
			cfg := config(halve)
			cfg.IterNum = dynamo.Ptr(3)

			_, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(obs.steps).To(Equal([]int{0, 1, 2, 3}))
			Expect(log.interim).To(Equal([]string{"0: 1", "1: 0.5", "2: 0.25", "3: 0.125"}))
			Expect(log.results).To(Equal([]string{"0.125"}))
		})

		It("stays quiet without print_interim", func() {
			cfg := config(halve)
			cfg.IterNum = dynamo.Ptr(3)
			cfg.PrintInterim = false

			_, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(log.interim).To(BeEmpty())
			Expect(log.results).To(HaveLen(1))
		})
	})

	Describe("threshold mode", func() {
		It("stops once the difference no longer exceeds stop_diff", func() {
			cfg := config(halve)
			cfg.StopDiff = dynamo.Ptr(0.1)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Mode).To(Equal(dynamo.ModeThreshold))
			Expect(res.Steps).To(Equal(4))
			Expect(res.Final).To(Equal(dynamo.State{0.0625}))
			Expect(res.Exhausted).To(BeFalse())
			Expect(log.warns).To(BeEmpty())
		})

		It("always takes the first step", func() {
			cfg := config(func(x float64) float64 { return x })
			cfg.StopDiff = dynamo.Ptr(1.0)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(1))
			Expect(res.Trace.Len()).To(Equal(2))
		})

		It("treats a negative stop_diff as its absolute value and warns", func() {
			cfg := config(halve)
			cfg.StopDiff = dynamo.Ptr(-0.1)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(4))
			Expect(log.warns).To(Equal([]string{`"stop_diff" is set to positive. (calculate with absolute value)`}))
		})

		It("stops at the safety cap exactly", func() {
			cfg := config(increment)
			cfg.StopDiff = dynamo.Ptr(0.5)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Exhausted).To(BeTrue())
			Expect(res.Steps).To(Equal(dynamo.MaxSteps))
			Expect(res.Trace.Len()).To(Equal(dynamo.MaxSteps + 1))
			Expect(res.Final).To(Equal(dynamo.State{float64(dynamo.MaxSteps + 1)}))
			Expect(calls).To(Equal(dynamo.MaxSteps))
			Expect(log.warns).To(Equal([]string{`For "stop_diff", calculate up to 10,000 times.`}))
			Expect(log.results).To(HaveLen(1))
		})

		It("leaves the loop when the difference is NaN", func() {
			cfg := config(func(float64) float64 { return math.NaN() })
			cfg.StopDiff = dynamo.Ptr(1e-9)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Steps).To(Equal(1))
			Expect(math.IsNaN(res.Final[0])).To(BeTrue())
		})

		It("lets infinities propagate until the cap", func() {
			cfg := config(func(x float64) float64 { return x*2 + 1 })
			cfg.StopDiff = dynamo.Ptr(1e-9)

			res, err := driver.Run(context.Background(), m, cfg)
			Expect(err).NotTo(HaveOccurred())
			// Inf - Inf is NaN, so the run ends on the first step after overflow.
			Expect(math.IsInf(res.Final[0], 1)).To(BeTrue())
			Expect(res.Exhausted).To(BeFalse())
		})
	})

	Describe("configuration errors", func() {
		DescribeTable("reject the run before any step",
			func(mutate func(*dynamo.Config), target error) {
				cfg := config(halve)
				mutate(&cfg)

				res, err := driver.Run(context.Background(), m, cfg)
				Expect(err).To(MatchError(target))
				Expect(res).To(BeNil())
				Expect(calls).To(BeZero())
				Expect(obs.steps).To(BeEmpty())
				Expect(log.interim).To(BeEmpty())
				Expect(log.results).To(BeEmpty())
			},
			Entry("both policies", func(c *dynamo.Config) {
				c.IterNum = dynamo.Ptr(3)
				c.StopDiff = dynamo.Ptr(0.1)
			}, dynamo.ErrConfig),
			Entry("no policy", func(c *dynamo.Config) {}, dynamo.ErrConfig),
			Entry("zero iter_num", func(c *dynamo.Config) { c.IterNum = dynamo.Ptr(0) }, dynamo.ErrConfig),
			Entry("negative iter_num", func(c *dynamo.Config) { c.IterNum = dynamo.Ptr(-2) }, dynamo.ErrConfig),
			Entry("missing fn", func(c *dynamo.Config) {
				c.IterNum = dynamo.Ptr(3)
				c.Fn = nil
			}, dynamo.ErrConfig),
			Entry("wrong input shape", func(c *dynamo.Config) {
				c.IterNum = dynamo.Ptr(3)
				c.Input = dynamo.FieldInput(map[string]float64{"init_x": 1})
			}, dynamo.ErrInvalidInput),
		)

		It("runs the method's sanity check", func() {
			m.reject = dynamo.ErrUnsupportedPolicy
			cfg := config(halve)
			cfg.StopDiff = dynamo.Ptr(0.1)

			_, err := driver.Run(context.Background(), m, cfg)
			Expect(err).To(MatchError(dynamo.ErrUnsupportedPolicy))

			var runErr *dynamo.RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			Expect(runErr.Method).To(Equal("fixed_point"))
			Expect(calls).To(BeZero())
		})
	})

	Describe("cancellation", func() {
		It("stops between steps", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			cfg := config(halve)
			cfg.IterNum = dynamo.Ptr(3)

			res, err := driver.Run(ctx, m, cfg)
			Expect(err).To(MatchError(dynamo.ErrCanceled))

			var runErr *dynamo.RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			Expect(runErr.Step).To(Equal(1))
			Expect(res.Trace.Len()).To(Equal(1))
			Expect(log.results).To(BeEmpty())
		})
	})
})
