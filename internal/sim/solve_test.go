package sim_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
	"github.com/san-kum/liesim/internal/problems"
	"github.com/san-kum/liesim/internal/sim"
	"gonum.org/v1/gonum/mat"
)

var allMethods = []integrators.Method{
	integrators.EulerLie,
	integrators.ImprovedEulerLie,
	integrators.SSPRKMK3,
	integrators.RKMK4,
}

var _ = Describe("Solve", func() {
	ctx := context.Background()

	Describe("invariant preservation", func() {
		for _, name := range problems.Names() {
			for _, method := range allMethods {
				name, method := name, method
				It("keeps "+name+" on its manifold with "+method.String(), func() {
					p, err := problems.New(name)
					Expect(err).NotTo(HaveOccurred())
					m, err := manifold.New(p.Manifold(), p.DefaultState())
					Expect(err).NotTo(HaveOccurred())

					flow, err := sim.Solve(ctx, p.Field, p.DefaultState(), 0, 2, 0.01, p.Manifold(), method)
					Expect(err).NotTo(HaveOccurred())
					Expect(flow.Len()).To(Equal(201))

					want := m.Invariant(p.DefaultState())
					for j := 0; j < flow.Len(); j++ {
						got := m.Invariant(flow.Col(j))
						for k := range want {
							Expect(got[k]).To(BeNumerically("~", want[k], 1e-7))
						}
					}
				})
			}
		}
	})

	Describe("time grid", func() {
		sphere := problems.NewSphereRotation()

		It("lands exactly on t_end with a final short step", func() {
			flow, err := sim.Solve(ctx, sphere.Field, []float64{0, 0, 1}, 0, 1, 0.3, manifold.Sphere, integrators.RKMK4)
			Expect(err).NotTo(HaveOccurred())
			times := flow.Times()
			Expect(times).To(HaveLen(5))
			Expect(times[4]).To(Equal(1.0))
			h := 0.3
			Expect(times[3]).To(Equal(3 * h))

			m, err := manifold.New(manifold.Sphere, []float64{0, 0, 1})
			Expect(err).NotTo(HaveOccurred())
			stepper, err := integrators.New(integrators.RKMK4, m)
			Expect(err).NotTo(HaveOccurred())
			y := m.Y()
			for i := 0; i < 3; i++ {
				y, err = stepper.Step(sphere.Field, float64(i)*h, y, h)
				Expect(err).NotTo(HaveOccurred())
			}
			y, err = stepper.Step(sphere.Field, times[3], y, 1-times[3])
			Expect(err).NotTo(HaveOccurred())
			Expect([]float64(flow.Final())).To(Equal([]float64(y)))
		})

		It("takes no extra step when h divides the interval", func() {
			flow, err := sim.Solve(ctx, sphere.Field, []float64{0, 0, 1}, 0, 1, 0.1, manifold.Sphere, integrators.EulerLie)
			Expect(err).NotTo(HaveOccurred())
			Expect(flow.Len()).To(Equal(11))
			Expect(flow.Times()[10]).To(Equal(1.0))
		})

		It("returns only the initial value for an empty interval", func() {
			flow, err := sim.Solve(ctx, sphere.Field, []float64{0, 1, 0}, 2, 2, 0.1, manifold.Sphere, integrators.RKMK4)
			Expect(err).NotTo(HaveOccurred())
			Expect(flow.Len()).To(Equal(1))
			Expect([]float64(flow.Col(0))).To(Equal([]float64{0, 1, 0}))
		})
	})

	Describe("errors", func() {
		sphere := problems.NewSphereRotation()
		y0 := []float64{0, 0, 1}

		DescribeTable("rejects bad arguments",
			func(y0 any, t0, t1, h float64, kind manifold.Kind, method integrators.Method, want error) {
				_, err := sim.Solve(ctx, sphere.Field, y0, t0, t1, h, kind, method)
				Expect(errors.Is(err, want)).To(BeTrue(), "got %v", err)
			},
			Entry("zero step", y0, 0.0, 1.0, 0.0, manifold.Sphere, integrators.RKMK4, dynamo.ErrInvalidStep),
			Entry("reversed interval", y0, 1.0, 0.0, 0.1, manifold.Sphere, integrators.RKMK4, dynamo.ErrInvalidInterval),
			Entry("off the sphere", []float64{1, 1, 1}, 0.0, 1.0, 0.1, manifold.Sphere, integrators.RKMK4, dynamo.ErrConstraintViolation),
			Entry("unconvertible", "north pole", 0.0, 1.0, 0.1, manifold.Sphere, integrators.RKMK4, dynamo.ErrNotConvertible),
			Entry("unknown manifold", y0, 0.0, 1.0, 0.1, manifold.Kind(7), integrators.RKMK4, dynamo.ErrUnknownManifold),
			Entry("unknown method", y0, 0.0, 1.0, 0.1, manifold.Sphere, integrators.Method(9), dynamo.ErrUnknownMethod),
		)

		It("reports the failing step", func() {
			nan := math.NaN()
			f := func(t float64, y dynamo.State) mat.Matrix {
				if t >= 0.5 {
					return mat.NewDense(3, 3, []float64{0, nan, 0, nan, 0, 0, 0, 0, 0})
				}
				return sphere.Field(t, y)
			}
			_, err := sim.Solve(ctx, f, y0, 0, 1, 0.1, manifold.Sphere, integrators.EulerLie)
			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue(), "got %v", err)
			Expect(stepErr.Step).To(Equal(6))
			Expect(stepErr.Time).To(Equal(0.5))
			Expect(errors.Is(err, dynamo.ErrConstraintViolation)).To(BeTrue())
		})

		It("stops on a cancelled context", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			res, err := sim.SolveResult(cctx, sphere.Field, y0, 0, 1, 0.1, manifold.Sphere, integrators.RKMK4)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
			Expect(res.Flow.Len()).To(Equal(1))
		})
	})

	Describe("observers and metrics", func() {
		It("sees every accepted state once", func() {
			var steps []int
			var times []float64
			obs := sim.ObserverFunc(func(step int, _ dynamo.State, t float64) {
				steps = append(steps, step)
				times = append(times, t)
			})
			flow, err := sim.Solve(ctx, problems.NewSphereRotation().Field, []float64{0, 0, 1}, 0, 0.35, 0.1,
				manifold.Sphere, integrators.SSPRKMK3, sim.WithObservers(obs))
			Expect(err).NotTo(HaveOccurred())
			Expect(steps).To(Equal([]int{0, 1, 2, 3, 4}))
			Expect(times).To(Equal(flow.Times()))
		})
	})
})

var _ = Describe("Flow", func() {
	flow, err := sim.NewFlow(
		[]dynamo.State{{1, 2}, {3, 4}, {5, 6}},
		[]float64{0, 0.5, 1},
	)

	It("indexes like its state matrix", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(flow.Len()).To(Equal(3))
		Expect(flow.Dim()).To(Equal(2))
		Expect(flow.At(1, 2)).To(Equal(6.0))
		Expect([]float64(flow.Col(1))).To(Equal([]float64{3, 4}))
		Expect(flow.Component(0)).To(Equal([]float64{1, 3, 5}))
	})

	It("unpacks into states and times", func() {
		states, times := flow.Unpack()
		Expect(states).To(HaveLen(3))
		Expect([]float64(states[2])).To(Equal([]float64{5, 6}))
		Expect(times).To(Equal([]float64{0, 0.5, 1}))
	})

	It("does not expose its storage", func() {
		y := flow.States()
		y.Set(0, 0, 100)
		flow.Col(0)[0] = 100
		flow.Times()[0] = 100
		Expect(flow.At(0, 0)).To(Equal(1.0))
		Expect(flow.Times()[0]).To(Equal(0.0))
	})

	It("rejects ragged input", func() {
		_, err := sim.NewFlow([]dynamo.State{{1, 2}, {3}}, []float64{0, 1})
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
		_, err = sim.NewFlow([]dynamo.State{{1, 2}}, []float64{0, 1})
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
	})
})

var _ = Describe("Convergence", func() {
	sphere := problems.NewSphereRotation()
	hs := []float64{0.05, 0.025, 0.0125}

	DescribeTable("observes the nominal order on the sphere",
		func(method integrators.Method, order, ratio float64) {
			res, err := sim.Convergence(context.Background(), sphere.Field, dynamo.State{0, 0, 1}, 0, 1,
				manifold.Sphere, method, hs, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Orders).To(HaveLen(2))
			last := res.Orders[len(res.Orders)-1]
			Expect(last).To(BeNumerically("~", order, 0.3))
			Expect(res.Errors[1] / res.Errors[2]).To(BeNumerically("~", ratio, 0.25*ratio))
		},
		Entry("Lie-Euler halves the error", integrators.EulerLie, 1.0, 2.0),
		Entry("improved Lie-Euler", integrators.ImprovedEulerLie, 2.0, 4.0),
		Entry("SSP-RKMK3", integrators.SSPRKMK3, 3.0, 8.0),
		Entry("RKMK4 divides the error by 16", integrators.RKMK4, 4.0, 16.0),
	)

	DescribeTable("halving h=0.01 over [0, 5]",
		func(method integrators.Method, ratio, tol float64) {
			res, err := sim.Convergence(context.Background(), sphere.Field, dynamo.State{0, 0, 1}, 0, 5,
				manifold.Sphere, method, []float64{0.01, 0.005}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Errors[0] / res.Errors[1]).To(BeNumerically("~", ratio, tol))
		},
		Entry("Lie-Euler error halves", integrators.EulerLie, 2.0, 0.1),
		Entry("RKMK4 error drops sixteenfold", integrators.RKMK4, 16.0, 0.5),
	)

	It("fails without step sizes", func() {
		_, err := sim.Convergence(context.Background(), sphere.Field, dynamo.State{0, 0, 1}, 0, 1,
			manifold.Sphere, integrators.RKMK4, nil, nil)
		Expect(errors.Is(err, dynamo.ErrInvalidStep)).To(BeTrue())
	})
})
