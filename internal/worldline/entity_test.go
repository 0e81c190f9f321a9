package worldline

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
)

func expectOrthonormal(e *Entity, tol float64) {
	eta := [4]float64{1, -1, -1, -1}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = eta[i]
			}
			ExpectWithOffset(1, manifold.Inner(e.Dir(i), e.Dir(j))).To(BeNumerically("~", want, tol), "g(e%d, e%d)", i, j)
		}
	}
}

var _ = Describe("Entity", func() {
	var (
		p     spacetime.Params
		chart spacetime.Schwarzschild
		x     manifold.Point
	)

	newEntity := func() *Entity {
		at := x
		return NewEntity(x,
			manifold.NewVector(at, manifold.Coords{1, 0.1, 0, 0.01}),
			manifold.NewVector(at, manifold.Coords{0, 1, 0, 0}),
			manifold.NewVector(at, manifold.Coords{0, 0, 1, 0}),
			manifold.NewVector(at, manifold.Coords{0.1, 0, 0, 1}),
		)
	}

	BeforeEach(func() {
		p = spacetime.Params{Mass: 1}
		chart = spacetime.Schwarzschild{P: p}
		x = manifold.NewPoint(chart, manifold.Coords{0, 10, math.Pi / 2, 0})
	})

	Describe("Orthonormalize", func() {
		It("produces a pseudo-orthonormal tetrad", func() {
			e := newEntity()
			e.Orthonormalize()
			expectOrthonormal(e, 1e-12)
		})

		It("keeps the direction of the 4-velocity", func() {
			e := newEntity()
			e.Orthonormalize()
			u := e.Vel()
			Expect(u.At(1) / u.At(0)).To(BeNumerically("~", 0.1, 1e-14))
			Expect(u.At(3) / u.At(0)).To(BeNumerically("~", 0.01, 1e-14))
		})

		It("is idempotent", func() {
			e := newEntity()
			e.Orthonormalize()
			once := e.State()
			e.Orthonormalize()
			twice := e.State()
			for i := range once {
				Expect(twice[i]).To(BeNumerically("~", once[i], 1e-12))
			}
		})
	})

	Describe("Derivative", func() {
		It("reduces to parallel transport when free", func() {
			e := newEntity()
			e.Orthonormalize()
			d := e.Derivative()
			Expect(d).To(HaveLen(EntityLen))

			u := e.Vel()
			for j := 0; j < 4; j++ {
				want := geodesicTerm(e.Pos(), u, e.Dir(j))
				for i := 0; i < manifold.Dim; i++ {
					Expect(d[(j+1)*manifold.Dim+i]).To(BeNumerically("~", -want.At(i), 1e-15))
				}
			}

			part := NewParticle(e.Pos(), u).Derivative()
			Expect(d[:2*manifold.Dim]).To(Equal(part))
		})

		It("couples the 4-velocity to the forward direction through the force", func() {
			e := newEntity()
			e.Orthonormalize()
			free := e.Derivative()

			e.AddForce(0.5, 0, 0)
			pushed := e.Derivative()

			for i := 0; i < manifold.Dim; i++ {
				Expect(pushed[manifold.Dim+i] - free[manifold.Dim+i]).To(BeNumerically("~", 0.5*e.Dir(1).At(i), 1e-14))
				Expect(pushed[2*manifold.Dim+i] - free[2*manifold.Dim+i]).To(BeNumerically("~", 0.5*e.Dir(0).At(i), 1e-14))
				Expect(pushed[3*manifold.Dim+i]).To(Equal(free[3*manifold.Dim+i]))
			}
		})

		It("rotates spatial directions through the angular velocity", func() {
			e := newEntity()
			e.Orthonormalize()
			free := e.Derivative()

			e.AddAngVel(0, 0, 2)
			spun := e.Derivative()

			for i := 0; i < manifold.Dim; i++ {
				// d(forward) gains w2*right and d(right) loses w2*forward
				Expect(spun[2*manifold.Dim+i] - free[2*manifold.Dim+i]).To(BeNumerically("~", 2*e.Dir(2).At(i), 1e-14))
				Expect(spun[3*manifold.Dim+i] - free[3*manifold.Dim+i]).To(BeNumerically("~", -2*e.Dir(1).At(i), 1e-14))
				Expect(spun[manifold.Dim+i]).To(Equal(free[manifold.Dim+i]))
			}
		})
	})

	It("accumulates and resets force and angular velocity", func() {
		e := newEntity()
		e.AddForce(1, 2, 3)
		e.AddForce(1, 0, 0)
		e.AddAngVel(0, 1, 0)
		Expect(e.Force()).To(Equal([3]float64{2, 2, 3}))
		Expect(e.AngVel()).To(Equal([3]float64{0, 1, 0}))

		e.ResetForce()
		e.ResetAngVel()
		Expect(e.Force()).To(Equal([3]float64{}))
		Expect(e.AngVel()).To(Equal([3]float64{}))
	})

	It("re-anchors every tetrad vector after a shift", func() {
		e := newEntity()
		e.ShiftInPlace(e.Derivative(), 0.25)
		for j := 0; j < 4; j++ {
			Expect(e.Dir(j).Point()).To(Equal(e.Pos()))
		}
		Expect(e.Pos().At(1)).To(BeNumerically("~", 10.025, 1e-14))
	})

	It("stays orthonormal along a short free fall", func() {
		e := newEntity()
		e.Orthonormalize()
		dp := integrators.NewDormandPrince(0.01, 0.0001, 0.1, 1e-12)
		for i := 0; i < 200; i++ {
			integrators.PropagateInPlace(dp, e, (*Entity).Derivative, integrators.UseDefault())
		}
		expectOrthonormal(e, 1e-8)
	})

	It("converts to a pole chart keeping force and orthonormality", func() {
		atlas := spacetime.NewAtlas(p)
		conv, err := atlas.Conversion(spacetime.SchwarzschildName, "schwarzschild/north-pole")
		Expect(err).NotTo(HaveOccurred())

		e := newEntity()
		e.Orthonormalize()
		e.AddForce(0, 0, 1)
		moved := e.Convert(conv)

		Expect(moved.Pos().Chart().Name()).To(Equal("schwarzschild/north-pole"))
		Expect(moved.Force()).To(Equal(e.Force()))
		expectOrthonormal(moved, 1e-12)
	})
})
