package worldline

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/geodesim/internal/integrators"
	"github.com/san-kum/geodesim/internal/manifold"
	"github.com/san-kum/geodesim/internal/spacetime"
)

var _ = Describe("Particle", func() {
	var (
		p     spacetime.Params
		chart spacetime.Schwarzschild
		x     manifold.Point
		v     manifold.Vector
	)

	BeforeEach(func() {
		p = spacetime.Params{Mass: 1}
		chart = spacetime.Schwarzschild{P: p}
		x = manifold.NewPoint(chart, manifold.Coords{0, 10, 1.2, 0.3})
		v = manifold.NewVector(manifold.NewPoint(chart, manifold.Coords{}), manifold.Coords{1.2, -0.1, 0.01, 0.02})
	})

	It("attaches the velocity to the position", func() {
		part := NewParticle(x, v)
		Expect(part.Vel().Point()).To(Equal(x))
		Expect(part.Len()).To(Equal(ParticleLen))
	})

	It("returns velocity then minus the connection contracted twice", func() {
		part := NewParticle(x, v)
		d := part.Derivative()
		Expect(d).To(HaveLen(8))

		gamma := chart.Christoffel(x.Coords())
		for a := 0; a < manifold.Dim; a++ {
			Expect(d[a]).To(Equal(v.At(a)))
			want := 0.0
			for b := 0; b < manifold.Dim; b++ {
				for c := 0; c < manifold.Dim; c++ {
					want -= gamma[a][b][c] * v.At(b) * v.At(c)
				}
			}
			Expect(d[manifold.Dim+a]).To(BeNumerically("~", want, 1e-14))
		}
	})

	It("re-anchors the velocity after a shift", func() {
		part := NewParticle(x, v)
		dir := part.Derivative()
		part.ShiftInPlace(dir, 0.5)

		Expect(part.Pos().At(1)).To(BeNumerically("~", 10-0.05, 1e-15))
		Expect(part.Vel().Point()).To(Equal(part.Pos()))
		Expect(part.State()[manifold.Dim]).To(BeNumerically("~", 1.2+0.5*dir[manifold.Dim], 1e-15))
	})

	It("clones without sharing state", func() {
		part := NewParticle(x, v)
		c := part.Clone()
		c.ShiftInPlace(c.Derivative(), 1)
		Expect(part.Pos()).To(Equal(x))
	})

	It("converts between charts keeping g(v, v)", func() {
		atlas := spacetime.NewAtlas(p)
		conv, err := atlas.Conversion(spacetime.SchwarzschildName, spacetime.EddingtonName)
		Expect(err).NotTo(HaveOccurred())

		part := NewParticle(x, v)
		ef := part.Convert(conv)
		Expect(ef.Pos().Chart().Name()).To(Equal(spacetime.EddingtonName))
		Expect(ef.Vel().Point()).To(Equal(ef.Pos()))
		Expect(manifold.Inner(ef.Vel(), ef.Vel())).To(BeNumerically("~", manifold.Inner(part.Vel(), part.Vel()), 1e-12))
		Expect(ef.Pos().At(1)).To(Equal(10.0))
	})

	Describe("an outgoing radial photon", func() {
		const (
			mass   = 4.9e-6
			r0     = 2.33
			rFinal = 50.0
			maxErr = 1e-12
		)

		It("moves outward and keeps u - 2r* constant", func() {
			sun := spacetime.Params{Mass: mass}
			ef := spacetime.EddingtonFinkelstein{P: sun}
			f := 1 - 2*mass/r0

			start := manifold.NewPoint(ef, manifold.Coords{sun.AdvancedTime(0, r0), r0, math.Pi / 2, 0})
			photon := NewParticle(start, manifold.NewVector(start, manifold.Coords{2 / f, 1, 0, 0}))
			Expect(manifold.Inner(photon.Vel(), photon.Vel())).To(BeNumerically("~", 0, 1e-15))

			invariant := func(pt manifold.Point) float64 {
				return pt.At(0) - 2*sun.TortoiseRadius(pt.At(1))
			}
			want := invariant(photon.Pos())

			dp := integrators.NewDormandPrince(0.01, 0.0001, 0.1, maxErr)
			steps := 0
			prev := photon.Pos().At(1)
			for photon.Pos().At(1) < rFinal {
				integrators.PropagateInPlace(dp, photon, (*Particle).Derivative, integrators.UseDefault())
				steps++
				r := photon.Pos().At(1)
				Expect(r).To(BeNumerically(">", prev))
				prev = r
			}

			Expect(photon.State().IsValid()).To(BeTrue())
			Expect(invariant(photon.Pos())).To(BeNumerically("~", want, 10*float64(steps)*maxErr))

			r := photon.Pos().At(1)
			t := sun.StaticTime(photon.Pos().At(0), r)
			Expect(t).To(BeNumerically("~", sun.TortoiseRadius(r)-sun.TortoiseRadius(r0), 10*float64(steps)*maxErr))
		})
	})
})
