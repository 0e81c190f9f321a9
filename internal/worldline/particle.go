package worldline

import (
	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/manifold"
)

// ParticleLen is the length of a particle's flat state: position then velocity.
const ParticleLen = 2 * manifold.Dim

// Particle follows a geodesic.
type Particle struct {
	x manifold.Point
	v manifold.Vector
}

// NewParticle attaches v to x.
func NewParticle(x manifold.Point, v manifold.Vector) *Particle {
	v.Rebase(x)
	return &Particle{x: x, v: v}
}

func (p *Particle) Pos() manifold.Point  { return p.x }
func (p *Particle) Vel() manifold.Vector { return p.v }
func (p *Particle) Len() int             { return ParticleLen }

// Derivative returns [v, -Gamma(v, v)].
func (p *Particle) Derivative() dynamo.State {
	acc := geodesicTerm(p.x, p.v, p.v)
	out := make(dynamo.State, ParticleLen)
	v := p.v.Components()
	for i := 0; i < manifold.Dim; i++ {
		out[i] = v[i]
		out[manifold.Dim+i] = -acc.At(i)
	}
	return out
}

// ShiftInPlace advances position and velocity by amount*dir.
func (p *Particle) ShiftInPlace(dir dynamo.State, amount float64) {
	p.x.ShiftInPlace(dir[:manifold.Dim], amount)
	p.v.ShiftInPlace(dir[manifold.Dim:], amount)
	p.v.Rebase(p.x)
}

func (p *Particle) Clone() *Particle {
	c := *p
	return &c
}

// Convert reprojects the particle into conv's target chart.
func (p *Particle) Convert(conv manifold.Conversion) *Particle {
	v := manifold.ConvertVector(conv, p.v)
	return &Particle{x: v.Point(), v: v}
}

// State flattens the particle as [x, v].
func (p *Particle) State() dynamo.State {
	out := make(dynamo.State, ParticleLen)
	x, v := p.x.Coords(), p.v.Components()
	copy(out, x[:])
	copy(out[manifold.Dim:], v[:])
	return out
}

// geodesicTerm contracts the connection at x with u and w: Gamma^a_bc u^b w^c.
func geodesicTerm(x manifold.Point, u, w manifold.Vector) manifold.Vector {
	gu := manifold.Contract(manifold.ConnectionAt(x), u.Tensor(), 1, 0)
	return manifold.Contract(gu, w.Tensor(), 1, 0).Vector()
}
