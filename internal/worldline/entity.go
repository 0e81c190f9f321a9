package worldline

import (
	"math"

	"github.com/san-kum/geodesim/internal/dynamo"
	"github.com/san-kum/geodesim/internal/manifold"
)

// EntityLen is the length of an entity's flat state: position then the
// four tetrad vectors.
const EntityLen = 5 * manifold.Dim

// Entity is an observer with a tetrad: slot 0 is the 4-velocity, slots 1..3
// are the forward, right and up directions. Force and angular velocity are
// expressed in that local frame and accumulate until reset.
type Entity struct {
	x      manifold.Point
	dirs   [4]manifold.Vector
	force  [3]float64
	angVel [3]float64
}

// NewEntity attaches the tetrad to x. Call Orthonormalize if the tetrad is
// not already pseudo-orthonormal.
func NewEntity(x manifold.Point, vel, forward, right, up manifold.Vector) *Entity {
	e := &Entity{x: x, dirs: [4]manifold.Vector{vel, forward, right, up}}
	e.rebase()
	return e
}

func (e *Entity) Pos() manifold.Point        { return e.x }
func (e *Entity) Vel() manifold.Vector       { return e.dirs[0] }
func (e *Entity) Tetrad() [4]manifold.Vector { return e.dirs }
func (e *Entity) Force() [3]float64          { return e.force }
func (e *Entity) AngVel() [3]float64         { return e.angVel }
func (e *Entity) Len() int                   { return EntityLen }
func (e *Entity) Dir(i int) manifold.Vector  { return e.dirs[i] }

// Orthonormalize runs Gram-Schmidt under the metric at the current position.
// The 4-velocity is processed first and fixes the timelike direction.
func (e *Entity) Orthonormalize() {
	g := manifold.MetricAt(e.x)
	inner := func(a, b manifold.Vector) float64 {
		return manifold.Contract(manifold.Contract(g, a.Tensor(), 0, 0), b.Tensor(), 0, 0).Value()
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < i; j++ {
			proj := inner(e.dirs[i], e.dirs[j]) / inner(e.dirs[j], e.dirs[j])
			e.dirs[i] = e.dirs[i].Sub(e.dirs[j].Scale(proj))
		}
		e.dirs[i] = e.dirs[i].Scale(1 / math.Sqrt(math.Abs(inner(e.dirs[i], e.dirs[i]))))
	}
}

func (e *Entity) AddForce(x, y, z float64) {
	e.force[0] += x
	e.force[1] += y
	e.force[2] += z
}

func (e *Entity) AddAngVel(x, y, z float64) {
	e.angVel[0] += x
	e.angVel[1] += y
	e.angVel[2] += z
}

func (e *Entity) ResetForce()  { e.force = [3]float64{} }
func (e *Entity) ResetAngVel() { e.angVel = [3]float64{} }

// generator couples the timelike slot to each spatial slot through the
// force, and spatial slots pairwise through the angular velocity.
func (e *Entity) generator() [4][4]float64 {
	f, w := e.force, e.angVel
	return [4][4]float64{
		{0, f[0], f[1], f[2]},
		{f[0], 0, -w[2], w[1]},
		{f[1], w[2], 0, -w[0]},
		{f[2], -w[1], w[0], 0},
	}
}

// frameTerm is the flat-space change of tetrad slot j.
func (e *Entity) frameTerm(gen [4][4]float64, j int) manifold.Vector {
	out := manifold.ZeroVector(e.x)
	for i := 0; i < 4; i++ {
		if gen[i][j] == 0 {
			continue
		}
		out = out.Add(e.dirs[i].Scale(gen[i][j]))
	}
	return out
}

// Derivative returns [u, d(e_0), ..., d(e_3)] where each slot derivative is
// the generator term minus Gamma(u, e_j).
func (e *Entity) Derivative() dynamo.State {
	const d = manifold.Dim
	out := make(dynamo.State, EntityLen)

	u := e.dirs[0]
	gu := manifold.Contract(manifold.ConnectionAt(e.x), u.Tensor(), 1, 0)
	gen := e.generator()

	for j := 0; j < 4; j++ {
		transport := manifold.Contract(gu, e.dirs[j].Tensor(), 1, 0).Vector()
		frame := e.frameTerm(gen, j)
		for i := 0; i < d; i++ {
			out[(j+1)*d+i] = frame.At(i) - transport.At(i)
		}
	}

	uc := u.Components()
	copy(out[:d], uc[:])
	return out
}

func (e *Entity) ShiftInPlace(dir dynamo.State, amount float64) {
	const d = manifold.Dim
	e.x.ShiftInPlace(dir[:d], amount)
	for j := 0; j < 4; j++ {
		e.dirs[j].ShiftInPlace(dir[(j+1)*d:], amount)
	}
	e.rebase()
}

func (e *Entity) Clone() *Entity {
	c := *e
	return &c
}

// Convert reprojects the entity into conv's target chart, pushing every
// tetrad vector through the Jacobian. Accumulated force and angular
// velocity are kept; they live in the local frame.
func (e *Entity) Convert(conv manifold.Conversion) *Entity {
	out := &Entity{x: manifold.ConvertPoint(conv, e.x), force: e.force, angVel: e.angVel}
	for j := 0; j < 4; j++ {
		out.dirs[j] = manifold.ConvertVector(conv, e.dirs[j])
	}
	return out
}

func (e *Entity) State() dynamo.State {
	const d = manifold.Dim
	out := make(dynamo.State, EntityLen)
	x := e.x.Coords()
	copy(out, x[:])
	for j := 0; j < 4; j++ {
		c := e.dirs[j].Components()
		copy(out[(j+1)*d:], c[:])
	}
	return out
}

func (e *Entity) rebase() {
	for j := range e.dirs {
		e.dirs[j].Rebase(e.x)
	}
}
