// Package worldline contains the bodies that move through a chart: a
// free-falling [Particle] and an [Entity] that carries its own tetrad and can
// be pushed and spun.
//
// Both expose a flat derivative for the integrators and an in-place shift
// that keeps every tangent vector anchored at the current position.
package worldline
