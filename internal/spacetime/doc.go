// Package spacetime holds concrete charts for the Schwarzschild and Kerr
// geometries and the transitions between them.
//
// All charts use signature (+,-,-,-) and geometric units. Mass and spin are
// carried in an explicit [Params] value; nothing here reads global state.
//
// Spherical charts become singular on the polar axis. Each family therefore
// has two stereographic companions (coordinates t-or-v, r, x, y) centred on
// theta=0 and theta=pi, and [PoleSwitch] tells a driver when to move a body
// between them.
package spacetime
