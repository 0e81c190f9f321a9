// Package dynamo provides the numeric substrate shared by the integrators
// and the worldline bodies.
//
//   - [State]: flat vector with componentwise arithmetic and a norm
//   - [DerivativeFunc]: pure map from a state to its derivative
//   - [Ensemble]: runs independent propagations in parallel
//
// Nothing here knows about charts or tensors.
//
// # Example
//
//	x := dynamo.State{1, 0}
//	f := func(s dynamo.State) dynamo.State { return dynamo.State{s[1], -s[0]} }
//	next := x.Add(f(x).Scale(0.01))
//
// # Thread Safety
//
// A State is a plain slice and is NOT safe for concurrent mutation. A single
// worldline is always stepped from one goroutine; [Ensemble] parallelizes
// across worldlines only.
package dynamo
