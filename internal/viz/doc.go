// Package viz renders a running integration in the terminal with Bubble Tea.
//
// Samples reach the UI through a [Feed], which implements
// experiment.Observer, so the driver never blocks on rendering for longer
// than the feed buffer allows.
//
// # Key Bindings
//
//	x/X   - Tilt the view
//	z/Z   - Spin the view
//	+/-   - Zoom
//	?     - Show help overlay
//	q     - Quit (cancels the run)
package viz
