// Package analysis characterizes geodesic flow.
//
//   - [LyapunovExponent]: largest exponent via trajectory separation
//   - [LyapunovSpectrum]: one exponent per perturbed state slot
//
// # Instability
//
// A positive exponent means nearby worldlines separate exponentially in
// affine parameter, as they do around the photon sphere:
//
//	lambda, err := analysis.LyapunovExponent(ctx, p, analysis.DefaultOptions())
//	if lambda > 0 {
//	    // unstable orbit
//	}
package analysis
