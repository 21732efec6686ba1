// Package analysis provides diagnostics for vertical asymmetry profiles.
//
// The asymmetry A(z) produced by a distribution function is a 1D signal
// sampled on evenly spaced heights above the midplane. This package reduces
// it to scalar summaries and a wavenumber spectrum:
//
//   - [Summarize]: peak |A| and its height, RMS, zero crossings
//   - [Spectrum]: power spectrum of A(z) via FFT
//   - [DominantWavenumber]: strongest non-zero wavenumber of a spectrum
//
// # Wave Detection
//
// A bending or breathing wave shows up as oscillating A(z) with a clear
// spectral peak:
//
//	spec, err := analysis.Spectrum(zPlus, a)
//	if err == nil {
//	    k, _ := analysis.DominantWavenumber(spec)
//	    wavelength := 1 / k
//	}
package analysis
