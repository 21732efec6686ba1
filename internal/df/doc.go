// Package df builds quasi-isothermal vertical distribution functions from
// precomputed action and frequency fields.
//
// A single component weights phase space by
//
//	f0(z, v) = exp(-J(z, v) * nu / sigma²) / sqrt(2π) * rho0 / sigma
//
// and derives from it the vertical density, velocity moments, a sech²
// profile fit and the density asymmetry
//
//	A(z) = (rho(+z) - rho(-z)) / (rho(+z) + rho(-z))
//
// measured about the fitted midplane. A [Composite] mixes several
// components that share one grid, each with its own dispersion.
//
// # Example
//
//	c, err := df.NewComposite(rho0, []float64{0.7, 0.3}, []float64{0.05, 0.1}, j, nu, dom, scales)
//	if err != nil {
//	    return err
//	}
//	asym := c.A()
//	vrel := c.MeanVRelative()
//
// # Immutability
//
// Everything is computed in the constructors. Accessors return copies, so
// values are safe to share between goroutines and never change after
// construction. Input fields and domains are read, never written.
//
// # Non-finite results
//
// A(z) is not guarded against rho(+z) + rho(-z) == 0; such points come out
// as NaN or Inf and must be treated as invalid by the caller.
package df
