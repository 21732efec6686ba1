// Package phasespace provides the grid primitives shared by the
// distribution-function engine.
//
// The package defines the types that describe vertical phase space
// sampled on a rectangular (z, v) grid:
//
//   - [Field]: row-major 2D scalar field indexed by (height, velocity)
//   - [Domain]: the ordered height and velocity samples that index a Field
//   - [Scales]: conversion factors from internal to physical units
//   - [Grid]: evenly spaced domain specification
//
// # Example
//
//	dom := phasespace.Grid{ZMin: -0.2, ZMax: 0.2, NZ: 81, VMin: -0.3, VMax: 0.3, NV: 121}.Domain()
//	nu := phasespace.Uniform(len(dom.Z), len(dom.V), 10.0)
//	if err := dom.Check(nu); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Fields are plain values over a shared backing slice. Readers may share a
// Field freely; nothing in this module writes to a Field it did not create.
package phasespace
