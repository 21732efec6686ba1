// Package disk supplies vertical action and frequency fields for the
// distribution-function engine.
//
// Orbit integration in a realistic potential is out of scope here. The
// package offers two sources instead:
//
//   - [Harmonic]: closed-form actions in a harmonic vertical potential,
//     optionally displaced, compressed or modulated by simplex noise
//   - [Load]/[Save]: field sets computed elsewhere, exchanged as JSON
//
// Both implement [Source].
package disk
