// Package viz renders distribution-function profiles in the terminal.
//
//   - [PlotProfile]: asciigraph line plot of a profile against height
//   - [Canvas]: Braille canvas used for phase-space contour maps
//   - [Browser]: Bubble Tea model paging through the profiles of a run
//
// # Key Bindings
//
//	←/→ or H/L - Previous/next view
//	Tab        - Next view
//	T          - Cycle color themes
//	?          - Show help overlay
//	Q          - Quit
package viz
