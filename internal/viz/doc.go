// Package viz renders stored scattering runs in the terminal.
//
// [Viewer] is a Bubble Tea model that browses one run:
//
//	left/right, h/l - previous/next partial wave
//	tab             - cycle phase shift, time delay, cross section
//	t               - cycle color themes
//	q               - quit
//
// [Plot] draws a single series with asciigraph and is shared with the CLI.
package viz
