// Package viz renders run traces in the terminal.
//
// [Plot] draws one asciigraph chart per trace column. [Replay] is a Bubble
// Tea model that steps through a trace, drawing (x, y) trajectories on a
// Braille [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume replay
//	[ ]   - Step back/forward
//	R     - Restart
//	T     - Cycle color themes
//	?     - Show help
//	Q     - Quit
package viz
