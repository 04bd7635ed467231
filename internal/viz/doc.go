// Package viz renders liesim runs in the terminal.
//
// [Model] is a Bubble Tea program that steps a problem live and draws it on a
// braille [Canvas] through an orbiting [Camera]. [Menu] picks the problem and
// method first. [Table], [Plot] and [SparklineChart] format batch results for
// the command line.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset state and parameters
//	Tab   - Select parameter, Up/Down tune it by 5%
//	[ ]   - Step through recorded history
//	x y z - Rotate the camera, + - zoom
//	T     - Cycle color themes
//	?     - Help overlay
package viz
