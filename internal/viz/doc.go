// Package viz renders force layouts in the terminal.
//
// The live view is a Bubble Tea program:
//
//   - [Model]: steps a layout every frame and draws it on a braille [Canvas]
//   - [Picker]: chooses a generated graph before showing its layout
//
// Layouts with two axes are drawn directly. With three or more, the first
// three axes are projected through a rotatable [Camera].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	S     - Single step while paused
//	+/-   - Zoom
//	x/y/z - Rotate the camera (shift reverses)
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
