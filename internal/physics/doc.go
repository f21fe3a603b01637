// Package physics defines the shared vocabulary of the layout engine.
//
// The package holds plain data and validation; the numeric work lives in
// the kernel and bhtree packages:
//
//   - [Vector]: a point with one coordinate per axis
//   - [Body]: a point mass with velocity and accumulated force
//   - [Spring]: a Hooke's-law link between two bodies
//   - [Settings]: physical parameters and their defaults
//   - [Random]: the uniform source behind jitter and placement
//
// Axes are named x, y, z and then c4, c5, ... (see [AxisName]).
//
// # Errors
//
// Validation failures wrap [ErrInvalidParameter] or [ErrInvalidDimension]
// and can be tested with errors.Is. [ParameterError] carries the name of
// the offending setting.
package physics
