// Package geom defines the parametric geometry evaluation contract that the
// rest of the kernel is written against.
//
// A curve is any type implementing [ParametricCurve]: it reports its position
// and its first and second derivatives at a scalar parameter, and it declares
// the parameter interval over which consumers should sample it. A surface is
// the two-parameter analogue, [ParametricSurface], which additionally reports
// a unit normal.
//
// Derivatives are analytic, never finite-difference estimates. Evaluation is a
// pure function of the receiver and the parameters, so any number of
// evaluations may run in parallel without synchronization.
//
// # Degeneracies
//
// Nothing in the contract returns an error. Where a derived quantity is
// undefined it is returned as an ordinary, possibly non-finite value. The
// normal of a surface is undefined wherever the two first partials are
// parallel or either vanishes; [DegenerateNormal] detects such results.
// Evaluating outside the declared parameter range is well defined for
// polynomials but not for every primitive.
package geom
