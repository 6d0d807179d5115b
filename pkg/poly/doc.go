// Package poly implements the reference primitives of the geometry contract:
// a vector-valued polynomial curve and a surface formed from two such curves
// by componentwise multiplication.
//
// They are the minimal complete conforming primitives and double as the
// conformance fixtures for consumers of package geom.
package poly
