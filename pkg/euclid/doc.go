// Package euclid provides the affine Euclidean spaces the geometry contract
// is written against: point types, their associated displacement vectors, and
// the vector-space operations primitives need to evaluate themselves.
//
// A point type P and its vector type V are tied together by the [Point] and
// [Vector] constraints. The zero value of every point type in this package is
// the origin and the zero value of every vector type is the zero vector.
//
// Arithmetic on [Vector3] and [Vector2] is delegated to the sdfx vector
// packages so that values can cross into sdfx without copying.
package euclid
