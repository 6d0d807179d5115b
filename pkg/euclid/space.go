package euclid

// Vector describes the vector-space operations of a displacement type V.
type Vector[V any] interface {
	Add(o V) V
	Sub(o V) V
	// MulScalar scales every component by s.
	MulScalar(s float64) V
	// MulElem multiplies componentwise (the Hadamard product).
	MulElem(o V) V
	Dot(o V) float64
	Length() float64
}

// Point describes an affine point type P whose displacements are of type V.
//
// The origin of the space is the zero value of P.
type Point[P any, V Vector[V]] interface {
	// Sub returns the displacement from o to the receiver.
	Sub(o P) V
	// Translate moves the point by v.
	Translate(v V) P
	// ToVec returns the displacement of the point from the origin.
	ToVec() V
}

// Origin returns the origin of the space of P.
func Origin[P Point[P, V], V Vector[V]]() P {
	var o P
	return o
}

// FromVec returns the point at displacement v from the origin.
func FromVec[P Point[P, V], V Vector[V]](v V) P {
	return Origin[P, V]().Translate(v)
}
