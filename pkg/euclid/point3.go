package euclid

import (
	"fmt"
	"math"
)

// Point3 is a position in 3D space.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var _ Point[Point3, Vector3] = Point3{}

// Pt3 returns the point (x, y, z).
func Pt3(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

func (p Point3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", p.X, p.Y, p.Z)
}

// Sub computes p−o.
func (p Point3) Sub(o Point3) Vector3 {
	return p.ToVec().Sub(o.ToVec())
}

func (p Point3) Translate(v Vector3) Point3 {
	return Point3(p.ToVec().Add(v))
}

func (p Point3) ToVec() Vector3 {
	return Vector3(p)
}

// MulElem multiplies the coordinates of p and o componentwise.
func (p Point3) MulElem(o Point3) Point3 {
	return Point3(p.ToVec().MulElem(o.ToVec()))
}

// Distance returns the euclidean distance between two points.
func (p Point3) Distance(o Point3) float64 {
	return p.Sub(o).Length()
}

// IsFinite reports whether no coordinate is NaN or infinite.
func (p Point3) IsFinite() bool {
	return p.ToVec().IsFinite()
}

// ApproxEqual reports whether every coordinate of p lies within tol of o.
func (p Point3) ApproxEqual(o Point3, tol float64) bool {
	return math.Abs(p.X-o.X) <= tol &&
		math.Abs(p.Y-o.Y) <= tol &&
		math.Abs(p.Z-o.Z) <= tol
}
