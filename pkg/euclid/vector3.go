package euclid

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vector3 is a displacement in 3D space.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

var _ Vector[Vector3] = Vector3{}

// Vec3 returns the vector ⟨x, y, z⟩.
func Vec3(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// FromSdf converts an sdfx vector.
func FromSdf(v v3.Vec) Vector3 {
	return Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

// Sdf returns v as an sdfx vector.
func (v Vector3) Sdf() v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vector3) String() string {
	return fmt.Sprintf("⟨%g, %g, %g⟩", v.X, v.Y, v.Z)
}

func (v Vector3) Add(o Vector3) Vector3 {
	return FromSdf(v.Sdf().Add(o.Sdf()))
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return FromSdf(v.Sdf().Sub(o.Sdf()))
}

func (v Vector3) Neg() Vector3 {
	return v.MulScalar(-1)
}

func (v Vector3) MulScalar(s float64) Vector3 {
	return FromSdf(v.Sdf().MulScalar(s))
}

func (v Vector3) MulElem(o Vector3) Vector3 {
	return FromSdf(v.Sdf().Mul(o.Sdf()))
}

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float64 {
	return v.Sdf().Dot(o.Sdf())
}

// Cross returns the cross product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return FromSdf(v.Sdf().Cross(o.Sdf()))
}

// Length returns the euclidean norm of v.
func (v Vector3) Length() float64 {
	return v.Sdf().Length()
}

// Normalize returns v scaled to unit length.
//
// The zero vector has no direction: normalizing it yields NaN components.
// Callers that need a direction must check [Vector3.IsFinite] on the result.
func (v Vector3) Normalize() Vector3 {
	return v.MulScalar(1 / v.Length())
}

// IsZero reports whether every component is exactly zero.
func (v Vector3) IsZero() bool {
	return v == Vector3{}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// ApproxEqual reports whether every component of v lies within tol of o.
func (v Vector3) ApproxEqual(o Vector3, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol &&
		math.Abs(v.Y-o.Y) <= tol &&
		math.Abs(v.Z-o.Z) <= tol
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
