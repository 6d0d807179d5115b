package euclid

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Vector2 is a displacement in the plane.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var _ Vector[Vector2] = Vector2{}

// Vec2 returns the vector ⟨x, y⟩.
func Vec2(x, y float64) Vector2 {
	return Vector2{X: x, Y: y}
}

func (v Vector2) sdf() v2.Vec {
	return v2.Vec{X: v.X, Y: v.Y}
}

func fromSdf2(v v2.Vec) Vector2 {
	return Vector2{X: v.X, Y: v.Y}
}

func (v Vector2) String() string {
	return fmt.Sprintf("⟨%g, %g⟩", v.X, v.Y)
}

func (v Vector2) Add(o Vector2) Vector2 {
	return fromSdf2(v.sdf().Add(o.sdf()))
}

func (v Vector2) Sub(o Vector2) Vector2 {
	return fromSdf2(v.sdf().Sub(o.sdf()))
}

func (v Vector2) MulScalar(s float64) Vector2 {
	return fromSdf2(v.sdf().MulScalar(s))
}

func (v Vector2) MulElem(o Vector2) Vector2 {
	return fromSdf2(v.sdf().Mul(o.sdf()))
}

func (v Vector2) Dot(o Vector2) float64 {
	return v.sdf().Dot(o.sdf())
}

func (v Vector2) Length() float64 {
	return v.sdf().Length()
}

// Cross returns the z component of the 3D cross product of v and o.
func (v Vector2) Cross(o Vector2) float64 {
	return v.X*o.Y - v.Y*o.X
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector2) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y)
}
