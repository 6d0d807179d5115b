package euclid

import "fmt"

// Point2 is a position in the plane.
type Point2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

var _ Point[Point2, Vector2] = Point2{}

// Pt2 returns the point (x, y).
func Pt2(x, y float64) Point2 {
	return Point2{X: x, Y: y}
}

func (p Point2) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point2) Sub(o Point2) Vector2 {
	return p.ToVec().Sub(o.ToVec())
}

func (p Point2) Translate(v Vector2) Point2 {
	return Point2(p.ToVec().Add(v))
}

func (p Point2) ToVec() Vector2 {
	return Vector2(p)
}
