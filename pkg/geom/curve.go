package geom

import (
	"math"

	"github.com/chazu/geotrait/pkg/euclid"
)

// ParametricCurve describes a curve parametrized by a scalar.
type ParametricCurve[P euclid.Point[P, V], V euclid.Vector[V]] interface {
	// Subs returns the position of the curve at t.
	Subs(t float64) P
	// Der returns the first derivative at t.
	Der(t float64) V
	// Der2 returns the second derivative at t.
	Der2(t float64) V
	// ParameterRange returns the interval the curve is intended to be sampled
	// over. It is advisory: evaluating outside it is not an error in itself.
	ParameterRange() (float64, float64)
}

// Curve3 is a curve in 3D space.
type Curve3 = ParametricCurve[euclid.Point3, euclid.Vector3]

// Curvature returns the curvature |c′ × c″| / |c′|³ of a space curve at t.
//
// At a stationary point (c′ = 0) the result is NaN.
func Curvature(c Curve3, t float64) float64 {
	d1 := c.Der(t)
	d2 := c.Der2(t)
	l := d1.Length()
	if l == 0 {
		return math.NaN()
	}
	return d1.Cross(d2).Length() / (l * l * l)
}

// UnitTangent returns the normalized first derivative of c at t.
// It is non-finite at stationary points.
func UnitTangent(c Curve3, t float64) euclid.Vector3 {
	return c.Der(t).Normalize()
}

// Samples returns n+1 evenly spaced parameters covering [t0, t1], including
// both end points. It returns nil for n < 1.
func Samples(t0, t1 float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	ts := make([]float64, n+1)
	for i := range ts {
		ts[i] = t0 + (t1-t0)*float64(i)/float64(n)
	}
	ts[n] = t1
	return ts
}
