package poly

import (
	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/geom"
)

// The parameter interval a Curve declares unless built with [WithRange].
const (
	DefaultMin = -100.0
	DefaultMax = 100.0
)

// Curve is the polynomial f(t) = Σ cᵢ·tⁱ with vector coefficients cᵢ.
//
// The coefficient at index i is the coefficient of tⁱ. A curve without
// coefficients is the zero curve, which sits at the origin for every t.
// The zero value is the zero curve. Curves are immutable.
type Curve[P euclid.Point[P, V], V euclid.Vector[V]] struct {
	coeffs []V
	// rng is nil for the default range.
	rng *[2]float64
}

var (
	_ geom.Curve3                                         = Curve[euclid.Point3, euclid.Vector3]{}
	_ geom.ParametricCurve[euclid.Point2, euclid.Vector2] = Curve[euclid.Point2, euclid.Vector2]{}
)

// Curve3 is a polynomial curve in 3D space.
type Curve3 = Curve[euclid.Point3, euclid.Vector3]

type curveConfig struct {
	rng *[2]float64
}

// CurveOption configures a Curve.
type CurveOption func(*curveConfig)

// WithRange overrides the declared parameter range.
func WithRange(min, max float64) CurveOption {
	return func(cfg *curveConfig) {
		cfg.rng = &[2]float64{min, max}
	}
}

// NewCurve returns the curve with coefficients c₀, c₁, …, in increasing degree.
// The slice is copied.
func NewCurve[P euclid.Point[P, V], V euclid.Vector[V]](coeffs []V, opts ...CurveOption) Curve[P, V] {
	var cfg curveConfig
	for _, o := range opts {
		o(&cfg)
	}
	return Curve[P, V]{
		coeffs: append([]V(nil), coeffs...),
		rng:    cfg.rng,
	}
}

// NewCurve3 is NewCurve for 3D curves.
func NewCurve3(coeffs []euclid.Vector3, opts ...CurveOption) Curve3 {
	return NewCurve[euclid.Point3](coeffs, opts...)
}

// Coefficients returns a copy of the coefficients in increasing degree.
func (c Curve[P, V]) Coefficients() []V {
	return append([]V(nil), c.coeffs...)
}

// Degree returns the index of the highest coefficient, or -1 for the zero
// curve. Trailing zero coefficients still count.
func (c Curve[P, V]) Degree() int {
	return len(c.coeffs) - 1
}

// Subs evaluates the curve at t by accumulating Σ cᵢ·tⁱ with a running power.
func (c Curve[P, V]) Subs(t float64) P {
	var sum V
	s := 1.0
	for _, a := range c.coeffs {
		sum = sum.Add(a.MulScalar(s))
		s *= t
	}
	return euclid.FromVec[P](sum)
}

// Horner evaluates the curve at t by nested multiplication. It has the same
// real-valued result as [Curve.Subs] but rounds differently, and is better
// conditioned for large |t| or high degree.
func (c Curve[P, V]) Horner(t float64) P {
	var sum V
	for i := len(c.coeffs) - 1; i >= 0; i-- {
		sum = sum.MulScalar(t).Add(c.coeffs[i])
	}
	return euclid.FromVec[P](sum)
}

// Der returns Σ i·cᵢ·tⁱ⁻¹ over i ≥ 1.
func (c Curve[P, V]) Der(t float64) V {
	var sum V
	s := 1.0
	for i := 1; i < len(c.coeffs); i++ {
		sum = sum.Add(c.coeffs[i].MulScalar(s * float64(i)))
		s *= t
	}
	return sum
}

// Der2 returns Σ i·(i−1)·cᵢ·tⁱ⁻² over i ≥ 2.
func (c Curve[P, V]) Der2(t float64) V {
	var sum V
	s := 1.0
	for i := 2; i < len(c.coeffs); i++ {
		sum = sum.Add(c.coeffs[i].MulScalar(s * float64(i*(i-1))))
		s *= t
	}
	return sum
}

// ParameterRange returns the declared parameter range. For a polynomial it is
// a configured value, not a property of the coefficients.
func (c Curve[P, V]) ParameterRange() (float64, float64) {
	if c.rng == nil {
		return DefaultMin, DefaultMax
	}
	return c.rng[0], c.rng[1]
}
