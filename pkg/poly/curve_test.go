package poly

import (
	"math"
	"math/rand"
	"testing"

	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/geom"
	"github.com/chazu/geotrait/pkg/geom/geomtest"
)

// scalar returns a curve whose coefficients are cs along the x axis.
func scalar(cs ...float64) Curve3 {
	coeffs := make([]euclid.Vector3, len(cs))
	for i, c := range cs {
		coeffs[i] = euclid.Vec3(c, 0, 0)
	}
	return NewCurve3(coeffs)
}

func randomCurve(rng *rand.Rand, n int) Curve3 {
	coeffs := make([]euclid.Vector3, n)
	for i := range coeffs {
		coeffs[i] = euclid.Vec3(rng.Float64()*2-1, rng.Float64()*2-1, rng.Float64()*2-1)
	}
	return NewCurve3(coeffs)
}

func TestZeroCurve(t *testing.T) {
	curves := map[string]Curve3{
		"zero value":    {},
		"empty":         NewCurve3(nil),
		"empty non-nil": NewCurve3([]euclid.Vector3{}),
	}
	for name, c := range curves {
		t.Run(name, func(t *testing.T) {
			for _, tt := range []float64{-100, -1, 0, 0.5, 3, 100} {
				diff(t, euclid.Point3{}, c.Subs(tt))
				diff(t, euclid.Vector3{}, c.Der(tt))
				diff(t, euclid.Vector3{}, c.Der2(tt))
			}
			if c.Degree() != -1 {
				t.Errorf("Degree() = %d, want -1", c.Degree())
			}
		})
	}
}

func TestConstantTermRecovery(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 1; n <= 6; n++ {
		c := randomCurve(rng, n)
		diff(t, euclid.FromVec[euclid.Point3](c.Coefficients()[0]), c.Subs(0))
	}
}

func TestScenarioA(t *testing.T) {
	// 1 + 2t + 3t²
	c := scalar(1, 2, 3)

	diff(t, euclid.Pt3(17, 0, 0), c.Subs(2))
	diff(t, euclid.Vec3(14, 0, 0), c.Der(2))
	for _, tt := range []float64{-50, -1, 0, 2, 7.25} {
		diff(t, euclid.Vec3(6, 0, 0), c.Der2(tt))
	}
}

func TestDegreeBound(t *testing.T) {
	tests := []struct {
		name     string
		coeffs   []float64
		zeroDer  bool
		zeroDer2 bool
	}{
		{"constant", []float64{4}, true, true},
		{"linear", []float64{4, -3}, false, true},
		{"quadratic", []float64{4, -3, 2}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := scalar(tt.coeffs...)
			for _, p := range geom.Samples(-100, 100, 20) {
				if got := c.Der(p).IsZero(); got != tt.zeroDer {
					t.Errorf("Der(%g) = %v, zero = %t, want %t", p, c.Der(p), got, tt.zeroDer)
				}
				if got := c.Der2(p).IsZero(); got != tt.zeroDer2 {
					t.Errorf("Der2(%g) = %v, zero = %t, want %t", p, c.Der2(p), got, tt.zeroDer2)
				}
			}
		})
	}
}

func TestDerivativeConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	t.Run("declared range", func(t *testing.T) {
		for n := 0; n <= 4; n++ {
			geomtest.CheckCurve(t, randomCurve(rng, n), geomtest.Options{})
		}
	})
	t.Run("high degree", func(t *testing.T) {
		for n := 5; n <= 9; n++ {
			geomtest.CheckCurve(t, randomCurve(rng, n), geomtest.Options{
				Range: &[2]float64{-2, 2},
			})
		}
	})
}

func TestHornerMatchesSubs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := 0; n <= 8; n++ {
		c := randomCurve(rng, n)
		for _, p := range geom.Samples(-3, 3, 12) {
			diff(t, c.Subs(p), c.Horner(p), approx)
		}
	}
}

func TestParameterRange(t *testing.T) {
	min, max := scalar(1, 2).ParameterRange()
	if min != -100 || max != 100 {
		t.Errorf("ParameterRange() = (%g, %g), want (-100, 100)", min, max)
	}
	var zero Curve3
	if min, max := zero.ParameterRange(); min != DefaultMin || max != DefaultMax {
		t.Errorf("zero value ParameterRange() = (%g, %g), want defaults", min, max)
	}
	c := NewCurve3([]euclid.Vector3{euclid.Vec3(1, 0, 0)}, WithRange(0, 1))
	if min, max := c.ParameterRange(); min != 0 || max != 1 {
		t.Errorf("ParameterRange() = (%g, %g), want (0, 1)", min, max)
	}
}

func TestCoefficientsImmutable(t *testing.T) {
	in := []euclid.Vector3{euclid.Vec3(1, 0, 0), euclid.Vec3(2, 0, 0)}
	c := NewCurve3(in)
	in[0] = euclid.Vec3(100, 0, 0)
	out := c.Coefficients()
	out[1] = euclid.Vec3(-5, 0, 0)

	diff(t, euclid.Pt3(3, 0, 0), c.Subs(1))
	if c.Degree() != 1 {
		t.Errorf("Degree() = %d, want 1", c.Degree())
	}
}

func TestNonFiniteInputPropagates(t *testing.T) {
	c := scalar(1, 2, 3)
	if p := c.Subs(math.NaN()); p.IsFinite() {
		t.Errorf("Subs(NaN) = %v, want non-finite", p)
	}
	if d := c.Der(math.Inf(1)); d.IsFinite() {
		t.Errorf("Der(+Inf) = %v, want non-finite", d)
	}
}

func TestPlanarCurve(t *testing.T) {
	// (t, t²): a parabola in the plane.
	c := NewCurve[euclid.Point2]([]euclid.Vector2{
		{}, euclid.Vec2(1, 0), euclid.Vec2(0, 1),
	})
	diff(t, euclid.Pt2(3, 9), c.Subs(3))
	diff(t, euclid.Vec2(1, 6), c.Der(3))
	diff(t, euclid.Vec2(0, 2), c.Der2(3))
}

func TestCurvature(t *testing.T) {
	// (t, t², 0) has curvature 2 at the vertex.
	c := NewCurve3([]euclid.Vector3{{}, euclid.Vec3(1, 0, 0), euclid.Vec3(0, 1, 0)})
	if k := geom.Curvature(c, 0); math.Abs(k-2) > 1e-12 {
		t.Errorf("Curvature(0) = %g, want 2", k)
	}
	if k := geom.Curvature(scalar(3), 0); !math.IsNaN(k) {
		t.Errorf("Curvature of a constant curve = %g, want NaN", k)
	}
}
