// Package geomtest checks that primitives honor the geom contract. Each check
// compares the analytic derivatives a primitive reports against central finite
// differences of its lower-order quantities.
package geomtest

import (
	"math"
	"testing"

	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/geom"
)

// Options controls a conformance check.
type Options struct {
	// Samples is the number of intervals per axis. Defaults to 16.
	Samples int
	// Step is the finite-difference step relative to max(1, |t|).
	// Defaults to 1e-5.
	Step float64
	// Tol is the accepted error relative to max(1, |analytic|).
	// Defaults to 1e-4.
	Tol float64
	// Range overrides the declared parameter range, if set.
	Range *[2]float64
}

func (o Options) withDefaults() Options {
	if o.Samples <= 0 {
		o.Samples = 16
	}
	if o.Step <= 0 {
		o.Step = 1e-5
	}
	if o.Tol <= 0 {
		o.Tol = 1e-4
	}
	return o
}

func (o Options) step(t float64) float64 {
	return o.Step * math.Max(1, math.Abs(t))
}

// Close reports whether got lies within tol of want relative to
// max(1, |want|).
func Close(want, got euclid.Vector3, tol float64) bool {
	return want.Sub(got).Length() <= tol*math.Max(1, want.Length())
}

// CheckCurve samples c over its declared range and reports mismatches between
// Der and Der2 and central differences of Subs and Der.
func CheckCurve(tb testing.TB, c geom.Curve3, opts Options) {
	tb.Helper()
	opts = opts.withDefaults()
	t0, t1 := c.ParameterRange()
	if opts.Range != nil {
		t0, t1 = opts.Range[0], opts.Range[1]
	}

	for _, t := range geom.Samples(t0, t1, opts.Samples) {
		h := opts.step(t)
		fd := c.Subs(t + h).Sub(c.Subs(t - h)).MulScalar(1 / (2 * h))
		if d := c.Der(t); !Close(d, fd, opts.Tol) {
			tb.Errorf("Der(%g) = %v, finite difference gives %v", t, d, fd)
		}
		fd2 := c.Der(t + h).Sub(c.Der(t - h)).MulScalar(1 / (2 * h))
		if d := c.Der2(t); !Close(d, fd2, opts.Tol) {
			tb.Errorf("Der2(%g) = %v, finite difference gives %v", t, d, fd2)
		}
	}
}

// CheckSurface samples s over a grid and reports mismatches between its
// partials and finite differences, and normals that are not unit length or
// not perpendicular to both first partials. Grid points where the partials
// are parallel or vanish are skipped for the normal checks; a non-finite
// normal anywhere else is reported.
//
// The grid covers opts.Range on both axes when set. Otherwise a
// [geom.Ranged] surface is sampled over its declared range, and any other
// surface over [-1, 1] on both axes.
func CheckSurface(tb testing.TB, s geom.Surface3, opts Options) {
	tb.Helper()
	opts = opts.withDefaults()
	u0, u1, v0, v1 := -1.0, 1.0, -1.0, 1.0
	if r, ok := s.(geom.Ranged); ok {
		u0, u1, v0, v1 = r.ParameterRange()
	}
	if opts.Range != nil {
		u0, u1 = opts.Range[0], opts.Range[1]
		v0, v1 = opts.Range[0], opts.Range[1]
	}

	for _, u := range geom.Samples(u0, u1, opts.Samples) {
		for _, v := range geom.Samples(v0, v1, opts.Samples) {
			checkSurfacePoint(tb, s, u, v, opts)
		}
	}
}

func checkSurfacePoint(tb testing.TB, s geom.Surface3, u, v float64, opts Options) {
	tb.Helper()
	hu, hv := opts.step(u), opts.step(v)
	du := func(f func(u, v float64) euclid.Vector3) euclid.Vector3 {
		return f(u+hu, v).Sub(f(u-hu, v)).MulScalar(1 / (2 * hu))
	}
	dv := func(f func(u, v float64) euclid.Vector3) euclid.Vector3 {
		return f(u, v+hv).Sub(f(u, v-hv)).MulScalar(1 / (2 * hv))
	}
	pos := func(u, v float64) euclid.Vector3 { return s.Subs(u, v).ToVec() }

	checks := []struct {
		name string
		got  euclid.Vector3
		fd   euclid.Vector3
	}{
		{"UDer", s.UDer(u, v), du(pos)},
		{"VDer", s.VDer(u, v), dv(pos)},
		{"UUDer", s.UUDer(u, v), du(s.UDer)},
		{"UVDer", s.UVDer(u, v), dv(s.UDer)},
		{"VVDer", s.VVDer(u, v), dv(s.VDer)},
	}
	for _, c := range checks {
		if !Close(c.got, c.fd, opts.Tol) {
			tb.Errorf("%s(%g, %g) = %v, finite difference gives %v", c.name, u, v, c.got, c.fd)
		}
	}

	f := geom.SurfaceFrame(s, u, v)
	if f.UDer.Cross(f.VDer).IsZero() {
		return
	}
	if !f.Normal.IsFinite() {
		tb.Errorf("Normal(%g, %g) = %v is not finite at a regular point", u, v, f.Normal)
		return
	}
	if l := f.Normal.Length(); math.Abs(l-1) > opts.Tol {
		tb.Errorf("|Normal(%g, %g)| = %g, want 1", u, v, l)
	}
	for _, p := range []euclid.Vector3{f.UDer, f.VDer} {
		if p.IsZero() {
			continue
		}
		if cos := f.Normal.Dot(p) / p.Length(); math.Abs(cos) > opts.Tol {
			tb.Errorf("Normal(%g, %g) = %v is not perpendicular to partial %v", u, v, f.Normal, p)
		}
	}
}
