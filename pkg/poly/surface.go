package poly

import (
	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/geom"
)

// Surface is S(u, v) = U(u) ⊙ V(v), the componentwise product of two
// independent polynomial curves. For example the curves 2u²+3u+1 and
// 4v²−6v+2 in every coordinate give (2u²+3u+1)(4v²−6v+2).
//
// It is not a tensor-product spline: the construction exists to exercise the
// surface contract with exactly known partials.
type Surface struct {
	U Curve3
	V Curve3
}

var (
	_ geom.Surface3 = Surface{}
	_ geom.Ranged   = Surface{}
)

// NewSurface returns the surface U(u) ⊙ V(v).
func NewSurface(u, v Curve3) Surface {
	return Surface{U: u, V: v}
}

func (s Surface) Subs(u, v float64) euclid.Point3 {
	return s.U.Subs(u).MulElem(s.V.Subs(v))
}

func (s Surface) UDer(u, v float64) euclid.Vector3 {
	return s.U.Der(u).MulElem(s.V.Subs(v).ToVec())
}

func (s Surface) VDer(u, v float64) euclid.Vector3 {
	return s.U.Subs(u).ToVec().MulElem(s.V.Der(v))
}

func (s Surface) UUDer(u, v float64) euclid.Vector3 {
	return s.U.Der2(u).MulElem(s.V.Subs(v).ToVec())
}

// UVDer is U'(u) ⊙ V'(v): each factor depends on one parameter only.
func (s Surface) UVDer(u, v float64) euclid.Vector3 {
	return s.U.Der(u).MulElem(s.V.Der(v))
}

func (s Surface) VVDer(u, v float64) euclid.Vector3 {
	return s.U.Subs(u).ToVec().MulElem(s.V.Der2(v))
}

// Normal returns normalize(UDer × VDer). Where the partials are parallel or
// either vanishes the cross product is zero and the result is NaN.
func (s Surface) Normal(u, v float64) euclid.Vector3 {
	return s.UDer(u, v).Cross(s.VDer(u, v)).Normalize()
}

// ParameterRange returns the declared ranges of U and V.
func (s Surface) ParameterRange() (u0, u1, v0, v1 float64) {
	u0, u1 = s.U.ParameterRange()
	v0, v1 = s.V.ParameterRange()
	return u0, u1, v0, v1
}
