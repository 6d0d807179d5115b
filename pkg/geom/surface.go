package geom

import (
	"github.com/chazu/geotrait/pkg/euclid"
)

// ParametricSurface describes a surface parametrized by two scalars.
type ParametricSurface[P euclid.Point[P, V], V euclid.Vector[V]] interface {
	// Subs returns the position of the surface at (u, v).
	Subs(u, v float64) P
	// UDer and VDer return the first partial derivatives.
	UDer(u, v float64) V
	VDer(u, v float64) V
	// UUDer, UVDer and VVDer return the second partial derivatives.
	UUDer(u, v float64) V
	UVDer(u, v float64) V
	VVDer(u, v float64) V
	// Normal returns the unit normal at (u, v). It is not finite where the
	// surface is degenerate; see [DegenerateNormal].
	Normal(u, v float64) V
}

// Surface3 is a surface in 3D space.
type Surface3 = ParametricSurface[euclid.Point3, euclid.Vector3]

// Ranged is implemented by surfaces that declare the rectangle of parameters
// they are intended to be sampled over.
type Ranged interface {
	ParameterRange() (u0, u1, v0, v1 float64)
}

// normalTolerance bounds how far a returned normal may stray from unit length
// before it is considered degenerate.
const normalTolerance = 1e-9

// DegenerateNormal reports whether n is not a usable unit normal: it has
// non-finite components or its length is not 1.
func DegenerateNormal(n euclid.Vector3) bool {
	if !n.IsFinite() {
		return true
	}
	l := n.Length()
	return l < 1-normalTolerance || l > 1+normalTolerance
}

// Frame bundles the first-order differential data of a surface at a point.
type Frame struct {
	U, V       float64
	Position   euclid.Point3
	UDer, VDer euclid.Vector3
	Normal     euclid.Vector3
}

// Degenerate reports whether the frame's normal is undefined.
func (f Frame) Degenerate() bool {
	return DegenerateNormal(f.Normal)
}

// SurfaceFrame evaluates s at (u, v) and returns the position, the two first
// partials and the normal.
func SurfaceFrame(s Surface3, u, v float64) Frame {
	return Frame{
		U:        u,
		V:        v,
		Position: s.Subs(u, v),
		UDer:     s.UDer(u, v),
		VDer:     s.VDer(u, v),
		Normal:   s.Normal(u, v),
	}
}
