package graph

import (
	"fmt"

	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/geom"
	"github.com/chazu/geotrait/pkg/poly"
)

// CurveData holds the coefficients of a polynomial curve, lowest degree
// first, and an optional declared parameter range.
type CurveData struct {
	Coeffs []euclid.Vector3 `json:"coeffs"`
	Range  *[2]float64      `json:"range,omitempty"`
}

func (CurveData) nodeData() {}

// Curve builds the primitive.
func (d CurveData) Curve() poly.Curve3 {
	if d.Range != nil {
		return poly.NewCurve3(d.Coeffs, poly.WithRange(d.Range[0], d.Range[1]))
	}
	return poly.NewCurve3(d.Coeffs)
}

// SurfaceData holds the two curves of a product surface.
type SurfaceData struct {
	U CurveData `json:"u"`
	V CurveData `json:"v"`
}

func (SurfaceData) nodeData() {}

// Surface builds the primitive.
func (d SurfaceData) Surface() poly.Surface {
	return poly.NewSurface(d.U.Curve(), d.V.Curve())
}

// ProbeOp names a contract operation.
type ProbeOp int

const (
	OpSubs ProbeOp = iota
	OpDer
	OpDer2
	OpUDer
	OpVDer
	OpUUDer
	OpUVDer
	OpVVDer
	OpNormal
)

var probeOpNames = [...]string{
	OpSubs:   "subs",
	OpDer:    "der",
	OpDer2:   "der2",
	OpUDer:   "uder",
	OpVDer:   "vder",
	OpUUDer:  "uuder",
	OpUVDer:  "uvder",
	OpVVDer:  "vvder",
	OpNormal: "normal",
}

func (op ProbeOp) String() string {
	if op >= 0 && int(op) < len(probeOpNames) {
		return probeOpNames[op]
	}
	return fmt.Sprintf("ProbeOp(%d)", int(op))
}

// ParseProbeOp returns the operation with the given name.
func ParseProbeOp(name string) (ProbeOp, error) {
	for op, n := range probeOpNames {
		if n == name {
			return ProbeOp(op), nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// OnCurve reports whether op applies to curves. OpSubs applies to both.
func (op ProbeOp) OnCurve() bool {
	return op == OpSubs || op == OpDer || op == OpDer2
}

// OnSurface reports whether op applies to surfaces.
func (op ProbeOp) OnSurface() bool {
	return op == OpSubs || op >= OpUDer && op <= OpNormal
}

// ProbeData records one evaluation of a curve or surface. For curves only U
// is used. Value is a displacement from the origin for OpSubs.
type ProbeData struct {
	Target NodeID         `json:"target"`
	Op     ProbeOp        `json:"op"`
	U      float64        `json:"u"`
	V      float64        `json:"v"`
	Value  euclid.Vector3 `json:"value"`
}

func (ProbeData) nodeData() {}

// EvalCurve applies op to c at t.
func EvalCurve(c geom.Curve3, op ProbeOp, t float64) (euclid.Vector3, error) {
	switch op {
	case OpSubs:
		return c.Subs(t).ToVec(), nil
	case OpDer:
		return c.Der(t), nil
	case OpDer2:
		return c.Der2(t), nil
	}
	return euclid.Vector3{}, fmt.Errorf("%s does not apply to curves", op)
}

// EvalSurface applies op to s at (u, v).
func EvalSurface(s geom.Surface3, op ProbeOp, u, v float64) (euclid.Vector3, error) {
	switch op {
	case OpSubs:
		return s.Subs(u, v).ToVec(), nil
	case OpUDer:
		return s.UDer(u, v), nil
	case OpVDer:
		return s.VDer(u, v), nil
	case OpUUDer:
		return s.UUDer(u, v), nil
	case OpUVDer:
		return s.UVDer(u, v), nil
	case OpVVDer:
		return s.VVDer(u, v), nil
	case OpNormal:
		return s.Normal(u, v), nil
	}
	return euclid.Vector3{}, fmt.Errorf("%s does not apply to surfaces", op)
}

// Evaluate applies the probe's operation to the primitive held by target.
func (p ProbeData) Evaluate(target *Node) (euclid.Vector3, error) {
	if target == nil {
		return euclid.Vector3{}, fmt.Errorf("probe target %s does not exist", p.Target.Short())
	}
	switch d := target.Data.(type) {
	case CurveData:
		return EvalCurve(d.Curve(), p.Op, p.U)
	case SurfaceData:
		return EvalSurface(d.Surface(), p.Op, p.U, p.V)
	}
	return euclid.Vector3{}, fmt.Errorf("probe target %s is a %s, not a curve or surface", target.ID.Short(), target.Kind)
}
