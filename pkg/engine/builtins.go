package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/graph"
	"github.com/chazu/geotrait/pkg/poly"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms geotrait Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: poly-curve -> poly_curve
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a euclid.Vector3.
type sexpVec3 struct {
	vec euclid.Vector3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpCurve carries a curve between builtins. id and name are set once the
// curve has been registered with defcurve.
type sexpCurve struct {
	data graph.CurveData
	id   graph.NodeID
	name string
}

func (c *sexpCurve) SexpString(ps *zygo.PrintState) string {
	if c.name != "" {
		return fmt.Sprintf("(curve %q)", c.name)
	}
	return fmt.Sprintf("(poly-curve degree %d)", len(c.data.Coeffs)-1)
}
func (c *sexpCurve) Type() *zygo.RegisteredType { return nil }

// sexpSurface is sexpCurve for surfaces.
type sexpSurface struct {
	data graph.SurfaceData
	id   graph.NodeID
	name string
}

func (s *sexpSurface) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(surface %q)", s.name)
	}
	return fmt.Sprintf("(poly-surface degree %d x %d)", len(s.data.U.Coeffs)-1, len(s.data.V.Coeffs)-1)
}
func (s *sexpSurface) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_normal) and plain strings ("normal").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toProbeOp converts a keyword such as :uder to a graph.ProbeOp.
func toProbeOp(s zygo.Sexp) (graph.ProbeOp, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected operation keyword: %w", err)
	}
	return graph.ParseProbeOp(name)
}

// toVec3 extracts a Vector3 from a sexpVec3.
func toVec3(s zygo.Sexp) (euclid.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return euclid.Vector3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toCoefficient accepts a vec3 or a plain number c, which stands for
// (vec3 c c c).
func toCoefficient(s zygo.Sexp) (euclid.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	f, err := toFloat64(s)
	if err != nil {
		return euclid.Vector3{}, fmt.Errorf("expected vec3 or number, got %T (%s)", s, s.SexpString(nil))
	}
	return euclid.Vec3(f, f, f), nil
}

// toCurve extracts curve data from a sexpCurve.
func toCurve(s zygo.Sexp) (*sexpCurve, error) {
	if c, ok := s.(*sexpCurve); ok {
		return c, nil
	}
	return nil, fmt.Errorf("expected curve, got %T (%s)", s, s.SexpString(nil))
}

// toSurface extracts surface data from a sexpSurface.
func toSurface(s zygo.Sexp) (*sexpSurface, error) {
	if v, ok := s.(*sexpSurface); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected surface, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// coefficientArgs flattens the positional arguments of poly-curve. A single
// list or array argument is expanded in place.
func coefficientArgs(args []zygo.Sexp) ([]euclid.Vector3, error) {
	if len(args) == 1 {
		switch args[0].(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(args[0])
			if err != nil {
				return nil, err
			}
			args = items
		}
	}
	coeffs := make([]euclid.Vector3, 0, len(args))
	for i, a := range args {
		c, err := toCoefficient(a)
		if err != nil {
			return nil, fmt.Errorf("coefficient %d: %w", i, err)
		}
		coeffs = append(coeffs, c)
	}
	return coeffs, nil
}

// rangeArgs reads the optional :min and :max keywords. It returns nil when
// neither is given so the curve keeps the default range.
func rangeArgs(pa kwArgs) (*[2]float64, error) {
	minV, hasMin := pa.kw["min"]
	maxV, hasMax := pa.kw["max"]
	if !hasMin && !hasMax {
		return nil, nil
	}
	r := [2]float64{poly.DefaultMin, poly.DefaultMax}
	if hasMin {
		f, err := toFloat64(minV)
		if err != nil {
			return nil, fmt.Errorf("min: %w", err)
		}
		r[0] = f
	}
	if hasMax {
		f, err := toFloat64(maxV)
		if err != nil {
			return nil, fmt.Errorf("max: %w", err)
		}
		r[1] = f
	}
	return &r, nil
}

// evalArgs applies op to a curve (one parameter) or surface (two parameters).
func evalArgs(op graph.ProbeOp, args []zygo.Sexp) (euclid.Vector3, error) {
	if len(args) < 2 {
		return euclid.Vector3{}, fmt.Errorf("requires a curve or surface and parameters")
	}
	switch prim := args[0].(type) {
	case *sexpCurve:
		if len(args) != 2 {
			return euclid.Vector3{}, fmt.Errorf("curve takes 1 parameter, got %d", len(args)-1)
		}
		t, err := toFloat64(args[1])
		if err != nil {
			return euclid.Vector3{}, fmt.Errorf("t: %w", err)
		}
		return graph.EvalCurve(prim.data.Curve(), op, t)
	case *sexpSurface:
		if len(args) != 3 {
			return euclid.Vector3{}, fmt.Errorf("surface takes 2 parameters, got %d", len(args)-1)
		}
		u, err := toFloat64(args[1])
		if err != nil {
			return euclid.Vector3{}, fmt.Errorf("u: %w", err)
		}
		v, err := toFloat64(args[2])
		if err != nil {
			return euclid.Vector3{}, fmt.Errorf("v: %w", err)
		}
		return graph.EvalSurface(prim.data.Surface(), op, u, v)
	}
	return euclid.Vector3{}, fmt.Errorf("expected curve or surface, got %T (%s)", args[0], args[0].SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all geotrait DSL builtins into a zygomys
// environment. The builtins operate on the provided DesignGraph, populating
// it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, g *graph.DesignGraph) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: euclid.Vec3(x, y, z)}, nil
	})

	// (vx v), (vy v), (vz v)
	for _, axis := range []string{"vx", "vy", "vz"} {
		env.AddFunction(axis, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires exactly 1 argument, got %d", name, len(args))
			}
			v, err := toVec3(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			switch name {
			case "vx":
				return &zygo.SexpFloat{Val: v.X}, nil
			case "vy":
				return &zygo.SexpFloat{Val: v.Y}, nil
			}
			return &zygo.SexpFloat{Val: v.Z}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (poly-curve 1 (vec3 0 1 0) 3 :min -1 :max 1)
	// (poly-curve [1 2 3])
	// -----------------------------------------------------------------------
	env.AddFunction("poly_curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		coeffs, err := coefficientArgs(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("poly-curve: %w", err)
		}
		rng, err := rangeArgs(pa)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("poly-curve: %w", err)
		}

		return &sexpCurve{data: graph.CurveData{Coeffs: coeffs, Range: rng}}, nil
	})

	// -----------------------------------------------------------------------
	// (poly-surface u-curve v-curve)
	// -----------------------------------------------------------------------
	env.AddFunction("poly_surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("poly-surface requires a u curve and a v curve, got %d arguments", len(args))
		}
		u, err := toCurve(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("poly-surface: u: %w", err)
		}
		v, err := toCurve(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("poly-surface: v: %w", err)
		}

		return &sexpSurface{data: graph.SurfaceData{U: u.data, V: v.data}}, nil
	})

	// -----------------------------------------------------------------------
	// (defcurve "name" (poly-curve ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defcurve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defcurve requires a name and a curve expression")
		}
		curveName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcurve: name: %w", err)
		}
		c, err := toCurve(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defcurve: %w", err)
		}
		if g.Lookup(curveName) != nil {
			return zygo.SexpNull, fmt.Errorf("defcurve: %q is already defined", curveName)
		}

		id := graph.NewNodeID("defcurve/" + curveName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeCurve,
			Name: curveName,
			Data: c.data,
		})
		g.AddRoot(id)

		return &sexpCurve{data: c.data, id: id, name: curveName}, nil
	})

	// -----------------------------------------------------------------------
	// (defsurface "name" (poly-surface ...))
	// -----------------------------------------------------------------------
	env.AddFunction("defsurface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defsurface requires a name and a surface expression")
		}
		surfName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsurface: name: %w", err)
		}
		s, err := toSurface(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defsurface: %w", err)
		}
		if g.Lookup(surfName) != nil {
			return zygo.SexpNull, fmt.Errorf("defsurface: %q is already defined", surfName)
		}

		id := graph.NewNodeID("defsurface/" + surfName)
		g.AddNode(&graph.Node{
			ID:   id,
			Kind: graph.NodeSurface,
			Name: surfName,
			Data: s.data,
		})
		g.AddRoot(id)

		return &sexpSurface{data: s.data, id: id, name: surfName}, nil
	})

	// -----------------------------------------------------------------------
	// (curve "name"), (surface "name")
	// -----------------------------------------------------------------------
	env.AddFunction("curve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("curve requires a name argument")
		}
		curveName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("curve: name: %w", err)
		}
		n := g.Lookup(curveName)
		if n == nil || n.Kind != graph.NodeCurve {
			return zygo.SexpNull, fmt.Errorf("curve: no curve named %q", curveName)
		}
		return &sexpCurve{data: n.Data.(graph.CurveData), id: n.ID, name: curveName}, nil
	})

	env.AddFunction("surface", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("surface requires a name argument")
		}
		surfName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("surface: name: %w", err)
		}
		n := g.Lookup(surfName)
		if n == nil || n.Kind != graph.NodeSurface {
			return zygo.SexpNull, fmt.Errorf("surface: no surface named %q", surfName)
		}
		return &sexpSurface{data: n.Data.(graph.SurfaceData), id: n.ID, name: surfName}, nil
	})

	// -----------------------------------------------------------------------
	// (subs c t), (der c t), (der2 c t)
	// (subs s u v), (uder s u v), ... (normal s u v)
	// -----------------------------------------------------------------------
	for _, op := range []graph.ProbeOp{
		graph.OpSubs, graph.OpDer, graph.OpDer2,
		graph.OpUDer, graph.OpVDer, graph.OpUUDer, graph.OpUVDer, graph.OpVVDer,
		graph.OpNormal,
	} {
		env.AddFunction(op.String(), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			v, err := evalArgs(op, args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpVec3{vec: v}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (probe "label" :op :normal :of (surface "sheet") :u 0 :v 0)
	// -----------------------------------------------------------------------
	env.AddFunction("probe", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("probe requires a label")
		}
		label, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("probe: label: %w", err)
		}
		if g.Lookup(label) != nil {
			return zygo.SexpNull, fmt.Errorf("probe: %q is already defined", label)
		}

		pd := graph.ProbeData{Op: graph.OpSubs}
		if v, ok := pa.kw["op"]; ok {
			op, err := toProbeOp(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("probe: op: %w", err)
			}
			pd.Op = op
		}

		of, ok := pa.kw["of"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("probe: :of is required")
		}
		switch target := of.(type) {
		case *sexpCurve:
			pd.Target = target.id
		case *sexpSurface:
			pd.Target = target.id
		default:
			return zygo.SexpNull, fmt.Errorf("probe: of: expected curve or surface, got %T (%s)", of, of.SexpString(nil))
		}
		if pd.Target.IsZero() {
			return zygo.SexpNull, fmt.Errorf("probe: of: target must be defined with defcurve or defsurface")
		}

		if v, ok := pa.kw["u"]; ok {
			if pd.U, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("probe: u: %w", err)
			}
		}
		if v, ok := pa.kw["t"]; ok {
			if pd.U, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("probe: t: %w", err)
			}
		}
		if v, ok := pa.kw["v"]; ok {
			if pd.V, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("probe: v: %w", err)
			}
		}

		value, err := pd.Evaluate(g.Get(pd.Target))
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("probe: %w", err)
		}
		pd.Value = value

		id := graph.NewNodeID("probe/" + label)
		g.AddNode(&graph.Node{
			ID:       id,
			Kind:     graph.NodeProbe,
			Name:     label,
			Children: []graph.NodeID{pd.Target},
			Data:     pd,
		})

		return &sexpVec3{vec: value}, nil
	})
}
