package graph

import (
	"fmt"
	"sort"

	"github.com/chazu/geotrait/pkg/geom"
)

// ValidationSeverity indicates whether a validation finding blocks
// tessellation or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks tessellation
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the structural and geometric checks on the design graph and
// returns every finding, sorted by node and message. It never mutates g.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateRoots(g)...)
	errs = append(errs, validateCoefficients(g)...)
	errs = append(errs, validateSurfaces(g)...)
	errs = append(errs, validateProbes(g)...)
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].NodeID != errs[j].NodeID {
			return errs[i].NodeID < errs[j].NodeID
		}
		return errs[i].Message < errs[j].Message
	})
	return errs
}

// ValidateAll runs Validate and splits the findings by severity.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateReferences checks that every child and probe target exists.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, cid := range node.Children {
			if _, ok := g.Nodes[cid]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child %s does not exist", cid.Short()),
					Severity: SeverityError,
				})
			}
		}
		if pd, ok := node.Data.(ProbeData); ok {
			if _, ok := g.Nodes[pd.Target]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("probe target %s does not exist", pd.Target.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateNames checks that the name index points at existing nodes and that
// no two nodes share a name.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for name, id := range g.NameIndex {
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	nameToNodes := make(map[string][]NodeID)
	for id, node := range g.Nodes {
		if node.Name != "" {
			nameToNodes[node.Name] = append(nameToNodes[node.Name], id)
		}
	}
	for name, ids := range nameToNodes {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("duplicate name %q assigned to %d nodes", name, len(ids)),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateRoots checks that every root exists.
func validateRoots(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, rid := range g.Roots {
		if _, ok := g.Nodes[rid]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("root reference %s does not exist", rid.Short()),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// curveFindings checks one curve's coefficients and range. The label
// distinguishes the two curves of a surface in messages.
func curveFindings(id NodeID, label string, d CurveData) []ValidationError {
	var errs []ValidationError
	for i, c := range d.Coeffs {
		if !c.IsFinite() {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("%scoefficient %d is not finite: %v", label, i, c),
				Severity: SeverityError,
			})
		}
	}
	if d.Range != nil && !(d.Range[0] < d.Range[1]) {
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  fmt.Sprintf("%sparameter range [%g, %g] is empty", label, d.Range[0], d.Range[1]),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateCoefficients checks every curve, including surface curves.
func validateCoefficients(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case CurveData:
			errs = append(errs, curveFindings(node.ID, "", d)...)
		case SurfaceData:
			errs = append(errs, curveFindings(node.ID, "u curve ", d.U)...)
			errs = append(errs, curveFindings(node.ID, "v curve ", d.V)...)
		}
	}
	return errs
}

// validateSurfaces warns about surfaces whose normal is undefined everywhere
// because one of the curves is constant.
func validateSurfaces(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Surfaces() {
		d, ok := node.Data.(SurfaceData)
		if !ok {
			continue
		}
		for _, c := range []struct {
			label string
			data  CurveData
		}{{"u", d.U}, {"v", d.V}} {
			if len(c.data.Coeffs) < 2 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("%s curve is constant; every normal is degenerate", c.label),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// validateProbes checks that each probe's operation suits its target and
// warns about recorded degenerate normals.
func validateProbes(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Probes() {
		pd, ok := node.Data.(ProbeData)
		if !ok {
			continue
		}
		target := g.Nodes[pd.Target]
		if target == nil {
			continue
		}
		if (target.Kind == NodeCurve && !pd.Op.OnCurve()) ||
			(target.Kind == NodeSurface && !pd.Op.OnSurface()) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s does not apply to %s %q", pd.Op, target.Kind, target.Name),
				Severity: SeverityError,
			})
		}
		if pd.Op == OpNormal && geom.DegenerateNormal(pd.Value) {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("normal at (%g, %g) is degenerate", pd.U, pd.V),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
