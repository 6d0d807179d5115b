// Package app runs the full pipeline from DSL source to render-ready data:
// evaluate, validate, tessellate.
package app

import (
	"context"
	"math"
	"time"

	"github.com/chazu/geotrait/pkg/config"
	"github.com/chazu/geotrait/pkg/engine"
	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/geom"
	"github.com/chazu/geotrait/pkg/graph"
	"github.com/chazu/geotrait/pkg/kernel"
	"github.com/chazu/geotrait/pkg/logging"
	"github.com/chazu/geotrait/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties an engine to a set of sampling options.
type App struct {
	engine *engine.Engine
	opts   tessellate.Options
}

// MeshData is the JSON-serializable mesh format for a sampled surface.
// Non-finite normals are written as zero vectors.
type MeshData struct {
	Vertices          []float32 `json:"vertices"`
	Normals           []float32 `json:"normals"`
	Indices           []uint32  `json:"indices"`
	PartName          string    `json:"partName"`
	Color             string    `json:"color"`
	DegenerateNormals int       `json:"degenerateNormals"`
}

// PolylineData is the JSON-serializable form of a sampled curve.
type PolylineData struct {
	Vertices []float32 `json:"vertices"`
	Tangents []float32 `json:"tangents"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// ProbeResult reports one probe. Value is null when the result is not
// finite, which for normals means the surface is degenerate there.
type ProbeResult struct {
	Label      string          `json:"label"`
	Target     string          `json:"target"`
	Op         string          `json:"op"`
	U          float64         `json:"u"`
	V          float64         `json:"v"`
	Value      *euclid.Vector3 `json:"value"`
	Degenerate bool            `json:"degenerate,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes    []MeshData      `json:"meshes"`
	Polylines []PolylineData  `json:"polylines"`
	Probes    []ProbeResult   `json:"probes"`
	Errors    []EvalErrorData `json:"errors"`
	Warnings  []EvalErrorData `json:"warnings"`
}

// NewApp creates an App from a validated configuration.
func NewApp(conf config.Config) *App {
	opts := tessellate.Options{
		U:             conf.Resolution.U,
		V:             conf.Resolution.V,
		CurveSegments: conf.CurveSegments,
		Workers:       conf.Workers,
	}
	if r, ok := conf.Range(); ok {
		opts.Range = r
	}
	return &App{
		engine: engine.NewEngine(engine.WithTimeout(time.Duration(conf.EvalTimeout))),
		opts:   opts,
	}
}

// Evaluate runs source through the pipeline with a background context.
func (a *App) Evaluate(source string) EvalResult {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext takes Lisp source and returns sampled geometry, probe
// results and errors. ctx bounds the tessellation stage.
func (a *App) EvaluateContext(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Meshes:    []MeshData{},
		Polylines: []PolylineData{},
		Probes:    []ProbeResult{},
		Errors:    []EvalErrorData{},
		Warnings:  []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a design graph.
	g, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logging.Logger().Error("evaluate fatal error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Validate. Errors block tessellation; warnings pass through.
	vr := graph.ValidateAll(g)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: describe(g, w)})
	}
	if !vr.OK() {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Message: describe(g, e)})
		}
		return result
	}

	result.Probes = probeResults(g)

	// Step 4: Sample curves and surfaces.
	meshes, polylines, err := tessellate.Tessellate(ctx, g, a.opts)
	if err != nil {
		logging.Logger().Error("tessellate error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	// Step 5: Convert to the output format. Colors are assigned across
	// curves and surfaces in root order.
	color := 0
	next := func() string {
		c := colorPalette[color%len(colorPalette)]
		color++
		return c
	}
	for _, l := range polylines {
		if !finite(l.Vertices) || !finite(l.Tangents) {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: "curve " + l.PartName + " overflows single precision; skipped",
			})
			continue
		}
		result.Polylines = append(result.Polylines, PolylineData{
			Vertices: l.Vertices,
			Tangents: l.Tangents,
			PartName: l.PartName,
			Color:    next(),
		})
	}
	for _, m := range meshes {
		if !finite(m.Vertices) {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: "surface " + m.PartName + " overflows single precision; skipped",
			})
			continue
		}
		result.Meshes = append(result.Meshes, meshData(m, next()))
	}

	logging.Logger().Info("pipeline complete",
		"meshes", len(result.Meshes), "polylines", len(result.Polylines), "probes", len(result.Probes))
	return result
}

// describe prefixes a validation finding with the name of its node.
func describe(g *graph.DesignGraph, e graph.ValidationError) string {
	if n := g.Get(e.NodeID); n != nil && n.Name != "" {
		return n.Kind.String() + " " + n.Name + ": " + e.Message
	}
	return e.Error()
}

// meshData copies m, replacing non-finite normals with zero vectors.
func meshData(m *kernel.Mesh, color string) MeshData {
	normals := m.Normals
	if m.DegenerateNormals > 0 {
		normals = make([]float32, len(m.Normals))
		for i := 0; i+2 < len(m.Normals); i += 3 {
			if finite(m.Normals[i : i+3]) {
				copy(normals[i:i+3], m.Normals[i:i+3])
			}
		}
	}
	return MeshData{
		Vertices:          m.Vertices,
		Normals:           normals,
		Indices:           m.Indices,
		PartName:          m.PartName,
		Color:             color,
		DegenerateNormals: m.DegenerateNormals,
	}
}

func probeResults(g *graph.DesignGraph) []ProbeResult {
	probes := g.Probes()
	out := make([]ProbeResult, 0, len(probes))
	for _, n := range probes {
		pd, ok := n.Data.(graph.ProbeData)
		if !ok {
			continue
		}
		pr := ProbeResult{
			Label: n.Name,
			Op:    pd.Op.String(),
			U:     pd.U,
			V:     pd.V,
		}
		if t := g.Get(pd.Target); t != nil {
			pr.Target = t.Name
		}
		if pd.Value.IsFinite() {
			v := pd.Value
			pr.Value = &v
		}
		if pd.Op == graph.OpNormal {
			pr.Degenerate = geom.DegenerateNormal(pd.Value)
		}
		out = append(out, pr)
	}
	return out
}

func finite(vals []float32) bool {
	for _, f := range vals {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return false
		}
	}
	return true
}
