// Package tessellate samples curves and surfaces through the parametric
// contract and produces polylines and triangle meshes. It never mutates the
// design graph.
package tessellate

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/geotrait/pkg/geom"
	"github.com/chazu/geotrait/pkg/graph"
	"github.com/chazu/geotrait/pkg/kernel"
	"github.com/chazu/geotrait/pkg/logging"
)

// ErrResolution is returned when a sampling resolution is below one segment.
var ErrResolution = errors.New("resolution must be at least 1")

// Options controls sampling density and parallelism.
type Options struct {
	U, V          int         // surface grid segments along u and v
	CurveSegments int         // polyline segments per curve
	Workers       int         // concurrent rows; <= 0 means GOMAXPROCS
	Range         *[2]float64 // overrides every declared range when set
}

// DefaultOptions returns a 32x32 grid and 64 curve segments.
func DefaultOptions() Options {
	return Options{U: 32, V: 32, CurveSegments: 64}
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// surfaceRange returns the rectangle to sample: the override, else the
// surface's declared range, else the unit square.
func surfaceRange(s geom.Surface3, override *[2]float64) (u0, u1, v0, v1 float64) {
	if override != nil {
		return override[0], override[1], override[0], override[1]
	}
	if r, ok := s.(geom.Ranged); ok {
		return r.ParameterRange()
	}
	return 0, 1, 0, 1
}

// SampleSurface evaluates s on a (U+1)x(V+1) grid and triangulates it, two
// triangles per cell wound so that they face along the surface normal. Rows
// are evaluated in parallel. Degenerate normals are stored as returned and
// counted in Mesh.DegenerateNormals.
func SampleSurface(ctx context.Context, s geom.Surface3, opts Options) (*kernel.Mesh, error) {
	if opts.U < 1 || opts.V < 1 {
		return nil, fmt.Errorf("tessellate: grid %dx%d: %w", opts.U, opts.V, ErrResolution)
	}

	u0, u1, v0, v1 := surfaceRange(s, opts.Range)
	us := geom.Samples(u0, u1, opts.U)
	vs := geom.Samples(v0, v1, opts.V)
	stride := len(vs)

	m := kernel.NewMesh(len(us) * stride)
	var degenerate atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.workers())
	for i, u := range us {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j, v := range vs {
				n := s.Normal(u, v)
				if geom.DegenerateNormal(n) {
					degenerate.Add(1)
				}
				m.SetVertex(i*stride+j, s.Subs(u, v), n)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	m.Indices = make([]uint32, 0, opts.U*opts.V*6)
	for i := 0; i < opts.U; i++ {
		for j := 0; j < opts.V; j++ {
			a := uint32(i*stride + j)
			b := a + 1
			c := a + uint32(stride)
			d := c + 1
			m.AddTriangle(a, c, b)
			m.AddTriangle(b, c, d)
		}
	}

	m.DegenerateNormals = int(degenerate.Load())
	return m, nil
}

// SampleCurve evaluates c at segments+1 evenly spaced parameters over its
// declared range, or over rng when it is non-nil. It returns an empty
// polyline when segments is below one.
func SampleCurve(c geom.Curve3, segments int, rng *[2]float64) *kernel.Polyline {
	t0, t1 := c.ParameterRange()
	if rng != nil {
		t0, t1 = rng[0], rng[1]
	}
	l := &kernel.Polyline{}
	for _, t := range geom.Samples(t0, t1, segments) {
		l.Append(c.Subs(t), c.Der(t))
	}
	return l
}

// Tessellate walks the roots of the design graph and samples every curve
// and surface. Probe nodes carry no geometry and are skipped.
func Tessellate(ctx context.Context, g *graph.DesignGraph, opts Options) ([]*kernel.Mesh, []*kernel.Polyline, error) {
	if g == nil {
		return nil, nil, nil
	}
	if opts.CurveSegments < 1 {
		return nil, nil, fmt.Errorf("tessellate: %d curve segments: %w", opts.CurveSegments, ErrResolution)
	}

	var (
		meshes    []*kernel.Mesh
		polylines []*kernel.Polyline
	)
	for _, rootID := range g.Roots {
		n := g.Get(rootID)
		if n == nil {
			continue
		}
		switch data := n.Data.(type) {
		case graph.CurveData:
			l := SampleCurve(data.Curve(), opts.CurveSegments, opts.Range)
			l.PartName = partName(n)
			polylines = append(polylines, l)

		case graph.SurfaceData:
			m, err := SampleSurface(ctx, data.Surface(), opts)
			if err != nil {
				return nil, nil, fmt.Errorf("tessellate: surface %s: %w", partName(n), err)
			}
			m.PartName = partName(n)
			if m.DegenerateNormals > 0 {
				logging.Logger().Warn("degenerate normals",
					"surface", m.PartName, "count", m.DegenerateNormals, "vertices", m.VertexCount())
			}
			logging.Logger().Debug("sampled surface",
				"surface", m.PartName, "vertices", m.VertexCount(), "triangles", m.TriangleCount())
			meshes = append(meshes, m)

		case graph.ProbeData:
			// No geometry.

		default:
			return nil, nil, fmt.Errorf("tessellate: node %s has unsupported data type %T", n.ID.Short(), n.Data)
		}
	}

	return meshes, polylines, nil
}

// partName prefers the node's Name and falls back to its short ID.
func partName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID.Short()
}
