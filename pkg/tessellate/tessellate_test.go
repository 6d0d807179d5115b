package tessellate_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/geotrait/pkg/euclid"
	"github.com/chazu/geotrait/pkg/graph"
	"github.com/chazu/geotrait/pkg/kernel"
	"github.com/chazu/geotrait/pkg/poly"
	"github.com/chazu/geotrait/pkg/tessellate"
)

// plane returns S(u,v) = (u, v, 1) with both curves ranged over [0, 1].
func plane() poly.Surface {
	return poly.NewSurface(
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(0, 1, 1), euclid.Vec3(1, 0, 0)}, poly.WithRange(0, 1)),
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(1, 0, 1), euclid.Vec3(0, 1, 0)}, poly.WithRange(0, 1)),
	)
}

// vertex returns vertex i of m as float64s.
func vertex(m *kernel.Mesh, i int) [3]float64 {
	return [3]float64{float64(m.Vertices[i*3]), float64(m.Vertices[i*3+1]), float64(m.Vertices[i*3+2])}
}

func TestSampleSurfacePlane(t *testing.T) {
	m, err := tessellate.SampleSurface(context.Background(), plane(), tessellate.Options{U: 2, V: 2})
	if err != nil {
		t.Fatalf("SampleSurface failed: %v", err)
	}

	if got := m.VertexCount(); got != 9 {
		t.Errorf("vertex count = %d, want 9", got)
	}
	if got := m.TriangleCount(); got != 8 {
		t.Errorf("triangle count = %d, want 8", got)
	}
	if m.DegenerateNormals != 0 {
		t.Errorf("degenerate normals = %d, want 0", m.DegenerateNormals)
	}

	tests := []struct {
		index int
		want  [3]float64
	}{
		{0, [3]float64{0, 0, 1}},
		{1, [3]float64{0, 0.5, 1}},
		{4, [3]float64{0.5, 0.5, 1}},
		{8, [3]float64{1, 1, 1}},
	}
	for _, tt := range tests {
		if got := vertex(m, tt.index); got != tt.want {
			t.Errorf("vertex %d = %v, want %v", tt.index, got, tt.want)
		}
	}

	for i := 0; i < m.VertexCount(); i++ {
		n := [3]float32{m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2]}
		if n != [3]float32{0, 0, 1} {
			t.Errorf("normal %d = %v, want [0 0 1]", i, n)
		}
	}
}

func TestSampleSurfaceWinding(t *testing.T) {
	m, err := tessellate.SampleSurface(context.Background(), plane(), tessellate.Options{U: 3, V: 4})
	if err != nil {
		t.Fatalf("SampleSurface failed: %v", err)
	}

	// Every triangle must face +z, the direction of the surface normal.
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a := vertex(m, int(m.Indices[tri*3]))
		b := vertex(m, int(m.Indices[tri*3+1]))
		c := vertex(m, int(m.Indices[tri*3+2]))
		e1 := euclid.Vec3(b[0]-a[0], b[1]-a[1], b[2]-a[2])
		e2 := euclid.Vec3(c[0]-a[0], c[1]-a[1], c[2]-a[2])
		if z := e1.Cross(e2).Z; z <= 0 {
			t.Fatalf("triangle %d faces away from the normal (z = %g)", tri, z)
		}
	}
}

func TestSampleSurfaceRange(t *testing.T) {
	s := poly.NewSurface(
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(0, 1, 1), euclid.Vec3(1, 0, 0)}, poly.WithRange(-2, 2)),
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(1, 0, 1), euclid.Vec3(0, 1, 0)}, poly.WithRange(3, 5)),
	)

	tests := []struct {
		name      string
		override  *[2]float64
		wantFirst [3]float64
		wantLast  [3]float64
	}{
		{"declared", nil, [3]float64{-2, 3, 1}, [3]float64{2, 5, 1}},
		{"override", &[2]float64{-1, 1}, [3]float64{-1, -1, 1}, [3]float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tessellate.SampleSurface(context.Background(), s, tessellate.Options{U: 4, V: 4, Range: tt.override})
			if err != nil {
				t.Fatalf("SampleSurface failed: %v", err)
			}
			if got := vertex(m, 0); got != tt.wantFirst {
				t.Errorf("first vertex = %v, want %v", got, tt.wantFirst)
			}
			if got := vertex(m, m.VertexCount()-1); got != tt.wantLast {
				t.Errorf("last vertex = %v, want %v", got, tt.wantLast)
			}
		})
	}
}

func TestSampleSurfaceDegenerate(t *testing.T) {
	// A constant u curve makes the u partial zero everywhere.
	s := poly.NewSurface(
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(1, 1, 1)}),
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(0, 0, 0), euclid.Vec3(1, 2, 3)}),
	)
	m, err := tessellate.SampleSurface(context.Background(), s, tessellate.Options{U: 2, V: 3, Range: &[2]float64{0, 1}})
	if err != nil {
		t.Fatalf("SampleSurface failed: %v", err)
	}
	if m.DegenerateNormals != m.VertexCount() {
		t.Errorf("degenerate normals = %d, want %d", m.DegenerateNormals, m.VertexCount())
	}
	if !math.IsNaN(float64(m.Normals[0])) {
		t.Errorf("normal stored as %v, want NaN as returned by the surface", m.Normals[:3])
	}
}

func TestSampleSurfaceErrors(t *testing.T) {
	t.Run("resolution", func(t *testing.T) {
		_, err := tessellate.SampleSurface(context.Background(), plane(), tessellate.Options{U: 0, V: 4})
		if !errors.Is(err, tessellate.ErrResolution) {
			t.Errorf("err = %v, want ErrResolution", err)
		}
	})
	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := tessellate.SampleSurface(ctx, plane(), tessellate.Options{U: 8, V: 8})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}

func TestSampleSurfaceWorkersAgree(t *testing.T) {
	s := poly.NewSurface(
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(0, 1, 1), euclid.Vec3(1, 0, 0), euclid.Vec3(0, 0, 1)}, poly.WithRange(-2, 2)),
		poly.NewCurve3([]euclid.Vector3{euclid.Vec3(1, 0, 2), euclid.Vec3(0, 1, 1)}, poly.WithRange(-1, 1)),
	)
	serial, err := tessellate.SampleSurface(context.Background(), s, tessellate.Options{U: 16, V: 12, Workers: 1})
	if err != nil {
		t.Fatalf("serial: %v", err)
	}
	parallel, err := tessellate.SampleSurface(context.Background(), s, tessellate.Options{U: 16, V: 12, Workers: 8})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}
	if d := cmp.Diff(serial, parallel); d != "" {
		t.Errorf("meshes differ (-serial +parallel):\n%s", d)
	}
}

func TestSampleCurve(t *testing.T) {
	c := poly.NewCurve3([]euclid.Vector3{euclid.Vec3(1, 1, 1), euclid.Vec3(2, 2, 2), euclid.Vec3(3, 3, 3)}, poly.WithRange(0, 2))

	l := tessellate.SampleCurve(c, 4, nil)
	if got := l.VertexCount(); got != 5 {
		t.Fatalf("vertex count = %d, want 5", got)
	}
	if got := l.SegmentCount(); got != 4 {
		t.Errorf("segment count = %d, want 4", got)
	}
	if got := l.Vertices[len(l.Vertices)-3:]; !cmp.Equal(got, []float32{17, 17, 17}) {
		t.Errorf("last vertex = %v, want c(2) = 17", got)
	}
	if got := l.Tangents[len(l.Tangents)-3:]; !cmp.Equal(got, []float32{14, 14, 14}) {
		t.Errorf("last tangent = %v, want c'(2) = 14", got)
	}

	l = tessellate.SampleCurve(c, 2, &[2]float64{0, 1})
	if got := l.Vertices[len(l.Vertices)-3:]; !cmp.Equal(got, []float32{6, 6, 6}) {
		t.Errorf("last vertex with override = %v, want c(1) = 6", got)
	}

	if l := tessellate.SampleCurve(c, 0, nil); l.VertexCount() != 0 {
		t.Errorf("zero segments gave %d vertices, want 0", l.VertexCount())
	}
}

// ---------------------------------------------------------------------------
// Graph traversal
// ---------------------------------------------------------------------------

func buildGraph() *graph.DesignGraph {
	g := graph.New()

	rail := &graph.Node{
		ID:   graph.NewNodeID("defcurve/rail"),
		Kind: graph.NodeCurve,
		Name: "rail",
		Data: graph.CurveData{
			Coeffs: []euclid.Vector3{euclid.Vec3(0, 0, 0), euclid.Vec3(1, 0, 0)},
			Range:  &[2]float64{0, 1},
		},
	}
	sheet := &graph.Node{
		ID:   graph.NewNodeID("defsurface/sheet"),
		Kind: graph.NodeSurface,
		Name: "sheet",
		Data: graph.SurfaceData{
			U: graph.CurveData{Coeffs: []euclid.Vector3{euclid.Vec3(0, 1, 1), euclid.Vec3(1, 0, 0)}, Range: &[2]float64{0, 1}},
			V: graph.CurveData{Coeffs: []euclid.Vector3{euclid.Vec3(1, 0, 1), euclid.Vec3(0, 1, 0)}, Range: &[2]float64{0, 1}},
		},
	}
	probe := &graph.Node{
		ID:       graph.NewNodeID("probe/p"),
		Kind:     graph.NodeProbe,
		Name:     "p",
		Children: []graph.NodeID{sheet.ID},
		Data:     graph.ProbeData{Target: sheet.ID, Op: graph.OpNormal},
	}
	g.AddNode(rail)
	g.AddNode(sheet)
	g.AddNode(probe)
	g.AddRoot(rail.ID)
	g.AddRoot(sheet.ID)
	g.AddRoot(probe.ID)
	return g
}

func TestTessellateGraph(t *testing.T) {
	opts := tessellate.Options{U: 4, V: 4, CurveSegments: 10}
	meshes, polylines, err := tessellate.Tessellate(context.Background(), buildGraph(), opts)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	if len(polylines) != 1 {
		t.Fatalf("expected 1 polyline, got %d", len(polylines))
	}
	if meshes[0].PartName != "sheet" {
		t.Errorf("mesh PartName = %q, want %q", meshes[0].PartName, "sheet")
	}
	if polylines[0].PartName != "rail" {
		t.Errorf("polyline PartName = %q, want %q", polylines[0].PartName, "rail")
	}
	if got := meshes[0].TriangleCount(); got != 32 {
		t.Errorf("triangle count = %d, want 32", got)
	}
	if got := polylines[0].SegmentCount(); got != 10 {
		t.Errorf("segment count = %d, want 10", got)
	}
}

func TestTessellateEmpty(t *testing.T) {
	meshes, polylines, err := tessellate.Tessellate(context.Background(), nil, tessellate.DefaultOptions())
	if err != nil || meshes != nil || polylines != nil {
		t.Errorf("nil graph: got %v, %v, %v", meshes, polylines, err)
	}

	meshes, polylines, err = tessellate.Tessellate(context.Background(), graph.New(), tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 || len(polylines) != 0 {
		t.Errorf("empty graph produced %d meshes and %d polylines", len(meshes), len(polylines))
	}
}

func TestTessellateUnnamedUsesShortID(t *testing.T) {
	g := graph.New()
	id := graph.NewNodeID("anon")
	g.AddNode(&graph.Node{
		ID:   id,
		Kind: graph.NodeCurve,
		Data: graph.CurveData{Coeffs: []euclid.Vector3{euclid.Vec3(1, 2, 3)}},
	})
	g.AddRoot(id)

	_, polylines, err := tessellate.Tessellate(context.Background(), g, tessellate.DefaultOptions())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if polylines[0].PartName != id.Short() {
		t.Errorf("PartName = %q, want %q", polylines[0].PartName, id.Short())
	}
}

func TestTessellateBadOptions(t *testing.T) {
	_, _, err := tessellate.Tessellate(context.Background(), buildGraph(), tessellate.Options{U: 4, V: 4})
	if !errors.Is(err, tessellate.ErrResolution) {
		t.Errorf("err = %v, want ErrResolution", err)
	}
	_, _, err = tessellate.Tessellate(context.Background(), buildGraph(), tessellate.Options{U: 0, V: 4, CurveSegments: 4})
	if !errors.Is(err, tessellate.ErrResolution) {
		t.Errorf("err = %v, want ErrResolution", err)
	}
}
