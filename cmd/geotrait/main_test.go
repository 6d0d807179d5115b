package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/geotrait/pkg/app"
	"github.com/chazu/geotrait/pkg/config"
)

func TestRunWritesResult(t *testing.T) {
	outPath = filepath.Join(t.TempDir(), "out.json")
	defer func() { outPath = "" }()

	conf := config.Default()
	conf.Resolution = config.Resolution{U: 2, V: 2}
	conf.CurveSegments = 3

	source := `
(defcurve "a" (poly-curve 1 2 3 :min 0 :max 1))
(probe "p" :of (curve "a") :t 2)
`
	if code := run(conf, source); code != 0 {
		t.Fatalf("run returned %d, want 0", code)
	}

	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var result app.EvalResult
	if err := json.Unmarshal(b, &result); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(result.Polylines) != 1 || len(result.Polylines[0].Vertices) != 4*3 {
		t.Errorf("unexpected polylines: %+v", result.Polylines)
	}
	if len(result.Probes) != 1 || result.Probes[0].Value == nil || result.Probes[0].Value.X != 17 {
		t.Errorf("unexpected probes: %+v", result.Probes)
	}
}

func TestRunReportsErrors(t *testing.T) {
	outPath = filepath.Join(t.TempDir(), "out.json")
	defer func() { outPath = "" }()

	if code := run(config.Default(), `(defcurve "broken"`); code != 1 {
		t.Errorf("run returned %d, want 1", code)
	}
}

func TestRunRejectsProfileMode(t *testing.T) {
	prof = "gpu"
	defer func() { prof = "" }()

	if code := run(config.Default(), ""); code != 2 {
		t.Errorf("run returned %d, want 2", code)
	}
}

func TestReadScriptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.geo")
	if err := os.WriteFile(path, []byte(`(vec3 1 2 3)`), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := readScript(path)
	if err != nil {
		t.Fatalf("readScript: %v", err)
	}
	if string(b) != `(vec3 1 2 3)` {
		t.Errorf("readScript = %q", b)
	}
	if _, err := readScript(filepath.Join(t.TempDir(), "missing.geo")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
