package main

import (
	"os"
	"testing"

	"github.com/chazu/armature/pkg/config"
)

// newTestApp returns an App with a coarse sdfx kernel.
func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Kernel.MeshCells = 12
	app, err := NewApp(cfg, nil)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

// TestE2ELampExample exercises the full pipeline: Lisp source → engine →
// editor → tessellate → meshes.
func TestE2ELampExample(t *testing.T) {
	app := newTestApp(t)

	source, err := os.ReadFile("examples/lamp.lisp")
	if err != nil {
		t.Fatalf("failed to read lamp.lisp: %v", err)
	}

	result := app.Evaluate(string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if len(result.Warnings) > 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	// Expect 4 meshes: base, two arms, shade.
	if len(result.Meshes) != 4 {
		t.Fatalf("expected 4 meshes, got %d", len(result.Meshes))
	}

	expectedParts := map[string]string{
		"Cylinder": "#303030",
		"Box":      "#b0b0b0",
		"Box 2":    "#b0b0b0",
		"Sphere":   "#f0c040",
	}
	for _, m := range result.Meshes {
		color, ok := expectedParts[m.PartName]
		if !ok {
			t.Errorf("unexpected part name: %q", m.PartName)
			continue
		}
		delete(expectedParts, m.PartName)

		if len(m.Vertices) == 0 {
			t.Errorf("part %q: no vertices", m.PartName)
		}
		if len(m.Normals) != len(m.Vertices) {
			t.Errorf("part %q: %d normals for %d vertices", m.PartName, len(m.Normals), len(m.Vertices))
		}
		if len(m.Indices) == 0 {
			t.Errorf("part %q: no indices", m.PartName)
		}
		if m.Color != color {
			t.Errorf("part %q: color %q, want %q", m.PartName, m.Color, color)
		}
	}
	for name := range expectedParts {
		t.Errorf("missing mesh for part %q", name)
	}

	if n := len(app.Editor().Scene().Joints()); n != 3 {
		t.Errorf("expected 3 joints, got %d", n)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("(box 1 1")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESingleBox ensures a minimal single-box source renders one mesh.
func TestE2ESingleBox(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(box 6 3 0.2) (paint "#884422")`)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "Box" {
		t.Errorf("expected part name 'Box', got %q", result.Meshes[0].PartName)
	}
	if result.Meshes[0].Color != "#884422" {
		t.Errorf("expected painted color, got %q", result.Meshes[0].Color)
	}
}

func TestNewKernel(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{"sdfx", false},
		{"opencascade", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			k, err := newKernel(config.KernelConfig{Backend: tt.backend, MeshCells: 8})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && k == nil {
				t.Error("expected a kernel")
			}
		})
	}
}
