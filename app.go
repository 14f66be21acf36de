package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/chazu/armature/pkg/config"
	"github.com/chazu/armature/pkg/editor"
	"github.com/chazu/armature/pkg/engine"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/kernel/manifold"
	"github.com/chazu/armature/pkg/kernel/sdfx"
	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/persist"
	"github.com/chazu/armature/pkg/tessellate"
)

// App owns one editing session: the kernel, the editor and the scripting
// engine that drives it.
type App struct {
	cfg    config.Config
	logger *log.Logger
	sink   *logging.Sink
	engine *engine.Engine
	kernel kernel.Kernel
	editor *editor.Editor
}

// MeshData is the JSON-serializable mesh format handed to a renderer.
type MeshData struct {
	Vertices  []float32 `json:"vertices"`
	Normals   []float32 `json:"normals"`
	Indices   []uint32  `json:"indices"`
	PartName  string    `json:"partName"`
	Color     string    `json:"color"`
	Metalness float64   `json:"metalness"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of running a script.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with the configured kernel and an empty scene.
// A nil logger discards output.
func NewApp(cfg config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	k, err := newKernel(cfg.Kernel)
	if err != nil {
		return nil, err
	}
	sink := logging.NewSink(logger)
	return &App{
		cfg:    cfg,
		logger: logger,
		sink:   sink,
		engine: engine.NewEngine(),
		kernel: k,
		editor: editor.New(k, cfg, sink),
	}, nil
}

// newKernel picks the geometry backend named in the config.
func newKernel(c config.KernelConfig) (kernel.Kernel, error) {
	switch c.Backend {
	case "", "sdfx":
		if c.MeshCells > 0 {
			return sdfx.NewWithCells(c.MeshCells), nil
		}
		return sdfx.New(), nil
	case "manifold":
		return manifold.New()
	}
	return nil, fmt.Errorf("unknown kernel backend %q", c.Backend)
}

// Editor returns the session's editor.
func (a *App) Editor() *editor.Editor { return a.editor }

// Messages returns the operation log of the session, oldest first.
func (a *App) Messages() []string { return a.sink.Messages() }

// Reset discards the scene and history and starts an empty session.
func (a *App) Reset() {
	a.editor = editor.New(a.kernel, a.cfg, a.sink)
}

// Evaluate runs source against a fresh scene and returns the resulting
// meshes. Re-running the same source always gives the same scene.
func (a *App) Evaluate(source string) EvalResult {
	a.Reset()
	return a.Exec(source)
}

// Exec runs source against the current scene, the way a console line
// would, and returns the resulting meshes.
func (a *App) Exec(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: run the script against the editor.
	evalErrs, err := a.engine.Evaluate(a.editor, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, EvalErrorData{
			Line:    e.Line,
			Col:     e.Col,
			Message: e.Message,
		})
	}

	// Step 2: joint problems left in the scene.
	for _, w := range engine.Warnings(a.editor) {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: w.Message})
	}

	// Step 3: tessellate whatever the script built, even after an error.
	meshes, err := a.Meshes()
	if err != nil {
		a.logger.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}
	result.Meshes = meshes
	return result
}

// Meshes tessellates the current scene.
func (a *App) Meshes() ([]MeshData, error) {
	parts, err := tessellate.Tessellate(a.editor.Scene(), a.kernel)
	if err != nil {
		return nil, err
	}
	out := make([]MeshData, 0, len(parts))
	for _, p := range parts {
		out = append(out, MeshData{
			Vertices:  p.Mesh.Vertices,
			Normals:   p.Mesh.Normals,
			Indices:   p.Mesh.Indices,
			PartName:  p.Name,
			Color:     p.Material.Color,
			Metalness: p.Material.Metalness,
		})
	}
	return out, nil
}

// Save writes the current scene as a TOML document.
func (a *App) Save(w io.Writer) error {
	return persist.Encode(w, a.editor.Save())
}

// Load replaces the current scene with the TOML document read from r.
func (a *App) Load(r io.Reader) error {
	doc, err := persist.Decode(r)
	if err != nil {
		return err
	}
	return a.editor.Load(doc)
}
