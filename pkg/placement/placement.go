// Package placement finds a free spot for new objects. An object whose
// spawn position collides with the scene is not added; instead one
// candidate per free axis direction is offered for the user to pick.
package placement

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultEpsilon  = 0.01
	DefaultMaxDepth = 20
)

// Sentinel errors.
var (
	ErrNoPreview  = errors.New("no placement preview active")
	ErrNoFreeSlot = errors.New("no free placement found in any direction")
)

// Options tunes the search.
type Options struct {
	Spawn    mgl64.Vec3
	Epsilon  float64
	MaxDepth int
}

// Candidate is one free position found by the search.
type Candidate struct {
	Direction Direction
	Position  mgl64.Vec3
	Bounds    scene.Box
	Depth     int
}

// Preview is a pending placement awaiting confirmation.
type Preview struct {
	Name       string
	Geometry   *scene.Geometry
	Material   scene.Material
	Candidates []Candidate
}

// Engine places new objects through the history.
type Engine struct {
	scene   *scene.Scene
	history *history.History
	opts    Options
	preview *Preview
}

// New returns a placement engine.
func New(s *scene.Scene, h *history.History, opts Options) *Engine {
	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultEpsilon
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Engine{scene: s, history: h, opts: opts}
}

// Preview returns the pending preview, or nil.
func (e *Engine) Preview() *Preview {
	return e.preview
}

// RequestAdd adds an object at the spawn position when that spot is free
// and returns it. Otherwise it returns a preview of candidate positions
// and adds nothing. ErrNoFreeSlot is returned when every direction is
// exhausted.
func (e *Engine) RequestAdd(name string, g *scene.Geometry, m scene.Material) (*scene.Object, *Preview, error) {
	e.preview = nil
	local := g.Bounds()
	if local.Empty() {
		return nil, nil, fmt.Errorf("place %s: geometry has no volume", name)
	}
	spawn := local.Translate(e.opts.Spawn)
	hit, ok := e.collider(spawn)
	if !ok {
		obj, err := e.commit(name, g, m, e.opts.Spawn)
		return obj, nil, err
	}

	p := &Preview{Name: name, Geometry: g, Material: m}
	for _, d := range Directions {
		if c, ok := e.search(local, e.opts.Spawn, hit, d, 1); ok {
			p.Candidates = append(p.Candidates, c)
		}
	}
	if len(p.Candidates) == 0 {
		return nil, nil, fmt.Errorf("place %s: %w", name, ErrNoFreeSlot)
	}
	e.preview = p
	return nil, p, nil
}

// search places local flush against obstacle along d. If that spot still
// collides it continues from the colliding object, giving up once depth
// exceeds the configured cap. Any collider reaches past the candidate's near
// face, so each step makes progress along d.
func (e *Engine) search(local scene.Box, pos mgl64.Vec3, obstacle scene.Box, d Direction, depth int) (Candidate, bool) {
	if depth > e.opts.MaxDepth {
		return Candidate{}, false
	}
	a := d.Axis
	if d.Sign > 0 {
		pos[a] = obstacle.Max[a] + e.opts.Epsilon - local.Min[a]
	} else {
		pos[a] = obstacle.Min[a] - e.opts.Epsilon - local.Max[a]
	}
	b := local.Translate(pos)

	next, hit := e.collider(b)
	if !hit {
		return Candidate{Direction: d, Position: pos, Bounds: b, Depth: depth}, true
	}
	return e.search(local, pos, next, d, depth+1)
}

// collider returns the bounds of the first object overlapping b.
func (e *Engine) collider(b scene.Box) (scene.Box, bool) {
	for _, o := range e.scene.Objects() {
		if wb := e.scene.WorldBounds(o.ID); wb.Intersects(b) {
			return wb, true
		}
	}
	return scene.Box{}, false
}

// Confirm commits candidate i of the pending preview.
func (e *Engine) Confirm(i int) (*scene.Object, error) {
	p := e.preview
	if p == nil {
		return nil, ErrNoPreview
	}
	if i < 0 || i >= len(p.Candidates) {
		return nil, fmt.Errorf("candidate %d out of range [0,%d)", i, len(p.Candidates))
	}
	e.preview = nil
	return e.commit(p.Name, p.Geometry, p.Material, p.Candidates[i].Position)
}

// ConfirmDirection commits the candidate found along d.
func (e *Engine) ConfirmDirection(d Direction) (*scene.Object, error) {
	if e.preview == nil {
		return nil, ErrNoPreview
	}
	for i, c := range e.preview.Candidates {
		if c.Direction == d {
			return e.Confirm(i)
		}
	}
	return nil, fmt.Errorf("no candidate along %s", d)
}

// Cancel discards the pending preview without touching the scene.
func (e *Engine) Cancel() {
	e.preview = nil
}

func (e *Engine) commit(name string, g *scene.Geometry, m scene.Material, pos mgl64.Vec3) (*scene.Object, error) {
	obj := scene.NewObject(e.scene.UniqueName(name), g, m, scene.At(pos))
	if err := e.history.Execute(history.NewAddObject(e.scene, obj)); err != nil {
		return nil, err
	}
	return obj, nil
}
