// Package clipboard copies, pastes and mirrors objects. Pastes and mirrors
// are offered as preview groups first; committing a group adds all of its
// objects in one undo step.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/placement"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMargin is the gap left between pasted copies and their sources.
const DefaultMargin = 0.5

// Sentinel errors.
var (
	ErrEmpty       = errors.New("clipboard is empty")
	ErrNoSelection = errors.New("nothing selected")
	ErrNoPreview   = errors.New("no preview active")
	ErrNoRepeat    = errors.New("no paste to repeat for this selection")
)

// Entry is a snapshot of one copied object. It keeps working after the
// source object is deleted.
type Entry struct {
	Name      string
	Geometry  *scene.Geometry
	Material  scene.Material
	Transform scene.Transform // world
}

// Bounds returns the entry's world AABB.
func (e Entry) Bounds() scene.Box {
	return e.Geometry.Bounds().Transformed(e.Transform)
}

// PreviewKind tells paste previews from mirror previews.
type PreviewKind int

const (
	PasteKind PreviewKind = iota
	MirrorKind
)

func (k PreviewKind) String() string {
	if k == MirrorKind {
		return "mirror"
	}
	return "paste"
}

// Group is one choice in a preview: the objects that would be added.
type Group struct {
	Label   string
	Axis    int
	Offset  mgl64.Vec3 // paste only
	Objects []*scene.Object
}

// Bounds returns the world AABB of the group's objects.
func (g Group) Bounds() scene.Box {
	out := scene.EmptyBox()
	for _, o := range g.Objects {
		out = out.Union(o.Geometry.Bounds().Transformed(o.Transform))
	}
	return out
}

// Preview is a set of groups awaiting confirmation.
type Preview struct {
	Kind   PreviewKind
	Groups []Group
}

// Clipboard holds copied entries and the pending preview.
type Clipboard struct {
	scene   *scene.Scene
	history *history.History
	margin  float64
	entries []Entry
	preview *Preview

	// last paste, for repeating along the same offset
	lastOffset mgl64.Vec3
	lastPasted []scene.ID
}

// New returns an empty clipboard. A non-positive margin selects
// DefaultMargin.
func New(s *scene.Scene, h *history.History, margin float64) *Clipboard {
	if margin <= 0 {
		margin = DefaultMargin
	}
	return &Clipboard{scene: s, history: h, margin: margin}
}

// Entries returns the copied entries.
func (c *Clipboard) Entries() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len returns the number of copied entries.
func (c *Clipboard) Len() int { return len(c.entries) }

// Preview returns the pending preview, or nil.
func (c *Clipboard) Preview() *Preview { return c.preview }

// Cancel discards the pending preview.
func (c *Clipboard) Cancel() { c.preview = nil }

func (c *Clipboard) sources(ids []scene.ID) ([]*scene.Object, error) {
	if len(ids) == 0 {
		return nil, ErrNoSelection
	}
	out := make([]*scene.Object, 0, len(ids))
	for _, id := range ids {
		o := c.scene.Get(id)
		if o == nil {
			return nil, fmt.Errorf("object %s: %w", id.Short(), scene.ErrNotFound)
		}
		out = append(out, o)
	}
	return out, nil
}

// Copy replaces the clipboard with snapshots of ids.
func (c *Clipboard) Copy(ids []scene.ID) error {
	objs, err := c.sources(ids)
	if err != nil {
		return err
	}
	c.entries = c.entries[:0]
	for _, o := range objs {
		c.entries = append(c.entries, Entry{
			Name:      o.Name,
			Geometry:  o.Geometry,
			Material:  o.Material.Clone(),
			Transform: c.scene.World(o.ID),
		})
	}
	c.lastPasted = nil
	return nil
}

func detached(o *scene.Object, world scene.Transform) *scene.Object {
	return scene.NewObject(o.Name, o.Geometry, o.Material.Clone(), world)
}

func (c *Clipboard) entryObjects(offset mgl64.Vec3) []*scene.Object {
	out := make([]*scene.Object, 0, len(c.entries))
	for _, e := range c.entries {
		t := e.Transform
		t.Position = t.Position.Add(offset)
		out = append(out, scene.NewObject(e.Name, e.Geometry, e.Material.Clone(), t))
	}
	return out
}

// PastePreview offers one group per axis direction. Each is offset from the
// copied positions by the size of the combined bounds of the selection and
// the clipboard along that axis, plus the margin.
func (c *Clipboard) PastePreview(selection []scene.ID) (*Preview, error) {
	if len(c.entries) == 0 {
		return nil, ErrEmpty
	}
	bounds := c.scene.BoundsOf(selection)
	for _, e := range c.entries {
		bounds = bounds.Union(e.Bounds())
	}
	size := bounds.Size()

	p := &Preview{Kind: PasteKind}
	for _, d := range placement.Directions {
		var off mgl64.Vec3
		off[d.Axis] = d.Sign * (size[d.Axis] + c.margin)
		p.Groups = append(p.Groups, Group{
			Label:   d.String(),
			Axis:    d.Axis,
			Offset:  off,
			Objects: c.entryObjects(off),
		})
	}
	c.preview = p
	return p, nil
}

// Commit adds the objects of preview group i in one undo step and returns
// them. Committing a paste remembers its offset for DirectPaste.
func (c *Clipboard) Commit(i int) ([]*scene.Object, error) {
	p := c.preview
	if p == nil {
		return nil, ErrNoPreview
	}
	if i < 0 || i >= len(p.Groups) {
		return nil, fmt.Errorf("preview group %d out of range [0,%d)", i, len(p.Groups))
	}
	g := p.Groups[i]
	if err := c.add(p.Kind.String()+" "+g.Label, g.Objects); err != nil {
		return nil, err
	}
	c.preview = nil
	if p.Kind == PasteKind {
		c.remember(g.Offset, g.Objects)
	}
	return g.Objects, nil
}

// CommitLabel commits the group with the given label, such as "x" or "+z".
func (c *Clipboard) CommitLabel(label string) ([]*scene.Object, error) {
	if c.preview == nil {
		return nil, ErrNoPreview
	}
	if c.preview.Kind == PasteKind {
		if d, err := placement.ParseDirection(label); err == nil {
			label = d.String()
		}
	}
	for i, g := range c.preview.Groups {
		if g.Label == label {
			return c.Commit(i)
		}
	}
	return nil, fmt.Errorf("no preview group %q", label)
}

// DirectPaste repeats the last paste when selection is still exactly what
// that paste produced, placing the next copies one more offset along. This
// builds evenly spaced rows without picking a direction each time.
func (c *Clipboard) DirectPaste(selection []scene.ID) ([]*scene.Object, error) {
	if len(c.lastPasted) == 0 || !sameIDs(selection, c.lastPasted) {
		return nil, ErrNoRepeat
	}
	objs := c.entryObjects(c.lastOffset)
	if err := c.add("paste again", objs); err != nil {
		return nil, err
	}
	c.remember(c.lastOffset, objs)
	return objs, nil
}

// remember makes the pasted copies the new paste source so repeated pastes
// march along the offset.
func (c *Clipboard) remember(offset mgl64.Vec3, objs []*scene.Object) {
	c.lastOffset = offset
	c.lastPasted = c.lastPasted[:0]
	for i, o := range objs {
		c.lastPasted = append(c.lastPasted, o.ID)
		if i < len(c.entries) {
			c.entries[i].Transform = o.Transform
		}
	}
}

// add names objs uniquely and adds them in one step. On failure the
// objects get their old names back.
func (c *Clipboard) add(name string, objs []*scene.Object) error {
	taken := make(map[string]bool)
	names := make([]string, len(objs))
	cmds := make([]history.Command, 0, len(objs))
	for i, o := range objs {
		names[i] = o.Name
		o.Name = c.uniqueName(o.Name, taken)
		cmds = append(cmds, history.NewAddObject(c.scene, o))
	}
	if err := c.history.Execute(history.NewMacro(name, cmds...)); err != nil {
		for i, o := range objs {
			o.Name = names[i]
		}
		return err
	}
	return nil
}

func (c *Clipboard) uniqueName(base string, taken map[string]bool) string {
	name := c.scene.UniqueName(base)
	for n := 2; taken[name]; n++ {
		name = c.scene.UniqueName(fmt.Sprintf("%s %d", base, n))
	}
	taken[name] = true
	return name
}

func sameIDs(a, b []scene.ID) bool {
	sa := make(map[scene.ID]bool, len(a))
	for _, id := range a {
		sa[id] = true
	}
	sb := make(map[scene.ID]bool, len(b))
	for _, id := range b {
		if !sa[id] {
			return false
		}
		sb[id] = true
	}
	return len(sa) == len(sb)
}
