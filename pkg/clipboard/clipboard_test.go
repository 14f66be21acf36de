package clipboard

import (
	"errors"
	"testing"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-9

type boundsSolid struct{ min, max [3]float64 }

func (b boundsSolid) BoundingBox() (min, max [3]float64) { return b.min, b.max }

type fixture struct {
	scene *scene.Scene
	sel   *scene.Selection
	hist  *history.History
	clip  *Clipboard
}

func newFixture() *fixture {
	f := &fixture{scene: scene.New(), sel: scene.NewSelection()}
	f.hist = history.New(f.sel, logging.NewSink(nil), 0)
	f.clip = New(f.scene, f.hist, 0)
	return f
}

func (f *fixture) part(t *testing.T, name string, tr scene.Transform) *scene.Object {
	t.Helper()
	g := &scene.Geometry{
		Recipe: scene.BoxRecipe(2, 2, 2),
		Solid:  boundsSolid{min: [3]float64{-1, -1, -1}, max: [3]float64{1, 1, 1}},
	}
	o := scene.NewObject(name, g, scene.DefaultMaterial(), tr)
	if err := f.scene.Add(o); err != nil {
		t.Fatal(err)
	}
	return o
}

func TestMirrorTransformSigns(t *testing.T) {
	q := mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.1, 0.2, 0.3}}
	src := scene.Transform{Position: mgl64.Vec3{1, 2, 3}, Rotation: q, Scale: mgl64.Vec3{1, 2, 3}}

	tests := []struct {
		axis  int
		pos   mgl64.Vec3
		rot   mgl64.Quat
		scale mgl64.Vec3
	}{
		{0, mgl64.Vec3{-1, 2, 3}, mgl64.Quat{W: 0.5, V: mgl64.Vec3{0.1, -0.2, -0.3}}, mgl64.Vec3{-1, 2, 3}},
		{1, mgl64.Vec3{1, -2, 3}, mgl64.Quat{W: 0.5, V: mgl64.Vec3{-0.1, 0.2, -0.3}}, mgl64.Vec3{1, -2, 3}},
		{2, mgl64.Vec3{1, 2, -3}, mgl64.Quat{W: 0.5, V: mgl64.Vec3{-0.1, -0.2, 0.3}}, mgl64.Vec3{1, 2, -3}},
	}
	for _, tt := range tests {
		t.Run(AxisName(tt.axis), func(t *testing.T) {
			got := MirrorTransform(src, tt.axis)
			if got.Position != tt.pos {
				t.Errorf("position = %v, want %v", got.Position, tt.pos)
			}
			if got.Rotation != tt.rot {
				t.Errorf("rotation = %v, want %v", got.Rotation, tt.rot)
			}
			if got.Scale != tt.scale {
				t.Errorf("scale = %v, want %v", got.Scale, tt.scale)
			}
		})
	}
}

func TestMirrorTransformReflectsPoints(t *testing.T) {
	src := scene.Transform{
		Position: mgl64.Vec3{3, -1, 2},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{1, 2, 3}.Normalize()),
		Scale:    mgl64.Vec3{1, 2, 0.5},
	}
	pts := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0.3, -0.4, 2}}
	for axis := 0; axis < 3; axis++ {
		m := MirrorTransform(src, axis)
		for _, p := range pts {
			want := src.Apply(p)
			want[axis] = -want[axis]
			if got := m.Apply(p); !got.ApproxEqualThreshold(want, 1e-9) {
				t.Errorf("axis %d point %v: got %v, want %v", axis, p, got, want)
			}
		}
	}
}

func TestMirrorPreviewCommit(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", scene.At(mgl64.Vec3{3, 0, 0}))
	b := f.part(t, "B", scene.At(mgl64.Vec3{3, 4, 0}))

	p, err := f.clip.MirrorPreview([]scene.ID{a.ID, b.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Groups) != 3 || len(p.Groups[0].Objects) != 2 {
		t.Fatalf("preview groups = %+v", p.Groups)
	}
	if f.scene.Len() != 2 {
		t.Fatal("preview must not touch the scene")
	}

	objs, err := f.clip.CommitLabel("x")
	if err != nil {
		t.Fatal(err)
	}
	if f.scene.Len() != 4 {
		t.Fatalf("scene has %d objects, want 4", f.scene.Len())
	}
	if got := f.scene.World(objs[0].ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{-3, 0, 0}, tol) {
		t.Errorf("mirrored A at %v", got)
	}
	if objs[0].Transform.Scale.X() != -1 {
		t.Errorf("mirrored scale %v, want x negated", objs[0].Transform.Scale)
	}
	if objs[0].Name != "A 2" || objs[1].Name != "B 2" {
		t.Errorf("names = %q, %q", objs[0].Name, objs[1].Name)
	}
	if f.clip.Preview() != nil {
		t.Error("commit should clear the preview")
	}

	if err := f.hist.Undo(); err != nil {
		t.Fatal(err)
	}
	if f.scene.Len() != 2 {
		t.Errorf("one undo should remove both copies, scene has %d", f.scene.Len())
	}
}

func TestCopySurvivesDelete(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", scene.At(mgl64.Vec3{}))
	if err := f.clip.Copy([]scene.ID{a.ID}); err != nil {
		t.Fatal(err)
	}
	if err := f.hist.Execute(history.NewDeleteObject(f.scene, a.ID)); err != nil {
		t.Fatal(err)
	}
	p, err := f.clip.PastePreview(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Groups) != 6 {
		t.Fatalf("got %d paste groups, want 6", len(p.Groups))
	}
	objs, err := f.clip.Commit(0)
	if err != nil {
		t.Fatal(err)
	}
	if objs[0].Name != "A" {
		t.Errorf("name = %q, want A", objs[0].Name)
	}
}

func TestPasteAndRepeat(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", scene.At(mgl64.Vec3{}))
	sel := []scene.ID{a.ID}

	if _, err := f.clip.PastePreview(sel); !errors.Is(err, ErrEmpty) {
		t.Fatalf("empty clipboard: err = %v", err)
	}
	if err := f.clip.Copy(sel); err != nil {
		t.Fatal(err)
	}
	p, err := f.clip.PastePreview(sel)
	if err != nil {
		t.Fatal(err)
	}
	for _, g := range p.Groups {
		for _, o := range g.Objects {
			ob := o.Geometry.Bounds().Transformed(o.Transform)
			if ob.Intersects(f.scene.WorldBounds(a.ID)) {
				t.Errorf("group %s overlaps the source", g.Label)
			}
		}
	}

	if _, err := f.clip.DirectPaste(sel); !errors.Is(err, ErrNoRepeat) {
		t.Errorf("repeat before any paste: err = %v", err)
	}

	first, err := f.clip.CommitLabel("+x")
	if err != nil {
		t.Fatal(err)
	}
	if got := first[0].Transform.Position; !got.ApproxEqualThreshold(mgl64.Vec3{2.5, 0, 0}, tol) {
		t.Errorf("first paste at %v, want (2.5,0,0)", got)
	}

	second, err := f.clip.DirectPaste([]scene.ID{first[0].ID})
	if err != nil {
		t.Fatal(err)
	}
	if got := second[0].Transform.Position; !got.ApproxEqualThreshold(mgl64.Vec3{5, 0, 0}, tol) {
		t.Errorf("second paste at %v, want (5,0,0)", got)
	}
	if second[0].Name != "A 3" {
		t.Errorf("name = %q, want A 3", second[0].Name)
	}

	if _, err := f.clip.DirectPaste(sel); !errors.Is(err, ErrNoRepeat) {
		t.Errorf("repeat with a different selection: err = %v", err)
	}
	if undo, _ := f.hist.Len(); undo != 2 {
		t.Errorf("undo depth = %d, want 2", undo)
	}
}

func TestFailedCommitKeepsPreviewNames(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", scene.At(mgl64.Vec3{2, 0, 0}))
	p, err := f.clip.MirrorPreview([]scene.ID{a.ID})
	if err != nil {
		t.Fatal(err)
	}
	copyOfA := p.Groups[0].Objects[0]
	name := copyOfA.Name

	// An object already holding the copy's ID makes the add fail.
	clash := scene.NewObject("clash", a.Geometry, scene.DefaultMaterial(), scene.Identity())
	clash.ID = copyOfA.ID
	if err := f.scene.Add(clash); err != nil {
		t.Fatal(err)
	}

	if _, err := f.clip.Commit(0); !errors.Is(err, scene.ErrDuplicateID) {
		t.Fatalf("commit: err = %v, want ErrDuplicateID", err)
	}
	if copyOfA.Name != name {
		t.Errorf("preview object renamed to %q, want %q", copyOfA.Name, name)
	}
	if f.clip.Preview() == nil || f.hist.CanUndo() {
		t.Error("a failed commit must keep the preview and leave history alone")
	}
}

func TestSameIDs(t *testing.T) {
	tests := []struct {
		a, b []scene.ID
		want bool
	}{
		{[]scene.ID{"a", "b"}, []scene.ID{"b", "a"}, true},
		{[]scene.ID{"a", "b"}, []scene.ID{"a", "a"}, false},
		{[]scene.ID{"a", "a"}, []scene.ID{"a", "b"}, false},
		{[]scene.ID{"a"}, []scene.ID{"a", "b"}, false},
		{nil, nil, true},
	}
	for _, tt := range tests {
		if got := sameIDs(tt.a, tt.b); got != tt.want {
			t.Errorf("sameIDs(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCancelPreview(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", scene.At(mgl64.Vec3{}))
	if _, err := f.clip.MirrorPreview([]scene.ID{a.ID}); err != nil {
		t.Fatal(err)
	}
	f.clip.Cancel()
	if _, err := f.clip.Commit(0); !errors.Is(err, ErrNoPreview) {
		t.Errorf("commit after cancel: err = %v", err)
	}
	if f.hist.CanUndo() || f.scene.Len() != 1 {
		t.Error("cancel must leave scene and history alone")
	}
	if _, err := f.clip.MirrorPreview(nil); !errors.Is(err, ErrNoSelection) {
		t.Errorf("mirror nothing: err = %v", err)
	}
}
