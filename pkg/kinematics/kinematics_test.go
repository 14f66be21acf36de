package kinematics

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-6

type boundsSolid struct{ min, max [3]float64 }

func (b boundsSolid) BoundingBox() (min, max [3]float64) { return b.min, b.max }

type fixture struct {
	scene *scene.Scene
	sel   *scene.Selection
	hist  *history.History
	view  *viewport.Viewport
}

func newFixture() *fixture {
	sel := scene.NewSelection()
	return &fixture{
		scene: scene.New(),
		sel:   sel,
		hist:  history.New(sel, logging.NewSink(nil), 0),
		view:  viewport.New(viewport.Top, 800, 600, 20),
	}
}

func (f *fixture) part(t *testing.T, name string, x float64) *scene.Object {
	t.Helper()
	g := &scene.Geometry{
		Recipe: scene.BoxRecipe(2, 2, 2),
		Solid:  boundsSolid{min: [3]float64{-1, -1, -1}, max: [3]float64{1, 1, 1}},
	}
	o := scene.NewObject(name, g, scene.DefaultMaterial(), scene.At(mgl64.Vec3{x, 0, 0}))
	if err := f.scene.Add(o); err != nil {
		t.Fatal(err)
	}
	return o
}

func (f *fixture) joint(t *testing.T, ids ...scene.ID) *scene.Joint {
	t.Helper()
	j, err := CreateJoint(f.scene, f.sel, f.hist, scene.JointPivot, ids)
	if err != nil {
		t.Fatal(err)
	}
	return j
}

func TestCreateJoint(t *testing.T) {
	f := newFixture()
	p := f.part(t, "P", 0)
	a := f.part(t, "A", 4)
	b := f.part(t, "B", 8)

	if _, err := CreateJoint(f.scene, f.sel, f.hist, scene.JointPivot, []scene.ID{p.ID}); !errors.Is(err, ErrNotEnoughObjects) {
		t.Fatalf("one object: err = %v", err)
	}

	j := f.joint(t, p.ID, a.ID, b.ID)
	// Parent center 0, children center 6.
	if got := j.Transform.Position; !got.ApproxEqualThreshold(mgl64.Vec3{3, 0, 0}, tol) {
		t.Errorf("joint at %v, want (3,0,0)", got)
	}
	if j.Parent != p.ID || len(j.Children) != 2 || j.Name != "Joint 1" {
		t.Errorf("joint = %+v", j)
	}

	f.sel.Clear()
	if err := f.hist.Undo(); err != nil {
		t.Fatal(err)
	}
	if f.scene.Joint(j.ID) != nil {
		t.Error("undo should remove the joint")
	}
	if !f.sel.Equal([]scene.ID{p.ID, a.ID, b.ID}) {
		t.Errorf("selection after undo = %v", f.sel.Get())
	}
}

func TestConnectedStopsAtPivot(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", 0)
	b := f.part(t, "B", 4)
	c := f.part(t, "C", 8)
	d := f.part(t, "D", 12)
	j1 := f.joint(t, a.ID, b.ID)
	j2 := f.joint(t, b.ID, c.ID)
	j3 := f.joint(t, c.ID, d.ID)

	g := NewGraph(f.scene)
	if got := g.JointsOf(b.ID); len(got) != 2 {
		t.Fatalf("JointsOf(B) = %d joints, want 2", len(got))
	}

	objs, joints := g.Connected(b.ID, j1.ID)
	want := []scene.ID{b.ID, c.ID, d.ID}
	if len(objs) != len(want) {
		t.Fatalf("objects = %v, want %v", objs, want)
	}
	for i := range want {
		if objs[i] != want[i] {
			t.Errorf("objects[%d] = %s, want %s", i, objs[i], want[i])
		}
	}
	if len(joints) != 2 || joints[0] != j2.ID || joints[1] != j3.ID {
		t.Errorf("joints = %v", joints)
	}

	// A cycle must not loop forever.
	f.joint(t, d.ID, a.ID)
	objs, _ = NewGraph(f.scene).Connected(b.ID, j1.ID)
	if len(objs) != 4 {
		t.Errorf("cyclic walk visited %d objects, want 4", len(objs))
	}
}

func TestSingleJointRotatesAboutPivot(t *testing.T) {
	f := newFixture()
	p := f.part(t, "P", 0)
	c := f.part(t, "C", 4)
	j := f.joint(t, p.ID, c.ID)

	pose, err := BeginPose(f.scene, f.view, c.ID, mgl64.Vec3{5, 0, 0}, mgl64.Vec2{560, 300}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if pose.Pivot().ID != j.ID {
		t.Fatalf("pivot = %s, want the only joint", pose.Pivot().Name)
	}
	if ids := pose.Objects(); len(ids) != 1 || ids[0] != c.ID {
		t.Fatalf("moving objects = %v, want only C", ids)
	}

	// The joint sits at (2,0,0), screen (480,300). Sweep a quarter turn
	// clockwise on screen so C ends up under the pointer.
	pose.Update(mgl64.Vec2{480, 380}, viewport.Modifiers{})

	if got := f.scene.World(c.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{2, 0, 2}, tol) {
		t.Errorf("C at %v, want (2,0,2)", got)
	}
	if got := f.scene.World(p.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{}, tol) {
		t.Errorf("P moved to %v", got)
	}
	if got := f.scene.Joint(j.ID).Transform.Position; !got.ApproxEqualThreshold(mgl64.Vec3{2, 0, 0}, tol) {
		t.Errorf("pivot moved to %v", got)
	}
	wantRot := mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{0, 1, 0})
	if got := f.scene.World(c.ID).Rotation; !scene.QuatClose(got, wantRot) {
		t.Errorf("C rotation %v, want %v", got, wantRot)
	}

	cmd := pose.End()
	if cmd == nil {
		t.Fatal("End() = nil after a move")
	}
	if err := f.hist.Execute(cmd); err != nil {
		t.Fatal(err)
	}
	if err := f.hist.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := f.scene.World(c.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{4, 0, 0}, tol) {
		t.Errorf("C after undo at %v", got)
	}
	if err := f.hist.Redo(); err != nil {
		t.Fatal(err)
	}
	if got := f.scene.World(c.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{2, 0, 2}, tol) {
		t.Errorf("C after redo at %v", got)
	}
	if !f.sel.Equal([]scene.ID{c.ID}) {
		t.Errorf("redo selection = %v, want posed objects", f.sel.Get())
	}
}

func TestChainPoseMovesSubChain(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", 0)
	b := f.part(t, "B", 4)
	c := f.part(t, "C", 8)
	j1 := f.joint(t, a.ID, b.ID) // at 2
	j2 := f.joint(t, b.ID, c.ID) // at 6

	// Grabbing B near j2 makes j1 the far pivot.
	pose, err := BeginPose(f.scene, f.view, b.ID, mgl64.Vec3{5, 0, 0}, mgl64.Vec2{}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if pose.Pivot().ID != j1.ID {
		t.Fatalf("pivot = %s, want j1", pose.Pivot().Name)
	}
	pose.RotateBy(mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0}))

	tests := []struct {
		name string
		got  mgl64.Vec3
		want mgl64.Vec3
	}{
		{"A fixed", f.scene.World(a.ID).Position, mgl64.Vec3{0, 0, 0}},
		{"B mirrored", f.scene.World(b.ID).Position, mgl64.Vec3{0, 0, 0}},
		{"C mirrored", f.scene.World(c.ID).Position, mgl64.Vec3{-4, 0, 0}},
		{"j2 follows", f.scene.Joint(j2.ID).Transform.Position, mgl64.Vec3{-2, 0, 0}},
		{"j1 fixed", f.scene.Joint(j1.ID).Transform.Position, mgl64.Vec3{2, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.ApproxEqualThreshold(tt.want, tol) {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}

	pose.Cancel()
	if got := f.scene.World(c.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{8, 0, 0}, tol) {
		t.Errorf("C after cancel at %v", got)
	}
	if got := f.scene.Joint(j2.ID).Transform.Position; !got.ApproxEqualThreshold(mgl64.Vec3{6, 0, 0}, tol) {
		t.Errorf("j2 after cancel at %v", got)
	}
	if pose.End() != nil {
		t.Error("End after cancel should be nil")
	}
}

func TestPoseSnap(t *testing.T) {
	f := newFixture()
	p := f.part(t, "P", 0)
	c := f.part(t, "C", 4)
	f.joint(t, p.ID, c.ID)

	pose, err := BeginPose(f.scene, f.view, c.ID, mgl64.Vec3{5, 0, 0}, mgl64.Vec2{560, 300}, math.Pi/2)
	if err != nil {
		t.Fatal(err)
	}
	// 30° short of a quarter turn snaps back to zero.
	a := math.Pi / 6
	pose.Update(mgl64.Vec2{480 + 80*math.Cos(a), 300 + 80*math.Sin(a)}, viewport.Modifiers{Ctrl: true})
	if pose.End() != nil {
		t.Error("snapped to zero should not produce a command")
	}
	pose.Update(mgl64.Vec2{480, 380}, viewport.Modifiers{Ctrl: true})
	if got := f.scene.World(c.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{2, 0, 2}, tol) {
		t.Errorf("C at %v, want (2,0,2)", got)
	}
}

func TestPoseWithoutJoints(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", 0)
	if _, err := BeginPose(f.scene, f.view, a.ID, mgl64.Vec3{}, mgl64.Vec2{}, 0); !errors.Is(err, ErrNoJoints) {
		t.Errorf("err = %v, want ErrNoJoints", err)
	}
}

func TestValidate(t *testing.T) {
	f := newFixture()
	a := f.part(t, "A", 0)
	b := f.part(t, "B", 4)
	f.joint(t, a.ID, b.ID)
	if probs := Validate(f.scene); len(probs) != 0 {
		t.Fatalf("clean scene reported %v", probs)
	}

	if err := f.hist.Execute(history.NewDeleteObject(f.scene, b.ID)); err != nil {
		t.Fatal(err)
	}
	self := &scene.Joint{ID: scene.NewID(), Kind: scene.JointRotary, Parent: a.ID, Children: []scene.ID{a.ID}}
	if err := f.scene.AddJoint(self); err != nil {
		t.Fatal(err)
	}

	probs := Validate(f.scene)
	if len(probs) != 2 {
		t.Fatalf("got %d problems, want 2: %v", len(probs), probs)
	}
	if probs[1].JointID != self.ID {
		t.Errorf("second problem on %s, want the self joint", probs[1].JointID.Short())
	}
}
