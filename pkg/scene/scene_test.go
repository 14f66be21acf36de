package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func unitGeometry() *Geometry {
	return &Geometry{Recipe: BoxRecipe(2, 2, 2), Solid: boundsSolid{min: [3]float64{-1, -1, -1}, max: [3]float64{1, 1, 1}}}
}

type boundsSolid struct{ min, max [3]float64 }

func (b boundsSolid) BoundingBox() (min, max [3]float64) { return b.min, b.max }

func TestSceneAddRemoveOrder(t *testing.T) {
	s := New()
	a := NewObject("A", unitGeometry(), DefaultMaterial(), Identity())
	b := NewObject("B", unitGeometry(), DefaultMaterial(), Identity())
	c := NewObject("C", unitGeometry(), DefaultMaterial(), Identity())

	for _, o := range []*Object{a, b, c} {
		if err := s.Add(o); err != nil {
			t.Fatalf("Add(%s) error = %v", o.Name, err)
		}
	}
	if err := s.Add(a); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("duplicate Add error = %v, want ErrDuplicateID", err)
	}

	removed, idx, err := s.Remove(b.ID)
	if err != nil || removed != b || idx != 1 {
		t.Fatalf("Remove(B) = %v, %d, %v", removed, idx, err)
	}
	if _, _, err := s.Remove(b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}

	if err := s.Insert(idx, b); err != nil {
		t.Fatal(err)
	}
	names := []string{}
	for _, o := range s.Objects() {
		names = append(names, o.Name)
	}
	if len(names) != 3 || names[0] != "A" || names[1] != "B" || names[2] != "C" {
		t.Errorf("order after reinsert = %v", names)
	}
}

func TestSceneUniqueName(t *testing.T) {
	s := New()
	if got := s.UniqueName("Box"); got != "Box" {
		t.Errorf("UniqueName on empty scene = %q", got)
	}
	_ = s.Add(NewObject("Box", unitGeometry(), DefaultMaterial(), Identity()))
	_ = s.Add(NewObject("Box 2", unitGeometry(), DefaultMaterial(), Identity()))
	if got := s.UniqueName("Box"); got != "Box 3" {
		t.Errorf("UniqueName = %q, want Box 3", got)
	}
	if got := s.UniqueName("  "); got != "Object" {
		t.Errorf("UniqueName blank = %q", got)
	}
}

func TestSceneWorldThroughGroup(t *testing.T) {
	s := New()
	obj := NewObject("A", unitGeometry(), DefaultMaterial(), At(mgl64.Vec3{3, 0, 0}))
	_ = s.Add(obj)

	g := &Group{ID: NewID(), Transform: At(mgl64.Vec3{2, 0, 0})}
	if err := s.AddGroup(g); err != nil {
		t.Fatal(err)
	}

	world := s.World(obj.ID)
	obj.Parent = g.ID
	s.SetWorld(obj.ID, world)
	if got := obj.Transform.Position; !got.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("local position under group = %v, want (1,0,0)", got)
	}

	g.Transform.Rotation = mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 1, 0})
	if got := s.World(obj.ID).Position; !got.ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("world position after group rotation = %v, want (1,0,0)", got)
	}

	b := s.WorldBounds(obj.ID)
	if !b.Center().ApproxEqualThreshold(mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("WorldBounds center = %v", b.Center())
	}
}

func TestSceneJoints(t *testing.T) {
	s := New()
	a := NewObject("A", unitGeometry(), DefaultMaterial(), Identity())
	b := NewObject("B", unitGeometry(), DefaultMaterial(), Identity())
	_ = s.Add(a)
	_ = s.Add(b)

	j1 := &Joint{ID: NewID(), Kind: JointPivot, Parent: a.ID, Children: []ID{b.ID}}
	j2 := &Joint{ID: NewID(), Kind: JointRotary, Parent: b.ID, Children: []ID{a.ID}}
	_ = s.AddJoint(j1)
	_ = s.AddJoint(j2)

	removed, idx, err := s.RemoveJoint(j1.ID)
	if err != nil || removed != j1 || idx != 0 {
		t.Fatalf("RemoveJoint = %v, %d, %v", removed, idx, err)
	}
	if err := s.InsertJoint(idx, j1); err != nil {
		t.Fatal(err)
	}
	joints := s.Joints()
	if len(joints) != 2 || joints[0] != j1 {
		t.Errorf("joint order after reinsert wrong")
	}
	if !j1.Touches(b.ID) || j1.Touches("other") {
		t.Error("Touches mismatch")
	}

	s.Reset()
	if s.Len() != 0 || len(s.Joints()) != 0 {
		t.Error("Reset did not clear scene")
	}
}

func TestParseJointKind(t *testing.T) {
	tests := []struct {
		in      string
		want    JointKind
		wantErr bool
	}{
		{"pivot", JointPivot, false},
		{"", JointPivot, false},
		{"slide", JointSlideHinge, false},
		{"slide-hinge", JointSlideHinge, false},
		{"rotary", JointRotary, false},
		{"ball", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseJointKind(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("kind = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelection(t *testing.T) {
	sel := NewSelection()
	sel.Set([]ID{"a", "b", "a", "", "c"})
	got := sel.Get()
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Get() = %v", got)
	}

	got[0] = "mutated"
	if !sel.Contains("a") {
		t.Error("Get() must return a copy")
	}

	sel.Toggle("b")
	if sel.Contains("b") {
		t.Error("Toggle did not remove b")
	}
	sel.Toggle("b")
	if ids := sel.Get(); ids[len(ids)-1] != "b" {
		t.Errorf("Toggle should append b, got %v", ids)
	}
	if !sel.Equal([]ID{"c", "b", "a"}) {
		t.Error("Equal should ignore order")
	}
	for _, ids := range [][]ID{{"a", "a", "c"}, {"a", "c"}, {"a", "b", "c", "d"}} {
		if sel.Equal(ids) {
			t.Errorf("Equal(%v) with selection %v", ids, sel.Get())
		}
	}
	if !sel.Equal([]ID{"a", "b", "c", "a"}) {
		t.Error("repeated ids of the same set should compare equal")
	}

	sel.Clear()
	if sel.Len() != 0 {
		t.Errorf("Len after Clear = %d", sel.Len())
	}
}

func TestMaterialCloneEqual(t *testing.T) {
	m := Material{Color: "#ff0000", Metalness: 0.5, Emissive: &Light{Color: "#ffffff", Intensity: 2}}
	c := m.Clone()
	if !c.Equal(m) {
		t.Fatal("clone should be equal")
	}
	c.Emissive.Intensity = 3
	if m.Emissive.Intensity != 2 {
		t.Error("Clone shares the emissive light")
	}
	if c.Equal(m) {
		t.Error("materials with different lights compared equal")
	}
}
