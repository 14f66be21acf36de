package history

import (
	"fmt"

	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// AddObject inserts an object into the scene.
type AddObject struct {
	Scene  *scene.Scene
	Object *scene.Object
}

// NewAddObject returns a command adding obj to s.
func NewAddObject(s *scene.Scene, obj *scene.Object) *AddObject {
	return &AddObject{Scene: s, Object: obj}
}

func (c *AddObject) Execute() error { return c.Scene.Add(c.Object) }

func (c *AddObject) Undo() error {
	_, _, err := c.Scene.Remove(c.Object.ID)
	return err
}

func (c *AddObject) Description() string { return "add " + c.Object.Name }

func (c *AddObject) objectID() scene.ID { return c.Object.ID }

// DeleteObject removes an object and restores it at its former index on undo.
type DeleteObject struct {
	Scene *scene.Scene
	ID    scene.ID

	object *scene.Object
	index  int
	name   string
}

// NewDeleteObject returns a command deleting id from s.
func NewDeleteObject(s *scene.Scene, id scene.ID) *DeleteObject {
	c := &DeleteObject{Scene: s, ID: id, index: -1}
	if o := s.Get(id); o != nil {
		c.name = o.Name
	}
	return c
}

func (c *DeleteObject) Execute() error {
	obj, idx, err := c.Scene.Remove(c.ID)
	if err != nil {
		return err
	}
	c.object, c.index, c.name = obj, idx, obj.Name
	return nil
}

func (c *DeleteObject) Undo() error {
	if c.object == nil {
		return fmt.Errorf("delete %s was never executed", c.ID.Short())
	}
	return c.Scene.Insert(c.index, c.object)
}

func (c *DeleteObject) Description() string { return "delete " + c.name }

func (c *DeleteObject) Deletes() bool { return true }

func (c *DeleteObject) objectID() scene.ID { return c.ID }

// Transform moves an object between two local transforms.
type Transform struct {
	Scene  *scene.Scene
	ID     scene.ID
	Before scene.Transform
	After  scene.Transform
}

// NewTransform returns a command moving id from before to after.
func NewTransform(s *scene.Scene, id scene.ID, before, after scene.Transform) *Transform {
	return &Transform{Scene: s, ID: id, Before: before, After: after}
}

func (c *Transform) Execute() error { return c.set(c.After) }

func (c *Transform) Undo() error { return c.set(c.Before) }

func (c *Transform) set(t scene.Transform) error {
	obj := c.Scene.Get(c.ID)
	if obj == nil {
		return fmt.Errorf("transform %s: %w", c.ID.Short(), scene.ErrNotFound)
	}
	obj.Transform = t
	return nil
}

func (c *Transform) Description() string {
	if obj := c.Scene.Get(c.ID); obj != nil {
		return "transform " + obj.Name
	}
	return "transform"
}

func (c *Transform) objectID() scene.ID { return c.ID }

// Paint swaps an object's material.
type Paint struct {
	Scene  *scene.Scene
	ID     scene.ID
	Before scene.Material
	After  scene.Material
}

// NewPaint returns a command changing the material of id.
func NewPaint(s *scene.Scene, id scene.ID, before, after scene.Material) *Paint {
	return &Paint{Scene: s, ID: id, Before: before.Clone(), After: after.Clone()}
}

func (c *Paint) Execute() error { return c.set(c.After) }

func (c *Paint) Undo() error { return c.set(c.Before) }

func (c *Paint) set(m scene.Material) error {
	obj := c.Scene.Get(c.ID)
	if obj == nil {
		return fmt.Errorf("paint %s: %w", c.ID.Short(), scene.ErrNotFound)
	}
	obj.Material = m.Clone()
	return nil
}

func (c *Paint) Description() string { return "paint " + c.After.Color }

func (c *Paint) objectID() scene.ID { return c.ID }

// AddJoint adds a joint. Undo removes it and re-selects the parent and
// children it connected.
type AddJoint struct {
	Scene     *scene.Scene
	Selection *scene.Selection
	Joint     *scene.Joint
}

// NewAddJoint returns a command adding j to s.
func NewAddJoint(s *scene.Scene, sel *scene.Selection, j *scene.Joint) *AddJoint {
	return &AddJoint{Scene: s, Selection: sel, Joint: j}
}

func (c *AddJoint) Execute() error { return c.Scene.AddJoint(c.Joint) }

func (c *AddJoint) Undo() error {
	if _, _, err := c.Scene.RemoveJoint(c.Joint.ID); err != nil {
		return err
	}
	if c.Selection != nil {
		c.Selection.Set(c.Joint.Objects())
	}
	return nil
}

func (c *AddJoint) Description() string { return fmt.Sprintf("add %s joint", c.Joint.Kind) }

// DeleteJoint removes a joint and restores it at its former index on undo.
type DeleteJoint struct {
	Scene *scene.Scene
	ID    scene.ID

	joint *scene.Joint
	index int
}

// NewDeleteJoint returns a command deleting joint id.
func NewDeleteJoint(s *scene.Scene, id scene.ID) *DeleteJoint {
	return &DeleteJoint{Scene: s, ID: id, index: -1}
}

func (c *DeleteJoint) Execute() error {
	j, idx, err := c.Scene.RemoveJoint(c.ID)
	if err != nil {
		return err
	}
	c.joint, c.index = j, idx
	return nil
}

func (c *DeleteJoint) Undo() error {
	if c.joint == nil {
		return fmt.Errorf("delete joint %s was never executed", c.ID.Short())
	}
	return c.Scene.InsertJoint(c.index, c.joint)
}

func (c *DeleteJoint) Description() string { return "delete joint" }

func (c *DeleteJoint) Deletes() bool { return true }

// Pose is a start and end world position and orientation.
type Pose struct {
	ID           scene.ID
	FromPosition mgl64.Vec3
	ToPosition   mgl64.Vec3
	FromRotation mgl64.Quat
	ToRotation   mgl64.Quat
}

// Moved reports whether the pose changes anything.
func (p Pose) Moved() bool {
	from := scene.Transform{Position: p.FromPosition, Rotation: p.FromRotation}
	to := scene.Transform{Position: p.ToPosition, Rotation: p.ToRotation}
	return !from.ApproxEqual(to)
}

// JointTransform applies a forward-kinematic pose to a set of objects and
// joints as one undo step.
type JointTransform struct {
	Scene   *scene.Scene
	Objects []Pose
	Joints  []Pose
}

func (c *JointTransform) Execute() error { return c.apply(false) }

func (c *JointTransform) Undo() error { return c.apply(true) }

func (c *JointTransform) apply(back bool) error {
	for _, p := range c.Objects {
		if c.Scene.Get(p.ID) == nil {
			return fmt.Errorf("pose object %s: %w", p.ID.Short(), scene.ErrNotFound)
		}
	}
	for _, p := range c.Joints {
		if c.Scene.Joint(p.ID) == nil {
			return fmt.Errorf("pose joint %s: %w", p.ID.Short(), scene.ErrNotFound)
		}
	}
	for _, p := range c.Objects {
		pos, rot := p.ToPosition, p.ToRotation
		if back {
			pos, rot = p.FromPosition, p.FromRotation
		}
		w := c.Scene.World(p.ID)
		w.Position, w.Rotation = pos, rot
		c.Scene.SetWorld(p.ID, w)
	}
	for _, p := range c.Joints {
		j := c.Scene.Joint(p.ID)
		if back {
			j.Transform.Position, j.Transform.Rotation = p.FromPosition, p.FromRotation
		} else {
			j.Transform.Position, j.Transform.Rotation = p.ToPosition, p.ToRotation
		}
	}
	return nil
}

func (c *JointTransform) Description() string {
	return fmt.Sprintf("pose %d objects", len(c.Objects))
}

// Touched returns the posed objects.
func (c *JointTransform) Touched() []scene.ID {
	out := make([]scene.ID, len(c.Objects))
	for i, p := range c.Objects {
		out[i] = p.ID
	}
	return out
}
