package kinematics

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoJoints is returned when posing an object that no joint touches.
var ErrNoJoints = errors.New("object has no joints")

// Pose is a forward-kinematic drag in progress. The objects and joints
// connected to the dragged object, not counting the pivot joint, rotate
// rigidly about the pivot's position.
type Pose struct {
	scene   *scene.Scene
	view    *viewport.Viewport
	pivot   *scene.Joint
	center  mgl64.Vec3
	objects []history.Pose
	joints  []history.Pose
	last    mgl64.Vec2
	angle   float64
	applied float64
	snap    float64
}

// PickPivot returns the joint touching obj that lies farthest from
// contact.
func PickPivot(g *Graph, obj scene.ID, contact mgl64.Vec3) (*scene.Joint, error) {
	var best *scene.Joint
	bestDist := -1.0
	for _, j := range g.JointsOf(obj) {
		if d := j.Transform.Position.Sub(contact).Len(); d > bestDist {
			best, bestDist = j, d
		}
	}
	if best == nil {
		return nil, fmt.Errorf("pose %s: %w", obj.Short(), ErrNoJoints)
	}
	return best, nil
}

// BeginPose starts posing dragged, grabbed at the world point contact with
// the pointer at screen position p. snap is the angle increment used when
// Ctrl is held.
func BeginPose(s *scene.Scene, v *viewport.Viewport, dragged scene.ID, contact mgl64.Vec3, p mgl64.Vec2, snap float64) (*Pose, error) {
	if s.Get(dragged) == nil {
		return nil, fmt.Errorf("pose %s: %w", dragged.Short(), scene.ErrNotFound)
	}
	g := NewGraph(s)
	pivot, err := PickPivot(g, dragged, contact)
	if err != nil {
		return nil, err
	}
	objs, joints := g.Connected(dragged, pivot.ID)

	ps := &Pose{
		scene:  s,
		view:   v,
		pivot:  pivot,
		center: pivot.Transform.Position,
		last:   p,
		snap:   snap,
	}
	for _, id := range objs {
		if s.Get(id) == nil {
			continue
		}
		w := s.World(id)
		ps.objects = append(ps.objects, history.Pose{
			ID: id, FromPosition: w.Position, ToPosition: w.Position,
			FromRotation: w.Rotation, ToRotation: w.Rotation,
		})
	}
	for _, id := range joints {
		t := s.Joint(id).Transform
		ps.joints = append(ps.joints, history.Pose{
			ID: id, FromPosition: t.Position, ToPosition: t.Position,
			FromRotation: t.Rotation, ToRotation: t.Rotation,
		})
	}
	return ps, nil
}

// Pivot returns the joint the pose rotates about.
func (p *Pose) Pivot() *scene.Joint { return p.pivot }

// Objects returns the IDs of the objects that move.
func (p *Pose) Objects() []scene.ID {
	out := make([]scene.ID, len(p.objects))
	for i, o := range p.objects {
		out[i] = o.ID
	}
	return out
}

// Joints returns the IDs of the joints that move with the objects.
func (p *Pose) Joints() []scene.ID {
	out := make([]scene.ID, len(p.joints))
	for i, j := range p.joints {
		out[i] = j.ID
	}
	return out
}

// Update turns pointer motion around the projected pivot into rotation
// about the view's axis.
func (p *Pose) Update(pt mgl64.Vec2, mods viewport.Modifiers) {
	center := p.view.ProjectXY(p.center)
	p.angle += viewport.SignedAngle(center, p.last, pt)
	p.last = pt

	target := p.angle
	if mods.Ctrl {
		snap := p.snap
		if snap <= 0 {
			snap = viewport.DefaultAngleSnap
		}
		target = viewport.Snap(target, snap)
	}
	if d := target - p.applied; d != 0 {
		p.applied = target
		p.RotateBy(p.view.RotationFor(d))
	}
}

// RotateBy rotates every moving object and joint by q about the pivot.
// q is pre-multiplied into each orientation.
func (p *Pose) RotateBy(q mgl64.Quat) {
	turn := func(pos mgl64.Vec3, rot mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
		return p.center.Add(q.Rotate(pos.Sub(p.center))), q.Mul(rot).Normalize()
	}
	for i := range p.objects {
		o := &p.objects[i]
		o.ToPosition, o.ToRotation = turn(o.ToPosition, o.ToRotation)
		w := p.scene.World(o.ID)
		w.Position, w.Rotation = o.ToPosition, o.ToRotation
		p.scene.SetWorld(o.ID, w)
	}
	for i := range p.joints {
		j := &p.joints[i]
		j.ToPosition, j.ToRotation = turn(j.ToPosition, j.ToRotation)
		jt := p.scene.Joint(j.ID)
		jt.Transform.Position, jt.Transform.Rotation = j.ToPosition, j.ToRotation
	}
}

// End returns one JointTransform capturing the pose, or nil when nothing
// moved. The scene is already in the end state.
func (p *Pose) End() history.Command {
	moved := false
	for _, o := range p.objects {
		moved = moved || o.Moved()
	}
	if !moved {
		return nil
	}
	return &history.JointTransform{
		Scene:   p.scene,
		Objects: append([]history.Pose(nil), p.objects...),
		Joints:  append([]history.Pose(nil), p.joints...),
	}
}

// Cancel puts every moved object and joint back where it started.
func (p *Pose) Cancel() {
	cmd := &history.JointTransform{Scene: p.scene, Objects: p.objects, Joints: p.joints}
	_ = cmd.Undo()
	for i := range p.objects {
		p.objects[i].ToPosition, p.objects[i].ToRotation = p.objects[i].FromPosition, p.objects[i].FromRotation
	}
	for i := range p.joints {
		p.joints[i].ToPosition, p.joints[i].ToRotation = p.joints[i].FromPosition, p.joints[i].FromRotation
	}
	p.angle, p.applied = 0, 0
}
