package editor

import (
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/scene"
)

// CreateJoint joins the selection: the first object is the parent, the
// rest are children.
func (e *Editor) CreateJoint(kind scene.JointKind) (*scene.Joint, error) {
	if err := e.settle(); err != nil {
		return nil, e.fail(err)
	}
	ids := e.sel.Get()
	if len(ids) < 2 {
		return nil, e.fail(fmt.Errorf("joint: %w", ErrNotEnoughSelected))
	}
	j, err := kinematics.CreateJoint(e.scene, e.sel, e.history, kind, ids)
	if err != nil {
		return nil, e.fail(err)
	}
	e.log.Log(fmt.Sprintf("add %s joint %s", j.Kind, j.Name))
	return j, nil
}

// DeleteJoint removes a joint.
func (e *Editor) DeleteJoint(id scene.ID) error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	if e.scene.Joint(id) == nil {
		return e.fail(fmt.Errorf("delete joint %s: %w", id.Short(), scene.ErrNotFound))
	}
	return e.execute(history.NewDeleteJoint(e.scene, id))
}

// PoseBy articulates obj by angle radians counter-clockwise about the
// active view's axis, grabbing it at its own center.
func (e *Editor) PoseBy(obj scene.ID, angle float64) error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	v := e.views[e.state.ActiveView]
	center := e.scene.WorldBounds(obj).Center()
	p, err := kinematics.BeginPose(e.scene, v, obj, center, v.ProjectXY(center), e.snapping.Angle)
	if err != nil {
		return e.fail(err)
	}
	p.RotateBy(v.RotationFor(-angle))
	cmd := p.End()
	if cmd == nil {
		return nil
	}
	return e.execute(cmd)
}

// ValidateJoints logs and returns every joint problem in the scene.
func (e *Editor) ValidateJoints() []kinematics.Problem {
	probs := kinematics.Validate(e.scene)
	for _, p := range probs {
		e.log.Log(p.Error())
	}
	return probs
}
