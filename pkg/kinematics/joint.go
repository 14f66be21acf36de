package kinematics

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/scene"
)

// ErrNotEnoughObjects is returned when fewer than two objects are given.
var ErrNotEnoughObjects = errors.New("joint needs a parent and at least one child")

// NewJoint builds a joint with ids[0] as parent and the rest as children,
// positioned midway between the parent's bounds center and the children's
// combined bounds center. It does not touch the scene.
func NewJoint(s *scene.Scene, kind scene.JointKind, ids []scene.ID) (*scene.Joint, error) {
	if len(ids) < 2 {
		return nil, ErrNotEnoughObjects
	}
	for _, id := range ids {
		if s.Get(id) == nil {
			return nil, fmt.Errorf("joint object %s: %w", id.Short(), scene.ErrNotFound)
		}
	}
	parent := s.WorldBounds(ids[0]).Center()
	children := s.BoundsOf(ids[1:]).Center()

	return &scene.Joint{
		ID:        scene.NewID(),
		Name:      jointName(s),
		Kind:      kind,
		Parent:    ids[0],
		Children:  append([]scene.ID(nil), ids[1:]...),
		Transform: scene.At(parent.Add(children).Mul(0.5)),
	}, nil
}

func jointName(s *scene.Scene) string {
	taken := make(map[string]bool)
	for _, j := range s.Joints() {
		taken[j.Name] = true
	}
	for n := len(s.Joints()) + 1; ; n++ {
		name := fmt.Sprintf("Joint %d", n)
		if !taken[name] {
			return name
		}
	}
}

// CreateJoint adds a joint between the selected objects through h. Undoing
// it removes the joint and reselects its objects.
func CreateJoint(s *scene.Scene, sel *scene.Selection, h *history.History, kind scene.JointKind, ids []scene.ID) (*scene.Joint, error) {
	j, err := NewJoint(s, kind, ids)
	if err != nil {
		return nil, err
	}
	if err := h.Execute(history.NewAddJoint(s, sel, j)); err != nil {
		return nil, err
	}
	return j, nil
}
