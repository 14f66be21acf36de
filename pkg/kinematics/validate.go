package kinematics

import (
	"fmt"

	"github.com/chazu/armature/pkg/scene"
)

// Problem describes one inconsistency in the joint layer.
type Problem struct {
	JointID scene.ID
	Message string
}

func (p Problem) Error() string {
	return fmt.Sprintf("joint %s: %s", p.JointID.Short(), p.Message)
}

// Validate checks every joint against the objects in s. Deleting an object
// leaves its joints in place, so dangling references are reported here
// rather than prevented. An empty result means the joint layer is sound.
func Validate(s *scene.Scene) []Problem {
	var out []Problem
	for _, j := range s.Joints() {
		out = append(out, validateJoint(s, j)...)
	}
	return out
}

func validateJoint(s *scene.Scene, j *scene.Joint) []Problem {
	var out []Problem
	report := func(format string, args ...any) {
		out = append(out, Problem{JointID: j.ID, Message: fmt.Sprintf(format, args...)})
	}

	if j.Parent == "" {
		report("has no parent")
	} else if s.Get(j.Parent) == nil {
		report("parent %s does not exist", j.Parent.Short())
	}
	if len(j.Children) == 0 {
		report("has no children")
	}
	seen := make(map[scene.ID]bool)
	for _, c := range j.Children {
		switch {
		case c == j.Parent:
			report("object %s is both parent and child", c.Short())
		case seen[c]:
			report("child %s listed twice", c.Short())
		case s.Get(c) == nil:
			report("child %s does not exist", c.Short())
		}
		seen[c] = true
	}
	if _, err := scene.ParseJointKind(string(j.Kind)); err != nil {
		report("%v", err)
	}
	return out
}
