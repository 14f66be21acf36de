package scene

import "fmt"

// JointKind selects the visual shape of a joint.
type JointKind string

const (
	JointPivot      JointKind = "pivot"
	JointSlideHinge JointKind = "slide-hinge"
	JointRotary     JointKind = "rotary"
)

// ParseJointKind accepts "pivot", "slide-hinge" (or "slide") and "rotary".
func ParseJointKind(s string) (JointKind, error) {
	switch s {
	case "pivot", "":
		return JointPivot, nil
	case "slide-hinge", "slide":
		return JointSlideHinge, nil
	case "rotary":
		return JointRotary, nil
	}
	return "", fmt.Errorf("unknown joint kind %q", s)
}

// Joint constrains one parent object to one or more children. Its
// Transform.Position is the pivot point in world space.
type Joint struct {
	ID        ID
	Name      string
	Kind      JointKind
	Parent    ID
	Children  []ID
	Transform Transform
}

// Objects returns the parent followed by the children.
func (j *Joint) Objects() []ID {
	out := make([]ID, 0, len(j.Children)+1)
	out = append(out, j.Parent)
	return append(out, j.Children...)
}

// Touches reports whether id is the parent or a child.
func (j *Joint) Touches(id ID) bool {
	if j.Parent == id {
		return true
	}
	for _, c := range j.Children {
		if c == id {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the Children slice.
func (j *Joint) Clone() *Joint {
	c := *j
	c.Children = append([]ID(nil), j.Children...)
	return &c
}
