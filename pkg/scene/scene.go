package scene

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by Scene.
var (
	ErrDuplicateID = errors.New("duplicate id")
	ErrNotFound    = errors.New("not found")
)

// maxDepth bounds parent-chain walks so a malformed hierarchy cannot loop.
const maxDepth = 64

// Scene owns the objects, transient groups and joints being edited.
// It is not safe for concurrent use; the editor drives it from a single
// event loop.
type Scene struct {
	objects    map[ID]*Object
	order      []ID
	groups     map[ID]*Group
	joints     map[ID]*Joint
	jointOrder []ID
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		objects: make(map[ID]*Object),
		groups:  make(map[ID]*Group),
		joints:  make(map[ID]*Joint),
	}
}

// Reset removes everything.
func (s *Scene) Reset() {
	s.objects = make(map[ID]*Object)
	s.order = nil
	s.groups = make(map[ID]*Group)
	s.joints = make(map[ID]*Joint)
	s.jointOrder = nil
}

// Add appends obj to the scene.
func (s *Scene) Add(obj *Object) error {
	return s.Insert(len(s.order), obj)
}

// Insert places obj at index in the object order, clamping the index.
func (s *Scene) Insert(index int, obj *Object) error {
	if obj == nil || obj.ID == "" {
		return fmt.Errorf("add object: missing id")
	}
	if s.exists(obj.ID) {
		return fmt.Errorf("add object %s: %w", obj.ID.Short(), ErrDuplicateID)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.order) {
		index = len(s.order)
	}
	s.objects[obj.ID] = obj
	s.order = append(s.order, "")
	copy(s.order[index+1:], s.order[index:])
	s.order[index] = obj.ID
	return nil
}

// Remove deletes the object with id and returns it with its former index.
func (s *Scene) Remove(id ID) (*Object, int, error) {
	obj, ok := s.objects[id]
	if !ok {
		return nil, -1, fmt.Errorf("remove object %s: %w", id.Short(), ErrNotFound)
	}
	idx := s.IndexOf(id)
	delete(s.objects, id)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	return obj, idx, nil
}

// Get returns the object with id, or nil.
func (s *Scene) Get(id ID) *Object {
	return s.objects[id]
}

// IndexOf returns the position of id in the object order, or -1.
func (s *Scene) IndexOf(id ID) int {
	for i, v := range s.order {
		if v == id {
			return i
		}
	}
	return -1
}

// Objects returns the objects in insertion order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.objects[id])
	}
	return out
}

// Len returns the number of objects.
func (s *Scene) Len() int {
	return len(s.order)
}

// FindByName returns the first object named name, or nil.
func (s *Scene) FindByName(name string) *Object {
	for _, id := range s.order {
		if o := s.objects[id]; o.Name == name {
			return o
		}
	}
	return nil
}

// UniqueName returns base, or base with the lowest free numeric suffix.
func (s *Scene) UniqueName(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "Object"
	}
	if s.FindByName(base) == nil {
		return base
	}
	for n := 2; ; n++ {
		name := fmt.Sprintf("%s %d", base, n)
		if s.FindByName(name) == nil {
			return name
		}
	}
}

func (s *Scene) exists(id ID) bool {
	_, obj := s.objects[id]
	_, grp := s.groups[id]
	_, jnt := s.joints[id]
	return obj || grp || jnt
}

// AddGroup registers a transient group node.
func (s *Scene) AddGroup(g *Group) error {
	if g == nil || g.ID == "" {
		return fmt.Errorf("add group: missing id")
	}
	if s.exists(g.ID) {
		return fmt.Errorf("add group %s: %w", g.ID.Short(), ErrDuplicateID)
	}
	s.groups[g.ID] = g
	return nil
}

// RemoveGroup drops a group node. Children keep their Parent field.
func (s *Scene) RemoveGroup(id ID) {
	delete(s.groups, id)
}

// Group returns the group with id, or nil.
func (s *Scene) Group(id ID) *Group {
	return s.groups[id]
}

// local returns the local transform and parent of any node.
func (s *Scene) local(id ID) (Transform, ID, bool) {
	if o, ok := s.objects[id]; ok {
		return o.Transform, o.Parent, true
	}
	if g, ok := s.groups[id]; ok {
		return g.Transform, g.Parent, true
	}
	return Transform{}, "", false
}

// World returns the world transform of an object or group. Unknown IDs
// yield the identity.
func (s *Scene) World(id ID) Transform {
	t, parent, ok := s.local(id)
	if !ok {
		return Identity()
	}
	for depth := 0; parent != "" && depth < maxDepth; depth++ {
		pt, pp, ok := s.local(parent)
		if !ok {
			break
		}
		t = Compose(pt, t)
		parent = pp
	}
	return t
}

// ParentWorld returns the world transform of id's parent, or the identity
// for root nodes.
func (s *Scene) ParentWorld(id ID) Transform {
	_, parent, ok := s.local(id)
	if !ok || parent == "" {
		return Identity()
	}
	return s.World(parent)
}

// SetWorld positions an object or group so its world transform equals w.
func (s *Scene) SetWorld(id ID, w Transform) {
	local := Relative(s.ParentWorld(id), w)
	if o, ok := s.objects[id]; ok {
		o.Transform = local
	} else if g, ok := s.groups[id]; ok {
		g.Transform = local
	}
}

// WorldBounds returns the world AABB of an object.
func (s *Scene) WorldBounds(id ID) Box {
	o := s.objects[id]
	if o == nil {
		return EmptyBox()
	}
	return o.Geometry.Bounds().Transformed(s.World(id))
}

// BoundsOf returns the union of the world AABBs of ids.
func (s *Scene) BoundsOf(ids []ID) Box {
	out := EmptyBox()
	for _, id := range ids {
		out = out.Union(s.WorldBounds(id))
	}
	return out
}

// AddJoint appends j to the joint layer.
func (s *Scene) AddJoint(j *Joint) error {
	return s.InsertJoint(len(s.jointOrder), j)
}

// InsertJoint places j at index in the joint order.
func (s *Scene) InsertJoint(index int, j *Joint) error {
	if j == nil || j.ID == "" {
		return fmt.Errorf("add joint: missing id")
	}
	if s.exists(j.ID) {
		return fmt.Errorf("add joint %s: %w", j.ID.Short(), ErrDuplicateID)
	}
	if index < 0 {
		index = 0
	}
	if index > len(s.jointOrder) {
		index = len(s.jointOrder)
	}
	s.joints[j.ID] = j
	s.jointOrder = append(s.jointOrder, "")
	copy(s.jointOrder[index+1:], s.jointOrder[index:])
	s.jointOrder[index] = j.ID
	return nil
}

// RemoveJoint deletes the joint with id and returns it with its former index.
func (s *Scene) RemoveJoint(id ID) (*Joint, int, error) {
	j, ok := s.joints[id]
	if !ok {
		return nil, -1, fmt.Errorf("remove joint %s: %w", id.Short(), ErrNotFound)
	}
	idx := 0
	for i, v := range s.jointOrder {
		if v == id {
			idx = i
			break
		}
	}
	delete(s.joints, id)
	s.jointOrder = append(s.jointOrder[:idx], s.jointOrder[idx+1:]...)
	return j, idx, nil
}

// Joint returns the joint with id, or nil.
func (s *Scene) Joint(id ID) *Joint {
	return s.joints[id]
}

// Joints returns the joints in insertion order.
func (s *Scene) Joints() []*Joint {
	out := make([]*Joint, 0, len(s.jointOrder))
	for _, id := range s.jointOrder {
		out = append(out, s.joints[id])
	}
	return out
}
