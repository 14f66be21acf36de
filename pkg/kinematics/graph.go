// Package kinematics manages joints between objects: creating them,
// traversing the joint graph and posing connected parts by forward
// kinematics.
package kinematics

import "github.com/chazu/armature/pkg/scene"

// Graph is an adjacency view of the scene's joints. It holds IDs only and
// must be rebuilt after joints are added or removed.
type Graph struct {
	joints   map[scene.ID]*scene.Joint
	byObject map[scene.ID][]scene.ID
	order    []scene.ID
}

// NewGraph indexes the joints of s.
func NewGraph(s *scene.Scene) *Graph {
	g := &Graph{
		joints:   make(map[scene.ID]*scene.Joint),
		byObject: make(map[scene.ID][]scene.ID),
	}
	for _, j := range s.Joints() {
		g.joints[j.ID] = j
		g.order = append(g.order, j.ID)
		seen := make(map[scene.ID]bool)
		for _, obj := range j.Objects() {
			if seen[obj] {
				continue
			}
			seen[obj] = true
			g.byObject[obj] = append(g.byObject[obj], j.ID)
		}
	}
	return g
}

// JointsOf returns the joints that name obj as parent or child.
func (g *Graph) JointsOf(obj scene.ID) []*scene.Joint {
	ids := g.byObject[obj]
	out := make([]*scene.Joint, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.joints[id])
	}
	return out
}

// Connected walks the joint graph breadth-first from start and returns
// every object and joint reachable without crossing blocked. start is
// always the first object returned.
func (g *Graph) Connected(start, blocked scene.ID) (objects, joints []scene.ID) {
	seenObj := map[scene.ID]bool{start: true}
	seenJoint := map[scene.ID]bool{blocked: true}
	queue := []scene.ID{start}
	for len(queue) > 0 {
		obj := queue[0]
		queue = queue[1:]
		objects = append(objects, obj)
		for _, jid := range g.byObject[obj] {
			if seenJoint[jid] {
				continue
			}
			seenJoint[jid] = true
			joints = append(joints, jid)
			for _, next := range g.joints[jid].Objects() {
				if !seenObj[next] {
					seenObj[next] = true
					queue = append(queue, next)
				}
			}
		}
	}
	return objects, joints
}
