package viewport

import "github.com/chazu/armature/pkg/scene"

// RenderObject is a read-only view of one drawable object.
type RenderObject struct {
	ID       scene.ID
	Name     string
	Geometry *scene.Geometry
	Material scene.Material
	World    scene.Transform
	Selected bool
	Preview  bool
}

// RenderJoint is a read-only view of one joint marker.
type RenderJoint struct {
	ID       scene.ID
	Kind     scene.JointKind
	Position [3]float64
}

// State is everything a renderer needs to draw one viewport for a frame.
type State struct {
	Viewport Viewport
	Objects  []RenderObject
	Joints   []RenderJoint
	Gizmo    *Gizmo
	Mode     string
}

// Renderer draws viewport states. Implementations must not mutate the scene.
type Renderer interface {
	Render(State)
}
