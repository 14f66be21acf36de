package viewport

import (
	"math"

	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Handle is a scale grip on the gizmo frame. MulH and MulV are -1, 0 or
// +1: the screen side the grip sits on (left/top negative).
type Handle struct {
	MulH, MulV float64
	Screen     mgl64.Vec2
}

// Corner reports whether the handle scales along both screen axes.
func (h Handle) Corner() bool {
	return h.MulH != 0 && h.MulV != 0
}

var handleMuls = [8][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{1, 0},
	{1, 1}, {0, 1}, {-1, 1},
	{-1, 0},
}

// Gizmo is the screen-space frame around a selection.
type Gizmo struct {
	Min, Max mgl64.Vec2
	Handles  [8]Handle
}

// Gizmo projects the selection box b and places eight handles on the
// resulting screen rectangle. Perspective views have no frame.
func (v *Viewport) Gizmo(b scene.Box) (Gizmo, bool) {
	if !v.Ortho() || b.Empty() {
		return Gizmo{}, false
	}
	g := Gizmo{
		Min: mgl64.Vec2{math.Inf(1), math.Inf(1)},
		Max: mgl64.Vec2{math.Inf(-1), math.Inf(-1)},
	}
	for _, c := range b.Corners() {
		s := v.ProjectXY(c)
		for i := 0; i < 2; i++ {
			g.Min[i] = math.Min(g.Min[i], s[i])
			g.Max[i] = math.Max(g.Max[i], s[i])
		}
	}
	mid := g.Min.Add(g.Max).Mul(0.5)
	half := g.Max.Sub(g.Min).Mul(0.5)
	for i, m := range handleMuls {
		g.Handles[i] = Handle{
			MulH:   m[0],
			MulV:   m[1],
			Screen: mgl64.Vec2{mid[0] + m[0]*half[0], mid[1] + m[1]*half[1]},
		}
	}
	return g, true
}

// HandleAt returns the handle within radius pixels of p.
func (g Gizmo) HandleAt(p mgl64.Vec2, radius float64) (Handle, bool) {
	best, bestDist := -1, radius
	for i, h := range g.Handles {
		if d := h.Screen.Sub(p).Len(); d <= bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Handle{}, false
	}
	return g.Handles[best], true
}

// Contains reports whether p lies inside the frame.
func (g Gizmo) Contains(p mgl64.Vec2) bool {
	return p[0] >= g.Min[0] && p[0] <= g.Max[0] && p[1] >= g.Min[1] && p[1] <= g.Max[1]
}
