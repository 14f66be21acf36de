package clipboard

import (
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// rotationSigns maps a mirror axis to the sign applied to the quaternion
// (w, x, y, z) so that reflect∘R equals R'∘reflect.
var rotationSigns = [3][4]float64{
	{1, 1, -1, -1},
	{1, -1, 1, -1},
	{1, -1, -1, 1},
}

// MirrorTransform reflects t through the world plane normal to axis. The
// scale on that axis is negated so the reflected solid keeps its winding.
func MirrorTransform(t scene.Transform, axis int) scene.Transform {
	s := rotationSigns[axis]
	out := t
	out.Position[axis] = -out.Position[axis]
	out.Rotation = mgl64.Quat{
		W: s[0] * t.Rotation.W,
		V: mgl64.Vec3{s[1] * t.Rotation.V[0], s[2] * t.Rotation.V[1], s[3] * t.Rotation.V[2]},
	}
	out.Scale[axis] = -out.Scale[axis]
	return out
}

// AxisName returns "x", "y" or "z".
func AxisName(axis int) string {
	return string("xyz"[axis])
}

// MirrorPreview builds one group per principal axis holding reflected
// copies of ids. Nothing is added to the scene until Commit.
func (c *Clipboard) MirrorPreview(ids []scene.ID) (*Preview, error) {
	objs, err := c.sources(ids)
	if err != nil {
		return nil, err
	}
	p := &Preview{Kind: MirrorKind}
	for axis := 0; axis < 3; axis++ {
		g := Group{Label: AxisName(axis), Axis: axis}
		for _, o := range objs {
			g.Objects = append(g.Objects, detached(o, MirrorTransform(c.scene.World(o.ID), axis)))
		}
		p.Groups = append(p.Groups, g)
	}
	c.preview = p
	return p, nil
}
