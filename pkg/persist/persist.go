// Package persist converts a scene to and from a TOML document. Geometry
// is stored as the recipe that produced it, so primitives and boolean
// results are rebuilt through the kernel on load.
package persist

import (
	"errors"
	"fmt"
	"io"

	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pelletier/go-toml/v2"
)

// Version is written into every saved document.
const Version = 1

// ErrUnknownGeometry marks objects skipped during load because their
// geometry cannot be rebuilt.
var ErrUnknownGeometry = errors.New("unknown geometry")

// Document is the serialized form of a scene.
type Document struct {
	Version int        `toml:"version"`
	Objects []Object   `toml:"objects"`
	Joints  []JointDoc `toml:"joints,omitempty"`
}

// Object is one serialized scene object. Transforms are stored in world
// space.
type Object struct {
	ID       string       `toml:"id"`
	Name     string       `toml:"name"`
	Geometry scene.Recipe `toml:"geometry"`
	Material Material     `toml:"material"`
	Position [3]float64   `toml:"position"`
	Rotation [4]float64   `toml:"rotation"` // w, x, y, z
	Scale    [3]float64   `toml:"scale"`
}

// Material is the serialized form of scene.Material.
type Material struct {
	Color     string  `toml:"color"`
	Metalness float64 `toml:"metalness,omitempty"`
	Emissive  *Light  `toml:"emissive,omitempty"`
}

// Light is the serialized form of scene.Light.
type Light struct {
	Color     string  `toml:"color"`
	Intensity float64 `toml:"intensity"`
}

// JointDoc is one serialized joint.
type JointDoc struct {
	ID       string     `toml:"id"`
	Name     string     `toml:"name"`
	Kind     string     `toml:"kind"`
	Parent   string     `toml:"parent"`
	Children []string   `toml:"children"`
	Position [3]float64 `toml:"position"`
	Rotation [4]float64 `toml:"rotation"`
}

// Save captures every object and joint of s.
func Save(s *scene.Scene) Document {
	doc := Document{Version: Version}
	for _, o := range s.Objects() {
		w := s.World(o.ID)
		op := scene.NewOperand(recipeOf(o), w)
		doc.Objects = append(doc.Objects, Object{
			ID:       string(o.ID),
			Name:     o.Name,
			Geometry: op.Recipe,
			Material: materialDoc(o.Material),
			Position: op.Position,
			Rotation: op.Rotation,
			Scale:    op.Scale,
		})
	}
	for _, j := range s.Joints() {
		op := scene.NewOperand(scene.Recipe{}, j.Transform)
		jd := JointDoc{
			ID:       string(j.ID),
			Name:     j.Name,
			Kind:     string(j.Kind),
			Parent:   string(j.Parent),
			Position: op.Position,
			Rotation: op.Rotation,
		}
		for _, c := range j.Children {
			jd.Children = append(jd.Children, string(c))
		}
		doc.Joints = append(doc.Joints, jd)
	}
	return doc
}

func recipeOf(o *scene.Object) scene.Recipe {
	if o.Geometry == nil {
		return scene.Recipe{Kind: scene.RecipeImported, Source: o.Name}
	}
	return o.Geometry.Recipe
}

// Result is what Load rebuilt.
type Result struct {
	Objects []*scene.Object
	Joints  []*scene.Joint
	Skipped []string // names of objects that could not be rebuilt
}

// Load rebuilds objects and joints from doc. Objects whose geometry cannot
// be reconstructed are skipped with a message on log asking the user to
// re-import them; joints are kept even if they then reference a skipped
// object.
func Load(k kernel.Kernel, doc Document, log logging.Logger) (*Result, error) {
	if doc.Version > Version {
		return nil, fmt.Errorf("document version %d is newer than supported %d", doc.Version, Version)
	}
	res := &Result{}
	seen := make(map[scene.ID]bool)
	for _, od := range doc.Objects {
		g, err := scene.NewGeometry(k, od.Geometry)
		if err != nil {
			if errors.Is(err, scene.ErrNotReconstructable) {
				err = fmt.Errorf("%w: %w", ErrUnknownGeometry, err)
			}
			log.Log(fmt.Sprintf("skipped %q: %v; re-import it", od.Name, err))
			res.Skipped = append(res.Skipped, od.Name)
			continue
		}
		id := scene.ID(od.ID)
		if id == "" || seen[id] {
			id = scene.NewID()
		}
		seen[id] = true
		t := scene.Operand{Position: od.Position, Rotation: od.Rotation, Scale: od.Scale}.Transform()
		o := scene.NewObject(od.Name, g, od.Material.material(), normalize(t))
		o.ID = id
		res.Objects = append(res.Objects, o)
	}
	for _, jd := range doc.Joints {
		kind, err := scene.ParseJointKind(jd.Kind)
		if err != nil {
			log.Log(fmt.Sprintf("skipped joint %q: %v", jd.Name, err))
			continue
		}
		t := scene.Operand{Position: jd.Position, Rotation: jd.Rotation, Scale: [3]float64{1, 1, 1}}.Transform()
		j := &scene.Joint{
			ID:        scene.ID(jd.ID),
			Name:      jd.Name,
			Kind:      kind,
			Parent:    scene.ID(jd.Parent),
			Transform: normalize(t),
		}
		if j.ID == "" || seen[j.ID] {
			j.ID = scene.NewID()
		}
		seen[j.ID] = true
		for _, c := range jd.Children {
			j.Children = append(j.Children, scene.ID(c))
		}
		res.Joints = append(res.Joints, j)
	}
	return res, nil
}

// normalize repairs zero quaternions and scales left by hand-edited files.
func normalize(t scene.Transform) scene.Transform {
	if t.Rotation.Len() == 0 {
		t.Rotation = mgl64.QuatIdent()
	} else {
		t.Rotation = t.Rotation.Normalize()
	}
	if t.Scale == (mgl64.Vec3{}) {
		t.Scale = mgl64.Vec3{1, 1, 1}
	}
	return t
}

func materialDoc(m scene.Material) Material {
	out := Material{Color: m.Color, Metalness: m.Metalness}
	if m.Emissive != nil {
		out.Emissive = &Light{Color: m.Emissive.Color, Intensity: m.Emissive.Intensity}
	}
	return out
}

func (m Material) material() scene.Material {
	out := scene.Material{Color: m.Color, Metalness: m.Metalness}
	if out.Color == "" {
		out.Color = scene.DefaultMaterial().Color
	}
	if m.Emissive != nil {
		out.Emissive = &scene.Light{Color: m.Emissive.Color, Intensity: m.Emissive.Intensity}
	}
	return out
}

// Encode writes doc as TOML.
func Encode(w io.Writer, doc Document) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

// Decode reads a TOML document.
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode scene: %w", err)
	}
	return doc, nil
}
