package scene

// Object is a renderable rigid part.
type Object struct {
	ID        ID
	Name      string
	Geometry  *Geometry
	Material  Material
	Transform Transform // local to Parent
	Parent    ID        // empty for scene root
}

// NewObject returns an object with a fresh ID at t.
func NewObject(name string, g *Geometry, m Material, t Transform) *Object {
	return &Object{
		ID:        NewID(),
		Name:      name,
		Geometry:  g,
		Material:  m,
		Transform: t,
	}
}

// Clone returns a detached copy with a new ID. Geometry is shared.
func (o *Object) Clone() *Object {
	c := *o
	c.ID = NewID()
	c.Material = o.Material.Clone()
	return &c
}

// Group is a non-renderable node used to parent objects temporarily.
type Group struct {
	ID        ID
	Transform Transform
	Parent    ID
}
