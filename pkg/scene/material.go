package scene

// Light is an optional emissive light attached to a material.
type Light struct {
	Color     string
	Intensity float64
}

// Material describes how an object is shaded.
type Material struct {
	Color     string
	Metalness float64
	Emissive  *Light
}

// DefaultMaterial is assigned to newly created primitives.
func DefaultMaterial() Material {
	return Material{Color: "#b0b0b0"}
}

// Clone returns a deep copy.
func (m Material) Clone() Material {
	if m.Emissive != nil {
		l := *m.Emissive
		m.Emissive = &l
	}
	return m
}

// Equal compares two materials by value.
func (m Material) Equal(o Material) bool {
	if m.Color != o.Color || m.Metalness != o.Metalness {
		return false
	}
	if (m.Emissive == nil) != (o.Emissive == nil) {
		return false
	}
	return m.Emissive == nil || *m.Emissive == *o.Emissive
}
