// Package scene holds the editable model: objects, transient group nodes,
// joints and the selection. Objects and joints are owned by a Scene and
// referenced elsewhere only by ID.
package scene

import "github.com/google/uuid"

// ID is a stable identifier for objects, groups and joints.
type ID string

// NewID returns a fresh random ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Short returns the first eight characters of the ID for log output.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}
