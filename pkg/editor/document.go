package editor

import (
	"fmt"

	"github.com/chazu/armature/pkg/persist"
)

// Save captures the scene as a document.
func (e *Editor) Save() persist.Document {
	return persist.Save(e.scene)
}

// Load replaces the scene with doc. Loading is not undoable: history and
// selection are cleared. Objects that cannot be rebuilt are skipped and
// reported on the log.
func (e *Editor) Load(doc persist.Document) error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	res, err := persist.Load(e.kernel, doc, e.log)
	if err != nil {
		return e.fail(err)
	}
	e.scene.Reset()
	for _, o := range res.Objects {
		if err := e.scene.Add(o); err != nil {
			return e.fail(err)
		}
	}
	for _, j := range res.Joints {
		if err := e.scene.AddJoint(j); err != nil {
			return e.fail(err)
		}
	}
	e.history.Clear()
	e.sel.Clear()
	e.log.Log(fmt.Sprintf("loaded %d objects, %d joints", len(res.Objects), len(res.Joints)))
	return nil
}
