// Package editor is the application context of the editing core. It owns
// the scene, selection and history, routes pointer input from the four
// viewports to the engines, and tracks the current mode explicitly.
//
// An Editor is driven from a single event thread and is not safe for
// concurrent use.
package editor

import (
	"errors"
	"fmt"

	"github.com/chazu/armature/pkg/clipboard"
	"github.com/chazu/armature/pkg/config"
	"github.com/chazu/armature/pkg/csg"
	"github.com/chazu/armature/pkg/history"
	"github.com/chazu/armature/pkg/kernel"
	"github.com/chazu/armature/pkg/kinematics"
	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/placement"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
	"github.com/go-gl/mathgl/mgl64"
)

// NoPointer marks that no gesture owns the pointer.
const NoPointer = -1

// Sentinel errors.
var (
	ErrNotEnoughSelected = errors.New("not enough objects selected")
	ErrWrongMode         = errors.New("not available in the current mode")
)

// Mode is what the editor is doing between events.
type Mode int

const (
	ModeIdle Mode = iota
	ModeTransform
	ModePlacement
	ModeSubtract
	ModeMirror
	ModePaste
	ModePose
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeTransform:
		return "transform"
	case ModePlacement:
		return "placement"
	case ModeSubtract:
		return "subtract"
	case ModeMirror:
		return "mirror"
	case ModePaste:
		return "paste"
	case ModePose:
		return "pose"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// State is the editor's mode and gesture bookkeeping.
type State struct {
	Mode          Mode
	ActivePointer int
	ActiveView    viewport.Kind
	Tool          viewport.GestureKind
	SubtractBases []scene.ID
}

// Editor ties the engines together.
type Editor struct {
	kernel    kernel.Kernel
	log       logging.Logger
	scene     *scene.Scene
	sel       *scene.Selection
	history   *history.History
	views     map[viewport.Kind]*viewport.Viewport
	placement *placement.Engine
	booleans  *csg.Engine
	clipboard *clipboard.Clipboard
	snapping  viewport.Snapping

	state   State
	gesture *viewport.Gesture
	pose    *kinematics.Pose
}

// New returns an editor over an empty scene.
func New(k kernel.Kernel, cfg config.Config, log logging.Logger) *Editor {
	if log == nil {
		log = logging.NewSink(nil)
	}
	s := scene.New()
	sel := scene.NewSelection()
	h := history.New(sel, log, cfg.History.MaxDepth)
	e := &Editor{
		kernel:  k,
		log:     log,
		scene:   s,
		sel:     sel,
		history: h,
		views:   make(map[viewport.Kind]*viewport.Viewport),
		placement: placement.New(s, h, placement.Options{
			Spawn:    mgl64.Vec3(cfg.SpawnPoint()),
			Epsilon:  cfg.Placement.Epsilon,
			MaxDepth: cfg.Placement.MaxDepth,
		}),
		booleans:  csg.New(k, s, h),
		clipboard: clipboard.New(s, h, cfg.Clipboard.Margin),
		snapping: viewport.Snapping{
			Grid:  cfg.Grid.Cell,
			Angle: mgl64.DegToRad(cfg.Grid.AngleSnapDeg),
		},
		state: State{ActivePointer: NoPointer, ActiveView: viewport.Perspective},
	}
	for _, kind := range viewport.Kinds {
		e.views[kind] = viewport.New(kind, cfg.Viewport.Width, cfg.Viewport.Height, cfg.Viewport.FrustumWidth)
	}
	return e
}

// Scene returns the scene. Callers must mutate it only through commands.
func (e *Editor) Scene() *scene.Scene { return e.scene }

// Selection returns the selection set.
func (e *Editor) Selection() *scene.Selection { return e.sel }

// History returns the command history.
func (e *Editor) History() *history.History { return e.history }

// Kernel returns the geometry kernel.
func (e *Editor) Kernel() kernel.Kernel { return e.kernel }

// View returns the viewport of the given kind.
func (e *Editor) View(kind viewport.Kind) *viewport.Viewport { return e.views[kind] }

// State returns a copy of the current state.
func (e *Editor) State() State {
	st := e.state
	st.SubtractBases = append([]scene.ID(nil), e.state.SubtractBases...)
	return st
}

// SetTool picks what an idle drag does.
func (e *Editor) SetTool(t viewport.GestureKind) { e.state.Tool = t }

// SetActiveView picks the view scripted rotations are expressed in.
func (e *Editor) SetActiveView(k viewport.Kind) { e.state.ActiveView = k }

// fail reports err on the log sink and returns it.
func (e *Editor) fail(err error) error {
	e.log.Log(err.Error())
	return err
}

func (e *Editor) idle() {
	e.state.Mode = ModeIdle
	e.state.ActivePointer = NoPointer
	e.state.SubtractBases = nil
	e.gesture = nil
	e.pose = nil
}

// Cancel abandons the current gesture, preview or pick mode and restores
// the scene to how it was before it started. History is never touched.
func (e *Editor) Cancel() {
	switch e.state.Mode {
	case ModeIdle:
		return
	case ModeTransform:
		if e.gesture != nil {
			e.gesture.Cancel()
		}
	case ModePose:
		if e.pose != nil {
			e.pose.Cancel()
		}
	case ModePlacement:
		e.placement.Cancel()
	case ModeMirror, ModePaste:
		e.clipboard.Cancel()
	case ModeSubtract:
		e.sel.Set(e.state.SubtractBases)
	}
	e.log.Log("cancelled " + e.state.Mode.String())
	e.idle()
}

// settle ends any preview before a new operation starts. It refuses while a
// drag holds the pointer.
func (e *Editor) settle() error {
	if e.state.ActivePointer != NoPointer {
		return ErrWrongMode
	}
	e.Cancel()
	return nil
}

// Undo reverts the last command.
func (e *Editor) Undo() error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	return e.history.Undo()
}

// Redo re-applies the last undone command.
func (e *Editor) Redo() error {
	if err := e.settle(); err != nil {
		return e.fail(err)
	}
	return e.history.Redo()
}

func (e *Editor) execute(cmd history.Command) error {
	if err := e.history.Execute(cmd); err != nil {
		return e.fail(fmt.Errorf("%s: %w", cmd.Description(), err))
	}
	e.log.Log(cmd.Description())
	return nil
}
