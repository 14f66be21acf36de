package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chazu/armature/pkg/editor"
)

// EvalTimeout is the default hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// ErrStopped is returned by builtins called after their evaluation timed
// out or was superseded.
var ErrStopped = errors.New("evaluation stopped")

// evalResult is the internal type used to pass evaluation results through channels.
type evalResult struct {
	errors []EvalError
	err    error
}

// run is one evaluation's handle on the editor. Builtins hold mu while
// they touch the editor; once stopped is set no further builtin runs, so
// a script abandoned by a timeout can never race the caller.
type run struct {
	mu      sync.Mutex
	stopped bool
	editor  *editor.Editor
}

// do runs f against the editor unless the run was stopped.
func (r *run) do(f func(ed *editor.Editor) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrStopped
	}
	return f(r.editor)
}

// stop waits for any in-flight builtin and blocks all later ones.
func (r *run) stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
}

// waitWithTimeout waits for a result from ch, but returns a timeout error
// if the evaluation exceeds timeout. It uses a generation counter to
// discard stale results from previous evaluations.
//
// On timeout, the goroutine may still be running; stopping r fences it off
// the editor and the generation check discards its result.
func waitWithTimeout(
	ch <-chan evalResult,
	r *run,
	timeout time.Duration,
	gen uint64,
	mu *sync.Mutex,
	currentGen *uint64,
) ([]EvalError, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		mu.Lock()
		current := *currentGen
		mu.Unlock()

		if gen != current {
			return nil, fmt.Errorf("evaluation superseded by newer request")
		}
		return res.errors, res.err

	case <-timer.C:
		r.stop()
		return nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
