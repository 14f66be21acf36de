// Package engine provides the scripting console for armature. It wraps
// zygomys in a sandboxed environment whose builtins drive editor
// operations, so a script edits the scene exactly as the mouse would.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/armature/pkg/editor"
	"github.com/chazu/armature/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a failed editor operation.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning is a problem left in the scene after a successful run,
// such as a joint whose parent was deleted.
type EvalWarning struct {
	Message string
	JointID scene.ID
}

// Engine wraps the zygomys interpreter. Each call to Evaluate creates a
// fresh sandboxed environment; the editor it drives carries state between
// calls. Starting an evaluation stops the one still running, if any.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
	current    *run
}

// NewEngine creates an Engine with the default timeout.
func NewEngine() *Engine {
	return &Engine{timeout: EvalTimeout}
}

// SetTimeout changes the hard limit for one evaluation. Zero or negative
// restores the default.
func (e *Engine) SetTimeout(d time.Duration) {
	if d <= 0 {
		d = EvalTimeout
	}
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// Evaluate runs source against ed. Every builtin call is one editor
// operation with its own undo step; operations that ran before a failure
// stay applied.
//
// Return semantics:
//   - On success: nil eval errors + nil error
//   - On parse/eval failure: eval errors + nil error
//   - On fatal failure (timeout, panic): nil + error
func (e *Engine) Evaluate(ed *editor.Editor, source string) ([]EvalError, error) {
	r := &run{editor: ed}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	timeout := e.timeout
	prev := e.current
	e.current = r
	e.mu.Unlock()

	if prev != nil {
		prev.stop()
	}
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", rec)}
			}
		}()

		evalErrs, err := r.evaluate(source)
		ch <- evalResult{errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, r, timeout, gen, &e.mu, &e.generation)
}

// Warnings reports the joint problems currently in ed's scene.
func Warnings(ed *editor.Editor) []EvalWarning {
	var out []EvalWarning
	for _, p := range ed.ValidateJoints() {
		out = append(out, EvalWarning{Message: p.Error(), JointID: p.JointID})
	}
	return out
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (r *run) evaluate(source string) ([]EvalError, error) {
	// Empty source is a valid program that does nothing.
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, r)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return parseZygomysError(err), nil
	}
	return nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
