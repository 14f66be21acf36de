package engine

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/chazu/armature/pkg/editor"
	"github.com/chazu/armature/pkg/scene"
	"github.com/chazu/armature/pkg/viewport"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms armature Lisp source code before passing it
// to zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal).
//     A trailing + is kept so direction keywords like :x+ survive.
//
//  2. Kebab-case to underscore: paste-again -> paste_again
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
//  3. ; line comments become // comments.
//
// All transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				if j < len(b) && b[j] == '+' {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. Only
// keywords listed in named take the next argument as their value; any
// other keyword is positional.
func parseArgs(args []zygo.Sexp, named ...string) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	valued := make(map[string]bool, len(named))
	for _, n := range named {
		valued[n] = true
	}
	for i := 0; i < len(args); i++ {
		if name, ok := isKW(args[i]); ok && valued[name] && i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
			continue
		}
		result.positional = append(result.positional, args[i])
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toFloats extracts exactly n numbers.
func toFloats(args []zygo.Sexp, n int) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d arguments", n, len(args))
	}
	out := make([]float64, n)
	for i, a := range args {
		f, err := toFloat64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toAxis converts a keyword or string to a world axis.
func toAxis(s zygo.Sexp) (mgl64.Vec3, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return mgl64.Vec3{}, fmt.Errorf("expected axis keyword (:x, :y, :z): %w", err)
	}
	switch name {
	case "x":
		return mgl64.Vec3{1, 0, 0}, nil
	case "y":
		return mgl64.Vec3{0, 1, 0}, nil
	case "z":
		return mgl64.Vec3{0, 0, 1}, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("invalid axis %q, expected x, y, or z", name)
}

// ---------------------------------------------------------------------------
// Name lookup
// ---------------------------------------------------------------------------

// suggest returns the candidate closest to name, if it is close enough to
// be a plausible typo.
func suggest(name string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(strings.ToLower(name), strings.ToLower(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	limit := len(name) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDist < 0 || bestDist > limit {
		return "", false
	}
	return best, true
}

func unknown(what, name string, candidates []string) error {
	if s, ok := suggest(name, candidates); ok {
		return fmt.Errorf("no %s named %q (did you mean %q?)", what, name, s)
	}
	return fmt.Errorf("no %s named %q", what, name)
}

// objectNamed resolves an object by name.
func objectNamed(s *scene.Scene, name string) (scene.ID, error) {
	if o := s.FindByName(name); o != nil {
		return o.ID, nil
	}
	var names []string
	for _, o := range s.Objects() {
		names = append(names, o.Name)
	}
	return "", unknown("object", name, names)
}

// jointNamed resolves a joint by name.
func jointNamed(s *scene.Scene, name string) (scene.ID, error) {
	var names []string
	for _, j := range s.Joints() {
		if j.Name == name {
			return j.ID, nil
		}
		names = append(names, j.Name)
	}
	return "", unknown("joint", name, names)
}

// ---------------------------------------------------------------------------
// Result helpers
// ---------------------------------------------------------------------------

func str(s string) zygo.Sexp { return &zygo.SexpStr{S: s} }

// objectName returns obj's name, or null when an add is waiting in
// placement mode.
func objectName(obj *scene.Object) zygo.Sexp {
	if obj == nil {
		return zygo.SexpNull
	}
	return str(obj.Name)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtin is an editor-driving function. Its errors are reported with the
// builtin's name.
type builtin func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs every armature builtin into a zygomys
// environment. Each builtin runs under r so a stopped evaluation never
// touches the editor again.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, r *run) {
	for name, f := range builtins {
		name, f := name, f
		env.AddFunction(strings.ReplaceAll(name, "-", "_"), func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			var out zygo.Sexp = zygo.SexpNull
			err := r.do(func(ed *editor.Editor) error {
				var err error
				out, err = f(ed, args)
				return err
			})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return out, nil
		})
	}
}

var builtins = map[string]builtin{
	// (box 2 1 1)
	"box": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toFloats(args, 3)
		if err != nil {
			return nil, err
		}
		obj, err := ed.AddBox(v[0], v[1], v[2])
		if err != nil {
			return nil, err
		}
		return objectName(obj), nil
	},

	// (sphere 1)
	"sphere": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toFloats(args, 1)
		if err != nil {
			return nil, err
		}
		obj, err := ed.AddSphere(v[0])
		if err != nil {
			return nil, err
		}
		return objectName(obj), nil
	},

	// (cylinder 2 0.5)
	"cylinder": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toFloats(args, 2)
		if err != nil {
			return nil, err
		}
		obj, err := ed.AddCylinder(v[0], v[1])
		if err != nil {
			return nil, err
		}
		return objectName(obj), nil
	},

	// (select "Box" "Box 2"); (select) clears.
	"select": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		ids := make([]scene.ID, 0, len(args))
		for i, a := range args {
			name, err := toString(a)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			id, err := objectNamed(ed.Scene(), name)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
		return zygo.SexpNull, ed.Select(ids...)
	},

	// (translate 1 0 0)
	"translate": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toFloats(args, 3)
		if err != nil {
			return nil, err
		}
		return zygo.SexpNull, ed.Translate(mgl64.Vec3{v[0], v[1], v[2]})
	},

	// (rotate :y 90)
	"rotate": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected an axis and an angle in degrees")
		}
		axis, err := toAxis(args[0])
		if err != nil {
			return nil, err
		}
		deg, err := toFloat64(args[1])
		if err != nil {
			return nil, err
		}
		return zygo.SexpNull, ed.Rotate(axis, mgl64.DegToRad(deg))
	},

	// (scale 2) or (scale 1 2 1)
	"scale": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) == 1 {
			f, err := toFloat64(args[0])
			if err != nil {
				return nil, err
			}
			return zygo.SexpNull, ed.Scale(mgl64.Vec3{f, f, f})
		}
		v, err := toFloats(args, 3)
		if err != nil {
			return nil, err
		}
		return zygo.SexpNull, ed.Scale(mgl64.Vec3{v[0], v[1], v[2]})
	},

	// (paint "#ff0000" :metalness 0.5)
	"paint": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args, "metalness")
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("expected a color")
		}
		color, err := toString(pa.positional[0])
		if err != nil {
			return nil, err
		}
		var metal float64
		if v, ok := pa.kw["metalness"]; ok {
			if metal, err = toFloat64(v); err != nil {
				return nil, fmt.Errorf("metalness: %w", err)
			}
		}
		return zygo.SexpNull, ed.Paint(color, metal)
	},

	// (delete)
	"delete": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, ed.Delete()
	},

	// (union)
	"union": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		obj, err := ed.Union()
		if err != nil {
			return nil, err
		}
		return objectName(obj), nil
	},

	// (intersect)
	"intersect": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		obj, err := ed.Intersect()
		if err != nil {
			return nil, err
		}
		return objectName(obj), nil
	},

	// (subtract "Cylinder") cuts the named object out of the selection.
	"subtract": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected the name of the object to cut away")
		}
		name, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		drill, err := objectNamed(ed.Scene(), name)
		if err != nil {
			return nil, err
		}
		obj, err := ed.Subtract(drill)
		if err != nil {
			return nil, err
		}
		return objectName(obj), nil
	},

	// (joint :pivot) joins the selection, first object as parent.
	"joint": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		var kind string
		if len(args) > 0 {
			var err error
			if kind, err = toKeywordString(args[0]); err != nil {
				return nil, err
			}
		}
		k, err := scene.ParseJointKind(kind)
		if err != nil {
			return nil, err
		}
		j, err := ed.CreateJoint(k)
		if err != nil {
			return nil, err
		}
		return str(j.Name), nil
	},

	// (delete-joint "Joint 1")
	"delete-joint": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected a joint name")
		}
		name, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		id, err := jointNamed(ed.Scene(), name)
		if err != nil {
			return nil, err
		}
		return zygo.SexpNull, ed.DeleteJoint(id)
	},

	// (pose "Arm" 45) turns Arm counter-clockwise in the active view.
	"pose": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("expected an object name and an angle in degrees")
		}
		name, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		id, err := objectNamed(ed.Scene(), name)
		if err != nil {
			return nil, err
		}
		deg, err := toFloat64(args[1])
		if err != nil {
			return nil, err
		}
		return zygo.SexpNull, ed.PoseBy(id, mgl64.DegToRad(deg))
	},

	// (view :front) picks the view scripted poses are expressed in.
	"view": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected a view name")
		}
		name, err := toKeywordString(args[0])
		if err != nil {
			return nil, err
		}
		k, err := viewport.ParseKind(name)
		if err != nil {
			return nil, err
		}
		ed.SetActiveView(k)
		return zygo.SexpNull, nil
	},

	// (validate) returns the number of joint problems and logs each.
	"validate": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpInt{Val: int64(len(ed.ValidateJoints()))}, nil
	},

	// (copy)
	"copy": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, ed.Copy()
	},

	// (paste :x+) commits at once; (paste) leaves the preview open.
	"paste": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if _, err := ed.Paste(); err != nil {
			return nil, err
		}
		return commitNow(ed, args)
	},

	// (paste-again) repeats the last paste one step further.
	"paste-again": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		objs, err := ed.PasteAgain()
		if err != nil {
			return nil, err
		}
		return firstName(objs), nil
	},

	// (mirror :x) commits at once; (mirror) leaves the preview open.
	"mirror": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if _, err := ed.Mirror(); err != nil {
			return nil, err
		}
		return commitNow(ed, args)
	},

	// (confirm :x+) picks a pending placement, paste or mirror choice.
	"confirm": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected a direction or axis")
		}
		return confirmArg(ed, args)
	},

	// (cancel)
	"cancel": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		ed.Cancel()
		return zygo.SexpNull, nil
	},

	// (undo)
	"undo": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, ed.Undo()
	},

	// (redo)
	"redo": func(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
		return zygo.SexpNull, ed.Redo()
	},
}

// confirmArg confirms the preview choice named by the first argument, if
// there is one.
func confirmArg(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) == 0 {
		return zygo.SexpNull, nil
	}
	label, err := toKeywordString(args[0])
	if err != nil {
		return nil, err
	}
	objs, err := ed.Confirm(label)
	if err != nil {
		return nil, err
	}
	return firstName(objs), nil
}

// commitNow confirms a preview just opened, closing it again on failure.
func commitNow(ed *editor.Editor, args []zygo.Sexp) (zygo.Sexp, error) {
	out, err := confirmArg(ed, args)
	if err != nil {
		ed.Cancel()
	}
	return out, err
}

func firstName(objs []*scene.Object) zygo.Sexp {
	if len(objs) == 0 {
		return zygo.SexpNull
	}
	return str(objs[0].Name)
}
