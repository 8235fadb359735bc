package lang

import (
	"fmt"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/binding"
	"github.com/langforge/corelang/typesys"
)

// TooManyArgumentsError reports a call with more positionals than the
// template accepts and no list parameter to absorb them.
type TooManyArgumentsError struct {
	Name string
	Got  int
	Max  int
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("%s: too many positional arguments: got %d, at most %d accepted", e.Name, e.Got, e.Max)
}

// TooFewArgumentsError reports a call that leaves required parameters
// unbound.
type TooFewArgumentsError struct {
	Name     string
	Got      int
	Required int
}

func (e *TooFewArgumentsError) Error() string {
	return fmt.Sprintf("%s: too few arguments: got %d, %d required", e.Name, e.Got, e.Required)
}

// FunctionTemplate describes a function's call shape: name, parameter
// names/types, required/optional counts, the list/dict parameter flags,
// and the TopLevel captured at definition (spec.md §3.5). It owns the
// argument-normalization logic both execution modes share.
type FunctionTemplate struct {
	Name       string
	ParamNames []string
	ParamTypes []*typesys.TypeRef
	Required   int
	Optional   int

	HasListParam bool
	HasDictParam bool

	TopLevel *binding.TopLevel

	// NewList and NewDict construct the language-provided parameter
	// container types (spec.md §4.5 steps 5–6).
	NewList func(items []interface{}) interface{}
	NewDict func() interface{}
}

// ParamCount returns the full parameter count, list/dict included.
func (t *FunctionTemplate) ParamCount() int { return len(t.ParamNames) }

// fixedCount is the number of ordinary positional slots.
func (t *FunctionTemplate) fixedCount() int {
	n := t.ParamCount()
	if t.HasListParam {
		n--
	}
	if t.HasDictParam {
		n--
	}
	return n
}

// MakeArguments normalizes an incoming positional argument array
// against the template (spec.md §4.5 "Function parameter
// normalization"): verbatim copies for the fixed slots, excess
// positionals packed into the list parameter, an empty dictionary for
// the dict parameter (the keyword call path merges into it), and
// defaults copied from the tail of defaults for unbound optionals.
func (t *FunctionTemplate) MakeArguments(args, defaults []interface{}) ([]interface{}, error) {
	paramCount := t.ParamCount()
	if !t.HasListParam && len(args) > paramCount {
		return nil, &TooManyArgumentsError{Name: t.Name, Got: len(args), Max: paramCount}
	}
	if len(args) < t.Required {
		return nil, &TooFewArgumentsError{Name: t.Name, Got: len(args), Required: t.Required}
	}

	fixed := t.fixedCount()
	out := make([]interface{}, paramCount)

	bound := len(args)
	if bound > fixed {
		bound = fixed
	}
	copy(out, args[:bound])

	next := fixed
	if t.HasListParam {
		var rest []interface{}
		if len(args) > fixed {
			rest = args[fixed:]
		}
		items := make([]interface{}, len(rest))
		copy(items, rest)
		out[next] = t.NewList(items)
		next++
	}
	if t.HasDictParam {
		out[next] = t.NewDict()
	}

	for i := bound; i < fixed; i++ {
		di := len(defaults) - (fixed - i)
		if di < 0 || di >= len(defaults) {
			return nil, &TooFewArgumentsError{Name: t.Name, Got: len(args), Required: fixed - len(defaults)}
		}
		out[i] = defaults[di]
	}
	return out, nil
}

// Function is the runtime value a Function node evaluates to: the
// template, the declaration nodes needed to run or compile the body,
// and the environment captured at creation. CapturedEnv is opaque here;
// the interpreter stores its own frame type in it.
type Function struct {
	Template    *FunctionTemplate
	Params      []*ast.Node
	Body        *ast.Node
	Defaults    []*ast.Node
	CapturedEnv interface{}
}

// TemplateForFunction derives the call shape of a Function node. The
// list/dict constructors still have to be filled in by the language;
// this computes the counting that is language-independent.
func TemplateForFunction(fn *ast.Node, top *binding.TopLevel) (*FunctionTemplate, error) {
	t := &FunctionTemplate{Name: fn.FunctionName(), TopLevel: top}
	for _, p := range fn.FunctionParams() {
		t.ParamNames = append(t.ParamNames, p.ParameterName())
		pt := p.ValueType()
		if pt == nil {
			pt = typesys.Object
		}
		t.ParamTypes = append(t.ParamTypes, pt)
		switch p.ParameterKind() {
		case ast.ParamList:
			t.HasListParam = true
		case ast.ParamDict:
			t.HasDictParam = true
		default:
			if p.ParameterDefault() != nil {
				t.Optional++
			} else {
				t.Required++
			}
		}
	}
	if t.HasListParam && t.HasDictParam {
		return nil, fmt.Errorf("lang: function %q combines list and dict parameters; declare at most one of the two", t.Name)
	}
	return t, nil
}
