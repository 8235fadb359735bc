package emit

import (
	"fmt"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/typesys"
)

// functionCtor builds a function object from a target (the enclosing
// closure instance, or null) and the compiled method's metadata.
var functionCtor = &typesys.Constructor{Params: []*typesys.TypeRef{typesys.Object, typesys.Object}}

func init() {
	FunctionType.AddConstructor(functionCtor)
}

// FunctionArtifact is the compiled form of one Function node: the
// recorded method body plus the shape information a FunctionTemplate
// needs to normalize calls against it.
type FunctionArtifact struct {
	Name         string
	Builder      Builder
	ParamNames   []string
	Required     int
	Optional     int
	HasListParam bool
	HasDictParam bool

	// UsesEnclosingClosure marks a nested function that receives the
	// enclosing frame's closure record as its argument 0.
	UsesEnclosingClosure bool

	// Closure is the record this function allocated for its own
	// captured variables, nil when nothing below captures from it.
	Closure *Closure
}

// EmitFunction compiles a Function node into its own method body via a
// child Emitter and returns the artifact. The parent's stack is not
// touched; emitFunctionValue wraps this to push a function object.
func (e *Emitter) EmitFunction(n *ast.Node) (*FunctionArtifact, error) {
	params := n.FunctionParams()

	a := &FunctionArtifact{}
	for _, p := range params {
		a.ParamNames = append(a.ParamNames, p.ParameterName())
		switch p.ParameterKind() {
		case ast.ParamList:
			a.HasListParam = true
		case ast.ParamDict:
			a.HasDictParam = true
		default:
			if p.ParameterDefault() != nil {
				a.Optional++
			} else {
				a.Required++
			}
		}
	}
	// Combining a list and a dict parameter on one compiled function
	// would need two distinct call wrappers; the grammar restriction is
	// the supported resolution (see DESIGN.md).
	if a.HasListParam && a.HasDictParam {
		return nil, fmt.Errorf("emit: function %q combines list and dict parameters; declare at most one of the two", n.FunctionName())
	}

	a.Name = fmt.Sprintf("lambda$%d%s", e.nextLambda, n.FunctionName())
	e.nextLambda++

	child := NewEmitter(e.NewMethodBuilder(a.Name), e.TypeGen, e.State())
	child.NewMethodBuilder = e.NewMethodBuilder
	child.TopLevel = e.TopLevel
	a.Builder = child.B

	argBase := 0
	if e.closure != nil {
		child.AdoptClosure(e.closure)
		a.UsesEnclosingClosure = true
		argBase = 1
	}

	child.BeginScope()
	for i, p := range params {
		t := p.ValueType()
		if t == nil {
			t = typesys.Object
		}
		slot := &ParameterSlot{Index: argBase + i, Typ: t, Name: p.ParameterName()}
		if err := child.Declare(p.ParameterName(), slot); err != nil {
			return nil, err
		}
	}

	captured := capturedVars(n)
	if len(captured) > 0 || n.FunctionCreatesClosure() {
		c, err := child.AllocClosure(captured, child.closure)
		if err != nil {
			return nil, err
		}
		a.Closure = c
		// Captured parameters are copied into their cells at entry;
		// from here on the cell is the variable.
		for _, cv := range captured {
			cell, ok := c.resolve(cv.Name, 0)
			if !ok {
				return nil, fmt.Errorf("emit: captured variable %q missing from its closure", cv.Name)
			}
			if orig, bound := child.ResolveName(cv.Name); bound {
				if _, isParam := orig.(*ParameterSlot); isParam {
					err := cell.EmitSet(child, func() error { return orig.EmitGet(child) }, true)
					if err != nil {
						return nil, err
					}
				}
			}
			if err := child.Declare(cv.Name, cell); err != nil {
				return nil, err
			}
		}
	}

	body := n.FunctionBody()
	// A declaration's body context is the declared return type (set by
	// the decorating caller); an expression-position lambda's body
	// inherited the function-object context instead, which is not what
	// its result converts to — dynamic functions return Unknown.
	if body.ContextType() == nil || body.ContextType() == FunctionType || body.ContextType() == typesys.Any {
		body.SetValueContext(typesys.Unknown)
	}
	if err := child.EmitNode(body); err != nil {
		return nil, err
	}
	if err := child.EndScope(); err != nil {
		return nil, err
	}
	if err := child.Finish(); err != nil {
		return nil, err
	}
	ensureReturn(child.B, body)
	return a, nil
}

// ensureReturn appends the missing final return for a body that was
// never tail-marked (an un-decorated fragment emitted directly).
func ensureReturn(b Builder, body *ast.Node) {
	if body.IsTail() {
		return
	}
	if p, ok := b.(*Program); ok {
		if len(p.Code) > 0 && p.Code[len(p.Code)-1].Op == OpReturn {
			return
		}
	}
	b.Return()
}

// emitFunctionValue compiles the function and pushes a function object:
// the enclosing closure instance (or null) as the call target, the
// compiled method's cached metadata, and the function constructor.
func (e *Emitter) emitFunctionValue(n *ast.Node) (*typesys.TypeRef, error) {
	a, err := e.EmitFunction(n)
	if err != nil {
		return nil, err
	}
	if a.UsesEnclosingClosure {
		if err := e.closure.Slot.EmitGet(e); err != nil {
			return nil, err
		}
	} else {
		e.B.PushNull()
	}
	f := e.CacheConstant(a, FunctionType)
	e.B.LoadField(f)
	e.B.NewObject(FunctionType, functionCtor)
	return FunctionType, nil
}

// capturedVars computes the variables of fn that some nested function
// references: the free names of each directly nested Function node,
// intersected with what fn itself declares (parameters and
// initializing assignments).
func capturedVars(fn *ast.Node) []CapturedVar {
	declared := declaredNames(fn)
	seen := make(map[string]bool)
	var out []CapturedVar
	for _, nested := range directNestedFunctions(fn.FunctionBody()) {
		for name, t := range freeNames(nested) {
			if !declared[name] || seen[name] {
				continue
			}
			seen[name] = true
			if t == nil {
				t = typesys.Object
			}
			out = append(out, CapturedVar{Name: name, Type: t})
		}
	}
	return out
}

// declaredNames collects the names fn binds in its own frame: its
// parameters, plus initializing assignments in the body outside nested
// functions.
func declaredNames(fn *ast.Node) map[string]bool {
	names := make(map[string]bool)
	for _, p := range fn.FunctionParams() {
		names[p.ParameterName()] = true
	}
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n.Kind() == ast.KindFunction {
			return
		}
		if n.Kind() == ast.KindAssign && n.AssignInitializing() {
			if lhs := n.AssignLHS(); lhs.Kind() == ast.KindVariable {
				names[lhs.VariableName()] = true
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(fn.FunctionBody())
	return names
}

// directNestedFunctions yields Function nodes under n without
// descending into them.
func directNestedFunctions(n *ast.Node) []*ast.Node {
	var out []*ast.Node
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		if n.Kind() == ast.KindFunction {
			out = append(out, n)
			return
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, c := range n.Children() {
		walk(c)
	}
	return out
}

// freeNames returns the variable names fn reads without declaring,
// mapped to their statically known types where resolution already ran.
// Names bound by a deeper nested function stay attributed to it, not to
// fn.
func freeNames(fn *ast.Node) map[string]*typesys.TypeRef {
	free := make(map[string]*typesys.TypeRef)
	local := make(map[string]bool)
	for _, p := range fn.FunctionParams() {
		local[p.ParameterName()] = true
	}
	var walk func(n *ast.Node)
	walk = func(n *ast.Node) {
		switch n.Kind() {
		case ast.KindFunction:
			inner := freeNames(n)
			for name, t := range inner {
				if !local[name] && free[name] == nil {
					free[name] = t
				}
			}
			return
		case ast.KindAssign:
			if n.AssignInitializing() {
				if lhs := n.AssignLHS(); lhs.Kind() == ast.KindVariable {
					local[lhs.VariableName()] = true
				}
			}
		case ast.KindVariable:
			if !local[n.VariableName()] && free[n.VariableName()] == nil {
				var t *typesys.TypeRef
				if sym := n.VariableSymbol(); sym != nil {
					t = sym.Type
				}
				if t == nil {
					t = n.ValueType()
				}
				free[n.VariableName()] = t
			}
		}
		for _, c := range n.Children() {
			walk(c)
		}
	}
	walk(fn.FunctionBody())
	return free
}
