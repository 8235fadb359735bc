package lisp

import (
	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/binding"
	"github.com/langforge/corelang/decorate"
	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/emit"
	"github.com/langforge/corelang/lang"
	"github.com/langforge/corelang/typesys"
)

// List is the dialect's rest-parameter container.
type List struct {
	Items []interface{}
}

// Dict is the dialect's keyword-parameter container.
type Dict struct {
	Entries map[string]interface{}
}

var (
	listType = typesys.New("List", typesys.ReferenceKind, typesys.CodeOther)
	dictType = typesys.New("Dict", typesys.ReferenceKind, typesys.CodeOther)
)

// Lisp implements lang.Language for the dialect. One value serves any
// number of concurrent compilations; all per-compilation state lives in
// the CompilerState it creates.
type Lisp struct {
	TopLevel *binding.TopLevel
}

// New creates the language rooted at a fresh top-level namespace.
func New() *Lisp {
	return &Lisp{TopLevel: binding.NewTopLevel()}
}

func (l *Lisp) Name() string { return "lisp" }

func (l *Lisp) ListParameterType() *typesys.TypeRef { return listType }
func (l *Lisp) DictParameterType() *typesys.TypeRef { return dictType }

// NewCompilerState returns the dialect's defaults: overflow-checked
// arithmetic without promotion, optimization on, warnings kept as
// warnings.
func (l *Lisp) NewCompilerState() *decorate.CompilerState {
	return &decorate.CompilerState{
		Language:   l.Name(),
		Sink:       diag.NewSink(),
		Checked:    true,
		Optimize:   true,
		Extensions: map[string]interface{}{},
	}
}

// NewChildCompilerState clones the parent's policy with a shared sink,
// for nested compilation units.
func (l *Lisp) NewChildCompilerState(parent *decorate.CompilerState) *decorate.CompilerState {
	child := *parent
	child.Extensions = make(map[string]interface{}, len(parent.Extensions))
	for k, v := range parent.Extensions {
		child.Extensions[k] = v
	}
	return &child
}

func (l *Lisp) NewScanner(source, sourceName string) lang.Scanner {
	return NewScanner(source, sourceName)
}

func (l *Lisp) NewParser(s lang.Scanner) lang.Parser {
	return NewParser(s)
}

// NewDecorator composes the dialect's pipeline: the core semantic
// checker in the Decorate stage, constant folding in Optimize. Both
// execution modes share the composition; an interpreted tree simply
// skips emission afterward.
func (l *Lisp) NewDecorator(kind lang.DecoratorType) *decorate.Pipeline {
	p := decorate.NewPipeline()
	p.Add(decorate.Decorate, decorate.NewCoreSemanticChecker(true, typesys.Any, &ast.CheckContext{}))
	p.Add(decorate.Optimize, &decorate.ConstantFolder{})
	return p
}

func (l *Lisp) NewEmitter(b emit.Builder, gen emit.TypeGen, state *decorate.CompilerState) *emit.Emitter {
	e := emit.NewEmitter(b, gen, state)
	e.TopLevel = l.TopLevel
	return e
}

// NewFunctionTemplate derives a template with the dialect's parameter
// containers wired in.
func (l *Lisp) NewFunctionTemplate(fn *ast.Node) (*lang.FunctionTemplate, error) {
	t, err := lang.TemplateForFunction(fn, l.TopLevel)
	if err != nil {
		return nil, err
	}
	t.NewList = func(items []interface{}) interface{} { return &List{Items: items} }
	t.NewDict = func() interface{} { return &Dict{Entries: make(map[string]interface{})} }
	return t, nil
}
