// Package lang is the plug-in surface a concrete front end implements
// to sit on the platform (spec.md §6.3): the Language interface with
// its factory methods, the scanner/parser contracts the core consumes
// tokens and trees through, and the FunctionTemplate call-shape
// machinery shared by compiled and interpreted execution.
package lang

import (
	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/decorate"
	"github.com/langforge/corelang/diag"
	"github.com/langforge/corelang/emit"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// DecoratorType selects which pipeline composition a language builds:
// one targeting code emission, one targeting the tree-walking
// interpreter.
type DecoratorType int

const (
	DecoratorCompiled DecoratorType = iota
	DecoratorInterpreted
)

// Token is the unit a Scanner produces. Kind values are owned by the
// language; the core only fixes that KindEOF marks exhaustion.
type Token struct {
	Kind int
	Text string
	Pos  diag.Position
}

// KindEOF is the reserved token kind reporting end of input.
const KindEOF = 0

// Scanner turns source text into tokens.
type Scanner interface {
	Next() (Token, error)
}

// Parser turns a token stream into a raw AST ready for decoration.
type Parser interface {
	Parse() (*ast.Node, error)
}

// Language is everything the platform needs from a concrete front end
// (spec.md §6.3). The factories return core types wired with the
// language's own policies; the language never reaches into pipeline or
// emitter internals.
type Language interface {
	Name() string

	// ListParameterType and DictParameterType are the concrete types
	// MakeArguments packs excess positionals and keyword arguments into
	// (spec.md §3.5, §4.5).
	ListParameterType() *typesys.TypeRef
	DictParameterType() *typesys.TypeRef

	NewCompilerState() *decorate.CompilerState
	NewChildCompilerState(parent *decorate.CompilerState) *decorate.CompilerState

	NewScanner(source, sourceName string) Scanner
	NewParser(s Scanner) Parser
	NewDecorator(kind DecoratorType) *decorate.Pipeline
	NewEmitter(b emit.Builder, gen emit.TypeGen, state *decorate.CompilerState) *emit.Emitter

	// NewFunctionTemplate derives the call-shape template for a
	// Function node, including the language's list/dict constructors.
	NewFunctionTemplate(fn *ast.Node) (*FunctionTemplate, error)
}

// Decorate composes the language's decorator pipeline for kind and runs
// it over root, returning the (possibly replaced) root.
func Decorate(l Language, root *ast.Node, kind DecoratorType, state *decorate.CompilerState) (*ast.Node, error) {
	return l.NewDecorator(kind).Run(root, state)
}

// Apply is the function-application operator: operand 0 is the callee,
// the rest are arguments. It is a core-registered extension rather than
// a spec primitive — languages whose call syntax is an expression (a
// Scheme combination, a Python call) parse applications into Op nodes
// carrying it, and the interpreter and emitter dispatch on it.
var Apply = operator.New("apply", -1, "")
