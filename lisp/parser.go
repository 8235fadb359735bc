package lisp

import (
	"fmt"
	"strconv"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/lang"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// operatorForms maps operator symbols to the core singletons; any other
// head position parses as an application.
var operatorForms = map[string]*operator.Operator{
	"+":      operator.Add,
	"-":      operator.Subtract,
	"*":      operator.Multiply,
	"/":      operator.Divide,
	"%":      operator.Modulus,
	"&":      operator.BitwiseAnd,
	"|":      operator.BitwiseOr,
	"^":      operator.BitwiseXor,
	"truth":  operator.LogicalTruth,
}

// Parser builds a raw AST from a token stream. It also attaches
// LexicalScopes for the binding forms (let, lambda) and declares their
// symbols, so the core semantic checker can resolve variables without a
// separate binder pass.
type Parser struct {
	s      lang.Scanner
	tok    lang.Token
	peeked bool
	scopes []*ast.LexicalScope
}

// NewParser creates a parser over s.
func NewParser(s lang.Scanner) *Parser {
	return &Parser{s: s}
}

func (p *Parser) next() (lang.Token, error) {
	if p.peeked {
		p.peeked = false
		return p.tok, nil
	}
	return p.s.Next()
}

func (p *Parser) peek() (lang.Token, error) {
	if !p.peeked {
		t, err := p.s.Next()
		if err != nil {
			return t, err
		}
		p.tok = t
		p.peeked = true
	}
	return p.tok, nil
}

func (p *Parser) currentScope() *ast.LexicalScope {
	return p.scopes[len(p.scopes)-1]
}

func (p *Parser) pushScope() *ast.LexicalScope {
	s := ast.NewScope(p.currentScope())
	p.scopes = append(p.scopes, s)
	return s
}

func (p *Parser) popScope() {
	p.scopes = p.scopes[:len(p.scopes)-1]
}

// Parse reads every top-level form; a single form is returned as-is,
// several are wrapped in a Block. The root node carries the unit's
// outermost scope.
func (p *Parser) Parse() (*ast.Node, error) {
	root := ast.NewScope(nil)
	p.scopes = []*ast.LexicalScope{root}

	var forms []*ast.Node
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind == kindEOF {
			break
		}
		form, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}

	var result *ast.Node
	switch len(forms) {
	case 0:
		return nil, fmt.Errorf("lisp: empty input")
	case 1:
		result = forms[0]
	default:
		block := ast.NewBlock(forms[0].Position())
		for _, f := range forms {
			block.AppendChild(f)
		}
		result = block
	}
	// A binding form already carries its own scope, parented on the
	// unit scope; only a scope-less root needs the unit scope attached.
	if result.Scope() == nil {
		result.SetScope(root)
	}
	return result, nil
}

func (p *Parser) parseExpr() (*ast.Node, error) {
	t, err := p.next()
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case kindNumber:
		return numberLiteral(t)
	case kindString:
		return ast.NewLiteral(t.Pos, t.Text, typesys.String), nil
	case kindBool:
		return ast.NewLiteral(t.Pos, t.Text == "#t", typesys.Bool), nil
	case kindSymbol:
		if t.Text == "null" {
			return ast.NewLiteral(t.Pos, nil, typesys.Object), nil
		}
		return ast.NewVariable(t.Pos, t.Text), nil
	case kindLParen:
		return p.parseForm(t)
	case kindRParen:
		return nil, fmt.Errorf("%s: unexpected )", t.Pos)
	default:
		return nil, fmt.Errorf("%s: unexpected end of input", t.Pos)
	}
}

func numberLiteral(t lang.Token) (*ast.Node, error) {
	if i, err := strconv.ParseInt(t.Text, 10, 64); err == nil {
		typ := typesys.Int
		if i > 2147483647 || i < -2147483648 {
			typ = typesys.Long
		}
		return ast.NewLiteral(t.Pos, i, typ), nil
	}
	f, err := strconv.ParseFloat(t.Text, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: malformed number %q", t.Pos, t.Text)
	}
	return ast.NewLiteral(t.Pos, f, typesys.Double), nil
}

func (p *Parser) parseForm(open lang.Token) (*ast.Node, error) {
	head, err := p.peek()
	if err != nil {
		return nil, err
	}
	if head.Kind == kindRParen {
		return nil, fmt.Errorf("%s: empty form", open.Pos)
	}

	if head.Kind == kindSymbol {
		switch head.Text {
		case "let":
			p.next()
			return p.parseLet(open)
		case "set!":
			p.next()
			return p.parseSet(open)
		case "lambda":
			p.next()
			return p.parseLambda(open, "")
		case "if":
			p.next()
			return p.parseIf(open)
		case "begin":
			p.next()
			return p.parseBegin(open)
		case ".option":
			p.next()
			return p.parseOption(open)
		default:
			if op, ok := operatorForms[head.Text]; ok {
				p.next()
				return p.parseOperator(open, op)
			}
		}
	}
	// Anything else in head position is an application.
	return p.parseApplication(open)
}

func (p *Parser) parseOperands(closeFor string) ([]*ast.Node, error) {
	var out []*ast.Node
	for {
		t, err := p.peek()
		if err != nil {
			return nil, err
		}
		if t.Kind == kindRParen {
			p.next()
			return out, nil
		}
		if t.Kind == kindEOF {
			return nil, fmt.Errorf("%s: unterminated %s form", t.Pos, closeFor)
		}
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, operand)
	}
}

func (p *Parser) parseOperator(open lang.Token, op *operator.Operator) (*ast.Node, error) {
	operands, err := p.parseOperands(op.Name())
	if err != nil {
		return nil, err
	}
	if op.Arity() > 0 && len(operands) != op.Arity() && !(op.Arity() == 2 && len(operands) > 2) {
		return nil, fmt.Errorf("%s: operator %s expects %d operand(s), got %d", open.Pos, op.Name(), op.Arity(), len(operands))
	}
	return ast.NewOp(open.Pos, op, operands...), nil
}

func (p *Parser) parseApplication(open lang.Token) (*ast.Node, error) {
	callee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	args, err := p.parseOperands("application")
	if err != nil {
		return nil, err
	}
	return ast.NewOp(open.Pos, lang.Apply, append([]*ast.Node{callee}, args...)...), nil
}

// parseLet reads (let ((name expr)...) body...): a Block whose leading
// children are initializing assignments, carrying a fresh scope that
// declares each name.
func (p *Parser) parseLet(open lang.Token) (*ast.Node, error) {
	if err := p.expect(kindLParen, "let bindings"); err != nil {
		return nil, err
	}

	scope := p.pushScope()
	defer p.popScope()

	block := ast.NewBlock(open.Pos)
	block.SetScope(scope)

	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == kindRParen {
			break
		}
		if t.Kind != kindLParen {
			return nil, fmt.Errorf("%s: let binding must be a (name expr) pair", t.Pos)
		}
		nameTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if nameTok.Kind != kindSymbol {
			return nil, fmt.Errorf("%s: let binding name must be a symbol", nameTok.Pos)
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(kindRParen, "let binding"); err != nil {
			return nil, err
		}

		sym := &ast.Symbol{Name: nameTok.Text, Type: value.ValueType()}
		scope.Declare(sym)
		lhs := ast.NewVariable(nameTok.Pos, nameTok.Text)
		lhs.SetVariableSymbol(sym)
		block.AppendChild(ast.NewAssign(nameTok.Pos, lhs, value, true))
	}

	body, err := p.parseOperands("let")
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s: let without a body", open.Pos)
	}
	for _, form := range body {
		block.AppendChild(form)
	}
	return block, nil
}

func (p *Parser) parseSet(open lang.Token) (*ast.Node, error) {
	nameTok, err := p.next()
	if err != nil {
		return nil, err
	}
	if nameTok.Kind != kindSymbol {
		return nil, fmt.Errorf("%s: set! target must be a symbol", nameTok.Pos)
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(kindRParen, "set!"); err != nil {
		return nil, err
	}
	lhs := ast.NewVariable(nameTok.Pos, nameTok.Text)
	if sym, ok := p.currentScope().Resolve(nameTok.Text); ok {
		lhs.SetVariableSymbol(sym)
	}
	return ast.NewAssign(open.Pos, lhs, value, false), nil
}

// parseLambda reads (lambda (param... [. rest]) body...). A parameter
// is a symbol or a (name default) pair; a dotted tail declares the rest
// (list) parameter.
func (p *Parser) parseLambda(open lang.Token, name string) (*ast.Node, error) {
	if err := p.expect(kindLParen, "lambda parameters"); err != nil {
		return nil, err
	}

	scope := p.pushScope()
	defer p.popScope()

	var params []*ast.Node
	restSeen := false
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == kindRParen {
			break
		}
		switch {
		case t.Kind == kindSymbol && t.Text == ".":
			restTok, err := p.next()
			if err != nil {
				return nil, err
			}
			if restTok.Kind != kindSymbol {
				return nil, fmt.Errorf("%s: rest parameter must be a symbol", restTok.Pos)
			}
			params = append(params, ast.NewParameter(restTok.Pos, restTok.Text, ast.ParamList, nil))
			scope.Declare(&ast.Symbol{Name: restTok.Text})
			restSeen = true
		case t.Kind == kindSymbol:
			if restSeen {
				return nil, fmt.Errorf("%s: no parameters may follow the rest parameter", t.Pos)
			}
			params = append(params, ast.NewParameter(t.Pos, t.Text, ast.ParamNormal, nil))
			scope.Declare(&ast.Symbol{Name: t.Text})
		case t.Kind == kindLParen:
			nameTok, err := p.next()
			if err != nil {
				return nil, err
			}
			if nameTok.Kind != kindSymbol {
				return nil, fmt.Errorf("%s: parameter name must be a symbol", nameTok.Pos)
			}
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(kindRParen, "parameter default"); err != nil {
				return nil, err
			}
			params = append(params, ast.NewParameter(nameTok.Pos, nameTok.Text, ast.ParamNormal, def))
			scope.Declare(&ast.Symbol{Name: nameTok.Text})
		default:
			return nil, fmt.Errorf("%s: malformed parameter list", t.Pos)
		}
	}

	bodyForms, err := p.parseOperands("lambda")
	if err != nil {
		return nil, err
	}
	if len(bodyForms) == 0 {
		return nil, fmt.Errorf("%s: lambda without a body", open.Pos)
	}
	body := ast.NewBlock(open.Pos)
	body.SetScope(scope)
	for _, f := range bodyForms {
		body.AppendChild(f)
	}
	return ast.NewFunction(open.Pos, name, params, body, false), nil
}

func (p *Parser) parseIf(open lang.Token) (*ast.Node, error) {
	parts, err := p.parseOperands("if")
	if err != nil {
		return nil, err
	}
	if len(parts) != 2 && len(parts) != 3 {
		return nil, fmt.Errorf("%s: if expects 2 or 3 forms, got %d", open.Pos, len(parts))
	}
	// The dialect's condition is a truth test, not a Bool expression:
	// null and #f are false, everything else true. The wrap keeps the
	// core's Bool-context contract satisfied for any operand type, and
	// the LogicalTruth fast path erases it again for Bool operands.
	cond := ast.NewOp(parts[0].Position(), operator.LogicalTruth, parts[0])
	if len(parts) == 2 {
		return ast.NewIf(open.Pos, cond, parts[1], nil), nil
	}
	return ast.NewIf(open.Pos, cond, parts[1], parts[2]), nil
}

func (p *Parser) parseBegin(open lang.Token) (*ast.Node, error) {
	forms, err := p.parseOperands("begin")
	if err != nil {
		return nil, err
	}
	block := ast.NewBlock(open.Pos)
	for _, f := range forms {
		block.AppendChild(f)
	}
	return block, nil
}

// parseOption reads (.option ((key value)...) body...): the overrides
// map feeds the CompilerState push around the body (spec.md §3.6).
func (p *Parser) parseOption(open lang.Token) (*ast.Node, error) {
	if err := p.expect(kindLParen, ".option settings"); err != nil {
		return nil, err
	}
	overrides := make(map[string]interface{})
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.Kind == kindRParen {
			break
		}
		if t.Kind != kindLParen {
			return nil, fmt.Errorf("%s: option must be a (key value) pair", t.Pos)
		}
		keyTok, err := p.next()
		if err != nil {
			return nil, err
		}
		if keyTok.Kind != kindSymbol {
			return nil, fmt.Errorf("%s: option key must be a symbol", keyTok.Pos)
		}
		valTok, err := p.next()
		if err != nil {
			return nil, err
		}
		var val interface{}
		switch valTok.Kind {
		case kindBool:
			val = valTok.Text == "#t"
		case kindNumber:
			lit, err := numberLiteral(valTok)
			if err != nil {
				return nil, err
			}
			val = lit.LiteralValue()
		case kindString, kindSymbol:
			val = valTok.Text
		default:
			return nil, fmt.Errorf("%s: option value must be a literal", valTok.Pos)
		}
		overrides[keyTok.Text] = val
		if err := p.expect(kindRParen, "option pair"); err != nil {
			return nil, err
		}
	}

	bodyForms, err := p.parseOperands(".option")
	if err != nil {
		return nil, err
	}
	if len(bodyForms) == 0 {
		return nil, fmt.Errorf("%s: .option without a body", open.Pos)
	}
	var body *ast.Node
	if len(bodyForms) == 1 {
		body = bodyForms[0]
	} else {
		body = ast.NewBlock(open.Pos)
		for _, f := range bodyForms {
			body.AppendChild(f)
		}
	}
	return ast.NewOptions(open.Pos, overrides, body), nil
}

func (p *Parser) expect(kind int, what string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.Kind != kind {
		return fmt.Errorf("%s: malformed %s", t.Pos, what)
	}
	return nil
}
