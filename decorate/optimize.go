package decorate

import (
	"math/big"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/operator"
	"github.com/langforge/corelang/typesys"
)

// ConstantFolder is the Optimize-stage processor spec.md §4.3's table
// calls out for the Optimize stage: every binary Op node with exactly
// two operands that are both Literal, after its own operands have been
// folded first, is replaced by a single Literal carrying the
// compile-time result; Op nodes with more than two operands are not
// folded —
// grounded on go-dws's internal/bytecode/optimizer.go foldBinaryOp
// family, adapted from a post-compile bytecode pass to a pre-emission
// tree rewrite.
//
// Folding is skipped (the node is left for runtime evaluation) whenever
// operator.Evaluate reports an overflow or divide-by-zero, matching
// spec.md §4.1's overflow policy: a compile-time failure here must not
// turn into a hard compile error, since the same expression might be
// perfectly valid at a different promotion/checked setting downstream.
type ConstantFolder struct{}

func (c *ConstantFolder) Name() string { return "constant-fold" }

func (c *ConstantFolder) Process(n *ast.Node, state *CompilerState) (*ast.Node, error) {
	return foldNode(n, state)
}

// foldNode recurses bottom-up over n's own subtree itself, rather than
// relying on Pipeline's prefix walk order: a PrefixProcessor only sees
// each node once on the way down, which would fold an outer (+ (+ 1 2)
// 3) before its inner sum had a chance to collapse to a literal. Doing
// the whole subtree here means Pipeline's subsequent (redundant, but
// harmless) visits to the now-literal children are no-ops.
func foldNode(n *ast.Node, state *CompilerState) (*ast.Node, error) {
	if n.Kind() != ast.KindOp {
		return n, nil
	}

	for _, operand := range n.Operands() {
		folded, err := foldNode(operand, state)
		if err != nil {
			return n, err
		}
		if folded != operand {
			n.Replace(operand, folded)
		}
	}

	operands := n.Operands()
	if n.Operator().Arity() != 2 || len(operands) != 2 {
		return n, nil
	}
	a, b := operands[0], operands[1]
	if a.Kind() != ast.KindLiteral || b.Kind() != ast.KindLiteral {
		return n, nil
	}

	av, ok := literalToValue(a)
	if !ok {
		return n, nil
	}
	bv, ok := literalToValue(b)
	if !ok {
		return n, nil
	}

	result, err := operator.Evaluate(n.Operator(), av, bv, operator.EvalOptions{
		Checked: state.Checked,
		Promote: state.PromoteOnOverflow,
	})
	if err != nil {
		return n, nil
	}
	t := typesys.TypeForCode(result.Code)
	if t == nil {
		return n, nil
	}
	return ast.NewLiteral(n.Position(), valueOfResult(result), t), nil
}

func literalToValue(n *ast.Node) (operator.Value, bool) {
	t := n.ValueType()
	if t == nil {
		return operator.Value{}, false
	}
	switch v := n.LiteralValue().(type) {
	case int64:
		if t.Code().IsUnsigned() {
			return operator.UintValue(t.Code(), uint64(v)), true
		}
		return operator.IntValue(t.Code(), v), true
	case int:
		return operator.IntValue(t.Code(), int64(v)), true
	case uint64:
		return operator.UintValue(t.Code(), v), true
	case float64:
		return operator.FloatValue(t.Code(), v), true
	case *big.Int:
		return operator.BigValue(v), true
	case bool:
		return operator.BoolValue(v), true
	case string:
		return operator.StringValue(v), true
	default:
		return operator.Value{}, false
	}
}

func valueOfResult(v operator.Value) interface{} {
	switch {
	case v.Big != nil:
		return v.Big
	case v.Code.IsFloatingPoint():
		return v.F
	case v.Code == typesys.CodeBool:
		return v.B
	case v.Code == typesys.CodeString:
		return v.S
	case v.Code.IsUnsigned():
		return v.U
	default:
		return v.I
	}
}
