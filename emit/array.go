package emit

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/langforge/corelang/ast"
	"github.com/langforge/corelang/typesys"
)

// EmitArray emits a new array of elem populated from nodes (spec.md
// §4.5 "Typed emit helpers"). When the element type is a fixed-width
// primitive and every node is a constant, the element bytes are packed
// into an InitializedData blob and copied in with one
// RuntimeHelpers.InitializeArray call instead of a store per element.
func (e *Emitter) EmitArray(nodes []*ast.Node, elem *typesys.TypeRef) error {
	e.B.PushInt32(int32(len(nodes)))
	e.B.NewArray(elem)

	if len(nodes) > 0 && hasFixedWidth(elem.Code()) && allConstant(nodes) {
		if data, ok := packConstants(nodes, elem.Code()); ok {
			name := fmt.Sprintf("data$%d_%s", e.nextData, elem.Name())
			e.nextData++
			f := e.TypeGen.DefineInitializedData(name, data)
			e.B.Dup()
			e.B.LoadFieldAddr(f)
			e.B.Call(InitializeArrayMethod)
			return nil
		}
	}

	for i, n := range nodes {
		e.B.Dup()
		e.B.PushInt32(int32(i))
		if err := e.EmitTypedNode(n, elem); err != nil {
			return err
		}
		e.B.StoreElement(elem.Code())
	}
	return nil
}

func allConstant(nodes []*ast.Node) bool {
	for _, n := range nodes {
		if !n.IsConstant() || n.Kind() != ast.KindLiteral {
			return false
		}
	}
	return true
}

// packConstants renders the literal values as little-endian element
// bytes. A literal whose host representation does not fit the element
// code reports false, and the caller falls back to per-element stores.
func packConstants(nodes []*ast.Node, code typesys.Code) ([]byte, bool) {
	size := code.ByteSize()
	if size == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(nodes)*size)
	buf := make([]byte, 8)
	for _, n := range nodes {
		var bits uint64
		switch v := n.LiteralValue().(type) {
		case int64:
			bits = uint64(v)
		case uint64:
			bits = v
		case bool:
			if v {
				bits = 1
			}
		case float64:
			if code == typesys.CodeSingle {
				bits = uint64(math.Float32bits(float32(v)))
			} else {
				bits = math.Float64bits(v)
			}
		default:
			return nil, false
		}
		binary.LittleEndian.PutUint64(buf, bits)
		out = append(out, buf[:size]...)
	}
	return out, true
}
