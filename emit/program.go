package emit

import (
	"fmt"
	"strings"

	"github.com/langforge/corelang/typesys"
)

// Op identifies one recorded instruction kind. The set mirrors the
// Builder surface one-to-one: Program is a faithful transcript of what
// the emitter asked for, not a lowered encoding.
type Op int

const (
	OpPushBool Op = iota
	OpPushInt32
	OpPushInt64
	OpPushFloat32
	OpPushFloat64
	OpPushString
	OpPushNull
	OpPushTypeToken

	OpLoadLocal
	OpLoadLocalAddr
	OpStoreLocal

	OpLoadArg
	OpLoadArgAddr
	OpStoreArg

	OpLoadField
	OpLoadFieldAddr
	OpStoreField

	OpLoadIndirect
	OpStoreIndirect

	OpNewArray
	OpLoadElement
	OpLoadElementAddr
	OpStoreElement

	OpDup
	OpPop
	OpReturn

	OpLabel
	OpBranch
	OpBranchIfFalse

	OpNewObject
	OpCall
	OpCallVirtual
	OpCallConstrained
	OpCallIndirect
	OpBox
	OpUnbox
	OpCastClass
	OpInitObject
	OpAttachAttribute

	OpBeginTry
	OpBeginFinally
	OpBeginCatch
	OpEndHandler

	OpConvert

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpBitAnd
	OpBitOr
	OpBitXor
)

var opNames = [...]string{
	OpPushBool:        "push.bool",
	OpPushInt32:       "push.i4",
	OpPushInt64:       "push.i8",
	OpPushFloat32:     "push.r4",
	OpPushFloat64:     "push.r8",
	OpPushString:      "push.str",
	OpPushNull:        "push.null",
	OpPushTypeToken:   "ldtoken",
	OpLoadLocal:       "ldloc",
	OpLoadLocalAddr:   "ldloca",
	OpStoreLocal:      "stloc",
	OpLoadArg:         "ldarg",
	OpLoadArgAddr:     "ldarga",
	OpStoreArg:        "starg",
	OpLoadField:       "ldfld",
	OpLoadFieldAddr:   "ldflda",
	OpStoreField:      "stfld",
	OpLoadIndirect:    "ldind",
	OpStoreIndirect:   "stind",
	OpNewArray:        "newarr",
	OpLoadElement:     "ldelem",
	OpLoadElementAddr: "ldelema",
	OpStoreElement:    "stelem",
	OpDup:             "dup",
	OpPop:             "pop",
	OpReturn:          "ret",
	OpLabel:           "label",
	OpBranch:          "br",
	OpBranchIfFalse:   "brfalse",
	OpNewObject:       "newobj",
	OpCall:            "call",
	OpCallVirtual:     "callvirt",
	OpCallConstrained: "call.constrained",
	OpCallIndirect:    "calli",
	OpBox:             "box",
	OpUnbox:           "unbox",
	OpCastClass:       "castclass",
	OpInitObject:      "initobj",
	OpAttachAttribute: "attr",
	OpBeginTry:        "try.begin",
	OpBeginFinally:    "finally.begin",
	OpBeginCatch:      "catch.begin",
	OpEndHandler:      "handler.end",
	OpConvert:         "conv",
	OpAdd:             "add",
	OpSubtract:        "sub",
	OpMultiply:        "mul",
	OpDivide:          "div",
	OpRemainder:       "rem",
	OpBitAnd:          "and",
	OpBitOr:           "or",
	OpBitXor:          "xor",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Instr is one recorded instruction. Operand fields are populated per
// opcode; unused fields stay zero. Keeping operands structured (rather
// than pooled indices the way a packed bytecode would) makes Program a
// transcript a test or a later lowering pass can inspect directly.
type Instr struct {
	Op     Op
	I      int64
	F      float64
	S      string
	B      bool
	Type   *typesys.TypeRef
	Field  *typesys.Field
	Method *typesys.Method
	Code   typesys.Code
	Label  Label

	// Conversion flags (OpConvert only).
	Checked  bool
	Unsigned bool
}

// Program records Builder calls for one method body. It is the
// reference backend: an interpreter executes it directly, tests
// disassemble it, and a lowering pass can translate it to a packed
// encoding.
type Program struct {
	Name       string
	Code       []Instr
	LocalNames []string
	LocalTypes []*typesys.TypeRef

	nextLabel Label
}

// NewProgram creates an empty recording for the named method.
func NewProgram(name string) *Program {
	return &Program{Name: name}
}

func (p *Program) write(i Instr) { p.Code = append(p.Code, i) }

func (p *Program) PushBool(v bool)       { p.write(Instr{Op: OpPushBool, B: v}) }
func (p *Program) PushInt32(v int32)     { p.write(Instr{Op: OpPushInt32, I: int64(v)}) }
func (p *Program) PushInt64(v int64)     { p.write(Instr{Op: OpPushInt64, I: v}) }
func (p *Program) PushFloat32(v float32) { p.write(Instr{Op: OpPushFloat32, F: float64(v)}) }
func (p *Program) PushFloat64(v float64) { p.write(Instr{Op: OpPushFloat64, F: v}) }
func (p *Program) PushString(v string)   { p.write(Instr{Op: OpPushString, S: v}) }
func (p *Program) PushNull()             { p.write(Instr{Op: OpPushNull}) }
func (p *Program) PushTypeToken(t *typesys.TypeRef) {
	p.write(Instr{Op: OpPushTypeToken, Type: t})
}

func (p *Program) DeclareLocal(t *typesys.TypeRef, name string) int {
	p.LocalNames = append(p.LocalNames, name)
	p.LocalTypes = append(p.LocalTypes, t)
	return len(p.LocalNames) - 1
}

func (p *Program) LoadLocal(slot int)     { p.write(Instr{Op: OpLoadLocal, I: int64(slot)}) }
func (p *Program) LoadLocalAddr(slot int) { p.write(Instr{Op: OpLoadLocalAddr, I: int64(slot)}) }
func (p *Program) StoreLocal(slot int)    { p.write(Instr{Op: OpStoreLocal, I: int64(slot)}) }

func (p *Program) LoadArg(index int)     { p.write(Instr{Op: OpLoadArg, I: int64(index)}) }
func (p *Program) LoadArgAddr(index int) { p.write(Instr{Op: OpLoadArgAddr, I: int64(index)}) }
func (p *Program) StoreArg(index int)    { p.write(Instr{Op: OpStoreArg, I: int64(index)}) }

func (p *Program) LoadField(f *typesys.Field)     { p.write(Instr{Op: OpLoadField, Field: f}) }
func (p *Program) LoadFieldAddr(f *typesys.Field) { p.write(Instr{Op: OpLoadFieldAddr, Field: f}) }
func (p *Program) StoreField(f *typesys.Field)    { p.write(Instr{Op: OpStoreField, Field: f}) }

func (p *Program) LoadIndirect(code typesys.Code)  { p.write(Instr{Op: OpLoadIndirect, Code: code}) }
func (p *Program) StoreIndirect(code typesys.Code) { p.write(Instr{Op: OpStoreIndirect, Code: code}) }

func (p *Program) NewArray(elem *typesys.TypeRef) { p.write(Instr{Op: OpNewArray, Type: elem}) }
func (p *Program) LoadElement(code typesys.Code)  { p.write(Instr{Op: OpLoadElement, Code: code}) }
func (p *Program) LoadElementAddr(elem *typesys.TypeRef) {
	p.write(Instr{Op: OpLoadElementAddr, Type: elem})
}
func (p *Program) StoreElement(code typesys.Code) { p.write(Instr{Op: OpStoreElement, Code: code}) }

func (p *Program) Dup()    { p.write(Instr{Op: OpDup}) }
func (p *Program) Pop()    { p.write(Instr{Op: OpPop}) }
func (p *Program) Return() { p.write(Instr{Op: OpReturn}) }

func (p *Program) NewLabel() Label {
	l := p.nextLabel
	p.nextLabel++
	return l
}

func (p *Program) MarkLabel(l Label)     { p.write(Instr{Op: OpLabel, Label: l}) }
func (p *Program) Branch(l Label)        { p.write(Instr{Op: OpBranch, Label: l}) }
func (p *Program) BranchIfFalse(l Label) { p.write(Instr{Op: OpBranchIfFalse, Label: l}) }

func (p *Program) NewObject(t *typesys.TypeRef, ctor *typesys.Constructor) {
	p.write(Instr{Op: OpNewObject, Type: t})
}

func (p *Program) Call(m *typesys.Method)        { p.write(Instr{Op: OpCall, Method: m}) }
func (p *Program) CallVirtual(m *typesys.Method) { p.write(Instr{Op: OpCallVirtual, Method: m}) }
func (p *Program) CallConstrained(t *typesys.TypeRef, m *typesys.Method) {
	p.write(Instr{Op: OpCallConstrained, Type: t, Method: m})
}
func (p *Program) CallIndirect(params []*typesys.TypeRef, ret *typesys.TypeRef) {
	p.write(Instr{Op: OpCallIndirect, Type: ret, I: int64(len(params))})
}

func (p *Program) Box(t *typesys.TypeRef)             { p.write(Instr{Op: OpBox, Type: t}) }
func (p *Program) Unbox(t *typesys.TypeRef)           { p.write(Instr{Op: OpUnbox, Type: t}) }
func (p *Program) CastClass(t *typesys.TypeRef)       { p.write(Instr{Op: OpCastClass, Type: t}) }
func (p *Program) InitObject(t *typesys.TypeRef)      { p.write(Instr{Op: OpInitObject, Type: t}) }
func (p *Program) AttachAttribute(t *typesys.TypeRef) { p.write(Instr{Op: OpAttachAttribute, Type: t}) }

func (p *Program) BeginTry()     { p.write(Instr{Op: OpBeginTry}) }
func (p *Program) BeginFinally() { p.write(Instr{Op: OpBeginFinally}) }
func (p *Program) BeginCatch(t *typesys.TypeRef) {
	p.write(Instr{Op: OpBeginCatch, Type: t})
}
func (p *Program) EndHandler() { p.write(Instr{Op: OpEndHandler}) }

func (p *Program) Convert(dst typesys.Code, checked, unsignedSource bool) {
	p.write(Instr{Op: OpConvert, Code: dst, Checked: checked, Unsigned: unsignedSource})
}

func (p *Program) Add(checked, unsigned bool) {
	p.write(Instr{Op: OpAdd, Checked: checked, Unsigned: unsigned})
}
func (p *Program) Subtract(checked, unsigned bool) {
	p.write(Instr{Op: OpSubtract, Checked: checked, Unsigned: unsigned})
}
func (p *Program) Multiply(checked, unsigned bool) {
	p.write(Instr{Op: OpMultiply, Checked: checked, Unsigned: unsigned})
}
func (p *Program) Divide(unsigned bool)    { p.write(Instr{Op: OpDivide, Unsigned: unsigned}) }
func (p *Program) Remainder(unsigned bool) { p.write(Instr{Op: OpRemainder, Unsigned: unsigned}) }
func (p *Program) BitAnd()                 { p.write(Instr{Op: OpBitAnd}) }
func (p *Program) BitOr()                  { p.write(Instr{Op: OpBitOr}) }
func (p *Program) BitXor()                 { p.write(Instr{Op: OpBitXor}) }

// String renders one instruction in a stable, diffable form.
func (i Instr) String() string {
	switch i.Op {
	case OpPushBool:
		return fmt.Sprintf("%s %t", i.Op, i.B)
	case OpPushInt32, OpPushInt64, OpLoadLocal, OpLoadLocalAddr, OpStoreLocal,
		OpLoadArg, OpLoadArgAddr, OpStoreArg:
		return fmt.Sprintf("%s %d", i.Op, i.I)
	case OpPushFloat32, OpPushFloat64:
		return fmt.Sprintf("%s %g", i.Op, i.F)
	case OpPushString:
		return fmt.Sprintf("%s %q", i.Op, i.S)
	case OpPushTypeToken, OpNewArray, OpLoadElementAddr, OpNewObject, OpBox, OpUnbox,
		OpCastClass, OpInitObject, OpAttachAttribute, OpBeginCatch:
		return fmt.Sprintf("%s %s", i.Op, i.Type)
	case OpLoadField, OpLoadFieldAddr, OpStoreField:
		return fmt.Sprintf("%s %s", i.Op, i.Field.Name)
	case OpLoadIndirect, OpStoreIndirect, OpLoadElement, OpStoreElement:
		return fmt.Sprintf("%s.%s", i.Op, strings.ToLower(i.Code.String()))
	case OpLabel:
		return fmt.Sprintf("L%d:", i.Label)
	case OpBranch, OpBranchIfFalse:
		return fmt.Sprintf("%s L%d", i.Op, i.Label)
	case OpCall, OpCallVirtual:
		return fmt.Sprintf("%s %s", i.Op, i.Method.Name)
	case OpCallConstrained:
		return fmt.Sprintf("%s %s::%s", i.Op, i.Type, i.Method.Name)
	case OpCallIndirect:
		return fmt.Sprintf("%s argc=%d", i.Op, i.I)
	case OpConvert:
		name := "conv"
		if i.Checked {
			name = "conv.ovf"
		}
		name += "." + convSuffix(i.Code)
		if i.Unsigned {
			name += ".un"
		}
		return name
	case OpAdd, OpSubtract, OpMultiply:
		name := i.Op.String()
		if i.Checked {
			name += ".ovf"
		}
		if i.Unsigned {
			name += ".un"
		}
		return name
	case OpDivide, OpRemainder:
		name := i.Op.String()
		if i.Unsigned {
			name += ".un"
		}
		return name
	default:
		return i.Op.String()
	}
}

// convSuffix maps a destination type code to the §6.1 conversion-matrix
// mnemonic (i1..i8, u1..u8, r4, r8).
func convSuffix(c typesys.Code) string {
	switch c {
	case typesys.CodeSByte:
		return "i1"
	case typesys.CodeByte:
		return "u1"
	case typesys.CodeShort:
		return "i2"
	case typesys.CodeUShort, typesys.CodeChar:
		return "u2"
	case typesys.CodeInt:
		return "i4"
	case typesys.CodeUInt:
		return "u4"
	case typesys.CodeLong:
		return "i8"
	case typesys.CodeULong:
		return "u8"
	case typesys.CodeSingle:
		return "r4"
	case typesys.CodeDouble:
		return "r8"
	default:
		return strings.ToLower(c.String())
	}
}

// Disassemble renders the whole recording, one instruction per line,
// suitable for golden/snapshot assertions.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", p.Name)
	for idx, local := range p.LocalNames {
		fmt.Fprintf(&sb, ".local %d %s %s\n", idx, p.LocalTypes[idx], local)
	}
	for _, instr := range p.Code {
		if instr.Op == OpLabel {
			fmt.Fprintf(&sb, "%s\n", instr)
			continue
		}
		fmt.Fprintf(&sb, "  %s\n", instr)
	}
	return sb.String()
}
