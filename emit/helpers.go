package emit

import "github.com/langforge/corelang/typesys"

// Runtime helper surface. The emitter reaches for these when static
// reasoning runs out: generic conversion, the operator Evaluate
// fallback, IEEE float remainder, binding defined-ness checks, and
// array blob initialization (spec.md §4.1, §4.4, §4.5). They are
// modeled as methods on synthetic TypeRefs so a backend can bind them
// to whatever runtime library it links against; the core only fixes
// names and signatures.
var (
	// OpsType hosts the static conversion/arithmetic helpers.
	OpsType = typesys.New("Ops", typesys.ReferenceKind, typesys.CodeOther)

	// BindingType is the TypeRef view of binding.Binding: the shared
	// cell a TopLevel slot reads and writes through.
	BindingType = typesys.New("Binding", typesys.ReferenceKind, typesys.CodeOther)

	// OperatorType is the TypeRef view of an operator singleton; its
	// Evaluate method is the runtime fallback target (spec.md §4.4).
	OperatorType = typesys.New("Operator", typesys.ReferenceKind, typesys.CodeOther)

	// RuntimeHelpersType carries InitializeArray for packed array
	// literals (spec.md §4.5 "emit_array").
	RuntimeHelpersType = typesys.New("RuntimeHelpers", typesys.ReferenceKind, typesys.CodeOther)

	// EnvType is the interpreter frame an InterpretedLocal slot reads
	// and writes through when code is emitted against interpreted
	// execution (spec.md §3.4).
	EnvType = typesys.New("Env", typesys.ReferenceKind, typesys.CodeOther)

	// TypeTokenType is the reflected-type value pushed by ldtoken.
	TypeTokenType = typesys.New("Type", typesys.ReferenceKind, typesys.CodeOther)

	// FunctionType is the runtime function-object type a Function node
	// produces when emitted as a value.
	FunctionType = typesys.New("Function", typesys.ReferenceKind, typesys.CodeOther)
)

var (
	// ConvertToMethod is Ops.convert_to(value, Type): the
	// emit_runtime_conversion fallback (spec.md §4.1).
	ConvertToMethod = &typesys.Method{
		Name:   "ConvertTo",
		Params: []*typesys.TypeRef{typesys.Object, TypeTokenType},
		Return: typesys.Object,
		Static: true,
	}

	// FloatModMethod is the runtime helper floating-point Mod delegates
	// to, because IEEE remainder semantics are wanted (spec.md §4.4).
	FloatModMethod = &typesys.Method{
		Name:   "FloatMod",
		Params: []*typesys.TypeRef{typesys.Double, typesys.Double},
		Return: typesys.Double,
		Static: true,
	}

	// EvaluateMethod is Operator.Evaluate(object, object, Options),
	// invoked virtually on the pushed operator singleton.
	EvaluateMethod = &typesys.Method{
		Name:   "Evaluate",
		Params: []*typesys.TypeRef{typesys.Object, typesys.Object, typesys.Int},
		Return: typesys.Object,
	}

	// TruthEvaluateMethod is LogicalTruth.Evaluate(object): null and
	// false are false, everything else is true.
	TruthEvaluateMethod = &typesys.Method{
		Name:   "TruthEvaluate",
		Params: []*typesys.TypeRef{typesys.Object},
		Return: typesys.Bool,
		Static: true,
	}

	// BindingValueField is the slot a TopLevel read/write goes through.
	BindingValueField = &typesys.Field{Name: "Value", Type: typesys.Object}

	// CheckBindingMethod verifies a binding is defined before use; the
	// TopLevel slot calls it in debug/non-optimized builds and before
	// any non-initializing write (spec.md §4.5).
	CheckBindingMethod = &typesys.Method{
		Name:   "CheckBinding",
		Params: []*typesys.TypeRef{BindingType},
		Static: true,
	}

	// InitializeArrayMethod copies an InitializedData blob into a
	// freshly allocated array.
	InitializeArrayMethod = &typesys.Method{
		Name:   "InitializeArray",
		Params: []*typesys.TypeRef{typesys.Object, typesys.Object},
		Static: true,
	}

	// EnvLookupMethod / EnvStoreMethod are the interpreter-frame
	// accessors an InterpretedLocal slot emits against.
	EnvLookupMethod = &typesys.Method{
		Name:   "EnvLookup",
		Params: []*typesys.TypeRef{typesys.String},
		Return: typesys.Object,
		Static: true,
	}
	EnvStoreMethod = &typesys.Method{
		Name:   "EnvStore",
		Params: []*typesys.TypeRef{typesys.String, typesys.Object},
		Static: true,
	}
)

func init() {
	OpsType.AddMethod(ConvertToMethod)
	OpsType.AddMethod(FloatModMethod)
	OpsType.AddMethod(TruthEvaluateMethod)
	OperatorType.AddMethod(EvaluateMethod)
	BindingType.AddField(BindingValueField)
	OpsType.AddMethod(CheckBindingMethod)
	RuntimeHelpersType.AddMethod(InitializeArrayMethod)
	EnvType.AddMethod(EnvLookupMethod)
	EnvType.AddMethod(EnvStoreMethod)
}
