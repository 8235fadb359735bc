package operator

import "github.com/langforge/corelang/typesys"

// Resolution is the outcome of overload resolution for one operator
// application against a pair of operand types.
type Resolution struct {
	Match      *typesys.Method // nil if no unambiguous match was found
	Ambiguous  bool
	Candidates []*typesys.Method // all candidates considered in the pass that produced Match/Ambiguous
}

// ResolveOverload implements spec.md §4.4 "Overload resolution":
//
//  1. Collect public static methods named op.OverloadName() from both
//     operand types (union, no duplicates).
//  2. First pass: exact match by (leftParam, rightParam) == (lhs, rhs).
//  3. Second pass, only if no exact match: implicit-convertible match.
//  4. Multiple matches in either pass is Ambiguous.
func ResolveOverload(op *Operator, lhs, rhs *typesys.TypeRef) Resolution {
	if !op.IsOverloadable() || lhs == nil || rhs == nil {
		return Resolution{}
	}
	candidates := unionMethods(lhs.MethodsNamed(op.OverloadName()), rhs.MethodsNamed(op.OverloadName()))

	var exact []*typesys.Method
	for _, m := range candidates {
		if len(m.Params) == 2 && m.Params[0] == lhs && m.Params[1] == rhs {
			exact = append(exact, m)
		}
	}
	if len(exact) == 1 {
		return Resolution{Match: exact[0], Candidates: exact}
	}
	if len(exact) > 1 {
		return Resolution{Ambiguous: true, Candidates: exact}
	}

	var implicit []*typesys.Method
	for _, m := range candidates {
		if len(m.Params) != 2 {
			continue
		}
		if typesys.HasImplicitConversion(lhs, m.Params[0]) && typesys.HasImplicitConversion(rhs, m.Params[1]) {
			implicit = append(implicit, m)
		}
	}
	if len(implicit) == 1 {
		return Resolution{Match: implicit[0], Candidates: implicit}
	}
	if len(implicit) > 1 {
		return Resolution{Ambiguous: true, Candidates: implicit}
	}
	return Resolution{}
}

func unionMethods(a, b []*typesys.Method) []*typesys.Method {
	seen := make(map[*typesys.Method]bool, len(a)+len(b))
	out := make([]*typesys.Method, 0, len(a)+len(b))
	for _, m := range a {
		if m.Static && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	for _, m := range b {
		if m.Static && !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
