package types

// Value is a compile-time constant: an evaluated type paired with its
// payload. It is the stored result of the constant evaluator (component 6),
// kept in the sema.Info side table rather than mutating the AST directly
// (see DESIGN.md for why).
type Value struct {
	Type *Type

	// Exactly one of the following is meaningful, selected by Type.Kind():
	// integers (signed and unsigned) live in Int/Uint, floats in Float,
	// strings in Str, bools in Bool, arrays in Elems. A {null} value has no
	// payload.
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Bool  bool
	Elems []*Value
}

// IsErrorValue reports whether v represents a value that failed to evaluate.
// The const evaluator represents evaluation failure by storing a Value
// whose Type is the Context's Error type; a nil *Value also counts, for
// call sites that haven't looked one up yet.
func (v *Value) IsErrorValue() bool {
	return v == nil || v.Type == nil || IsError(v.Type)
}

// AsInt64 returns the value's integer payload, reinterpreting an unsigned
// payload's bit pattern when Type is one of the unsigned kinds. Callers
// must check IsInteger(v.Type) first.
func (v *Value) AsInt64() int64 {
	if IsSignedInteger(v.Type) || v.Type.Kind() == KindLiteralInt {
		return v.Int
	}
	return int64(v.Uint)
}
