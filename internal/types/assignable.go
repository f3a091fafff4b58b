package types

// AssignableTo implements the assignability rule of the specification,
// used for port/parameter binding and assignment RHS checks. It is not
// symmetric: AssignableTo(from, to) asks "can a value of type from be
// stored where a to is expected".
func AssignableTo(from, to *Type) bool {
	if from == nil || to == nil {
		return false
	}
	if IsError(from) || IsError(to) {
		return true
	}
	if from.Kind() == KindUnknown || to.Kind() == KindUnknown {
		return true
	}
	if from == to {
		return true
	}

	switch from.Kind() {
	case KindLiteralInt:
		return IsInteger(to) || IsFloat(to)
	case KindLiteralFloat:
		return IsFloat(to)
	case KindLiteralNull:
		return IsNullable(to)
	}

	if to.Kind() == KindNullable {
		if from.Kind() == KindNullable {
			return AssignableTo(from.Base(), to.Base())
		}
		return AssignableTo(from, to.Base())
	}
	if from.Kind() == KindNullable {
		// A nullable is never assignable to a non-nullable target.
		return false
	}

	if from.Kind() == KindStaticArray && to.Kind() == KindStaticArray {
		if from.ArrayKind() != to.ArrayKind() || from.ArrayLen() != to.ArrayLen() {
			return false
		}
		return AssignableTo(from.Elem(), to.Elem())
	}
	if from.Kind() == KindDynamicArray && to.Kind() == KindDynamicArray {
		return AssignableTo(from.Elem(), to.Elem())
	}

	if from.Kind() == KindBoundedString && to.Kind() == KindString {
		return true
	}
	if from.Kind() == KindString && to.Kind() == KindBoundedString {
		// Length must be validated at the value level (literal length or
		// runtime bound); the type-level rule alone is permissive here and
		// the checker additionally verifies literal lengths (§4.5).
		return true
	}
	if from.Kind() == KindBoundedString && to.Kind() == KindBoundedString {
		return from.BoundedStringLen() <= to.BoundedStringLen()
	}

	return false
}

// CommonNumericType returns the common type two numeric operands unify to
// for a binary arithmetic operator, or nil if they cannot be unified
// without an explicit cast (mixing integer and float is always illegal
// without `as`, per §4.5, except when one side is a placeholder literal).
func CommonNumericType(ctx *Context, a, b *Type) *Type {
	if a.Kind() == KindLiteralInt && b.Kind() == KindLiteralInt {
		return ctx.LiteralInt()
	}
	if (a.Kind() == KindLiteralFloat || a.Kind() == KindLiteralInt) &&
		(b.Kind() == KindLiteralFloat || b.Kind() == KindLiteralInt) &&
		(a.Kind() == KindLiteralFloat || b.Kind() == KindLiteralFloat) {
		return ctx.LiteralFloat()
	}
	if IsPlaceholder(a) && !IsPlaceholder(b) {
		if AssignableTo(a, b) {
			return b
		}
		return nil
	}
	if IsPlaceholder(b) && !IsPlaceholder(a) {
		if AssignableTo(b, a) {
			return a
		}
		return nil
	}
	if a == b {
		return a
	}
	return nil
}
