// Package types owns the interned semantic type pool for BT-DSL: the
// tagged-variant Type representation, the builtin registry, and the
// nullable/array/bounded-string factories (component 2 of the middle-end).
//
// Types are interned: two structurally equal types always yield the same
// *Type pointer, so every later pass can compare types with ==.
package types

import "fmt"

// Kind discriminates the tagged variant.
type Kind int

const (
	KindInt8 Kind = iota
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindBoundedString
	KindStaticArray
	KindDynamicArray
	KindNullable
	KindExtern
	KindLiteralInt
	KindLiteralFloat
	KindLiteralNull
	KindUnknown
	KindError
)

// ArrayKind distinguishes a fixed-size array from a max-capacity array.
type ArrayKind int

const (
	Exact ArrayKind = iota
	Max
)

// Type is a tagged variant semantic type. Instances are only ever created
// through a Context's factory methods, which guarantee interning.
type Type struct {
	kind Kind

	// KindBoundedString
	strLen int

	// KindStaticArray / KindDynamicArray
	elem      *Type
	arrayKind ArrayKind
	arrayLen  int

	// KindNullable
	base *Type

	// KindExtern
	externName string
}

// Kind returns the type's tag.
func (t *Type) Kind() Kind { return t.kind }

// Elem returns the element type of an array type, or nil.
func (t *Type) Elem() *Type { return t.elem }

// ArrayKind returns Exact/Max for a static array type.
func (t *Type) ArrayKind() ArrayKind { return t.arrayKind }

// ArrayLen returns the declared length of a static array type.
func (t *Type) ArrayLen() int { return t.arrayLen }

// Base returns the wrapped type of a nullable type.
func (t *Type) Base() *Type { return t.base }

// BoundedStringLen returns N for a bounded_string(N) type.
func (t *Type) BoundedStringLen() int { return t.strLen }

// ExternName returns the declared name of an extern(name) type.
func (t *Type) ExternName() string { return t.externName }

// String renders the type using its surface-syntax spelling, the same
// spelling the XML generator uses in TreeNodesModel port types.
func (t *Type) String() string {
	switch t.kind {
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindBoundedString:
		return fmt.Sprintf("string<%d>", t.strLen)
	case KindStaticArray:
		if t.arrayKind == Max {
			return fmt.Sprintf("%s[max %d]", t.elem.String(), t.arrayLen)
		}
		return fmt.Sprintf("%s[%d]", t.elem.String(), t.arrayLen)
	case KindDynamicArray:
		return fmt.Sprintf("vec<%s>", t.elem.String())
	case KindNullable:
		return t.base.String() + "?"
	case KindExtern:
		return t.externName
	case KindLiteralInt:
		return "{integer}"
	case KindLiteralFloat:
		return "{float}"
	case KindLiteralNull:
		return "{null}"
	case KindUnknown:
		return "<unknown>"
	case KindError:
		return "<error>"
	default:
		return "<invalid type>"
	}
}
