package types

import "fmt"

// Context owns the intern pools for every semantic Type used within one
// compilation. It is mutable only through its factory methods; because
// passes run strictly sequentially (specification §5), concurrent-safe
// interning is unnecessary.
type Context struct {
	builtins      map[Kind]*Type
	boundedString map[int]*Type
	staticArray   map[staticArrayKey]*Type
	dynamicArray  map[*Type]*Type
	nullable      map[*Type]*Type
	extern        map[string]*Type

	unknown     *Type
	errorType   *Type
	literalInt  *Type
	literalFlt  *Type
	literalNull *Type
}

type staticArrayKey struct {
	elem *Type
	kind ArrayKind
	n    int
}

// NewContext builds a Context with every primitive and placeholder type
// pre-interned.
func NewContext() *Context {
	c := &Context{
		builtins:      make(map[Kind]*Type),
		boundedString: make(map[int]*Type),
		staticArray:   make(map[staticArrayKey]*Type),
		dynamicArray:  make(map[*Type]*Type),
		nullable:      make(map[*Type]*Type),
		extern:        make(map[string]*Type),
	}
	for _, k := range []Kind{
		KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64, KindBool, KindString,
	} {
		c.builtins[k] = &Type{kind: k}
	}
	c.unknown = &Type{kind: KindUnknown}
	c.errorType = &Type{kind: KindError}
	c.literalInt = &Type{kind: KindLiteralInt}
	c.literalFlt = &Type{kind: KindLiteralFloat}
	c.literalNull = &Type{kind: KindLiteralNull}
	return c
}

// Builtin returns the interned type for a primitive kind. It panics if kind
// is not a primitive registered at construction time; callers only ever
// pass compile-time constants, so this is a programmer error, not a user one.
func (c *Context) Builtin(kind Kind) *Type {
	t, ok := c.builtins[kind]
	if !ok {
		panic(fmt.Sprintf("types: %v is not a builtin kind", kind))
	}
	return t
}

// LookupBuiltinByName resolves a builtin type's canonical spelling
// ("int32", "bool", "string", ...) to its interned Type. The second return
// value is false for any non-builtin name, including "_" and extern names.
func (c *Context) LookupBuiltinByName(name string) (*Type, bool) {
	switch name {
	case "int8":
		return c.Builtin(KindInt8), true
	case "int16":
		return c.Builtin(KindInt16), true
	case "int32":
		return c.Builtin(KindInt32), true
	case "int64":
		return c.Builtin(KindInt64), true
	case "uint8":
		return c.Builtin(KindUint8), true
	case "uint16":
		return c.Builtin(KindUint16), true
	case "uint32":
		return c.Builtin(KindUint32), true
	case "uint64":
		return c.Builtin(KindUint64), true
	case "float32":
		return c.Builtin(KindFloat32), true
	case "float64":
		return c.Builtin(KindFloat64), true
	case "bool":
		return c.Builtin(KindBool), true
	case "string":
		return c.Builtin(KindString), true
	default:
		return nil, false
	}
}

// Unknown returns the pre-inference placeholder type.
func (c *Context) Unknown() *Type { return c.unknown }

// Error returns the post-error-recovery placeholder type.
func (c *Context) Error() *Type { return c.errorType }

// LiteralInt returns the {integer} placeholder literal type.
func (c *Context) LiteralInt() *Type { return c.literalInt }

// LiteralFloat returns the {float} placeholder literal type.
func (c *Context) LiteralFloat() *Type { return c.literalFlt }

// LiteralNull returns the {null} placeholder literal type.
func (c *Context) LiteralNull() *Type { return c.literalNull }

// BoundedString interns bounded_string(n).
func (c *Context) BoundedString(n int) *Type {
	if t, ok := c.boundedString[n]; ok {
		return t
	}
	t := &Type{kind: KindBoundedString, strLen: n}
	c.boundedString[n] = t
	return t
}

// StaticArray interns a static_array(elem, kind, n).
func (c *Context) StaticArray(elem *Type, kind ArrayKind, n int) *Type {
	key := staticArrayKey{elem: elem, kind: kind, n: n}
	if t, ok := c.staticArray[key]; ok {
		return t
	}
	t := &Type{kind: KindStaticArray, elem: elem, arrayKind: kind, arrayLen: n}
	c.staticArray[key] = t
	return t
}

// DynamicArray interns vec<elem>.
func (c *Context) DynamicArray(elem *Type) *Type {
	if t, ok := c.dynamicArray[elem]; ok {
		return t
	}
	t := &Type{kind: KindDynamicArray, elem: elem}
	c.dynamicArray[elem] = t
	return t
}

// Nullable interns nullable(base). Nullable(Nullable(T)) collapses to
// Nullable(T): the surface language has no nested-nullable spelling.
func (c *Context) Nullable(base *Type) *Type {
	if base.kind == KindNullable {
		return base
	}
	if t, ok := c.nullable[base]; ok {
		return t
	}
	t := &Type{kind: KindNullable, base: base}
	c.nullable[base] = t
	return t
}

// Extern interns extern(name).
func (c *Context) Extern(name string) *Type {
	if t, ok := c.extern[name]; ok {
		return t
	}
	t := &Type{kind: KindExtern, externName: name}
	c.extern[name] = t
	return t
}

// --- predicate helpers ---

func IsNumeric(t *Type) bool { return IsInteger(t) || IsFloat(t) }

func IsInteger(t *Type) bool {
	switch t.Kind() {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindLiteralInt:
		return true
	default:
		return false
	}
}

func IsSignedInteger(t *Type) bool {
	switch t.Kind() {
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	default:
		return false
	}
}

func IsFloat(t *Type) bool {
	return t.Kind() == KindFloat32 || t.Kind() == KindFloat64 || t.Kind() == KindLiteralFloat
}

func IsNullable(t *Type) bool { return t.Kind() == KindNullable }

func IsArray(t *Type) bool {
	return t.Kind() == KindStaticArray || t.Kind() == KindDynamicArray
}

func IsExtern(t *Type) bool { return t.Kind() == KindExtern }

func IsError(t *Type) bool { return t.Kind() == KindError }

func IsPlaceholder(t *Type) bool {
	switch t.Kind() {
	case KindLiteralInt, KindLiteralFloat, KindLiteralNull:
		return true
	default:
		return false
	}
}

func IsString(t *Type) bool {
	return t.Kind() == KindString || t.Kind() == KindBoundedString
}

// Underlying strips one level of nullable, returning t unchanged if it
// isn't nullable.
func Underlying(t *Type) *Type {
	if t.Kind() == KindNullable {
		return t.base
	}
	return t
}

// IntRange returns the inclusive [min, max] range representable by an
// integer kind, as int64/uint64 reinterpreted into int64 bit patterns for
// uint64's max (callers compare with the matching signedness).
func IntRange(k Kind) (min, max int64) {
	switch k {
	case KindInt8:
		return -1 << 7, 1<<7 - 1
	case KindInt16:
		return -1 << 15, 1<<15 - 1
	case KindInt32:
		return -1 << 31, 1<<31 - 1
	case KindInt64:
		return -1 << 63, 1<<63 - 1
	case KindUint8:
		return 0, 1<<8 - 1
	case KindUint16:
		return 0, 1<<16 - 1
	case KindUint32:
		return 0, 1<<32 - 1
	case KindUint64:
		return 0, 1<<63 - 1 // representable window in int64; unsigned overflow checked separately
	default:
		return 0, 0
	}
}
