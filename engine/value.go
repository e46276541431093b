package engine

import (
	"unicode/utf8"

	"github.com/wippyai/engine-bridge/errors"
)

// Kind discriminates the engine value model.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindObject
	KindArray
	KindFunction
	KindError
	KindBuffer
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindFunction:
		return "function"
	case KindError:
		return "error"
	case KindBuffer:
		return "buffer"
	}
	return "unknown"
}

// ErrorKind discriminates native error subtypes.
type ErrorKind uint8

const (
	ErrPlain ErrorKind = iota
	ErrType
	ErrRange
)

// record is one engine heap value. Identity is pointer identity: two
// transient handles are "the same" only if they share a record.
type record struct {
	kind Kind

	b   bool
	num float64
	str string
	buf []byte

	props map[string]*record
	elems []*record

	proto    *record
	kernel   Kernel
	template *FunctionTemplate
	fnName   string

	errKind ErrorKind

	// reserved internal slot, set at most once
	internal    any
	internalSet bool
}

// Value is a transient handle: a borrowed reference valid only within the
// lifetime region it was created in. The zero Value is empty.
type Value struct {
	rec    *record
	region *Region
}

// Valid reports whether the handle refers to a value and its region is
// still open.
func (v Value) Valid() bool {
	return v.rec != nil && v.region != nil && v.region.open
}

// Region returns the lifetime region the handle is homed in.
func (v Value) Region() *Region {
	return v.region
}

// Kind returns the value's kind; empty handles report undefined.
func (v Value) Kind() Kind {
	if v.rec == nil {
		return KindUndefined
	}
	return v.rec.kind
}

// SameHandle reports whether two transient handles refer to the identical
// underlying value instance. This is identity, not structural equality.
func SameHandle(a, b Value) bool {
	return a.rec != nil && a.rec == b.rec
}

func (r *Region) use() {
	if debug && !r.open {
		panic("engine: handle created in a closed region")
	}
}

// Undefined returns the engine's interned undefined value.
func (r *Region) Undefined() Value {
	r.use()
	return Value{rec: r.inst.undefinedRec, region: r}
}

// Null returns the engine's interned null value.
func (r *Region) Null() Value {
	r.use()
	return Value{rec: r.inst.nullRec, region: r}
}

// Boolean returns the engine's interned true or false value.
func (r *Region) Boolean(b bool) Value {
	r.use()
	if b {
		return Value{rec: r.inst.trueRec, region: r}
	}
	return Value{rec: r.inst.falseRec, region: r}
}

// Number creates a number value.
func (r *Region) Number(f float64) Value {
	r.use()
	return Value{rec: &record{kind: KindNumber, num: f}, region: r}
}

// String creates a string value from UTF-8 text.
func (r *Region) String(s string) (Value, error) {
	return r.StringBytes([]byte(s))
}

// StringBytes creates a string value from a length-delimited byte buffer.
// No embedded NUL assumption is made; invalid UTF-8 is a conversion failure.
func (r *Region) StringBytes(b []byte) (Value, error) {
	r.use()
	if !utf8.Valid(b) {
		return Value{}, errors.InvalidUTF8(errors.PhaseConvert, b)
	}
	return Value{rec: &record{kind: KindString, str: string(b)}, region: r}, nil
}

// Object creates an empty object.
func (r *Region) Object() Value {
	r.use()
	return Value{rec: newObjectRecord(nil), region: r}
}

// Array creates an array of the given length, filled with undefined.
func (r *Region) Array(length uint32) Value {
	r.use()
	rec := &record{kind: KindArray, elems: make([]*record, length)}
	for i := range rec.elems {
		rec.elems[i] = r.inst.undefinedRec
	}
	return Value{rec: rec, region: r}
}

// Buffer creates a zero-filled byte buffer object.
func (r *Region) Buffer(length uint32) Value {
	r.use()
	return Value{rec: &record{kind: KindBuffer, buf: make([]byte, length)}, region: r}
}

// BufferUninitialized creates a byte buffer without guaranteeing zeroed
// contents. The engine model always zeroes; the distinction is kept for the
// boundary contract.
func (r *Region) BufferUninitialized(length uint32) Value {
	return r.Buffer(length)
}

// NewErrorValue constructs (but does not throw) a typed exception value.
func NewErrorValue(r *Region, kind ErrorKind, msg string) Value {
	r.use()
	rec := &record{kind: KindError, errKind: kind, str: msg}
	rec.props = map[string]*record{
		"message": {kind: KindString, str: msg},
	}
	return Value{rec: rec, region: r}
}

func newObjectRecord(proto *record) *record {
	return &record{kind: KindObject, props: make(map[string]*record), proto: proto}
}

// Bool returns the boolean payload; false for non-booleans.
func (v Value) Bool() bool {
	if v.rec == nil || v.rec.kind != KindBoolean {
		return false
	}
	return v.rec.b
}

// Number returns the numeric payload; zero for non-numbers.
func (v Value) Number() float64 {
	if v.rec == nil || v.rec.kind != KindNumber {
		return 0
	}
	return v.rec.num
}

// StringValue returns the string payload; empty for non-strings.
func (v Value) StringValue() string {
	if v.rec == nil || v.rec.kind != KindString {
		return ""
	}
	return v.rec.str
}

// Utf8Length returns the byte length of a string value.
func (v Value) Utf8Length() int {
	return len(v.StringValue())
}

// StringData copies the string payload into dst and returns the number of
// bytes written.
func (v Value) StringData(dst []byte) int {
	return copy(dst, v.StringValue())
}

// BufferData returns the buffer's backing bytes. The slice is valid only
// while the owning engine object is reachable.
func (v Value) BufferData() ([]byte, bool) {
	if v.rec == nil || v.rec.kind != KindBuffer {
		return nil, false
	}
	return v.rec.buf, true
}

// ArrayLen returns an array's length; zero for non-arrays.
func (v Value) ArrayLen() uint32 {
	if v.rec == nil || v.rec.kind != KindArray {
		return 0
	}
	return uint32(len(v.rec.elems))
}

// ErrorMessage returns an error value's message.
func (v Value) ErrorMessage() string {
	if v.rec == nil || v.rec.kind != KindError {
		return ""
	}
	return v.rec.str
}

// ErrorSubtype returns an error value's native subtype.
func (v Value) ErrorSubtype() ErrorKind {
	if v.rec == nil {
		return ErrPlain
	}
	return v.rec.errKind
}

// Tag predicates.

func (v Value) IsUndefined() bool { return v.Kind() == KindUndefined }
func (v Value) IsNull() bool      { return v.rec != nil && v.rec.kind == KindNull }
func (v Value) IsBoolean() bool   { return v.rec != nil && v.rec.kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.rec != nil && v.rec.kind == KindNumber }
func (v Value) IsString() bool    { return v.rec != nil && v.rec.kind == KindString }
func (v Value) IsArray() bool     { return v.rec != nil && v.rec.kind == KindArray }
func (v Value) IsFunction() bool  { return v.rec != nil && v.rec.kind == KindFunction }
func (v Value) IsError() bool     { return v.rec != nil && v.rec.kind == KindError }
func (v Value) IsBuffer() bool    { return v.rec != nil && v.rec.kind == KindBuffer }

// IsObject reports whether the value participates in the object model
// (plain objects, arrays, functions, errors, buffers).
func (v Value) IsObject() bool {
	switch v.Kind() {
	case KindObject, KindArray, KindFunction, KindError, KindBuffer:
		return v.rec != nil
	}
	return false
}

// SetInternal binds foreign instance data into the object's single reserved
// internal slot. The slot may be written at most once.
func SetInternal(v Value, data any) error {
	if v.rec == nil || !v.IsObject() {
		return errors.TypeMismatch(errors.PhaseClass, "object", v.Kind().String())
	}
	if v.rec.internalSet {
		return errors.InvalidState(errors.PhaseClass, "internal slot already bound")
	}
	v.rec.internal = data
	v.rec.internalSet = true
	return nil
}

// Internal reads the reserved internal slot. The second return reports
// whether the slot was ever bound.
func Internal(v Value) (any, bool) {
	if v.rec == nil {
		return nil, false
	}
	return v.rec.internal, v.rec.internalSet
}
