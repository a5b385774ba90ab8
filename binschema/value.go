package binschema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind discriminates the variants of a Value.
type ValueKind uint8

const (
	ValueScalar ValueKind = iota
	ValueStr
	ValueBytes
	ValueUnit
	ValueOption
	ValueSeq
	ValueTuple
	ValueStruct
	ValueEnum
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case ValueScalar:
		return "scalar"
	case ValueStr:
		return "str"
	case ValueBytes:
		return "bytes"
	case ValueUnit:
		return "unit"
	case ValueOption:
		return "option"
	case ValueSeq:
		return "seq"
	case ValueTuple:
		return "tuple"
	case ValueStruct:
		return "struct"
	case ValueEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// Value is an element of a schema's value set, represented as a tree.
// Values carry their scalar type so that conformance against a schema can
// be checked exactly; field and variant names are carried for clarity but
// never transmitted.
type Value struct {
	kind   ValueKind
	scalar ScalarType // valid when kind == ValueScalar

	// Scalar payloads (one valid, selected by scalar)
	uintVal  Uint128 // u8-u128; char stores the codepoint
	intVal   Int128  // i8-i128
	floatVal float64 // f32 (exactly representable), f64
	boolVal  bool

	strVal   string
	bytesVal []byte

	someVal *Value     // option; nil = none
	elems   []*Value   // seq, tuple
	fields  []Field    // struct
	enumVal *EnumValue // enum
}

// Field is a named field in a struct value.
type Field struct {
	Name  string
	Value *Value
}

// EnumValue is a selected variant and its inner value.
type EnumValue struct {
	VariantOrd  int
	VariantName string
	Value       *Value
}

// ============================================================
// Constructors
// ============================================================

// U8 creates a u8 value.
func U8(v uint8) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarU8, uintVal: Uint128FromUint64(uint64(v))}
}

// U16 creates a u16 value.
func U16(v uint16) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarU16, uintVal: Uint128FromUint64(uint64(v))}
}

// U32 creates a u32 value.
func U32(v uint32) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarU32, uintVal: Uint128FromUint64(uint64(v))}
}

// U64 creates a u64 value.
func U64(v uint64) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarU64, uintVal: Uint128FromUint64(v)}
}

// U128 creates a u128 value.
func U128(v Uint128) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarU128, uintVal: v}
}

// I8 creates an i8 value.
func I8(v int8) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarI8, intVal: Int128FromInt64(int64(v))}
}

// I16 creates an i16 value.
func I16(v int16) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarI16, intVal: Int128FromInt64(int64(v))}
}

// I32 creates an i32 value.
func I32(v int32) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarI32, intVal: Int128FromInt64(int64(v))}
}

// I64 creates an i64 value.
func I64(v int64) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarI64, intVal: Int128FromInt64(v)}
}

// I128 creates an i128 value.
func I128(v Int128) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarI128, intVal: v}
}

// F32 creates an f32 value.
func F32(v float32) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarF32, floatVal: float64(v)}
}

// F64 creates an f64 value.
func F64(v float64) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarF64, floatVal: v}
}

// Char creates a char value from a codepoint. Validity is checked when
// the value is encoded.
func Char(r rune) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarChar, uintVal: Uint128FromUint64(uint64(uint32(r)))}
}

// Bool creates a bool value.
func Bool(v bool) *Value {
	return &Value{kind: ValueScalar, scalar: ScalarBool, boolVal: v}
}

// Str creates a str value.
func Str(v string) *Value {
	return &Value{kind: ValueStr, strVal: v}
}

// Bytes creates a bytes value.
func Bytes(v []byte) *Value {
	return &Value{kind: ValueBytes, bytesVal: v}
}

// Unit creates the unit value.
func Unit() *Value {
	return &Value{kind: ValueUnit}
}

// None creates an empty option value.
func None() *Value {
	return &Value{kind: ValueOption}
}

// Some creates an occupied option value.
func Some(inner *Value) *Value {
	return &Value{kind: ValueOption, someVal: inner}
}

// Seq creates a sequence value.
func Seq(elems ...*Value) *Value {
	return &Value{kind: ValueSeq, elems: elems}
}

// Tuple creates a tuple value.
func Tuple(elems ...*Value) *Value {
	return &Value{kind: ValueTuple, elems: elems}
}

// Struct creates a struct value from ordered fields.
func Struct(fields ...Field) *Value {
	return &Value{kind: ValueStruct, fields: fields}
}

// Enum creates an enum value selecting the variant at ord.
func Enum(ord int, name string, inner *Value) *Value {
	return &Value{kind: ValueEnum, enumVal: &EnumValue{
		VariantOrd:  ord,
		VariantName: name,
		Value:       inner,
	}}
}

// FieldVal creates a Field for use in Struct construction.
func FieldVal(name string, value *Value) Field {
	return Field{Name: name, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() ValueKind {
	if v == nil {
		return ValueUnit
	}
	return v.kind
}

// ScalarType returns the scalar type of a scalar value.
func (v *Value) ScalarType() (ScalarType, error) {
	if v == nil {
		return 0, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueScalar {
		return 0, fmt.Errorf("binschema: expected scalar, got %s", v.kind)
	}
	return v.scalar, nil
}

// AsUint returns the payload of an unsigned scalar (u8-u128). A char
// value yields its codepoint.
func (v *Value) AsUint() (Uint128, error) {
	if v == nil {
		return Uint128{}, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueScalar {
		return Uint128{}, fmt.Errorf("binschema: expected scalar, got %s", v.kind)
	}
	switch v.scalar {
	case ScalarU8, ScalarU16, ScalarU32, ScalarU64, ScalarU128, ScalarChar:
		return v.uintVal, nil
	}
	return Uint128{}, fmt.Errorf("binschema: expected unsigned scalar, got %s", v.scalar)
}

// AsInt returns the payload of a signed scalar (i8-i128).
func (v *Value) AsInt() (Int128, error) {
	if v == nil {
		return Int128{}, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueScalar {
		return Int128{}, fmt.Errorf("binschema: expected scalar, got %s", v.kind)
	}
	switch v.scalar {
	case ScalarI8, ScalarI16, ScalarI32, ScalarI64, ScalarI128:
		return v.intVal, nil
	}
	return Int128{}, fmt.Errorf("binschema: expected signed scalar, got %s", v.scalar)
}

// AsFloat returns the payload of an f32 or f64 value.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueScalar || (v.scalar != ScalarF32 && v.scalar != ScalarF64) {
		return 0, fmt.Errorf("binschema: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsBool returns the payload of a bool value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueScalar || v.scalar != ScalarBool {
		return false, fmt.Errorf("binschema: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsChar returns the codepoint of a char value.
func (v *Value) AsChar() (rune, error) {
	if v == nil {
		return 0, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueScalar || v.scalar != ScalarChar {
		return 0, fmt.Errorf("binschema: expected char, got %s", v.kind)
	}
	return rune(uint32(v.uintVal.Lo)), nil
}

// AsStr returns the payload of a str value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueStr {
		return "", fmt.Errorf("binschema: expected str, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsBytes returns the payload of a bytes value.
func (v *Value) AsBytes() ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueBytes {
		return nil, fmt.Errorf("binschema: expected bytes, got %s", v.kind)
	}
	return v.bytesVal, nil
}

// AsOption returns the inner value of an option, or nil for none.
func (v *Value) AsOption() (*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueOption {
		return nil, fmt.Errorf("binschema: expected option, got %s", v.kind)
	}
	return v.someVal, nil
}

// AsSeq returns the elements of a seq value.
func (v *Value) AsSeq() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueSeq {
		return nil, fmt.Errorf("binschema: expected seq, got %s", v.kind)
	}
	return v.elems, nil
}

// AsTuple returns the elements of a tuple value.
func (v *Value) AsTuple() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueTuple {
		return nil, fmt.Errorf("binschema: expected tuple, got %s", v.kind)
	}
	return v.elems, nil
}

// AsStruct returns the fields of a struct value.
func (v *Value) AsStruct() ([]Field, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueStruct {
		return nil, fmt.Errorf("binschema: expected struct, got %s", v.kind)
	}
	return v.fields, nil
}

// AsEnum returns the selected variant of an enum value.
func (v *Value) AsEnum() (*EnumValue, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueEnum {
		return nil, fmt.Errorf("binschema: expected enum, got %s", v.kind)
	}
	return v.enumVal, nil
}

// Len returns the length of a seq, tuple, or struct value.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case ValueSeq, ValueTuple:
		return len(v.elems)
	case ValueStruct:
		return len(v.fields)
	default:
		return 0
	}
}

// Get returns a field value by name from a struct, or nil.
func (v *Value) Get(name string) *Value {
	if v == nil {
		return nil
	}
	if v.kind != ValueStruct {
		return nil
	}
	for _, f := range v.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

// Index returns the i-th element of a seq or tuple.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("binschema: nil value")
	}
	if v.kind != ValueSeq && v.kind != ValueTuple {
		return nil, fmt.Errorf("binschema: expected seq or tuple, got %s", v.kind)
	}
	if i < 0 || i >= len(v.elems) {
		return nil, fmt.Errorf("binschema: index %d out of bounds (len=%d)", i, len(v.elems))
	}
	return v.elems[i], nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports structural equality of two value trees. Floats compare
// by bit pattern, so NaN equals NaN of the same bits.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueScalar:
		if v.scalar != o.scalar {
			return false
		}
		switch v.scalar {
		case ScalarU8, ScalarU16, ScalarU32, ScalarU64, ScalarU128, ScalarChar:
			return v.uintVal == o.uintVal
		case ScalarI8, ScalarI16, ScalarI32, ScalarI64, ScalarI128:
			return v.intVal == o.intVal
		case ScalarF32, ScalarF64:
			return math.Float64bits(v.floatVal) == math.Float64bits(o.floatVal)
		case ScalarBool:
			return v.boolVal == o.boolVal
		}
		return false
	case ValueStr:
		return v.strVal == o.strVal
	case ValueBytes:
		if len(v.bytesVal) != len(o.bytesVal) {
			return false
		}
		for i := range v.bytesVal {
			if v.bytesVal[i] != o.bytesVal[i] {
				return false
			}
		}
		return true
	case ValueUnit:
		return true
	case ValueOption:
		if (v.someVal == nil) != (o.someVal == nil) {
			return false
		}
		return v.someVal == nil || v.someVal.Equal(o.someVal)
	case ValueSeq, ValueTuple:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(o.elems[i]) {
				return false
			}
		}
		return true
	case ValueStruct:
		if len(v.fields) != len(o.fields) {
			return false
		}
		for i := range v.fields {
			if v.fields[i].Name != o.fields[i].Name {
				return false
			}
			if !v.fields[i].Value.Equal(o.fields[i].Value) {
				return false
			}
		}
		return true
	case ValueEnum:
		return v.enumVal.VariantOrd == o.enumVal.VariantOrd &&
			v.enumVal.VariantName == o.enumVal.VariantName &&
			v.enumVal.Value.Equal(o.enumVal.Value)
	default:
		return false
	}
}

// ============================================================
// Rendering
// ============================================================

// String returns a compact diagnostic rendering of the value tree.
func (v *Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v *Value) render(b *strings.Builder) {
	if v == nil {
		b.WriteString("<nil>")
		return
	}
	switch v.kind {
	case ValueScalar:
		switch v.scalar {
		case ScalarU8, ScalarU16, ScalarU32, ScalarU64, ScalarU128:
			b.WriteString(v.uintVal.String())
		case ScalarI8, ScalarI16, ScalarI32, ScalarI64, ScalarI128:
			b.WriteString(v.intVal.String())
		case ScalarF32, ScalarF64:
			b.WriteString(strconv.FormatFloat(v.floatVal, 'g', -1, 64))
		case ScalarChar:
			b.WriteString(strconv.QuoteRune(rune(uint32(v.uintVal.Lo))))
		case ScalarBool:
			b.WriteString(strconv.FormatBool(v.boolVal))
		}
	case ValueStr:
		b.WriteString(strconv.Quote(v.strVal))
	case ValueBytes:
		fmt.Fprintf(b, "bytes[%d]", len(v.bytesVal))
	case ValueUnit:
		b.WriteString("()")
	case ValueOption:
		if v.someVal == nil {
			b.WriteString("none")
		} else {
			b.WriteString("some(")
			v.someVal.render(b)
			b.WriteByte(')')
		}
	case ValueSeq, ValueTuple:
		if v.kind == ValueSeq {
			b.WriteByte('[')
		} else {
			b.WriteByte('(')
		}
		for i, e := range v.elems {
			if i > 0 {
				b.WriteByte(' ')
			}
			e.render(b)
		}
		if v.kind == ValueSeq {
			b.WriteByte(']')
		} else {
			b.WriteByte(')')
		}
	case ValueStruct:
		b.WriteByte('{')
		for i, f := range v.fields {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.Name)
			b.WriteByte('=')
			f.Value.render(b)
		}
		b.WriteByte('}')
	case ValueEnum:
		b.WriteString(v.enumVal.VariantName)
		b.WriteByte('(')
		v.enumVal.Value.render(b)
		b.WriteByte(')')
	}
}
