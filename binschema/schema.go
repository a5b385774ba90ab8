package binschema

import (
	"fmt"
	"strings"
)

// SchemaKind discriminates the variants of a Schema node. The numeric
// order is the wire ordinal order of the meta-schema and must not change.
type SchemaKind uint8

const (
	SchemaScalar SchemaKind = iota
	SchemaStr
	SchemaBytes
	SchemaUnit
	SchemaOption
	SchemaSeq
	SchemaTuple
	SchemaStruct
	SchemaEnum
	SchemaRecurse
)

// String returns the kind name.
func (k SchemaKind) String() string {
	switch k {
	case SchemaScalar:
		return "scalar"
	case SchemaStr:
		return "str"
	case SchemaBytes:
		return "bytes"
	case SchemaUnit:
		return "unit"
	case SchemaOption:
		return "option"
	case SchemaSeq:
		return "seq"
	case SchemaTuple:
		return "tuple"
	case SchemaStruct:
		return "struct"
	case SchemaEnum:
		return "enum"
	case SchemaRecurse:
		return "recurse"
	default:
		return "unknown"
	}
}

// ScalarType identifies a scalar schema leaf. The numeric order is the
// wire ordinal order of the meta-schema's scalar enum and must not change.
type ScalarType uint8

const (
	ScalarU8 ScalarType = iota
	ScalarU16
	ScalarU32
	ScalarU64
	ScalarU128
	ScalarI8
	ScalarI16
	ScalarI32
	ScalarI64
	ScalarI128
	ScalarF32
	ScalarF64
	ScalarChar
	ScalarBool
)

// String returns the scalar type name.
func (t ScalarType) String() string {
	switch t {
	case ScalarU8:
		return "u8"
	case ScalarU16:
		return "u16"
	case ScalarU32:
		return "u32"
	case ScalarU64:
		return "u64"
	case ScalarU128:
		return "u128"
	case ScalarI8:
		return "i8"
	case ScalarI16:
		return "i16"
	case ScalarI32:
		return "i32"
	case ScalarI64:
		return "i64"
	case ScalarI128:
		return "i128"
	case ScalarF32:
		return "f32"
	case ScalarF64:
		return "f64"
	case ScalarChar:
		return "char"
	case ScalarBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Schema is a tree-shaped descriptor of a set of values and their byte
// representation. Which fields are meaningful depends on Kind. Schemas
// are immutable once constructed; self-reference is expressed with
// SchemaRecurse back-references, never with pointer cycles.
type Schema struct {
	Kind SchemaKind

	Scalar   ScalarType      // SchemaScalar
	Inner    *Schema         // SchemaOption, SchemaSeq
	Len      *uint64         // SchemaSeq: fixed length; nil = variable
	Inners   []*Schema       // SchemaTuple
	Fields   []SchemaField   // SchemaStruct
	Variants []SchemaVariant // SchemaEnum
	Level    uint64          // SchemaRecurse
}

// SchemaField is a named field in a struct schema.
type SchemaField struct {
	Name  string
	Inner *Schema
}

// SchemaVariant is a named variant in an enum schema.
type SchemaVariant struct {
	Name  string
	Inner *Schema
}

// ============================================================
// Constructors
// ============================================================

// ScalarSchema creates a scalar leaf schema.
func ScalarSchema(t ScalarType) *Schema {
	return &Schema{Kind: SchemaScalar, Scalar: t}
}

// StrSchema creates a UTF-8 string schema.
func StrSchema() *Schema {
	return &Schema{Kind: SchemaStr}
}

// BytesSchema creates a byte string schema.
func BytesSchema() *Schema {
	return &Schema{Kind: SchemaBytes}
}

// UnitSchema creates the unit schema, encoded as zero bytes.
func UnitSchema() *Schema {
	return &Schema{Kind: SchemaUnit}
}

// OptionSchema creates an option schema around inner.
func OptionSchema(inner *Schema) *Schema {
	return &Schema{Kind: SchemaOption, Inner: inner}
}

// SeqSchema creates a variable-length sequence schema.
func SeqSchema(inner *Schema) *Schema {
	return &Schema{Kind: SchemaSeq, Inner: inner}
}

// FixedSeqSchema creates a fixed-length sequence schema. The length is
// part of the schema and never of the message.
func FixedSeqSchema(length uint64, inner *Schema) *Schema {
	return &Schema{Kind: SchemaSeq, Len: &length, Inner: inner}
}

// TupleSchema creates a heterogeneous fixed-arity schema.
func TupleSchema(inners ...*Schema) *Schema {
	return &Schema{Kind: SchemaTuple, Inners: inners}
}

// StructSchema creates a struct schema with ordered named fields.
func StructSchema(fields ...SchemaField) *Schema {
	return &Schema{Kind: SchemaStruct, Fields: fields}
}

// EnumSchema creates an enum schema with ordered named variants. A
// zero-variant enum is a legal schema with an empty value set.
func EnumSchema(variants ...SchemaVariant) *Schema {
	return &Schema{Kind: SchemaEnum, Variants: variants}
}

// RecurseSchema creates a back-reference to the schema level steps up
// the tree. Level 1 is the immediate parent.
func RecurseSchema(level uint64) *Schema {
	return &Schema{Kind: SchemaRecurse, Level: level}
}

// FieldOf creates a SchemaField for use in StructSchema.
func FieldOf(name string, inner *Schema) SchemaField {
	return SchemaField{Name: name, Inner: inner}
}

// VariantOf creates a SchemaVariant for use in EnumSchema.
func VariantOf(name string, inner *Schema) SchemaVariant {
	return SchemaVariant{Name: name, Inner: inner}
}

// ============================================================
// Well-formedness
// ============================================================

// Validate checks that every recurse node has a level of at least 1 and
// at most its number of strict ancestors. The codec re-checks this at
// traversal time; Validate lets a host reject a schema up front.
func (s *Schema) Validate() error {
	return s.validate(0)
}

func (s *Schema) validate(depth uint64) error {
	switch s.Kind {
	case SchemaOption, SchemaSeq:
		return s.Inner.validate(depth + 1)
	case SchemaTuple:
		for _, inner := range s.Inners {
			if err := inner.validate(depth + 1); err != nil {
				return err
			}
		}
	case SchemaStruct:
		for _, f := range s.Fields {
			if err := f.Inner.validate(depth + 1); err != nil {
				return err
			}
		}
	case SchemaEnum:
		for _, v := range s.Variants {
			if err := v.Inner.validate(depth + 1); err != nil {
				return err
			}
		}
	case SchemaRecurse:
		if s.Level == 0 {
			return errf(ErrInvalidSchema, "recurse of level 0")
		}
		if s.Level > depth {
			return errf(ErrInvalidSchema,
				"recurse level %d exceeds ancestor depth %d", s.Level, depth)
		}
	}
	return nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports structural equality of two schema trees.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case SchemaScalar:
		return s.Scalar == o.Scalar
	case SchemaStr, SchemaBytes, SchemaUnit:
		return true
	case SchemaOption:
		return s.Inner.Equal(o.Inner)
	case SchemaSeq:
		if (s.Len == nil) != (o.Len == nil) {
			return false
		}
		if s.Len != nil && *s.Len != *o.Len {
			return false
		}
		return s.Inner.Equal(o.Inner)
	case SchemaTuple:
		if len(s.Inners) != len(o.Inners) {
			return false
		}
		for i := range s.Inners {
			if !s.Inners[i].Equal(o.Inners[i]) {
				return false
			}
		}
		return true
	case SchemaStruct:
		if len(s.Fields) != len(o.Fields) {
			return false
		}
		for i := range s.Fields {
			if s.Fields[i].Name != o.Fields[i].Name {
				return false
			}
			if !s.Fields[i].Inner.Equal(o.Fields[i].Inner) {
				return false
			}
		}
		return true
	case SchemaEnum:
		if len(s.Variants) != len(o.Variants) {
			return false
		}
		for i := range s.Variants {
			if s.Variants[i].Name != o.Variants[i].Name {
				return false
			}
			if !s.Variants[i].Inner.Equal(o.Variants[i].Inner) {
				return false
			}
		}
		return true
	case SchemaRecurse:
		return s.Level == o.Level
	default:
		return false
	}
}

// ============================================================
// Rendering
// ============================================================

// String returns a compact human-readable form of the schema tree. It is
// a diagnostic rendering, not a wire format.
func (s *Schema) String() string {
	var b strings.Builder
	s.render(&b)
	return b.String()
}

func (s *Schema) render(b *strings.Builder) {
	switch s.Kind {
	case SchemaScalar:
		b.WriteString(s.Scalar.String())
	case SchemaStr:
		b.WriteString("str")
	case SchemaBytes:
		b.WriteString("bytes")
	case SchemaUnit:
		b.WriteString("unit")
	case SchemaOption:
		b.WriteString("option(")
		s.Inner.render(b)
		b.WriteByte(')')
	case SchemaSeq:
		if s.Len != nil {
			fmt.Fprintf(b, "seq(%d, ", *s.Len)
		} else {
			b.WriteString("seq(var, ")
		}
		s.Inner.render(b)
		b.WriteByte(')')
	case SchemaTuple:
		b.WriteString("tuple(")
		for i, inner := range s.Inners {
			if i > 0 {
				b.WriteString(", ")
			}
			inner.render(b)
		}
		b.WriteByte(')')
	case SchemaStruct:
		b.WriteString("struct{")
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			f.Inner.render(b)
		}
		b.WriteByte('}')
	case SchemaEnum:
		b.WriteString("enum{")
		for i, v := range s.Variants {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(v.Name)
			b.WriteByte('(')
			v.Inner.render(b)
			b.WriteByte(')')
		}
		b.WriteByte('}')
	case SchemaRecurse:
		fmt.Fprintf(b, "recurse(%d)", s.Level)
	default:
		b.WriteString("unknown")
	}
}
