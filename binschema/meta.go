package binschema

import (
	"io"
)

// The meta-schema: a fixed schema whose values are themselves schemas.
// Encoding a schema is running the value codec with the meta-schema as
// the schema and the target schema as the value, so schemas travel over
// the same wire as ordinary data. The variant order below fixes the wire
// ordinals; with 10 outer variants and 14 scalar variants every
// discriminant in the meta-schema occupies exactly one byte.

var metaKindNames = [...]string{
	"Scalar", "Str", "Bytes", "Unit", "Option",
	"Seq", "Tuple", "Struct", "Enum", "Recurse",
}

var metaScalarNames = [...]string{
	"U8", "U16", "U32", "U64", "U128",
	"I8", "I16", "I32", "I64", "I128",
	"F32", "F64", "Char", "Bool",
}

// MetaSchema returns a fresh copy of the meta-schema.
func MetaSchema() *Schema {
	scalarVariants := make([]SchemaVariant, len(metaScalarNames))
	for i, name := range metaScalarNames {
		scalarVariants[i] = VariantOf(name, UnitSchema())
	}
	return EnumSchema(
		VariantOf("Scalar", EnumSchema(scalarVariants...)),
		VariantOf("Str", UnitSchema()),
		VariantOf("Bytes", UnitSchema()),
		VariantOf("Unit", UnitSchema()),
		// the inner schema of an option is any schema: the outer enum
		VariantOf("Option", RecurseSchema(1)),
		// recurse(2) skips the local struct wrapper to reach the outer enum
		VariantOf("Seq", StructSchema(
			FieldOf("len", OptionSchema(ScalarSchema(ScalarU64))),
			FieldOf("inner", RecurseSchema(2)),
		)),
		VariantOf("Tuple", SeqSchema(RecurseSchema(2))),
		// recurse(3) skips the field-pair struct and the seq
		VariantOf("Struct", SeqSchema(StructSchema(
			FieldOf("name", StrSchema()),
			FieldOf("inner", RecurseSchema(3)),
		))),
		VariantOf("Enum", SeqSchema(StructSchema(
			FieldOf("name", StrSchema()),
			FieldOf("inner", RecurseSchema(3)),
		))),
		VariantOf("Recurse", ScalarSchema(ScalarU64)),
	)
}

// EncodeSchema encodes a schema under the meta-schema.
func EncodeSchema(s *Schema, w io.Writer) error {
	return EncodeValue(MetaSchema(), SchemaToValue(s), w)
}

// DecodeSchema decodes a schema under the meta-schema.
func DecodeSchema(r io.Reader) (*Schema, error) {
	v, err := DecodeValue(MetaSchema(), r)
	if err != nil {
		return nil, err
	}
	return ValueToSchema(v)
}

// SchemaToValue represents a schema as a value under the meta-schema.
func SchemaToValue(s *Schema) *Value {
	kind := int(s.Kind)
	name := metaKindNames[kind]
	switch s.Kind {
	case SchemaScalar:
		t := int(s.Scalar)
		return Enum(kind, name, Enum(t, metaScalarNames[t], Unit()))
	case SchemaStr, SchemaBytes, SchemaUnit:
		return Enum(kind, name, Unit())
	case SchemaOption:
		return Enum(kind, name, SchemaToValue(s.Inner))
	case SchemaSeq:
		lenVal := None()
		if s.Len != nil {
			lenVal = Some(U64(*s.Len))
		}
		return Enum(kind, name, Struct(
			FieldVal("len", lenVal),
			FieldVal("inner", SchemaToValue(s.Inner)),
		))
	case SchemaTuple:
		elems := make([]*Value, len(s.Inners))
		for i, inner := range s.Inners {
			elems[i] = SchemaToValue(inner)
		}
		return Enum(kind, name, Seq(elems...))
	case SchemaStruct:
		elems := make([]*Value, len(s.Fields))
		for i, f := range s.Fields {
			elems[i] = Struct(
				FieldVal("name", Str(f.Name)),
				FieldVal("inner", SchemaToValue(f.Inner)),
			)
		}
		return Enum(kind, name, Seq(elems...))
	case SchemaEnum:
		elems := make([]*Value, len(s.Variants))
		for i, v := range s.Variants {
			elems[i] = Struct(
				FieldVal("name", Str(v.Name)),
				FieldVal("inner", SchemaToValue(v.Inner)),
			)
		}
		return Enum(kind, name, Seq(elems...))
	case SchemaRecurse:
		return Enum(kind, name, U64(s.Level))
	default:
		return Enum(kind, name, Unit())
	}
}

// ValueToSchema rebuilds a schema from its meta-schema value form.
func ValueToSchema(v *Value) (*Schema, error) {
	ev, err := v.AsEnum()
	if err != nil {
		return nil, errf(ErrInvalidSchema, "%v", err)
	}
	switch SchemaKind(ev.VariantOrd) {
	case SchemaScalar:
		inner, err := ev.Value.AsEnum()
		if err != nil {
			return nil, errf(ErrInvalidSchema, "%v", err)
		}
		if inner.VariantOrd < 0 || inner.VariantOrd >= len(metaScalarNames) {
			return nil, errf(ErrInvalidSchema, "scalar ordinal %d", inner.VariantOrd)
		}
		return ScalarSchema(ScalarType(inner.VariantOrd)), nil
	case SchemaStr:
		return StrSchema(), nil
	case SchemaBytes:
		return BytesSchema(), nil
	case SchemaUnit:
		return UnitSchema(), nil
	case SchemaOption:
		inner, err := ValueToSchema(ev.Value)
		if err != nil {
			return nil, err
		}
		return OptionSchema(inner), nil
	case SchemaSeq:
		lenOpt, err := ev.Value.Get("len").AsOption()
		if err != nil {
			return nil, errf(ErrInvalidSchema, "%v", err)
		}
		inner, err := ValueToSchema(ev.Value.Get("inner"))
		if err != nil {
			return nil, err
		}
		if lenOpt == nil {
			return SeqSchema(inner), nil
		}
		length, err := lenOpt.AsUint()
		if err != nil {
			return nil, errf(ErrInvalidSchema, "%v", err)
		}
		return FixedSeqSchema(length.Lo, inner), nil
	case SchemaTuple:
		elems, err := ev.Value.AsSeq()
		if err != nil {
			return nil, errf(ErrInvalidSchema, "%v", err)
		}
		inners := make([]*Schema, len(elems))
		for i, elem := range elems {
			if inners[i], err = ValueToSchema(elem); err != nil {
				return nil, err
			}
		}
		return TupleSchema(inners...), nil
	case SchemaStruct:
		fields, err := namedInners(ev.Value)
		if err != nil {
			return nil, err
		}
		return StructSchema(fields...), nil
	case SchemaEnum:
		fields, err := namedInners(ev.Value)
		if err != nil {
			return nil, err
		}
		variants := make([]SchemaVariant, len(fields))
		for i, f := range fields {
			variants[i] = SchemaVariant(f)
		}
		return EnumSchema(variants...), nil
	case SchemaRecurse:
		level, err := ev.Value.AsUint()
		if err != nil {
			return nil, errf(ErrInvalidSchema, "%v", err)
		}
		return RecurseSchema(level.Lo), nil
	default:
		return nil, errf(ErrInvalidSchema, "variant ordinal %d", ev.VariantOrd)
	}
}

// namedInners unpacks a seq of {name, inner} pair structs, the shared
// shape of the meta-schema's struct and enum variants.
func namedInners(v *Value) ([]SchemaField, error) {
	elems, err := v.AsSeq()
	if err != nil {
		return nil, errf(ErrInvalidSchema, "%v", err)
	}
	out := make([]SchemaField, len(elems))
	for i, elem := range elems {
		name, err := elem.Get("name").AsStr()
		if err != nil {
			return nil, errf(ErrInvalidSchema, "%v", err)
		}
		inner, err := ValueToSchema(elem.Get("inner"))
		if err != nil {
			return nil, err
		}
		out[i] = FieldOf(name, inner)
	}
	return out, nil
}
