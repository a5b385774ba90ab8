package binschema

import (
	"io"
)

// EncodeValue encodes one value under schema, writing the message to w.
// Encoding is total on conforming values; a non-conforming value or a
// sink error aborts with nothing useful written.
func EncodeValue(schema *Schema, v *Value, w io.Writer) error {
	e := NewEncoder(schema, w)
	if err := encodeValue(e, v); err != nil {
		return err
	}
	return e.Finish()
}

// DecodeValue decodes one message from r under schema, consuming exactly
// the bytes of the message and leaving the rest of the stream untouched.
func DecodeValue(schema *Schema, r io.Reader) (*Value, error) {
	d := NewDecoder(schema, r)
	v, err := decodeValue(d)
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return v, nil
}

// Conforms reports whether v conforms to schema, by running the encoder
// against a discarding sink. The error, if any, is the same the encoder
// would surface.
func Conforms(schema *Schema, v *Value) error {
	return EncodeValue(schema, v, io.Discard)
}

func encodeValue(e *Encoder, v *Value) error {
	if v == nil {
		return errf(ErrNonConforming, "nil value")
	}
	switch v.kind {
	case ValueScalar:
		return encodeScalar(e, v)
	case ValueStr:
		return e.EncodeStr(v.strVal)
	case ValueBytes:
		return e.EncodeBytes(v.bytesVal)
	case ValueUnit:
		return e.EncodeUnit()
	case ValueOption:
		if v.someVal == nil {
			return e.EncodeNone()
		}
		if err := e.BeginSome(); err != nil {
			return err
		}
		return encodeValue(e, v.someVal)
	case ValueSeq:
		if err := e.BeginSeq(len(v.elems)); err != nil {
			return err
		}
		for _, elem := range v.elems {
			if err := e.BeginSeqElem(); err != nil {
				return err
			}
			if err := encodeValue(e, elem); err != nil {
				return err
			}
		}
		return e.FinishSeq()
	case ValueTuple:
		if err := e.BeginTuple(); err != nil {
			return err
		}
		for _, elem := range v.elems {
			if err := e.BeginTupleElem(); err != nil {
				return err
			}
			if err := encodeValue(e, elem); err != nil {
				return err
			}
		}
		return e.FinishTuple()
	case ValueStruct:
		if err := e.BeginStruct(); err != nil {
			return err
		}
		for _, f := range v.fields {
			if err := e.BeginField(f.Name); err != nil {
				return err
			}
			if err := encodeValue(e, f.Value); err != nil {
				return err
			}
		}
		return e.FinishStruct()
	case ValueEnum:
		if err := e.BeginEnum(v.enumVal.VariantOrd, v.enumVal.VariantName); err != nil {
			return err
		}
		return encodeValue(e, v.enumVal.Value)
	default:
		return errf(ErrNonConforming, "unknown value kind %d", v.kind)
	}
}

func encodeScalar(e *Encoder, v *Value) error {
	switch v.scalar {
	case ScalarU8:
		return e.EncodeU8(uint8(v.uintVal.Lo))
	case ScalarU16:
		return e.EncodeU16(uint16(v.uintVal.Lo))
	case ScalarU32:
		return e.EncodeU32(uint32(v.uintVal.Lo))
	case ScalarU64:
		return e.EncodeU64(v.uintVal.Lo)
	case ScalarU128:
		return e.EncodeU128(v.uintVal)
	case ScalarI8:
		return e.EncodeI8(int8(v.intVal.Lo))
	case ScalarI16:
		return e.EncodeI16(int16(v.intVal.Lo))
	case ScalarI32:
		return e.EncodeI32(int32(v.intVal.Lo))
	case ScalarI64:
		return e.EncodeI64(int64(v.intVal.Lo))
	case ScalarI128:
		return e.EncodeI128(v.intVal)
	case ScalarF32:
		return e.EncodeF32(float32(v.floatVal))
	case ScalarF64:
		return e.EncodeF64(v.floatVal)
	case ScalarChar:
		return e.EncodeChar(rune(uint32(v.uintVal.Lo)))
	case ScalarBool:
		return e.EncodeBool(v.boolVal)
	default:
		return errf(ErrNonConforming, "unknown scalar type %d", v.scalar)
	}
}

func decodeValue(d *Decoder) (*Value, error) {
	s, err := d.c.expect("value")
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case SchemaScalar:
		return decodeScalar(d, s.Scalar)
	case SchemaStr:
		v, err := d.DecodeStr()
		if err != nil {
			return nil, err
		}
		return Str(v), nil
	case SchemaBytes:
		v, err := d.DecodeBytes()
		if err != nil {
			return nil, err
		}
		return Bytes(v), nil
	case SchemaUnit:
		if err := d.DecodeUnit(); err != nil {
			return nil, err
		}
		return Unit(), nil
	case SchemaOption:
		some, err := d.BeginOption()
		if err != nil {
			return nil, err
		}
		if !some {
			return None(), nil
		}
		inner, err := decodeValue(d)
		if err != nil {
			return nil, err
		}
		return Some(inner), nil
	case SchemaSeq:
		n, err := d.BeginSeq()
		if err != nil {
			return nil, err
		}
		// grown one element at a time: the count is untrusted input
		var elems []*Value
		for i := 0; i < n; i++ {
			if err := d.BeginSeqElem(); err != nil {
				return nil, err
			}
			elem, err := decodeValue(d)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		if err := d.FinishSeq(); err != nil {
			return nil, err
		}
		return Seq(elems...), nil
	case SchemaTuple:
		if err := d.BeginTuple(); err != nil {
			return nil, err
		}
		elems := make([]*Value, 0, len(s.Inners))
		for range s.Inners {
			if err := d.BeginTupleElem(); err != nil {
				return nil, err
			}
			elem, err := decodeValue(d)
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		if err := d.FinishTuple(); err != nil {
			return nil, err
		}
		return Tuple(elems...), nil
	case SchemaStruct:
		if err := d.BeginStruct(); err != nil {
			return nil, err
		}
		fields := make([]Field, 0, len(s.Fields))
		for _, f := range s.Fields {
			if err := d.BeginField(f.Name); err != nil {
				return nil, err
			}
			inner, err := decodeValue(d)
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldVal(f.Name, inner))
		}
		if err := d.FinishStruct(); err != nil {
			return nil, err
		}
		return Struct(fields...), nil
	case SchemaEnum:
		ord, err := d.BeginEnum()
		if err != nil {
			return nil, err
		}
		name := s.Variants[ord].Name
		inner, err := decodeValue(d)
		if err != nil {
			return nil, err
		}
		return Enum(ord, name, inner), nil
	default:
		// recursions are resolved when a frame is pushed, so this cannot
		// be a recurse node
		return nil, errf(ErrInvalidSchema, "unknown schema kind %d", s.Kind)
	}
}

func decodeScalar(d *Decoder, t ScalarType) (*Value, error) {
	switch t {
	case ScalarU8:
		v, err := d.DecodeU8()
		if err != nil {
			return nil, err
		}
		return U8(v), nil
	case ScalarU16:
		v, err := d.DecodeU16()
		if err != nil {
			return nil, err
		}
		return U16(v), nil
	case ScalarU32:
		v, err := d.DecodeU32()
		if err != nil {
			return nil, err
		}
		return U32(v), nil
	case ScalarU64:
		v, err := d.DecodeU64()
		if err != nil {
			return nil, err
		}
		return U64(v), nil
	case ScalarU128:
		v, err := d.DecodeU128()
		if err != nil {
			return nil, err
		}
		return U128(v), nil
	case ScalarI8:
		v, err := d.DecodeI8()
		if err != nil {
			return nil, err
		}
		return I8(v), nil
	case ScalarI16:
		v, err := d.DecodeI16()
		if err != nil {
			return nil, err
		}
		return I16(v), nil
	case ScalarI32:
		v, err := d.DecodeI32()
		if err != nil {
			return nil, err
		}
		return I32(v), nil
	case ScalarI64:
		v, err := d.DecodeI64()
		if err != nil {
			return nil, err
		}
		return I64(v), nil
	case ScalarI128:
		v, err := d.DecodeI128()
		if err != nil {
			return nil, err
		}
		return I128(v), nil
	case ScalarF32:
		v, err := d.DecodeF32()
		if err != nil {
			return nil, err
		}
		return F32(v), nil
	case ScalarF64:
		v, err := d.DecodeF64()
		if err != nil {
			return nil, err
		}
		return F64(v), nil
	case ScalarChar:
		v, err := d.DecodeChar()
		if err != nil {
			return nil, err
		}
		return Char(v), nil
	case ScalarBool:
		v, err := d.DecodeBool()
		if err != nil {
			return nil, err
		}
		return Bool(v), nil
	default:
		return nil, errf(ErrInvalidSchema, "unknown scalar type %d", t)
	}
}
