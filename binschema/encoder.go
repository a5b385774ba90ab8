package binschema

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Encoder writes one message to w under a schema, one primitive at a
// time. Every call is validated against the schema; the first error is
// terminal for the whole message. After the final primitive, Finish
// reports whether the message is complete.
//
// Encoding is deterministic: a given schema and value sequence yields a
// byte-identical message.
type Encoder struct {
	c *coderState
	w io.Writer
}

// NewEncoder creates an encoder for one message under schema.
func NewEncoder(schema *Schema, w io.Writer) *Encoder {
	return &Encoder{c: newCoderState(schema), w: w}
}

func (e *Encoder) write(b []byte) error {
	if err := writeFull(e.w, b); err != nil {
		return e.c.fail(err)
	}
	return nil
}

// EncodeU8 encodes a u8 as one raw byte.
func (e *Encoder) EncodeU8(v uint8) error {
	if err := e.c.codeScalar(ScalarU8); err != nil {
		return err
	}
	return e.write([]byte{v})
}

// EncodeU16 encodes a u16 as two little-endian bytes.
func (e *Encoder) EncodeU16(v uint16) error {
	if err := e.c.codeScalar(ScalarU16); err != nil {
		return err
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return e.write(buf[:])
}

// EncodeU32 encodes a u32 as a varint.
func (e *Encoder) EncodeU32(v uint32) error {
	if err := e.c.codeScalar(ScalarU32); err != nil {
		return err
	}
	return e.writeVarUint(Uint128FromUint64(uint64(v)))
}

// EncodeU64 encodes a u64 as a varint.
func (e *Encoder) EncodeU64(v uint64) error {
	if err := e.c.codeScalar(ScalarU64); err != nil {
		return err
	}
	return e.writeVarUint(Uint128FromUint64(v))
}

// EncodeU128 encodes a u128 as a varint.
func (e *Encoder) EncodeU128(v Uint128) error {
	if err := e.c.codeScalar(ScalarU128); err != nil {
		return err
	}
	return e.writeVarUint(v)
}

// EncodeI8 encodes an i8 as one raw byte.
func (e *Encoder) EncodeI8(v int8) error {
	if err := e.c.codeScalar(ScalarI8); err != nil {
		return err
	}
	return e.write([]byte{byte(v)})
}

// EncodeI16 encodes an i16 as two little-endian bytes.
func (e *Encoder) EncodeI16(v int16) error {
	if err := e.c.codeScalar(ScalarI16); err != nil {
		return err
	}
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(v))
	return e.write(buf[:])
}

// EncodeI32 encodes an i32 as a signed varint.
func (e *Encoder) EncodeI32(v int32) error {
	if err := e.c.codeScalar(ScalarI32); err != nil {
		return err
	}
	return e.writeVarSint(Int128FromInt64(int64(v)))
}

// EncodeI64 encodes an i64 as a signed varint.
func (e *Encoder) EncodeI64(v int64) error {
	if err := e.c.codeScalar(ScalarI64); err != nil {
		return err
	}
	return e.writeVarSint(Int128FromInt64(v))
}

// EncodeI128 encodes an i128 as a signed varint.
func (e *Encoder) EncodeI128(v Int128) error {
	if err := e.c.codeScalar(ScalarI128); err != nil {
		return err
	}
	return e.writeVarSint(v)
}

// EncodeF32 encodes an f32 as four little-endian IEEE-754 bytes.
func (e *Encoder) EncodeF32(v float32) error {
	if err := e.c.codeScalar(ScalarF32); err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return e.write(buf[:])
}

// EncodeF64 encodes an f64 as eight little-endian IEEE-754 bytes.
func (e *Encoder) EncodeF64(v float64) error {
	if err := e.c.codeScalar(ScalarF64); err != nil {
		return err
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return e.write(buf[:])
}

// EncodeChar encodes a unicode scalar as a varint of its codepoint.
func (e *Encoder) EncodeChar(r rune) error {
	if err := e.c.codeScalar(ScalarChar); err != nil {
		return err
	}
	if !utf8.ValidRune(r) {
		return e.c.fail(errf(ErrInvalidChar, "%#x is not a unicode scalar", r))
	}
	return e.writeVarUint(Uint128FromUint64(uint64(uint32(r))))
}

// EncodeBool encodes a bool as a single 0x00 or 0x01 byte.
func (e *Encoder) EncodeBool(v bool) error {
	if err := e.c.codeScalar(ScalarBool); err != nil {
		return err
	}
	b := byte(0)
	if v {
		b = 1
	}
	return e.write([]byte{b})
}

// EncodeStr encodes a UTF-8 string as a varint byte length followed by
// its bytes.
func (e *Encoder) EncodeStr(s string) error {
	if err := e.c.codeLeaf(SchemaStr); err != nil {
		return err
	}
	if !utf8.ValidString(s) {
		return e.c.fail(errf(ErrInvalidUtf8, "str is not valid utf-8"))
	}
	if err := e.writeVarUint(Uint128FromUint64(uint64(len(s)))); err != nil {
		return err
	}
	return e.write([]byte(s))
}

// EncodeBytes encodes a byte string as a varint length followed by its
// bytes.
func (e *Encoder) EncodeBytes(b []byte) error {
	if err := e.c.codeLeaf(SchemaBytes); err != nil {
		return err
	}
	if err := e.writeVarUint(Uint128FromUint64(uint64(len(b)))); err != nil {
		return err
	}
	return e.write(b)
}

// EncodeUnit encodes the unit value as zero bytes.
func (e *Encoder) EncodeUnit() error {
	return e.c.codeLeaf(SchemaUnit)
}

// EncodeNone encodes an empty option as a single 0x00 byte.
func (e *Encoder) EncodeNone() error {
	if err := e.c.codeNone(); err != nil {
		return err
	}
	return e.write([]byte{0})
}

// BeginSome encodes the 0x01 option tag; the inner value follows and
// auto-finishes the option.
func (e *Encoder) BeginSome() error {
	if err := e.c.beginSome(); err != nil {
		return err
	}
	return e.write([]byte{1})
}

// BeginSeq starts a seq of exactly length elements, writing a varint
// count for a variable-length schema and nothing for a fixed-length one.
// Encode each element after a BeginSeqElem call, then call FinishSeq.
func (e *Encoder) BeginSeq(length int) error {
	if length < 0 {
		return e.c.fail(errf(ErrNonConforming, "negative seq len %d", length))
	}
	s, err := e.c.expect("seq")
	if err != nil {
		return err
	}
	if err := e.c.beginSeq(uint64(length)); err != nil {
		return err
	}
	if s.Len == nil {
		return e.writeVarUint(Uint128FromUint64(uint64(length)))
	}
	return nil
}

// BeginSeqElem starts the next seq element.
func (e *Encoder) BeginSeqElem() error {
	return e.c.beginSeqElem()
}

// FinishSeq finishes a seq after exactly the promised element count.
func (e *Encoder) FinishSeq() error {
	return e.c.finishSeq()
}

// BeginTuple starts a tuple. Encode each element after a BeginTupleElem
// call, then call FinishTuple.
func (e *Encoder) BeginTuple() error {
	return e.c.beginTuple()
}

// BeginTupleElem starts the next tuple element.
func (e *Encoder) BeginTupleElem() error {
	return e.c.beginTupleElem()
}

// FinishTuple finishes a tuple after all of its elements.
func (e *Encoder) FinishTuple() error {
	return e.c.finishTuple()
}

// BeginStruct starts a struct. Encode each field after a BeginField
// call, then call FinishStruct.
func (e *Encoder) BeginStruct() error {
	return e.c.beginStruct()
}

// BeginField starts the next struct field, which must carry the given
// name. Names are schema identity only; they are not written.
func (e *Encoder) BeginField(name string) error {
	return e.c.beginField(name)
}

// FinishStruct finishes a struct after all of its fields.
func (e *Encoder) FinishStruct() error {
	return e.c.finishStruct()
}

// BeginEnum writes the ordinal of the selected variant; the variant's
// inner value follows and auto-finishes the enum. An empty name skips
// the variant name check.
func (e *Encoder) BeginEnum(ord int, name string) error {
	n, err := e.c.beginEnum()
	if err != nil {
		return err
	}
	if err := e.c.beginEnumVariant(ord, name); err != nil {
		return err
	}
	if err := writeOrdinal(e.w, ord, n); err != nil {
		return e.c.fail(err)
	}
	return nil
}

// Finish reports whether the message was encoded completely.
func (e *Encoder) Finish() error {
	return e.c.finishOrErr()
}

func (e *Encoder) writeVarUint(n Uint128) error {
	if err := writeVarUint(e.w, n); err != nil {
		return e.c.fail(err)
	}
	return nil
}

func (e *Encoder) writeVarSint(n Int128) error {
	if err := writeVarSint(e.w, n); err != nil {
		return e.c.fail(err)
	}
	return nil
}
