package binschema

import (
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"
)

// Decoder reads one message from r under a schema, one primitive at a
// time. Every call is validated against the schema, and every decoded
// value is range-checked against its declared width. The first error is
// terminal for the whole message; no partial value is ever silently
// accepted. Sequences and strings grow as bytes arrive, so a hostile
// length prefix cannot force a large allocation up front.
type Decoder struct {
	c *coderState
	r io.Reader
}

// NewDecoder creates a decoder for one message under schema.
func NewDecoder(schema *Schema, r io.Reader) *Decoder {
	return &Decoder{c: newCoderState(schema), r: r}
}

func (d *Decoder) read(buf []byte) error {
	if err := readFull(d.r, buf); err != nil {
		return d.c.fail(err)
	}
	return nil
}

func (d *Decoder) readVarUint() (Uint128, error) {
	n, err := readVarUint(d.r)
	if err != nil {
		return Uint128{}, d.c.fail(err)
	}
	return n, nil
}

func (d *Decoder) readVarSint() (Int128, error) {
	n, err := readVarSint(d.r)
	if err != nil {
		return Int128{}, d.c.fail(err)
	}
	return n, nil
}

// DecodeU8 decodes a u8.
func (d *Decoder) DecodeU8() (uint8, error) {
	if err := d.c.codeScalar(ScalarU8); err != nil {
		return 0, err
	}
	var buf [1]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// DecodeU16 decodes a u16.
func (d *Decoder) DecodeU16() (uint16, error) {
	if err := d.c.codeScalar(ScalarU16); err != nil {
		return 0, err
	}
	var buf [2]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// DecodeU32 decodes a u32, range-checking the varint content.
func (d *Decoder) DecodeU32() (uint32, error) {
	if err := d.c.codeScalar(ScalarU32); err != nil {
		return 0, err
	}
	n, err := d.readVarUint()
	if err != nil {
		return 0, err
	}
	v, ok := n.Uint64()
	if !ok || v > math.MaxUint32 {
		return 0, d.c.fail(errf(ErrOutOfRange, "%s out of range for u32", n))
	}
	return uint32(v), nil
}

// DecodeU64 decodes a u64, range-checking the varint content.
func (d *Decoder) DecodeU64() (uint64, error) {
	if err := d.c.codeScalar(ScalarU64); err != nil {
		return 0, err
	}
	n, err := d.readVarUint()
	if err != nil {
		return 0, err
	}
	v, ok := n.Uint64()
	if !ok {
		return 0, d.c.fail(errf(ErrOutOfRange, "%s out of range for u64", n))
	}
	return v, nil
}

// DecodeU128 decodes a u128.
func (d *Decoder) DecodeU128() (Uint128, error) {
	if err := d.c.codeScalar(ScalarU128); err != nil {
		return Uint128{}, err
	}
	return d.readVarUint()
}

// DecodeI8 decodes an i8.
func (d *Decoder) DecodeI8() (int8, error) {
	if err := d.c.codeScalar(ScalarI8); err != nil {
		return 0, err
	}
	var buf [1]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return int8(buf[0]), nil
}

// DecodeI16 decodes an i16.
func (d *Decoder) DecodeI16() (int16, error) {
	if err := d.c.codeScalar(ScalarI16); err != nil {
		return 0, err
	}
	var buf [2]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return int16(binary.LittleEndian.Uint16(buf[:])), nil
}

// DecodeI32 decodes an i32, range-checking the varint content.
func (d *Decoder) DecodeI32() (int32, error) {
	if err := d.c.codeScalar(ScalarI32); err != nil {
		return 0, err
	}
	n, err := d.readVarSint()
	if err != nil {
		return 0, err
	}
	v, ok := n.Int64()
	if !ok || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, d.c.fail(errf(ErrOutOfRange, "%s out of range for i32", n))
	}
	return int32(v), nil
}

// DecodeI64 decodes an i64, range-checking the varint content.
func (d *Decoder) DecodeI64() (int64, error) {
	if err := d.c.codeScalar(ScalarI64); err != nil {
		return 0, err
	}
	n, err := d.readVarSint()
	if err != nil {
		return 0, err
	}
	v, ok := n.Int64()
	if !ok {
		return 0, d.c.fail(errf(ErrOutOfRange, "%s out of range for i64", n))
	}
	return v, nil
}

// DecodeI128 decodes an i128.
func (d *Decoder) DecodeI128() (Int128, error) {
	if err := d.c.codeScalar(ScalarI128); err != nil {
		return Int128{}, err
	}
	return d.readVarSint()
}

// DecodeF32 decodes an f32.
func (d *Decoder) DecodeF32() (float32, error) {
	if err := d.c.codeScalar(ScalarF32); err != nil {
		return 0, err
	}
	var buf [4]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:])), nil
}

// DecodeF64 decodes an f64.
func (d *Decoder) DecodeF64() (float64, error) {
	if err := d.c.codeScalar(ScalarF64); err != nil {
		return 0, err
	}
	var buf [8]byte
	if err := d.read(buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// DecodeChar decodes a char, checking that the codepoint is a unicode
// scalar.
func (d *Decoder) DecodeChar() (rune, error) {
	if err := d.c.codeScalar(ScalarChar); err != nil {
		return 0, err
	}
	n, err := d.readVarUint()
	if err != nil {
		return 0, err
	}
	cp, ok := n.Uint64()
	if !ok || cp > math.MaxUint32 || !utf8.ValidRune(rune(uint32(cp))) {
		return 0, d.c.fail(errf(ErrInvalidChar, "%s is not a unicode scalar", n))
	}
	return rune(uint32(cp)), nil
}

// DecodeBool decodes a bool, failing on any byte other than 0x00 or 0x01.
func (d *Decoder) DecodeBool() (bool, error) {
	if err := d.c.codeScalar(ScalarBool); err != nil {
		return false, err
	}
	var buf [1]byte
	if err := d.read(buf[:]); err != nil {
		return false, err
	}
	switch buf[0] {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, d.c.fail(errf(ErrOutOfRange, "%#x is not a valid bool", buf[0]))
	}
}

// DecodeStr decodes a str, validating UTF-8.
func (d *Decoder) DecodeStr() (string, error) {
	if err := d.c.codeLeaf(SchemaStr); err != nil {
		return "", err
	}
	buf, err := d.decodeLenPrefixed()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", d.c.fail(errf(ErrInvalidUtf8, "str bytes are not valid utf-8"))
	}
	return string(buf), nil
}

// DecodeBytes decodes a byte string.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	if err := d.c.codeLeaf(SchemaBytes); err != nil {
		return nil, err
	}
	return d.decodeLenPrefixed()
}

// DecodeUnit decodes the unit value, consuming nothing.
func (d *Decoder) DecodeUnit() error {
	return d.c.codeLeaf(SchemaUnit)
}

// BeginOption reads the option tag. It returns false for a finished
// none; for some, the inner value follows and auto-finishes the option.
func (d *Decoder) BeginOption() (bool, error) {
	s, err := d.c.expect("option")
	if err != nil {
		return false, err
	}
	if s.Kind != SchemaOption {
		return false, d.c.fail(errf(ErrNonConforming, "need %s, got option", s))
	}
	var buf [1]byte
	if err := d.read(buf[:]); err != nil {
		return false, err
	}
	switch buf[0] {
	case 0:
		return false, d.c.codeNone()
	case 1:
		return true, d.c.beginSome()
	default:
		return false, d.c.fail(errf(ErrOutOfRange, "%#x is not a valid option tag", buf[0]))
	}
}

// BeginSeq reads the element count of a variable-length seq (or takes
// the fixed length from the schema) and returns it. Decode each element
// after a BeginSeqElem call, then call FinishSeq.
func (d *Decoder) BeginSeq() (int, error) {
	s, err := d.c.expect("seq")
	if err != nil {
		return 0, err
	}
	if s.Kind != SchemaSeq {
		return 0, d.c.fail(errf(ErrNonConforming, "need %s, got seq", s))
	}
	var length uint64
	if s.Len != nil {
		length = *s.Len
	} else {
		n, err := d.readVarUint()
		if err != nil {
			return 0, err
		}
		v, ok := n.Uint64()
		if !ok {
			return 0, d.c.fail(errf(ErrOutOfRange, "seq len %s out of range", n))
		}
		length = v
	}
	if length > uint64(maxInt) {
		return 0, d.c.fail(errf(ErrOutOfRange, "seq len %d exceeds platform limits", length))
	}
	if err := d.c.beginSeq(length); err != nil {
		return 0, err
	}
	return int(length), nil
}

// BeginSeqElem starts the next seq element.
func (d *Decoder) BeginSeqElem() error {
	return d.c.beginSeqElem()
}

// FinishSeq finishes a seq after exactly the announced element count.
func (d *Decoder) FinishSeq() error {
	return d.c.finishSeq()
}

// BeginTuple starts a tuple. Decode each element after a BeginTupleElem
// call, then call FinishTuple.
func (d *Decoder) BeginTuple() error {
	return d.c.beginTuple()
}

// BeginTupleElem starts the next tuple element.
func (d *Decoder) BeginTupleElem() error {
	return d.c.beginTupleElem()
}

// FinishTuple finishes a tuple after all of its elements.
func (d *Decoder) FinishTuple() error {
	return d.c.finishTuple()
}

// BeginStruct starts a struct. Decode each field after a BeginField
// call, then call FinishStruct.
func (d *Decoder) BeginStruct() error {
	return d.c.beginStruct()
}

// BeginField starts the next struct field, which must carry the given
// name.
func (d *Decoder) BeginField(name string) error {
	return d.c.beginField(name)
}

// FinishStruct finishes a struct after all of its fields.
func (d *Decoder) FinishStruct() error {
	return d.c.finishStruct()
}

// BeginEnum reads and range-checks the variant ordinal and returns it;
// the variant's inner value follows and auto-finishes the enum.
func (d *Decoder) BeginEnum() (int, error) {
	n, err := d.c.beginEnum()
	if err != nil {
		return 0, err
	}
	ord, err := readOrdinal(d.r, n)
	if err != nil {
		return 0, d.c.fail(err)
	}
	if err := d.c.beginEnumVariant(ord, ""); err != nil {
		return 0, err
	}
	return ord, nil
}

// Finish reports whether the message was decoded completely.
func (d *Decoder) Finish() error {
	return d.c.finishOrErr()
}

func (d *Decoder) decodeLenPrefixed() ([]byte, error) {
	n, err := d.readVarUint()
	if err != nil {
		return nil, err
	}
	length, ok := n.Uint64()
	if !ok {
		return nil, d.c.fail(errf(ErrOutOfRange, "length %s out of range", n))
	}
	buf, err := readAlloc(d.r, length)
	if err != nil {
		return nil, d.c.fail(err)
	}
	return buf, nil
}
