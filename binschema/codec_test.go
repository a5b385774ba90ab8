package binschema

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustEncodeValue(t *testing.T, s *Schema, v *Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodeValue(s, v, &buf); err != nil {
		t.Fatalf("EncodeValue failed: %v", err)
	}
	return buf.Bytes()
}

func mustDecodeValue(t *testing.T, s *Schema, data []byte) *Value {
	t.Helper()
	v, err := DecodeValue(s, bytes.NewReader(data))
	if err != nil {
		t.Fatalf("DecodeValue failed: %v", err)
	}
	return v
}

func linkedList(values ...int32) *Value {
	node := None()
	for i := len(values) - 1; i >= 0; i-- {
		node = Some(Struct(
			FieldVal("value", I32(values[i])),
			FieldVal("next", node),
		))
	}
	// the outermost node is not wrapped in an option
	inner, _ := node.AsOption()
	return inner
}

func TestEncodeValue_Vectors(t *testing.T) {
	abcEnum := EnumSchema(
		VariantOf("A", UnitSchema()),
		VariantOf("B", UnitSchema()),
		VariantOf("C", UnitSchema()),
	)

	tests := []struct {
		name   string
		schema *Schema
		value  *Value
		want   []byte
	}{
		{"bool true", ScalarSchema(ScalarBool), Bool(true), []byte{0x01}},
		{"bool false", ScalarSchema(ScalarBool), Bool(false), []byte{0x00}},
		{"u8", ScalarSchema(ScalarU8), U8(0xAB), []byte{0xAB}},
		{"u16", ScalarSchema(ScalarU16), U16(0x1234), []byte{0x34, 0x12}},
		{"u64 zero", ScalarSchema(ScalarU64), U64(0), []byte{0x00}},
		{"u64 127", ScalarSchema(ScalarU64), U64(127), []byte{0x7F}},
		{"u64 128", ScalarSchema(ScalarU64), U64(128), []byte{0x80, 0x01}},
		{"u64 16384", ScalarSchema(ScalarU64), U64(16384), []byte{0x80, 0x80, 0x01}},
		{"i8", ScalarSchema(ScalarI8), I8(-1), []byte{0xFF}},
		{"i16", ScalarSchema(ScalarI16), I16(-2), []byte{0xFE, 0xFF}},
		{"i64 zero", ScalarSchema(ScalarI64), I64(0), []byte{0x00}},
		{"i64 -1", ScalarSchema(ScalarI64), I64(-1), []byte{0x40}},
		{"i64 63", ScalarSchema(ScalarI64), I64(63), []byte{0x3F}},
		{"i64 64", ScalarSchema(ScalarI64), I64(64), []byte{0x80, 0x01}},
		{"i64 -65", ScalarSchema(ScalarI64), I64(-65), []byte{0xC0, 0x01}},
		{"f32", ScalarSchema(ScalarF32), F32(1.0), []byte{0x00, 0x00, 0x80, 0x3F}},
		{"f64", ScalarSchema(ScalarF64), F64(1.0), []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F}},
		{"char ascii", ScalarSchema(ScalarChar), Char('A'), []byte{0x41}},
		{"char multibyte", ScalarSchema(ScalarChar), Char('€'), []byte{0xAC, 0x41}},
		{"str empty", StrSchema(), Str(""), []byte{0x00}},
		{"str hi", StrSchema(), Str("hi"), []byte{0x02, 0x68, 0x69}},
		{"bytes", BytesSchema(), Bytes([]byte{0xDE, 0xAD}), []byte{0x02, 0xDE, 0xAD}},
		{"unit", UnitSchema(), Unit(), []byte{}},
		{"option none", OptionSchema(StrSchema()), None(), []byte{0x00}},
		{"option some", OptionSchema(ScalarSchema(ScalarBool)), Some(Bool(true)), []byte{0x01, 0x01}},
		{"var seq", SeqSchema(ScalarSchema(ScalarU8)), Seq(U8(7), U8(8)), []byte{0x02, 0x07, 0x08}},
		{"fixed seq", FixedSeqSchema(2, ScalarSchema(ScalarU8)), Seq(U8(7), U8(8)), []byte{0x07, 0x08}},
		{"empty var seq", SeqSchema(StrSchema()), Seq(), []byte{0x00}},
		{"tuple", TupleSchema(ScalarSchema(ScalarU8), StrSchema()),
			Tuple(U8(9), Str("a")), []byte{0x09, 0x01, 0x61}},
		{"enum variant b", abcEnum, Enum(1, "B", Unit()), []byte{0x01}},
		{"linked list", linkedListSchema(),
			linkedList(7, 8), []byte{0x07, 0x01, 0x08, 0x00}},
		{"tree", treeSchema(),
			Enum(0, "Branch", Struct(
				FieldVal("left", Enum(1, "Leaf", I32(1))),
				FieldVal("right", Enum(1, "Leaf", I32(-1))),
			)),
			[]byte{0x00, 0x01, 0x01, 0x01, 0x40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEncodeValue(t, tt.schema, tt.value)
			if !bytes.Equal(tt.want, got) {
				t.Errorf("bytes mismatch: got % x, want % x", got, tt.want)
			}

			// determinism: encoding again is byte-identical
			again := mustEncodeValue(t, tt.schema, tt.value)
			if !bytes.Equal(got, again) {
				t.Errorf("encoding is not deterministic: % x vs % x", got, again)
			}
		})
	}
}

func TestEnum_OrdinalWidthOnWire(t *testing.T) {
	variants := func(n int) []SchemaVariant {
		out := make([]SchemaVariant, n)
		for i := range out {
			out[i] = VariantOf("V", UnitSchema())
		}
		return out
	}

	// 256 variants keep a one-byte discriminant; 257 need two
	got := mustEncodeValue(t, EnumSchema(variants(256)...), Enum(255, "V", Unit()))
	if diff := cmp.Diff([]byte{0xFF}, got); diff != "" {
		t.Errorf("256-variant enum (-want +got):\n%s", diff)
	}
	got = mustEncodeValue(t, EnumSchema(variants(257)...), Enum(256, "V", Unit()))
	if diff := cmp.Diff([]byte{0x00, 0x01}, got); diff != "" {
		t.Errorf("257-variant enum (-want +got):\n%s", diff)
	}

	// single variant: zero-byte discriminant
	got = mustEncodeValue(t, EnumSchema(variants(1)...), Enum(0, "V", Unit()))
	if len(got) != 0 {
		t.Errorf("1-variant enum encoded as % x, want no bytes", got)
	}
}

func TestRoundTrip_Values(t *testing.T) {
	pairs := []struct {
		name   string
		schema *Schema
		value  *Value
	}{
		{"u32 max", ScalarSchema(ScalarU32), U32(math.MaxUint32)},
		{"u64 max", ScalarSchema(ScalarU64), U64(math.MaxUint64)},
		{"u128 max", ScalarSchema(ScalarU128), U128(Uint128{Hi: math.MaxUint64, Lo: math.MaxUint64})},
		{"i32 min", ScalarSchema(ScalarI32), I32(math.MinInt32)},
		{"i64 min", ScalarSchema(ScalarI64), I64(math.MinInt64)},
		{"i128 min", ScalarSchema(ScalarI128), I128(Int128{Hi: 0x8000000000000000})},
		{"f32", ScalarSchema(ScalarF32), F32(-2.5)},
		{"f64", ScalarSchema(ScalarF64), F64(math.SmallestNonzeroFloat64)},
		{"f64 inf", ScalarSchema(ScalarF64), F64(math.Inf(-1))},
		{"f64 nan", ScalarSchema(ScalarF64), F64(math.NaN())},
		{"char max", ScalarSchema(ScalarChar), Char(0x10FFFF)},
		{"str unicode", StrSchema(), Str("héllo wörld ∅")},
		{"bytes empty", BytesSchema(), Bytes(nil)},
		{"empty struct", StructSchema(), Struct()},
		{"empty tuple", TupleSchema(), Tuple()},
		{"nested option", OptionSchema(OptionSchema(StrSchema())), Some(Some(Str("x")))},
		{"nested option none", OptionSchema(OptionSchema(StrSchema())), Some(None())},
		{"seq of structs", SeqSchema(StructSchema(
			FieldOf("id", ScalarSchema(ScalarU64)),
			FieldOf("name", StrSchema()),
		)), Seq(
			Struct(FieldVal("id", U64(1)), FieldVal("name", Str("a"))),
			Struct(FieldVal("id", U64(2)), FieldVal("name", Str("b"))),
		)},
		{"long list", linkedListSchema(), linkedList(1, -2, 3, -4, 5, -6, 7, -8)},
		{"deep tree", treeSchema(),
			Enum(0, "Branch", Struct(
				FieldVal("left", Enum(0, "Branch", Struct(
					FieldVal("left", Enum(1, "Leaf", I32(1))),
					FieldVal("right", Enum(1, "Leaf", I32(2))),
				))),
				FieldVal("right", Enum(1, "Leaf", I32(3))),
			))},
		{"fixed seq of tuples", FixedSeqSchema(2, TupleSchema(ScalarSchema(ScalarBool), ScalarSchema(ScalarU8))),
			Seq(Tuple(Bool(true), U8(1)), Tuple(Bool(false), U8(2)))},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			data := mustEncodeValue(t, tt.schema, tt.value)

			// decode with trailing garbage: exactly the message must be
			// consumed, and nothing after it
			stream := append(append([]byte{}, data...), 0xAA, 0xBB)
			r := bytes.NewReader(stream)
			got, err := DecodeValue(tt.schema, r)
			if err != nil {
				t.Fatalf("DecodeValue failed: %v", err)
			}
			if r.Len() != 2 {
				t.Errorf("decoder consumed %d bytes, want %d", len(stream)-r.Len(), len(data))
			}
			if !got.Equal(tt.value) {
				t.Errorf("round trip mismatch:\n got %s\nwant %s", got, tt.value)
			}
		})
	}
}

func TestDecodeValue_Failures(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		data    []byte
		wantErr error
	}{
		{"bool 0x02", ScalarSchema(ScalarBool), []byte{0x02}, ErrOutOfRange},
		{"option tag 0x02", OptionSchema(StrSchema()), []byte{0x02}, ErrOutOfRange},
		{"u32 overflow", ScalarSchema(ScalarU32), []byte{0x80, 0x80, 0x80, 0x80, 0x10}, ErrOutOfRange},
		{"u64 overflow", ScalarSchema(ScalarU64),
			[]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x02}, ErrOutOfRange},
		{"i32 overflow", ScalarSchema(ScalarI32), []byte{0x80, 0x80, 0x80, 0x80, 0x20}, ErrOutOfRange},
		{"char surrogate", ScalarSchema(ScalarChar), []byte{0x80, 0xB0, 0x03}, ErrInvalidChar},
		{"char past max", ScalarSchema(ScalarChar), []byte{0x80, 0x80, 0x44}, ErrInvalidChar},
		{"str invalid utf-8", StrSchema(), []byte{0x01, 0xFF}, ErrInvalidUtf8},
		{"str cut short", StrSchema(), []byte{0x05, 0x68}, ErrEndOfStream},
		{"varint malformed", ScalarSchema(ScalarU64), bytes.Repeat([]byte{0x80}, 20), ErrMalformedVarint},
		{"enum ordinal out of range",
			EnumSchema(VariantOf("A", UnitSchema()), VariantOf("B", UnitSchema()), VariantOf("C", UnitSchema())),
			[]byte{0x03}, ErrOutOfRange},
		{"zero-variant enum", EnumSchema(), []byte{0x00}, ErrInvalidSchema},
		{"fixed seq cut short", FixedSeqSchema(3, ScalarSchema(ScalarU8)), []byte{0x01, 0x02}, ErrEndOfStream},
		{"var seq count cut short", SeqSchema(ScalarSchema(ScalarU8)), []byte{0x03, 0x01}, ErrEndOfStream},
		{"empty stream scalar", ScalarSchema(ScalarU8), nil, ErrEndOfStream},
		{"recurse past root", OptionSchema(RecurseSchema(9)), []byte{0x01}, ErrInvalidSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeValue(tt.schema, bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeValue_Failures(t *testing.T) {
	tests := []struct {
		name    string
		schema  *Schema
		value   *Value
		wantErr error
	}{
		{"kind mismatch", ScalarSchema(ScalarU8), Bool(true), ErrNonConforming},
		{"scalar width mismatch", ScalarSchema(ScalarU8), U16(1), ErrNonConforming},
		{"fixed seq too short", FixedSeqSchema(3, ScalarSchema(ScalarU8)), Seq(U8(1)), ErrNonConforming},
		{"fixed seq too long", FixedSeqSchema(1, ScalarSchema(ScalarU8)), Seq(U8(1), U8(2)), ErrNonConforming},
		{"tuple arity", TupleSchema(ScalarSchema(ScalarU8)), Tuple(U8(1), U8(2)), ErrNonConforming},
		{"struct field name", StructSchema(FieldOf("a", UnitSchema())),
			Struct(FieldVal("b", Unit())), ErrNonConforming},
		{"unknown variant ordinal",
			EnumSchema(VariantOf("A", UnitSchema())), Enum(4, "E", Unit()), ErrNonConforming},
		{"misnamed variant",
			EnumSchema(VariantOf("A", UnitSchema())), Enum(0, "B", Unit()), ErrNonConforming},
		{"zero-variant enum", EnumSchema(), Enum(0, "A", Unit()), ErrInvalidSchema},
		{"invalid char", ScalarSchema(ScalarChar), Char(0xD800), ErrInvalidChar},
		{"invalid utf-8 str", StrSchema(), Str("\xff\xfe"), ErrInvalidUtf8},
		{"recurse level 0", OptionSchema(RecurseSchema(0)), Some(Unit()), ErrInvalidSchema},
		{"recurse past root", OptionSchema(RecurseSchema(3)), Some(Unit()), ErrInvalidSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := EncodeValue(tt.schema, tt.value, &bytes.Buffer{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConforms(t *testing.T) {
	if err := Conforms(linkedListSchema(), linkedList(1, 2, 3)); err != nil {
		t.Errorf("conforming value rejected: %v", err)
	}
	err := Conforms(linkedListSchema(), Str("nope"))
	if !errors.Is(err, ErrNonConforming) {
		t.Errorf("got %v, want ErrNonConforming", err)
	}
}

func FuzzDecodeValue(f *testing.F) {
	schemas := []*Schema{
		linkedListSchema(),
		treeSchema(),
		SeqSchema(StrSchema()),
		TupleSchema(ScalarSchema(ScalarU64), OptionSchema(BytesSchema())),
		ScalarSchema(ScalarI128),
	}

	f.Add([]byte{0x07, 0x01, 0x08, 0x00})
	f.Add([]byte{0x00})
	f.Add([]byte{0x02, 0x01, 0x61, 0x00})
	f.Add(bytes.Repeat([]byte{0x80}, 32))

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, schema := range schemas {
			v, err := DecodeValue(schema, bytes.NewReader(data))
			if err != nil {
				continue
			}
			// anything that decodes must re-encode cleanly
			if err := Conforms(schema, v); err != nil {
				t.Errorf("decoded value does not conform under %s: %v", schema, err)
			}
		}
	})
}

func BenchmarkRoundTrip(b *testing.B) {
	schema := linkedListSchema()
	value := linkedList(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16)
	var buf bytes.Buffer

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := EncodeValue(schema, value, &buf); err != nil {
			b.Fatal(err)
		}
		if _, err := DecodeValue(schema, bytes.NewReader(buf.Bytes())); err != nil {
			b.Fatal(err)
		}
	}
}
