package binschema

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustEncodeSchema(t *testing.T, s *Schema) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := EncodeSchema(s, &buf); err != nil {
		t.Fatalf("EncodeSchema failed: %v", err)
	}
	return buf.Bytes()
}

func TestMetaSchema_WellFormed(t *testing.T) {
	meta := MetaSchema()
	if err := meta.Validate(); err != nil {
		t.Fatalf("meta-schema does not validate: %v", err)
	}
	if len(meta.Variants) != 10 {
		t.Errorf("meta-schema has %d variants, want 10", len(meta.Variants))
	}
	if inner := meta.Variants[0].Inner; len(inner.Variants) != 14 {
		t.Errorf("scalar enum has %d variants, want 14", len(inner.Variants))
	}
}

func TestEncodeSchema_Vectors(t *testing.T) {
	tests := []struct {
		name   string
		schema *Schema
		want   []byte
	}{
		{"scalar u8", ScalarSchema(ScalarU8), []byte{0x00, 0x00}},
		{"scalar bool", ScalarSchema(ScalarBool), []byte{0x00, 0x0D}},
		{"str", StrSchema(), []byte{0x01}},
		{"bytes", BytesSchema(), []byte{0x02}},
		{"unit", UnitSchema(), []byte{0x03}},
		{"option str", OptionSchema(StrSchema()), []byte{0x04, 0x01}},
		// ordinal, len=none, inner scalar ordinals
		{"var seq u8", SeqSchema(ScalarSchema(ScalarU8)), []byte{0x05, 0x00, 0x00, 0x00}},
		// ordinal, len=some(3), inner str
		{"fixed seq str", FixedSeqSchema(3, StrSchema()), []byte{0x05, 0x01, 0x03, 0x01}},
		// ordinal, count, two inner schemas
		{"tuple", TupleSchema(StrSchema(), UnitSchema()), []byte{0x06, 0x02, 0x01, 0x03}},
		// ordinal, count, name "a", inner u8
		{"struct", StructSchema(FieldOf("a", ScalarSchema(ScalarU8))),
			[]byte{0x07, 0x01, 0x01, 0x61, 0x00, 0x00}},
		{"enum", EnumSchema(VariantOf("A", UnitSchema())),
			[]byte{0x08, 0x01, 0x01, 0x41, 0x03}},
		{"recurse", RecurseSchema(2), []byte{0x09, 0x02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustEncodeSchema(t, tt.schema)
			if !bytes.Equal(tt.want, got) {
				t.Errorf("bytes mismatch: got % x, want % x", got, tt.want)
			}
		})
	}
}

func TestSchemaRoundTrip(t *testing.T) {
	schemas := []*Schema{
		ScalarSchema(ScalarU8),
		ScalarSchema(ScalarI128),
		ScalarSchema(ScalarBool),
		StrSchema(),
		BytesSchema(),
		UnitSchema(),
		OptionSchema(OptionSchema(ScalarSchema(ScalarF64))),
		SeqSchema(StrSchema()),
		FixedSeqSchema(16, ScalarSchema(ScalarU8)),
		TupleSchema(),
		TupleSchema(StrSchema(), ScalarSchema(ScalarChar), UnitSchema()),
		StructSchema(),
		EnumSchema(),
		linkedListSchema(),
		treeSchema(),
		MetaSchema(),
	}

	for _, s := range schemas {
		t.Run(s.String(), func(t *testing.T) {
			data := mustEncodeSchema(t, s)

			stream := append(append([]byte{}, data...), 0xEE)
			r := bytes.NewReader(stream)
			got, err := DecodeSchema(r)
			if err != nil {
				t.Fatalf("DecodeSchema failed: %v", err)
			}
			if r.Len() != 1 {
				t.Errorf("decoder consumed %d bytes, want %d", len(stream)-r.Len(), len(data))
			}
			if !got.Equal(s) {
				t.Errorf("round trip mismatch (-want +got):\n%s", cmp.Diff(s, got))
			}
		})
	}
}

func TestMetaSchema_SelfEncoding(t *testing.T) {
	// encoding the meta-schema under itself is canonical: deterministic,
	// and a clean round trip
	first := mustEncodeSchema(t, MetaSchema())
	second := mustEncodeSchema(t, MetaSchema())
	if !bytes.Equal(first, second) {
		t.Fatal("self-encoding is not deterministic")
	}

	decoded, err := DecodeSchema(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("DecodeSchema failed: %v", err)
	}
	if !decoded.Equal(MetaSchema()) {
		t.Error("self-encoding did not round trip")
	}
}

func TestSchemaToValue_Conforms(t *testing.T) {
	// every schema's value form conforms to the meta-schema
	for _, s := range []*Schema{linkedListSchema(), treeSchema(), MetaSchema()} {
		if err := Conforms(MetaSchema(), SchemaToValue(s)); err != nil {
			t.Errorf("%s: %v", s, err)
		}
	}
}

func TestDecodeSchema_Failures(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty", nil, ErrEndOfStream},
		{"ordinal out of range", []byte{0x0A}, ErrOutOfRange},
		{"scalar ordinal out of range", []byte{0x00, 0x0E}, ErrOutOfRange},
		{"cut mid-struct", []byte{0x07, 0x01, 0x03, 0x61}, ErrEndOfStream},
		{"field name bad utf-8", []byte{0x07, 0x01, 0x01, 0xFF, 0x00, 0x00}, ErrInvalidUtf8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSchema(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func FuzzDecodeSchema(f *testing.F) {
	f.Add([]byte{0x00, 0x00})
	f.Add([]byte{0x09, 0x02})
	f.Add(mustEncodeSchemaFuzzSeed())
	f.Add([]byte{0x07, 0x01, 0x01, 0x61, 0x00, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := DecodeSchema(bytes.NewReader(data))
		if err != nil {
			return
		}
		// whatever decodes must encode back to the same schema
		var buf bytes.Buffer
		if err := EncodeSchema(s, &buf); err != nil {
			t.Fatalf("re-encode of decoded schema failed: %v", err)
		}
		again, err := DecodeSchema(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		if !again.Equal(s) {
			t.Errorf("schema round trip mismatch:\n got %s\nwant %s", again, s)
		}
	})
}

func mustEncodeSchemaFuzzSeed() []byte {
	var buf bytes.Buffer
	if err := EncodeSchema(MetaSchema(), &buf); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
