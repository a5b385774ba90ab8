// Package binschema implements a self-describing binary data format.
//
// The format has three layers:
//   - Schemas: tree-shaped type descriptors defining sets of legal values
//     and their byte representation
//   - Values: structured trees conforming to a schema
//   - Messages: byte strings produced by encoding a value under a schema
//
// A schema is itself a value under a fixed meta-schema, so schemas can be
// stored, transmitted, and introspected with the same machinery used for
// ordinary data. See MetaSchema, EncodeSchema, and DecodeSchema.
//
// # Data Model
//
// Scalars: u8-u128, i8-i128, f32, f64, char, bool
// Strings: str (UTF-8), bytes (raw)
// Containers: option, seq (fixed or variable length), tuple, struct, enum
// Special: unit (zero bytes), recurse (back-reference up the schema tree)
//
// # Wire Format
//
// Fixed-width scalars are little-endian. u32/u64/u128 and seq/str/bytes
// lengths use a base-128 varint with a continuation bit; i32/i64/i128 use
// a signed variant with the sign flag in the first byte. Enum
// discriminants are encoded in the minimum number of little-endian bytes
// that covers the largest ordinal (the variant count minus one), so a
// single-variant enum takes no bytes. Field and variant names are part of the
// schema, never of the message.
//
// # Two APIs
//
// The tree API (EncodeValue, DecodeValue) walks a Value against a Schema.
// The streaming API (Encoder, Decoder) lets a host push or pull one
// primitive at a time; every call is validated against the schema, so a
// host that knows its data shape statically never builds a Value tree.
//
// # Recursion
//
// Schemas are finite trees. Self-reference is expressed with Recurse(n),
// which resolves to the schema n steps up the ancestor path at traversal
// time. A singly linked list of i32:
//
//	StructSchema(
//		FieldOf("value", ScalarSchema(ScalarI32)),
//		FieldOf("next", OptionSchema(RecurseSchema(2))),
//	)
//
// Recursion depth during coding follows the nesting of the value being
// coded. Under a schema that uses Recurse, each nested level of the value
// adds frames to the coder's ancestor stack and, in the tree API, a level
// of Go call recursion, so depth grows with the payload; no depth limit
// is applied.
package binschema
