package binschema

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the encoding and decoding
// functions, Validate and ValueToSchema (other than an underlying
// sink/source error, which propagates verbatim) wraps exactly one of
// these sentinels; classify with errors.Is. The Value accessors (AsUint,
// AsStr and the like) return plain errors that wrap none of them.
var (
	// ErrEndOfStream indicates a read past the end of the source.
	ErrEndOfStream = errors.New("unexpected end of stream")
	// ErrMalformedVarint indicates a varint whose shift overflowed the
	// 128-bit cap.
	ErrMalformedVarint = errors.New("malformed varint")
	// ErrOutOfRange indicates a decoded integer exceeding its declared
	// width, an enum ordinal >= the variant count, an option tag or bool
	// byte not in {0, 1}, or a length that does not fit the platform.
	ErrOutOfRange = errors.New("value out of range")
	// ErrInvalidUtf8 indicates str contents that are not valid UTF-8.
	ErrInvalidUtf8 = errors.New("invalid utf-8")
	// ErrInvalidChar indicates a char value that is not a unicode scalar.
	ErrInvalidChar = errors.New("invalid char")
	// ErrInvalidSchema indicates a recurse level of 0 or one exceeding
	// the ancestor depth, or coding a value under a zero-variant enum.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrNonConforming indicates a value that violates a schema
	// constraint: wrong kind, fixed-length seq mismatch, arity mismatch,
	// unknown variant, misnamed field.
	ErrNonConforming = errors.New("non-conforming value")
	// ErrUsage indicates streaming API calls out of order: coding past
	// the end of a message, finishing a message before it is complete, or
	// a call that does not fit a seq, tuple, struct or enum in progress.
	// Finishing a container before all of its elements is ErrNonConforming.
	ErrUsage = errors.New("coder usage error")
)

// errf wraps a sentinel kind with a formatted message.
func errf(kind error, format string, args ...any) error {
	return fmt.Errorf("binschema: %w: "+format, append([]any{kind}, args...)...)
}
