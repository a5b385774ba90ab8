package binschema

import (
	"io"
	"math/bits"
)

// Ordinal wire format. A discriminant in [0, n) occupies the smallest
// number of little-endian bytes that covers the maximum value n-1. A
// single-variant space encodes as zero bytes: the discriminant is
// implicit and never touches the wire.

// ordinalWidth returns the encoded width in bytes for n variants.
// Callers must rule out n == 0 first; no ordinal exists there.
func ordinalWidth(n int) int {
	if n <= 1 {
		return 0
	}
	return (bits.Len(uint(n-1)) + 7) / 8
}

// writeOrdinal writes ord little-endian in exactly ordinalWidth(n) bytes.
func writeOrdinal(w io.Writer, ord, n int) error {
	width := ordinalWidth(n)
	if width == 0 {
		return nil
	}
	var buf [8]byte
	v := uint64(ord)
	for i := 0; i < width; i++ {
		buf[i] = byte(v)
		v >>= 8
	}
	return writeFull(w, buf[:width])
}

// readOrdinal reads exactly ordinalWidth(n) bytes and range-checks the
// assembled discriminant against n.
func readOrdinal(r io.Reader, n int) (int, error) {
	width := ordinalWidth(n)
	if width == 0 {
		return 0, nil
	}
	var buf [8]byte
	if err := readFull(r, buf[:width]); err != nil {
		return 0, err
	}
	v := uint64(0)
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(buf[i])
	}
	if v >= uint64(n) {
		return 0, errf(ErrOutOfRange, "ordinal %d out of range for %d variants", v, n)
	}
	return int(v), nil
}
