package binschema

import (
	"io"
)

// Variable-length integer wire format. Unsigned integers are
// little-endian base-128: each byte carries 7 payload bits in bits 0-6,
// bit 7 is set iff another byte follows. Signed integers embed a sign
// flag in bit 6 of the first byte, which then carries only 6 payload
// bits; negative values are bitwise-complemented before encoding.
// Content is capped at 128 bits: a decoder whose accumulated shift
// reaches 128 with a continuation pending fails. Overlong (non-shortest)
// encodings below the cap decode successfully.

const (
	varintContinue = 0x80
	varintSign     = 0x40
	varintMaxBits  = 128

	// ceil(128/7) groups for unsigned, 1 + ceil((128-6)/7) for signed
	varintMaxBytes = 19
)

// writeVarUint writes an unsigned varint. Zero encodes as a single 0x00.
func writeVarUint(w io.Writer, n Uint128) error {
	var buf [varintMaxBytes]byte
	i := 0
	for {
		b := byte(n.Lo) & 0x7f
		n = n.Shr(7)
		if !n.IsZero() {
			b |= varintContinue
		}
		buf[i] = b
		i++
		if b&varintContinue == 0 {
			return writeFull(w, buf[:i])
		}
	}
}

// readVarUint reads an unsigned varint.
func readVarUint(r io.Reader) (Uint128, error) {
	var n Uint128
	shift := uint(0)
	for {
		b, err := readByte(r)
		if err != nil {
			return Uint128{}, err
		}
		if shift >= varintMaxBits {
			return Uint128{}, errf(ErrMalformedVarint,
				"uint content exceeds %d bits", varintMaxBits)
		}
		n = n.Or(Uint128FromUint64(uint64(b & 0x7f)).Shl(shift))
		if b&varintContinue == 0 {
			return n, nil
		}
		shift += 7
	}
}

// writeVarSint writes a signed varint.
func writeVarSint(w io.Writer, n Int128) error {
	neg := n.IsNeg()
	m := n.Bits()
	if neg {
		m = m.Not()
	}

	var buf [varintMaxBytes]byte
	b := byte(m.Lo) & 0x3f
	if neg {
		b |= varintSign
	}
	m = m.Shr(6)
	if !m.IsZero() {
		b |= varintContinue
	}
	buf[0] = b
	i := 1
	for buf[i-1]&varintContinue != 0 {
		b = byte(m.Lo) & 0x7f
		m = m.Shr(7)
		if !m.IsZero() {
			b |= varintContinue
		}
		buf[i] = b
		i++
	}
	return writeFull(w, buf[:i])
}

// readVarSint reads a signed varint.
func readVarSint(r io.Reader) (Int128, error) {
	b, err := readByte(r)
	if err != nil {
		return Int128{}, err
	}
	neg := b&varintSign != 0
	n := Uint128FromUint64(uint64(b & 0x3f))
	shift := uint(6)
	for b&varintContinue != 0 {
		b, err = readByte(r)
		if err != nil {
			return Int128{}, err
		}
		if shift >= varintMaxBits {
			return Int128{}, errf(ErrMalformedVarint,
				"sint content exceeds %d bits", varintMaxBits)
		}
		n = n.Or(Uint128FromUint64(uint64(b & 0x7f)).Shl(shift))
		shift += 7
	}
	if neg {
		n = n.Not()
	}
	return Int128FromBits(n), nil
}

// ============================================================
// Byte stream primitives
// ============================================================

// readFull reads exactly len(buf) bytes. A short read maps to
// ErrEndOfStream; any other source error propagates verbatim.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errf(ErrEndOfStream, "wanted %d bytes", len(buf))
		}
		return err
	}
	return nil
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// writeFull writes all of b, mapping a silent short write to
// io.ErrShortWrite. Sink errors propagate verbatim.
func writeFull(w io.Writer, b []byte) error {
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return io.ErrShortWrite
	}
	return nil
}

// readChunk bounds a single allocation while reading length-prefixed
// payloads, so an attacker-controlled prefix cannot force a huge
// allocation ahead of the bytes actually arriving.
const readChunk = 64 << 10

// readAlloc reads exactly n bytes, growing the buffer as bytes arrive.
func readAlloc(r io.Reader, n uint64) ([]byte, error) {
	if n > uint64(maxInt) {
		return nil, errf(ErrOutOfRange, "length %d exceeds platform limits", n)
	}
	buf := []byte(nil)
	for remaining := int(n); remaining > 0; {
		step := remaining
		if step > readChunk {
			step = readChunk
		}
		start := len(buf)
		buf = append(buf, make([]byte, step)...)
		if err := readFull(r, buf[start:]); err != nil {
			return nil, err
		}
		remaining -= step
	}
	return buf, nil
}

const maxInt = int(^uint(0) >> 1)
