package binschema

import (
	"math/big"
)

// Uint128 is an unsigned 128-bit integer, stored as two 64-bit words.
type Uint128 struct {
	Hi uint64
	Lo uint64
}

// Uint128FromUint64 widens a uint64.
func Uint128FromUint64(v uint64) Uint128 {
	return Uint128{Lo: v}
}

// IsZero reports whether the value is zero.
func (u Uint128) IsZero() bool {
	return u.Hi == 0 && u.Lo == 0
}

// Shl returns u shifted left by k bits. k must be < 128.
func (u Uint128) Shl(k uint) Uint128 {
	switch {
	case k == 0:
		return u
	case k >= 64:
		return Uint128{Hi: u.Lo << (k - 64)}
	default:
		return Uint128{Hi: u.Hi<<k | u.Lo>>(64-k), Lo: u.Lo << k}
	}
}

// Shr returns u shifted right by k bits. k must be < 128.
func (u Uint128) Shr(k uint) Uint128 {
	switch {
	case k == 0:
		return u
	case k >= 64:
		return Uint128{Lo: u.Hi >> (k - 64)}
	default:
		return Uint128{Hi: u.Hi >> k, Lo: u.Lo>>k | u.Hi<<(64-k)}
	}
}

// Or returns the bitwise or of u and v.
func (u Uint128) Or(v Uint128) Uint128 {
	return Uint128{Hi: u.Hi | v.Hi, Lo: u.Lo | v.Lo}
}

// Not returns the bitwise complement of u.
func (u Uint128) Not() Uint128 {
	return Uint128{Hi: ^u.Hi, Lo: ^u.Lo}
}

// Uint64 narrows to uint64. ok is false if the value does not fit.
func (u Uint128) Uint64() (v uint64, ok bool) {
	return u.Lo, u.Hi == 0
}

// String returns the decimal representation.
func (u Uint128) String() string {
	n := new(big.Int).SetUint64(u.Hi)
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(u.Lo))
	return n.String()
}

// Int128 is a signed 128-bit integer in two's complement, stored as two
// 64-bit words. The sign lives in bit 63 of Hi.
type Int128 struct {
	Hi uint64
	Lo uint64
}

// Int128FromInt64 widens an int64, sign-extending into the high word.
func Int128FromInt64(v int64) Int128 {
	i := Int128{Lo: uint64(v)}
	if v < 0 {
		i.Hi = ^uint64(0)
	}
	return i
}

// IsNeg reports whether the value is negative.
func (i Int128) IsNeg() bool {
	return i.Hi>>63 != 0
}

// Bits returns the raw two's complement bit pattern.
func (i Int128) Bits() Uint128 {
	return Uint128{Hi: i.Hi, Lo: i.Lo}
}

// Int128FromBits reinterprets a bit pattern as a signed value.
func Int128FromBits(u Uint128) Int128 {
	return Int128{Hi: u.Hi, Lo: u.Lo}
}

// Int64 narrows to int64. ok is false if the value does not fit.
func (i Int128) Int64() (v int64, ok bool) {
	v = int64(i.Lo)
	// The high word must equal the sign extension of the low word.
	var ext uint64
	if v < 0 {
		ext = ^uint64(0)
	}
	return v, i.Hi == ext
}

// String returns the decimal representation.
func (i Int128) String() string {
	n := new(big.Int).SetUint64(i.Hi)
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(i.Lo))
	if i.IsNeg() {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return n.String()
}
