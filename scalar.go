// Package blsfr implements arithmetic in the scalar field of the BLS12-381
// curve, the prime field of order
//
//	P = 0x73EDA753299D7D483339D80809A1D80553BDA402FFFE5BFEFFFFFFFF00000001
//
// Elements are 255-bit values stored as 4 uint64 limbs, least significant
// first. Multiplicative routines operate on Montgomery form (x*R mod P with
// R = 2^256); additive routines work on either form as long as both operands
// share it. Every public operation leaves its output canonical, in [0, P).
package blsfr

import (
	"errors"
	"io"
	"math/big"
	"math/bits"
)

// Scalar represents an element of the BLS12-381 scalar field.
// This implementation uses 4 uint64 limbs in little-endian order.
type Scalar struct {
	d [4]uint64
}

// Field modulus constants
const (
	// Limbs of the field modulus P
	scalarP0 = 0xFFFFFFFF00000001
	scalarP1 = 0x53BDA402FFFE5BFE
	scalarP2 = 0x3339D80809A1D805
	scalarP3 = 0x73EDA753299D7D48

	// ScalarInv is -P⁻¹ mod 2⁶⁴, the single-limb constant consumed by the
	// CIOS reduction step.
	ScalarInv = 0xFFFFFFFEFFFFFFFF
)

// Scalar constants
var (
	// ScalarModulus is the field modulus P.
	ScalarModulus = Scalar{d: [4]uint64{scalarP0, scalarP1, scalarP2, scalarP3}}

	// ScalarR2 is R² mod P where R = 2^256, used to move values into
	// Montgomery form.
	ScalarR2 = Scalar{d: [4]uint64{
		0xC999E990F3F29C6D,
		0x2B6CEDCB87925C23,
		0x05D314967254398F,
		0x0748D9D99F59FF11,
	}}

	// ScalarZero represents the scalar 0
	ScalarZero = Scalar{}

	// ScalarOne represents the scalar 1 in normal form
	ScalarOne = Scalar{d: [4]uint64{1, 0, 0, 0}}

	// scalarPow255 is 2^255 mod P, used when folding a raw 256-bit value
	// into canonical range.
	scalarPow255 = Scalar{d: [4]uint64{
		0x00000000FFFFFFFF,
		0xAC425BFD0001A401,
		0xCCC627F7F65E27FA,
		0x0C1258ACD66282B7,
	}}
)

// ErrNotCanonical is returned by SetBytesCanonical when the encoded value is
// not below the field modulus.
var ErrNotCanonical = errors.New("scalar encoding is not canonical")

// NewScalar creates a scalar from a 32-byte little-endian array without
// canonicity checking.
func NewScalar(b32 []byte) *Scalar {
	if len(b32) != 32 {
		panic("input must be 32 bytes")
	}

	s := &Scalar{}
	s.SetBytes(b32)
	return s
}

// SetBytes sets a scalar from a 32-byte little-endian array. The value is
// not checked against the modulus; feeding a non-canonical value into the
// arithmetic routines can produce results outside [0, P).
func (r *Scalar) SetBytes(bin []byte) {
	if len(bin) != 32 {
		panic("input must be 32 bytes")
	}

	r.d[0] = readLE64(bin[0:8])
	r.d[1] = readLE64(bin[8:16])
	r.d[2] = readLE64(bin[16:24])
	r.d[3] = readLE64(bin[24:32])
}

// SetBytesCanonical sets a scalar from a 32-byte little-endian array and
// returns ErrNotCanonical if the value is not below the modulus.
func (r *Scalar) SetBytesCanonical(bin []byte) error {
	var s Scalar
	s.SetBytes(bin)
	if s.checkOverflow() {
		return ErrNotCanonical
	}
	*r = s
	return nil
}

// PutBytes writes the scalar to a 32-byte little-endian array. The stored
// limbs are written as-is; convert out of Montgomery form first when the
// integer value is wanted.
func (r *Scalar) PutBytes(bin []byte) {
	if len(bin) != 32 {
		panic("output buffer must be 32 bytes")
	}

	writeLE64(bin[0:8], r.d[0])
	writeLE64(bin[8:16], r.d[1])
	writeLE64(bin[16:24], r.d[2])
	writeLE64(bin[24:32], r.d[3])
}

// Bytes returns the 32-byte little-endian encoding of the stored limbs.
func (r *Scalar) Bytes() [32]byte {
	var out [32]byte
	r.PutBytes(out[:])
	return out
}

// SetUint64 sets a scalar to an unsigned integer value in normal form.
func (r *Scalar) SetUint64(v uint64) {
	r.d[0] = v
	r.d[1] = 0
	r.d[2] = 0
	r.d[3] = 0
}

// SetZero sets a scalar to zero.
func (r *Scalar) SetZero() {
	r.d[0] = 0
	r.d[1] = 0
	r.d[2] = 0
	r.d[3] = 0
}

// SetOne sets a scalar to one in normal form.
func (r *Scalar) SetOne() {
	r.SetUint64(1)
}

// Set copies a into r.
func (r *Scalar) Set(a *Scalar) {
	r.d = a.d
}

// checkOverflow checks if the scalar is >= the field modulus.
func (r *Scalar) checkOverflow() bool {
	if r.d[3] != scalarP3 {
		return r.d[3] > scalarP3
	}
	if r.d[2] != scalarP2 {
		return r.d[2] > scalarP2
	}
	if r.d[1] != scalarP1 {
		return r.d[1] > scalarP1
	}
	return r.d[0] >= scalarP0
}

// Add adds two scalars: r = (a + b) mod P. Both operands must share the same
// form; the result keeps it.
func (r *Scalar) Add(a, b *Scalar) {
	var carry uint64
	r.d[0], carry = bits.Add64(a.d[0], b.d[0], 0)
	r.d[1], carry = bits.Add64(a.d[1], b.d[1], carry)
	r.d[2], carry = bits.Add64(a.d[2], b.d[2], carry)
	r.d[3], carry = bits.Add64(a.d[3], b.d[3], carry)

	// Tentatively subtract the modulus. The subtracted limbs win when the
	// 257th bit is set or when no borrow occurred, meaning the sum >= P.
	var tmp Scalar
	var borrow uint64
	tmp.d[0], borrow = bits.Sub64(r.d[0], scalarP0, 0)
	tmp.d[1], borrow = bits.Sub64(r.d[1], scalarP1, borrow)
	tmp.d[2], borrow = bits.Sub64(r.d[2], scalarP2, borrow)
	tmp.d[3], borrow = bits.Sub64(r.d[3], scalarP3, borrow)

	r.Cmov(&tmp, int(carry|(borrow^1)))
}

// Sub subtracts two scalars: r = (a - b) mod P.
func (r *Scalar) Sub(a, b *Scalar) {
	var borrow uint64
	r.d[0], borrow = bits.Sub64(a.d[0], b.d[0], 0)
	r.d[1], borrow = bits.Sub64(a.d[1], b.d[1], borrow)
	r.d[2], borrow = bits.Sub64(a.d[2], b.d[2], borrow)
	r.d[3], borrow = bits.Sub64(a.d[3], b.d[3], borrow)

	// A final borrow means a < b; add the modulus back.
	var tmp Scalar
	var carry uint64
	tmp.d[0], carry = bits.Add64(r.d[0], scalarP0, 0)
	tmp.d[1], carry = bits.Add64(r.d[1], scalarP1, carry)
	tmp.d[2], carry = bits.Add64(r.d[2], scalarP2, carry)
	tmp.d[3], _ = bits.Add64(r.d[3], scalarP3, carry)

	r.Cmov(&tmp, int(borrow))
}

// Negate computes r = -a mod P.
func (r *Scalar) Negate(a *Scalar) {
	var zero Scalar
	r.Sub(&zero, a)
}

// Double computes r = 2a mod P.
func (r *Scalar) Double(a *Scalar) {
	r.Add(a, a)
}

// IsZero checks if the scalar is zero.
func (r *Scalar) IsZero() bool {
	return (r.d[0] | r.d[1] | r.d[2] | r.d[3]) == 0
}

// IsOne checks if the scalar is one in normal form.
func (r *Scalar) IsOne() bool {
	return ((r.d[0] ^ 1) | r.d[1] | r.d[2] | r.d[3]) == 0
}

// Equal checks if two scalars are equal.
func (r *Scalar) Equal(a *Scalar) bool {
	return ((r.d[0] ^ a.d[0]) | (r.d[1] ^ a.d[1]) | (r.d[2] ^ a.d[2]) | (r.d[3] ^ a.d[3])) == 0
}

// Cmp compares the stored limb values, returning -1, 0 or 1.
func (r *Scalar) Cmp(a *Scalar) int {
	for i := 3; i >= 0; i-- {
		if r.d[i] != a.d[i] {
			if r.d[i] < a.d[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Cmov conditionally assigns a to r. flag must be 0 or 1; the selection uses
// a mask, not a branch.
func (r *Scalar) Cmov(a *Scalar, flag int) {
	mask := uint64(-int64(flag))
	r.d[0] ^= mask & (r.d[0] ^ a.d[0])
	r.d[1] ^= mask & (r.d[1] ^ a.d[1])
	r.d[2] ^= mask & (r.d[2] ^ a.d[2])
	r.d[3] ^= mask & (r.d[3] ^ a.d[3])
}

// reduce256 folds an arbitrary 256-bit limb vector into canonical range.
// The value splits as lo + hi*2^255 with lo < 2^255 < 2P, so one conditional
// subtraction plus one conditional addition of 2^255 mod P suffice.
func (r *Scalar) reduce256(d [4]uint64) {
	hi := int(d[3] >> 63)
	d[3] &= 0x7FFFFFFFFFFFFFFF
	r.d = d

	var tmp Scalar
	var borrow uint64
	tmp.d[0], borrow = bits.Sub64(r.d[0], scalarP0, 0)
	tmp.d[1], borrow = bits.Sub64(r.d[1], scalarP1, borrow)
	tmp.d[2], borrow = bits.Sub64(r.d[2], scalarP2, borrow)
	tmp.d[3], borrow = bits.Sub64(r.d[3], scalarP3, borrow)
	r.Cmov(&tmp, int(borrow^1))

	var top Scalar
	top.Cmov(&scalarPow255, hi)
	r.Add(r, &top)
}

// SetRandom draws a uniformly random canonical scalar in normal form from
// rand (typically crypto/rand.Reader). Draws at or above the modulus are
// rejected and retried.
func (r *Scalar) SetRandom(rand io.Reader) error {
	var buf [32]byte
	for {
		if _, err := io.ReadFull(rand, buf[:]); err != nil {
			return err
		}
		// Mask to 255 bits so most draws land below the modulus.
		buf[31] &= 0x7F
		var s Scalar
		s.SetBytes(buf[:])
		if !s.checkOverflow() {
			*r = s
			return nil
		}
	}
}

// BigInt returns the stored limb value as a big.Int.
func (r *Scalar) BigInt() *big.Int {
	b := r.Bytes()
	// big.Int wants big-endian bytes.
	for i, j := 0, 31; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return new(big.Int).SetBytes(b[:])
}

// SetBigInt sets the scalar to v mod P in normal form.
func (r *Scalar) SetBigInt(v *big.Int) {
	m := ScalarModulus.BigInt()
	t := new(big.Int).Mod(v, m)
	if t.Sign() < 0 {
		t.Add(t, m)
	}
	var buf [32]byte
	t.FillBytes(buf[:])
	for i, j := 0, 31; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	r.SetBytes(buf[:])
}

// String returns the decimal rendering of the stored limb value.
func (r *Scalar) String() string {
	return r.BigInt().String()
}

// clear zeroes a scalar to avoid leaking sensitive material.
func (r *Scalar) clear() {
	r.d[0] = 0
	r.d[1] = 0
	r.d[2] = 0
	r.d[3] = 0
}

func readLE64(p []byte) uint64 {
	_ = p[7]
	return uint64(p[0]) | uint64(p[1])<<8 | uint64(p[2])<<16 | uint64(p[3])<<24 |
		uint64(p[4])<<32 | uint64(p[5])<<40 | uint64(p[6])<<48 | uint64(p[7])<<56
}

func writeLE64(p []byte, x uint64) {
	_ = p[7]
	p[0] = byte(x)
	p[1] = byte(x >> 8)
	p[2] = byte(x >> 16)
	p[3] = byte(x >> 24)
	p[4] = byte(x >> 32)
	p[5] = byte(x >> 40)
	p[6] = byte(x >> 48)
	p[7] = byte(x >> 56)
}
