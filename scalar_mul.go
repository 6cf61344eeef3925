package blsfr

import "math/bits"

// debugCIOS enables the accumulator overflow assertion in montMul. The top
// limb of the 5-limb accumulator must absorb every carry for canonical
// inputs; the checks compile away when false.
const debugCIOS = false

// mac computes a*b + c + d, returning the low and high 64-bit halves.
// The true result always fits in 128 bits.
func mac(a, b, c, d uint64) (lo, hi uint64) {
	hi, lo = bits.Mul64(a, b)
	var carry uint64
	lo, carry = bits.Add64(lo, c, 0)
	hi += carry
	lo, carry = bits.Add64(lo, d, 0)
	hi += carry
	return lo, hi
}

// montMul computes the Montgomery product out = a*b*R⁻¹ mod P using the
// CIOS method: four outer iterations, each interleaving a multiply column
// with a reduction column over a 5-limb accumulator.
func montMul(out, a, b *Scalar) {
	var r0, r1, r2, r3, r4 uint64

	for i := 0; i < 4; i++ {
		bi := b.d[i]

		// Multiply column: r += a * b[i]
		var u uint64
		r0, u = mac(a.d[0], bi, r0, u)
		r1, u = mac(a.d[1], bi, r1, u)
		r2, u = mac(a.d[2], bi, r2, u)
		r3, u = mac(a.d[3], bi, r3, u)
		var c uint64
		r4, c = bits.Add64(r4, u, 0)
		if debugCIOS && c != 0 {
			panic("blsfr: CIOS accumulator overflow")
		}

		// Reduction column: fold in m*P so the bottom limb cancels, then
		// shift the accumulator down one limb.
		m := r0 * ScalarInv
		_, carry := mac(m, scalarP0, r0, 0)
		r0, carry = mac(m, scalarP1, r1, carry)
		r1, carry = mac(m, scalarP2, r2, carry)
		r2, carry = mac(m, scalarP3, r3, carry)
		r3, r4 = bits.Add64(r4, carry, 0)
	}

	// The accumulator now holds a value below 2P. Subtract the modulus when
	// the top limb is set or no borrow occurred.
	var res, tmp Scalar
	res.d = [4]uint64{r0, r1, r2, r3}
	var borrow uint64
	tmp.d[0], borrow = bits.Sub64(r0, scalarP0, 0)
	tmp.d[1], borrow = bits.Sub64(r1, scalarP1, borrow)
	tmp.d[2], borrow = bits.Sub64(r2, scalarP2, borrow)
	tmp.d[3], borrow = bits.Sub64(r3, scalarP3, borrow)
	res.Cmov(&tmp, int(r4|(borrow^1)))

	*out = res
}

// MulMont computes the Montgomery product r = a*b*R⁻¹ mod P. With both
// operands in Montgomery form the result stays in Montgomery form.
func (r *Scalar) MulMont(a, b *Scalar) {
	montMul(r, a, b)
}

// SqrMont computes the Montgomery square r = a²·R⁻¹ mod P.
func (r *Scalar) SqrMont(a *Scalar) {
	montMul(r, a, a)
}

// ToMontgomery converts a normal-form scalar into Montgomery form:
// r = a*R mod P.
func (r *Scalar) ToMontgomery(a *Scalar) {
	montMul(r, a, &ScalarR2)
}

// FromMontgomery converts a Montgomery-form scalar back to normal form:
// r = a*R⁻¹ mod P.
func (r *Scalar) FromMontgomery(a *Scalar) {
	one := ScalarOne
	montMul(r, a, &one)
}

// Exp computes r = base^exp mod P by right-to-left square-and-multiply.
// base and r are in Montgomery form; exp is a raw 256-bit integer, not a
// field element. The bit scan branches on exponent bits, so exponents are
// assumed public; the squaring runs on every iteration regardless.
func (r *Scalar) Exp(base, exp *Scalar) {
	var res Scalar
	res.ToMontgomery(&ScalarOne)

	b := *base
	for i := 0; i < 4; i++ {
		w := exp.d[i]
		for j := 0; j < 64; j++ {
			if w&1 != 0 {
				res.MulMont(&res, &b)
			}
			b.SqrMont(&b)
			w >>= 1
		}
	}
	b.clear()
	*r = res
}

// Inverse computes r = a⁻¹ mod P via Fermat's little theorem: a^(P-2).
// Input and output are in Montgomery form. Inverting zero yields zero;
// callers must guard.
func (r *Scalar) Inverse(a *Scalar) {
	exp := ScalarModulus
	var borrow uint64
	exp.d[0], borrow = bits.Sub64(exp.d[0], 2, 0)
	exp.d[1], borrow = bits.Sub64(exp.d[1], 0, borrow)
	exp.d[2], borrow = bits.Sub64(exp.d[2], 0, borrow)
	exp.d[3], _ = bits.Sub64(exp.d[3], 0, borrow)

	r.Exp(a, &exp)
}

// BatchInverse inverts a slice of Montgomery-form scalars with a single
// Inverse call using Montgomery's trick. All inputs must be nonzero: one
// zero entry zeroes the running product and with it every output. Unlike the
// serial kernels it allocates a scratch slice of len(a) scalars.
func BatchInverse(out, a []Scalar) {
	if len(out) != len(a) {
		panic("output length must match input length")
	}
	n := len(a)
	if n == 0 {
		return
	}

	// s_i = a_0 * a_1 * ... * a_{i-1}
	s := make([]Scalar, n)
	s[0].ToMontgomery(&ScalarOne)
	for i := 1; i < n; i++ {
		s[i].MulMont(&s[i-1], &a[i-1])
	}

	// u = (a_0 * a_1 * ... * a_{n-1})^-1
	var u Scalar
	u.MulMont(&s[n-1], &a[n-1])
	u.Inverse(&u)

	// out_i = (a_0 * ... * a_{i-1}) * (a_0 * ... * a_i)^-1
	//
	// Loop backwards so out may alias a.
	for i := n - 1; i >= 0; i-- {
		var t Scalar
		t.MulMont(&u, &s[i])
		u.MulMont(&u, &a[i])
		out[i] = t
	}
}
