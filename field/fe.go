// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package field implements fast arithmetic modulo 2^255-19.
//
// Elements use ten limbs in radix 2^25.5, the representation that packs
// evenly into vector lanes for the batched operations (Mul4, Sqr8, ...).
package field

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
)

// Element represents an element of the field GF(2^255-19). Note that this
// is not a cryptographically secure group, and should only be used to
// interact with Point coordinates.
//
// This type works similarly to math/big.Int, and all arguments and receivers
// are allowed to alias.
//
// The zero value is a valid zero element.
type Element struct {
	// An element t represents the integer
	//     t.l[0] + t.l[1]*2^26 + t.l[2]*2^51 + t.l[3]*2^77 + t.l[4]*2^102 +
	//     t.l[5]*2^128 + t.l[6]*2^153 + t.l[7]*2^179 + t.l[8]*2^204 + t.l[9]*2^230
	//
	// that is, ten limbs averaging 25.5 bits: even limbs hold 26 bits, odd
	// limbs 25. Between carried operations all limbs stay below their nominal
	// widths. AddLazy, SubtractLazy and Negate may leave limbs a few bits
	// above; Multiply, Square and Carry accept such inputs.
	l [10]uint64
}

const (
	maskLow26Bits uint64 = (1 << 26) - 1
	maskLow25Bits uint64 = (1 << 25) - 1
)

var (
	feZero = &Element{}
	feOne  = &Element{l: [10]uint64{1}}
)

// bias2p is 2*p in limb form. Added before a limb-wise subtraction it
// guarantees no underflow as long as the subtrahend limbs do not exceed
// the bias itself: 2^27-38 for limb 0, 2^27-2 for the other even limbs,
// 2^26-2 for the odd ones. Carried inputs satisfy this with a bit to
// spare; Subtract and Negate therefore require carried inputs.
var bias2p = [10]uint64{
	0x7FFFFDA, 0x3FFFFFE, 0x7FFFFFE, 0x3FFFFFE, 0x7FFFFFE,
	0x3FFFFFE, 0x7FFFFFE, 0x3FFFFFE, 0x7FFFFFE, 0x3FFFFFE,
}

// Zero sets v = 0, and returns v.
func (v *Element) Zero() *Element {
	*v = *feZero
	return v
}

// One sets v = 1, and returns v.
func (v *Element) One() *Element {
	*v = *feOne
	return v
}

// Set sets v = a, and returns v.
func (v *Element) Set(a *Element) *Element {
	*v = *a
	return v
}

// carryPass propagates every limb's overflow into the next, folding the top
// limb's overflow back into limb 0 multiplied by 19.
func (v *Element) carryPass() *Element {
	var c uint64
	c = v.l[0] >> 26
	v.l[0] &= maskLow26Bits
	v.l[1] += c
	c = v.l[1] >> 25
	v.l[1] &= maskLow25Bits
	v.l[2] += c
	c = v.l[2] >> 26
	v.l[2] &= maskLow26Bits
	v.l[3] += c
	c = v.l[3] >> 25
	v.l[3] &= maskLow25Bits
	v.l[4] += c
	c = v.l[4] >> 26
	v.l[4] &= maskLow26Bits
	v.l[5] += c
	c = v.l[5] >> 25
	v.l[5] &= maskLow25Bits
	v.l[6] += c
	c = v.l[6] >> 26
	v.l[6] &= maskLow26Bits
	v.l[7] += c
	c = v.l[7] >> 25
	v.l[7] &= maskLow25Bits
	v.l[8] += c
	c = v.l[8] >> 26
	v.l[8] &= maskLow26Bits
	v.l[9] += c
	c = v.l[9] >> 25
	v.l[9] &= maskLow25Bits
	v.l[0] += 19 * c
	return v
}

// Carry brings all limbs below their nominal 26/25-bit widths, and returns v.
//
// Two full passes are required: a lazy subtraction's bias can leave a limb
// exactly at its mask value after the first pass, and the 19-fold wraparound
// into limb 0 can then cascade a second time.
func (v *Element) Carry() *Element {
	v.carryPass()
	v.carryPass()
	c := v.l[0] >> 26
	v.l[0] &= maskLow26Bits
	v.l[1] += c
	return v
}

// Reduce sets v to its canonical representative in [0, p), and returns v.
func (v *Element) Reduce() *Element {
	v.Carry()

	// If v >= p, adding 19 carries all the way out of the top limb. c is 1
	// exactly when the conditional subtraction of p is needed.
	c := (v.l[0] + 19) >> 26
	c = (v.l[1] + c) >> 25
	c = (v.l[2] + c) >> 26
	c = (v.l[3] + c) >> 25
	c = (v.l[4] + c) >> 26
	c = (v.l[5] + c) >> 25
	c = (v.l[6] + c) >> 26
	c = (v.l[7] + c) >> 25
	c = (v.l[8] + c) >> 26
	c = (v.l[9] + c) >> 25

	v.l[0] += 19 * c

	// The carry chain must not wrap around this time: the reduction identity
	// has already been applied, and the result is below p.
	c = v.l[0] >> 26
	v.l[0] &= maskLow26Bits
	v.l[1] += c
	c = v.l[1] >> 25
	v.l[1] &= maskLow25Bits
	v.l[2] += c
	c = v.l[2] >> 26
	v.l[2] &= maskLow26Bits
	v.l[3] += c
	c = v.l[3] >> 25
	v.l[3] &= maskLow25Bits
	v.l[4] += c
	c = v.l[4] >> 26
	v.l[4] &= maskLow26Bits
	v.l[5] += c
	c = v.l[5] >> 25
	v.l[5] &= maskLow25Bits
	v.l[6] += c
	c = v.l[6] >> 26
	v.l[6] &= maskLow26Bits
	v.l[7] += c
	c = v.l[7] >> 25
	v.l[7] &= maskLow25Bits
	v.l[8] += c
	c = v.l[8] >> 26
	v.l[8] &= maskLow26Bits
	v.l[9] += c
	v.l[9] &= maskLow25Bits

	return v
}

// Add sets v = a + b, and returns v.
func (v *Element) Add(a, b *Element) *Element {
	for i := range v.l {
		v.l[i] = a.l[i] + b.l[i]
	}
	return v.Carry()
}

// AddLazy sets v = a + b without carrying, and returns v.
func (v *Element) AddLazy(a, b *Element) *Element {
	for i := range v.l {
		v.l[i] = a.l[i] + b.l[i]
	}
	return v
}

// Subtract sets v = a - b, and returns v.
func (v *Element) Subtract(a, b *Element) *Element {
	return v.SubtractLazy(a, b).Carry()
}

// SubtractLazy sets v = a + 2*p - b without carrying, and returns v.
func (v *Element) SubtractLazy(a, b *Element) *Element {
	for i := range v.l {
		v.l[i] = a.l[i] + bias2p[i] - b.l[i]
	}
	return v
}

// Negate sets v = -a, and returns v. The result is left uncarried.
func (v *Element) Negate(a *Element) *Element {
	for i := range v.l {
		v.l[i] = bias2p[i] - a.l[i]
	}
	return v
}

var errInvalidEncoding = errors.New("curve25519: invalid field element encoding")

// SetBytes sets v to x, where x is a 32-byte little-endian encoding. If x is
// not of the right length, SetBytes returns nil and an error, and the
// receiver is unchanged.
//
// Consistently with RFC 7748, the most significant bit (the high bit of the
// last byte) is ignored, and non-canonical values (2^255-19 through 2^255-1)
// are accepted.
func (v *Element) SetBytes(x []byte) (*Element, error) {
	if len(x) != 32 {
		return nil, errInvalidEncoding
	}

	t0 := uint64(binary.LittleEndian.Uint32(x[0:4]))
	t1 := uint64(binary.LittleEndian.Uint32(x[4:8]))
	t2 := uint64(binary.LittleEndian.Uint32(x[8:12]))
	t3 := uint64(binary.LittleEndian.Uint32(x[12:16]))
	t4 := uint64(binary.LittleEndian.Uint32(x[16:20]))
	t5 := uint64(binary.LittleEndian.Uint32(x[20:24]))
	t6 := uint64(binary.LittleEndian.Uint32(x[24:28]))
	t7 := uint64(binary.LittleEndian.Uint32(x[28:32])) & 0x7FFFFFFF

	v.l[0] = t0 & maskLow26Bits
	v.l[1] = (t0>>26 | t1<<6) & maskLow25Bits
	v.l[2] = (t1>>19 | t2<<13) & maskLow26Bits
	v.l[3] = (t2>>13 | t3<<19) & maskLow25Bits
	v.l[4] = t3 >> 6 & maskLow26Bits
	v.l[5] = t4 & maskLow25Bits
	v.l[6] = (t4>>25 | t5<<7) & maskLow26Bits
	v.l[7] = (t5>>19 | t6<<13) & maskLow25Bits
	v.l[8] = (t6>>12 | t7<<20) & maskLow26Bits
	v.l[9] = t7 >> 6 & maskLow25Bits

	return v, nil
}

// Bytes returns the canonical 32-byte little-endian encoding of v.
func (v *Element) Bytes() []byte {
	// This function is outlined to make the allocations inline in the caller
	// rather than happen on the heap.
	var out [32]byte
	return v.bytes(&out)
}

func (v *Element) bytes(out *[32]byte) []byte {
	t := *v
	t.Reduce()

	// Limb i starts at bit floor(i*25.5): 0, 26, 51, 77, 102, 128, 153, 179,
	// 204, 230. Limbs 0-4 and limbs 5-9 each pack exactly into 16 bytes.
	h0 := t.l[0] | t.l[1]<<26 | t.l[2]<<51
	h1 := t.l[2]>>13 | t.l[3]<<13 | t.l[4]<<38
	h2 := t.l[5] | t.l[6]<<25 | t.l[7]<<51
	h3 := t.l[7]>>13 | t.l[8]<<12 | t.l[9]<<38

	binary.LittleEndian.PutUint64(out[0:8], h0)
	binary.LittleEndian.PutUint64(out[8:16], h1)
	binary.LittleEndian.PutUint64(out[16:24], h2)
	binary.LittleEndian.PutUint64(out[24:32], h3)
	return out[:]
}

// Equal returns 1 if v and u are equal, and 0 otherwise.
func (v *Element) Equal(u *Element) int {
	sa, sv := u.Bytes(), v.Bytes()
	return subtle.ConstantTimeCompare(sa, sv)
}

// IsZero returns 1 if v is zero, and 0 otherwise.
func (v *Element) IsZero() int {
	t := *v
	t.Reduce()
	var d uint64
	for _, l := range t.l {
		d |= l
	}
	return int((d|-d)>>63) ^ 1
}

// IsNegative returns 1 if v is negative, and 0 otherwise. The sign of a
// field element is the low bit of its canonical encoding.
func (v *Element) IsNegative() int {
	return int(v.Bytes()[0] & 1)
}

// Absolute sets v to |u|, and returns v.
func (v *Element) Absolute(u *Element) *Element {
	return v.condNeg(u, u.IsNegative())
}

// condNeg sets v to -u if cond == 1, and to u if cond == 0.
func (v *Element) condNeg(u *Element, cond int) *Element {
	tmp := new(Element).Negate(u).Carry()
	return v.Select(tmp, u, cond)
}

const mask64Bits uint64 = (1 << 64) - 1

// Select sets v to a if cond == 1, and to b if cond == 0.
func (v *Element) Select(a, b *Element, cond int) *Element {
	m := uint64(cond) * mask64Bits
	for i := range v.l {
		v.l[i] = (m & a.l[i]) | (^m & b.l[i])
	}
	return v
}

// Swap swaps v and u if cond == 1 or leaves them unchanged if cond == 0.
func (v *Element) Swap(u *Element, cond int) {
	m := uint64(cond) * mask64Bits
	for i := range v.l {
		t := m & (v.l[i] ^ u.l[i])
		v.l[i] ^= t
		u.l[i] ^= t
	}
}
