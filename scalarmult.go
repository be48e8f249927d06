// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curve25519

import (
	"encoding/binary"
	"math/bits"
)

// Scalars are 32-byte little-endian integers, interpreted mod nothing: the
// full 256-bit value multiplies the point. Callers needing arithmetic mod
// the group order reduce before calling in.

const (
	wnafWidth = 8
	wnafSize  = 257
)

// wnafRecode writes the width-8 non-adjacent form of x to r: every non-zero
// digit is odd and in [-127, 127], and any window of 8 consecutive digits
// holds at most one non-zero entry. The recoded value can briefly exceed
// 2^256 after a negative digit is folded back in, hence the fifth limb.
func wnafRecode(r *[wnafSize]int8, x *[32]byte) {
	var s [5]uint64
	s[0] = binary.LittleEndian.Uint64(x[0:8])
	s[1] = binary.LittleEndian.Uint64(x[8:16])
	s[2] = binary.LittleEndian.Uint64(x[16:24])
	s[3] = binary.LittleEndian.Uint64(x[24:32])

	for i := range r {
		r[i] = 0
	}

	for pos := 0; pos < wnafSize && s[0]|s[1]|s[2]|s[3]|s[4] != 0; pos++ {
		if s[0]&1 != 0 {
			digit := int64(s[0] & (1<<wnafWidth - 1))
			if digit >= 1<<(wnafWidth-1) {
				digit -= 1 << wnafWidth
			}
			r[pos] = int8(digit)

			if digit > 0 {
				borrow := uint64(digit)
				s[0], borrow = bits.Sub64(s[0], borrow, 0)
				s[1], borrow = bits.Sub64(s[1], 0, borrow)
				s[2], borrow = bits.Sub64(s[2], 0, borrow)
				s[3], borrow = bits.Sub64(s[3], 0, borrow)
				s[4], _ = bits.Sub64(s[4], 0, borrow)
			} else {
				carry := uint64(-digit)
				s[0], carry = bits.Add64(s[0], carry, 0)
				s[1], carry = bits.Add64(s[1], 0, carry)
				s[2], carry = bits.Add64(s[2], 0, carry)
				s[3], carry = bits.Add64(s[3], 0, carry)
				s[4], _ = bits.Add64(s[4], 0, carry)
			}
		}

		s[0] = s[0]>>1 | s[1]<<63
		s[1] = s[1]>>1 | s[2]<<63
		s[2] = s[2]>>1 | s[3]<<63
		s[3] = s[3]>>1 | s[4]<<63
		s[4] >>= 1
	}
}

// ScalarBaseMult sets v = x * B, where B is the canonical generator, and
// returns v. It runs in variable time with respect to x; use
// ScalarBaseMultConstTime for secret scalars.
func (v *Point) ScalarBaseMult(x *[32]byte) *Point {
	var digits [wnafSize]int8
	wnafRecode(&digits, x)

	v.setIdentity()
	started := false
	for i := wnafSize - 1; i >= 0; i-- {
		if started {
			v.Double(v)
		}
		if digit := digits[i]; digit != 0 {
			started = true
			negate := digit < 0
			if negate {
				digit = -digit
			}
			v.addPrecomputed(v, &basepointWnafTable[(digit-1)/2], negate)
		}
	}
	return v
}

// ScalarMult sets v = x * q, and returns v. It runs in variable time with
// respect to x.
func (v *Point) ScalarMult(x *[32]byte, q *Point) *Point {
	// Copy q so the accumulator may alias it.
	var p Point
	p.Set(q)

	v.setIdentity()
	for i := 255; i >= 0; i-- {
		v.Double(v)
		if x[i/8]>>(uint(i)%8)&1 != 0 {
			v.Add(v, &p)
		}
	}
	return v
}

// signedRadix16 splits x into 64 signed digits of four bits each, in
// [-8, 8]. The top bit of x must be zero so the last digit does not
// overflow.
func signedRadix16(x *[32]byte) [64]int8 {
	var digits [64]int8
	for i := 0; i < 32; i++ {
		digits[2*i] = int8(x[i] & 15)
		digits[2*i+1] = int8(x[i] >> 4)
	}

	// Recenter each digit to [-8, 8) by borrowing from the next.
	for i := 0; i < 63; i++ {
		carry := (digits[i] + 8) >> 4
		digits[i] -= carry << 4
		digits[i+1] += carry
	}

	return digits
}

// ScalarBaseMultConstTime sets v = x * B without branching or indexing on
// the value of x, for use with secret scalars. The top bit of x must be
// zero, which holds for any scalar reduced mod the group order.
func (v *Point) ScalarBaseMultConstTime(x *[32]byte) *Point {
	// Write x in signed radix 16 and split the digits by parity:
	//   x*B = sum(x_2j * 256^j * B) + 16 * sum(x_2j+1 * 256^j * B)
	// Each sum draws one constant-time lookup per table row, and the odd
	// sum is folded in with four doublings.
	digits := signedRadix16(x)

	var multiple Point
	v.setIdentity()
	for i := 1; i < 64; i += 2 {
		basepointTable[i/2].selectInto(&multiple, digits[i])
		v.addPrecomputed(v, &multiple, false)
	}

	v.doubleN(v, 4)

	for i := 0; i < 64; i += 2 {
		basepointTable[i/2].selectInto(&multiple, digits[i])
		v.addPrecomputed(v, &multiple, false)
	}

	return v
}

// DoubleScalarBaseMult sets v = a * A + b * B, where B is the canonical
// generator, and returns v. It runs in variable time and is the core
// operation of signature verification.
func (v *Point) DoubleScalarBaseMult(a *[32]byte, A *Point, b *[32]byte) *Point {
	var t1, t2 Point
	t1.ScalarMult(a, A)
	t2.ScalarBaseMult(b)
	return v.Add(&t1, &t2)
}

// MultiScalarMult sets v = sum(scalars[i] * points[i]), and returns v. It
// runs in variable time.
//
// The two slices must have the same length, or MultiScalarMult panics.
func (v *Point) MultiScalarMult(scalars [][32]byte, points []*Point) *Point {
	if len(scalars) != len(points) {
		panic("curve25519: called MultiScalarMult with different size inputs")
	}
	if len(scalars) == 0 {
		return v.setIdentity()
	}

	v.ScalarMult(&scalars[0], points[0])
	var t Point
	for i := 1; i < len(scalars); i++ {
		t.ScalarMult(&scalars[i], points[i])
		v.Add(v, &t)
	}
	return v
}

const (
	strausMaxBatch  = 32
	strausWindow    = 4
	strausTableSize = 1 << strausWindow
)

// MultiScalarMultStraus sets v = sum(scalars[i] * points[i]) using Straus's
// interleaved windowed method, sharing one doubling chain across the whole
// batch. Results match MultiScalarMult; batches outside [4, 32] fall back
// to it, as the per-point table setup stops paying off there.
//
// The two slices must have the same length, or MultiScalarMultStraus
// panics. It runs in variable time.
func (v *Point) MultiScalarMultStraus(scalars [][32]byte, points []*Point) *Point {
	if len(scalars) != len(points) {
		panic("curve25519: called MultiScalarMultStraus with different size inputs")
	}
	sz := len(scalars)
	if sz == 0 {
		return v.setIdentity()
	}
	if sz == 1 {
		return v.ScalarMult(&scalars[0], points[0])
	}
	if sz < 4 || sz > strausMaxBatch {
		return v.MultiScalarMult(scalars, points)
	}

	// Per-point tables of [0]P through [15]P.
	table := make([][strausTableSize]Point, sz)
	for i := range table {
		table[i][0].setIdentity()
		table[i][1].Set(points[i])
		table[i][2].Double(points[i])
		for j := 3; j < strausTableSize; j++ {
			table[i][j].Add(&table[i][j-1], points[i])
		}
	}

	v.setIdentity()
	for win := 63; win >= 0; win-- {
		if win < 63 {
			v.doubleN(v, strausWindow)
		}

		bitPos := win * strausWindow
		for i := 0; i < sz; i++ {
			w := scalars[i][bitPos/8] >> (uint(bitPos) % 8) & 0x0F
			if w != 0 {
				v.Add(v, &table[i][w])
			}
		}
	}

	return v
}

// MultiScalarMultBase is MultiScalarMult with the generator in the first
// slot: it sets v = scalars[0] * B + sum(scalars[1:][i] * points[i+1]).
// points[0] is ignored and may be nil. It runs in variable time.
//
// The two slices must have the same length, or MultiScalarMultBase panics.
func (v *Point) MultiScalarMultBase(scalars [][32]byte, points []*Point) *Point {
	if len(scalars) != len(points) {
		panic("curve25519: called MultiScalarMultBase with different size inputs")
	}
	if len(scalars) == 0 {
		return v.setIdentity()
	}

	v.ScalarBaseMult(&scalars[0])
	var t Point
	for i := 1; i < len(scalars); i++ {
		t.ScalarMult(&scalars[i], points[i])
		v.Add(v, &t)
	}
	return v
}
