// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import "math/bits"

// uint128 holds a 128-bit column accumulator. With ten limbs a column of an
// uncarried product can exceed 64 bits, so all columns accumulate in
// two-word arithmetic.
type uint128 struct {
	lo, hi uint64
}

// mul64 returns a * b.
func mul64(a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	return uint128{lo, hi}
}

// addMul64 returns v + a * b.
func addMul64(v uint128, a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	lo, c := bits.Add64(lo, v.lo, 0)
	hi, _ = bits.Add64(hi, v.hi, c)
	return uint128{lo, hi}
}

// add64 returns v + a.
func add64(v uint128, a uint64) uint128 {
	lo, c := bits.Add64(v.lo, a, 0)
	return uint128{lo, v.hi + c}
}

// shiftRightBy26 returns a >> 26. a is assumed to be at most 90 bits.
func shiftRightBy26(a uint128) uint64 {
	return a.lo>>26 | a.hi<<38
}

// shiftRightBy25 returns a >> 25. a is assumed to be at most 89 bits.
func shiftRightBy25(a uint128) uint64 {
	return a.lo>>25 | a.hi<<39
}

// Multiply sets v = x * y, and returns v.
func (v *Element) Multiply(x, y *Element) *Element {
	v.l = mulLimbs(&x.l, &y.l)
	return v
}

// Square sets v = x * x, and returns v.
func (v *Element) Square(x *Element) *Element {
	v.l = sqrLimbs(&x.l)
	return v
}

// mulLimbs performs schoolbook multiplication over the ten-limb radix 2^25.5
// representation. Column k collects every a[i]*b[j] with i+j = k; terms that
// spill past the top limb (i+j >= 10) wrap around multiplied by 19, since
// 2^255 = 19 mod p. Limb i carries weight 2^ceil(25.5*i), so whenever i and
// j are both odd the pair's weights overshoot the column weight by a factor
// of two, compensated by pre-doubling the odd a limbs.
//
// Inputs may be uncarried. The interleaved carry after accumulation brings
// limbs near nominal, and the final Carry completes the job.
func mulLimbs(a, b *[10]uint64) [10]uint64 {
	a0, a1, a2, a3, a4 := a[0], a[1], a[2], a[3], a[4]
	a5, a6, a7, a8, a9 := a[5], a[6], a[7], a[8], a[9]
	b0, b1, b2, b3, b4 := b[0], b[1], b[2], b[3], b[4]
	b5, b6, b7, b8, b9 := b[5], b[6], b[7], b[8], b[9]

	b1_19 := 19 * b1
	b2_19 := 19 * b2
	b3_19 := 19 * b3
	b4_19 := 19 * b4
	b5_19 := 19 * b5
	b6_19 := 19 * b6
	b7_19 := 19 * b7
	b8_19 := 19 * b8
	b9_19 := 19 * b9

	a1_2 := 2 * a1
	a3_2 := 2 * a3
	a5_2 := 2 * a5
	a7_2 := 2 * a7
	a9_2 := 2 * a9

	c0 := mul64(a0, b0)
	c0 = addMul64(c0, a1_2, b9_19)
	c0 = addMul64(c0, a2, b8_19)
	c0 = addMul64(c0, a3_2, b7_19)
	c0 = addMul64(c0, a4, b6_19)
	c0 = addMul64(c0, a5_2, b5_19)
	c0 = addMul64(c0, a6, b4_19)
	c0 = addMul64(c0, a7_2, b3_19)
	c0 = addMul64(c0, a8, b2_19)
	c0 = addMul64(c0, a9_2, b1_19)

	c1 := mul64(a0, b1)
	c1 = addMul64(c1, a1, b0)
	c1 = addMul64(c1, a2, b9_19)
	c1 = addMul64(c1, a3, b8_19)
	c1 = addMul64(c1, a4, b7_19)
	c1 = addMul64(c1, a5, b6_19)
	c1 = addMul64(c1, a6, b5_19)
	c1 = addMul64(c1, a7, b4_19)
	c1 = addMul64(c1, a8, b3_19)
	c1 = addMul64(c1, a9, b2_19)

	c2 := mul64(a0, b2)
	c2 = addMul64(c2, a1_2, b1)
	c2 = addMul64(c2, a2, b0)
	c2 = addMul64(c2, a3_2, b9_19)
	c2 = addMul64(c2, a4, b8_19)
	c2 = addMul64(c2, a5_2, b7_19)
	c2 = addMul64(c2, a6, b6_19)
	c2 = addMul64(c2, a7_2, b5_19)
	c2 = addMul64(c2, a8, b4_19)
	c2 = addMul64(c2, a9_2, b3_19)

	c3 := mul64(a0, b3)
	c3 = addMul64(c3, a1, b2)
	c3 = addMul64(c3, a2, b1)
	c3 = addMul64(c3, a3, b0)
	c3 = addMul64(c3, a4, b9_19)
	c3 = addMul64(c3, a5, b8_19)
	c3 = addMul64(c3, a6, b7_19)
	c3 = addMul64(c3, a7, b6_19)
	c3 = addMul64(c3, a8, b5_19)
	c3 = addMul64(c3, a9, b4_19)

	c4 := mul64(a0, b4)
	c4 = addMul64(c4, a1_2, b3)
	c4 = addMul64(c4, a2, b2)
	c4 = addMul64(c4, a3_2, b1)
	c4 = addMul64(c4, a4, b0)
	c4 = addMul64(c4, a5_2, b9_19)
	c4 = addMul64(c4, a6, b8_19)
	c4 = addMul64(c4, a7_2, b7_19)
	c4 = addMul64(c4, a8, b6_19)
	c4 = addMul64(c4, a9_2, b5_19)

	c5 := mul64(a0, b5)
	c5 = addMul64(c5, a1, b4)
	c5 = addMul64(c5, a2, b3)
	c5 = addMul64(c5, a3, b2)
	c5 = addMul64(c5, a4, b1)
	c5 = addMul64(c5, a5, b0)
	c5 = addMul64(c5, a6, b9_19)
	c5 = addMul64(c5, a7, b8_19)
	c5 = addMul64(c5, a8, b7_19)
	c5 = addMul64(c5, a9, b6_19)

	c6 := mul64(a0, b6)
	c6 = addMul64(c6, a1_2, b5)
	c6 = addMul64(c6, a2, b4)
	c6 = addMul64(c6, a3_2, b3)
	c6 = addMul64(c6, a4, b2)
	c6 = addMul64(c6, a5_2, b1)
	c6 = addMul64(c6, a6, b0)
	c6 = addMul64(c6, a7_2, b9_19)
	c6 = addMul64(c6, a8, b8_19)
	c6 = addMul64(c6, a9_2, b7_19)

	c7 := mul64(a0, b7)
	c7 = addMul64(c7, a1, b6)
	c7 = addMul64(c7, a2, b5)
	c7 = addMul64(c7, a3, b4)
	c7 = addMul64(c7, a4, b3)
	c7 = addMul64(c7, a5, b2)
	c7 = addMul64(c7, a6, b1)
	c7 = addMul64(c7, a7, b0)
	c7 = addMul64(c7, a8, b9_19)
	c7 = addMul64(c7, a9, b8_19)

	c8 := mul64(a0, b8)
	c8 = addMul64(c8, a1_2, b7)
	c8 = addMul64(c8, a2, b6)
	c8 = addMul64(c8, a3_2, b5)
	c8 = addMul64(c8, a4, b4)
	c8 = addMul64(c8, a5_2, b3)
	c8 = addMul64(c8, a6, b2)
	c8 = addMul64(c8, a7_2, b1)
	c8 = addMul64(c8, a8, b0)
	c8 = addMul64(c8, a9_2, b9_19)

	c9 := mul64(a0, b9)
	c9 = addMul64(c9, a1, b8)
	c9 = addMul64(c9, a2, b7)
	c9 = addMul64(c9, a3, b6)
	c9 = addMul64(c9, a4, b5)
	c9 = addMul64(c9, a5, b4)
	c9 = addMul64(c9, a6, b3)
	c9 = addMul64(c9, a7, b2)
	c9 = addMul64(c9, a8, b1)
	c9 = addMul64(c9, a9, b0)

	return carryColumns(c0, c1, c2, c3, c4, c5, c6, c7, c8, c9)
}

// sqrLimbs is the squaring specialization of mulLimbs: a[i]*a[j] and
// a[j]*a[i] are the same term, so the diagonal is counted once and every
// off-diagonal product doubled, with a further doubling when both indices
// are odd. The multiplier count drops to roughly 55% of the full schoolbook.
func sqrLimbs(a *[10]uint64) [10]uint64 {
	a0, a1, a2, a3, a4 := a[0], a[1], a[2], a[3], a[4]
	a5, a6, a7, a8, a9 := a[5], a[6], a[7], a[8], a[9]

	d5 := 19 * a5
	d6 := 19 * a6
	d7 := 19 * a7
	d8 := 19 * a8
	d9 := 19 * a9

	a0_2 := 2 * a0
	a1_2 := 2 * a1
	a2_2 := 2 * a2
	a3_2 := 2 * a3
	a4_2 := 2 * a4
	a5_2 := 2 * a5
	a6_2 := 2 * a6
	a7_2 := 2 * a7
	a8_2 := 2 * a8
	a9_2 := 2 * a9
	a1_4 := 4 * a1
	a3_4 := 4 * a3
	a5_4 := 4 * a5
	a7_4 := 4 * a7

	c0 := mul64(a0, a0)
	c0 = addMul64(c0, a1_4, d9)
	c0 = addMul64(c0, a2_2, d8)
	c0 = addMul64(c0, a3_4, d7)
	c0 = addMul64(c0, a4_2, d6)
	c0 = addMul64(c0, a5_2, d5)

	c1 := mul64(a0_2, a1)
	c1 = addMul64(c1, a2_2, d9)
	c1 = addMul64(c1, a3_2, d8)
	c1 = addMul64(c1, a4_2, d7)
	c1 = addMul64(c1, a5_2, d6)

	c2 := mul64(a0_2, a2)
	c2 = addMul64(c2, a1_2, a1)
	c2 = addMul64(c2, a3_4, d9)
	c2 = addMul64(c2, a4_2, d8)
	c2 = addMul64(c2, a5_4, d7)
	c2 = addMul64(c2, a6, d6)

	c3 := mul64(a0_2, a3)
	c3 = addMul64(c3, a1_2, a2)
	c3 = addMul64(c3, a4_2, d9)
	c3 = addMul64(c3, a5_2, d8)
	c3 = addMul64(c3, a6_2, d7)

	c4 := mul64(a0_2, a4)
	c4 = addMul64(c4, a1_4, a3)
	c4 = addMul64(c4, a2, a2)
	c4 = addMul64(c4, a5_4, d9)
	c4 = addMul64(c4, a6_2, d8)
	c4 = addMul64(c4, a7_2, d7)

	c5 := mul64(a0_2, a5)
	c5 = addMul64(c5, a1_2, a4)
	c5 = addMul64(c5, a2_2, a3)
	c5 = addMul64(c5, a6_2, d9)
	c5 = addMul64(c5, a7_2, d8)

	c6 := mul64(a0_2, a6)
	c6 = addMul64(c6, a1_4, a5)
	c6 = addMul64(c6, a2_2, a4)
	c6 = addMul64(c6, a3_2, a3)
	c6 = addMul64(c6, a7_4, d9)
	c6 = addMul64(c6, a8, d8)

	c7 := mul64(a0_2, a7)
	c7 = addMul64(c7, a1_2, a6)
	c7 = addMul64(c7, a2_2, a5)
	c7 = addMul64(c7, a3_2, a4)
	c7 = addMul64(c7, a8_2, d9)

	c8 := mul64(a0_2, a8)
	c8 = addMul64(c8, a1_4, a7)
	c8 = addMul64(c8, a2_2, a6)
	c8 = addMul64(c8, a3_4, a5)
	c8 = addMul64(c8, a4, a4)
	c8 = addMul64(c8, a9_2, d9)

	c9 := mul64(a0_2, a9)
	c9 = addMul64(c9, a1_2, a8)
	c9 = addMul64(c9, a2_2, a7)
	c9 = addMul64(c9, a3_2, a6)
	c9 = addMul64(c9, a4_2, a5)

	return carryColumns(c0, c1, c2, c3, c4, c5, c6, c7, c8, c9)
}

// carryColumns narrows the 128-bit columns to limbs with an interleaved
// carry chain, folds the top overflow back in by 19, then finishes with a
// full Carry for the cascade a near-max limb can cause.
func carryColumns(c0, c1, c2, c3, c4, c5, c6, c7, c8, c9 uint128) [10]uint64 {
	var r Element
	r.l[0] = c0.lo & maskLow26Bits
	c1 = add64(c1, shiftRightBy26(c0))
	r.l[1] = c1.lo & maskLow25Bits
	c2 = add64(c2, shiftRightBy25(c1))
	r.l[2] = c2.lo & maskLow26Bits
	c3 = add64(c3, shiftRightBy26(c2))
	r.l[3] = c3.lo & maskLow25Bits
	c4 = add64(c4, shiftRightBy25(c3))
	r.l[4] = c4.lo & maskLow26Bits
	c5 = add64(c5, shiftRightBy26(c4))
	r.l[5] = c5.lo & maskLow25Bits
	c6 = add64(c6, shiftRightBy25(c5))
	r.l[6] = c6.lo & maskLow26Bits
	c7 = add64(c7, shiftRightBy26(c6))
	r.l[7] = c7.lo & maskLow25Bits
	c8 = add64(c8, shiftRightBy25(c7))
	r.l[8] = c8.lo & maskLow26Bits
	c9 = add64(c9, shiftRightBy26(c8))
	r.l[9] = c9.lo & maskLow25Bits
	r.l[0] += 19 * shiftRightBy25(c9)
	r.Carry()
	return r.l
}
