// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curve25519

import (
	"crypto/subtle"

	"github.com/avatarlabs/curve25519/field"
)

// d is the curve constant -121665/121666 mod p.
var d = mustFieldElement([]byte{
	0xa3, 0x78, 0x59, 0x13, 0xca, 0x4d, 0xeb, 0x75,
	0xab, 0xd8, 0x41, 0x41, 0x4d, 0x0a, 0x70, 0x00,
	0x98, 0xe8, 0x79, 0x77, 0x79, 0x40, 0xc7, 0x8c,
	0x73, 0xfe, 0x6f, 0x2b, 0xee, 0x6c, 0x03, 0x52,
})

// feK is 2*d, the constant folded into the T product of the unified
// addition formula.
var feK = new(field.Element).Add(d, d)

func mustFieldElement(b []byte) *field.Element {
	e, err := new(field.Element).SetBytes(b)
	if err != nil {
		panic(err)
	}
	return e
}

// generator is the canonical generator of the prime-order subgroup, the
// point of y = 4/5 with positive x.
var generator = func() *Point {
	p, err := new(Point).SetBytes([]byte{
		0x58, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
		0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66, 0x66,
	})
	if err != nil {
		panic("curve25519: invalid generator encoding")
	}
	return p
}()

// intoAffine rescales v in place to Z = 1, and returns v.
func (v *Point) intoAffine() *Point {
	var zInv field.Element
	zInv.Invert(&v.z)
	field.Mul2(
		&v.x, &v.x, &zInv,
		&v.y, &v.y, &zInv)
	v.x.Reduce()
	v.y.Reduce()
	v.t.Multiply(&v.x, &v.y)
	v.z.One()
	return v
}

// intoPrecomputed converts v in place to the table encoding consumed by
// addPrecomputed, reusing the Point fields as (Y-X, Y+X, Z, k*T), and
// returns v.
func (v *Point) intoPrecomputed() *Point {
	var t field.Element
	t.Subtract(&v.y, &v.x)
	v.y.Add(&v.y, &v.x)
	v.x.Set(&t)
	v.t.Multiply(&v.t, feK)
	return v
}

// setIdentityPrecomputed sets v to the identity in table encoding,
// (Y-X, Y+X, Z, k*T) = (1, 1, 1, 0), and returns v.
func (v *Point) setIdentityPrecomputed() *Point {
	v.x.One()
	v.y.One()
	v.z.One()
	v.t.Zero()
	return v
}

// addPrecomputed sets v = a + b (or a - b with negate set), where b is in
// table encoding with Z = 1. Negating an Edwards point flips the signs of X
// and T, which in table encoding swaps the Y-X and Y+X fields and negates
// the k*T field.
//
// The unified formula is complete here: either operand may be the identity.
func (v *Point) addPrecomputed(a, b *Point, negate bool) *Point {
	var r1, r2, r3, r4, r5, r6, r7, r8 field.Element

	r1.SubtractLazy(&a.y, &a.x)
	r3.AddLazy(&a.y, &a.x)

	if negate {
		field.Mul3(
			&r5, &r1, &b.y,
			&r6, &r3, &b.x,
			&r7, &a.t, &b.t)
	} else {
		field.Mul3(
			&r5, &r1, &b.x,
			&r6, &r3, &b.y,
			&r7, &a.t, &b.t)
	}
	r8.Add(&a.z, &a.z)

	if negate {
		r7.Negate(&r7)
	}

	r1.Subtract(&r6, &r5)
	r2.Subtract(&r8, &r7)
	r3.Add(&r8, &r7)
	r4.Add(&r6, &r5)

	field.Mul4(
		&v.x, &r1, &r2,
		&v.y, &r3, &r4,
		&v.z, &r2, &r3,
		&v.t, &r1, &r4)

	v.x.Reduce()
	v.y.Reduce()
	v.z.Reduce()
	v.t.Reduce()
	return v
}

// basepointWnafTable holds the odd multiples [1]B, [3]B, ..., [255]B of the
// generator in table encoding: entry i is [2i+1]B. It is computed once at
// startup so every table entry is ready before any scalar multiplication
// runs.
var basepointWnafTable = func() *[128]Point {
	var table [128]Point
	b2 := new(Point).Double(generator)
	q := new(Point).Set(generator)
	for i := range table {
		table[i].Set(q).intoAffine().intoPrecomputed()
		q.Add(q, b2)
	}
	return &table
}()

// affineTable holds [1]P through [8]P in table encoding with Z = 1, for
// constant-time signed-digit lookups.
type affineTable [8]Point

// selectInto sets dest to x*P, where the table holds multiples of P and
// x is a signed digit in [-8, 8]. Every table entry is read and combined
// with constant-time moves regardless of x.
func (t *affineTable) selectInto(dest *Point, x int8) {
	// Compute the absolute value and sign of x without branching.
	xmask := x >> 7
	xabs := uint8((x + xmask) ^ xmask)

	dest.setIdentityPrecomputed()
	for j := 1; j <= 8; j++ {
		cond := subtle.ConstantTimeByteEq(xabs, uint8(j))
		dest.x.Select(&t[j-1].x, &dest.x, cond)
		dest.y.Select(&t[j-1].y, &dest.y, cond)
		dest.t.Select(&t[j-1].t, &dest.t, cond)
	}

	// Negate the selection when x was negative: swap the Y-X and Y+X
	// fields and negate k*T.
	neg := int(xmask & 1)
	dest.x.Swap(&dest.y, neg)
	var negT field.Element
	negT.Negate(&dest.t)
	negT.Carry()
	dest.t.Select(&negT, &dest.t, neg)
}

// basepointTable holds multiples of the generator for the constant-time
// ladder: row j holds [1]_256^j*B through [8]_256^j*B in table encoding.
var basepointTable = func() *[32]affineTable {
	var table [32]affineTable
	p := new(Point).Set(generator)
	for i := range table {
		q := new(Point).Set(p)
		for j := 0; j < 8; j++ {
			table[i][j].Set(q).intoAffine().intoPrecomputed()
			q.Add(q, p)
		}
		p.doubleN(p, 8)
	}
	return &table
}()
