// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package curve25519 implements group logic for the twisted Edwards curve
//
//	-x^2 + y^2 = 1 + -(121665/121666)*x^2*y^2
//
// This is better known as the Edwards curve equivalent to Curve25519, and is
// the curve used by the Ed25519 signature scheme.
//
// Most operations are variable time and must not be exposed to secret data;
// the constant-time ones say so explicitly.
package curve25519

import "github.com/avatarlabs/curve25519/field"

// Point types in this package are represented in extended Edwards
// coordinates (X, Y, Z, T) with x = X/Z, y = Y/Z and the invariant
// X*Y = Z*T. See https://eprint.iacr.org/2008/522.
type Point struct {
	// Make the type not comparable (i.e. used with == or as a map key), as
	// equivalent points can be represented by different Go values.
	_ incomparable

	x, y, z, t field.Element
}

type incomparable [0]func()

// identity is the point at infinity.
var identity = &Point{
	y: *feOne,
	z: *feOne,
}

var feOne = new(field.Element).One()

// NewIdentityPoint returns a new Point set to the identity.
func NewIdentityPoint() *Point {
	return (&Point{}).Set(identity)
}

func (v *Point) setIdentity() *Point {
	v.x.Zero()
	v.y.One()
	v.z.One()
	v.t.Zero()
	return v
}

// NewGeneratorPoint returns a new Point set to the canonical generator.
func NewGeneratorPoint() *Point {
	return (&Point{}).Set(generator)
}

// Set sets v = u, and returns v.
func (v *Point) Set(u *Point) *Point {
	*v = *u
	return v
}

// Negate sets v = -u, and returns v.
func (v *Point) Negate(u *Point) *Point {
	v.x.Negate(&u.x)
	v.y.Set(&u.y)
	v.z.Set(&u.z)
	v.t.Negate(&u.t)
	return v
}

// Equal returns 1 if v is equivalent to u, and 0 otherwise. Coordinates are
// cross-multiplied so no inversion is needed.
func (v *Point) Equal(u *Point) int {
	var x1, x2, y1, y2 field.Element
	field.Mul4(
		&x1, &u.x, &v.z,
		&x2, &v.x, &u.z,
		&y1, &u.y, &v.z,
		&y2, &v.y, &u.z)
	return x1.Equal(&x2) & y1.Equal(&y2)
}

// equalZOne is Equal for a u known to have Z == 1, such as a freshly
// decompressed point, saving two multiplications.
func (v *Point) equalZOne(u *Point) int {
	var x1, y1 field.Element
	field.Mul2(
		&x1, &u.x, &v.z,
		&y1, &u.y, &v.z)
	return x1.Equal(&v.x) & y1.Equal(&v.y)
}

// IsIdentity returns 1 if v is the identity, and 0 otherwise.
func (v *Point) IsIdentity() int {
	return v.x.IsZero() & v.y.Equal(&v.z)
}

// addWithOpts computes v = a + b using the unified formula from
// https://eprint.iacr.org/2008/522, 8M plus the k fold.
//
// With bZIsOne set, b.z is assumed to be one and a multiplication is saved.
// With bIsPrecomputed set, b is in table encoding: b.x holds Y-X, b.y holds
// Y+X and b.t holds k*T, skipping the k fold. With skipFinalMul set, the
// output holds the four uncarried factors (E, F, G, H) in (x, y, z, t)
// instead of the final products; finalMul completes such a point.
//
// The formula is not valid for a == b; Add handles that case.
func (v *Point) addWithOpts(a, b *Point, bZIsOne, bIsPrecomputed, skipFinalMul bool) *Point {
	var r1, r2, r3, r4, r5, r6, r7, r8, t field.Element

	r1.SubtractLazy(&a.y, &a.x)
	r3.AddLazy(&a.y, &a.x)

	r2p, r4p := &r2, &r4
	if bIsPrecomputed {
		r2p, r4p = &b.x, &b.y
	} else {
		r2.SubtractLazy(&b.y, &b.x)
		r4.AddLazy(&b.y, &b.x)
	}

	if bZIsOne {
		field.Mul3(
			&r5, &r1, r2p,
			&r6, &r3, r4p,
			&r7, &a.t, &b.t)
		r8.Add(&a.z, &a.z)
	} else {
		t.AddLazy(&a.z, &a.z)
		field.Mul4(
			&r5, &r1, r2p,
			&r6, &r3, r4p,
			&r7, &a.t, &b.t,
			&r8, &t, &b.z)
	}

	if !bIsPrecomputed {
		r7.Multiply(&r7, feK)
	}

	if skipFinalMul {
		v.x.SubtractLazy(&r6, &r5)
		v.y.SubtractLazy(&r8, &r7)
		v.z.AddLazy(&r8, &r7)
		v.t.AddLazy(&r6, &r5)
		return v
	}

	// Carried operations before the batch multiply: the lazy variants can
	// leave limbs past the width the 19-fold premultiplication tolerates.
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

// subWithOpts mirrors addWithOpts with the second operand negated: the
// (Y-X, Y+X) roles of b swap, and the T term flips sign by swapping the
// difference and sum of r8 and r7.
func (v *Point) subWithOpts(a, b *Point, bZIsOne, bIsPrecomputed, skipFinalMul bool) *Point {
	var r1, r2, r3, r4, r5, r6, r7, r8, t field.Element

	r1.SubtractLazy(&a.y, &a.x)
	r3.AddLazy(&a.y, &a.x)

	r2p, r4p := &r2, &r4
	if bIsPrecomputed {
		r2p, r4p = &b.y, &b.x
	} else {
		r2.AddLazy(&b.y, &b.x)
		r4.SubtractLazy(&b.y, &b.x)
	}

	if bZIsOne {
		field.Mul3(
			&r5, &r1, r2p,
			&r6, &r3, r4p,
			&r7, &a.t, &b.t)
		r8.Add(&a.z, &a.z)
	} else {
		t.AddLazy(&a.z, &a.z)
		field.Mul4(
			&r5, &r1, r2p,
			&r6, &r3, r4p,
			&r7, &a.t, &b.t,
			&r8, &t, &b.z)
	}

	if !bIsPrecomputed {
		r7.Multiply(&r7, feK)
	}

	if skipFinalMul {
		v.x.SubtractLazy(&r6, &r5)
		v.y.AddLazy(&r8, &r7)
		v.z.SubtractLazy(&r8, &r7)
		v.t.AddLazy(&r6, &r5)
		return v
	}

	r1.Subtract(&r6, &r5)
	r2.Add(&r8, &r7)
	r3.Subtract(&r8, &r7)
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

// Add sets v = p + q, and returns v.
func (v *Point) Add(p, q *Point) *Point {
	// The addition formula is not valid for p == q; fall back to the
	// dedicated doubling.
	if p.Equal(q) == 1 {
		return v.Double(p)
	}
	return v.addWithOpts(p, q, false, false, false)
}

// Subtract sets v = p - q, and returns v.
func (v *Point) Subtract(p, q *Point) *Point {
	if p.Equal(q) == 1 {
		return v.setIdentity()
	}
	return v.subWithOpts(p, q, false, false, false)
}

// partialDouble computes the doubling of a up to the final multiplication:
// the result holds the four factors in (x, y, z, t), completed by finalMul
// or finalMulProjective. Only a's X, Y and Z are read, so a projective
// intermediate (with a stale t) is a valid input.
//
// Dedicated doubling from https://eprint.iacr.org/2008/522, section 4.4,
// which trades the addition formula's multiplications for squarings.
func (v *Point) partialDouble(a *Point) *Point {
	var r1, r2, r3, r4, r5 field.Element

	r1.AddLazy(&a.x, &a.y)

	field.Sqr4(
		&r2, &a.x,
		&r3, &a.y,
		&r4, &a.z,
		&r5, &r1)

	// Carried on purpose: these feed later additions and subtractions.
	r4.Add(&r4, &r4)
	v.t.Add(&r2, &r3)
	v.z.Subtract(&r2, &r3)

	v.y.AddLazy(&r4, &v.z)
	v.x.SubtractLazy(&v.t, &r5)
	return v
}

// finalMul completes a skipFinalMul or partialDouble result:
// (X, Y, Z, T) = (E*F, G*H, F*G, E*H) for a = (E, F, G, H).
func (v *Point) finalMul(a *Point) *Point {
	field.Mul4(
		&v.x, &a.x, &a.y,
		&v.y, &a.z, &a.t,
		&v.z, &a.y, &a.z,
		&v.t, &a.x, &a.t)
	return v
}

// finalMulProjective is finalMul without computing T, for intermediates
// that only feed partialDouble. v.t is left stale.
func (v *Point) finalMulProjective(a *Point) *Point {
	field.Mul3(
		&v.x, &a.x, &a.y,
		&v.y, &a.z, &a.t,
		&v.z, &a.y, &a.z)
	return v
}

// Double sets v = p + p, and returns v.
func (v *Point) Double(p *Point) *Point {
	var t Point
	t.partialDouble(p)
	return v.finalMul(&t)
}

// doubleN sets v = 2^n * p for n >= 1, and returns v. Chaining partial
// doubles through projective intermediates saves a multiplication per
// doubling over repeated Double calls.
func (v *Point) doubleN(p *Point, n int) *Point {
	var t Point
	t.partialDouble(p)
	for i := 1; i < n; i++ {
		v.finalMulProjective(&t)
		t.partialDouble(v)
	}
	return v.finalMul(&t)
}

// IsSmallOrder returns 1 if v is in the order-8 torsion subgroup (including
// the identity), and 0 otherwise. Multiplying by the cofactor kills exactly
// the small order component.
func (v *Point) IsSmallOrder() int {
	var t Point
	return t.doubleN(v, 3).IsIdentity()
}
