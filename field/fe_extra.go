// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

// sqrtM1 is the square root of -1, used to adjust the candidate root in
// SqrtRatio. Computed eagerly at package initialization so no operation ever
// observes an uninitialized constant.
var sqrtM1 = mustElement([]byte{
	0xb0, 0xa0, 0x0e, 0x4a, 0x27, 0x1b, 0xee, 0xc4,
	0x78, 0xe4, 0x2f, 0xad, 0x06, 0x18, 0x43, 0x2f,
	0xa7, 0xd7, 0xfb, 0x3d, 0x99, 0x00, 0x4d, 0x2b,
	0x0b, 0xdf, 0xc1, 0x4f, 0x80, 0x24, 0x83, 0x2b,
})

func mustElement(b []byte) *Element {
	e, err := new(Element).SetBytes(b)
	if err != nil {
		panic(err)
	}
	return e
}

// Pow22523 sets v = x^((p-5)/8) = x^(2^252-3), and returns v.
//
// This is the shared exponentiation core of Invert and SqrtRatio.
func (v *Element) Pow22523(x *Element) *Element {
	var t0, t1, t2 Element

	t0.Square(x)             // x^2
	t1.Square(&t0)           // x^4
	t1.Square(&t1)           // x^8
	t1.Multiply(&t1, x)      // x^9
	t0.Multiply(&t0, &t1)    // x^11
	t0.Square(&t0)           // x^22
	t0.Multiply(&t0, &t1)    // x^31 = x^(2^5-1)
	t1.Square(&t0)           // x^(2^6-2)
	for i := 0; i < 4; i++ { // x^(2^10-2^5)
		t1.Square(&t1)
	}
	t0.Multiply(&t1, &t0)    // x^(2^10-1)
	t1.Square(&t0)           // x^(2^11-2)
	for i := 0; i < 9; i++ { // x^(2^20-2^10)
		t1.Square(&t1)
	}
	t1.Multiply(&t1, &t0)     // x^(2^20-1)
	t2.Square(&t1)            // x^(2^21-2)
	for i := 0; i < 19; i++ { // x^(2^40-2^20)
		t2.Square(&t2)
	}
	t1.Multiply(&t2, &t1)     // x^(2^40-1)
	for i := 0; i < 10; i++ { // x^(2^50-2^10)
		t1.Square(&t1)
	}
	t0.Multiply(&t1, &t0)     // x^(2^50-1)
	t1.Square(&t0)            // x^(2^51-2)
	for i := 0; i < 49; i++ { // x^(2^100-2^50)
		t1.Square(&t1)
	}
	t1.Multiply(&t1, &t0)     // x^(2^100-1)
	t2.Square(&t1)            // x^(2^101-2)
	for i := 0; i < 99; i++ { // x^(2^200-2^100)
		t2.Square(&t2)
	}
	t1.Multiply(&t2, &t1)     // x^(2^200-1)
	for i := 0; i < 50; i++ { // x^(2^250-2^50)
		t1.Square(&t1)
	}
	t0.Multiply(&t1, &t0)     // x^(2^250-1)
	t0.Square(&t0)            // x^(2^251-2)
	t0.Square(&t0)            // x^(2^252-4)
	return v.Multiply(&t0, x) // x^(2^252-3)
}

// Invert sets v = 1/z mod p, and returns v.
//
// If z == 0, Invert returns v = 0.
func (v *Element) Invert(z *Element) *Element {
	// Inversion is implemented as exponentiation with exponent p - 2 =
	// 2^255 - 21 = 8*(2^252 - 3) + 3, extending the Pow22523 chain with
	// three squarings and three multiplications.
	var t Element
	t.Pow22523(z)
	t.Square(&t)              // z^(2^255-24)
	t.Square(&t)              //
	t.Square(&t)              //
	t.Multiply(&t, z)         // z^(2^255-23)
	t.Multiply(&t, z)         // z^(2^255-22)
	return v.Multiply(&t, z)  // z^(2^255-21)
}

// SqrtRatio sets r to the non-negative square root of the ratio of u and v.
//
// If u/v is square, SqrtRatio returns r and 1. If u/v is not square,
// SqrtRatio sets r according to the sqrt of the negated ratio, and returns
// r and 0.
func (r *Element) SqrtRatio(u, v *Element) (R *Element, wasSquare int) {
	t0 := new(Element)

	// r = (u * v3) * (u * v7)^((p-5)/8)
	v2 := new(Element).Square(v)
	uv3 := new(Element).Multiply(u, t0.Multiply(v2, v))
	uv7 := new(Element).Multiply(uv3, t0.Square(v2))
	rr := new(Element).Multiply(uv3, t0.Pow22523(uv7))

	check := new(Element).Multiply(v, t0.Square(rr)) // check = v * r^2

	uNeg := new(Element).Negate(u)
	correctSignSqrt := check.Equal(u)
	flippedSignSqrt := check.Equal(uNeg)
	flippedSignSqrtI := check.Equal(t0.Multiply(uNeg, sqrtM1))

	rPrime := new(Element).Multiply(rr, sqrtM1) // r_prime = SQRT_M1 * r
	// r = CT_SELECT(r_prime IF flipped_sign_sqrt | flipped_sign_sqrt_i ELSE r)
	rr.Select(rPrime, rr, flippedSignSqrt|flippedSignSqrtI)

	r.Absolute(rr) // Choose the nonnegative square root.
	return r, correctSignSqrt | flippedSignSqrt
}
