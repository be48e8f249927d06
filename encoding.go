// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package curve25519

import (
	"errors"

	"github.com/avatarlabs/curve25519/field"
)

var errInvalidPoint = errors.New("curve25519: invalid point encoding")

// SetBytes sets v = x, where x is a 32-byte encoding of v: the little-endian
// y coordinate with the sign of x in the most significant bit. If x does not
// represent a point on the curve, SetBytes returns nil and an error, and the
// receiver is unchanged.
//
// Note that SetBytes accepts all non-canonical encodings of valid points.
// That is, it follows decoding rules that match most implementations in the
// ecosystem rather than RFC 8032.
func (v *Point) SetBytes(x []byte) (*Point, error) {
	// Specifically, the non-canonical encodings that are accepted are
	//   1) the ones where the field element is not reduced (see the
	//      field.Element.SetBytes docs) and
	//   2) the ones where the x coordinate is zero and the sign bit is set.
	if len(x) != 32 {
		return nil, errInvalidPoint
	}
	y, err := new(field.Element).SetBytes(x)
	if err != nil {
		return nil, errInvalidPoint
	}

	// -x² + y² = 1 + dx²y²
	// x² + dx²y² = x²(dy² + 1) = y² - 1
	// x² = (y² - 1) / (dy² + 1)

	// u = y² - 1
	y2 := new(field.Element).Square(y)
	u := new(field.Element).Subtract(y2, feOne)

	// vv = dy² + 1
	vv := new(field.Element).Multiply(y2, d)
	vv = vv.Add(vv, feOne)

	// x = +√(u/vv)
	xx, wasSquare := new(field.Element).SqrtRatio(u, vv)
	if wasSquare == 0 {
		return nil, errInvalidPoint
	}

	// Select the negative square root if the sign bit is set.
	xxNeg := new(field.Element).Negate(xx).Carry()
	xx = xx.Select(xxNeg, xx, int(x[31]>>7))

	v.x.Set(xx)
	v.y.Set(y)
	v.z.One()
	v.t.Multiply(xx, y)

	return v, nil
}

// Bytes returns the canonical 32-byte encoding of v.
func (v *Point) Bytes() []byte {
	// This function is outlined to make the allocations inline in the caller
	// rather than happen on the heap.
	var buf [32]byte
	return v.bytes(&buf)
}

func (v *Point) bytes(buf *[32]byte) []byte {
	var zInv, x, y field.Element
	zInv.Invert(&v.z)
	field.Mul2(
		&x, &v.x, &zInv,
		&y, &v.y, &zInv)

	copy(buf[:], y.Bytes())
	buf[31] |= byte(x.IsNegative() << 7)

	return buf[:]
}

// BytesAffine returns the canonical 32-byte encoding of a point known to be
// in affine form, skipping the inversion in Bytes. The result is undefined
// if v.Z != 1; fresh SetBytes and SetAffineCoords outputs qualify.
func (v *Point) BytesAffine() []byte {
	var buf [32]byte
	copy(buf[:], v.y.Bytes())
	buf[31] |= byte(v.x.IsNegative() << 7)
	return buf[:]
}

// SetAffineCoords sets v to the point with the given affine coordinates,
// each a 32-byte little-endian field element encoding. If the coordinates
// do not satisfy the curve equation, SetAffineCoords returns nil and an
// error, and the receiver is unchanged.
func (v *Point) SetAffineCoords(x, y []byte) (*Point, error) {
	fx, err := new(field.Element).SetBytes(x)
	if err != nil {
		return nil, errInvalidPoint
	}
	fy, err := new(field.Element).SetBytes(y)
	if err != nil {
		return nil, errInvalidPoint
	}

	// -x² + y² = 1 + dx²y²
	var x2, y2, lhs, rhs field.Element
	field.Sqr2(
		&x2, fx,
		&y2, fy)
	lhs.Subtract(&y2, &x2)
	rhs.Multiply(&x2, &y2)
	rhs.Multiply(&rhs, d)
	rhs.Add(&rhs, feOne)
	if lhs.Equal(&rhs) != 1 {
		return nil, errInvalidPoint
	}

	v.x.Set(fx)
	v.y.Set(fy)
	v.z.One()
	v.t.Multiply(fx, fy)

	return v, nil
}

// AffineCoords returns the affine coordinates of v, each as a canonical
// 32-byte little-endian field element encoding.
func (v *Point) AffineCoords() (x, y []byte) {
	var zInv, fx, fy field.Element
	zInv.Invert(&v.z)
	field.Mul2(
		&fx, &v.x, &zInv,
		&fy, &v.y, &zInv)
	return fx.Bytes(), fy.Bytes()
}
