// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"math/bits"
	mathrand "math/rand"
	"reflect"
	"testing"
	"testing/quick"

	fiat "github.com/mit-plv/fiat-crypto/fiat-go/64/curve25519"
)

func (v Element) String() string {
	return hex.EncodeToString(v.Bytes())
}

// quickCheckConfig1024 will make each quickcheck test run (1024 * -quickchecks)
// times. The default value of -quickchecks is 100.
var quickCheckConfig1024 = &quick.Config{MaxCountScale: 1 << 10}

func generateFieldElement(rand *mathrand.Rand) Element {
	// Generation strategy: random limbs at their nominal 26/25-bit widths,
	// like the ones produced by Carry.
	var e Element
	for i := range e.l {
		if i%2 == 0 {
			e.l[i] = rand.Uint64() & maskLow26Bits
		} else {
			e.l[i] = rand.Uint64() & maskLow25Bits
		}
	}
	return e
}

// weirdLimbs can be combined to generate a range of edge-case field elements.
// 0 and the limb masks are intentionally more weighted, as they combine well.
// The lists go one bit above the nominal widths, which the lazy operations
// can produce and the multiplier accepts.
var (
	weirdLimbs25 = []uint64{
		0, 0, 0, 0,
		1,
		19 - 1,
		19,
		0x0aaaaaa,
		0x1555555,
		(1 << 25) - 20,
		(1 << 25) - 19,
		(1 << 25) - 1, (1 << 25) - 1,
		(1 << 25) - 1, (1 << 25) - 1,
	}
	weirdLimbs26 = []uint64{
		0, 0, 0, 0, 0, 0,
		1,
		19 - 1,
		19,
		0x1555555,
		0x2aaaaaa,
		(1 << 26) - 20,
		(1 << 26) - 19,
		(1 << 26) - 1, (1 << 26) - 1,
		(1 << 26) - 1, (1 << 26) - 1,
		(1 << 26) - 1, (1 << 26) - 1,
		1 << 26,
		(1 << 26) + 1,
		(1 << 27) - 19,
		(1 << 27) - 1,
	}
)

func generateWeirdFieldElement(rand *mathrand.Rand) Element {
	var e Element
	for i := range e.l {
		if i%2 == 0 {
			e.l[i] = weirdLimbs26[rand.Intn(len(weirdLimbs26))]
		} else {
			e.l[i] = weirdLimbs25[rand.Intn(len(weirdLimbs25))]
		}
	}
	return e
}

func (Element) Generate(rand *mathrand.Rand, size int) reflect.Value {
	if rand.Intn(2) == 0 {
		return reflect.ValueOf(generateWeirdFieldElement(rand))
	}
	return reflect.ValueOf(generateFieldElement(rand))
}

// isInBounds returns whether the element is within the expected bit size
// bounds after a carry. The final carry step can leave limb 1 one bit above
// its nominal width.
func isInBounds(x *Element) bool {
	for i, l := range x.l {
		w := 25 + 1 - i%2
		if i == 1 {
			w = 26
		}
		if bits.Len64(l) > w {
			return false
		}
	}
	return true
}

func TestMulDistributesOverAdd(t *testing.T) {
	mulDistributesOverAdd := func(x, y, z Element) bool {
		// Compute t1 = (x+y)*z
		t1 := new(Element)
		t1.Add(&x, &y)
		t1.Multiply(t1, &z)

		// Compute t2 = x*z + y*z
		t2 := new(Element)
		t3 := new(Element)
		t2.Multiply(&x, &z)
		t3.Multiply(&y, &z)
		t2.Add(t2, t3)

		return t1.Equal(t2) == 1 && isInBounds(t1) && isInBounds(t2)
	}

	if err := quick.Check(mulDistributesOverAdd, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestMultiplySquareConsistency(t *testing.T) {
	consistent := func(x Element) bool {
		t1 := new(Element).Multiply(&x, &x)
		t2 := new(Element).Square(&x)
		return *t1 == *t2 && isInBounds(t1)
	}

	if err := quick.Check(consistent, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestSetBytesRoundTrip(t *testing.T) {
	f1 := func(in [32]byte, fe Element) bool {
		fe.SetBytes(in[:])

		// Mask the most significant bit as it's ignored by SetBytes. (Now
		// instead of earlier so we check the masking in SetBytes is working.)
		in[len(in)-1] &= (1 << 7) - 1

		return bytes.Equal(in[:], fe.Bytes()) && isInBounds(&fe)
	}
	if err := quick.Check(f1, nil); err != nil {
		t.Errorf("failed bytes->FE->bytes round-trip: %v", err)
	}

	f2 := func(fe, r Element) bool {
		r.SetBytes(fe.Bytes())

		// Intentionally not using Equal not to go through Bytes again.
		// Calling Reduce because both Generate and SetBytes can produce
		// non-canonical representations.
		fe.Reduce()
		r.Reduce()
		return fe == r
	}
	if err := quick.Check(f2, nil); err != nil {
		t.Errorf("failed FE->bytes->FE round-trip: %v", err)
	}

	if _, err := new(Element).SetBytes([]byte{1, 2, 3}); err == nil {
		t.Errorf("SetBytes accepted a short encoding")
	}
}

func TestSetBytesRoundTripEdgeCases(t *testing.T) {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	p.Sub(p, big.NewInt(19))

	// The non-canonical encodings 2^255-19 through 2^255-1 are accepted by
	// SetBytes and reduced by Bytes.
	for i := int64(0); i < 19; i++ {
		n := new(big.Int).Add(p, big.NewInt(i))
		in := make([]byte, 32)
		copy(in, swapEndianness(n.Bytes()))

		fe, err := new(Element).SetBytes(in)
		if err != nil {
			t.Fatalf("SetBytes(p + %d) failed: %v", i, err)
		}
		exp := new(Element).fromBig(big.NewInt(i))
		if fe.Equal(exp) != 1 {
			t.Errorf("p + %d decoded to %v, expected %v", i, fe, exp)
		}
	}
}

func swapEndianness(buf []byte) []byte {
	for i := 0; i < len(buf)/2; i++ {
		buf[i], buf[len(buf)-i-1] = buf[len(buf)-i-1], buf[i]
	}
	return buf
}

func TestBytesBigEquivalence(t *testing.T) {
	f1 := func(in [32]byte, fe, fe1 Element) bool {
		fe.SetBytes(in[:])

		in[len(in)-1] &= (1 << 7) - 1 // mask the most significant bit
		b := new(big.Int).SetBytes(swapEndianness(in[:]))
		fe1.fromBig(b)

		if fe != fe1 {
			return false
		}

		buf := make([]byte, 32) // pad with zeroes
		copy(buf, swapEndianness(fe1.toBig().Bytes()))

		return bytes.Equal(fe.Bytes(), buf) && isInBounds(&fe) && isInBounds(&fe1)
	}
	if err := quick.Check(f1, nil); err != nil {
		t.Error(err)
	}
}

// fromBig sets v = n, and returns v. The bit length of n must not exceed 256.
func (v *Element) fromBig(n *big.Int) *Element {
	if n.BitLen() > 32*8 {
		panic("invalid field element input size")
	}

	buf := make([]byte, 0, 32)
	for _, word := range n.Bits() {
		for i := 0; i < bits.UintSize; i += 8 {
			if len(buf) >= cap(buf) {
				break
			}
			buf = append(buf, byte(word))
			word >>= 8
		}
	}

	v, _ = v.SetBytes(buf[:32])
	return v
}

func (v *Element) fromDecimal(s string) *Element {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("not a valid decimal: " + s)
	}
	return v.fromBig(n)
}

// toBig returns v as a big.Int.
func (v *Element) toBig() *big.Int {
	buf := v.Bytes()

	words := make([]big.Word, 32*8/bits.UintSize)
	for n := range words {
		for i := 0; i < bits.UintSize; i += 8 {
			if len(buf) == 0 {
				break
			}
			words[n] |= big.Word(buf[0]) << big.Word(i)
			buf = buf[1:]
		}
	}

	return new(big.Int).SetBits(words)
}

func TestDecimalConstants(t *testing.T) {
	sqrtM1String := "19681161376707505956807079304988542015446066515923890162744021073123829784752"
	if exp := new(Element).fromDecimal(sqrtM1String); sqrtM1.Equal(exp) != 1 {
		t.Errorf("sqrtM1 is %v, expected %v", sqrtM1, exp)
	}
}

func TestBigIntOracle(t *testing.T) {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	p.Sub(p, big.NewInt(19))

	f := func(x, y Element) bool {
		bx, by := x.toBig(), y.toBig()

		add := new(Element).Add(&x, &y)
		bAdd := new(big.Int).Add(bx, by)
		if add.toBig().Cmp(bAdd.Mod(bAdd, p)) != 0 {
			return false
		}

		mul := new(Element).Multiply(&x, &y)
		bMul := new(big.Int).Mul(bx, by)
		if mul.toBig().Cmp(bMul.Mod(bMul, p)) != 0 {
			return false
		}

		// Subtract and Negate require carried inputs: the 2*p bias does
		// not cover the full range of weird limbs.
		cx, cy := x, y
		cx.Carry()
		cy.Carry()

		sub := new(Element).Subtract(&cx, &cy)
		bSub := new(big.Int).Sub(bx, by)
		if sub.toBig().Cmp(bSub.Mod(bSub, p)) != 0 {
			return false
		}

		neg := new(Element).Negate(&cx)
		neg.Carry()
		bNeg := new(big.Int).Neg(bx)
		return neg.toBig().Cmp(bNeg.Mod(bNeg, p)) == 0
	}

	if err := quick.Check(f, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

// TestSubtractBiasBound exercises Subtract and Negate with subtrahend
// limbs at exactly the 2*p bias values, the largest inputs they accept
// without underflowing.
func TestSubtractBiasBound(t *testing.T) {
	p := new(big.Int).Lsh(big.NewInt(1), 255)
	p.Sub(p, big.NewInt(19))

	max := &Element{l: bias2p}
	bMax := max.toBig()

	got := new(Element).Subtract(feOne, max)
	want := new(big.Int).Sub(big.NewInt(1), bMax)
	want.Mod(want, p)
	if got.toBig().Cmp(want) != 0 {
		t.Errorf("Subtract(1, 2*p) = %v, want %v", got, want)
	}

	neg := new(Element).Negate(max)
	neg.Carry()
	bNeg := new(big.Int).Neg(bMax)
	bNeg.Mod(bNeg, p)
	if neg.toBig().Cmp(bNeg) != 0 {
		t.Errorf("Negate(2*p) = %v, want %v", neg, bNeg)
	}
}

// TestFiatOracle checks Multiply and Square against an independent formally
// verified implementation, through the byte encoding.
func TestFiatOracle(t *testing.T) {
	f := func(x, y Element) bool {
		var bx, by, out [32]byte
		copy(bx[:], x.Bytes())
		copy(by[:], y.Bytes())

		var fx, fy, fr fiat.TightFieldElement
		fiat.FromBytes(&fx, &bx)
		fiat.FromBytes(&fy, &by)

		fiat.CarryMul(&fr, (*fiat.LooseFieldElement)(&fx), (*fiat.LooseFieldElement)(&fy))
		fiat.ToBytes(&out, &fr)
		if got := new(Element).Multiply(&x, &y); !bytes.Equal(got.Bytes(), out[:]) {
			return false
		}

		fiat.CarrySquare(&fr, (*fiat.LooseFieldElement)(&fx))
		fiat.ToBytes(&out, &fr)
		return bytes.Equal(new(Element).Square(&x).Bytes(), out[:])
	}

	if err := quick.Check(f, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestInvert(t *testing.T) {
	x := Element{l: [10]uint64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}}
	one := Element{l: [10]uint64{1}}
	var xinv, r Element

	xinv.Invert(&x)
	r.Multiply(&x, &xinv)
	r.Reduce()

	if one != r {
		t.Errorf("inversion identity failed, got: %x", r)
	}

	randomElement := generateFieldElement(mathrand.New(mathrand.NewSource(17)))

	xinv.Invert(&randomElement)
	r.Multiply(&randomElement, &xinv)
	r.Reduce()

	if one != r {
		t.Errorf("random inversion identity failed, got: %x for field element %x", r, randomElement)
	}

	zero := Element{}
	x.Set(&zero)
	xinv.Invert(&x)
	if xinv.Reduce(); xinv != zero {
		t.Errorf("inverting zero did not return zero")
	}
}

func TestSqrtRatio(t *testing.T) {
	f := func(u, v Element) bool {
		if v.IsZero() == 1 {
			return true
		}
		// SqrtRatio negates u internally, so it takes carried inputs.
		u.Carry()
		v.Carry()

		r, wasSquare := new(Element).SqrtRatio(&u, &v)
		if r.IsNegative() == 1 {
			return false
		}

		check := new(Element).Square(r)
		check.Multiply(check, &v)
		if wasSquare == 1 {
			return check.Equal(&u) == 1
		}
		// If u/v is not square, the result is the square root of the ratio
		// multiplied by sqrt(-1).
		uI := new(Element).Multiply(&u, sqrtM1)
		return check.Equal(uI) == 1
	}

	if err := quick.Check(f, quickCheckConfig1024); err != nil {
		t.Error(err)
	}

	// The zero ratio is square, with root zero.
	zero := new(Element)
	r, wasSquare := new(Element).SqrtRatio(zero, feOne)
	if wasSquare != 1 || r.IsZero() != 1 {
		t.Errorf("SqrtRatio(0, 1) = %v, %v", r, wasSquare)
	}
}

func TestCarryAndReduce(t *testing.T) {
	// p reduces to 0, and p + 18 to 18.
	pLimbs := Element{l: [10]uint64{
		(1 << 26) - 19, (1 << 25) - 1, (1 << 26) - 1, (1 << 25) - 1, (1 << 26) - 1,
		(1 << 25) - 1, (1 << 26) - 1, (1 << 25) - 1, (1 << 26) - 1, (1 << 25) - 1,
	}}
	v := pLimbs
	if v.Reduce(); v != (Element{}) {
		t.Errorf("p did not reduce to zero: %x", v)
	}
	almost := pLimbs
	almost.l[0] += 18
	if almost.Reduce(); almost != (Element{l: [10]uint64{18}}) {
		t.Errorf("p + 18 did not reduce to 18: %x", almost)
	}

	// Carry outputs stay within bounds and preserve the value mod p.
	f := func(x Element) bool {
		expected := x.toBig()
		x.Carry()
		return isInBounds(&x) && x.toBig().Cmp(expected) == 0
	}
	if err := quick.Check(f, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestSelectSwap(t *testing.T) {
	a := new(Element).fromDecimal("121666")
	b := new(Element).fromDecimal("121665")

	var c, d Element

	c.Select(a, b, 1)
	d.Select(a, b, 0)

	if c.Equal(a) != 1 || d.Equal(b) != 1 {
		t.Errorf("Select failed")
	}

	c.Swap(&d, 0)

	if c.Equal(a) != 1 || d.Equal(b) != 1 {
		t.Errorf("Swap with cond 0 changed values")
	}

	c.Swap(&d, 1)

	if c.Equal(b) != 1 || d.Equal(a) != 1 {
		t.Errorf("Swap with cond 1 did not swap")
	}
}

func TestAbsolute(t *testing.T) {
	f := func(x Element) bool {
		// Absolute and Negate require carried inputs: the 2*p bias does
		// not cover the full range of weird limbs.
		x.Carry()

		abs := new(Element).Absolute(&x)
		neg := new(Element).Negate(&x)
		neg.Carry()
		if abs.IsNegative() == 1 {
			return false
		}
		return abs.Equal(&x) == 1 || abs.Equal(neg) == 1
	}
	if err := quick.Check(f, quickCheckConfig1024); err != nil {
		t.Error(err)
	}
}

func TestIsZeroAndNegative(t *testing.T) {
	zero := new(Element)
	if zero.IsZero() != 1 || zero.IsNegative() != 0 {
		t.Errorf("zero misclassified")
	}

	one := new(Element).One()
	if one.IsZero() != 0 || one.IsNegative() != 1 {
		t.Errorf("one misclassified")
	}

	// p is a non-canonical representation of zero.
	p := new(Element).fromDecimal(
		"57896044618658097711785492504343953926634992332820282019728792003956564819949")
	if p.IsZero() != 1 {
		t.Errorf("IsZero did not reduce p")
	}
}
