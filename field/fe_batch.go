// Copyright (c) 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package field

// A Backend executes batches of independent field multiplications and
// squarings. Every backend produces bit-identical limbs: the wide backends
// run the exact column arithmetic of Multiply and Square, one lane per
// input, so callers can treat the batch entry points as a pure performance
// knob.
//
// Inputs are fully read before any output is written, so batch arguments
// may alias freely, including across lanes.
type Backend interface {
	// Name identifies the backend, for tests and diagnostics.
	Name() string

	// mul computes r[i] = a[i] * b[i] for every lane. The three slices have
	// equal length, between 1 and 8. Lanes beyond the backend's native
	// width run in further rounds; short batches are padded with duplicate
	// lanes that are computed and discarded.
	mul(r, a, b []*Element)

	// sqr computes r[i] = a[i] * a[i] for every lane, under the same
	// contract as mul.
	sqr(r, a []*Element)
}

// Available backends. Wide4 mirrors the 4-lane vector unit layout and is
// the default; Wide8 the 8-lane one; Serial issues plain scalar calls.
var (
	Serial Backend = serialBackend{}
	Wide4  Backend = wide4Backend{}
	Wide8  Backend = wide8Backend{}
)

var backend = Wide4

// SetBackend selects the backend used by the batch entry points and returns
// the previous one. It must not be called concurrently with batch
// operations; intended for tests and startup configuration.
func SetBackend(b Backend) Backend {
	prev := backend
	backend = b
	return prev
}

// Mul2 computes r1 = a1*b1 and r2 = a2*b2 in one batch.
func Mul2(r1, a1, b1, r2, a2, b2 *Element) {
	backend.mul([]*Element{r1, r2}, []*Element{a1, a2}, []*Element{b1, b2})
}

// Mul3 computes r1 = a1*b1, r2 = a2*b2 and r3 = a3*b3 in one batch.
func Mul3(r1, a1, b1, r2, a2, b2, r3, a3, b3 *Element) {
	backend.mul([]*Element{r1, r2, r3}, []*Element{a1, a2, a3}, []*Element{b1, b2, b3})
}

// Mul4 computes four products in one batch.
func Mul4(r1, a1, b1, r2, a2, b2, r3, a3, b3, r4, a4, b4 *Element) {
	backend.mul([]*Element{r1, r2, r3, r4}, []*Element{a1, a2, a3, a4}, []*Element{b1, b2, b3, b4})
}

// Mul8 computes eight products in one batch.
func Mul8(r1, a1, b1, r2, a2, b2, r3, a3, b3, r4, a4, b4,
	r5, a5, b5, r6, a6, b6, r7, a7, b7, r8, a8, b8 *Element) {
	backend.mul(
		[]*Element{r1, r2, r3, r4, r5, r6, r7, r8},
		[]*Element{a1, a2, a3, a4, a5, a6, a7, a8},
		[]*Element{b1, b2, b3, b4, b5, b6, b7, b8})
}

// Sqr2 computes r1 = a1^2 and r2 = a2^2 in one batch.
func Sqr2(r1, a1, r2, a2 *Element) {
	backend.sqr([]*Element{r1, r2}, []*Element{a1, a2})
}

// Sqr3 computes r1 = a1^2, r2 = a2^2 and r3 = a3^2 in one batch.
func Sqr3(r1, a1, r2, a2, r3, a3 *Element) {
	backend.sqr([]*Element{r1, r2, r3}, []*Element{a1, a2, a3})
}

// Sqr4 computes four squarings in one batch.
func Sqr4(r1, a1, r2, a2, r3, a3, r4, a4 *Element) {
	backend.sqr([]*Element{r1, r2, r3, r4}, []*Element{a1, a2, a3, a4})
}

// Sqr8 computes eight squarings in one batch.
func Sqr8(r1, a1, r2, a2, r3, a3, r4, a4, r5, a5, r6, a6, r7, a7, r8, a8 *Element) {
	backend.sqr(
		[]*Element{r1, r2, r3, r4, r5, r6, r7, r8},
		[]*Element{a1, a2, a3, a4, a5, a6, a7, a8})
}

// serialBackend runs each lane as an independent scalar operation.
type serialBackend struct{}

func (serialBackend) Name() string { return "serial" }

func (serialBackend) mul(r, a, b []*Element) {
	var t [8]Element
	for i := range r {
		t[i].Multiply(a[i], b[i])
	}
	for i := range r {
		*r[i] = t[i]
	}
}

func (serialBackend) sqr(r, a []*Element) {
	var t [8]Element
	for i := range r {
		t[i].Square(a[i])
	}
	for i := range r {
		*r[i] = t[i]
	}
}

// element4 holds four elements zipped limb-major: l[i] carries limb i of
// every lane, the structure-of-arrays shape the four-lane vector unit
// consumes one register per limb.
type element4 struct {
	l [10][4]uint64
}

func (w *element4) zip(a []*Element) {
	for j := 0; j < 4; j++ {
		src := a[0]
		if j < len(a) {
			src = a[j]
		}
		for i := 0; i < 10; i++ {
			w.l[i][j] = src.l[i]
		}
	}
}

func (w *element4) unzip(r []*Element) {
	for j := range r {
		for i := 0; i < 10; i++ {
			r[j].l[i] = w.l[i][j]
		}
	}
}

func (w *element4) mul(a, b *element4) {
	var al, bl [10]uint64
	for j := 0; j < 4; j++ {
		for i := 0; i < 10; i++ {
			al[i], bl[i] = a.l[i][j], b.l[i][j]
		}
		rl := mulLimbs(&al, &bl)
		for i := 0; i < 10; i++ {
			w.l[i][j] = rl[i]
		}
	}
}

func (w *element4) sqr(a *element4) {
	var al [10]uint64
	for j := 0; j < 4; j++ {
		for i := 0; i < 10; i++ {
			al[i] = a.l[i][j]
		}
		rl := sqrLimbs(&al)
		for i := 0; i < 10; i++ {
			w.l[i][j] = rl[i]
		}
	}
}

type wide4Backend struct{}

func (wide4Backend) Name() string { return "wide4" }

func (wide4Backend) mul(r, a, b []*Element) {
	if len(r) <= 4 {
		wide4Mul(r, a, b)
		return
	}
	// Zip both rounds before unzipping either, to keep the all-inputs-read-
	// before-outputs-written aliasing contract across rounds.
	var av1, bv1, av2, bv2, cv1, cv2 element4
	av1.zip(a[:4])
	bv1.zip(b[:4])
	av2.zip(a[4:])
	bv2.zip(b[4:])
	cv1.mul(&av1, &bv1)
	cv2.mul(&av2, &bv2)
	cv1.unzip(r[:4])
	cv2.unzip(r[4:])
}

func (wide4Backend) sqr(r, a []*Element) {
	if len(r) <= 4 {
		wide4Sqr(r, a)
		return
	}
	var av1, av2, cv1, cv2 element4
	av1.zip(a[:4])
	av2.zip(a[4:])
	cv1.sqr(&av1)
	cv2.sqr(&av2)
	cv1.unzip(r[:4])
	cv2.unzip(r[4:])
}

func wide4Mul(r, a, b []*Element) {
	var av, bv, cv element4
	av.zip(a)
	bv.zip(b)
	cv.mul(&av, &bv)
	cv.unzip(r)
}

func wide4Sqr(r, a []*Element) {
	var av, cv element4
	av.zip(a)
	cv.sqr(&av)
	cv.unzip(r)
}

// element8 is the eight-lane counterpart of element4.
type element8 struct {
	l [10][8]uint64
}

func (w *element8) zip(a []*Element) {
	for j := 0; j < 8; j++ {
		src := a[0]
		if j < len(a) {
			src = a[j]
		}
		for i := 0; i < 10; i++ {
			w.l[i][j] = src.l[i]
		}
	}
}

func (w *element8) unzip(r []*Element) {
	for j := range r {
		for i := 0; i < 10; i++ {
			r[j].l[i] = w.l[i][j]
		}
	}
}

func (w *element8) mul(a, b *element8) {
	var al, bl [10]uint64
	for j := 0; j < 8; j++ {
		for i := 0; i < 10; i++ {
			al[i], bl[i] = a.l[i][j], b.l[i][j]
		}
		rl := mulLimbs(&al, &bl)
		for i := 0; i < 10; i++ {
			w.l[i][j] = rl[i]
		}
	}
}

func (w *element8) sqr(a *element8) {
	var al [10]uint64
	for j := 0; j < 8; j++ {
		for i := 0; i < 10; i++ {
			al[i] = a.l[i][j]
		}
		rl := sqrLimbs(&al)
		for i := 0; i < 10; i++ {
			w.l[i][j] = rl[i]
		}
	}
}

type wide8Backend struct{}

func (wide8Backend) Name() string { return "wide8" }

func (wide8Backend) mul(r, a, b []*Element) {
	var av, bv, cv element8
	av.zip(a)
	bv.zip(b)
	cv.mul(&av, &bv)
	cv.unzip(r)
}

func (wide8Backend) sqr(r, a []*Element) {
	var av, cv element8
	av.zip(a)
	cv.sqr(&av)
	cv.unzip(r)
}
