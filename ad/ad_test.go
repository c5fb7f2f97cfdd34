// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad

import (
	"math"
	"testing"
)

// fdCheck compares a Scalar's stored derivative in direction dir against a
// central finite difference of f around x0, the AD-consistency property
// spec §8 calls for.
func fdCheck(tst *testing.T, name string, f func(x float64) float64, x0 float64, got float64) {
	const h = 1e-6
	want := (f(x0+h) - f(x0-h)) / (2 * h)
	tol := 1e-6 * math.Max(1, math.Abs(want))
	if math.Abs(got-want) > tol {
		tst.Errorf("%s: derivative mismatch at x=%v: got %v, want %v (fd)", name, x0, got, want)
	}
}

func Test_mul_div_derivatives(tst *testing.T) {
	const n = 2
	x0, y0 := 1.7, -0.4
	x := Var(n, 0, x0)
	y := Var(n, 1, y0)

	prod := x.Mul(y)
	if math.Abs(prod.V-x0*y0) > 1e-14 {
		tst.Errorf("Mul value wrong: got %v want %v", prod.V, x0*y0)
	}
	fdCheck(tst, "Mul/dx", func(v float64) float64 { return v * y0 }, x0, prod.D[0])
	fdCheck(tst, "Mul/dy", func(v float64) float64 { return x0 * v }, y0, prod.D[1])

	quot := x.Div(y)
	fdCheck(tst, "Div/dx", func(v float64) float64 { return v / y0 }, x0, quot.D[0])
	fdCheck(tst, "Div/dy", func(v float64) float64 { return x0 / v }, y0, quot.D[1])
}

func Test_transcendental_derivatives(tst *testing.T) {
	const n = 1
	for _, x0 := range []float64{-1.3, 0.2, 2.5} {
		x := Var(n, 0, x0)
		fdCheck(tst, "Exp", math.Exp, x0, x.Exp().D[0])
		fdCheck(tst, "Sinh", math.Sinh, x0, x.Sinh().D[0])
		fdCheck(tst, "Asinh", math.Asinh, x0, x.Asinh().D[0])
	}
	for _, x0 := range []float64{0.3, 4.0, 9.0} {
		x := Var(n, 0, x0)
		fdCheck(tst, "Sqrt", math.Sqrt, x0, x.Sqrt().D[0])
	}
}

// Test_bernoulli_smooth checks Bernoulli's value and derivative are
// continuous across its small-|x| series-expansion branch boundary, the
// numerical pitfall spec §4.2 calls out explicitly.
func Test_bernoulli_smooth(tst *testing.T) {
	const n = 1
	bFunc := func(v float64) float64 {
		if math.Abs(v) < 1e-300 {
			return 1
		}
		return v / math.Expm1(v)
	}
	for _, x0 := range []float64{-1e-10, -1e-13, 0, 1e-13, 1e-10, 0.5, -0.5, 3.0} {
		x := Var(n, 0, x0)
		b := Bernoulli(x)
		want := bFunc(x0)
		if math.Abs(b.V-want) > 1e-6 {
			tst.Errorf("Bernoulli(%v): value mismatch got %v want %v", x0, b.V, want)
		}
	}
	// derivative away from the series branch should match a numerical one
	x0 := 0.5
	x := Var(n, 0, x0)
	fdCheck(tst, "Bernoulli", bFunc, x0, Bernoulli(x).D[0])
}

func Test_dirs_propagation(tst *testing.T) {
	a := Var(3, 0, 2.0)
	b := New(1, 5.0)
	sum := a.Add(b)
	if sum.Dirs() != 3 {
		tst.Errorf("Add should widen to the larger operand's Dirs, got %d", sum.Dirs())
	}
}
