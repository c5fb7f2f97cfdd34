// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ad implements the forward-mode automatic-differentiation scalar
// used by the hanging-node interpolation Jacobian and by any other assembly
// step that needs a handful of partials without hand-deriving them (spec
// §4.2, §9 "AD scalar with a per-call directional dimension").
//
// There is no teacher analogue for this exact type: gofem differentiates by
// hand or by finite differences (see e.g. mdl/diffusion.M1.DkDu). This
// package is new, but it is written in the teacher's idiom — a small,
// stack-friendly scratchpad struct with a fixed maximum size rather than a
// general heap-backed tape, mirroring the fixed-capacity scratch buffers
// element assemblers preallocate once (e.g. ele/diffusion.Diffusion.K) and
// reuse across integration points instead of allocating per call.
package ad

import "math"

// MaxDirs bounds the directional (partial-derivative) dimension. Spec §9
// notes "a small fixed maximum (≤12 directions cover every use in this
// spec)" — the largest use here is the 9-wide hanging-node interpolation
// dependency (ψ_H,n_H,p_H,ψ_a,n_a,p_a,ψ_b,n_b,p_b).
const MaxDirs = 12

// Scalar is a dual number carrying a value and up to MaxDirs partial
// derivatives, stored inline (no backing slice) so it can be passed and
// returned by value without escaping to the heap in a hot edge loop.
type Scalar struct {
	V float64
	D [MaxDirs]float64
	n int // active directional dimension for this call; reset per local contribution
}

// New returns a constant (zero-derivative) Scalar evaluated in an n-wide
// local frame.
func New(n int, v float64) Scalar {
	return Scalar{V: v, n: n}
}

// Var returns an independent variable: value v, with a 1 in direction dir
// of an n-wide local frame.
func Var(n, dir int, v float64) Scalar {
	s := Scalar{V: v, n: n}
	s.D[dir] = 1
	return s
}

// Dirs returns the active directional dimension of this Scalar.
func (a Scalar) Dirs() int { return a.n }

func maxDirs(a, b Scalar) int {
	if a.n > b.n {
		return a.n
	}
	return b.n
}

func (a Scalar) Add(b Scalar) Scalar {
	n := maxDirs(a, b)
	r := Scalar{V: a.V + b.V, n: n}
	for i := 0; i < n; i++ {
		r.D[i] = a.D[i] + b.D[i]
	}
	return r
}

func (a Scalar) Sub(b Scalar) Scalar {
	n := maxDirs(a, b)
	r := Scalar{V: a.V - b.V, n: n}
	for i := 0; i < n; i++ {
		r.D[i] = a.D[i] - b.D[i]
	}
	return r
}

func (a Scalar) Mul(b Scalar) Scalar {
	n := maxDirs(a, b)
	r := Scalar{V: a.V * b.V, n: n}
	for i := 0; i < n; i++ {
		r.D[i] = a.D[i]*b.V + a.V*b.D[i]
	}
	return r
}

func (a Scalar) Div(b Scalar) Scalar {
	n := maxDirs(a, b)
	r := Scalar{V: a.V / b.V, n: n}
	inv := 1 / b.V
	for i := 0; i < n; i++ {
		r.D[i] = (a.D[i] - r.V*b.D[i]) * inv
	}
	return r
}

func (a Scalar) Scale(c float64) Scalar {
	r := Scalar{V: a.V * c, n: a.n}
	for i := 0; i < a.n; i++ {
		r.D[i] = a.D[i] * c
	}
	return r
}

func (a Scalar) AddConst(c float64) Scalar {
	r := a
	r.V += c
	return r
}

func (a Scalar) Neg() Scalar { return a.Scale(-1) }

// Exp, used by the Bernoulli function's exponential.
func (a Scalar) Exp() Scalar {
	e := math.Exp(a.V)
	r := Scalar{V: e, n: a.n}
	for i := 0; i < a.n; i++ {
		r.D[i] = e * a.D[i]
	}
	return r
}

// Sinh/Cosh/Asinh back the Ohmic-contact ψ-row (spec §4.3 "asinh(N/2n_ie)").
func (a Scalar) Sinh() Scalar {
	v, dv := math.Sinh(a.V), math.Cosh(a.V)
	r := Scalar{V: v, n: a.n}
	for i := 0; i < a.n; i++ {
		r.D[i] = dv * a.D[i]
	}
	return r
}

func (a Scalar) Asinh() Scalar {
	v, dv := math.Asinh(a.V), 1/math.Sqrt(a.V*a.V+1)
	r := Scalar{V: v, n: a.n}
	for i := 0; i < a.n; i++ {
		r.D[i] = dv * a.D[i]
	}
	return r
}

// Sqrt backs majority-carrier closed forms (N + sqrt(N^2+4ni^2)).
func (a Scalar) Sqrt() Scalar {
	v := math.Sqrt(a.V)
	r := Scalar{V: v, n: a.n}
	var dv float64
	if v != 0 {
		dv = 0.5 / v
	}
	for i := 0; i < a.n; i++ {
		r.D[i] = dv * a.D[i]
	}
	return r
}

// Bernoulli evaluates the Scharfetter-Gummel weighting function
// B(x) = x/(e^x - 1), extended smoothly at x=0 where B(0)=1, and propagates
// derivatives through the active directions of x. The teacher's box
// integration scheme has no analogue of its own; this is the spec's
// defining formula (§4.2).
func Bernoulli(x Scalar) Scalar {
	const tiny = 1e-12
	if absFloat(x.V) < tiny {
		// B(x) ~= 1 - x/2 + x^2/12 near 0; use the linear term to avoid the
		// 0/0 form while keeping a consistent derivative.
		r := Scalar{V: 1 - x.V/2, n: x.n}
		for i := 0; i < x.n; i++ {
			r.D[i] = -0.5 * x.D[i]
		}
		return r
	}
	ex := x.Exp()
	denom := ex.AddConst(-1)
	return x.Div(denom)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
