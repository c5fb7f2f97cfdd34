// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sparse models the external interfaces consumed from the solver
// kernel (spec §6): a distributed sparse matrix and vector supporting the
// INSERT/ADD assembly discipline, plus the nonlinear driver callback shape.
//
// The kernels themselves — the actual Newton loop, the linear solve — are
// external collaborators (spec §1 Non-goals); this package only fixes the
// contract the assembler drives. The in-memory Triplet/Vector below mirror
// gosl/la.Triplet and a dense gosl-style vector closely enough to exercise
// every assembly path in tests without linking a real distributed backend.
package sparse

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Mode is the assembly mode a matrix/vector is currently accepting writes
// under. Transitioning between INSERT and ADD is a collective flush barrier
// (spec §5); NotSet means no writes have happened yet this assembly pass.
type Mode int

const (
	NotSet Mode = iota
	Insert
	Add
)

func (m Mode) String() string {
	switch m {
	case Insert:
		return "INSERT"
	case Add:
		return "ADD"
	default:
		return "NOT_SET"
	}
}

// Matrix is the sparse matrix contract the assembler writes into. Real
// deployments back this with a PETSc/MUMPS-backed distributed matrix; the
// core only ever calls these methods.
type Matrix interface {
	SetValue(i, j int, v float64, mode Mode)
	GetValues(rows, cols []int) [][]float64
	ZeroRows(rows []int, diag float64)
	FlushAssembly()
	Rows() int
}

// Vector is the companion distributed vector contract.
type Vector interface {
	SetValue(i int, v float64, mode Mode)
	GetValue(i int) float64
	ZeroRows(rows []int)
	FlushAssembly()
	Len() int
}

// Triplet is a local, single-process Matrix built on gosl/la.Triplet. It is
// the reference implementation used by tests and by single-rank runs; it
// enforces the same INSERT/ADD discipline a distributed backend would.
type Triplet struct {
	n, nnzCap int
	t         la.Triplet
	mode      Mode
	zeroed    map[int]bool
}

// NewTriplet allocates a local matrix of size n x n with room for nnzCap
// nonzero contributions before the internal buffer must regrow.
func NewTriplet(n, nnzCap int) *Triplet {
	o := &Triplet{n: n, nnzCap: nnzCap, zeroed: make(map[int]bool)}
	o.t.Init(n, n, nnzCap)
	return o
}

func (o *Triplet) Rows() int { return o.n }

func (o *Triplet) SetValue(i, j int, v float64, mode Mode) {
	if mode != o.mode && o.mode != NotSet {
		o.FlushAssembly()
	}
	o.mode = mode
	if mode == Insert {
		o.t.Put(i, j, v)
		return
	}
	if mode != Add {
		chk.Panic("sparse: SetValue requires Insert or Add mode, got %v", mode)
	}
	o.t.Put(i, j, v)
}

// GetValues reads back a dense sub-block, used by the electrode-trace
// routine (spec §4.5) to read rows without mutating them.
func (o *Triplet) GetValues(rows, cols []int) [][]float64 {
	full := o.t.ToDense()
	out := make([][]float64, len(rows))
	for a, i := range rows {
		out[a] = make([]float64, len(cols))
		for b, j := range cols {
			out[a][b] = full[i][j]
		}
	}
	return out
}

// ZeroRows clears a set of rows (the row-clear step of the BC protocol,
// spec §4.3) ahead of the BC's own INSERT/ADD of the replacement equation.
// The matching diagonal value is left for the caller to re-insert.
func (o *Triplet) ZeroRows(rows []int, diag float64) {
	full := o.t.ToDense()
	for _, r := range rows {
		for j := range full[r] {
			full[r][j] = 0
		}
	}
	o.t.Start()
	for i := range full {
		for j, v := range full[i] {
			if v != 0 {
				o.t.Put(i, j, v)
			}
		}
	}
	_ = diag // the replacement diagonal is written by the BC's own SetValue call
}

func (o *Triplet) FlushAssembly() {
	o.mode = NotSet
}

// Dense materializes the assembled matrix, honoring row zeroing; only meant
// for small test meshes (property checks, §8).
func (o *Triplet) Dense() [][]float64 {
	d := o.t.ToDense()
	for r := range o.zeroed {
		for j := range d[r] {
			d[r][j] = 0
		}
	}
	return d
}

// DenseVector is the reference Vector implementation, a plain []float64
// with the same assembly discipline as Triplet.
type DenseVector struct {
	v      []float64
	mode   Mode
	zeroed map[int]bool
}

func NewDenseVector(n int) *DenseVector {
	return &DenseVector{v: make([]float64, n), zeroed: make(map[int]bool)}
}

func (o *DenseVector) Len() int { return len(o.v) }

func (o *DenseVector) SetValue(i int, val float64, mode Mode) {
	if mode != o.mode && o.mode != NotSet {
		o.FlushAssembly()
	}
	o.mode = mode
	if mode == Insert {
		o.v[i] = val
		return
	}
	if mode != Add {
		chk.Panic("sparse: SetValue requires Insert or Add mode, got %v", mode)
	}
	o.v[i] += val
}

func (o *DenseVector) GetValue(i int) float64 { return o.v[i] }

func (o *DenseVector) ZeroRows(rows []int) {
	for _, r := range rows {
		o.zeroed[r] = true
		o.v[r] = 0
	}
}

func (o *DenseVector) FlushAssembly() { o.mode = NotSet }

// Values returns the underlying slice (copy-free; callers must not retain
// across a Reset).
func (o *DenseVector) Values() []float64 { return o.v }

// Reset zeros the vector and clears assembly state, ready for a new residual
// evaluation.
func (o *DenseVector) Reset() {
	for i := range o.v {
		o.v[i] = 0
	}
	o.mode = NotSet
	o.zeroed = make(map[int]bool)
}

// InfNorm is used by property checks (§8.1 discrete conservation).
func InfNorm(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

// NonlinearProblem is the callback contract a black-box Newton driver uses
// to evaluate this core's residual and Jacobian (spec §6).
type NonlinearProblem interface {
	Function(x []float64, fb Vector) error
	Jacobian(x []float64, kb Matrix) error
}
