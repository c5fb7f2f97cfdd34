// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package solverapi declares the nonlinear/linear solver boundary the core
// calls into, without implementing a solver kernel itself (spec §1
// Non-goals: "nonlinear/linear solver kernels ... remain external
// collaborators"). It mirrors gofem/fem.Solver's role — a thin interface a
// concrete time-stepper implements against — generalized from gofem's
// single time-loop Run method to the Newton/line-search/trust-region
// variety spec §6 names.
package solverapi

import "github.com/opentcad/fvmcore/sparse"

// Problem is the callback contract a nonlinear solver drives, implemented
// by driver.Driver.
type Problem interface {
	Function(y []float64, fb sparse.Vector) error
	Jacobian(y []float64, kb sparse.Matrix) error
}

// Outcome reports one nonlinear solve's result, mirroring the convergence
// bookkeeping gofem/fem.Solver.Run tracks internally (iteration count,
// residual norm) rather than just a bool.
type Outcome struct {
	Converged  bool
	Iterations int
	ResNorm    float64
}

// NonlinearSolver is the outer Newton/basic/linesearch/trustregion driver
// (spec §6's SolverData.Type token), resolved and supplied by the caller —
// this core never selects or constructs one itself.
type NonlinearSolver interface {
	Solve(p Problem, y []float64, kb sparse.Matrix, fb sparse.Vector) (Outcome, error)
}

// LinearSolver is the inner Krylov/direct solve (spec §6's LinSolData),
// invoked by a NonlinearSolver implementation once per Newton step; this
// core never calls it directly.
type LinearSolver interface {
	Solve(kb sparse.Matrix, rhs, x []float64) error
}
