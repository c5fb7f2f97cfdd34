// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the in-memory simulation configuration contract
// (spec §6 "Nonlinear/linear solver selection strings"): a JSON-tagged
// input struct mirroring gofem/inp.Data/SolverData/LinSolData field-for-
// field in style (same "input data" / "derived" struct split, same
// SetDefault/PostProcess convention). Unlike gofem/inp, mesh file reading,
// material-parameter file parsing and textual-BC parsing are Non-goals of
// this spec — those are external collaborators — so this package only
// models the config surface the core itself consumes.
package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Data holds global simulation data, mirroring gofem/inp.Data's role.
type Data struct {
	Desc    string `json:"desc"`    // description of the simulation
	DirOut  string `json:"dirout"`  // directory for output results
	Encoder string `json:"encoder"` // encoder name; "gob" or "json"
}

// nonlinear solver names recognized per spec §6.
var nonlinearNames = map[string]bool{
	"newton": true, "basic": true, "linesearch": true, "trustregion": true,
}

// linear solver names recognized per spec §6.
var linearNames = map[string]bool{
	"cg": true, "cgn": true, "cgs": true, "cr": true, "qmr": true, "tcqmr": true,
	"tfqmr": true, "bicg": true, "bcgs": true, "bicgstable": true, "bcgsl": true,
	"minres": true, "gmres": true, "dgmres": true, "fgmres": true, "lsqr": true,
	"jacobian": true, "sor_forward": true, "sor_backward": true, "ssor": true,
	"richardson": true, "chebyshev": true, "lu": true, "umfpack": true,
	"superlu": true, "pastix": true, "mumps": true, "superlu_dist": true, "gss": true,
}

// preconditioner names recognized per spec §6.
var preconditionerNames = map[string]bool{
	"identity": true, "jacobian": true, "bjacobian": true, "sor": true, "ssor": true,
	"asm": true, "asmilu0": true, "asmilu1": true, "asmilu2": true, "asmilu3": true,
	"asmlu": true, "amg": true, "eisenstat": true, "icc": true, "ilu": true,
	"ilut": true, "lu": true, "parms": true,
}

// directLinearNames is the subset of linearNames that is DIRECT rather than
// ITERATIVE (spec §6 "Linear solvers partition into ITERATIVE | DIRECT
// categories").
var directLinearNames = map[string]bool{
	"chebyshev": true, "lu": true, "umfpack": true, "superlu": true,
	"pastix": true, "mumps": true, "superlu_dist": true, "gss": true,
}

// SolverCategory is the ITERATIVE/DIRECT partition of a linear solver name.
type SolverCategory int

const (
	Iterative SolverCategory = iota
	Direct
)

func (c SolverCategory) String() string {
	if c == Direct {
		return "DIRECT"
	}
	return "ITERATIVE"
}

// SolverData holds the outer Newton solver's selection and tolerances,
// mirroring gofem/inp.SolverData's input/derived split.
type SolverData struct {
	// input
	Type   string  `json:"type"`   // newton|basic|linesearch|trustregion
	NmaxIt int     `json:"nmaxit"` // max Newton iterations
	Atol   float64 `json:"atol"`   // absolute tolerance
	Rtol   float64 `json:"rtol"`   // relative tolerance
	FbTol  float64 `json:"fbtol"`  // tolerance for convergence on the residual
	FbMin  float64 `json:"fbmin"`  // minimum value of the residual norm

	// derived
	Itol float64 // iterations tolerance, max(Atol, Rtol)
}

// SetDefault fills SolverData with gofem-style sane defaults.
func (o *SolverData) SetDefault() {
	o.Type = "newton"
	o.NmaxIt = 20
	o.Atol = 1e-12
	o.Rtol = 1e-8
	o.FbTol = 1e-9
	o.FbMin = 1e-13
}

// PostProcess computes derived quantities, mirroring gofem/inp.SolverData's
// own PostProcess step.
func (o *SolverData) PostProcess() {
	o.Itol = o.Atol
	if o.Rtol > o.Itol {
		o.Itol = o.Rtol
	}
}

// Validate checks Type against the recognized nonlinear-solver names.
func (o *SolverData) Validate() error {
	if !nonlinearNames[o.Type] {
		return chk.Err("inp: unrecognized nonlinear solver type %q", o.Type)
	}
	return nil
}

// LinSolData holds the linear-solver/preconditioner selection, mirroring
// gofem/inp.LinSolData.
type LinSolData struct {
	Name      string `json:"name"`      // linear solver name, one of spec §6's token list
	Precond   string `json:"precond"`   // preconditioner name
	Symmetric bool   `json:"symmetric"` // use symmetric solver variant
	Verbose   bool   `json:"verbose"`   // verbose?
	Timing    bool   `json:"timing"`    // show timing statistics
	Ordering  string `json:"ordering"`  // ordering scheme
	Scaling   string `json:"scaling"`   // scaling scheme
}

// SetDefault fills LinSolData with sane defaults.
func (o *LinSolData) SetDefault() {
	o.Name = "gmres"
	o.Precond = "ilu"
}

// Validate checks Name and Precond against the recognized token tables.
func (o *LinSolData) Validate() error {
	if !linearNames[o.Name] {
		return chk.Err("inp: unrecognized linear solver name %q", o.Name)
	}
	if o.Precond != "" && !preconditionerNames[o.Precond] {
		return chk.Err("inp: unrecognized preconditioner name %q", o.Precond)
	}
	return nil
}

// Category returns whether Name is an ITERATIVE or DIRECT linear solver.
func (o *LinSolData) Category() SolverCategory {
	if directLinearNames[o.Name] {
		return Direct
	}
	return Iterative
}

// TimeControl holds the simulation time-stepping configuration, mirroring
// gofem/inp.TimeControl's shape: a constant value or a named function from
// the Functions database (spec §6's "applied voltage/current waveforms").
type TimeControl struct {
	Tf     float64 `json:"tf"`     // final time
	Dt     float64 `json:"dt"`     // time step size (if constant)
	DtOut  float64 `json:"dtout"`  // time step size for output
	DtFcn  string  `json:"dtfcn"`  // time step size, by function name
	DtoFcn string  `json:"dtofcn"` // output time step size, by function name

	// derived
	DtFunc  fun.Func // resolved Dt function
	DtoFunc fun.Func // resolved DtOut function
}

// MaterialRef binds a mesh region to a registered material.Model by name
// and its parameters, the JSON input counterpart of device.MaterialRef
// (spec §1 Non-goals: the parameter *file* format is out of scope; this
// struct only carries the already-decoded in-memory values).
type MaterialRef struct {
	Region int      `json:"region"` // index into Mesh.Regions
	Model  string   `json:"model"`  // registered material.Model name
	Prms   fun.Prms `json:"prms"`   // model parameters
}

// Simulation holds the full in-memory configuration contract the core
// consumes: global data, function database, solver/linear-solver
// selection, time control, and material bindings. BCLines holds raw §6
// one-line BC descriptors exactly as read from JSON; parsing them into
// bound Boundary values is a mesh-setup concern the bc package owns
// (bc.Parse), not this package's.
type Simulation struct {
	Data      Data           `json:"data"`
	Functions FuncsData      `json:"functions"`
	Solver    SolverData     `json:"solver"`
	LinSol    LinSolData     `json:"linsol"`
	Control   TimeControl    `json:"control"`
	Materials []*MaterialRef `json:"materials"`
	BCLines   []string       `json:"bcs"`
}

// Validate runs every sub-config's Validate and resolves TimeControl's
// function references against Functions.
func (o *Simulation) Validate() error {
	if err := o.Solver.Validate(); err != nil {
		return err
	}
	if err := o.LinSol.Validate(); err != nil {
		return err
	}
	o.Solver.PostProcess()
	if o.Control.DtFcn != "" {
		f, err := o.Functions.Get(o.Control.DtFcn)
		if err != nil {
			return err
		}
		o.Control.DtFunc = f
	}
	if o.Control.DtoFcn != "" {
		f, err := o.Functions.Get(o.Control.DtoFcn)
		if err != nil {
			return err
		}
		o.Control.DtoFunc = f
	}
	return nil
}

// ValidateSolverNames is the standalone entry point spec's SPEC_FULL
// "Named solver/preconditioner validation" names directly: checks three
// bare tokens against the §6 tables without requiring a full Simulation.
func ValidateSolverNames(nonlinear, linear, precond string) error {
	if !nonlinearNames[nonlinear] {
		return chk.Err("inp: unrecognized nonlinear solver type %q", nonlinear)
	}
	if !linearNames[linear] {
		return chk.Err("inp: unrecognized linear solver name %q", linear)
	}
	if precond != "" && !preconditionerNames[precond] {
		return chk.Err("inp: unrecognized preconditioner name %q", precond)
	}
	return nil
}
