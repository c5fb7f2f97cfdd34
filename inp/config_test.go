// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import "testing"

func Test_solver_names(tst *testing.T) {
	if err := ValidateSolverNames("newton", "gmres", "ilu"); err != nil {
		tst.Errorf("expected valid combination, got error: %v", err)
	}
	if err := ValidateSolverNames("bogus", "gmres", "ilu"); err == nil {
		tst.Errorf("expected error for unrecognized nonlinear solver")
	}
	if err := ValidateSolverNames("newton", "bogus", "ilu"); err == nil {
		tst.Errorf("expected error for unrecognized linear solver")
	}
	if err := ValidateSolverNames("newton", "gmres", "bogus"); err == nil {
		tst.Errorf("expected error for unrecognized preconditioner")
	}
}

func Test_solver_category(tst *testing.T) {
	cases := []struct {
		name string
		want SolverCategory
	}{
		{"gmres", Iterative},
		{"bicgstable", Iterative},
		{"mumps", Direct},
		{"umfpack", Direct},
		{"lu", Direct},
	}
	for _, c := range cases {
		ls := LinSolData{Name: c.name}
		if got := ls.Category(); got != c.want {
			tst.Errorf("%s: expected category %v, got %v", c.name, c.want, got)
		}
	}
}

func Test_solver_defaults(tst *testing.T) {
	var sd SolverData
	sd.SetDefault()
	if err := sd.Validate(); err != nil {
		tst.Errorf("default SolverData should validate, got: %v", err)
	}
	sd.PostProcess()
	if sd.Itol <= 0 {
		tst.Errorf("expected positive Itol after PostProcess, got %v", sd.Itol)
	}

	var ls LinSolData
	ls.SetDefault()
	if err := ls.Validate(); err != nil {
		tst.Errorf("default LinSolData should validate, got: %v", err)
	}
}
