// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/fun/dbf"
)

// FuncData holds one named function definition (spec §6's electrode
// applied-voltage/current waveforms and BC ext.temp functions), mirroring
// gofem/inp.FuncData's shape but without the plotting fields the teacher
// carries (visualization is a Non-goal, spec §1).
type FuncData struct {
	Name string     `json:"name"` // name used by TimeControl/ParamBag references
	Type string     `json:"type"` // "cte", "ramp", "pulse", etc.
	Prms dbf.Params `json:"prms"` // parameters
}

// FuncsData is the named-function database a Simulation carries.
type FuncsData []*FuncData

// Get resolves a function by name, building it via gosl/fun's factory.
// "zero" and "none" are built-in aliases for the always-zero function, the
// same convention gofem/inp.FuncsData.Get uses.
func (o FuncsData) Get(name string) (fun.Func, error) {
	if name == "zero" || name == "none" {
		return &fun.Zero, nil
	}
	for _, f := range o {
		if f.Name == name {
			fcn, err := fun.New(f.Type, f.Prms)
			if err != nil {
				return nil, chk.Err("inp: cannot build function %q: %v", name, err)
			}
			return fcn, nil
		}
	}
	return nil, chk.Err("inp: cannot find function named %q", name)
}
