// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fvmsim is the CLI harness wiring a simulation's JSON config
// (package inp) into the assembly core (packages device/material/bc/driver),
// in the same run/flag/recover shape as gofem's own main.go. Mesh
// construction and the nonlinear/linear solver kernel are both external
// collaborators (spec §1 Non-goals) supplied by the embedding program, so
// this command validates the config and reports what it parsed; it does not
// build a mesh or run a solver. That is enough to exercise the
// config/BC-listing wiring end to end.
package main

import (
	"encoding/json"
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/opentcad/fvmcore/inp"
	"github.com/opentcad/fvmcore/ulog"
)

func main() {
	verbose := true

	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\nfvmsim -- 3D semiconductor device FVM simulator core\n\n")
	}

	flag.Parse()
	if len(flag.Args()) < 1 {
		chk.Panic("Please, provide a config filename. Ex.: device.json")
	}
	fnamepath := flag.Arg(0)

	sim, err := readSimulation(fnamepath)
	if err != nil {
		chk.Panic("%v", err)
	}
	if err := sim.Validate(); err != nil {
		chk.Panic("%v", err)
	}

	var log ulog.Sink = ulog.Nop{}
	if verbose {
		log = ulog.Std{Rank: mpi.Rank()}
	}
	log.Infof("loaded simulation %q: solver=%s linsol=%s(%s) %d materials, %d boundary lines",
		sim.Data.Desc, sim.Solver.Type, sim.LinSol.Name, sim.LinSol.Category(),
		len(sim.Materials), len(sim.BCLines))

	for _, line := range sim.BCLines {
		log.Infof("%s", line)
	}

	// Mesh construction and the actual nonlinear/linear solve are supplied by
	// the embedding program (spec §1 Non-goals); this command's job ends at a
	// validated, reported configuration.
}

func readSimulation(fnamepath string) (*inp.Simulation, error) {
	if io.FnExt(fnamepath) == "" {
		fnamepath += ".json"
	}
	buf, err := io.ReadFile(fnamepath)
	if err != nil {
		return nil, chk.Err("cannot read config file %q: %v", fnamepath, err)
	}
	var sim inp.Simulation
	if err := json.Unmarshal(buf, &sim); err != nil {
		return nil, chk.Err("cannot parse config file %q: %v", fnamepath, err)
	}
	return &sim, nil
}
