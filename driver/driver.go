// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package driver implements the global assembler driver (C9): it drives
// per-region residual/Jacobian assembly, hanging-node reconstruction and
// the BC preprocess/function/jacobian protocol in the fixed order spec
// §4.5 mandates, and exposes the electrode-trace sensitivity routine.
// Grounded on fem/domain.go's Domain as the thing that owns "the" assembly
// entry point a nonlinear solver calls back into, and on its bkpSol
// divergence-recovery field for Checkpoint/Restore.
package driver

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/opentcad/fvmcore/assembly"
	"github.com/opentcad/fvmcore/bc"
	"github.com/opentcad/fvmcore/circuit"
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
	"github.com/opentcad/fvmcore/ulog"
)

// Driver owns the mesh, the material models, one Assembler per region and
// every Boundary, and implements sparse.NonlinearProblem so an external
// Newton driver can call it back directly (spec §6 "a nonlinear driver that
// calls back function(x) and jacobian(x)").
type Driver struct {
	Mesh       *device.Mesh
	Models     *material.ModelSet
	Assemblers map[int]assembly.Assembler // keyed by Region.Index
	Boundaries []*bc.Boundary
	Dt         float64
	Log        ulog.Sink

	hanging assembly.Hanging
}

// New returns an empty Driver bound to mesh/models. Assemblers and
// Boundaries are registered with AddAssembler/AddBoundary.
func New(mesh *device.Mesh, models *material.ModelSet) *Driver {
	return &Driver{
		Mesh:       mesh,
		Models:     models,
		Assemblers: make(map[int]assembly.Assembler),
		Log:        ulog.Nop{},
	}
}

// AddAssembler binds a region's Assembler.
func (d *Driver) AddAssembler(region int, a assembly.Assembler) {
	d.Assemblers[region] = a
}

// AddBoundary registers a Boundary for the BC preprocess/function/jacobian
// passes.
func (d *Driver) AddBoundary(b *bc.Boundary) {
	d.Boundaries = append(d.Boundaries, b)
}

// regionOrder returns region indices in ascending order, for deterministic
// assembly (spec §4.1 "assembled exactly once ... in a stable order").
func (d *Driver) regionOrder() []int {
	out := make([]int, 0, len(d.Assemblers))
	for r := range d.Assemblers {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// handlerFor fetches a Boundary's Handler or panics with the BC label, per
// spec §7 "user-visible failures always include the BC label".
func handlerFor(b *bc.Boundary) bc.Handler {
	h := bc.HandlerFor(b.Kind)
	if h == nil {
		chk.Panic("driver: no handler registered for boundary %q (kind=%v)", b.Label, b.Kind)
	}
	return h
}

// thermalVoltage resolves Vt = kT/q at an FvmNode, the same helper every
// assembler in package assembly computes locally; the driver needs its own
// copy to pass into Hanging.Pin/JacobianPin without assembly exporting it.
func (d *Driver) thermalVoltage(fvmIdx int) float64 {
	const kOverQ = 8.617333262e-5
	f := d.Mesh.FvmNodes[fvmIdx]
	t := f.Data.LatticeTemp
	if t <= 0 {
		t = 300
	}
	return kOverQ * t
}

// FillValue seeds the initial guess vector: every Boundary's FillValue hook
// runs over its own FvmNodes (region-level initial guesses are expected to
// already be in y from mesh setup, e.g. from an equilibrium solve or a
// prior time step).
func (d *Driver) FillValue(y []float64) {
	for _, b := range d.Boundaries {
		handlerFor(b).FillValue(b, d.Mesh, d.Models, y)
	}
}

// ReserveJacobian pre-touches the sparsity pattern with INSERT zeros so the
// first real ADD pass does not relocate nonzeros (spec §4.3
// "jacobian_reserve"). Call once at setup, before the first Jacobian call.
func (d *Driver) ReserveJacobian(kb sparse.Matrix) {
	for _, b := range d.Boundaries {
		handlerFor(b).ReserveJacobian(b, d.Mesh, kb)
	}
	kb.FlushAssembly()
}

// Function implements sparse.NonlinearProblem: the fixed assembly order of
// spec §4.5 (i) per-region residual, (ii) hanging-node reconstruction,
// (iii) BC preprocess, (iv) flush/redirect/zero, (v) BC function.
func (d *Driver) Function(y []float64, fb sparse.Vector) error {
	mode := sparse.Add
	for _, r := range d.regionOrder() {
		mode = d.Assemblers[r].Residual(d.Mesh, d.Models, y, fb, mode, d.Dt)
	}
	fb.FlushAssembly()

	d.hanging.Redistribute(d.Mesh, fb)
	d.hanging.Pin(d.Mesh, y, fb, d.thermalVoltage)
	fb.FlushAssembly()

	var clear []int
	var redirect []bc.RowRedirect
	for _, b := range d.Boundaries {
		c, r := handlerFor(b).Preprocess(b, d.Mesh)
		clear = append(clear, c...)
		redirect = append(redirect, r...)
	}

	fb.FlushAssembly()
	for _, rd := range redirect {
		v := fb.GetValue(rd.Src)
		fb.SetValue(rd.Dst, v, sparse.Add)
	}
	fb.FlushAssembly()
	fb.ZeroRows(clear)

	for _, b := range d.Boundaries {
		handlerFor(b).Function(b, d.Mesh, d.Models, y, fb, d.Dt)
	}
	fb.FlushAssembly()
	return nil
}

// Jacobian implements sparse.NonlinearProblem with the same fixed order as
// Function.
func (d *Driver) Jacobian(y []float64, kb sparse.Matrix) error {
	mode := sparse.Add
	for _, r := range d.regionOrder() {
		mode = d.Assemblers[r].Jacobian(d.Mesh, d.Models, y, kb, mode, d.Dt)
	}
	kb.FlushAssembly()

	d.hanging.JacobianPin(d.Mesh, y, kb, d.thermalVoltage)
	kb.FlushAssembly()

	var clear []int
	var redirect []bc.RowRedirect
	for _, b := range d.Boundaries {
		c, r := handlerFor(b).Preprocess(b, d.Mesh)
		clear = append(clear, c...)
		redirect = append(redirect, r...)
	}
	kb.FlushAssembly()
	cols := make([]int, kb.Rows())
	for j := range cols {
		cols[j] = j
	}
	for _, rd := range redirect {
		for j, v := range kb.GetValues([]int{rd.Src}, cols)[0] {
			if v != 0 {
				kb.SetValue(rd.Dst, j, v, sparse.Add)
			}
		}
	}
	kb.FlushAssembly()
	kb.ZeroRows(clear, 0)

	for _, b := range d.Boundaries {
		handlerFor(b).Jacobian(b, d.Mesh, d.Models, y, kb, d.Dt)
	}
	kb.FlushAssembly()
	return nil
}

// AcceptStep commits every electrode's step history (spec §4.4 Update) once
// an outer Newton iteration has converged.
func (d *Driver) AcceptStep() {
	seen := make(map[*circuit.Electrode]bool)
	for _, b := range d.Boundaries {
		if b.Elec != nil && !seen[b.Elec] {
			b.Elec.Update(d.Dt)
			seen[b.Elec] = true
		}
	}
}

// ElectrodeTrace implements spec §4.5's "electrode trace" routine: reads
// back the electrode row of a converged Jacobian via GetValues, then
// neutralizes the row's own mna_jacobian diagonal term so what remains is
// the small-signal sensitivity of the terminal current alone, dI/dx.
func (d *Driver) ElectrodeTrace(b *bc.Boundary, kb sparse.Matrix) []float64 {
	if b.Offsets[0] < 0 {
		return nil
	}
	row := b.Offsets[0]
	n := kb.Rows()
	cols := make([]int, n)
	for i := range cols {
		cols[i] = i
	}
	dFdx := kb.GetValues([]int{row}, cols)[0]
	if b.Elec != nil {
		dFdx[row] -= b.Elec.MnaJacobian(d.Dt)
	}
	return dFdx
}

// Checkpoint is a backup of solver state suitable for divergence recovery
// (spec §7 "local recovery is limited to Newton step-halving and time-step
// cutback"), grounded on fem/domain.go's bkpSol field.
type Checkpoint struct {
	Y          []float64
	Electrodes []circuit.Electrode
}

// Backup snapshots y and every electrode's history.
func (d *Driver) Backup(y []float64) *Checkpoint {
	cp := &Checkpoint{Y: append([]float64(nil), y...)}
	for _, b := range d.Boundaries {
		if b.Elec != nil {
			cp.Electrodes = append(cp.Electrodes, *b.Elec)
		}
	}
	return cp
}

// Restore reinstates a Checkpoint taken by Backup, writing into y in place.
func (d *Driver) Restore(cp *Checkpoint, y []float64) {
	copy(y, cp.Y)
	i := 0
	for _, b := range d.Boundaries {
		if b.Elec != nil {
			*b.Elec = cp.Electrodes[i]
			i++
		}
	}
}

// ListBoundaries prints every boundary's one-line descriptor (spec §6),
// grounded on fem/essenbcs.go#EssentialBcs.List's constraint-table listing.
func (d *Driver) ListBoundaries() string {
	var out string
	for _, b := range d.Boundaries {
		out += io.Sf("%s\n", bc.Emit(b))
	}
	return out
}
