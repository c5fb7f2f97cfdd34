// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// interConnectHandler implements InterConnect (spec §4.3 "Interconnect
// hub"): every tied electrode gets an extra V_e - V_hub = 0 row at its own
// offset, and the hub's own offset carries Sum(I_i) = 0 as computed by
// circuit.Hub.SumCurrent (the raw terminal currents, with no R-coupling
// term).
// Unlike the contact handlers this never touches a semiconductor/insulator
// node row at all — it is purely a circuit-level coupling.
type interConnectHandler struct{}

func init() { Register(InterConnect, interConnectHandler{}) }

func (interConnectHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
	if b.Offsets[0] >= 0 && b.Elec != nil {
		y[b.Offsets[0]] = b.Elec.Ve
	}
	if b.Offsets[1] >= 0 && b.Hub != nil {
		y[b.Offsets[1]] = b.Hub.VHub
	}
}

func (interConnectHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	return nil, nil
}

func (interConnectHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	if b.Elec == nil || b.Hub == nil || b.Offsets[0] < 0 || b.Offsets[1] < 0 {
		return
	}
	Ve := y[b.Offsets[0]]
	Vh := y[b.Offsets[1]]
	fb.SetValue(b.Offsets[0], Ve-Vh, sparse.Add)

	// Only one electrode per hub needs to emit the hub's own equation
	// (every tied InterConnect boundary shares the same Hub pointer and
	// would otherwise add Sum(I_i) in N times); the convention is that the
	// first electrode in Hub.Electrodes owns it.
	if len(b.Hub.Electrodes) > 0 && b.Hub.Electrodes[0] == b.Elec {
		fb.SetValue(b.Offsets[1], b.Hub.SumCurrent(), sparse.Add)
	}
}

func (interConnectHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	if b.Elec == nil || b.Hub == nil || b.Offsets[0] < 0 || b.Offsets[1] < 0 {
		return
	}
	kb.SetValue(b.Offsets[0], b.Offsets[0], 1, sparse.Add)
	kb.SetValue(b.Offsets[0], b.Offsets[1], -1, sparse.Add)
	// dSumCurrent/dV_e terms are accumulated by each electrode's own
	// contact BC row, since I_i is itself a function of that electrode's
	// node unknowns; the hub row has no further direct dependence here.
}

func (interConnectHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {
	if b.Offsets[0] < 0 || b.Offsets[1] < 0 {
		return
	}
	kb.SetValue(b.Offsets[0], b.Offsets[0], 0, sparse.Insert)
	kb.SetValue(b.Offsets[0], b.Offsets[1], 0, sparse.Insert)
}
