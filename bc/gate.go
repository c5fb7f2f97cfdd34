// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

const eps0FarPerCm = 8.8541878128e-14 // F/cm

// gateHandler implements SimpleGateContact (spec §4.3): a MOS-style gate
// with no explicit oxide mesh region. Unlike Ohmic/Schottky it does not
// claim the semiconductor surface node's psi row — it adds a Robin-type
// surface-charge term onto it, the oxide-capacitance analogue of
// neumannHandler's heat-transfer term, plus the gate's own fixed charge Qf.
type gateHandler struct{}

func init() { Register(SimpleGateContact, gateHandler{}) }

func (gateHandler) semiconductorNode(b *Boundary, mesh *device.Mesh) (int, bool) {
	for _, group := range b.Nodes {
		for _, idx := range group {
			if mesh.Regions[mesh.FvmNodes[idx].Region].Kind == device.Semiconductor {
				return idx, true
			}
		}
	}
	return 0, false
}

// oxideCap returns C_ox per unit area, eps_r*eps0/t_ox (spec §4.3).
func (gateHandler) oxideCap(b *Boundary) float64 {
	if b.Params.Thickness <= 0 {
		return 0
	}
	return b.Params.Eps * eps0FarPerCm / b.Params.Thickness
}

func (gateHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
}

func (gateHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	return nil, nil
}

func (h gateHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok {
		return
	}
	f := mesh.FvmNodes[idx]
	if f.Offset < 0 {
		return
	}
	psi := y[f.Offset]
	Ve := electrodeVoltage(b, y)
	cox := h.oxideCap(b)
	area := f.BoundaryArea

	q := cox*(Ve-b.Params.Workfunction-psi)*area + qCharge*b.Params.Qf*area
	fb.SetValue(f.Offset, q, sparse.Add)

	if b.Elec != nil && dt > 0 {
		psiLast := psi
		if f.Data.YLast != nil && len(f.Data.YLast) > 0 {
			psiLast = f.Data.YLast[0]
		}
		b.Elec.I += cox * area * ((Ve - b.Elec.VeLast) - (psi - psiLast)) / dt * b.Params.ZWidth
	}
}

func (h gateHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok {
		return
	}
	f := mesh.FvmNodes[idx]
	if f.Offset < 0 {
		return
	}
	cox := h.oxideCap(b)
	area := f.BoundaryArea
	kb.SetValue(f.Offset, f.Offset, -cox*area, sparse.Add)
	if b.Offsets[0] >= 0 {
		kb.SetValue(f.Offset, b.Offsets[0], cox*area, sparse.Add)
	}
}

func (gateHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {}

// gateContactHandler implements plain GateContact (spec §4.3 "Schottky /
// Gate / Simple gate: Dirichlet on psi using workfunction-shifted applied
// potential"): used when the gate's oxide is itself meshed as an Insulator
// region, so unlike SimpleGateContact there is no implicit capacitance to
// add — it is a bare Dirichlet row on whichever region's surface node this
// boundary touches, mirroring schottkyHandler's psi pin without the
// semiconductor carrier-density rewrite (only the surface node's psi row is
// cleared and rewritten, whether that node is an Insulator or a
// Semiconductor node).
type gateContactHandler struct{}

func init() { Register(GateContact, gateContactHandler{}) }

func (gateContactHandler) surfaceNode(b *Boundary, mesh *device.Mesh) (int, bool) {
	for _, group := range b.Nodes {
		for _, idx := range group {
			k := mesh.Regions[mesh.FvmNodes[idx].Region].Kind
			if k == device.Insulator || k == device.Semiconductor {
				return idx, true
			}
		}
	}
	return 0, false
}

func (h gateContactHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
	idx, ok := h.surfaceNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	y[f.Offset] = -b.Params.Workfunction
}

func (h gateContactHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	idx, ok := h.surfaceNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return nil, nil
	}
	return []int{mesh.FvmNodes[idx].Offset}, nil
}

func (h gateContactHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	idx, ok := h.surfaceNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	Ve := electrodeVoltage(b, y)
	fb.SetValue(f.Offset, y[f.Offset]+b.Params.Workfunction-Ve, sparse.Add)
}

func (h gateContactHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	idx, ok := h.surfaceNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	kb.SetValue(f.Offset, f.Offset, 1, sparse.Add)
	if b.Elec != nil && b.Offsets[0] >= 0 {
		kb.SetValue(f.Offset, b.Offsets[0], -1, sparse.Add)
	}
}

func (h gateContactHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {
	idx, ok := h.surfaceNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	kb.SetValue(mesh.FvmNodes[idx].Offset, mesh.FvmNodes[idx].Offset, 0, sparse.Insert)
}
