// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/cpmech/gosl/utl"

	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// schottkyHandler implements SchottkyContact / IF_Metal_Schottky (spec
// §4.3): a Dirichlet psi row shifted by the metal-semiconductor
// workfunction difference instead of Ohmic's doping-derived built-in
// potential, with carrier densities clamped to equilibrium values rather
// than solved from doping (no depletion-region doping at a Schottky
// contact to invert). Grounded on the same node/row-claim shape as
// ohmicHandler; only FillValue/Function's psi formula and the carrier
// clamp differ.
type schottkyHandler struct{}

func init() {
	Register(SchottkyContact, schottkyHandler{})
	Register(IFMetalSchottky, schottkyHandler{})
}

func (schottkyHandler) semiconductorNode(b *Boundary, mesh *device.Mesh) (int, bool) {
	for _, group := range b.Nodes {
		for _, idx := range group {
			if mesh.Regions[mesh.FvmNodes[idx].Region].Kind == device.Semiconductor {
				return idx, true
			}
		}
	}
	return 0, false
}

// barrierPsi returns the psi a Schottky contact pins its semiconductor node
// to: V_e minus the metal workfunction, plus the semiconductor's own
// electron affinity reference (spec §4.3 "psi = V_e - workfunction + chi").
func barrierPsi(b *Boundary, bnd material.Bands, Ve float64) float64 {
	return Ve - b.Params.Workfunction + bnd.Affin
}

func (h schottkyHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok {
		return
	}
	f := mesh.FvmNodes[idx]
	bnd := models.Get(f.Region).Bands(material.State{LatticeTemp: f.Data.LatticeTemp})
	if f.Offset < 0 {
		return
	}
	y[f.Offset] = barrierPsi(b, bnd, 0)
	y[f.Offset+1] = bnd.Ni * bnd.Ni / utl.Max(f.Data.NetDoping, bnd.Ni)
	y[f.Offset+2] = bnd.Ni * bnd.Ni / utl.Max(-f.Data.NetDoping, bnd.Ni)
}

func (h schottkyHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return nil, nil
	}
	f := mesh.FvmNodes[idx]
	return []int{f.Offset, f.Offset + 1, f.Offset + 2}, nil
}

func (h schottkyHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	mdl := models.Get(f.Region)
	bnd := mdl.Bands(material.State{LatticeTemp: f.Data.LatticeTemp})
	Ve := electrodeVoltage(b, y)

	psi, n, p := y[f.Offset], y[f.Offset+1], y[f.Offset+2]
	nEq := bnd.Ni * bnd.Ni / utl.Max(f.Data.NetDoping, bnd.Ni)
	pEq := bnd.Ni * bnd.Ni / utl.Max(-f.Data.NetDoping, bnd.Ni)

	fb.SetValue(f.Offset, psi-barrierPsi(b, bnd, Ve), sparse.Add)
	fb.SetValue(f.Offset+1, n-nEq, sparse.Add)
	fb.SetValue(f.Offset+2, p-pEq, sparse.Add)

	if b.Elec != nil {
		// thermionic-emission-limited current is the spec's "terminal
		// current" alternative for Schottky (spec §4.3 references the
		// Ohmic Sum(Jn-Jp).A as the general contact-current form); reuse
		// it here via the same edge-flux accumulation ohmicHandler uses.
		o := ohmicHandler{}
		b.Elec.I += o.terminalCurrent(mesh, mdl, f, y) * b.Params.ZWidth
	}
}

func (h schottkyHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	kb.SetValue(f.Offset, f.Offset, 1, sparse.Add)
	kb.SetValue(f.Offset+1, f.Offset+1, 1, sparse.Add)
	kb.SetValue(f.Offset+2, f.Offset+2, 1, sparse.Add)
	if b.Elec != nil && b.Offsets[0] >= 0 {
		kb.SetValue(f.Offset, b.Offsets[0], -1, sparse.Add)
	}
}

func (h schottkyHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {
	idx, ok := h.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	kb.SetValue(f.Offset, f.Offset, 0, sparse.Insert)
	kb.SetValue(f.Offset+1, f.Offset+1, 0, sparse.Insert)
	kb.SetValue(f.Offset+2, f.Offset+2, 0, sparse.Insert)
}
