// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// solderPadHandler implements SolderPad (spec §4.3): a resistive-metal pad
// whose vertex is taken from the metal (Electrode-kind) region or from an
// insulator region, pinning
// psi + chi/q - V_e = 0 on the metal side (electron-affinity reference) or
// psi + W/q - V_e = 0 on the insulator side (workfunction reference), and
// driving the electrode current from sigma.A_cv.(psi-psi_nb)/L across the
// pad's own lateral resistive-metal edges rather than a carrier flux (the
// pad has no carriers of its own).
type solderPadHandler struct{}

func init() { Register(SolderPad, solderPadHandler{}) }

func (solderPadHandler) padNode(b *Boundary, mesh *device.Mesh) (int, bool) {
	for _, group := range b.Nodes {
		for _, idx := range group {
			k := mesh.Regions[mesh.FvmNodes[idx].Region].Kind
			if k == device.Electrode || k == device.Insulator {
				return idx, true
			}
		}
	}
	return 0, false
}

func (solderPadHandler) reference(b *Boundary, r *device.Region, bnd material.Bands) float64 {
	if r.Kind == device.Electrode {
		return bnd.Affin
	}
	return b.Params.Workfunction
}

func (h solderPadHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
	idx, ok := h.padNode(b, mesh)
	if !ok {
		return
	}
	f := mesh.FvmNodes[idx]
	if f.Offset < 0 {
		return
	}
	r := mesh.Regions[f.Region]
	bnd := models.Get(f.Region).Bands(material.State{LatticeTemp: f.Data.LatticeTemp})
	y[f.Offset] = -h.reference(b, r, bnd)
}

func (h solderPadHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	idx, ok := h.padNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return nil, nil
	}
	return []int{mesh.FvmNodes[idx].Offset}, nil
}

func (h solderPadHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	idx, ok := h.padNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	r := mesh.Regions[f.Region]
	mdl := models.Get(f.Region)
	bnd := mdl.Bands(material.State{LatticeTemp: f.Data.LatticeTemp})
	Ve := electrodeVoltage(b, y)

	psi := y[f.Offset]
	fb.SetValue(f.Offset, psi+h.reference(b, r, bnd)-Ve, sparse.Add)

	if b.Elec == nil {
		return
	}
	sigma := mdl.Conductivity(material.State{LatticeTemp: f.Data.LatticeTemp})
	terminal := 0.0
	for _, nb := range f.Neighbors {
		e := mesh.Edges[nb.Edge]
		psiNb := y[mesh.FvmNodes[nb.FvmNode].Offset]
		terminal += qCharge * sigma * e.CVArea * (psi - psiNb) / e.Length
	}
	b.Elec.I += terminal * b.Params.ZWidth
}

func (h solderPadHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	idx, ok := h.padNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	kb.SetValue(f.Offset, f.Offset, 1, sparse.Add)
	if b.Elec != nil && b.Offsets[0] >= 0 {
		kb.SetValue(f.Offset, b.Offsets[0], -1, sparse.Add)
	}
}

func (h solderPadHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {
	idx, ok := h.padNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	kb.SetValue(mesh.FvmNodes[idx].Offset, mesh.FvmNodes[idx].Offset, 0, sparse.Insert)
}
