// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// chargeIntegralHandler implements ChargeIntegral / ChargedContact
// (spec §4.3, and Open Question (a): float_metal aliases into this kind
// one-way only). A floating conductor carries no applied voltage; instead
// an extra unknown Q (the total charge on the conductor, at b.Offsets[2])
// is solved so that every node on the contact shares one common psi offset
// by Q/C_self, with the governing equation Sum(Jn-Jp).A - dQ/dt = 0 tying Q
// to the net carrier flux reaching the conductor.
type chargeIntegralHandler struct{}

func init() {
	Register(ChargeIntegral, chargeIntegralHandler{})
	Register(ChargedContact, chargeIntegralHandler{})
}

func (chargeIntegralHandler) nodes(b *Boundary, mesh *device.Mesh) []int {
	var out []int
	for _, group := range b.Nodes {
		for _, idx := range group {
			if mesh.Regions[mesh.FvmNodes[idx].Region].Kind == device.Semiconductor {
				out = append(out, idx)
			}
		}
	}
	return out
}

func (h chargeIntegralHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
	if b.Offsets[2] >= 0 {
		y[b.Offsets[2]] = b.Params.Charge
	}
}

// Preprocess clears every contact node's psi row and redirects all but the
// first node's row onto the first node's psi row (spec §4.3 preprocess step
// 1); Function then pins every other node's psi to the first's, so the
// conductor's entire surface shares one psi value.
func (h chargeIntegralHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	idxs := h.nodes(b, mesh)
	if len(idxs) == 0 {
		return nil, nil
	}
	primary := mesh.FvmNodes[idxs[0]]
	if primary.Offset < 0 {
		return nil, nil
	}
	clear = []int{primary.Offset}
	for _, idx := range idxs[1:] {
		f := mesh.FvmNodes[idx]
		if f.Offset < 0 {
			continue
		}
		clear = append(clear, f.Offset)
		redirect = append(redirect, RowRedirect{Src: f.Offset, Dst: primary.Offset})
	}
	return clear, redirect
}

func (h chargeIntegralHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	idxs := h.nodes(b, mesh)
	if len(idxs) == 0 {
		return
	}
	primary := mesh.FvmNodes[idxs[0]]
	if primary.Offset < 0 || b.Offsets[2] < 0 {
		return
	}
	psi := y[primary.Offset]
	Q := y[b.Offsets[2]]

	// every secondary node's psi must equal the primary's (the equipotential
	// constraint; each was redirected onto primary's row, so each still
	// needs its own trivial identity equation to close its own unknown).
	for _, idx := range idxs[1:] {
		f := mesh.FvmNodes[idx]
		if f.Offset < 0 {
			continue
		}
		fb.SetValue(f.Offset, y[f.Offset]-psi, sparse.Add)
	}

	mdl := models.Get(primary.Region)
	total := 0.0
	for _, idx := range idxs {
		f := mesh.FvmNodes[idx]
		if f.Offset < 0 {
			continue
		}
		o := ohmicHandler{}
		total += o.terminalCurrent(mesh, mdl, f, y) * b.Params.ZWidth
	}

	QLast := b.Params.Charge
	dQdt := 0.0
	if dt > 0 {
		dQdt = (Q - QLast) / dt
	}
	fb.SetValue(primary.Offset, total-dQdt, sparse.Add)

	if b.Params.ChargeBoundary {
		selfCap := 1.0
		fb.SetValue(b.Offsets[2], Q-selfCap*psi, sparse.Add)
	}
}

func (h chargeIntegralHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	idxs := h.nodes(b, mesh)
	if len(idxs) == 0 {
		return
	}
	primary := mesh.FvmNodes[idxs[0]]
	if primary.Offset < 0 {
		return
	}
	for _, idx := range idxs[1:] {
		f := mesh.FvmNodes[idx]
		if f.Offset < 0 {
			continue
		}
		kb.SetValue(f.Offset, f.Offset, 1, sparse.Add)
		kb.SetValue(f.Offset, primary.Offset, -1, sparse.Add)
	}
	if b.Offsets[2] >= 0 && dt > 0 {
		kb.SetValue(primary.Offset, b.Offsets[2], -1/dt, sparse.Add)
	}
	if b.Params.ChargeBoundary && b.Offsets[2] >= 0 {
		kb.SetValue(b.Offsets[2], b.Offsets[2], 1, sparse.Add)
		kb.SetValue(b.Offsets[2], primary.Offset, -1, sparse.Add)
	}
}

func (h chargeIntegralHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {
	idxs := h.nodes(b, mesh)
	for _, idx := range idxs {
		f := mesh.FvmNodes[idx]
		if f.Offset < 0 {
			continue
		}
		kb.SetValue(f.Offset, f.Offset, 0, sparse.Insert)
	}
	if b.Offsets[2] >= 0 {
		kb.SetValue(b.Offsets[2], b.Offsets[2], 0, sparse.Insert)
	}
}
