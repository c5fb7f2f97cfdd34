// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"github.com/opentcad/fvmcore/ad"
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// Poisson assembles the Laplacian-of-psi equation for Insulator, Electrode,
// Vacuum and PML regions, where only the Poisson flux applies and ρ≡0
// (spec §4.2 "Poisson flux"). Semiconductor regions get their own psi row
// contribution from DDML1.Residual/Jacobian, which also calls PoissonFlux.
type Poisson struct {
	Region int // index into Mesh.Regions this assembler owns
}

func (o *Poisson) edgeEps(mesh *device.Mesh, models *material.ModelSet, e *device.Edge, y []float64) float64 {
	sa := stateAt(mesh, models, e.A, y)
	sb := stateAt(mesh, models, e.B, y)
	ma := models.Get(mesh.FvmNodes[e.A].Region)
	mb := models.Get(mesh.FvmNodes[e.B].Region)
	return 0.5 * (ma.Permittivity(sa) + mb.Permittivity(sb))
}

func stateAt(mesh *device.Mesh, models *material.ModelSet, fvmIdx int, y []float64) material.State {
	f := mesh.FvmNodes[fvmIdx]
	d := f.Data
	s := material.State{LatticeTemp: d.LatticeTemp, NetDoping: d.NetDoping}
	if f.Offset >= 0 {
		s.ElecDensity = valueOrZero(y, f.Offset+1, mesh.Regions[f.Region])
		s.HoleDensity = valueOrZero(y, f.Offset+2, mesh.Regions[f.Region])
	}
	return s
}

func valueOrZero(y []float64, idx int, r *device.Region) float64 {
	if r.Kind != device.Semiconductor || idx >= len(y) || idx < 0 {
		return 0
	}
	return y[idx]
}

func psiOf(mesh *device.Mesh, fvmIdx int, y []float64) float64 {
	f := mesh.FvmNodes[fvmIdx]
	if f.Offset < 0 || f.Offset >= len(y) {
		return f.Data.Y[0]
	}
	return y[f.Offset]
}

// Residual has no transient volumetric term: the Poisson equation is elliptic
// (no time derivative of psi), so dt is unused here — consistent with
// DDML1.Residual, where only the carrier-continuity rows carry one.
func (o *Poisson) Residual(mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, mode sparse.Mode, dt float64) sparse.Mode {
	mode = flushVectorIfNeeded(fb, mode, sparse.Add)
	for _, eidx := range mesh.EdgeIndices(o.Region) {
		e := mesh.Edges[eidx]
		eps := o.edgeEps(mesh, models, e, y)
		psi1, psi2 := psiOf(mesh, e.A, y), psiOf(mesh, e.B, y)
		flux := PoissonFlux(ad.New(0, psi1), ad.New(0, psi2), eps, e.CVArea, e.Length).V
		fA, fB := mesh.FvmNodes[e.A], mesh.FvmNodes[e.B]
		if mesh.IsOwned(e.A) {
			fb.SetValue(fA.Offset, flux, sparse.Add)
		}
		if mesh.IsOwned(e.B) {
			fb.SetValue(fB.Offset, -flux, sparse.Add)
		}
	}
	return sparse.Add
}

func (o *Poisson) Jacobian(mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, mode sparse.Mode, dt float64) sparse.Mode {
	mode = flushMatrixIfNeeded(kb, mode, sparse.Add)
	for _, eidx := range mesh.EdgeIndices(o.Region) {
		e := mesh.Edges[eidx]
		eps := o.edgeEps(mesh, models, e, y)
		fA, fB := mesh.FvmNodes[e.A], mesh.FvmNodes[e.B]
		psi1 := ad.Var(2, 0, psiOf(mesh, e.A, y))
		psi2 := ad.Var(2, 1, psiOf(mesh, e.B, y))
		flux := PoissonFlux(psi1, psi2, eps, e.CVArea, e.Length)
		if mesh.IsOwned(e.A) {
			kb.SetValue(fA.Offset, fA.Offset, flux.D[0], sparse.Add)
			kb.SetValue(fA.Offset, fB.Offset, flux.D[1], sparse.Add)
		}
		if mesh.IsOwned(e.B) {
			kb.SetValue(fB.Offset, fA.Offset, -flux.D[0], sparse.Add)
			kb.SetValue(fB.Offset, fB.Offset, -flux.D[1], sparse.Add)
		}
	}
	return sparse.Add
}
