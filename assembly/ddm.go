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

// elementary charge in coulombs.
const q = 1.602176634e-19

// DDML1 assembles the L1 drift-diffusion equations {psi,n,p} for a
// Semiconductor region using the Scharfetter-Gummel box-integration scheme
// (spec §4.2). It both contributes the region's own psi-row Poisson flux
// (so Semiconductor regions don't need a separate Poisson assembler) and the
// n/p continuity rows.
type DDML1 struct {
	Region int
}

// localDirs names the 6 AD directions used by every edge Jacobian call:
// (psi1,n1,p1,psi2,n2,p2).
const (
	dPsi1 = iota
	dN1
	dP1
	dPsi2
	dN2
	dP2
	ddmDirs
)

func (o *DDML1) thermalVoltage(t float64) float64 {
	const kOverQ = 8.617333262e-5
	if t <= 0 {
		t = 300
	}
	return kOverQ * t
}

func (o *DDML1) Residual(mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, mode sparse.Mode, dt float64) sparse.Mode {
	mode = flushVectorIfNeeded(fb, mode, sparse.Add)
	mdl := models.Get(o.Region)

	for _, eidx := range mesh.EdgeIndices(o.Region) {
		e := mesh.Edges[eidx]
		fA, fB := mesh.FvmNodes[e.A], mesh.FvmNodes[e.B]
		Vt := o.thermalVoltage(0.5 * (fA.Data.LatticeTemp + fB.Data.LatticeTemp))

		psi1, n1, p1 := y[fA.Offset], y[fA.Offset+1], y[fA.Offset+2]
		psi2, n2, p2 := y[fB.Offset], y[fB.Offset+1], y[fB.Offset+2]

		sa := material.State{LatticeTemp: fA.Data.LatticeTemp, ElecDensity: n1, HoleDensity: p1}
		sb := material.State{LatticeTemp: fB.Data.LatticeTemp, ElecDensity: n2, HoleDensity: p2}
		eps := 0.5 * (mdl.Permittivity(sa) + mdl.Permittivity(sb))
		munEdge := 0.5 * (mdl.MobilityElectron(sa) + mdl.MobilityElectron(sb))
		mupEdge := 0.5 * (mdl.MobilityHole(sa) + mdl.MobilityHole(sb))

		psiFlux := PoissonFlux(ad.New(0, psi1), ad.New(0, psi2), eps, e.CVArea, e.Length).V
		jn := ElectronCurrentFlux(0, ad.New(0, psi1), ad.New(0, n1), ad.New(0, psi2), ad.New(0, n2), Vt).V * q * munEdge * Vt * e.CVArea / e.Length
		jp := HoleCurrentFlux(0, ad.New(0, psi1), ad.New(0, p1), ad.New(0, psi2), ad.New(0, p2), Vt).V * q * mupEdge * Vt * e.CVArea / e.Length

		if mesh.IsOwned(e.A) {
			fb.SetValue(fA.Offset, psiFlux, sparse.Add)
			fb.SetValue(fA.Offset+1, jn, sparse.Add)
			fb.SetValue(fA.Offset+2, -jp, sparse.Add)
		}
		if mesh.IsOwned(e.B) {
			fb.SetValue(fB.Offset, -psiFlux, sparse.Add)
			fb.SetValue(fB.Offset+1, -jn, sparse.Add)
			fb.SetValue(fB.Offset+2, jp, sparse.Add)
		}
	}

	for _, nidx := range mesh.OwnedFvmNodeIndices() {
		f := mesh.FvmNodes[nidx]
		if f.Region != o.Region {
			continue
		}
		n, p := y[f.Offset+1], y[f.Offset+2]
		s := material.State{LatticeTemp: f.Data.LatticeTemp, NetDoping: f.Data.NetDoping, ElecDensity: n, HoleDensity: p}
		R := mdl.Recombination(s)
		charge := q * (p - n + f.Data.NetDoping) * f.Volume
		fb.SetValue(f.Offset, charge, sparse.Add)
		fb.SetValue(f.Offset+1, -q*R*f.Volume, sparse.Add)
		fb.SetValue(f.Offset+2, -q*R*f.Volume, sparse.Add)

		if dn, dp, ok := o.transientTerms(f, n, p, dt); ok {
			fb.SetValue(f.Offset+1, dn, sparse.Add)
			fb.SetValue(f.Offset+2, dp, sparse.Add)
		}
	}
	return sparse.Add
}

// transientTerms evaluates the BDF1 carrier-continuity time derivative
// -q.Volume.(n-n_last)/dt, -q.Volume.(p-p_last)/dt (spec §4.2 step 3's
// "displacement-current time derivative in transient" volumetric term). The
// Poisson row carries no time derivative: it is the elliptic constraint
// relating psi to charge, not itself a conservation law. A no-op on the
// first accepted step (dt<=0 or no YLast yet), mirroring
// ohmicHandler.displacementCurrent's same guard.
func (o *DDML1) transientTerms(f *device.FvmNode, n, p, dt float64) (dn, dp float64, ok bool) {
	if dt <= 0 || len(f.Data.YLast) < 3 {
		return 0, 0, false
	}
	nLast, pLast := f.Data.YLast[1], f.Data.YLast[2]
	dn = -q * f.Volume * (n - nLast) / dt
	dp = -q * f.Volume * (p - pLast) / dt
	return dn, dp, true
}

func (o *DDML1) Jacobian(mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, mode sparse.Mode, dt float64) sparse.Mode {
	mode = flushMatrixIfNeeded(kb, mode, sparse.Add)
	mdl := models.Get(o.Region)

	for _, eidx := range mesh.EdgeIndices(o.Region) {
		e := mesh.Edges[eidx]
		fA, fB := mesh.FvmNodes[e.A], mesh.FvmNodes[e.B]
		Vt := o.thermalVoltage(0.5 * (fA.Data.LatticeTemp + fB.Data.LatticeTemp))

		psi1v, n1v, p1v := y[fA.Offset], y[fA.Offset+1], y[fA.Offset+2]
		psi2v, n2v, p2v := y[fB.Offset], y[fB.Offset+1], y[fB.Offset+2]

		sa := material.State{LatticeTemp: fA.Data.LatticeTemp, ElecDensity: n1v, HoleDensity: p1v}
		sb := material.State{LatticeTemp: fB.Data.LatticeTemp, ElecDensity: n2v, HoleDensity: p2v}
		eps := 0.5 * (mdl.Permittivity(sa) + mdl.Permittivity(sb))
		munEdge := 0.5 * (mdl.MobilityElectron(sa) + mdl.MobilityElectron(sb))
		mupEdge := 0.5 * (mdl.MobilityHole(sa) + mdl.MobilityHole(sb))
		prefJ := q * Vt * e.CVArea / e.Length

		psi1 := ad.Var(ddmDirs, dPsi1, psi1v)
		n1 := ad.Var(ddmDirs, dN1, n1v)
		p1 := ad.Var(ddmDirs, dP1, p1v)
		psi2 := ad.Var(ddmDirs, dPsi2, psi2v)
		n2 := ad.Var(ddmDirs, dN2, n2v)
		p2 := ad.Var(ddmDirs, dP2, p2v)

		psiFlux := PoissonFlux(psi1, psi2, eps, e.CVArea, e.Length)
		jn := ElectronCurrentFlux(ddmDirs, psi1, n1, psi2, n2, Vt).Scale(munEdge * prefJ)
		jp := HoleCurrentFlux(ddmDirs, psi1, p1, psi2, p2, Vt).Scale(mupEdge * prefJ)

		rowsA := []int{fA.Offset, fA.Offset + 1, fA.Offset + 2}
		rowsB := []int{fB.Offset, fB.Offset + 1, fB.Offset + 2}
		cols := []int{fA.Offset, fA.Offset + 1, fA.Offset + 2, fB.Offset, fB.Offset + 1, fB.Offset + 2}
		colDirs := []int{dPsi1, dN1, dP1, dPsi2, dN2, dP2}

		if mesh.IsOwned(e.A) {
			for ci, dir := range colDirs {
				kb.SetValue(rowsA[0], cols[ci], psiFlux.D[dir], sparse.Add)
				kb.SetValue(rowsA[1], cols[ci], jn.D[dir], sparse.Add)
				kb.SetValue(rowsA[2], cols[ci], -jp.D[dir], sparse.Add)
			}
		}
		if mesh.IsOwned(e.B) {
			for ci, dir := range colDirs {
				kb.SetValue(rowsB[0], cols[ci], -psiFlux.D[dir], sparse.Add)
				kb.SetValue(rowsB[1], cols[ci], -jn.D[dir], sparse.Add)
				kb.SetValue(rowsB[2], cols[ci], jp.D[dir], sparse.Add)
			}
		}
	}

	for _, nidx := range mesh.OwnedFvmNodeIndices() {
		f := mesh.FvmNodes[nidx]
		if f.Region != o.Region {
			continue
		}
		n, p := y[f.Offset+1], y[f.Offset+2]
		s := material.State{LatticeTemp: f.Data.LatticeTemp, NetDoping: f.Data.NetDoping, ElecDensity: n, HoleDensity: p}
		dRdn := mdl.DRecombinationDn(s)
		dRdp := mdl.DRecombinationDp(s)
		kb.SetValue(f.Offset, f.Offset+1, -q*f.Volume, sparse.Add)
		kb.SetValue(f.Offset, f.Offset+2, q*f.Volume, sparse.Add)
		kb.SetValue(f.Offset+1, f.Offset+1, -q*dRdn*f.Volume, sparse.Add)
		kb.SetValue(f.Offset+1, f.Offset+2, -q*dRdp*f.Volume, sparse.Add)
		kb.SetValue(f.Offset+2, f.Offset+1, -q*dRdn*f.Volume, sparse.Add)
		kb.SetValue(f.Offset+2, f.Offset+2, -q*dRdp*f.Volume, sparse.Add)

		if dt > 0 && len(f.Data.YLast) >= 3 {
			kb.SetValue(f.Offset+1, f.Offset+1, -q*f.Volume/dt, sparse.Add)
			kb.SetValue(f.Offset+2, f.Offset+2, -q*f.Volume/dt, sparse.Add)
		}
	}
	return sparse.Add
}
