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

// LatticeHeat adds the L2 lattice-temperature equation: heat conduction
// along edges (a Poisson-shaped flux weighted by thermal conductivity
// instead of permittivity) plus a recombination heat source at nodes (spec
// §4.2 "Higher-level models (L2/L3)"); no Joule heat source is added (see
// heatSource). It is layered on top of
// a region's L1 assembler rather than duplicating its edge/volume walk,
// mirroring how gofem's e_up.go composes an ElemU and an ElemP rather than
// re-deriving displacement terms inside the pressure element.
type LatticeHeat struct {
	Region      int
	ThermalCond float64 // W/(cm.K), assumed edge-uniform for this region
	TDofIndex   int     // offset of T_L within the region's unknown block (3 for a Semiconductor region at L2+, 1 for a Poisson-only region at L2+)
	HeatCap     float64 // volumetric heat capacity, J/(cm^3.K); 0 disables the transient term
}

func (o *LatticeHeat) Residual(mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, mode sparse.Mode, dt float64) sparse.Mode {
	mode = flushVectorIfNeeded(fb, mode, sparse.Add)
	for _, eidx := range mesh.EdgeIndices(o.Region) {
		e := mesh.Edges[eidx]
		fA, fB := mesh.FvmNodes[e.A], mesh.FvmNodes[e.B]
		tA, tB := y[fA.Offset+o.TDofIndex], y[fB.Offset+o.TDofIndex]
		flux := PoissonFlux(ad.New(0, tA), ad.New(0, tB), o.ThermalCond, e.CVArea, e.Length).V
		if mesh.IsOwned(e.A) {
			fb.SetValue(fA.Offset+o.TDofIndex, flux, sparse.Add)
		}
		if mesh.IsOwned(e.B) {
			fb.SetValue(fB.Offset+o.TDofIndex, -flux, sparse.Add)
		}
	}
	mdl := models.Get(o.Region)
	for _, nidx := range mesh.OwnedFvmNodeIndices() {
		f := mesh.FvmNodes[nidx]
		if f.Region != o.Region {
			continue
		}
		source := o.heatSource(mdl, f, y)
		fb.SetValue(f.Offset+o.TDofIndex, -source*f.Volume, sparse.Add)

		if dT, ok := o.transientTerm(f, y[f.Offset+o.TDofIndex], dt); ok {
			fb.SetValue(f.Offset+o.TDofIndex, dT, sparse.Add)
		}
	}
	return sparse.Add
}

// transientTerm evaluates the BDF1 thermal-capacitance time derivative
// -C_th.Volume.(T-T_last)/dt, the heat-equation counterpart of
// DDML1.transientTerms (spec §4.2 step 3's heat-source/transient-term list).
// A no-op when HeatCap is unset (Poisson-only/DC lattice-temperature runs)
// or on the first accepted step.
func (o *LatticeHeat) transientTerm(f *device.FvmNode, t, dt float64) (float64, bool) {
	if o.HeatCap <= 0 || dt <= 0 || len(f.Data.YLast) <= o.TDofIndex {
		return 0, false
	}
	tLast := f.Data.YLast[o.TDofIndex]
	return -o.HeatCap * f.Volume * (t - tLast) / dt, true
}

// heatSource returns the volumetric recombination heat generation rate at a
// node, q*R*Eg (energy released per recombination event), evaluated from the
// node's own unknowns only. No Joule (I^2/sigma) heating term is computed.
func (o *LatticeHeat) heatSource(mdl material.Model, f *device.FvmNode, y []float64) float64 {
	if len(y) <= f.Offset+2 {
		return 0
	}
	n, p := y[f.Offset+1], y[f.Offset+2]
	s := material.State{LatticeTemp: f.Data.LatticeTemp, NetDoping: f.Data.NetDoping, ElecDensity: n, HoleDensity: p}
	R := mdl.Recombination(s)
	eg := mdl.Bands(s).Eg
	return q * R * eg
}

func (o *LatticeHeat) Jacobian(mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, mode sparse.Mode, dt float64) sparse.Mode {
	mode = flushMatrixIfNeeded(kb, mode, sparse.Add)
	for _, eidx := range mesh.EdgeIndices(o.Region) {
		e := mesh.Edges[eidx]
		fA, fB := mesh.FvmNodes[e.A], mesh.FvmNodes[e.B]
		tA := ad.Var(2, 0, y[fA.Offset+o.TDofIndex])
		tB := ad.Var(2, 1, y[fB.Offset+o.TDofIndex])
		flux := PoissonFlux(tA, tB, o.ThermalCond, e.CVArea, e.Length)
		if mesh.IsOwned(e.A) {
			kb.SetValue(fA.Offset+o.TDofIndex, fA.Offset+o.TDofIndex, flux.D[0], sparse.Add)
			kb.SetValue(fA.Offset+o.TDofIndex, fB.Offset+o.TDofIndex, flux.D[1], sparse.Add)
		}
		if mesh.IsOwned(e.B) {
			kb.SetValue(fB.Offset+o.TDofIndex, fA.Offset+o.TDofIndex, -flux.D[0], sparse.Add)
			kb.SetValue(fB.Offset+o.TDofIndex, fB.Offset+o.TDofIndex, -flux.D[1], sparse.Add)
		}
	}
	if o.HeatCap > 0 && dt > 0 {
		for _, nidx := range mesh.OwnedFvmNodeIndices() {
			f := mesh.FvmNodes[nidx]
			if f.Region != o.Region || len(f.Data.YLast) <= o.TDofIndex {
				continue
			}
			kb.SetValue(f.Offset+o.TDofIndex, f.Offset+o.TDofIndex, -o.HeatCap*f.Volume/dt, sparse.Add)
		}
	}
	return sparse.Add
}
