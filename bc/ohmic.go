// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"math"

	"github.com/cpmech/gosl/utl"

	"github.com/opentcad/fvmcore/ad"
	"github.com/opentcad/fvmcore/assembly"
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

const (
	qCharge   = 1.602176634e-19
	kOverQ_eV = 8.617333262e-5
)

// ohmicHandler implements OhmicContact and, unmodified, IF_Metal_Ohmic
// (spec §6's classifier routes both to the same contact physics — the only
// difference is which two regions the mesh-setup step found adjacent).
//
// Fermi is the Open Question (b) toggle: when true, the high-injection
// Fermi-Dirac form replaces the Boltzmann asinh form. This is a modelling
// choice, not a textual-descriptor key — spec §9 flags that using V_e as
// both quasi-Fermi levels "breaks down at high injection" regardless of
// which statistics are used for the band population itself.
type ohmicHandler struct {
	Fermi bool
}

func init() {
	Register(OhmicContact, &ohmicHandler{})
	Register(IFMetalOhmic, &ohmicHandler{})
}

func (o *ohmicHandler) semiconductorNode(b *Boundary, mesh *device.Mesh) (fvmIdx int, ok bool) {
	for _, group := range b.Nodes {
		for _, idx := range group {
			if mesh.Regions[mesh.FvmNodes[idx].Region].Kind == device.Semiconductor {
				return idx, true
			}
		}
	}
	return 0, false
}

func (o *ohmicHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
	idx, ok := o.semiconductorNode(b, mesh)
	if !ok {
		return
	}
	f := mesh.FvmNodes[idx]
	bnd := models.Get(f.Region).Bands(material.State{LatticeTemp: f.Data.LatticeTemp})
	N := f.Data.NetDoping
	Vt := kOverQ_eV * utl.Max(f.Data.LatticeTemp, 300)
	n, p := majorityMinority(N, bnd.Ni)
	psi := Vt*math.Asinh(N/(2*bnd.Ni)) - bnd.Eg/2 - (Vt/2)*math.Log(bnd.Nc/bnd.Nv) - bnd.Affin
	if f.Offset >= 0 {
		y[f.Offset] = psi
		y[f.Offset+1] = n
		y[f.Offset+2] = p
	}
}

func majorityMinority(N, ni float64) (n, p float64) {
	if N >= 0 {
		n = 0.5 * (N + math.Sqrt(N*N+4*ni*ni))
		p = ni * ni / n
	} else {
		p = 0.5 * (-N + math.Sqrt(N*N+4*ni*ni))
		n = ni * ni / p
	}
	return
}

func (o *ohmicHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	idx, ok := o.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return nil, nil
	}
	f := mesh.FvmNodes[idx]
	return []int{f.Offset, f.Offset + 1, f.Offset + 2}, nil
}

// Function writes the three Ohmic-row equations of spec §4.3 plus
// accumulates this step's contribution to the electrode terminal current
// I_e = sum (Jn-Jp).A + sum eps.A.dE/dt, scaled by z-width for 2D meshes.
func (o *ohmicHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	idx, ok := o.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	mdl := models.Get(f.Region)
	Ve := electrodeVoltage(b, y)

	psi, n, p := y[f.Offset], y[f.Offset+1], y[f.Offset+2]
	s := material.State{LatticeTemp: f.Data.LatticeTemp, NetDoping: f.Data.NetDoping, ElecDensity: n, HoleDensity: p}
	bnd := mdl.Bands(s)
	N := f.Data.NetDoping
	Vt := kOverQ_eV * utl.Max(f.Data.LatticeTemp, 300)

	if o.Fermi {
		etaN := Ve // Open Question (b): electrode potential drives both quasi-Fermi levels
		etaP := Ve
		fb.SetValue(f.Offset, bnd.Nc*material.FermiHalf(etaN)-bnd.Nv*material.FermiHalf(etaP)-N, sparse.Add)
		fb.SetValue(f.Offset+1, n-bnd.Nc*material.FermiHalf(etaN), sparse.Add)
		fb.SetValue(f.Offset+2, p-bnd.Nv*material.FermiHalf(etaP), sparse.Add)
	} else {
		resPsi := psi - Vt*math.Asinh(N/(2*bnd.Ni)) + bnd.Eg/2 + (Vt/2)*math.Log(bnd.Nc/bnd.Nv) + bnd.Affin - Ve
		nMaj, pMaj := majorityMinority(N, bnd.Ni)
		fb.SetValue(f.Offset, resPsi, sparse.Add)
		fb.SetValue(f.Offset+1, n-nMaj, sparse.Add)
		fb.SetValue(f.Offset+2, p-pMaj, sparse.Add)
	}

	if b.Elec != nil {
		current := o.terminalCurrent(mesh, mdl, f, y) + o.displacementCurrent(mesh, mdl, f, y, dt)
		b.Elec.I += current * b.Params.ZWidth
	}
}

// displacementCurrent sums the BDF1 time derivative of the normal field
// across every edge incident to the contact node, eps.A.dE/dt, the second
// term of spec §4.3's terminal-current sum. Needs last-step psi history, so
// it is a no-op on the first time step (dt<=0 or no YLast yet).
func (o *ohmicHandler) displacementCurrent(mesh *device.Mesh, mdl material.Model, f *device.FvmNode, y []float64, dt float64) float64 {
	if dt <= 0 || len(f.Data.YLast) == 0 {
		return 0
	}
	eps := mdl.Permittivity(material.State{LatticeTemp: f.Data.LatticeTemp})
	psiLast := f.Data.YLast[0]
	total := 0.0
	for _, nb := range f.Neighbors {
		e := mesh.Edges[nb.Edge]
		other := mesh.FvmNodes[nb.FvmNode]
		if len(other.Data.YLast) == 0 {
			continue
		}
		V, Vnb := y[f.Offset], y[other.Offset]
		dEdt := ((V - Vnb) - (psiLast - other.Data.YLast[0])) / e.Length / dt
		total += e.CVArea * eps * dEdt
	}
	return total
}

// terminalCurrent sums Jn-Jp across every semiconductor edge incident to the
// contact node, the discrete form of spec §4.3's `Sum(Jn-Jp).A`.
func (o *ohmicHandler) terminalCurrent(mesh *device.Mesh, mdl material.Model, f *device.FvmNode, y []float64) float64 {
	total := 0.0
	for _, nb := range f.Neighbors {
		e := mesh.Edges[nb.Edge]
		other := mesh.FvmNodes[nb.FvmNode]
		if mesh.Regions[other.Region].Kind != device.Semiconductor {
			continue
		}
		Vt := kOverQ_eV * utl.Max(0.5*(f.Data.LatticeTemp+other.Data.LatticeTemp), 300)
		psi1, n1, p1 := y[f.Offset], y[f.Offset+1], y[f.Offset+2]
		psi2, n2, p2 := y[other.Offset], y[other.Offset+1], y[other.Offset+2]
		sa := material.State{LatticeTemp: f.Data.LatticeTemp, ElecDensity: n1, HoleDensity: p1}
		sb := material.State{LatticeTemp: other.Data.LatticeTemp, ElecDensity: n2, HoleDensity: p2}
		mun := 0.5 * (mdl.MobilityElectron(sa) + mdl.MobilityElectron(sb))
		mup := 0.5 * (mdl.MobilityHole(sa) + mdl.MobilityHole(sb))
		pref := qCharge * Vt * e.CVArea / e.Length
		jn := assembly.ElectronCurrentFlux(0, ad.New(0, psi1), ad.New(0, n1), ad.New(0, psi2), ad.New(0, n2), Vt).V * mun * pref
		jp := assembly.HoleCurrentFlux(0, ad.New(0, psi1), ad.New(0, p1), ad.New(0, psi2), ad.New(0, p2), Vt).V * mup * pref
		total += jn - jp
	}
	return total
}

func (o *ohmicHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	idx, ok := o.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	// psi, n, p rows: d(resPsi)/dpsi = 1; d(n-nMaj)/dn = 1; d(p-pMaj)/dp = 1.
	// The Vt/bnd-dependent terms are independent of the local unknowns in
	// the Boltzmann form (they depend only on fixed doping/temperature), so
	// the Jacobian is simply the identity on the three claimed rows, minus
	// the electrode-coupling term on the psi row.
	kb.SetValue(f.Offset, f.Offset, 1, sparse.Add)
	kb.SetValue(f.Offset+1, f.Offset+1, 1, sparse.Add)
	kb.SetValue(f.Offset+2, f.Offset+2, 1, sparse.Add)
	if b.Elec != nil && b.Offsets[0] >= 0 {
		kb.SetValue(f.Offset, b.Offsets[0], -1, sparse.Add)
	}
}

func (o *ohmicHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {
	idx, ok := o.semiconductorNode(b, mesh)
	if !ok || mesh.FvmNodes[idx].Offset < 0 {
		return
	}
	f := mesh.FvmNodes[idx]
	kb.SetValue(f.Offset, f.Offset, 0, sparse.Insert)
	kb.SetValue(f.Offset+1, f.Offset+1, 0, sparse.Insert)
	kb.SetValue(f.Offset+2, f.Offset+2, 0, sparse.Insert)
}

// electrodeVoltage reads V_e either from the attached Electrode's current
// value (if the BC offsets haven't been resolved into y yet, e.g. during
// FillValue) or from y at the assigned offset.
func electrodeVoltage(b *Boundary, y []float64) float64 {
	if b.Offsets[0] >= 0 && b.Offsets[0] < len(y) {
		return y[b.Offsets[0]]
	}
	if b.Elec != nil {
		return b.Elec.Ve
	}
	return 0
}
