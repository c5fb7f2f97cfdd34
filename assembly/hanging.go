// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"github.com/opentcad/fvmcore/ad"
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/sparse"
)

// Hanging implements hanging-node reconstruction (spec §4.2): residual
// redistribution to restore flux conservation in a refined patch, followed
// by pinning the hanging node's own unknowns through interpolation
// equations. There is no teacher analogue (gofem's FEM shape functions
// don't need this — a refined element simply gets its own full-order
// shape function); the row-clear/row-rewrite mechanics are grounded on
// gofem/fem/essenbcs.go's EssentialBcs row-redirection idiom, generalized
// from Lagrange-multiplier constraint rows to a dedicated pinning equation.
type Hanging struct{}

// Redistribute performs the residual-side step: the value currently held at
// each hanging node's row is added to each of its side's vertex rows with
// weight 1/len(SideVertices), then the hanging row is cleared. Must run
// after every region's volumetric/edge Residual and before the pinning
// equations are written.
func (Hanging) Redistribute(mesh *device.Mesh, fb sparse.Vector) {
	for _, hidx := range mesh.HangingIndices() {
		f := mesh.FvmNodes[hidx]
		if !mesh.IsOwned(hidx) || f.Offset < 0 {
			continue
		}
		hr := f.Hanging
		w := 1.0 / float64(len(hr.SideVertices))
		for dof := 0; dof < mesh.Regions[f.Region].Stride(); dof++ {
			val := fb.GetValue(f.Offset + dof)
			for _, v := range hr.SideVertices {
				vf := mesh.FvmNodes[v]
				if vf.Offset < 0 {
					continue
				}
				fb.SetValue(vf.Offset+dof, val*w, sparse.Add)
			}
		}
		rows := make([]int, mesh.Regions[f.Region].Stride())
		for i := range rows {
			rows[i] = f.Offset + i
		}
		fb.ZeroRows(rows)
	}
}

// Pin writes the interpolation residual for every hanging node's own rows
// (spec §4.2): psi_H - 1/2(psi_a+psi_b) = 0, and the Bernoulli-consistent
// midpoint equations for n and p. Must run after Redistribute has cleared
// the hanging rows.
func (Hanging) Pin(mesh *device.Mesh, y []float64, fb sparse.Vector, thermalVoltage func(fvmNode int) float64) {
	for _, hidx := range mesh.HangingIndices() {
		f := mesh.FvmNodes[hidx]
		if !mesh.IsOwned(hidx) || f.Offset < 0 {
			continue
		}
		hr := f.Hanging
		fa, fb2 := mesh.FvmNodes[hr.VertexA], mesh.FvmNodes[hr.VertexB]
		psiH := y[f.Offset]
		psiA, psiB := y[fa.Offset], y[fb2.Offset]
		fb.SetValue(f.Offset, psiH-0.5*(psiA+psiB), sparse.Add)

		stride := mesh.Regions[f.Region].Stride()
		if stride >= 3 { // semiconductor: also pin n,p
			Vt := thermalVoltage(hidx)
			nH, pH := y[f.Offset+1], y[f.Offset+2]
			nA, nB := y[fa.Offset+1], y[fb2.Offset+1]
			pA, pB := y[fa.Offset+2], y[fb2.Offset+2]
			fb.SetValue(f.Offset+1, nH-Nmid(Vt, psiA, psiB, nA, nB), sparse.Add)
			fb.SetValue(f.Offset+2, pH-Pmid(Vt, psiA, psiB, pA, pB), sparse.Add)
		}
	}
}

// JacobianPin writes the Jacobian of the pinning equations over the
// 9-dimensional dependency (psiH,nH,pH,psiA,nA,pA,psiB,nB,pB), using the AD
// scalar so the Nmid/Pmid Bernoulli-weighted derivatives don't need to be
// hand-derived (spec §4.2 "AD-derived interpolation entries").
func (Hanging) JacobianPin(mesh *device.Mesh, y []float64, kb sparse.Matrix, thermalVoltage func(fvmNode int) float64) {
	const (
		hPsi = iota
		hN
		hP
		aPsi
		aN
		aP
		bPsi
		bN
		bP
		nDirs
	)
	for _, hidx := range mesh.HangingIndices() {
		f := mesh.FvmNodes[hidx]
		if !mesh.IsOwned(hidx) || f.Offset < 0 {
			continue
		}
		hr := f.Hanging
		fa, fb2 := mesh.FvmNodes[hr.VertexA], mesh.FvmNodes[hr.VertexB]
		stride := mesh.Regions[f.Region].Stride()

		psiH := ad.Var(nDirs, hPsi, y[f.Offset])
		psiA := ad.Var(nDirs, aPsi, y[fa.Offset])
		psiB := ad.Var(nDirs, bPsi, y[fb2.Offset])
		resPsi := psiH.Sub(psiA.Add(psiB).Scale(0.5))
		writeRow(kb, f.Offset, []int{f.Offset, fa.Offset, fb2.Offset}, []int{hPsi, aPsi, bPsi}, resPsi)

		if stride < 3 {
			continue
		}
		Vt := thermalVoltage(hidx)
		nH := ad.Var(nDirs, hN, y[f.Offset+1])
		nA := ad.Var(nDirs, aN, y[fa.Offset+1])
		nB := ad.Var(nDirs, bN, y[fb2.Offset+1])
		pH := ad.Var(nDirs, hP, y[f.Offset+2])
		pA := ad.Var(nDirs, aP, y[fa.Offset+2])
		pB := ad.Var(nDirs, bP, y[fb2.Offset+2])

		nMid := nmidAD(Vt, psiA, psiB, nA, nB)
		resN := nH.Sub(nMid)
		writeRow(kb, f.Offset+1, []int{f.Offset + 1, fa.Offset, fb2.Offset, fa.Offset + 1, fb2.Offset + 1},
			[]int{hN, aPsi, bPsi, aN, bN}, resN)

		pMid := nmidAD(Vt, psiB, psiA, pA, pB)
		resP := pH.Sub(pMid)
		writeRow(kb, f.Offset+2, []int{f.Offset + 2, fa.Offset, fb2.Offset, fa.Offset + 2, fb2.Offset + 2},
			[]int{hP, aPsi, bPsi, aP, bP}, resP)
	}
}

// nmidAD is the AD-scalar twin of Nmid/Pmid, used only inside the Jacobian
// pinning pass where derivatives through the Bernoulli weights matter.
func nmidAD(Vt float64, v1, v2, n1, n2 ad.Scalar) ad.Scalar {
	x := v1.Sub(v2).Scale(1 / Vt)
	bPos := ad.Bernoulli(x)
	bNeg := ad.Bernoulli(x.Neg())
	num := n1.Mul(bNeg).Add(n2.Mul(bPos))
	den := bPos.Add(bNeg)
	return num.Div(den)
}

func writeRow(kb sparse.Matrix, row int, cols []int, dirs []int, val ad.Scalar) {
	for i, c := range cols {
		kb.SetValue(row, c, val.D[dirs[i]], sparse.Add)
	}
}
