// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"math"
	"testing"

	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/sparse"
)

// buildHangingMesh assembles a three-FvmNode semiconductor patch: A and B
// are the coarse side endpoints, H is a hanging node pinned between them.
func buildHangingMesh() (*device.Mesh, int, int, int) {
	m := device.NewMesh(0, 1)
	m.AddRegion(&device.Region{Kind: device.Semiconductor, Level: device.L1})

	nA := m.AddNode(&device.Node{GlobalID: 0})
	nB := m.AddNode(&device.Node{GlobalID: 1})
	nH := m.AddNode(&device.Node{GlobalID: 2})

	a := m.AddFvmNode(&device.FvmNode{Node: nA, Region: 0, Data: &device.NodeData{LatticeTemp: 300}})
	b := m.AddFvmNode(&device.FvmNode{Node: nB, Region: 0, Data: &device.NodeData{LatticeTemp: 300}})
	h := m.AddFvmNode(&device.FvmNode{
		Node: nH, Region: 0, Data: &device.NodeData{LatticeTemp: 300},
		Hanging: &device.HangingRecord{SideVertices: []int{a, b}, VertexA: a, VertexB: b},
	})

	m.AssignOffsets()
	return m, a, b, h
}

func thermalVoltage300(int) float64 { return 0.02585 }

func Test_hanging_pin_zero_residual_at_consistent_state(tst *testing.T) {
	m, a, b, h := buildHangingMesh()
	y := make([]float64, m.Ny)
	fA, fB, fH := m.FvmNodes[a], m.FvmNodes[b], m.FvmNodes[h]

	y[fA.Offset], y[fA.Offset+1], y[fA.Offset+2] = 0.4, 1e10, 2e9
	y[fB.Offset], y[fB.Offset+1], y[fB.Offset+2] = -0.2, 3e9, 8e9
	y[fH.Offset] = 0.5 * (y[fA.Offset] + y[fB.Offset])
	y[fH.Offset+1] = Nmid(thermalVoltage300(0), y[fA.Offset], y[fB.Offset], y[fA.Offset+1], y[fB.Offset+1])
	y[fH.Offset+2] = Pmid(thermalVoltage300(0), y[fA.Offset], y[fB.Offset], y[fA.Offset+2], y[fB.Offset+2])

	fb := sparse.NewDenseVector(m.Ny)
	fb.FlushAssembly()
	var hg Hanging
	hg.Pin(m, y, fb, thermalVoltage300)

	for dof := 0; dof < 3; dof++ {
		if v := fb.GetValue(fH.Offset + dof); math.Abs(v) > 1e-6 {
			tst.Errorf("Pin residual at dof %d should vanish for a consistent interpolated state, got %v", dof, v)
		}
	}
}

func Test_hanging_pin_nonzero_when_inconsistent(tst *testing.T) {
	m, a, b, h := buildHangingMesh()
	y := make([]float64, m.Ny)
	fA, fB, fH := m.FvmNodes[a], m.FvmNodes[b], m.FvmNodes[h]
	y[fA.Offset], y[fB.Offset] = 1.0, -1.0
	y[fH.Offset] = 5.0 // far from the (1.0 + -1.0)/2 = 0 average

	fb := sparse.NewDenseVector(m.Ny)
	fb.FlushAssembly()
	var hg Hanging
	hg.Pin(m, y, fb, thermalVoltage300)

	if v := fb.GetValue(fH.Offset); math.Abs(v-5.0) > 1e-12 {
		tst.Errorf("expected residual psiH - avg = 5.0, got %v", v)
	}
}

// Test_hanging_redistribute_conserves_total checks the conservation property
// spec §8 requires of residual redistribution: the sum redistributed onto
// the side vertices equals exactly what was cleared from the hanging row, so
// the total residual summed over the whole patch is unchanged by
// redistribution.
func Test_hanging_redistribute_conserves_total(tst *testing.T) {
	m, a, b, h := buildHangingMesh()
	fA, fB, fH := m.FvmNodes[a], m.FvmNodes[b], m.FvmNodes[h]

	fb := sparse.NewDenseVector(m.Ny)
	fb.FlushAssembly()
	const injected = 7.5
	fb.SetValue(fH.Offset, injected, sparse.Add)
	fb.SetValue(fA.Offset, 1.0, sparse.Add)
	fb.SetValue(fB.Offset, 2.0, sparse.Add)
	fb.FlushAssembly()

	totalBefore := fb.GetValue(fA.Offset) + fb.GetValue(fB.Offset) + fb.GetValue(fH.Offset)

	var hg Hanging
	hg.Redistribute(m, fb)

	if v := fb.GetValue(fH.Offset); v != 0 {
		tst.Errorf("hanging row should be cleared after Redistribute, got %v", v)
	}
	totalAfter := fb.GetValue(fA.Offset) + fb.GetValue(fB.Offset) + fb.GetValue(fH.Offset)
	if math.Abs(totalAfter-totalBefore) > 1e-12 {
		tst.Errorf("Redistribute should conserve the total residual: before=%v after=%v", totalBefore, totalAfter)
	}
}
