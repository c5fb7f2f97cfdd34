// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import "testing"

// buildLineMesh builds a 3-vertex semiconductor line: n0 - n1 - n2, all
// owned by rank 0.
func buildLineMesh() (*Mesh, []int) {
	m := NewMesh(0, 1)
	m.AddRegion(&Region{Kind: Semiconductor, Level: L1})
	var f []int
	for i := 0; i < 3; i++ {
		n := m.AddNode(&Node{GlobalID: i, Owner: 0})
		f = append(f, m.AddFvmNode(&FvmNode{Node: n, Region: 0, Data: &NodeData{}}))
	}
	m.AddEdge(&Edge{Region: 0, A: f[0], B: f[1], Length: 1e-6, CVArea: 1e-8})
	m.AddEdge(&Edge{Region: 0, A: f[1], B: f[2], Length: 1e-6, CVArea: 1e-8})
	return m, f
}

func Test_assign_offsets_contiguous_by_stride(tst *testing.T) {
	m, f := buildLineMesh()
	n := m.AssignOffsets()
	if n != 9 {
		tst.Errorf("expected 3 nodes * stride 3 = 9 region unknowns, got %d", n)
	}
	for i, idx := range f {
		want := i * 3
		if got := m.FvmNodes[idx].Offset; got != want {
			tst.Errorf("node %d: expected offset %d, got %d", i, want, got)
		}
	}
}

func Test_ghost_classification(tst *testing.T) {
	m := NewMesh(1, 2)
	m.AddRegion(&Region{Kind: Semiconductor, Level: L1})
	localNode := m.AddNode(&Node{GlobalID: 0, Owner: 1})
	remoteNode := m.AddNode(&Node{GlobalID: 1, Owner: 0})
	local := m.AddFvmNode(&FvmNode{Node: localNode, Region: 0, Data: &NodeData{}})
	remote := m.AddFvmNode(&FvmNode{Node: remoteNode, Region: 0, Data: &NodeData{}})

	if m.IsGhost(local) {
		tst.Errorf("FvmNode owned by this rank should not be a ghost")
	}
	if !m.IsGhost(remote) {
		tst.Errorf("FvmNode owned by another rank should be a ghost")
	}

	m.AssignOffsets()
	if m.FvmNodes[remote].Offset != -1 {
		tst.Errorf("ghost FvmNode should keep the -1 sentinel offset, got %d", m.FvmNodes[remote].Offset)
	}
	if m.FvmNodes[local].Offset == -1 {
		tst.Errorf("owned FvmNode should have been assigned a real offset")
	}
}

func Test_edge_indices_deterministic_order(tst *testing.T) {
	m, _ := buildLineMesh()
	a := m.EdgeIndices(0)
	b := m.EdgeIndices(0)
	if len(a) != 2 {
		tst.Fatalf("expected 2 edges, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			tst.Errorf("EdgeIndices should be deterministic across calls: %v vs %v", a, b)
		}
	}
}

func Test_check_ghost_coverage_rejects_dangling_edge(tst *testing.T) {
	m, _ := buildLineMesh()
	m.Edges = append(m.Edges, &Edge{Index: len(m.Edges), Region: 0, A: 0, B: 99})
	if err := m.CheckGhostCoverage(); err == nil {
		tst.Errorf("expected CheckGhostCoverage to reject an out-of-range edge endpoint")
	}
}

func Test_region_stride_and_dofnames(tst *testing.T) {
	r := &Region{Kind: Semiconductor, Level: L1}
	if r.Stride() != 3 {
		tst.Errorf("Semiconductor/L1 stride should be 3, got %d", r.Stride())
	}
	if got := r.DofNames(); len(got) != 3 || got[0] != "psi" {
		tst.Errorf("unexpected DofNames: %v", got)
	}
	ins := &Region{Kind: Insulator, Level: L2}
	if ins.Stride() != 2 {
		tst.Errorf("Insulator/L2 stride should be 2, got %d", ins.Stride())
	}
}

func Test_choose_diagonal_picks_closer_pair(tst *testing.T) {
	psi := map[int]float64{0: 0.0, 1: 5.0, 2: 0.1, 3: 5.2}
	a, b := ChooseDiagonal(0, 1, 2, 3, func(v int) float64 { return psi[v] })
	if a != 0 || b != 2 {
		tst.Errorf("expected diagonal (0,2) (closer psi values), got (%d,%d)", a, b)
	}
}
