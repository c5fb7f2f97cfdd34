// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package device implements the mesh & FVM graph (C1), the region registry
// (C2) and the per-node/cell state (C3) of spec §3–§4.1.
//
// Mesh I/O and refinement are external collaborators (spec §1 Non-goals);
// this package only owns the in-memory graph a reader hands it — nodes,
// elements, edges, control-volume geometry and an existing ghost layer —
// grounded on the way gofem's fem.Domain holds "active Nodes and Elements"
// without itself parsing a mesh file.
package device

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Mesh is the flat-arena graph described in spec §9's design note: cyclic
// node/region/BC pointer graphs are replaced by integer indices into these
// arenas, so the whole graph is serializable and MPI-ghost-safe without
// pointer chasing across process boundaries.
type Mesh struct {
	Nodes    []*Node
	FvmNodes []*FvmNode
	Edges    []*Edge
	Regions  []*Region
	Hanging  []int // indices into FvmNodes that carry a HangingRecord

	// ghost tracks, for each FvmNode index, whether it is a read-only ghost
	// copy on this processor (true) or locally owned (false). Every
	// off-processor FvmNode referenced by an on-processor edge must have an
	// entry here (spec §3 invariants).
	ghost []bool

	// Rank and NProcs identify this processor's place in the SPMD run
	// (spec §5). Rank 0/NProcs 1 for a serial run.
	Rank, NProcs int

	Ny int // total unknown count assigned by AssignOffsets
}

// NewMesh returns an empty mesh for the given processor rank.
func NewMesh(rank, nprocs int) *Mesh {
	return &Mesh{Rank: rank, NProcs: nprocs}
}

// AddRegion appends a region to the registry and returns its index.
func (m *Mesh) AddRegion(r *Region) int {
	r.Index = len(m.Regions)
	m.Regions = append(m.Regions, r)
	return r.Index
}

// AddNode appends a mesh vertex and returns its index.
func (m *Mesh) AddNode(n *Node) int {
	idx := len(m.Nodes)
	m.Nodes = append(m.Nodes, n)
	return idx
}

// AddFvmNode appends an FVM node, wires it into its Node and Region, and
// returns its index. owner and ghost membership are derived from the
// parent Node's Owner field relative to m.Rank.
func (m *Mesh) AddFvmNode(f *FvmNode) int {
	f.Index = len(m.FvmNodes)
	m.FvmNodes = append(m.FvmNodes, f)
	m.ghost = append(m.ghost, m.Nodes[f.Node].Owner != m.Rank)
	m.Nodes[f.Node].FvmNodes = append(m.Nodes[f.Node].FvmNodes, f.Index)
	reg := m.Regions[f.Region]
	reg.FvmNodes = append(reg.FvmNodes, f.Index)
	if f.Hanging != nil {
		m.Hanging = append(m.Hanging, f.Index)
	}
	return f.Index
}

// AddEdge appends an edge between two on-region FvmNodes and returns its
// index.
func (m *Mesh) AddEdge(e *Edge) int {
	e.Index = len(m.Edges)
	m.Edges = append(m.Edges, e)
	m.Regions[e.Region].Edges = append(m.Regions[e.Region].Edges, e.Index)
	m.FvmNodes[e.A].Neighbors = append(m.FvmNodes[e.A].Neighbors, Neighbor{FvmNode: e.B, Edge: e.Index})
	m.FvmNodes[e.B].Neighbors = append(m.FvmNodes[e.B].Neighbors, Neighbor{FvmNode: e.A, Edge: e.Index})
	return e.Index
}

// IsGhost reports whether an FvmNode is a read-only ghost copy on this
// processor.
func (m *Mesh) IsGhost(fvmIdx int) bool { return m.ghost[fvmIdx] }

// IsOwned is the negation of IsGhost, kept as a named helper for call-site
// readability in assemblers (spec §4.2 step 2: "provided the endpoint is
// on-processor").
func (m *Mesh) IsOwned(fvmIdx int) bool { return !m.ghost[fvmIdx] }

// OwnedFvmNodeIndices returns on-processor FvmNode indices ordered by the
// parent Node's GlobalID, then by region index — a stable order independent
// of insertion order so that two processors with the same partition and
// node numbering assemble bit-identical sums (spec §4.1).
func (m *Mesh) OwnedFvmNodeIndices() []int {
	var out []int
	for i, f := range m.FvmNodes {
		if !m.ghost[i] {
			out = append(out, i)
		}
	}
	m.sortByGlobalThenRegion(out)
	return out
}

// AllFvmNodeIndices returns every FvmNode index (owned and ghost), in the
// same deterministic order.
func (m *Mesh) AllFvmNodeIndices() []int {
	out := make([]int, len(m.FvmNodes))
	for i := range out {
		out[i] = i
	}
	m.sortByGlobalThenRegion(out)
	return out
}

func (m *Mesh) sortByGlobalThenRegion(idx []int) {
	sort.Slice(idx, func(a, b int) bool {
		fa, fb := m.FvmNodes[idx[a]], m.FvmNodes[idx[b]]
		ga, gb := m.Nodes[fa.Node].GlobalID, m.Nodes[fb.Node].GlobalID
		if ga != gb {
			return ga < gb
		}
		return fa.Region < fb.Region
	})
}

// EdgeIndices returns every edge index of a region, in ascending FvmNode-A
// global-id order, for deterministic edge-flux assembly (spec §4.1).
func (m *Mesh) EdgeIndices(region int) []int {
	out := append([]int(nil), m.Regions[region].Edges...)
	sort.Slice(out, func(i, j int) bool {
		ea, eb := m.Edges[out[i]], m.Edges[out[j]]
		ga := m.Nodes[m.FvmNodes[ea.A].Node].GlobalID
		gb := m.Nodes[m.FvmNodes[eb.A].Node].GlobalID
		return ga < gb
	})
	return out
}

// HangingIndices returns the FvmNode indices of every hanging node, in
// deterministic order.
func (m *Mesh) HangingIndices() []int {
	out := append([]int(nil), m.Hanging...)
	m.sortByGlobalThenRegion(out)
	return out
}

// AssignOffsets assigns the global unknown-vector base offset of every
// on-processor FvmNode, region-then-BC order (spec §3 Lifecycle): regions
// are walked first so that electrode/BC scalar unknowns (assigned later by
// package bc) always sit at the tail of the vector. Returns the number of
// region-level unknowns assigned; callers append BC unknowns after this
// count.
func (m *Mesh) AssignOffsets() int {
	offset := 0
	owned := m.OwnedFvmNodeIndices()
	for _, idx := range owned {
		f := m.FvmNodes[idx]
		f.Offset = offset
		offset += m.Regions[f.Region].Stride()
	}
	m.Ny = offset

	// Ghost copies need an offset too (assembly reads neighbor unknowns
	// across process boundaries), but ghost rows are never solved for
	// locally — in this reference single-rank runtime there are no ghosts
	// to number, so ghost offsets are left at the sentinel -1 and a real
	// distributed backend is expected to fill them from the owning rank.
	for _, f := range m.FvmNodes {
		if m.IsGhost(f.Index) {
			f.Offset = -1
		}
	}
	return offset
}

// CheckGhostCoverage verifies the spec §3 invariant that every
// off-processor FvmNode referenced by an on-processor edge has a ghost
// entry — i.e. is present in m.FvmNodes at all, since every FvmNode this
// mesh knows about was given a ghost flag in AddFvmNode. It additionally
// checks that every edge endpoint resolves to a valid FvmNode index, which
// is the failure mode an incomplete ghost layer from mesh I/O would produce.
func (m *Mesh) CheckGhostCoverage() error {
	n := len(m.FvmNodes)
	for _, e := range m.Edges {
		if e.A < 0 || e.A >= n || e.B < 0 || e.B >= n {
			return chk.Err("device: edge %d references out-of-range FvmNode (A=%d B=%d of %d known)", e.Index, e.A, e.B, n)
		}
	}
	return nil
}
