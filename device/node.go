// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

// Node is a mesh vertex with a stable global identifier and a processor
// owner (spec §3 Node). A vertex at a material interface owns more than one
// FvmNode — one per incident region.
type Node struct {
	GlobalID int
	Owner    int   // owning MPI rank
	FvmNodes []int // indices into Mesh.FvmNodes, one per incident region
	Coord    [3]float64
}

// Neighbor records one edge-endpoint relationship from the perspective of a
// single FvmNode (spec §4.1): edge length, control-volume face area, and
// (for boundary nodes) outside boundary surface area are queried per edge,
// not duplicated per neighbor, but the index lets an FvmNode walk its
// incident edges without a reverse edge-to-node map.
type Neighbor struct {
	FvmNode int // neighbor's index into Mesh.FvmNodes
	Edge    int // index into Mesh.Edges
}

// NodeData is the per-region state vector carried by one FvmNode: last-step
// and last-last-step unknowns (for BDF1/BDF2 time derivatives), plus the
// resolved local material quantities a Newton iteration needs without
// recomputing the material model every residual evaluation.
type NodeData struct {
	// current Newton iterate, indexed by the region's DofNames() order
	Y []float64

	// history, same layout as Y
	YLast     []float64 // previous accepted time step
	YLastLast []float64 // step before that (for BDF2)

	// resolved material/geometry quantities, refreshed once per Newton step
	Permittivity float64
	Affinity     float64
	NetDoping    float64 // Nd - Na, signed
	LatticeTemp  float64 // ambient/initial T_L when not itself an unknown
}

// FvmNode is a mesh vertex viewed from one region (the GLOSSARY's "FVM
// node"). Multiple FvmNodes can share one Node at an interface.
type FvmNode struct {
	Index int // index into Mesh.FvmNodes (self)

	Node   int // index into Mesh.Nodes
	Region int // index into Mesh.Regions

	// Offset is the base index into the global unknown vector for this
	// FvmNode's unknown block; the block spans
	// [Offset, Offset+Region.Stride()). Assigned once at mesh build
	// (spec §3 Lifecycle: region-then-BC order).
	Offset int

	Neighbors []Neighbor

	// BoundaryArea is nonzero only for FvmNodes lying on a Boundary: the
	// outside boundary surface area used by Neumann-style flux terms.
	BoundaryArea float64

	// Volume is the control volume (the Voronoi-like dual cell, GLOSSARY)
	// around this FvmNode, used by volumetric recombination/generation and
	// heat-source terms (spec §4.2 step 3).
	Volume float64

	Data *NodeData

	// Hanging is non-nil iff this FvmNode is a refinement-induced hanging
	// node (spec §3 "Element and side/edge hanging node").
	Hanging *HangingRecord
}

// HangingRecord names the coarse element/side a hanging FvmNode was
// introduced on, and the endpoint pair its unknowns are pinned against
// (spec §4.2 hanging-node reconstruction).
type HangingRecord struct {
	Element int // owning coarse element id, for diagnostics only
	Side    int // local side/edge index within Element

	// SideVertices lists every vertex-node FvmNode index of the side/edge
	// this hanging node sits on; its residual is redistributed to each with
	// weight 1/len(SideVertices) (spec §4.2).
	SideVertices []int

	// VertexA, VertexB are the FvmNode indices of the reconstruction pair
	// (a,b) the unknowns are pinned against: in 2D the unique side endpoint
	// pair; in 3D on a quad side the "more parallel" diagonal (the pair
	// among {(v0,v2),(v1,v3)} with the smaller |psi| difference); on a 3D
	// edge hanging node, the two edge endpoints. Resolved once at mesh
	// build (§4.2). Always a subset of SideVertices.
	VertexA, VertexB int
}

// ChooseDiagonal implements the 3D quadrilateral-side rule of spec §4.2:
// among the two diagonals {(v0,v2),(v1,v3)}, pick the one whose endpoint
// psi values are closer together ("more parallel"), to keep the
// Scharfetter-Gummel reconstruction well-conditioned. psi is a callback so
// this package stays free of a direct dependency on the current solution
// vector's layout.
func ChooseDiagonal(v0, v1, v2, v3 int, psi func(fvmNode int) float64) (a, b int) {
	d02 := absF(psi(v0) - psi(v2))
	d13 := absF(psi(v1) - psi(v3))
	if d02 <= d13 {
		return v0, v2
	}
	return v1, v3
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Edge is the unordered pair of FvmNodes inside one region that carries a
// flux contribution (the GLOSSARY's primary integration unit).
type Edge struct {
	Index  int
	Region int
	A, B   int // FvmNode indices; flux assembled once, scattered +A/-B
	Length float64
	CVArea float64 // cv_surface_area, the control-volume face area between A and B
}
