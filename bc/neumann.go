// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// neumannHandler implements the no-flux Neumann boundary (spec §4.3
// "Neumann: no-flux; heat-transfer h.(T_ext-T).A added to the
// lattice-temperature row"). It claims no rows — the region assembler's own
// edge/volume terms already produce the correct natural (zero-flux)
// boundary behaviour by simply not having an edge across the boundary — so
// Preprocess returns nothing to clear; Function only perturbs the
// lattice-temperature row, when present.
type neumannHandler struct{}

func init() { Register(NeumannBoundary, neumannHandler{}) }

func (neumannHandler) FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64) {
}

func (neumannHandler) Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect) {
	return nil, nil
}

func (neumannHandler) Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64) {
	if b.Params.HeatTransfer == 0 {
		return
	}
	for _, group := range b.Nodes {
		for _, fvmIdx := range group {
			f := mesh.FvmNodes[fvmIdx]
			stride := mesh.Regions[f.Region].Stride()
			tIdx := latticeTempIndex(mesh.Regions[f.Region])
			if tIdx < 0 || f.Offset < 0 {
				continue
			}
			tl := y[f.Offset+tIdx]
			q := b.Params.HeatTransfer * (b.Params.ExtTemp - tl) * f.BoundaryArea
			fb.SetValue(f.Offset+tIdx, q, sparse.Add)
			_ = stride
		}
	}
}

func (neumannHandler) Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64) {
	if b.Params.HeatTransfer == 0 {
		return
	}
	for _, group := range b.Nodes {
		for _, fvmIdx := range group {
			f := mesh.FvmNodes[fvmIdx]
			tIdx := latticeTempIndex(mesh.Regions[f.Region])
			if tIdx < 0 || f.Offset < 0 {
				continue
			}
			kb.SetValue(f.Offset+tIdx, f.Offset+tIdx, -b.Params.HeatTransfer*f.BoundaryArea, sparse.Add)
		}
	}
}

func (neumannHandler) ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix) {}

// latticeTempIndex returns the DOF offset of T_L within a region's unknown
// block, or -1 if this region/level has no T_L unknown (spec §3 "Unknown
// vector layout").
func latticeTempIndex(r *device.Region) int {
	switch r.Kind {
	case device.Semiconductor:
		if r.Level >= device.L2 {
			return 3
		}
	default:
		if r.Level >= device.L2 {
			return 1
		}
	}
	return -1
}
