// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"math"
	"testing"

	"github.com/opentcad/fvmcore/assembly"
	"github.com/opentcad/fvmcore/bc"
	"github.com/opentcad/fvmcore/circuit"
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// constAssembler is a minimal assembly.Assembler stand-in: it adds a fixed
// residual value to every owned FvmNode's first row and a fixed diagonal
// Jacobian entry, just enough to exercise the driver's orchestration without
// pulling in the full drift-diffusion physics.
type constAssembler struct {
	residual float64
	diag     float64
	calls    int
}

func (c *constAssembler) Residual(mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, mode sparse.Mode, dt float64) sparse.Mode {
	c.calls++
	for _, idx := range mesh.OwnedFvmNodeIndices() {
		f := mesh.FvmNodes[idx]
		fb.SetValue(f.Offset, c.residual, sparse.Add)
	}
	return sparse.Add
}

func (c *constAssembler) Jacobian(mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, mode sparse.Mode, dt float64) sparse.Mode {
	for _, idx := range mesh.OwnedFvmNodeIndices() {
		f := mesh.FvmNodes[idx]
		kb.SetValue(f.Offset, f.Offset, c.diag, sparse.Add)
	}
	return sparse.Add
}

func buildSingleNodeMesh() *device.Mesh {
	m := device.NewMesh(0, 1)
	m.AddRegion(&device.Region{Kind: device.Insulator, Level: device.L1})
	n := m.AddNode(&device.Node{GlobalID: 0, Owner: 0})
	m.AddFvmNode(&device.FvmNode{Node: n, Region: 0, Data: &device.NodeData{}})
	m.AssignOffsets()
	return m
}

func Test_function_runs_region_then_bc_in_order(tst *testing.T) {
	mesh := buildSingleNodeMesh()
	models := material.NewModelSet(1)
	asm := &constAssembler{residual: 3.0, diag: -1.0}

	d := New(mesh, models)
	d.AddAssembler(0, asm)
	d.AddBoundary(&bc.Boundary{
		Kind:    bc.NeumannBoundary,
		Nodes:   [][]int{{0}},
		Regions: [2]int{0, -1},
		Offsets: [4]int{-1, -1, -1, -1},
	})

	fb := sparse.NewDenseVector(mesh.Ny)
	if err := d.Function(fb.Values(), fb); err != nil {
		tst.Fatalf("Function: unexpected error: %v", err)
	}
	if asm.calls != 1 {
		tst.Errorf("expected the region assembler to run exactly once, got %d", asm.calls)
	}
	if got := fb.GetValue(0); math.Abs(got-3.0) > 1e-12 {
		tst.Errorf("expected residual 3.0 (Neumann with HeatTransfer=0 is a no-op), got %v", got)
	}
}

func Test_jacobian_writes_region_diagonal(tst *testing.T) {
	mesh := buildSingleNodeMesh()
	models := material.NewModelSet(1)
	asm := &constAssembler{residual: 0, diag: -7.0}

	d := New(mesh, models)
	d.AddAssembler(0, asm)
	d.AddBoundary(&bc.Boundary{
		Kind:    bc.NeumannBoundary,
		Nodes:   [][]int{{0}},
		Regions: [2]int{0, -1},
		Offsets: [4]int{-1, -1, -1, -1},
	})

	kb := sparse.NewTriplet(mesh.Ny, 4)
	y := make([]float64, mesh.Ny)
	if err := d.Jacobian(y, kb); err != nil {
		tst.Fatalf("Jacobian: unexpected error: %v", err)
	}
	got := kb.GetValues([]int{0}, []int{0})[0][0]
	if math.Abs(got-(-7.0)) > 1e-12 {
		tst.Errorf("expected diagonal -7.0, got %v", got)
	}
}

func Test_backup_restore_roundtrip(tst *testing.T) {
	mesh := buildSingleNodeMesh()
	models := material.NewModelSet(1)
	d := New(mesh, models)
	elec := &circuit.Electrode{Mode: circuit.VoltageDriven, VApp: 1.0, Ve: 0.5, I: 2.0}
	d.AddBoundary(&bc.Boundary{Kind: bc.NeumannBoundary, Elec: elec, Offsets: [4]int{-1, -1, -1, -1}})

	y := []float64{9.0}
	cp := d.Backup(y)

	y[0] = -1.0
	elec.Ve = 99.0
	elec.I = -42.0

	d.Restore(cp, y)
	if y[0] != 9.0 {
		tst.Errorf("Restore should reinstate y, got %v", y[0])
	}
	if elec.Ve != 0.5 || elec.I != 2.0 {
		tst.Errorf("Restore should reinstate electrode state, got Ve=%v I=%v", elec.Ve, elec.I)
	}
}

func Test_list_boundaries_includes_every_label(tst *testing.T) {
	mesh := buildSingleNodeMesh()
	models := material.NewModelSet(1)
	d := New(mesh, models)
	d.AddBoundary(&bc.Boundary{Label: "left", Kind: bc.NeumannBoundary, Offsets: [4]int{-1, -1, -1, -1}})
	d.AddBoundary(&bc.Boundary{Label: "right", Kind: bc.NeumannBoundary, Offsets: [4]int{-1, -1, -1, -1}})
	out := d.ListBoundaries()
	for _, want := range []string{"left", "right"} {
		if !containsSubstring(out, want) {
			tst.Errorf("ListBoundaries output missing label %q: %q", want, out)
		}
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
