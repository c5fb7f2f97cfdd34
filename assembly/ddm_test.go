// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"math"
	"testing"

	"github.com/opentcad/fvmcore/device"
)

// buildSingleSemiconductorNode builds an isolated Semiconductor/L1 FvmNode
// (no edges), enough to exercise DDML1's volumetric transient term in
// isolation from the edge-flux walk.
func buildSingleSemiconductorNode(ylast []float64) (*device.Mesh, int) {
	m := device.NewMesh(0, 1)
	m.AddRegion(&device.Region{Kind: device.Semiconductor, Level: device.L1})
	n := m.AddNode(&device.Node{GlobalID: 0})
	idx := m.AddFvmNode(&device.FvmNode{
		Node: n, Region: 0, Volume: 1e-8,
		Data: &device.NodeData{LatticeTemp: 300, YLast: ylast},
	})
	m.AssignOffsets()
	return m, idx
}

func Test_ddm_transient_term_is_noop_without_history(tst *testing.T) {
	mesh, idx := buildSingleSemiconductorNode(nil)
	f := mesh.FvmNodes[idx]
	o := &DDML1{Region: 0}
	if _, _, ok := o.transientTerms(f, 1e10, 2e9, 1e-9); ok {
		tst.Errorf("transientTerms should be a no-op with no YLast history")
	}
	if _, _, ok := o.transientTerms(f, 1e10, 2e9, 0); ok {
		tst.Errorf("transientTerms should be a no-op at dt<=0")
	}
}

// Test_ddm_transient_term_matches_bdf1 checks the BDF1 carrier-continuity
// time derivative against its closed form once YLast history and a positive
// dt are both present. Residual's own recombination/charge terms need a
// *material.ModelSet, so this isolates the transient contribution directly
// rather than running the full region Residual pass.
func Test_ddm_transient_term_matches_bdf1(tst *testing.T) {
	const dt = 1e-9
	nLast, pLast := 1e10, 2e9
	n, p := 1.2e10, 1.8e9
	mesh, idx := buildSingleSemiconductorNode([]float64{0, nLast, pLast})
	f := mesh.FvmNodes[idx]

	o := &DDML1{Region: 0}
	wantDn := -q * f.Volume * (n - nLast) / dt
	wantDp := -q * f.Volume * (p - pLast) / dt

	gotDn, gotDp, ok := o.transientTerms(f, n, p, dt)
	if !ok {
		tst.Fatalf("expected transientTerms to fire with YLast present and dt>0")
	}
	if math.Abs(gotDn-wantDn) > 1e-6*math.Max(1, math.Abs(wantDn)) {
		tst.Errorf("electron transient term: got %v want %v", gotDn, wantDn)
	}
	if math.Abs(gotDp-wantDp) > 1e-6*math.Max(1, math.Abs(wantDp)) {
		tst.Errorf("hole transient term: got %v want %v", gotDp, wantDp)
	}
}
