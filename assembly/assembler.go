// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// Assembler is the per-region contract of spec §4.2: two entry points per
// physical model, each driving the shared "flush if mode mismatch, walk
// edges, walk nodes, return Add" protocol. Grounded on
// ele.Element.AddToRhs/AddToKb, generalized from per-cell integration-point
// loops to per-edge/per-node FVM loops.
type Assembler interface {
	// Residual adds this region's contribution to fb under the given
	// starting mode, returning the mode left active (always Add on return).
	// dt is the current step size (0 for a steady-state/DC solve); region
	// assemblers that carry a transient volumetric term (spec §4.2 step 3
	// "displacement-current time derivative in transient, heat-source
	// terms") read dt and each FvmNode's Data.YLast history, and are a
	// no-op for that term when dt<=0 or no history has been accepted yet.
	Residual(mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, mode sparse.Mode, dt float64) sparse.Mode

	// Jacobian adds this region's contribution to kb under the given
	// starting mode, returning the mode left active (always Add on return).
	Jacobian(mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, mode sparse.Mode, dt float64) sparse.Mode
}

// flushVectorIfNeeded and flushMatrixIfNeeded implement spec §4.2 step 1: "If the current mode is not
// compatible, flushes the target ... the INSERT<->ADD transition is a
// collective barrier."
func flushVectorIfNeeded(fb sparse.Vector, current, want sparse.Mode) sparse.Mode {
	if current != sparse.NotSet && current != want {
		fb.FlushAssembly()
	}
	return want
}

func flushMatrixIfNeeded(kb sparse.Matrix, current, want sparse.Mode) sparse.Mode {
	if current != sparse.NotSet && current != want {
		kb.FlushAssembly()
	}
	return want
}
