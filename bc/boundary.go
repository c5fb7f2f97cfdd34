// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/opentcad/fvmcore/circuit"
	"github.com/opentcad/fvmcore/device"
	"github.com/opentcad/fvmcore/material"
	"github.com/opentcad/fvmcore/sparse"
)

// ParamBag is the small per-boundary parameter set spec §3 describes
// ("workfunction, surface-charge density Qf, heat-transfer coefficient,
// reflection flag, oxide thickness and permittivity ..."). Every field maps
// 1:1 to a recognized textual-descriptor key (spec §6); unused fields for a
// given Kind are simply left at their zero value.
type ParamBag struct {
	Workfunction       float64 // eV
	Resistance         float64 // ohm, circuit R
	Capacitance        float64 // F, circuit C
	Inductance         float64 // H, circuit L
	Potential          float64 // V, applied electrode potential
	ExtTemp            float64 // K
	HeatTransfer       float64 // J/(s.cm^2.K)
	Reflection         bool
	ZWidth             float64 // um, device z-width for 2D meshes
	ElecRecombVelocity float64 // cm/s
	HoleRecombVelocity float64 // cm/s
	Thickness          float64 // um, oxide thickness
	Eps                float64 // relative permittivity (oxide)
	Qf                 float64 // cm^-2, fixed surface charge
	ElectrodeID        int
	ConnectTo          []int // boundary indices this InterConnect/electrode ties to
	Charge             float64
	ChargeBoundary     bool
	Float              bool
}

// RowRedirect implements spec §4.3 preprocess step 1: "enqueue a
// src_row -> dst_row redirection so that a conservation row from a
// secondary region is added onto the primary region's row."
type RowRedirect struct {
	Src, Dst int
}

// Boundary is the labelled set of boundary FvmNodes plus the incident
// region pair and BC parameters (spec §3 Boundary). Cyclic
// node/region/BC references are flat integer indices, per spec §9.
type Boundary struct {
	Index   int
	Label   string
	Kind    Kind
	Regions [2]int // incident Mesh.Regions indices; -1 if none (e.g. outer Neumann)

	// Nodes lists, per boundary vertex, the FvmNode indices of every
	// region's copy of that vertex (length 1 for a simple Neumann/Ohmic
	// contact on one region, length 2+ at a material interface).
	Nodes [][]int

	Params  ParamBag
	Elec    *circuit.Electrode // non-nil for BCs that carry an electrode unknown
	Hub     *circuit.Hub       // non-nil for InterConnect
	Offsets [4]int             // up to 4 extra global unknown offsets (V_e, hub V, charge Q, spare); -1 if unused
}

// Handler is the four-hook (plus reserve/emit) dispatch table of spec §4.3,
// one implementation per Kind, registered the way gofem/ele registers an
// element's InfoFunc/Allocator.
type Handler interface {
	// FillValue seeds the initial guess and diagonal scaling into y for
	// every FvmNode this boundary touches.
	FillValue(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64)

	// Preprocess records which rows this BC claims (to be cleared) and any
	// src->dst row redirections, without touching fb/kb yet.
	Preprocess(b *Boundary, mesh *device.Mesh) (clear []int, redirect []RowRedirect)

	// Function writes the BC's residual entries with ADD, after the driver
	// has flushed, applied redirects and zeroed the claimed rows.
	Function(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, fb sparse.Vector, dt float64)

	// Jacobian writes the BC's Jacobian entries with ADD.
	Jacobian(b *Boundary, mesh *device.Mesh, models *material.ModelSet, y []float64, kb sparse.Matrix, dt float64)

	// ReserveJacobian pre-touches the sparsity pattern with zeros so later
	// ADDs do not relocate nonzeros (spec §4.3 "jacobian_reserve").
	ReserveJacobian(b *Boundary, mesh *device.Mesh, kb sparse.Matrix)
}

// registry holds one Handler per Kind, filled by each kind's init().
var registry = map[Kind]Handler{}

// Register binds a Handler to a Kind. Panics on double registration, the
// same defensive style as ele.SetAllocator.
func Register(k Kind, h Handler) {
	if _, ok := registry[k]; ok {
		panic("bc: handler already registered for " + k.String())
	}
	registry[k] = h
}

// HandlerFor returns the registered Handler for a Kind, or nil if none was
// registered (callers should treat that as a fatal mesh-setup error per
// spec §7).
func HandlerFor(k Kind) Handler {
	return registry[k]
}
