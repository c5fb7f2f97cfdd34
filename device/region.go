// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import "github.com/cpmech/gosl/chk"

// Kind tags the material behaviour of a Region (spec §3 Region).
type Kind int

const (
	Semiconductor Kind = iota
	Insulator
	Electrode // resistive metal
	Vacuum
	PML
)

func (k Kind) String() string {
	switch k {
	case Semiconductor:
		return "Semiconductor"
	case Insulator:
		return "Insulator"
	case Electrode:
		return "Electrode"
	case Vacuum:
		return "Vacuum"
	case PML:
		return "PML"
	default:
		return "Unknown"
	}
}

// Level selects which rung of the drift-diffusion ladder a Semiconductor (or
// Poisson-only) region solves (spec §3 "Unknown vector layout").
type Level int

const (
	L1 Level = iota // {ψ,n,p} or {ψ}
	L2              // + T_L
	L3              // + T_n, T_p  (semiconductor only)
)

// Stride returns the number of scalar unknowns per FVM node for a region of
// this Kind at this Level. It is fixed for the life of a solve (spec §3
// invariants).
func (r *Region) Stride() int {
	switch r.Kind {
	case Semiconductor:
		switch r.Level {
		case L1:
			return 3 // ψ, n, p
		case L2:
			return 4 // + T_L
		case L3:
			return 6 // + T_n, T_p
		}
	case Insulator, Electrode, Vacuum, PML:
		switch r.Level {
		case L1:
			return 1 // ψ
		case L2:
			return 2 // + T_L
		}
	}
	chk.Panic("device: no unknown stride defined for region kind=%v level=%v", r.Kind, r.Level)
	return 0
}

// DofNames returns the per-node unknown names in assembly order, used by
// assemblers to index into a node's unknown block and by the BC textual
// surface for diagnostics.
func (r *Region) DofNames() []string {
	switch r.Kind {
	case Semiconductor:
		switch r.Level {
		case L1:
			return []string{"psi", "n", "p"}
		case L2:
			return []string{"psi", "n", "p", "TL"}
		case L3:
			return []string{"psi", "n", "p", "TL", "Tn", "Tp"}
		}
	default:
		switch r.Level {
		case L1:
			return []string{"psi"}
		case L2:
			return []string{"psi", "TL"}
		}
	}
	return nil
}

// Region is a connected material domain (spec §3 Region). Neighbour graphs
// (cyclic in the physical model) are represented as integer indices into the
// owning Mesh's flat arenas, per spec §9's design note on cyclic graphs.
type Region struct {
	Index    int    // index into Mesh.Regions
	Name     string // e.g. "anode-well", "gate-oxide"
	Kind     Kind
	Level    Level
	Material MaterialRef // resolved material adapter handle (package material)
	ZWidth   float64     // device z-width for 2D meshes; 1 for true 3D

	FvmNodes []int // indices into Mesh.FvmNodes owned by this region
	Edges    []int // indices into Mesh.Edges owned by this region
}

// MaterialRef is a thin handle the device layer carries without depending on
// package material (which would create an import cycle); Name is the key a
// model was registered under with material.Register.
type MaterialRef struct {
	Name string
}
