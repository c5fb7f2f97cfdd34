// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package material implements the material adapter (C4): pure functions
// returning band-structure, mobility, recombination, permittivity, affinity
// and conductance quantities given local state. Material-parameter data
// files are an external collaborator (spec §1 Non-goals); this package only
// fixes the in-memory model contract and a small built-in silicon-like
// default, grounded on gofem/mdl/diffusion's Model interface and factory-map
// registration idiom.
package material

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/num"
)

// Boltzmann constant over elementary charge, eV/K scaled to SI when Vt is
// requested in volts: Vt = kT/q.
const kOverQ = 8.617333262e-5 // eV/K

// State is the local point at which a Model is evaluated: a Newton
// iteration's current unknowns plus ambient conditions, never hidden state
// (spec §9 "material adapters ... must be thread-safe and free of hidden
// state").
type State struct {
	LatticeTemp float64 // K
	NetDoping   float64 // Nd - Na, cm^-3, signed
	ElecDensity float64 // n, cm^-3
	HoleDensity float64 // p, cm^-3
	EField      float64 // V/cm, magnitude along transport direction (mobility degradation)
}

// Bands holds the band-structure quantities a Model resolves at a State.
type Bands struct {
	Eg     float64 // bandgap, eV
	Nc, Nv float64 // effective conduction/valence band density of states, cm^-3
	Ni     float64 // effective intrinsic density n_ie, cm^-3
	Affin  float64 // electron affinity χ, eV
}

// Model is the material adapter contract. Every method is a pure function
// of ndim-independent local state; implementations must not retain or
// mutate shared state between calls, so the same *Model instance may be
// evaluated concurrently by independent edge/node assembly loops.
type Model interface {
	Init(prms fun.Prms) error

	Bands(s State) Bands
	MobilityElectron(s State) float64 // cm^2/(V.s)
	MobilityHole(s State) float64
	Recombination(s State) float64 // net SRH+Auger U, cm^-3.s^-1
	DRecombinationDn(s State) float64
	DRecombinationDp(s State) float64
	Permittivity(s State) float64 // relative permittivity ε_r
	Conductivity(s State) float64 // S/cm, used by resistive-metal/electrode regions and SolderPad
}

// allocators holds model allocators, keyed by model name, in the same init()-time
// factory-map style as gofem/mdl/diffusion.
var allocators = map[string]func() Model{}

// Register adds a named model allocator. Called from init() by each model
// file, mirroring gofem's per-model init() registration.
func Register(name string, alloc func() Model) {
	if _, ok := allocators[name]; ok {
		chk.Panic("material: model %q already registered", name)
	}
	allocators[name] = alloc
}

// New allocates a named model; callers then call Init with parameters
// resolved from the (external) material-parameter data file.
func New(name string) (Model, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("material: model %q is not available in the registry", name)
	}
	return alloc(), nil
}

func init() {
	Register("silicon", func() Model { return &Silicon{} })
	Register("resistive-metal", func() Model { return &ResistiveMetal{} })
	Register("simple-insulator", func() Model { return &SimpleInsulator{} })
}

// Silicon is the default semiconductor model: constant band-structure
// parameters with a temperature-scaled intrinsic density and a
// mobility/recombination model simple enough to be read off closed form
// while still exercising every hook the spec's BC layer needs.
type Silicon struct {
	Eg300    float64 // bandgap at 300K, eV
	ChiEv    float64 // electron affinity, eV
	Nc300    float64 // cm^-3
	Nv300    float64 // cm^-3
	Mun0     float64 // low-field electron mobility, cm^2/(V.s)
	Mup0     float64
	TauN     float64 // SRH lifetime, s
	TauP     float64
	EpsR     float64 // relative permittivity
	NiAtT    float64 // cached n_ie at 300K if prms omit it (computed from Eg,Nc,Nv)
}

func (o *Silicon) Init(prms fun.Prms) error {
	o.Eg300 = 1.12
	o.ChiEv = 4.05
	o.Nc300 = 2.8e19
	o.Nv300 = 1.04e19
	o.Mun0 = 1350
	o.Mup0 = 480
	o.TauN = 1e-6
	o.TauP = 1e-6
	o.EpsR = 11.7
	for _, p := range prms {
		switch p.N {
		case "eg":
			o.Eg300 = p.V
		case "chi":
			o.ChiEv = p.V
		case "nc":
			o.Nc300 = p.V
		case "nv":
			o.Nv300 = p.V
		case "mun":
			o.Mun0 = p.V
		case "mup":
			o.Mup0 = p.V
		case "taun":
			o.TauN = p.V
		case "taup":
			o.TauP = p.V
		case "epsr":
			o.EpsR = p.V
		}
	}
	return nil
}

// Bands evaluates temperature-scaled band-structure quantities. Nc,Nv scale
// as T^1.5 (parabolic-band density of states); Eg follows the Varshni form
// with silicon's standard coefficients.
func (o *Silicon) Bands(s State) Bands {
	T := s.LatticeTemp
	if T <= 0 {
		T = 300
	}
	const alpha, beta = 4.73e-4, 636.0 // Varshni coefficients, eV/K and K
	eg := o.Eg300 + (alpha*300*300)/(300+beta) - (alpha*T*T)/(T+beta)
	scale := math.Pow(T/300, 1.5)
	nc := o.Nc300 * scale
	nv := o.Nv300 * scale
	Vt := kOverQ * T
	ni := math.Sqrt(nc*nv) * math.Exp(-eg/(2*Vt))
	return Bands{Eg: eg, Nc: nc, Nv: nv, Ni: ni, Affin: o.ChiEv}
}

// MobilityElectron applies a Caughey-Thomas-style high-field degradation on
// top of the low-field constant, grounded on the mdl/diffusion.M1 pattern of
// a cubic correction applied to a constant base coefficient.
func (o *Silicon) MobilityElectron(s State) float64 {
	return fieldDegrade(o.Mun0, s.EField, 1.1e4, 1.0)
}

func (o *Silicon) MobilityHole(s State) float64 {
	return fieldDegrade(o.Mup0, s.EField, 1.24e4, 1.0)
}

func fieldDegrade(mu0, e, esat, beta float64) float64 {
	if e <= 0 {
		return mu0
	}
	return mu0 / math.Pow(1+math.Pow(mu0*e/esat, beta), 1/beta)
}

// Recombination evaluates net Shockley-Read-Hall recombination
// U = (np - ni^2) / (taup(n+ni) + taun(p+ni)).
func (o *Silicon) Recombination(s State) float64 {
	b := o.Bands(s)
	n, p, ni := s.ElecDensity, s.HoleDensity, b.Ni
	denom := o.TauP*(n+ni) + o.TauN*(p+ni)
	if denom <= 0 {
		return 0
	}
	return (n*p - ni*ni) / denom
}

func (o *Silicon) DRecombinationDn(s State) float64 {
	return centralDiff(func(n float64) float64 {
		s2 := s
		s2.ElecDensity = n
		return o.Recombination(s2)
	}, s.ElecDensity)
}

func (o *Silicon) DRecombinationDp(s State) float64 {
	return centralDiff(func(p float64) float64 {
		s2 := s
		s2.HoleDensity = p
		return o.Recombination(s2)
	}, s.HoleDensity)
}

func (o *Silicon) Permittivity(s State) float64 { return o.EpsR }
func (o *Silicon) Conductivity(s State) float64 { return 0 }

// centralDiff is the fallback numerical derivative used where a closed form
// would obscure the recombination law more than it would save; grounded on
// gosl/num's differentiation helpers (the same technique backs the AD
// consistency property, spec §8.3).
func centralDiff(f func(float64) float64, x float64) float64 {
	h := math.Max(1, math.Abs(x)) * 1e-6
	return num.DerivCentral(f, x, h)
}

// ResistiveMetal models an Electrode-kind region: Poisson-only, ρ≡0, with a
// fixed bulk conductivity (spec §4.2 "In resistive-metal/electrode regions,
// only this flux applies; ρ≡0").
type ResistiveMetal struct {
	EpsR  float64
	Sigma float64 // S/cm
	ChiEv float64 // workfunction-equivalent for ψ+χ/q Dirichlet rows (SolderPad)
}

func (o *ResistiveMetal) Init(prms fun.Prms) error {
	o.EpsR = 1
	o.Sigma = 3.5e5
	o.ChiEv = 4.1
	for _, p := range prms {
		switch p.N {
		case "epsr":
			o.EpsR = p.V
		case "sigma":
			o.Sigma = p.V
		case "chi":
			o.ChiEv = p.V
		}
	}
	return nil
}

func (o *ResistiveMetal) Bands(s State) Bands              { return Bands{Affin: o.ChiEv} }
func (o *ResistiveMetal) MobilityElectron(s State) float64 { return 0 }
func (o *ResistiveMetal) MobilityHole(s State) float64     { return 0 }
func (o *ResistiveMetal) Recombination(s State) float64    { return 0 }
func (o *ResistiveMetal) DRecombinationDn(s State) float64 { return 0 }
func (o *ResistiveMetal) DRecombinationDp(s State) float64 { return 0 }
func (o *ResistiveMetal) Permittivity(s State) float64     { return o.EpsR }
func (o *ResistiveMetal) Conductivity(s State) float64     { return o.Sigma }

// SimpleInsulator is a Poisson-only dielectric with no free carriers.
type SimpleInsulator struct {
	EpsR float64
}

func (o *SimpleInsulator) Init(prms fun.Prms) error {
	o.EpsR = 3.9 // SiO2 default
	for _, p := range prms {
		if p.N == "epsr" {
			o.EpsR = p.V
		}
	}
	return nil
}

func (o *SimpleInsulator) Bands(s State) Bands              { return Bands{} }
func (o *SimpleInsulator) MobilityElectron(s State) float64 { return 0 }
func (o *SimpleInsulator) MobilityHole(s State) float64     { return 0 }
func (o *SimpleInsulator) Recombination(s State) float64    { return 0 }
func (o *SimpleInsulator) DRecombinationDn(s State) float64 { return 0 }
func (o *SimpleInsulator) DRecombinationDp(s State) float64 { return 0 }
func (o *SimpleInsulator) Permittivity(s State) float64     { return o.EpsR }
func (o *SimpleInsulator) Conductivity(s State) float64     { return 0 }
