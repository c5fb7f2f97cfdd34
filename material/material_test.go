// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/fun"
)

func Test_registry_builtin_models(tst *testing.T) {
	for _, name := range []string{"silicon", "resistive-metal", "simple-insulator"} {
		mdl, err := New(name)
		if err != nil {
			tst.Fatalf("New(%q): unexpected error: %v", name, err)
		}
		if err := mdl.Init(nil); err != nil {
			tst.Errorf("%s.Init(nil): unexpected error: %v", name, err)
		}
	}
	if _, err := New("does-not-exist"); err == nil {
		tst.Errorf("New of an unregistered model should fail")
	}
}

func Test_silicon_param_override(tst *testing.T) {
	mdl := &Silicon{}
	prms := fun.Prms{{N: "eg", V: 1.5}, {N: "mun", V: 1000}}
	if err := mdl.Init(prms); err != nil {
		tst.Fatalf("Init: %v", err)
	}
	if mdl.Eg300 != 1.5 {
		tst.Errorf("eg override not applied: got %v", mdl.Eg300)
	}
	if mdl.Mun0 != 1000 {
		tst.Errorf("mun override not applied: got %v", mdl.Mun0)
	}
	// untouched parameters keep their defaults
	if mdl.Mup0 != 480 {
		tst.Errorf("mup default should be unchanged: got %v", mdl.Mup0)
	}
}

func Test_silicon_equilibrium_recombination_vanishes(tst *testing.T) {
	mdl := &Silicon{}
	mdl.Init(nil)
	b := mdl.Bands(State{LatticeTemp: 300})
	s := State{LatticeTemp: 300, ElecDensity: b.Ni, HoleDensity: b.Ni}
	u := mdl.Recombination(s)
	if math.Abs(u) > 1e-30*b.Ni {
		tst.Errorf("recombination at np=ni^2 should vanish, got %v", u)
	}
}

func Test_silicon_mobility_degrades_with_field(tst *testing.T) {
	mdl := &Silicon{}
	mdl.Init(nil)
	low := mdl.MobilityElectron(State{EField: 0})
	high := mdl.MobilityElectron(State{EField: 1e6})
	if !(high < low) {
		tst.Errorf("mobility should degrade at high field: low=%v high=%v", low, high)
	}
}

func Test_resistive_metal_is_poisson_only(tst *testing.T) {
	mdl := &ResistiveMetal{}
	mdl.Init(nil)
	if mdl.MobilityElectron(State{}) != 0 || mdl.MobilityHole(State{}) != 0 {
		tst.Errorf("resistive-metal should carry no carrier mobility")
	}
	if mdl.Conductivity(State{}) <= 0 {
		tst.Errorf("resistive-metal should have nonzero bulk conductivity")
	}
}

func Test_recombination_derivatives_match_finite_difference(tst *testing.T) {
	mdl := &Silicon{}
	mdl.Init(nil)
	s := State{LatticeTemp: 300, ElecDensity: 2e15, HoleDensity: 3e14}
	gotDn := mdl.DRecombinationDn(s)

	const h = 1e9
	s1, s2 := s, s
	s1.ElecDensity -= h
	s2.ElecDensity += h
	want := (mdl.Recombination(s2) - mdl.Recombination(s1)) / (2 * h)
	if math.Abs(gotDn-want) > 1e-3*math.Max(1, math.Abs(want)) {
		tst.Errorf("DRecombinationDn mismatch: got %v want %v", gotDn, want)
	}
}
