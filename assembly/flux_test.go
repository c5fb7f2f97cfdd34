// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assembly

import (
	"math"
	"testing"

	"github.com/opentcad/fvmcore/ad"
)

// Test_current_flux_antisymmetric checks the discrete conservation property
// spec §8 calls for: the flux computed edge-from-A-to-B must be the exact
// negative of the flux computed edge-from-B-to-A, so that what leaves one
// control volume is exactly what enters its neighbor.
func Test_current_flux_antisymmetric(tst *testing.T) {
	const Vt = 0.02585
	psi1, n1 := ad.New(0, 0.3), ad.New(0, 1e10)
	psi2, n2 := ad.New(0, -0.1), ad.New(0, 5e9)

	fwd := ElectronCurrentFlux(4, psi1, n1, psi2, n2, Vt)
	bwd := ElectronCurrentFlux(4, psi2, n2, psi1, n1, Vt)
	if math.Abs(fwd.V+bwd.V) > 1e-6*math.Max(1, math.Abs(fwd.V)) {
		tst.Errorf("ElectronCurrentFlux not antisymmetric: fwd=%v bwd=%v", fwd.V, bwd.V)
	}

	p1, p2 := ad.New(0, 2e9), ad.New(0, 8e9)
	fwdP := HoleCurrentFlux(4, psi1, p1, psi2, p2, Vt)
	bwdP := HoleCurrentFlux(4, psi2, p2, psi1, p1, Vt)
	if math.Abs(fwdP.V+bwdP.V) > 1e-6*math.Max(1, math.Abs(fwdP.V)) {
		tst.Errorf("HoleCurrentFlux not antisymmetric: fwd=%v bwd=%v", fwdP.V, bwdP.V)
	}
}

// Test_current_flux_zero_at_equilibrium checks that when n is already in
// detailed balance with psi (n2 = n1*exp((psi1-psi2)/Vt)), the net
// Scharfetter-Gummel flux is zero -- the discrete analogue of "no current
// flows in thermal equilibrium with no applied bias".
func Test_current_flux_zero_at_equilibrium(tst *testing.T) {
	const Vt = 0.02585
	psi1V, psi2V := 0.2, -0.15
	n1V := 1e10
	n2V := n1V * math.Exp((psi1V-psi2V)/Vt)

	psi1, psi2 := ad.New(0, psi1V), ad.New(0, psi2V)
	n1, n2 := ad.New(0, n1V), ad.New(0, n2V)
	flux := ElectronCurrentFlux(4, psi1, n1, psi2, n2, Vt)
	if math.Abs(flux.V) > 1e-3*n1V {
		tst.Errorf("equilibrium flux should vanish, got %v (scale %v)", flux.V, n1V)
	}
}

func Test_poisson_flux_antisymmetric(tst *testing.T) {
	psi1, psi2 := ad.New(0, 1.0), ad.New(0, -0.5)
	fwd := PoissonFlux(psi1, psi2, 11.7, 1e-8, 1e-6)
	bwd := PoissonFlux(psi2, psi1, 11.7, 1e-8, 1e-6)
	if math.Abs(fwd.V+bwd.V) > 1e-20 {
		tst.Errorf("PoissonFlux not antisymmetric: fwd=%v bwd=%v", fwd.V, bwd.V)
	}
}

func Test_nmid_reduces_to_average_at_zero_field(tst *testing.T) {
	n1, n2 := 3e9, 7e9
	got := Nmid(0.02585, 0.5, 0.5, n1, n2)
	want := 0.5 * (n1 + n2)
	if math.Abs(got-want) > 1e-6*want {
		tst.Errorf("Nmid at zero field should average: got %v want %v", got, want)
	}
}

func Test_pmid_sign_flip_of_nmid(tst *testing.T) {
	p1, p2 := 2e9, 6e9
	gotP := Pmid(0.02585, 0.4, -0.1, p1, p2)
	gotN := Nmid(0.02585, -0.1, 0.4, p1, p2)
	if math.Abs(gotP-gotN) > 1e-6*math.Max(1, gotN) {
		tst.Errorf("Pmid should equal Nmid with v1/v2 swapped: got %v want %v", gotP, gotN)
	}
}
