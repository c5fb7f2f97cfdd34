// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"math"

	"github.com/cpmech/gosl/num"
)

// FermiHalf evaluates the complete Fermi-Dirac integral of order 1/2,
//
//	F_{1/2}(eta) = (2/sqrt(pi)) * integral_0^inf sqrt(x) / (1+exp(x-eta)) dx
//
// used by the Fermi-statistics Ohmic contact (spec §4.3): under Fermi
// statistics, `Nc.F_{1/2}(eta_n) - Nv.F_{1/2}(eta_p) - N = 0`. There is no
// closed form, so this integrates numerically with gosl/num rather than a
// hand-rolled quadrature rule, grounded on SPEC_FULL.md's DOMAIN STACK
// wiring of gosl/num.
func FermiHalf(eta float64) float64 {
	integrand := func(x float64) float64 {
		return math.Sqrt(x) / (1 + math.Exp(x-eta))
	}
	// the integrand decays like exp(eta-x) for x far above eta; 40 units
	// past eta is enough for float64 precision at any eta this model sees.
	upper := math.Max(40, eta+40)
	val, err := num.QuadGslCheb(0, upper, integrand, 1e-10)
	if err != nil {
		// fall back to the non-degenerate (Maxwell-Boltzmann) limit if the
		// quadrature fails to converge — better than propagating NaN into
		// a Newton residual.
		return math.Exp(eta)
	}
	return 2 / math.Sqrt(math.Pi) * val
}

// InverseFermiHalf solves F_{1/2}(eta) = y for eta by bisection; used to
// seed an initial guess for the Fermi-statistics Ohmic contact's
// quasi-Fermi level from a target carrier density ratio.
func InverseFermiHalf(y float64) float64 {
	if y <= 0 {
		return -80
	}
	lo, hi := -80.0, 80.0
	for i := 0; i < 100; i++ {
		mid := 0.5 * (lo + hi)
		if FermiHalf(mid) < y {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
