// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"github.com/cpmech/gosl/chk"

	"github.com/opentcad/fvmcore/device"
)

// Classify implements the C10 interface-taxonomy cascade (spec §4.3
// "Interface classification"): given the two adjacent region kinds and a
// resistive-metal-mode flag (metalMode true selects the generic
// Metal_Semiconductor continuity family for a metal/semiconductor pair,
// false selects the Ohmic-contact family), return exactly one BC Kind. b is
// the other region's kind and is read only when hasB is true; hasB false
// marks an outer/Neumann face.
//
// chk.Panic on an unclassified pair is deliberate (spec §4.3: "unclassified
// pairs are a fatal mesh-setup error") — this is a setup-time invariant
// violation, not a recoverable runtime condition, the same severity gofem's
// own mesh-consistency checks use.
func Classify(a, b device.Kind, hasB bool, metalMode bool) Kind {
	if !hasB {
		return NeumannBoundary
	}
	switch {
	case a == device.Semiconductor && b == device.Semiconductor:
		return HomoInterface // spec: "semiconductor/semiconductor -> Hetero or Homo"; HomoInterface is the default, callers needing Hetero classify explicitly via material-ID comparison before calling Classify
	case a == device.Semiconductor && b == device.Insulator, a == device.Insulator && b == device.Semiconductor:
		return IFInsulatorSemiconductor
	case a == device.Electrode && b == device.Semiconductor:
		return classifyMetalSemiconductor(metalMode)
	case a == device.Semiconductor && b == device.Electrode:
		return classifyMetalSemiconductor(metalMode)
	case a == device.Insulator && b == device.Insulator:
		return IFInsulatorInsulator
	case a == device.Electrode && b == device.Electrode:
		return IFElectrodeElectrode
	case a == device.Electrode && b == device.Insulator, a == device.Insulator && b == device.Electrode:
		return IFInsulatorMetal
	case a == device.Semiconductor && b == device.Vacuum, a == device.Vacuum && b == device.Semiconductor:
		return IFSemiconductorVacuum
	case a == device.Insulator && b == device.Vacuum, a == device.Vacuum && b == device.Insulator:
		return IFInsulatorVacuum
	case a == device.Electrode && b == device.Vacuum, a == device.Vacuum && b == device.Electrode:
		return IFElectrodeVacuum
	case a == device.PML && b == device.PML:
		return IFPMLPML
	case a == device.PML || b == device.PML:
		return IFPMLScatter
	default:
		chk.Panic("bc.Classify: no BC kind for region pair (%v, %v)", a, b)
		return InvalidBCType
	}
}

// classifyMetalSemiconductor resolves the metal/semiconductor family per
// spec §4.3: "metal/semiconductor -> Ohmic or Metal_Semiconductor depending
// on mode". metalMode selects the plain-continuity IF_Metal_Semiconductor
// path (used when the metal region's own resistive-conduction model, not a
// contact-physics model, should own the interface); otherwise the interface
// is an Ohmic contact.
func classifyMetalSemiconductor(metalMode bool) Kind {
	if metalMode {
		return IFMetalSemiconductor
	}
	return OhmicContact
}
