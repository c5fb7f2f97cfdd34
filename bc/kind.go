// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package bc implements boundary conditions (C7) and interface
// classification (C10): a row-level rewriter dispatched by a tagged BC kind,
// grounded on gofem/fem.EssentialBcs's row-constraint bookkeeping and
// gofem/ele.factory.go's name-keyed allocator-map registration, generalized
// from Lagrange-multiplier single/multi-point constraints to the spec's
// four-hook (preprocess/function/jacobian/reserve) BC contract.
package bc

// Kind enumerates every boundary-condition kind of spec §6, in the order
// listed there.
type Kind int

const (
	NeumannBoundary Kind = iota
	OhmicContact
	IFMetalOhmic
	SchottkyContact
	IFMetalSchottky
	GateContact
	SimpleGateContact
	SolderPad
	IFInsulatorSemiconductor
	HeteroInterface
	HomoInterface
	ChargedContact
	AbsorbingBoundary
	SourceBoundary
	IFSemiconductorVacuum
	IFInsulatorVacuum
	IFElectrodeVacuum
	IFMetalVacuum
	IFPMLPML
	IFPMLScatter
	IFElectrodeInsulator
	IFInsulatorInsulator
	IFElectrodeElectrode
	IFElectrodeMetal
	IFInsulatorMetal
	IFMetalMetal
	IFElectrodeSemiconductor
	IFMetalSemiconductor
	ChargeIntegral
	InterConnect
	InvalidBCType
)

// names is the canonical string token for each Kind, used by the §6 textual
// descriptor and by Classify's fatal-error messages.
var names = [...]string{
	NeumannBoundary:          "NeumannBoundary",
	OhmicContact:             "OhmicContact",
	IFMetalOhmic:             "IF_Metal_Ohmic",
	SchottkyContact:          "SchottkyContact",
	IFMetalSchottky:          "IF_Metal_Schottky",
	GateContact:              "GateContact",
	SimpleGateContact:        "SimpleGateContact",
	SolderPad:                "SolderPad",
	IFInsulatorSemiconductor: "IF_Insulator_Semiconductor",
	HeteroInterface:          "HeteroInterface",
	HomoInterface:            "HomoInterface",
	ChargedContact:           "ChargedContact",
	AbsorbingBoundary:        "AbsorbingBoundary",
	SourceBoundary:           "SourceBoundary",
	IFSemiconductorVacuum:    "IF_Semiconductor_Vacuum",
	IFInsulatorVacuum:        "IF_Insulator_Vacuum",
	IFElectrodeVacuum:        "IF_Electrode_Vacuum",
	IFMetalVacuum:            "IF_Metal_Vacuum",
	IFPMLPML:                 "IF_PML_PML",
	IFPMLScatter:             "IF_PML_Scatter",
	IFElectrodeInsulator:     "IF_Electrode_Insulator",
	IFInsulatorInsulator:     "IF_Insulator_Insulator",
	IFElectrodeElectrode:     "IF_Electrode_Electrode",
	IFElectrodeMetal:         "IF_Electrode_Metal",
	IFInsulatorMetal:         "IF_Insulator_Metal",
	IFMetalMetal:             "IF_Metal_Metal",
	IFElectrodeSemiconductor: "IF_Electrode_Semiconductor",
	IFMetalSemiconductor:     "IF_Metal_Semiconductor",
	ChargeIntegral:           "ChargeIntegral",
	InterConnect:             "InterConnect",
	InvalidBCType:            "INVALID_BC_TYPE",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(names) {
		return names[InvalidBCType]
	}
	return names[k]
}

// kindByName is built lazily on first use (spec §9 "global mutable statics
// for name<->enum maps ... build lazily on first use"), rather than a
// package-level literal map, to keep the single source of truth in `names`.
var kindByName map[string]Kind

// KindFromName resolves a BC kind from its canonical token, returning
// InvalidBCType if unrecognized. It also accepts "float_metal" as an alias
// of ChargedContact — spec §9 Open Question (a): the original source
// accepts this alias one-way only (never emitted back), and this
// implementation preserves that asymmetry rather than silently making it a
// true two-way alias.
func KindFromName(name string) Kind {
	if kindByName == nil {
		kindByName = make(map[string]Kind, len(names))
		for k, n := range names {
			kindByName[n] = Kind(k)
		}
		kindByName["float_metal"] = ChargedContact
	}
	if k, ok := kindByName[name]; ok {
		return k
	}
	return InvalidBCType
}
