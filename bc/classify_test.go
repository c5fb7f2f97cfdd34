// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"testing"

	"github.com/opentcad/fvmcore/device"
)

func Test_classify_outer_face(tst *testing.T) {
	if k := Classify(device.Semiconductor, device.Vacuum, false, false); k != NeumannBoundary {
		tst.Errorf("outer face (hasB=false) should always be NeumannBoundary, got %v", k)
	}
}

func Test_classify_every_recognized_pair(tst *testing.T) {
	kinds := []device.Kind{device.Semiconductor, device.Insulator, device.Electrode, device.Vacuum, device.PML}
	want := map[[2]device.Kind]Kind{
		{device.Semiconductor, device.Semiconductor}: HomoInterface,
		{device.Semiconductor, device.Insulator}:      IFInsulatorSemiconductor,
		{device.Insulator, device.Semiconductor}:      IFInsulatorSemiconductor,
		{device.Insulator, device.Insulator}:          IFInsulatorInsulator,
		{device.Electrode, device.Electrode}:          IFElectrodeElectrode,
		{device.Electrode, device.Insulator}:          IFInsulatorMetal,
		{device.Insulator, device.Electrode}:          IFInsulatorMetal,
		{device.Semiconductor, device.Vacuum}:         IFSemiconductorVacuum,
		{device.Vacuum, device.Semiconductor}:         IFSemiconductorVacuum,
		{device.Insulator, device.Vacuum}:             IFInsulatorVacuum,
		{device.Vacuum, device.Insulator}:             IFInsulatorVacuum,
		{device.Electrode, device.Vacuum}:             IFElectrodeVacuum,
		{device.Vacuum, device.Electrode}:             IFElectrodeVacuum,
		{device.PML, device.PML}:                      IFPMLPML,
	}
	for pair, expect := range want {
		got := Classify(pair[0], pair[1], true, false)
		if got != expect {
			tst.Errorf("Classify(%v,%v): got %v, want %v", pair[0], pair[1], got, expect)
		}
	}

	// every pair involving exactly one PML region and a non-PML region is
	// IFPMLScatter regardless of which side is which.
	for _, k := range kinds {
		if k == device.PML {
			continue
		}
		if got := Classify(device.PML, k, true, false); got != IFPMLScatter {
			tst.Errorf("Classify(PML,%v): got %v, want IFPMLScatter", k, got)
		}
		if got := Classify(k, device.PML, true, false); got != IFPMLScatter {
			tst.Errorf("Classify(%v,PML): got %v, want IFPMLScatter", k, got)
		}
	}
}

func Test_classify_metal_semiconductor_mode(tst *testing.T) {
	if got := Classify(device.Electrode, device.Semiconductor, true, false); got != OhmicContact {
		tst.Errorf("metalMode=false should classify as OhmicContact, got %v", got)
	}
	if got := Classify(device.Semiconductor, device.Electrode, true, true); got != IFMetalSemiconductor {
		tst.Errorf("metalMode=true should classify as IFMetalSemiconductor, got %v", got)
	}
}

// Test_classify_panics_on_vacuum_pair: a Vacuum/Vacuum interface has no
// physical meaning (vacuum regions never border each other in a well-formed
// mesh) and must be rejected as a fatal mesh-setup error (spec §4.3).
func Test_classify_panics_on_vacuum_pair(tst *testing.T) {
	defer func() {
		if recover() == nil {
			tst.Errorf("expected Classify to panic on an unclassified Vacuum/Vacuum pair")
		}
	}()
	Classify(device.Vacuum, device.Vacuum, true, false)
}
