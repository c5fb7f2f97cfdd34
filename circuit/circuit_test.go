// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package circuit

import (
	"math"
	"testing"
)

func Test_voltage_driven_pure_resistor(tst *testing.T) {
	e := &Electrode{Mode: VoltageDriven, R: 1000, VApp: 1.0}
	dt := 1e-9
	if got := e.MnaScaling(dt); got != 1000 {
		tst.Errorf("pure-R scaling should be just R when L=0, got %v", got)
	}
	e.Ve = 1.0
	e.P = 1.0
	if got := e.MnaFunction(dt); math.Abs(got) > 1e-12 {
		tst.Errorf("at steady state Ve=VApp with no current, residual should vanish, got %v", got)
	}
}

func Test_current_driven(tst *testing.T) {
	e := &Electrode{Mode: CurrentDriven, IApp: 2.5e-3}
	e.Ic = 2.5e-3
	if got := e.MnaFunction(1e-9); math.Abs(got) > 1e-15 {
		tst.Errorf("current-driven residual should vanish when Ic==IApp, got %v", got)
	}
	if got := e.MnaJacobian(1e-9); got != 0 {
		tst.Errorf("current-driven MnaJacobian should be 0 (V_e is free), got %v", got)
	}
}

func Test_update_commits_history_and_capacitive_current(tst *testing.T) {
	e := &Electrode{Mode: VoltageDriven, C: 1e-12, I: 3.0}
	e.P = 0.0
	e.Ve = 1.0
	dt := 1e-9
	e.Update(dt)
	if e.ILast != 3.0 {
		tst.Errorf("Update should roll I into ILast, got %v", e.ILast)
	}
	if e.P != 1.0 {
		tst.Errorf("Update should roll Ve into P, got %v", e.P)
	}
	wantIc := e.C * 1.0 / dt
	if math.Abs(e.Ic-wantIc) > 1e-20 {
		tst.Errorf("capacitive current mismatch: got %v want %v", e.Ic, wantIc)
	}
}

func Test_hub_sums_connected_electrode_currents(tst *testing.T) {
	a := &Electrode{I: 1.0}
	b := &Electrode{I: -0.4}
	c := &Electrode{I: 2.2}
	hub := &Hub{Electrodes: []*Electrode{a, b, c}}
	want := 1.0 - 0.4 + 2.2
	if got := hub.SumCurrent(); math.Abs(got-want) > 1e-15 {
		tst.Errorf("SumCurrent: got %v want %v", got, want)
	}
}
