// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package circuit implements the external-circuit attachment (C8): a
// per-electrode series R, shunt C, series L and applied voltage/current
// source, closing the device equations through one extra unknown (the
// electrode potential V_e) and one extra equation (the MNA stamp) per
// electrode. Grounded on toy-spice/pkg/device's Stamp idiom (a device
// contributes conductance/source terms into a shared matrix/RHS given its
// node indices) and its VoltageSource branch-current extra-unknown pattern,
// adapted from SPICE's per-device Stamp to the spec's per-electrode
// mna_scaling/mna_function/mna_jacobian/update split (spec §4.4).
package circuit

// Mode selects how an Electrode's unknown V_e is driven.
type Mode int

const (
	VoltageDriven Mode = iota
	CurrentDriven
	Interconnected
	Floating
)

// Electrode holds one electrode's lumped network and its step-to-step
// history (spec §3 "External-circuit state carries step-to-step history").
type Electrode struct {
	R, C, L float64
	VApp    float64
	IApp    float64
	Mode    Mode

	// history
	I      float64 // terminal current at the last accepted step
	ILast  float64
	Ic     float64 // capacitive current
	P      float64 // previous V_e (the "P" in spec §4.4's mna_function)
	Ve     float64
	VeLast float64
}

// MnaScaling returns the coefficient the BC's function hook multiplies the
// integrated terminal current I_e by before adding it to the electrode row
// (spec §4.4): L/dt+R in voltage mode, 1 in current mode.
func (o *Electrode) MnaScaling(dt float64) float64 {
	switch o.Mode {
	case VoltageDriven:
		return o.L/dt + o.R
	default:
		return 1
	}
}

// MnaFunction returns the residual of the RLC-source equation (spec §4.4).
func (o *Electrode) MnaFunction(dt float64) float64 {
	switch o.Mode {
	case VoltageDriven:
		s := o.L/dt + o.R
		return (o.Ve - o.VApp) + s*o.C/dt*o.Ve - s*o.C/dt*o.P - o.L/dt*(o.I+o.Ic)
	case CurrentDriven:
		return o.Ic - o.IApp
	default:
		return 0
	}
}

// MnaJacobian returns d(mna_function)/d(V_e) (spec §4.4).
func (o *Electrode) MnaJacobian(dt float64) float64 {
	switch o.Mode {
	case VoltageDriven:
		s := o.L/dt + o.R
		return 1 + s*o.C/dt
	default:
		return 0
	}
}

// Update commits the accepted step: I becomes ILast, V_e becomes P (the
// "previous potential" the next step's capacitive term references), and a
// new capacitive current is computed from the potential swing (spec §4.4
// "update(): commit I->I_last, V_e->P, compute new I_c").
func (o *Electrode) Update(dt float64) {
	o.ILast = o.I
	swing := o.Ve - o.P
	o.P = o.Ve
	o.VeLast = o.Ve
	if dt > 0 {
		o.Ic = o.C * swing / dt
	}
}
