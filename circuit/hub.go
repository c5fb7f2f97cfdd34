// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package circuit

// Hub is the InterConnect electrode-tying node (spec §4.3 "Interconnect
// hub"): every connected electrode gets one extra equation V_e - V_hub = 0,
// and the hub's own row sums the connected electrodes' currents to zero.
type Hub struct {
	Electrodes []*Electrode // the electrodes tied to this hub
	VHub       float64      // the hub's own unknown
}

// SumCurrent is the hub's governing equation residual: sum of every
// connected electrode's terminal current Electrode.I must vanish. The raw
// currents are summed; no R-coupling term from an electrode's own R/L/C
// network is added.
func (o *Hub) SumCurrent() float64 {
	sum := 0.0
	for _, e := range o.Electrodes {
		sum += e.I
	}
	return sum
}
