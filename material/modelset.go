// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package material

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// ModelSet binds a resolved Model instance to each region index, so
// assemblers can look up "the material adapter for region 3" without
// depending on package device (which would create an import cycle) or on
// package inp's material-file format (an external collaborator, spec §1).
type ModelSet struct {
	byRegion []Model
}

// NewModelSet allocates a set with room for nRegions entries.
func NewModelSet(nRegions int) *ModelSet {
	return &ModelSet{byRegion: make([]Model, nRegions)}
}

// Bind resolves and initializes the named model for a region index.
func (o *ModelSet) Bind(region int, name string, prms fun.Prms) error {
	m, err := New(name)
	if err != nil {
		return err
	}
	if err := m.Init(prms); err != nil {
		return err
	}
	if region >= len(o.byRegion) {
		grown := make([]Model, region+1)
		copy(grown, o.byRegion)
		o.byRegion = grown
	}
	o.byRegion[region] = m
	return nil
}

// Get returns the resolved model for a region index, panicking if none was
// bound — every region must have a material by the time assembly starts
// (spec §3 "per-region material properties").
func (o *ModelSet) Get(region int) Model {
	if region < 0 || region >= len(o.byRegion) || o.byRegion[region] == nil {
		chk.Panic("material: no model bound for region %d", region)
	}
	return o.byRegion[region]
}
