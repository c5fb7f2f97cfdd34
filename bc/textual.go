// Copyright 2026 The fvmcore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bc

import (
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Emit renders the spec §6 BC textual descriptor:
//
//	BOUNDARY string<id>=NAME enum<type>=KIND [real<key>=VALUE ...]
//
// Only non-zero ParamBag fields are emitted, in the fixed key order spec §6
// lists them, mirroring the compact key-order convention gofem's own
// `inp` readers use for optional fields.
func Emit(b *Boundary) string {
	var sb strings.Builder
	sb.WriteString(io.Sf("BOUNDARY string<id>=%s enum<type>=%s", b.Label, b.Kind.String()))
	for _, kv := range paramPairs(b.Params) {
		sb.WriteString(io.Sf(" real<%s>=%s", kv.key, kv.val))
	}
	return sb.String()
}

type paramKV struct{ key, val string }

// paramPairs walks the ParamBag in the spec's key order, skipping zero
// values (a zero heat-transfer coefficient, say, is indistinguishable from
// "not set" and round-trips correctly either way).
func paramPairs(p ParamBag) []paramKV {
	var out []paramKV
	add := func(key string, v float64) {
		if v != 0 {
			out = append(out, paramKV{key, formatFloat(v)})
		}
	}
	addInt := func(key string, v int) {
		if v != 0 {
			out = append(out, paramKV{key, strconv.Itoa(v)})
		}
	}
	addBool := func(key string, v bool) {
		if v {
			out = append(out, paramKV{key, "1"})
		}
	}

	add("res", p.Resistance)
	add("cap", p.Capacitance)
	add("ind", p.Inductance)
	add("potential", p.Potential)
	add("workfunction", p.Workfunction)
	add("ext.temp", p.ExtTemp)
	add("heat.transfer", p.HeatTransfer)
	addBool("reflection", p.Reflection)
	add("z.width", p.ZWidth)
	add("elec.recomb.velocity", p.ElecRecombVelocity)
	add("hole.recomb.velocity", p.HoleRecombVelocity)
	add("thickness", p.Thickness)
	add("eps", p.Eps)
	add("qf", p.Qf)
	addInt("electrode_id", p.ElectrodeID)
	if len(p.ConnectTo) > 0 {
		parts := make([]string, len(p.ConnectTo))
		for i, c := range p.ConnectTo {
			parts[i] = strconv.Itoa(c)
		}
		out = append(out, paramKV{"connectto", strings.Join(parts, ",")})
	}
	add("charge", p.Charge)
	addBool("chargeboundary", p.ChargeBoundary)
	addBool("float", p.Float)
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Parse reads back a descriptor emitted by Emit into a fresh Boundary
// (Index/Regions/Nodes/Elec/Hub/Offsets are mesh-setup concerns and are left
// zero — Parse only recovers the label, kind and parameter bag spec §8's
// BC-string-round-trip property checks).
func Parse(line string) (*Boundary, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "BOUNDARY" {
		return nil, chk.Err("bc.Parse: not a BOUNDARY line: %q", line)
	}
	b := &Boundary{Regions: [2]int{-1, -1}, Offsets: [4]int{-1, -1, -1, -1}}
	for _, tok := range fields[1:] {
		key, val, err := splitToken(tok)
		if err != nil {
			return nil, err
		}
		switch key {
		case "id":
			b.Label = val
		case "type":
			b.Kind = KindFromName(val)
			if b.Kind == InvalidBCType {
				return nil, chk.Err("bc.Parse: unrecognized BC kind %q", val)
			}
		default:
			if err := setParam(&b.Params, key, val); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// splitToken splits one `kind<key>=value` token into (key, value).
func splitToken(tok string) (key, val string, err error) {
	eq := strings.IndexByte(tok, '=')
	if eq < 0 {
		return "", "", chk.Err("bc.Parse: malformed token %q", tok)
	}
	lhs, val := tok[:eq], tok[eq+1:]
	lt := strings.IndexByte(lhs, '<')
	gt := strings.IndexByte(lhs, '>')
	if lt < 0 || gt < 0 || gt < lt {
		return "", "", chk.Err("bc.Parse: malformed key %q", lhs)
	}
	return lhs[lt+1 : gt], val, nil
}

func setParam(p *ParamBag, key, val string) error {
	switch key {
	case "res":
		return setFloat(&p.Resistance, val)
	case "cap":
		return setFloat(&p.Capacitance, val)
	case "ind":
		return setFloat(&p.Inductance, val)
	case "potential":
		return setFloat(&p.Potential, val)
	case "workfunction":
		return setFloat(&p.Workfunction, val)
	case "ext.temp":
		return setFloat(&p.ExtTemp, val)
	case "heat.transfer":
		return setFloat(&p.HeatTransfer, val)
	case "reflection":
		p.Reflection = val != "0"
	case "z.width":
		return setFloat(&p.ZWidth, val)
	case "elec.recomb.velocity":
		return setFloat(&p.ElecRecombVelocity, val)
	case "hole.recomb.velocity":
		return setFloat(&p.HoleRecombVelocity, val)
	case "thickness":
		return setFloat(&p.Thickness, val)
	case "eps":
		return setFloat(&p.Eps, val)
	case "qf":
		return setFloat(&p.Qf, val)
	case "electrode_id":
		n, err := strconv.Atoi(val)
		if err != nil {
			return chk.Err("bc.Parse: bad electrode_id %q", val)
		}
		p.ElectrodeID = n
	case "connectto":
		for _, s := range strings.Split(val, ",") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return chk.Err("bc.Parse: bad connectto entry %q", s)
			}
			p.ConnectTo = append(p.ConnectTo, n)
		}
	case "charge":
		return setFloat(&p.Charge, val)
	case "chargeboundary":
		p.ChargeBoundary = val != "0"
	case "float":
		p.Float = val != "0"
	default:
		return chk.Err("bc.Parse: unrecognized key %q", key)
	}
	return nil
}

func setFloat(dst *float64, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return chk.Err("bc.Parse: bad float %q", val)
	}
	*dst = f
	return nil
}
