// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"testing"
)

func TestNeuronTypeFmIndex(t *testing.T) {
	cor := []NeuronType{Inhibitory, Excitatory, Inhibitory, Excitatory, Inhibitory, Excitatory}
	for i, tc := range cor {
		typ := NeuronTypeFmIndex(i)
		if typ != tc {
			t.Errorf("type err: idx: %v, typ: %v, cor: %v\n", i, typ, tc)
		}
	}
}

func TestNeuronTypeSign(t *testing.T) {
	if Excitatory.Sign() != 1 {
		t.Errorf("Excitatory sign: %v != 1\n", Excitatory.Sign())
	}
	if Inhibitory.Sign() != -1 {
		t.Errorf("Inhibitory sign: %v != -1\n", Inhibitory.Sign())
	}
}

func TestNeuronTypeString(t *testing.T) {
	if Excitatory.String() != "Excitatory" {
		t.Errorf("Excitatory string: %v\n", Excitatory.String())
	}
	if Inhibitory.String() != "Inhibitory" {
		t.Errorf("Inhibitory string: %v\n", Inhibitory.String())
	}
	var typ NeuronType
	err := typ.FromString("Inhibitory")
	if err != nil {
		t.Error(err)
	}
	if typ != Inhibitory {
		t.Errorf("FromString Inhibitory: %v\n", typ)
	}
}

func TestErrorChannelsFmDiff(t *testing.T) {
	diffs := []float32{0.5, -0.3, 0, 1, -1}
	corExc := []float32{0.5, 0, 0, 1, 0}
	corInh := []float32{0, 0.3, 0, 0, 1}
	var ec ErrorChannels
	for i, df := range diffs {
		ec.FmDiff(df)
		if ec.Exc != corExc[i] || ec.Inh != corInh[i] {
			t.Errorf("FmDiff err: diff: %v, exc: %v, inh: %v, cor: %v, %v\n", df, ec.Exc, ec.Inh, corExc[i], corInh[i])
		}
		if ec.Exc != 0 && ec.Inh != 0 {
			t.Errorf("FmDiff err: diff: %v loaded both channels\n", df)
		}
		if ec.Mag() != corExc[i]+corInh[i] {
			t.Errorf("Mag err: diff: %v, mag: %v\n", df, ec.Mag())
		}
	}
	ec.FmDiff(0.25)
	if !ec.HasErr() {
		t.Errorf("HasErr false after FmDiff(0.25)\n")
	}
	ec.Reset()
	if ec.HasErr() || ec.Exc != 0 || ec.Inh != 0 {
		t.Errorf("Reset left channels: %v, %v\n", ec.Exc, ec.Inh)
	}
	ec.FmDiff(0)
	if ec.HasErr() {
		t.Errorf("HasErr true after FmDiff(0)\n")
	}
}

func TestNeuronReset(t *testing.T) {
	nrn := Neuron{Type: Inhibitory, In: 0.3, Out: 0.6, OutPrv: 0.5, Idx: 7}
	nrn.Err.FmDiff(-0.2)
	nrn.Reset()
	if nrn.In != 0 || nrn.Out != 0 || nrn.OutPrv != 0 || nrn.Err.HasErr() {
		t.Errorf("Reset left state: %v\n", nrn)
	}
	if nrn.Type != Inhibitory || nrn.Idx != 7 {
		t.Errorf("Reset cleared permanent fields: %v\n", nrn)
	}
}

func TestNeuronVars(t *testing.T) {
	nrn := Neuron{In: 0.1, Out: 0.2, OutPrv: 0.3}
	nrn.Err.Exc = 0.4
	cor := []float32{0.1, 0.2, 0.3, 0.4, 0}
	for i, vn := range NeuronVars {
		vl, err := nrn.VarByName(vn)
		if err != nil {
			t.Error(err)
		}
		if vl != cor[i] {
			t.Errorf("var err: %v: %v, cor: %v\n", vn, vl, cor[i])
		}
	}
	_, err := nrn.VarByName("Bogus")
	if err == nil {
		t.Errorf("no error for invalid var name\n")
	}
}
