// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"math/rand"
	"testing"
)

func TestXORPats(t *testing.T) {
	pats := XORPats()
	if len(pats) != 4 {
		t.Fatalf("pattern count: got %v, want 4", len(pats))
	}
	wantIn := [][]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	wantTg := []float32{0, 1, 1, 0}
	for i := range pats {
		CmprFloats(pats[i].Inputs, wantIn[i], "xor inputs", t)
		CmprFloats(pats[i].Targets, []float32{wantTg[i]}, "xor targets", t)
		if pats[i].ID != i {
			t.Errorf("pattern %v id: got %v", i, pats[i].ID)
		}
	}
}

func TestParityPats(t *testing.T) {
	pats := ParityPats(3)
	if len(pats) != 8 {
		t.Fatalf("pattern count: got %v, want 8", len(pats))
	}
	CmprFloats(pats[5].Inputs, []float32{1, 0, 1}, "parity 5 inputs", t)
	CmprFloats(pats[5].Targets, []float32{0}, "parity 5 target", t)
	CmprFloats(pats[7].Inputs, []float32{1, 1, 1}, "parity 7 inputs", t)
	CmprFloats(pats[7].Targets, []float32{1}, "parity 7 target", t)

	// two-bit parity is exactly XOR
	p2 := ParityPats(2)
	xor := XORPats()
	if len(p2) != len(xor) {
		t.Fatalf("parity 2 count: got %v, want %v", len(p2), len(xor))
	}
	for i := range p2 {
		CmprFloats(p2[i].Inputs, xor[i].Inputs, "parity 2 inputs", t)
		CmprFloats(p2[i].Targets, xor[i].Targets, "parity 2 targets", t)
	}
}

func TestMirrorPats(t *testing.T) {
	pats := MirrorPats(3)
	if len(pats) != 8 {
		t.Fatalf("pattern count: got %v, want 8", len(pats))
	}
	CmprFloats(pats[5].Inputs, []float32{1, 0, 1}, "mirror 5 inputs", t)
	CmprFloats(pats[5].Targets, []float32{1}, "mirror 5 target", t)
	CmprFloats(pats[4].Inputs, []float32{0, 0, 1}, "mirror 4 inputs", t)
	CmprFloats(pats[4].Targets, []float32{0}, "mirror 4 target", t)
	CmprFloats(pats[0].Targets, []float32{1}, "mirror 0 target", t)
}

func TestOneHotPats(t *testing.T) {
	pats := OneHotPats(3)
	if len(pats) != 3 {
		t.Fatalf("pattern count: got %v, want 3", len(pats))
	}
	CmprFloats(pats[1].Inputs, []float32{0, 1, 0}, "one hot inputs", t)
	CmprFloats(pats[1].Targets, []float32{0, 1, 0}, "one hot targets", t)
}

func TestRandomGenPats(t *testing.T) {
	real1 := RealPats(3, 2, 10, rand.New(rand.NewSource(5)))
	real2 := RealPats(3, 2, 10, rand.New(rand.NewSource(5)))
	if len(real1) != 10 {
		t.Fatalf("pattern count: got %v, want 10", len(real1))
	}
	for i := range real1 {
		p := &real1[i]
		if len(p.Inputs) != 3 || len(p.Targets) != 2 {
			t.Fatalf("pattern %v shape: %v inputs, %v targets", i, len(p.Inputs), len(p.Targets))
		}
		for _, v := range p.Inputs {
			if v < 0 || v >= 1 {
				t.Errorf("real input out of range: %v", v)
			}
		}
		CmprFloats(p.Inputs, real2[i].Inputs, "real pats determinism", t)
	}

	bin := RandomPats(3, 2, 10, rand.New(rand.NewSource(5)))
	for i := range bin {
		for _, v := range bin[i].Inputs {
			if v != 0 && v != 1 {
				t.Errorf("random input not binary: %v", v)
			}
		}
		for _, v := range bin[i].Targets {
			if v != 0 && v != 1 {
				t.Errorf("random target not binary: %v", v)
			}
		}
	}
}

func TestPatsTable(t *testing.T) {
	pats := XORPats()
	dt := PatsTable(pats)
	if dt.Rows != 4 {
		t.Fatalf("table rows: got %v, want 4", dt.Rows)
	}
	if nm := dt.CellString("Name", 2); nm != "pat_2" {
		t.Errorf("table name: got %v, want pat_2", nm)
	}
	back, err := PatsFmTable(dt)
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != len(pats) {
		t.Fatalf("round trip count: got %v, want %v", len(back), len(pats))
	}
	for i := range back {
		CmprFloats(back[i].Inputs, pats[i].Inputs, "round trip inputs", t)
		CmprFloats(back[i].Targets, pats[i].Targets, "round trip targets", t)
		if back[i].ID != pats[i].ID {
			t.Errorf("round trip id: got %v, want %v", back[i].ID, pats[i].ID)
		}
	}

	if _, err := PatsFmTable(nil); err == nil {
		t.Errorf("nil table not rejected")
	}
}

func TestValidatePats(t *testing.T) {
	dims := NewDims(2, 2, 1)
	if err := ValidatePats(XORPats(), dims); err != nil {
		t.Error(err)
	}
	if err := ValidatePats(nil, dims); err != nil {
		t.Error(err)
	}
	bad := []TrainingPattern{{Inputs: []float32{1}, Targets: []float32{0}, ID: 0}}
	if err := ValidatePats(bad, dims); err == nil {
		t.Errorf("wrong input size not rejected")
	}
	bad = []TrainingPattern{{Inputs: []float32{1, 0}, Targets: []float32{0, 1}, ID: 0}}
	if err := ValidatePats(bad, dims); err == nil {
		t.Errorf("wrong target size not rejected")
	}
}
