// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"fmt"
	"math/bits"
	"math/rand"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// edla.TrainingPattern is one input / target pair.  Inputs are logical
// values: the network doubles each into an inhibitory / excitatory neuron
// pair internally.
type TrainingPattern struct {
	Inputs  []float32 `json:"inputs" desc:"logical input values, one per input pair"`
	Targets []float32 `json:"targets" desc:"target output values, one per output neuron"`
	ID      int       `json:"id" desc:"index of this pattern within its set"`
}

// ValidatePats checks every pattern's input and target sizes against the
// given network dimensions, so shape mismatches are caught before any
// weight is touched.
func ValidatePats(pats []TrainingPattern, dims Dims) error {
	for i := range pats {
		p := &pats[i]
		if len(p.Inputs) != dims.In || len(p.Targets) != dims.Out {
			return fmt.Errorf("edla: pattern %d (id %d) has %d inputs, %d targets -- network needs %d, %d", i, p.ID, len(p.Inputs), len(p.Targets), dims.In, dims.Out)
		}
	}
	return nil
}

// XORPats returns the four exclusive-or patterns, in truth table order
// with the low input varying fastest.
func XORPats() []TrainingPattern {
	return []TrainingPattern{
		{Inputs: []float32{0, 0}, Targets: []float32{0}, ID: 0},
		{Inputs: []float32{1, 0}, Targets: []float32{1}, ID: 1},
		{Inputs: []float32{0, 1}, Targets: []float32{1}, ID: 2},
		{Inputs: []float32{1, 1}, Targets: []float32{0}, ID: 3},
	}
}

// ParityPats returns the 2^nbits parity patterns over nbits inputs:
// pattern i has input s set to bit s of i, and target 1 when the number
// of set bits is odd.  ParityPats(2) is XOR.
func ParityPats(nbits int) []TrainingPattern {
	np := 1 << uint(nbits)
	pats := make([]TrainingPattern, np)
	for i := 0; i < np; i++ {
		in := make([]float32, nbits)
		for s := 0; s < nbits; s++ {
			if i&(1<<uint(s)) != 0 {
				in[s] = 1
			}
		}
		tg := float32(0)
		if bits.OnesCount(uint(i))%2 == 1 {
			tg = 1
		}
		pats[i] = TrainingPattern{Inputs: in, Targets: []float32{tg}, ID: i}
	}
	return pats
}

// MirrorPats returns the 2^nbits symmetry patterns over nbits inputs:
// target 1 when the input bit string reads the same in both directions.
func MirrorPats(nbits int) []TrainingPattern {
	np := 1 << uint(nbits)
	pats := make([]TrainingPattern, np)
	for i := 0; i < np; i++ {
		in := make([]float32, nbits)
		for s := 0; s < nbits; s++ {
			if i&(1<<uint(s)) != 0 {
				in[s] = 1
			}
		}
		tg := float32(1)
		for s := 0; s < nbits/2; s++ {
			if in[s] != in[nbits-1-s] {
				tg = 0
				break
			}
		}
		pats[i] = TrainingPattern{Inputs: in, Targets: []float32{tg}, ID: i}
	}
	return pats
}

// OneHotPats returns n identity patterns: pattern i has only input i and
// only target i set.
func OneHotPats(n int) []TrainingPattern {
	pats := make([]TrainingPattern, n)
	for i := 0; i < n; i++ {
		in := make([]float32, n)
		tg := make([]float32, n)
		in[i] = 1
		tg[i] = 1
		pats[i] = TrainingPattern{Inputs: in, Targets: tg, ID: i}
	}
	return pats
}

// RealPats returns n patterns of uniformly distributed values in [0, 1)
// for both inputs and targets, drawn from the given source.
func RealPats(nin, nout, n int, rnd *rand.Rand) []TrainingPattern {
	pats := make([]TrainingPattern, n)
	for i := 0; i < n; i++ {
		in := make([]float32, nin)
		tg := make([]float32, nout)
		for s := range in {
			in[s] = rnd.Float32()
		}
		for s := range tg {
			tg[s] = rnd.Float32()
		}
		pats[i] = TrainingPattern{Inputs: in, Targets: tg, ID: i}
	}
	return pats
}

// RandomPats returns n patterns of random binary inputs and targets, each
// bit set with probability one half, drawn from the given source.
func RandomPats(nin, nout, n int, rnd *rand.Rand) []TrainingPattern {
	pats := make([]TrainingPattern, n)
	for i := 0; i < n; i++ {
		in := make([]float32, nin)
		tg := make([]float32, nout)
		for s := range in {
			if rnd.Float32() > 0.5 {
				in[s] = 1
			}
		}
		for s := range tg {
			if rnd.Float32() > 0.5 {
				tg[s] = 1
			}
		}
		pats[i] = TrainingPattern{Inputs: in, Targets: tg, ID: i}
	}
	return pats
}

//////////////////////////////////////////////////////////////////////////////////////
//  etable bridge

// PatsTable returns the given patterns as an etable with Name, Input and
// Output columns, suitable for CSV saving and table-driven environments.
// All patterns must have the same input and target sizes.
func PatsTable(pats []TrainingPattern) *etable.Table {
	nin := 0
	nout := 0
	if len(pats) > 0 {
		nin = len(pats[0].Inputs)
		nout = len(pats[0].Targets)
	}
	sch := etable.Schema{
		{"Name", etensor.STRING, nil, nil},
		{"Input", etensor.FLOAT32, []int{1, nin}, []string{"Y", "X"}},
		{"Output", etensor.FLOAT32, []int{1, nout}, []string{"Y", "X"}},
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", "TrainPats")
	dt.SetMetaData("desc", "training patterns")
	dt.SetFromSchema(sch, len(pats))
	for i := range pats {
		p := &pats[i]
		dt.SetCellString("Name", i, fmt.Sprintf("pat_%d", p.ID))
		for j, v := range p.Inputs {
			dt.SetCellTensorFloat1D("Input", i, j, float64(v))
		}
		for j, v := range p.Targets {
			dt.SetCellTensorFloat1D("Output", i, j, float64(v))
		}
	}
	return dt
}

// PatsFmTable returns the patterns stored in an etable with Input and
// Output tensor columns, one pattern per row.
func PatsFmTable(dt *etable.Table) ([]TrainingPattern, error) {
	if dt == nil {
		return nil, fmt.Errorf("edla.PatsFmTable: Table is nil")
	}
	pats := make([]TrainingPattern, dt.Rows)
	for i := 0; i < dt.Rows; i++ {
		it := dt.CellTensor("Input", i)
		ot := dt.CellTensor("Output", i)
		if it == nil || ot == nil {
			return nil, fmt.Errorf("edla.PatsFmTable: Input or Output column missing at row %d", i)
		}
		in := make([]float32, it.Len())
		for j := range in {
			in[j] = float32(it.FloatVal1D(j))
		}
		tg := make([]float32, ot.Len())
		for j := range tg {
			tg[j] = float32(ot.FloatVal1D(j))
		}
		pats[i] = TrainingPattern{Inputs: in, Targets: tg, ID: i}
	}
	return pats, nil
}
