// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// NeuronType is the permanent polarity of a neuron, assigned once when the
// network is built.  It fixes the sign of every weight on connections
// touching the neuron: the product of the sender and receiver sign factors.
type NeuronType int

//go:generate stringer -type=NeuronType

var KiT_NeuronType = kit.Enums.AddEnum(NeuronTypeN, kit.NotBitFlag, nil)

func (ev NeuronType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NeuronType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The neuron types
const (
	// Excitatory neurons drive receiver inputs up: sign factor +1
	Excitatory NeuronType = iota

	// Inhibitory neurons drive receiver inputs down: sign factor -1
	Inhibitory

	NeuronTypeN
)

// Sign returns the weight sign factor for this type:
// +1 for Excitatory, -1 for Inhibitory.
func (nt NeuronType) Sign() float32 {
	if nt == Inhibitory {
		return -1
	}
	return 1
}

// NeuronTypeFmIndex returns the type for the given within-layer neuron
// index under the alternating rule used by the bias, input and hidden
// layers: even indexes are Inhibitory, odd indexes are Excitatory.
func NeuronTypeFmIndex(idx int) NeuronType {
	if (idx+1)%2 == 1 {
		return Inhibitory
	}
	return Excitatory
}

// ErrorChannels is the two-channel error state of a neuron: one
// non-negative magnitude per polarity.  A scalar prediction error always
// occupies exactly one channel: the excitatory channel when the output is
// too low, the inhibitory channel when it is too high.
type ErrorChannels struct {
	Exc float32 `json:"excitatory" desc:"error magnitude on the excitatory channel -- output was below target"`
	Inh float32 `json:"inhibitory" desc:"error magnitude on the inhibitory channel -- output was above target"`
}

// FmDiff sets the channels from the scalar prediction error
// diff = target - output.  Positive goes to Exc, negative to Inh,
// and the other channel is zeroed.
func (ec *ErrorChannels) FmDiff(diff float32) {
	if diff > 0 {
		ec.Exc = diff
		ec.Inh = 0
	} else {
		ec.Exc = 0
		ec.Inh = -diff
	}
}

// HasErr returns true if either channel is non-zero.
func (ec *ErrorChannels) HasErr() bool {
	return ec.Exc != 0 || ec.Inh != 0
}

// Mag returns the total error magnitude across both channels.
func (ec *ErrorChannels) Mag() float32 {
	return ec.Exc + ec.Inh
}

// Reset zeros both channels.
func (ec *ErrorChannels) Reset() {
	ec.Exc = 0
	ec.Inh = 0
}

// edla.Neuron holds all of the state for one neuron.  The polarity type
// and global index are fixed at build time; the remaining fields are
// per-pattern state cleared at the start of every forward pass.
// Field order here determines the JSON field order in network documents.
type Neuron struct {
	Type NeuronType    `json:"neuron_type" desc:"permanent polarity of this neuron, set when the network is built"`
	In   float32       `json:"input" desc:"summed input: weight * sender previous-step output over enabled incoming connections"`
	Out  float32       `json:"output" desc:"output value: sigmoid of In for hidden and output neurons, clamped value for bias and input neurons"`
	Err  ErrorChannels `json:"error_channels" desc:"two-channel error state set by target comparison or diffusion"`
	Idx  int32         `json:"index" desc:"global index of this neuron in the network, in bias, input, hidden, output layer order"`

	OutPrv float32 `json:"-" desc:"Out from the previous settling timestep -- the double buffer read when summing inputs on the current timestep"`
}

// Reset clears all per-pattern state: In, Out, OutPrv and both error channels.
func (nrn *Neuron) Reset() {
	nrn.In = 0
	nrn.Out = 0
	nrn.OutPrv = 0
	nrn.Err.Reset()
}

// NeuronVars are the neuron state variables accessible by name.
var NeuronVars = []string{"In", "Out", "OutPrv", "ErrE", "ErrI"}

var NeuronVarProps = map[string]string{
	"In":     `auto-scale:"+"`,
	"Out":    `min:"0" max:"1"`,
	"OutPrv": `min:"0" max:"1"`,
	"ErrE":   `auto-scale:"+"`,
	"ErrI":   `auto-scale:"+"`,
}

var NeuronVarsMap map[string]int

func init() {
	NeuronVarsMap = make(map[string]int, len(NeuronVars))
	for i, v := range NeuronVars {
		NeuronVarsMap[v] = i
	}
}

func (nrn *Neuron) VarNames() []string {
	return NeuronVars
}

// NeuronVarByName returns the index of the variable in the Neuron, or error
func NeuronVarByName(varNm string) (int, error) {
	i, ok := NeuronVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Neuron VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in NeuronVars list)
func (nrn *Neuron) VarByIndex(idx int) float32 {
	switch idx {
	case 0:
		return nrn.In
	case 1:
		return nrn.Out
	case 2:
		return nrn.OutPrv
	case 3:
		return nrn.Err.Exc
	case 4:
		return nrn.Err.Inh
	}
	return 0
}

// VarByName returns variable by name, or error
func (nrn *Neuron) VarByName(varNm string) (float32, error) {
	i, err := NeuronVarByName(varNm)
	if err != nil {
		return 0, err
	}
	return nrn.VarByIndex(i), nil
}
