// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/emer/edla/sigm"
)

// edla.Config has all of the tunable parameters of a network in one flat
// record, owned by the Network and serialized with it.  The json names
// are the on-disk document schema and the field order here is the
// document field order.  Call Defaults before use.
type Config struct {
	Timesteps int     `json:"timesteps" def:"2" min:"1" desc:"number of settling passes per forward inference -- each pass recomputes all hidden and output inputs from the previous pass's outputs"`
	Lrate     float32 `json:"learning_rate" def:"0.8" min:"0" desc:"multiplier on error-driven weight changes"`
	Bias      float32 `json:"bias" def:"0.8" desc:"constant output clamped onto the two bias neurons"`
	sigm.Params
	ErrAmp       float32 `json:"error_amplification" def:"1" min:"0" desc:"multiplier on the total error diffused into each hidden neuron"`
	WtInitRange  float32 `json:"weight_init_range" def:"1" min:"0" desc:"upper bound on the magnitude of initial non-bias weights, drawn uniformly in [0, range)"`
	ThrInitRange float32 `json:"threshold_init_range" def:"1" min:"0" desc:"upper bound on the magnitude of initial bias weights, drawn uniformly in [0, range)"`
	ConvThresh   float32 `json:"convergence_threshold" def:"0.1" min:"0" desc:"training halts once the epoch total error falls below this -- also the per-output error magnitude that counts a pattern as missed"`
	MultiLayer   bool    `json:"flag_multilayer" def:"true" desc:"route input strictly through the hidden layer -- no direct input to output connections"`
	LoopCut      bool    `json:"flag_loop_cutting" def:"true" desc:"cut the feedback connections from the output layer back to the hidden layer"`
	SelfLoopCut  bool    `json:"flag_self_loop_cutting" def:"true" desc:"cut self connections within the lateral projections"`
	InhibInputs  bool    `json:"flag_inhibitory_inputs" def:"true" desc:"drive the inhibitory half of each input pair -- when off those neurons are clamped to zero"`
	DecrMode     bool    `json:"mode_weight_decrement" def:"false" desc:"also apply the opposite error channel as a magnitude decrement on each connection, so weights can shrink toward zero as well as grow"`
}

func (cf *Config) Update() {
}

func (cf *Config) Defaults() {
	cf.Timesteps = 2
	cf.Lrate = 0.8
	cf.Bias = 0.8
	cf.Params.Defaults()
	cf.ErrAmp = 1
	cf.WtInitRange = 1
	cf.ThrInitRange = 1
	cf.ConvThresh = 0.1
	cf.MultiLayer = true
	cf.LoopCut = true
	cf.SelfLoopCut = true
	cf.InhibInputs = true
	cf.DecrMode = false
}

// JsonToParams reformates json output to suitable params display output
func JsonToParams(b []byte) string {
	br := strings.Replace(string(b), `"`, ``, -1)
	br = strings.Replace(br, ",\n", "", -1)
	br = strings.Replace(br, "{\n", "{", -1)
	br = strings.Replace(br, "} ", "}\n  ", -1)
	br = strings.Replace(br, "\n }", " }", -1)
	br = strings.Replace(br, "\n  }\n", " }", -1)
	return br[1:] + "\n"
}

// Validate returns an error for parameter values that cannot produce a
// usable network.
func (cf *Config) Validate() error {
	if cf.Timesteps < 1 {
		return fmt.Errorf("edla.Config: timesteps must be at least 1, is: %d", cf.Timesteps)
	}
	if cf.Steep <= 0 {
		return fmt.Errorf("edla.Config: sigmoid_steepness must be positive, is: %g", cf.Steep)
	}
	if cf.WtInitRange < 0 || cf.ThrInitRange < 0 {
		return fmt.Errorf("edla.Config: weight init ranges must be non-negative, are: %g, %g", cf.WtInitRange, cf.ThrInitRange)
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  WtInitParams

// WtInitParams are initial weight magnitude parameters for one projection.
// Initial weights are drawn uniformly in [0, Rng) and then signed by the
// product of the sender and receiver type signs.
type WtInitParams struct {
	Rng float32 `def:"1" min:"0" desc:"upper bound on initial weight magnitudes"`
}

func (wp *WtInitParams) Defaults() {
	wp.Rng = 1
}

// Gen returns a new initial weight magnitude drawn from the given source.
func (wp *WtInitParams) Gen(rnd *rand.Rand) float32 {
	return rnd.Float32() * wp.Rng
}
