// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"github.com/goki/ki/kit"
)

// LayerTypes is the role a layer plays in the network.  The role
// determines how its neurons are typed, how they update during a forward
// pass, and which connections are admitted: no connection may terminate
// on a Bias or Input layer.
type LayerTypes int

//go:generate stringer -type=LayerTypes

var KiT_LayerTypes = kit.Enums.AddEnum(LayerTypesN, kit.NotBitFlag, nil)

func (ev LayerTypes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *LayerTypes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The layer types
const (
	// Bias is the two-neuron layer whose outputs are clamped to the
	// configured bias value, providing a constant offset to every hidden
	// and output neuron.
	Bias LayerTypes = iota

	// Input holds the externally clamped input values.  Each logical
	// input drives an adjacent inhibitory / excitatory pair of neurons.
	Input

	// Hidden is an internal layer with alternating neuron types.
	Hidden

	// Output is read out as the network's prediction and is where
	// target comparison happens.  All of its neurons are Excitatory.
	Output

	LayerTypesN
)
