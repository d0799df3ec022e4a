// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package sigm provides the steepness-scaled logistic sigmoid activation
function used by the ED (error diffusion) learning algorithm.

The function is 1 / (1 + exp(-2x/s)) where s is the steepness parameter:
smaller s values produce a sharper transition around 0.  At x = 0 the
output is exactly 0.5, and the output range is the open interval (0, 1).

The derivative is taken in the conventional post-activation form
y * (1 - y), evaluated on the output value y rather than the input x.
The 2/s scale factor of the true analytic derivative is not included;
the ED learning rule absorbs constant factors into the learning rate.
*/
package sigm

import "github.com/chewxy/math32"

// Params holds the sigmoid activation function parameters.
// Steep is embedded in the edla network Config, where it serializes
// under the sigmoid_steepness name.
type Params struct {
	Steep float32 `json:"sigmoid_steepness" def:"0.4" min:"0" desc:"steepness of the sigmoid: output = 1 / (1 + exp(-2x/steep)) -- smaller values give a sharper transition around 0"`
}

func (sp *Params) Defaults() {
	sp.Steep = 0.4
}

// Fn computes the sigmoid of x: 1 / (1 + exp(-2x/Steep))
func (sp *Params) Fn(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-2.0*x/sp.Steep))
}

// Deriv computes the derivative of the sigmoid at post-activation
// value y = Fn(x), as y * (1 - y)
func (sp *Params) Deriv(y float32) float32 {
	return y * (1.0 - y)
}
