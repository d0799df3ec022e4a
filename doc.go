// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package edla is the overall repository for the Error Diffusion learning
algorithm (EDLA, Kaneko) implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* edla: the core implementation: permanently typed excitatory / inhibitory
neurons, sign-constrained connection weights, recurrent sigmoid settling,
and the two-channel error diffusion learning rule that adjusts weight
magnitudes without gradient backpropagation.

* sigm: the sigmoid activation function used by edla, as a standalone
parameterized math kernel.

* examples: these actually compile into runnable programs.  examples/xor
trains an ED network on XOR, N-bit parity, and the other classic pattern
sets, and is the starting point for your own experiments.
*/
package edla
