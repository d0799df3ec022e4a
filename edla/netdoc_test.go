// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/goki/gi/gi"
)

func TestDocRoundTrip(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	nt := MakeTestNet(t, 2, 3, 2, cfg, 21)
	if err := nt.SetPats(OneHotPats(2)); err != nil {
		t.Fatal(err)
	}
	for e := 0; e < 2; e++ {
		if _, err := nt.TrainEpoch(); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := nt.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}
	doc := buf.String()

	// read into a network built with entirely different dimensions
	nt2 := MakeTestNet(t, 1, 1, 1, cfg, 3)
	if err := nt2.ReadJSON(strings.NewReader(doc)); err != nil {
		t.Fatal(err)
	}
	if nt2.Dims != nt.Dims {
		t.Errorf("dims: got %v, want %v", nt2.Dims, nt.Dims)
	}
	if nt2.Config != nt.Config {
		t.Errorf("config: got %v, want %v", nt2.Config, nt.Config)
	}
	if nt2.Stats.Epoch != 2 || len(nt2.Stats.ErrHist) != 2 {
		t.Errorf("stats not carried: %v", nt2.Stats.String())
	}
	if nt2.Stats.TotalErr != nt.Stats.TotalErr {
		t.Errorf("total error: got %v, want %v", nt2.Stats.TotalErr, nt.Stats.TotalErr)
	}
	w1 := netWts(nt)
	w2 := netWts(nt2)
	if len(w1) != len(w2) {
		t.Fatalf("weight counts: got %v, want %v", len(w2), len(w1))
	}
	for i := range w1 {
		if w1[i] != w2[i] {
			t.Errorf("weight %v: got %v, want %v", i, w2[i], w1[i])
		}
	}

	// writing the reloaded network reproduces the document byte for byte
	var buf2 bytes.Buffer
	if err := nt2.WriteJSON(&buf2); err != nil {
		t.Fatal(err)
	}
	if buf2.String() != doc {
		t.Errorf("document round trip not byte identical")
	}

	// and it behaves identically
	o1, err := nt.Forward([]float32{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	o2, err := nt2.Forward([]float32{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	CmprFloats(o2, o1, "reloaded forward", t)
}

func TestDocSchema(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	nt := MakeTestNet(t, 2, 3, 2, cfg, 21)
	var buf bytes.Buffer
	if err := nt.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"layers", "connections", "config", "dimensions", "stats"} {
		if _, ok := m[k]; !ok {
			t.Errorf("document missing %v", k)
		}
	}

	layers := m["layers"].([]interface{})
	if len(layers) != 4 {
		t.Fatalf("layers: got %v, want 4", len(layers))
	}
	l0 := layers[0].(map[string]interface{})
	if l0["layer_type"] != "Bias" {
		t.Errorf("layer 0 type: got %v, want Bias", l0["layer_type"])
	}
	if l0["layer_index"].(float64) != 0 {
		t.Errorf("layer 0 index: got %v", l0["layer_index"])
	}
	neurons := l0["neurons"].([]interface{})
	if len(neurons) != 2 {
		t.Fatalf("bias neurons: got %v, want 2", len(neurons))
	}
	n0 := neurons[0].(map[string]interface{})
	if n0["neuron_type"] != "Inhibitory" {
		t.Errorf("neuron 0 type: got %v, want Inhibitory", n0["neuron_type"])
	}
	if n0["index"].(float64) != 0 {
		t.Errorf("neuron 0 index: got %v", n0["index"])
	}
	ec, ok := n0["error_channels"].(map[string]interface{})
	if !ok {
		t.Fatalf("neuron error_channels missing")
	}
	if _, ok := ec["excitatory"]; !ok {
		t.Errorf("error_channels missing excitatory")
	}
	if _, ok := n0["OutPrv"]; ok {
		t.Errorf("double buffer state should not be serialized")
	}

	conns := m["connections"].([]interface{})
	if len(conns) != nt.NNeurons {
		t.Fatalf("connection groups: got %v, want %v", len(conns), nt.NNeurons)
	}
	// bias neuron 0 sends to hidden and output
	g0 := conns[0].([]interface{})
	if len(g0) != 5 {
		t.Errorf("bias 0 connections: got %v, want 5", len(g0))
	}
	c0 := g0[0].(map[string]interface{})
	if c0["from"].(float64) != 0 {
		t.Errorf("connection from: got %v, want 0", c0["from"])
	}
	if _, ok := c0["connection_enabled"]; !ok {
		t.Errorf("connection missing connection_enabled")
	}
	if _, ok := c0["weight"]; !ok {
		t.Errorf("connection missing weight")
	}

	dims := m["dimensions"].(map[string]interface{})
	if dims["total_neurons"].(float64) != float64(nt.NNeurons) {
		t.Errorf("dimensions total: got %v, want %v", dims["total_neurons"], nt.NNeurons)
	}

	// config serializes in declaration order with the sigmoid steepness in
	// its embedded position
	s := buf.String()
	keys := []string{`"timesteps"`, `"learning_rate"`, `"bias"`, `"sigmoid_steepness"`, `"error_amplification"`, `"weight_init_range"`, `"threshold_init_range"`, `"convergence_threshold"`, `"flag_multilayer"`, `"flag_loop_cutting"`, `"flag_self_loop_cutting"`, `"flag_inhibitory_inputs"`, `"mode_weight_decrement"`}
	last := -1
	for _, k := range keys {
		idx := strings.Index(s, k)
		if idx < 0 {
			t.Errorf("config missing %v", k)
			continue
		}
		if idx < last {
			t.Errorf("config key %v out of order", k)
		}
		last = idx
	}

	// a fresh network has an empty, not null, error history
	if !strings.Contains(s, `"error_history": []`) {
		t.Errorf("empty error history should serialize as []")
	}
}

func TestDocReadErrors(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	nt := MakeTestNet(t, 1, 1, 1, cfg, 1)

	if err := nt.ReadJSON(strings.NewReader("{ not json")); err == nil {
		t.Errorf("invalid json not rejected")
	}

	var buf bytes.Buffer
	if err := nt.WriteJSON(&buf); err != nil {
		t.Fatal(err)
	}

	var bad map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &bad); err != nil {
		t.Fatal(err)
	}
	bad["dimensions"].(map[string]interface{})["total_neurons"] = 99.0
	b, err := json.Marshal(bad)
	if err != nil {
		t.Fatal(err)
	}
	if err := nt.ReadJSON(bytes.NewReader(b)); err == nil {
		t.Errorf("inconsistent dimensions not rejected")
	}

	var bad2 map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &bad2); err != nil {
		t.Fatal(err)
	}
	lay0 := bad2["layers"].([]interface{})[0].(map[string]interface{})
	lay0["neurons"].([]interface{})[0].(map[string]interface{})["neuron_type"] = "Excitatory"
	b, err = json.Marshal(bad2)
	if err != nil {
		t.Fatal(err)
	}
	if err := nt.ReadJSON(bytes.NewReader(b)); err == nil {
		t.Errorf("mismatched neuron type not rejected")
	}
}

func TestDocFile(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	nt := MakeTestNet(t, 2, 2, 1, cfg, 9)
	if err := nt.SetPats(XORPats()); err != nil {
		t.Fatal(err)
	}
	if _, err := nt.TrainEpoch(); err != nil {
		t.Fatal(err)
	}
	w1 := netWts(nt)

	dir := t.TempDir()
	fnm := filepath.Join(dir, "test.net")
	gznm := filepath.Join(dir, "test.net.gz")
	if err := nt.SaveJSON(gi.FileName(fnm)); err != nil {
		t.Fatal(err)
	}
	if err := nt.SaveJSON(gi.FileName(gznm)); err != nil {
		t.Fatal(err)
	}

	nt2 := MakeTestNet(t, 1, 1, 1, cfg, 3)
	if err := nt2.OpenJSON(gi.FileName(fnm)); err != nil {
		t.Fatal(err)
	}
	w2 := netWts(nt2)
	if len(w1) != len(w2) {
		t.Fatalf("weight counts: got %v, want %v", len(w2), len(w1))
	}
	for i := range w1 {
		if w1[i] != w2[i] {
			t.Errorf("weight %v: got %v, want %v", i, w2[i], w1[i])
		}
	}

	nt3 := MakeTestNet(t, 1, 1, 1, cfg, 3)
	if err := nt3.OpenJSON(gi.FileName(gznm)); err != nil {
		t.Fatal(err)
	}
	w3 := netWts(nt3)
	for i := range w1 {
		if w1[i] != w3[i] {
			t.Errorf("gz weight %v: got %v, want %v", i, w3[i], w1[i])
		}
	}
	if nt3.Stats.Epoch != 1 {
		t.Errorf("gz stats epoch: got %v, want 1", nt3.Stats.Epoch)
	}
}

func TestWtsFileRoundTrip(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	nt := MakeTestNet(t, 2, 2, 1, cfg, 5)
	w1 := netWts(nt)

	dir := t.TempDir()
	fnm := filepath.Join(dir, "test.wts")
	if err := nt.SaveWtsJSON(gi.FileName(fnm)); err != nil {
		t.Fatal(err)
	}

	nt.SetRndSeed(6)
	nt.InitWts()
	wp := netWts(nt)
	changed := false
	for i := range w1 {
		if wp[i] != w1[i] {
			changed = true
			break
		}
	}
	if !changed {
		t.Fatalf("reinit did not perturb weights")
	}

	if err := nt.OpenWtsJSON(gi.FileName(fnm)); err != nil {
		t.Fatal(err)
	}
	w2 := netWts(nt)
	for i := range w1 {
		// weights files carry limited text precision
		if math32.Abs(w2[i]-w1[i]) > 1.0e-4 {
			t.Errorf("weight %v: got %v, want %v", i, w2[i], w1[i])
		}
	}
}
