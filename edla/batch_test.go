// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"errors"
	"testing"
)

func TestBatchTrain(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	dims := NewDims(2, 4, 1)
	seeds := []int64{1, 2, 3}
	res := BatchTrain("Batch", dims, cfg, XORPats(), 3, seeds, 2)
	if len(res) != len(seeds) {
		t.Fatalf("results: got %v, want %v", len(res), len(seeds))
	}
	for i := range res {
		r := &res[i]
		if r.Err != nil {
			t.Fatal(r.Err)
		}
		if r.Seed != seeds[i] {
			t.Errorf("result %v seed: got %v, want %v", i, r.Seed, seeds[i])
		}

		// each run is identical to a solo run with the same seed
		solo := MakeTestNet(t, 2, 4, 1, cfg, seeds[i])
		if err := solo.SetPats(XORPats()); err != nil {
			t.Fatal(err)
		}
		st, err := solo.Train(3)
		if err != nil {
			t.Fatal(err)
		}
		if r.Stats.Epoch != st.Epoch || r.Stats.TotalErr != st.TotalErr || r.Stats.ErrCount != st.ErrCount {
			t.Errorf("seed %v batch stats %v != solo stats %v", r.Seed, r.Stats.String(), st.String())
		}
		if len(r.Stats.ErrHist) != len(st.ErrHist) {
			t.Fatalf("seed %v history length %v != %v", r.Seed, len(r.Stats.ErrHist), len(st.ErrHist))
		}
		for e := range st.ErrHist {
			if r.Stats.ErrHist[e] != st.ErrHist[e] {
				t.Errorf("seed %v epoch %v error %v != %v", r.Seed, e+1, r.Stats.ErrHist[e], st.ErrHist[e])
			}
		}
	}

	// runs with no patterns fail individually
	res = BatchTrain("Bad", dims, cfg, nil, 3, []int64{1}, 0)
	if len(res) != 1 || res[0].Err == nil {
		t.Errorf("batch run without patterns should carry an error")
	}
}

func TestBatchTable(t *testing.T) {
	res := []BatchResult{
		{Seed: 7, Stats: LearningStats{Epoch: 12, TotalErr: 0.25, ErrCount: 2, PatCount: 4, Accuracy: 50, Converged: true}},
		{Seed: 8, Stats: LearningStats{Epoch: 40, TotalErr: 1.5, ErrCount: 4, PatCount: 4}},
		{Seed: 9, Err: errors.New("bad run")},
	}
	dt := BatchTable(res)
	if dt.Rows != len(res) {
		t.Fatalf("rows: got %v, want %v", dt.Rows, len(res))
	}
	for i := range res {
		if dt.CellFloat("Run", i) != float64(i) {
			t.Errorf("row %v run: got %v, want %v", i, dt.CellFloat("Run", i), i)
		}
		if dt.CellFloat("Seed", i) != float64(res[i].Seed) {
			t.Errorf("row %v seed: got %v, want %v", i, dt.CellFloat("Seed", i), res[i].Seed)
		}
	}
	if dt.CellFloat("Epochs", 0) != 12 || dt.CellFloat("Epochs", 1) != 40 {
		t.Errorf("epochs: got %v, %v, want 12, 40", dt.CellFloat("Epochs", 0), dt.CellFloat("Epochs", 1))
	}
	if dt.CellFloat("TotalErr", 0) != 0.25 || dt.CellFloat("ErrCnt", 0) != 2 {
		t.Errorf("stats row 0: got %v, %v, want 0.25, 2", dt.CellFloat("TotalErr", 0), dt.CellFloat("ErrCnt", 0))
	}
	if dt.CellFloat("Accuracy", 0) != 50 {
		t.Errorf("accuracy: got %v, want 50", dt.CellFloat("Accuracy", 0))
	}
	if dt.CellFloat("Converged", 0) != 1 || dt.CellFloat("Converged", 1) != 0 {
		t.Errorf("converged flags: got %v, %v, want 1, 0", dt.CellFloat("Converged", 0), dt.CellFloat("Converged", 1))
	}

	// the failed run is marked and otherwise empty
	if dt.CellFloat("Epochs", 2) != -1 {
		t.Errorf("failed run epochs: got %v, want -1", dt.CellFloat("Epochs", 2))
	}
	if dt.CellFloat("TotalErr", 2) != 0 || dt.CellFloat("Converged", 2) != 0 {
		t.Errorf("failed run stats should be zero, got %v, %v", dt.CellFloat("TotalErr", 2), dt.CellFloat("Converged", 2))
	}
}
