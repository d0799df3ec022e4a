// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"fmt"
	"runtime"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/sourcegraph/conc/pool"
)

// BatchResult is the outcome of one batch training run.
type BatchResult struct {
	Seed  int64         `desc:"weight init seed this run used"`
	Stats LearningStats `desc:"final learning stats for the run"`
	Err   error         `desc:"non-nil if the run failed to construct or train"`
}

// BatchTrain trains one independent network per seed, concurrently, and
// returns the final stats of each run in seeds order.  Every run builds
// its own network from the same dimensions and config, so runs share only
// the read-only pattern slice.  maxProcs limits concurrent runs -- 0 or
// less uses GOMAXPROCS.
func BatchTrain(name string, dims Dims, cfg Config, pats []TrainingPattern, epochs int, seeds []int64, maxProcs int) []BatchResult {
	if maxProcs <= 0 {
		maxProcs = runtime.GOMAXPROCS(0)
	}
	res := make([]BatchResult, len(seeds))
	wp := pool.New().WithMaxGoroutines(maxProcs)
	for i, seed := range seeds {
		i, seed := i, seed // per-iteration copies: required for correctness under go < 1.22 loop semantics
		wp.Go(func() {
			res[i] = trainOne(fmt.Sprintf("%s_%d", name, seed), dims, cfg, pats, epochs, seed)
		})
	}
	wp.Wait()
	return res
}

// trainOne runs one complete training run for BatchTrain.
func trainOne(name string, dims Dims, cfg Config, pats []TrainingPattern, epochs int, seed int64) BatchResult {
	res := BatchResult{Seed: seed}
	nt, err := NewNetwork(name, dims, cfg, seed)
	if err != nil {
		res.Err = err
		return res
	}
	if err = nt.SetPats(pats); err != nil {
		res.Err = err
		return res
	}
	res.Stats, res.Err = nt.Train(epochs)
	return res
}

// BatchTable returns the batch results as an etable with one row per
// run, in run order, for agg summaries and CSV export.  Failed runs get
// a -1 epoch count and zeros elsewhere.
func BatchTable(res []BatchResult) *etable.Table {
	sch := etable.Schema{
		{"Run", etensor.INT64, nil, nil},
		{"Seed", etensor.INT64, nil, nil},
		{"Epochs", etensor.INT64, nil, nil},
		{"TotalErr", etensor.FLOAT64, nil, nil},
		{"ErrCnt", etensor.INT64, nil, nil},
		{"Accuracy", etensor.FLOAT64, nil, nil},
		{"Converged", etensor.FLOAT64, nil, nil},
	}
	dt := &etable.Table{}
	dt.SetMetaData("name", "BatchLog")
	dt.SetMetaData("desc", "final learning stats per training run")
	dt.SetMetaData("read-only", "true")
	dt.SetFromSchema(sch, len(res))
	for i := range res {
		r := &res[i]
		dt.SetCellFloat("Run", i, float64(i))
		dt.SetCellFloat("Seed", i, float64(r.Seed))
		if r.Err != nil {
			dt.SetCellFloat("Epochs", i, -1)
			continue
		}
		dt.SetCellFloat("Epochs", i, float64(r.Stats.Epoch))
		dt.SetCellFloat("TotalErr", i, r.Stats.TotalErr)
		dt.SetCellFloat("ErrCnt", i, float64(r.Stats.ErrCount))
		dt.SetCellFloat("Accuracy", i, r.Stats.Accuracy)
		if r.Stats.Converged {
			dt.SetCellFloat("Converged", i, 1)
		}
	}
	return dt
}
