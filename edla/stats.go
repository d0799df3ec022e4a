// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"fmt"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// edla.LearningStats accumulates training progress for a network.  It is
// updated at the end of every training epoch and serialized as part of
// the network document.  The json names are the on-disk schema.
type LearningStats struct {
	Epoch     int       `json:"epoch" desc:"number of training epochs completed so far"`
	TotalErr  float64   `json:"total_error" desc:"summed absolute output error over all patterns in the most recent epoch"`
	ErrCount  int       `json:"error_count" desc:"patterns in the most recent epoch where any output missed its target by more than the convergence threshold"`
	PatCount  int       `json:"pattern_count" desc:"number of patterns trained in the most recent epoch"`
	ErrHist   []float64 `json:"error_history" desc:"per-epoch total error for every epoch trained so far"`
	Converged bool      `json:"converged" desc:"total error has fallen below the convergence threshold"`
	Accuracy  float64   `json:"accuracy" desc:"percent of patterns in the most recent epoch within threshold on every output"`

	WtClamps int `json:"-" desc:"running count of weight updates clamped at the magnitude bound -- diagnostic only, not part of the document"`
}

// Init resets all stats to their zero state, with an empty (non-nil)
// error history.
func (st *LearningStats) Init() {
	st.Epoch = 0
	st.TotalErr = 0
	st.ErrCount = 0
	st.PatCount = 0
	st.ErrHist = []float64{}
	st.Converged = false
	st.Accuracy = 0
	st.WtClamps = 0
}

// EpochFmCounts computes the per-epoch derived stats from the raw counts:
// accuracy from the miss count, convergence from the threshold, and
// appends to the error history.
func (st *LearningStats) EpochFmCounts(epoch int, totErr float64, misses, pats int, thresh float32) {
	st.Epoch = epoch
	st.TotalErr = totErr
	st.ErrCount = misses
	st.PatCount = pats
	st.ErrHist = append(st.ErrHist, totErr)
	st.Converged = totErr < float64(thresh)
	if pats > 0 {
		st.Accuracy = 100 * float64(pats-misses) / float64(pats)
	} else {
		st.Accuracy = 0
	}
}

// Snapshot returns a copy of the stats with its own error history, safe
// to retain across further training.
func (st *LearningStats) Snapshot() LearningStats {
	ss := *st
	ss.ErrHist = make([]float64, len(st.ErrHist))
	copy(ss.ErrHist, st.ErrHist)
	return ss
}

// String satisfies fmt.Stringer, in the standard one-line progress format.
func (st *LearningStats) String() string {
	ok := st.PatCount - st.ErrCount
	return fmt.Sprintf("Epoch:%d Error:%.6f Accuracy:%.1f%% Patterns:%d/%d", st.Epoch, st.TotalErr, st.Accuracy, ok, st.PatCount)
}

// EpochTable returns the error history as an etable with one row per
// epoch, for logging and plotting.
func (st *LearningStats) EpochTable() *etable.Table {
	sch := etable.Schema{
		{"Epoch", etensor.INT64, nil, nil},
		{"TotalErr", etensor.FLOAT64, nil, nil},
	}
	dt := &etable.Table{}
	dt.SetFromSchema(sch, len(st.ErrHist))
	for i, te := range st.ErrHist {
		dt.SetCellFloat("Epoch", i, float64(i+1))
		dt.SetCellFloat("TotalErr", i, te)
	}
	return dt
}
