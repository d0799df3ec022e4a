// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/emer/edla/sigm"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/weights"
	"github.com/goki/ki/indent"
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// WtBound is the maximum weight magnitude.  Updates that would exceed it
// are clamped to the bound and counted in the network learning stats.
const WtBound = float32(1.0e6)

// edla.Prjn is a projection between two layers, holding the synapses
// ordered by the sending layer units which own them, one-to-one with the
// SConIdx array.
type Prjn struct {
	PrjnStru
	WtInit WtInitParams `view:"inline" desc:"initial random weight magnitude distribution -- bias senders use the threshold range, all others the weight range"`
	Syns   []Synapse    `desc:"synaptic state values, ordered by the sending layer units which owns them -- one-to-one with SConIdx array"`
}

var KiT_Prjn = kit.Types.AddType(&Prjn{}, PrjnProps)

var PrjnProps = ki.Props{}

func (pj *Prjn) Defaults() {
	pj.WtInit.Defaults()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values
func (pj *Prjn) UpdateParams() {
}

// ApplyParams applies given parameter style Sheet to this projection.
// Calls UpdateParams if anything set to ensure derived parameters are all
// updated.  If setMsg is true, then a message is printed to confirm each
// parameter that is set.  it always prints a message if a parameter fails
// to be set.  returns true if any params were set, and error if there were
// any errors.
func (pj *Prjn) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	app, err := pars.Apply(pj, setMsg)
	if app {
		pj.UpdateParams()
	}
	return app, err
}

// AllParams returns a listing of all parameters in the Prjn
func (pj *Prjn) AllParams() string {
	str := "///////////////////////////////////////////////////\nPrjn: " + pj.Name() + "\n"
	b, _ := json.MarshalIndent(&pj.WtInit, "", " ")
	str += "WtInit: {\n " + JsonToParams(b)
	return str
}

func (pj *Prjn) SynVarNames() []string {
	return SynapseVars
}

// SynVarProps returns properties for variables
func (pj *Prjn) SynVarProps() map[string]string {
	return SynapseVarProps
}

// SynVals sets values of given variable name for each synapse, using the
// natural ordering of the synapses (sender based),
// into given float32 slice (only resized if not big enough).
// Returns error on invalid var name.
func (pj *Prjn) SynVals(vals *[]float32, varNm string) error {
	vidx, err := SynapseVarByName(varNm)
	if err != nil {
		return err
	}
	ns := len(pj.Syns)
	if *vals == nil || cap(*vals) < ns {
		*vals = make([]float32, ns)
	} else if len(*vals) < ns {
		*vals = (*vals)[0:ns]
	}
	for i := range pj.Syns {
		sy := &pj.Syns[i]
		(*vals)[i] = sy.VarByIndex(vidx)
	}
	return nil
}

// Syn returns the synapse between given send, recv unit indexes
// (1D, layer-local indexes).  Returns nil for access errors
// (see SynTry for version that returns errors).
func (pj *Prjn) Syn(sidx, ridx int) *Synapse {
	if ridx >= len(pj.RConN) {
		return nil
	}
	nc := int(pj.RConN[ridx])
	st := int(pj.RConIdxSt[ridx])
	for ci := 0; ci < nc; ci++ {
		si := int(pj.RConIdx[st+ci])
		if si != sidx {
			continue
		}
		rsi := pj.RSynIdx[st+ci]
		sy := &pj.Syns[rsi]
		return sy
	}
	return nil
}

// SynTry returns the synapse between given send, recv unit indexes
// (1D, layer-local indexes).  Returns error for access errors.
func (pj *Prjn) SynTry(sidx, ridx int) (*Synapse, error) {
	nr := len(pj.Recv.Neurons)
	ns := len(pj.Send.Neurons)
	if ridx >= nr {
		return nil, fmt.Errorf("Prjn.SynTry: recv unit index %v is > size of recv layer: %v", ridx, nr)
	}
	if sidx >= ns {
		return nil, fmt.Errorf("Prjn.SynTry: send unit index %v is > size of send layer: %v", sidx, ns)
	}
	sy := pj.Syn(sidx, ridx)
	if sy == nil {
		return nil, fmt.Errorf("Prjn.SynTry: recv unit index %v does not recv from send unit index %v", ridx, sidx)
	}
	return sy, nil
}

// SynVal returns value of given variable name on the synapse
// between given send, recv unit indexes (1D, layer-local indexes).
// Returns math32.NaN() for access errors (see SynValTry for error message)
func (pj *Prjn) SynVal(varNm string, sidx, ridx int) float32 {
	vidx, err := SynapseVarByName(varNm)
	if err != nil {
		return math32.NaN()
	}
	sy := pj.Syn(sidx, ridx)
	if sy == nil {
		return math32.NaN()
	}
	return sy.VarByIndex(vidx)
}

// SynValTry returns value of given variable name on the synapse
// between given send, recv unit indexes (1D, layer-local indexes).
// Returns error for access errors.
func (pj *Prjn) SynValTry(varNm string, sidx, ridx int) (float32, error) {
	vidx, err := SynapseVarByName(varNm)
	if err != nil {
		return 0, err
	}
	sy, err := pj.SynTry(sidx, ridx)
	if err != nil {
		return 0, err
	}
	return sy.VarByIndex(vidx), nil
}

// SetSynVal sets value of given variable name on the synapse
// between given send, recv unit indexes (1D, layer-local indexes)
// returns error for access errors.
func (pj *Prjn) SetSynVal(varNm string, sidx, ridx int, val float32) error {
	vidx, err := SynapseVarByName(varNm)
	if err != nil {
		return err
	}
	sy, err := pj.SynTry(sidx, ridx)
	if err != nil {
		return err
	}
	sy.SetVarByIndex(vidx, val)
	return nil
}

// SignProduct returns the weight sign factor for the synapse between the
// given send, recv unit indexes: the product of the two neuron type signs.
func (pj *Prjn) SignProduct(sidx, ridx int) float32 {
	return pj.Send.Neurons[sidx].Type.Sign() * pj.Recv.Neurons[ridx].Type.Sign()
}

// SignErrs returns the number of synapses whose weight sign does not match
// the product of the sender and receiver type signs.  Zero weights always
// match.  A non-zero return indicates corrupted weights.
func (pj *Prjn) SignErrs() int {
	errs := 0
	for si := range pj.Send.Neurons {
		nc := int(pj.SConN[si])
		st := int(pj.SConIdxSt[si])
		for ci := 0; ci < nc; ci++ {
			sy := &pj.Syns[st+ci]
			if sy.Wt == 0 {
				continue
			}
			ri := int(pj.SConIdx[st+ci])
			if sy.Wt*pj.SignProduct(si, ri) < 0 {
				errs++
			}
		}
	}
	return errs
}

///////////////////////////////////////////////////////////////////////
//  Weights File

// WriteWtsJSON writes the weights from this projection from the
// receiver-side perspective in a JSON text format.  We build in the
// indentation logic to make it much faster and more efficient.
func (pj *Prjn) WriteWtsJSON(w io.Writer, depth int) {
	slay := pj.Send
	rlay := pj.Recv
	nr := len(rlay.Neurons)
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"From\": %q,\n", slay.Name())))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Rs\": [\n")))
	depth++
	for ri := 0; ri < nr; ri++ {
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("{\n"))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"Ri\": %v,\n", ri)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"N\": %v,\n", nc)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Si\": [ "))
		for ci := 0; ci < nc; ci++ {
			si := pj.RConIdx[st+ci]
			w.Write([]byte(fmt.Sprintf("%v", si)))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("],\n"))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Wt\": [ "))
		for ci := 0; ci < nc; ci++ {
			rsi := pj.RSynIdx[st+ci]
			sy := &pj.Syns[rsi]
			w.Write([]byte(strconv.FormatFloat(float64(sy.Wt), 'g', weights.Prec, 32)))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		if ri == nr-1 {
			w.Write([]byte("}\n"))
		} else {
			w.Write([]byte("},\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}")) // note: leave unterminated as outer loop needs to add , or just \n depending
}

// ReadWtsJSON reads the weights from this projection from the
// receiver-side perspective in a JSON text format.  This is for a set of
// weights that were saved *for one prjn only* and is not used for the
// network-level ReadWtsJSON, which reads into a separate structure -- see
// SetWts method.
func (pj *Prjn) ReadWtsJSON(r io.Reader) error {
	pw, err := weights.PrjnReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	return pj.SetWts(pw)
}

// SetWts sets the weights for this projection from weights.Prjn decoded values
func (pj *Prjn) SetWts(pw *weights.Prjn) error {
	var err error
	for i := range pw.Rs {
		pr := &pw.Rs[i]
		for si := range pr.Si {
			er := pj.SetSynVal("Wt", pr.Si[si], pr.Ri, pr.Wt[si])
			if er != nil {
				err = er
			}
		}
	}
	return err
}

// Build constructs the full connectivity among the layers as specified in
// this projection.  Calls PrjnStru.BuildStru and then allocates the
// synaptic values in Syns accordingly.
func (pj *Prjn) Build() error {
	if err := pj.BuildStru(); err != nil {
		return err
	}
	pj.Syns = make([]Synapse, len(pj.SConIdx))
	for si := range pj.Syns {
		pj.Syns[si].Enabled = true
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Init methods

// InitWts initializes the weight values from the WtInit magnitude
// distribution, signed by the product of the sender and receiver neuron
// type signs.  Draws in sender-major synapse order so results are fully
// determined by the source state.  Re-enables any disabled connections.
func (pj *Prjn) InitWts(rnd *rand.Rand) {
	slay := pj.Send
	for si := range slay.Neurons {
		nc := int(pj.SConN[si])
		st := int(pj.SConIdxSt[si])
		syns := pj.Syns[st : st+nc]
		scons := pj.SConIdx[st : st+nc]
		for ci := range syns {
			sy := &syns[ci]
			sy.Wt = pj.WtInit.Gen(rnd) * pj.SignProduct(si, int(scons[ci]))
			sy.Enabled = true
		}
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Forward methods

// RecvInFmOutPrv accumulates weight * sender previous-step output into the
// receiving layer's In values, over the enabled synapses.
func (pj *Prjn) RecvInFmOutPrv() {
	slay := pj.Send
	rlay := pj.Recv
	for ri := range rlay.Neurons {
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		sum := float32(0)
		for ci := 0; ci < nc; ci++ {
			rsi := pj.RSynIdx[st+ci]
			sy := &pj.Syns[rsi]
			if !sy.Enabled {
				continue
			}
			si := pj.RConIdx[st+ci]
			sum += sy.Wt * slay.Neurons[si].OutPrv
		}
		rlay.Neurons[ri].In += sum
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Learn methods

// DiffuseErr propagates the receiving layer's error channels backward into
// the sending layer's, weighted by connection magnitude.  Same-type
// connections pass the channels straight through; opposite-type
// connections swap them.  Accumulates into the sender error channels,
// which the caller must zero first.
func (pj *Prjn) DiffuseErr() {
	slay := pj.Send
	rlay := pj.Recv
	for si := range slay.Neurons {
		sn := &slay.Neurons[si]
		nc := int(pj.SConN[si])
		st := int(pj.SConIdxSt[si])
		syns := pj.Syns[st : st+nc]
		scons := pj.SConIdx[st : st+nc]
		for ci := range syns {
			sy := &syns[ci]
			if !sy.Enabled {
				continue
			}
			rn := &rlay.Neurons[scons[ci]]
			aw := math32.Abs(sy.Wt)
			if sn.Type == rn.Type {
				sn.Err.Exc += rn.Err.Exc * aw
				sn.Err.Inh += rn.Err.Inh * aw
			} else {
				sn.Err.Exc += rn.Err.Inh * aw
				sn.Err.Inh += rn.Err.Exc * aw
			}
		}
	}
}

// WtFmErr updates the weights from the receiver error channels:
// delta = lrate * err * deriv(recv Out) * send Out, signed by the product
// of the sender and receiver type signs so magnitudes only grow.
// The err factor is the channel matching the receiver's type.  In
// decrement mode the opposite channel also shrinks the magnitude, clamped
// at zero so the weight sign never flips.  Returns the number of weights
// clamped at the magnitude bound.
func (pj *Prjn) WtFmErr(lrate float32, decr bool, sig *sigm.Params) int {
	clamps := 0
	slay := pj.Send
	rlay := pj.Recv
	for si := range slay.Neurons {
		sn := &slay.Neurons[si]
		nc := int(pj.SConN[si])
		st := int(pj.SConIdxSt[si])
		syns := pj.Syns[st : st+nc]
		scons := pj.SConIdx[st : st+nc]
		for ci := range syns {
			sy := &syns[ci]
			if !sy.Enabled {
				continue
			}
			rn := &rlay.Neurons[scons[ci]]
			eps := rn.Err.Exc
			oth := rn.Err.Inh
			if rn.Type == Inhibitory {
				eps, oth = oth, eps
			}
			sgn := sn.Type.Sign() * rn.Type.Sign()
			dbase := lrate * sig.Deriv(rn.Out) * sn.Out
			wt := sy.Wt + dbase*eps*sgn
			if decr && oth > 0 {
				wt -= dbase * oth * sgn
				if wt*sgn < 0 { // magnitude cannot cross zero
					wt = 0
				}
			}
			if wt > WtBound {
				wt = WtBound
				clamps++
			} else if wt < -WtBound {
				wt = -WtBound
				clamps++
			}
			sy.Wt = wt
		}
	}
	return clamps
}
