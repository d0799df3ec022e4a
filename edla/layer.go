// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/emer/edla/sigm"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/weights"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/indent"
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// edla.Layer holds the neurons of one layer and implements the layer-level
// steps of the forward pass and error-diffusion learning.
type Layer struct {
	LayerStru
	Neurons []Neuron `desc:"slice of neurons for this layer -- flat list of neurons in X order"`
}

var KiT_Layer = kit.Types.AddType(&Layer{}, LayerProps)

func (ly *Layer) Defaults() {
	for _, pj := range ly.RcvPrjns {
		pj.Defaults()
	}
}

// UpdateParams updates all params given any changes that might have been
// made to individual values
func (ly *Layer) UpdateParams() {
}

// ApplyParams applies given parameter style Sheet to this layer and its
// recv projections.  Calls UpdateParams on anything set to ensure derived
// parameters are all updated.  If setMsg is true, then a message is
// printed to confirm each parameter that is set.  it always prints a
// message if a parameter fails to be set.  returns true if any params were
// set, and error if there were any errors.
func (ly *Layer) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	app, err := pars.Apply(ly, setMsg)
	if app {
		ly.UpdateParams()
		applied = true
	}
	if err != nil {
		rerr = err
	}
	for _, pj := range ly.RcvPrjns {
		app, err = pj.ApplyParams(pars, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// AllParams returns a listing of all parameters in the Layer
func (ly *Layer) AllParams() string {
	str := "///////////////////////////////////////////////////\nLayer: " + ly.Nm + "\n"
	for _, pj := range ly.RcvPrjns {
		str += pj.AllParams()
	}
	return str
}

// UnitVarNames returns a list of variable names available on the units in
// this layer
func (ly *Layer) UnitVarNames() []string {
	return NeuronVars
}

// UnitVals fills in values of given variable name on unit for each unit in
// the layer, into given float32 slice (only resized if not big enough).
// Returns error on invalid var name.
func (ly *Layer) UnitVals(vals *[]float32, varNm string) error {
	nn := len(ly.Neurons)
	if *vals == nil || cap(*vals) < nn {
		*vals = make([]float32, nn)
	} else if len(*vals) < nn {
		*vals = (*vals)[0:nn]
	}
	vidx, err := NeuronVarByName(varNm)
	if err != nil {
		nan := math32.NaN()
		for i := range ly.Neurons {
			(*vals)[i] = nan
		}
		return err
	}
	for i := range ly.Neurons {
		(*vals)[i] = ly.Neurons[i].VarByIndex(vidx)
	}
	return nil
}

// UnitValsTensor returns values of given variable name on unit
// for each unit in the layer, as a float32 tensor in same shape as layer units.
func (ly *Layer) UnitValsTensor(tsr etensor.Tensor, varNm string) error {
	if tsr == nil {
		err := fmt.Errorf("edla.UnitValsTensor: Tensor is nil")
		return err
	}
	tsr.SetShape(ly.Shp.Shp, ly.Shp.Strd, ly.Shp.Nms)
	vidx, err := NeuronVarByName(varNm)
	if err != nil {
		nan := math32.NaN()
		for i := range ly.Neurons {
			tsr.SetFloat1D(i, float64(nan))
		}
		return err
	}
	for i := range ly.Neurons {
		vl := ly.Neurons[i].VarByIndex(vidx)
		tsr.SetFloat1D(i, float64(vl))
	}
	return nil
}

// UnitVal1D returns value of given variable index on given unit, using
// 1D index.  Returns NaN on invalid index.
func (ly *Layer) UnitVal1D(varIdx int, idx int) float32 {
	if idx < 0 || idx >= len(ly.Neurons) {
		return math32.NaN()
	}
	if varIdx < 0 || varIdx >= len(NeuronVars) {
		return math32.NaN()
	}
	nrn := &ly.Neurons[idx]
	return nrn.VarByIndex(varIdx)
}

//////////////////////////////////////////////////////////////////////////////////////
//  Build

// BuildNeurons allocates the neurons and assigns their permanent types and
// global indexes.  Bias, Input and Hidden layers alternate types starting
// Inhibitory; Output neurons are all Excitatory.
func (ly *Layer) BuildNeurons() {
	nu := ly.Shp.Len()
	ly.Neurons = make([]Neuron, nu)
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.Idx = int32(ly.NeurSt + ni)
		if ly.Typ == Output {
			nrn.Type = Excitatory
		} else {
			nrn.Type = NeuronTypeFmIndex(ni)
		}
	}
}

// BuildPrjns builds the projections, recv-side
func (ly *Layer) BuildPrjns() error {
	emsg := ""
	for _, pj := range ly.RcvPrjns {
		if pj.IsOff() {
			continue
		}
		err := pj.Build()
		if err != nil {
			emsg += err.Error() + "\n"
		}
	}
	if emsg != "" {
		return errors.New(emsg)
	}
	return nil
}

// Build constructs the layer state, including calling Build on the projections
func (ly *Layer) Build() error {
	nu := ly.Shp.Len()
	if nu == 0 {
		return fmt.Errorf("Build Layer %v: no units specified in Shape", ly.Nm)
	}
	ly.BuildNeurons()
	err := ly.BuildPrjns()
	return err
}

//////////////////////////////////////////////////////////////////////////////////////
//  Init methods

// InitWts initializes the weight values in the network, i.e., resetting
// learning.  Also calls InitActs.
func (ly *Layer) InitWts(rnd *rand.Rand) {
	for _, pj := range ly.RcvPrjns {
		if pj.IsOff() {
			continue
		}
		pj.InitWts(rnd)
	}
	ly.InitActs()
}

// InitActs fully initializes activation and error state
func (ly *Layer) InitActs() {
	for ni := range ly.Neurons {
		ly.Neurons[ni].Reset()
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Forward (settling) methods

// ClampBias clamps the given constant value onto all bias neurons.
// No-op on other layer types.
func (ly *Layer) ClampBias(bias float32) {
	if ly.Typ != Bias {
		return
	}
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.In = bias
		nrn.Out = bias
	}
}

// ApplyExt clamps the given external inputs onto the input layer.
// Each logical input value drives one adjacent pair of neurons: the
// inhibitory half first, then the excitatory half.  The inhibitory half is
// clamped to zero when inhib is off.  No-op on other layer types.
func (ly *Layer) ApplyExt(ext []float32, inhib bool) error {
	if ly.Typ != Input {
		return nil
	}
	if 2*len(ext) != len(ly.Neurons) {
		return fmt.Errorf("edla.Layer %v ApplyExt: %v external values != %v input pairs", ly.Nm, len(ext), len(ly.Neurons)/2)
	}
	for k, v := range ext {
		for j := 0; j < 2; j++ {
			nrn := &ly.Neurons[2*k+j]
			val := v
			if nrn.Type == Inhibitory && !inhib {
				val = 0
			}
			nrn.In = val
			nrn.Out = val
		}
	}
	return nil
}

// SaveOutPrv copies Out to OutPrv for all neurons, advancing the double
// buffer that the next settling timestep reads from.
func (ly *Layer) SaveOutPrv() {
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.OutPrv = nrn.Out
	}
}

// InFmOutPrv computes each neuron's summed input from the previous-step
// outputs of its senders, over all enabled recv projections.  Bias and
// input layers hold their clamped values and are skipped.
func (ly *Layer) InFmOutPrv() {
	if ly.Typ == Bias || ly.Typ == Input {
		return
	}
	for ni := range ly.Neurons {
		ly.Neurons[ni].In = 0
	}
	for _, pj := range ly.RcvPrjns {
		if pj.IsOff() {
			continue
		}
		pj.RecvInFmOutPrv()
	}
}

// ActFmIn computes the output activation from the summed input through
// the sigmoid function.  Bias and input layers hold their clamped values
// and are skipped.
func (ly *Layer) ActFmIn(sig *sigm.Params) {
	if ly.Typ == Bias || ly.Typ == Input {
		return
	}
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.Out = sig.Fn(nrn.In)
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Learn methods

// ErrFmTarg compares output neurons against the given targets, loading
// each neuron's error channels from the signed difference.  Returns the
// summed absolute error over the layer, and whether any single output
// missed by more than thresh.  No-op on non-output layers.
func (ly *Layer) ErrFmTarg(targs []float32, thresh float32) (absErr float64, miss bool) {
	if ly.Typ != Output {
		return
	}
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		diff := targs[ni] - nrn.Out
		nrn.Err.FmDiff(diff)
		ad := math32.Abs(diff)
		absErr += float64(ad)
		if ad > thresh {
			miss = true
		}
	}
	return
}

// ErrFmDiffusion replaces this hidden layer's error channels with error
// diffused backward from the output layer, through this layer's sending
// projections that terminate there, scaled by amp.  No-op on non-hidden
// layers.
func (ly *Layer) ErrFmDiffusion(amp float32) {
	if ly.Typ != Hidden {
		return
	}
	for ni := range ly.Neurons {
		ly.Neurons[ni].Err.Reset()
	}
	for _, pj := range ly.SndPrjns {
		if pj.IsOff() || pj.Recv.Typ != Output {
			continue
		}
		pj.DiffuseErr()
	}
	for ni := range ly.Neurons {
		nrn := &ly.Neurons[ni]
		nrn.Err.Exc *= amp
		nrn.Err.Inh *= amp
	}
}

// WtFmErr updates the weights of all enabled recv projections from the
// current error channels.  Returns the number of weights clamped at the
// magnitude bound.  Bias and input layers receive no projections.
func (ly *Layer) WtFmErr(lrate float32, decr bool, sig *sigm.Params) int {
	clamps := 0
	for _, pj := range ly.RcvPrjns {
		if pj.IsOff() {
			continue
		}
		clamps += pj.WtFmErr(lrate, decr, sig)
	}
	return clamps
}

// SignErrs returns the number of synapses across all recv projections
// whose weight sign does not match the product of the sender and receiver
// type signs.
func (ly *Layer) SignErrs() int {
	errs := 0
	for _, pj := range ly.RcvPrjns {
		if pj.IsOff() {
			continue
		}
		errs += pj.SignErrs()
	}
	return errs
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// WriteWtsJSON writes the weights from this layer from the receiver-side
// perspective in a JSON text format.  We build in the indentation logic to
// make it much faster and more efficient.
func (ly *Layer) WriteWtsJSON(w io.Writer, depth int) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Layer\": %q,\n", ly.Nm)))
	w.Write(indent.TabBytes(depth))
	onps := make([]*Prjn, 0, len(ly.RcvPrjns))
	for _, pj := range ly.RcvPrjns {
		if !pj.IsOff() {
			onps = append(onps, pj)
		}
	}
	np := len(onps)
	if np == 0 {
		w.Write([]byte(fmt.Sprintf("\"Prjns\": null\n")))
	} else {
		w.Write([]byte(fmt.Sprintf("\"Prjns\": [\n")))
		depth++
		for pi, pj := range onps {
			pj.WriteWtsJSON(w, depth) // this leaves prjn unterminated
			if pi == np-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}")) // note: leave unterminated as outer loop needs to add , or just \n depending
}

// ReadWtsJSON reads the weights from this layer from the receiver-side
// perspective in a JSON text format.  This is for a set of weights that
// were saved *for one layer only* and is not used for the network-level
// ReadWtsJSON, which reads into a separate structure -- see SetWts method.
func (ly *Layer) ReadWtsJSON(r io.Reader) error {
	lw, err := weights.LayReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	return ly.SetWts(lw)
}

// SetWts sets the weights for this layer from weights.Layer decoded values
func (ly *Layer) SetWts(lw *weights.Layer) error {
	if ly.Off {
		return nil
	}
	var err error
	for pi := range lw.Prjns {
		pw := &lw.Prjns[pi]
		var spj *Prjn
		for _, pj := range ly.RcvPrjns {
			if pj.Send.Name() == pw.From {
				spj = pj
				break
			}
		}
		if spj == nil {
			err = fmt.Errorf("edla.Layer %v SetWts: no recv prjn from layer: %v", ly.Nm, pw.From)
			continue
		}
		er := spj.SetWts(pw)
		if er != nil {
			err = er
		}
	}
	return err
}

// VarRange returns the min / max values for given variable
func (ly *Layer) VarRange(varNm string) (min, max float32, err error) {
	sz := len(ly.Neurons)
	if sz == 0 {
		return
	}
	vidx := 0
	vidx, err = NeuronVarByName(varNm)
	if err != nil {
		return
	}

	v0 := ly.Neurons[0].VarByIndex(vidx)
	min = v0
	max = v0
	for i := 1; i < sz; i++ {
		vl := ly.Neurons[i].VarByIndex(vidx)
		if vl < min {
			min = vl
		}
		if vl > max {
			max = vl
		}
	}
	return
}

var LayerProps = ki.Props{
	"ToolBar": ki.PropSlice{
		{"Defaults", ki.Props{
			"icon": "reset",
			"desc": "return all parameters to their intial default values",
		}},
		{"InitActs", ki.Props{
			"icon": "update",
			"desc": "initialize the layer activation and error values",
		}},
	},
}
