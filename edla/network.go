// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"fmt"
	"math/rand"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etable"
	"github.com/goki/ki/ki"
	"github.com/goki/ki/kit"
)

// MaxUnits is the maximum total number of logical units
// (input + hidden + output) in one network.
const MaxUnits = 1000

// TotalNeurons returns the network neuron count for the given logical
// sizes: two bias neurons, two neurons per input, one per hidden and
// output unit.
func TotalNeurons(in, hid, out int) int {
	return 2 + 2*in + hid + out
}

// edla.Dims are the logical layer sizes of a network.  The input count is
// in logical inputs: the network doubles each into an inhibitory /
// excitatory neuron pair.
type Dims struct {
	In    int `json:"input_size" min:"1" desc:"number of logical inputs -- doubled internally into neuron pairs"`
	Hid   int `json:"hidden_size" min:"1" desc:"number of hidden neurons"`
	Out   int `json:"output_size" min:"1" desc:"number of output neurons"`
	Total int `json:"total_neurons" inactive:"+" desc:"total neurons including the two bias neurons and the doubled inputs"`
}

// NewDims returns dimensions for the given logical sizes, with the total
// neuron count computed.
func NewDims(in, hid, out int) Dims {
	return Dims{In: in, Hid: hid, Out: out, Total: TotalNeurons(in, hid, out)}
}

// Update recomputes the total neuron count from the logical sizes.
func (dm *Dims) Update() {
	dm.Total = TotalNeurons(dm.In, dm.Hid, dm.Out)
}

// Validate returns an error for sizes that cannot produce a usable
// network: any size below 1, a unit total above MaxUnits, or an
// inconsistent neuron total.
func (dm *Dims) Validate() error {
	if dm.In < 1 || dm.Hid < 1 || dm.Out < 1 {
		return fmt.Errorf("edla.Dims: all sizes must be at least 1, are: %d, %d, %d", dm.In, dm.Hid, dm.Out)
	}
	if dm.In+dm.Hid+dm.Out > MaxUnits {
		return fmt.Errorf("edla.Dims: %d total units exceeds the maximum of %d", dm.In+dm.Hid+dm.Out, MaxUnits)
	}
	if dm.Total != TotalNeurons(dm.In, dm.Hid, dm.Out) {
		return fmt.Errorf("edla.Dims: total_neurons %d does not match sizes: want %d", dm.Total, TotalNeurons(dm.In, dm.Hid, dm.Out))
	}
	return nil
}

// edla.Network is a complete error-diffusion network: the four layers in
// bias, input, hidden, output order, their projections, the parameters,
// and the learning stats.  Use NewNetwork to construct.
type Network struct {
	NetworkStru
	Config Config            `view:"add-fields" desc:"all tunable parameters, serialized with the network"`
	Dims   Dims              `view:"inline" desc:"logical layer sizes"`
	Stats  LearningStats     `view:"inline" desc:"training progress, updated every epoch"`
	Pats   []TrainingPattern `view:"-" desc:"current training set -- use SetPats, which validates shapes"`
	Seed   int64             `desc:"seed the weight init random stream was started from"`
	Rnd    *rand.Rand        `copy:"-" json:"-" xml:"-" view:"-" desc:"random source for weight init -- seeded from Seed so networks are reproducible"`

	BiasLay *Layer `copy:"-" json:"-" xml:"-" view:"-" desc:"cached bias layer"`
	InLay   *Layer `copy:"-" json:"-" xml:"-" view:"-" desc:"cached input layer"`
	HidLay  *Layer `copy:"-" json:"-" xml:"-" view:"-" desc:"cached hidden layer"`
	OutLay  *Layer `copy:"-" json:"-" xml:"-" view:"-" desc:"cached output layer"`
}

var KiT_Network = kit.Types.AddType(&Network{}, NetworkProps)

// NewNetwork returns a new network with the given dimensions and
// parameters, built and with weights initialized from the given seed.
func NewNetwork(name string, dims Dims, cfg Config, seed int64) (*Network, error) {
	dims.Update()
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nt := &Network{}
	nt.InitName(nt, name)
	nt.Config = cfg
	nt.Dims = dims
	nt.Seed = seed
	nt.InitRndSeed()
	nt.ConfigNet()
	if err := nt.Build(); err != nil {
		return nil, err
	}
	nt.InitWts()
	return nt, nil
}

// Defaults sets all the default parameters for the network and its
// layers and projections
func (nt *Network) Defaults() {
	nt.Config.Defaults()
	for li, ly := range nt.Layers {
		ly.Defaults()
		ly.SetIndex(li)
	}
}

// UpdateParams updates all the derived parameters if any have changed,
// for all layers and projections
func (nt *Network) UpdateParams() {
	nt.Config.Update()
	for _, ly := range nt.Layers {
		ly.UpdateParams()
	}
}

// UnitVarNames returns a list of variable names available on the units in
// this network.
func (nt *Network) UnitVarNames() []string {
	return NeuronVars
}

// UnitVarProps returns properties for variables
func (nt *Network) UnitVarProps() map[string]string {
	return NeuronVarProps
}

// SynVarNames returns the names of all the variables on the synapses in
// this network.
func (nt *Network) SynVarNames() []string {
	return SynapseVars
}

// SynVarProps returns properties for variables
func (nt *Network) SynVarProps() map[string]string {
	return SynapseVarProps
}

// InitRndSeed restarts the weight init random stream from the stored
// seed, so a following InitWts reproduces the original weights.
func (nt *Network) InitRndSeed() {
	nt.Rnd = rand.New(rand.NewSource(nt.Seed))
}

// SetRndSeed stores a new seed and restarts the weight init random
// stream from it.
func (nt *Network) SetRndSeed(seed int64) {
	nt.Seed = seed
	nt.InitRndSeed()
}

// ConfigNet builds the standard four-layer topology for the current
// dimensions and config flags.  The layer order fixes the global neuron
// indexes: bias, input, hidden, output.  Projections from the bias layer
// use the threshold init range, all others the weight init range.
func (nt *Network) ConfigNet() {
	nt.Layers = nil
	nt.LayMap = nil
	bias := nt.AddLayer2D("Bias", 1, 2, Bias)
	inp := nt.AddLayer2D("Input", 1, 2*nt.Dims.In, Input)
	hid := nt.AddLayer2D("Hidden", 1, nt.Dims.Hid, Hidden)
	out := nt.AddLayer2D("Output", 1, nt.Dims.Out, Output)

	full := prjn.NewFull()
	lat := prjn.NewFull()
	lat.SelfCon = !nt.Config.SelfLoopCut

	nt.ConnectLayers(bias, hid, full, emer.Forward).WtInit.Rng = nt.Config.ThrInitRange
	nt.ConnectLayers(bias, out, full, emer.Forward).WtInit.Rng = nt.Config.ThrInitRange
	nt.ConnectLayers(inp, hid, full, emer.Forward).WtInit.Rng = nt.Config.WtInitRange
	if !nt.Config.MultiLayer {
		nt.ConnectLayers(inp, out, full, emer.Forward).WtInit.Rng = nt.Config.WtInitRange
	}
	nt.LateralConnectLayer(hid, lat).WtInit.Rng = nt.Config.WtInitRange
	nt.ConnectLayers(hid, out, full, emer.Forward).WtInit.Rng = nt.Config.WtInitRange
	if !nt.Config.LoopCut {
		nt.ConnectLayers(out, hid, full, emer.Back).WtInit.Rng = nt.Config.WtInitRange
	}
	nt.LateralConnectLayer(out, lat).WtInit.Rng = nt.Config.WtInitRange

	nt.BiasLay = bias
	nt.InLay = inp
	nt.HidLay = hid
	nt.OutLay = out
	nt.StdVertLayout()
}

// Build constructs the layer and projection state based on the layer
// shapes and patterns of interconnectivity, and checks the neuron total
// against the dimensions.
func (nt *Network) Build() error {
	if err := nt.NetworkStru.Build(); err != nil {
		return err
	}
	if nt.NNeurons != nt.Dims.Total {
		return fmt.Errorf("edla.Network %v Build: %d neurons built != total_neurons %d", nt.Nm, nt.NNeurons, nt.Dims.Total)
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Init methods

// InitWts initializes all projection weights from the configured ranges,
// drawing from the network's seeded random source, and resets the
// learning stats.
func (nt *Network) InitWts() {
	for _, ly := range nt.Layers {
		if ly.IsOff() {
			continue
		}
		ly.InitWts(nt.Rnd)
	}
	nt.Stats.Init()
}

// InitActs fully initializes activation and error state on all layers.
func (nt *Network) InitActs() {
	for _, ly := range nt.Layers {
		if ly.IsOff() {
			continue
		}
		ly.InitActs()
	}
}

//////////////////////////////////////////////////////////////////////////////////////
//  Forward methods

// Forward runs one full inference on the given logical input values:
// clamps the bias and input layers, settles for the configured number of
// timesteps, and returns a copy of the output layer values.
func (nt *Network) Forward(inputs []float32) ([]float32, error) {
	if len(inputs) != nt.Dims.In {
		return nil, fmt.Errorf("edla.Network %v Forward: %d input values != input_size %d", nt.Nm, len(inputs), nt.Dims.In)
	}
	nt.InitActs()
	nt.BiasLay.ClampBias(nt.Config.Bias)
	if err := nt.InLay.ApplyExt(inputs, nt.Config.InhibInputs); err != nil {
		return nil, err
	}
	for t := 0; t < nt.Config.Timesteps; t++ {
		nt.Timestep()
	}
	return nt.OutVals(nil), nil
}

// Timestep runs one settling pass: every layer saves its previous
// outputs, then hidden and output neurons recompute from them.  Bias and
// input layers keep their clamped values.
func (nt *Network) Timestep() {
	for _, ly := range nt.Layers {
		if ly.IsOff() {
			continue
		}
		ly.SaveOutPrv()
	}
	for _, ly := range nt.Layers {
		if ly.IsOff() {
			continue
		}
		ly.InFmOutPrv()
		ly.ActFmIn(&nt.Config.Params)
	}
}

// OutVals returns the current output layer values, into the given slice
// if it has capacity.
func (nt *Network) OutVals(vals []float32) []float32 {
	n := len(nt.OutLay.Neurons)
	if cap(vals) < n {
		vals = make([]float32, n)
	}
	vals = vals[:n]
	for ni := range nt.OutLay.Neurons {
		vals[ni] = nt.OutLay.Neurons[ni].Out
	}
	return vals
}

//////////////////////////////////////////////////////////////////////////////////////
//  Training

// SetPats sets the training set, after validating every pattern's shape
// against the network dimensions.  No state is touched on error.
func (nt *Network) SetPats(pats []TrainingPattern) error {
	if err := ValidatePats(pats, nt.Dims); err != nil {
		return err
	}
	nt.Pats = pats
	return nil
}

// SetPatsTable sets the training set from an etable with Input and Output
// tensor columns -- see PatsFmTable.
func (nt *Network) SetPatsTable(dt *etable.Table) error {
	pats, err := PatsFmTable(dt)
	if err != nil {
		return err
	}
	return nt.SetPats(pats)
}

// TrainEpoch trains one epoch: for each pattern in order, a forward pass,
// error assignment at the output, diffusion into the hidden layer, and a
// weight update on every projection.  Updates the learning stats and
// returns a snapshot of them.
func (nt *Network) TrainEpoch() (LearningStats, error) {
	if len(nt.Pats) == 0 {
		return nt.Stats.Snapshot(), fmt.Errorf("edla.Network %v TrainEpoch: no training patterns set", nt.Nm)
	}
	if err := ValidatePats(nt.Pats, nt.Dims); err != nil {
		return nt.Stats.Snapshot(), err
	}
	epc := nt.Stats.Epoch + 1
	totErr := float64(0)
	misses := 0
	for pi := range nt.Pats {
		pat := &nt.Pats[pi]
		if _, err := nt.Forward(pat.Inputs); err != nil {
			return nt.Stats.Snapshot(), err
		}
		absErr, miss := nt.OutLay.ErrFmTarg(pat.Targets, nt.Config.ConvThresh)
		totErr += absErr
		if miss {
			misses++
		}
		nt.HidLay.ErrFmDiffusion(nt.Config.ErrAmp)
		for _, ly := range nt.Layers {
			if ly.IsOff() {
				continue
			}
			nt.Stats.WtClamps += ly.WtFmErr(nt.Config.Lrate, nt.Config.DecrMode, &nt.Config.Params)
		}
	}
	nt.Stats.EpochFmCounts(epc, totErr, misses, len(nt.Pats), nt.Config.ConvThresh)
	return nt.Stats.Snapshot(), nil
}

// Train runs training epochs until the total error converges below the
// configured threshold, or maxEpochs have run.  Not converging is a
// normal outcome, reported in the stats, not an error.
func (nt *Network) Train(maxEpochs int) (LearningStats, error) {
	last := nt.Stats.Snapshot()
	for e := 0; e < maxEpochs; e++ {
		st, err := nt.TrainEpoch()
		if err != nil {
			return st, err
		}
		last = st
		if st.Converged {
			break
		}
	}
	return last, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Misc Reports

// SignErrs returns the number of synapses across the whole network whose
// weight sign does not match its neuron type sign product.  Always zero
// for a healthy network.
func (nt *Network) SignErrs() int {
	errs := 0
	for _, ly := range nt.Layers {
		if ly.IsOff() {
			continue
		}
		errs += ly.SignErrs()
	}
	return errs
}

// SizeReport returns a string reporting the size of each layer and
// projection in the network, and total memory footprint.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	neur := 0
	neurMem := 0
	syn := 0
	synMem := 0
	for _, ly := range nt.Layers {
		nn := len(ly.Neurons)
		nmem := nn * int(unsafe.Sizeof(Neuron{}))
		neur += nn
		neurMem += nmem
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t NeurMem: %v \t Sends To:\n", ly.Nm, nn, (datasize.ByteSize)(nmem).HumanReadable())
		for _, pj := range ly.SndPrjns {
			ns := len(pj.Syns)
			syn += ns
			pmem := ns * int(unsafe.Sizeof(Synapse{}))
			synMem += pmem
			fmt.Fprintf(&b, "\t%14s:\t Syns: %d\t SynMem: %v\n", pj.Recv.Name(), ns, (datasize.ByteSize)(pmem).HumanReadable())
		}
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d \t SynMem: %v\n", nt.Nm, neur, (datasize.ByteSize)(neurMem).HumanReadable(), syn, (datasize.ByteSize)(synMem).HumanReadable())
	return b.String()
}

//////////////////////////////////////////////////////////////////////////////////////
//  Network props for gui

var NetworkProps = ki.Props{
	"ToolBar": ki.PropSlice{
		{"SaveWtsJSON", ki.Props{
			"label": "Save Wts...",
			"icon":  "file-save",
			"desc":  "Save json-formatted weights",
			"Args": ki.PropSlice{
				{"Weights File Name", ki.Props{
					"default-field": "WtsFile",
					"ext":           ".wts,.wts.gz",
				}},
			},
		}},
		{"OpenWtsJSON", ki.Props{
			"label": "Open Wts...",
			"icon":  "file-open",
			"desc":  "Open json-formatted weights",
			"Args": ki.PropSlice{
				{"Weights File Name", ki.Props{
					"default-field": "WtsFile",
					"ext":           ".wts,.wts.gz",
				}},
			},
		}},
		{"sep-doc", ki.BlankProp{}},
		{"SaveJSON", ki.Props{
			"label": "Save Net...",
			"icon":  "file-save",
			"desc":  "Save complete json-formatted network document",
			"Args": ki.PropSlice{
				{"Net File Name", ki.Props{
					"ext": ".net,.net.gz",
				}},
			},
		}},
		{"OpenJSON", ki.Props{
			"label": "Open Net...",
			"icon":  "file-open",
			"desc":  "Open complete json-formatted network document",
			"Args": ki.PropSlice{
				{"Net File Name", ki.Props{
					"ext": ".net,.net.gz",
				}},
			},
		}},
		{"sep-bld", ki.BlankProp{}},
		{"Build", ki.Props{
			"icon": "update",
			"desc": "build the network's neurons and synapses according to current dims",
		}},
		{"InitWts", ki.Props{
			"icon": "update",
			"desc": "initialize the network weight values from the configured ranges",
		}},
		{"InitActs", ki.Props{
			"icon": "update",
			"desc": "initialize the network activation values",
		}},
	},
}
