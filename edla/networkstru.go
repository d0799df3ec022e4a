// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/emer/emergent/relpos"
	"github.com/emer/emergent/weights"
	"github.com/goki/gi/gi"
	"github.com/goki/ki/indent"
	"github.com/goki/mat32"
)

// edla.NetworkStru holds the basic structural components of a network (layers)
type NetworkStru struct {
	EdNet    *Network          `copy:"-" json:"-" xml:"-" view:"-" desc:"we need a pointer to ourselves as a *Network, which can always be used to extract the true underlying type of object when network is embedded in other structs -- function receivers do not have this ability so this is necessary."`
	Nm       string            `desc:"overall name of network -- helps discriminate if there are multiple"`
	Layers   []*Layer          `desc:"list of layers, in bias, input, hidden, output order"`
	WtsFile  string            `desc:"filename of last weights file loaded or saved"`
	LayMap   map[string]*Layer `view:"-" desc:"map of name to layers -- layer names must be unique"`
	MinPos   mat32.Vec3        `view:"-" desc:"minimum display position in network"`
	MaxPos   mat32.Vec3        `view:"-" desc:"maximum display position in network"`
	MetaData map[string]string `desc:"optional metadata that is saved in network weights files -- e.g., can indicate number of epochs that were trained, or any other information about this network that would be useful to save"`
	NNeurons int               `inactive:"+" desc:"total number of neurons across all layers -- set during Build"`
}

// InitName MUST be called to initialize the network's pointer to itself as
// a *Network which enables the proper methods to be called on embedded
// structural methods.  Also sets the name.
func (nt *NetworkStru) InitName(net *Network, name string) {
	nt.EdNet = net
	nt.Nm = name
}

func (nt *NetworkStru) Name() string                  { return nt.Nm }
func (nt *NetworkStru) Label() string                 { return nt.Nm }
func (nt *NetworkStru) NLayers() int                  { return len(nt.Layers) }
func (nt *NetworkStru) Layer(idx int) *Layer          { return nt.Layers[idx] }
func (nt *NetworkStru) Bounds() (min, max mat32.Vec3) { min = nt.MinPos; max = nt.MaxPos; return }

// LayerByName returns a layer by looking it up by name in the layer map
// (nil if not found).  Will create the layer map if it is nil or a
// different size than layers slice, but otherwise needs to be updated
// manually.
func (nt *NetworkStru) LayerByName(name string) *Layer {
	if nt.LayMap == nil || len(nt.LayMap) != len(nt.Layers) {
		nt.MakeLayMap()
	}
	ly := nt.LayMap[name]
	return ly
}

// LayerByNameTry returns a layer by looking it up by name -- emits a log
// error message if layer is not found
func (nt *NetworkStru) LayerByNameTry(name string) (*Layer, error) {
	ly := nt.LayerByName(name)
	if ly == nil {
		err := fmt.Errorf("Layer named: %v not found in Network: %v\n", name, nt.Nm)
		log.Println(err)
		return ly, err
	}
	return ly, nil
}

// LayerByType returns the first layer of the given type, nil if none.
func (nt *NetworkStru) LayerByType(typ LayerTypes) *Layer {
	for _, ly := range nt.Layers {
		if ly.Typ == typ {
			return ly
		}
	}
	return nil
}

// MakeLayMap updates layer map based on current layers
func (nt *NetworkStru) MakeLayMap() {
	nt.LayMap = make(map[string]*Layer, len(nt.Layers))
	for _, ly := range nt.Layers {
		nt.LayMap[ly.Name()] = ly
	}
}

// LayerFmGlobalIdx returns the layer containing the given network-global
// neuron index, and the local index within that layer.  Only valid after
// Build.
func (nt *NetworkStru) LayerFmGlobalIdx(gidx int) (*Layer, int, error) {
	if gidx < 0 || gidx >= nt.NNeurons {
		return nil, 0, fmt.Errorf("edla.Network %v: global neuron index %v out of range: %v", nt.Nm, gidx, nt.NNeurons)
	}
	for _, ly := range nt.Layers {
		if gidx < ly.NeurSt+len(ly.Neurons) {
			return ly, gidx - ly.NeurSt, nil
		}
	}
	return nil, 0, fmt.Errorf("edla.Network %v: global neuron index %v not in any layer", nt.Nm, gidx)
}

// StdVertLayout arranges layers in a standard vertical (z axis stack)
// layout, by setting the Rel settings
func (nt *NetworkStru) StdVertLayout() {
	lstnm := ""
	for li, ly := range nt.Layers {
		if li == 0 {
			ly.SetRelPos(relpos.Rel{Rel: relpos.NoRel})
			lstnm = ly.Name()
		} else {
			ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstnm, XAlign: relpos.Middle, YAlign: relpos.Front})
			lstnm = ly.Name()
		}
	}
}

// Layout computes the 3D layout of layers based on their relative
// position settings
func (nt *NetworkStru) Layout() {
	var lstly *Layer
	for _, ly := range nt.Layers {
		rp := ly.RelPos()
		var oly *Layer
		if rp.Other != "" {
			oly = nt.LayerByName(rp.Other)
		} else if lstly != nil {
			oly = lstly
			ly.SetRelPos(relpos.Rel{Rel: relpos.Above, Other: lstly.Name(), XAlign: relpos.Middle, YAlign: relpos.Front})
		}
		if oly != nil {
			ly.SetPos(ly.Rel.Pos(oly.Pos(), oly.Size(), ly.Size()))
		}
		lstly = ly
	}
	nt.BoundsUpdt()
}

// BoundsUpdt updates the Min / Max display bounds for 3D display
func (nt *NetworkStru) BoundsUpdt() {
	mn := mat32.NewVec3Scalar(mat32.Infinity)
	mx := mat32.Vec3Zero
	for _, ly := range nt.Layers {
		ps := ly.Pos()
		sz := ly.Size()
		ru := ps
		ru.X += sz.X
		ru.Y += sz.Y
		mn.SetMax(ps)
		mx.SetMax(ru)
	}
	nt.MinPos = mn
	nt.MaxPos = mx
}

// ApplyParams applies given parameter style Sheet to layers and prjns in
// this network.  Calls UpdateParams to ensure derived parameters are all
// updated.  If setMsg is true, then a message is printed to confirm each
// parameter that is set.  it always prints a message if a parameter fails
// to be set.  returns true if any params were set, and error if there
// were any errors.
func (nt *NetworkStru) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, ly := range nt.Layers {
		app, err := ly.ApplyParams(pars, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	return applied, rerr
}

// NonDefaultParams returns a listing of all parameters in the Network that
// are not at their default values -- useful for setting param styles etc.
func (nt *NetworkStru) NonDefaultParams() string {
	nds := ""
	for _, ly := range nt.Layers {
		nd := ly.NonDefaultParams()
		nds += nd
	}
	return nds
}

// AllParams returns a listing of all parameters in the Network.
func (nt *NetworkStru) AllParams() string {
	nds := ""
	for _, ly := range nt.Layers {
		nd := ly.AllParams()
		nds += nd
	}
	return nds
}

// AddLayerInit is implementation routine that takes a given layer and
// adds it to the network, and initializes and configures it properly.
func (nt *NetworkStru) AddLayerInit(ly *Layer, name string, shape []int, typ LayerTypes) {
	if nt.EdNet == nil {
		log.Printf("Network EdNet is nil -- you MUST call InitName on network, passing a pointer to the network to initialize properly!")
		return
	}
	ly.InitName(name, nt.EdNet)
	ly.Config(shape, typ)
	nt.Layers = append(nt.Layers, ly)
	nt.MakeLayMap()
}

// AddLayer adds a new layer with given name and shape to the network.
// Layer shapes are 2D, 1 (Y) by the number of units (X) -- see AddLayer2D
// for a convenience method in those terms.
func (nt *NetworkStru) AddLayer(name string, shape []int, typ LayerTypes) *Layer {
	ly := &Layer{}
	nt.AddLayerInit(ly, name, shape, typ)
	return ly
}

// AddLayer2D adds a new layer with given name and 2D shape to the network.
func (nt *NetworkStru) AddLayer2D(name string, shapeY, shapeX int, typ LayerTypes) *Layer {
	return nt.AddLayer(name, []int{shapeY, shapeX}, typ)
}

// ConnectLayerNames establishes a projection between two layers,
// referenced by name, adding to the recv and send projection lists on each
// side of the connection.  Returns error if not successful.
// Does not yet actually connect the units within the layers -- that
// requires Build.
func (nt *NetworkStru) ConnectLayerNames(send, recv string, pat prjn.Pattern, typ emer.PrjnType) (rlay, slay *Layer, pj *Prjn, err error) {
	rlay, err = nt.LayerByNameTry(recv)
	if err != nil {
		return
	}
	slay, err = nt.LayerByNameTry(send)
	if err != nil {
		return
	}
	pj = nt.ConnectLayers(slay, rlay, pat, typ)
	return
}

// ConnectLayers establishes a projection between two layers, adding to the
// recv and send projection lists on each side of the connection.
// Does not yet actually connect the units within the layers -- that
// requires Build.
func (nt *NetworkStru) ConnectLayers(send, recv *Layer, pat prjn.Pattern, typ emer.PrjnType) *Prjn {
	pj := &Prjn{}
	pj.Defaults()
	pj.Connect(send, recv, pat, typ)
	recv.RcvPrjns = append(recv.RcvPrjns, pj)
	send.SndPrjns = append(send.SndPrjns, pj)
	return pj
}

// LateralConnectLayer establishes a self-projection within given layer.
// Does not yet actually connect the units within the layers -- that
// requires Build.
func (nt *NetworkStru) LateralConnectLayer(lay *Layer, pat prjn.Pattern) *Prjn {
	return nt.ConnectLayers(lay, lay, pat, emer.Lateral)
}

// Build constructs the layer and projection state based on the layer
// shapes and patterns of interconnectivity.  Assigns each layer its index
// and the global index of its first neuron, in layer order.
func (nt *NetworkStru) Build() error {
	emsg := ""
	gni := 0
	for li, ly := range nt.Layers {
		ly.SetIndex(li)
		ly.NeurSt = gni
		gni += ly.Shp.Len()
		if ly.IsOff() {
			continue
		}
		err := ly.Build()
		if err != nil {
			emsg += err.Error() + "\n"
		}
	}
	nt.NNeurons = gni
	nt.Layout()
	if emsg != "" {
		return errors.New(emsg)
	}
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// SaveWtsJSON saves network weights (and any other state that adapts with
// learning) to a JSON-formatted file.  If filename has .gz extension, then
// file is gzip compressed.
func (nt *NetworkStru) SaveWtsJSON(filename gi.FileName) error {
	fp, err := os.Create(string(filename))
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		nt.WriteWtsJSON(gzr)
	} else {
		nt.WriteWtsJSON(fp)
	}
	return nil
}

// OpenWtsJSON opens network weights (and any other state that adapts with
// learning) from a JSON-formatted file.  If filename has .gz extension,
// then file is gzip uncompressed.
func (nt *NetworkStru) OpenWtsJSON(filename gi.FileName) error {
	fp, err := os.Open(string(filename))
	defer fp.Close()
	if err != nil {
		log.Println(err)
		return err
	}
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		defer gzr.Close()
		if err != nil {
			log.Println(err)
			return err
		}
		return nt.ReadWtsJSON(gzr)
	} else {
		return nt.ReadWtsJSON(fp)
	}
}

// WriteWtsJSON writes the weights from this network from the receiver-side
// perspective in a JSON text format.  We build in the indentation logic to
// make it much faster and more efficient.
func (nt *NetworkStru) WriteWtsJSON(w io.Writer) {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm))) // note: can't use \n in `` so need "
	w.Write(indent.TabBytes(depth))
	onls := make([]*Layer, 0, len(nt.Layers))
	for _, ly := range nt.Layers {
		if !ly.IsOff() {
			onls = append(onls, ly)
		}
	}
	nl := len(onls)
	if nl == 0 {
		w.Write([]byte("\"Layers\": null\n"))
	} else {
		w.Write([]byte("\"Layers\": [\n"))
		depth++
		for li, ly := range onls {
			ly.WriteWtsJSON(w, depth)
			if li == nl-1 {
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
	w.Write([]byte("}\n"))
}

// ReadWtsJSON reads network weights from the receiver-side perspective in
// a JSON text format.  Reads entire file into a temporary weights.Weights
// structure that is then passed to Layers etc using SetWts method.
func (nt *NetworkStru) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	err = nt.SetWts(nw)
	if err != nil {
		log.Println(err)
	}
	return err
}

// SetWts sets the weights for this network from weights.Network decoded values
func (nt *NetworkStru) SetWts(nw *weights.Network) error {
	var err error
	if nw.Network != "" {
		nt.Nm = nw.Network
	}
	if nw.MetaData != nil {
		if nt.MetaData == nil {
			nt.MetaData = nw.MetaData
		} else {
			for mk, mv := range nw.MetaData {
				nt.MetaData[mk] = mv
			}
		}
	}
	for li := range nw.Layers {
		lw := &nw.Layers[li]
		ly, er := nt.LayerByNameTry(lw.Layer)
		if er != nil {
			err = er
			continue
		}
		ly.SetWts(lw)
	}
	return err
}

// VarRange returns the min / max values for given variable
func (nt *NetworkStru) VarRange(varNm string) (min, max float32, err error) {
	first := true
	for _, ly := range nt.Layers {
		lmin, lmax, lerr := ly.VarRange(varNm)
		if lerr != nil {
			err = lerr
			return
		}
		if first {
			min = lmin
			max = lmax
			first = false
			continue
		}
		if lmin < min {
			min = lmin
		}
		if lmax > max {
			max = lmax
		}
	}
	return
}
