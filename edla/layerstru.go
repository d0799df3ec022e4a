// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"github.com/emer/emergent/emer"
	"github.com/emer/emergent/relpos"
	"github.com/emer/etable/etensor"
	"github.com/goki/gi/giv"
	"github.com/goki/mat32"
)

// edla.LayerStru manages the structural elements of the layer, which are
// common to any Layer type
type LayerStru struct {
	Network  *Network      `copy:"-" json:"-" xml:"-" view:"-" desc:"our parent network, in case we need to use it to find other layers etc -- set when added by network"`
	Nm       string        `desc:"Name of the layer -- this must be unique within the network, which has a map for quick lookup and layers are typically accessed directly by name"`
	Cls      string        `desc:"Class is for applying parameter styles, can be space separated multple tags"`
	Off      bool          `desc:"inactivate this layer -- allows for easy experimentation"`
	Shp      etensor.Shape `desc:"shape of the layer -- 2D for all Ed layers, 1 (Y) by number of units (X)"`
	Typ      LayerTypes    `desc:"role of layer -- Bias, Input, Hidden or Output -- determines neuron typing and updating, and matches against .Class parameter styles (e.g., .Hidden etc)"`
	Rel      relpos.Rel    `view:"inline" desc:"Spatial relationship to other layer, determines positioning"`
	Ps       mat32.Vec3    `desc:"position of lower-left-hand corner of layer in 3D space, computed from Rel.  Layers are in X-Y width - height planes, stacked vertically in Z axis."`
	Idx      int           `desc:"a 0..n-1 index of the position of the layer within list of layers in the network"`
	NeurSt   int           `inactive:"+" desc:"global index of this layer's first neuron within the network, in bias, input, hidden, output layer order -- set during Build"`
	RcvPrjns []*Prjn       `desc:"list of receiving projections into this layer from other layers"`
	SndPrjns []*Prjn       `desc:"list of sending projections from this layer to other layers"`
}

// InitName MUST be called to initialize the layer's name and the parent
// network that this layer belongs to.
func (ls *LayerStru) InitName(name string, net *Network) {
	ls.Nm = name
	ls.Network = net
}

func (ls *LayerStru) Name() string             { return ls.Nm }
func (ls *LayerStru) SetName(nm string)        { ls.Nm = nm }
func (ls *LayerStru) Label() string            { return ls.Nm }
func (ls *LayerStru) Class() string            { return ls.Typ.String() + " " + ls.Cls }
func (ls *LayerStru) SetClass(cls string)      { ls.Cls = cls }
func (ls *LayerStru) TypeName() string         { return "Layer" } // type category, for params..
func (ls *LayerStru) Type() LayerTypes         { return ls.Typ }
func (ls *LayerStru) SetType(typ LayerTypes)   { ls.Typ = typ }
func (ls *LayerStru) IsOff() bool              { return ls.Off }
func (ls *LayerStru) SetOff(off bool)          { ls.Off = off }
func (ls *LayerStru) Shape() *etensor.Shape    { return &ls.Shp }
func (ls *LayerStru) NUnits() int              { return ls.Shp.Len() }
func (ls *LayerStru) RelPos() relpos.Rel       { return ls.Rel }
func (ls *LayerStru) Pos() mat32.Vec3          { return ls.Ps }
func (ls *LayerStru) SetPos(pos mat32.Vec3)    { ls.Ps = pos }
func (ls *LayerStru) Index() int               { return ls.Idx }
func (ls *LayerStru) SetIndex(idx int)         { ls.Idx = idx }
func (ls *LayerStru) RecvPrjns() []*Prjn       { return ls.RcvPrjns }
func (ls *LayerStru) NRecvPrjns() int          { return len(ls.RcvPrjns) }
func (ls *LayerStru) RecvPrjn(idx int) *Prjn   { return ls.RcvPrjns[idx] }
func (ls *LayerStru) SendPrjns() []*Prjn       { return ls.SndPrjns }
func (ls *LayerStru) NSendPrjns() int          { return len(ls.SndPrjns) }
func (ls *LayerStru) SendPrjn(idx int) *Prjn   { return ls.SndPrjns[idx] }

// SndPrjnTo returns this layer's sending projection terminating on the
// given layer, nil if none.  There is at most one per layer pair.
func (ls *LayerStru) SndPrjnTo(recv *Layer) *Prjn {
	for _, pj := range ls.SndPrjns {
		if pj.Recv == recv {
			return pj
		}
	}
	return nil
}

func (ls *LayerStru) SetRelPos(rel relpos.Rel) {
	ls.Rel = rel
	if ls.Rel.Scale == 0 {
		ls.Rel.Defaults()
	}
}

func (ls *LayerStru) Size() mat32.Vec2 {
	if ls.Rel.Scale == 0 {
		ls.Rel.Defaults()
	}
	var sz mat32.Vec2
	if ls.Shp.NumDims() == 2 {
		sz = mat32.Vec2{float32(ls.Shp.Dim(1)), float32(ls.Shp.Dim(0))} // Y, X
	} else {
		sz = mat32.Vec2{float32(ls.Shp.Len()), 1}
	}
	return sz.MulScalar(ls.Rel.Scale)
}

// SetShape sets the layer shape and also uses default dim names
func (ls *LayerStru) SetShape(shape []int) {
	var dnms []string
	if len(shape) == 2 {
		dnms = emer.LayerDimNames2D
	}
	ls.Shp.SetShape(shape, nil, dnms) // row major default
}

// GlobalIdx returns the network-level neuron index for the given
// within-layer neuron index.
func (ls *LayerStru) GlobalIdx(idx int) int {
	return ls.NeurSt + idx
}

// Config configures the basic properties of the layer
func (ls *LayerStru) Config(shape []int, typ LayerTypes) {
	ls.SetShape(shape)
	ls.Typ = typ
}

// NonDefaultParams returns a listing of all parameters in the Layer that
// are not at their default values -- useful for setting param styles etc.
func (ls *LayerStru) NonDefaultParams() string {
	nds := giv.StructNonDefFieldsStr(ls, ls.Nm)
	for _, pj := range ls.RcvPrjns {
		pnd := pj.NonDefaultParams()
		nds += pnd
	}
	return nds
}
