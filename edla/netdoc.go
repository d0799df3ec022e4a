// Copyright (c) 2025, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package edla

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/goki/gi/gi"
)

// netJSON is the complete on-disk document form of a network: every layer
// with full neuron state, every connection with its weight and enabled
// flag, the config, the dimensions and the learning stats.  Training
// patterns are not part of the document.
type netJSON struct {
	Layers []layJSON     `json:"layers"`
	Conns  [][]connJSON  `json:"connections"`
	Config Config        `json:"config"`
	Dims   Dims          `json:"dimensions"`
	Stats  LearningStats `json:"stats"`
}

// layJSON is the document form of one layer.
type layJSON struct {
	Neurons  []Neuron   `json:"neurons"`
	Typ      LayerTypes `json:"layer_type"`
	LayIndex int        `json:"layer_index"`
}

// connJSON is the document form of one connection, in network-global
// neuron indexes.
type connJSON struct {
	From    int     `json:"from"`
	To      int     `json:"to"`
	Wt      float32 `json:"weight"`
	Enabled bool    `json:"connection_enabled"`
}

// WriteJSON writes the complete network document in JSON format.  The
// connections array has one entry per network-global neuron index,
// holding that neuron's outgoing connections -- empty, never null, for
// neurons with none.
func (nt *Network) WriteJSON(w io.Writer) error {
	doc := netJSON{
		Layers: make([]layJSON, len(nt.Layers)),
		Conns:  make([][]connJSON, nt.NNeurons),
		Config: nt.Config,
		Dims:   nt.Dims,
		Stats:  nt.Stats.Snapshot(),
	}
	for li, ly := range nt.Layers {
		doc.Layers[li] = layJSON{Neurons: ly.Neurons, Typ: ly.Typ, LayIndex: li}
	}
	for ni := range doc.Conns {
		doc.Conns[ni] = []connJSON{}
	}
	for _, ly := range nt.Layers {
		for _, pj := range ly.SndPrjns {
			if pj.IsOff() {
				continue
			}
			rst := pj.Recv.NeurSt
			for si := range ly.Neurons {
				gsi := ly.NeurSt + si
				nc := int(pj.SConN[si])
				st := int(pj.SConIdxSt[si])
				for ci := 0; ci < nc; ci++ {
					sy := &pj.Syns[st+ci]
					gri := rst + int(pj.SConIdx[st+ci])
					doc.Conns[gsi] = append(doc.Conns[gsi], connJSON{From: gsi, To: gri, Wt: sy.Wt, Enabled: sy.Enabled})
				}
			}
		}
	}
	b, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		log.Println(err)
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadJSON reads a complete network document, rebuilding this network's
// topology from the document's config and dimensions, and overlaying the
// saved neuron, connection and stats state.  The existing network
// contents are replaced entirely; the weight init seed is kept.
func (nt *Network) ReadJSON(r io.Reader) error {
	var doc netJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		log.Println(err)
		return err
	}
	err := nt.setDoc(&doc)
	if err != nil {
		log.Println(err)
	}
	return err
}

// setDoc rebuilds the network from a decoded document.  The document's
// neuron types and indexes must match the ones its own dimensions
// determine -- a mismatch indicates a corrupt or hand-edited document.
func (nt *Network) setDoc(doc *netJSON) error {
	if err := doc.Dims.Validate(); err != nil {
		return err
	}
	if err := doc.Config.Validate(); err != nil {
		return err
	}
	if len(doc.Layers) != 4 {
		return fmt.Errorf("edla.Network %v ReadJSON: document has %v layers, want 4", nt.Nm, len(doc.Layers))
	}
	nt.Config = doc.Config
	nt.Dims = doc.Dims
	nt.ConfigNet()
	if err := nt.Build(); err != nil {
		return err
	}
	for li, ly := range nt.Layers {
		lw := &doc.Layers[li]
		if lw.Typ != ly.Typ {
			return fmt.Errorf("edla.Network %v ReadJSON: layer %v has type %v, want %v", nt.Nm, li, lw.Typ, ly.Typ)
		}
		if lw.LayIndex != li {
			return fmt.Errorf("edla.Network %v ReadJSON: layer %v has index %v", nt.Nm, li, lw.LayIndex)
		}
		if len(lw.Neurons) != len(ly.Neurons) {
			return fmt.Errorf("edla.Network %v ReadJSON: layer %v has %v neurons, want %v", nt.Nm, ly.Nm, len(lw.Neurons), len(ly.Neurons))
		}
		for ni := range lw.Neurons {
			dn := &lw.Neurons[ni]
			nrn := &ly.Neurons[ni]
			if dn.Type != nrn.Type {
				return fmt.Errorf("edla.Network %v ReadJSON: neuron %v in layer %v has type %v, want %v from its position", nt.Nm, ni, ly.Nm, dn.Type, nrn.Type)
			}
			if int(dn.Idx) != ly.NeurSt+ni {
				return fmt.Errorf("edla.Network %v ReadJSON: neuron %v in layer %v has global index %v, want %v", nt.Nm, ni, ly.Nm, dn.Idx, ly.NeurSt+ni)
			}
			nrn.In = dn.In
			nrn.Out = dn.Out
			nrn.Err = dn.Err
		}
	}
	if len(doc.Conns) != nt.NNeurons {
		return fmt.Errorf("edla.Network %v ReadJSON: document has %v connection groups, want %v", nt.Nm, len(doc.Conns), nt.NNeurons)
	}
	var err error
	for gsi := range doc.Conns {
		for i := range doc.Conns[gsi] {
			cw := &doc.Conns[gsi][i]
			if cw.From != gsi {
				err = fmt.Errorf("edla.Network %v ReadJSON: connection in group %v has from: %v", nt.Nm, gsi, cw.From)
				continue
			}
			sly, si, er := nt.LayerFmGlobalIdx(cw.From)
			if er != nil {
				err = er
				continue
			}
			rly, ri, er := nt.LayerFmGlobalIdx(cw.To)
			if er != nil {
				err = er
				continue
			}
			pj := sly.SndPrjnTo(rly)
			if pj == nil {
				err = fmt.Errorf("edla.Network %v ReadJSON: no projection from %v to %v for connection %v -> %v", nt.Nm, sly.Nm, rly.Nm, cw.From, cw.To)
				continue
			}
			sy := pj.Syn(si, ri)
			if sy == nil {
				err = fmt.Errorf("edla.Network %v ReadJSON: projection %v has no synapse for connection %v -> %v", nt.Nm, pj.Name(), cw.From, cw.To)
				continue
			}
			sy.Wt = cw.Wt
			sy.Enabled = cw.Enabled
		}
	}
	nt.Stats = doc.Stats
	if nt.Stats.ErrHist == nil {
		nt.Stats.ErrHist = []float64{}
	}
	return err
}

// SaveJSON saves the complete network document to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (nt *Network) SaveJSON(filename gi.FileName) error {
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
		return nt.WriteJSON(gzr)
	}
	return nt.WriteJSON(fp)
}

// OpenJSON opens a complete network document from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func (nt *Network) OpenJSON(filename gi.FileName) error {
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
		return nt.ReadJSON(gzr)
	}
	return nt.ReadJSON(fp)
}
