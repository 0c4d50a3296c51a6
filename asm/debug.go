// This file is part of bear - https://github.com/jackolantern/bear
//
// Copyright 2020 John Connor <john.theman.connor@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/pkg/errors"
)

// DebugEntry describes one image address: the source location it was
// assembled from and any labels bound to it.
type DebugEntry struct {
	Address int      `json:"address"`
	File    string   `json:"file,omitempty"`
	Line    int      `json:"line,omitempty"`
	Names   []string `json:"names,omitempty"`
}

// DebugInfo is the sidecar debug table written next to an assembled image.
type DebugInfo struct {
	Entries []DebugEntry `json:"entries"`
}

// DebugInfo builds the debug table for an assembly: one entry per emitted
// item, with labels attached to the entry at their address.
func (a *Assembly) DebugInfo() *DebugInfo {
	byAddr := make(map[int]*DebugEntry)
	for _, it := range a.items {
		addr := int(it.addr)
		if _, ok := byAddr[addr]; !ok {
			byAddr[addr] = &DebugEntry{Address: addr, File: it.pos.File, Line: it.pos.Line}
		}
	}
	for name, addr := range a.Labels {
		e, ok := byAddr[int(addr)]
		if !ok {
			e = &DebugEntry{Address: int(addr)}
			byAddr[int(addr)] = e
		}
		e.Names = append(e.Names, name)
	}
	d := &DebugInfo{Entries: make([]DebugEntry, 0, len(byAddr))}
	for _, e := range byAddr {
		sort.Strings(e.Names)
		d.Entries = append(d.Entries, *e)
	}
	sort.Slice(d.Entries, func(i, j int) bool { return d.Entries[i].Address < d.Entries[j].Address })
	return d
}

// NameAt returns the labels bound at addr, if any.
func (d *DebugInfo) NameAt(addr int) []string {
	n := sort.Search(len(d.Entries), func(i int) bool { return d.Entries[i].Address >= addr })
	if n < len(d.Entries) && d.Entries[n].Address == addr {
		return d.Entries[n].Names
	}
	return nil
}

// Write writes d as JSON.
func (d *DebugInfo) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(d), "debug info write failed")
}

// ReadDebugInfo reads a JSON debug table.
func ReadDebugInfo(r io.Reader) (*DebugInfo, error) {
	d := new(DebugInfo)
	if err := json.NewDecoder(r).Decode(d); err != nil {
		return nil, errors.Wrap(err, "debug info read failed")
	}
	return d, nil
}
