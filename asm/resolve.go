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
	"os"
	"path/filepath"
	"strings"
)

// Resolution runs in two passes. The layout pass walks the program in
// source order, expanding definitions and includes, assigning an address to
// every emitted item and recording marks and labels. The fixup pass then
// evaluates every data expression against the full symbol table, so forward
// and backward references encode identically.

type labelDef struct {
	addr int64
	pos  Pos
}

type defDef struct {
	body Body // DefineExpr or DefineList
	pos  Pos
}

type item struct {
	body  Body // Instr, Data or Str
	addr  int64
	end   int64
	scope string
	pos   Pos
	value int64 // resolved Data value
}

type resolver struct {
	pos       int64
	scope     string
	marks     []int64
	labels    map[string]labelDef
	defs      map[string]defDef
	items     []item
	dir       string
	including map[string]bool
}

// Assembly is the result of processing a parsed program.
type Assembly struct {
	// Image is the encoded memory image, padded to a whole number of
	// words. Execution starts at address 0.
	Image []byte
	// Labels maps every defined label to its byte address.
	Labels map[string]int64

	items []item
}

// ProcessOption configures Process.
type ProcessOption func(*resolver)

// IncludeDir sets the directory #include paths are resolved against.
func IncludeDir(dir string) ProcessOption {
	return func(r *resolver) { r.dir = dir }
}

// Process resolves and encodes a parsed program.
func Process(p *Program, opts ...ProcessOption) (*Assembly, error) {
	r := &resolver{
		dir:       ".",
		labels:    make(map[string]labelDef),
		defs:      make(map[string]defDef),
		including: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.layoutProgram(p); err != nil {
		return nil, err
	}
	if err := r.fixup(); err != nil {
		return nil, err
	}
	img, err := r.encode()
	if err != nil {
		return nil, err
	}
	a := &Assembly{Image: img, Labels: make(map[string]int64, len(r.labels)), items: r.items}
	for name, l := range r.labels {
		a.Labels[name] = l.addr
	}
	return a, nil
}

func (r *resolver) layoutProgram(p *Program) error {
	for _, line := range p.Lines {
		if err := r.layoutLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) layoutLine(line Line) error {
	// a mark resets the label scope
	if line.Mark {
		r.scope = ""
	}
	names := make([]string, len(line.Labels))
	for k, name := range line.Labels {
		names[k] = name
		if n := strings.IndexByte(name, ':'); n >= 0 {
			r.scope = name[:n]
		} else {
			r.scope = name
		}
	}
	start := len(r.items)
	if err := r.layoutBody(line.Body, line.Pos); err != nil {
		return err
	}
	// marks and labels bind to the first item emitted by the line, which
	// a string may have moved past the pre-line position by alignment
	addr := r.pos
	if len(r.items) > start {
		addr = r.items[start].addr
	}
	if line.Mark {
		r.marks = append(r.marks, addr)
	}
	for _, name := range names {
		if prev, ok := r.labels[name]; ok {
			return &DuplicateLabelError{Pos: line.Pos, Prev: prev.pos, Name: name}
		}
		r.labels[name] = labelDef{addr: addr, pos: line.Pos}
	}
	return nil
}

func (r *resolver) emit(b Body, size int64, pos Pos) {
	r.items = append(r.items, item{
		body:  b,
		addr:  r.pos,
		end:   r.pos + size,
		scope: r.scope,
		pos:   pos,
	})
	r.pos += size
}

func (r *resolver) alignTo(n int64) {
	if rem := r.pos % n; rem != 0 {
		r.pos += n - rem
	}
}

func (r *resolver) layoutBody(b Body, pos Pos) error {
	switch b := b.(type) {
	case Instr:
		r.emit(b, 1, pos)
	case Data:
		r.emit(b, int64(b.Width.Bytes()), pos)
	case Str:
		r.alignTo(4)
		r.emit(b, int64(b.Size()), pos)
	case Ref:
		return r.expand(b)
	case At:
		v, err := r.eval(b.Expr, evalCtx{pos: b.Pos, here: r.pos, end: r.pos, scope: r.scope})
		if err != nil {
			return err
		}
		if v < r.pos {
			return evalErrorf(b.Pos, "#at target %d is behind the current position %d", v, r.pos)
		}
		r.pos = v
	case Align:
		v, err := r.eval(b.Expr, evalCtx{pos: b.Pos, here: r.pos, end: r.pos, scope: r.scope})
		if err != nil {
			return err
		}
		if v <= 0 {
			return evalErrorf(b.Pos, "invalid alignment %d", v)
		}
		r.alignTo(v)
	case Include:
		return r.include(b)
	case DefineExpr:
		return r.define(b.Name, b, b.Pos)
	case DefineList:
		return r.define(b.Name, b, b.Pos)
	default:
		return syntaxErrorf(pos, "unexpected line body")
	}
	return nil
}

func (r *resolver) define(name string, b Body, pos Pos) error {
	if prev, ok := r.defs[name]; ok {
		return &DuplicateLabelError{Pos: pos, Prev: prev.pos, Name: name}
	}
	r.defs[name] = defDef{body: b, pos: pos}
	return nil
}

// expand splices a list definition in place. Definitions must appear
// before their first use.
func (r *resolver) expand(b Ref) error {
	d, ok := r.defs[b.Name]
	if !ok {
		return &UnresolvedError{Pos: b.Pos, Name: b.Name}
	}
	list, ok := d.body.(DefineList)
	if !ok {
		return evalErrorf(b.Pos, "definition %q is not a list", b.Name)
	}
	for _, it := range list.Items {
		if err := r.layoutBody(it, b.Pos); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolver) include(b Include) error {
	path := filepath.Join(r.dir, b.Path)
	if r.including[path] {
		return evalErrorf(b.Pos, "circular include of %s", b.Path)
	}
	f, err := os.Open(path)
	if err != nil {
		return evalErrorf(b.Pos, "cannot include %s: %v", b.Path, err)
	}
	defer f.Close()
	p, err := Parse(path, f)
	if err != nil {
		return err
	}
	dir := r.dir
	r.dir = filepath.Dir(path)
	r.including[path] = true
	err = r.layoutProgram(p)
	delete(r.including, path)
	r.dir = dir
	return err
}

// fixup evaluates data expressions and checks that each value fits its
// declared width. Width n accepts [-2^(n-1), 2^n-1], covering both signed
// and unsigned interpretations.
func (r *resolver) fixup() error {
	for n := range r.items {
		it := &r.items[n]
		d, ok := it.body.(Data)
		if !ok {
			continue
		}
		v, err := r.eval(d.Expr, evalCtx{pos: it.pos, here: it.addr, end: it.end, scope: it.scope})
		if err != nil {
			return err
		}
		bits := int(d.Width)
		min := -(int64(1) << uint(bits-1))
		max := (int64(1) << uint(bits)) - 1
		if v < min || v > max {
			return &WidthOverflowError{Pos: it.pos, Bits: bits, Value: v}
		}
		it.value = v
	}
	return nil
}
