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

import "sort"

// evalCtx is the context an expression evaluates in: the address of the
// item being encoded, the address right after it, and the label scope in
// effect at the use site.
type evalCtx struct {
	pos   Pos
	here  int64
	end   int64
	scope string
	seen  map[string]bool // definitions on the eval path
}

func (r *resolver) eval(e Expr, ctx evalCtx) (int64, error) {
	switch e := e.(type) {
	case Num:
		return e.Val, nil
	case Here:
		return ctx.here, nil
	case NextMark:
		return r.nextMark(ctx)
	case PrevMark:
		return r.prevMark(ctx)
	case Quote:
		return int64(e.Op), nil
	case LabelRef:
		addr, ok := r.lookupLabel(e.Name, ctx.scope)
		if !ok {
			return 0, &UnresolvedError{Pos: e.Pos, Name: e.Name}
		}
		return addr, nil
	case DefRef:
		return r.evalDef(e, ctx)
	case BinExpr:
		return r.evalBin(e, ctx)
	}
	return 0, evalErrorf(ctx.pos, "cannot evaluate expression")
}

// nextMark resolves $>: the first mark at or after the end of the current
// item, so that a marked line referencing $> sees the following mark, not
// its own.
func (r *resolver) nextMark(ctx evalCtx) (int64, error) {
	n := sort.Search(len(r.marks), func(i int) bool { return r.marks[i] >= ctx.end })
	if n == len(r.marks) {
		return 0, evalErrorf(ctx.pos, "no mark follows this position")
	}
	return r.marks[n], nil
}

// prevMark resolves <$: the last mark strictly before the current item.
func (r *resolver) prevMark(ctx evalCtx) (int64, error) {
	n := sort.Search(len(r.marks), func(i int) bool { return r.marks[i] >= ctx.here })
	if n == 0 {
		return 0, evalErrorf(ctx.pos, "no mark precedes this position")
	}
	return r.marks[n-1], nil
}

func (r *resolver) evalDef(e DefRef, ctx evalCtx) (int64, error) {
	if ctx.seen[e.Name] {
		return 0, evalErrorf(e.Pos, "recursive definition %q", e.Name)
	}
	d, ok := r.defs[e.Name]
	if !ok {
		return 0, &UnresolvedError{Pos: e.Pos, Name: e.Name}
	}
	de, ok := d.body.(DefineExpr)
	if !ok {
		return 0, evalErrorf(e.Pos, "definition %q is not an expression", e.Name)
	}
	if ctx.seen == nil {
		ctx.seen = make(map[string]bool)
	}
	ctx.seen[e.Name] = true
	v, err := r.eval(de.Expr, ctx)
	delete(ctx.seen, e.Name)
	return v, err
}

func (r *resolver) evalBin(e BinExpr, ctx evalCtx) (int64, error) {
	lhs, err := r.eval(e.LHS, ctx)
	if err != nil {
		return 0, err
	}
	rhs, err := r.eval(e.RHS, ctx)
	if err != nil {
		return 0, err
	}
	switch e.Op {
	case OpAdd:
		return lhs + rhs, nil
	case OpSub:
		return lhs - rhs, nil
	case OpMul:
		return lhs * rhs, nil
	case OpDiv:
		if rhs == 0 {
			return 0, evalErrorf(ctx.pos, "division by zero")
		}
		return lhs / rhs, nil
	case OpPow:
		if rhs < 0 {
			return 0, evalErrorf(ctx.pos, "negative exponent")
		}
		v := int64(1)
		for ; rhs > 0; rhs-- {
			v *= lhs
		}
		return v, nil
	case OpBitAnd:
		return lhs & rhs, nil
	case OpBitOr:
		return lhs | rhs, nil
	case OpShl:
		return lhs << uint(rhs&31), nil
	case OpShr:
		return lhs >> uint(rhs&31), nil
	}
	return 0, evalErrorf(ctx.pos, "unknown operator")
}

// lookupLabel resolves name against the current scope: a plain name tries
// scope:name first and then the top level, a qualified name is absolute.
func (r *resolver) lookupLabel(name, scope string) (int64, bool) {
	if scope != "" && !qualified(name) {
		if l, ok := r.labels[scope+":"+name]; ok {
			return l.addr, true
		}
	}
	l, ok := r.labels[name]
	return l.addr, ok
}

func qualified(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			return true
		}
	}
	return false
}
