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
	"io"

	"github.com/jackolantern/bear/vm"
	"github.com/pkg/errors"
)

type parser struct {
	s   *scanner
	tok token
}

// Parse reads assembly source from r and returns its parsed form. The name
// is used in error messages and debug info.
func Parse(name string, r io.Reader) (*Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s failed", name)
	}
	p := &parser{s: newScanner(name, src)}
	if err = p.advance(); err != nil {
		return nil, err
	}
	prog := &Program{Name: name}
	var (
		mark   bool
		labels []string
		pos    Pos
		open   bool // mark or labels pending
	)
	for p.tok.kind != tokEOF {
		if !open {
			pos = p.tok.pos
		}
		switch p.tok.kind {
		case tokMark:
			mark = true
			open = true
			if err = p.advance(); err != nil {
				return nil, err
			}
		case tokLabel:
			labels = append(labels, p.tok.text)
			open = true
			if err = p.advance(); err != nil {
				return nil, err
			}
		default:
			body, err := p.body()
			if err != nil {
				return nil, err
			}
			prog.Lines = append(prog.Lines, Line{Pos: pos, Mark: mark, Labels: labels, Body: body})
			mark, labels, open = false, nil, false
		}
	}
	if open {
		return nil, syntaxErrorf(pos, "label without a body")
	}
	return prog, nil
}

func (p *parser) advance() error {
	var err error
	p.tok, err = p.s.next()
	return err
}

func (p *parser) expect(k tokKind) (token, error) {
	if p.tok.kind != k {
		return token{}, syntaxErrorf(p.tok.pos, "expected %v, got %v", k, p.tok)
	}
	t := p.tok
	return t, p.advance()
}

func dataWidth(s string) (Width, bool) {
	switch s {
	case "d8":
		return W8, true
	case "d16":
		return W16, true
	case "d32":
		return W32, true
	}
	return 0, false
}

// body parses a line body. The separator is sugar for word alignment.
func (p *parser) body() (Body, error) {
	t := p.tok
	switch t.kind {
	case tokSep:
		return Align{Pos: t.pos, Expr: Num{Val: 4}}, p.advance()
	case tokString:
		return Str{Tag: t.tag, Text: t.text}, p.advance()
	case tokDefRef:
		return Ref{Pos: t.pos, Name: t.text}, p.advance()
	case tokDirective:
		return p.directive()
	case tokIdent:
		if w, ok := dataWidth(t.text); ok {
			if err := p.advance(); err != nil {
				return nil, err
			}
			e, err := p.expr()
			if err != nil {
				return nil, err
			}
			return Data{Width: w, Expr: e}, nil
		}
		if op, ok := vm.ParseOpCode(t.text); ok {
			return Instr{Op: op}, p.advance()
		}
		return nil, syntaxErrorf(t.pos, "unknown instruction %q", t.text)
	}
	return nil, syntaxErrorf(t.pos, "unexpected %v", t)
}

func (p *parser) directive() (Body, error) {
	t := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch t.text {
	case "at", "align":
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(tokSemi); err != nil {
			return nil, err
		}
		if t.text == "at" {
			return At{Pos: t.pos, Expr: e}, nil
		}
		return Align{Pos: t.pos, Expr: e}, nil
	case "include":
		path, err := p.expect(tokString)
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(tokSemi); err != nil {
			return nil, err
		}
		return Include{Pos: t.pos, Path: path.text}, nil
	case "define":
		return p.define(t.pos)
	}
	return nil, syntaxErrorf(t.pos, "unknown directive #%s", t.text)
}

// define parses a #define body. A single expression defines a named
// constant, anything else defines a list of line bodies expanded at each
// reference.
func (p *parser) define(pos Pos) (Body, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	var items []Body
	switch p.tok.kind {
	case tokNumber, tokHere, tokNextMark, tokPrevMark, tokLabelRef, tokQuote, tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(tokSemi); err != nil {
			return nil, err
		}
		return DefineExpr{Pos: pos, Name: name.text, Expr: e}, nil
	case tokDefRef:
		// ambiguous: `!a` alone or followed by an operator is an
		// expression, otherwise it opens a list
		d := p.tok
		if err = p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokSemi || p.tok.kind == tokOp {
			e, err := p.exprRest(DefRef{Pos: d.pos, Name: d.text})
			if err != nil {
				return nil, err
			}
			if _, err = p.expect(tokSemi); err != nil {
				return nil, err
			}
			return DefineExpr{Pos: pos, Name: name.text, Expr: e}, nil
		}
		items = append(items, Ref{Pos: d.pos, Name: d.text})
	}
	for p.tok.kind != tokSemi {
		if p.tok.kind == tokEOF {
			return nil, syntaxErrorf(pos, "unterminated definition %q", name.text)
		}
		switch p.tok.kind {
		case tokIdent, tokString, tokDefRef:
			b, err := p.body()
			if err != nil {
				return nil, err
			}
			items = append(items, b)
		default:
			return nil, syntaxErrorf(p.tok.pos, "unexpected %v in definition %q", p.tok, name.text)
		}
	}
	return DefineList{Pos: pos, Name: name.text, Items: items}, p.advance()
}

// expr parses a right-leaning expression: a op b op c is a op (b op c).
func (p *parser) expr() (Expr, error) {
	lhs, err := p.term()
	if err != nil {
		return nil, err
	}
	return p.exprRest(lhs)
}

// exprRest continues an expression whose left term is already parsed.
func (p *parser) exprRest(lhs Expr) (Expr, error) {
	if p.tok.kind != tokOp {
		return lhs, nil
	}
	op, ok := binOpNames[p.tok.text]
	if !ok {
		return nil, syntaxErrorf(p.tok.pos, "unknown operator %q", p.tok.text)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	rhs, err := p.expr()
	if err != nil {
		return nil, err
	}
	return BinExpr{Op: op, LHS: lhs, RHS: rhs}, nil
}

func (p *parser) term() (Expr, error) {
	t := p.tok
	switch t.kind {
	case tokNumber:
		return Num{Val: t.num}, p.advance()
	case tokHere:
		return Here{}, p.advance()
	case tokNextMark:
		return NextMark{}, p.advance()
	case tokPrevMark:
		return PrevMark{}, p.advance()
	case tokLabelRef:
		return LabelRef{Pos: t.pos, Name: t.text}, p.advance()
	case tokDefRef:
		return DefRef{Pos: t.pos, Name: t.text}, p.advance()
	case tokQuote:
		op, ok := vm.ParseOpCode(t.text)
		if !ok {
			return nil, syntaxErrorf(t.pos, "unknown opcode `%s", t.text)
		}
		return Quote{Op: op}, p.advance()
	case tokLParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, syntaxErrorf(t.pos, "expected expression, got %v", t)
}
