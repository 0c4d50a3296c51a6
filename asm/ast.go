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

import "github.com/jackolantern/bear/vm"

// Program is a parsed assembly source file.
type Program struct {
	Name  string
	Lines []Line
}

// Line is one source line: an optional mark, labels, and a body.
type Line struct {
	Pos    Pos
	Mark   bool
	Labels []string
	Body   Body
}

// Width is a data item width in bits.
type Width int

// Data widths.
const (
	W8  Width = 8
	W16 Width = 16
	W32 Width = 32
)

// Bytes returns the encoded size of the width.
func (w Width) Bytes() int { return int(w) / 8 }

// String tags select the encoding of a string literal: raw bytes, a
// NUL-terminated C string, or a 32 bit length prefix followed by the bytes.
const (
	StrRaw   byte = 'r'
	StrCStr  byte = 'c'
	StrSized byte = 's'
)

// Body is a line body. DefineExpr, DefineList, At, Align and Include only
// direct the assembler, the others emit bytes.
type Body interface{ isBody() }

// Instr emits a single instruction byte.
type Instr struct {
	Op vm.OpCode
}

// Data emits an expression value at a given width. Strings align to a word
// boundary first, instructions and data do not.
type Data struct {
	Width Width
	Expr  Expr
}

// Str emits a string literal, aligned to a word boundary.
type Str struct {
	Tag  byte
	Text string
}

// Size returns the number of bytes s encodes to.
func (s Str) Size() int {
	switch s.Tag {
	case StrCStr:
		return len(s.Text) + 1
	case StrSized:
		return len(s.Text) + 4
	}
	return len(s.Text)
}

// Ref expands a list definition, or emits the value of an expression
// definition as if it were written in place.
type Ref struct {
	Pos  Pos
	Name string
}

// At moves the encode position forward to the address the expression
// evaluates to.
type At struct {
	Pos  Pos
	Expr Expr
}

// Align pads the encode position to a multiple of the expression value.
type Align struct {
	Pos  Pos
	Expr Expr
}

// Include splices another source file in place.
type Include struct {
	Pos  Pos
	Path string
}

// DefineExpr names an expression.
type DefineExpr struct {
	Pos  Pos
	Name string
	Expr Expr
}

// DefineList names a sequence of line bodies for later expansion.
type DefineList struct {
	Pos   Pos
	Name  string
	Items []Body
}

func (Instr) isBody()      {}
func (Data) isBody()       {}
func (Str) isBody()        {}
func (Ref) isBody()        {}
func (At) isBody()         {}
func (Align) isBody()      {}
func (Include) isBody()    {}
func (DefineExpr) isBody() {}
func (DefineList) isBody() {}

// Expr is an assembly expression. Expressions are right-leaning with no
// operator precedence: a op b op c parses as a op (b op c), parentheses
// group explicitly.
type Expr interface{ isExpr() }

// Num is an integer literal.
type Num struct {
	Val int64
}

// Here is @, the address of the item being encoded.
type Here struct{}

// NextMark is $>, the address of the first mark at or after the end of the
// item being encoded.
type NextMark struct{}

// PrevMark is <$, the address of the last mark before the item being
// encoded.
type PrevMark struct{}

// LabelRef is &name.
type LabelRef struct {
	Pos  Pos
	Name string
}

// DefRef is !name inside an expression.
type DefRef struct {
	Pos  Pos
	Name string
}

// Quote is `op, the numeric value of an opcode.
type Quote struct {
	Op vm.OpCode
}

// BinExpr applies an operator to two subexpressions.
type BinExpr struct {
	Op  BinOp
	LHS Expr
	RHS Expr
}

func (Num) isExpr()      {}
func (Here) isExpr()     {}
func (NextMark) isExpr() {}
func (PrevMark) isExpr() {}
func (LabelRef) isExpr() {}
func (DefRef) isExpr()   {}
func (Quote) isExpr()    {}
func (BinExpr) isExpr()  {}

// BinOp is an expression operator. OpPow is exponentiation, and the shift
// operators mask their right operand to the low five bits.
type BinOp int

// Expression operators.
const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpPow
	OpBitAnd
	OpBitOr
	OpShl
	OpShr
)

var binOpNames = map[string]BinOp{
	"+":  OpAdd,
	"-":  OpSub,
	"*":  OpMul,
	"/":  OpDiv,
	"^":  OpPow,
	"&":  OpBitAnd,
	"|":  OpBitOr,
	"<<": OpShl,
	">>": OpShr,
}

func (op BinOp) String() string {
	for s, o := range binOpNames {
		if o == op {
			return s
		}
	}
	return "?"
}
