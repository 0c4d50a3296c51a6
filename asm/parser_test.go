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
	"strings"
	"testing"

	"github.com/jackolantern/bear/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	p, err := Parse("test", strings.NewReader(src))
	require.NoError(t, err)
	return p
}

func TestParseLines(t *testing.T) {
	p := parse(t, `
		-- a comment
		$ :start lit jump  -- trailing comment
		d32 &start
		c"hi"
	`)
	require.Len(t, p.Lines, 4)

	l := p.Lines[0]
	assert.True(t, l.Mark)
	assert.Equal(t, []string{"start"}, l.Labels)
	assert.Equal(t, Instr{Op: vm.OpLit}, l.Body)

	assert.Equal(t, Instr{Op: vm.OpJump}, p.Lines[1].Body)
	d, ok := p.Lines[2].Body.(Data)
	require.True(t, ok)
	assert.Equal(t, W32, d.Width)
	lr, ok := d.Expr.(LabelRef)
	require.True(t, ok)
	assert.Equal(t, "start", lr.Name)
	assert.Equal(t, Str{Tag: StrCStr, Text: "hi"}, p.Lines[3].Body)
}

func TestParseSeparator(t *testing.T) {
	p := parse(t, "nop\n=======\nnop")
	require.Len(t, p.Lines, 3)
	a, ok := p.Lines[1].Body.(Align)
	require.True(t, ok)
	assert.Equal(t, Num{Val: 4}, a.Expr)
}

func TestParseDirectives(t *testing.T) {
	p := parse(t, `
		#at 64;
		#align 2 * 8;
		#include r"lib.basm";
		#define four 4;
		#define pair dup dup;
	`)
	require.Len(t, p.Lines, 5)
	_, ok := p.Lines[0].Body.(At)
	assert.True(t, ok)
	_, ok = p.Lines[1].Body.(Align)
	assert.True(t, ok)
	inc, ok := p.Lines[2].Body.(Include)
	require.True(t, ok)
	assert.Equal(t, "lib.basm", inc.Path)
	de, ok := p.Lines[3].Body.(DefineExpr)
	require.True(t, ok)
	assert.Equal(t, "four", de.Name)
	dl, ok := p.Lines[4].Body.(DefineList)
	require.True(t, ok)
	assert.Equal(t, []Body{Instr{Op: vm.OpDup}, Instr{Op: vm.OpDup}}, dl.Items)
}

func TestParseExprShape(t *testing.T) {
	// no precedence: a + b * c parses right-leaning as a + (b * c)
	p := parse(t, "d32 2 + 3 * 4")
	e := p.Lines[0].Body.(Data).Expr.(BinExpr)
	assert.Equal(t, OpAdd, e.Op)
	assert.Equal(t, Num{Val: 2}, e.LHS)
	rhs := e.RHS.(BinExpr)
	assert.Equal(t, OpMul, rhs.Op)

	// parentheses group the left term
	p = parse(t, "d32 (2 + 3) * 4")
	e = p.Lines[0].Body.(Data).Expr.(BinExpr)
	assert.Equal(t, OpMul, e.Op)
	lhs := e.LHS.(BinExpr)
	assert.Equal(t, OpAdd, lhs.Op)
}

func TestParseTerms(t *testing.T) {
	p := parse(t, "d32 `halt + @ + $> + <$ + !k + 'A' + 0x10")
	// just make sure every term form comes through the parser
	e, ok := p.Lines[0].Body.(Data).Expr.(BinExpr)
	require.True(t, ok)
	assert.Equal(t, Quote{Op: vm.OpHalt}, e.LHS)
}

func TestParseErrors(t *testing.T) {
	var parseErrTests = [...]struct {
		name string
		src  string
		want string
	}{
		{"label_without_body", ":foo", "label without a body"},
		{"mark_without_body", "$", "label without a body"},
		{"unknown_instruction", "frobnicate", "unknown instruction"},
		{"unknown_directive", "#frob 1;", "unknown directive"},
		{"missing_semi", "#at 4", "expected ;"},
		{"unterminated_string", `r"abc`, "unterminated string"},
		{"bad_escape", `c"\q"`, "invalid escape"},
		{"short_separator", "==", "malformed separator"},
		{"bad_char", "d8 'ab'", "unterminated character"},
		{"unknown_quote", "d32 `frob", "unknown opcode"},
		{"missing_expr", "d32", "expected expression"},
		{"bare_lt", "d32 1 < 2", "unexpected character"},
		{"unterminated_define", "#define x nop", "unterminated definition"},
	}
	for _, tt := range parseErrTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test", strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseErrorPosition(t *testing.T) {
	_, err := Parse("prog.basm", strings.NewReader("nop\n  frobnicate"))
	require.Error(t, err)
	serr, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, Pos{File: "prog.basm", Line: 2, Col: 3}, serr.Pos)
}

func TestScanNumbers(t *testing.T) {
	p := parse(t, "d32 -42\nd32 0xDEAD\nd8 '\\n'\nd8 '\\''")
	vals := []int64{-42, 0xDEAD, 10, 39}
	for n, want := range vals {
		d := p.Lines[n].Body.(Data)
		assert.Equal(t, Num{Val: want}, d.Expr, "line %d", n)
	}
}
