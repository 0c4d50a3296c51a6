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

import "fmt"

// Pos is a position in an assembly source file. Lines and columns start
// at 1.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber    // decimal or 0x hex literal, char literal
	tokString    // r"..." c"..." s"..."
	tokLabel     // :name
	tokLabelRef  // &name
	tokDefRef    // !name
	tokQuote     // `name
	tokDirective // #name
	tokMark      // $
	tokNextMark  // $>
	tokPrevMark  // <$
	tokHere      // @
	tokSep       // ===
	tokLParen
	tokRParen
	tokSemi
	tokOp // + - * / ^ & | << >>
)

var tokKindNames = map[tokKind]string{
	tokEOF:       "end of file",
	tokIdent:     "identifier",
	tokNumber:    "number",
	tokString:    "string",
	tokLabel:     "label",
	tokLabelRef:  "label reference",
	tokDefRef:    "definition reference",
	tokQuote:     "quoted opcode",
	tokDirective: "directive",
	tokMark:      "$",
	tokNextMark:  "$>",
	tokPrevMark:  "<$",
	tokHere:      "@",
	tokSep:       "separator",
	tokLParen:    "(",
	tokRParen:    ")",
	tokSemi:      ";",
	tokOp:        "operator",
}

func (k tokKind) String() string {
	if s, ok := tokKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(k))
}

type token struct {
	kind tokKind
	text string // identifier, name, operator or string body
	tag  byte   // string kind: 'r', 'c' or 's'
	num  int64
	pos  Pos
}

func (t token) String() string {
	switch t.kind {
	case tokNumber:
		return fmt.Sprintf("%d", t.num)
	case tokIdent, tokOp:
		return t.text
	case tokLabel:
		return ":" + t.text
	case tokLabelRef:
		return "&" + t.text
	case tokDefRef:
		return "!" + t.text
	case tokQuote:
		return "`" + t.text
	case tokDirective:
		return "#" + t.text
	case tokString:
		return fmt.Sprintf("%c%q", t.tag, t.text)
	}
	return t.kind.String()
}
