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

import "strconv"

// scanner tokenizes assembly source. It works on raw bytes: the language
// is ASCII, string literals pass other bytes through untouched.
type scanner struct {
	src  []byte
	off  int
	file string
	line int
	col  int
}

func newScanner(file string, src []byte) *scanner {
	return &scanner{src: src, file: file, line: 1, col: 1}
}

func (s *scanner) pos() Pos {
	return Pos{File: s.file, Line: s.line, Col: s.col}
}

func (s *scanner) peek() byte {
	if s.off >= len(s.src) {
		return 0
	}
	return s.src[s.off]
}

func (s *scanner) peek2() byte {
	if s.off+1 >= len(s.src) {
		return 0
	}
	return s.src[s.off+1]
}

func (s *scanner) advance() byte {
	c := s.src[s.off]
	s.off++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == ':' || c == '?'
}

// skipSpace consumes whitespace and -- comments.
func (s *scanner) skipSpace() {
	for s.off < len(s.src) {
		switch c := s.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == '-' && s.peek2() == '-':
			for s.off < len(s.src) && s.peek() != '\n' {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *scanner) name() string {
	start := s.off
	for s.off < len(s.src) && isIdentPart(s.peek()) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func (s *scanner) next() (token, error) {
	s.skipSpace()
	pos := s.pos()
	if s.off >= len(s.src) {
		return token{kind: tokEOF, pos: pos}, nil
	}
	c := s.advance()
	switch {
	case c == '(':
		return token{kind: tokLParen, pos: pos}, nil
	case c == ')':
		return token{kind: tokRParen, pos: pos}, nil
	case c == ';':
		return token{kind: tokSemi, pos: pos}, nil
	case c == '@':
		return token{kind: tokHere, pos: pos}, nil
	case c == '$':
		if s.peek() == '>' {
			s.advance()
			return token{kind: tokNextMark, pos: pos}, nil
		}
		return token{kind: tokMark, pos: pos}, nil
	case c == '<':
		switch s.peek() {
		case '$':
			s.advance()
			return token{kind: tokPrevMark, pos: pos}, nil
		case '<':
			s.advance()
			return token{kind: tokOp, text: "<<", pos: pos}, nil
		}
		return token{}, syntaxErrorf(pos, "unexpected character %q", c)
	case c == '>':
		if s.peek() == '>' {
			s.advance()
			return token{kind: tokOp, text: ">>", pos: pos}, nil
		}
		return token{}, syntaxErrorf(pos, "unexpected character %q", c)
	case c == '=':
		n := 1
		for s.peek() == '=' {
			s.advance()
			n++
		}
		if n < 3 {
			return token{}, syntaxErrorf(pos, "malformed separator")
		}
		return token{kind: tokSep, pos: pos}, nil
	case c == '+' || c == '*' || c == '/' || c == '^' || c == '|':
		return token{kind: tokOp, text: string(c), pos: pos}, nil
	case c == '&':
		if isIdentStart(s.peek()) {
			return token{kind: tokLabelRef, text: s.name(), pos: pos}, nil
		}
		return token{kind: tokOp, text: "&", pos: pos}, nil
	case c == '-':
		if isDigit(s.peek()) {
			return s.number(pos, true)
		}
		return token{kind: tokOp, text: "-", pos: pos}, nil
	case c == '!':
		if !isIdentStart(s.peek()) {
			return token{}, syntaxErrorf(pos, "malformed definition reference")
		}
		return token{kind: tokDefRef, text: s.name(), pos: pos}, nil
	case c == '#':
		if !isIdentStart(s.peek()) {
			return token{}, syntaxErrorf(pos, "malformed directive")
		}
		return token{kind: tokDirective, text: s.name(), pos: pos}, nil
	case c == '`':
		if !isIdentStart(s.peek()) {
			return token{}, syntaxErrorf(pos, "malformed opcode quote")
		}
		return token{kind: tokQuote, text: s.name(), pos: pos}, nil
	case c == ':':
		if !isIdentStart(s.peek()) {
			return token{}, syntaxErrorf(pos, "malformed label")
		}
		return token{kind: tokLabel, text: s.name(), pos: pos}, nil
	case c == '\'':
		return s.char(pos)
	case isDigit(c):
		s.off--
		s.col--
		return s.number(pos, false)
	case isIdentStart(c):
		if (c == 'r' || c == 'c' || c == 's') && s.peek() == '"' {
			return s.str(pos, c)
		}
		s.off--
		s.col--
		return token{kind: tokIdent, text: s.name(), pos: pos}, nil
	}
	return token{}, syntaxErrorf(pos, "unexpected character %q", c)
}

func (s *scanner) number(pos Pos, neg bool) (token, error) {
	start := s.off
	if s.peek() == '0' && (s.peek2() == 'x' || s.peek2() == 'X') {
		s.advance()
		s.advance()
		digits := s.off
		for s.off < len(s.src) && isHexDigit(s.peek()) {
			s.advance()
		}
		if s.off == digits {
			return token{}, syntaxErrorf(pos, "malformed hex literal")
		}
		v, err := strconv.ParseUint(string(s.src[digits:s.off]), 16, 32)
		if err != nil {
			return token{}, syntaxErrorf(pos, "hex literal out of range")
		}
		n := int64(v)
		if neg {
			n = -n
		}
		return token{kind: tokNumber, num: n, pos: pos}, nil
	}
	for s.off < len(s.src) && isDigit(s.peek()) {
		s.advance()
	}
	v, err := strconv.ParseInt(string(s.src[start:s.off]), 10, 64)
	if err != nil {
		return token{}, syntaxErrorf(pos, "decimal literal out of range")
	}
	if neg {
		v = -v
	}
	return token{kind: tokNumber, num: v, pos: pos}, nil
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (s *scanner) escape(pos Pos, quote byte) (byte, error) {
	if s.off >= len(s.src) {
		return 0, syntaxErrorf(pos, "unterminated escape sequence")
	}
	switch c := s.advance(); c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case '0':
		return 0, nil
	case '\\', quote:
		return c, nil
	default:
		return 0, syntaxErrorf(pos, "invalid escape sequence \\%c", c)
	}
}

func (s *scanner) char(pos Pos) (token, error) {
	if s.off >= len(s.src) {
		return token{}, syntaxErrorf(pos, "unterminated character literal")
	}
	c := s.advance()
	if c == '\n' {
		return token{}, syntaxErrorf(pos, "unterminated character literal")
	}
	if c == '\\' {
		var err error
		if c, err = s.escape(pos, '\''); err != nil {
			return token{}, err
		}
	}
	if s.off >= len(s.src) || s.advance() != '\'' {
		return token{}, syntaxErrorf(pos, "unterminated character literal")
	}
	return token{kind: tokNumber, num: int64(c), pos: pos}, nil
}

func (s *scanner) str(pos Pos, tag byte) (token, error) {
	s.advance() // opening quote
	var body []byte
	for {
		if s.off >= len(s.src) || s.peek() == '\n' {
			return token{}, syntaxErrorf(pos, "unterminated string literal")
		}
		c := s.advance()
		if c == '"' {
			return token{kind: tokString, text: string(body), tag: tag, pos: pos}, nil
		}
		if c == '\\' {
			var err error
			if c, err = s.escape(pos, '"'); err != nil {
				return token{}, err
			}
		}
		body = append(body, c)
	}
}
