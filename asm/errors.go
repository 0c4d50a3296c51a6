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

// SyntaxError reports malformed source input.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: syntax error: %s", e.Pos, e.Msg)
}

func syntaxErrorf(pos Pos, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// UnresolvedError reports a reference to a label or definition that is
// never defined.
type UnresolvedError struct {
	Pos  Pos
	Name string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%v: unresolved symbol %q", e.Pos, e.Name)
}

// DuplicateLabelError reports a label or definition defined twice.
type DuplicateLabelError struct {
	Pos  Pos
	Prev Pos
	Name string
}

func (e *DuplicateLabelError) Error() string {
	return fmt.Sprintf("%v: duplicate label %q, first defined at %v", e.Pos, e.Name, e.Prev)
}

// WidthOverflowError reports a data value that does not fit its declared
// width.
type WidthOverflowError struct {
	Pos   Pos
	Bits  int
	Value int64
}

func (e *WidthOverflowError) Error() string {
	return fmt.Sprintf("%v: value %d does not fit in %d bits", e.Pos, e.Value, e.Bits)
}

// EvalError reports an expression that cannot be evaluated, such as a
// division by zero or a mark reference with no matching mark.
type EvalError struct {
	Pos Pos
	Msg string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("%v: %s", e.Pos, e.Msg)
}

func evalErrorf(pos Pos, format string, args ...interface{}) *EvalError {
	return &EvalError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
