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

/*
Package asm implements the bear assembler.

Source is a sequence of lines. A line is an optional mark ($), any number
of labels (:name) and a body: an instruction mnemonic, a data item
(d8/d16/d32 followed by an expression), a tagged string literal (r"raw",
c"C string", s"length-prefixed"), a definition reference (!name), or a
directive. Comments run from -- to the end of the line and a line of ===
pads the output to the next word boundary.

Directives are terminated by a semicolon:

	#at expr;          move the encode position forward to expr
	#align expr;       pad the encode position to a multiple of expr
	#include r"file";  splice another source file in place
	#define name ...;  name an expression or a list of line bodies

Expressions are right-leaning with no operator precedence; parentheses
group. Terms are numbers (decimal, 0x hex, 'c' characters), label
addresses (&name), definition values (!name), opcode values (`op), @ for
the current address, and $> and <$ for the next and previous mark.

Labels scope by their first segment: defining :main makes main the current
scope, :main:loop defines a label inside it, and a plain reference &loop
tries the current scope before the top level. A mark resets the scope.

Assembling is deterministic: a program referring to a label before its
definition encodes byte for byte the same as one referring after it.
*/
package asm
