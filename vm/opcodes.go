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

package vm

import "fmt"

// OpCode is a bear instruction. Instructions are one byte wide and packed
// four per memory word.
type OpCode byte

// Instruction set. The values are part of the image format and must not
// change.
const (
	OpNop OpCode = iota
	OpLit
	OpDup
	OpDrop
	OpSwap
	OpPush
	OpPop
	OpNot
	OpAnd
	OpOr
	OpXor
	OpEq
	OpLt
	OpGt
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShift
	OpSext8
	OpSext16
	OpCall
	OpJump
	OpRet
	OpIfzCall
	OpIfzJump
	OpIfzRet
	OpLoad
	OpLoads
	OpStore
	OpStores
	OpLoad8
	OpStore8
	OpLoads8
	OpStores8
	OpIo

	OpHalt OpCode = 0x7F
)

var opNames = map[OpCode]string{
	OpNop:     "nop",
	OpLit:     "lit",
	OpDup:     "dup",
	OpDrop:    "drop",
	OpSwap:    "swap",
	OpPush:    "push",
	OpPop:     "pop",
	OpNot:     "not",
	OpAnd:     "and",
	OpOr:      "or",
	OpXor:     "xor",
	OpEq:      "eq",
	OpLt:      "lt",
	OpGt:      "gt",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpMod:     "mod",
	OpShift:   "shift",
	OpSext8:   "sext.8",
	OpSext16:  "sext.16",
	OpCall:    "call",
	OpJump:    "jump",
	OpRet:     "ret",
	OpIfzCall: "ifz:call",
	OpIfzJump: "ifz:jump",
	OpIfzRet:  "ifz:ret",
	OpLoad:    "load",
	OpLoads:   "loads",
	OpStore:   "store",
	OpStores:  "stores",
	OpLoad8:   "load.8",
	OpStore8:  "store.8",
	OpLoads8:  "loads.8",
	OpStores8: "stores.8",
	OpIo:      "io",
	OpHalt:    "halt",
}

var opIndex map[string]OpCode

func init() {
	opIndex = make(map[string]OpCode, len(opNames))
	for op, name := range opNames {
		opIndex[name] = op
	}
}

// Valid reports whether o is a defined instruction.
func (o OpCode) Valid() bool {
	_, ok := opNames[o]
	return ok
}

func (o OpCode) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%#02x)", byte(o))
}

// ParseOpCode returns the instruction named by s.
func ParseOpCode(s string) (OpCode, bool) {
	op, ok := opIndex[s]
	return op, ok
}
