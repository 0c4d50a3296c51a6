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

// Cell is the bear machine word: 32 bits, little-endian in memory.
// Arithmetic wraps modulo 2^32, comparisons other than lt/gt's signedness
// rules are defined on the raw bit pattern.
type Cell uint32

// CellBytes is the size of a Cell in memory.
const CellBytes = 4

// cellTrue and cellFalse are the canonical comparison results.
const (
	cellTrue  = ^Cell(0)
	cellFalse = Cell(0)
)

// Signed returns c reinterpreted as a two's complement signed integer.
func (c Cell) Signed() int32 { return int32(c) }

func cellBool(b bool) Cell {
	if b {
		return cellTrue
	}
	return cellFalse
}

// sext8 sign-extends the low byte of c if c fits in 8 bits unsigned,
// otherwise it returns c unchanged.
func sext8(c Cell) Cell {
	if c > 0xFF {
		return c
	}
	return Cell(int32(int8(c)))
}

// sext16 sign-extends the low half-word of c if c fits in 16 bits unsigned,
// otherwise it returns c unchanged.
func sext16(c Cell) Cell {
	if c > 0xFFFF {
		return c
	}
	return Cell(int32(int16(c)))
}
