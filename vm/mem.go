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

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Memory is the byte-addressable machine memory. Words are little-endian
// and may be read or written at any byte address.
type Memory []byte

// Word reads the 32 bit word at byte address addr.
func (m Memory) Word(addr Cell) (Cell, error) {
	a := int(addr)
	if a < 0 || a+CellBytes > len(m) {
		return 0, ErrOutOfBounds
	}
	return Cell(binary.LittleEndian.Uint32(m[a:])), nil
}

// SetWord writes the 32 bit word v at byte address addr.
func (m Memory) SetWord(addr, v Cell) error {
	a := int(addr)
	if a < 0 || a+CellBytes > len(m) {
		return ErrOutOfBounds
	}
	binary.LittleEndian.PutUint32(m[a:], uint32(v))
	return nil
}

// Byte reads the byte at addr.
func (m Memory) Byte(addr Cell) (byte, error) {
	a := int(addr)
	if a < 0 || a >= len(m) {
		return 0, ErrOutOfBounds
	}
	return m[a], nil
}

// SetByte writes the low byte of v at addr.
func (m Memory) SetByte(addr, v Cell) error {
	a := int(addr)
	if a < 0 || a >= len(m) {
		return ErrOutOfBounds
	}
	m[a] = byte(v)
	return nil
}

// LoadImage reads a memory image from fileName.
func LoadImage(fileName string) ([]byte, error) {
	img, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "image read failed")
	}
	return img, nil
}

// SaveImage writes mem to fileName.
func SaveImage(fileName string, mem []byte) error {
	return errors.Wrap(os.WriteFile(fileName, mem, 0666), "image write failed")
}
