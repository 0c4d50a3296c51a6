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
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jackolantern/bear/internal/bio"
	"github.com/jackolantern/bear/vm"
	"github.com/pkg/errors"
)

// Assemble reads assembly source from r and returns the encoded memory
// image. The name is used in error messages. Include paths resolve against
// the current directory, use AssembleFile to resolve them against the
// source file instead.
func Assemble(name string, r io.Reader) ([]byte, error) {
	p, err := Parse(name, r)
	if err != nil {
		return nil, err
	}
	a, err := Process(p)
	if err != nil {
		return nil, err
	}
	return a.Image, nil
}

// AssembleFile assembles the source file at path. Include paths resolve
// against the file's directory.
func AssembleFile(path string) (*Assembly, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "assembly failed")
	}
	defer f.Close()
	p, err := Parse(path, f)
	if err != nil {
		return nil, err
	}
	return Process(p, IncludeDir(filepath.Dir(path)))
}

// Disassemble writes a listing of the instruction word at word index pc,
// with lit operand values shown inline, and returns the index of the word
// following the last operand.
func Disassemble(img []byte, pc int, w io.Writer) (int, error) {
	base := pc * 4
	if base < 0 || base+4 > len(img) {
		return pc, errors.Errorf("word %d out of range", pc)
	}
	ew := bio.NewWriter(w)
	fmt.Fprintf(ew, "%6d ", base)
	operand := pc
	for n := 0; n < 4; n++ {
		op := vm.OpCode(img[base+n])
		if !op.Valid() {
			fmt.Fprintf(ew, " %#02x", byte(op))
			continue
		}
		if op == vm.OpLit {
			operand++
			if o := operand * 4; o+4 <= len(img) {
				fmt.Fprintf(ew, " lit(%d)", int32(binary.LittleEndian.Uint32(img[o:])))
			} else {
				fmt.Fprint(ew, " lit(?)")
			}
			continue
		}
		fmt.Fprintf(ew, " %v", op)
	}
	fmt.Fprintln(ew)
	return operand + 1, errors.Wrap(ew.Err(), "disassembly failed")
}

// DisassembleAll writes a listing of the whole image. Data regions come out
// as nonsense instructions, the listing is a debugging aid, not a decompiler.
func DisassembleAll(img []byte, w io.Writer) error {
	for pc := 0; (pc+1)*4 <= len(img); {
		next, err := Disassemble(img, pc, w)
		if err != nil {
			return err
		}
		pc = next
	}
	return nil
}
