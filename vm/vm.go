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
	"fmt"
	"io"

	"github.com/jackolantern/bear/internal/bio"
	"github.com/pkg/errors"
)

// Default machine geometry. Memory is capped at 128 KiB: word indexes are
// packed into 15 bit fields of the encoded instruction pointer, so larger
// memories could not be addressed by call and ret.
const (
	DefaultDataSize    = 1024
	DefaultAddressSize = 1024
	DefaultMemSize     = 1 << 16
	MaxMemSize         = 1 << 17
)

// Instance represents a bear virtual machine.
type Instance struct {
	// Mem is the machine memory. The loaded image starts at address 0.
	Mem Memory

	// instruction pointer: the word instructions are fetched from, the
	// word lit operands are consumed after, and the byte offset within
	// the fetch word.
	loadedWord  int
	currentWord int
	instIndex   int

	data    []Cell
	address []Cell
	sp, rsp int

	bus      *Bus
	dma      []DMADevice
	running  bool
	insCount int64
	trace    func(i *Instance, op OpCode)

	// requested sizes, consumed by New
	dataSize, addressSize, memSize int
	imageLen                       int
}

// Option is a function option for New.
type Option func(*Instance) error

// DataSize sets the data stack capacity.
func DataSize(size int) Option {
	return func(i *Instance) error {
		if size < 1 {
			return errors.Errorf("invalid data stack size %d", size)
		}
		i.dataSize = size
		return nil
	}
}

// AddressSize sets the address stack capacity.
func AddressSize(size int) Option {
	return func(i *Instance) error {
		if size < 1 {
			return errors.Errorf("invalid address stack size %d", size)
		}
		i.addressSize = size
		return nil
	}
}

// MemSize sets the memory size in bytes. The size is rounded up to a whole
// number of words and grown to fit the image if needed.
func MemSize(size int) Option {
	return func(i *Instance) error {
		if size < CellBytes || size > MaxMemSize {
			return errors.Errorf("invalid memory size %d", size)
		}
		i.memSize = size
		return nil
	}
}

// WithDevice attaches d to the io bus at the given id.
func WithDevice(id Cell, d Device) Option {
	return func(i *Instance) error {
		return errors.Wrap(i.bus.Register(id, d), "device setup failed")
	}
}

// Trace installs a hook called before every instruction with the decoded
// opcode. Meant for debuggers, nil disables it.
func Trace(fn func(i *Instance, op OpCode)) Option {
	return func(i *Instance) error {
		i.trace = fn
		return nil
	}
}

// New creates a new Instance with the given memory image loaded at address
// 0. Execution starts at address 0.
func New(image []byte, opts ...Option) (*Instance, error) {
	i := &Instance{
		sp:          -1,
		rsp:         -1,
		bus:         NewBus(),
		running:     true,
		dataSize:    DefaultDataSize,
		addressSize: DefaultAddressSize,
		memSize:     DefaultMemSize,
		imageLen:    len(image),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	size := i.memSize
	if size < len(image) {
		size = len(image)
	}
	if size > MaxMemSize {
		return nil, errors.Errorf("image of %d bytes exceeds the maximum memory size %d", len(image), MaxMemSize)
	}
	if r := size % CellBytes; r != 0 {
		size += CellBytes - r
	}
	i.Mem = make(Memory, size)
	copy(i.Mem, image)
	i.data = make([]Cell, i.dataSize)
	i.address = make([]Cell, i.addressSize)
	for _, id := range i.bus.ids {
		if d, ok := i.bus.devices[id].(DMADevice); ok {
			i.dma = append(i.dma, d)
		}
	}
	return i, nil
}

// Bus returns the io bus.
func (i *Instance) Bus() *Bus { return i.bus }

// Data returns the data stack, bottom first. The returned slice aliases the
// live stack and is only valid until the next instruction.
func (i *Instance) Data() []Cell {
	if i.sp < 0 {
		return nil
	}
	return i.data[:i.sp+1]
}

// Address returns the address stack, bottom first. Same aliasing rules as
// Data.
func (i *Instance) Address() []Cell {
	if i.rsp < 0 {
		return nil
	}
	return i.address[:i.rsp+1]
}

// Depth returns the data stack depth.
func (i *Instance) Depth() int { return i.sp + 1 }

// RSize returns the address stack depth.
func (i *Instance) RSize() int { return i.rsp + 1 }

// IP returns the byte address of the current instruction.
func (i *Instance) IP() int { return i.loadedWord*CellBytes + i.instIndex }

// IPState returns the raw instruction pointer: the word instructions are
// being fetched from, the word the next lit operand follows, and the byte
// index of the current instruction within the fetch word.
func (i *Instance) IPState() (loaded, current, index int) {
	return i.loadedWord, i.currentWord, i.instIndex
}

// Halted reports whether the machine has executed halt or faulted.
func (i *Instance) Halted() bool { return !i.running }

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 { return i.insCount }

// ImageLen returns the length in bytes of the image the machine was created
// with.
func (i *Instance) ImageLen() int { return i.imageLen }

// Push pushes v on the data stack.
func (i *Instance) Push(v Cell) error {
	if i.sp+1 >= len(i.data) {
		return ErrDataOverflow
	}
	i.sp++
	i.data[i.sp] = v
	return nil
}

// Pop pops the data stack.
func (i *Instance) Pop() (Cell, error) {
	if i.sp < 0 {
		return 0, ErrDataUnderflow
	}
	v := i.data[i.sp]
	i.sp--
	return v, nil
}

// Rpush pushes v on the address stack.
func (i *Instance) Rpush(v Cell) error {
	if i.rsp+1 >= len(i.address) {
		return ErrAddressOverflow
	}
	i.rsp++
	i.address[i.rsp] = v
	return nil
}

// Rpop pops the address stack.
func (i *Instance) Rpop() (Cell, error) {
	if i.rsp < 0 {
		return 0, ErrAddressUnderflow
	}
	v := i.address[i.rsp]
	i.rsp--
	return v, nil
}

// Dump writes a human readable dump of the machine state: instruction
// pointer, stacks and instruction count.
func (i *Instance) Dump(w io.Writer) error {
	ew := bio.NewWriter(w)
	fmt.Fprintf(ew, "ip %d (word %d, index %d, current %d), %d instructions\n",
		i.IP(), i.loadedWord, i.instIndex, i.currentWord, i.insCount)
	fmt.Fprint(ew, "data:")
	for _, v := range i.Data() {
		fmt.Fprintf(ew, " %d", v.Signed())
	}
	fmt.Fprint(ew, "\naddr:")
	for _, v := range i.Address() {
		fmt.Fprintf(ew, " %d", v.Signed())
	}
	fmt.Fprintln(ew)
	return errors.Wrap(ew.Err(), "dump failed")
}
