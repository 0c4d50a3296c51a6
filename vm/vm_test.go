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

package vm_test

import (
	"strings"
	"testing"

	"github.com/jackolantern/bear/asm"
	"github.com/jackolantern/bear/vm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFault(t *testing.T, code string, opts ...vm.Option) *vm.Fault {
	t.Helper()
	img, err := asm.Assemble("test", strings.NewReader(code))
	require.NoError(t, err)
	i, err := vm.New(img, opts...)
	require.NoError(t, err)
	err = i.Run()
	require.Error(t, err)
	f, ok := err.(*vm.Fault)
	require.True(t, ok, "expected a *vm.Fault, got %T", err)
	assert.True(t, i.Halted())
	return f
}

func TestFaults(t *testing.T) {
	var faultTests = [...]struct {
		name string
		code string
		kind error
	}{
		{"data_underflow", "drop halt nop nop", vm.ErrDataUnderflow},
		{"data_underflow_binary", "lit add halt nop\nd32 1", vm.ErrDataUnderflow},
		{"address_underflow", "pop halt nop nop", vm.ErrAddressUnderflow},
		{"ret_underflow", "ret nop nop nop", vm.ErrAddressUnderflow},
		{"load_oob", "lit load halt nop\nd32 0x100000", vm.ErrOutOfBounds},
		{"store_oob", "lit lit store halt\nd32 0x100000\nd32 1", vm.ErrOutOfBounds},
		{"unknown_device", "lit lit io halt\nd32 9\nd32 0", vm.ErrUnknownDevice},
		{"div_by_zero", "lit lit div halt\nd32 0\nd32 1", vm.ErrDivideByZero},
	}
	for _, tt := range faultTests {
		t.Run(tt.name, func(t *testing.T) {
			f := runFault(t, tt.code)
			assert.ErrorIs(t, f, tt.kind)
			assert.Equal(t, tt.kind, errors.Cause(f))
		})
	}
}

func TestFaultState(t *testing.T) {
	f := runFault(t, "lit drop drop halt\nd32 1")
	assert.ErrorIs(t, f, vm.ErrDataUnderflow)
	assert.Equal(t, 2, f.IP)
	assert.Equal(t, vm.OpDrop, f.Op)
	assert.Equal(t, 0, f.Depth)
	assert.Equal(t, 0, f.RSize)
	assert.Contains(t, f.Error(), "underflow")
}

func TestInvalidOpcode(t *testing.T) {
	i, err := vm.New([]byte{0x50, 0, 0, 0})
	require.NoError(t, err)
	err = i.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, vm.ErrInvalidOpcode)
	f := err.(*vm.Fault)
	assert.Equal(t, vm.OpCode(0x50), f.Op)
	assert.Equal(t, 0, f.IP)
}

// running past the last instruction faults instead of halting
func TestRunOffEnd(t *testing.T) {
	f := runFault(t, "nop nop nop nop", vm.MemSize(8))
	assert.ErrorIs(t, f, vm.ErrOutOfBounds)
}

func TestStackSizeOptions(t *testing.T) {
	f := runFault(t, "lit dup dup halt\nd32 1", vm.DataSize(2))
	assert.ErrorIs(t, f, vm.ErrDataOverflow)

	f = runFault(t, "lit push lit push\nd32 1\nd32 2\nlit push halt nop\nd32 3", vm.AddressSize(2))
	assert.ErrorIs(t, f, vm.ErrAddressOverflow)
}

func TestBadOptions(t *testing.T) {
	_, err := vm.New(nil, vm.DataSize(0))
	assert.Error(t, err)
	_, err = vm.New(nil, vm.MemSize(0))
	assert.Error(t, err)
	_, err = vm.New(nil, vm.MemSize(vm.MaxMemSize+4))
	assert.Error(t, err, "word indexes must fit the encoded instruction pointer")
	_, err = vm.New(make([]byte, vm.MaxMemSize+4))
	assert.Error(t, err, "an oversized image must not bypass the memory cap")
}

// memory grows to fit the image regardless of the requested size
func TestMemSizing(t *testing.T) {
	img := make([]byte, 4096)
	img[0] = byte(vm.OpHalt)
	i, err := vm.New(img, vm.MemSize(16))
	require.NoError(t, err)
	assert.Equal(t, 4096, len(i.Mem))
	assert.Equal(t, 4096, i.ImageLen())
	require.NoError(t, i.Run())
}

func TestStepAndTrace(t *testing.T) {
	img, err := asm.Assemble("test", strings.NewReader("lit lit add halt\nd32 7\nd32 2"))
	require.NoError(t, err)
	var ops []vm.OpCode
	i, err := vm.New(img, vm.Trace(func(i *vm.Instance, op vm.OpCode) {
		ops = append(ops, op)
	}))
	require.NoError(t, err)
	for !i.Halted() {
		require.NoError(t, i.Step())
	}
	assert.Equal(t, []vm.OpCode{vm.OpLit, vm.OpLit, vm.OpAdd, vm.OpHalt}, ops)
	assert.Equal(t, int64(4), i.InstructionCount())
	assert.Equal(t, cells(9), i.Data())

	// stepping a halted machine is a no-op
	require.NoError(t, i.Step())
	assert.Equal(t, int64(4), i.InstructionCount())
}

func TestDump(t *testing.T) {
	i := runProgram(t, "lit push lit halt\nd32 7\nd32 -2")
	var buf strings.Builder
	require.NoError(t, i.Dump(&buf))
	assert.Contains(t, buf.String(), "data: -2")
	assert.Contains(t, buf.String(), "addr: 7")
}
