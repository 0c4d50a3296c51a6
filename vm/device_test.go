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

	"github.com/jackolantern/bear/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandEncoding(t *testing.T) {
	c, ok := vm.DecodeCommand(0x03000100)
	require.True(t, ok)
	assert.Equal(t, vm.TagExec, c.Tag)
	assert.Equal(t, vm.StreamWrite, c.Command)
	assert.Equal(t, vm.Cell(0), c.Argument)

	c, ok = vm.DecodeCommand(vm.Exec(vm.StreamWrite, 'x'))
	require.True(t, ok)
	assert.Equal(t, vm.Cell('x'), c.Argument)

	c, ok = vm.DecodeCommand(0x02051234)
	require.True(t, ok)
	assert.Equal(t, vm.TagSet, c.Tag)
	assert.Equal(t, vm.Cell(5), c.Register)
	assert.Equal(t, vm.Cell(0x1234), c.Value)
	assert.Equal(t, vm.Cell(0x02051234), c.Encode())

	c, ok = vm.DecodeCommand(0x01070000)
	require.True(t, ok)
	assert.Equal(t, vm.TagGet, c.Tag)
	assert.Equal(t, vm.Cell(7), c.Register)

	c, ok = vm.DecodeCommand(0)
	require.True(t, ok)
	assert.Equal(t, vm.TagReset, c.Tag)

	_, ok = vm.DecodeCommand(0x7F000000)
	assert.False(t, ok)

	// reset is the all-zero word only, a get keeps its low 16 bits clear
	_, ok = vm.DecodeCommand(0x00000001)
	assert.False(t, ok)
	_, ok = vm.DecodeCommand(0x01070001)
	assert.False(t, ok)
}

func TestBusRegister(t *testing.T) {
	b := vm.NewBus()
	d := vm.NewOutputDevice(&strings.Builder{})
	require.NoError(t, b.Register(1, d))
	assert.Error(t, b.Register(1, d), "duplicate id")
	assert.Error(t, b.Register(0, d), "bus id is reserved")

	_, err := b.Dispatch(9, 0)
	assert.ErrorIs(t, err, vm.ErrUnknownDevice)
}

// the bus device at id 0 enumerates the other devices in id order
func TestBusEnumeration(t *testing.T) {
	b := vm.NewBus()

	n, err := b.Dispatch(0, vm.Exec(0, 0))
	require.NoError(t, err)
	assert.Equal(t, vm.Cell(0), n, "empty bus")

	require.NoError(t, b.Register(5, vm.NewOutputDevice(&strings.Builder{})))
	require.NoError(t, b.Register(2, vm.NewInputDevice(strings.NewReader(""))))

	n, err = b.Dispatch(0, vm.Exec(0, 0))
	require.NoError(t, err)
	assert.Equal(t, vm.Cell(2), n)

	id, _ := b.Dispatch(0, vm.Exec(1, 0))
	assert.Equal(t, vm.Cell(2), id)
	id, _ = b.Dispatch(0, vm.Exec(1, 1))
	assert.Equal(t, vm.Cell(5), id)

	tag, _ := b.Dispatch(0, vm.Exec(2, 0))
	assert.Equal(t, vm.TypeConsoleInput, tag)
	tag, _ = b.Dispatch(0, vm.Exec(2, 1))
	assert.Equal(t, vm.TypeConsoleOutput, tag)

	out, _ := b.Dispatch(0, vm.Exec(1, 9))
	assert.Equal(t, vm.DeviceFailure, out, "index out of range")
}

func TestOutputDevice(t *testing.T) {
	var buf strings.Builder
	d := vm.NewOutputDevice(&buf)
	assert.Equal(t, vm.DeviceSuccess, d.Ioctl(vm.Exec(vm.StreamWrite, 'h')))
	assert.Equal(t, vm.DeviceSuccess, d.Ioctl(vm.Exec(vm.StreamWrite, 'i')))
	assert.Equal(t, "hi", buf.String())

	assert.Equal(t, vm.DeviceFailure, d.Ioctl(vm.Exec(vm.StreamRead, 0)))
	assert.Equal(t, vm.DeviceSuccess, d.Ioctl(0), "reset")
}

func TestInputDevice(t *testing.T) {
	d := vm.NewInputDevice(strings.NewReader("ab"))
	assert.Equal(t, vm.Cell('a'), d.Ioctl(vm.Exec(vm.StreamRead, 0)))
	assert.Equal(t, vm.Cell('b'), d.Ioctl(vm.Exec(vm.StreamRead, 0)))
	assert.Equal(t, vm.DeviceFailure, d.Ioctl(vm.Exec(vm.StreamRead, 0)), "end of input")
	assert.Equal(t, vm.DeviceFailure, d.Ioctl(vm.Exec(vm.StreamWrite, 'x')))
}

// io pushes the device id back under the response
func TestIoStackOrder(t *testing.T) {
	var buf strings.Builder
	i := runProgram(t, "lit lit io halt\nd32 1\nd32 (3 << 24) | (1 << 8) | 'x'",
		vm.WithDevice(1, vm.NewOutputDevice(&buf)))
	assert.Equal(t, cells(1, 0), i.Data())
	assert.Equal(t, "x", buf.String())
}

// a device that mirrors stack writes into memory via DMA
type dmaProbe struct {
	pending []vm.DMARequest
	got     []vm.Cell
}

func (d *dmaProbe) TypeTag() vm.Cell { return 99 }

func (d *dmaProbe) Ioctl(cmd vm.Cell) vm.Cell {
	c, ok := vm.DecodeCommand(cmd)
	if !ok || c.Tag != vm.TagExec {
		return vm.DeviceFailure
	}
	switch c.Command {
	case 0: // read word at argument
		d.pending = append(d.pending, vm.DMARequest{Addr: c.Argument})
	case 1: // write argument value at address 8
		d.pending = append(d.pending, vm.DMARequest{Write: true, Addr: 8, Value: c.Argument})
	}
	return vm.DeviceSuccess
}

func (d *dmaProbe) Poll() (vm.DMARequest, bool) {
	if len(d.pending) == 0 {
		return vm.DMARequest{}, false
	}
	r := d.pending[0]
	d.pending = d.pending[1:]
	return r, true
}

func (d *dmaProbe) ReadDone(addr, v vm.Cell) { d.got = append(d.got, v) }
func (d *dmaProbe) WriteDone(addr vm.Cell)   {}

func TestDMADevice(t *testing.T) {
	probe := &dmaProbe{}
	i := runProgram(t, "lit lit io halt\nd32 17\nd32 (3 << 24) | (1 << 8) | 42\n$ d32 0",
		vm.WithDevice(17, probe))
	assert.Equal(t, cells(17, 0), i.Data())
	v, err := i.Mem.Word(8)
	require.NoError(t, err)
	assert.Equal(t, vm.Cell(42), v)
}
