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
	"sort"

	"github.com/pkg/errors"
)

// Device ids 1 to 16 are reserved for system devices. The bus device itself
// always answers at id 0.
const (
	BusDeviceID    Cell = 0
	MaxSystemID    Cell = 16
	DeviceFailure       = ^Cell(0)
	DeviceSuccess       = Cell(0)
)

// Command tags, stored in the high byte of a command word.
const (
	TagReset Cell = iota
	TagGet
	TagSet
	TagExec
)

// Stream commands understood by stream-oriented devices (consoles, files).
const (
	StreamRead Cell = iota
	StreamWrite
	StreamSeek
)

// Command is the decoded form of an io command word. The packed layout is
//
//	reset:   0x00000000
//	get:     0x01rr0000            rr = register
//	set:     0x02rrvvvv            vvvv = 16 bit value
//	exec:    0x03ccaa00 >> 8       cc = command, aa = argument
//
// that is tag<<24, with get/set addressing a register in bits 16-23 and exec
// carrying a command byte in bits 8-15 and an argument byte in bits 0-7.
type Command struct {
	Tag      Cell
	Register Cell // get, set
	Value    Cell // set: 16 bit immediate
	Command  Cell // exec
	Argument Cell // exec
}

// DecodeCommand unpacks a raw command word. It returns false for an
// undefined tag or a malformed word: reset is only the all-zero word, and
// a get must leave its low 16 bits clear.
func DecodeCommand(v Cell) (Command, bool) {
	c := Command{Tag: v >> 24}
	switch c.Tag {
	case TagReset:
		if v != 0 {
			return c, false
		}
	case TagGet:
		if v&0xFFFF != 0 {
			return c, false
		}
		c.Register = (v >> 16) & 0xFF
	case TagSet:
		c.Register = (v >> 16) & 0xFF
		c.Value = v & 0xFFFF
	case TagExec:
		c.Command = (v >> 8) & 0xFF
		c.Argument = v & 0xFF
	default:
		return c, false
	}
	return c, true
}

// Encode packs c back into a command word.
func (c Command) Encode() Cell {
	switch c.Tag {
	case TagGet:
		return TagGet<<24 | (c.Register&0xFF)<<16
	case TagSet:
		return TagSet<<24 | (c.Register&0xFF)<<16 | c.Value&0xFFFF
	case TagExec:
		return TagExec<<24 | (c.Command&0xFF)<<8 | c.Argument&0xFF
	}
	return TagReset << 24
}

// Exec builds an exec command word.
func Exec(command, argument Cell) Cell {
	return Command{Tag: TagExec, Command: command, Argument: argument}.Encode()
}

// Device is a peripheral attached to the io bus. Ioctl handles one raw
// command word and returns the device response. TypeTag identifies the kind
// of device to programs enumerating the bus.
type Device interface {
	Ioctl(cmd Cell) Cell
	TypeTag() Cell
}

// DMARequest is a memory access requested by a DMADevice between
// instructions.
type DMARequest struct {
	Write bool
	Addr  Cell
	Value Cell // write only
}

// DMADevice is a Device that can read and write machine memory directly.
// After each instruction the engine polls the device until it has no more
// pending requests, answering reads with ReadDone and acknowledging writes
// with WriteDone.
type DMADevice interface {
	Device
	Poll() (DMARequest, bool)
	ReadDone(addr, v Cell)
	WriteDone(addr Cell)
}

// Bus routes io commands to registered devices. A fresh Bus has a single
// built-in device at id 0 through which programs enumerate the others.
type Bus struct {
	devices map[Cell]Device
	ids     []Cell // registered ids, ascending, id 0 excluded
}

// NewBus returns a Bus with only the enumeration device attached.
func NewBus() *Bus {
	b := &Bus{devices: make(map[Cell]Device)}
	b.devices[BusDeviceID] = &busDevice{b}
	return b
}

// Register attaches d at id. Id 0 belongs to the bus itself and ids may not
// be reused.
func (b *Bus) Register(id Cell, d Device) error {
	if id == BusDeviceID {
		return errors.Errorf("device id %d is reserved for the bus", id)
	}
	if _, ok := b.devices[id]; ok {
		return errors.Errorf("device id %d already in use", id)
	}
	b.devices[id] = d
	b.ids = append(b.ids, id)
	sort.Slice(b.ids, func(i, j int) bool { return b.ids[i] < b.ids[j] })
	return nil
}

// Dispatch routes the command word cmd to device id.
func (b *Bus) Dispatch(id, cmd Cell) (Cell, error) {
	d, ok := b.devices[id]
	if !ok {
		return DeviceFailure, ErrUnknownDevice
	}
	return d.Ioctl(cmd), nil
}

// Devices returns the ids of registered devices in ascending order, not
// counting the bus device.
func (b *Bus) Devices() []Cell {
	ids := make([]Cell, len(b.ids))
	copy(ids, b.ids)
	return ids
}

// busDevice enumerates the bus it is attached to:
//
//	exec 0   -> number of attached devices
//	exec 1 n -> id of the n-th device
//	exec 2 n -> type tag of the n-th device
type busDevice struct {
	bus *Bus
}

func (d *busDevice) TypeTag() Cell { return 0 }

func (d *busDevice) Ioctl(cmd Cell) Cell {
	c, ok := DecodeCommand(cmd)
	if !ok {
		return DeviceFailure
	}
	switch c.Tag {
	case TagReset:
		return DeviceSuccess
	case TagExec:
		switch c.Command {
		case 0:
			return Cell(len(d.bus.ids))
		case 1:
			if n := int(c.Argument); n < len(d.bus.ids) {
				return d.bus.ids[n]
			}
		case 2:
			if n := int(c.Argument); n < len(d.bus.ids) {
				return d.bus.devices[d.bus.ids[n]].TypeTag()
			}
		}
	}
	return DeviceFailure
}
