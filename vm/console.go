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

import "io"

// Type tags reported by the built-in stream devices.
const (
	TypeConsoleOutput Cell = 1
	TypeConsoleInput  Cell = 2
)

// OutputDevice writes bytes to an io.Writer, one byte per exec:write
// command. All other commands fail.
type OutputDevice struct {
	w io.Writer
}

// NewOutputDevice returns an OutputDevice writing to w.
func NewOutputDevice(w io.Writer) *OutputDevice {
	return &OutputDevice{w: w}
}

func (d *OutputDevice) TypeTag() Cell { return TypeConsoleOutput }

func (d *OutputDevice) Ioctl(cmd Cell) Cell {
	c, ok := DecodeCommand(cmd)
	if !ok {
		return DeviceFailure
	}
	switch c.Tag {
	case TagReset:
		return DeviceSuccess
	case TagExec:
		if c.Command != StreamWrite {
			return DeviceFailure
		}
		if _, err := d.w.Write([]byte{byte(c.Argument)}); err != nil {
			return DeviceFailure
		}
		return DeviceSuccess
	}
	return DeviceFailure
}

// InputDevice reads bytes from an io.Reader, one byte per exec:read
// command. End of input and read errors both report failure.
type InputDevice struct {
	r io.Reader
}

// NewInputDevice returns an InputDevice reading from r.
func NewInputDevice(r io.Reader) *InputDevice {
	return &InputDevice{r: r}
}

func (d *InputDevice) TypeTag() Cell { return TypeConsoleInput }

func (d *InputDevice) Ioctl(cmd Cell) Cell {
	c, ok := DecodeCommand(cmd)
	if !ok {
		return DeviceFailure
	}
	switch c.Tag {
	case TagReset:
		return DeviceSuccess
	case TagExec:
		if c.Command != StreamRead {
			return DeviceFailure
		}
		var b [1]byte
		if _, err := io.ReadFull(d.r, b[:]); err != nil {
			return DeviceFailure
		}
		return Cell(b[0])
	}
	return DeviceFailure
}
