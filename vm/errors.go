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

	"github.com/pkg/errors"
)

// Fault kinds. A Fault returned by Run or Step wraps exactly one of these,
// so callers can discriminate with errors.Is or errors.Cause.
var (
	ErrDataUnderflow    = errors.New("data stack underflow")
	ErrDataOverflow     = errors.New("data stack overflow")
	ErrAddressUnderflow = errors.New("address stack underflow")
	ErrAddressOverflow  = errors.New("address stack overflow")
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrOutOfBounds      = errors.New("out of bounds memory access")
	ErrUnknownDevice    = errors.New("io to unknown device")
	ErrDivideByZero     = errors.New("division by zero")
)

// Fault is a fatal execution error. It carries the machine state needed to
// diagnose the failure: the byte address of the faulting instruction, the
// opcode, and the stack depths at the time of the fault.
type Fault struct {
	Kind  error
	IP    int
	Op    OpCode
	Depth int // data stack depth
	RSize int // address stack depth
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%v: ip=%d op=%s data=%d addr=%d", f.Kind, f.IP, f.Op, f.Depth, f.RSize)
}

// Cause implements the causer interface used by github.com/pkg/errors.
func (f *Fault) Cause() error { return f.Kind }

// Unwrap makes Fault work with errors.Is.
func (f *Fault) Unwrap() error { return f.Kind }
