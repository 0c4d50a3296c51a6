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
	"fmt"
	"strings"

	"github.com/jackolantern/bear/asm"
	"github.com/jackolantern/bear/vm"
)

// Assemble a small program and run it to completion.
func ExampleInstance_Run() {
	img, err := asm.Assemble("square", strings.NewReader(`
		lit dup mul halt
		d32 7
	`))
	if err != nil {
		panic(err)
	}
	i, err := vm.New(img)
	if err != nil {
		panic(err)
	}
	if err = i.Run(); err != nil {
		panic(err)
	}
	fmt.Println(i.Data())

	// Output:
	// [49]
}

// Wire a custom device to the io bus. The program sends one exec command
// with argument 3 to device 7 and leaves the response on the stack.
func ExampleWithDevice() {
	img, err := asm.Assemble("dev", strings.NewReader(`
		lit lit io halt
		d32 7
		d32 (3 << 24) | 3
	`))
	if err != nil {
		panic(err)
	}
	i, err := vm.New(img, vm.WithDevice(7, doubler{}))
	if err != nil {
		panic(err)
	}
	if err = i.Run(); err != nil {
		panic(err)
	}
	fmt.Println(i.Data())

	// Output:
	// [7 6]
}

// doubler answers every exec command with twice its argument.
type doubler struct{}

func (doubler) TypeTag() vm.Cell { return 42 }

func (doubler) Ioctl(cmd vm.Cell) vm.Cell {
	c, ok := vm.DecodeCommand(cmd)
	if !ok || c.Tag != vm.TagExec {
		return vm.DeviceFailure
	}
	return c.Argument * 2
}
