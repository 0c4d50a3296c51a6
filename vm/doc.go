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

/*
Package vm implements the bear virtual machine.

The machine is a 32 bit stack machine with byte-addressable memory. Words
are little-endian and instructions are single bytes packed four per word,
with lit operands stored in the words following the instruction word. Two
stacks hold intermediate values: the data stack for operands and the
address stack for return addresses and values parked with push/pop.

Peripherals attach to an io bus. A program talks to a device by pushing the
device id and a command word and executing the io instruction; the device
id and its response come back on the stack. The bus answers at id 0 and
lets programs enumerate attached devices. Ids 1 to 16 are reserved for
system devices.

A minimal run looks like:

	img, err := vm.LoadImage("program.bin")
	if err != nil {
		// ...
	}
	i, err := vm.New(img,
		vm.WithDevice(1, vm.NewOutputDevice(os.Stdout)),
		vm.WithDevice(2, vm.NewInputDevice(os.Stdin)))
	if err != nil {
		// ...
	}
	err = i.Run()

Run returns nil when the program executes halt, and a *Fault describing the
machine state otherwise.
*/
package vm
