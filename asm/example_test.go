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

package asm_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/jackolantern/bear/asm"
)

func ExampleDisassembleAll() {
	img, err := asm.Assemble("demo", strings.NewReader(`
		lit jump nop nop
		d32 8
		halt nop nop nop
	`))
	if err != nil {
		fmt.Println(err)
		return
	}
	asm.DisassembleAll(img, os.Stdout)

	// Output:
	//      0  lit(8) jump nop nop
	//      8  halt nop nop nop
}
