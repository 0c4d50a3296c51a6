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

// Command bearasm assembles bear source files into memory images.
package main

import (
	"fmt"
	"os"

	"github.com/jackolantern/bear/asm"
	"github.com/jackolantern/bear/vm"
	"github.com/spf13/cobra"
)

var (
	debug   bool
	listing bool
)

var rootCmd = &cobra.Command{
	Use:   "bearasm <source> <image>",
	Short: "assemble a bear source file into a memory image",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		a, err := asm.AssembleFile(args[0])
		if err != nil {
			return err
		}
		if err = vm.SaveImage(args[1], a.Image); err != nil {
			return err
		}
		if debug {
			f, err := os.Create(args[1] + ".debug")
			if err != nil {
				return err
			}
			err = a.DebugInfo().Write(f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
		}
		if listing {
			return asm.DisassembleAll(a.Image, os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().BoolVar(&debug, "debug", false, "write a .debug sidecar next to the image")
	rootCmd.Flags().BoolVarP(&listing, "listing", "l", false, "print a disassembly of the image")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
