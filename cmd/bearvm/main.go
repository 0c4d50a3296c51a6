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

// Command bearvm runs bear memory images.
//
// The console is wired as two stream devices: output at id 1, input at
// id 2. With --monitor the machine starts under an interactive debugger
// instead of running to completion.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/jackolantern/bear/vm"
	"github.com/spf13/cobra"
)

var (
	noRawIO    bool
	monitor    bool
	trace      bool
	memSize    int
	coreFile   string
	inFileName string
	outName    string
)

const (
	consoleOutID = vm.Cell(1)
	consoleInID  = vm.Cell(2)
)

func traceFn(w io.Writer) func(i *vm.Instance, op vm.OpCode) {
	return func(i *vm.Instance, op vm.OpCode) {
		fmt.Fprintf(w, "%6d %-8v %v %v\n", i.IP(), op, i.Data(), i.Address())
	}
}

var rootCmd = &cobra.Command{
	Use:   "bearvm <image>",
	Short: "run a bear memory image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		img, err := vm.LoadImage(args[0])
		if err != nil {
			return err
		}

		var input io.Reader = os.Stdin
		if inFileName != "" {
			f, err := os.Open(inFileName)
			if err != nil {
				return err
			}
			defer f.Close()
			input = f
		}
		var out io.Writer = os.Stdout
		if outName != "" {
			f, err := os.Create(outName)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		output := bufio.NewWriter(out)
		defer output.Flush()

		opts := []vm.Option{
			vm.MemSize(memSize),
			vm.WithDevice(consoleOutID, vm.NewOutputDevice(output)),
			vm.WithDevice(consoleInID, vm.NewInputDevice(input)),
		}
		if trace {
			opts = append(opts, vm.Trace(traceFn(os.Stderr)))
		}
		i, err := vm.New(img, opts...)
		if err != nil {
			return err
		}

		if monitor {
			return runMonitor(i, args[0])
		}

		if !noRawIO && inFileName == "" {
			if restore, err := setRawIO(); err == nil {
				defer restore()
			}
		}

		if err = i.Run(); err != nil {
			if coreFile != "" {
				if derr := vm.SaveImage(coreFile, i.Mem); derr == nil {
					fmt.Fprintln(os.Stderr, "core dumped to", coreFile)
				}
			}
			return err
		}
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&noRawIO, "noraw", false, "do not put the terminal in raw mode")
	f.BoolVar(&monitor, "monitor", false, "start under the interactive monitor")
	f.BoolVar(&trace, "debug", false, "trace every instruction to stderr")
	f.IntVar(&memSize, "size", vm.DefaultMemSize, "memory size in bytes")
	f.StringVar(&coreFile, "core", "core.bin", "file to dump memory to on a fault, empty disables")
	f.StringVar(&inFileName, "stdin", "", "read console input from a file")
	f.StringVar(&outName, "stdout", "", "write console output to a file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
