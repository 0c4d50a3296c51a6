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

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jackolantern/bear/asm"
	"github.com/jackolantern/bear/vm"
	"github.com/peterh/liner"
)

func color(code, s string) string { return "\x1b[" + code + "m" + s + "\x1b[0m" }
func green(s string) string       { return color("32", s) }
func red(s string) string         { return color("31", s) }
func yellow(s string) string      { return color("33", s) }

const monitorHelp = `commands:
  s [n]        step n instructions (default 1)
  r            run until halt or fault
  d            dump machine state
  x addr [n]   hex dump n bytes of memory (default 64)
  u [word]     disassemble one instruction word (default: current)
  l            list labels from the .debug sidecar
  q            quit
`

// runMonitor drives the machine interactively. If a .debug sidecar sits
// next to the image its labels annotate the status line.
func runMonitor(i *vm.Instance, imagePath string) error {
	var dbg *asm.DebugInfo
	if f, err := os.Open(imagePath + ".debug"); err == nil {
		dbg, _ = asm.ReadDebugInfo(f)
		f.Close()
	}

	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	status(i, dbg)
	for {
		in, err := rl.Prompt(green("bear> "))
		if err != nil {
			fmt.Println()
			return nil
		}
		in = strings.TrimSpace(in)
		if in == "" {
			continue
		}
		rl.AppendHistory(in)
		args := strings.Fields(in)
		switch args[0] {
		case "q", "quit", "exit":
			return nil
		case "h", "help", "?":
			fmt.Print(monitorHelp)
		case "s", "step":
			n := 1
			if len(args) > 1 {
				if n, err = atoi(args[1]); err != nil {
					fmt.Println(red(err.Error()))
					continue
				}
			}
			for ; n > 0 && !i.Halted(); n-- {
				if err = i.Step(); err != nil {
					fmt.Println(red(err.Error()))
					break
				}
			}
			status(i, dbg)
		case "r", "run":
			if err = i.Run(); err != nil {
				fmt.Println(red(err.Error()))
			}
			status(i, dbg)
		case "d", "dump":
			if err = i.Dump(os.Stdout); err != nil {
				fmt.Println(red(err.Error()))
			}
		case "x":
			if len(args) < 2 {
				fmt.Println(red("x needs an address"))
				continue
			}
			addr, err := atoi(args[1])
			if err != nil {
				fmt.Println(red(err.Error()))
				continue
			}
			n := 64
			if len(args) > 2 {
				if n, err = atoi(args[2]); err != nil {
					fmt.Println(red(err.Error()))
					continue
				}
			}
			hexDump(i.Mem, addr, n)
		case "u":
			w := i.IP() / vm.CellBytes
			if len(args) > 1 {
				if w, err = atoi(args[1]); err != nil {
					fmt.Println(red(err.Error()))
					continue
				}
			}
			if _, err = asm.Disassemble(i.Mem, w, os.Stdout); err != nil {
				fmt.Println(red(err.Error()))
			}
		case "l", "labels":
			if dbg == nil {
				fmt.Println(yellow("no debug info loaded"))
				continue
			}
			for _, e := range dbg.Entries {
				for _, name := range e.Names {
					fmt.Printf("%6d %s\n", e.Address, name)
				}
			}
		default:
			fmt.Println(red("unknown command, try help"))
		}
	}
}

func atoi(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	return int(n), err
}

func status(i *vm.Instance, dbg *asm.DebugInfo) {
	ip := i.IP()
	var op vm.OpCode
	if ip < len(i.Mem) {
		op = vm.OpCode(i.Mem[ip])
	}
	loc := ""
	if dbg != nil {
		if names := dbg.NameAt(ip); len(names) > 0 {
			loc = yellow(" <" + strings.Join(names, ",") + ">")
		}
	}
	state := "running"
	if i.Halted() {
		state = red("halted")
	}
	fmt.Printf("%s ip=%d%s op=%v data=%v addr=%v\n", state, ip, loc, op, i.Data(), i.Address())
}

func hexDump(mem vm.Memory, addr, n int) {
	if addr < 0 {
		addr = 0
	}
	for ; n > 0 && addr < len(mem); addr += 16 {
		end := addr + 16
		if end > len(mem) {
			end = len(mem)
		}
		fmt.Printf("%6d ", addr)
		for k := addr; k < end; k++ {
			fmt.Printf(" %02x", mem[k])
		}
		fmt.Println()
		n -= 16
	}
}
