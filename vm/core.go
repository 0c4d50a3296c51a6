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

// The instruction pointer is kept in three parts. loadedWord is the word
// instructions execute from, instIndex the byte offset of the current
// instruction inside it. currentWord tracks lit operands: each lit advances
// it and pushes the word it lands on, so several lits packed in one
// instruction word consume the words that follow it. Stepping past index 3
// resumes after the last consumed operand.
//
// Jumps take byte addresses but the increment at the end of each step runs
// unconditionally, so the jump primitives set the pointer one instruction
// short of the target.

func (i *Instance) ipEncode() Cell {
	return Cell(i.loadedWord<<17 | i.currentWord<<2 | i.instIndex)
}

func (i *Instance) ipSetEncoded(e Cell) {
	i.loadedWord = int(e >> 17)
	i.currentWord = int(e>>2) & 0x7FFF
	i.instIndex = int(e & 3)
}

func (i *Instance) ipInc() {
	if i.instIndex == 3 {
		i.currentWord++
		i.loadedWord = i.currentWord
		i.instIndex = 0
	} else {
		i.instIndex++
	}
}

// jumpByte aims the instruction pointer so that the step increment lands on
// the byte address t. Address 0 is the entry point, jumping back to it is
// not supported.
func (i *Instance) jumpByte(t Cell) {
	n := int(t)
	var w, idx int
	if n != 0 && n%CellBytes == 0 {
		w, idx = n/CellBytes-1, 3
	} else {
		w, idx = n/CellBytes, n%CellBytes-1
	}
	i.loadedWord = w
	i.currentWord = w
	i.instIndex = idx
}

// Run executes instructions until halt or a fault. It returns nil on halt
// and a *Fault otherwise.
func (i *Instance) Run() error {
	for i.running {
		if err := i.Step(); err != nil {
			return err
		}
		if err := i.sync(); err != nil {
			return err
		}
	}
	return nil
}

// Step executes a single instruction. On a halted machine it is a no-op.
func (i *Instance) Step() error {
	if !i.running {
		return nil
	}
	pc := i.loadedWord*CellBytes + i.instIndex
	if pc < 0 || pc >= len(i.Mem) {
		i.running = false
		return i.newFault(ErrOutOfBounds, OpNop)
	}
	op := OpCode(i.Mem[pc])
	if !op.Valid() {
		i.running = false
		return i.newFault(ErrInvalidOpcode, op)
	}
	if i.trace != nil {
		i.trace(i, op)
	}
	i.insCount++

	var err error
	switch op {
	case OpNop:
	case OpLit:
		err = i.instLit()
	case OpDup:
		err = i.instDup()
	case OpDrop:
		_, err = i.Pop()
	case OpSwap:
		err = i.instSwap()
	case OpPush:
		err = i.instPush()
	case OpPop:
		err = i.instPop()
	case OpNot:
		err = i.instNot()
	case OpAnd, OpOr, OpXor, OpEq, OpLt, OpGt, OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShift:
		err = i.instBinary(op)
	case OpSext8:
		err = i.instUnary(sext8)
	case OpSext16:
		err = i.instUnary(sext16)
	case OpCall:
		err = i.instCall(false)
	case OpJump:
		err = i.instJump(false)
	case OpRet:
		err = i.instRet(false)
	case OpIfzCall:
		err = i.instCall(true)
	case OpIfzJump:
		err = i.instJump(true)
	case OpIfzRet:
		err = i.instRet(true)
	case OpLoad:
		err = i.instLoad(false)
	case OpLoads:
		err = i.instLoad(true)
	case OpStore:
		err = i.instStore(false)
	case OpStores:
		err = i.instStore(true)
	case OpLoad8:
		err = i.instLoad8(false)
	case OpLoads8:
		err = i.instLoad8(true)
	case OpStore8:
		err = i.instStore8(false)
	case OpStores8:
		err = i.instStore8(true)
	case OpIo:
		err = i.instIo()
	case OpHalt:
		i.running = false
		return nil
	}
	if err != nil {
		i.running = false
		if f, ok := err.(*Fault); ok {
			return f
		}
		return i.newFault(err, op)
	}
	i.ipInc()
	return nil
}

func (i *Instance) newFault(kind error, op OpCode) *Fault {
	return &Fault{Kind: kind, IP: i.IP(), Op: op, Depth: i.sp + 1, RSize: i.rsp + 1}
}

// sync services pending DMA requests from bus devices.
func (i *Instance) sync() error {
	for _, d := range i.dma {
		for {
			req, ok := d.Poll()
			if !ok {
				break
			}
			if req.Write {
				if err := i.Mem.SetWord(req.Addr, req.Value); err != nil {
					i.running = false
					return i.newFault(err, OpIo)
				}
				d.WriteDone(req.Addr)
			} else {
				v, err := i.Mem.Word(req.Addr)
				if err != nil {
					i.running = false
					return i.newFault(err, OpIo)
				}
				d.ReadDone(req.Addr, v)
			}
		}
	}
	return nil
}

func (i *Instance) instLit() error {
	w := i.currentWord + 1
	v, err := i.Mem.Word(Cell(w * CellBytes))
	if err != nil {
		return err
	}
	i.currentWord = w
	return i.Push(v)
}

func (i *Instance) instDup() error {
	if i.sp < 0 {
		return ErrDataUnderflow
	}
	return i.Push(i.data[i.sp])
}

func (i *Instance) instSwap() error {
	if i.sp < 1 {
		return ErrDataUnderflow
	}
	i.data[i.sp], i.data[i.sp-1] = i.data[i.sp-1], i.data[i.sp]
	return nil
}

func (i *Instance) instPush() error {
	v, err := i.Pop()
	if err != nil {
		return err
	}
	return i.Rpush(v)
}

func (i *Instance) instPop() error {
	v, err := i.Rpop()
	if err != nil {
		return err
	}
	return i.Push(v)
}

func (i *Instance) instNot() error {
	return i.instUnary(func(c Cell) Cell { return ^c })
}

func (i *Instance) instUnary(fn func(Cell) Cell) error {
	if i.sp < 0 {
		return ErrDataUnderflow
	}
	i.data[i.sp] = fn(i.data[i.sp])
	return nil
}

// instBinary pops tos then nos and pushes the result. Note the operand
// order: sub computes tos-nos, div tos/nos and shift moves nos by tos bits.
func (i *Instance) instBinary(op OpCode) error {
	tos, err := i.Pop()
	if err != nil {
		return err
	}
	nos, err := i.Pop()
	if err != nil {
		return err
	}
	var v Cell
	switch op {
	case OpAnd:
		v = tos & nos
	case OpOr:
		v = tos | nos
	case OpXor:
		v = tos ^ nos
	case OpEq:
		v = cellBool(tos == nos)
	case OpLt:
		v = cellBool(tos < nos)
	case OpGt:
		v = cellBool(tos > nos)
	case OpAdd:
		v = tos + nos
	case OpSub:
		v = tos - nos
	case OpMul:
		v = tos * nos
	case OpDiv:
		if nos == 0 {
			return ErrDivideByZero
		}
		v = tos / nos
	case OpMod:
		if nos == 0 {
			return ErrDivideByZero
		}
		v = tos % nos
	case OpShift:
		if amt := int64(tos.Signed()); amt < 0 {
			v = nos >> uint64(-amt)
		} else {
			v = nos << uint64(amt)
		}
	}
	return i.Push(v)
}

func (i *Instance) instCall(ifz bool) error {
	t, err := i.Pop()
	if err != nil {
		return err
	}
	if ifz {
		c, err := i.Pop()
		if err != nil {
			return err
		}
		if c != 0 {
			return nil
		}
	}
	if err = i.Rpush(i.ipEncode()); err != nil {
		return err
	}
	i.jumpByte(t)
	return nil
}

func (i *Instance) instJump(ifz bool) error {
	t, err := i.Pop()
	if err != nil {
		return err
	}
	if ifz {
		c, err := i.Pop()
		if err != nil {
			return err
		}
		if c != 0 {
			return nil
		}
	}
	i.jumpByte(t)
	return nil
}

// instRet with ifz pops the condition only when it takes the return.
func (i *Instance) instRet(ifz bool) error {
	if ifz {
		if i.sp < 0 {
			return ErrDataUnderflow
		}
		if i.data[i.sp] != 0 {
			return nil
		}
		i.sp--
	}
	e, err := i.Rpop()
	if err != nil {
		return err
	}
	i.ipSetEncoded(e)
	return nil
}

func (i *Instance) instLoad(stream bool) error {
	addr, err := i.Pop()
	if err != nil {
		return err
	}
	v, err := i.Mem.Word(addr)
	if err != nil {
		return err
	}
	if err = i.Push(v); err != nil {
		return err
	}
	if stream {
		return i.Push(addr + CellBytes)
	}
	return nil
}

func (i *Instance) instStore(stream bool) error {
	v, err := i.Pop()
	if err != nil {
		return err
	}
	addr, err := i.Pop()
	if err != nil {
		return err
	}
	if err = i.Mem.SetWord(addr, v); err != nil {
		return err
	}
	if stream {
		return i.Push(addr + CellBytes)
	}
	return nil
}

func (i *Instance) instLoad8(stream bool) error {
	addr, err := i.Pop()
	if err != nil {
		return err
	}
	b, err := i.Mem.Byte(addr)
	if err != nil {
		return err
	}
	if err = i.Push(Cell(b)); err != nil {
		return err
	}
	if stream {
		return i.Push(addr + 1)
	}
	return nil
}

func (i *Instance) instStore8(stream bool) error {
	v, err := i.Pop()
	if err != nil {
		return err
	}
	addr, err := i.Pop()
	if err != nil {
		return err
	}
	if err = i.Mem.SetByte(addr, v); err != nil {
		return err
	}
	if stream {
		return i.Push(addr + 1)
	}
	return nil
}

// instIo pops the command word then the device id, dispatches, and pushes
// the id back followed by the device response.
func (i *Instance) instIo() error {
	cmd, err := i.Pop()
	if err != nil {
		return err
	}
	id, err := i.Pop()
	if err != nil {
		return err
	}
	res, err := i.bus.Dispatch(id, cmd)
	if err != nil {
		return err
	}
	if err = i.Push(id); err != nil {
		return err
	}
	return i.Push(res)
}
