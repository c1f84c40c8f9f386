// This file is part of GoVector06.
//
// GoVector06 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GoVector06 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GoVector06.  If not, see <https://www.gnu.org/licenses/>.

package cpu

import (
	"fmt"

	"github.com/osholin/govector06/hardware/memory"
)

// Bus is the memory seen by the CPU.
type Bus interface {
	GetByte(addr uint16, kind memory.AccessKind) uint8
	SetByte(addr uint16, val uint8, kind memory.AccessKind)
	GlobalAddr(addr uint16, kind memory.AccessKind) uint32
}

// PortBus is the I/O space seen by the CPU.
type PortBus interface {
	PortIn(port uint8) uint8
	PortOut(port uint8, val uint8)
}

// Hooks is the observation capability set injected at construction. The
// no-op value keeps the hot path free of nil checks.
type Hooks struct {
	// OnFetch is called exactly once per executed instruction
	OnFetch func(globalAddr uint32, opcode uint8, dataH uint8, dataL uint8, hl uint16)

	// OnRead/OnWrite are called for every data read and write
	OnRead  func(globalAddr uint32, val uint8)
	OnWrite func(globalAddr uint32, val uint8)
}

// NoopHooks returns a Hooks value whose members do nothing.
func NoopHooks() Hooks {
	return Hooks{
		OnFetch: func(uint32, uint8, uint8, uint8, uint16) {},
		OnRead:  func(uint32, uint8) {},
		OnWrite: func(uint32, uint8) {},
	}
}

// CPU implements the KR580VM80A, the i8080 clone at the heart of the
// Vector06C.
type CPU struct {
	A uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8

	PC uint16
	SP uint16

	// flag bits of the F register. bits 1, 3 and 5 are constants and exist
	// only when the flags are packed with PSW()
	Sign     bool
	Zero     bool
	AuxCarry bool
	Parity   bool
	Carry    bool

	// IFF is the interrupt enable flip-flop
	IFF bool

	// Halted is set by HLT and cleared by an accepted interrupt or Reset()
	Halted bool

	// EI enables interrupts only after the following instruction
	intePending bool

	// an interrupt request raised by the display at the frame boundary,
	// accepted at the next instruction boundary when IFF is set
	intRequest bool

	// cumulative cycle counter
	CyclesCount uint64

	mem   Bus
	ports PortBus
	hooks Hooks
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(mem Bus, ports PortBus, hooks Hooks) *CPU {
	mc := &CPU{
		mem:   mem,
		ports: ports,
		hooks: hooks,
	}
	mc.Reset()
	return mc
}

// Plumb a new set of observation hooks into the CPU.
func (mc *CPU) Plumb(hooks Hooks) {
	mc.hooks = hooks
}

// Reset the CPU to its power-on state. The cycle counter is also cleared.
func (mc *CPU) Reset() {
	mc.A = 0
	mc.B = 0
	mc.C = 0
	mc.D = 0
	mc.E = 0
	mc.H = 0
	mc.L = 0
	mc.PC = 0
	mc.SP = 0
	mc.Sign = false
	mc.Zero = false
	mc.AuxCarry = false
	mc.Parity = false
	mc.Carry = false
	mc.IFF = false
	mc.Halted = false
	mc.intePending = false
	mc.intRequest = false
	mc.CyclesCount = 0
}

func (mc *CPU) String() string {
	return fmt.Sprintf("A=%02X BC=%02X%02X DE=%02X%02X HL=%02X%02X SP=%04X PC=%04X F=%02X",
		mc.A, mc.B, mc.C, mc.D, mc.E, mc.H, mc.L, mc.SP, mc.PC, mc.PSW())
}

// HL returns the 16-bit register pair.
func (mc *CPU) HL() uint16 {
	return uint16(mc.H)<<8 | uint16(mc.L)
}

// BC returns the 16-bit register pair.
func (mc *CPU) BC() uint16 {
	return uint16(mc.B)<<8 | uint16(mc.C)
}

// DE returns the 16-bit register pair.
func (mc *CPU) DE() uint16 {
	return uint16(mc.D)<<8 | uint16(mc.E)
}

func (mc *CPU) setHL(v uint16) {
	mc.H = uint8(v >> 8)
	mc.L = uint8(v)
}

// PSW packs the flag bits into the F register layout: S Z 0 AC 0 P 1 C.
func (mc *CPU) PSW() uint8 {
	var f uint8 = 0x02
	if mc.Sign {
		f |= 0x80
	}
	if mc.Zero {
		f |= 0x40
	}
	if mc.AuxCarry {
		f |= 0x10
	}
	if mc.Parity {
		f |= 0x04
	}
	if mc.Carry {
		f |= 0x01
	}
	return f
}

// SetPSW unpacks the F register layout into the flag bits. The constant
// bits are ignored.
func (mc *CPU) SetPSW(f uint8) {
	mc.Sign = f&0x80 == 0x80
	mc.Zero = f&0x40 == 0x40
	mc.AuxCarry = f&0x10 == 0x10
	mc.Parity = f&0x04 == 0x04
	mc.Carry = f&0x01 == 0x01
}

// RaiseINT requests an interrupt. The request is latched until accepted or
// Reset().
func (mc *CPU) RaiseINT() {
	mc.intRequest = true
}

// memory access helpers. data reads and writes report to the observation
// hooks; instruction fetching is reported once per instruction by
// ExecuteInstruction.

func (mc *CPU) read8(addr uint16, kind memory.AccessKind) uint8 {
	v := mc.mem.GetByte(addr, kind)
	mc.hooks.OnRead(mc.mem.GlobalAddr(addr, kind), v)
	return v
}

func (mc *CPU) write8(addr uint16, v uint8, kind memory.AccessKind) {
	mc.mem.SetByte(addr, v, kind)
	mc.hooks.OnWrite(mc.mem.GlobalAddr(addr, kind), v)
}

func (mc *CPU) push16(v uint16) {
	mc.SP -= 2
	mc.write8(mc.SP+1, uint8(v>>8), memory.AccessStack)
	mc.write8(mc.SP, uint8(v), memory.AccessStack)
}

func (mc *CPU) pop16() uint16 {
	lo := mc.read8(mc.SP, memory.AccessStack)
	hi := mc.read8(mc.SP+1, memory.AccessStack)
	mc.SP += 2
	return uint16(hi)<<8 | uint16(lo)
}

// szp sets the sign, zero and parity flags from a result byte.
func (mc *CPU) szp(v uint8) {
	mc.Sign = v&0x80 == 0x80
	mc.Zero = v == 0
	p := v
	p ^= p >> 4
	p ^= p >> 2
	p ^= p >> 1
	mc.Parity = p&1 == 0
}

// add performs A + v + carryIn and sets all flags.
func (mc *CPU) add(v uint8, carryIn uint8) {
	r := uint16(mc.A) + uint16(v) + uint16(carryIn)
	mc.AuxCarry = (mc.A&0x0f)+(v&0x0f)+carryIn > 0x0f
	mc.Carry = r > 0xff
	mc.A = uint8(r)
	mc.szp(mc.A)
}

// sub performs A - v - borrowIn and sets all flags. implemented as the
// internal two's-complement addition so the auxiliary carry matches the
// silicon.
func (mc *CPU) sub(v uint8, borrowIn uint8) {
	mc.A = mc.cmp(v, borrowIn)
}

// cmp is sub without storing the result in A.
func (mc *CPU) cmp(v uint8, borrowIn uint8) uint8 {
	c := 1 - borrowIn
	r := uint16(mc.A) + uint16(^v) + uint16(c)
	mc.AuxCarry = (mc.A&0x0f)+(^v&0x0f)+c > 0x0f
	mc.Carry = r <= 0xff
	res := uint8(r)
	mc.szp(res)
	return res
}

func (mc *CPU) inr(v uint8) uint8 {
	r := v + 1
	mc.AuxCarry = r&0x0f == 0x00
	mc.szp(r)
	return r
}

func (mc *CPU) dcr(v uint8) uint8 {
	r := v - 1
	mc.AuxCarry = r&0x0f != 0x0f
	mc.szp(r)
	return r
}

func (mc *CPU) ana(v uint8) {
	// the 8080 sets AC from the OR of bit 3 of both operands
	mc.AuxCarry = (mc.A|v)&0x08 == 0x08
	mc.A &= v
	mc.Carry = false
	mc.szp(mc.A)
}

func (mc *CPU) xra(v uint8) {
	mc.A ^= v
	mc.Carry = false
	mc.AuxCarry = false
	mc.szp(mc.A)
}

func (mc *CPU) ora(v uint8) {
	mc.A |= v
	mc.Carry = false
	mc.AuxCarry = false
	mc.szp(mc.A)
}

// dad adds a register pair to HL. only the carry flag is affected.
func (mc *CPU) dad(v uint16) {
	r := uint32(mc.HL()) + uint32(v)
	mc.Carry = r > 0xffff
	mc.setHL(uint16(r))
}

func (mc *CPU) daa() {
	var correction uint8
	carry := mc.Carry

	lsb := mc.A & 0x0f
	msb := mc.A >> 4

	if mc.AuxCarry || lsb > 9 {
		correction += 0x06
	}
	if mc.Carry || msb > 9 || (msb >= 9 && lsb > 9) {
		correction += 0x60
		carry = true
	}

	mc.add(correction, 0)
	mc.Carry = carry
}

// condition evaluates the branch condition encoded in bits 3-5 of a
// conditional opcode.
func (mc *CPU) condition(opcode uint8) bool {
	switch (opcode >> 3) & 0x07 {
	case 0:
		return !mc.Zero
	case 1:
		return mc.Zero
	case 2:
		return !mc.Carry
	case 3:
		return mc.Carry
	case 4:
		return !mc.Parity
	case 5:
		return mc.Parity
	case 6:
		return !mc.Sign
	}
	return mc.Sign
}

// register lookup for the source/destination encodings in bits 0-2 and 3-5.
// index 6 is the memory reference and is handled by the callers.
func (mc *CPU) srcRegister(idx uint8) uint8 {
	switch idx {
	case 0:
		return mc.B
	case 1:
		return mc.C
	case 2:
		return mc.D
	case 3:
		return mc.E
	case 4:
		return mc.H
	case 5:
		return mc.L
	case 7:
		return mc.A
	}
	panic(fmt.Sprintf("cpu: register index %d is a memory reference", idx))
}

func (mc *CPU) setDstRegister(idx uint8, v uint8) {
	switch idx {
	case 0:
		mc.B = v
	case 1:
		mc.C = v
	case 2:
		mc.D = v
	case 3:
		mc.E = v
	case 4:
		mc.H = v
	case 5:
		mc.L = v
	case 7:
		mc.A = v
	default:
		panic(fmt.Sprintf("cpu: register index %d is a memory reference", idx))
	}
}

// ExecuteInstruction executes the instruction at the current PC (or the
// injected RST 7 when an interrupt is accepted). cycleCallback is called
// once for every consumed cycle, after the instruction itself has executed.
func (mc *CPU) ExecuteInstruction(cycleCallback func()) {
	var opcode uint8
	injected := false

	if mc.IFF && mc.intRequest {
		// accept the interrupt: the injected opcode is dispatched as if
		// fetched at the current PC, which is not advanced to consume it
		mc.IFF = false
		mc.intRequest = false
		mc.Halted = false
		injected = true
		opcode = 0xff // rst 7
	} else {
		// a halted CPU re-dispatches the HLT at PC until an interrupt
		// arrives
		opcode = mc.mem.GetByte(mc.PC, memory.AccessFetch)
	}

	length := Lengths[opcode]
	if injected {
		length = 1
	}

	var dataL, dataH uint8
	if length > 1 {
		dataL = mc.mem.GetByte(mc.PC+1, memory.AccessFetch)
	}
	if length > 2 {
		dataH = mc.mem.GetByte(mc.PC+2, memory.AccessFetch)
	}

	// the observation layer relies on PCHL reporting the live jump target
	// in the operand bytes
	if opcode == OpcodePCHL {
		dataL = uint8(mc.HL())
		dataH = uint8(mc.HL() >> 8)
	}

	mc.hooks.OnFetch(mc.mem.GlobalAddr(mc.PC, memory.AccessFetch), opcode, dataH, dataL, mc.HL())

	wasEI := mc.intePending

	cost := cycles[opcode]
	if injected {
		cost = 11
	}

	nextPC := mc.PC + uint16(length)
	operand16 := uint16(dataH)<<8 | uint16(dataL)

	switch {
	case injected:
		mc.push16(mc.PC)
		nextPC = 0x0038

	case opcode == OpcodeHLT:
		mc.Halted = true
		nextPC = mc.PC

	case opcode < 0x40:
		cost += mc.execute00(opcode, dataL, operand16, &nextPC)

	case opcode < 0x80:
		// mov group
		src := opcode & 0x07
		dst := (opcode >> 3) & 0x07
		var v uint8
		if src == 6 {
			v = mc.read8(mc.HL(), memory.AccessRead)
		} else {
			v = mc.srcRegister(src)
		}
		if dst == 6 {
			mc.write8(mc.HL(), v, memory.AccessWrite)
		} else {
			mc.setDstRegister(dst, v)
		}

	case opcode < 0xc0:
		// alu group
		var v uint8
		if opcode&0x07 == 6 {
			v = mc.read8(mc.HL(), memory.AccessRead)
		} else {
			v = mc.srcRegister(opcode & 0x07)
		}
		mc.alu((opcode>>3)&0x07, v)

	default:
		cost += mc.executeC0(opcode, dataL, operand16, &nextPC)
	}

	mc.PC = nextPC

	// EI enables interrupts one instruction late
	if wasEI && mc.intePending {
		mc.IFF = true
		mc.intePending = false
	}

	mc.CyclesCount += uint64(cost)
	for i := 0; i < cost; i++ {
		cycleCallback()
	}
}

// alu dispatches the operation encoded in bits 3-5 of the 0x80-0xbf group
// and of the immediate forms 0xc6-0xfe.
func (mc *CPU) alu(op uint8, v uint8) {
	var carry uint8
	if mc.Carry {
		carry = 1
	}

	switch op {
	case 0:
		mc.add(v, 0)
	case 1:
		mc.add(v, carry)
	case 2:
		mc.sub(v, 0)
	case 3:
		mc.sub(v, carry)
	case 4:
		mc.ana(v)
	case 5:
		mc.xra(v)
	case 6:
		mc.ora(v)
	case 7:
		mc.cmp(v, 0)
	}
}

// execute00 handles opcodes 0x00-0x3f. the returned value is any additional
// cycle cost (always zero for this group).
func (mc *CPU) execute00(opcode uint8, dataL uint8, operand16 uint16, nextPC *uint16) int {
	switch opcode {
	case 0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38:
		// nop and its mirrors

	case 0x01:
		mc.B = uint8(operand16 >> 8)
		mc.C = uint8(operand16)
	case 0x11:
		mc.D = uint8(operand16 >> 8)
		mc.E = uint8(operand16)
	case 0x21:
		mc.setHL(operand16)
	case 0x31:
		mc.SP = operand16

	case 0x02:
		mc.write8(mc.BC(), mc.A, memory.AccessWrite)
	case 0x12:
		mc.write8(mc.DE(), mc.A, memory.AccessWrite)
	case 0x0a:
		mc.A = mc.read8(mc.BC(), memory.AccessRead)
	case 0x1a:
		mc.A = mc.read8(mc.DE(), memory.AccessRead)

	case 0x22:
		mc.write8(operand16, mc.L, memory.AccessWrite)
		mc.write8(operand16+1, mc.H, memory.AccessWrite)
	case 0x2a:
		l := mc.read8(operand16, memory.AccessRead)
		h := mc.read8(operand16+1, memory.AccessRead)
		mc.H = h
		mc.L = l
	case 0x32:
		mc.write8(operand16, mc.A, memory.AccessWrite)
	case 0x3a:
		mc.A = mc.read8(operand16, memory.AccessRead)

	case 0x03:
		v := mc.BC() + 1
		mc.B = uint8(v >> 8)
		mc.C = uint8(v)
	case 0x13:
		v := mc.DE() + 1
		mc.D = uint8(v >> 8)
		mc.E = uint8(v)
	case 0x23:
		mc.setHL(mc.HL() + 1)
	case 0x33:
		mc.SP++
	case 0x0b:
		v := mc.BC() - 1
		mc.B = uint8(v >> 8)
		mc.C = uint8(v)
	case 0x1b:
		v := mc.DE() - 1
		mc.D = uint8(v >> 8)
		mc.E = uint8(v)
	case 0x2b:
		mc.setHL(mc.HL() - 1)
	case 0x3b:
		mc.SP--

	case 0x09:
		mc.dad(mc.BC())
	case 0x19:
		mc.dad(mc.DE())
	case 0x29:
		mc.dad(mc.HL())
	case 0x39:
		mc.dad(mc.SP)

	case 0x04, 0x0c, 0x14, 0x1c, 0x24, 0x2c, 0x3c:
		dst := (opcode >> 3) & 0x07
		mc.setDstRegister(dst, mc.inr(mc.srcRegister(dst)))
	case 0x34:
		mc.write8(mc.HL(), mc.inr(mc.read8(mc.HL(), memory.AccessRead)), memory.AccessWrite)

	case 0x05, 0x0d, 0x15, 0x1d, 0x25, 0x2d, 0x3d:
		dst := (opcode >> 3) & 0x07
		mc.setDstRegister(dst, mc.dcr(mc.srcRegister(dst)))
	case 0x35:
		mc.write8(mc.HL(), mc.dcr(mc.read8(mc.HL(), memory.AccessRead)), memory.AccessWrite)

	case 0x06, 0x0e, 0x16, 0x1e, 0x26, 0x2e, 0x3e:
		mc.setDstRegister((opcode>>3)&0x07, dataL)
	case 0x36:
		mc.write8(mc.HL(), dataL, memory.AccessWrite)

	case 0x07: // rlc
		mc.Carry = mc.A&0x80 == 0x80
		mc.A = mc.A<<1 | mc.A>>7
	case 0x0f: // rrc
		mc.Carry = mc.A&0x01 == 0x01
		mc.A = mc.A>>1 | mc.A<<7
	case 0x17: // ral
		carry := mc.A >> 7
		mc.A <<= 1
		if mc.Carry {
			mc.A |= 0x01
		}
		mc.Carry = carry == 1
	case 0x1f: // rar
		carry := mc.A & 0x01
		mc.A >>= 1
		if mc.Carry {
			mc.A |= 0x80
		}
		mc.Carry = carry == 1

	case 0x27:
		mc.daa()
	case 0x2f:
		mc.A = ^mc.A
	case 0x37:
		mc.Carry = true
	case 0x3f:
		mc.Carry = !mc.Carry
	}

	return 0
}

// executeC0 handles opcodes 0xc0-0xff. the returned value is the additional
// cycle cost of a taken conditional call or return.
func (mc *CPU) executeC0(opcode uint8, dataL uint8, operand16 uint16, nextPC *uint16) int {
	switch opcode {
	case 0xc9, 0xd9:
		*nextPC = mc.pop16()

	case 0xc0, 0xc8, 0xd0, 0xd8, 0xe0, 0xe8, 0xf0, 0xf8:
		if mc.condition(opcode) {
			*nextPC = mc.pop16()
			return takenPenalty
		}

	case 0xc3, 0xcb:
		*nextPC = operand16

	case 0xc2, 0xca, 0xd2, 0xda, 0xe2, 0xea, 0xf2, 0xfa:
		if mc.condition(opcode) {
			*nextPC = operand16
		}

	case 0xcd, 0xdd, 0xed, 0xfd:
		mc.push16(*nextPC)
		*nextPC = operand16

	case 0xc4, 0xcc, 0xd4, 0xdc, 0xe4, 0xec, 0xf4, 0xfc:
		if mc.condition(opcode) {
			mc.push16(*nextPC)
			*nextPC = operand16
			return takenPenalty
		}

	case 0xc7, 0xcf, 0xd7, 0xdf, 0xe7, 0xef, 0xf7, 0xff:
		mc.push16(*nextPC)
		*nextPC = uint16(opcode & 0x38)

	case 0xc1:
		v := mc.pop16()
		mc.B = uint8(v >> 8)
		mc.C = uint8(v)
	case 0xd1:
		v := mc.pop16()
		mc.D = uint8(v >> 8)
		mc.E = uint8(v)
	case 0xe1:
		mc.setHL(mc.pop16())
	case 0xf1:
		v := mc.pop16()
		mc.A = uint8(v >> 8)
		mc.SetPSW(uint8(v))

	case 0xc5:
		mc.push16(mc.BC())
	case 0xd5:
		mc.push16(mc.DE())
	case 0xe5:
		mc.push16(mc.HL())
	case 0xf5:
		mc.push16(uint16(mc.A)<<8 | uint16(mc.PSW()))

	case 0xc6, 0xce, 0xd6, 0xde, 0xe6, 0xee, 0xf6, 0xfe:
		mc.alu((opcode>>3)&0x07, dataL)

	case 0xd3:
		mc.ports.PortOut(dataL, mc.A)
	case 0xdb:
		mc.A = mc.ports.PortIn(dataL)

	case 0xe3:
		l := mc.read8(mc.SP, memory.AccessStack)
		h := mc.read8(mc.SP+1, memory.AccessStack)
		mc.write8(mc.SP, mc.L, memory.AccessStack)
		mc.write8(mc.SP+1, mc.H, memory.AccessStack)
		mc.H = h
		mc.L = l

	case 0xe9:
		*nextPC = mc.HL()

	case 0xeb:
		mc.H, mc.D = mc.D, mc.H
		mc.L, mc.E = mc.E, mc.L

	case 0xf9:
		mc.SP = mc.HL()

	case 0xf3:
		mc.IFF = false
		mc.intePending = false

	case 0xfb:
		mc.intePending = true
	}

	return 0
}
