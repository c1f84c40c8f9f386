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

package cpu_test

import (
	"testing"

	"github.com/osholin/govector06/hardware/cpu"
	"github.com/osholin/govector06/hardware/memory"
	"github.com/osholin/govector06/test"
)

// nullPorts satisfies cpu.PortBus for tests that don't touch the I/O space.
type nullPorts struct {
	lastPort uint8
	lastVal  uint8
}

func (p *nullPorts) PortIn(port uint8) uint8 {
	return 0xff
}

func (p *nullPorts) PortOut(port uint8, val uint8) {
	p.lastPort = port
	p.lastVal = val
}

func newTestCPU(t *testing.T, program []uint8) (*cpu.CPU, *memory.Memory, *nullPorts) {
	t.Helper()
	mem := memory.NewMemory()
	if err := mem.Load(program, 0); err != nil {
		t.Fatal(err)
	}
	ports := &nullPorts{}
	return cpu.NewCPU(mem, ports, cpu.NoopHooks()), mem, ports
}

func step(mc *cpu.CPU, n int) {
	for i := 0; i < n; i++ {
		mc.ExecuteInstruction(func() {})
	}
}

func TestProgramFlow(t *testing.T) {
	// lxi sp,0xc000 / mvi a,0x42 / hlt
	mc, _, _ := newTestCPU(t, []uint8{0x31, 0x00, 0xc0, 0x3e, 0x42, 0x76})

	step(mc, 3)

	test.Equate(t, mc.SP, 0xc000)
	test.Equate(t, mc.A, 0x42)
	test.Equate(t, mc.PC, 0x0005)
	test.ExpectedSuccess(t, mc.Halted)
	test.Equate(t, mc.CyclesCount, uint64(10+7+7))
}

func TestInterruptEnableDelay(t *testing.T) {
	// di / ei / nop
	mc, _, _ := newTestCPU(t, []uint8{0xf3, 0xfb, 0x00})

	step(mc, 1)
	test.ExpectedFailure(t, mc.IFF)

	step(mc, 1)
	test.ExpectedFailure(t, mc.IFF) // ei is one instruction late

	step(mc, 1)
	test.ExpectedSuccess(t, mc.IFF)
}

func TestInterruptInjection(t *testing.T) {
	// ei / nop / hlt with a handler that just returns
	mc, mem, _ := newTestCPU(t, []uint8{0xfb, 0x00, 0x76})
	_ = mem.Load([]uint8{0xc9}, 0x0038) // ret

	step(mc, 3)
	test.ExpectedSuccess(t, mc.Halted)
	test.Equate(t, mc.PC, 0x0002)

	mc.RaiseINT()
	step(mc, 1)

	// rst 7 was injected: IFF cleared, un-halted, return address is the
	// halt instruction
	test.ExpectedFailure(t, mc.IFF)
	test.ExpectedFailure(t, mc.Halted)
	test.Equate(t, mc.PC, 0x0038)

	step(mc, 1) // ret
	test.Equate(t, mc.PC, 0x0002)
}

func TestConditionalCycleCounts(t *testing.T) {
	// cmp a (sets Z) / jnz (not taken) / cz 0x0009 (taken) ... / hlt
	mc, mem, _ := newTestCPU(t, []uint8{0xbf, 0xc2, 0x00, 0x10, 0xcc, 0x09, 0x00})
	_ = mem.Load([]uint8{0x76}, 0x0009)

	step(mc, 1)
	test.Equate(t, mc.CyclesCount, uint64(4))

	step(mc, 1) // jnz not taken still costs 10
	test.Equate(t, mc.PC, 0x0004)
	test.Equate(t, mc.CyclesCount, uint64(4+10))

	step(mc, 1) // cz taken costs 17
	test.Equate(t, mc.PC, 0x0009)
	test.Equate(t, mc.CyclesCount, uint64(4+10+17))
}

func TestReturnCycleCounts(t *testing.T) {
	// lxi sp / cmp a / rz ... not-taken rnz first
	mc, _, _ := newTestCPU(t, []uint8{0x31, 0x00, 0x01, 0xbf, 0xc0, 0xc8})

	step(mc, 2)
	cc := mc.CyclesCount

	step(mc, 1) // rnz not taken
	test.Equate(t, mc.CyclesCount, cc+5)
	test.Equate(t, mc.PC, 0x0005)

	step(mc, 1) // rz taken
	test.Equate(t, mc.CyclesCount, cc+5+11)
}

func TestStackThroughMemory(t *testing.T) {
	// lxi sp,0x0100 / lxi b,0x1234 / push b / pop d
	mc, mem, _ := newTestCPU(t, []uint8{0x31, 0x00, 0x01, 0x01, 0x34, 0x12, 0xc5, 0xd1})

	step(mc, 3)
	test.Equate(t, mc.SP, 0x00fe)
	test.Equate(t, mem.GetByte(0x00ff, memory.AccessRead), 0x12)
	test.Equate(t, mem.GetByte(0x00fe, memory.AccessRead), 0x34)

	step(mc, 1)
	test.Equate(t, mc.DE(), 0x1234)
	test.Equate(t, mc.SP, 0x0100)
}

func TestFlags(t *testing.T) {
	// mvi a,0x0f / adi 0x01 -> AC set, result 0x10
	mc, _, _ := newTestCPU(t, []uint8{0x3e, 0x0f, 0xc6, 0x01})
	step(mc, 2)
	test.Equate(t, mc.A, 0x10)
	test.ExpectedSuccess(t, mc.AuxCarry)
	test.ExpectedFailure(t, mc.Carry)
	test.ExpectedFailure(t, mc.Zero)

	// mvi a,0xff / adi 0x01 -> carry and zero
	mc, _, _ = newTestCPU(t, []uint8{0x3e, 0xff, 0xc6, 0x01})
	step(mc, 2)
	test.Equate(t, mc.A, 0x00)
	test.ExpectedSuccess(t, mc.Carry)
	test.ExpectedSuccess(t, mc.Zero)
	test.ExpectedSuccess(t, mc.Parity)

	// mvi a,0x02 / sui 0x03 -> borrow
	mc, _, _ = newTestCPU(t, []uint8{0x3e, 0x02, 0xd6, 0x03})
	step(mc, 2)
	test.Equate(t, mc.A, 0xff)
	test.ExpectedSuccess(t, mc.Carry)
	test.ExpectedSuccess(t, mc.Sign)
}

func TestDAA(t *testing.T) {
	// mvi a,0x9b / daa -> 0x01 with carry and aux carry (Intel's worked
	// example)
	mc, _, _ := newTestCPU(t, []uint8{0x3e, 0x9b, 0x27})
	step(mc, 2)
	test.Equate(t, mc.A, 0x01)
	test.ExpectedSuccess(t, mc.Carry)
	test.ExpectedSuccess(t, mc.AuxCarry)
}

func TestPSWRoundTrip(t *testing.T) {
	// mvi a,0xff / adi 1 / push psw / pop psw preserving flags; bit 1 of F
	// always reads 1, bits 3 and 5 always 0
	mc, _, _ := newTestCPU(t, []uint8{0x31, 0x00, 0x01, 0x3e, 0xff, 0xc6, 0x01, 0xf5, 0xf1})

	step(mc, 4)
	f := mc.PSW()
	test.Equate(t, f&0x02, 0x02)
	test.Equate(t, f&0x28, 0x00)

	step(mc, 1)
	test.Equate(t, mc.PSW(), f)
	test.ExpectedSuccess(t, mc.Zero)
	test.ExpectedSuccess(t, mc.Carry)
}

func TestOut(t *testing.T) {
	// mvi a,0xe8 / out 0x10
	mc, _, ports := newTestCPU(t, []uint8{0x3e, 0xe8, 0xd3, 0x10})
	step(mc, 2)
	test.Equate(t, ports.lastPort, 0x10)
	test.Equate(t, ports.lastVal, 0xe8)
	test.Equate(t, mc.CyclesCount, uint64(7+10))
}

func TestPCHLReportsJumpTarget(t *testing.T) {
	var gotL, gotH uint8

	mem := memory.NewMemory()
	_ = mem.Load([]uint8{0x21, 0x34, 0x12, 0xe9}, 0) // lxi h,0x1234 / pchl

	hooks := cpu.NoopHooks()
	hooks.OnFetch = func(g uint32, opcode uint8, dataH uint8, dataL uint8, hl uint16) {
		if opcode == cpu.OpcodePCHL {
			gotL = dataL
			gotH = dataH
		}
	}

	mc := cpu.NewCPU(mem, &nullPorts{}, hooks)
	step(mc, 2)

	test.Equate(t, mc.PC, 0x1234)
	test.Equate(t, gotL, 0x34)
	test.Equate(t, gotH, 0x12)
}

func TestPCSPRange(t *testing.T) {
	// dcx sp from zero wraps, never leaves 16 bits
	mc, _, _ := newTestCPU(t, []uint8{0x3b})
	step(mc, 1)
	test.Equate(t, mc.SP, 0xffff)
}
