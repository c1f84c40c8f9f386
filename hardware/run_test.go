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

package hardware_test

import (
	"testing"

	"github.com/osholin/govector06/hardware"
	"github.com/osholin/govector06/test"
)

func newStartedEmulation(t *testing.T, program []uint8) *hardware.Emulation {
	t.Helper()

	vcs := hardware.NewVector()
	if err := vcs.Mem.Load(program, 0); err != nil {
		t.Fatal(err)
	}

	emu := hardware.NewEmulation(vcs)
	emu.Start()
	t.Cleanup(func() {
		emu.Request(hardware.ReqQuit, hardware.ReqArgs{})
	})
	return emu
}

func TestStepAndRegisters(t *testing.T) {
	// lxi sp,0xc000 / mvi a,0x42 / hlt
	emu := newStartedEmulation(t, []uint8{0x31, 0x00, 0xc0, 0x3e, 0x42, 0x76})

	test.ExpectedFailure(t, emu.Request(hardware.ReqIsRunning, hardware.ReqArgs{}).Running)

	emu.Request(hardware.ReqStep, hardware.ReqArgs{Count: 3})

	regs := emu.Request(hardware.ReqGetRegs, hardware.ReqArgs{}).Regs
	test.Equate(t, regs.SP, 0xc000)
	test.Equate(t, regs.A, 0x42)
	test.Equate(t, regs.PC, 0x0005)
	test.ExpectedSuccess(t, regs.Halted)
	test.Equate(t, regs.Cycles, uint64(24))
}

func TestMemoryRequests(t *testing.T) {
	emu := newStartedEmulation(t, []uint8{0x76})

	emu.Request(hardware.ReqSetMem, hardware.ReqArgs{Global: 0x1234, Data: 0xab})
	test.Equate(t, emu.Request(hardware.ReqGetByteRAM, hardware.ReqArgs{Addr: 0x1234}).Data, 0xab)

	emu.Request(hardware.ReqSetMem, hardware.ReqArgs{Global: 0x1235, Data: 0xcd})
	emu.Request(hardware.ReqSetMem, hardware.ReqArgs{Global: 0x1236, Data: 0xef})
	test.Equate(t, emu.Request(hardware.ReqGetThreeBytesRAM, hardware.ReqArgs{Addr: 0x1234}).Word, uint32(0xefcdab))

	test.Equate(t, emu.Request(hardware.ReqGetGlobalAddrRAM, hardware.ReqArgs{Addr: 0x1234}).Word, uint32(0x1234))
}

func TestRunStop(t *testing.T) {
	// an endless loop: jmp 0x0000
	emu := newStartedEmulation(t, []uint8{0xc3, 0x00, 0x00})

	emu.Request(hardware.ReqRun, hardware.ReqArgs{})
	test.ExpectedSuccess(t, emu.Request(hardware.ReqIsRunning, hardware.ReqArgs{}).Running)

	emu.Request(hardware.ReqStop, hardware.ReqArgs{})
	test.ExpectedFailure(t, emu.Request(hardware.ReqIsRunning, hardware.ReqArgs{}).Running)

	// the machine made progress while running
	regs := emu.Request(hardware.ReqGetRegs, hardware.ReqArgs{}).Regs
	if regs.Cycles == 0 {
		t.Errorf("no cycles consumed while running")
	}
}

func TestResetRequest(t *testing.T) {
	emu := newStartedEmulation(t, []uint8{0x3e, 0x42, 0x76})

	emu.Request(hardware.ReqStep, hardware.ReqArgs{Count: 2})
	emu.Request(hardware.ReqReset, hardware.ReqArgs{})

	regs := emu.Request(hardware.ReqGetRegs, hardware.ReqArgs{}).Regs
	test.Equate(t, regs.PC, 0x0000)
	test.Equate(t, regs.Cycles, uint64(0))
	test.ExpectedFailure(t, regs.Halted)
}

func TestKeyRequest(t *testing.T) {
	emu := newStartedEmulation(t, []uint8{0x76})

	emu.Request(hardware.ReqKeyHandling, hardware.ReqArgs{Key: hardware.KeyEvent{Row: hardware.KeyRowRus, Pressed: true}})
	emu.Request(hardware.ReqKeyHandling, hardware.ReqArgs{Key: hardware.KeyEvent{Row: 3, Col: 5, Pressed: true}})

	res := emu.Request(hardware.ReqGetDisplayData, hardware.ReqArgs{})
	test.Equate(t, len(res.Frame), 768*312)
}

func TestLoadFDDMissingFile(t *testing.T) {
	emu := newStartedEmulation(t, []uint8{0x76})

	res := emu.Request(hardware.ReqLoadFDD, hardware.ReqArgs{Drive: 0, Path: "no-such-image.fdd"})
	test.ExpectedFailure(t, res.Err)
}

func TestScrollRequest(t *testing.T) {
	emu := newStartedEmulation(t, []uint8{0x76})
	test.Equate(t, emu.Request(hardware.ReqScrollVert, hardware.ReqArgs{}).Data, 0xff)
}
