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

// Package hardware assembles the Vector06C from its components and runs the
// emulation loop. The Vector type owns every component exclusively; the
// outside world (terminal, GUI, tests) talks to a running machine through
// the request dispatcher, which services requests between instructions on
// the emulation goroutine.
package hardware

import (
	"os"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/hardware/cpu"
	"github.com/osholin/govector06/hardware/display"
	"github.com/osholin/govector06/hardware/fdc"
	"github.com/osholin/govector06/hardware/memory"
	"github.com/osholin/govector06/hardware/timer"
	"github.com/osholin/govector06/hardware/vio"
	"github.com/osholin/govector06/logger"
)

// Debugger is the observation capability the hardware reports to. All of its
// functions are called on the emulation goroutine.
type Debugger interface {
	ReadInstr(globalAddr uint32, opcode uint8, dataH uint8, dataL uint8, hl uint16)
	Read(globalAddr uint32, val uint8)
	Write(globalAddr uint32, val uint8)

	// CheckBreak is consulted at every instruction boundary
	CheckBreak(addr uint16, mappingMode uint8, page uint8) bool

	// Reset is called when the machine resets so observation state can be
	// cleared alongside it
	Reset()
}

// Vector is the machine: the main container for the emulated components of
// the Vector06C.
type Vector struct {
	Mem     *memory.Memory
	CPU     *cpu.CPU
	IO      *vio.VIO
	Timer   *timer.Timer
	FDC     *fdc.FDC
	Display *display.Display

	dbg Debugger

	// audioTap, if attached, observes the timer OUT lines every cycle
	audioTap func(out0 bool, out1 bool, out2 bool)
}

// NewVector creates a new Vector06C and everything associated with the
// hardware. The debugger, if any, is attached afterwards with Plumb().
func NewVector() *Vector {
	v := &Vector{}

	v.Mem = memory.NewMemory()
	v.Timer = timer.NewTimer()
	v.FDC = fdc.NewFDC()
	v.IO = vio.NewVIO(v.Mem, v.Timer, v.FDC)
	v.CPU = cpu.NewCPU(v.Mem, v.IO, cpu.NoopHooks())
	v.Display = display.NewDisplay(v.Mem, v.IO, v.CPU.RaiseINT)

	return v
}

// Plumb a debugger into the hardware. The CPU's observation hooks are
// replaced with the debugger's.
func (v *Vector) Plumb(dbg Debugger) {
	v.dbg = dbg
	v.CPU.Plumb(cpu.Hooks{
		OnFetch: dbg.ReadInstr,
		OnRead:  dbg.Read,
		OnWrite: dbg.Write,
	})
}

// Reset the machine. Mounted disks stay mounted; the boot ROM is restored.
func (v *Vector) Reset() {
	v.Mem.Reset()
	v.CPU.Reset()
	v.IO.Reset()
	v.Timer.Reset()
	v.FDC.Reset()
	v.Display.Reset()
	if v.dbg != nil {
		v.dbg.Reset()
	}
	logger.Log("hardware", "machine reset")
}

// LoadROM reads a boot ROM image and resets the machine around it.
func (v *Vector) LoadROM(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return curated.Errorf("hardware: %v", err)
	}
	if err := v.Mem.LoadBoot(data); err != nil {
		return err
	}
	v.Reset()
	logger.Logf("hardware", "rom loaded: %s (%d bytes)", path, len(data))
	return nil
}

// AttachAudioTap attaches an observer of the timer OUT lines, fed once per
// CPU cycle. A nil tap detaches.
func (v *Vector) AttachAudioTap(tap func(out0 bool, out1 bool, out2 bool)) {
	v.audioTap = tap
}

// tick is the per-cycle callback given to the CPU: the commit timers, the
// 8253 and the raster all advance in lockstep with the instruction.
func (v *Vector) tick() {
	v.IO.TryCommit(v.IO.BorderColorIdx())
	v.Timer.Step(1)
	v.Display.Tick()
	if v.audioTap != nil {
		v.audioTap(v.Timer.Out(0), v.Timer.Out(1), v.Timer.Out(2))
	}
}

// Step executes one instruction and returns true if the debugger asks for a
// halt at the new instruction boundary.
func (v *Vector) Step() bool {
	v.CPU.ExecuteInstruction(v.tick)

	if v.dbg == nil {
		return false
	}
	return v.dbg.CheckBreak(v.CPU.PC, v.Mem.MappingMode(), v.Mem.Bank())
}

// StepFrame runs the machine until the raster completes the current frame.
// Returns true if the debugger asked for a halt before the frame was done.
func (v *Vector) StepFrame() bool {
	v.Display.ResetFrame()
	for !v.Display.T50HZ() {
		if v.Step() {
			return true
		}
	}
	return false
}
