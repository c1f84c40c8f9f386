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

package hardware

import (
	"github.com/osholin/govector06/hardware/fdc"
	"github.com/osholin/govector06/hardware/memory"
	"github.com/osholin/govector06/logger"
)

// Emulation runs a Vector on its own goroutine and owns all mutable access
// to it. Everything else submits requests.
type Emulation struct {
	vcs *Vector

	requests chan request

	// owned by the emulation goroutine
	running bool
	quit    bool

	// OnHalt, if set, is called on the emulation goroutine when a
	// breakpoint or watchpoint stops a running machine
	OnHalt func()
}

// NewEmulation is the preferred method of initialisation for the Emulation
// type. The machine starts stopped; submit ReqRun to set it going.
func NewEmulation(vcs *Vector) *Emulation {
	return &Emulation{
		vcs:      vcs,
		requests: make(chan request, 32),
	}
}

// Start the emulation goroutine.
func (emu *Emulation) Start() {
	go emu.loop()
}

// Request submits a request and blocks until the emulation context has
// serviced it. Safe to call from any goroutine except the emulation
// goroutine itself.
func (emu *Emulation) Request(kind ReqKind, args ReqArgs) ReqResult {
	req := request{kind: kind, args: args, res: make(chan ReqResult, 1)}
	emu.requests <- req
	return <-req.res
}

// loop is the emulation context. The machine only advances here, and
// requests are only serviced here, between whole instructions.
func (emu *Emulation) loop() {
	for !emu.quit {
		if emu.running {
			// service anything pending without blocking, then run a frame
			select {
			case req := <-emu.requests:
				emu.service(req)
				continue
			default:
			}

			if emu.vcs.StepFrame() {
				emu.running = false
				if emu.OnHalt != nil {
					emu.OnHalt()
				}
			}
		} else {
			// blocked until told otherwise
			emu.service(<-emu.requests)
		}
	}
}

// service handles a single request. always called on the emulation
// goroutine.
func (emu *Emulation) service(req request) {
	var res ReqResult

	vcs := emu.vcs

	switch req.kind {
	case ReqRun:
		emu.running = true

	case ReqStop:
		emu.running = false

	case ReqReset:
		vcs.Reset()

	case ReqIsRunning:
		res.Running = emu.running

	case ReqStep:
		count := req.args.Count
		if count < 1 {
			count = 1
		}
		// a long step batch is cancelled by any breakpoint or watchpoint
		for i := 0; i < count; i++ {
			if vcs.Step() {
				if emu.OnHalt != nil {
					emu.OnHalt()
				}
				break
			}
		}

	case ReqGetRegs:
		mc := vcs.CPU
		res.Regs = Regs{
			A: mc.A, B: mc.B, C: mc.C, D: mc.D, E: mc.E, H: mc.H, L: mc.L,
			F:  mc.PSW(),
			PC: mc.PC, SP: mc.SP,
			IFF: mc.IFF, Halted: mc.Halted,
			Cycles:      mc.CyclesCount,
			MappingMode: vcs.Mem.MappingMode(),
		}

	case ReqGetByteRAM:
		res.Data = vcs.Mem.GetByte(req.args.Addr, memory.AccessRead)

	case ReqGetThreeBytesRAM:
		res.Word = vcs.Mem.GetThreeBytes(req.args.Addr)

	case ReqGetGlobalAddrRAM:
		res.Word = vcs.Mem.GlobalAddr(req.args.Addr, memory.AccessRead)

	case ReqSetMem:
		vcs.Mem.Poke(req.args.Global, req.args.Data)

	case ReqScrollVert:
		res.Data = vcs.IO.Scroll()

	case ReqGetDisplayData:
		res.Frame = vcs.Display.Frame()

	case ReqLoadFDD:
		dsk, err := fdc.LoadDisk(req.args.Path)
		if err != nil {
			logger.Logf("fdc", "%v", err)
			res.Err = err
			break
		}
		res.Err = vcs.FDC.Mount(req.args.Drive, dsk)

	case ReqKeyHandling:
		k := req.args.Key
		switch k.Row {
		case KeyRowSS:
			vcs.IO.Keyboard.KeySS = k.Pressed
		case KeyRowUS:
			vcs.IO.Keyboard.KeyUS = k.Pressed
		case KeyRowRus:
			vcs.IO.Keyboard.KeyRus = k.Pressed
		default:
			vcs.IO.Keyboard.SetKey(k.Row, k.Col, k.Pressed)
		}

	case ReqQuit:
		emu.quit = true
	}

	req.res <- res
}
