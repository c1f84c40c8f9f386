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

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/osholin/govector06/debugger"
	"github.com/osholin/govector06/disassembly"
	"github.com/osholin/govector06/hardware"
	"github.com/osholin/govector06/hardware/cpu"
	"github.com/osholin/govector06/logger"
	"github.com/osholin/govector06/terminal"
)

const helpText = `commands:
  run                       set the machine going
  stop                      halt the machine
  step [n]                  execute n instructions (default 1)
  reset                     reset the machine
  regs                      show the register file
  mem <addr> [n]            hex dump of n bytes (default 64)
  disasm [addr] [lines]     disassemble around an address (default PC)
  break <addr> [once]       set a breakpoint
  break del <addr>          delete a breakpoint
  break list                list breakpoints
  watch r|w|rw <gaddr> [len] [value]
                            set a watchpoint (EQ on value if given)
  watch del <id>            delete a watchpoint
  watch list                list watchpoints
  trace [n]                 newest n trace-log lines (default 16)
  fdd <drive> <path>        mount a disk image
  dump <file>               write the hardware graph as graphviz dot
  log                       show the application log
  quit                      leave`

// parseNum accepts hex with an 0x prefix or decimal.
func parseNum(s string, bits int) (uint64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if v, ok := strings.CutPrefix(s, "0x"); ok {
		return strconv.ParseUint(v, 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

// console is the interactive loop. Returns nil on a clean quit.
func console(term *terminal.Terminal, emu *hardware.Emulation, dbg *debugger.Debugger) error {
	term.PrintPen(terminal.PenDim, "govector06; type help for commands\n")

	for {
		line, err := term.ReadLine("(v06c) ")
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		tokens := strings.Fields(line)
		if len(tokens) == 0 {
			continue
		}

		switch strings.ToLower(tokens[0]) {
		case "help", "h", "?":
			term.Print("%s\n", helpText)

		case "quit", "q", "exit":
			return nil

		case "run", "r":
			emu.Request(hardware.ReqRun, hardware.ReqArgs{})

		case "stop":
			emu.Request(hardware.ReqStop, hardware.ReqArgs{})

		case "reset":
			emu.Request(hardware.ReqReset, hardware.ReqArgs{})

		case "step", "s":
			count := 1
			if len(tokens) > 1 {
				if v, err := parseNum(tokens[1], 32); err == nil {
					count = int(v)
				}
			}
			emu.Request(hardware.ReqStep, hardware.ReqArgs{Count: count})
			printRegs(term, emu)

		case "regs":
			printRegs(term, emu)

		case "mem":
			if len(tokens) < 2 {
				term.PrintPen(terminal.PenRed, "mem needs an address\n")
				continue
			}
			addr, err := parseNum(tokens[1], 16)
			if err != nil {
				term.PrintPen(terminal.PenRed, "bad address: %s\n", tokens[1])
				continue
			}
			n := 64
			if len(tokens) > 2 {
				if v, err := parseNum(tokens[2], 16); err == nil {
					n = int(v)
				}
			}
			hexDump(term, emu, uint16(addr), n)

		case "disasm", "d":
			res := emu.Request(hardware.ReqGetRegs, hardware.ReqArgs{})
			addr := res.Regs.PC
			lines := 16
			if len(tokens) > 1 {
				if v, err := parseNum(tokens[1], 16); err == nil {
					addr = uint16(v)
				}
			}
			if len(tokens) > 2 {
				if v, err := parseNum(tokens[2], 16); err == nil {
					lines = int(v)
				}
			}
			for _, e := range dbg.Disasm().Window(addr, lines, -4) {
				pen := terminal.PenOff
				if e.Breakpoint {
					pen = terminal.PenRed
				} else if e.Addr == addr && e.Type == disassembly.LineCode {
					pen = terminal.PenCyan
				}
				term.PrintPen(pen, "%s", e.String())
				if e.Type == disassembly.LineCode && e.Runs > 0 {
					term.PrintPen(terminal.PenDim, "  ; runs=%d", e.Runs)
				}
				term.Print("\n")
			}

		case "break", "b":
			doBreak(term, dbg, tokens[1:])

		case "watch", "w":
			doWatch(term, dbg, tokens[1:])

		case "trace", "t":
			n := 16
			if len(tokens) > 1 {
				if v, err := parseNum(tokens[1], 32); err == nil {
					n = int(v)
				}
			}
			for _, s := range dbg.TraceLog(n, cpu.OpcodeOther) {
				term.Print("%s\n", s)
			}

		case "fdd":
			if len(tokens) < 3 {
				term.PrintPen(terminal.PenRed, "fdd needs a drive and a path\n")
				continue
			}
			drive, err := parseNum(tokens[1], 8)
			if err != nil {
				term.PrintPen(terminal.PenRed, "bad drive: %s\n", tokens[1])
				continue
			}
			res := emu.Request(hardware.ReqLoadFDD, hardware.ReqArgs{Drive: int(drive), Path: tokens[2]})
			if res.Err != nil {
				term.PrintPen(terminal.PenRed, "%v\n", res.Err)
			}

		case "dump":
			if len(tokens) < 2 {
				term.PrintPen(terminal.PenRed, "dump needs a file name\n")
				continue
			}
			f, err := os.Create(tokens[1])
			if err != nil {
				term.PrintPen(terminal.PenRed, "%v\n", err)
				continue
			}
			if err := dbg.Dump(f); err != nil {
				term.PrintPen(terminal.PenRed, "%v\n", err)
			}
			_ = f.Close()

		case "log":
			logger.Write(os.Stdout)

		default:
			term.PrintPen(terminal.PenRed, "unknown command: %s\n", tokens[0])
		}
	}
}

func printRegs(term *terminal.Terminal, emu *hardware.Emulation) {
	r := emu.Request(hardware.ReqGetRegs, hardware.ReqArgs{}).Regs
	term.Print("A=%02X F=%02X BC=%02X%02X DE=%02X%02X HL=%02X%02X\n", r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L)
	term.Print("PC=%04X SP=%04X IFF=%v halted=%v cc=%d mode=%02X\n", r.PC, r.SP, r.IFF, r.Halted, r.Cycles, r.MappingMode)
}

func hexDump(term *terminal.Terminal, emu *hardware.Emulation, addr uint16, n int) {
	for i := 0; i < n; i += 16 {
		s := strings.Builder{}
		s.WriteString(fmt.Sprintf("%04X  ", addr+uint16(i)))
		for j := 0; j < 16 && i+j < n; j++ {
			d := emu.Request(hardware.ReqGetByteRAM, hardware.ReqArgs{Addr: addr + uint16(i+j)}).Data
			s.WriteString(fmt.Sprintf("%02X ", d))
		}
		term.Print("%s\n", s.String())
	}
}

func doBreak(term *terminal.Terminal, dbg *debugger.Debugger, tokens []string) {
	if len(tokens) == 0 {
		term.PrintPen(terminal.PenRed, "break needs an address\n")
		return
	}

	switch strings.ToLower(tokens[0]) {
	case "list":
		for _, bp := range dbg.Breakpoints() {
			term.Print("%s\n", bp.String())
		}

	case "del":
		if len(tokens) < 2 {
			term.PrintPen(terminal.PenRed, "break del needs an address\n")
			return
		}
		if addr, err := parseNum(tokens[1], 16); err == nil {
			dbg.DelBreakpoint(uint16(addr))
		}

	default:
		addr, err := parseNum(tokens[0], 16)
		if err != nil {
			term.PrintPen(terminal.PenRed, "bad address: %s\n", tokens[0])
			return
		}
		bp := debugger.Breakpoint{
			Addr:         uint16(addr),
			Status:       debugger.BreakActive,
			MappingPages: debugger.MappingPagesAll,
		}
		if len(tokens) > 1 && strings.EqualFold(tokens[1], "once") {
			bp.AutoDel = true
		}
		dbg.AddBreakpoint(bp)
	}
}

func doWatch(term *terminal.Terminal, dbg *debugger.Debugger, tokens []string) {
	if len(tokens) == 0 {
		term.PrintPen(terminal.PenRed, "watch needs arguments\n")
		return
	}

	switch strings.ToLower(tokens[0]) {
	case "list":
		for _, wp := range dbg.Watchpoints() {
			term.Print("%s\n", wp.String())
		}

	case "del":
		if len(tokens) < 2 {
			term.PrintPen(terminal.PenRed, "watch del needs an id\n")
			return
		}
		if id, err := parseNum(tokens[1], 32); err == nil {
			dbg.DelWatchpoint(int(id))
		}

	case "r", "w", "rw":
		if len(tokens) < 2 {
			term.PrintPen(terminal.PenRed, "watch needs a global address\n")
			return
		}
		addr, err := parseNum(tokens[1], 32)
		if err != nil {
			term.PrintPen(terminal.PenRed, "bad address: %s\n", tokens[1])
			return
		}

		wp := debugger.Watchpoint{
			Addr:   uint32(addr),
			Len:    1,
			Cond:   debugger.CondAny,
			Active: true,
		}
		switch strings.ToLower(tokens[0]) {
		case "r":
			wp.Access = debugger.AccessR
		case "w":
			wp.Access = debugger.AccessW
		default:
			wp.Access = debugger.AccessRW
		}
		if len(tokens) > 2 {
			if v, err := parseNum(tokens[2], 8); err == nil {
				wp.Len = int(v)
			}
		}
		if len(tokens) > 3 {
			if v, err := parseNum(tokens[3], 16); err == nil {
				wp.Cond = debugger.CondEQ
				wp.Value = uint16(v)
			}
		}

		id := dbg.AddWatchpoint(wp)
		term.Print("watchpoint #%d\n", id)

	default:
		term.PrintPen(terminal.PenRed, "unknown watch command: %s\n", tokens[0])
	}
}
