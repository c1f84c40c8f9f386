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

package debugger

import (
	"fmt"

	"github.com/osholin/govector06/disassembly"
	"github.com/osholin/govector06/hardware/cpu"
)

// TraceLogSize is the capacity of the trace log. Must be a power of two:
// the newest-first index arithmetic wraps with a mask.
const TraceLogSize = 1 << 17

// TraceEntry is one executed instruction. An entry with a negative
// GlobalAddr is empty.
type TraceEntry struct {
	GlobalAddr int32
	Opcode     uint8
	DataL      uint8
	DataH      uint8
}

func (e TraceEntry) String() string {
	return fmt.Sprintf("0x%05X %s", e.GlobalAddr, disassembly.Mnemonic(e.Opcode, e.DataL, e.DataH))
}

// traceLog is the circular, newest-first record of executed instructions.
// A monotonically decreasing index wraps mod TraceLogSize so that index 0
// is always the newest record.
type traceLog struct {
	entries [TraceLogSize]TraceEntry
	idx     int
}

func (tl *traceLog) clear() {
	for i := range tl.entries {
		tl.entries[i] = TraceEntry{GlobalAddr: -1}
	}
	tl.idx = 0
}

// update records an instruction. Successive identical HLTs are coalesced:
// a halted CPU spinning on the same instruction does not flood the log.
func (tl *traceLog) update(globalAddr uint32, opcode uint8, dataH uint8, dataL uint8) {
	if opcode == cpu.OpcodeHLT && tl.entries[tl.idx].Opcode == cpu.OpcodeHLT {
		return
	}

	tl.idx = (tl.idx - 1) & (TraceLogSize - 1)
	tl.entries[tl.idx] = TraceEntry{
		GlobalAddr: int32(globalAddr),
		Opcode:     opcode,
		DataL:      dataL,
		DataH:      dataH,
	}
}

// at returns the record offset instructions into the past: offset 0 is the
// most recently executed instruction.
func (tl *traceLog) at(offset int) TraceEntry {
	return tl.entries[(tl.idx+offset)&(TraceLogSize-1)]
}

// TraceEntryAt returns the record offset instructions into the past.
// ok is false once the offset runs past the recorded history.
func (dbg *Debugger) TraceEntryAt(offset int) (TraceEntry, bool) {
	if offset < 0 || offset >= TraceLogSize {
		return TraceEntry{}, false
	}
	e := dbg.trace.at(offset)
	return e, e.GlobalAddr >= 0
}

// TraceLog formats the newest lines of the trace log whose opcode type
// passes the filter. Types are ordered (calls first, plain instructions
// last): a filter of cpu.OpcodeOther admits everything, cpu.OpcodeCondJmp
// admits only flow control, and so on.
func (dbg *Debugger) TraceLog(lines int, filter cpu.OpcodeType) []string {
	out := make([]string, 0, lines)

	for offset := 0; offset < TraceLogSize && len(out) < lines; offset++ {
		e := dbg.trace.at(offset)
		if e.GlobalAddr < 0 {
			break
		}
		if cpu.Types[e.Opcode] > filter {
			continue
		}

		s := e.String()

		// annotate flow-control targets with their registered names
		if cpu.Types[e.Opcode] < cpu.OpcodeRet {
			target := uint16(e.DataH)<<8 | uint16(e.DataL)
			if name, ok := dbg.sym.Label(target); ok {
				s += fmt.Sprintf(" ; %s", name)
			}
		}

		out = append(out, s)
	}

	return out
}
