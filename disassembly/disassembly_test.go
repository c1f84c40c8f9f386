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

package disassembly_test

import (
	"testing"

	"github.com/osholin/govector06/disassembly"
	"github.com/osholin/govector06/symbols"
	"github.com/osholin/govector06/test"
)

// flatSource is a Source over a plain 64 KiB array with no RAM-disk
// mapping.
type flatSource struct {
	mem   [0x10000]uint8
	runs  map[uint32]uint64
	bps    map[uint16]bool
}

func newFlatSource(program []uint8, origin uint16) *flatSource {
	src := &flatSource{
		runs:   make(map[uint32]uint64),
		bps:    make(map[uint16]bool),
	}
	copy(src.mem[origin:], program)
	return src
}

func (src *flatSource) ReadByte(addr uint16) uint8 {
	return src.mem[addr]
}

func (src *flatSource) ReadThreeBytes(addr uint16) uint32 {
	return uint32(src.mem[addr]) | uint32(src.mem[addr+1])<<8 | uint32(src.mem[addr+2])<<16
}

func (src *flatSource) GlobalAddr(addr uint16) uint32 {
	return uint32(addr)
}

func (src *flatSource) Counts(g uint32) (uint64, uint64, uint64) {
	return src.runs[g], 0, 0
}

func (src *flatSource) HasBreakpoint(addr uint16) bool {
	return src.bps[addr]
}

// codeLines filters a window down to its code/data lines.
func codeLines(entries []disassembly.Entry) []disassembly.Entry {
	out := []disassembly.Entry{}
	for _, e := range entries {
		if e.Type == disassembly.LineCode || e.Type == disassembly.LineData {
			out = append(out, e)
		}
	}
	return out
}

func TestForwardWalk(t *testing.T) {
	// nop / lxi h,0x1234 / mov a,b / jmp 0x0000
	src := newFlatSource([]uint8{0x00, 0x21, 0x34, 0x12, 0x78, 0xc3, 0x00, 0x00}, 0)
	dsm := disassembly.NewDisassembly(src, symbols.NewTable())

	test.Equate(t, dsm.GetAddr(0, 1), 0x0001)
	test.Equate(t, dsm.GetAddr(0, 2), 0x0004)
	test.Equate(t, dsm.GetAddr(0, 3), 0x0005)
}

func TestBackwardWalk(t *testing.T) {
	src := newFlatSource([]uint8{0x00, 0x21, 0x34, 0x12, 0x78, 0xc3, 0x00, 0x00}, 0)
	dsm := disassembly.NewDisassembly(src, symbols.NewTable())

	// two decodes land exactly on 0x0004 in two instructions: from 0x0000
	// (nop, lxi) and from 0x0002 (inr m, stax d). with no run counts the
	// lowest start wins
	test.Equate(t, dsm.GetAddr(0x0004, -2), 0x0000)
}

func TestBackwardWalkPrefersExecuted(t *testing.T) {
	// at 0x0100: 0x00 0x3e 0x00 ... both 0x0100 (nop, mvi) and 0x0101
	// (mvi spanning 2) are valid two-instruction and one-instruction
	// prefixes of 0x0103
	src := newFlatSource([]uint8{0x00, 0x3e, 0x00, 0x76}, 0x0100)
	dsm := disassembly.NewDisassembly(src, symbols.NewTable())

	// with no execution counts the lowest candidate wins
	a := dsm.GetAddr(0x0103, -1)
	test.Equate(t, a, 0x0101)

	// mark 0x0102 as executed: 0x0102 decodes as nop, landing on 0x0103
	// in one instruction
	src.runs[0x0102] = 1
	a = dsm.GetAddr(0x0103, -1)
	test.Equate(t, a, 0x0102)
}

func TestIdempotence(t *testing.T) {
	// a run of three-byte instructions
	program := []uint8{}
	for i := 0; i < 8; i++ {
		program = append(program, 0xc3, 0x00, 0x00) // jmp
	}
	src := newFlatSource(program, 0x0200)
	dsm := disassembly.NewDisassembly(src, symbols.NewTable())

	for k := 1; k < 5; k++ {
		fwd := dsm.GetAddr(0x0200, k)
		test.Equate(t, dsm.GetAddr(fwd, -k), 0x0200)
	}
}

func TestWindowEmission(t *testing.T) {
	src := newFlatSource([]uint8{0x00, 0x21, 0x34, 0x12, 0x76}, 0)
	sym := symbols.NewTable()
	sym.AddLabel(0x0001, "start")
	sym.SetComment(0x0001, "load the screen pointer")

	dsm := disassembly.NewDisassembly(src, sym)
	entries := dsm.Window(0, 3, 0)

	// nop, label, comment, lxi, hlt
	test.Equate(t, len(entries), 5)
	test.Equate(t, int(entries[0].Type), int(disassembly.LineCode))
	test.Equate(t, entries[1].Text, "start")
	test.Equate(t, int(entries[2].Type), int(disassembly.LineComment))
	test.Equate(t, entries[3].Text, "lxi h 0x1234")
	test.Equate(t, entries[4].Addr, 0x0004)
}

func TestOperandSubstitution(t *testing.T) {
	src := newFlatSource([]uint8{0xc3, 0x00, 0x80, 0x3e, 0x10}, 0)
	sym := symbols.NewTable()
	sym.AddConst(0x8000, "SCREEN")
	sym.AddLabel(0x0010, "TEN")

	dsm := disassembly.NewDisassembly(src, sym)
	entries := codeLines(dsm.Window(0, 2, 0))

	test.Equate(t, entries[0].Text, "jmp SCREEN;0x8000")
	test.Equate(t, entries[1].Text, "mvi a TEN;0x10")

	// a second name for the same value suppresses substitution
	sym.AddConst(0x8000, "VRAM")
	entries = codeLines(dsm.Window(0, 1, 0))
	test.Equate(t, entries[0].Text, "jmp 0x8000")
}

func TestDataBlobFallback(t *testing.T) {
	// no candidate start decodes onto 0x0110: the nops immediately before
	// the target fall one byte short and the final byte is a three byte
	// opcode that overshoots
	src := newFlatSource(make([]uint8, 0x20), 0x0100)
	src.mem[0x010f] = 0xc3

	dsm := disassembly.NewDisassembly(src, symbols.NewTable())
	entries := codeLines(dsm.Window(0x0110, 2, -1))

	// one DB line then the code window
	test.Equate(t, int(entries[0].Type), int(disassembly.LineData))
	test.Equate(t, entries[0].Addr, 0x010f)
	test.Equate(t, entries[0].Text, "DB 0xC3")
	test.Equate(t, int(entries[1].Type), int(disassembly.LineCode))
	test.Equate(t, entries[1].Addr, 0x0110)
}

func TestBreakpointFlag(t *testing.T) {
	src := newFlatSource([]uint8{0x00, 0x00}, 0)
	src.bps[0x0001] = true

	dsm := disassembly.NewDisassembly(src, symbols.NewTable())
	entries := codeLines(dsm.Window(0, 2, 0))
	test.ExpectedFailure(t, entries[0].Breakpoint)
	test.ExpectedSuccess(t, entries[1].Breakpoint)
}
