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

// Package disassembly produces windows of disassembled i8080 instructions.
// The disassembler is linear: it walks the opcode length table rather than
// following flow. Disassembling backwards from an address is inherently
// ambiguous so every candidate start is tried and validated, preferring
// candidates whose first instruction has actually been executed.
package disassembly

import (
	"fmt"

	"github.com/osholin/govector06/hardware/cpu"
	"github.com/osholin/govector06/symbols"
)

// Source is the (serialized) view of the machine the disassembler reads.
// Implementations route through the request dispatcher so the emulation is
// only inspected between instructions.
type Source interface {
	ReadByte(addr uint16) uint8
	ReadThreeBytes(addr uint16) uint32
	GlobalAddr(addr uint16) uint32

	// per-address observation counters, by global address
	Counts(globalAddr uint32) (runs uint64, reads uint64, writes uint64)

	// whether an active breakpoint sits at the address
	HasBreakpoint(addr uint16) bool
}

// LineType distinguishes the lines of a disassembly window.
type LineType int

// List of LineType values.
const (
	LineLabel LineType = iota
	LineComment
	LineCode
	LineData
)

// Entry is one line of a disassembly window.
type Entry struct {
	Type LineType
	Addr uint16

	// the formatted line: mnemonic with operands for code, the raw byte
	// for data, the name for labels, the text for comments
	Text string

	// number of bytes consumed (code and data lines only)
	Bytes int

	Runs   uint64
	Reads  uint64
	Writes uint64

	Breakpoint bool
}

func (e Entry) String() string {
	switch e.Type {
	case LineLabel:
		return fmt.Sprintf("%s:", e.Text)
	case LineComment:
		return fmt.Sprintf("; %s", e.Text)
	}
	return fmt.Sprintf("0x%04X %s", e.Addr, e.Text)
}

// Disassembly windows the machine through a Source.
type Disassembly struct {
	src Source
	sym *symbols.Table
}

// NewDisassembly is the preferred method of initialisation for the
// Disassembly type.
func NewDisassembly(src Source, sym *symbols.Table) *Disassembly {
	return &Disassembly{src: src, sym: sym}
}

// Mnemonic formats a single instruction without symbol substitution.
func Mnemonic(opcode uint8, dataL uint8, dataH uint8) string {
	switch cpu.Lengths[opcode] {
	case 2:
		return fmt.Sprintf("%s 0x%02X", cpu.Mnemonics[opcode], dataL)
	case 3:
		return fmt.Sprintf("%s 0x%04X", cpu.Mnemonics[opcode], uint16(dataH)<<8|uint16(dataL))
	}
	return cpu.Mnemonics[opcode]
}

// mnemonic formats a single instruction, substituting a label or constant
// for the operand when exactly one name is registered for its value.
func (dsm *Disassembly) mnemonic(opcode uint8, dataL uint8, dataH uint8) string {
	switch cpu.Lengths[opcode] {
	case 2:
		name, ok := dsm.sym.Label(uint16(dataL))
		if !ok {
			name, ok = dsm.sym.Const(uint16(dataL))
		}
		if ok {
			return fmt.Sprintf("%s %s;0x%02X", cpu.Mnemonics[opcode], name, dataL)
		}
		return fmt.Sprintf("%s 0x%02X", cpu.Mnemonics[opcode], dataL)

	case 3:
		w := uint16(dataH)<<8 | uint16(dataL)
		name, ok := dsm.sym.Label(w)
		if !ok {
			name, ok = dsm.sym.Const(w)
		}
		if ok {
			return fmt.Sprintf("%s %s;0x%04X", cpu.Mnemonics[opcode], name, w)
		}
		return fmt.Sprintf("%s 0x%04X", cpu.Mnemonics[opcode], w)
	}

	return cpu.Mnemonics[opcode]
}

// maximum number of candidate start addresses tried when walking backwards.
const maxAttempts = 41

// GetAddr shifts addr by an instruction count. A positive offset walks
// forward summing instruction lengths. A negative offset tries every
// candidate start address in [addr+offset*3, addr) and keeps those from
// which walking forward by |offset| instructions lands exactly on addr;
// among those, a candidate whose start has been executed wins, otherwise
// the lowest. If no candidate is valid addr is returned unchanged.
func (dsm *Disassembly) GetAddr(addr uint16, instructionOffset int) uint16 {
	if instructionOffset > 0 {
		a := addr
		for i := 0; i < instructionOffset; i++ {
			a += uint16(cpu.Lengths[dsm.src.ReadByte(a)])
		}
		return a
	}

	if instructionOffset == 0 {
		return addr
	}

	instructions := -instructionOffset
	var candidates []uint16

	start := int(addr) - instructions*cpu.MaxInstructionLen

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if start+instructions > int(addr) {
			break
		}
		if start >= 0 {
			a := start
			n := 0
			for a < int(addr) && n < instructions {
				a += cpu.Lengths[dsm.src.ReadByte(uint16(a))]
				n++
			}
			if a == int(addr) && n == instructions {
				candidates = append(candidates, uint16(start))
			}
		}
		start++
	}

	if len(candidates) == 0 {
		return addr
	}

	for _, c := range candidates {
		if runs, _, _ := dsm.src.Counts(dsm.src.GlobalAddr(c)); runs > 0 {
			return c
		}
	}
	return candidates[0]
}

// Window produces a disassembly of numLines lines. instructionOffset
// positions the start of the window relative to addr, in instructions:
// zero starts at addr, -5 starts five instructions before it. Label and
// comment lines are interleaved and do not count against numLines.
func (dsm *Disassembly) Window(addr uint16, numLines int, instructionOffset int) []Entry {
	if numLines <= 0 {
		return nil
	}

	entries := make([]Entry, 0, numLines)

	a := dsm.GetAddr(addr, instructionOffset)

	if instructionOffset < 0 && a == addr {
		// no valid instruction sequence fits the range before addr: a
		// data blob is ahead. emit it as data bytes
		a = addr + uint16(instructionOffset)
		for i := 0; i < -instructionOffset; i++ {
			entries = dsm.appendAnnotations(entries, a)
			entries = append(entries, dsm.dataEntry(a))
			a++
		}
	}

	for lines := 0; lines < numLines; lines++ {
		entries = dsm.appendAnnotations(entries, a)
		e := dsm.codeEntry(a)
		entries = append(entries, e)
		a += uint16(e.Bytes)
	}

	return entries
}

// appendAnnotations adds the label and comment lines registered for an
// address.
func (dsm *Disassembly) appendAnnotations(entries []Entry, addr uint16) []Entry {
	for _, l := range dsm.sym.Labels[addr] {
		entries = append(entries, Entry{Type: LineLabel, Addr: addr, Text: l})
	}
	if c, ok := dsm.sym.Comments[addr]; ok {
		entries = append(entries, Entry{Type: LineComment, Addr: addr, Text: c})
	}
	return entries
}

func (dsm *Disassembly) dataEntry(addr uint16) Entry {
	g := dsm.src.GlobalAddr(addr)
	runs, reads, writes := dsm.src.Counts(g)
	return Entry{
		Type:       LineData,
		Addr:       addr,
		Text:       fmt.Sprintf("DB 0x%02X", dsm.src.ReadByte(addr)),
		Bytes:      1,
		Runs:       runs,
		Reads:      reads,
		Writes:     writes,
		Breakpoint: dsm.src.HasBreakpoint(addr),
	}
}

func (dsm *Disassembly) codeEntry(addr uint16) Entry {
	cmd := dsm.src.ReadThreeBytes(addr)
	opcode := uint8(cmd)
	dataL := uint8(cmd >> 8)
	dataH := uint8(cmd >> 16)

	g := dsm.src.GlobalAddr(addr)
	runs, reads, writes := dsm.src.Counts(g)

	return Entry{
		Type:       LineCode,
		Addr:       addr,
		Text:       dsm.mnemonic(opcode, dataL, dataH),
		Bytes:      cpu.Lengths[opcode],
		Runs:       runs,
		Reads:      reads,
		Writes:     writes,
		Breakpoint: dsm.src.HasBreakpoint(addr),
	}
}
