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

// Package debugger observes the machine as it runs and decides when it
// should stop.
//
// The observation hooks (ReadInstr, Read, Write, CheckBreak) are called on
// the emulation goroutine for every instruction fetch and every data
// access; they update the per-address counters, the trace log and the
// watchpoint latches and must stay cheap. Everything else - the
// breakpoint/watchpoint tables, the disassembler, the trace-log viewer -
// is driven from the UI goroutine. The tables are mutex guarded; the
// counters are plain arrays read unguarded by the UI, which tolerates the
// slightly stale values in exchange for an unencumbered hot path.
package debugger

import (
	"sync"

	"github.com/osholin/govector06/disassembly"
	"github.com/osholin/govector06/hardware"
	"github.com/osholin/govector06/hardware/memory"
	"github.com/osholin/govector06/symbols"
)

// size of the recent reads/writes rings.
const lastRWMax = 1024

// ring slots that have never held an address.
const lastRWNoData = ^uint32(0)

// Debugger is the observation layer around a Vector.
type Debugger struct {
	emu *hardware.Emulation

	// the machine itself, touched only by Dump() and only while the
	// machine is stopped
	vcs *hardware.Vector

	sym *symbols.Table
	dsm *disassembly.Disassembly

	// per-global-address counters, written by the hooks
	runs   []uint64
	reads  []uint64
	writes []uint64

	// watchpoint hits latched on the hot path, consumed at the next
	// instruction boundary. single writer, single reader, both on the
	// emulation goroutine: no synchronisation needed
	wpBreak bool

	trace traceLog

	breakpointsMutex sync.Mutex
	breakpoints      map[uint16]Breakpoint

	watchpointsMutex sync.Mutex
	watchpoints      map[int]Watchpoint
	watchpointNextID int

	// recent-access rings, written by the hooks and snapshotted by
	// UpdateLastRW
	lastRWMutex   sync.Mutex
	lastReads     [lastRWMax]uint32
	lastWrites    [lastRWMax]uint32
	lastReadsIdx  int
	lastWritesIdx int

	// the rings as they were at the previous UpdateLastRW, for undoing
	// stale recency values
	lastReadsOld  [lastRWMax]uint32
	lastWritesOld [lastRWMax]uint32

	// packed recency by global address: low 16 bits reads, high 16 bits
	// writes
	memLastRW []uint32
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type. The caller plumbs the result into the hardware with Vector.Plumb.
func NewDebugger(vcs *hardware.Vector, emu *hardware.Emulation, sym *symbols.Table) *Debugger {
	dbg := &Debugger{
		vcs:       vcs,
		emu:       emu,
		sym:       sym,
		runs:      make([]uint64, memory.GlobalLen),
		reads:     make([]uint64, memory.GlobalLen),
		writes:    make([]uint64, memory.GlobalLen),
		memLastRW: make([]uint32, memory.GlobalLen),
	}
	dbg.dsm = disassembly.NewDisassembly(dbg, sym)
	dbg.breakpoints = make(map[uint16]Breakpoint)
	dbg.watchpoints = make(map[int]Watchpoint)
	dbg.Reset()
	return dbg
}

// Reset clears every observation: counters, trace log, recency data, and
// the breakpoint and watchpoint tables. Called by the hardware on machine
// reset.
func (dbg *Debugger) Reset() {
	for i := range dbg.runs {
		dbg.runs[i] = 0
		dbg.reads[i] = 0
		dbg.writes[i] = 0
		dbg.memLastRW[i] = 0
	}

	dbg.trace.clear()

	dbg.lastRWMutex.Lock()
	for i := range dbg.lastReads {
		dbg.lastReads[i] = lastRWNoData
		dbg.lastWrites[i] = lastRWNoData
		dbg.lastReadsOld[i] = lastRWNoData
		dbg.lastWritesOld[i] = lastRWNoData
	}
	dbg.lastReadsIdx = 0
	dbg.lastWritesIdx = 0
	dbg.lastRWMutex.Unlock()

	dbg.DelBreakpoints()
	dbg.DelWatchpoints()
	dbg.wpBreak = false
}

// Disasm returns the disassembler over this debugger's view of the
// machine.
func (dbg *Debugger) Disasm() *disassembly.Disassembly {
	return dbg.dsm
}

// LoadDebugData loads the labels/consts/comments beside a ROM image. As
// with a machine reset, the breakpoint and watchpoint tables are cleared.
func (dbg *Debugger) LoadDebugData(romPath string) error {
	dbg.DelBreakpoints()
	dbg.DelWatchpoints()
	return dbg.sym.ReadDebugData(romPath)
}

// ReadInstr is the instruction fetch hook. Called exactly once per
// executed instruction, on the emulation goroutine.
func (dbg *Debugger) ReadInstr(globalAddr uint32, opcode uint8, dataH uint8, dataL uint8, hl uint16) {
	dbg.runs[globalAddr]++
	dbg.trace.update(globalAddr, opcode, dataH, dataL)
}

// Read is the data read hook.
func (dbg *Debugger) Read(globalAddr uint32, val uint8) {
	dbg.reads[globalAddr]++
	if dbg.checkWatchpoints(AccessR, globalAddr, val) {
		dbg.wpBreak = true
	}

	dbg.lastRWMutex.Lock()
	dbg.lastReads[dbg.lastReadsIdx] = globalAddr
	dbg.lastReadsIdx = (dbg.lastReadsIdx + 1) % lastRWMax
	dbg.lastRWMutex.Unlock()
}

// Write is the data write hook.
func (dbg *Debugger) Write(globalAddr uint32, val uint8) {
	dbg.writes[globalAddr]++
	if dbg.checkWatchpoints(AccessW, globalAddr, val) {
		dbg.wpBreak = true
	}

	dbg.lastRWMutex.Lock()
	dbg.lastWrites[dbg.lastWritesIdx] = globalAddr
	dbg.lastWritesIdx = (dbg.lastWritesIdx + 1) % lastRWMax
	dbg.lastRWMutex.Unlock()
}

// CheckBreak is consulted at every instruction boundary. A latched
// watchpoint hit wins over the breakpoint table and resets every one-shot
// latch.
func (dbg *Debugger) CheckBreak(addr uint16, mappingMode uint8, page uint8) bool {
	if dbg.wpBreak {
		dbg.wpBreak = false
		dbg.resetWatchpoints()
		return true
	}

	return dbg.checkBreakpoints(addr, mappingMode, page)
}

// Counts returns the observation counters for a global address. Part of
// the disassembly Source.
func (dbg *Debugger) Counts(globalAddr uint32) (uint64, uint64, uint64) {
	return dbg.runs[globalAddr], dbg.reads[globalAddr], dbg.writes[globalAddr]
}

// ReadByte reads a logical address through the request dispatcher. Part of
// the disassembly Source. Must not be called from the emulation goroutine.
func (dbg *Debugger) ReadByte(addr uint16) uint8 {
	return dbg.emu.Request(hardware.ReqGetByteRAM, hardware.ReqArgs{Addr: addr}).Data
}

// ReadThreeBytes reads three logical bytes, packed little-endian, through
// the request dispatcher. Part of the disassembly Source.
func (dbg *Debugger) ReadThreeBytes(addr uint16) uint32 {
	return dbg.emu.Request(hardware.ReqGetThreeBytesRAM, hardware.ReqArgs{Addr: addr}).Word
}

// GlobalAddr translates a logical address under the current RAM-disk
// mapping, through the request dispatcher. Part of the disassembly Source.
func (dbg *Debugger) GlobalAddr(addr uint16) uint32 {
	return dbg.emu.Request(hardware.ReqGetGlobalAddrRAM, hardware.ReqArgs{Addr: addr}).Word
}

// UpdateLastRW folds the recent-access rings into the packed recency
// array: for every address in a ring, the low (reads) or high (writes) 16
// bits give how recently it was touched: the newest ring entry reads as
// lastRWMax-1 and each older entry one less, so larger is more recent (the
// oldest entry of a full ring reads as 0). Addresses that have dropped out
// of the rings since the previous call are cleared.
func (dbg *Debugger) UpdateLastRW() {
	// undo the previous snapshot
	for i := 0; i < lastRWMax; i++ {
		if g := dbg.lastReadsOld[i]; g != lastRWNoData {
			dbg.memLastRW[g] = 0
		}
		if g := dbg.lastWritesOld[i]; g != lastRWNoData {
			dbg.memLastRW[g] = 0
		}
	}

	dbg.lastRWMutex.Lock()
	defer dbg.lastRWMutex.Unlock()

	idx := dbg.lastReadsIdx
	for _, g := range dbg.lastReads {
		if g != lastRWNoData {
			recency := uint32(lastRWMax-idx) % lastRWMax
			dbg.memLastRW[g] = dbg.memLastRW[g]&0xffff0000 | recency
		}
		idx--
		if idx < 0 {
			idx += lastRWMax
		}
	}

	idx = dbg.lastWritesIdx
	for _, g := range dbg.lastWrites {
		if g != lastRWNoData {
			recency := uint32(lastRWMax-idx) % lastRWMax
			dbg.memLastRW[g] = dbg.memLastRW[g]&0x0000ffff | recency<<16
		}
		idx--
		if idx < 0 {
			idx += lastRWMax
		}
	}

	dbg.lastReadsOld = dbg.lastReads
	dbg.lastWritesOld = dbg.lastWrites
}

// LastRW returns the packed recency array indexed by global address.
// Refreshed by UpdateLastRW.
func (dbg *Debugger) LastRW() []uint32 {
	return dbg.memLastRW
}
