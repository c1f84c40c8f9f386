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

// Package memory is the 64 KiB logical window the CPU sees over the
// 256 KiB physical store, with the Vector06C RAM-disk paging extension:
// port 0x10 selects a bank and whether stack accesses, data writes and
// reads/fetches are remapped into it.
package memory

import (
	"fmt"

	"github.com/osholin/govector06/curated"
)

// Addr is a 16 bit logical address, as seen by the CPU.
type Addr = uint16

// GlobalAddr identifies a byte in the physical store. The translation from
// Addr to GlobalAddr depends on the current RAM-disk mode and the kind of
// access.
type GlobalAddr = uint32

// AccessKind distinguishes the ways the CPU touches memory. The RAM-disk
// hardware remaps stack accesses, data writes and reads/fetches
// independently.
type AccessKind int

// List of valid AccessKind values.
const (
	AccessFetch AccessKind = iota
	AccessRead
	AccessWrite
	AccessStack
)

const (
	// MainLen is the length of the logical address space.
	MainLen = 0x10000

	// GlobalLen is the length of the physical store: four 64 KiB banks laid
	// end to end. bank 0 is the main memory map; banks 0 to 3 are
	// addressable through the RAM-disk mapping.
	GlobalLen = 0x40000

	// RomLen is the maximum size of a boot ROM image.
	RomLen = 0x8000
)

// sentinel error for ROM/program images that don't fit the logical address
// space.
const RomTooLarge = "memory: image of %d bytes does not fit at %#04x"

// Memory is the 64 KiB logical window over the 256 KiB physical store.
type Memory struct {
	mem [GlobalLen]uint8

	// the boot ROM image is kept so that Reset() can restore it. the ROM
	// region itself is ordinary RAM: writes go to the raw store.
	rom []uint8

	// mapping mode as written to port 0x10. bit layout:
	//   bit 7    stack remapping enable
	//   bit 6    read/fetch remapping enable
	//   bit 5    write remapping enable
	//   bits 2-3 RAM-disk bank select
	mappingMode uint8
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{}
}

func (mem *Memory) String() string {
	return fmt.Sprintf("RAM-disk mode=%#02x bank=%d", mem.mappingMode, mem.Bank())
}

// Reset the memory subsystem. The physical store is zeroed, the boot ROM
// image (if any) is restored to the main bank and the RAM-disk mapping
// returns to bank 0 with no remapping.
func (mem *Memory) Reset() {
	for i := range mem.mem {
		mem.mem[i] = 0
	}
	copy(mem.mem[:], mem.rom)
	mem.mappingMode = 0
}

// LoadBoot stores the boot ROM image and copies it to logical 0x0000 of the
// main bank. The image is retained for restoration on Reset().
func (mem *Memory) LoadBoot(data []uint8) error {
	if len(data) > RomLen {
		return curated.Errorf(RomTooLarge, len(data), 0)
	}
	mem.rom = make([]uint8, len(data))
	copy(mem.rom, data)
	copy(mem.mem[:], mem.rom)
	return nil
}

// Load copies data into the physical store starting at the given logical
// address of the main bank.
func (mem *Memory) Load(data []uint8, addr Addr) error {
	if int(addr)+len(data) > MainLen {
		return curated.Errorf(RomTooLarge, len(data), addr)
	}
	copy(mem.mem[addr:], data)
	return nil
}

// Bank returns the RAM-disk bank selected by the current mapping mode.
func (mem *Memory) Bank() uint8 {
	return (mem.mappingMode >> 2) & 0x03
}

// MappingMode returns the raw value last written to port 0x10.
func (mem *Memory) MappingMode() uint8 {
	return mem.mappingMode
}

// SetRAMDiskMode is the port 0x10 handler.
func (mem *Memory) SetRAMDiskMode(v uint8) {
	mem.mappingMode = v
}

// GlobalAddr translates a logical address to its position in the physical
// store for the given access kind.
func (mem *Memory) GlobalAddr(addr Addr, kind AccessKind) GlobalAddr {
	m := mem.mappingMode

	var remap bool
	switch kind {
	case AccessStack:
		remap = m&0x80 == 0x80
	case AccessWrite:
		remap = m&0x20 == 0x20
	case AccessRead, AccessFetch:
		remap = m&0x40 == 0x40
	}

	if !remap {
		return GlobalAddr(addr)
	}

	// the physical store is four 64 KiB banks laid end to end. unmapped
	// accesses resolve to bank 0
	return GlobalAddr((m>>2)&0x03)*MainLen + GlobalAddr(addr)
}

// GetByte returns the byte at the resolved global address. kind must be one
// of AccessFetch, AccessRead or AccessStack.
func (mem *Memory) GetByte(addr Addr, kind AccessKind) uint8 {
	return mem.mem[mem.GlobalAddr(addr, kind)]
}

// SetByte stores a byte at the resolved global address. kind must be one of
// AccessWrite or AccessStack.
func (mem *Memory) SetByte(addr Addr, val uint8, kind AccessKind) {
	mem.mem[mem.GlobalAddr(addr, kind)] = val
}

// GetThreeBytes returns three consecutive logical bytes packed
// little-endian, wrapping around at the top of the logical address space.
// Used by the disassembler.
func (mem *Memory) GetThreeBytes(addr Addr) uint32 {
	b0 := uint32(mem.GetByte(addr, AccessRead))
	b1 := uint32(mem.GetByte(addr+1, AccessRead))
	b2 := uint32(mem.GetByte(addr+2, AccessRead))
	return b2<<16 | b1<<8 | b0
}

// Peek returns the byte at a global address without translation. Used by the
// debugger and the display rasteriser.
func (mem *Memory) Peek(g GlobalAddr) uint8 {
	if g >= GlobalLen {
		panic(fmt.Sprintf("memory: peek outside physical store (%#x)", g))
	}
	return mem.mem[g]
}

// Poke stores a byte at a global address without translation. Used by the
// debugger's SET_MEM request.
func (mem *Memory) Poke(g GlobalAddr, val uint8) {
	if g >= GlobalLen {
		panic(fmt.Sprintf("memory: poke outside physical store (%#x)", g))
	}
	mem.mem[g] = val
}
