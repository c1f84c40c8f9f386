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

// Package fdc emulates the KR1818WG93 floppy disk controller, the Soviet
// WD1793 analog, with the Kishinev drive select wiring of the Vector06C.
package fdc

import (
	"fmt"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/logger"
)

// Register numbering. The command and status registers share a number, as
// do ready and system-select: the direction of the access distinguishes
// them.
const (
	PortCommand = 0
	PortStatus  = 0
	PortTrack   = 1
	PortSector  = 2
	PortData    = 3
	PortReady   = 4
	PortSystem  = 4
)

// NumDrives is the number of drive slots.
const NumDrives = 4

// status register bits. type I commands and the data transfer commands
// overlay different meanings on the low bits.
const (
	fBusy     = 0x01
	fIndex    = 0x02
	fDRQ      = 0x02
	fTrack0   = 0x04
	fLostData = 0x04
	fErrCode  = 0x18
	fNotFound = 0x10
	fHeadLoad = 0x20
	fReadOnly = 0x40
	fNotReady = 0x80
)

// command modifier bits.
const (
	cSideComp = 0x02
	cLoadHead = 0x08
	cSide     = 0x08
	cIRQ      = 0x08
	cSetTrack = 0x10
	cMulti    = 0x10
)

// values reported through the ready port.
const (
	lineIRQ = 0x80
	lineDRQ = 0x40
)

// system register bits (Kishinev wiring: 0011xSAB).
const (
	sDrive = 0x03
)

// FDC is the disk controller with its four drive slots.
type FDC struct {
	// the five memory mapped registers: status/command, track, sector,
	// data, system
	regs [5]uint8

	drive uint8
	side  uint8

	// per-drive head position
	track [NumDrives]uint8

	// last STEP direction, latched by bit 5 of stepping opcodes with bit 6
	// set
	lastStep uint8

	// pending IRQ/DRQ lines, polled through the ready port
	irq uint8

	// timeout watchdog serviced by ready-port reads
	wait uint8

	// last command written
	cmd uint8

	rdLength int
	wrLength int

	// transfer position within the selected disk, or within the sector
	// header after READ-ADDRESS
	ptr        int
	fromHeader bool

	disks [NumDrives]FDisk
}

// NewFDC is the preferred method of initialisation for the FDC type.
func NewFDC() *FDC {
	f := &FDC{}
	f.Reset()
	return f
}

// Reset the controller. Mounted disks stay mounted.
func (f *FDC) Reset() {
	f.regs = [5]uint8{}
	f.drive = 0
	f.side = 0
	f.lastStep = 0
	f.irq = 0
	f.wait = 0
	f.cmd = 0xd0
	f.rdLength = 0
	f.wrLength = 0
	f.ptr = 0
	f.fromHeader = false
	for i := range f.track {
		f.track[i] = 0
	}
}

func (f *FDC) String() string {
	return fmt.Sprintf("drive=%d side=%d track=%d status=%#02x", f.drive, f.side, f.track[f.drive], f.regs[0])
}

// Disk returns the drive's disk slot.
func (f *FDC) Disk(drive int) *FDisk {
	return &f.disks[drive]
}

// Mount a disk image in the drive slot. A disk already in the slot is
// ejected first.
func (f *FDC) Mount(drive int, dsk FDisk) error {
	if drive < 0 || drive >= NumDrives {
		return curated.Errorf(BadDrive, drive)
	}
	if err := f.Eject(drive); err != nil {
		// the new mount goes ahead; the flush failure has been reported
		logger.Logf("fdc", "eject: %v", err)
	}
	f.disks[drive] = dsk
	logger.Logf("fdc", "drive %d: %s", drive, dsk.Name())
	return nil
}

// Eject the disk from the drive slot, flushing it back to its backing file
// if it has been written to.
func (f *FDC) Eject(drive int) error {
	dsk := &f.disks[drive]
	if !dsk.loaded {
		return nil
	}
	err := dsk.Flush()
	f.disks[drive] = FDisk{}
	return err
}

// seek positions the transfer pointer at the requested sector and
// synthesises the sector header. returns false if the sector cannot exist
// on a Vector06C format disk.
func (f *FDC) seek(side int, track int, sideID int, trackID int, sectorID int) bool {
	dsk := &f.disks[f.drive]
	if !dsk.loaded {
		return false
	}

	sec := SectorsPerTrack * (trackID*SidesPerDisk + sideID)
	adj := sectorID - 1
	if adj < 0 {
		// CHS sector numbers start at 1
		adj = 0
	}
	pos := (sec + adj) * SectorLen

	if pos < 0 || pos >= DataLen {
		return false
	}

	dsk.header = [6]uint8{uint8(trackID), uint8(sideID), uint8(sectorID), 0x03, 0x00, 0x00}

	f.ptr = pos
	f.fromHeader = false
	return true
}

// sideID resolves the side comparison bits of a read/write command.
func (f *FDC) sideID(v uint8) int {
	if v&cSideComp == cSideComp {
		if v&cSide == cSide {
			return 1
		}
		return 0
	}
	return int(f.side)
}

// transferLength computes the residual byte count for a read/write command.
func (f *FDC) transferLength(v uint8) int {
	if v&cMulti == cMulti {
		return SectorLen * (SectorsPerTrack - int(f.regs[2]) + 1)
	}
	return SectorLen
}

// Read services a CPU read of a controller register.
func (f *FDC) Read(reg uint8) uint8 {
	dsk := &f.disks[f.drive]

	switch reg {
	case PortStatus:
		v := f.regs[0]
		if !dsk.loaded {
			v |= fNotReady
		}
		if f.cmd < 0x80 || f.cmd == 0xd0 {
			// type I commands: flip the index bit as the disk rotates
			f.regs[0] = (f.regs[0] ^ fIndex) & (fIndex | fBusy | fNotReady | fReadOnly | fTrack0)
		} else {
			f.regs[0] &= fBusy | fNotReady | fReadOnly | fDRQ
		}
		return v

	case PortTrack, PortSector:
		return f.regs[reg]

	case PortData:
		if f.rdLength > 0 {
			f.regs[PortData] = f.readByte()
			f.rdLength--
			if f.rdLength > 0 {
				f.wait = 255
				if !f.fromHeader && f.rdLength&(SectorLen-1) == 0 {
					f.regs[2]++
				}
			} else {
				f.regs[0] &^= fDRQ | fBusy
				f.irq = lineIRQ
			}
		}
		return f.regs[PortData]

	case PortReady:
		// after some idling, stop read/write operations
		if f.wait > 0 {
			f.wait--
			if f.wait == 0 {
				f.rdLength = 0
				f.wrLength = 0
				f.regs[0] = f.regs[0]&^(fDRQ|fBusy) | fLostData
				f.irq = lineIRQ
			}
		}
		return f.irq
	}

	return 0xff
}

func (f *FDC) readByte() uint8 {
	dsk := &f.disks[f.drive]
	if f.fromHeader {
		if f.ptr < len(dsk.header) {
			v := dsk.header[f.ptr]
			f.ptr++
			return v
		}
		return 0
	}
	if f.ptr < DataLen {
		v := dsk.data[f.ptr]
		f.ptr++
		return v
	}
	return 0
}

// Write services a CPU write of a controller register. The returned value
// is the new state of the IRQ/DRQ lines.
func (f *FDC) Write(reg uint8, v uint8) uint8 {
	dsk := &f.disks[f.drive]

	switch reg {
	case PortCommand:
		f.command(v)

	case PortTrack, PortSector:
		if f.regs[0]&fBusy == 0 {
			f.regs[reg] = v
		}

	case PortSystem:
		// Kishinev wiring: 0011xSAB. A/B select the drive, S is the
		// inverted side
		f.drive = v & sDrive
		f.side = (^v >> 2) & 0x01
		f.regs[PortSystem] = v

	case PortData:
		if f.wrLength > 0 {
			f.writeByte(v)
			dsk.dirty = true
			f.wrLength--
			if f.wrLength > 0 {
				f.wait = 255
				if f.wrLength&(SectorLen-1) == 0 {
					f.regs[2]++
				}
			} else {
				f.regs[0] &^= fDRQ | fBusy
				f.irq = lineIRQ
			}
		}
		f.regs[PortData] = v
	}

	return f.irq
}

func (f *FDC) writeByte(v uint8) {
	dsk := &f.disks[f.drive]
	if f.ptr < DataLen {
		dsk.data[f.ptr] = v
		f.ptr++
	}
}

// command dispatches a write to the command register.
func (f *FDC) command(v uint8) {
	dsk := &f.disks[f.drive]

	f.irq = 0

	// FORCE-IRQ aborts whatever is in flight, busy or not
	if v&0xf0 == 0xd0 {
		f.rdLength = 0
		f.wrLength = 0
		f.cmd = 0xd0
		if f.regs[0]&fBusy == fBusy {
			f.regs[0] &^= fBusy
		} else {
			f.regs[0] = fIndex
			if f.track[f.drive] == 0 {
				f.regs[0] |= fTrack0
			}
		}
		if v&cIRQ == cIRQ {
			f.irq = lineIRQ
		}
		return
	}

	if f.regs[0]&fBusy == fBusy {
		return
	}

	f.regs[0] = 0
	f.cmd = v

	switch v & 0xf0 {
	case 0x00: // RESTORE
		f.track[f.drive] = 0
		f.regs[0] = fIndex | fTrack0
		if v&cLoadHead == cLoadHead {
			f.regs[0] |= fHeadLoad
		}
		f.regs[1] = 0
		f.irq = lineIRQ

	case 0x10: // SEEK
		f.rdLength = 0
		f.wrLength = 0
		f.track[f.drive] = f.regs[3]
		f.regs[0] = fIndex
		if f.track[f.drive] == 0 {
			f.regs[0] |= fTrack0
		}
		if v&cLoadHead == cLoadHead {
			f.regs[0] |= fHeadLoad
		}
		f.regs[1] = f.track[f.drive]
		f.irq = lineIRQ

	case 0x20, 0x30, 0x40, 0x50, 0x60, 0x70: // STEP family
		if v&0x40 == 0x40 {
			f.lastStep = v & 0x20
		} else {
			v = v&^0x20 | f.lastStep
		}
		if v&0x20 == 0x20 {
			if f.track[f.drive] > 0 {
				f.track[f.drive]--
			}
		} else {
			f.track[f.drive]++
		}
		if v&cSetTrack == cSetTrack {
			f.regs[1] = f.track[f.drive]
		}
		f.regs[0] = fIndex
		if f.track[f.drive] == 0 {
			f.regs[0] |= fTrack0
		}
		f.irq = lineIRQ

	case 0x80, 0x90: // READ-SECTOR(S)
		if !f.seek(int(f.side), int(f.track[f.drive]), f.sideID(v), int(f.regs[1]), int(f.regs[2])) {
			f.regs[0] = f.regs[0]&^fErrCode | fNotFound
			f.irq = lineIRQ
		} else {
			f.rdLength = f.transferLength(v)
			f.regs[0] |= fBusy | fDRQ
			f.irq = lineDRQ
			f.wait = 255
		}

	case 0xa0, 0xb0: // WRITE-SECTOR(S)
		if !f.seek(int(f.side), int(f.track[f.drive]), f.sideID(v), int(f.regs[1]), int(f.regs[2])) {
			f.regs[0] = f.regs[0]&^fErrCode | fNotFound
			f.irq = lineIRQ
		} else {
			f.wrLength = f.transferLength(v)
			f.regs[0] |= fBusy | fDRQ
			f.irq = lineDRQ
			f.wait = 255
			dsk.dirty = true
		}

	case 0xc0: // READ-ADDRESS
		found := false
		if dsk.loaded {
			for j := 0; j < 256; j++ {
				if f.seek(int(f.side), int(f.track[f.drive]), int(f.side), int(f.track[f.drive]), j) {
					found = true
					break
				}
			}
		}
		if !found {
			f.regs[0] |= fNotFound
			f.irq = lineIRQ
		} else {
			f.ptr = 0
			f.fromHeader = true
			f.rdLength = 6
			f.regs[0] |= fBusy | fDRQ
			f.irq = lineDRQ
			f.wait = 255
		}

	case 0xe0: // READ-TRACK
		// not implemented on the Vector06C wiring

	case 0xf0: // WRITE-TRACK, i.e. format
		// the full protocol involves parsing lead-in and lead-out; the
		// effect on a Vector format disk is every sector of the track
		// filled with 0xe5
		for side := 0; side < SidesPerDisk; side++ {
			if f.seek(side, int(f.track[f.drive]), side, int(f.regs[1]), 1) {
				for i := 0; i < SectorLen*SectorsPerTrack; i++ {
					f.writeByte(0xe5)
				}
				dsk.dirty = true
			}
		}
	}
}

// IRQ returns true if the interrupt line is raised.
func (f *FDC) IRQ() bool {
	return f.irq&lineIRQ == lineIRQ
}

// DRQ returns true if the data request line is raised.
func (f *FDC) DRQ() bool {
	return f.irq&lineDRQ == lineDRQ
}
