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

// Package vio is the I/O port space of the Vector06C: the two 8255 PPIs,
// the palette latch, the keyboard matrix and the routing to the 8253 timer,
// the disk controller and the RAM-disk mode register.
//
// Port writes are not applied immediately. The real machine commits an OUT
// a few bus cycles after the instruction, which software relies on for
// raster effects. PortOut() latches the write and arms a commit timer;
// TryCommit() is called every CPU cycle and applies the latched write when
// the timer expires.
package vio

import (
	"fmt"
)

// commit delays in CPU cycles.
const (
	OutCommitTime     = 3
	PaletteCommitTime = 15
)

// timer value meaning no commit is pending.
const noCommit = -1

// the port whose writes are latched into the palette.
const portBorderColor = 0x0c

// RAMDisk is the mapping-mode register of the memory subsystem.
type RAMDisk interface {
	SetRAMDiskMode(v uint8)
}

// TimerPorts is the register file of the 8253. reg 0 to 2 are the counters,
// reg 3 the control word.
type TimerPorts interface {
	Read(reg uint8) uint8
	Write(reg uint8, val uint8)
}

// DiskPorts is the register file of the disk controller. see the fdc
// package for the register numbering.
type DiskPorts interface {
	Read(reg uint8) uint8
	Write(reg uint8, val uint8) uint8
}

// fdc register numbers for the port routing below. must agree with the fdc
// package constants.
const (
	fdcStatus = 0
	fdcTrack  = 1
	fdcSector = 2
	fdcData   = 3
	fdcReady  = 4
)

// VIO is the I/O subsystem.
type VIO struct {
	ramDisk RAMDisk
	timer   TimerPorts
	disk    DiskPorts

	Keyboard *Keyboard

	// PPI1
	cw    uint8
	portA uint8
	portB uint8
	portC uint8

	// PPI2 is latched but otherwise unused by the machine
	cw2    uint8
	portA2 uint8
	portB2 uint8
	portC2 uint8

	joy0 uint8
	joy1 uint8

	// the latched OUT awaiting commit
	outPort uint8
	outByte uint8

	// the palette byte awaiting commit
	hwColor uint8

	outCommitTimer     int
	paletteCommitTimer int

	palette [16]uint32

	brdColorIdx uint8
	mode512     bool

	ruslat        uint8
	ruslatHistory uint32

	scroll uint8
}

// NewVIO is the preferred method of initialisation for the VIO type.
func NewVIO(ramDisk RAMDisk, timer TimerPorts, disk DiskPorts) *VIO {
	io := &VIO{
		ramDisk:  ramDisk,
		timer:    timer,
		disk:     disk,
		Keyboard: NewKeyboard(),
	}
	io.Reset()
	return io
}

// Reset the I/O subsystem to its power-on state.
func (io *VIO) Reset() {
	io.cw = 0x08
	io.cw2 = 0
	io.portA = 0xff
	io.portB = 0xff
	io.portC = 0xff
	io.portA2 = 0xff
	io.portB2 = 0xff
	io.portC2 = 0xff
	io.joy0 = 0xff
	io.joy1 = 0xff
	io.outPort = 0
	io.outByte = 0
	io.hwColor = 0
	io.brdColorIdx = 0
	io.mode512 = false
	io.outCommitTimer = noCommit
	io.paletteCommitTimer = noCommit
	io.ruslat = 0
	io.ruslatHistory = 0
	io.scroll = 0xff
	for i := range io.palette {
		io.palette[i] = 0
	}
}

func (io *VIO) String() string {
	return fmt.Sprintf("CW=%#02x border=%d mode512=%v ruslat=%d", io.cw, io.brdColorIdx, io.mode512, io.ruslat)
}

// PortIn services an IN instruction.
func (io *VIO) PortIn(port uint8) uint8 {
	var result uint8 = 0xff

	switch port {
	case 0x00:
		// nothing to read

	case 0x01:
		var lo, hi uint8
		if io.cw&0x01 == 0x01 {
			// port C low configured as input
			lo = 0x0b
		} else {
			lo = io.portC & 0x0f
		}
		if io.cw&0x08 == 0x08 {
			// port C high configured as input: modifier keys, active low
			hi = 0xe0
			if io.Keyboard.KeySS {
				hi &^= 1 << 5
			}
			if io.Keyboard.KeyUS {
				hi &^= 1 << 6
			}
			if io.Keyboard.KeyRus {
				hi &^= 1 << 7
			}
		} else {
			hi = io.portC & 0xf0
		}
		result = lo | hi

	case 0x02:
		if io.cw&0x02 == 0x02 {
			result = io.Keyboard.Read(io.portA)
		} else {
			result = io.portB
		}

	case 0x03:
		if io.cw&0x10 == 0 {
			result = io.portA
		}

	case 0x04:
		result = io.cw2
	case 0x05:
		result = io.portC2
	case 0x06:
		result = io.portB2
	case 0x07:
		result = io.portA2

	case 0x08, 0x09, 0x0a, 0x0b:
		result = io.timer.Read(port - 0x08)

	case 0x0e:
		result = io.joy0
	case 0x0f:
		result = io.joy1

	case 0x14, 0x15:
		// AY-3-8910 is not fitted

	case 0x18:
		result = io.disk.Read(fdcData)
	case 0x19:
		result = io.disk.Read(fdcSector)
	case 0x1a:
		result = io.disk.Read(fdcTrack)
	case 0x1b:
		result = io.disk.Read(fdcStatus)
	case 0x1c:
		result = io.disk.Read(fdcReady)
	}

	return result
}

// PortOut services an OUT instruction. The write is latched; it takes
// effect when the commit timer expires.
func (io *VIO) PortOut(port uint8, val uint8) {
	io.outPort = port
	io.outByte = val

	io.outCommitTimer = OutCommitTime
	if port == portBorderColor {
		io.paletteCommitTimer = PaletteCommitTime
	}
}

// TryCommit is called once per CPU cycle. brdColorIdx selects the palette
// slot updated by an expiring palette write.
func (io *VIO) TryCommit(brdColorIdx uint8) {
	if io.outCommitTimer >= 0 {
		io.outCommitTimer--
		if io.outCommitTimer == 0 {
			io.portOutHandling(io.outPort, io.outByte)
		}
	}

	if io.paletteCommitTimer >= 0 {
		io.paletteCommitTimer--
		if io.paletteCommitTimer == 0 {
			io.palette[brdColorIdx&0x0f] = DecodeColor(io.hwColor)
		}
	}
}

// portOutHandling applies a latched write at commit time.
func (io *VIO) portOutHandling(port uint8, val uint8) {
	switch port {
	case 0x00:
		if val&0x80 == 0 {
			// port C bit set/reset: bit 0 selects set, bits 1-3 the bit
			bit := (val >> 1) & 0x07
			if val&0x01 == 0x01 {
				io.portC |= 1 << bit
			} else {
				io.portC &^= 1 << bit
			}
		} else {
			io.cw = val
			io.portOutHandling(1, 0)
			io.portOutHandling(2, 0)
			io.portOutHandling(3, 0)
		}

	case 0x01:
		io.ruslat = (io.portC >> 3) & 0x01
		io.ruslatHistory = io.ruslatHistory<<1 | uint32(io.ruslat)
		io.portC = val

	case 0x02:
		io.portB = val
		io.brdColorIdx = val & 0x0f
		io.mode512 = val&0x10 == 0x10

	case 0x03:
		io.portA = val
		io.scroll = val

	case 0x04:
		io.cw2 = val
	case 0x05:
		io.portC2 = val
	case 0x06:
		io.portB2 = val
	case 0x07:
		io.portA2 = val

	case 0x08, 0x09, 0x0a, 0x0b:
		io.timer.Write(port-0x08, val)

	case 0x0c, 0x0d, 0x0e, 0x0f:
		io.hwColor = val

	case 0x10:
		io.ramDisk.SetRAMDiskMode(val)

	case 0x14, 0x15:
		// AY-3-8910 is not fitted

	case 0x18:
		io.disk.Write(fdcData, val)
	case 0x19:
		io.disk.Write(fdcSector, val)
	case 0x1a:
		io.disk.Write(fdcTrack, val)
	case 0x1b:
		io.disk.Write(fdcStatus, val)
	case 0x1c:
		io.disk.Write(fdcReady, val)
	}
}

// DecodeColor expands the 8-bit hardware colour to ARGB. The byte is
// rrrgggbb; each channel is widened by bit replication.
func DecodeColor(v uint8) uint32 {
	r := v >> 5
	g := (v >> 2) & 0x07
	b := v & 0x03

	r8 := r<<5 | r<<2 | r>>1
	g8 := g<<5 | g<<2 | g>>1
	b8 := b<<6 | b<<4 | b<<2 | b

	return 0xff000000 | uint32(r8)<<16 | uint32(g8)<<8 | uint32(b8)
}

// Palette returns the current palette entry.
func (io *VIO) Palette(idx uint8) uint32 {
	return io.palette[idx&0x0f]
}

// BorderColorIdx returns the border colour index last written to port 2.
func (io *VIO) BorderColorIdx() uint8 {
	return io.brdColorIdx
}

// Mode512 returns true when the display is in 512 pixel horizontal
// resolution.
func (io *VIO) Mode512() bool {
	return io.mode512
}

// Scroll returns the vertical scroll register.
func (io *VIO) Scroll() uint8 {
	return io.scroll
}

// RusLat returns the current keyboard layout latch.
func (io *VIO) RusLat() uint8 {
	return io.ruslat
}

// RusLatHistory returns the shift register of recent latch states, newest
// in bit 0.
func (io *VIO) RusLatHistory() uint32 {
	return io.ruslatHistory
}
