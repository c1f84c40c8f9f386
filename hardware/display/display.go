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

// Package display is the raster clock of the machine and the producer of
// the frame buffer. The CRT is scanned at a fixed four pixels per CPU
// cycle; 192 cycles make a scan line, 312 lines make a frame, which at the
// 3 MHz CPU clock gives the 50.08 Hz frame rate the Vector06C is timed to.
//
// The frame interrupt is raised a fixed number of pixels into the first
// active scan line. Software uses the delay to race the beam, which is why
// the position is exact.
package display

import (
	"fmt"

	"github.com/osholin/govector06/hardware/memory"
)

// Raster geometry. The active area sits inside a border; positions are in
// raster pixels of the 512-wide grid.
const (
	PixelsPerCycle = 4

	FrameW = 768
	FrameH = 312

	CyclesPerLine  = FrameW / PixelsPerCycle
	CyclesPerFrame = CyclesPerLine * FrameH

	ActiveAreaW = 512
	ActiveAreaH = 256

	BorderLeft = (FrameW - ActiveAreaW) / 2
	BorderTop  = 40

	// the frame IRQ fires this many pixels into scan line BorderTop
	IRQCommitPxl = 72
)

// base of the 32 KiB video region in bank 0 and the spacing of its four
// bit planes.
const (
	vramBase  = 0x8000
	planeSize = 0x2000
)

// Ports is the display-visible slice of the I/O state.
type Ports interface {
	Palette(idx uint8) uint32
	BorderColorIdx() uint8
	Mode512() bool
	Scroll() uint8
}

// Display owns the raster position and the frame buffer.
type Display struct {
	mem   *memory.Memory
	ports Ports

	// raiseINT is the CPU's interrupt gate
	raiseINT func()

	rasterPixel int
	rasterLine  int

	// set when the raster wraps to the top of the frame; consumed by the
	// driver loop through T50HZ()/ResetFrame()
	frameComplete bool

	frame []uint32
}

// NewDisplay is the preferred method of initialisation for the Display
// type.
func NewDisplay(mem *memory.Memory, ports Ports, raiseINT func()) *Display {
	dsp := &Display{
		mem:      mem,
		ports:    ports,
		raiseINT: raiseINT,
		frame:    make([]uint32, FrameW*FrameH),
	}
	return dsp
}

// Reset the raster to the top of the frame.
func (dsp *Display) Reset() {
	dsp.rasterPixel = 0
	dsp.rasterLine = 0
	dsp.frameComplete = false
	for i := range dsp.frame {
		dsp.frame[i] = 0
	}
}

func (dsp *Display) String() string {
	return fmt.Sprintf("line=%d pixel=%d", dsp.rasterLine, dsp.rasterPixel)
}

// RasterLine returns the current scan line.
func (dsp *Display) RasterLine() int {
	return dsp.rasterLine
}

// RasterPixel returns the current position along the scan line.
func (dsp *Display) RasterPixel() int {
	return dsp.rasterPixel
}

// T50HZ reports that the raster has completed a frame since the last
// ResetFrame.
func (dsp *Display) T50HZ() bool {
	return dsp.frameComplete
}

// ResetFrame acknowledges T50HZ.
func (dsp *Display) ResetFrame() {
	dsp.frameComplete = false
}

// Frame returns a copy of the frame buffer, FrameW*FrameH ARGB values.
// Called on the emulation context by the request dispatcher.
func (dsp *Display) Frame() []uint32 {
	f := make([]uint32, len(dsp.frame))
	copy(f, dsp.frame)
	return f
}

// Tick advances the raster by one CPU cycle, rasterising as it goes.
func (dsp *Display) Tick() {
	for i := 0; i < PixelsPerCycle; i++ {
		dsp.renderPixel()

		dsp.rasterPixel++
		if dsp.rasterPixel == IRQCommitPxl && dsp.rasterLine == BorderTop {
			dsp.raiseINT()
		}
		if dsp.rasterPixel >= FrameW {
			dsp.rasterPixel = 0
			dsp.rasterLine++
			if dsp.rasterLine >= FrameH {
				dsp.rasterLine = 0
				dsp.frameComplete = true
			}
		}
	}
}

func (dsp *Display) renderPixel() {
	x := dsp.rasterPixel - BorderLeft
	y := dsp.rasterLine - BorderTop

	var idx uint8
	if x < 0 || x >= ActiveAreaW || y < 0 || y >= ActiveAreaH {
		idx = dsp.ports.BorderColorIdx()
	} else {
		idx = dsp.activeIndex(x, y)
	}

	dsp.frame[dsp.rasterLine*FrameW+dsp.rasterPixel] = dsp.ports.Palette(idx)
}

// activeIndex resolves the palette index of an active-area pixel from the
// four bit planes. The video region lives in bank 0 regardless of the
// RAM-disk mapping. Columns are laid out a byte per eight pixels with the
// low addresses at the bottom of the screen, hence the inverted y; the
// vertical scroll register names the video line shown at the top.
func (dsp *Display) activeIndex(x int, y int) uint8 {
	srcY := dsp.ports.Scroll() - uint8(y)

	// a plane byte covers eight screen columns; in 256 pixel mode a screen
	// column is two raster pixels wide
	col := x / 2
	bit := uint(7 - col%8)
	off := memory.GlobalAddr(col/8)<<8 | memory.GlobalAddr(srcY)

	b0 := dsp.mem.Peek(vramBase + off)
	b1 := dsp.mem.Peek(vramBase + planeSize + off)
	b2 := dsp.mem.Peek(vramBase + 2*planeSize + off)
	b3 := dsp.mem.Peek(vramBase + 3*planeSize + off)

	if dsp.ports.Mode512() {
		// 512 pixel mode: each raster pixel is its own; even pixels take
		// the first plane pair, odd pixels the second, selecting from the
		// top quarter of the palette
		var hi, lo uint8
		if x%2 == 0 {
			hi = b0 >> bit & 0x01
			lo = b1 >> bit & 0x01
		} else {
			hi = b2 >> bit & 0x01
			lo = b3 >> bit & 0x01
		}
		return 0x0c | hi<<1 | lo
	}

	return (b0>>bit&0x01)<<3 | (b1>>bit&0x01)<<2 | (b2>>bit&0x01)<<1 | b3>>bit&0x01
}
