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

package display_test

import (
	"testing"

	"github.com/osholin/govector06/hardware/display"
	"github.com/osholin/govector06/hardware/memory"
	"github.com/osholin/govector06/test"
)

// stubPorts is a minimal implementation of display.Ports with an identity
// palette: entry n encodes n so tests can read indices out of the frame.
type stubPorts struct {
	border  uint8
	mode512 bool
	scroll  uint8
}

func (s *stubPorts) Palette(idx uint8) uint32 {
	return uint32(idx)
}

func (s *stubPorts) BorderColorIdx() uint8 {
	return s.border
}

func (s *stubPorts) Mode512() bool {
	return s.mode512
}

func (s *stubPorts) Scroll() uint8 {
	return s.scroll
}

func newTestDisplay() (*display.Display, *memory.Memory, *stubPorts, *int) {
	mem := memory.NewMemory()
	ports := &stubPorts{scroll: 0xff}
	irqs := 0
	dsp := display.NewDisplay(mem, ports, func() { irqs++ })
	return dsp, mem, ports, &irqs
}

func TestFrameTiming(t *testing.T) {
	dsp, _, _, irqs := newTestDisplay()

	test.Equate(t, display.CyclesPerFrame, 59904)

	for i := 0; i < display.CyclesPerFrame-1; i++ {
		dsp.Tick()
	}
	test.ExpectedFailure(t, dsp.T50HZ())

	dsp.Tick()
	test.ExpectedSuccess(t, dsp.T50HZ())
	test.Equate(t, dsp.RasterLine(), 0)

	// exactly one frame interrupt per frame
	test.Equate(t, *irqs, 1)

	dsp.ResetFrame()
	test.ExpectedFailure(t, dsp.T50HZ())
}

func TestIRQPosition(t *testing.T) {
	dsp, _, _, irqs := newTestDisplay()

	// up to the last cycle before the commit pixel of the designated line
	cycles := display.BorderTop*display.CyclesPerLine + display.IRQCommitPxl/display.PixelsPerCycle
	for i := 0; i < cycles-1; i++ {
		dsp.Tick()
	}
	test.Equate(t, *irqs, 0)

	dsp.Tick()
	test.Equate(t, *irqs, 1)
}

func TestBorderColour(t *testing.T) {
	dsp, _, ports, _ := newTestDisplay()
	ports.border = 0x09

	dsp.Tick()
	test.Equate(t, dsp.Frame()[0], uint32(0x09))
}

func TestActiveAreaPlanes(t *testing.T) {
	dsp, mem, _, _ := newTestDisplay()

	// top-left active pixel: column byte 0, bit 7, video line 0xff. light
	// up planes 0 and 2
	mem.Poke(0x8000+0x00ff, 0x80)
	mem.Poke(0xc000+0x00ff, 0x80)

	for i := 0; i < display.CyclesPerFrame; i++ {
		dsp.Tick()
	}

	frame := dsp.Frame()
	at := func(x, y int) uint32 {
		return frame[(display.BorderTop+y)*display.FrameW+display.BorderLeft+x]
	}

	// index 0b1010: both raster pixels of the fat pixel
	test.Equate(t, at(0, 0), uint32(0x0a))
	test.Equate(t, at(1, 0), uint32(0x0a))
	test.Equate(t, at(2, 0), uint32(0x00))
}

func TestVerticalScroll(t *testing.T) {
	dsp, mem, ports, _ := newTestDisplay()

	// scroll so that video line 0x80 is shown at the top
	ports.scroll = 0x80
	mem.Poke(0x8000+0x0080, 0x80)

	for i := 0; i < display.CyclesPerFrame; i++ {
		dsp.Tick()
	}

	frame := dsp.Frame()
	test.Equate(t, frame[display.BorderTop*display.FrameW+display.BorderLeft], uint32(0x08))
}

func TestMode512(t *testing.T) {
	dsp, mem, ports, _ := newTestDisplay()
	ports.mode512 = true

	// even raster pixel from planes 0/1, odd from planes 2/3
	mem.Poke(0x8000+0x00ff, 0x80)
	mem.Poke(0xe000+0x00ff, 0x80)

	for i := 0; i < display.CyclesPerFrame; i++ {
		dsp.Tick()
	}

	frame := dsp.Frame()
	at := func(x int) uint32 {
		return frame[display.BorderTop*display.FrameW+display.BorderLeft+x]
	}

	test.Equate(t, at(0), uint32(0x0e)) // 0b1100 | hi
	test.Equate(t, at(1), uint32(0x0d)) // 0b1100 | lo
}
