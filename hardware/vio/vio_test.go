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

package vio_test

import (
	"testing"

	"github.com/osholin/govector06/hardware/vio"
	"github.com/osholin/govector06/test"
)

type stubRAMDisk struct {
	mode uint8
}

func (s *stubRAMDisk) SetRAMDiskMode(v uint8) {
	s.mode = v
}

type stubTimer struct {
	lastReg uint8
	lastVal uint8
}

func (s *stubTimer) Read(reg uint8) uint8 {
	return 0x55
}

func (s *stubTimer) Write(reg uint8, val uint8) {
	s.lastReg = reg
	s.lastVal = val
}

type stubDisk struct{}

func (s *stubDisk) Read(reg uint8) uint8 {
	return uint8(0xd0 | reg)
}

func (s *stubDisk) Write(reg uint8, val uint8) uint8 {
	return 0
}

func newTestVIO() (*vio.VIO, *stubRAMDisk, *stubTimer) {
	rd := &stubRAMDisk{}
	tm := &stubTimer{}
	io := vio.NewVIO(rd, tm, &stubDisk{})
	return io, rd, tm
}

// commit writes n cycles worth of TryCommit
func commit(io *vio.VIO, n int) {
	for i := 0; i < n; i++ {
		io.TryCommit(io.BorderColorIdx())
	}
}

func TestOutCommitDelay(t *testing.T) {
	io, rd, _ := newTestVIO()

	io.PortOut(0x10, 0xe8)

	// not applied for the first two cycles
	commit(io, 2)
	test.Equate(t, rd.mode, 0x00)

	// applied on the third
	commit(io, 1)
	test.Equate(t, rd.mode, 0xe8)

	// and only once
	commit(io, 10)
	test.Equate(t, rd.mode, 0xe8)
}

func TestPaletteCommitDelay(t *testing.T) {
	io, _, _ := newTestVIO()

	// select border colour index 5
	io.PortOut(0x02, 0x05)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.BorderColorIdx(), 0x05)

	// white: all channel bits set
	io.PortOut(0x0c, 0xff)
	commit(io, vio.PaletteCommitTime-1)
	test.Equate(t, io.Palette(5), uint32(0))

	commit(io, 1)
	test.Equate(t, io.Palette(5), uint32(0xffffffff))
}

func TestDecodeColor(t *testing.T) {
	test.Equate(t, vio.DecodeColor(0x00), uint32(0xff000000))
	test.Equate(t, vio.DecodeColor(0xff), uint32(0xffffffff))

	// pure red: R=7 G=0 B=0
	test.Equate(t, vio.DecodeColor(0xe0), uint32(0xffff0000))

	// pure blue: B=3
	test.Equate(t, vio.DecodeColor(0x03), uint32(0xff0000ff))
}

func TestDisplayModeAndBorder(t *testing.T) {
	io, _, _ := newTestVIO()

	io.PortOut(0x02, 0x1a)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.BorderColorIdx(), 0x0a)
	test.ExpectedSuccess(t, io.Mode512())
}

func TestPortCBitSetReset(t *testing.T) {
	io, _, _ := newTestVIO()

	// set the control word first: bit 7 set passes through to CW and
	// resets ports 1-3
	io.PortOut(0x00, 0x80)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.PortIn(0x01), 0x00)

	// BSR: set bit 3 of port C
	io.PortOut(0x00, 0x07)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.PortIn(0x01)&0x08, 0x08)

	// BSR: reset bit 3
	io.PortOut(0x00, 0x06)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.PortIn(0x01)&0x08, 0x00)
}

func TestKeyboardGating(t *testing.T) {
	io, _, _ := newTestVIO()

	io.Keyboard.SetKey(2, 4, true)

	// CW with port B as input: matrix visible, active low, when row 2 is
	// selected (active low) through port A
	io.PortOut(0x00, 0x82)
	commit(io, vio.OutCommitTime)
	io.PortOut(0x03, 0xfb)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.PortIn(0x02), 0xef)

	// no row selected
	io.PortOut(0x03, 0xff)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.PortIn(0x02), 0xff)

	// CW with port B as output: reads return the port B latch
	io.PortOut(0x00, 0x80)
	commit(io, vio.OutCommitTime)
	io.PortOut(0x02, 0x12)
	commit(io, vio.OutCommitTime)
	test.Equate(t, io.PortIn(0x02), 0x12)
}

func TestModifierKeys(t *testing.T) {
	io, _, _ := newTestVIO()

	// port C high as input
	io.PortOut(0x00, 0x88)
	commit(io, vio.OutCommitTime)

	v := io.PortIn(0x01)
	test.Equate(t, v&0xe0, 0xe0)

	io.Keyboard.KeyRus = true
	v = io.PortIn(0x01)
	test.Equate(t, v&0x80, 0x00)
}

func TestTimerRouting(t *testing.T) {
	io, _, tm := newTestVIO()

	io.PortOut(0x0b, 0x36)
	commit(io, vio.OutCommitTime)
	test.Equate(t, tm.lastReg, 0x03)
	test.Equate(t, tm.lastVal, 0x36)

	test.Equate(t, io.PortIn(0x09), 0x55)
}

func TestRusLatHistory(t *testing.T) {
	io, _, _ := newTestVIO()

	// port C writes shift the previous latch bit into the history
	io.PortOut(0x01, 0x08)
	commit(io, vio.OutCommitTime)
	io.PortOut(0x01, 0x00)
	commit(io, vio.OutCommitTime)

	// second write observed the bit 3 set by the first
	test.Equate(t, io.RusLatHistory()&0x01, uint32(0x01))
}

func TestAYPortsUnfitted(t *testing.T) {
	io, _, _ := newTestVIO()
	test.Equate(t, io.PortIn(0x14), 0xff)
	test.Equate(t, io.PortIn(0x15), 0xff)
}
