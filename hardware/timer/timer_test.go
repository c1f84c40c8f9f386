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

package timer_test

import (
	"testing"

	"github.com/osholin/govector06/hardware/timer"
	"github.com/osholin/govector06/test"
)

// clock advances the timer by n input clocks.
func clock(tmr *timer.Timer, n int) {
	tmr.Step(n * timer.ClockDivider)
}

func TestSquareWave(t *testing.T) {
	tmr := timer.NewTimer()

	// counter 0, LSB only, mode 3, binary
	tmr.Write(3, 0x16)
	tmr.Write(0, 10)

	// OUT starts high and stays high for five clocks
	test.ExpectedSuccess(t, tmr.Out(0))
	clock(tmr, 4)
	test.ExpectedSuccess(t, tmr.Out(0))

	clock(tmr, 1)
	test.ExpectedFailure(t, tmr.Out(0))

	// low for five clocks
	clock(tmr, 4)
	test.ExpectedFailure(t, tmr.Out(0))
	clock(tmr, 1)
	test.ExpectedSuccess(t, tmr.Out(0))
}

func TestSquareWaveOddCount(t *testing.T) {
	tmr := timer.NewTimer()

	tmr.Write(3, 0x16)
	tmr.Write(0, 5)

	// odd count: high for three clocks, low for two
	clock(tmr, 2)
	test.ExpectedSuccess(t, tmr.Out(0))
	clock(tmr, 1)
	test.ExpectedFailure(t, tmr.Out(0))
	clock(tmr, 1)
	test.ExpectedFailure(t, tmr.Out(0))
	clock(tmr, 1)
	test.ExpectedSuccess(t, tmr.Out(0))
}

func TestTerminalCount(t *testing.T) {
	tmr := timer.NewTimer()

	// counter 1, LSB only, mode 0
	tmr.Write(3, 0x50)
	test.ExpectedFailure(t, tmr.Out(1))

	tmr.Write(1, 3)
	clock(tmr, 2)
	test.ExpectedFailure(t, tmr.Out(1))
	clock(tmr, 1)
	test.ExpectedSuccess(t, tmr.Out(1))
}

func TestRateGenerator(t *testing.T) {
	tmr := timer.NewTimer()

	// counter 2, LSB only, mode 2
	tmr.Write(3, 0x94)
	tmr.Write(2, 4)

	// OUT drops for the single clock before reload
	clock(tmr, 3)
	test.ExpectedFailure(t, tmr.Out(2))
	clock(tmr, 1)
	test.ExpectedSuccess(t, tmr.Out(2))

	// periodic
	clock(tmr, 3)
	test.ExpectedFailure(t, tmr.Out(2))
}

func TestLSBThenMSB(t *testing.T) {
	tmr := timer.NewTimer()

	// counter 0, LSB then MSB, mode 0
	tmr.Write(3, 0x30)
	tmr.Write(0, 0x34)
	tmr.Write(0, 0x12)

	// counting starts only after the MSB arrives: read back the count
	clock(tmr, 4)
	lsb := tmr.Read(0)
	msb := tmr.Read(0)
	test.Equate(t, uint16(msb)<<8|uint16(lsb), 0x1230)
}

func TestLatchCommand(t *testing.T) {
	tmr := timer.NewTimer()

	tmr.Write(3, 0x30)
	tmr.Write(0, 0x10)
	tmr.Write(0, 0x00)

	clock(tmr, 2)
	tmr.Write(3, 0x00) // latch counter 0
	clock(tmr, 5)

	// the latched value survives further counting
	lsb := tmr.Read(0)
	msb := tmr.Read(0)
	test.Equate(t, uint16(msb)<<8|uint16(lsb), 0x000e)

	// after a full read the latch is released
	lsb = tmr.Read(0)
	msb = tmr.Read(0)
	test.Equate(t, uint16(msb)<<8|uint16(lsb), 0x0009)
}

func TestGateInhibitsCounting(t *testing.T) {
	tmr := timer.NewTimer()

	tmr.Write(3, 0x16)
	tmr.Write(0, 10)

	tmr.SetGate(0, false)
	clock(tmr, 20)
	test.ExpectedSuccess(t, tmr.Out(0))

	tmr.SetGate(0, true)
	clock(tmr, 5)
	test.ExpectedFailure(t, tmr.Out(0))
}

func TestBCDCounting(t *testing.T) {
	tmr := timer.NewTimer()

	// counter 0, LSB only, mode 0, BCD
	tmr.Write(3, 0x11)
	tmr.Write(0, 0x10)

	clock(tmr, 1)
	test.Equate(t, tmr.Read(0), 0x09)
}

func TestClockDivider(t *testing.T) {
	tmr := timer.NewTimer()

	tmr.Write(3, 0x10)
	tmr.Write(0, 10)

	// three CPU cycles are less than one input clock
	tmr.Step(3)
	test.Equate(t, tmr.Read(0), 10)

	// the residue carries over
	tmr.Step(1)
	test.Equate(t, tmr.Read(0), 9)
}
