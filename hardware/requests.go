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

package hardware

// ReqKind enumerates the requests the dispatcher services.
type ReqKind int

// List of valid ReqKind values.
const (
	ReqRun ReqKind = iota
	ReqStop
	ReqReset
	ReqIsRunning
	ReqStep
	ReqGetRegs
	ReqGetByteRAM
	ReqGetThreeBytesRAM
	ReqGetGlobalAddrRAM
	ReqSetMem
	ReqScrollVert
	ReqGetDisplayData
	ReqLoadFDD
	ReqKeyHandling
	ReqQuit
)

func (k ReqKind) String() string {
	switch k {
	case ReqRun:
		return "RUN"
	case ReqStop:
		return "STOP"
	case ReqReset:
		return "RESET"
	case ReqIsRunning:
		return "IS_RUNNING"
	case ReqStep:
		return "STEP"
	case ReqGetRegs:
		return "GET_REGS"
	case ReqGetByteRAM:
		return "GET_BYTE_RAM"
	case ReqGetThreeBytesRAM:
		return "GET_THREE_BYTES_RAM"
	case ReqGetGlobalAddrRAM:
		return "GET_GLOBAL_ADDR_RAM"
	case ReqSetMem:
		return "SET_MEM"
	case ReqScrollVert:
		return "SCROLL_VERT"
	case ReqGetDisplayData:
		return "GET_DISPLAY_DATA"
	case ReqLoadFDD:
		return "LOAD_FDD"
	case ReqKeyHandling:
		return "KEY_HANDLING"
	case ReqQuit:
		return "QUIT"
	}
	return "unknown request"
}

// special key rows for KeyEvent.
const (
	KeyRowSS  = -1
	KeyRowUS  = -2
	KeyRowRus = -3
)

// KeyEvent is one key transition from the front end. Rows 0 to 7 address
// the matrix; the negative rows are the modifier keys.
type KeyEvent struct {
	Row     int
	Col     int
	Pressed bool
}

// ReqArgs carries the parameters of a request. Only the fields relevant to
// the request kind need to be set.
type ReqArgs struct {
	Addr   uint16
	Global uint32
	Data   uint8
	Count  int
	Drive  int
	Path   string
	Key    KeyEvent
}

// Regs is a snapshot of the CPU register file.
type Regs struct {
	A uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8
	F uint8

	PC uint16
	SP uint16

	IFF    bool
	Halted bool

	Cycles uint64

	MappingMode uint8
}

// ReqResult carries the payload of a serviced request, or the error that
// stopped it.
type ReqResult struct {
	Data    uint8
	Word    uint32
	Regs    Regs
	Frame   []uint32
	Running bool
	Err     error
}

// request pairs a submission with its reply channel.
type request struct {
	kind ReqKind
	args ReqArgs
	res  chan ReqResult
}
