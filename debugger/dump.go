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

package debugger

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/hardware"
)

// dumpNode is the view of the machine rendered by Dump. The component
// summaries are taken rather than the components themselves so the graph
// stays readable (and the physical store stays out of it).
type dumpNode struct {
	CPU     string
	Memory  string
	IO      string
	Timer   string
	FDC     string
	Display string

	Breakpoints []Breakpoint
	Watchpoints []Watchpoint
}

// Dump renders a summary of the hardware container and the debugger tables
// as a graphviz dot stream. Only sensible while the machine is stopped:
// the summaries read hardware state without going through the dispatcher.
func (dbg *Debugger) Dump(output io.Writer) error {
	if dbg.emu.Request(hardware.ReqIsRunning, hardware.ReqArgs{}).Running {
		return curated.Errorf("debugger: dump: machine is running")
	}

	node := &dumpNode{
		CPU:         dbg.vcs.CPU.String(),
		Memory:      dbg.vcs.Mem.String(),
		IO:          dbg.vcs.IO.String(),
		Timer:       dbg.vcs.Timer.String(),
		FDC:         dbg.vcs.FDC.String(),
		Display:     dbg.vcs.Display.String(),
		Breakpoints: dbg.Breakpoints(),
		Watchpoints: dbg.Watchpoints(),
	}

	memviz.Map(output, node)
	return nil
}
