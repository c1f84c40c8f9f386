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

// Package cpu emulates the KR580VM80A, the Soviet i8080 clone fitted to the
// Vector06C. The interpreter is cycle counted: every instruction reports its
// cost through the cycleCallback so the rest of the machine (raster, port
// commit timers, the 8253, the disk controller) can be stepped in lockstep.
//
// Observation of the instruction stream is through the Hooks capability set
// given at construction. The hooks are called on the hot path so a no-op
// implementation (NoopHooks) is provided for running without a debugger.
package cpu
