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

// Package curated is a helper package for the plain Go language error type.
// Curated errors are created with Errorf() which remembers the formatting
// pattern used at creation. The pattern can then be used to identify the
// error:
//
//	e := curated.Errorf("fdc: bad disk size (%d)", n)
//
//	if curated.Is(e, "fdc: bad disk size (%d)") {
//		...
//	}
//
// Has() is like Is() but checks the whole chain of wrapped errors. IsAny()
// says whether the error was created by this package at all, which we use to
// distinguish expected (input) errors from unexpected ones.
package curated
