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

// Package symbols holds the label, constant and comment tables used to
// annotate disassemblies. The tables load from a JSON file kept alongside
// the ROM image: for foo.rom the debug data is foo.json with the keys
// "labels", "consts" (name to "0xHHHH" address literal; several names may
// share an address) and "comments" ("0xHHHH" to text).
package symbols

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/logger"
)

// sentinel error for debug data that does not parse.
const BadDebugData = "symbols: %s: %v"

// Table is the symbol collection for one loaded ROM.
type Table struct {
	// more than one label may share an address. operand substitution in
	// the disassembler only fires when exactly one is registered
	Labels map[uint16][]string
	Consts map[uint16][]string

	Comments map[uint16]string
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	tbl := &Table{}
	tbl.Clear()
	return tbl
}

// Clear every table.
func (tbl *Table) Clear() {
	tbl.Labels = make(map[uint16][]string)
	tbl.Consts = make(map[uint16][]string)
	tbl.Comments = make(map[uint16]string)
}

// AddLabel registers a label name for an address.
func (tbl *Table) AddLabel(addr uint16, name string) {
	tbl.Labels[addr] = append(tbl.Labels[addr], name)
}

// AddConst registers a constant name for a value.
func (tbl *Table) AddConst(addr uint16, name string) {
	tbl.Consts[addr] = append(tbl.Consts[addr], name)
}

// SetComment attaches a comment to an address, replacing any existing one.
func (tbl *Table) SetComment(addr uint16, comment string) {
	tbl.Comments[addr] = comment
}

// Label returns the single label for an address. ok is false when no label
// or more than one label is registered.
func (tbl *Table) Label(addr uint16) (string, bool) {
	if l, found := tbl.Labels[addr]; found && len(l) == 1 {
		return l[0], true
	}
	return "", false
}

// Const returns the single constant name for a value. ok is false when no
// name or more than one name is registered.
func (tbl *Table) Const(addr uint16) (string, bool) {
	if c, found := tbl.Consts[addr]; found && len(c) == 1 {
		return c[0], true
	}
	return "", false
}

// debugData is the JSON layout of the debug-data file.
type debugData struct {
	Labels   map[string]string `json:"labels"`
	Consts   map[string]string `json:"consts"`
	Comments map[string]string `json:"comments"`
}

func parseAddr(s string) (uint16, bool) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// ReadDebugData loads the debug-data file found alongside the ROM image.
// A missing file is not an error; a file that does not parse is. The
// tables are cleared either way.
func (tbl *Table) ReadDebugData(romPath string) error {
	tbl.Clear()

	path := strings.TrimSuffix(romPath, ".rom") + ".json"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return curated.Errorf(BadDebugData, path, err)
	}

	var dd debugData
	if err := json.Unmarshal(data, &dd); err != nil {
		return curated.Errorf(BadDebugData, path, err)
	}

	for name, addrS := range dd.Labels {
		if addr, ok := parseAddr(addrS); ok {
			tbl.AddLabel(addr, name)
		}
	}
	for name, addrS := range dd.Consts {
		if addr, ok := parseAddr(addrS); ok {
			tbl.AddConst(addr, name)
		}
	}
	for addrS, comment := range dd.Comments {
		if addr, ok := parseAddr(addrS); ok {
			tbl.SetComment(addr, comment)
		}
	}

	logger.Logf("symbols", "%s: %d labels, %d consts, %d comments", path, len(dd.Labels), len(dd.Consts), len(dd.Comments))
	return nil
}
