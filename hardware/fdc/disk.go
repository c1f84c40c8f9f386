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

package fdc

import (
	"os"
	"path/filepath"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/logger"
)

// Geometry of a Vector06C format disk. The raw image is ordered by
// (trackID, sideID, sectorID).
const (
	SidesPerDisk    = 2
	TracksPerSide   = 82
	SectorsPerTrack = 5
	SectorLen       = 1024
	DataLen         = SidesPerDisk * TracksPerSide * SectorsPerTrack * SectorLen
)

// sentinel errors for the mount path.
const (
	BadDiskSize = "fdc: %s: image is %d bytes; a disk is at most %d"
	BadDrive    = "fdc: no drive %d"
)

// FDisk is one mounted disk image.
type FDisk struct {
	data []uint8

	// the six byte header synthesised by the last seek
	header [6]uint8

	dirty  bool
	loaded bool

	// backing file, empty for a blank disk
	path string
}

// NewBlankDisk returns a formatted-size, zero-filled disk with no backing
// file.
func NewBlankDisk() FDisk {
	return FDisk{
		data:   make([]uint8, DataLen),
		loaded: true,
	}
}

// LoadDisk reads a raw Vector06C disk image from a file. Images shorter
// than a full disk are padded with zeros; longer images are rejected.
func LoadDisk(path string) (FDisk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FDisk{}, curated.Errorf("fdc: %v", err)
	}
	if len(data) > DataLen {
		return FDisk{}, curated.Errorf(BadDiskSize, filepath.Base(path), len(data), DataLen)
	}

	dsk := NewBlankDisk()
	copy(dsk.data, data)
	dsk.path = path
	return dsk, nil
}

// Name returns a label for the disk, suitable for the log.
func (dsk *FDisk) Name() string {
	if dsk.path == "" {
		return "(blank disk)"
	}
	return filepath.Base(dsk.path)
}

// Dirty returns true when the image has been written to since the last
// flush.
func (dsk *FDisk) Dirty() bool {
	return dsk.dirty
}

// Peek returns the byte at a raw image offset. Used by tests and the
// debugger.
func (dsk *FDisk) Peek(offset int) uint8 {
	if !dsk.loaded || offset < 0 || offset >= DataLen {
		return 0
	}
	return dsk.data[offset]
}

// Flush writes the image back to its backing file if it is dirty. Blank
// disks have nowhere to flush to; their contents are discarded with a log
// note.
func (dsk *FDisk) Flush() error {
	if !dsk.dirty {
		return nil
	}
	dsk.dirty = false

	if dsk.path == "" {
		logger.Log("fdc", "ejecting dirty blank disk; contents discarded")
		return nil
	}

	if err := os.WriteFile(dsk.path, dsk.data, 0644); err != nil {
		return curated.Errorf("fdc: flush: %v", err)
	}
	logger.Logf("fdc", "flushed %s", dsk.Name())
	return nil
}
