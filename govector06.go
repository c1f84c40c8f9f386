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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/debugger"
	"github.com/osholin/govector06/hardware"
	"github.com/osholin/govector06/hardware/fdc"
	"github.com/osholin/govector06/logger"
	"github.com/osholin/govector06/statsview"
	"github.com/osholin/govector06/symbols"
	"github.com/osholin/govector06/terminal"
	"github.com/osholin/govector06/wavwriter"
)

// Settings is the JSON layout of the settings file.
type Settings struct {
	// boot ROM image; debug data is looked for alongside it
	ROM string `json:"rom"`

	// disk images, by drive
	FDD []string `json:"fdd"`

	// capture the timer OUT lines to a WAV file
	WAV string `json:"wav"`

	// launch the profiling server (when built in)
	Statsview bool `json:"statsview"`
}

// loadSettings reads the settings file. A missing file yields the
// defaults; a file that does not parse is an initialisation failure.
func loadSettings(path string) (Settings, error) {
	var set Settings

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return set, nil
		}
		return set, curated.Errorf("settings: %v", err)
	}

	if err := json.Unmarshal(data, &set); err != nil {
		return set, curated.Errorf("settings: %s: %v", path, err)
	}
	return set, nil
}

func main() {
	settingsPath := flag.String("settingsPath", "settings.json", "path to the settings file")
	flag.Parse()

	if err := run(*settingsPath); err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(1)
	}
}

func run(settingsPath string) error {
	set, err := loadSettings(settingsPath)
	if err != nil {
		return err
	}

	vcs := hardware.NewVector()
	emu := hardware.NewEmulation(vcs)

	sym := symbols.NewTable()
	dbg := debugger.NewDebugger(vcs, emu, sym)
	vcs.Plumb(dbg)

	if set.ROM != "" {
		if err := vcs.LoadROM(set.ROM); err != nil {
			return err
		}
		if err := dbg.LoadDebugData(set.ROM); err != nil {
			// bad debug data is an input error: report it and carry on
			logger.Logf("symbols", "%v", err)
		}
	}

	for drive, path := range set.FDD {
		if path == "" {
			continue
		}
		dsk, err := fdc.LoadDisk(path)
		if err != nil {
			return err
		}
		if err := vcs.FDC.Mount(drive, dsk); err != nil {
			return err
		}
	}

	var wav *wavwriter.WavWriter
	if set.WAV != "" {
		wav = wavwriter.NewWavWriter(set.WAV)
		vcs.AttachAudioTap(wav.Step)
	}

	if set.Statsview && statsview.Available() {
		statsview.Launch(os.Stdout)
	}

	term, err := terminal.NewTerminal(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	defer term.CleanUp()

	emu.OnHalt = func() {
		term.PrintPen(terminal.PenRed, "* break\n")
	}

	emu.Start()
	defer emu.Request(hardware.ReqQuit, hardware.ReqArgs{})

	if err := console(term, emu, dbg); err != nil {
		return err
	}

	if wav != nil {
		if err := wav.End(); err != nil {
			logger.Logf("wavwriter", "%v", err)
		}
	}

	// stop the machine and flush any written disk images
	emu.Request(hardware.ReqStop, hardware.ReqArgs{})
	for drive := 0; drive < fdc.NumDrives; drive++ {
		if err := vcs.FDC.Eject(drive); err != nil {
			logger.Logf("fdc", "%v", err)
		}
	}

	return nil
}
