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

// Package wavwriter captures the 8253 timer OUT lines to a WAV file for
// offline inspection. The sound hardware of the Vector06C is the timer's
// square waves summed onto the speaker, so a capture of the OUT lines is a
// capture of the machine's audio. Samples are buffered in memory in their
// entirety and written on End(); it is a diagnostic tool, not a player.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/logger"
)

// the tap is fed every CPU cycle; one output sample is taken per
// cyclesPerSample cycles. 3 MHz over 64 gives a comfortable 46875 Hz.
const cyclesPerSample = 64

// SampleFreq is the output sample rate.
const SampleFreq = 3000000 / cyclesPerSample

// WavWriter accumulates samples from the timer tap.
type WavWriter struct {
	filename string

	// running sum of speaker levels over the current sample window
	acc    int
	cycles int

	buffer []int
}

// NewWavWriter is the preferred method of initialisation for the WavWriter
// type.
func NewWavWriter(filename string) *WavWriter {
	return &WavWriter{
		filename: filename,
		buffer:   make([]int, 0, SampleFreq),
	}
}

// Step is the per-cycle tap: the state of the three OUT lines during this
// CPU cycle.
func (aw *WavWriter) Step(out0 bool, out1 bool, out2 bool) {
	if out0 {
		aw.acc++
	}
	if out1 {
		aw.acc++
	}
	if out2 {
		aw.acc++
	}

	aw.cycles++
	if aw.cycles < cyclesPerSample {
		return
	}

	// average the window into an 8-bit sample
	aw.buffer = append(aw.buffer, aw.acc*255/(3*cyclesPerSample))
	aw.acc = 0
	aw.cycles = 0
}

// End writes the accumulated samples to disk.
func (aw *WavWriter) End() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	enc := wav.NewEncoder(f, SampleFreq, 8, 1, 1)
	defer func() {
		if err := enc.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleFreq},
		Data:           aw.buffer,
		SourceBitDepth: 8,
	}
	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	logger.Logf("wavwriter", "%d samples written to %s", len(aw.buffer), aw.filename)
	return nil
}
