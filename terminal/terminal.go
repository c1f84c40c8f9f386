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

// Package terminal is the debugger's interactive console: a posix terminal
// in cbreak mode with just enough line editing to be usable. It is the
// reference UI context: everything it does to the machine goes through the
// request dispatcher.
package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"

	"github.com/osholin/govector06/curated"
)

// ANSI pens for the prompt and error output.
const (
	PenOff    = "\033[0m"
	PenBold   = "\033[1m"
	PenDim    = "\033[2m"
	PenRed    = "\033[31m"
	PenGreen  = "\033[32m"
	PenYellow = "\033[33m"
	PenCyan   = "\033[36m"
)

// Terminal is the main container for the posix terminal.
type Terminal struct {
	input  *os.File
	output *os.File

	// terminal attributes for the modes we switch between
	canAttr    unix.Termios
	cbreakAttr unix.Termios

	// whether ANSI pens are emitted
	colour bool
}

// NewTerminal is the preferred method of initialisation for the Terminal
// type.
func NewTerminal(input *os.File, output *os.File) (*Terminal, error) {
	if input == nil || output == nil {
		return nil, curated.Errorf("terminal: input and output files are required")
	}

	term := &Terminal{
		input:  input,
		output: output,
		colour: true,
	}

	if err := termios.Tcgetattr(input.Fd(), &term.canAttr); err != nil {
		return nil, curated.Errorf("terminal: %v", err)
	}

	term.cbreakAttr = term.canAttr
	termios.Cfmakecbreak(&term.cbreakAttr)

	return term, nil
}

// CleanUp restores the terminal to the state it was found in.
func (term *Terminal) CleanUp() {
	_ = termios.Tcsetattr(term.input.Fd(), termios.TCIFLUSH, &term.canAttr)
}

// Print writes the formatted string to the output file.
func (term *Terminal) Print(format string, args ...interface{}) {
	fmt.Fprintf(term.output, format, args...)
}

// PrintPen writes the formatted string wrapped in an ANSI pen.
func (term *Terminal) PrintPen(pen string, format string, args ...interface{}) {
	if term.colour {
		term.Print("%s", pen)
	}
	term.Print(format, args...)
	if term.colour {
		term.Print("%s", PenOff)
	}
}

// Silence ANSI pens; useful when the output is not a terminal.
func (term *Terminal) Silence() {
	term.colour = false
}

// control bytes handled by ReadLine.
const (
	keyInterrupt = 3 // ctrl-c
	keyEOF       = 4 // ctrl-d
	keyBackspace = 127
	keyCarriage  = 13
	keyNewline   = 10
)

// ReadLine prompts and reads one line of input in cbreak mode, echoing as
// it goes. Returns io.EOF when the session is interrupted with ctrl-c or
// ctrl-d.
func (term *Terminal) ReadLine(prompt string) (string, error) {
	if err := termios.Tcsetattr(term.input.Fd(), termios.TCIFLUSH, &term.cbreakAttr); err != nil {
		return "", curated.Errorf("terminal: %v", err)
	}
	defer func() {
		_ = termios.Tcsetattr(term.input.Fd(), termios.TCIFLUSH, &term.canAttr)
	}()

	term.PrintPen(PenBold, "%s", prompt)

	line := make([]byte, 0, 80)
	b := make([]byte, 1)

	for {
		n, err := term.input.Read(b)
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", curated.Errorf("terminal: %v", err)
		}
		if n == 0 {
			continue
		}

		switch b[0] {
		case keyInterrupt, keyEOF:
			term.Print("\n")
			return "", io.EOF

		case keyCarriage, keyNewline:
			term.Print("\n")
			return string(line), nil

		case keyBackspace:
			if len(line) > 0 {
				line = line[:len(line)-1]
				term.Print("\b \b")
			}

		default:
			// printable characters only
			if b[0] >= 32 && b[0] < 127 {
				line = append(line, b[0])
				term.Print("%c", b[0])
			}
		}
	}
}
