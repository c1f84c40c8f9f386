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

package curated

import (
	"fmt"
	"strings"
)

// curated is an implementation of the go language error interface. the
// pattern used at creation is kept alongside the placeholder values so that
// errors can be identified later with Is() and Has().
type curated struct {
	pattern string
	values  []interface{}
}

// Errorf creates a new curated error. the first argument is called "pattern"
// rather than "format" because the same string is what Is() and Has() match
// against.
func Errorf(pattern string, values ...interface{}) error {
	return curated{
		pattern: pattern,
		values:  values,
	}
}

// Error returns the normalised error message. when the first two ": "
// separated parts of the message are the same, the repeat is dropped, so an
// error wrapped by a pattern with the same prefix does not repeat it.
func (er curated) Error() string {
	s := fmt.Errorf(er.pattern, er.values...).Error()

	// de-duplicate adjacent parts
	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}

	return s
}

// Is checks if the error is a curated error with the specified pattern.
func Is(err error, pattern string) bool {
	if er, ok := err.(curated); ok {
		return er.pattern == pattern
	}
	return false
}

// IsAny checks if the error is a curated error of any pattern.
func IsAny(err error) bool {
	_, ok := err.(curated)
	return ok
}

// Has checks if the pattern appears anywhere in the chain of wrapped curated
// errors.
func Has(err error, pattern string) bool {
	if !IsAny(err) {
		return false
	}

	if Is(err, pattern) {
		return true
	}

	for i := range err.(curated).values {
		if e, ok := err.(curated).values[i].(curated); ok {
			if Has(e, pattern) {
				return true
			}
		}
	}

	return false
}
