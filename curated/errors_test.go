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

package curated_test

import (
	"errors"
	"testing"

	"github.com/osholin/govector06/curated"
	"github.com/osholin/govector06/test"
)

const testPattern = "test error: %s"
const wrapPattern = "wrapped: %v"

func TestIs(t *testing.T) {
	e := curated.Errorf(testPattern, "detail")
	test.ExpectedSuccess(t, curated.Is(e, testPattern))
	test.ExpectedFailure(t, curated.Is(e, wrapPattern))
	test.ExpectedSuccess(t, curated.IsAny(e))

	// plain errors are never curated
	p := errors.New("plain")
	test.ExpectedFailure(t, curated.IsAny(p))
	test.ExpectedFailure(t, curated.Is(p, testPattern))
}

func TestHas(t *testing.T) {
	e := curated.Errorf(testPattern, "detail")
	f := curated.Errorf(wrapPattern, e)

	test.ExpectedSuccess(t, curated.Has(f, wrapPattern))
	test.ExpectedSuccess(t, curated.Has(f, testPattern))

	// Is() does not look inside the chain
	test.ExpectedFailure(t, curated.Is(f, testPattern))
}

func TestDeduplication(t *testing.T) {
	e := curated.Errorf("fdc: %v", curated.Errorf("fdc: %v", curated.Errorf("not mounted")))
	test.Equate(t, e.Error(), "fdc: not mounted")
}
