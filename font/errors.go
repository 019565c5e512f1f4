// seehuhn.de/go/dvi - a library for rendering the fonts of DVI files
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package font

import (
	"errors"
	"fmt"
	"io/fs"
)

// NotFoundError is used when no file can be found for a font.
type NotFoundError struct {
	Name string
	DPI  int
	Err  error
}

func (err *NotFoundError) Error() string {
	msg := fmt.Sprintf("font %s at %d dpi not found", err.Name, err.DPI)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *NotFoundError) Unwrap() error {
	if err.Err == nil {
		return fs.ErrNotExist
	}
	return err.Err
}

// FormatError is used when the first two bytes of a font file identify none
// of the supported font formats.
type FormatError struct {
	Name  string
	Path  string
	Magic uint16
}

func (err *FormatError) Error() string {
	return fmt.Sprintf("font %s: cannot recognize format of %q (magic %d)",
		err.Name, err.Path, err.Magic)
}

// ChecksumError reports a font file whose checksum differs from the
// expected one.  This is only a warning, the font is used anyway.
type ChecksumError struct {
	Name string
	Want uint32
	Got  uint32
}

func (err *ChecksumError) Error() string {
	return fmt.Sprintf("font %s: checksum mismatch (expected %08x, file has %08x)",
		err.Name, err.Want, err.Got)
}

// ErrRecursion is reported when the characters of virtual fonts are nested
// too deeply, for example because a virtual font refers to itself.
var ErrRecursion = errors.New("virtual fonts nested too deeply")
