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

package parser

import "strconv"

// InvalidFontError indicates a problem with font data.
type InvalidFontError struct {
	SubSystem string
	Pos       int64
	Err       error
}

func (err *InvalidFontError) Error() string {
	subSystem := err.SubSystem
	if subSystem == "" {
		subSystem = "font"
	}
	msg := subSystem + "@" + strconv.FormatInt(err.Pos, 10)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}
	return msg
}

func (err *InvalidFontError) Unwrap() error {
	return err.Err
}
