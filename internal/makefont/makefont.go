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

// Package makefont writes small PK, GF and VF font files for use in tests.
package makefont

import (
	"encoding/binary"
	"strings"
)

// Char describes one character of a bitmap font.
type Char struct {
	Code       int
	TFMWidth   int32 // fix_word, relative to the design size
	Escapement int   // pixels
	X, Y       int   // reference point, relative to the top left pixel

	// Rows gives the bitmap, one string per row, '#' for black pixels.
	Rows []string
}

// Width returns the width of the bitmap in pixels.
func (c *Char) Width() int {
	w := 0
	for _, row := range c.Rows {
		w = max(w, len(row))
	}
	return w
}

// Height returns the number of bitmap rows.
func (c *Char) Height() int {
	return len(c.Rows)
}

// Black reports whether the pixel at (x, y) is black.
func (c *Char) Black(x, y int) bool {
	if y < 0 || y >= len(c.Rows) {
		return false
	}
	row := c.Rows[y]
	return x >= 0 && x < len(row) && row[x] == '#'
}

// FixWord converts x to a TeX fix_word, with 20 fractional bits.
func FixWord(x float64) int32 {
	return int32(x * (1 << 20))
}

// Points converts x (in printer's points) to scaled points.
func Points(x float64) int32 {
	return int32(x * (1 << 16))
}

type writer struct {
	buf []byte
}

func (w *writer) u8(x int) {
	w.buf = append(w.buf, byte(x))
}

func (w *writer) u16(x int) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(x))
}

func (w *writer) u24(x int) {
	w.buf = append(w.buf, byte(x>>16), byte(x>>8), byte(x))
}

func (w *writer) u32(x uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, x)
}

func (w *writer) i32(x int32) {
	w.u32(uint32(x))
}

func (w *writer) str(s string) {
	w.u8(len(s))
	w.buf = append(w.buf, s...)
}

// Pattern parses a multi-line picture into bitmap rows.  Leading and
// trailing blank lines are removed.
func Pattern(s string) []string {
	s = strings.Trim(s, "\n")
	return strings.Split(s, "\n")
}
