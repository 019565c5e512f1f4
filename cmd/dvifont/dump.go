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

package main

import (
	"bufio"
	"image"
	"image/color"
	"io"

	"seehuhn.de/go/dvi/glyph"
)

// dump prints glyph presentations as ASCII art, side by side with their
// reference points on a common baseline.  Lines are wrapped to the given
// number of columns.
func dump(w io.Writer, pics []*glyph.Presentation, columns int) {
	out := bufio.NewWriter(w)
	defer out.Flush()

	for len(pics) > 0 {
		n, total := 0, 0
		for n < len(pics) {
			pw := pics[n].Image.Bounds().Dx() + 1
			if n > 0 && total+pw > columns {
				break
			}
			total += pw
			n++
		}
		writeLine(out, pics[:n])
		pics = pics[n:]
	}
}

func writeLine(out *bufio.Writer, pics []*glyph.Presentation) {
	above, below := 0, 0
	for _, p := range pics {
		above = max(above, p.Y)
		below = max(below, p.Image.Bounds().Dy()-p.Y)
	}

	for row := -above; row < below; row++ {
		for _, p := range pics {
			b := p.Image.Bounds()
			y := b.Min.Y + row + p.Y
			for x := b.Min.X; x < b.Max.X; x++ {
				out.WriteByte(pixelChar(p, x, y))
			}
			out.WriteByte(' ')
		}
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
}

func pixelChar(p *glyph.Presentation, x, y int) byte {
	if !(image.Pt(x, y).In(p.Image.Bounds())) {
		return '.'
	}
	c := p.Image.NRGBAAt(x, y)
	if c.A == 0 {
		return '.'
	}
	switch g := color.GrayModel.Convert(c).(color.Gray).Y; {
	case g < 96:
		return '#'
	case g < 192:
		return '+'
	default:
		return '-'
	}
}
