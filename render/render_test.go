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

package render

import (
	"image/color"
	"math"
	"testing"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/dvi/font"
	"seehuhn.de/go/dvi/glyph"
)

func gray(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

func TestPixel(t *testing.T) {
	r := New(100, 100, 72.27)
	x, y := r.Pixel(65536, 2*65536)
	if math.Abs(x-73.27) > 1e-9 || math.Abs(y-74.27) > 1e-9 {
		t.Errorf("got (%g, %g)", x, y)
	}
}

func TestGlyph(t *testing.T) {
	bm := glyph.NewBitmap(3, 3)
	for y := 0; y < 3; y++ {
		bm.FillRow(y, 0, 3)
	}
	g := &glyph.Glyph{}
	g.SetBitmap(bm, 0, 3)

	r := New(40, 40, 72.27)
	r.OffsetX, r.OffsetY = 10, 10
	r.Draw([]font.Op{{H: 0, V: 0, Font: &font.Definition{}, Glyph: g}})

	if v := gray(r.Image.At(11, 8)); v > 64 {
		t.Errorf("glyph pixel has gray value %d", v)
	}
	for _, pt := range [][2]int{{20, 20}, {11, 12}, {5, 8}} {
		if v := gray(r.Image.At(pt[0], pt[1])); v != 255 {
			t.Errorf("pixel %v has gray value %d", pt, v)
		}
	}
}

func TestRule(t *testing.T) {
	r := New(40, 40, 72.27)
	r.OffsetX, r.OffsetY = 10, 10
	r.Draw([]font.Op{{
		Rule: rect.Rect{LLx: 0, LLy: -5 * 65536, URx: 10 * 65536, URy: 0},
	}})

	if v := gray(r.Image.At(15, 7)); v != 0 {
		t.Errorf("rule pixel has gray value %d", v)
	}
	if v := gray(r.Image.At(15, 12)); v != 255 {
		t.Errorf("pixel below rule has gray value %d", v)
	}
	if v := gray(r.Image.At(25, 7)); v != 255 {
		t.Errorf("pixel right of rule has gray value %d", v)
	}
}

func TestEmptyGlyph(t *testing.T) {
	r := New(10, 10, 72.27)
	r.Draw([]font.Op{{Font: &font.Definition{}, Glyph: &glyph.Glyph{}}})
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if gray(r.Image.At(x, y)) != 255 {
				t.Fatalf("pixel (%d, %d) was painted", x, y)
			}
		}
	}
}
