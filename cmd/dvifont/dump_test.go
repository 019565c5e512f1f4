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
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/dvi/glyph"
)

func testPresentation() *glyph.Presentation {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 150, G: 150, B: 150, A: 255})
	return &glyph.Presentation{Image: img, X: 0, Y: 1, Factor: 1}
}

func TestDump(t *testing.T) {
	p := testPresentation()

	buf := &bytes.Buffer{}
	dump(buf, []*glyph.Presentation{p, p}, 80)
	want := "#. #. \n.+ .+ \n\n"
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("unexpected output (-want +got):\n%s", d)
	}

	buf.Reset()
	dump(buf, []*glyph.Presentation{p, p}, 3)
	want = "#. \n.+ \n\n#. \n.+ \n\n"
	if d := cmp.Diff(want, buf.String()); d != "" {
		t.Errorf("unexpected wrapped output (-want +got):\n%s", d)
	}
}
