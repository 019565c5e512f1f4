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

package pk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/dvi/glyph"
	"seehuhn.de/go/dvi/internal/makefont"
)

var testChars = []makefont.Char{
	{
		Code: 'A', TFMWidth: makefont.FixWord(0.75), Escapement: 7, X: 1, Y: 6,
		Rows: makefont.Pattern(`
..##..
.#..#.
#....#
######
#....#
#....#
#....#`),
	},
	{
		Code: '-', TFMWidth: makefont.FixWord(0.3), Escapement: 4, X: 0, Y: 3,
		Rows: makefont.Pattern(`
####`),
	},
	{
		Code: 200, TFMWidth: makefont.FixWord(0.5), Escapement: 5, X: -2, Y: 2,
		Rows: makefont.Pattern(`
#.#.#
.#.#.
#.#.#`),
	},
}

func rows(bm glyph.Bitmap) []string {
	var res []string
	for y := 0; y < bm.Height; y++ {
		var b strings.Builder
		for x := 0; x < bm.Width; x++ {
			if bm.Get(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		res = append(res, b.String())
	}
	return res
}

type decoded struct {
	Rows       []string
	X, Y       int
	TFMWidth   int32
	Escapement int
}

func TestRoundTrip(t *testing.T) {
	for _, form := range []makefont.PKForm{makefont.PKShort, makefont.PKExtendedShort, makefont.PKLong} {
		for _, packed := range []bool{false, true} {
			file := &makefont.PK{
				Comment:    "test font",
				DesignSize: makefont.FixWord(10),
				Checksum:   0xCAFE,
				HPPP:       makefont.Points(600 / 72.27),
				VPPP:       makefont.Points(600 / 72.27),
				Chars:      testChars,
				Form:       form,
				Packed:     packed,
				Specials:   true,
			}
			f, err := Read(bytes.NewReader(file.Bytes()), 100, 600)
			if err != nil {
				t.Fatalf("form %d, packed %t: %v", form, packed, err)
			}
			if f.Checksum() != 0xCAFE || f.Comment != "test font" {
				t.Errorf("wrong preamble: %q %x", f.Comment, f.Checksum())
			}

			for _, c := range testChars {
				g, err := f.Glyph(c.Code)
				if err != nil {
					t.Fatalf("form %d, packed %t, char %d: %v", form, packed, c.Code, err)
				}
				got := decoded{rows(g.Bitmap), g.X, g.Y, g.TFMWidth, g.Escapement}
				want := decoded{c.Rows, c.X, c.Y, c.TFMWidth, c.Escapement}
				if d := cmp.Diff(want, got); d != "" {
					t.Errorf("form %d, packed %t, char %d (-want +got):\n%s",
						form, packed, c.Code, d)
				}
			}
		}
	}
}

func TestLongRuns(t *testing.T) {
	wide := strings.Repeat("#", 250)
	c := makefont.Char{
		Code: 1,
		Rows: []string{wide, wide, strings.Repeat(".", 125) + strings.Repeat("#", 125)},
	}
	file := &makefont.PK{Chars: []makefont.Char{c}, Packed: true, Form: makefont.PKLong}
	f, err := Read(bytes.NewReader(file.Bytes()), 300, 300)
	if err != nil {
		t.Fatal(err)
	}
	g, err := f.Glyph(1)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(c.Rows, rows(g.Bitmap)); d != "" {
		t.Errorf("wrong bitmap (-want +got):\n%s", d)
	}
}

func TestRepeatCount(t *testing.T) {
	c := &makefont.Char{Code: 'r', Rows: []string{"###", "###", "#.."}}
	// dyn_f = 8: repeat the current row once, 4 black pixels, 2 white pixels
	raster := []byte{0xF4, 0x20}
	packet := makefont.PKPacket(c, makefont.PKShort, 8, true, raster)

	file := &makefont.PK{Packets: [][]byte{packet}}
	f, err := Read(bytes.NewReader(file.Bytes()), 600, 600)
	if err != nil {
		t.Fatal(err)
	}
	g, err := f.Glyph('r')
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]string{"###", "###", "#.."}, rows(g.Bitmap)); d != "" {
		t.Errorf("wrong bitmap (-want +got):\n%s", d)
	}
}

func TestCorruptCharacter(t *testing.T) {
	good := &testChars[0]
	bad := &makefont.Char{Code: 'B', TFMWidth: 1000, Rows: []string{"####", "####"}}

	file := &makefont.PK{
		Packets: [][]byte{
			makefont.PKPacket(good, makefont.PKShort, 14, false, rawOf(good)),
			// the raw raster needs one byte, supply none
			makefont.PKPacket(bad, makefont.PKShort, 14, false, nil),
		},
	}
	f, err := Read(bytes.NewReader(file.Bytes()), 600, 600)
	if err != nil {
		t.Fatal(err)
	}

	g, err := f.Glyph('B')
	if err == nil {
		t.Error("damaged character decoded without error")
	}
	if !g.IsEmpty() {
		t.Error("damaged character is not empty")
	}
	if g.TFMWidth != 1000 {
		t.Errorf("width of damaged character lost: %d", g.TFMWidth)
	}
	if g2, err := f.Glyph('B'); err != nil || g2 != g {
		t.Error("damaged character was decoded twice")
	}

	g, err = f.Glyph(good.Code)
	if err != nil || g.IsEmpty() {
		t.Errorf("undamaged character unusable: %v", err)
	}
}

func rawOf(c *makefont.Char) []byte {
	var res []byte
	k := 0
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			if k%8 == 0 {
				res = append(res, 0)
			}
			if c.Black(x, y) {
				res[k/8] |= 0x80 >> (k % 8)
			}
			k++
		}
	}
	return res
}

func TestMissingCharacter(t *testing.T) {
	file := &makefont.PK{Chars: testChars}
	f, err := Read(bytes.NewReader(file.Bytes()), 600, 600)
	if err != nil {
		t.Fatal(err)
	}
	for _, code := range []int{'Z', -1, 256} {
		g, err := f.Glyph(code)
		if err != nil || g == nil || !g.IsEmpty() {
			t.Errorf("code %d: expected empty glyph, got %v, %v", code, g, err)
		}
	}
	if f.Has('Z') || !f.Has('A') {
		t.Error("Has() gives wrong results")
	}
}

func TestBadMagic(t *testing.T) {
	data := []byte{247, 131, 0}
	_, err := Read(bytes.NewReader(data), 600, 600)
	if err == nil {
		t.Error("GF data accepted as PK font")
	}
}

func TestShrinkFactor(t *testing.T) {
	file := &makefont.PK{Chars: testChars}
	f, err := Read(bytes.NewReader(file.Bytes()), 100, 600)
	if err != nil {
		t.Fatal(err)
	}
	if k := f.ShrinkFactor(); k != 6 {
		t.Errorf("shrink factor %d, want 6", k)
	}

	g, _ := f.Glyph('A')
	g.Presentation(6)
	f.SetDisplayResolution(300)
	if k := f.ShrinkFactor(); k != 2 {
		t.Errorf("shrink factor %d, want 2", k)
	}
	if g.Cached() != nil {
		t.Error("resolution change did not discard the presentation")
	}
}
