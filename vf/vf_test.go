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

package vf

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/dvi/internal/makefont"
)

func read(t *testing.T, file *makefont.VF, scaledSize int32) *Index {
	t.Helper()
	data := file.Bytes()
	if got := int(data[0])<<8 | int(data[1]); got != Magic {
		t.Fatalf("wrong magic %d", got)
	}
	idx, err := ReadIndex(bytes.NewReader(data[2:]), scaledSize)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestIndex(t *testing.T) {
	size := makefont.Points(10)
	file := &makefont.VF{
		Comment:    "virtual",
		Checksum:   0xABCD,
		DesignSize: makefont.FixWord(10),
		Fonts: []makefont.VFFont{
			{Num: 0, Checksum: 7, Scale: makefont.FixWord(1), Design: makefont.FixWord(10), Name: "cmr10"},
			{Num: 5, Scale: makefont.FixWord(0.5), Design: makefont.FixWord(5), Area: "tex", Name: "cmsy5"},
		},
		Chars: []makefont.VFChar{
			{Code: 'A', TFMWidth: makefont.FixWord(0.5), DVI: makefont.DVI{}.SetChar('A')},
			{Code: 'B', TFMWidth: makefont.FixWord(0.25), DVI: makefont.DVI{}.Font(5).SetChar('B'), Long: true},
			{Code: 300, TFMWidth: 1, DVI: makefont.DVI{}.SetChar(1)},
		},
	}
	idx := read(t, file, size)

	if idx.Err != nil {
		t.Errorf("unexpected error %v", idx.Err)
	}
	if idx.Comment != "virtual" || idx.Checksum != 0xABCD || idx.DesignSize != makefont.FixWord(10) {
		t.Errorf("wrong preamble %q %x %d", idx.Comment, idx.Checksum, idx.DesignSize)
	}

	wantFonts := []FontDef{
		{Num: 0, Checksum: 7, Scale: makefont.FixWord(1), Design: makefont.FixWord(10), Name: "cmr10"},
		{Num: 5, Scale: makefont.FixWord(0.5), Design: makefont.FixWord(5), Area: "tex", Name: "cmsy5"},
	}
	if d := cmp.Diff(wantFonts, idx.Fonts); d != "" {
		t.Errorf("wrong fonts (-want +got):\n%s", d)
	}

	a := idx.Macros['A']
	if !a.Defined || !a.IsOwned() || a.Advance != size/2 {
		t.Errorf("wrong macro for A: %+v", a)
	}
	if d := cmp.Diff([]byte{'A'}, a.Bytes()); d != "" {
		t.Errorf("wrong program for A (-want +got):\n%s", d)
	}

	b := idx.Macros['B']
	if !b.Defined || b.IsOwned() || b.Advance != size/4 {
		t.Errorf("wrong macro for B: %+v", b)
	}
	if d := cmp.Diff([]byte{171 + 5, 'B'}, b.Bytes()); d != "" {
		t.Errorf("wrong program for B (-want +got):\n%s", d)
	}
	aliased := false
	for i := range idx.data {
		if &idx.data[i] == &b.Bytes()[0] {
			aliased = true
		}
	}
	if !aliased {
		t.Error("long character packet was copied")
	}

	if idx.Macros['C'].Defined {
		t.Error("undefined character has a macro")
	}
}

func TestTrailingData(t *testing.T) {
	file := &makefont.VF{
		Chars: []makefont.VFChar{
			{Code: 'x', DVI: makefont.DVI{}.SetChar('x')},
		},
		Trailer: []byte{249, 1, 2, 3, 'y', 0, 0, 0},
	}
	idx := read(t, file, makefont.Points(10))
	if idx.Err != nil {
		t.Errorf("trailing data reported as error: %v", idx.Err)
	}
	if !idx.Macros['x'].Defined {
		t.Error("character before the trailer lost")
	}
}

func TestTruncatedPacket(t *testing.T) {
	file := &makefont.VF{
		Chars: []makefont.VFChar{
			{Code: 'x', DVI: makefont.DVI{}.SetChar('x')},
		},
		// long_char with 100 bytes of commands, but only 2 present
		Trailer: []byte{242, 0, 0, 0, 100, 0, 0, 0, 'y', 0, 0, 0, 0, 1, 2},
	}
	idx := read(t, file, makefont.Points(10))
	if idx.Err == nil {
		t.Error("truncated packet not reported")
	}
	if !idx.Macros['x'].Defined || idx.Macros['y'].Defined {
		t.Error("wrong set of defined characters")
	}
}

func TestScale(t *testing.T) {
	cases := []struct {
		fix, size, want int32
	}{
		{1 << 20, 655360, 655360},
		{1 << 19, 655360, 327680},
		{80, 655360, 50},
		{-(1 << 20), 1000, -1000},
	}
	for _, c := range cases {
		if got := Scale(c.fix, c.size); got != c.want {
			t.Errorf("Scale(%d, %d) = %d, want %d", c.fix, c.size, got, c.want)
		}
	}
}

func TestCommands(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	b := Borrow(buf, 1, 3)
	o := Own(buf[1:3])
	buf[1] = 99
	if b.Bytes()[0] != 99 || b.IsOwned() {
		t.Error("borrowed range does not alias the buffer")
	}
	if o.Bytes()[0] != 2 || !o.IsOwned() || o.Len() != 2 {
		t.Error("owned range is not a copy")
	}
}
