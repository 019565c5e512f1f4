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

package makefont

// VFFont is a font definition inside a virtual font.
type VFFont struct {
	Num      int32
	Checksum uint32
	Scale    int32 // fix_word, relative to the virtual font's design size
	Design   int32 // fix_word, in points
	Area     string
	Name     string
}

// VFChar is a character packet of a virtual font.
type VFChar struct {
	Code     int
	TFMWidth int32
	DVI      []byte
	Long     bool
}

// VF describes a virtual font file.
type VF struct {
	Comment    string
	Checksum   uint32
	DesignSize int32 // fix_word, in points
	Fonts      []VFFont
	Chars      []VFChar

	// Trailer is appended after the last character packet, in place of
	// the postamble.
	Trailer []byte
}

// Bytes returns the encoded font file.
func (vf *VF) Bytes() []byte {
	w := &writer{}
	w.u8(247)
	w.u8(202)
	w.str(vf.Comment)
	w.u32(vf.Checksum)
	w.i32(vf.DesignSize)

	for _, f := range vf.Fonts {
		w.u8(246) // fnt_def4
		w.i32(f.Num)
		w.u32(f.Checksum)
		w.i32(f.Scale)
		w.i32(f.Design)
		w.u8(len(f.Area))
		w.u8(len(f.Name))
		w.buf = append(w.buf, f.Area...)
		w.buf = append(w.buf, f.Name...)
	}

	for _, c := range vf.Chars {
		if c.Long || len(c.DVI) >= 242 || c.Code > 255 || c.TFMWidth < 0 || c.TFMWidth >= 1<<24 {
			w.u8(242)
			w.u32(uint32(len(c.DVI)))
			w.u32(uint32(c.Code))
			w.i32(c.TFMWidth)
		} else {
			w.u8(len(c.DVI))
			w.u8(c.Code)
			w.u24(int(c.TFMWidth))
		}
		w.buf = append(w.buf, c.DVI...)
	}

	if vf.Trailer != nil {
		w.buf = append(w.buf, vf.Trailer...)
		return w.buf
	}
	w.u8(248) // post
	for len(w.buf)%4 != 0 {
		w.u8(248)
	}
	return w.buf
}

// DVI builds a sequence of DVI commands.
type DVI []byte

// SetChar typesets character c and moves right.
func (d DVI) SetChar(c int) DVI {
	if c < 128 {
		return append(d, byte(c))
	}
	return append(d, 128, byte(c)) // set1
}

// PutChar typesets character c without moving.
func (d DVI) PutChar(c int) DVI {
	return append(d, 133, byte(c)) // put1
}

// SetRule draws a rule of the given height and width and moves right.
func (d DVI) SetRule(height, width int32) DVI {
	d = append(d, 132)
	d = appendI32(d, height)
	return appendI32(d, width)
}

// Right moves right by x.
func (d DVI) Right(x int32) DVI {
	return appendI32(append(d, 146), x) // right4
}

// Down moves down by y.
func (d DVI) Down(y int32) DVI {
	return appendI32(append(d, 160), y) // down4
}

// W moves right by x and stores x in register w.
func (d DVI) W(x int32) DVI {
	return appendI32(append(d, 151), x) // w4
}

// W0 moves right by the value of register w.
func (d DVI) W0() DVI {
	return append(d, 147)
}

// Push saves the current position.
func (d DVI) Push() DVI {
	return append(d, 141)
}

// Pop restores the last saved position.
func (d DVI) Pop() DVI {
	return append(d, 142)
}

// Font selects the font with the given local number.
func (d DVI) Font(k int) DVI {
	if k < 64 {
		return append(d, byte(171+k)) // fnt_num_k
	}
	return append(d, 235, byte(k)) // fnt1
}

// Special embeds an xxx1 command.
func (d DVI) Special(s string) DVI {
	d = append(d, 239, byte(len(s)))
	return append(d, s...)
}

func appendI32(d DVI, x int32) DVI {
	return append(d, byte(x>>24), byte(x>>16), byte(x>>8), byte(x))
}
