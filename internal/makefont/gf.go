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

// GF describes a generic font file.
type GF struct {
	Comment    string
	DesignSize int32 // fix_word, in points
	Checksum   uint32
	HPPP, VPPP int32 // pixels per point, scaled by 2^16

	Chars []Char

	// Short selects boc1 and char_loc0 commands where the values fit.
	Short bool
}

// Bytes returns the encoded font file.
func (gf *GF) Bytes() []byte {
	w := &writer{}
	w.u8(247)
	w.u8(131)
	w.str(gf.Comment)

	ptr := make([]int, len(gf.Chars))
	var minM, maxM, minN, maxN int
	for i := range gf.Chars {
		c := &gf.Chars[i]
		ptr[i] = len(w.buf)

		cMinM := -c.X
		cMaxM := cMinM + c.Width() - 1
		cMaxN := c.Y
		cMinN := cMaxN - c.Height() + 1
		if i == 0 {
			minM, maxM, minN, maxN = cMinM, cMaxM, cMinN, cMaxN
		} else {
			minM, maxM = min(minM, cMinM), max(maxM, cMaxM)
			minN, maxN = min(minN, cMinN), max(maxN, cMaxN)
		}

		w.u8(239) // xxx1
		w.str("title")
		short := gf.Short && cMaxM >= 0 && cMaxM < 256 && cMaxM-cMinM < 256 &&
			cMaxN >= 0 && cMaxN < 256 && cMaxN-cMinN < 256
		if short {
			w.u8(68) // boc1
			w.u8(c.Code)
			w.u8(cMaxM - cMinM)
			w.u8(cMaxM)
			w.u8(cMaxN - cMinN)
			w.u8(cMaxN)
		} else {
			w.u8(67) // boc
			w.u32(uint32(c.Code))
			w.i32(-1)
			w.i32(int32(cMinM))
			w.i32(int32(cMaxM))
			w.i32(int32(cMinN))
			w.i32(int32(cMaxN))
		}
		gfPaint(w, c)
		w.u8(69) // eoc
	}

	post := len(w.buf)
	w.u8(248) // post
	w.i32(-1)
	w.i32(gf.DesignSize)
	w.u32(gf.Checksum)
	w.i32(gf.HPPP)
	w.i32(gf.VPPP)
	w.i32(int32(minM))
	w.i32(int32(maxM))
	w.i32(int32(minN))
	w.i32(int32(maxN))
	for i := range gf.Chars {
		c := &gf.Chars[i]
		if gf.Short && c.Escapement >= 0 && c.Escapement < 256 {
			w.u8(246) // char_loc0
			w.u8(c.Code)
			w.u8(c.Escapement)
		} else {
			w.u8(245) // char_loc
			w.u8(c.Code)
			w.i32(int32(c.Escapement) << 16)
			w.i32(0)
		}
		w.i32(c.TFMWidth)
		w.i32(int32(ptr[i]))
	}
	w.u8(249) // post_post
	w.u32(uint32(post))
	w.u8(131)
	for k := 0; k < 4 || len(w.buf)%4 != 0; k++ {
		w.u8(223)
	}
	return w.buf
}

// gfPaint writes the painting commands for the rows of c, starting with
// the paint position at the top left corner and the colour white.
func gfPaint(w *writer, c *Char) {
	wd := c.Width()
	skipped := 0
	for y := 0; y < c.Height(); y++ {
		x := 0
		black := false
		if y > 0 {
			first := -1
			for k := 0; k < wd; k++ {
				if c.Black(k, y) {
					first = k
					break
				}
			}
			if first < 0 {
				skipped++
				continue
			}
			switch {
			case skipped == 0 && first <= 164:
				w.u8(74 + first) // new_row_k
				x = first
				black = true
			case skipped == 0:
				w.u8(70) // skip0
			default:
				w.u8(71) // skip1
				w.u8(skipped)
			}
			skipped = 0
		}
		for x < wd {
			end := x
			for end < wd && c.Black(end, y) == black {
				end++
			}
			if end == wd && !black {
				break
			}
			d := end - x
			if d < 64 {
				w.u8(d) // paint_d
			} else {
				w.u8(64) // paint1
				w.u8(d)
			}
			x = end
			black = !black
		}
	}
}
