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

// PKForm selects the character preamble used in a PK file.
type PKForm int

// These are the three character preamble formats of PK files.
const (
	PKShort PKForm = iota
	PKExtendedShort
	PKLong
)

// PK describes a packed bitmap font file.
type PK struct {
	Comment    string
	DesignSize int32 // fix_word, in points
	Checksum   uint32
	HPPP, VPPP int32 // pixels per point, scaled by 2^16

	Chars []Char

	Form     PKForm
	Packed   bool // use run-length encoding instead of raw bitmaps
	Specials bool // intersperse xxx1 and yyy commands

	// Packets are appended verbatim after the packets for Chars.
	Packets [][]byte
}

// Bytes returns the encoded font file.
func (pk *PK) Bytes() []byte {
	w := &writer{}
	w.u8(247)
	w.u8(89)
	w.str(pk.Comment)
	w.i32(pk.DesignSize)
	w.u32(pk.Checksum)
	w.i32(pk.HPPP)
	w.i32(pk.VPPP)

	for i := range pk.Chars {
		if pk.Specials {
			w.u8(240) // xxx1
			w.str("special")
			w.u8(244) // yyy
			w.u32(0x12345678)
			w.u8(246) // no_op
		}
		c := &pk.Chars[i]
		dynF, turnOn, raster := 14, false, rawRaster(c)
		if pk.Packed {
			dynF, turnOn, raster = packRaster(c)
		}
		w.buf = append(w.buf, PKPacket(c, pk.Form, dynF, turnOn, raster)...)
	}
	for _, pkt := range pk.Packets {
		w.buf = append(w.buf, pkt...)
	}

	w.u8(245) // post
	for len(w.buf)%4 != 0 {
		w.u8(246)
	}
	return w.buf
}

// PKPacket returns the character packet for c, using the given raster
// encoding.
func PKPacket(c *Char, form PKForm, dynF int, turnOn bool, raster []byte) []byte {
	flag := dynF << 4
	if turnOn {
		flag |= 8
	}
	wd, ht := c.Width(), c.Height()

	body := &writer{}
	switch form {
	case PKShort:
		body.u8(c.Code)
		body.u24(int(c.TFMWidth))
		body.u8(c.Escapement)
		body.u8(wd)
		body.u8(ht)
		body.u8(c.X)
		body.u8(c.Y)
	case PKExtendedShort:
		body.u8(c.Code)
		body.u24(int(c.TFMWidth))
		body.u16(c.Escapement)
		body.u16(wd)
		body.u16(ht)
		body.u16(c.X)
		body.u16(c.Y)
	case PKLong:
		body.u32(uint32(c.Code))
		body.i32(c.TFMWidth)
		body.i32(int32(c.Escapement) << 16)
		body.i32(0)
		body.u32(uint32(wd))
		body.u32(uint32(ht))
		body.i32(int32(c.X))
		body.i32(int32(c.Y))
	}
	body.buf = append(body.buf, raster...)

	// the packet length does not include the character code
	pl := len(body.buf) - 1
	if form == PKLong {
		pl -= 3
	}

	w := &writer{}
	switch form {
	case PKShort:
		w.u8(flag | (pl>>8)&3)
		w.u8(pl & 0xFF)
	case PKExtendedShort:
		w.u8(flag | 4 | (pl>>16)&3)
		w.u16(pl & 0xFFFF)
	case PKLong:
		w.u8(flag | 7)
		w.u32(uint32(pl))
	}
	w.buf = append(w.buf, body.buf...)
	return w.buf
}

func rawRaster(c *Char) []byte {
	wd, ht := c.Width(), c.Height()
	res := make([]byte, (wd*ht+7)/8)
	k := 0
	for y := 0; y < ht; y++ {
		for x := 0; x < wd; x++ {
			if c.Black(x, y) {
				res[k/8] |= 0x80 >> (k % 8)
			}
			k++
		}
	}
	return res
}

// packRaster run-length encodes the bitmap of c, without repeat counts.
func packRaster(c *Char) (dynF int, turnOn bool, raster []byte) {
	wd, ht := c.Width(), c.Height()
	var runs []int
	first := true
	cur := false
	for y := 0; y < ht; y++ {
		for x := 0; x < wd; x++ {
			b := c.Black(x, y)
			if first {
				turnOn = b
				cur = b
				runs = append(runs, 0)
				first = false
			}
			if b != cur {
				runs = append(runs, 0)
				cur = b
			}
			runs[len(runs)-1]++
		}
	}

	dynF = 8
	var nybbles []byte
	for _, n := range runs {
		nybbles = appendPacked(nybbles, n, dynF)
	}
	if len(nybbles)%2 != 0 {
		nybbles = append(nybbles, 0)
	}
	raster = make([]byte, len(nybbles)/2)
	for i := range raster {
		raster[i] = nybbles[2*i]<<4 | nybbles[2*i+1]
	}
	return dynF, turnOn, raster
}

// appendPacked appends the PK packed number encoding of n >= 1.
func appendPacked(nybbles []byte, n, dynF int) []byte {
	if n <= dynF {
		return append(nybbles, byte(n))
	}
	limit := (13-dynF)*16 + dynF
	if n <= limit {
		n -= dynF + 1
		return append(nybbles, byte(n/16+dynF+1), byte(n%16))
	}
	i := n - limit + 15
	var digits []byte
	for i > 0 {
		digits = append(digits, byte(i%16))
		i /= 16
	}
	for range len(digits) - 1 {
		nybbles = append(nybbles, 0)
	}
	for j := len(digits) - 1; j >= 0; j-- {
		nybbles = append(nybbles, digits[j])
	}
	return nybbles
}
