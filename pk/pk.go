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

// Package pk reads packed bitmap fonts (PK files).
//
// PK files store the characters of a font, rasterized at one resolution,
// using a compact run-length encoding.  The file is indexed when it is
// opened, individual characters are only decoded when they are first used.
package pk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"seehuhn.de/go/dvi/glyph"
	"seehuhn.de/go/dvi/parser"
)

// Magic is the value of the first two bytes of a PK file.
const Magic = 247<<8 + 89

// PK file commands
const (
	cmdXXX1  = 240
	cmdYYY   = 244
	cmdPost  = 245
	cmdNoOp  = 246
	cmdPre   = 247
	maxPixel = 1 << 24
)

// Font is a PK font file.
type Font struct {
	Comment    string
	DesignSize int32 // fix_word, in points
	HPPP, VPPP int32 // pixels per point, scaled by 2^16

	checksum   uint32
	data       []byte
	packets    [256]packet
	glyphs     [256]*glyph.Glyph
	actualDPI  float64
	nominalDPI float64
}

type packet struct {
	start, end int // byte range, starting at the flag byte
}

// Open reads the PK font file with the given name.
// The font is rendered at actualDPI, the file is expected to contain
// characters at nominalDPI.
func Open(fname string, actualDPI, nominalDPI float64) (*Font, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return parse(data, actualDPI, nominalDPI)
}

// Read reads a PK font from r.
func Read(r io.Reader, actualDPI, nominalDPI float64) (*Font, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parse(data, actualDPI, nominalDPI)
}

func parse(data []byte, actualDPI, nominalDPI float64) (*Font, error) {
	p := parser.New("pk", bytes.NewReader(data))

	magic, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, p.Error("not a PK file (magic %d)", magic)
	}

	f := &Font{
		data:       data,
		actualDPI:  actualDPI,
		nominalDPI: nominalDPI,
	}
	f.Comment, err = p.ReadString()
	if err != nil {
		return nil, err
	}
	f.DesignSize, err = p.ReadInt32()
	if err != nil {
		return nil, err
	}
	f.checksum, err = p.ReadUInt32()
	if err != nil {
		return nil, err
	}
	f.HPPP, err = p.ReadInt32()
	if err != nil {
		return nil, err
	}
	f.VPPP, err = p.ReadInt32()
	if err != nil {
		return nil, err
	}

	for i := range f.packets {
		f.packets[i].start = -1
	}
	f.scan(p)

	return f, nil
}

// scan records the location of all character packets.  A damaged packet
// ends the scan, characters found up to this point remain usable.
func (f *Font) scan(p *parser.Parser) {
	for {
		start := p.Pos()
		flag, err := p.ReadUInt8()
		if err != nil {
			return
		}

		if flag >= cmdXXX1 {
			switch {
			case flag < cmdYYY:
				k, err := p.ReadUInt(int(flag - cmdXXX1 + 1))
				if err != nil || p.Skip(int64(k)) != nil {
					return
				}
			case flag == cmdYYY:
				if p.Skip(4) != nil {
					return
				}
			case flag == cmdNoOp:
				// pass
			default:
				// post, or an invalid command
				return
			}
			continue
		}

		var pl, cc uint32
		switch flag & 7 {
		case 7:
			pl, err = p.ReadUInt32()
			if err == nil {
				cc, err = p.ReadUInt32()
			}
		case 4, 5, 6:
			var low uint16
			low, err = p.ReadUInt16()
			pl = uint32(flag&3)<<16 | uint32(low)
			if err == nil {
				cc, err = p.ReadUInt(1)
			}
		default:
			var low uint8
			low, err = p.ReadUInt8()
			pl = uint32(flag&3)<<8 | uint32(low)
			if err == nil {
				cc, err = p.ReadUInt(1)
			}
		}
		if err != nil {
			return
		}

		// pl counts the bytes after the character code
		end := p.Pos() + int64(pl)
		if end > p.Size() {
			end = p.Size()
		}
		if cc < 256 {
			f.packets[cc] = packet{start: int(start), end: int(end)}
			f.glyphs[cc] = nil
		}
		if p.SeekPos(end) != nil {
			return
		}
	}
}

// Checksum returns the checksum stored in the PK file.
func (f *Font) Checksum() uint32 {
	return f.checksum
}

// Resolution returns the horizontal resolution of the font file, in pixels
// per inch.
func (f *Font) Resolution() float64 {
	return float64(f.HPPP) / 65536 * 72.27
}

// SetDisplayResolution changes the resolution at which the font is shown.
// Cached presentations of all glyphs are discarded.
func (f *Font) SetDisplayResolution(dpi float64) {
	f.actualDPI = dpi
	for _, g := range f.glyphs {
		if g != nil {
			g.ClearPresentation()
		}
	}
}

// ShrinkFactor returns the factor by which the glyph bitmaps need to be
// shrunk for display.
func (f *Font) ShrinkFactor() int {
	if f.actualDPI <= 0 || f.nominalDPI <= 0 {
		return 1
	}
	return max(1, int(math.Round(f.nominalDPI/f.actualDPI)))
}

// Has reports whether the font contains a character with the given code.
func (f *Font) Has(code int) bool {
	return code >= 0 && code < 256 && f.packets[code].start >= 0
}

// Glyph returns the glyph for the given character code.
//
// The result is never nil.  Characters which are missing from the font, or
// which cannot be decoded, are represented by an empty glyph.  For damaged
// characters the error is returned by the first call only.
func (f *Font) Glyph(code int) (*glyph.Glyph, error) {
	if code < 0 || code >= 256 {
		return &glyph.Glyph{}, nil
	}
	if g := f.glyphs[code]; g != nil {
		return g, nil
	}

	g := &glyph.Glyph{}
	var err error
	if f.Has(code) {
		pkt := f.packets[code]
		err = decode(g, f.data[pkt.start:pkt.end])
		if err != nil {
			g.SetBitmap(glyph.Bitmap{}, 0, 0)
			err = fmt.Errorf("character %d: %w", code, err)
		}
	}
	f.glyphs[code] = g
	return g, err
}

var errSize = errors.New("character too large")

// decode reads one character packet.
func decode(g *glyph.Glyph, pkt []byte) error {
	p := parser.New("pk", bytes.NewReader(pkt))
	flag, err := p.ReadUInt8()
	if err != nil {
		return err
	}

	var w, h uint32
	var x, y int32
	switch flag & 7 {
	case 7:
		var dx int32
		if err := p.Skip(8); err != nil { // pl, cc
			return err
		}
		if g.TFMWidth, err = p.ReadInt32(); err != nil {
			return err
		}
		if dx, err = p.ReadInt32(); err != nil {
			return err
		}
		g.Escapement = int((int64(dx) + 0x8000) >> 16)
		if err := p.Skip(4); err != nil { // dy
			return err
		}
		if w, err = p.ReadUInt32(); err != nil {
			return err
		}
		if h, err = p.ReadUInt32(); err != nil {
			return err
		}
		if x, err = p.ReadInt32(); err != nil {
			return err
		}
		if y, err = p.ReadInt32(); err != nil {
			return err
		}
	case 4, 5, 6:
		x, y, w, h, err = readHeader(g, p, 2, 2)
	default:
		x, y, w, h, err = readHeader(g, p, 1, 1)
	}
	if err != nil {
		return err
	}
	if uint64(w)*uint64(h) > maxPixel {
		return p.Error("%w (%dx%d)", errSize, w, h)
	}

	bm := glyph.NewBitmap(int(w), int(h))
	raster := pkt[p.Pos():]
	dynF := int(flag >> 4)
	switch {
	case bm.IsEmpty():
		// nothing to paint
	case dynF == 14:
		err = unpackRaw(&bm, raster)
	case dynF < 14:
		d := &runDecoder{data: raster, dynF: dynF}
		err = d.unpack(&bm, flag&8 != 0)
	default:
		err = p.Error("invalid dyn_f %d", dynF)
	}
	if err != nil {
		return err
	}
	g.SetBitmap(bm, int(x), int(y))
	return nil
}

// readHeader reads the fields of the short and extended short character
// preambles, where pl is n bytes long and the remaining fields are k bytes
// long.
func readHeader(g *glyph.Glyph, p *parser.Parser, n, k int) (x, y int32, w, h uint32, err error) {
	if err = p.Skip(int64(n + 1)); err != nil { // pl, cc
		return
	}
	var tfm, dm uint32
	if tfm, err = p.ReadUInt(3); err != nil {
		return
	}
	g.TFMWidth = int32(tfm)
	if dm, err = p.ReadUInt(k); err != nil {
		return
	}
	g.Escapement = int(dm)
	if w, err = p.ReadUInt(k); err != nil {
		return
	}
	if h, err = p.ReadUInt(k); err != nil {
		return
	}
	if x, err = p.ReadInt(k); err != nil {
		return
	}
	y, err = p.ReadInt(k)
	return
}

func unpackRaw(bm *glyph.Bitmap, raster []byte) error {
	n := bm.Width * bm.Height
	if len(raster) < (n+7)/8 {
		return &parser.InvalidFontError{SubSystem: "pk", Err: io.ErrUnexpectedEOF}
	}
	for k := 0; k < n; k++ {
		if raster[k/8]&(0x80>>(k%8)) != 0 {
			bm.Set(k%bm.Width, k/bm.Width)
		}
	}
	return nil
}
