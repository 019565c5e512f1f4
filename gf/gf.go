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

// Package gf reads generic font files (GF files), as written by METAFONT.
//
// The postamble of a GF file lists the location of every character.  This
// table is read when the file is opened, the painting commands for a
// character are only executed when the character is first used.
package gf

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

// Magic is the value of the first two bytes of a GF file.
const Magic = 247<<8 + 131

const (
	cmdPaint1   = 64
	cmdBOC      = 67
	cmdBOC1     = 68
	cmdEOC      = 69
	cmdSkip0    = 70
	cmdSkip1    = 71
	cmdNewRow0  = 74
	cmdXXX1     = 239
	cmdYYY      = 243
	cmdNoOp     = 244
	cmdCharLoc  = 245
	cmdCharLoc0 = 246
	cmdPost     = 248
	cmdPostPost = 249
	padding     = 223
	maxPixel    = 1 << 24
)

// Font is a GF font file.
type Font struct {
	Comment    string
	DesignSize int32 // fix_word, in points
	HPPP, VPPP int32 // pixels per point, scaled by 2^16

	checksum   uint32
	data       []byte
	locs       [256]charLoc
	glyphs     [256]*glyph.Glyph
	actualDPI  float64
	nominalDPI float64
}

type charLoc struct {
	ptr        int64 // -1 if the character is missing
	tfmWidth   int32
	escapement int
}

// Open reads the GF font file with the given name.
func Open(fname string, actualDPI, nominalDPI float64) (*Font, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return parse(data, actualDPI, nominalDPI)
}

// Read reads a GF font from r.
func Read(r io.Reader, actualDPI, nominalDPI float64) (*Font, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parse(data, actualDPI, nominalDPI)
}

func parse(data []byte, actualDPI, nominalDPI float64) (*Font, error) {
	p := parser.New("gf", bytes.NewReader(data))

	magic, err := p.ReadUInt16()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, p.Error("not a GF file (magic %d)", magic)
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
	for i := range f.locs {
		f.locs[i].ptr = -1
	}

	post, err := findPostamble(p, data)
	if err != nil {
		return nil, err
	}
	err = f.readPostamble(p, post)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// findPostamble locates the post command, using the pointer stored before
// the trailing padding bytes.
func findPostamble(p *parser.Parser, data []byte) (int64, error) {
	k := len(data) - 1
	for k >= 0 && data[k] == padding {
		k--
	}
	if k < 5 || data[k] != 131 || data[k-5] != cmdPostPost {
		return 0, p.Error("missing postamble")
	}
	q := int64(parser.Unsigned(data[k-4 : k]))
	if q >= int64(len(data)) {
		return 0, p.Error("invalid postamble pointer %d", q)
	}
	return q, nil
}

func (f *Font) readPostamble(p *parser.Parser, post int64) error {
	err := p.SeekPos(post)
	if err != nil {
		return err
	}
	op, err := p.ReadUInt8()
	if err != nil {
		return err
	}
	if op != cmdPost {
		return p.Error("invalid postamble")
	}
	if err := p.Skip(4); err != nil { // p, pointer to the last eoc
		return err
	}
	if f.DesignSize, err = p.ReadInt32(); err != nil {
		return err
	}
	if f.checksum, err = p.ReadUInt32(); err != nil {
		return err
	}
	if f.HPPP, err = p.ReadInt32(); err != nil {
		return err
	}
	if f.VPPP, err = p.ReadInt32(); err != nil {
		return err
	}
	if err := p.Skip(16); err != nil { // min_m, max_m, min_n, max_n
		return err
	}

	for {
		op, err := p.ReadUInt8()
		if err != nil {
			return err
		}
		var loc charLoc
		switch op {
		case cmdCharLoc:
			c, err := p.ReadUInt8()
			if err != nil {
				return err
			}
			dx, err := p.ReadInt32()
			if err != nil {
				return err
			}
			if err := p.Skip(4); err != nil { // dy
				return err
			}
			loc.escapement = int((int64(dx) + 0x8000) >> 16)
			err = f.readLoc(p, &loc)
			if err != nil {
				return err
			}
			f.locs[c] = loc
		case cmdCharLoc0:
			c, err := p.ReadUInt8()
			if err != nil {
				return err
			}
			dm, err := p.ReadUInt8()
			if err != nil {
				return err
			}
			loc.escapement = int(dm)
			err = f.readLoc(p, &loc)
			if err != nil {
				return err
			}
			f.locs[c] = loc
		case cmdNoOp:
			// pass
		case cmdPostPost:
			return nil
		default:
			return p.Error("unexpected command %d in postamble", op)
		}
	}
}

func (f *Font) readLoc(p *parser.Parser, loc *charLoc) error {
	w, err := p.ReadInt32()
	if err != nil {
		return err
	}
	ptr, err := p.ReadInt32()
	if err != nil {
		return err
	}
	loc.tfmWidth = w
	loc.ptr = int64(ptr)
	if loc.ptr >= int64(len(f.data)) {
		loc.ptr = -1
	}
	return nil
}

// Checksum returns the checksum stored in the GF file.
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
	return code >= 0 && code < 256 && f.locs[code].ptr >= 0
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
		loc := f.locs[code]
		g.TFMWidth = loc.tfmWidth
		g.Escapement = loc.escapement
		err = f.paint(g, loc.ptr)
		if err != nil {
			g.SetBitmap(glyph.Bitmap{}, 0, 0)
			err = fmt.Errorf("character %d: %w", code, err)
		}
	}
	f.glyphs[code] = g
	return g, err
}

var errOutside = errors.New("paint outside the character box")

// paint executes the commands of one character, starting at the boc command
// (possibly preceded by specials) at position ptr.
func (f *Font) paint(g *glyph.Glyph, ptr int64) error {
	p := parser.New("gf", bytes.NewReader(f.data))
	err := p.SeekPos(ptr)
	if err != nil {
		return err
	}

	var minM, maxM, minN, maxN int32
	for {
		op, err := p.ReadUInt8()
		if err != nil {
			return err
		}
		if op == cmdBOC {
			if err := p.Skip(8); err != nil { // c, p
				return err
			}
			var v [4]int32
			for i := range v {
				if v[i], err = p.ReadInt32(); err != nil {
					return err
				}
			}
			minM, maxM, minN, maxN = v[0], v[1], v[2], v[3]
			break
		} else if op == cmdBOC1 {
			buf, err := p.ReadBytes(5)
			if err != nil {
				return err
			}
			maxM = int32(buf[2])
			minM = maxM - int32(buf[1])
			maxN = int32(buf[4])
			minN = maxN - int32(buf[3])
			break
		} else if err := skipSpecial(p, op); err != nil {
			return err
		}
	}

	w := int64(maxM) - int64(minM) + 1
	h := int64(maxN) - int64(minN) + 1
	if w < 0 || h < 0 || w*h > maxPixel {
		return p.Error("invalid character box")
	}
	bm := glyph.NewBitmap(int(w), int(h))

	m, n := minM, maxN
	black := false
	for {
		op, err := p.ReadUInt8()
		if err != nil {
			return err
		}
		switch {
		case op < cmdBOC: // paint_0 ... paint_63, paint1 ... paint3
			d := int32(op)
			if op >= cmdPaint1 {
				u, err := p.ReadUInt(int(op - cmdPaint1 + 1))
				if err != nil {
					return err
				}
				d = int32(u)
			}
			if black && d > 0 {
				row := int(maxN - n)
				if n < minN || n > maxN || m < minM || m+d-1 > maxM {
					return p.Error("%w", errOutside)
				}
				bm.FillRow(row, int(m-minM), int(m-minM+d))
			}
			m += d
			black = !black
		case op == cmdEOC:
			g.SetBitmap(bm, int(-minM), int(maxN))
			return nil
		case op == cmdSkip0:
			n--
			m = minM
			black = false
		case op > cmdSkip0 && op < cmdNewRow0: // skip1 ... skip3
			d, err := p.ReadUInt(int(op - cmdSkip1 + 1))
			if err != nil {
				return err
			}
			n -= int32(d) + 1
			m = minM
			black = false
		case op >= cmdNewRow0 && op < cmdXXX1:
			n--
			m = minM + int32(op-cmdNewRow0)
			black = true
		default:
			if err := skipSpecial(p, op); err != nil {
				return err
			}
		}
	}
}

// skipSpecial skips over specials and no_op commands.
func skipSpecial(p *parser.Parser, op uint8) error {
	switch {
	case op >= cmdXXX1 && op < cmdYYY:
		k, err := p.ReadUInt(int(op - cmdXXX1 + 1))
		if err != nil {
			return err
		}
		return p.Skip(int64(k))
	case op == cmdYYY:
		return p.Skip(4)
	case op == cmdNoOp:
		return nil
	}
	return p.Error("unexpected command %d", op)
}
