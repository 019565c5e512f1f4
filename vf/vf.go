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

// Package vf reads the index of virtual font (VF) files.
//
// A virtual font defines each character by a short program of DVI commands,
// which typeset characters from other fonts.  The index consists of the
// font definitions, which list the fonts referenced by these programs, and
// one [Macro] for every character code.
package vf

import (
	"bytes"
	"io"

	"seehuhn.de/go/dvi/parser"
)

// Magic is the value of the first two bytes of a VF file.
const Magic = 247<<8 + 202

const (
	cmdLongChar = 242
	cmdFntDef1  = 243
	cmdFntDef4  = 246
	cmdPost     = 248
)

// FontDef is a font definition from a virtual font.
type FontDef struct {
	Num      int32  // local font number
	Checksum uint32 // checksum of the referenced font, or 0
	Scale    int32  // fix_word, relative to the design size of the virtual font
	Design   int32  // design size of the referenced font, fix_word in points
	Area     string
	Name     string
}

// Index is the content of a virtual font file.
type Index struct {
	Comment    string
	Checksum   uint32
	DesignSize int32 // fix_word, in points

	// Fonts lists the font definitions in the order of the file.  The first
	// font is the current font at the start of every character program.
	Fonts []FontDef

	Macros [256]Macro

	// Err records a problem which ended the parsing of the index early.
	// Fonts and characters read before the problem remain usable.
	Err error

	data []byte
}

// ReadIndex reads a virtual font from r.  The reader must be positioned
// directly after the two magic bytes.  Character widths are converted to
// DVI units for a font of the given scaled size.
func ReadIndex(r io.Reader, scaledSize int32) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := parser.New("vf", bytes.NewReader(data))
	idx := &Index{data: data}
	idx.Comment, err = p.ReadString()
	if err != nil {
		return nil, err
	}
	idx.Checksum, err = p.ReadUInt32()
	if err != nil {
		return nil, err
	}
	idx.DesignSize, err = p.ReadInt32()
	if err != nil {
		return nil, err
	}

	for {
		op, err := p.ReadUInt8()
		if err != nil {
			// a missing postamble is tolerated
			return idx, nil
		}

		switch {
		case op < cmdLongChar:
			err = idx.readShortChar(p, int(op), scaledSize)
		case op == cmdLongChar:
			err = idx.readLongChar(p, scaledSize)
		case op <= cmdFntDef4:
			err = idx.readFontDef(p, int(op-cmdFntDef1+1))
		default:
			// post, or trailing data
			return idx, nil
		}
		if err != nil {
			idx.Err = err
			return idx, nil
		}
	}
}

func (idx *Index) readShortChar(p *parser.Parser, pl int, scaledSize int32) error {
	cc, err := p.ReadUInt8()
	if err != nil {
		return err
	}
	tfm, err := p.ReadUInt(3)
	if err != nil {
		return err
	}
	buf, err := p.ReadBytes(pl)
	if err != nil {
		return err
	}
	idx.Macros[cc] = Macro{
		Commands: Own(buf),
		TFMWidth: int32(tfm),
		Advance:  Scale(int32(tfm), scaledSize),
		Defined:  true,
	}
	return nil
}

func (idx *Index) readLongChar(p *parser.Parser, scaledSize int32) error {
	pl, err := p.ReadUInt32()
	if err != nil {
		return err
	}
	cc, err := p.ReadUInt32()
	if err != nil {
		return err
	}
	tfm, err := p.ReadInt32()
	if err != nil {
		return err
	}
	pos := p.Pos()
	if int64(pl) > p.Size()-pos {
		return p.Error("character %d: packet of length %d exceeds the file", cc, pl)
	}
	if err := p.Skip(int64(pl)); err != nil {
		return err
	}
	if cc >= 256 {
		return nil
	}
	idx.Macros[cc] = Macro{
		Commands: Borrow(idx.data, int(pos), int(pos)+int(pl)),
		TFMWidth: tfm,
		Advance:  Scale(tfm, scaledSize),
		Defined:  true,
	}
	return nil
}

func (idx *Index) readFontDef(p *parser.Parser, k int) error {
	var def FontDef
	var err error
	if k == 4 {
		def.Num, err = p.ReadInt(4)
	} else {
		var u uint32
		u, err = p.ReadUInt(k)
		def.Num = int32(u)
	}
	if err != nil {
		return err
	}
	if def.Checksum, err = p.ReadUInt32(); err != nil {
		return err
	}
	if def.Scale, err = p.ReadInt32(); err != nil {
		return err
	}
	if def.Design, err = p.ReadInt32(); err != nil {
		return err
	}
	a, err := p.ReadUInt8()
	if err != nil {
		return err
	}
	l, err := p.ReadUInt8()
	if err != nil {
		return err
	}
	buf, err := p.ReadBytes(int(a) + int(l))
	if err != nil {
		return err
	}
	def.Area = string(buf[:a])
	def.Name = string(buf[a:])
	idx.Fonts = append(idx.Fonts, def)
	return nil
}

// Scale converts a fix_word, relative to a font's size, into DVI units for
// a font of the given scaled size.
func Scale(fix, scaledSize int32) int32 {
	return int32((int64(fix) * int64(scaledSize)) >> 20)
}
