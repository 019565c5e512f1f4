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

package font

import (
	"fmt"
	"io"
	"os"

	"seehuhn.de/go/dvi/gf"
	"seehuhn.de/go/dvi/glyph"
	"seehuhn.de/go/dvi/pk"
	"seehuhn.de/go/dvi/vf"
)

// Flags describe the status of a font definition.
type Flags uint8

// These are the flags of a font definition.
const (
	// InUse marks fonts which were used since the last call to
	// Pool.MarkAllUnused.
	InUse Flags = 1 << iota

	// Loaded is set once the font file has been read.
	Loaded

	// Virtual is set for loaded virtual fonts.
	Virtual

	// NameResolved is set once a file name lookup was attempted, whether
	// or not it succeeded.
	NameResolved
)

// Selector determines how characters of a font are drawn.
type Selector uint8

// These are the possible values of Selector.
const (
	DrawNothing Selector = iota
	DrawNative
	DrawVirtual
)

func (s Selector) String() string {
	switch s {
	case DrawNothing:
		return "nothing"
	case DrawNative:
		return "native"
	case DrawVirtual:
		return "virtual"
	default:
		return fmt.Sprintf("Selector(%d)", uint8(s))
	}
}

// State is the loading state of a font definition.
type State uint8

// These are the states a font definition can be in.
const (
	StateEmpty State = iota
	StateResolving
	StateNative
	StateVirtual
	StateBroken
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateResolving:
		return "resolving"
	case StateNative:
		return "loaded native"
	case StateVirtual:
		return "loaded virtual"
	case StateBroken:
		return "broken"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Rasterizer gives access to the glyphs of a bitmap font.
// This is implemented by [pk.Font] and [gf.Font].
type Rasterizer interface {
	// Glyph returns the glyph for a character code.  The result is never
	// nil, missing characters are represented by empty glyphs.
	Glyph(code int) (*glyph.Glyph, error)

	// SetDisplayResolution sets the resolution of the screen, including
	// the enlargement of the font.
	SetDisplayResolution(dpi float64)

	// ShrinkFactor returns the factor by which glyphs are reduced for
	// display.
	ShrinkFactor() int

	// Checksum returns the checksum stored in the font file.
	Checksum() uint32
}

var (
	_ Rasterizer = (*pk.Font)(nil)
	_ Rasterizer = (*gf.Font)(nil)
)

// MaxChars is the number of character codes in a font.
const MaxChars = 256

// Definition is one font, as requested by a DVI file or by a virtual font.
//
// Definitions are created by [Pool.GetFont] and are owned by the pool.
// A definition remains valid until it is removed by [Pool.Sweep].
type Definition struct {
	Name        string
	Checksum    uint32
	ScaledSize  int32 // DVI units
	Enlargement float64

	pool       *Pool
	flags      Flags
	selector   Selector
	resolving  bool
	displayDPI float64

	path string
	file *os.File
	err  error

	raster Rasterizer

	index    *vf.Index
	subFonts map[int32]*Definition
	first    *Definition
}

// Flags returns the current status flags.
func (d *Definition) Flags() Flags {
	return d.flags
}

// Selector returns the way characters of this font are currently drawn.
func (d *Definition) Selector() Selector {
	return d.selector
}

// State returns the loading state of the font.
func (d *Definition) State() State {
	switch {
	case d.resolving:
		return StateResolving
	case d.err != nil:
		return StateBroken
	case d.flags&Loaded == 0:
		return StateEmpty
	case d.flags&Virtual != 0:
		return StateVirtual
	default:
		return StateNative
	}
}

// Err returns the reason why a font could not be loaded, or nil.
func (d *Definition) Err() error {
	return d.err
}

// Path returns the file name of the font, once it has been found.
func (d *Definition) Path() string {
	return d.path
}

// Rasterizer returns the glyph source of a loaded bitmap font, or nil.
func (d *Definition) Rasterizer() Rasterizer {
	return d.raster
}

// Index returns the contents of a loaded virtual font, or nil.
func (d *Definition) Index() *vf.Index {
	return d.index
}

// SubFont returns the font with local number num of a loaded virtual font.
// The result is nil if no such font is defined.
func (d *Definition) SubFont(num int32) *Definition {
	return d.subFonts[num]
}

// DisplayResolution returns the screen resolution the font was configured
// for, not including the enlargement.
func (d *Definition) DisplayResolution() float64 {
	return d.displayDPI
}

// ShrinkFactor returns the factor by which the glyphs of a loaded bitmap
// font are reduced for display.  For other fonts, 1 is returned.
func (d *Definition) ShrinkFactor() int {
	if d.raster == nil {
		return 1
	}
	return d.raster.ShrinkFactor()
}

// DPI returns the resolution at which the bitmap file for this font is
// looked up.
func (d *Definition) DPI() int {
	return d.pool.dpiFor(d.Enlargement)
}

// Load reads the font file.  This does nothing unless the font is in the
// empty state.  Fonts are loaded automatically when a character is drawn.
func (d *Definition) Load() {
	if d.State() != StateEmpty {
		return
	}

	d.resolving = true
	defer func() { d.resolving = false }()

	path, err := d.pool.resolve(d)
	if err != nil {
		d.fail(err)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		d.fail(&NotFoundError{Name: d.Name, DPI: d.DPI(), Err: err})
		return
	}
	d.file = file

	var tag [2]byte
	var magic uint16
	if _, err := io.ReadFull(file, tag[:]); err == nil {
		magic = uint16(tag[0])<<8 | uint16(tag[1])
	}

	switch magic {
	case pk.Magic, gf.Magic:
		d.closeFile()
		d.loadNative(path, magic)
	case vf.Magic:
		idx, err := vf.ReadIndex(file, d.ScaledSize)
		d.closeFile()
		if err != nil {
			d.fail(fmt.Errorf("font %s: %w", d.Name, err))
			return
		}
		d.loadVirtual(idx)
	default:
		d.closeFile()
		d.fail(&FormatError{Name: d.Name, Path: path, Magic: magic})
	}
}

func (d *Definition) loadNative(path string, magic uint16) {
	actual := d.Enlargement * d.displayDPI
	nominal := d.Enlargement * float64(d.pool.mode().DPI)

	var r Rasterizer
	if magic == pk.Magic {
		f, err := pk.Open(path, actual, nominal)
		if err != nil {
			d.fail(fmt.Errorf("font %s: %w", d.Name, err))
			return
		}
		r = f
	} else {
		f, err := gf.Open(path, actual, nominal)
		if err != nil {
			d.fail(fmt.Errorf("font %s: %w", d.Name, err))
			return
		}
		r = f
	}

	d.checkChecksum(r.Checksum())
	d.raster = r
	d.flags |= Loaded
	d.selector = DrawNative
}

func (d *Definition) loadVirtual(idx *vf.Index) {
	d.checkChecksum(idx.Checksum)
	if idx.Err != nil {
		d.pool.logf("font %s: %v", d.Name, idx.Err)
	}

	d.index = idx
	d.flags |= Loaded | Virtual
	d.selector = DrawVirtual

	d.subFonts = make(map[int32]*Definition, len(idx.Fonts))
	for i, def := range idx.Fonts {
		size := vf.Scale(def.Scale, d.ScaledSize)
		enlargement := d.Enlargement * float64(def.Scale) / (1 << 20)
		if def.Design > 0 && idx.DesignSize > 0 {
			enlargement *= float64(idx.DesignSize) / float64(def.Design)
		}

		sub := d.pool.GetFont(def.Name, def.Checksum, size, enlargement)
		d.subFonts[def.Num] = sub
		if i == 0 {
			d.first = sub
		}
	}
}

func (d *Definition) checkChecksum(got uint32) {
	if d.Checksum != 0 && got != 0 && d.Checksum != got {
		err := &ChecksumError{Name: d.Name, Want: d.Checksum, Got: got}
		d.pool.logf("%v", err)
	}
}

func (d *Definition) fail(err error) {
	d.err = err
	d.selector = DrawNothing
	d.pool.logf("%v", err)
}

func (d *Definition) closeFile() {
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
}

// Reset returns the font to the empty state.  The font file is looked up
// again and re-read the next time a character is drawn.  The identity of
// the font and its InUse flag are preserved.
func (d *Definition) Reset() {
	d.closeFile()
	d.flags &= InUse
	d.selector = DrawNothing
	d.path = ""
	d.err = nil
	d.raster = nil
	d.index = nil
	d.subFonts = nil
	d.first = nil
}

// SetDisplayResolution changes the screen resolution, in pixels per inch.
// The enlargement of the font is applied on top of this.
func (d *Definition) SetDisplayResolution(dpi float64) {
	d.displayDPI = dpi
	if d.raster != nil {
		d.raster.SetDisplayResolution(d.Enlargement * dpi)
	}
}

// MarkAsUsed sets the InUse flag of the font.  For loaded virtual fonts,
// all fonts referenced by the virtual font are marked as well.
func (d *Definition) MarkAsUsed() {
	if d.flags&InUse != 0 {
		return
	}
	d.flags |= InUse
	if d.flags&Virtual != 0 {
		for _, sub := range d.subFonts {
			sub.MarkAsUsed()
		}
	}
}
