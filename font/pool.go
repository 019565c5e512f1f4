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
	"cmp"
	"fmt"
	"log"
	"math"

	"golang.org/x/exp/slices"
)

// Resolver finds the file for a font.  This is implemented by
// [seehuhn.de/go/dvi/loader.FontLoader].
type Resolver interface {
	// Resolve returns the file name for the named font at the given
	// resolution.  If no file exists, the error wraps [fs.ErrNotExist].
	Resolve(name string, dpi int) (string, error)
}

// Pool holds the fonts used by a DVI document.
//
// A Pool is not safe for concurrent use.
type Pool struct {
	resolver   Resolver
	modeIdx    int
	displayDPI float64
	logger     *log.Logger

	fonts map[key]*Definition
}

type key struct {
	name       string
	checksum   uint32
	scaledSize int32
	milli      int64 // enlargement, in units of 1/1000
}

func makeKey(name string, checksum uint32, scaledSize int32, enlargement float64) key {
	return key{
		name:       name,
		checksum:   checksum,
		scaledSize: scaledSize,
		milli:      int64(math.Round(enlargement * 1000)),
	}
}

// NewPool creates an empty font pool.  If cfg is nil, default settings are
// used.
func NewPool(r Resolver, cfg *Config) *Pool {
	c := cfg.withDefaults()
	return &Pool{
		resolver:   r,
		modeIdx:    c.Mode,
		displayDPI: c.DisplayResolution,
		logger:     c.Logger,
		fonts:      make(map[key]*Definition),
	}
}

// GetFont returns the font with the given properties.  If the pool already
// holds a matching font, this font is marked as used and returned.
// Otherwise a new, unloaded font is added to the pool.  New fonts start out
// marked as used.
//
// The scaled size is given in DVI units.  Enlargements which agree to
// three decimal places are considered equal.
func (p *Pool) GetFont(name string, checksum uint32, scaledSize int32, enlargement float64) *Definition {
	k := makeKey(name, checksum, scaledSize, enlargement)
	if d, ok := p.fonts[k]; ok {
		d.MarkAsUsed()
		return d
	}

	d := &Definition{
		Name:        name,
		Checksum:    checksum,
		ScaledSize:  scaledSize,
		Enlargement: enlargement,
		pool:        p,
		flags:       InUse,
		displayDPI:  p.displayDPI,
	}
	p.fonts[k] = d
	return d
}

// Len returns the number of fonts in the pool.
func (p *Pool) Len() int {
	return len(p.fonts)
}

// Fonts returns all fonts in the pool, ordered by name, size and
// enlargement.
func (p *Pool) Fonts() []*Definition {
	res := make([]*Definition, 0, len(p.fonts))
	for _, d := range p.fonts {
		res = append(res, d)
	}
	slices.SortFunc(res, func(a, b *Definition) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		if c := cmp.Compare(a.ScaledSize, b.ScaledSize); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Enlargement, b.Enlargement); c != 0 {
			return c
		}
		return cmp.Compare(a.Checksum, b.Checksum)
	})
	return res
}

// MarkAllUnused clears the InUse flag of every font.  This starts a
// mark-and-sweep cycle: fonts used afterwards are marked again, and
// Sweep removes the rest.
func (p *Pool) MarkAllUnused() {
	for _, d := range p.fonts {
		d.flags &^= InUse
	}
}

// Sweep removes all fonts which are not marked as used, and returns the
// number of fonts removed.
func (p *Pool) Sweep() int {
	n := 0
	for k, d := range p.fonts {
		if d.flags&InUse != 0 {
			continue
		}
		d.Reset()
		delete(p.fonts, k)
		n++
	}
	return n
}

// SetDisplayResolution changes the screen resolution, in pixels per inch,
// for all fonts.  Cached glyph presentations are discarded.
func (p *Pool) SetDisplayResolution(dpi float64) {
	if dpi <= 0 || dpi == p.displayDPI {
		return
	}
	p.displayDPI = dpi
	for _, d := range p.fonts {
		d.SetDisplayResolution(dpi)
	}
}

// DisplayResolution returns the current screen resolution.
func (p *Pool) DisplayResolution() float64 {
	return p.displayDPI
}

// Mode returns the current METAFONT mode.
func (p *Pool) Mode() Mode {
	return p.mode()
}

// SetMode selects the METAFONT mode with index idx in Modes.  Since this
// changes which bitmap files are used, all fonts are reset.
func (p *Pool) SetMode(idx int) error {
	if idx < 0 || idx >= len(Modes) {
		return fmt.Errorf("invalid METAFONT mode %d", idx)
	}
	if idx == p.modeIdx {
		return nil
	}
	p.modeIdx = idx
	p.Reset()
	return nil
}

// Reset returns all fonts to the empty state, so that font files are
// looked up and read again when they are next used.
func (p *Pool) Reset() {
	for _, d := range p.fonts {
		d.Reset()
	}
}

// ResolvePath returns the file name for the named font at the given
// resolution.
func (p *Pool) ResolvePath(name string, dpi int) (string, error) {
	if p.resolver == nil {
		return "", &NotFoundError{Name: name, DPI: dpi}
	}
	fname, err := p.resolver.Resolve(name, dpi)
	if err != nil {
		return "", &NotFoundError{Name: name, DPI: dpi, Err: err}
	}
	return fname, nil
}

// resolve finds the file for d.  The lookup is only attempted once, until
// the font is reset.
func (p *Pool) resolve(d *Definition) (string, error) {
	dpi := p.dpiFor(d.Enlargement)
	if d.flags&NameResolved != 0 {
		if d.path == "" {
			return "", &NotFoundError{Name: d.Name, DPI: dpi}
		}
		return d.path, nil
	}

	d.flags |= NameResolved
	fname, err := p.ResolvePath(d.Name, dpi)
	if err != nil {
		return "", err
	}
	d.path = fname
	return fname, nil
}

func (p *Pool) mode() Mode {
	return Modes[p.modeIdx]
}

func (p *Pool) dpiFor(enlargement float64) int {
	return int(math.Round(enlargement * float64(p.mode().DPI)))
}

func (p *Pool) logf(format string, a ...any) {
	p.logger.Printf(format, a...)
}
