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

// Package glyph represents the rasterized characters of bitmap fonts.
//
// A [Glyph] holds the bitmap at the native resolution of the font file,
// together with the registration ("hot") point of the character.  For
// display, [Glyph.Presentation] computes a smaller image with a binary alpha
// mask.  The result is cached until the shrink factor changes.
package glyph

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"seehuhn.de/go/geom/rect"
)

// Glyph is one character of a bitmap font.
type Glyph struct {
	Bitmap

	// X and Y give the position of the reference point, measured in native
	// pixels from the top left corner of the bitmap.  X grows to the right,
	// Y grows downwards.  Both values may lie outside the bitmap.
	X, Y int

	// TFMWidth is the advance width of the character, as a fix_word in
	// units of the design size (2^20 = one design size).
	TFMWidth int32

	// Escapement is the horizontal advance in native pixels.
	Escapement int

	shrunk *Presentation
}

// Presentation is a scaled-down copy of a glyph, ready for display.
type Presentation struct {
	// Image has pure white, fully transparent background pixels.  All other
	// pixels are fully opaque.
	Image *image.NRGBA

	// X and Y locate the reference point within Image.
	X, Y int

	// Factor is the shrink factor the presentation was computed for.
	Factor int
}

// IsEmpty reports whether the glyph has no visible pixels.
func (g *Glyph) IsEmpty() bool {
	return g == nil || g.Bitmap.IsEmpty()
}

// SetBitmap replaces the native bitmap and the reference point.
// Any cached presentation is discarded.
func (g *Glyph) SetBitmap(b Bitmap, x, y int) {
	g.Bitmap = b
	g.X = x
	g.Y = y
	g.ClearPresentation()
}

// ClearPresentation discards the cached presentation, if any.
func (g *Glyph) ClearPresentation() {
	g.shrunk = nil
}

// Cached returns the cached presentation, or nil if none is available.
func (g *Glyph) Cached() *Presentation {
	return g.shrunk
}

// Extent returns the area covered by the bitmap, in native pixels relative
// to the reference point.  The y-axis points upwards.
func (g *Glyph) Extent() rect.Rect {
	return rect.Rect{
		LLx: float64(-g.X),
		LLy: float64(g.Y - g.Height),
		URx: float64(g.Width - g.X),
		URy: float64(g.Y),
	}
}

// Presentation returns the glyph shrunk by the given factor.
//
// The result is cached.  Calling Presentation again with the same factor
// returns the same value, calling it with a different factor replaces the
// cached presentation.
func (g *Glyph) Presentation(factor int) *Presentation {
	if factor < 1 {
		factor = 1
	}
	if g.shrunk != nil && g.shrunk.Factor == factor {
		return g.shrunk
	}
	g.shrunk = g.shrink(factor)
	return g.shrunk
}

func (g *Glyph) shrink(factor int) *Presentation {
	// Shrink relative to the reference point instead of the top left
	// corner, so that the reference point stays put for every factor.
	x2, _ := Split(g.X, factor)
	y2, _ := Split(g.Y, factor)

	height := y2 + roundUp(g.Height-g.Y, factor)
	width := x2 + (g.Width-g.X)/factor + 1

	res := &Presentation{
		X:      x2,
		Y:      y2,
		Factor: factor,
	}
	if g.Bitmap.IsEmpty() || width <= 0 || height <= 0 {
		res.Image = image.NewNRGBA(image.Rectangle{})
		return res
	}

	// The working canvas is slightly too large.  After the smooth scaling
	// this gives lighter characters, which are easier to read.
	pad := factor / 3
	canvas := imaging.New(g.Width+2*pad, g.Height+2*pad, color.White)
	canvas = imaging.Paste(canvas, g.Bitmap.Gray(), image.Pt(pad, pad))

	small := imaging.Resize(canvas, width, height, imaging.Box)
	binaryAlpha(small)
	res.Image = small
	return res
}

// binaryAlpha makes pure white pixels transparent and every other pixel
// opaque.
func binaryAlpha(img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[(y-b.Min.Y)*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			px := row[4*x : 4*x+4]
			if px[0] == 0xFF && px[1] == 0xFF && px[2] == 0xFF {
				px[3] = 0
			} else {
				px[3] = 0xFF
			}
		}
	}
}

// Split divides a native pixel coordinate into a shrunk coordinate and a
// remainder in the range 1, ..., factor.  The original coordinate can be
// recovered using [Join].
func Split(coord, factor int) (shrunk, rem int) {
	shrunk = floorDiv(coord, factor)
	rem = coord - shrunk*factor
	if rem <= 0 {
		rem += factor
	} else {
		shrunk++
	}
	return shrunk, rem
}

// Join is the inverse of [Split].
func Join(shrunk, rem, factor int) int {
	return (shrunk-1)*factor + rem
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// roundUp divides with the truncating semantics of Go's integer division,
// after adding b-1.  For negative a this does not round towards +inf.
func roundUp(a, b int) int {
	return (a + b - 1) / b
}
