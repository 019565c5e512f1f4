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

// Package render draws typeset DVI output onto images.
package render

import (
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"seehuhn.de/go/dvi/font"
)

// ScaledPointsPerInch is the number of DVI units in one inch.
const ScaledPointsPerInch = 72.27 * 65536

// Renderer composites glyphs and rules onto an RGBA image.
//
// The glyph presentations use the shrink factor of their font, so the
// resolution of the Renderer should agree with the display resolution
// of the font pool.
type Renderer struct {
	Image  *image.RGBA
	Raster *vector.Rasterizer
	Width  int
	Height int
	DPI    float64

	// OffsetX and OffsetY give the position of the DVI origin, in pixels
	// from the top left corner of the image.
	OffsetX float64
	OffsetY float64

	// RuleColor is used to fill rules.
	RuleColor color.Color
}

// New creates a renderer for a white image of the given size.  The DVI
// origin is placed one inch from the top and left edges, as in TeX.
func New(width, height int, dpi float64) *Renderer {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(img, img.Bounds(), image.White, image.Point{}, xdraw.Src)

	return &Renderer{
		Image:     img,
		Raster:    vector.NewRasterizer(width, height),
		Width:     width,
		Height:    height,
		DPI:       dpi,
		OffsetX:   dpi,
		OffsetY:   dpi,
		RuleColor: color.Black,
	}
}

// Draw renders a list of typeset operations.
func (r *Renderer) Draw(ops []font.Op) {
	for i := range ops {
		op := &ops[i]
		if op.IsRule() {
			r.rule(op)
		} else {
			r.glyph(op)
		}
	}
}

// Pixel converts a position in DVI units to device pixels.
func (r *Renderer) Pixel(h, v int32) (float64, float64) {
	scale := r.DPI / ScaledPointsPerInch
	return r.OffsetX + float64(h)*scale, r.OffsetY + float64(v)*scale
}

func (r *Renderer) glyph(op *font.Op) {
	if op.Glyph.IsEmpty() {
		return
	}
	factor := 1
	if op.Font != nil {
		factor = op.Font.ShrinkFactor()
	}
	p := op.Glyph.Presentation(factor)

	x, y := r.Pixel(op.H, op.V)
	dp := image.Pt(int(math.Round(x))-p.X, int(math.Round(y))-p.Y)
	xdraw.Copy(r.Image, dp, p.Image, p.Image.Bounds(), xdraw.Over, nil)
}

func (r *Renderer) rule(op *font.Op) {
	x0, y0 := r.Pixel(int32(op.Rule.LLx), int32(op.Rule.LLy))
	x1, y1 := r.Pixel(int32(op.Rule.URx), int32(op.Rule.URy))

	// Rules are at least one pixel wide.
	if x1-x0 < 1 {
		x1 = x0 + 1
	}
	if y1-y0 < 1 {
		y0 = y1 - 1
	}

	r.Raster.Reset(r.Width, r.Height)
	r.Raster.MoveTo(float32(x0), float32(y0))
	r.Raster.LineTo(float32(x1), float32(y0))
	r.Raster.LineTo(float32(x1), float32(y1))
	r.Raster.LineTo(float32(x0), float32(y1))
	r.Raster.ClosePath()
	r.Raster.Draw(r.Image, r.Image.Bounds(), image.NewUniform(r.RuleColor), image.Point{})
}
