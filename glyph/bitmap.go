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

package glyph

import "image"

// Bitmap is a monochrome raster image.  Rows are stored top to bottom, each
// row occupies Stride bytes and pixels are packed most significant bit
// first.  A set bit denotes a black pixel.
type Bitmap struct {
	Width, Height int
	Stride        int
	Bits          []byte
}

// NewBitmap allocates a white bitmap of the given size.
func NewBitmap(width, height int) Bitmap {
	if width < 0 || height < 0 {
		panic("negative bitmap size")
	}
	stride := (width + 7) / 8
	return Bitmap{
		Width:  width,
		Height: height,
		Stride: stride,
		Bits:   make([]byte, stride*height),
	}
}

// IsEmpty reports whether the bitmap has no pixels.
func (b *Bitmap) IsEmpty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Set paints the pixel at (x, y) black.
func (b *Bitmap) Set(x, y int) {
	b.Bits[y*b.Stride+x/8] |= 0x80 >> (x % 8)
}

// Get reports whether the pixel at (x, y) is black.
// Pixels outside the bitmap are white.
func (b *Bitmap) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Bits[y*b.Stride+x/8]&(0x80>>(x%8)) != 0
}

// FillRow paints the pixels x0, ..., x1-1 of row y black.
func (b *Bitmap) FillRow(y, x0, x1 int) {
	for x := x0; x < x1; x++ {
		b.Set(x, y)
	}
}

// CopyRow copies row src onto row dst.
func (b *Bitmap) CopyRow(dst, src int) {
	copy(b.Bits[dst*b.Stride:(dst+1)*b.Stride], b.Bits[src*b.Stride:(src+1)*b.Stride])
}

// Gray converts the bitmap to a grayscale image with black ink on a white
// background.
func (b *Bitmap) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Width]
		for x := range row {
			if b.Get(x, y) {
				row[x] = 0
			} else {
				row[x] = 0xFF
			}
		}
	}
	return img
}
