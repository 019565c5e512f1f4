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

package pk

import (
	"errors"
	"io"

	"seehuhn.de/go/dvi/glyph"
	"seehuhn.de/go/dvi/parser"
)

var (
	errTooManyPixels = errors.New("run lengths exceed the bitmap")
	errNestedRepeat  = errors.New("nested repeat count")
)

// runDecoder unpacks the run-length encoded raster of a PK character.
type runDecoder struct {
	data   []byte
	pos    int // in nybbles
	dynF   int
	repeat int
}

func (d *runDecoder) nybble() (int, error) {
	if d.pos/2 >= len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.data[d.pos/2]
	d.pos++
	if d.pos%2 == 1 {
		return int(b >> 4), nil
	}
	return int(b & 15), nil
}

// packed reads one packed number.  Repeat counts are stored in d.repeat.
func (d *runDecoder) packed(inRepeat bool) (int, error) {
	i, err := d.nybble()
	if err != nil {
		return 0, err
	}
	switch {
	case i == 0:
		zeros := 0
		j := 0
		for j == 0 {
			if j, err = d.nybble(); err != nil {
				return 0, err
			}
			zeros++
			if zeros > 8 {
				return 0, errTooManyPixels
			}
		}
		for ; zeros > 0; zeros-- {
			k, err := d.nybble()
			if err != nil {
				return 0, err
			}
			j = j*16 + k
		}
		return j - 15 + (13-d.dynF)*16 + d.dynF, nil
	case i <= d.dynF:
		return i, nil
	case i < 14:
		k, err := d.nybble()
		if err != nil {
			return 0, err
		}
		return (i-d.dynF-1)*16 + k + d.dynF + 1, nil
	}

	if inRepeat {
		return 0, errNestedRepeat
	}
	if i == 14 {
		d.repeat, err = d.packed(true)
		if err != nil {
			return 0, err
		}
	} else {
		d.repeat = 1
	}
	return d.packed(false)
}

func (d *runDecoder) unpack(bm *glyph.Bitmap, black bool) error {
	w, h := bm.Width, bm.Height
	row, col := 0, 0
	for row < h {
		count, err := d.packed(false)
		if err != nil {
			return d.wrap(err)
		}
		for count > 0 {
			if row >= h {
				return d.wrap(errTooManyPixels)
			}
			if count < w-col {
				if black {
					bm.FillRow(row, col, col+count)
				}
				col += count
				break
			}

			if black {
				bm.FillRow(row, col, w)
			}
			count -= w - col
			for k := 1; k <= d.repeat; k++ {
				if row+k >= h {
					return d.wrap(errTooManyPixels)
				}
				bm.CopyRow(row+k, row)
			}
			row += d.repeat + 1
			d.repeat = 0
			col = 0
		}
		black = !black
	}
	return nil
}

func (d *runDecoder) wrap(err error) error {
	return &parser.InvalidFontError{SubSystem: "pk", Pos: int64(d.pos / 2), Err: err}
}
