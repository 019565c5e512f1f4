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
	"bytes"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/dvi/glyph"
	"seehuhn.de/go/dvi/parser"
	"seehuhn.de/go/dvi/vf"
)

// Op is one item of typeset output: either a glyph of a bitmap font, or a
// rule.
type Op struct {
	// H and V give the reference point in DVI units.  V grows downwards.
	H, V int32

	// Font is the bitmap font the glyph belongs to, or nil for rules.
	Font  *Definition
	Code  int
	Glyph *glyph.Glyph

	// Rule is the area covered by a rule, in DVI units with V growing
	// downwards.
	Rule rect.Rect
}

// IsRule reports whether the operation draws a rule.
func (op *Op) IsRule() bool {
	return op.Glyph == nil
}

// maxDepth limits the nesting of virtual font characters.
const maxDepth = 16

// Select typesets character code at position (h, v), given in DVI units.
// The font is marked as used, and loaded if necessary.  The resulting
// glyphs and rules are appended to ops.  The second return value is the
// advance width of the character in DVI units.
//
// Missing characters and fonts which cannot be loaded produce no output.
func (d *Definition) Select(code int, h, v int32, ops []Op) ([]Op, int32) {
	ops, advance, err := d.selectChar(code, h, v, ops, 0)
	if err != nil {
		d.pool.logf("font %s: character %d: %v", d.Name, code, err)
	}
	return ops, advance
}

func (d *Definition) selectChar(code int, h, v int32, ops []Op, depth int) ([]Op, int32, error) {
	d.MarkAsUsed()
	d.Load()
	if code < 0 || code >= MaxChars {
		return ops, 0, nil
	}

	switch d.selector {
	case DrawNative:
		g, err := d.raster.Glyph(code)
		if err != nil {
			d.pool.logf("font %s: %v", d.Name, err)
		}
		if !g.IsEmpty() {
			ops = append(ops, Op{H: h, V: v, Font: d, Code: code, Glyph: g})
		}
		return ops, vf.Scale(g.TFMWidth, d.ScaledSize), nil

	case DrawVirtual:
		m := &d.index.Macros[code]
		if !m.Defined {
			return ops, 0, nil
		}
		if depth >= maxDepth {
			return ops, m.Advance, ErrRecursion
		}
		ops, err := d.run(m, h, v, ops, depth+1)
		return ops, m.Advance, err

	default:
		return ops, 0, nil
	}
}

// DVI commands which may occur in virtual font characters.
const (
	cmdSet1    = 128
	cmdSetRule = 132
	cmdPut1    = 133
	cmdPutRule = 137
	cmdNop     = 138
	cmdPush    = 141
	cmdPop     = 142
	cmdRight1  = 143
	cmdW0      = 147
	cmdW1      = 148
	cmdX0      = 152
	cmdX1      = 153
	cmdDown1   = 157
	cmdY0      = 161
	cmdY1      = 162
	cmdZ0      = 166
	cmdZ1      = 167
	cmdFntNum0 = 171
	cmdFnt1    = 235
	cmdXXX1    = 239
	cmdXXX4    = 242
)

type registers struct {
	h, v, w, x, y, z int32
}

// run executes the DVI commands of a virtual font character.
// Dimensions are fix_words relative to the size of the virtual font.
func (d *Definition) run(m *vf.Macro, h, v int32, ops []Op, depth int) ([]Op, error) {
	p := parser.New("vf", bytes.NewReader(m.Bytes()))
	scale := func(x int32) int32 {
		return vf.Scale(x, d.ScaledSize)
	}

	r := registers{h: h, v: v}
	var stack []registers
	cur := d.first

	selectFont := func(k int32) error {
		cur = d.subFonts[k]
		if cur == nil {
			return p.Error("undefined font %d", k)
		}
		return nil
	}
	setChar := func(code int, move bool) error {
		if cur == nil {
			return p.Error("character %d drawn before a font was selected", code)
		}
		var advance int32
		var err error
		ops, advance, err = cur.selectChar(code, r.h, r.v, ops, depth)
		if move {
			r.h += advance
		}
		return err
	}
	setRule := func(move bool) error {
		a, err := p.ReadInt32()
		if err != nil {
			return err
		}
		b, err := p.ReadInt32()
		if err != nil {
			return err
		}
		height, width := scale(a), scale(b)
		if height > 0 && width > 0 {
			ops = append(ops, Op{
				H: r.h,
				V: r.v,
				Rule: rect.Rect{
					LLx: float64(r.h),
					LLy: float64(r.v - height),
					URx: float64(r.h + width),
					URy: float64(r.v),
				},
			})
		}
		if move {
			r.h += width
		}
		return nil
	}
	readMove := func(op, base uint8) (int32, error) {
		x, err := p.ReadInt(int(op-base) + 1)
		return scale(x), err
	}

	for p.Pos() < p.Size() {
		op, err := p.ReadUInt8()
		if err != nil {
			return ops, err
		}

		switch {
		case op < cmdSet1:
			err = setChar(int(op), true)
		case op < cmdSetRule:
			var c uint32
			c, err = p.ReadUInt(int(op-cmdSet1) + 1)
			if err == nil {
				err = setChar(int(c), true)
			}
		case op == cmdSetRule:
			err = setRule(true)
		case op < cmdPutRule:
			var c uint32
			c, err = p.ReadUInt(int(op-cmdPut1) + 1)
			if err == nil {
				err = setChar(int(c), false)
			}
		case op == cmdPutRule:
			err = setRule(false)
		case op == cmdNop:
			// pass
		case op == cmdPush:
			stack = append(stack, r)
		case op == cmdPop:
			if len(stack) == 0 {
				return ops, p.Error("pop without push")
			}
			r = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case op < cmdW0:
			var dx int32
			dx, err = readMove(op, cmdRight1)
			r.h += dx
		case op == cmdW0:
			r.h += r.w
		case op < cmdX0:
			r.w, err = readMove(op, cmdW1)
			r.h += r.w
		case op == cmdX0:
			r.h += r.x
		case op < cmdDown1:
			r.x, err = readMove(op, cmdX1)
			r.h += r.x
		case op < cmdY0:
			var dy int32
			dy, err = readMove(op, cmdDown1)
			r.v += dy
		case op == cmdY0:
			r.v += r.y
		case op < cmdZ0:
			r.y, err = readMove(op, cmdY1)
			r.v += r.y
		case op == cmdZ0:
			r.v += r.z
		case op < cmdFntNum0:
			r.z, err = readMove(op, cmdZ1)
			r.v += r.z
		case op < cmdFnt1:
			err = selectFont(int32(op - cmdFntNum0))
		case op < cmdXXX1:
			// only fnt4 takes a signed argument
			var k int32
			if n := int(op-cmdFnt1) + 1; n == 4 {
				k, err = p.ReadInt(4)
			} else {
				var u uint32
				u, err = p.ReadUInt(n)
				k = int32(u)
			}
			if err == nil {
				err = selectFont(k)
			}
		case op <= cmdXXX4:
			var n uint32
			n, err = p.ReadUInt(int(op-cmdXXX1) + 1)
			if err == nil {
				err = p.Skip(int64(n))
			}
		default:
			return ops, p.Error("unexpected command %d", op)
		}
		if err != nil {
			return ops, err
		}
	}
	return ops, nil
}
