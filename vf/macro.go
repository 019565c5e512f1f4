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

package vf

// Commands is a byte range of DVI commands.  The range either borrows a
// slice of the buffer holding a whole virtual font file, or owns a private
// copy of the bytes.
type Commands struct {
	data  []byte
	owned bool
}

// Borrow returns a Commands value which refers to buf[pos:end].
// The caller must keep buf unmodified while the value is in use.
func Borrow(buf []byte, pos, end int) Commands {
	return Commands{data: buf[pos:end:end]}
}

// Own returns a Commands value holding a copy of b.
func Own(b []byte) Commands {
	data := make([]byte, len(b))
	copy(data, b)
	return Commands{data: data, owned: true}
}

// Bytes returns the DVI commands.  The slice must not be modified.
func (c Commands) Bytes() []byte {
	return c.data
}

// Len returns the number of bytes in the range.
func (c Commands) Len() int {
	return len(c.data)
}

// IsOwned reports whether the bytes are a private copy.
func (c Commands) IsOwned() bool {
	return c.owned
}

// Macro is the program for one character of a virtual font.
type Macro struct {
	Commands

	// TFMWidth is the advance width as a fix_word, relative to the design
	// size of the virtual font.
	TFMWidth int32

	// Advance is the advance width in DVI units, for the scaled size the
	// font was read at.
	Advance int32

	// Defined is false for character codes without a packet.
	Defined bool
}
