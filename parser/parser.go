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

// Package parser reads the big-endian integers and byte strings used by the
// font file formats of the TeX ecosystem (PK, GF and VF files).
package parser

import (
	"fmt"
	"io"
)

const bufferSize = 1024

// Parser allows to read data from a TeX font file.
type Parser struct {
	r         ReadSeekSizer
	subSystem string

	buf       []byte
	from      int64
	pos, used int
	lastRead  int64
}

// ReadSeekSizer describes the requirements for a reader that can be used
// as the input to a Parser.  [bytes.Reader] and [strings.Reader] qualify.
type ReadSeekSizer interface {
	io.ReadSeeker
	Size() int64
}

// New allocates a new Parser, positioned at the start of r.
// The subSystem name is used in error messages.
func New(subSystem string, r ReadSeekSizer) *Parser {
	p := &Parser{
		r:         r,
		subSystem: subSystem,
	}
	err := p.SeekPos(0)
	if err != nil {
		panic(err)
	}
	return p
}

// Size returns the total size of the underlying input file.
func (p *Parser) Size() int64 {
	return p.r.Size()
}

// Pos returns the current reading position.
func (p *Parser) Pos() int64 {
	return p.from + int64(p.pos)
}

// SeekPos changes the reading position.
func (p *Parser) SeekPos(filePos int64) error {
	if filePos >= p.from && filePos <= p.from+int64(p.used) {
		p.pos = int(filePos - p.from)
	} else {
		_, err := p.r.Seek(filePos, io.SeekStart)
		if err != nil {
			return err
		}
		p.from = filePos
		p.pos = 0
		p.used = 0
	}

	return nil
}

// Skip advances the reading position by n bytes.
func (p *Parser) Skip(n int64) error {
	if n < 0 {
		return p.Error("negative skip %d", n)
	}
	target := p.Pos() + n
	if target > p.Size() {
		p.lastRead = p.Pos()
		return p.Error("skip past end of file: %w", io.ErrUnexpectedEOF)
	}
	return p.SeekPos(target)
}

// ReadUInt8 reads a single uint8 value from the current position.
func (p *Parser) ReadUInt8() (uint8, error) {
	buf, err := p.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUInt16 reads a single big-endian uint16 value.
func (p *Parser) ReadUInt16() (uint16, error) {
	buf, err := p.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ReadUInt32 reads a single big-endian uint32 value.
func (p *Parser) ReadUInt32() (uint32, error) {
	buf, err := p.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// ReadInt32 reads a single big-endian int32 value.
func (p *Parser) ReadInt32() (int32, error) {
	val, err := p.ReadUInt32()
	return int32(val), err
}

// ReadUInt reads an unsigned big-endian integer of n bytes, 1 <= n <= 4.
func (p *Parser) ReadUInt(n int) (uint32, error) {
	if n < 1 || n > 4 {
		panic("invalid integer size")
	}
	buf, err := p.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return Unsigned(buf), nil
}

// ReadInt reads a signed (two's complement) big-endian integer of n bytes,
// 1 <= n <= 4.
func (p *Parser) ReadInt(n int) (int32, error) {
	if n < 1 || n > 4 {
		panic("invalid integer size")
	}
	buf, err := p.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	return Signed(buf), nil
}

// ReadString reads a length byte followed by that many bytes of text.
func (p *Parser) ReadString() (string, error) {
	n, err := p.ReadUInt8()
	if err != nil {
		return "", err
	}
	buf, err := p.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadBytes reads n bytes from the file, starting at the current position.
// The returned slice points into the internal buffer, slice contents must not
// be modified by the caller and are only valid until the next call to one of
// the parser methods.
//
// The read size n must be <= 1024.
func (p *Parser) ReadBytes(n int) ([]byte, error) {
	p.lastRead = p.from + int64(p.pos)
	if n < 0 {
		n = 0
	} else if n > bufferSize {
		panic("buffer size exceeded")
	}

	for p.pos+n > p.used {
		if len(p.buf) == 0 {
			p.buf = make([]byte, bufferSize)
		}
		k := copy(p.buf, p.buf[p.pos:p.used])
		p.from += int64(p.pos)
		p.pos = 0
		p.used = k

		l, err := p.r.Read(p.buf[p.used:])
		if err == io.EOF {
			if l > 0 {
				err = nil
			} else {
				err = io.ErrUnexpectedEOF
			}
		}
		if err != nil {
			return nil, p.Error("read failed: %w", err)
		}
		p.used += l
	}

	res := p.buf[p.pos : p.pos+n]
	p.pos += n
	return res, nil
}

// Error returns an InvalidFontError which records the position of the
// most recent read.
func (p *Parser) Error(format string, a ...any) error {
	return &InvalidFontError{
		SubSystem: p.subSystem,
		Pos:       p.lastRead,
		Err:       fmt.Errorf(format, a...),
	}
}

// Unsigned decodes a big-endian unsigned integer of up to four bytes.
func Unsigned(buf []byte) uint32 {
	var res uint32
	for _, b := range buf {
		res = res<<8 | uint32(b)
	}
	return res
}

// Signed decodes a big-endian two's complement integer of up to four bytes.
func Signed(buf []byte) int32 {
	if len(buf) == 0 {
		return 0
	}
	res := int32(int8(buf[0]))
	for _, b := range buf[1:] {
		res = res<<8 | int32(b)
	}
	return res
}
