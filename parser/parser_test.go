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

package parser

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestPos(t *testing.T) {
	buf := bytes.NewReader([]byte{'0', '1', '2', '3', '4', '5', '6', '7'})
	p := New("test", buf)

	pos := p.Pos()
	if pos != 0 {
		t.Errorf("wrong position, expected 0 but got %d", pos)
	}

	_, err := p.ReadUInt16()
	if err != nil {
		t.Fatal(err)
	}

	pos = p.Pos()
	if pos != 2 {
		t.Errorf("wrong position, expected 2 but got %d", pos)
	}

	err = p.SeekPos(5)
	if err != nil {
		t.Fatal(err)
	}
	if p.Pos() != 5 {
		t.Errorf("wrong position, expected 5 but got %d", p.Pos())
	}
}

func TestIntegers(t *testing.T) {
	data := []byte{
		0xF7, 0x59, // 63321
		0xFF, 0xFF, 0xFE, // -2 as int24
		0x01, 0x02, 0x03, // 66051 as uint24
		0x80, 0x00, 0x00, 0x00, // math.MinInt32
	}
	p := New("test", bytes.NewReader(data))

	magic, err := p.ReadUInt16()
	if err != nil {
		t.Fatal(err)
	}
	if magic != 247<<8+89 {
		t.Errorf("wrong magic %d", magic)
	}

	i, err := p.ReadInt(3)
	if err != nil {
		t.Fatal(err)
	}
	if i != -2 {
		t.Errorf("expected -2, got %d", i)
	}

	u, err := p.ReadUInt(3)
	if err != nil {
		t.Fatal(err)
	}
	if u != 0x010203 {
		t.Errorf("expected %d, got %d", 0x010203, u)
	}

	j, err := p.ReadInt32()
	if err != nil {
		t.Fatal(err)
	}
	if j != -1<<31 {
		t.Errorf("expected %d, got %d", -1<<31, j)
	}
}

func TestShortRead(t *testing.T) {
	p := New("pk", bytes.NewReader([]byte{1, 2, 3}))
	_, err := p.ReadUInt32()
	if err == nil {
		t.Fatal("missing error")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("wrong error %v", err)
	}
	var invalid *InvalidFontError
	if !errors.As(err, &invalid) || invalid.SubSystem != "pk" {
		t.Errorf("expected InvalidFontError for pk, got %v", err)
	}
}

func TestString(t *testing.T) {
	p := New("vf", bytes.NewReader([]byte{5, 'c', 'm', 'r', '1', '0', 99}))
	s, err := p.ReadString()
	if err != nil {
		t.Fatal(err)
	}
	if s != "cmr10" {
		t.Errorf("wrong string %q", s)
	}
	if err := p.Skip(1); err != nil {
		t.Fatal(err)
	}
	if err := p.Skip(1); err == nil {
		t.Error("skip past the end succeeded")
	}
}
