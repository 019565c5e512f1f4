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

package generator

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/dvi/font"
	"seehuhn.de/go/dvi/internal/makefont"
	"seehuhn.de/go/dvi/loader"
)

const tenPoint = 10 << 16

func newSpecimen(t *testing.T) *Specimen {
	t.Helper()
	dir := t.TempDir()
	pk := &makefont.PK{
		Comment:    "specimen",
		DesignSize: makefont.FixWord(10),
		HPPP:       makefont.Points(600 / 72.27),
		VPPP:       makefont.Points(600 / 72.27),
		Chars: []makefont.Char{{
			Code: 'A', TFMWidth: makefont.FixWord(0.5), Escapement: 5, X: 0, Y: 8,
			Rows: makefont.Pattern(`
########
########
########
########
########
########
########
########`),
		}},
		Packed: true,
	}
	err := os.WriteFile(filepath.Join(dir, "test.600pk"), pk.Bytes(), 0o644)
	if err != nil {
		t.Fatal(err)
	}

	pool := font.NewPool(loader.New(dir), nil)
	return NewSpecimen(pool, tenPoint)
}

func generate(t *testing.T, g Generator, req *Request) image.Image {
	t.Helper()
	done := make(chan *Request, 1)
	req.Done = func(r *Request) { done <- r }
	err := g.GeneratePixmap(req)
	if err != nil {
		t.Fatal(err)
	}
	res := <-done
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	return res.Pixmap
}

func hasInk(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 255 {
				return true
			}
		}
	}
	return false
}

func TestSpecimen(t *testing.T) {
	s := newSpecimen(t)
	if s.CanGeneratePixmap() {
		t.Error("ready before a document is loaded")
	}
	if err := s.GeneratePixmap(&Request{Width: 10, Height: 10}); err != ErrNoDocument {
		t.Errorf("wrong error %v", err)
	}

	pages, err := s.LoadDocument("test")
	if err != nil {
		t.Fatal(err)
	}
	want := []Page{
		{Number: 0, Width: 360, Height: 200},
		{Number: 1, Width: 360, Height: 200},
	}
	if d := cmp.Diff(want, pages); d != "" {
		t.Errorf("unexpected pages (-want +got):\n%s", d)
	}
	if !s.CanGeneratePixmap() {
		t.Error("not ready after loading")
	}

	img := generate(t, s, &Request{Page: 0, Width: 720, Height: 400})
	if b := img.Bounds(); b.Dx() != 720 || b.Dy() != 400 {
		t.Errorf("wrong image size %v", b)
	}
	if !hasInk(img) {
		t.Error("page 0 is blank")
	}

	img = generate(t, s, &Request{Page: 1, Width: 720, Height: 400})
	if hasInk(img) {
		t.Error("page 1 is not blank")
	}

	img = generate(t, s, &Request{Page: 0, Width: 300, Height: 500, Rotation: 1})
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 500 {
		t.Errorf("wrong size for rotated image %v", b)
	}

	info := s.DocumentInfo()
	if info["fontName"] != "test" || info["mimeType"] != "application/x-tex-pk" {
		t.Errorf("unexpected document info %v", info)
	}
}

func TestBusy(t *testing.T) {
	s := newSpecimen(t)
	_, err := s.LoadDocument("test")
	if err != nil {
		t.Fatal(err)
	}

	var ready bool
	var nestedErr, loadErr error
	req := &Request{
		Width:  10,
		Height: 10,
		Done: func(*Request) {
			ready = s.CanGeneratePixmap()
			nestedErr = s.GeneratePixmap(&Request{Width: 10, Height: 10})
			_, loadErr = s.LoadDocument("test")
		},
	}
	if err := s.GeneratePixmap(req); err != nil {
		t.Fatal(err)
	}
	if ready {
		t.Error("ready while busy")
	}
	if nestedErr != ErrBusy || loadErr != ErrBusy {
		t.Errorf("wrong errors while busy: %v, %v", nestedErr, loadErr)
	}
	if !s.CanGeneratePixmap() {
		t.Error("still busy after the request completed")
	}

	if err := s.GeneratePixmap(&Request{Page: 2, Width: 10, Height: 10}); err == nil {
		t.Error("invalid page accepted")
	}
	if err := s.GeneratePixmap(&Request{Width: 0, Height: 10}); err == nil {
		t.Error("invalid size accepted")
	}
}

func TestMissingFont(t *testing.T) {
	s := newSpecimen(t)
	_, err := s.LoadDocument("missing")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("wrong error %v", err)
	}
	if s.CanGeneratePixmap() {
		t.Error("ready without a document")
	}
}

func TestRotated(t *testing.T) {
	p := Page{Number: 3, Width: 100, Height: 200}
	got := []Page{p.Rotated(1), p.Rotated(2), p.Rotated(-1)}
	want := []Page{
		{Number: 3, Width: 200, Height: 100, Rotation: 1},
		{Number: 3, Width: 100, Height: 200, Rotation: 2},
		{Number: 3, Width: 200, Height: 100, Rotation: 3},
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("unexpected pages (-want +got):\n%s", d)
	}
}
