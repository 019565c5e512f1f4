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
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"seehuhn.de/go/dvi/font"
	"seehuhn.de/go/dvi/render"
)

// Layout of a specimen page, in cells of twice the font size.
const (
	specimenColumns = 16
	specimenRows    = 8
	charsPerPage    = specimenColumns * specimenRows
)

// Specimen presents a single font as a two page document, showing the
// character codes 0 to 127 on the first page and 128 to 255 on the second.
type Specimen struct {
	pool *font.Pool
	size int32

	mu    sync.Mutex
	busy  bool
	font  *font.Definition
	pages []Page
}

var _ Generator = (*Specimen)(nil)

// NewSpecimen creates a generator which shows fonts from the given pool at
// the given scaled size, in DVI units.
func NewSpecimen(pool *font.Pool, size int32) *Specimen {
	return &Specimen{
		pool: pool,
		size: size,
	}
}

// LoadDocument loads the named font.
func (s *Specimen) LoadDocument(name string) ([]Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return nil, ErrBusy
	}

	s.font = nil
	s.pages = nil

	d := s.pool.GetFont(name, 0, s.size, 1)
	d.Load()
	if err := d.Err(); err != nil {
		return nil, err
	}

	cell := s.cellSize()
	width := float64((specimenColumns+2)*cell) / 65536
	height := float64((specimenRows+2)*cell) / 65536
	for i := 0; i < font.MaxChars/charsPerPage; i++ {
		s.pages = append(s.pages, Page{Number: i, Width: width, Height: height})
	}
	s.font = d

	res := make([]Page, len(s.pages))
	copy(res, s.pages)
	return res, nil
}

// CanGeneratePixmap reports whether a font is loaded and no request is in
// progress.
func (s *Specimen) CanGeneratePixmap() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.font != nil && !s.busy
}

// GeneratePixmap renders a specimen page.  The request is completed,
// and its Done callback called, before GeneratePixmap returns.
// The generator stays busy until Done has returned.
func (s *Specimen) GeneratePixmap(req *Request) error {
	s.mu.Lock()
	if err := s.check(req); err != nil {
		s.mu.Unlock()
		return err
	}
	s.busy = true
	req.Pixmap = s.renderPage(req)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()
	if req.Done != nil {
		req.Done(req)
	}
	return nil
}

func (s *Specimen) check(req *Request) error {
	if s.font == nil {
		return ErrNoDocument
	}
	if s.busy {
		return ErrBusy
	}
	if req.Page < 0 || req.Page >= len(s.pages) {
		return fmt.Errorf("generator: page %d out of range", req.Page)
	}
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("generator: invalid image size %dx%d", req.Width, req.Height)
	}
	return nil
}

// DocumentInfo describes the loaded font.
func (s *Specimen) DocumentInfo() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := map[string]string{}
	if s.font == nil {
		return info
	}
	info["fontName"] = s.font.Name
	info["file"] = s.font.Path()
	info["dpi"] = strconv.Itoa(s.font.DPI())
	switch s.font.State() {
	case font.StateVirtual:
		info["mimeType"] = "application/x-tex-vf"
	case font.StateNative:
		ext := filepath.Ext(s.font.Path())
		switch {
		case strings.HasSuffix(ext, "pk"):
			info["mimeType"] = "application/x-tex-pk"
		case strings.HasSuffix(ext, "gf"):
			info["mimeType"] = "application/x-tex-gf"
		}
	}
	return info
}

func (s *Specimen) cellSize() int32 {
	return 2 * s.size
}

// renderPage draws a page.  The caller must hold s.mu.
func (s *Specimen) renderPage(req *Request) image.Image {
	page := s.pages[req.Page]

	width, height := req.Width, req.Height
	if req.Rotation%2 != 0 {
		width, height = height, width
	}

	dpi := float64(width) / (page.Width / 72.27)
	pixHeight := max(1, int(math.Round(page.Height/72.27*dpi)))
	s.pool.SetDisplayResolution(dpi)

	s.pool.MarkAllUnused()
	var ops []font.Op
	cell := s.cellSize()
	for i := 0; i < charsPerPage; i++ {
		code := req.Page*charsPerPage + i
		col := int32(i % specimenColumns)
		row := int32(i / specimenColumns)
		h := (1+col)*cell + cell/4
		v := (1+row)*cell + 3*cell/4
		ops, _ = s.font.Select(code, h, v, ops)
	}
	s.pool.Sweep()

	r := render.New(width, pixHeight, dpi)
	r.OffsetX, r.OffsetY = 0, 0
	r.Draw(ops)

	var img image.Image = r.Image
	if pixHeight != height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), r.Image, r.Image.Bounds(), xdraw.Src, nil)
		img = dst
	}

	switch ((req.Rotation % 4) + 4) % 4 {
	case 1:
		img = imaging.Rotate270(img)
	case 2:
		img = imaging.Rotate180(img)
	case 3:
		img = imaging.Rotate90(img)
	}
	return img
}
