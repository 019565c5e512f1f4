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

// Package generator turns documents into page images on request.
//
// A [Generator] handles one pixmap request at a time.  While a request is
// in progress, [Generator.CanGeneratePixmap] returns false and further
// requests fail with [ErrBusy].  When the image is ready, it is stored in
// the request and the request's Done callback is called.  A request which
// never completes leaves the generator busy.
package generator

import (
	"errors"
	"image"
)

// Page describes one page of a loaded document.
type Page struct {
	Number int

	// Width and Height give the page size in printer's points.
	Width  float64
	Height float64

	// Rotation is the number of clockwise quarter turns.
	Rotation int
}

// Rotated returns the page as seen after the given number of clockwise
// quarter turns.
func (p Page) Rotated(rotation int) Page {
	rotation = ((rotation % 4) + 4) % 4
	if rotation%2 == 1 {
		p.Width, p.Height = p.Height, p.Width
	}
	p.Rotation = rotation
	return p
}

// Request asks for an image of one page.
type Request struct {
	Page int

	// Width and Height give the size of the resulting image in pixels,
	// after rotation.
	Width  int
	Height int

	// Rotation is the number of clockwise quarter turns.
	Rotation int

	// Done, if set, is called once the request has completed.
	Done func(*Request)

	// Pixmap holds the page image after completion.
	Pixmap image.Image

	// Err is set if the image could not be generated.
	Err error
}

// Generator produces page images for a document.
type Generator interface {
	// LoadDocument opens a document and returns its pages.
	LoadDocument(name string) ([]Page, error)

	// CanGeneratePixmap reports whether a new request can be accepted.
	CanGeneratePixmap() bool

	// GeneratePixmap starts work on a request.  Implementations may
	// complete the request before returning, or later from a different
	// goroutine.
	GeneratePixmap(req *Request) error

	// DocumentInfo returns key/value information about the loaded
	// document.
	DocumentInfo() map[string]string
}

var (
	// ErrBusy is returned by GeneratePixmap while another request is in
	// progress.
	ErrBusy = errors.New("generator: request already in progress")

	// ErrNoDocument is returned by GeneratePixmap if no document is loaded.
	ErrNoDocument = errors.New("generator: no document loaded")
)
