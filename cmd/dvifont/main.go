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

package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"seehuhn.de/go/dvi/font"
	"seehuhn.de/go/dvi/generator"
	"seehuhn.de/go/dvi/glyph"
	"seehuhn.de/go/dvi/loader"
)

type dirList []string

func (d *dirList) String() string {
	return strings.Join(*d, ",")
}

func (d *dirList) Set(s string) error {
	*d = append(*d, s)
	return nil
}

func main() {
	var dirs dirList
	flag.Var(&dirs, "dir", "directory to search for font files (may be repeated)")
	fontMap := flag.String("map", "", "font map file with lines \"name dpi|vf path\"")
	modeName := flag.String("mode", "ljfour", "METAFONT mode (cx, ljfour or lexmarks)")
	size := flag.Float64("size", 10, "font size in points")
	dpi := flag.Float64("dpi", font.DefaultDisplayResolution, "display resolution for glyph dumps")
	output := flag.String("o", "", "write a specimen page to this PNG file")
	pageNum := flag.Int("page", 1, "specimen page (1 or 2)")
	width := flag.Int("width", 800, "width of the specimen image in pixels")
	rotate := flag.Int("rotate", 0, "clockwise quarter turns of the specimen image")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("dvifont: ")

	if flag.NArg() < 1 || flag.NArg() > 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] fontname [characters]\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	fontName := flag.Arg(0)

	mode := -1
	for i, m := range font.Modes {
		if m.Name == *modeName {
			mode = i
		}
	}
	if mode < 0 {
		log.Fatalf("unknown mode %q", *modeName)
	}

	if len(dirs) == 0 {
		dirs = dirList{"."}
	}
	l := loader.New(dirs...)
	if *fontMap != "" {
		f, err := os.Open(*fontMap)
		if err != nil {
			log.Fatal(err)
		}
		err = l.AddFontMap(f)
		f.Close()
		if err != nil {
			log.Fatal(err)
		}
	}

	pool := font.NewPool(l, &font.Config{
		Mode:              mode,
		DisplayResolution: *dpi,
		Logger:            log.Default(),
	})
	scaledSize := int32(*size * 65536)

	if *output != "" {
		err := writeSpecimen(pool, scaledSize, fontName, *output, *pageNum-1, *width, *rotate)
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	chars := "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	if flag.NArg() > 1 {
		chars = flag.Arg(1)
	}
	d := pool.GetFont(fontName, 0, scaledSize, 1)
	d.Load()
	if err := d.Err(); err != nil {
		log.Fatal(err)
	}

	columns := 80
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			columns = w
		}
	}

	var pics []*glyph.Presentation
	for _, c := range chars {
		if c > 255 {
			log.Printf("skipping character %q", c)
			continue
		}
		ops, _ := d.Select(int(c), 0, 0, nil)
		for _, op := range ops {
			if op.IsRule() {
				continue
			}
			pics = append(pics, op.Glyph.Presentation(op.Font.ShrinkFactor()))
		}
	}
	dump(os.Stdout, pics, columns)
}

func writeSpecimen(pool *font.Pool, size int32, name, fname string, page, width, rotation int) error {
	g := generator.NewSpecimen(pool, size)
	pages, err := g.LoadDocument(name)
	if err != nil {
		return err
	}
	if page < 0 || page >= len(pages) {
		return fmt.Errorf("page %d out of range 1-%d", page+1, len(pages))
	}

	p := pages[page].Rotated(rotation)
	height := int(float64(width) * p.Height / p.Width)

	done := make(chan *generator.Request, 1)
	err = g.GeneratePixmap(&generator.Request{
		Page:     page,
		Width:    width,
		Height:   max(height, 1),
		Rotation: rotation,
		Done:     func(r *generator.Request) { done <- r },
	})
	if err != nil {
		return err
	}
	req := <-done
	if req.Err != nil {
		return req.Err
	}

	out, err := os.Create(fname)
	if err != nil {
		return err
	}
	err = png.Encode(out, req.Pixmap)
	if err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
