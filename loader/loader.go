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

// Package loader locates font files on disk.
//
// Virtual fonts are found by name alone, bitmap fonts by name and
// resolution.  Like kpathsea, the loader accepts bitmap fonts whose
// resolution differs from the requested one by at most [Tolerance].
package loader

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/exp/slices"
)

// A FontLoader finds font files, using explicit font map entries and a list
// of search directories.
//
// It is safe to use a FontLoader concurrently from multiple goroutines.
type FontLoader struct {
	sync.RWMutex
	lookup map[key]string
	dirs   []string
}

// key identifies a font map entry.  The resolution of virtual fonts is 0.
type key struct {
	name string
	dpi  int
}

// New creates a new font loader, which searches the given directories.
func New(dirs ...string) *FontLoader {
	return &FontLoader{
		lookup: make(map[key]string),
		dirs:   slices.Clone(dirs),
	}
}

// AddDir appends a directory to the search path.
func (l *FontLoader) AddDir(dir string) {
	l.Lock()
	l.dirs = append(l.dirs, dir)
	l.Unlock()
}

// AddFontMap reads a font map from r and adds it to the loader.  A font map
// consists of lines of the form
//
//	<name> <res> <path>
//
// where <name> is the TeX name of the font, <res> is either the resolution
// of a bitmap font in dots per inch or "vf" for a virtual font, and <path>
// is the path to the font file.  The fields must be separated by single
// spaces.  Lines starting with '#' or '%' are ignored.
//
// Any previous mapping for (<name>, <res>) is overwritten.
func (l *FontLoader) AddFontMap(r io.Reader) error {
	lines := bufio.NewScanner(r)
	for lines.Scan() {
		line := lines.Text()
		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' || line[0] == '%' {
			continue
		}

		parts := strings.SplitN(line, " ", 3)
		if len(parts) != 3 {
			return fmt.Errorf("invalid font map line: %q", line)
		}
		dpi := 0
		if parts[1] != "vf" {
			var err error
			dpi, err = strconv.Atoi(parts[1])
			if err != nil || dpi <= 0 {
				return fmt.Errorf("invalid resolution %q", parts[1])
			}
		}

		l.AddFont(parts[0], dpi, parts[2])
	}
	return lines.Err()
}

// AddFont adds a font to the loader.  Use dpi 0 for virtual fonts.
// Any previous mapping for the same name and resolution is overwritten.
func (l *FontLoader) AddFont(name string, dpi int, fname string) {
	key := key{name, dpi}
	l.Lock()
	l.lookup[key] = fname
	l.Unlock()
}

// Tolerance returns the largest accepted difference between the requested
// and the actual resolution of a bitmap font.
func Tolerance(dpi int) int {
	return dpi/500 + 1
}

// Resolve returns the file name for the font with the given name, to be used
// at the given resolution.  Virtual fonts take precedence over bitmap fonts.
// If no file is found, the returned error wraps [fs.ErrNotExist].
func (l *FontLoader) Resolve(name string, dpi int) (string, error) {
	candidates := resolutions(dpi)

	l.RLock()
	defer l.RUnlock()

	if fname, ok := l.lookup[key{name, 0}]; ok {
		return fname, nil
	}
	for _, res := range candidates {
		if fname, ok := l.lookup[key{name, res}]; ok {
			return fname, nil
		}
	}

	for _, dir := range l.dirs {
		fname := filepath.Join(dir, name+".vf")
		if isFile(fname) {
			return fname, nil
		}
	}
	for _, res := range candidates {
		s := strconv.Itoa(res)
		for _, dir := range l.dirs {
			for _, fname := range []string{
				filepath.Join(dir, name+"."+s+"pk"),
				filepath.Join(dir, name+"."+s+"gf"),
				filepath.Join(dir, "dpi"+s, name+".pk"),
			} {
				if isFile(fname) {
					return fname, nil
				}
			}
		}
	}

	return "", &fs.PathError{
		Op:   "resolve",
		Path: name + "." + strconv.Itoa(dpi),
		Err:  fs.ErrNotExist,
	}
}

// resolutions lists the acceptable resolutions for a bitmap font, closest
// first.
func resolutions(dpi int) []int {
	tol := Tolerance(dpi)
	var res []int
	for d := dpi - tol; d <= dpi+tol; d++ {
		if d > 0 {
			res = append(res, d)
		}
	}
	slices.SortStableFunc(res, func(a, b int) int {
		return abs(a-dpi) - abs(b-dpi)
	})
	return res
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isFile(fname string) bool {
	fi, err := os.Stat(fname)
	return err == nil && fi.Mode().IsRegular()
}
