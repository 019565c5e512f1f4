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
	"io"
	"log"
)

// Mode is a METAFONT mode, which determines the resolution of the bitmap
// fonts.
type Mode struct {
	Name string
	DPI  int
}

// Modes lists the supported METAFONT modes.
var Modes = []Mode{
	{Name: "cx", DPI: 300},
	{Name: "ljfour", DPI: 600},
	{Name: "lexmarks", DPI: 1200},
}

// DefaultMode is the index of the mode used if no mode is configured.
const DefaultMode = 1

// DefaultDisplayResolution is the screen resolution, in pixels per inch,
// used if no resolution is configured.
const DefaultDisplayResolution = 100

// Config holds the settings for a font pool.
type Config struct {
	// Mode is an index into Modes.
	Mode int

	// DisplayResolution is the resolution of the screen in pixels per inch,
	// before any enlargement is applied.
	DisplayResolution float64

	// Logger receives diagnostics about fonts which cannot be used as
	// intended.  If this is nil, diagnostics are discarded.
	Logger *log.Logger
}

func (cfg *Config) withDefaults() Config {
	res := Config{
		Mode:              DefaultMode,
		DisplayResolution: DefaultDisplayResolution,
	}
	if cfg != nil {
		if cfg.Mode >= 0 && cfg.Mode < len(Modes) {
			res.Mode = cfg.Mode
		}
		if cfg.DisplayResolution > 0 {
			res.DisplayResolution = cfg.DisplayResolution
		}
		res.Logger = cfg.Logger
	}
	if res.Logger == nil {
		res.Logger = log.New(io.Discard, "", 0)
	}
	return res
}
