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

// Package font manages the fonts used by DVI files.
//
// A [Pool] owns one [Definition] for every combination of font name,
// checksum, scaled size and enlargement which has been requested.  Fonts
// are loaded when the first character is drawn.  The format of a font file
// is recognized by its first two bytes:
//   - PK files (packed bitmap fonts), see [seehuhn.de/go/dvi/pk]
//   - GF files (generic bitmap fonts), see [seehuhn.de/go/dvi/gf]
//   - VF files (virtual fonts), see [seehuhn.de/go/dvi/vf]
//
// Virtual fonts refer to other fonts, which are requested from the same
// pool.  Fonts which are no longer used are removed by a mark-and-sweep
// pass: call [Pool.MarkAllUnused] before rendering a page and [Pool.Sweep]
// afterwards.
//
// Problems with individual fonts are never fatal.  A font which cannot be
// found or read draws nothing, the cause is available from
// [Definition.Err] and is reported through the configured logger.
package font
