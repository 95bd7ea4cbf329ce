// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Retro Display Authors

package vncserver

// PaletteSize is the number of entries in the indexed color table.
const PaletteSize = 256

// Color represents one RGB palette entry with 8 bits per channel.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Palette is the server-owned copy of the host's indexed color table.
// PreparePalette replaces it wholesale; the encoders only read it.
type Palette [PaletteSize]Color

// ClosestIndex finds the palette index whose color minimizes the squared
// RGB distance to the given components. Exact matches short-circuit.
func (p *Palette) ClosestIndex(r, g, b uint8) int {
	best := 0
	bestDiff := int(^uint(0) >> 1)

	for i := 0; i < PaletteSize; i++ {
		dr := int(r) - int(p[i].R)
		dg := int(g) - int(p[i].G)
		db := int(b) - int(p[i].B)
		diff := dr*dr + dg*dg + db*db

		if diff < bestDiff {
			best = i
			bestDiff = diff
		}

		if diff == 0 {
			break
		}
	}

	return best
}
