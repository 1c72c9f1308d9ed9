// Package palette holds the fixed 64-entry console color table.
package palette

import "image/color"

// Size is the number of entries in the table.
const Size = 64

// Table maps a 6-bit color index to an RGBA color. It is never modified.
var Table = [Size]color.RGBA{
	{0x75, 0x75, 0x75, 0xff}, {0x27, 0x1b, 0x8f, 0xff}, {0x00, 0x00, 0xab, 0xff}, {0x47, 0x00, 0x9f, 0xff},
	{0x8f, 0x00, 0x77, 0xff}, {0xab, 0x00, 0x13, 0xff}, {0xa7, 0x00, 0x00, 0xff}, {0x7f, 0x0b, 0x00, 0xff},
	{0x43, 0x2f, 0x00, 0xff}, {0x00, 0x47, 0x00, 0xff}, {0x00, 0x51, 0x00, 0xff}, {0x00, 0x3f, 0x17, 0xff},
	{0x1b, 0x3f, 0x5f, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff},

	{0xbc, 0xbc, 0xbc, 0xff}, {0x00, 0x73, 0xef, 0xff}, {0x23, 0x3b, 0xef, 0xff}, {0x83, 0x00, 0xf3, 0xff},
	{0xbf, 0x00, 0xbf, 0xff}, {0xe7, 0x00, 0x5b, 0xff}, {0xdb, 0x2b, 0x00, 0xff}, {0xcb, 0x4f, 0x0f, 0xff},
	{0x8b, 0x73, 0x00, 0xff}, {0x00, 0x97, 0x00, 0xff}, {0x00, 0xab, 0x00, 0xff}, {0x00, 0x93, 0x3b, 0xff},
	{0x00, 0x83, 0x8b, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff},

	{0xff, 0xff, 0xff, 0xff}, {0x3f, 0xbf, 0xff, 0xff}, {0x5f, 0x97, 0xff, 0xff}, {0xa7, 0x8b, 0xfd, 0xff},
	{0xf7, 0x7b, 0xff, 0xff}, {0xff, 0x77, 0xb7, 0xff}, {0xff, 0x77, 0x63, 0xff}, {0xff, 0x9b, 0x3b, 0xff},
	{0xf3, 0xbf, 0x3f, 0xff}, {0x83, 0xd3, 0x13, 0xff}, {0x4f, 0xdf, 0x4b, 0xff}, {0x58, 0xf8, 0x98, 0xff},
	{0x00, 0xeb, 0xdb, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff},

	{0xff, 0xff, 0xff, 0xff}, {0xab, 0xe7, 0xff, 0xff}, {0xc7, 0xd7, 0xff, 0xff}, {0xd7, 0xcb, 0xff, 0xff},
	{0xff, 0xc7, 0xff, 0xff}, {0xff, 0xc7, 0xdb, 0xff}, {0xff, 0xbf, 0xb3, 0xff}, {0xff, 0xdb, 0xab, 0xff},
	{0xff, 0xe7, 0xa3, 0xff}, {0xe3, 0xff, 0xa3, 0xff}, {0xab, 0xf3, 0xbf, 0xff}, {0xb3, 0xff, 0xcf, 0xff},
	{0x9f, 0xff, 0xf3, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff}, {0x00, 0x00, 0x00, 0xff},
}

// Lookup returns the color for index. Only the low 6 bits are used, matching
// the width of a palette RAM entry.
func Lookup(index uint8) color.RGBA {
	return Table[index&(Size-1)]
}

// Put writes the color for index into dst[0:4] as R, G, B, A.
func Put(dst []byte, index uint8) {
	c := Lookup(index)
	dst[0] = c.R
	dst[1] = c.G
	dst[2] = c.B
	dst[3] = c.A
}
