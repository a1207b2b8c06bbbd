package sink

import (
	"fmt"
	"image/color"
)

// palette is indexed by item position so a node keeps its color across frames.
var palette = []color.NRGBA{
	{0x37, 0x76, 0xab, 0xff},
	{0xf0, 0xdb, 0x4f, 0xff},
	{0x61, 0xda, 0xfb, 0xff},
	{0x33, 0x99, 0x33, 0xff},
	{0xe7, 0x6f, 0x00, 0xff},
	{0xf0, 0x50, 0x33, 0xff},
	{0x24, 0x96, 0xed, 0xff},
	{0xff, 0x99, 0x00, 0xff},
	{0x42, 0xb8, 0x83, 0xff},
	{0xdd, 0x00, 0x31, 0xff},
}

// NodeColor returns the fill color for the item at index.
func NodeColor(index int) color.NRGBA {
	if index < 0 {
		index = -index
	}
	return palette[index%len(palette)]
}

// HexColor formats c as #rrggbb.
func HexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
