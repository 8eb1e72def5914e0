// Package gui is the windowed frontend. The ebiten implementation is only
// compiled with the 'ebiten' build tag; headless builds get a stub Run.
package gui

import (
	"image/color"
	"log/slog"
)

// Options configures the window.
type Options struct {
	Title  string
	Scale  int
	Logger *slog.Logger
}

// fillCellsRGBA converts row-major 0/1 cell rows into RGBA pixels in buf.
func fillCellsRGBA(buf []byte, cells [][]uint8, on, off color.Color) {
	rOn, gOn, bOn, aOn := on.RGBA()
	rOff, gOff, bOff, aOff := off.RGBA()

	base := 0
	for _, row := range cells {
		for _, c := range row {
			if c != 0 {
				buf[base+0] = uint8(rOn >> 8)
				buf[base+1] = uint8(gOn >> 8)
				buf[base+2] = uint8(bOn >> 8)
				buf[base+3] = uint8(aOn >> 8)
			} else {
				buf[base+0] = uint8(rOff >> 8)
				buf[base+1] = uint8(gOff >> 8)
				buf[base+2] = uint8(bOff >> 8)
				buf[base+3] = uint8(aOff >> 8)
			}
			base += 4
		}
	}
}

// cellAt maps a cursor position in window pixels to grid coordinates.
func cellAt(px, py, scale int) (x, y int) {
	if scale <= 0 {
		scale = 1
	}
	return px / scale, py / scale
}
