package geotile

import (
	"fmt"
)

// 像素窗口
type Window struct {
	XOff   int
	YOff   int
	Width  int
	Height int
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

func (w Window) Overlaps(o Window) bool {
	return w.XOff < o.XOff+o.Width && o.XOff < w.XOff+w.Width &&
		w.YOff < o.YOff+o.Height && o.YOff < w.YOff+w.Height
}

// Grid partitions a width x height raster into size x size windows, rows
// first. Windows on the right and bottom edges are clamped to the raster.
func Grid(width, height, size int) (ws []Window) {
	if width <= 0 || height <= 0 || size <= 0 {
		return
	}
	ws = make([]Window, 0, GridCount(width, height, size))
	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			ws = append(ws, Window{
				XOff:   x,
				YOff:   y,
				Width:  min(size, width-x),
				Height: min(size, height-y),
			})
		}
	}
	return
}

func GridCount(width, height, size int) int {
	return ceilDiv(width, size) * ceilDiv(height, size)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// TileName is the file stem shared by the tiler (writing) and the locator
// (resolving manifest entries).
func TileName(stem string, w Window) string {
	return fmt.Sprintf(TILE_NAME_TEMPLATE, stem, w.YOff, w.XOff)
}
