// Package display holds the render-side model of the 9x34 LED matrix:
// binary grids, the 5x6 glyph font and the computed test patterns.
package display

import "fmt"

// Matrix dimensions in pixels.
const (
	Width  = 9
	Height = 34
)

// BitmapSize is the number of bytes a packed black/white frame occupies:
// 39*8 = 312 bits, enough for 9*34 = 306 pixels.
const BitmapSize = 39

// Grid is a column-major binary pixel grid: Cells[x][y] is 0 or 1.
type Grid struct {
	Width  int
	Height int
	Cells  [][]int
}

// NewGrid returns a blank grid of the default matrix size.
func NewGrid() *Grid {
	return NewGridSize(Width, Height)
}

// NewGridSize returns a blank w-by-h grid.
func NewGridSize(w, h int) *Grid {
	cells := make([][]int, w)
	for x := range cells {
		cells[x] = make([]int, h)
	}
	return &Grid{Width: w, Height: h, Cells: cells}
}

// GridFromCells validates cells as a w-by-h grid of 0/1 values and wraps it.
// The data is deep-copied so the caller keeps ownership of its slice.
func GridFromCells(cells [][]int, w, h int) (*Grid, error) {
	if !IsValidGrid(cells, w, h) {
		return nil, fmt.Errorf("display: grid must be %dx%d of 0/1 values", w, h)
	}
	g := NewGridSize(w, h)
	for x := range cells {
		copy(g.Cells[x], cells[x])
	}
	return g, nil
}

// IsValidGrid reports whether cells is a w-by-h column-major grid of 0/1.
func IsValidGrid(cells [][]int, w, h int) bool {
	if len(cells) != w {
		return false
	}
	for _, col := range cells {
		if len(col) != h {
			return false
		}
		for _, v := range col {
			if v != 0 && v != 1 {
				return false
			}
		}
	}
	return true
}

// At returns the pixel value at (x, y).
func (g *Grid) At(x, y int) int { return g.Cells[x][y] }

// Set assigns the pixel value at (x, y). Values other than 0 are stored as 1.
func (g *Grid) Set(x, y, v int) {
	if v != 0 {
		v = 1
	}
	g.Cells[x][y] = v
}

// Fill sets every pixel to v.
func (g *Grid) Fill(v int) {
	if v != 0 {
		v = 1
	}
	for x := range g.Cells {
		for y := range g.Cells[x] {
			g.Cells[x][y] = v
		}
	}
}

// ShiftedDown returns a copy of the grid moved down by n rows. With wrap the
// bottom rows re-enter at the top, otherwise vacated rows are blank.
func (g *Grid) ShiftedDown(n int, wrap bool) *Grid {
	out := NewGridSize(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		src := y - n
		for x := 0; x < g.Width; x++ {
			if wrap {
				out.Cells[x][y] = g.Cells[x][((src%g.Height)+g.Height)%g.Height]
			} else if src >= 0 && src < g.Height {
				out.Cells[x][y] = g.Cells[x][src]
			}
		}
	}
	return out
}

// PackBits packs the grid into the wire bitmap: pixel (x, y) becomes linear
// index x + Width*y, eight pixels per byte, LSB first.
func (g *Grid) PackBits() []byte {
	vals := make([]byte, BitmapSize)
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Height; y++ {
			if g.Cells[x][y] != 0 {
				i := x + g.Width*y
				vals[i/8] |= 1 << (i % 8)
			}
		}
	}
	return vals
}

// LightLEDs returns the bitmap that lights the first n LEDs in linear order.
func LightLEDs(n int) []byte {
	vals := make([]byte, BitmapSize)
	if n < 0 {
		n = 0
	}
	if n > Width*Height {
		n = Width * Height
	}
	complete := n / 8
	for i := 0; i < complete; i++ {
		vals[i] = 0xFF
	}
	for i := 0; i < n%8; i++ {
		vals[complete] |= 1 << i
	}
	return vals
}
