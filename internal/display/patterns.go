package display

// Computed test patterns. These render client-side, either as greyscale
// column values (0-255 per LED, sent through the staged-column path) or as
// binary grids.

// GreyColumns is a full greyscale frame: Width columns of Height values.
type GreyColumns [][]byte

// Checkerboard returns an n-sized checkerboard as greyscale columns.
func Checkerboard(n int) GreyColumns {
	cols := make(GreyColumns, Width)
	for x := 0; x < Width; x++ {
		vals := make([]byte, 0, Height+2*n)
		for len(vals) < Height+n {
			for i := 0; i < n; i++ {
				vals = append(vals, 0xFF)
			}
			for i := 0; i < n; i++ {
				vals = append(vals, 0x00)
			}
		}
		if x%(n*2) < n {
			// Rotate by one block so adjacent columns alternate.
			vals = vals[n:]
		}
		cols[x] = vals[:Height]
	}
	return cols
}

// EveryNthCol lights every n-th column at full brightness.
func EveryNthCol(n int) GreyColumns {
	cols := make(GreyColumns, Width)
	for x := 0; x < Width; x++ {
		vals := make([]byte, Height)
		if x%n == 0 {
			for y := range vals {
				vals[y] = 0xFF
			}
		}
		cols[x] = vals
	}
	return cols
}

// EveryNthRow lights every n-th row at full brightness.
func EveryNthRow(n int) GreyColumns {
	cols := make(GreyColumns, Width)
	for x := 0; x < Width; x++ {
		vals := make([]byte, Height)
		for y := range vals {
			if y%n == 0 {
				vals[y] = 0xFF
			}
		}
		cols[x] = vals
	}
	return cols
}

// AllBrightnesses ramps brightness one step per LED. Values only go up to
// 255, so the ramp cannot cover all 306 LEDs; the remainder stays dark.
func AllBrightnesses() GreyColumns {
	cols := make(GreyColumns, Width)
	for x := 0; x < Width; x++ {
		vals := make([]byte, Height)
		for y := 0; y < Height; y++ {
			b := x + Width*y
			if b <= 255 {
				vals[y] = byte(b)
			}
		}
		cols[x] = vals
	}
	return cols
}

// Equalizer renders up to nine bar values (0-Height) growing from the middle
// row, half up and half down, as a binary grid.
func Equalizer(vals []int) *Grid {
	g := NewGrid()
	mid := Height / 2
	for col, val := range vals {
		if col >= Width {
			break
		}
		if val < 0 {
			val = 0
		}
		if val > Height {
			val = Height
		}
		above := val / 2
		below := val - above
		for i := 0; i < above; i++ {
			g.Set(col, mid+i, 1)
		}
		for i := 0; i < below; i++ {
			g.Set(col, mid-1-i, 1)
		}
	}
	return g
}
