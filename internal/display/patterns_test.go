package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFullFrame(t *testing.T, cols GreyColumns) {
	t.Helper()
	require.Len(t, cols, Width)
	for _, vals := range cols {
		require.Len(t, vals, Height)
	}
}

func TestCheckerboardAlternates(t *testing.T) {
	cols := Checkerboard(2)
	requireFullFrame(t, cols)

	// Adjacent column groups are offset by one block.
	assert.Equal(t, byte(0xFF), cols[2][0])
	assert.Equal(t, byte(0x00), cols[0][0])
	// Within a column the blocks alternate every n rows.
	assert.Equal(t, byte(0xFF), cols[2][1])
	assert.Equal(t, byte(0x00), cols[2][2])
}

func TestEveryNthCol(t *testing.T) {
	cols := EveryNthCol(3)
	requireFullFrame(t, cols)
	for x := 0; x < Width; x++ {
		want := byte(0x00)
		if x%3 == 0 {
			want = 0xFF
		}
		assert.Equal(t, want, cols[x][0], "column %d", x)
	}
}

func TestEveryNthRow(t *testing.T) {
	cols := EveryNthRow(4)
	requireFullFrame(t, cols)
	for y := 0; y < Height; y++ {
		want := byte(0x00)
		if y%4 == 0 {
			want = 0xFF
		}
		assert.Equal(t, want, cols[0][y], "row %d", y)
	}
}

func TestAllBrightnesses(t *testing.T) {
	cols := AllBrightnesses()
	requireFullFrame(t, cols)
	assert.Equal(t, byte(0), cols[0][0])
	assert.Equal(t, byte(1), cols[1][0])
	// Linear index 255 is the last representable step.
	assert.Equal(t, byte(255), cols[255%Width][255/Width])
	// Beyond 255 the ramp stays dark.
	assert.Equal(t, byte(0), cols[Width-1][Height-1])
}

func TestEqualizerGrowsFromMiddle(t *testing.T) {
	g := Equalizer([]int{4})
	mid := Height / 2

	lit := 0
	for y := 0; y < Height; y++ {
		lit += g.At(0, y)
	}
	assert.Equal(t, 4, lit)
	assert.Equal(t, 1, g.At(0, mid))
	assert.Equal(t, 1, g.At(0, mid+1))
	assert.Equal(t, 1, g.At(0, mid-1))
	assert.Equal(t, 1, g.At(0, mid-2))

	// Other columns untouched.
	assert.Equal(t, 0, g.At(1, mid))
}

func TestEqualizerClampsInput(t *testing.T) {
	g := Equalizer([]int{Height + 10, -5})
	litFirst := 0
	for y := 0; y < Height; y++ {
		litFirst += g.At(0, y)
	}
	assert.Equal(t, Height, litFirst)

	for y := 0; y < Height; y++ {
		assert.Equal(t, 0, g.At(1, y))
	}
}

func TestEqualizerIgnoresExtraColumns(t *testing.T) {
	vals := make([]int, Width+3)
	for i := range vals {
		vals[i] = 2
	}
	assert.NotPanics(t, func() { Equalizer(vals) })
}
