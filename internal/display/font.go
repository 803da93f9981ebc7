package display

import "strings"

// Glyph geometry and placement, matching the module firmware's text layout:
// glyphs are 5x6, drawn starting at x=2 to centre them, stacked vertically
// with a 7 pixel stride. Five glyphs fit on one 9x34 matrix.
const (
	GlyphWidth  = 5
	GlyphHeight = 6
	glyphXStart = 2
	glyphStride = 7
	MaxGlyphs   = 5
)

// glyphs maps characters to their 5x6 bitmap, six rows of five cells.
var glyphs = map[rune][]string{
	'0': {".###.", "#...#", "#..##", "#.#.#", "##..#", ".###."},
	'1': {"..#..", ".##..", "..#..", "..#..", "..#..", ".###."},
	'2': {".###.", "#...#", "...#.", "..#..", ".#...", "#####"},
	'3': {".###.", "#...#", "..##.", "....#", "#...#", ".###."},
	'4': {"...#.", "..##.", ".#.#.", "#####", "...#.", "...#."},
	'5': {"#####", "#....", "####.", "....#", "#...#", ".###."},
	'6': {".###.", "#....", "####.", "#...#", "#...#", ".###."},
	'7': {"#####", "....#", "...#.", "..#..", ".#...", ".#..."},
	'8': {".###.", "#...#", ".###.", "#...#", "#...#", ".###."},
	'9': {".###.", "#...#", "#...#", ".####", "....#", ".###."},
	'A': {".###.", "#...#", "#...#", "#####", "#...#", "#...#"},
	'B': {"####.", "#...#", "####.", "#...#", "#...#", "####."},
	'C': {".###.", "#...#", "#....", "#....", "#...#", ".###."},
	'D': {"####.", "#...#", "#...#", "#...#", "#...#", "####."},
	'E': {"#####", "#....", "####.", "#....", "#....", "#####"},
	'F': {"#####", "#....", "####.", "#....", "#....", "#...."},
	'G': {".###.", "#....", "#.###", "#...#", "#...#", ".###."},
	'H': {"#...#", "#...#", "#####", "#...#", "#...#", "#...#"},
	'I': {".###.", "..#..", "..#..", "..#..", "..#..", ".###."},
	'J': {"..###", "...#.", "...#.", "...#.", "#..#.", ".##.."},
	'K': {"#...#", "#..#.", "###..", "#..#.", "#...#", "#...#"},
	'L': {"#....", "#....", "#....", "#....", "#....", "#####"},
	'M': {"#...#", "##.##", "#.#.#", "#...#", "#...#", "#...#"},
	'N': {"#...#", "##..#", "#.#.#", "#..##", "#...#", "#...#"},
	'O': {".###.", "#...#", "#...#", "#...#", "#...#", ".###."},
	'P': {"####.", "#...#", "#...#", "####.", "#....", "#...."},
	'Q': {".###.", "#...#", "#...#", "#.#.#", "#..#.", ".##.#"},
	'R': {"####.", "#...#", "#...#", "####.", "#..#.", "#...#"},
	'S': {".####", "#....", ".###.", "....#", "....#", "####."},
	'T': {"#####", "..#..", "..#..", "..#..", "..#..", "..#.."},
	'U': {"#...#", "#...#", "#...#", "#...#", "#...#", ".###."},
	'V': {"#...#", "#...#", "#...#", "#...#", ".#.#.", "..#.."},
	'W': {"#...#", "#...#", "#...#", "#.#.#", "##.##", "#...#"},
	'X': {"#...#", ".#.#.", "..#..", "..#..", ".#.#.", "#...#"},
	'Y': {"#...#", ".#.#.", "..#..", "..#..", "..#..", "..#.."},
	'Z': {"#####", "....#", "...#.", "..#..", ".#...", "#####"},
	'-': {".....", ".....", ".....", "#####", ".....", "....."},
	'.': {".....", ".....", ".....", ".....", ".....", "..#.."},
	'/': {"....#", "...#.", "..#..", "..#..", ".#...", "#...."},
	'?': {".###.", "#...#", "...#.", "..#..", ".....", "..#.."},
	'!': {"..#..", "..#..", "..#..", "..#..", ".....", "..#.."},
	':': {".....", "..#..", ".....", ".....", "..#..", "....."},
	'%': {"##..#", "##.#.", "..#..", "..#..", ".#.##", "#..##"},
	' ': {".....", ".....", ".....", ".....", ".....", "....."},
}

// symbols maps friendly names to glyph bitmaps.
var symbols = map[string][]string{
	":)":    {".#.#.", ".#.#.", ".....", "#...#", ".###.", "....."},
	":(":    {".#.#.", ".#.#.", ".....", ".###.", "#...#", "....."},
	"heart": {".#.#.", "#####", "#####", ".###.", "..#..", "....."},
}

// Glyph returns the bitmap rows for a character, uppercased. Unknown
// characters render as '?'.
func Glyph(ch rune) []string {
	upper := []rune(strings.ToUpper(string(ch)))[0]
	if g, ok := glyphs[upper]; ok {
		return g
	}
	return glyphs['?']
}

// Symbol returns the bitmap rows for a named symbol, or false if unknown.
func Symbol(name string) ([]string, bool) {
	g, ok := symbols[name]
	return g, ok
}

// RenderString renders up to five characters of s onto a fresh grid.
func RenderString(s string) *Grid {
	var items [][]string
	for _, ch := range s {
		if len(items) == MaxGlyphs {
			break
		}
		items = append(items, Glyph(ch))
	}
	return RenderGlyphs(items)
}

// RenderSymbols renders up to five named symbols, falling back to character
// glyphs for names that are single characters.
func RenderSymbols(names []string) *Grid {
	var items [][]string
	for _, name := range names {
		if len(items) == MaxGlyphs {
			break
		}
		if g, ok := Symbol(name); ok {
			items = append(items, g)
			continue
		}
		items = append(items, Glyph([]rune(name)[0]))
	}
	return RenderGlyphs(items)
}

// RenderGlyphs stacks glyph bitmaps vertically onto a fresh grid.
func RenderGlyphs(items [][]string) *Grid {
	g := NewGrid()
	for i, rows := range items {
		offset := i * glyphStride
		for py, row := range rows {
			if py >= GlyphHeight || py+offset >= g.Height {
				break
			}
			for px := 0; px < GlyphWidth && px < len(row); px++ {
				if row[px] == '#' {
					g.Set(glyphXStart+px, py+offset, 1)
				}
			}
		}
	}
	return g
}
