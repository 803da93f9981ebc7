package matrix

import (
	"fmt"
	"strings"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
)

// Built-in pattern names. The first group maps to firmware patterns, the
// rest are computed client-side and sent through the greyscale column path.
var firmwarePatterns = map[string]byte{
	"all leds on":                          PatternFullBrightness,
	"gradient (0-13% brightness)":          PatternGradient,
	"double gradient (0-7-0% brightness)":  PatternDoubleGradient,
	`"lotus" sideways`:                     PatternDisplayLotus,
	"zigzag":                               PatternZigZag,
	`"panic"`:                              PatternDisplayPanic,
	`"lotus" top down`:                     PatternDisplayLotus2,
}

// PatternNames lists every pattern DrawPattern accepts, built-ins first.
func PatternNames() []string {
	return []string{
		"All LEDs on",
		`"LOTUS" sideways`,
		"Gradient (0-13% Brightness)",
		"Double Gradient (0-7-0% Brightness)",
		"Zigzag",
		`"PANIC"`,
		`"LOTUS" Top Down`,
		"All brightness levels (1 LED each)",
		"Every Second Row",
		"Every Third Row",
		"Every Fourth Row",
		"Every Fifth Row",
		"Every Sixth Row",
		"Every Second Col",
		"Every Third Col",
		"Every Fourth Col",
		"Every Fifth Col",
		"Checkerboard",
		"Double Checkerboard",
		"Triple Checkerboard",
		"Quad Checkerboard",
	}
}

// DrawPattern shows a pattern by name, case-insensitively.
func DrawPattern(t Transport, name string) error {
	key := strings.ToLower(strings.TrimSpace(name))

	if id, ok := firmwarePatterns[key]; ok {
		return t.Send(BuildCommand(CmdPattern, id))
	}

	switch key {
	case "all brightness levels (1 led each)":
		return DrawGreyColumns(t, display.AllBrightnesses())
	case "every second row":
		return DrawGreyColumns(t, display.EveryNthRow(2))
	case "every third row":
		return DrawGreyColumns(t, display.EveryNthRow(3))
	case "every fourth row":
		return DrawGreyColumns(t, display.EveryNthRow(4))
	case "every fifth row":
		return DrawGreyColumns(t, display.EveryNthRow(5))
	case "every sixth row":
		return DrawGreyColumns(t, display.EveryNthRow(6))
	case "every second col":
		return DrawGreyColumns(t, display.EveryNthCol(2))
	case "every third col":
		return DrawGreyColumns(t, display.EveryNthCol(3))
	case "every fourth col":
		return DrawGreyColumns(t, display.EveryNthCol(4))
	case "every fifth col":
		return DrawGreyColumns(t, display.EveryNthCol(5))
	case "checkerboard":
		return DrawGreyColumns(t, display.Checkerboard(1))
	case "double checkerboard":
		return DrawGreyColumns(t, display.Checkerboard(2))
	case "triple checkerboard":
		return DrawGreyColumns(t, display.Checkerboard(3))
	case "quad checkerboard":
		return DrawGreyColumns(t, display.Checkerboard(4))
	}
	return fmt.Errorf("matrix: unknown pattern '%s'", name)
}
