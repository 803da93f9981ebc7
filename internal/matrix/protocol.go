// Package matrix drives Framework-style 9x34 LED matrix input modules over
// USB CDC serial. Every command on the wire is the two magic bytes followed
// by a command ID and its parameters.
package matrix

// Serial link parameters.
const (
	DefaultBaudRate = 115200
	ResponseSize    = 32
)

// USB identifiers of the LED matrix input module.
const (
	VendorID     = "32AC"
	ProductID    = "0020"
	SerialPrefix = "FRAK"
)

// Magic prefix for every wire command.
var fwkMagic = []byte{0x32, 0xAC}

// Command IDs understood by the module firmware.
const (
	CmdBrightness        byte = 0x00
	CmdPattern           byte = 0x01
	CmdSleep             byte = 0x03
	CmdAnimate           byte = 0x04
	CmdDraw              byte = 0x06
	CmdStageGreyCol      byte = 0x07
	CmdDrawGreyColBuffer byte = 0x08
	CmdPwmFreq           byte = 0x1E
	CmdVersion           byte = 0x20
)

// Parameter values for CmdPattern.
const (
	PatternPercentage     byte = 0x00
	PatternGradient       byte = 0x01
	PatternDoubleGradient byte = 0x02
	PatternDisplayLotus   byte = 0x03
	PatternZigZag         byte = 0x04
	PatternFullBrightness byte = 0x05
	PatternDisplayPanic   byte = 0x06
	PatternDisplayLotus2  byte = 0x07
)

// BuildCommand frames a command ID and its parameters with the magic prefix.
func BuildCommand(cmd byte, params ...byte) []byte {
	out := make([]byte, 0, len(fwkMagic)+1+len(params))
	out = append(out, fwkMagic...)
	out = append(out, cmd)
	out = append(out, params...)
	return out
}

// PercentToValue converts a 0-100 percentage to the 0-255 range the
// brightness register expects.
func PercentToValue(percent int) byte {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return byte(percent * 255 / 100)
}

// ClampPercent constrains a percentage to 0-100.
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
