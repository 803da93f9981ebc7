package matrix

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
)

// Transport is the slice of a module connection the command helpers need.
// Both Controller (queued, reconnecting) and Device (direct, one-shot)
// satisfy it.
type Transport interface {
	Send(payload []byte) error
	Request(payload []byte) ([]byte, error)
}

// Send enqueues a fire-and-forget command; it only errors when the queue is full.
func (c *Controller) Send(payload []byte) error {
	c.Write(payload)
	return nil
}

// Request enqueues a query and waits for the module's response.
func (c *Controller) Request(payload []byte) ([]byte, error) {
	return c.Query(payload)
}

// SetBrightness adjusts the global brightness, percent 0-100.
func SetBrightness(t Transport, percent int) error {
	return t.Send(BuildCommand(CmdBrightness, PercentToValue(percent)))
}

// ShowPercentage fills a percentage of the screen, bottom to top.
func ShowPercentage(t Transport, p int) error {
	return t.Send(BuildCommand(CmdPattern, PatternPercentage, byte(ClampPercent(p))))
}

// Animate tells the firmware to start or stop scrolling the saved grid
// vertically down.
func Animate(t Transport, on bool) error {
	val := byte(0x00)
	if on {
		val = 0x01
	}
	return t.Send(BuildCommand(CmdAnimate, val))
}

// GetAnimate reports whether the firmware is currently animating.
func GetAnimate(t Transport) (bool, error) {
	res, err := t.Request(BuildCommand(CmdAnimate))
	if err != nil {
		return false, err
	}
	if len(res) == 0 {
		return false, fmt.Errorf("matrix: empty animate response")
	}
	return res[0] != 0, nil
}

// DrawGrid shows a black/white grid in a single command.
func DrawGrid(t Transport, g *display.Grid) error {
	return t.Send(BuildCommand(CmdDraw, g.PackBits()...))
}

// Clear blanks the whole matrix.
func Clear(t Transport) error {
	return DrawGrid(t, display.NewGrid())
}

// ShowString renders up to five characters stacked vertically.
func ShowString(t Transport, s string) error {
	return DrawGrid(t, display.RenderString(s))
}

// DrawGreyColumns stages each greyscale column and then commits the frame so
// the matrix is never partially updated.
func DrawGreyColumns(t Transport, cols display.GreyColumns) error {
	for x, vals := range cols {
		params := append([]byte{byte(x)}, vals...)
		if err := t.Send(BuildCommand(CmdStageGreyCol, params...)); err != nil {
			return err
		}
	}
	return t.Send(BuildCommand(CmdDrawGreyColBuffer, 0x00))
}

// LightLEDs lights the first n LEDs in linear index order.
func LightLEDs(t Transport, n int) error {
	return t.Send(BuildCommand(CmdDraw, display.LightLEDs(n)...))
}

// SetSleep puts the module to sleep or wakes it.
func SetSleep(t Transport, sleeping bool) error {
	val := byte(0x00)
	if sleeping {
		val = 0x01
	}
	return t.Send(BuildCommand(CmdSleep, val))
}

// SetPWMFreq selects the LED PWM frequency: 29000, 3600, 1800 or 900 Hz.
func SetPWMFreq(t Transport, hz int) error {
	var val byte
	switch hz {
	case 29000:
		val = 0
	case 3600:
		val = 1
	case 1800:
		val = 2
	case 900:
		val = 3
	default:
		return fmt.Errorf("matrix: unsupported PWM frequency %d Hz", hz)
	}
	return t.Send(BuildCommand(CmdPwmFreq, val))
}

// GetVersion reads the firmware version string.
func GetVersion(t Transport) (string, error) {
	res, err := t.Request(BuildCommand(CmdVersion))
	if err != nil {
		return "", err
	}
	if len(res) < 3 {
		return "", fmt.Errorf("matrix: short version response (%d bytes)", len(res))
	}
	return fmt.Sprintf("%d.%d.%d", res[0], res[1]>>4, res[1]&0x0F), nil
}

// Identify alternates the physical-location label and the port name on the
// display so the user can tell the modules apart. The total duration is
// split evenly over cycles*2 messages.
func Identify(ctx context.Context, t Transport, info DeviceInfo, duration time.Duration, cycles int) error {
	if cycles <= 0 {
		cycles = 3
	}
	if err := Clear(t); err != nil {
		return err
	}
	messages := []string{info.Abbrev(), shortPortName(info.Port)}
	interval := duration / time.Duration(cycles*len(messages))
	for i := 0; i < cycles; i++ {
		for _, msg := range messages {
			if err := ShowString(t, msg); err != nil {
				return err
			}
			select {
			case <-time.After(interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return Clear(t)
}

// shortPortName trims a device path down to the five glyphs that fit,
// e.g. /dev/ttyACM0 -> ACM0.
func shortPortName(port string) string {
	base := port
	if i := strings.LastIndexByte(port, '/'); i >= 0 {
		base = port[i+1:]
	}
	base = strings.TrimPrefix(base, "tty")
	if len(base) > display.MaxGlyphs {
		base = base[len(base)-display.MaxGlyphs:]
	}
	return base
}
