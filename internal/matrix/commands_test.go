package matrix

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
)

// fakeTransport records sent payloads and answers queries from a canned
// response.
type fakeTransport struct {
	sent     [][]byte
	response []byte
	err      error
}

func (f *fakeTransport) Send(payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, payload)
	return nil
}

func (f *fakeTransport) Request(payload []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, payload)
	return f.response, nil
}

func TestSetBrightness(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, SetBrightness(ft, 100))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, []byte{0x32, 0xAC, CmdBrightness, 0xFF}, ft.sent[0])
}

func TestShowPercentageUsesFirmwarePattern(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, ShowPercentage(ft, 42))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, []byte{0x32, 0xAC, CmdPattern, PatternPercentage, 42}, ft.sent[0])

	// Over-range percentages clamp rather than overflow the byte.
	ft = &fakeTransport{}
	require.NoError(t, ShowPercentage(ft, 250))
	assert.Equal(t, byte(100), ft.sent[0][4])
}

func TestAnimateOnOff(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, Animate(ft, true))
	require.NoError(t, Animate(ft, false))
	assert.Equal(t, []byte{0x32, 0xAC, CmdAnimate, 0x01}, ft.sent[0])
	assert.Equal(t, []byte{0x32, 0xAC, CmdAnimate, 0x00}, ft.sent[1])
}

func TestGetAnimate(t *testing.T) {
	ft := &fakeTransport{response: []byte{0x01}}
	on, err := GetAnimate(ft)
	require.NoError(t, err)
	assert.True(t, on)

	ft.response = []byte{0x00}
	on, err = GetAnimate(ft)
	require.NoError(t, err)
	assert.False(t, on)

	ft.response = nil
	_, err = GetAnimate(ft)
	assert.Error(t, err)
}

func TestDrawGridPayloadSize(t *testing.T) {
	ft := &fakeTransport{}
	g := display.NewGrid()
	g.Set(0, 0, 1)
	require.NoError(t, DrawGrid(ft, g))
	require.Len(t, ft.sent, 1)
	// Magic + command + 39 bitmap bytes.
	assert.Len(t, ft.sent[0], 2+1+display.BitmapSize)
	assert.Equal(t, CmdDraw, ft.sent[0][2])
	assert.Equal(t, byte(0x01), ft.sent[0][3])
}

func TestLightLEDsDrawsLinearPrefix(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, LightLEDs(ft, 10))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, CmdDraw, ft.sent[0][2])
	assert.Equal(t, byte(0xFF), ft.sent[0][3])
	assert.Equal(t, byte(0x03), ft.sent[0][4])
}

func TestClearSendsBlankBitmap(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, Clear(ft))
	require.Len(t, ft.sent, 1)
	for _, b := range ft.sent[0][3:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestDrawGreyColumnsStagesThenCommits(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, DrawGreyColumns(ft, display.EveryNthCol(3)))
	// One staged command per column plus the commit.
	require.Len(t, ft.sent, display.Width+1)
	for x := 0; x < display.Width; x++ {
		assert.Equal(t, CmdStageGreyCol, ft.sent[x][2])
		assert.Equal(t, byte(x), ft.sent[x][3])
		assert.Len(t, ft.sent[x], 2+1+1+display.Height)
	}
	commit := ft.sent[display.Width]
	assert.Equal(t, CmdDrawGreyColBuffer, commit[2])
}

func TestSetPWMFreq(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, SetPWMFreq(ft, 29000))
	require.NoError(t, SetPWMFreq(ft, 900))
	assert.Equal(t, byte(0), ft.sent[0][3])
	assert.Equal(t, byte(3), ft.sent[1][3])

	assert.Error(t, SetPWMFreq(ft, 1234))
}

func TestGetVersionFormatsResponse(t *testing.T) {
	// Major 1, minor 0, patch 2 packs as {1, 0x02}.
	ft := &fakeTransport{response: []byte{1, 0x02, 0}}
	v, err := GetVersion(ft)
	require.NoError(t, err)
	assert.Equal(t, "1.0.2", v)

	ft.response = []byte{2}
	_, err = GetVersion(ft)
	assert.Error(t, err)
}

func TestIdentifyAlternatesMessages(t *testing.T) {
	ft := &fakeTransport{}
	info := DeviceInfo{Port: "/dev/ttyACM0", Side: "left", Slot: 1}
	err := Identify(context.Background(), ft, info, 10*time.Millisecond, 2)
	require.NoError(t, err)

	// Clear, then cycles*2 text frames, then the final clear.
	require.Len(t, ft.sent, 1+2*2+1)

	abbrev := display.RenderString("L1").PackBits()
	port := display.RenderString("ACM0").PackBits()
	assert.Equal(t, abbrev, ft.sent[1][3:])
	assert.Equal(t, port, ft.sent[2][3:])
	assert.Equal(t, abbrev, ft.sent[3][3:])
}

func TestIdentifyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ft := &fakeTransport{}
	info := DeviceInfo{Port: "COM3", Side: "right", Slot: 2}
	err := Identify(ctx, ft, info, time.Minute, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShortPortName(t *testing.T) {
	assert.Equal(t, "ACM0", shortPortName("/dev/ttyACM0"))
	assert.Equal(t, "COM3", shortPortName("COM3"))
	assert.Equal(t, "23456", shortPortName("/dev/ttyUSB123456"))
}
