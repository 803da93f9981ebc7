package matrix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawPatternFirmware(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, DrawPattern(ft, "Zigzag"))
	require.Len(t, ft.sent, 1)
	assert.Equal(t, []byte{0x32, 0xAC, CmdPattern, PatternZigZag}, ft.sent[0])
}

func TestDrawPatternCaseInsensitive(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, DrawPattern(ft, "  ALL LEDS ON "))
	assert.Equal(t, []byte{0x32, 0xAC, CmdPattern, PatternFullBrightness}, ft.sent[0])
}

func TestDrawPatternComputed(t *testing.T) {
	ft := &fakeTransport{}
	require.NoError(t, DrawPattern(ft, "Checkerboard"))
	// Computed patterns go through the staged greyscale path.
	assert.Greater(t, len(ft.sent), 1)
	assert.Equal(t, CmdStageGreyCol, ft.sent[0][2])
}

func TestDrawPatternUnknown(t *testing.T) {
	ft := &fakeTransport{}
	err := DrawPattern(ft, "plaid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plaid")
	assert.Empty(t, ft.sent)
}

func TestEveryPatternNameIsDrawable(t *testing.T) {
	for _, name := range PatternNames() {
		ft := &fakeTransport{}
		require.NoError(t, DrawPattern(ft, name), "pattern %q", name)
		require.NotEmpty(t, ft.sent, "pattern %q", name)
	}
}

func TestFirmwarePatternKeysAreLowercase(t *testing.T) {
	for key := range firmwarePatterns {
		assert.Equal(t, strings.ToLower(key), key)
	}
}
