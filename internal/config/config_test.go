package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Brightness)
	assert.Equal(t, 5, cfg.CheckInterval)
	assert.True(t, cfg.Animations)
	assert.True(t, cfg.SoundNotifications)
	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.NotEmpty(t, cfg.PatternsDir)
	assert.NotEmpty(t, cfg.PresetsDir)
	assert.NotEmpty(t, cfg.SchedulesFile)
}

func TestLoadOmittedKeysKeepDefaults(t *testing.T) {
	// animations is absent: it must stay true, not zero-value false.
	path := writeConfig(t, `{"brightness": 30}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Brightness)
	assert.True(t, cfg.Animations)
	assert.True(t, cfg.SoundNotifications)
}

func TestLoadExplicitFalseWins(t *testing.T) {
	path := writeConfig(t, `{"animations": false, "sound_notifications": false}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Animations)
	assert.False(t, cfg.SoundNotifications)
}

func TestLoadRejectsBrightnessOutOfRange(t *testing.T) {
	for _, content := range []string{
		`{"brightness": 101}`,
		`{"brightness": -1}`,
	} {
		path := writeConfig(t, content)
		_, err := Load(path)
		require.Error(t, err, content)
		assert.Contains(t, err.Error(), "brightness")
	}
}

func TestLoadRejectsBadDeviceSide(t *testing.T) {
	path := writeConfig(t, `{"devices": {"/dev/ttyACM0": {"enabled": true, "side": "middle", "slot": 1}}}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "side")
}

func TestLoadNormalizesDeviceSide(t *testing.T) {
	path := writeConfig(t, `{"devices": {"/dev/ttyACM0": {"enabled": true, "side": " Left ", "slot": 1}}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "left", cfg.Devices["/dev/ttyACM0"].Side)
}

func TestLoadRejectsBadSlot(t *testing.T) {
	path := writeConfig(t, `{"devices": {"COM3": {"enabled": true, "side": "right", "slot": 9}}}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slot")
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"brightness": `)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	original, err := Load(path)
	require.NoError(t, err)
	original.Brightness = 80
	original.CheckInterval = 30
	original.Devices["/dev/ttyACM0"] = DeviceConfig{Enabled: true, Side: "left", Slot: 2}
	original.Sounds = SoundConfig{Plugged: "/tmp/plug.wav", Unplugged: "/tmp/unplug.wav"}

	require.NoError(t, Save(path, original))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestDefaultPaths(t *testing.T) {
	assert.Equal(t, filepath.Join(AppDir(), "config.json"), DefaultPath())
	assert.Equal(t, filepath.Join(AppDir(), "patterns"), DefaultPatternsDir())
	assert.Equal(t, filepath.Join(AppDir(), "presets"), DefaultPresetsDir())
	assert.Equal(t, filepath.Join(AppDir(), "schedules.json"), DefaultSchedulesFile())
	assert.Contains(t, AppDir(), AppDirName)
}
