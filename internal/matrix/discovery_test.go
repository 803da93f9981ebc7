package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial/enumerator"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
)

func listerFor(ports ...*enumerator.PortDetails) PortLister {
	return func() ([]*enumerator.PortDetails, error) { return ports, nil }
}

func TestDiscoverFiltersByVIDPID(t *testing.T) {
	lister := listerFor(
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "32AC", PID: "0020", SerialNumber: "FRAKDEAM1"},
		&enumerator.PortDetails{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001", SerialNumber: "FT1234"},
		&enumerator.PortDetails{Name: "/dev/ttyS0", IsUSB: false},
	)

	found, err := Discover(nil, lister)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "/dev/ttyACM0", found[0].Port)
	assert.Equal(t, "FRAKDEAM1", found[0].SerialNumber)
}

func TestDiscoverSerialPrefixFallback(t *testing.T) {
	// Some firmware revisions report an unexpected VID; the FRAK serial
	// prefix still identifies them.
	lister := listerFor(
		&enumerator.PortDetails{Name: "COM4", IsUSB: true, VID: "1234", PID: "5678", SerialNumber: "FRAKDEAM2"},
	)

	found, err := Discover(nil, lister)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "COM4", found[0].Port)
}

func TestDiscoverSkipsDisabledDevices(t *testing.T) {
	lister := listerFor(
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "32AC", PID: "0020"},
		&enumerator.PortDetails{Name: "/dev/ttyACM1", IsUSB: true, VID: "32AC", PID: "0020"},
	)
	devices := map[string]config.DeviceConfig{
		"/dev/ttyACM1": {Enabled: false},
	}

	found, err := Discover(devices, lister)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "/dev/ttyACM0", found[0].Port)
}

func TestDiscoverConfigOverridesSideAndSlot(t *testing.T) {
	lister := listerFor(
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "32AC", PID: "0020"},
	)
	devices := map[string]config.DeviceConfig{
		"/dev/ttyACM0": {Enabled: true, Side: "right", Slot: 2},
	}

	found, err := Discover(devices, lister)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "right", found[0].Side)
	assert.Equal(t, 2, found[0].Slot)
	assert.Equal(t, "R2", found[0].Abbrev())
}

func TestDiscoverSortsByPort(t *testing.T) {
	lister := listerFor(
		&enumerator.PortDetails{Name: "/dev/ttyACM1", IsUSB: true, VID: "32AC", PID: "0020"},
		&enumerator.PortDetails{Name: "/dev/ttyACM0", IsUSB: true, VID: "32AC", PID: "0020"},
	)

	found, err := Discover(nil, lister)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "/dev/ttyACM0", found[0].Port)
	assert.Equal(t, "/dev/ttyACM1", found[1].Port)
}

func TestAbbrev(t *testing.T) {
	assert.Equal(t, "L1", DeviceInfo{Side: "left", Slot: 1}.Abbrev())
	assert.Equal(t, "R2", DeviceInfo{Side: "right", Slot: 2}.Abbrev())
	assert.Equal(t, "??", DeviceInfo{}.Abbrev())
}
