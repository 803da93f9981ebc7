package matrix

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.bug.st/serial/enumerator"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
)

// DeviceInfo describes one discovered LED matrix module.
type DeviceInfo struct {
	Port         string // platform port name, e.g. COM3 or /dev/ttyACM0
	SerialNumber string
	Location     string // USB physical location, e.g. "1-4.2", when resolvable
	Side         string // "left" or "right"
	Slot         int    // 1 or 2
}

// Abbrev returns the short physical-location label shown by identify,
// e.g. "L1" or "R2". Falls back to "??" when the location is unknown.
func (d DeviceInfo) Abbrev() string {
	if d.Side == "" || d.Slot == 0 {
		return "??"
	}
	return strings.ToUpper(d.Side[:1]) + fmt.Sprintf("%d", d.Slot)
}

// slotInfo is a known physical slot of the chassis.
type slotInfo struct {
	side string
	slot int
}

// slotMap maps USB physical locations to keyboard-deck slots.
var slotMap = map[string]slotInfo{
	"1-3.2": {side: "right", slot: 1},
	"1-3.3": {side: "right", slot: 2},
	"1-4.2": {side: "left", slot: 1},
	"1-4.3": {side: "left", slot: 2},
}

// locationPattern matches USB physical location segments like "1-4.2".
var locationPattern = regexp.MustCompile(`\d+-\d+(?:\.\d+)+`)

// PortLister enumerates candidate serial ports. Swappable in tests.
type PortLister func() ([]*enumerator.PortDetails, error)

// Discover enumerates USB serial ports and returns the attached LED matrix
// modules, filtered by VID/PID (with the serial-number prefix as a fallback)
// and by the per-device enabled flags in the configuration. Side and slot
// come from the configuration entry when present, otherwise from the USB
// physical location. The result is sorted by port name for stable ordering.
func Discover(devices map[string]config.DeviceConfig, list PortLister) ([]DeviceInfo, error) {
	if list == nil {
		list = enumerator.GetDetailedPortsList
	}
	ports, err := list()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}

	var found []DeviceInfo
	for _, p := range ports {
		if !isMatrixModule(p) {
			continue
		}
		if dc, ok := devices[p.Name]; ok && !dc.Enabled {
			continue
		}

		info := DeviceInfo{
			Port:         p.Name,
			SerialNumber: p.SerialNumber,
			Location:     locationForPort(p.Name),
		}
		if si, ok := slotMap[info.Location]; ok {
			info.Side = si.side
			info.Slot = si.slot
		}
		// Config wins over the USB topology.
		if dc, ok := devices[p.Name]; ok {
			if dc.Side != "" {
				info.Side = dc.Side
			}
			if dc.Slot != 0 {
				info.Slot = dc.Slot
			}
		}
		found = append(found, info)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Port < found[j].Port })
	return found, nil
}

// isMatrixModule reports whether a port looks like an LED matrix input module.
func isMatrixModule(p *enumerator.PortDetails) bool {
	if !p.IsUSB {
		return false
	}
	if strings.EqualFold(p.VID, VendorID) && strings.EqualFold(p.PID, ProductID) {
		return true
	}
	return strings.HasPrefix(p.SerialNumber, SerialPrefix)
}

// locationForPort resolves the USB physical location of a tty, when the
// platform exposes it through sysfs. Returns "" elsewhere.
func locationForPort(port string) string {
	link, err := filepath.EvalSymlinks(filepath.Join("/sys/class/tty", filepath.Base(port)))
	if err != nil {
		return ""
	}
	matches := locationPattern.FindAllString(link, -1)
	if len(matches) == 0 {
		return ""
	}
	// The deepest segment names the actual port on the hub.
	return matches[len(matches)-1]
}
