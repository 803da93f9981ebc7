// Package battery reads the host battery and publishes its state on the
// event bus at a fixed interval.
package battery

import (
	"errors"
	"fmt"

	dbattery "github.com/distatus/battery"
)

// Status is one battery reading. State is the charge state of the most
// active battery ("Charging", "Discharging", "Full", ...).
type Status struct {
	Percent float64
	Plugged bool
	State   string
}

// Provider yields battery readings. The system provider reads the host
// battery; tests inject fakes.
type Provider interface {
	Status() (Status, error)
}

// ErrNoBattery is returned on hosts without any battery.
var ErrNoBattery = errors.New("battery: no battery found")

type systemProvider struct{}

// SystemProvider returns a Provider backed by the host's battery sensors.
func SystemProvider() Provider {
	return systemProvider{}
}

func (systemProvider) Status() (Status, error) {
	batts, err := dbattery.GetAll()
	if err != nil {
		if len(batts) == 0 {
			return Status{}, fmt.Errorf("battery: failed to read sensors: %w", err)
		}
		// Partial errors still carry usable readings.
	}
	if len(batts) == 0 {
		return Status{}, ErrNoBattery
	}

	// Aggregate capacity across batteries; any charging battery means
	// external power is present.
	var current, full float64
	plugged := false
	state := batts[0].State.String()
	for _, b := range batts {
		current += b.Current
		full += b.Full
		if b.State == dbattery.Charging || b.State == dbattery.Full {
			plugged = true
			state = b.State.String()
		}
	}
	if full <= 0 {
		return Status{}, ErrNoBattery
	}
	percent := current / full * 100
	if percent > 100 {
		percent = 100
	}
	return Status{Percent: percent, Plugged: plugged, State: state}, nil
}
