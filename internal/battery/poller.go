package battery

import (
	"context"
	"log"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
)

// Poller reads the battery on a fixed interval and publishes readings on
// the event bus. Every reading produces a BatteryChangedEvent; power
// transitions additionally produce a PowerChangedEvent.
type Poller struct {
	provider Provider
	eventBus *core.EventBus
	state    *core.State
	interval time.Duration
}

func NewPoller(provider Provider, eventBus *core.EventBus, state *core.State, interval time.Duration) *Poller {
	return &Poller{
		provider: provider,
		eventBus: eventBus,
		state:    state,
		interval: interval,
	}
}

// Run polls until the context is cancelled. The first reading happens
// immediately, not after one interval.
func (p *Poller) Run(ctx context.Context) {
	log.Printf("[Battery] Poller started (interval: %s)", p.interval)
	p.poll()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("[Battery] Poller stopped")
			return
		case <-ticker.C:
			p.poll()
		}
	}
}

func (p *Poller) poll() {
	status, err := p.provider.Status()
	if err != nil {
		log.Printf("[Battery] Read failed: %v", err)
		return
	}

	prev := p.state.Clone()
	p.state.SetBattery(status.Percent, status.Plugged)

	p.eventBus.Publish(core.Event{
		Type: core.BatteryChangedEvent,
		Payload: map[string]interface{}{
			"percent": status.Percent,
			"plugged": status.Plugged,
			"state":   status.State,
		},
	})

	// First reading counts as a transition check baseline only.
	if !prev.BatteryChecked {
		p.eventBus.Publish(core.Event{
			Type: core.PowerChangedEvent,
			Payload: map[string]interface{}{
				"plugged": status.Plugged,
				"initial": true,
			},
		})
		return
	}
	if prev.PowerPlugged != status.Plugged {
		p.eventBus.Publish(core.Event{
			Type: core.PowerChangedEvent,
			Payload: map[string]interface{}{
				"plugged": status.Plugged,
				"initial": false,
			},
		})
	}
}
