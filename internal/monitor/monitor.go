// Package monitor turns battery readings into LED matrix output: a
// percentage bar while discharging, the animated zigzag while charging.
package monitor

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"
)

// Monitor reacts to battery events on the bus and drives the display.
// Notification sounds play only on power transitions, never for the
// first reading after startup.
type Monitor struct {
	transport  matrix.Transport
	eventBus   *core.EventBus
	state      *core.State
	notifier   Sounder
	animations bool
	sounds     config.SoundConfig

	cycles  atomic.Int64
	started time.Time
}

func New(transport matrix.Transport, eventBus *core.EventBus, state *core.State, notifier Sounder, animations bool, sounds config.SoundConfig) *Monitor {
	return &Monitor{
		transport:  transport,
		eventBus:   eventBus,
		state:      state,
		notifier:   notifier,
		animations: animations,
		sounds:     sounds,
	}
}

// Cycles returns how many battery readings the monitor has handled.
func (m *Monitor) Cycles() int64 { return m.cycles.Load() }

// Run consumes battery events until the context is cancelled, then plays
// the goodbye animation.
func (m *Monitor) Run(ctx context.Context) {
	m.started = time.Now()
	sub := m.eventBus.Subscribe(core.BatteryChangedEvent, core.PowerChangedEvent)
	defer m.eventBus.Unsubscribe(sub, core.BatteryChangedEvent, core.PowerChangedEvent)
	log.Println("[Monitor] Started")

	for {
		select {
		case <-ctx.Done():
			m.goodbye()
			log.Printf("[Monitor] Stopped after %s, %d readings",
				time.Since(m.started).Round(time.Second), m.cycles.Load())
			return
		case event := <-sub:
			m.handle(event)
		}
	}
}

func (m *Monitor) handle(event core.Event) {
	payload, ok := event.Payload.(map[string]interface{})
	if !ok {
		return
	}

	st := m.state.Clone()
	if st.MonitorPaused {
		return
	}
	// A running Lua pattern or preset owns the display.
	if st.RunningPattern != "" || st.RunningPreset != "" {
		return
	}

	switch event.Type {
	case core.PowerChangedEvent:
		plugged, _ := payload["plugged"].(bool)
		initial, _ := payload["initial"].(bool)
		m.onPowerChange(plugged, initial, st.BatteryPercent)
	case core.BatteryChangedEvent:
		m.cycles.Add(1)
		plugged, _ := payload["plugged"].(bool)
		percent, _ := payload["percent"].(float64)
		if !plugged {
			// Keep the bar current while discharging.
			if err := matrix.ShowPercentage(m.transport, int(percent)); err != nil {
				log.Printf("[Monitor] Failed to show percentage: %v", err)
			}
		} else if m.animations {
			// A module that reconnected mid-charge lost its scroll;
			// reassert it on every reading.
			if err := matrix.Animate(m.transport, true); err != nil {
				log.Printf("[Monitor] Failed to reassert animation: %v", err)
			}
		}
	}
}

func (m *Monitor) onPowerChange(plugged, initial bool, percent float64) {
	if plugged {
		if !initial {
			m.notifier.Play(m.sounds.Plugged)
			log.Println("[Monitor] Power plugged in")
		}
		if err := matrix.DrawPattern(m.transport, "zigzag"); err != nil {
			log.Printf("[Monitor] Failed to draw zigzag: %v", err)
		}
		if m.animations {
			if animating, err := matrix.GetAnimate(m.transport); err == nil && !animating {
				if err := matrix.Animate(m.transport, true); err != nil {
					log.Printf("[Monitor] Failed to start animation: %v", err)
				}
			}
		}
		return
	}

	if !initial {
		m.notifier.Play(m.sounds.Unplugged)
		log.Println("[Monitor] Power unplugged")
	}
	if animating, err := matrix.GetAnimate(m.transport); err == nil && animating {
		if err := matrix.Animate(m.transport, false); err != nil {
			log.Printf("[Monitor] Failed to halt animation: %v", err)
		}
	}
	if err := matrix.ShowPercentage(m.transport, int(percent)); err != nil {
		log.Printf("[Monitor] Failed to show percentage: %v", err)
	}
}

// goodbye waves off before shutdown: a short farewell, then a cleared
// display so nothing stale stays lit.
func (m *Monitor) goodbye() {
	if err := matrix.ShowString(m.transport, "BYE"); err != nil {
		return
	}
	time.Sleep(800 * time.Millisecond)
	_ = matrix.Animate(m.transport, false)
	_ = matrix.Clear(m.transport)
}
