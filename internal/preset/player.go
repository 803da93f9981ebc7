package preset

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/display"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"
)

// Player runs preset animations against a matrix transport. Only one
// preset plays at a time; starting a new one stops the current one.
type Player struct {
	dir       string
	transport matrix.Transport
	eventBus  *core.EventBus
	state     *core.State

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPlayer(dir string, transport matrix.Transport, eventBus *core.EventBus, state *core.State) *Player {
	return &Player{
		dir:       dir,
		transport: transport,
		eventBus:  eventBus,
		state:     state,
	}
}

// Play loads the named preset and starts playing it, replacing any preset
// already running.
func (p *Player) Play(name string) error {
	path, err := Path(p.dir, name)
	if err != nil {
		return err
	}
	pre, err := Load(path)
	if err != nil {
		return err
	}

	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	p.state.SetRunningPreset(pre.Name)
	p.publish(pre.Name, true)
	log.Printf("[Preset] Playing '%s' (%d frames, loop: %v)", pre.Name, len(pre.Frames), pre.Loop)

	go func() {
		defer close(done)
		defer func() {
			p.state.SetRunningPreset("")
			p.publish(pre.Name, false)
		}()
		p.run(ctx, pre)
	}()
	return nil
}

// Stop halts the running preset, if any, and waits for its goroutine to
// finish so the display is not written to afterwards.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Player) run(ctx context.Context, pre *Preset) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	if !timer.Stop() {
		<-timer.C
	}

	for {
		for _, f := range pre.Frames {
			grid, err := display.GridFromCells(f.Grid, display.Width, display.Height)
			if err != nil {
				log.Printf("[Preset] Bad frame in '%s': %v", pre.Name, err)
				return
			}
			if err := matrix.DrawGrid(p.transport, grid); err != nil {
				log.Printf("[Preset] Draw failed: %v", err)
			}

			timer.Reset(f.Duration())
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
		if !pre.Loop {
			return
		}
	}
}

func (p *Player) publish(name string, running bool) {
	p.eventBus.Publish(core.Event{
		Type: core.PresetChangedEvent,
		Payload: map[string]interface{}{
			"preset":  name,
			"running": running,
		},
	})
}
