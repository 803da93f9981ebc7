// Package lua provides a Lua scripting engine for animating the LED
// matrix with user-written pattern scripts.
package lua

import (
	"context"
	"log"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"

	lua "github.com/yuin/gopher-lua"
)

// stopTimeout bounds how long the worker waits for a cancelled script to
// unwind before moving on.
const stopTimeout = 2 * time.Second

// job is one script to run: a name for events and logging, plus the loader
// that feeds the code into a fresh Lua state. A nil job means "stop".
type job struct {
	name string
	load func(*lua.LState) error
}

// Engine runs Lua pattern scripts against the matrix. A single worker
// goroutine owns script execution, so at most one pattern is live and a
// new job preempts the previous one.
type Engine struct {
	transport   matrix.Transport
	patternsDir string
	eventBus    *core.EventBus

	jobs chan *job
}

func NewEngine(transport matrix.Transport, patternsDir string, eb *core.EventBus) *Engine {
	e := &Engine{
		transport:   transport,
		patternsDir: patternsDir,
		eventBus:    eb,
		jobs:        make(chan *job, 10),
	}
	go e.worker()
	return e
}

// RunPattern queues a pattern file for execution, preempting whatever is
// currently running.
func (e *Engine) RunPattern(name string) {
	path, err := e.GetPatternPath(name)
	if err != nil {
		log.Printf("[Lua] Cannot run pattern '%s': %v", name, err)
		return
	}
	e.jobs <- &job{name: name, load: func(L *lua.LState) error { return L.DoFile(path) }}
}

// ExecuteString queues a one-off chunk of Lua code.
func (e *Engine) ExecuteString(code string) {
	e.jobs <- &job{name: "inline chunk", load: func(L *lua.LState) error { return L.DoString(code) }}
}

// StopCurrentPattern cancels the running script if any.
func (e *Engine) StopCurrentPattern() {
	select {
	case e.jobs <- nil:
	default:
		log.Println("[Lua] Job queue full, stop request dropped")
	}
}

func (e *Engine) worker() {
	var cancel context.CancelFunc
	var done chan struct{}

	stopCurrent := func() {
		if cancel == nil {
			return
		}
		cancel()
		select {
		case <-done:
		case <-time.After(stopTimeout):
			log.Println("[Lua] Timeout waiting for script to stop")
		}
		cancel, done = nil, nil
	}

	for j := range e.jobs {
		stopCurrent()
		if j == nil {
			continue
		}

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan struct{})
		go e.run(ctx, j, done)
	}
}

// run executes one script in a fresh Lua state and publishes the pattern
// lifecycle around it.
func (e *Engine) run(ctx context.Context, j *job, done chan struct{}) {
	defer close(done)

	log.Printf("[Lua] Starting pattern '%s'", j.name)
	e.announce(j.name)
	defer func() {
		log.Printf("[Lua] Pattern '%s' finished", j.name)
		e.announce("")
	}()

	L := lua.NewState()
	defer L.Close()
	L.SetContext(ctx)
	e.registerGoFunctions(L, ctx)

	if err := j.load(L); err != nil {
		if ctx.Err() == context.Canceled {
			log.Printf("[Lua] Pattern '%s' cancelled", j.name)
		} else {
			log.Printf("[Lua] Pattern '%s' failed: %v", j.name, err)
		}
	}
}

func (e *Engine) announce(running string) {
	if e.eventBus == nil {
		return
	}
	e.eventBus.Publish(core.Event{
		Type:    core.PatternChangedEvent,
		Payload: map[string]interface{}{"running": running},
	})
}
