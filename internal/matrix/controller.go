package matrix

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
)

// request travels through the controller's command queue. Fire-and-forget
// writes carry a nil reply channel; queries wait on reply.
type request struct {
	payload []byte
	reply   chan response
}

type response struct {
	data []byte
	err  error
}

// ErrNotConnected is returned by queries while the module is unreachable.
var ErrNotConnected = errors.New("matrix: device not connected")

// Controller manages the serial connection to one module and serializes all
// commands through a single writer goroutine.
type Controller struct {
	info     DeviceInfo
	eventBus *core.EventBus

	cmdChan chan request

	// disconnectChan signals the connection loop that the link died.
	// Created once; buffered so the writer never blocks on it.
	disconnectChan chan struct{}

	baudRate        int
	retryDelay      time.Duration
	responseTimeout time.Duration
	limiter         *rate.Limiter
	opener          PortOpener

	dev *Device
}

// NewController creates a controller for one discovered module. Run must be
// started for commands to flow.
func NewController(info DeviceInfo, eb *core.EventBus, baudRate int, retryDelay, responseTimeout time.Duration, rateLimit float64, rateBurst int, opener PortOpener) *Controller {
	if rateBurst <= 0 {
		rateBurst = 1
	}
	return &Controller{
		info:            info,
		eventBus:        eb,
		cmdChan:         make(chan request, rateBurst*2),
		disconnectChan:  make(chan struct{}, 1),
		baudRate:        baudRate,
		retryDelay:      retryDelay,
		responseTimeout: responseTimeout,
		limiter:         rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		opener:          opener,
	}
}

// Info returns the discovery metadata for the controlled module.
func (c *Controller) Info() DeviceInfo { return c.info }

// Write queues a fire-and-forget command.
func (c *Controller) Write(payload []byte) {
	select {
	case c.cmdChan <- request{payload: payload}:
	default:
		log.Printf("[Matrix %s] Warning: command queue full, dropping command: %x", c.info.Port, payload)
	}
}

// Query queues a command that expects a response and waits for the reply.
func (c *Controller) Query(payload []byte) ([]byte, error) {
	reply := make(chan response, 1)
	select {
	case c.cmdChan <- request{payload: payload, reply: reply}:
	default:
		return nil, errors.New("matrix: command queue full")
	}

	timeout := c.responseTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	select {
	case res := <-reply:
		return res.data, res.err
	case <-time.After(timeout + time.Second):
		return nil, errors.New("matrix: query timed out")
	}
}

// signalDisconnect wakes the reconnect loop; duplicate signals are
// coalesced by the buffered channel.
func (c *Controller) signalDisconnect() {
	select {
	case c.disconnectChan <- struct{}{}:
	default:
		// A signal is already pending; that is fine.
	}
}

// Run owns the connection lifecycle: open, serve the command queue, and on
// failure reconnect after the retry delay. Blocks until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Printf("[Matrix %s] Controller shutting down.", c.info.Port)
			return
		default:
		}

		dev, err := Open(c.info, c.baudRate, c.responseTimeout, c.opener)
		if err != nil {
			log.Printf("[Matrix %s] Connect failed: %v", c.info.Port, err)
			c.publishConnection(false)
			if !c.sleepOrDone(ctx) {
				return
			}
			continue
		}
		c.dev = dev

		// Drain any stale disconnect signal before serving.
		select {
		case <-c.disconnectChan:
		default:
		}

		log.Printf("[Matrix %s] Connected (%s).", c.info.Port, c.info.Abbrev())
		c.publishConnection(true)

		c.serve(ctx)

		c.dev = nil
		_ = dev.Close()
		c.publishConnection(false)

		select {
		case <-ctx.Done():
			return
		default:
		}
		if !c.sleepOrDone(ctx) {
			return
		}
	}
}

// serve pumps the command queue until disconnect or shutdown.
func (c *Controller) serve(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.disconnectChan:
			log.Printf("[Matrix %s] Disconnection signal received. Resetting connection...", c.info.Port)
			return
		case req := <-c.cmdChan:
			if err := c.limiter.Wait(ctx); err != nil {
				return
			}
			if req.reply != nil {
				data, err := c.dev.Request(req.payload)
				req.reply <- response{data: data, err: err}
				if err != nil {
					log.Printf("[Matrix %s] Query failed (assuming disconnected): %v", c.info.Port, err)
					c.signalDisconnect()
				}
				continue
			}
			if err := c.dev.Send(req.payload); err != nil {
				log.Printf("[Matrix %s] Write failed (assuming disconnected): %v", c.info.Port, err)
				c.signalDisconnect()
			}
		}
	}
}

func (c *Controller) sleepOrDone(ctx context.Context) bool {
	delay := c.retryDelay
	if delay <= 0 {
		delay = 5 * time.Second
	}
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) publishConnection(connected bool) {
	if c.eventBus == nil {
		return
	}
	evType := core.DeviceDisconnectedEvent
	if connected {
		evType = core.DeviceConnectedEvent
	}
	c.eventBus.Publish(core.Event{
		Type: evType,
		Payload: map[string]interface{}{
			"port":      c.info.Port,
			"abbrev":    c.info.Abbrev(),
			"connected": connected,
		},
	})
}
