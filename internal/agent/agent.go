// Package agent wires the whole daemon together: device discovery, the
// battery monitor, scripting, scheduling and the remote interfaces.
package agent

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/battery"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/lua"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/monitor"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/mqtt"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/preset"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/scheduler"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/server"
)

type Agent struct {
	ctx    context.Context
	cancel context.CancelFunc
	config *config.Config
	wg     sync.WaitGroup

	state          *core.State
	eventBus       *core.EventBus
	commandChannel core.CommandChannel

	group        *matrix.Group
	luaEngine    *lua.Engine
	presetPlayer *preset.Player
	scheduler    *scheduler.Scheduler
	monitor      *monitor.Monitor
	poller       *battery.Poller
	server       *server.Server
	mqttClient   *mqtt.Client

	// The monitor stops before the controllers so its goodbye animation
	// still reaches the hardware.
	monitorCancel context.CancelFunc
	monitorDone   chan struct{}
}

func NewAgent(cfg *config.Config) (*Agent, error) {
	ctx, cancel := context.WithCancel(context.Background())

	a := &Agent{
		ctx:            ctx,
		cancel:         cancel,
		config:         cfg,
		state:          core.NewState(),
		eventBus:       core.NewEventBus(),
		commandChannel: make(core.CommandChannel, 20),
	}
	a.state.SetBrightness(cfg.Brightness)

	infos, err := matrix.Discover(cfg.Devices, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("device discovery failed: %w", err)
	}
	if len(infos) == 0 {
		cancel()
		return nil, fmt.Errorf("no LED matrix modules found")
	}

	retryDelay, _ := time.ParseDuration(cfg.Serial.RetryDelay)
	responseTimeout, _ := time.ParseDuration(cfg.Serial.ResponseTimeout)

	var controllers []*matrix.Controller
	for _, info := range infos {
		log.Printf("[Agent] Found matrix module %s on %s", info.Abbrev(), info.Port)
		controllers = append(controllers, matrix.NewController(
			info,
			a.eventBus,
			cfg.Serial.BaudRate,
			retryDelay,
			responseTimeout,
			cfg.Serial.RateLimit,
			cfg.Serial.RateBurst,
			nil,
		))
	}
	a.group = matrix.NewGroup(controllers...)

	a.luaEngine = lua.NewEngine(a.group, cfg.PatternsDir, a.eventBus)
	a.presetPlayer = preset.NewPlayer(cfg.PresetsDir, a.group, a.eventBus, a.state)
	a.scheduler = scheduler.NewScheduler(a.commandChannel, cfg.SchedulesFile)

	// Disabled sound notifications keep the notifier but feed it no files.
	sounds := cfg.Sounds
	if !cfg.SoundNotifications {
		sounds = config.SoundConfig{}
	}
	a.monitor = monitor.New(a.group, a.eventBus, a.state, monitor.NewNotifier(), cfg.Animations, sounds)

	a.poller = battery.NewPoller(
		battery.SystemProvider(),
		a.eventBus,
		a.state,
		time.Duration(cfg.CheckInterval)*time.Second,
	)

	if cfg.Server.Enabled {
		a.server = server.NewServer(
			a.luaEngine,
			a.state.Clone,
			a.scheduler.GetAll,
			a.presetList,
			cfg.Server.Port,
			cfg.Server.WebFilesDir,
			cfg.Server.AllowedOrigins,
		)
		a.server.SetHandler(NewCommandHandler(a.commandChannel))
	}

	a.mqttClient = mqtt.NewClient(cfg, a.commandChannel, a.luaEngine, a.state.Clone)

	return a, nil
}

func (a *Agent) presetList() []string {
	names, err := preset.List(a.config.PresetsDir)
	if err != nil {
		log.Printf("[Agent] Failed to list presets: %v", err)
	}
	return names
}

// Run starts the agent orchestration loop and blocks until Shutdown.
func (a *Agent) Run() {
	go a.listenEvents()

	if a.mqttClient != nil {
		go func() {
			if err := a.mqttClient.Connect(); err != nil {
				log.Printf("[Agent] MQTT setup error: %v", err)
			}
		}()
	}

	for _, c := range a.group.Controllers() {
		c := c
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			c.Run(a.ctx)
		}()
	}

	monitorCtx, monitorCancel := context.WithCancel(context.Background())
	a.monitorCancel = monitorCancel
	a.monitorDone = make(chan struct{})
	go func() {
		defer close(a.monitorDone)
		a.monitor.Run(monitorCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.poller.Run(a.ctx)
	}()

	a.scheduler.Start()

	if a.server != nil {
		log.Printf("[Agent] Web interface on http://localhost:%s", a.config.Server.Port)
		go func() {
			if err := a.server.ListenAndServe(); err != nil {
				log.Printf("[Agent] Server error: %v", err)
			}
		}()
	}

	log.Println("[Agent] Orchestrator ready")
	for {
		select {
		case <-a.ctx.Done():
			log.Println("[Agent] Orchestrator shutting down...")
			return
		case cmd := <-a.commandChannel:
			a.handleCommand(cmd)
		}
	}
}

func (a *Agent) listenEvents() {
	sub := a.eventBus.Subscribe(
		core.DeviceConnectedEvent,
		core.DeviceDisconnectedEvent,
		core.PatternChangedEvent,
		core.PresetChangedEvent,
		core.BatteryChangedEvent,
	)

	for {
		select {
		case <-a.ctx.Done():
			return
		case event := <-sub:
			a.handleEvent(event)
		}
	}
}

func (a *Agent) handleEvent(event core.Event) {
	payload, _ := event.Payload.(map[string]interface{})

	switch event.Type {
	case core.DeviceConnectedEvent:
		port, _ := payload["port"].(string)
		a.state.SetPortConnected(port, true)
		a.broadcast("device_list", a.state.Clone().ConnectedPorts)

		// A module that just (re)connected lost its volatile settings.
		log.Printf("[Agent] Module on %s connected, restoring state", port)
		st := a.state.Clone()
		_ = matrix.SetBrightness(a.group, st.Brightness)
		if st.RunningPattern != "" {
			log.Printf("[Agent] Resuming pattern: %s", st.RunningPattern)
			a.luaEngine.RunPattern(st.RunningPattern)
		}

	case core.DeviceDisconnectedEvent:
		port, _ := payload["port"].(string)
		a.state.SetPortConnected(port, false)
		a.broadcast("device_list", a.state.Clone().ConnectedPorts)

	case core.PatternChangedEvent:
		pattern, _ := payload["running"].(string)
		a.state.SetRunningPattern(pattern)
		a.broadcast("pattern_status", map[string]string{"running": pattern})
		if a.mqttClient != nil {
			a.mqttClient.Publish("pattern/state", pattern, true)
		}

	case core.PresetChangedEvent:
		name, _ := payload["preset"].(string)
		running, _ := payload["running"].(bool)
		if !running {
			name = ""
		}
		a.broadcast("preset_status", map[string]string{"running": name})

	case core.BatteryChangedEvent:
		percent, _ := payload["percent"].(float64)
		plugged, _ := payload["plugged"].(bool)
		a.broadcast("battery_state", map[string]interface{}{
			"percent": percent,
			"plugged": plugged,
		})
		if a.mqttClient != nil {
			a.mqttClient.PublishBattery(percent, plugged)
		}
	}
}

func (a *Agent) broadcast(msgType string, payload interface{}) {
	if a.server != nil && a.server.Hub != nil {
		a.server.Hub.Broadcast(server.NewMessage(msgType, payload))
	}
}

func (a *Agent) Shutdown() {
	a.scheduler.Stop()
	if a.server != nil {
		_ = a.server.Shutdown(context.Background())
	}
	if a.mqttClient != nil {
		a.mqttClient.Disconnect()
	}
	a.luaEngine.StopCurrentPattern()
	a.presetPlayer.Stop()
	// Let the monitor wave goodbye while the controllers still run.
	if a.monitorCancel != nil {
		a.monitorCancel()
		select {
		case <-a.monitorDone:
		case <-time.After(3 * time.Second):
			log.Println("[Agent] Timed out waiting for monitor shutdown")
		}
	}
	a.cancel()
	a.wg.Wait()
}
