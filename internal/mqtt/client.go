// Package mqtt bridges the agent to an MQTT broker, including Home
// Assistant discovery so the battery and matrix show up automatically.
package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/config"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/lua"

	paho "github.com/eclipse/paho.mqtt.golang"
)

type Client struct {
	client    paho.Client
	cfg       *config.Config
	cmdChan   core.CommandChannel
	luaEngine *lua.Engine
	getState  func() core.State
	prefix    string
}

// NewClient builds a broker client with retrying connect and a last-will
// availability topic. Returns nil when MQTT is disabled in the config.
func NewClient(cfg *config.Config, cmdChan core.CommandChannel, le *lua.Engine, getState func() core.State) *Client {
	if !cfg.MQTT.Enabled {
		return nil
	}

	prefix := strings.TrimSuffix(cfg.MQTT.TopicPrefix, "/")

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)
	opts.SetClientID(cfg.MQTT.ClientID)
	opts.SetUsername(cfg.MQTT.Username)
	opts.SetPassword(cfg.MQTT.Password)

	opts.SetKeepAlive(10 * time.Second)
	opts.SetPingTimeout(5 * time.Second)

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(1 * time.Minute)

	// Keep trying at startup even if the broker is not up yet.
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	opts.SetOrderMatters(false)

	opts.SetWill(prefix+"/availability", "offline", 1, true)

	c := &Client{
		cfg:       cfg,
		cmdChan:   cmdChan,
		luaEngine: le,
		getState:  getState,
		prefix:    prefix,
	}

	opts.SetOnConnectHandler(c.onConnect)

	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		log.Printf("[MQTT] Connection lost: %v. Retrying in background...", err)
	})

	opts.SetReconnectingHandler(func(client paho.Client, options *paho.ClientOptions) {
		log.Println("[MQTT] Attempting to reconnect...")
	})

	c.client = paho.NewClient(opts)

	return c
}

// Connect initiates the connection.
func (c *Client) Connect() error {
	if c.client == nil {
		return nil
	}
	log.Printf("[MQTT] Starting connection loop to %s...", c.cfg.MQTT.Broker)

	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		log.Printf("[MQTT] Initial connection error: %v", token.Error())
		return token.Error()
	}

	return nil
}

// Disconnect publishes the offline status before closing the socket.
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		log.Println("[MQTT] Disconnecting...")

		token := c.client.Publish(c.prefix+"/availability", 0, true, "offline")
		if token.WaitTimeout(2 * time.Second) {
			if token.Error() != nil {
				log.Printf("[MQTT] Warning: failed to publish offline status: %v", token.Error())
			}
		} else {
			log.Println("[MQTT] Warning: timed out publishing offline status")
		}

		c.client.Disconnect(250)
		log.Println("[MQTT] Disconnected")
	}
}

func (c *Client) Publish(subtopic string, payload interface{}, retained bool) {
	if c.client == nil || !c.client.IsConnected() {
		return
	}

	topic := fmt.Sprintf("%s/%s", c.prefix, subtopic)
	msg := fmt.Sprintf("%v", payload)

	token := c.client.Publish(topic, 0, retained, msg)

	// Don't block the caller, but don't leak goroutines either.
	go func() {
		if token.WaitTimeout(5 * time.Second) {
			if token.Error() != nil {
				log.Printf("[MQTT] Publish error to %s: %v", topic, token.Error())
			}
		} else {
			log.Printf("[MQTT] Timeout publishing to %s", topic)
		}
	}()
}

// PublishBattery pushes the current battery reading to the state topics.
func (c *Client) PublishBattery(percent float64, plugged bool) {
	c.Publish("battery/percent", fmt.Sprintf("%.0f", percent), true)
	if plugged {
		c.Publish("battery/plugged", "ON", true)
	} else {
		c.Publish("battery/plugged", "OFF", true)
	}
}

// onConnect is invoked by Paho on its internal event goroutine.
func (c *Client) onConnect(client paho.Client) {
	log.Println("[MQTT] Connected to broker")

	topics := map[string]paho.MessageHandler{
		"brightness/set": c.handleBrightness,
		"pattern/run":    c.handlePatternRun,
		"pattern/stop":   c.handlePatternStop,
		"preset/play":    c.handlePresetPlay,
		"preset/stop":    c.handlePresetStop,
		"clear":          c.handleClear,
		"monitor/set":    c.handleMonitor,
	}

	for sub, handler := range topics {
		topic := fmt.Sprintf("%s/%s", c.prefix, sub)
		if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
			log.Printf("[MQTT] Error subscribing to %s: %v", topic, token.Error())
		} else {
			log.Printf("[MQTT] Subscribed to %s", topic)
		}
	}

	// Discovery has a settling sleep, keep it off the connect path.
	go func() {
		c.Publish("availability", "online", true)
		if c.cfg.MQTT.HADiscoveryEnabled {
			c.PublishHADiscovery()
		}
		if c.getState != nil {
			st := c.getState()
			if st.BatteryChecked {
				c.PublishBattery(st.BatteryPercent, st.PowerPlugged)
			}
			c.Publish("brightness/state", st.Brightness, true)
		}
	}()
}

// PublishHADiscovery announces the battery sensors and the matrix light
// entity to Home Assistant.
func (c *Client) PublishHADiscovery() {
	// Give the subscriptions a moment to settle.
	time.Sleep(1 * time.Second)

	patterns, err := c.luaEngine.GetPatternList()
	if err != nil {
		log.Printf("[MQTT] Warning: Could not get patterns for HA discovery: %v", err)
		patterns = []string{}
	}

	safeID := strings.ReplaceAll(c.cfg.MQTT.ClientID, " ", "_")
	safeID = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return -1
	}, safeID)

	availability := []map[string]string{
		{
			"topic":                 fmt.Sprintf("%s/availability", c.prefix),
			"payload_available":     "online",
			"payload_not_available": "offline",
		},
	}
	device := map[string]interface{}{
		"identifiers":  []string{safeID},
		"name":         "LED Matrix Battery Monitor",
		"manufacturer": "Inspyre Softworks",
		"model":        "Framework LED Matrix Agent",
	}

	entities := []struct {
		component string
		object    string
		payload   map[string]interface{}
	}{
		{
			component: "sensor",
			object:    "battery",
			payload: map[string]interface{}{
				"name":                "Battery",
				"unique_id":           safeID + "_battery",
				"device_class":        "battery",
				"unit_of_measurement": "%",
				"state_topic":         fmt.Sprintf("%s/battery/percent", c.prefix),
			},
		},
		{
			component: "binary_sensor",
			object:    "plugged",
			payload: map[string]interface{}{
				"name":         "Power Plugged",
				"unique_id":    safeID + "_plugged",
				"device_class": "plug",
				"state_topic":  fmt.Sprintf("%s/battery/plugged", c.prefix),
			},
		},
		{
			component: "light",
			object:    "matrix",
			payload: map[string]interface{}{
				"name":      "Matrix",
				"unique_id": safeID + "_matrix",
				"icon":      "mdi:dots-grid",

				"command_topic": fmt.Sprintf("%s/clear", c.prefix),
				"state_topic":   fmt.Sprintf("%s/matrix/state", c.prefix),

				"brightness_command_topic": fmt.Sprintf("%s/brightness/set", c.prefix),
				"brightness_state_topic":   fmt.Sprintf("%s/brightness/state", c.prefix),
				"brightness_scale":         100,

				"effect_command_topic": fmt.Sprintf("%s/pattern/run", c.prefix),
				"effect_state_topic":   fmt.Sprintf("%s/pattern/state", c.prefix),
				"effect_list":          patterns,
			},
		},
	}

	for _, e := range entities {
		e.payload["availability_mode"] = "all"
		e.payload["availability"] = availability
		e.payload["device"] = device

		topic := fmt.Sprintf("%s/%s/%s/%s/config", c.cfg.MQTT.HADiscoveryPrefix, e.component, safeID, e.object)
		jsonPayload, _ := json.Marshal(e.payload)
		c.client.Publish(topic, 0, true, jsonPayload)
		log.Printf("[MQTT] HA Discovery sent to %s", topic)
	}
}

// --- Handlers ---

func (c *Client) handleBrightness(client paho.Client, msg paho.Message) {
	val, err := strconv.Atoi(string(msg.Payload()))
	if err != nil {
		return
	}
	c.cmdChan <- core.Command{Type: core.CmdSetBrightness, Payload: map[string]interface{}{"value": val}}
}

func (c *Client) handlePatternRun(client paho.Client, msg paho.Message) {
	name := string(msg.Payload())
	c.cmdChan <- core.Command{Type: core.CmdRunPattern, Payload: map[string]interface{}{"name": name}}
}

func (c *Client) handlePatternStop(client paho.Client, msg paho.Message) {
	c.cmdChan <- core.Command{Type: core.CmdStopPattern, Payload: map[string]interface{}{}}
}

func (c *Client) handlePresetPlay(client paho.Client, msg paho.Message) {
	name := string(msg.Payload())
	c.cmdChan <- core.Command{Type: core.CmdPlayPreset, Payload: map[string]interface{}{"name": name}}
}

func (c *Client) handlePresetStop(client paho.Client, msg paho.Message) {
	c.cmdChan <- core.Command{Type: core.CmdStopPreset, Payload: map[string]interface{}{}}
}

func (c *Client) handleClear(client paho.Client, msg paho.Message) {
	c.cmdChan <- core.Command{Type: core.CmdClear, Payload: map[string]interface{}{}}
}

func (c *Client) handleMonitor(client paho.Client, msg paho.Message) {
	switch strings.ToLower(string(msg.Payload())) {
	case "pause":
		c.cmdChan <- core.Command{Type: core.CmdPauseMonitor, Payload: map[string]interface{}{}}
	case "resume":
		c.cmdChan <- core.Command{Type: core.CmdResumeMonitor, Payload: map[string]interface{}{}}
	}
}
