package agent

import (
	"log"
	"strconv"
	"time"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/matrix"
)

// payloadInt reads a numeric payload field. JSON decoding produces
// float64, internal senders use int; both are accepted.
func payloadInt(payload map[string]interface{}, key string, fallback int) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func payloadString(payload map[string]interface{}, key string) string {
	s, _ := payload[key].(string)
	return s
}

func (a *Agent) handleCommand(cmd core.Command) {
	log.Printf("[Agent] Handling command: %s with payload: %v", cmd.Type, cmd.Payload)

	switch cmd.Type {
	case core.CmdSetBrightness:
		val := payloadInt(cmd.Payload, "value", a.config.Brightness)
		val = matrix.ClampPercent(val)
		if err := matrix.SetBrightness(a.group, val); err != nil {
			log.Printf("[Agent] Failed to set brightness: %v", err)
			return
		}
		a.state.SetBrightness(val)
		a.eventBus.Publish(core.Event{Type: core.BrightnessChangedEvent, Payload: map[string]interface{}{"value": val}})
		a.broadcast("brightness_update", map[string]int{"value": val})
		if a.mqttClient != nil {
			a.mqttClient.Publish("brightness/state", val, true)
		}

	case core.CmdClear:
		a.stopVisuals()
		if err := matrix.Clear(a.group); err != nil {
			log.Printf("[Agent] Failed to clear: %v", err)
		}

	case core.CmdIdentify:
		duration := time.Duration(payloadInt(cmd.Payload, "seconds", 6)) * time.Second
		cycles := payloadInt(cmd.Payload, "cycles", 3)
		a.stopVisuals()
		for _, c := range a.group.Controllers() {
			c := c
			go func() {
				if err := matrix.Identify(a.ctx, c, c.Info(), duration, cycles); err != nil {
					log.Printf("[Agent] Identify on %s failed: %v", c.Info().Port, err)
				}
			}()
		}

	case core.CmdDrawPattern:
		name := payloadString(cmd.Payload, "name")
		a.stopVisuals()
		if err := matrix.DrawPattern(a.group, name); err != nil {
			log.Printf("[Agent] Failed to draw pattern '%s': %v", name, err)
		}

	case core.CmdShowPercentage:
		val := payloadInt(cmd.Payload, "value", 0)
		a.stopVisuals()
		if err := matrix.ShowPercentage(a.group, val); err != nil {
			log.Printf("[Agent] Failed to show percentage: %v", err)
		}

	case core.CmdShowText:
		text := payloadString(cmd.Payload, "text")
		a.stopVisuals()
		if err := matrix.ShowString(a.group, text); err != nil {
			log.Printf("[Agent] Failed to show text: %v", err)
		}

	case core.CmdSetAnimate:
		on, _ := cmd.Payload["on"].(bool)
		if err := matrix.Animate(a.group, on); err != nil {
			log.Printf("[Agent] Failed to set animate: %v", err)
		}

	case core.CmdRunPattern:
		name := payloadString(cmd.Payload, "name")
		a.presetPlayer.Stop()
		a.luaEngine.RunPattern(name)

	case core.CmdExecuteLua:
		code := payloadString(cmd.Payload, "code")
		if code != "" {
			a.presetPlayer.Stop()
			a.luaEngine.ExecuteString(code)
		}

	case core.CmdStopPattern:
		a.luaEngine.StopCurrentPattern()

	case core.CmdPlayPreset:
		name := payloadString(cmd.Payload, "name")
		a.luaEngine.StopCurrentPattern()
		if err := a.presetPlayer.Play(name); err != nil {
			log.Printf("[Agent] Failed to play preset '%s': %v", name, err)
		}

	case core.CmdStopPreset:
		a.presetPlayer.Stop()

	case core.CmdPauseMonitor:
		a.state.SetMonitorPaused(true)
		a.broadcast("monitor_status", map[string]bool{"paused": true})
		log.Println("[Agent] Battery monitor paused")

	case core.CmdResumeMonitor:
		a.state.SetMonitorPaused(false)
		a.broadcast("monitor_status", map[string]bool{"paused": false})
		log.Println("[Agent] Battery monitor resumed")

	case core.CmdAddSchedule:
		spec := payloadString(cmd.Payload, "spec")
		command := payloadString(cmd.Payload, "command")
		a.scheduler.Add(spec, command)
		a.broadcast("schedule_list", a.scheduler.GetAll())

	case core.CmdRemoveSchedule:
		id := payloadInt(cmd.Payload, "id", -1)
		if id < 0 {
			return
		}
		a.scheduler.Remove(id)
		a.broadcast("schedule_list", a.scheduler.GetAll())

	case core.CmdGetPatternCode:
		name := payloadString(cmd.Payload, "name")
		content, err := a.luaEngine.GetPatternCode(name)
		if err != nil {
			log.Printf("[Agent] Error getting pattern code: %v", err)
			return
		}
		a.broadcast("pattern_code", map[string]string{"name": name, "code": content})

	case core.CmdSavePattern:
		name := payloadString(cmd.Payload, "name")
		code := payloadString(cmd.Payload, "code")
		if name == "" {
			return
		}
		if err := a.luaEngine.SavePatternCode(name, code); err != nil {
			log.Printf("[Agent] Error saving pattern: %v", err)
			return
		}
		patterns, _ := a.luaEngine.GetPatternList()
		a.broadcast("pattern_list", patterns)

	case core.CmdDeletePattern:
		name := payloadString(cmd.Payload, "name")
		if err := a.luaEngine.DeletePattern(name); err != nil {
			log.Printf("[Agent] Error deleting pattern '%s': %v", name, err)
			return
		}
		patterns, _ := a.luaEngine.GetPatternList()
		a.broadcast("pattern_list", patterns)

	default:
		log.Printf("[Agent] Unknown command type: %s", cmd.Type)
	}
}

// stopVisuals halts whatever currently owns the display so a one-shot
// draw is not immediately overwritten.
func (a *Agent) stopVisuals() {
	a.luaEngine.StopCurrentPattern()
	a.presetPlayer.Stop()
}
