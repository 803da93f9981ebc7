package agent

import (
	"encoding/json"
	"log"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/server"
)

// wsCommands maps WebSocket command names to agent command types.
var wsCommands = map[string]core.CommandType{
	"setBrightness":   core.CmdSetBrightness,
	"clear":           core.CmdClear,
	"identify":        core.CmdIdentify,
	"drawPattern":     core.CmdDrawPattern,
	"showPercentage":  core.CmdShowPercentage,
	"showText":        core.CmdShowText,
	"setAnimate":      core.CmdSetAnimate,
	"runPattern":      core.CmdRunPattern,
	"executeLua":      core.CmdExecuteLua,
	"stopPattern":     core.CmdStopPattern,
	"playPreset":      core.CmdPlayPreset,
	"stopPreset":      core.CmdStopPreset,
	"pauseMonitor":    core.CmdPauseMonitor,
	"resumeMonitor":   core.CmdResumeMonitor,
	"addSchedule":     core.CmdAddSchedule,
	"removeSchedule":  core.CmdRemoveSchedule,
	"getPatternCode":  core.CmdGetPatternCode,
	"savePatternCode": core.CmdSavePattern,
	"deletePattern":   core.CmdDeletePattern,
}

// CommandHandler turns incoming WebSocket messages into agent commands.
// All execution happens on the orchestrator loop, so the WebSocket reader
// never touches the hardware directly.
type CommandHandler struct {
	commandChannel core.CommandChannel
}

func NewCommandHandler(cmdChan core.CommandChannel) *CommandHandler {
	return &CommandHandler{commandChannel: cmdChan}
}

func (h *CommandHandler) Handle(raw []byte) {
	var cmd server.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		log.Printf("[Agent] Error unmarshalling command: %v", err)
		return
	}

	cmdType, ok := wsCommands[cmd.Type]
	if !ok {
		log.Printf("[Agent] Unknown command type: %s", cmd.Type)
		return
	}
	payload := cmd.Payload
	if payload == nil {
		payload = map[string]interface{}{}
	}

	select {
	case h.commandChannel <- core.Command{Type: cmdType, Payload: payload}:
	default:
		log.Printf("[Agent] Command channel full, dropping %s", cmd.Type)
	}
}
