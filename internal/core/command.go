package core

// CommandType names an agent operation.
type CommandType string

const (
	CmdSetBrightness  CommandType = "setBrightness"
	CmdClear          CommandType = "clear"
	CmdIdentify       CommandType = "identify"
	CmdDrawPattern    CommandType = "drawPattern"
	CmdShowPercentage CommandType = "showPercentage"
	CmdShowText       CommandType = "showText"
	CmdSetAnimate     CommandType = "setAnimate"
	CmdRunPattern     CommandType = "runPattern"
	CmdExecuteLua     CommandType = "executeLua"
	CmdStopPattern    CommandType = "stopPattern"
	CmdPlayPreset     CommandType = "playPreset"
	CmdStopPreset     CommandType = "stopPreset"
	CmdPauseMonitor   CommandType = "pauseMonitor"
	CmdResumeMonitor  CommandType = "resumeMonitor"
	CmdAddSchedule    CommandType = "addSchedule"
	CmdRemoveSchedule CommandType = "removeSchedule"
	CmdGetPatternCode CommandType = "getPatternCode"
	CmdSavePattern    CommandType = "savePatternCode"
	CmdDeletePattern  CommandType = "deletePattern"
)

// Command is a request for the agent to do something, with a free-form
// payload whose keys depend on the type.
type Command struct {
	Type    CommandType
	Payload map[string]interface{}
}

// CommandChannel carries commands to the agent's dispatch loop. Every
// control surface feeds this one channel.
type CommandChannel chan Command
