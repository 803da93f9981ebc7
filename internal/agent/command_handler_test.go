package agent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
)

func handleRaw(t *testing.T, raw string) (core.CommandChannel, *CommandHandler) {
	t.Helper()
	ch := make(core.CommandChannel, 5)
	h := NewCommandHandler(ch)
	h.Handle([]byte(raw))
	return ch, h
}

func recvCommand(t *testing.T, ch core.CommandChannel) core.Command {
	t.Helper()
	select {
	case cmd := <-ch:
		return cmd
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command")
		return core.Command{}
	}
}

func TestHandleTranslatesKnownCommands(t *testing.T) {
	ch, _ := handleRaw(t, `{"type": "setBrightness", "payload": {"value": 42}}`)
	cmd := recvCommand(t, ch)
	assert.Equal(t, core.CmdSetBrightness, cmd.Type)
	assert.Equal(t, 42.0, cmd.Payload["value"])
}

func TestHandleTranslatesExecuteLua(t *testing.T) {
	ch, _ := handleRaw(t, `{"type": "executeLua", "payload": {"code": "clear()"}}`)
	cmd := recvCommand(t, ch)
	assert.Equal(t, core.CmdExecuteLua, cmd.Type)
	assert.Equal(t, "clear()", cmd.Payload["code"])
}

func TestHandleDefaultsMissingPayload(t *testing.T) {
	ch, _ := handleRaw(t, `{"type": "clear"}`)
	cmd := recvCommand(t, ch)
	assert.Equal(t, core.CmdClear, cmd.Type)
	require.NotNil(t, cmd.Payload)
}

func TestHandleIgnoresUnknownCommand(t *testing.T) {
	ch, _ := handleRaw(t, `{"type": "selfDestruct"}`)
	select {
	case cmd := <-ch:
		t.Fatalf("unexpected command: %v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleIgnoresMalformedJSON(t *testing.T) {
	ch, _ := handleRaw(t, `{"type": `)
	select {
	case cmd := <-ch:
		t.Fatalf("unexpected command: %v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandleDropsWhenChannelFull(t *testing.T) {
	ch := make(core.CommandChannel, 1)
	h := NewCommandHandler(ch)
	h.Handle([]byte(`{"type": "clear"}`))
	// The channel is full now; this must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Handle([]byte(`{"type": "clear"}`))
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked on a full command channel")
	}
	assert.Len(t, ch, 1)
}

func TestPayloadHelpers(t *testing.T) {
	p := map[string]interface{}{
		"float":  42.0,
		"int":    7,
		"numstr": "13",
		"name":   "wave",
	}
	assert.Equal(t, 42, payloadInt(p, "float", -1))
	assert.Equal(t, 7, payloadInt(p, "int", -1))
	assert.Equal(t, 13, payloadInt(p, "numstr", -1))
	assert.Equal(t, -1, payloadInt(p, "missing", -1))
	assert.Equal(t, "wave", payloadString(p, "name"))
	assert.Equal(t, "", payloadString(p, "missing"))
}
