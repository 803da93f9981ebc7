package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
)

func newTestScheduler(t *testing.T) (*Scheduler, core.CommandChannel, string) {
	t.Helper()
	cmdChan := make(core.CommandChannel, 10)
	file := filepath.Join(t.TempDir(), "schedules.json")
	s := NewScheduler(cmdChan, file)
	t.Cleanup(s.Stop)
	return s, cmdChan, file
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

func TestAddAndGetAll(t *testing.T) {
	s, _, _ := newTestScheduler(t)

	s.Add("0 22 * * *", "brightness 10")
	s.Add("0 8 * * *", "brightness 80")

	all := s.GetAll()
	assert.Len(t, all, 2)
}

func TestAddRejectsBadSpec(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.Add("not a cron spec", "clear")
	assert.Empty(t, s.GetAll())
}

func TestRemove(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.Add("0 22 * * *", "clear")

	var id int
	for k := range s.GetAll() {
		id = int(k)
	}
	s.Remove(id)
	assert.Empty(t, s.GetAll())
}

func TestSchedulesPersistAcrossRestart(t *testing.T) {
	cmdChan := make(core.CommandChannel, 10)
	file := filepath.Join(t.TempDir(), "schedules.json")

	s1 := NewScheduler(cmdChan, file)
	s1.Add("0 22 * * *", "brightness 10")
	s1.Stop()

	s2 := NewScheduler(cmdChan, file)
	defer s2.Stop()
	all := s2.GetAll()
	require.Len(t, all, 1)
	for _, entry := range all {
		assert.Equal(t, "0 22 * * *", entry.Spec)
		assert.Equal(t, "brightness 10", entry.Command)
	}
}

func TestExecuteBrightness(t *testing.T) {
	s, cmdChan, _ := newTestScheduler(t)
	s.execute("brightness 25")

	cmd := recvCommand(t, cmdChan)
	assert.Equal(t, core.CmdSetBrightness, cmd.Type)
	assert.Equal(t, 25, cmd.Payload["value"])
}

func TestExecutePattern(t *testing.T) {
	s, cmdChan, _ := newTestScheduler(t)
	s.execute("pattern wave.lua")

	cmd := recvCommand(t, cmdChan)
	assert.Equal(t, core.CmdRunPattern, cmd.Type)
	assert.Equal(t, "wave.lua", cmd.Payload["name"])
}

func TestExecutePreset(t *testing.T) {
	s, cmdChan, _ := newTestScheduler(t)
	s.execute("preset pulse")

	cmd := recvCommand(t, cmdChan)
	assert.Equal(t, core.CmdPlayPreset, cmd.Type)
	assert.Equal(t, "pulse", cmd.Payload["name"])
}

func TestExecuteClear(t *testing.T) {
	s, cmdChan, _ := newTestScheduler(t)
	s.execute("clear")
	assert.Equal(t, core.CmdClear, recvCommand(t, cmdChan).Type)
}

func TestExecuteMonitorPauseResume(t *testing.T) {
	s, cmdChan, _ := newTestScheduler(t)

	s.execute("monitor pause")
	assert.Equal(t, core.CmdPauseMonitor, recvCommand(t, cmdChan).Type)

	s.execute("monitor resume")
	assert.Equal(t, core.CmdResumeMonitor, recvCommand(t, cmdChan).Type)
}

func TestExecuteIgnoresGarbage(t *testing.T) {
	s, cmdChan, _ := newTestScheduler(t)

	s.execute("")
	s.execute("brightness abc")
	s.execute("frobnicate")

	select {
	case cmd := <-cmdChan:
		t.Fatalf("unexpected command: %v", cmd)
	case <-time.After(50 * time.Millisecond):
	}
}
