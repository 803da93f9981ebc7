// Package scheduler runs display commands on cron schedules, for things
// like dimming the matrix at night or clearing it during work hours.
package scheduler

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"

	"github.com/robfig/cron/v3"
)

// ScheduleEntry is one persisted schedule: a cron spec plus the command
// string it fires.
type ScheduleEntry struct {
	Spec    string `json:"spec"`
	Command string `json:"command"`
}

// Scheduler runs cron-timed commands against the agent's command channel.
type Scheduler struct {
	cron           *cron.Cron
	store          map[cron.EntryID]ScheduleEntry
	commandChannel core.CommandChannel
	mu             sync.RWMutex
	schedulesFile  string
}

// NewScheduler restores persisted schedules from the store file.
func NewScheduler(cmdChan core.CommandChannel, schedulesFile string) *Scheduler {
	s := &Scheduler{
		cron:           cron.New(),
		store:          make(map[cron.EntryID]ScheduleEntry),
		commandChannel: cmdChan,
		schedulesFile:  schedulesFile,
	}
	s.load()
	return s
}

// Start begins the cron job ticker.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[Scheduler] Cron scheduler started")
}

// Stop halts the cron job ticker.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[Scheduler] Cron scheduler stopped")
}

// Add creates a new cron job.
func (s *Scheduler) Add(spec, command string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() { s.execute(command) })
	if err != nil {
		log.Printf("[Scheduler] Error adding schedule '%s' '%s': %v", spec, command, err)
		return
	}
	s.store[id] = ScheduleEntry{Spec: spec, Command: command}
	s.save()
	log.Printf("[Scheduler] Added schedule (ID %d): %s -> %s", id, spec, command)
}

// Remove deletes a cron job.
func (s *Scheduler) Remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID := cron.EntryID(id)
	s.cron.Remove(entryID)
	delete(s.store, entryID)
	s.save()
	log.Printf("[Scheduler] Removed schedule (ID %d)", id)
}

// GetAll returns a copy of the schedule store.
func (s *Scheduler) GetAll() map[cron.EntryID]ScheduleEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	newMap := make(map[cron.EntryID]ScheduleEntry)
	for k, v := range s.store {
		newMap[k] = v
	}
	return newMap
}

// execute translates a schedule command string into an agent command.
// Supported forms: "brightness N", "pattern NAME", "preset NAME",
// "clear", "monitor pause", "monitor resume".
func (s *Scheduler) execute(command string) {
	log.Printf("[Scheduler] Executing scheduled command: %s", command)
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return
	}
	switch parts[0] {
	case "brightness":
		if len(parts) < 2 {
			return
		}
		value, err := strconv.Atoi(parts[1])
		if err != nil {
			log.Printf("[Scheduler] Bad brightness value in schedule: %s", parts[1])
			return
		}
		s.commandChannel <- core.Command{Type: core.CmdSetBrightness, Payload: map[string]interface{}{"value": value}}
	case "pattern":
		if len(parts) > 1 {
			s.commandChannel <- core.Command{Type: core.CmdRunPattern, Payload: map[string]interface{}{"name": parts[1]}}
		}
	case "preset":
		if len(parts) > 1 {
			s.commandChannel <- core.Command{Type: core.CmdPlayPreset, Payload: map[string]interface{}{"name": parts[1]}}
		}
	case "clear":
		s.commandChannel <- core.Command{Type: core.CmdClear, Payload: map[string]interface{}{}}
	case "monitor":
		if len(parts) < 2 {
			return
		}
		switch parts[1] {
		case "pause":
			s.commandChannel <- core.Command{Type: core.CmdPauseMonitor, Payload: map[string]interface{}{}}
		case "resume":
			s.commandChannel <- core.Command{Type: core.CmdResumeMonitor, Payload: map[string]interface{}{}}
		}
	default:
		log.Printf("[Scheduler] Unknown scheduled command: %s", parts[0])
	}
}

func (s *Scheduler) save() {
	data, err := json.MarshalIndent(s.store, "", "  ")
	if err != nil {
		log.Printf("[Scheduler] Error marshalling schedules: %v", err)
		return
	}
	os.WriteFile(s.schedulesFile, data, 0644)
}

func (s *Scheduler) load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.schedulesFile); os.IsNotExist(err) {
		return
	}
	data, err := os.ReadFile(s.schedulesFile)
	if err != nil {
		log.Printf("[Scheduler] Error reading schedule file: %v", err)
		return
	}

	tempStore := make(map[cron.EntryID]ScheduleEntry)
	if err := json.Unmarshal(data, &tempStore); err != nil {
		log.Printf("[Scheduler] Error unmarshalling schedule file: %v", err)
		return
	}

	log.Printf("[Scheduler] Loading %d schedules from file '%s'...", len(tempStore), s.schedulesFile)
	for _, entry := range tempStore {
		jobEntry := entry
		newID, err := s.cron.AddFunc(jobEntry.Spec, func() { s.execute(jobEntry.Command) })
		if err != nil {
			log.Printf("[Scheduler] Error re-adding schedule from file: %v", err)
			continue
		}
		s.store[newID] = jobEntry
	}
}
