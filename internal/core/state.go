package core

import "sync"

// State holds the single source of truth for the agent.
type State struct {
	mu              sync.RWMutex
	BatteryPercent  float64
	PowerPlugged    bool
	BatteryChecked  bool
	Brightness      int
	RunningPattern  string
	RunningPreset   string
	MonitorPaused   bool
	ConnectedPorts  map[string]bool
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		ConnectedPorts: make(map[string]bool),
	}
}

// Clone returns a detached copy safe to read without the lock.
func (s *State) Clone() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ports := make(map[string]bool, len(s.ConnectedPorts))
	for k, v := range s.ConnectedPorts {
		ports[k] = v
	}
	return State{
		BatteryPercent: s.BatteryPercent,
		PowerPlugged:   s.PowerPlugged,
		BatteryChecked: s.BatteryChecked,
		Brightness:     s.Brightness,
		RunningPattern: s.RunningPattern,
		RunningPreset:  s.RunningPreset,
		MonitorPaused:  s.MonitorPaused,
		ConnectedPorts: ports,
	}
}

// SetBattery updates the last observed battery reading.
func (s *State) SetBattery(percent float64, plugged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BatteryPercent = percent
	s.PowerPlugged = plugged
	s.BatteryChecked = true
}

// SetBrightness records the current global brightness.
func (s *State) SetBrightness(brightness int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Brightness = brightness
}

// SetRunningPattern updates the running Lua pattern state.
func (s *State) SetRunningPattern(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RunningPattern = pattern
}

// SetRunningPreset updates the running preset animation state.
func (s *State) SetRunningPreset(preset string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RunningPreset = preset
}

// SetMonitorPaused updates the monitor pause flag.
func (s *State) SetMonitorPaused(paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MonitorPaused = paused
}

// SetPortConnected updates the connection flag for a single device port.
func (s *State) SetPortConnected(port string, connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ConnectedPorts[port] = connected
}
