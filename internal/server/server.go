// Package server exposes the agent over HTTP: a static web UI plus a
// WebSocket endpoint for live state and commands.
package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/Inspyre-Softworks/led-matrix-battery/internal/core"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/lua"
	"github.com/Inspyre-Softworks/led-matrix-battery/internal/scheduler"

	"github.com/gorilla/websocket"
	"github.com/robfig/cron/v3"
)

// CommandHandler receives raw command frames read from WebSocket clients.
type CommandHandler interface {
	Handle(raw []byte)
}

// Server hosts the web UI and the WebSocket control endpoint.
type Server struct {
	Hub          *Hub
	handler      CommandHandler
	luaEngine    *lua.Engine
	httpServer   *http.Server
	getState     func() core.State
	getSchedules func() map[cron.EntryID]scheduler.ScheduleEntry
	getPresets   func() []string

	staticFilesDir string
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewServer builds the HTTP mux and hub; call ListenAndServe to start.
func NewServer(luaEngine *lua.Engine, getState func() core.State, getSchedules func() map[cron.EntryID]scheduler.ScheduleEntry, getPresets func() []string, port string, staticFilesDir string, allowedOrigins []string) *Server {
	s := &Server{
		Hub:          NewHub(),
		luaEngine:    luaEngine,
		getState:     getState,
		getSchedules: getSchedules,
		getPresets:   getPresets,

		staticFilesDir: staticFilesDir,
		allowedOrigins: allowedOrigins,
	}

	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				log.Println("[Server] Warning: WebSocket CheckOrigin is disabled")
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			log.Printf("[Server] WebSocket connection blocked: Origin '%s' not in allowed list", origin)
			return false
		},
	}

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(s.staticFilesDir)))
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpServer = &http.Server{Addr: ":" + port, Handler: mux}

	return s
}

// SetHandler sets the command handler for incoming client messages.
func (s *Server) SetHandler(h CommandHandler) {
	s.handler = h
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[Server] WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// New clients get the full picture up front: devices, battery,
	// patterns, presets, and schedules.
	state := s.getState()
	_ = conn.WriteJSON(NewMessage("device_list", state.ConnectedPorts))
	_ = conn.WriteJSON(NewMessage("battery_state", map[string]interface{}{
		"percent": state.BatteryPercent,
		"plugged": state.PowerPlugged,
	}))
	_ = conn.WriteJSON(NewMessage("monitor_status", map[string]interface{}{
		"paused": state.MonitorPaused,
	}))
	_ = conn.WriteJSON(NewMessage("brightness", map[string]int{
		"value": state.Brightness,
	}))

	patterns, err := s.luaEngine.GetPatternList()
	if err == nil {
		_ = conn.WriteJSON(NewMessage("pattern_list", patterns))
	}
	_ = conn.WriteJSON(NewMessage("pattern_status", map[string]string{
		"running": state.RunningPattern,
	}))

	if s.getPresets != nil {
		_ = conn.WriteJSON(NewMessage("preset_list", s.getPresets()))
	}
	_ = conn.WriteJSON(NewMessage("preset_status", map[string]string{
		"running": state.RunningPreset,
	}))

	schedules := s.getSchedules()
	_ = conn.WriteJSON(NewMessage("schedule_list", schedules))

	s.Hub.Attach(conn)
	defer s.Hub.Detach(conn)

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if s.handler != nil {
			s.handler.Handle(msgBytes)
		}
	}
}
