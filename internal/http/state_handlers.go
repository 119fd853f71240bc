package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"valkiria-backend-go/internal/services"
	"valkiria-backend-go/internal/state"

	"github.com/gorilla/websocket"
)

func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.State.Snapshot())
}

// RefreshState is the retry action. On failure the response still carries
// the last good data alongside the error.
func (s *Server) RefreshState(w http.ResponseWriter, r *http.Request) {
	if err := s.State.Refresh(r.Context()); err != nil {
		var fetchErr services.FetchError
		if errors.As(err, &fetchErr) {
			WriteJSON(w, http.StatusBadGateway, s.State.Snapshot())
			return
		}
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.State.Snapshot())
}

func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.State.Snapshot().Config)
}

type ConnectionRequest struct {
	DatabaseURL string `json:"databaseUrl"`
}

func (s *Server) ManualConnect(w http.ResponseWriter, r *http.Request) {
	if !s.Config.AllowManualConnect || s.Connect == nil {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	dsn := strings.TrimSpace(req.DatabaseURL)
	if dsn == "" {
		WriteError(w, http.StatusBadRequest, "databaseUrl is required")
		return
	}
	source, err := s.Connect(r.Context(), dsn)
	if err != nil {
		log.Printf("manual connect: %v", err)
		writeServiceError(w, services.ConfigurationError{Message: "could not connect: " + err.Error()})
		return
	}
	if err := s.State.Connect(r.Context(), source); err != nil {
		log.Printf("initial refresh after connect: %v", err)
	}
	WriteJSON(w, http.StatusOK, s.State.Snapshot())
}

type HealthResponse struct {
	Connected   bool               `json:"connected"`
	Database    string             `json:"database"`
	RefreshedAt *time.Time         `json:"refreshedAt,omitempty"`
	Subscribers int                `json:"subscribers"`
	Host        services.HostStats `json:"host"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	snap := s.State.Snapshot()
	resp := HealthResponse{
		Connected:   snap.Connected,
		Database:    "disconnected",
		RefreshedAt: snap.RefreshedAt,
		Host:        services.CaptureHostStats(s.Config.LogDir),
	}
	if s.Hub != nil {
		resp.Subscribers = s.Hub.Count()
	}
	status := http.StatusOK
	if snap.Connected {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.State.Ping(ctx); err != nil {
			resp.Database = "error: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}
	WriteJSON(w, status, resp)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StateSocket pushes the current snapshot on connect and a new one after
// every applied refresh.
func (s *Server) StateSocket(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	err = s.Hub.Join(conn, func() interface{} { return s.State.Snapshot() })
	if err != nil {
		_ = conn.Close()
		return
	}
	defer func() {
		s.Hub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// PublishTo forwards container snapshots to the websocket hub.
func PublishTo(hub *services.SnapshotHub) func(state.Snapshot) {
	return func(snap state.Snapshot) {
		hub.Broadcast(snap)
	}
}
