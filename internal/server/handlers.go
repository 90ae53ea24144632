package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/stride/internal/bridge"
	"github.com/claude/stride/internal/history"
	"github.com/claude/stride/internal/store"
	"github.com/claude/stride/internal/treadmill"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleInvoke forwards a named command to the registry. The request
// body, if any, is passed through as the command's JSON arguments.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	command := chi.URLParam(r, "command")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}

	var args any
	if len(body) > 0 {
		var raw json.RawMessage
		if err := json.Unmarshal(body, &raw); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		args = raw
	}

	result, err := s.registry.Invoke(r.Context(), command, args)
	if err != nil {
		var unknown bridge.ErrUnknownCommand
		if errors.As(err, &unknown) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result)
}

// stateResponse is the view layer's snapshot of the store.
type stateResponse struct {
	Workouts  []store.Workout `json:"workouts"`
	Active    *store.Workout  `json:"active_workout,omitempty"`
	Bluetooth string          `json:"bluetooth_status"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	writeJSON(w, http.StatusOK, stateResponse{
		Workouts:  st.Workouts,
		Active:    st.Active,
		Bluetooth: st.Bluetooth.String(),
	})
}

func (s *Server) handleStartWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	s.store.Dispatch(store.StartWorkout{Workout: store.Workout{Name: req.Name}})
	s.handleState(w, r)
}

func (s *Server) handleEndWorkout(w http.ResponseWriter, r *http.Request) {
	s.store.Dispatch(store.EndWorkout{})
	s.handleState(w, r)
}

func (s *Server) handleTreadmillData(w http.ResponseWriter, r *http.Request) {
	data := s.connector.LastData()
	if data == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no treadmill data"})
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// writeControlResult maps control-write errors: no connection is a
// client-state problem, anything else is the hardware's.
func (s *Server) writeControlResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case errors.Is(err, treadmill.ErrNotConnected):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleTreadmillStart(w http.ResponseWriter, r *http.Request) {
	s.writeControlResult(w, s.connector.Start(r.Context()))
}

func (s *Server) handleTreadmillStop(w http.ResponseWriter, r *http.Request) {
	s.writeControlResult(w, s.connector.Stop(r.Context()))
}

// handleTreadmillSpeed sets the target speed in 0.01 km/h units.
func (s *Server) handleTreadmillSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed uint16 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.writeControlResult(w, s.connector.SetSpeed(r.Context(), req.Speed))
}

// handleTreadmillIncline sets the target incline in 0.1% units.
func (s *Server) handleTreadmillIncline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Incline int16 `json:"incline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	s.writeControlResult(w, s.connector.SetInclination(r.Context(), req.Incline))
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.history.ListSessions(r.Context(), 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []history.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
