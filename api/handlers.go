package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/rustyeddy/daytrader/journal"
	"github.com/rustyeddy/daytrader/profiles"
	"github.com/rustyeddy/daytrader/state"
)

// commandResponse is the envelope every lifecycle command returns.
type commandResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	State   state.Snapshot `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeCommand(w http.ResponseWriter, ok bool, msg string) {
	status := http.StatusOK
	if !ok {
		status = http.StatusConflict
	}
	writeJSON(w, status, commandResponse{
		Success: ok,
		Message: msg,
		State:   s.st.Snapshot(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.st.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ticker string `json:"ticker"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Ticker == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "ticker is required"})
		return
	}

	ok, msg := s.ctrl.StartStrategy(body.Ticker)
	s.writeCommand(w, ok, msg)
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	ok, msg := s.ctrl.PauseStrategy()
	s.writeCommand(w, ok, msg)
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	ok, msg := s.ctrl.ResumeStrategy()
	s.writeCommand(w, ok, msg)
}

func (s *Server) handleEmergencyExit(w http.ResponseWriter, r *http.Request) {
	ok, msg := s.ctrl.EmergencyExit(r.Context())
	s.writeCommand(w, ok, msg)
}

func (s *Server) handleSetProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Profile string `json:"profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Profile == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "profile is required"})
		return
	}

	ok, msg := s.ctrl.SetProfile(body.Profile)
	s.writeCommand(w, ok, msg)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := s.jrnl.Recent(limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (s *Server) handleListProfiles(w http.ResponseWriter, _ *http.Request) {
	names, err := s.profs.All()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": names})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	p, err := s.profs.Get(name)
	if err != nil {
		if errors.Is(err, profiles.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found: " + name})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name   string           `json:"name"`
		Config profiles.Profile `json:"config"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name and config are required"})
		return
	}
	if body.Config.StopLossPct <= 0 || body.Config.TakeProfitPct <= 0 || body.Config.CapitalAllocationPct <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "profile percentages must be positive"})
		return
	}

	if err := s.profs.Create(body.Name, body.Config); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": body.Name})
}

func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}
