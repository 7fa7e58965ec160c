package web

import (
	"encoding/json"
	"net/http"
	"time"

	"TariffSentinel/internal/model"
	"TariffSentinel/internal/version"
)

type server struct {
	coordinator Coordinator
	dataSource  string
}

type healthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	DataSource string `json:"data_source"`
	State      string `json:"state"`
	Outcome    string `json:"outcome"`
	LastError  string `json:"last_error,omitempty"`
	NextWakeup string `json:"next_wakeup,omitempty"`
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	outcome, lastErr := s.coordinator.LastOutcome()
	resp := healthResponse{
		Status:     "ok",
		Version:    version.Version(),
		DataSource: s.dataSource,
		State:      string(s.coordinator.State()),
		Outcome:    string(outcome),
	}
	if lastErr != nil {
		resp.LastError = lastErr.Error()
	}
	if at, ok := s.coordinator.NextWakeup(); ok {
		resp.NextWakeup = at.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) snapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.coordinator.Snapshot()
	if snap == nil {
		writeError(w, http.StatusNotFound, "no snapshot yet")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) window(w http.ResponseWriter, _ *http.Request) {
	snap := s.coordinator.Snapshot()
	if snap == nil {
		writeError(w, http.StatusNotFound, "no snapshot yet")
		return
	}
	writeJSON(w, http.StatusOK, snap.Window)
}

type refreshResponse struct {
	Outcome   string `json:"outcome"`
	CycleID   string `json:"cycle_id,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.coordinator.Refresh(r.Context(), model.TriggerManual)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	outcome, _ := s.coordinator.LastOutcome()
	resp := refreshResponse{Outcome: string(outcome)}
	if snap != nil {
		resp.CycleID = snap.CycleID
		resp.UpdatedAt = snap.UpdatedAt.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
