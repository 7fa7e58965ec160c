package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"TariffSentinel/internal/model"
)

// Coordinator is the refresh-engine surface the API serves.
type Coordinator interface {
	Refresh(ctx context.Context, trigger model.Trigger) (*model.Snapshot, error)
	Snapshot() *model.Snapshot
	State() model.CycleState
	LastOutcome() (model.CycleOutcome, error)
	NextWakeup() (time.Time, bool)
}

// NewRouter builds the HTTP API router.
func NewRouter(c Coordinator, metricsHandler http.Handler, dataSource string) *mux.Router {
	s := &server{coordinator: c, dataSource: dataSource}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/api/v1/snapshot", s.snapshot).Methods("GET")
	r.HandleFunc("/api/v1/window", s.window).Methods("GET")
	r.HandleFunc("/api/v1/refresh", s.refresh).Methods("POST")
	r.Handle("/metrics", metricsHandler).Methods("GET")

	return r
}
