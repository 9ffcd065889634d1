package v1

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// getStatus handles GET /status: loop state, last cycle counters, and the
// recent cycle history ring.
func (d Deps) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, d.Loop.Status())
}

// getWorkers handles GET /workers from the inventory cache (refreshing if
// past TTL).
func (d Deps) getWorkers(w http.ResponseWriter, r *http.Request) {
	snap, err := d.Loop.Cache().Get(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("inventory unavailable: %v", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"items": snap.Workers, "takenAt": snap.TakenAt})
}

// getTargets handles GET /targets.
func (d Deps) getTargets(w http.ResponseWriter, r *http.Request) {
	snap, err := d.Loop.Cache().Get(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("inventory unavailable: %v", err), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]any{"items": snap.Targets, "takenAt": snap.TakenAt})
}

// getJobs handles GET /jobs: submissions the controller still believes are
// running.
func (d Deps) getJobs(w http.ResponseWriter, r *http.Request) {
	jobs := d.Loop.Dispatcher().Jobs()
	writeJSON(w, map[string]any{"items": jobs, "count": len(jobs)})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
