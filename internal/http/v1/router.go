package v1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	openapi "github.com/HarvexIO/harvex/api/openapi"
	"github.com/HarvexIO/harvex/internal/scheduler"
)

// Deps are the live components the API reads from. The loop owns the
// dispatcher and the inventory cache, so it is the only handle needed.
type Deps struct {
	Loop *scheduler.Loop
}

// Router returns the chi.Router for REST API v1.
func Router(deps Deps) chi.Router {
	r := chi.NewRouter()

	// Docs (Swagger UI) and spec under the versioned prefix
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api/v1/openapi.yaml"),
	))
	r.Get("/openapi.yaml", serveOpenAPIStaticAsset)

	// Scheduler observability endpoints
	r.Get("/status", deps.getStatus)
	r.Get("/workers", deps.getWorkers)
	r.Get("/targets", deps.getTargets)
	r.Get("/jobs", deps.getJobs)

	// Worker agent enrollment endpoints
	r.Post("/agents/enroll/token", createEnrollToken)
	r.Post("/agents/enroll/csr", signCSR)

	return r
}

func serveOpenAPIStaticAsset(w http.ResponseWriter, r *http.Request) {
	data, err := openapi.FS.ReadFile("v1/harvex.yaml")
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read spec: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(data)
}
