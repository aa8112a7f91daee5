package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"repairdesk/internal/models"
)

// Check — проверка зависимости для readiness (БД, redis).
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// RegisterRoutes — liveness + readiness по списку проверок.
func RegisterRoutes(r *mux.Router, checks ...Check) {
	r.HandleFunc("/healthz", liveness).Methods(http.MethodGet)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		failed := map[string]string{}
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				failed[c.Name] = err.Error()
			}
		}
		if len(failed) > 0 {
			models.WriteProblem(w, http.StatusServiceUnavailable, "Not Ready", "dependency check failed", failed)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
