package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Checker reports whether a dependency is healthy.
type Checker func(ctx context.Context) error

type registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
}

var defaultRegistry = &registry{checkers: make(map[string]Checker)}

// Register adds a named readiness check.
func Register(name string, c Checker) {
	defaultRegistry.mu.Lock()
	defer defaultRegistry.mu.Unlock()
	defaultRegistry.checkers[name] = c
}

// LivenessHandler always reports the process as alive.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// ReadinessHandler runs all registered checks and reports per-dependency
// status. Any failing check makes the whole response 503.
func ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		defaultRegistry.mu.RLock()
		checkers := make(map[string]Checker, len(defaultRegistry.checkers))
		for name, c := range defaultRegistry.checkers {
			checkers[name] = c
		}
		defaultRegistry.mu.RUnlock()

		status := http.StatusOK
		results := make(map[string]string, len(checkers))
		for name, c := range checkers {
			if err := c(ctx); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				results[name] = "ok"
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": http.StatusText(status),
			"checks": results,
		})
	}
}
