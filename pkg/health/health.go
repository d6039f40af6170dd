// Package health implements Kubernetes-style liveness and readiness probes.
//
// Checks are evaluated on each probe request with a per-check timeout, so the
// reported state always reflects the moment the probe was asked. Readiness
// additionally requires an explicit SetReady(true) after startup, and flips
// back with SetReady(false) to drain traffic during shutdown.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

func (c check) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.fn(ctx)
}

// Probes holds the registered liveness and readiness checks.
type Probes struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New creates a Probes instance. The service starts not ready; call
// SetReady(true) once initialization completes.
func New() *Probes {
	return &Probes{}
}

// AddLivenessCheck registers a check that decides whether the process is
// alive at all. Failing liveness usually means the process should be
// restarted.
func (p *Probes) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.liveness = append(p.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a check that decides whether the service can
// accept traffic, such as database connectivity.
func (p *Probes) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readiness = append(p.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness gate. Typically called with true after
// startup and with false at the beginning of graceful shutdown.
func (p *Probes) SetReady(ready bool) {
	p.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness check
// passes.
func (p *Probes) IsReady() bool {
	if !p.ready.Load() {
		return false
	}
	p.mu.RLock()
	checks := p.readiness
	p.mu.RUnlock()

	for _, c := range checks {
		if c.run(context.Background()) != nil {
			return false
		}
	}
	return true
}

type probeResult struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves the liveness probe: 200 when every liveness check
// passes, 503 otherwise.
func (p *Probes) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	checks := p.liveness
	p.mu.RUnlock()

	p.serve(w, r, checks, true)
}

// ReadyEndpoint serves the readiness probe: 200 only when the manual gate is
// open and every readiness check passes.
func (p *Probes) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	checks := p.readiness
	p.mu.RUnlock()

	p.serve(w, r, checks, p.ready.Load())
}

func (p *Probes) serve(w http.ResponseWriter, r *http.Request, checks []check, gate bool) {
	result := probeResult{Status: "ok", Checks: make(map[string]string, len(checks))}
	healthy := gate
	if !gate {
		result.Status = "not ready"
	}

	for _, c := range checks {
		if err := c.run(r.Context()); err != nil {
			healthy = false
			result.Status = "unhealthy"
			result.Checks[c.name] = err.Error()
		} else {
			result.Checks[c.name] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
