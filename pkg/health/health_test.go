package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, endpoint http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	endpoint(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestLiveEndpoint(t *testing.T) {
	p := New()
	p.AddLivenessCheck("always-ok", time.Second, func(context.Context) error { return nil })

	rec := probe(t, p.LiveEndpoint)
	assert.Equal(t, http.StatusOK, rec.Code)

	p.AddLivenessCheck("broken", time.Second, func(context.Context) error {
		return errors.New("down")
	})
	rec = probe(t, p.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "down")
}

func TestReadyEndpointGate(t *testing.T) {
	p := New()
	p.AddReadinessCheck("db", time.Second, func(context.Context) error { return nil })

	// Not ready until the gate opens.
	rec := probe(t, p.ReadyEndpoint)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	p.SetReady(true)
	rec = probe(t, p.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, p.IsReady())

	// Draining flips it back.
	p.SetReady(false)
	rec = probe(t, p.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, p.IsReady())
}

func TestReadyEndpointFailingCheck(t *testing.T) {
	p := New()
	p.SetReady(true)
	p.AddReadinessCheck("db", time.Second, func(context.Context) error {
		return errors.New("connection refused")
	})

	rec := probe(t, p.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, p.IsReady())
}

func TestCheckTimeout(t *testing.T) {
	p := New()
	p.SetReady(true)
	p.AddReadinessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	start := time.Now()
	rec := probe(t, p.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
