package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/api"
	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/health"
)

func newTestRouter(t *testing.T, signingKey string) http.Handler {
	t.Helper()

	monitor := health.NewMonitor(health.MonitorConfig{
		ProbeTimeout:  time.Second,
		CheckInterval: time.Second,
		RecoveryDelay: time.Millisecond,
		Logger:        zerolog.Nop(),
	})
	monitor.Register(health.ServiceConfig{Name: "api", Check: func(context.Context) error { return nil }})

	return api.NewRouter(api.RouterConfig{
		Version:       "test",
		Logger:        zerolog.Nop(),
		Monitor:       monitor,
		JWTSigningKey: signingKey,
	})
}

func TestRouter_Liveness(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestRouter_StatusBeforeFirstRound(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	var summary health.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, health.StatusUnknown, summary.Status)
	assert.Equal(t, health.TrendInsufficientData, summary.Trend)
}

func TestRouter_CheckRunsRound(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ops/check", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshot health.SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	assert.Equal(t, health.StatusHealthy, snapshot.Status)
	assert.Equal(t, 1, snapshot.Metrics.HealthyCount)

	// The snapshot is now visible through the status endpoint.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody))

	var summary health.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, health.StatusHealthy, summary.Status)
}

func TestRouter_HealReturnsResult(t *testing.T) {
	router := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ops/heal", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	var result health.HealResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Empty(t, result.HealedServices)
	assert.Empty(t, result.StillFailingServices)
}

func TestRouter_History(t *testing.T) {
	router := newTestRouter(t, "")

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ops/check", http.NoBody))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/history?limit=2", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	var snapshots []health.SystemHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshots))
	assert.Len(t, snapshots, 2)
}

func TestRouter_MutatingEndpointsRequireToken(t *testing.T) {
	const key = "test-signing-key"
	router := newTestRouter(t, key)

	// No token: rejected.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/ops/check", http.NoBody))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	// Garbage token: rejected.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/ops/check", http.NoBody)
	req.Header.Set("Authorization", "Bearer not-a-token")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token: accepted.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(key))
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/v1/ops/check", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Read endpoints stay public.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}
