package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"maestro/internal/config"

	"github.com/stretchr/testify/assert"
)

func authConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Enabled: true},
		Auth: config.APIAuthConfig{
			Enabled: true,
			APIKeys: []config.APIClientKey{
				{Key: "booking-key", Extra: "booking-extra", Name: "bookings", Permissions: []string{"read:bookings", "write:bookings"}},
				{Key: "open-key", Extra: "open-extra", Name: "open"},
			},
		},
	}
}

func doAuth(cfg config.APIConfig, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	auth := NewHTTPAuth(cfg)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiresHeaders(t *testing.T) {
	cfg := authConfig()

	rec := doAuth(cfg, http.MethodGet, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuth(cfg, http.MethodGet, "/api/v1/bookings", map[string]string{
		"x-api-key": "booking-key",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuth(cfg, http.MethodGet, "/api/v1/bookings", map[string]string{
		"x-api-key":   "booking-key",
		"x-api-extra": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doAuth(cfg, http.MethodGet, "/api/v1/bookings", map[string]string{
		"x-api-key":   "booking-key",
		"x-api-extra": "booking-extra",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthPermissions(t *testing.T) {
	cfg := authConfig()
	headers := map[string]string{
		"x-api-key":   "booking-key",
		"x-api-extra": "booking-extra",
	}

	// Ключ с правами на заявки не видит модерацию
	rec := doAuth(cfg, http.MethodGet, "/api/v1/moderation/gallery", headers)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doAuth(cfg, http.MethodPost, "/api/v1/bookings", headers)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Ключ без списка прав проходит везде
	openHeaders := map[string]string{
		"x-api-key":   "open-key",
		"x-api-extra": "open-extra",
	}
	rec = doAuth(cfg, http.MethodGet, "/api/v1/moderation/gallery", openHeaders)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.Enabled = false

	rec := doAuth(cfg, http.MethodGet, "/api/v1/bookings", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := authConfig()
	cfg.Auth.Enabled = false
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 2}

	auth := NewHTTPAuth(cfg)
	handler := auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cities", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	// Бёрст исчерпан на третьем запросе
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	// Другой клиент со своим лимитом
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cities", nil)
	req.RemoteAddr = "10.0.0.2:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
