package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p *stubPinger) Ping() error { return p.err }

func TestHealthCheckOK(t *testing.T) {
	engine := gin.New()
	engine.GET("/healthz", NewHealthHandler(&stubPinger{}, nil).Check)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)
}

func TestHealthCheckDatabaseDown(t *testing.T) {
	engine := gin.New()
	engine.GET("/healthz", NewHealthHandler(&stubPinger{err: errors.New("refused")}, nil).Check)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}
