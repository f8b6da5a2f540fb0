package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"pharmapos/internal/handler"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		ping   error
		call   func(h *handler.HealthHandler, c *gin.Context)
		status int
	}{
		{"liveness", nil, (*handler.HealthHandler).Liveness, http.StatusOK},
		{"ready", nil, (*handler.HealthHandler).Readiness, http.StatusOK},
		{"not_ready", errors.New("dial tcp: refused"), (*handler.HealthHandler).Readiness, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewHealthHandler(stubPinger{err: tt.ping})
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", http.NoBody)

			tt.call(h, c)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
