package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dfryer1193/campusnav/api"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(LoggingMiddleware())
	r.Use(gin.CustomRecovery(HandlePanics()))
	return r
}

func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	r := newTestRouter()
	var seen string
	r.GET("/ping", func(c *gin.Context) {
		seen = c.GetString(RequestIDKey)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	id := w.Header().Get(RequestIDHeader)
	assert.Equal(t, seen, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
}

func TestLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	r := newTestRouter()
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestHandlePanics(t *testing.T) {
	tests := []struct {
		name      string
		recovered any
		reason    string
	}{
		{name: "error value", recovered: errors.New("store exploded"), reason: "store exploded"},
		{name: "string value", recovered: "bad state", reason: "bad state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter()
			r.GET("/panic", func(c *gin.Context) { panic(tt.recovered) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			var body api.Error
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "internal error", body.Error)
			assert.Equal(t, tt.reason, body.Reason)
		})
	}
}
