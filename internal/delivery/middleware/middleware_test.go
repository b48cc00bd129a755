package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transit/config"
	deliverycontext "transit/internal/delivery/context"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware_Process(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when missing", incoming: "", keep: false},
		{name: "client id kept", incoming: "batch-42", keep: true},
		{name: "control characters rejected", incoming: "bad\nid", keep: false},
		{name: "overlong id rejected", incoming: strings.Repeat("x", maxRequestIDLength+1), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.incoming != "" {
				req.Header.Set(deliverycontext.HeaderXRequestID, tt.incoming)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var seenID string
			var seenLogger *slog.Logger
			handler := NewRequestIDMiddleware(slog.Default()).Process(func(c echo.Context) error {
				seenID = deliverycontext.GetRequestID(c)
				seenLogger = deliverycontext.GetLoggerOrDefault(c.Request().Context(), nil)

				return nil
			})

			require.NoError(t, handler(c))

			assert.NotEmpty(t, seenID)
			assert.NotNil(t, seenLogger)
			assert.Equal(t, seenID, rec.Header().Get(deliverycontext.HeaderXRequestID))
			if tt.keep {
				assert.Equal(t, tt.incoming, seenID)
			} else {
				assert.NotEqual(t, tt.incoming, seenID)
			}
		})
	}
}

func TestLoggerMiddleware_Handle(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		handler echo.HandlerFunc
		logged  bool
	}{
		{
			name:    "quiet on success",
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		},
		{
			name:    "debug logs success",
			debug:   true,
			handler: func(c echo.Context) error { return c.NoContent(http.StatusOK) },
			logged:  true,
		},
		{
			name:    "server errors always logged",
			handler: func(c echo.Context) error { return echo.NewHTTPError(http.StatusInternalServerError, "boom") },
			logged:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, nil))

			cfg := config.Default()
			cfg.Env.Debug = tt.debug

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/map", nil), rec)

			err := NewLoggerMiddleware(logger, cfg).Handle(tt.handler)(c)
			require.NoError(t, err)

			if tt.logged {
				assert.Contains(t, buf.String(), "HTTP Request")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}
