package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"

	"github.com/simp-lee/learnhub/internal/pkg"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestRecovery(t *testing.T) {
	tests := []struct {
		name       string
		handler    gin.HandlerFunc
		accept     string
		wantStatus int
		wantBody   string
		wantLog    string
	}{
		{
			name:       "no panic",
			handler:    func(c *gin.Context) { c.String(http.StatusOK, "ok") },
			wantStatus: http.StatusOK,
			wantBody:   "ok",
		},
		{
			name:       "string panic",
			handler:    func(*gin.Context) { panic("lesson index out of range") },
			wantStatus: http.StatusInternalServerError,
			wantLog:    "lesson index out of range",
		},
		{
			name:       "error panic",
			handler:    func(*gin.Context) { panic(errors.New("nil course")) },
			wantStatus: http.StatusInternalServerError,
			wantLog:    "nil course",
		},
		{
			name:       "browsers get json too",
			handler:    func(*gin.Context) { panic("boom") },
			accept:     "text/html,application/xhtml+xml",
			wantStatus: http.StatusInternalServerError,
			wantLog:    "boom",
		},
		{
			name: "panic after write keeps the response",
			handler: func(c *gin.Context) {
				c.String(http.StatusOK, "partial")
				panic("late")
			},
			wantStatus: http.StatusOK,
			wantBody:   "partial",
			wantLog:    "late",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			afterRan := false
			r := gin.New()
			r.Use(Recovery(newTestLogger(&logBuf)))
			r.GET("/x", tt.handler, func(*gin.Context) { afterRan = true })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}

			if tt.wantLog == "" {
				if logBuf.Len() != 0 {
					t.Errorf("unexpected log output:\n%s", logBuf.String())
				}
				return
			}
			if afterRan {
				t.Error("handlers after the panic should not run")
			}
			for _, want := range []string{"panic recovered", tt.wantLog, "path=/x", "stack="} {
				if !strings.Contains(logBuf.String(), want) {
					t.Errorf("log missing %q:\n%s", want, logBuf.String())
				}
			}
			if tt.wantBody == "" {
				var resp pkg.Response
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("body is not the JSON envelope: %q", w.Body.String())
				}
				if resp.Code != http.StatusInternalServerError || resp.Message != "internal server error" || resp.Data != nil {
					t.Errorf("envelope = %+v", resp)
				}
			}
		})
	}
}

// The panic record is written with the request context, so it carries the
// request id the client sees in X-Request-ID.
func TestRecovery_PanicLogCarriesRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	log, err := logger.New(
		logger.WithConsoleWriter(&logBuf),
		logger.WithConsoleFormat(logger.FormatText),
		logger.WithConsoleColor(false),
		logger.WithMiddleware(logger.ContextMiddleware()),
	)
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	defer log.Close()

	r := gin.New()
	r.Use(RequestID(), Recovery(log.Logger))
	r.GET("/certificate", func(*gin.Context) { panic("pdf writer exploded") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/certificate", nil))

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("response has no request id")
	}
	if !strings.Contains(logBuf.String(), id) {
		t.Errorf("panic log does not carry request id %s:\n%s", id, logBuf.String())
	}
}
