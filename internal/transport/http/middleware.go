package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"

	"github.com/zbennett/bbo-extension/internal/logging"
)

// loggedQuery are the query parameters worth a log attribute. Hands are left
// out, they are long and the deal id identifies them.
var loggedQuery = []string{"board", "mode"}

func APILogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:              slog.LevelInfo,
			Schema:             httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogRequestBody:     func(*http.Request) bool { return false },
			LogResponseBody:    func(*http.Request) bool { return false },
			LogRequestHeaders:  []string{},
			LogResponseHeaders: []string{},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				route := req.URL.Path
				if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				attrs := []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
				}
				q := req.URL.Query()
				for _, name := range loggedQuery {
					if v := q.Get(name); v != "" {
						attrs = append(attrs, slog.String(name, v))
					}
				}
				return attrs
			},
		},
	)
}

// ErrorCaptureMiddleware records the size of every response and, for failed
// requests, the error code and up to maxBytes of the body. Event streams pass
// through untouched.
func ErrorCaptureMiddleware(maxBytes int) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = 4096
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSSERequest(r) {
				next.ServeHTTP(w, r)
				return
			}
			cw := &captureWriter{ResponseWriter: w, maxBytes: maxBytes, status: http.StatusOK}
			next.ServeHTTP(cw, r)

			httplog.SetAttrs(r.Context(), slog.Int("response_bytes", cw.n))
			if cw.status < http.StatusBadRequest {
				return
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(cw.body.Bytes(), &body); err == nil && body.Error != "" {
				httplog.SetAttrs(r.Context(), slog.String("error_code", body.Error))
				return
			}
			httplog.SetAttrs(r.Context(),
				slog.String("response_body", cw.body.String()),
				slog.Bool("response_body_truncated", cw.truncated))
		})
	}
}

type captureWriter struct {
	http.ResponseWriter
	body      bytes.Buffer
	maxBytes  int
	n         int
	status    int
	truncated bool
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(p []byte) (int, error) {
	if remain := c.maxBytes - c.body.Len(); remain >= len(p) {
		c.body.Write(p)
	} else {
		if remain > 0 {
			c.body.Write(p[:remain])
		}
		c.truncated = true
	}
	n, err := c.ResponseWriter.Write(p)
	c.n += n
	return n, err
}

func (c *captureWriter) Flush() {
	if f, ok := c.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func WriteHTTPError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": code})
}

func isSSERequest(r *http.Request) bool {
	return r.URL.Path == "/api/events" || strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
