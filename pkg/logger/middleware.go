package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/badgeth/the-graph-indexer-badges/pkg/httpkit"
)

// countingWriter records the status code and body size the handler produced.
type countingWriter struct {
	http.ResponseWriter
	statusCode int
	bytesOut   int
}

func (cw *countingWriter) WriteHeader(code int) {
	cw.statusCode = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *countingWriter) Write(b []byte) (int, error) {
	size, err := cw.ResponseWriter.Write(b)
	cw.bytesOut += size

	return size, err
}

// NewMiddleware returns access-logging middleware: one structured line per
// request with method, URI, status, duration and byte counts. Server
// failures log at error level, everything else at info. When a handler
// recorded an error through httpkit the detailed cause joins the line.
func NewMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// The error slot must exist before the handler runs; handlers
			// mounted without httpkit.HandlerFunc would otherwise have
			// nowhere to record their cause.
			r = r.WithContext(httpkit.WithErrorTracking(r.Context()))

			// ContentLength is -1 when the client did not declare one
			bytesIn := max(0, int(r.ContentLength))

			cw := &countingWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK, // implicit status when WriteHeader is never called
			}

			next.ServeHTTP(cw, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("uri", r.RequestURI),
				slog.Int("status", cw.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes_in", bytesIn),
				slog.Int("bytes_out", cw.bytesOut),
			}
			if err := httpkit.Error(r.Context()); err != nil {
				attrs = append(attrs, slog.String("error", causeMessage(err)))
			}

			logger.LogAttrs(r.Context(), levelFor(cw.statusCode), "HTTP", attrs...)
		})
	}
}

func levelFor(statusCode int) slog.Level {
	if statusCode >= http.StatusInternalServerError {
		return slog.LevelError
	}

	return slog.LevelInfo
}

// causeMessage prefers the detailed cause over the client-facing message.
func causeMessage(err error) string {
	if httpErr, ok := err.(httpkit.HTTPError); ok {
		return httpErr.Cause().Error()
	}

	return err.Error()
}
