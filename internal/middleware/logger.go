package middleware

import (
	"net/http"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs every request with its status, duration, and a
// correlation id. An incoming X-Request-ID is honored; otherwise one is
// generated.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			if id, err := uuid.NewV4(); err == nil {
				reqID = id.String()
			}
		}
		w.Header().Set("X-Request-ID", reqID)

		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Str("request_id", reqID).
			Str("remote_addr", r.RemoteAddr).
			Msg("http request")
	})
}

// statusWriter captures the response code for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
