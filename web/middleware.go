package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagecraft/pagecraft/pkg/apierror"
)

// requestLogger logs every request and records request metrics.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		op := operationName(r)

		if h.metrics != nil {
			h.metrics.RequestsTotal.WithLabelValues(op, fmt.Sprintf("%d", ww.Status())).Inc()
			h.metrics.RequestDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		}

		h.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", elapsed).
			Str("ip", clientIP(r)).
			Msg("request")
	})
}

// rateLimit applies the per-IP window before any request parsing. A denied
// request gets the standard envelope plus a Retry-After hint.
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := h.limiter.Check(r.Context(), clientIP(r), operationName(r))
		if err != nil {
			apierror.Write(w, apierror.Internal(err))
			return
		}
		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			apierror.Write(w, apierror.RateLimited())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// operationName labels a request for logs and metrics by its API path.
func operationName(r *http.Request) string {
	path := strings.TrimPrefix(r.URL.Path, "/api/")
	path = strings.Trim(path, "/")
	if path == "" {
		return "root"
	}
	return path
}
