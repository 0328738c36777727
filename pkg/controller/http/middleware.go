package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/romfetch/pkg/domain/types"
)

const maxRequestBodySize = 1 << 20

// LoggingMiddleware logs HTTP requests and passes a request scoped logger to handlers
func LoggingMiddleware(ctx context.Context) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			logger := ctxlog.From(ctx).With("request_id", middleware.GetReqID(r.Context()))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}()

			next.ServeHTTP(ww, r.WithContext(ctxlog.With(r.Context(), logger)))
		})
	}
}

// decodeJSON reads a JSON body into v. Failures are tagged as invalid input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		return goerr.Wrap(err, "failed to read request body", goerr.T(types.ErrTagInvalidInput))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(err, "invalid JSON payload", goerr.T(types.ErrTagInvalidInput))
	}
	return nil
}

// statusOf maps error kinds to HTTP status codes
func statusOf(err error) int {
	if types.KindOf(err) == types.ErrorKindInvalid {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}

// writeError writes an error response carrying the error kind
func writeError(ctx context.Context, w http.ResponseWriter, err error, status int) {
	writeJSON(ctx, w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(types.KindOf(err)),
	})
}
