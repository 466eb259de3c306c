// Package middleware wraps the HTTP mux with CORS, request tracking and
// panic recovery.
package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/Brownie44l1/gummy-api/internal/metrics"
	"github.com/Brownie44l1/gummy-api/internal/shared"
	"github.com/aidarkhanov/nanoid"
	"go.uber.org/zap"
)

func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Track gives every request an id and a logger carrying it, then logs and
// counts the response status.
func Track(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID, _ := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 28)
			logger := log.With("request_id", "req_"+reqID)

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			req := r.WithContext(shared.WithLogger(r.Context(), logger))
			next.ServeHTTP(rec, req)
			duration := time.Since(start)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}
			logger.Infow("end_of_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status_code", fmt.Sprintf("%d", rec.status),
				"duration", duration.String(),
			)
			pattern := req.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.ResponseCodes.WithLabelValues(pattern, fmt.Sprintf("%d", rec.status)).Inc()
		})
	}
}

// Recover turns a panic into a JSON 500.
func Recover(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rv := recover(); rv != nil {
					if rv == http.ErrAbortHandler {
						panic(rv)
					}
					shared.Logger(r.Context(), log).Errorw("Api Panic", "error", fmt.Sprint(rv), "stack", string(debug.Stack()))
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"status":  "error",
						"message": shared.ErrInternalServerError.Message(),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so that the first one listed runs outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
