package main

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	logpkg "github.com/kailas-cloud/seqsearch/internal/logger"
	chiTransport "github.com/kailas-cloud/seqsearch/internal/transport/chi"
)

const searchesPrefix = "/api/v1/searches/"

// probePaths are polled by orchestrators and logged at debug level only.
var probePaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// jsonRecoverer turns a handler panic into the API's JSON error body.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logpkg.FromContextOr(r.Context(), logger).Error("Handler panicked",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stacktrace"),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
					Code:    chiTransport.ErrorCodeInternalError,
					Message: "internal error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits one canonical log line per request, tagged with the
// matched route and the search id when the request created or addressed one.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("request_bytes", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
				zap.String("user_agent", r.UserAgent()),
			}
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				fields = append(fields, zap.String("route", rc.RoutePattern()))
			}
			if id := searchID(r, ww.Header()); id != "" {
				fields = append(fields, zap.String("search_id", id))
			}
			reqLogger.Log(eventLevel(r.URL.Path, ww.Status()), "http_request", fields...)
		})
	}
}

// searchID is taken from the {id} route parameter or, after a create, from Location.
func searchID(r *http.Request, h http.Header) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	if loc := h.Get("Location"); strings.HasPrefix(loc, searchesPrefix) {
		return strings.TrimPrefix(loc, searchesPrefix)
	}
	return ""
}

func eventLevel(path string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	if _, ok := probePaths[path]; ok {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
