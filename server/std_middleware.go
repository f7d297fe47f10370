package server

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jrsteele09/eventhub-auth/internal/metrics"
)

// ChainMiddleware wraps routeFunction so that mw[0] runs first.
func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

// APIMiddleware returns the standard JSON API stack followed by mw.
func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.MaxBodyMiddleware,
	}
	return append(chainedMiddleWare, mw...)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := metrics.NewStatusWriter(w)
		start := time.Now()
		next(sw, r)

		event := s.logger.Info()
		if sw.Status() >= http.StatusInternalServerError {
			event = s.logger.Error()
		}
		method := r.Method
		if s.env == "DEV" {
			method = colourMethod(r.Method)
		}
		event.
			Str("method", method).
			Str("path", r.URL.Path).
			Int("status", sw.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := metrics.NewStatusWriter(w)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("path", r.URL.Path).
					Msg("recovered from panic")
				if !sw.Written() {
					writeJSON(sw, http.StatusInternalServerError, messageResponse{Message: "internal error"})
				}
			}
		}()
		next(sw, r)
	}
}

const maxBodyBytes = 1 << 20

func (s *Server) MaxBodyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		}
		next(w, r)
	}
}
