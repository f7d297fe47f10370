package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/eventhub-auth/auth"
	"github.com/jrsteele09/eventhub-auth/internal/config"
	"github.com/jrsteele09/eventhub-auth/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Settings is the part of the configuration the server reads.
type Settings interface {
	config.EnvConfig
	config.SecurityConfig
}

// Services holds the auth components the handlers and gates call into.
type Services struct {
	Sessions   *auth.SessionService
	Authorizer *auth.Authorizer
}

type Server struct {
	env           string // Environment (e.g., "DEV", "PROD")
	appName       string
	mux           *http.ServeMux
	routes        []string
	sessions      *auth.SessionService
	authorizer    *auth.Authorizer
	metrics       *metrics.Metrics
	gatherer      prometheus.Gatherer
	signinLimiter *ipRateLimiter
	trustProxy    bool
	logger        zerolog.Logger
}

type ServerOption func(*Server)

// WithMetrics records into m and serves g on the metrics route.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) ServerOption {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(settings Settings, services Services, options ...ServerOption) (*Server, error) {
	if settings == nil {
		return nil, fmt.Errorf("[Server New] settings are required")
	}
	if services.Sessions == nil {
		return nil, fmt.Errorf("[Server New] session service is required")
	}
	if services.Authorizer == nil {
		return nil, fmt.Errorf("[Server New] authorizer is required")
	}

	s := &Server{
		env:        settings.GetEnv(),
		appName:    settings.GetAppName(),
		mux:        http.NewServeMux(),
		sessions:   services.Sessions,
		authorizer: services.Authorizer,
		trustProxy: settings.GetTrustProxyHeaders(),
		logger:     log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.metrics == nil {
		reg := prometheus.NewRegistry()
		s.metrics = metrics.New(reg)
		s.gatherer = reg
	}
	if perSecond := settings.GetSigninRatePerSecond(); perSecond > 0 {
		s.signinLimiter = newIPRateLimiter(perSecond, settings.GetSigninBurst())
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// RegisterRouteHandler registers handler under pattern with request metrics
// labelled by the pattern.
func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.RegisterRouteFunc(pattern, handler.ServeHTTP)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, s.metrics.Instrument(pattern, handler))
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logger.Debug().Msgf("[%-19s] %s", colourMethod(parts[0]), parts[1])
		} else {
			s.logger.Debug().Msgf("[%-19s] %s", colourMethod(""), parts[0])
		}
	}
}
