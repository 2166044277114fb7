package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/tenant-dashboard/auth"
	"github.com/jrsteele09/tenant-dashboard/dashboard"
	"github.com/jrsteele09/tenant-dashboard/internal/config"
	"github.com/jrsteele09/tenant-dashboard/internal/telemetry"
	"github.com/jrsteele09/tenant-dashboard/reporting"
	"github.com/jrsteele09/tenant-dashboard/store"
	"github.com/jrsteele09/tenant-dashboard/token"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler // mux wrapped in the global middleware
	routes  []string
	config  config.Config
	repos   *store.Repos

	auth      *auth.Service
	tokens    *token.Manager
	fetcher   *reporting.Fetcher
	dashboard *dashboard.Service
	telemetry *telemetry.Metrics
}

func New(config config.Config, repos *store.Repos, options ...Option) (*Server, error) {
	opts := defaultOptions()
	for _, opt := range options {
		opt(opts)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		repos:     repos,
		telemetry: opts.telemetry,
	}

	if err := s.initServices(opts); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise services: %w", err)
	}

	s.initRoutes()
	s.handler = ChainHandler(s.mux, s.GlobalMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Dashboard exposes the dashboard service to the CLI.
func (s *Server) Dashboard() *dashboard.Service {
	return s.dashboard
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
