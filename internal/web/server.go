// Package web serves the browser views as HTML fragments for a small htmx
// page.
package web

import (
	"context"
	_ "embed"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

//go:embed page.html
var page string

const fetchTimeout = 20 * time.Second

type Server struct {
	Echo     *echo.Echo
	Provider anime.Provider
	Logger   *log.Logger
}

func NewServer(provider anime.Provider, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Error("Request failed", "method", v.Method, "uri", v.URI, "status", v.Status, "error", v.Error)
				return nil
			}
			logger.Info("Request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	}))

	s := &Server{
		Echo:     e,
		Provider: provider,
		Logger:   logger,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.Echo.GET("/", s.handleGetPage)
	s.Echo.GET("/healthz", s.handleGetHealth)

	views := s.Echo.Group("/views")
	views.GET("/home", s.handleGetHome)
	views.GET("/top-ten", s.handleGetTopTen)
	views.GET("/search", s.handleGetSearch)
	views.GET("/suggest", s.handleGetSuggest)
	views.GET("/random", s.handleGetRandom)
	views.GET("/info", s.handleGetInfo)
}

func (s *Server) Start(addr string) error {
	s.Logger.Info("Server listening", "addr", addr)
	return s.Echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("Shutting down server")
	return s.Echo.Shutdown(ctx)
}
