// Package http provides the HTTP API for showcase.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/showcase/internal/filters"
	"github.com/fyrsmithlabs/showcase/internal/logging"
	"github.com/fyrsmithlabs/showcase/internal/project"
	"github.com/fyrsmithlabs/showcase/internal/results"
)

// Catalog provides the full project list.
type Catalog interface {
	Projects() []project.Project
}

// ResultsReader provides the latest published results.
type ResultsReader interface {
	Snapshot() results.Snapshot
}

// Deps are the stores the API reads and mutates.
type Deps struct {
	Filters    *filters.Store
	Catalog    Catalog
	Results    ResultsReader
	Dimensions project.Dimensions
}

// Server provides HTTP endpoints for showcase.
type Server struct {
	echo    *echo.Echo
	logger  *zap.Logger
	config  *Config
	deps    Deps
	limiter *clientLimiter
}

// Config holds HTTP server configuration.
type Config struct {
	Host      string
	Port      int
	RateLimit float64 // mutating requests per second per client; <= 0 disables
	RateBurst int
}

// NewServer creates a new HTTP server.
func NewServer(deps Deps, logger *zap.Logger, cfg *Config) (*Server, error) {
	if deps.Filters == nil {
		return nil, fmt.Errorf("filter store cannot be nil")
	}
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}
	if deps.Results == nil {
		return nil, fmt.Errorf("results reader cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host:      "localhost",
			Port:      9090,
			RateLimit: 10,
			RateBurst: 20,
		}
	}
	if deps.Dimensions == nil {
		deps.Dimensions = project.DefaultDimensions()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithRequestID(req.Context(), requestID)))

			err := next(c)
			if err != nil {
				// Let echo write the error so the logged status is the real one.
				c.Error(err)
				err = nil
			}

			logger.Info("http request",
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestID),
			)
			return err
		}
	})
	e.Use(NewHTTPMetrics(logger).MetricsMiddleware())

	s := &Server{
		echo:    e,
		logger:  logger,
		config:  cfg,
		deps:    deps,
		limiter: newClientLimiter(cfg.RateLimit, cfg.RateBurst),
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/results", s.handleResults)
	v1.GET("/projects", s.handleProjects)
	v1.GET("/dimensions", s.handleDimensions)
	v1.GET("/filters", s.handleGetFilters)

	limited := s.limiter.middleware()
	v1.PUT("/filters", s.handleSetFilters, limited)
	v1.DELETE("/filters", s.handleClearFilters, limited)
	v1.POST("/filters/toggle", s.handleToggleFilter, limited)
	v1.PUT("/search", s.handleSearch, limited)
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Projects: len(s.deps.Catalog.Projects()),
		Revision: s.deps.Results.Snapshot().Revision,
	})
}

func (s *Server) handleResults(c echo.Context) error {
	return c.JSON(http.StatusOK, s.deps.Results.Snapshot())
}

func (s *Server) handleProjects(c echo.Context) error {
	projects := s.deps.Catalog.Projects()
	if projects == nil {
		projects = []project.Project{}
	}
	return c.JSON(http.StatusOK, ProjectsResponse{Count: len(projects), Projects: projects})
}

func (s *Server) handleDimensions(c echo.Context) error {
	facets := s.deps.Dimensions.Facets(s.deps.Catalog.Projects())

	resp := DimensionsResponse{Dimensions: make([]DimensionFacet, 0, len(s.deps.Dimensions))}
	for _, d := range s.deps.Dimensions {
		resp.Dimensions = append(resp.Dimensions, DimensionFacet{Name: string(d), Values: facets[d]})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, s.filtersResponse())
}

func (s *Server) handleSetFilters(c echo.Context) error {
	var req SetFiltersRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid filters request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	set := project.NewFilterSet()
	for _, f := range req.Filters {
		if err := s.validateFilter(f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		set[f] = struct{}{}
	}

	s.deps.Filters.SetSelectedFilters(set)
	s.logger.Debug("filters replaced", zap.Int("filters", set.Len()))

	return c.JSON(http.StatusOK, s.filtersResponse())
}

func (s *Server) handleClearFilters(c echo.Context) error {
	s.deps.Filters.ClearFilters()
	return c.JSON(http.StatusOK, s.filtersResponse())
}

func (s *Server) handleToggleFilter(c echo.Context) error {
	var req ToggleFilterRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid toggle request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	f := project.Filter{Dimension: project.Dimension(req.Dimension), Value: req.Value}
	if err := s.validateFilter(f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	selected := s.deps.Filters.ToggleFilter(f)
	s.logger.Debug("filter toggled", zap.Stringer("filter", f), zap.Bool("selected", selected))

	return c.JSON(http.StatusOK, ToggleFilterResponse{
		Selected:        selected,
		FiltersResponse: s.filtersResponse(),
	})
}

func (s *Server) handleSearch(c echo.Context) error {
	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid search request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Title == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "title field is required")
	}

	s.deps.Filters.SetTitleSubstring(*req.Title)

	// The run is debounced, so the results endpoint may lag briefly.
	return c.JSON(http.StatusAccepted, s.filtersResponse())
}

func (s *Server) validateFilter(f project.Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	if _, err := s.deps.Dimensions.Parse(string(f.Dimension)); err != nil {
		return err
	}
	return nil
}

func (s *Server) filtersResponse() FiltersResponse {
	return FiltersResponse{
		Filters: s.deps.Filters.SelectedFilters().Slice(),
		Title:   s.deps.Filters.TitleSubstring(),
	}
}

// Start starts the HTTP server. It returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
