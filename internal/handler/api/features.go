// Package api exposes the feature pipeline over HTTP.
package api

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"

	models "TopoPull/internal/domain/models"
	"TopoPull/internal/handler/ws"
	"TopoPull/internal/services/ratelimit"
	"TopoPull/internal/services/tda"
	"TopoPull/internal/usecase"
	xcache "TopoPull/pkg/cache"
	xhttp "TopoPull/pkg/http"
	xlogger "TopoPull/pkg/logger"
)

// FeaturesHandler implements the Echo-based HTTP surface of the service.
type FeaturesHandler struct {
	logger  *xlogger.Logger
	runner  *usecase.FeatureRunner
	cache   xcache.Service
	limiter *ratelimit.Limiter
	hub     *ws.Hub

	cacheTTL     time.Duration
	rlCapacity   float64
	rlRefillRate float64
}

// HandlerOption configures FeaturesHandler.
type HandlerOption func(*FeaturesHandler)

// WithCache enables response caching for inline compute calls.
func WithCache(c xcache.Service, ttl time.Duration) HandlerOption {
	return func(h *FeaturesHandler) {
		h.cache = c
		if ttl > 0 {
			h.cacheTTL = ttl
		}
	}
}

// WithRateLimit enables per-client request limiting.
func WithRateLimit(l *ratelimit.Limiter, capacity, refillPerSec float64) HandlerOption {
	return func(h *FeaturesHandler) {
		h.limiter = l
		h.rlCapacity = capacity
		h.rlRefillRate = refillPerSec
	}
}

// WithStreamHub mounts the live WebSocket stream.
func WithStreamHub(hub *ws.Hub) HandlerOption {
	return func(h *FeaturesHandler) { h.hub = hub }
}

// NewFeaturesHandler creates the HTTP handler.
func NewFeaturesHandler(logger *xlogger.Logger, runner *usecase.FeatureRunner, opts ...HandlerOption) *FeaturesHandler {
	h := &FeaturesHandler{
		logger:       logger,
		runner:       runner,
		cacheTTL:     5 * time.Minute,
		rlCapacity:   10,
		rlRefillRate: 1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes mounts all routes on the Echo instance.
func (h *FeaturesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/features", h.Compute)
	g.GET("/runs/:run_id", h.GetRun)
	if h.hub != nil {
		g.GET("/stream", h.hub.Handle)
	}
}

// Compute runs the pipeline on an inline table.
func (h *FeaturesHandler) Compute(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP(), h.rlCapacity, h.rlRefillRate) {
		return xhttp.TooManyRequestsResponse(c, "rate limit exceeded")
	}

	req := &models.ComputeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()

	// Identical requests return the cached result instead of recomputing.
	var cacheKey string
	if h.cache != nil {
		if payload, err := json.Marshal(req); err == nil {
			cacheKey = xcache.GenerateKeyWithParams("features", xcache.HashKey(payload))
			var cached models.ComputeResponse
			if err := h.cache.Get(ctx, cacheKey, &cached); err == nil {
				cached.Cached = true
				return xhttp.SuccessResponse(c, &cached)
			}
		}
	}

	pipe, err := buildPipeline(req)
	if err != nil {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_INVALID_PARAMS",
			Message: err.Error(),
		}})
	}

	table := &models.Table{Rows: req.Table}
	summary, rows, err := h.runner.RunTable(ctx, pipe, table)
	if err != nil {
		h.logger.Error("compute usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("compute failed: %v", err))
	}
	resp := &models.ComputeResponse{RunID: summary.RunID, Rows: rows}

	if h.cache != nil && cacheKey != "" {
		if err := h.cache.Set(ctx, cacheKey, resp, h.cacheTTL); err != nil {
			h.logger.Warn("cache set failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, resp)
}

// GetRun returns stored feature rows for a past run.
func (h *FeaturesHandler) GetRun(c echo.Context) error {
	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.runner.GetRun(c.Request().Context(), req.RunID, req.Limit)
	if err != nil {
		h.logger.Error("get run error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("query failed: %v", err))
	}
	if len(rows) == 0 {
		return xhttp.NotFoundResponse(c, "run not found: "+req.RunID)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Health reports service liveness.
func (h *FeaturesHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// buildPipeline assembles the stages from request parameters. An end of
// zero means the whole table: end = len(table), so a 10-row table with
// window 5 yields windows at idx 5..9.
func buildPipeline(req *models.ComputeRequest) (*tda.Pipeline, error) {
	end := req.End
	if end == 0 {
		end = len(req.Table)
	}
	sel, err := tda.NewSelector(req.Start, end, req.Window)
	if err != nil {
		return nil, err
	}
	comp, err := tda.NewComputer(tda.ComputerConfig{
		MaxComplexDimension:  req.MaxComplexDimension,
		MaxEdgeLength:        req.MaxEdgeLength,
		CollapseEdges:        req.CollapseEdges,
		MaxHomologyDimension: req.MaxHomologyDimension,
		OnlyThisDimension:    req.OnlyThisDimension,
		CoefficientField:     uint64(req.CoefficientField),
		MinPersistence:       req.MinPersistence,
	})
	if err != nil {
		return nil, err
	}
	land, err := tda.NewLandscape(req.LandscapeLayers, req.LandscapeResolution)
	if err != nil {
		return nil, err
	}
	return &tda.Pipeline{Selector: sel, Computer: comp, Landscape: land}, nil
}
