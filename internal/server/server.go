// Package server exposes the projection engine and reference lookups over HTTP.
package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpgo/policy-projector/internal/calculation"
	"github.com/rpgo/policy-projector/internal/config"
	"github.com/rpgo/policy-projector/internal/refdata"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// RequestIDHeader carries the per-request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

const maxBodySize = 1 << 20

// Server routes API requests to the engine using the store's current reference data.
type Server struct {
	engine  *calculation.Engine
	store   *refdata.Store
	parser  *config.InputParser
	logger  calculation.Logger
	metrics *metrics

	metricsHandler fasthttp.RequestHandler
	http           *fasthttp.Server
}

// New creates a server. The engine's logger is also used for request logging.
func New(engine *calculation.Engine, store *refdata.Store) *Server {
	s := &Server{
		engine:  engine,
		store:   store,
		parser:  config.NewInputParser(),
		logger:  engine.Logger,
		metrics: newMetrics(),
	}
	if s.logger == nil {
		s.logger = calculation.NopLogger{}
	}
	s.metricsHandler = fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return s
}

// Registry exposes the server's metric registry.
func (s *Server) Registry() *prometheus.Registry { return s.metrics.registry }

// ObserveLoad records a reference table read; pass it to refdata.Loader.SetObserver.
func (s *Server) ObserveLoad(file string, elapsed time.Duration, err error) {
	s.metrics.observeLoad(file, elapsed, err)
}

// ObserveRefresh records the outcome of a scheduled refresh.
func (s *Server) ObserveRefresh(err error) { s.metrics.observeRefresh(err) }

// Handler returns the routed handler with request id and metrics middleware applied.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.instrument(s.route)
}

// ListenAndServe serves on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &fasthttp.Server{
		Handler:            s.Handler(),
		Name:               "policy-projector",
		MaxRequestBodySize: maxBodySize,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       30 * time.Second,
	}
	s.logger.Infof("listening on %s", addr)
	return s.http.ListenAndServe(addr)
}

// Shutdown stops a server started with ListenAndServe.
func (s *Server) Shutdown() error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown()
}

func (s *Server) instrument(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		id := string(ctx.Request.Header.Peek(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		ctx.SetUserValue(requestIDKey, id)
		ctx.Response.Header.Set(RequestIDHeader, id)

		next(ctx)

		route := routeLabel(string(ctx.Path()))
		code := ctx.Response.StatusCode()
		s.metrics.observeRequest(route, code, time.Since(start))
		s.logger.Debugf("%s %s %d %s id=%s", ctx.Method(), ctx.Path(), code, time.Since(start), id)
	}
}

const requestIDKey = "request_id"

func requestID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(requestIDKey).(string)
	return id
}

// errorResponse is the body of every non-2xx JSON reply.
type errorResponse struct {
	Status    int    `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"status":500,"message":"encoding failed"}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, errorResponse{Status: status, Message: message, RequestID: requestID(ctx)})
}
