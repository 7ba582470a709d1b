// internal/server/server.go

// Package server exposes the pipeline to the webhook transport over
// HTTP, plus health and Prometheus metrics endpoints.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/observability"
)

type Config struct {
	AppName       string
	ListenAddress string
	ShutdownGrace time.Duration
}

type Server struct {
	config     *Config
	processor  MessageProcessor
	obs        *observability.Observability
	logger     logger.Logger
	httpServer *http.Server
}

func New(config *Config, processor MessageProcessor, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		config:    config,
		processor: processor,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "server"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.config.ListenAddress,
	})

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the configured grace period.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownGrace)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
