// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package server exposes the judging engine over HTTP. Submissions are
// accepted onto a single-worker queue and judged asynchronously;
// clients poll job state and read the ranked leaderboard.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the HTTP service settings.
type Config struct {
	Addr            string
	WatchDir        string
	QueueDepth      int
	ShutdownTimeout time.Duration
}

// Server wires the gin engine, the job queue, and the optional
// submissions watcher.
type Server struct {
	cfg     Config
	queue   *Queue
	watcher *Watcher
	http    *http.Server
}

// New builds a server around the given judge function.
func New(cfg Config, judge JudgeFunc) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = ":8085"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	queue := NewQueue(judge, cfg.QueueDepth)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), MetricsMiddleware())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	RegisterRoutes(v1, NewHandlers(queue))

	srv := &Server{
		cfg:   cfg,
		queue: queue,
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	if cfg.WatchDir != "" {
		watcher, err := NewWatcher(cfg.WatchDir, queue)
		if err != nil {
			return nil, fmt.Errorf("submissions watcher: %w", err)
		}
		srv.watcher = watcher
	}
	return srv, nil
}

// Run serves until ctx is cancelled, then drains the queue and shuts
// the listener down.
func (s *Server) Run(ctx context.Context) error {
	s.queue.Start(ctx)
	if s.watcher != nil {
		s.watcher.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP service listening", "addr", s.cfg.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.queue.Close()
	return nil
}
