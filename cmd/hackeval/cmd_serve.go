// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hackeval/hackeval/cmd/hackeval/config"
	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/scoring"
	"github.com/hackeval/hackeval/services/judge/server"
)

// runServe runs the judging HTTP service until SIGINT/SIGTERM.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if watchDir != "" {
		cfg.Server.WatchDir = watchDir
	}

	shutdownTracing, err := initTracing(nil)
	if err != nil {
		return err
	}
	defer shutdownTracing(cmd.Context())

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	judge := func(ctx context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
		return eng.Judge(ctx, sub)
	}

	srv, err := server.New(server.Config{
		Addr:       cfg.Server.Addr,
		WatchDir:   expandHome(cfg.Server.WatchDir),
		QueueDepth: cfg.Server.QueueDepth,
	}, judge)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
