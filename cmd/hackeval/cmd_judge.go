// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hackeval/hackeval/cmd/hackeval/config"
	"github.com/hackeval/hackeval/services/judge/report"
	"github.com/hackeval/hackeval/services/judge/scoring"
)

// runJudge judges each submission directory in argument order, prints
// the ranked leaderboard, and writes per-submission reports plus a
// leaderboard CSV.
func runJudge(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	if criteriaPath != "" {
		cfg.Scoring.CriteriaPath = criteriaPath
	}
	if noCache {
		cfg.Pipeline.CacheEnabled = false
	}

	var traceOut *os.File
	if traceStdout {
		traceOut = os.Stderr
	}
	shutdownTracing, err := initTracing(traceOut)
	if err != nil {
		return err
	}
	defer shutdownTracing(cmd.Context())

	eng, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	var scored []scoring.ScoredSubmission
	for _, root := range args {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("submission %s is not a readable directory", root)
		}
		sub := submissionFromDir(root)
		logger.Info("judging submission", "submission_id", sub.ID)
		result, err := eng.Judge(cmd.Context(), sub)
		if err != nil {
			// A ceiling timeout on one submission should not discard
			// the others' scores.
			logger.Error("judging failed", "submission_id", sub.ID, "error", err)
			continue
		}
		scored = append(scored, *result)
	}

	if len(scored) == 0 {
		return fmt.Errorf("no submission produced a score")
	}

	scoring.Rank(scored)
	fmt.Println(report.RenderLeaderboard(scored))

	if path, err := eng.reporter.WriteLeaderboardCSV(scored); err != nil {
		logger.Warn("leaderboard CSV write failed", "error", err)
	} else {
		fmt.Printf("Leaderboard written to %s\n", path)
	}
	return nil
}
