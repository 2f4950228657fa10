// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is stamped by the release build.
var version = "dev"

// --- Global Command Variables ---
var (
	criteriaPath string
	noCache      bool
	traceStdout  bool

	scoreColumn string
	labelColumn string
	threshold   float64
	targetTPR   float64

	serveAddr string
	watchDir  string

	rootCmd = &cobra.Command{
		Use:   "hackeval",
		Short: "A cli to judge hackathon submissions with fallback AI analysis",
		Long: `Hackeval analyzes hackathon submissions across video, text, and code
stages, scores them against a weighted rubric, and ranks the results.
Each AI capability runs through a fallback chain: cloud model first,
local model next, deterministic heuristic last.`,
	}

	// --- Judging ---
	judgeCmd = &cobra.Command{
		Use:   "judge [submission dir...]",
		Short: "Judge one or more submission directories and print the leaderboard",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runJudge, // Defined in cmd_judge.go
	}

	// --- HTTP Service ---
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the judging HTTP service with an async job queue",
		RunE:  runServe, // Defined in cmd_serve.go
	}

	// --- Calibration ---
	evaluateCmd = &cobra.Command{
		Use:   "evaluate [csv]",
		Short: "Evaluate judge scores against human labels from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvaluate, // Defined in cmd_evaluate.go
	}

	// --- Criteria ---
	criteriaCmd = &cobra.Command{
		Use:   "criteria",
		Short: "Inspect and validate scoring rubrics",
	}
	criteriaValidateCmd = &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a criteria rubric file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCriteriaValidate, // Defined in cmd_criteria.go
	}
	criteriaShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the built-in default rubric",
		RunE:  runCriteriaShow, // Defined in cmd_criteria.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the hackeval version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("hackeval", version)
		},
	}
)

func init() {
	judgeCmd.Flags().StringVar(&criteriaPath, "criteria", "", "Path to a criteria rubric (overrides config)")
	judgeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Skip the analysis bundle cache")
	judgeCmd.Flags().BoolVar(&traceStdout, "trace", false, "Print pipeline spans to stderr")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&watchDir, "watch", "", "Directory to watch for new submissions (overrides config)")

	evaluateCmd.Flags().StringVar(&scoreColumn, "score-column", "score_total", "Column containing judge scores")
	evaluateCmd.Flags().StringVar(&labelColumn, "label-column", "human_label", "Column containing binary human labels")
	evaluateCmd.Flags().Float64Var(&threshold, "threshold", 0.5, "Score threshold for precision/recall/F1")
	evaluateCmd.Flags().Float64Var(&targetTPR, "target-tpr", 0.95, "Target true-positive rate for the FPR@TPR metric")

	criteriaCmd.AddCommand(criteriaValidateCmd, criteriaShowCmd)
	rootCmd.AddCommand(judgeCmd, serveCmd, evaluateCmd, criteriaCmd, versionCmd)
}
