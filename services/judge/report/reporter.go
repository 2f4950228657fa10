// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package report renders human-readable evidence from analysis bundles
// and scored results. The engine itself never persists anything; this is
// the reporting collaborator.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/scoring"
)

// Reporter writes per-submission reports and the aggregate leaderboard
// under one output directory.
type Reporter struct {
	outputDir string
}

// NewReporter creates the output directory if needed.
func NewReporter(outputDir string) (*Reporter, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &Reporter{outputDir: outputDir}, nil
}

// WriteSubmissionReport renders one submission's score breakdown and
// analysis evidence to a plain-text file and returns its path.
func (r *Reporter) WriteSubmissionReport(bundle *domain.AnalysisBundle, scored scoring.ScoredSubmission) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hackathon Judging Report: %s\n", scored.SubmissionID)
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if scored.Unscored {
		b.WriteString("Total score: UNSCORED (no criterion could be resolved)\n\n")
	} else {
		fmt.Fprintf(&b, "Total score: %.3f\n\n", scored.Total)
	}

	b.WriteString("Criteria Breakdown:\n")
	for _, sc := range scored.Criteria {
		if !sc.Resolved {
			fmt.Fprintf(&b, "- %s: UNRESOLVED (%s)\n", sc.Criterion.Label, sc.UnresolvedReason)
			continue
		}
		fmt.Fprintf(&b, "- %s [%.1f%% weight]\n", sc.Criterion.Label, sc.NormalizedWeight*100)
		fmt.Fprintf(&b, "  Raw: %.3f, Normalized: %.3f, Weighted contribution: %.3f\n",
			sc.Raw, sc.Normalized, sc.Weighted)
		if sc.Criterion.Description != "" {
			fmt.Fprintf(&b, "  Notes: %s\n", sc.Criterion.Description)
		}
	}

	b.WriteString("\nStage Outcomes:\n")
	for _, stage := range []*domain.StageResult{&bundle.Video, &bundle.Text, &bundle.Code} {
		timing := bundle.Timings[stage.Stage]
		fmt.Fprintf(&b, "- %s: %s (%s)\n", stage.Stage, stage.Status, timing.Duration.Round(time.Millisecond))
		for _, d := range stage.Degradations {
			fmt.Fprintf(&b, "  degraded: %s: %s\n", d.Task, d.Detail)
		}
		for _, t := range stage.Traces {
			if t.Satisfied != "" {
				fmt.Fprintf(&b, "  %s served by %s", t.Task, t.Satisfied)
			} else {
				fmt.Fprintf(&b, "  %s exhausted", t.Task)
			}
			if len(t.Failures) > 0 {
				fmt.Fprintf(&b, " after %d failed attempt(s): %s", len(t.Failures), strings.Join(t.Failures, "; "))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\nEvidence:\n")
	for _, stage := range []*domain.StageResult{&bundle.Video, &bundle.Text, &bundle.Code} {
		writeEvidence(&b, stage)
	}

	path := filepath.Join(r.outputDir, scored.SubmissionID+"_report.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o640); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func writeEvidence(b *strings.Builder, stage *domain.StageResult) {
	if len(stage.Evidence) == 0 {
		return
	}
	fmt.Fprintf(b, "  [%s]\n", stage.Stage)
	if summary, ok := stage.Evidence["summary"].(string); ok {
		fmt.Fprintf(b, "    summary: %s\n", summary)
	}
	if claims, ok := stage.Evidence["suspect_claims"].([]domain.ClaimFlag); ok {
		for _, c := range claims {
			fmt.Fprintf(b, "    claim: %q (%s)\n", c.Statement, c.Reason)
		}
	}
	if matches, ok := stage.Evidence["similarity_matches"].([]domain.SimilarityMatch); ok {
		for _, m := range matches {
			fmt.Fprintf(b, "    similar to %s (%.3f): %s\n", m.Source, m.Score, m.Snippet)
		}
	}
	if insight, ok := stage.Evidence["insight"].(string); ok {
		fmt.Fprintf(b, "    insight: %s\n", insight)
	}
}

// WriteLeaderboardCSV writes the ranked leaderboard. Callers pass the
// slice through scoring.Rank first; this function preserves order.
func (r *Reporter) WriteLeaderboardCSV(ranked []scoring.ScoredSubmission) (string, error) {
	var b strings.Builder
	b.WriteString("rank,submission,total_score,unscored\n")
	for i, s := range ranked {
		fmt.Fprintf(&b, "%d,%s,%.3f,%t\n", i+1, s.SubmissionID, s.Total, s.Unscored)
	}
	path := filepath.Join(r.outputDir, "leaderboard.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o640); err != nil {
		return "", fmt.Errorf("write leaderboard: %w", err)
	}
	return path, nil
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	rankStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Width(5)
	unscoredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderLeaderboard formats the ranked leaderboard for the terminal,
// styled only when stdout is a TTY.
func RenderLeaderboard(ranked []scoring.ScoredSubmission) string {
	styled := isatty.IsTerminal(os.Stdout.Fd())
	var b strings.Builder

	header := fmt.Sprintf("%-5s %-30s %s", "RANK", "SUBMISSION", "SCORE")
	if styled {
		header = headerStyle.Render(header)
	}
	b.WriteString(header + "\n")

	for i, s := range ranked {
		rank := fmt.Sprintf("%-5d", i+1)
		score := fmt.Sprintf("%.3f", s.Total)
		if s.Unscored {
			score = "unscored"
			if styled {
				score = unscoredStyle.Render(score)
			}
		}
		if styled {
			rank = rankStyle.Render(fmt.Sprintf("%d", i+1))
		}
		fmt.Fprintf(&b, "%s %-30s %s\n", rank, s.SubmissionID, score)
	}
	return b.String()
}
