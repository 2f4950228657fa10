// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"math"
	"strings"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/provider"
)

// TextAnalyzer scores the written description. The similarity and
// originality computations are deterministic and always run; summary,
// claim extraction, and AI-authorship estimation each go through their
// own fallback chain.
//
// This is the one stage allowed to combine modalities: it merges the
// description with the video transcript for the combined summary. No
// other cross-stage coupling exists.
type TextAnalyzer struct {
	corpus          *Corpus
	topK            int
	summaryChain    *provider.Chain[string]
	claimChain      *provider.Chain[[]domain.ClaimFlag]
	likelihoodChain *provider.Chain[float64]
}

// TextChains bundles the three fallback chains the text stage drives.
type TextChains struct {
	Summary    *provider.Chain[string]
	Claims     *provider.Chain[[]domain.ClaimFlag]
	Likelihood *provider.Chain[float64]
}

// NewTextAnalyzer constructs the text stage. corpus may be empty but not
// nil; topK bounds similarity matches and flagged claims.
func NewTextAnalyzer(corpus *Corpus, topK int, chains TextChains) *TextAnalyzer {
	if topK <= 0 {
		topK = 5
	}
	return &TextAnalyzer{
		corpus:          corpus,
		topK:            topK,
		summaryChain:    chains.Summary,
		claimChain:      chains.Claims,
		likelihoodChain: chains.Likelihood,
	}
}

// Analyze produces the text StageResult. transcript is the video stage's
// output, passed in by the orchestrator; it feeds only the combined
// summary, never the deterministic metrics.
func (a *TextAnalyzer) Analyze(ctx context.Context, sub domain.Submission, transcript string) domain.StageResult {
	ctx, span := tracer.Start(ctx, "TextAnalyzer.Analyze")
	defer span.End()

	result := domain.NewStageResult(domain.ModalityText)
	description := strings.TrimSpace(sub.Description)

	// Deterministic block: similarity, originality, feasibility.
	matches := a.corpus.Match(description, a.topK)
	bestMatch := 0.0
	if len(matches) > 0 {
		bestMatch = matches[0].Score
	}
	result.Metrics["similarity_score"] = domain.Num(bestMatch)
	result.Metrics["originality_score"] = domain.Num(originality(description, bestMatch))
	result.Metrics["feasibility_score"] = domain.Num(feasibility(description))
	result.Evidence["similarity_matches"] = toSimilarityMatches(matches)

	in := provider.Input{Text: description, Transcript: transcript}

	// Combined summary: cloud -> local -> truncation heuristic.
	summaryOut := a.summaryChain.Run(ctx, in)
	result.Traces = append(result.Traces, summaryOut.Trace())
	if summaryOut.Exhausted {
		result.Evidence["summary"] = "No summary available."
		result.Degradations = append(result.Degradations, degradationFor(summaryOut.Task, summaryOut.Failures))
	} else {
		result.Evidence["summary"] = summaryOut.Value
	}

	// Claim extraction: cloud -> keyword heuristic. An empty claim list
	// from a healthy provider is a real result; only exhaustion degrades.
	claimOut := a.claimChain.Run(ctx, in)
	result.Traces = append(result.Traces, claimOut.Trace())
	if claimOut.Exhausted {
		result.Evidence["suspect_claims"] = []domain.ClaimFlag{}
		result.Metrics["claim_count"] = domain.NotApplicable()
		result.Degradations = append(result.Degradations, degradationFor(claimOut.Task, claimOut.Failures))
	} else {
		result.Evidence["suspect_claims"] = claimOut.Value
		result.Metrics["claim_count"] = domain.Num(float64(len(claimOut.Value)))
	}

	// AI-authorship likelihood: cloud -> local classifier -> stylometric.
	likelihoodOut := a.likelihoodChain.Run(ctx, in)
	result.Traces = append(result.Traces, likelihoodOut.Trace())
	if likelihoodOut.Exhausted {
		// 0.5 is the uninformative prior, distinct from a confident 0.
		result.Metrics["ai_generated_likelihood"] = domain.Num(0.5)
		result.Degradations = append(result.Degradations, degradationFor(likelihoodOut.Task, likelihoodOut.Failures))
	} else {
		result.Metrics["ai_generated_likelihood"] = domain.Num(likelihoodOut.Value)
	}

	result.Finish()
	return result
}

func degradationFor(task domain.AnalysisTask, failures []*provider.Failure) domain.Degradation {
	parts := make([]string, 0, len(failures))
	for _, f := range failures {
		parts = append(parts, f.Error())
	}
	return domain.Degradation{
		Task:   task,
		Detail: "all providers failed: " + strings.Join(parts, "; "),
	}
}

func toSimilarityMatches(matches []Match) []domain.SimilarityMatch {
	out := make([]domain.SimilarityMatch, len(matches))
	for i, m := range matches {
		out[i] = domain.SimilarityMatch{Source: m.Source, Score: round3(m.Score), Snippet: m.Snippet}
	}
	return out
}

// originality is lexical uniqueness discounted by the strongest corpus
// match. The 0.4 penalty factor is calibration, not contract.
func originality(description string, bestMatch float64) float64 {
	if description == "" {
		return 0
	}
	tokens := strings.Fields(description)
	unique := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		unique[strings.ToLower(tok)] = true
	}
	lexical := float64(len(unique)) / float64(len(tokens))
	score := lexical - bestMatch*0.4
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// feasibility is a log-scaled word-count proxy: longer, more concrete
// descriptions tend to describe buildable projects.
func feasibility(description string) float64 {
	words := len(strings.Fields(description))
	if words == 0 {
		return 0
	}
	score := math.Log10(float64(words) + 1)
	if score > 1 {
		return 1
	}
	return score
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
