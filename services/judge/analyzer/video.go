// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analyzer holds the stage analyzers that turn one submission
// into per-modality StageResults. Each analyzer combines fallback chains
// with deterministic local computations; the deterministic parts always
// run and never sit inside a chain.
package analyzer

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/hackeval/hackeval/services/judge/domain"
)

var tracer = otel.Tracer("hackeval.judge.analyzer")

// VideoAnalyzer scores the presentation modality. Transcription itself
// happens upstream; this stage consumes a transcript file when one
// exists and degrades to the written description when it doesn't. That
// degradation path is designed behavior, not an error.
type VideoAnalyzer struct{}

// NewVideoAnalyzer constructs the video stage.
func NewVideoAnalyzer() *VideoAnalyzer { return &VideoAnalyzer{} }

// Analyze produces the video StageResult. It never returns an error:
// provider-style unavailability (no transcript) degrades, and programming
// errors are left to panic for the orchestrator's stage boundary.
func (a *VideoAnalyzer) Analyze(ctx context.Context, sub domain.Submission) domain.StageResult {
	_, span := tracer.Start(ctx, "VideoAnalyzer.Analyze")
	defer span.End()

	result := domain.NewStageResult(domain.ModalityVideo)

	transcript, source := a.resolveTranscript(sub)
	if transcript == "" {
		// No transcript and no description. Score neutral floors and say so.
		result.Metrics["clarity_score"] = domain.Num(0)
		result.Metrics["sentiment_score"] = domain.Num(0.5)
		result.Metrics["duration_score"] = domain.NotApplicable()
		result.Evidence["transcript"] = ""
		result.Evidence["transcript_source"] = "none"
		result.Degradations = append(result.Degradations, domain.Degradation{
			Task:   domain.AnalysisTask{Modality: domain.ModalityVideo, Capability: "transcript"},
			Detail: "no transcript or description available; clarity floored",
		})
		result.Finish()
		return result
	}

	result.Metrics["clarity_score"] = domain.Num(estimateClarity(transcript))
	result.Metrics["sentiment_score"] = domain.Num(estimateSentiment(transcript))
	result.Metrics["duration_score"] = domain.Num(durationScore(transcript))
	result.Evidence["transcript"] = transcript
	result.Evidence["transcript_source"] = source
	result.Evidence["estimated_duration_seconds"] = estimateDurationSeconds(transcript)

	if source != "transcript" {
		result.Degradations = append(result.Degradations, domain.Degradation{
			Task:   domain.AnalysisTask{Modality: domain.ModalityVideo, Capability: "transcript"},
			Detail: "no presentation transcript; fell back to description text",
		})
	}
	result.Finish()
	return result
}

// Transcript returns the text the video stage worked from, for reuse by
// the text stage's merge. Reading it twice keeps the stages decoupled.
func (a *VideoAnalyzer) Transcript(sub domain.Submission) string {
	transcript, _ := a.resolveTranscript(sub)
	return transcript
}

func (a *VideoAnalyzer) resolveTranscript(sub domain.Submission) (text, source string) {
	if sub.TranscriptPath != "" {
		data, err := os.ReadFile(sub.TranscriptPath)
		if err == nil && strings.TrimSpace(string(data)) != "" {
			return strings.TrimSpace(string(data)), "transcript"
		}
		if err != nil && !os.IsNotExist(err) {
			slog.Warn("transcript unreadable, falling back to description",
				"path", sub.TranscriptPath, "error", err)
		}
	}
	if strings.TrimSpace(sub.Description) != "" {
		return strings.TrimSpace(sub.Description), "description_fallback"
	}
	return "", "none"
}

// estimateClarity rates sentence density: transcripts chopped into
// reasonable sentences read clearer than run-ons.
func estimateClarity(transcript string) float64 {
	sentences := strings.Count(transcript, ".") +
		strings.Count(transcript, "!") +
		strings.Count(transcript, "?")
	words := len(strings.Fields(transcript))
	if words == 0 {
		return 0
	}
	denom := float64(words) / 15.0
	if denom < 1 {
		denom = 1
	}
	clarity := float64(sentences) / denom
	if clarity < 0.3 {
		clarity = 0.3
	}
	if clarity > 1 {
		clarity = 1
	}
	return clarity
}

var (
	positiveWords = map[string]bool{
		"great": true, "excited": true, "love": true, "easy": true, "fast": true,
		"improve": true, "improves": true, "helps": true, "simple": true, "works": true,
	}
	negativeWords = map[string]bool{
		"hard": true, "difficult": true, "problem": true, "fail": true, "failed": true,
		"broken": true, "slow": true, "unfortunately": true, "issue": true, "issues": true,
	}
)

// estimateSentiment is a word-list polarity score mapped to [0,1] with
// 0.5 neutral. Coarse on purpose; the model-backed variant lives behind
// the cloud providers, not here.
func estimateSentiment(transcript string) float64 {
	pos, neg := 0, 0
	for _, tok := range strings.Fields(strings.ToLower(transcript)) {
		tok = strings.Trim(tok, ".,!?;:")
		if positiveWords[tok] {
			pos++
		} else if negativeWords[tok] {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0.5
	}
	return 0.5 + 0.5*float64(pos-neg)/float64(total)
}

// estimateDurationSeconds assumes ~2.5 spoken words per second with a
// 30-second floor.
func estimateDurationSeconds(transcript string) float64 {
	seconds := float64(len(strings.Fields(transcript))) / 2.5
	if seconds < 30 {
		seconds = 30
	}
	return seconds
}

// durationScore rewards pitches near the common 3-minute mark and decays
// toward 0 for very short or very long ones.
func durationScore(transcript string) float64 {
	seconds := estimateDurationSeconds(transcript)
	const ideal = 180.0
	diff := seconds - ideal
	if diff < 0 {
		diff = -diff
	}
	score := 1 - diff/ideal
	if score < 0 {
		return 0
	}
	return score
}
