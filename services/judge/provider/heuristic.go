// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// The heuristic providers are the cheapest rung of each chain: pure
// functions that always succeed. Their constants are tunable calibration
// values, not load-bearing behavior.

// NewHeuristicSummarizer truncates to the first maxWords words.
func NewHeuristicSummarizer(maxWords int) Provider[string] {
	if maxWords <= 0 {
		maxWords = 40
	}
	return Func[string]{
		ProviderName: "heuristic-summarizer",
		Fn: func(_ context.Context, in Input) (string, *Failure) {
			text := strings.TrimSpace(mergedText(in))
			if text == "" {
				return "No project description provided.", nil
			}
			words := strings.Fields(text)
			if len(words) <= maxWords {
				return text, nil
			}
			return strings.Join(words[:maxWords], " ") + "...", nil
		},
	}
}

var (
	numberPattern   = regexp.MustCompile(`\b\d+(?:\.\d+)?%?`)
	sentenceSplit   = regexp.MustCompile(`[.!?]\s+`)
	claimKeywords   = []string{"accuracy", "guarantee", "perfect", "zero", "100%", "95%", "state-of-the-art", "breakthrough"}
	absoluteMarkers = []string{"guarantee", "zero"}
	hypeMarkers     = []string{"state-of-the-art", "breakthrough"}
)

// NewKeywordClaimFlagger flags sentences carrying numbers or promotional
// keywords. Zero flags is a legitimate outcome, not a failure.
func NewKeywordClaimFlagger(maxClaims int) Provider[[]domain.ClaimFlag] {
	if maxClaims <= 0 {
		maxClaims = 5
	}
	return Func[[]domain.ClaimFlag]{
		ProviderName: "keyword-claim-flagger",
		Fn: func(_ context.Context, in Input) ([]domain.ClaimFlag, *Failure) {
			return flagClaims(in.Text, maxClaims), nil
		},
	}
}

func flagClaims(text string, maxClaims int) []domain.ClaimFlag {
	flags := []domain.ClaimFlag{}
	for _, sentence := range sentenceSplit.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		numbers := numberPattern.FindAllString(sentence, -1)
		lower := strings.ToLower(sentence)
		keywordHit := false
		for _, kw := range claimKeywords {
			if strings.Contains(lower, kw) {
				keywordHit = true
				break
			}
		}
		if len(numbers) == 0 && !keywordHit {
			continue
		}

		var reasons []string
		var high []string
		for _, num := range numbers {
			if strings.HasSuffix(num, "%") {
				if v, err := strconv.ParseFloat(strings.TrimSuffix(num, "%"), 64); err == nil && v >= 90 {
					high = append(high, num)
				}
			}
		}
		if len(high) > 0 {
			reasons = append(reasons, "High success figures: "+strings.Join(high, ", "))
		}
		for _, marker := range absoluteMarkers {
			if strings.Contains(lower, marker) {
				reasons = append(reasons, "Potentially absolute claim")
				break
			}
		}
		for _, marker := range hypeMarkers {
			if strings.Contains(lower, marker) {
				reasons = append(reasons, "Marketing language detected")
				break
			}
		}
		if len(reasons) == 0 {
			reasons = append(reasons, "Contains quantifiable claim requiring verification")
		}
		flags = append(flags, domain.ClaimFlag{Statement: sentence, Reason: strings.Join(reasons, "; ")})
		if len(flags) >= maxClaims {
			break
		}
	}
	return flags
}

var (
	wordPattern = regexp.MustCompile(`\b\w+\b`)
	pronouns    = map[string]bool{"i": true, "we": true, "our": true, "us": true, "team": true}
)

// NewStylometricLikelihood estimates AI-authorship from repetitiveness
// and the absence of personal pronouns.
func NewStylometricLikelihood() Provider[float64] {
	return Func[float64]{
		ProviderName: "stylometric-ai-detector",
		Fn: func(_ context.Context, in Input) (float64, *Failure) {
			return stylometricLikelihood(in.Text), nil
		},
	}
}

func stylometricLikelihood(text string) float64 {
	tokens := wordPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return 0
	}
	pronounCount := 0
	unique := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if pronouns[tok] {
			pronounCount++
		}
		unique[tok] = true
	}
	pronounRatio := float64(pronounCount) / float64(len(tokens))
	uniqueRatio := float64(len(unique)) / float64(len(tokens))
	repetition := 1.0 - uniqueRatio
	if repetition < 0 {
		repetition = 0
	}
	likelihood := 0.4*repetition + 0.3*(0.2-pronounRatio)
	return clamp01(likelihood + 0.3)
}

// NewFileCountInsight is the cheapest code-insight rung: a one-line note
// estimated from tree size alone.
func NewFileCountInsight() Provider[string] {
	return Func[string]{
		ProviderName: "file-count-insight",
		Fn: func(_ context.Context, in Input) (string, *Failure) {
			n := len(in.Files)
			switch {
			case n == 0:
				return "No source files were submitted.", nil
			case n < 5:
				return "Small submission; review is quick but scope may be limited.", nil
			case n < 30:
				return "Mid-sized submission with a conventional file layout.", nil
			default:
				return "Large submission; automated metrics matter more than spot checks.", nil
			}
		},
	}
}
