// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"math"
	"sort"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// ScoredCriterion joins one criterion with its resolved value and the
// weight it ended up carrying. Unresolved criteria stay in the output,
// marked, so every configured criterion is accounted for.
type ScoredCriterion struct {
	Criterion        Criterion `json:"criterion"`
	Resolved         bool      `json:"resolved"`
	UnresolvedReason string    `json:"unresolved_reason,omitempty"`
	Raw              float64   `json:"raw_value"`
	Normalized       float64   `json:"normalized_value"`
	NormalizedWeight float64   `json:"normalized_weight"`
	Weighted         float64   `json:"weighted_score"`
}

// ScoredSubmission is the terminal output of the engine for one
// submission.
type ScoredSubmission struct {
	SubmissionID string            `json:"submission_id"`
	Criteria     []ScoredCriterion `json:"criteria"`
	Total        float64           `json:"total"`
	// Unscored marks a run where no criterion resolved at all. The
	// total is 0 but that zero is not comparable to a submission that
	// legitimately scored 0 on every criterion.
	Unscored bool `json:"unscored"`
}

// Score resolves every criterion against the bundle and computes the
// weighted total.
//
// Weights are normalized to sum to 1.0 over the criteria that resolved;
// unresolved criteria contribute to neither numerator nor denominator.
// Metric values are assumed already scaled by their analyzers; the only
// rescaling here is each criterion's own declared min/max clamp.
func Score(bundle *domain.AnalysisBundle, criteria *Criteria) ScoredSubmission {
	out := ScoredSubmission{
		SubmissionID: bundle.SubmissionID,
		Criteria:     make([]ScoredCriterion, 0, len(criteria.Criteria)),
	}

	weightSum := 0.0
	resolved := make([]Resolved, len(criteria.Criteria))
	for i, criterion := range criteria.Criteria {
		resolved[i] = Resolve(bundle, criterion.Source)
		if resolved[i].OK {
			weightSum += criterion.Weight
		}
	}

	if weightSum == 0 {
		for i, criterion := range criteria.Criteria {
			out.Criteria = append(out.Criteria, ScoredCriterion{
				Criterion:        criterion,
				UnresolvedReason: resolved[i].Reason,
			})
		}
		out.Unscored = true
		return out
	}

	total := 0.0
	for i, criterion := range criteria.Criteria {
		sc := ScoredCriterion{Criterion: criterion}
		if !resolved[i].OK {
			sc.UnresolvedReason = resolved[i].Reason
			out.Criteria = append(out.Criteria, sc)
			continue
		}
		sc.Resolved = true
		sc.Raw = round3(resolved[i].Value)
		sc.Normalized = round3(criterion.Clamp(resolved[i].Value))
		sc.NormalizedWeight = criterion.Weight / weightSum
		sc.Weighted = sc.NormalizedWeight * criterion.Clamp(resolved[i].Value)
		total += sc.Weighted
		out.Criteria = append(out.Criteria, sc)
	}
	out.Total = round3(total)
	return out
}

// Rank orders scored submissions for the leaderboard: descending total,
// ties broken by ascending submission ID for a deterministic order.
func Rank(submissions []ScoredSubmission) {
	sort.SliceStable(submissions, func(i, j int) bool {
		if submissions[i].Total != submissions[j].Total {
			return submissions[i].Total > submissions[j].Total
		}
		return submissions[i].SubmissionID < submissions[j].SubmissionID
	})
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
