// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"strings"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// Resolved is the outcome of looking up one criterion's metric path.
// Unresolved paths carry a reason for the report; they are excluded from
// the weighted sum but never crash aggregation.
type Resolved struct {
	Value float64
	OK    bool
	// Reason explains an unresolved lookup ("no such metric", "stage
	// failed", "not applicable", ...). Empty when OK.
	Reason string
}

func unresolved(reason string) Resolved {
	return Resolved{Reason: reason}
}

// Resolve walks a dotted metric path through the bundle, case-sensitive
// and segment by segment. No wildcards, no computed segments: the first
// segment selects the modality, the rest descend through the stage's
// typed metric map. A pure function: same bundle and path, same answer.
func Resolve(bundle *domain.AnalysisBundle, source string) Resolved {
	segments := strings.Split(source, ".")
	if len(segments) < 2 {
		return unresolved("path must name a modality and a metric")
	}

	stage, ok := bundle.Stage(domain.Modality(segments[0]))
	if !ok {
		return unresolved("unknown modality " + segments[0])
	}
	if stage.Status == domain.StageFailed {
		return unresolved("stage " + segments[0] + " failed")
	}

	current, ok := stage.Metric(segments[1])
	if !ok {
		return unresolved("no such metric " + strings.Join(segments[1:], "."))
	}
	for _, segment := range segments[2:] {
		if current.Kind != domain.MetricGroup {
			return unresolved("path descends past a leaf at " + segment)
		}
		current, ok = current.Group[segment]
		if !ok {
			return unresolved("no such metric " + strings.Join(segments[1:], "."))
		}
	}

	switch current.Kind {
	case domain.MetricNumber:
		return Resolved{Value: current.Number, OK: true}
	case domain.MetricNotApplicable:
		return unresolved("metric not applicable to this submission")
	default:
		return unresolved("path resolves to a metric group, not a number")
	}
}
