// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package eval computes classification reliability metrics used to
// calibrate the AI-authorship detector against labeled data.
package eval

import (
	"errors"
	"math"
	"sort"
)

// Point is one (x, y) coordinate on a ROC or PR curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BinaryResult holds reliability metrics for one score distribution
// against binary labels. Nil pointer fields mean the metric was
// undefined for the inputs (degenerate label distribution, empty
// confusion cell), which is different from a metric of zero.
type BinaryResult struct {
	AUROC          *float64 `json:"auroc"`
	Precision      *float64 `json:"precision"`
	Recall         *float64 `json:"recall"`
	F1             *float64 `json:"f1"`
	Threshold      float64  `json:"threshold"`
	ROCCurve       []Point  `json:"roc_curve"`
	PRCurve        []Point  `json:"pr_curve"`
	FPRAtTargetTPR *float64 `json:"fpr_at_target_tpr"`
	TargetTPR      float64  `json:"target_tpr"`
}

var (
	ErrEmptyInput    = errors.New("eval: inputs must not be empty")
	ErrLengthMismatch = errors.New("eval: labels and scores must have the same length")
	ErrNonBinaryLabel = errors.New("eval: labels must be 0 or 1")
)

// EvaluateBinary scores predictions against binary labels.
//
// threshold derives precision/recall/F1; targetTPR selects the FPR
// reported at that true-positive rate. Higher scores must mean "more
// positive".
func EvaluateBinary(labels []int, scores []float64, threshold, targetTPR float64) (*BinaryResult, error) {
	if len(labels) == 0 {
		return nil, ErrEmptyInput
	}
	if len(labels) != len(scores) {
		return nil, ErrLengthMismatch
	}
	positives := 0
	for _, l := range labels {
		if l != 0 && l != 1 {
			return nil, ErrNonBinaryLabel
		}
		positives += l
	}
	negatives := len(labels) - positives
	degenerate := positives == 0 || negatives == 0

	result := &BinaryResult{
		Threshold: threshold,
		TargetTPR: targetTPR,
		ROCCurve:  rocCurve(labels, scores),
		PRCurve:   prCurve(labels, scores),
	}
	if !degenerate {
		auroc := round6(areaUnderCurve(result.ROCCurve))
		result.AUROC = &auroc
		if fpr, ok := fprAtTargetTPR(labels, scores, targetTPR); ok {
			fpr = round6(fpr)
			result.FPRAtTargetTPR = &fpr
		}
	}
	result.Precision, result.Recall, result.F1 = summaryAtThreshold(labels, scores, threshold)
	return result, nil
}

type pair struct {
	score float64
	label int
}

func sortedByScoreDesc(labels []int, scores []float64) []pair {
	pairs := make([]pair, len(labels))
	for i := range labels {
		pairs[i] = pair{score: scores[i], label: labels[i]}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score > pairs[j].score })
	return pairs
}

func rocCurve(labels []int, scores []float64) []Point {
	positives := 0
	for _, l := range labels {
		positives += l
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return []Point{{0, 0}, {1, 1}}
	}

	tp, fp := 0, 0
	points := []Point{{0, 0}}
	var lastScore *float64
	for _, p := range sortedByScoreDesc(labels, scores) {
		if lastScore != nil && p.score != *lastScore {
			points = append(points, Point{float64(fp) / float64(negatives), float64(tp) / float64(positives)})
		}
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
		score := p.score
		lastScore = &score
	}
	points = append(points, Point{float64(fp) / float64(negatives), float64(tp) / float64(positives)})
	last := points[len(points)-1]
	if last.X != 1 || last.Y != 1 {
		points = append(points, Point{1, 1})
	}
	return points
}

func prCurve(labels []int, scores []float64) []Point {
	positives := 0
	for _, l := range labels {
		positives += l
	}
	if positives == 0 {
		return []Point{{1, 0}}
	}

	tp, fp := 0, 0
	points := []Point{{0, 1}}
	for _, p := range sortedByScoreDesc(labels, scores) {
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
		points = append(points, Point{
			X: float64(tp) / float64(positives),
			Y: float64(tp) / float64(tp+fp),
		})
	}
	return points
}

func areaUnderCurve(points []Point) float64 {
	if len(points) < 2 {
		return 0
	}
	area := 0.0
	for i := 1; i < len(points); i++ {
		width := points[i].X - points[i-1].X
		if width < 0 {
			width = 0
		}
		area += width * (points[i].Y + points[i-1].Y) / 2
	}
	return area
}

func summaryAtThreshold(labels []int, scores []float64, threshold float64) (precision, recall, f1 *float64) {
	tp, fp, fn := 0, 0, 0
	for i, label := range labels {
		predicted := 0
		if scores[i] >= threshold {
			predicted = 1
		}
		switch {
		case predicted == 1 && label == 1:
			tp++
		case predicted == 1 && label == 0:
			fp++
		case predicted == 0 && label == 1:
			fn++
		}
	}
	if tp+fp > 0 {
		p := round6(float64(tp) / float64(tp+fp))
		precision = &p
	}
	if tp+fn > 0 {
		r := round6(float64(tp) / float64(tp+fn))
		recall = &r
	}
	if precision != nil && recall != nil && *precision+*recall > 0 {
		f := round6(2 * *precision * *recall / (*precision + *recall))
		f1 = &f
	}
	return precision, recall, f1
}

func fprAtTargetTPR(labels []int, scores []float64, targetTPR float64) (float64, bool) {
	positives := 0
	for _, l := range labels {
		positives += l
	}
	negatives := len(labels) - positives
	if positives == 0 || negatives == 0 {
		return 0, false
	}

	tp, fp := 0, 0
	best := math.Inf(1)
	found := false
	for _, p := range sortedByScoreDesc(labels, scores) {
		if p.label == 1 {
			tp++
		} else {
			fp++
		}
		tpr := float64(tp) / float64(positives)
		fpr := float64(fp) / float64(negatives)
		if tpr >= targetTPR && fpr < best {
			best = fpr
			found = true
		}
	}
	return best, found
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
