// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateBinary_PerfectScores(t *testing.T) {
	labels := []int{1, 1, 0, 0}
	scores := []float64{0.9, 0.8, 0.2, 0.1}

	result, err := EvaluateBinary(labels, scores, 0.5, 0.95)
	require.NoError(t, err)

	require.NotNil(t, result.AUROC)
	assert.Equal(t, 1.0, *result.AUROC)
	require.NotNil(t, result.Precision)
	assert.Equal(t, 1.0, *result.Precision)
	require.NotNil(t, result.Recall)
	assert.Equal(t, 1.0, *result.Recall)
	require.NotNil(t, result.F1)
	assert.Equal(t, 1.0, *result.F1)
	require.NotNil(t, result.FPRAtTargetTPR)
	assert.Equal(t, 0.0, *result.FPRAtTargetTPR)
}

func TestEvaluateBinary_NoPositives(t *testing.T) {
	labels := []int{0, 0, 0}
	scores := []float64{0.2, 0.4, 0.8}

	result, err := EvaluateBinary(labels, scores, 0.5, 0.95)
	require.NoError(t, err)

	// AUROC and FPR@TPR are undefined without both classes.
	assert.Nil(t, result.AUROC)
	assert.Nil(t, result.FPRAtTargetTPR)
	// One prediction clears the 0.5 threshold and is a false positive.
	require.NotNil(t, result.Precision)
	assert.Equal(t, 0.0, *result.Precision)
	assert.Nil(t, result.Recall)
	assert.Nil(t, result.F1)
}

func TestEvaluateBinary_InvertedScores(t *testing.T) {
	labels := []int{1, 1, 0, 0}
	scores := []float64{0.1, 0.2, 0.8, 0.9}

	result, err := EvaluateBinary(labels, scores, 0.5, 0.95)
	require.NoError(t, err)

	require.NotNil(t, result.AUROC)
	assert.Equal(t, 0.0, *result.AUROC)
}

func TestEvaluateBinary_InputValidation(t *testing.T) {
	tests := []struct {
		name    string
		labels  []int
		scores  []float64
		wantErr error
	}{
		{"empty", nil, nil, ErrEmptyInput},
		{"length mismatch", []int{1, 0}, []float64{0.5}, ErrLengthMismatch},
		{"non-binary label", []int{2, 0}, []float64{0.5, 0.1}, ErrNonBinaryLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateBinary(tt.labels, tt.scores, 0.5, 0.95)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEvaluateBinary_CurveShapes(t *testing.T) {
	labels := []int{1, 0, 1, 0}
	scores := []float64{0.9, 0.7, 0.6, 0.3}

	result, err := EvaluateBinary(labels, scores, 0.5, 0.95)
	require.NoError(t, err)

	// ROC starts at (0,0) and ends at (1,1).
	require.GreaterOrEqual(t, len(result.ROCCurve), 2)
	assert.Equal(t, Point{0, 0}, result.ROCCurve[0])
	assert.Equal(t, Point{1, 1}, result.ROCCurve[len(result.ROCCurve)-1])

	// PR starts at recall 0, precision 1.
	require.NotEmpty(t, result.PRCurve)
	assert.Equal(t, Point{0, 1}, result.PRCurve[0])
}

func TestEvaluateBinary_ThresholdSweep(t *testing.T) {
	labels := []int{1, 1, 0, 0}
	scores := []float64{0.9, 0.4, 0.6, 0.1}

	// High threshold keeps only the 0.9 prediction: precision 1,
	// recall 0.5.
	result, err := EvaluateBinary(labels, scores, 0.8, 0.95)
	require.NoError(t, err)
	require.NotNil(t, result.Precision)
	assert.Equal(t, 1.0, *result.Precision)
	require.NotNil(t, result.Recall)
	assert.Equal(t, 0.5, *result.Recall)
}
