// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageResult_UnmarshalRestoresTypedEvidence(t *testing.T) {
	result := NewStageResult(ModalityText)
	result.Evidence["summary"] = "A planning tool."
	result.Evidence["suspect_claims"] = []ClaimFlag{
		{Statement: "99% accuracy", Reason: "High success figures: 99%"},
	}
	result.Evidence["similarity_matches"] = []SimilarityMatch{
		{Source: "prior-project", Score: 0.412, Snippet: "an earlier planning tool"},
	}
	result.Finish()

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded StageResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	claims, ok := decoded.Evidence["suspect_claims"].([]ClaimFlag)
	require.True(t, ok, "suspect_claims should decode back to []ClaimFlag")
	require.Len(t, claims, 1)
	assert.Equal(t, "99% accuracy", claims[0].Statement)

	matches, ok := decoded.Evidence["similarity_matches"].([]SimilarityMatch)
	require.True(t, ok, "similarity_matches should decode back to []SimilarityMatch")
	require.Len(t, matches, 1)
	assert.Equal(t, "prior-project", matches[0].Source)
	assert.InDelta(t, 0.412, matches[0].Score, 1e-9)

	summary, ok := decoded.Evidence["summary"].(string)
	require.True(t, ok)
	assert.Equal(t, "A planning tool.", summary)
}

func TestStageResult_UnmarshalEmptyClaims(t *testing.T) {
	result := NewStageResult(ModalityText)
	result.Evidence["suspect_claims"] = []ClaimFlag{}
	result.Finish()

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded StageResult
	require.NoError(t, json.Unmarshal(data, &decoded))

	claims, ok := decoded.Evidence["suspect_claims"].([]ClaimFlag)
	require.True(t, ok)
	assert.Empty(t, claims)
}
