// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/scoring"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, judge JudgeFunc) (*gin.Engine, *Queue) {
	t.Helper()
	if judge == nil {
		judge = func(_ context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
			return &scoring.ScoredSubmission{SubmissionID: sub.ID, Total: 0.7}, nil
		}
	}
	queue := NewQueue(judge, 8)
	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandlers(queue))
	return router, queue
}

func startedRouter(t *testing.T, judge JudgeFunc) (*gin.Engine, *Queue) {
	t.Helper()
	router, queue := testRouter(t, judge)
	queue.Start(context.Background())
	t.Cleanup(queue.Close)
	return router, queue
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes(t *testing.T) {
	router, _ := testRouter(t, nil)

	expected := []struct {
		method string
		path   string
	}{
		{"POST", "/v1/judge/submissions"},
		{"GET", "/v1/judge/jobs"},
		{"GET", "/v1/judge/jobs/:id"},
		{"GET", "/v1/judge/leaderboard"},
		{"GET", "/v1/judge/health"},
	}

	routes := router.Routes()
	for _, want := range expected {
		found := false
		for _, r := range routes {
			if r.Method == want.method && r.Path == want.path {
				found = true
				break
			}
		}
		assert.True(t, found, "%s %s not registered", want.method, want.path)
	}
}

func TestHandleSubmit_Accepted(t *testing.T) {
	router, queue := startedRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/v1/judge/submissions", SubmitRequest{
		ID:   "team-1",
		Root: t.TempDir(),
	})

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, JobQueued, resp.State)

	waitForState(t, queue, resp.JobID, JobSucceeded)
}

func TestHandleSubmit_InvalidBody(t *testing.T) {
	router, _ := testRouter(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"missing id", SubmitRequest{Root: "/tmp"}},
		{"missing root", SubmitRequest{ID: "team-1"}},
		{"not json", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/v1/judge/submissions", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_REQUEST", resp.Code)
		})
	}
}

func TestHandleSubmit_RootNotADirectory(t *testing.T) {
	router, _ := testRouter(t, nil)

	w := doJSON(router, http.MethodPost, "/v1/judge/submissions", SubmitRequest{
		ID:   "team-1",
		Root: "/nonexistent/submission",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_ROOT", resp.Code)
}

func TestHandleSubmit_ClosedQueue(t *testing.T) {
	router, queue := testRouter(t, nil)
	queue.Start(context.Background())
	queue.Close()

	w := doJSON(router, http.MethodPost, "/v1/judge/submissions", SubmitRequest{
		ID:   "team-1",
		Root: t.TempDir(),
	})

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "QUEUE_UNAVAILABLE", resp.Code)
}

func TestHandleJob_NotFound(t *testing.T) {
	router, _ := testRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/v1/judge/jobs/no-such-id", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "JOB_NOT_FOUND", resp.Code)
}

func TestHandleJob_ReturnsJob(t *testing.T) {
	router, queue := startedRouter(t, nil)

	job, err := queue.Enqueue(domain.Submission{ID: "team-1"})
	require.NoError(t, err)
	waitForState(t, queue, job.ID, JobSucceeded)

	w := doJSON(router, http.MethodGet, fmt.Sprintf("/v1/judge/jobs/%s", job.ID), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got Job
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, JobSucceeded, got.State)
	require.NotNil(t, got.Score)
	assert.Equal(t, 0.7, got.Score.Total)
}

func TestHandleJobs_ListsAll(t *testing.T) {
	router, queue := startedRouter(t, nil)

	for _, id := range []string{"team-1", "team-2"} {
		_, err := queue.Enqueue(domain.Submission{ID: id})
		require.NoError(t, err)
	}

	w := doJSON(router, http.MethodGet, "/v1/judge/jobs", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Jobs []Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Jobs, 2)
}

func TestHandleLeaderboard(t *testing.T) {
	totals := map[string]float64{"team-1": 0.4, "team-2": 0.9}
	judge := func(_ context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
		return &scoring.ScoredSubmission{SubmissionID: sub.ID, Total: totals[sub.ID]}, nil
	}
	router, queue := startedRouter(t, judge)

	_, err := queue.Enqueue(domain.Submission{ID: "team-1"})
	require.NoError(t, err)
	last, err := queue.Enqueue(domain.Submission{ID: "team-2"})
	require.NoError(t, err)
	waitForState(t, queue, last.ID, JobSucceeded)

	w := doJSON(router, http.MethodGet, "/v1/judge/leaderboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Entries []scoring.ScoredSubmission `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, "team-2", resp.Entries[0].SubmissionID)
	assert.Equal(t, "team-1", resp.Entries[1].SubmissionID)
}

func TestHandleHealth(t *testing.T) {
	router, _ := testRouter(t, nil)

	w := doJSON(router, http.MethodGet, "/v1/judge/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
