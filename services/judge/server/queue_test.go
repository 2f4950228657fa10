// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/scoring"
)

func scoreOf(id string, total float64) *scoring.ScoredSubmission {
	return &scoring.ScoredSubmission{SubmissionID: id, Total: total}
}

func waitForState(t *testing.T, q *Queue, jobID string, want JobState) *Job {
	t.Helper()
	var job *Job
	require.Eventually(t, func() bool {
		got, ok := q.Get(jobID)
		if !ok {
			return false
		}
		job = got
		return got.State == want
	}, 5*time.Second, 5*time.Millisecond)
	return job
}

func TestQueue_EnqueueRunsJob(t *testing.T) {
	judge := func(_ context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
		return scoreOf(sub.ID, 0.8), nil
	}
	q := NewQueue(judge, 4)
	q.Start(context.Background())
	defer q.Close()

	job, err := q.Enqueue(domain.Submission{ID: "team-1", Root: "/tmp/team-1"})
	require.NoError(t, err)
	assert.Equal(t, JobQueued, job.State)
	assert.Equal(t, "team-1", job.SubmissionID)
	assert.NotEmpty(t, job.ID)

	done := waitForState(t, q, job.ID, JobSucceeded)
	require.NotNil(t, done.Score)
	assert.Equal(t, 0.8, done.Score.Total)
	assert.Empty(t, done.Error)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.FinishedAt)
}

func TestQueue_FailedJobKeepsError(t *testing.T) {
	judge := func(context.Context, domain.Submission) (*scoring.ScoredSubmission, error) {
		return nil, errors.New("pipeline exceeded runtime ceiling")
	}
	q := NewQueue(judge, 4)
	q.Start(context.Background())
	defer q.Close()

	job, err := q.Enqueue(domain.Submission{ID: "team-1"})
	require.NoError(t, err)

	done := waitForState(t, q, job.ID, JobFailed)
	assert.Equal(t, "pipeline exceeded runtime ceiling", done.Error)
	assert.Nil(t, done.Score)
}

func TestQueue_SequentialOrder(t *testing.T) {
	var order []string
	judge := func(_ context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
		// Single worker: no mutex needed to observe ordering.
		order = append(order, sub.ID)
		return scoreOf(sub.ID, 0.5), nil
	}
	q := NewQueue(judge, 8)

	var last *Job
	for _, id := range []string{"a", "b", "c"} {
		job, err := q.Enqueue(domain.Submission{ID: id})
		require.NoError(t, err)
		last = job
	}

	q.Start(context.Background())
	defer q.Close()

	waitForState(t, q, last.ID, JobSucceeded)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestQueue_LeaderboardKeepsLatestScore(t *testing.T) {
	totals := map[string][]float64{
		"team-1": {0.4, 0.9},
		"team-2": {0.6},
	}
	judge := func(_ context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
		scores := totals[sub.ID]
		total := scores[0]
		totals[sub.ID] = scores[1:]
		return scoreOf(sub.ID, total), nil
	}
	q := NewQueue(judge, 8)

	_, err := q.Enqueue(domain.Submission{ID: "team-1"})
	require.NoError(t, err)
	_, err = q.Enqueue(domain.Submission{ID: "team-2"})
	require.NoError(t, err)
	rejudge, err := q.Enqueue(domain.Submission{ID: "team-1"})
	require.NoError(t, err)

	q.Start(context.Background())
	defer q.Close()
	waitForState(t, q, rejudge.ID, JobSucceeded)

	entries := q.Leaderboard()
	require.Len(t, entries, 2)
	// team-1's re-judged 0.9 replaces its first 0.4 and outranks team-2.
	assert.Equal(t, "team-1", entries[0].SubmissionID)
	assert.Equal(t, 0.9, entries[0].Total)
	assert.Equal(t, "team-2", entries[1].SubmissionID)
}

func TestQueue_FullQueueRejects(t *testing.T) {
	judge := func(context.Context, domain.Submission) (*scoring.ScoredSubmission, error) {
		return scoreOf("x", 0), nil
	}
	// Worker not started, so the single slot stays occupied.
	q := NewQueue(judge, 1)

	_, err := q.Enqueue(domain.Submission{ID: "first"})
	require.NoError(t, err)

	_, err = q.Enqueue(domain.Submission{ID: "second"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")

	// The rejected job leaves no trace.
	assert.Len(t, q.List(), 1)
}

func TestQueue_ClosedRejects(t *testing.T) {
	judge := func(context.Context, domain.Submission) (*scoring.ScoredSubmission, error) {
		return scoreOf("x", 0), nil
	}
	q := NewQueue(judge, 4)
	q.Start(context.Background())
	q.Close()

	_, err := q.Enqueue(domain.Submission{ID: "late"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueue_CloseIsIdempotent(t *testing.T) {
	q := NewQueue(func(context.Context, domain.Submission) (*scoring.ScoredSubmission, error) {
		return scoreOf("x", 0), nil
	}, 4)
	q.Start(context.Background())
	q.Close()
	q.Close()
}

func TestQueue_GetUnknown(t *testing.T) {
	q := NewQueue(func(context.Context, domain.Submission) (*scoring.ScoredSubmission, error) {
		return scoreOf("x", 0), nil
	}, 4)

	_, ok := q.Get("no-such-job")
	assert.False(t, ok)
}

func TestQueue_SnapshotIsolation(t *testing.T) {
	q := NewQueue(func(context.Context, domain.Submission) (*scoring.ScoredSubmission, error) {
		return scoreOf("x", 0), nil
	}, 4)

	job, err := q.Enqueue(domain.Submission{ID: "team-1"})
	require.NoError(t, err)

	// Mutating the returned copy must not leak into queue state.
	job.State = JobFailed
	job.Error = "tampered"

	fresh, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, JobQueued, fresh.State)
	assert.Empty(t, fresh.Error)
}
