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
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/scoring"
)

// JobState describes where a judging job is in its lifecycle.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// Job is the explicit state object for one queued judging run. Callers
// poll it by ID; there is no callback surface.
type Job struct {
	ID           string                    `json:"id"`
	SubmissionID string                    `json:"submission_id"`
	State        JobState                  `json:"state"`
	SubmittedAt  time.Time                 `json:"submitted_at"`
	StartedAt    *time.Time                `json:"started_at,omitempty"`
	FinishedAt   *time.Time                `json:"finished_at,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Score        *scoring.ScoredSubmission `json:"score,omitempty"`
}

// JudgeFunc runs the full pipeline plus scoring for one submission.
type JudgeFunc func(ctx context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error)

var ErrQueueClosed = errors.New("server: queue is closed")

// Queue serializes judging work onto a single background worker.
// Submissions run one at a time, in arrival order, so concurrent HTTP
// clients cannot interleave provider calls.
type Queue struct {
	judge JudgeFunc

	mu      sync.Mutex
	jobs    map[string]*Job
	pending map[string]domain.Submission
	scores  map[string]scoring.ScoredSubmission
	closed  bool

	work chan string
	done chan struct{}
}

// NewQueue creates a queue backed by the given judge function. Start
// must be called before enqueued jobs make progress.
func NewQueue(judge JudgeFunc, depth int) *Queue {
	if depth <= 0 {
		depth = 64
	}
	return &Queue{
		judge:   judge,
		jobs:    make(map[string]*Job),
		pending: make(map[string]domain.Submission),
		scores:  make(map[string]scoring.ScoredSubmission),
		work:    make(chan string, depth),
		done:    make(chan struct{}),
	}
}

// Enqueue registers a submission for judging and returns its job.
func (q *Queue) Enqueue(sub domain.Submission) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil, ErrQueueClosed
	}

	job := &Job{
		ID:           uuid.NewString(),
		SubmissionID: sub.ID,
		State:        JobQueued,
		SubmittedAt:  time.Now().UTC(),
	}
	q.jobs[job.ID] = job
	q.pending[job.ID] = sub

	select {
	case q.work <- job.ID:
	default:
		delete(q.jobs, job.ID)
		delete(q.pending, job.ID)
		return nil, errors.New("server: queue is full")
	}

	jobsEnqueued.Inc()
	queueDepth.Inc()
	return snapshot(job), nil
}

// Get returns a copy of the job with the given ID.
func (q *Queue) Get(id string) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil, false
	}
	return snapshot(job), true
}

// List returns all jobs, newest first.
func (q *Queue) List() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*Job, 0, len(q.jobs))
	for _, job := range q.jobs {
		out = append(out, snapshot(job))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// Leaderboard ranks every successfully judged submission. A submission
// judged more than once keeps only its latest score.
func (q *Queue) Leaderboard() []scoring.ScoredSubmission {
	q.mu.Lock()
	scored := make([]scoring.ScoredSubmission, 0, len(q.scores))
	for _, s := range q.scores {
		scored = append(scored, s)
	}
	q.mu.Unlock()
	scoring.Rank(scored)
	return scored
}

// Start launches the worker goroutine. The worker drains jobs until
// ctx is cancelled or Close is called.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		defer close(q.done)
		for {
			select {
			case <-ctx.Done():
				return
			case id, ok := <-q.work:
				if !ok {
					return
				}
				q.runJob(ctx, id)
			}
		}
	}()
}

// Close stops accepting work and waits for the worker to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.work)
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) runJob(ctx context.Context, id string) {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	sub := q.pending[id]
	delete(q.pending, id)
	now := time.Now().UTC()
	job.State = JobRunning
	job.StartedAt = &now
	q.mu.Unlock()
	queueDepth.Dec()

	logger := slog.With("job_id", id, "submission_id", sub.ID)
	logger.Info("Judging job started")

	start := time.Now()
	score, err := q.judge(ctx, sub)
	elapsed := time.Since(start)

	q.mu.Lock()
	finished := time.Now().UTC()
	job.FinishedAt = &finished
	if err != nil {
		job.State = JobFailed
		job.Error = err.Error()
		jobsCompleted.WithLabelValues(string(JobFailed)).Inc()
		q.mu.Unlock()
		logger.Error("Judging job failed", "error", err, "elapsed", elapsed)
		return
	}
	job.State = JobSucceeded
	job.Score = score
	q.scores[score.SubmissionID] = *score
	jobsCompleted.WithLabelValues(string(JobSucceeded)).Inc()
	jobDuration.Observe(elapsed.Seconds())
	q.mu.Unlock()
	logger.Info("Judging job finished",
		"total", score.Total,
		"unscored", score.Unscored,
		"elapsed", elapsed)
}

func snapshot(job *Job) *Job {
	copied := *job
	if job.StartedAt != nil {
		t := *job.StartedAt
		copied.StartedAt = &t
	}
	if job.FinishedAt != nil {
		t := *job.FinishedAt
		copied.FinishedAt = &t
	}
	return &copied
}
