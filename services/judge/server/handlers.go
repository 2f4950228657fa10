// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// ErrorResponse is the JSON error envelope for every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SubmitRequest describes one submission to judge. Root must point at
// a directory readable by the server process.
type SubmitRequest struct {
	ID             string `json:"id" binding:"required"`
	Root           string `json:"root" binding:"required"`
	TranscriptPath string `json:"transcript_path"`
	Description    string `json:"description"`
	CodeDir        string `json:"code_dir"`
}

// SubmitResponse acknowledges an accepted judging job.
type SubmitResponse struct {
	JobID string   `json:"job_id"`
	State JobState `json:"state"`
}

// Handlers contains the HTTP handlers for the judging service.
//
// Thread Safety: Handlers is safe for concurrent use; all state lives
// in the queue.
type Handlers struct {
	queue *Queue
}

// NewHandlers creates handlers backed by the given queue.
func NewHandlers(queue *Queue) *Handlers {
	return &Handlers{queue: queue}
}

// HandleSubmit handles POST /v1/judge/submissions.
//
// Response:
//
//	202 Accepted: SubmitResponse
//	400 Bad Request: Validation error or unreadable root
//	503 Service Unavailable: Queue closed or full
func (h *Handlers) HandleSubmit(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSubmit")

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if info, err := os.Stat(req.Root); err != nil || !info.IsDir() {
		logger.Warn("Submission root is not a readable directory", "root", req.Root)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "root must be a readable directory",
			Code:  "INVALID_ROOT",
		})
		return
	}

	job, err := h.queue.Enqueue(domain.Submission{
		ID:             req.ID,
		Root:           req.Root,
		TranscriptPath: req.TranscriptPath,
		Description:    req.Description,
		CodeDir:        req.CodeDir,
	})
	if err != nil {
		logger.Error("Enqueue failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: err.Error(),
			Code:  "QUEUE_UNAVAILABLE",
		})
		return
	}

	logger.Info("Submission accepted", "job_id", job.ID, "submission_id", req.ID)
	c.JSON(http.StatusAccepted, SubmitResponse{JobID: job.ID, State: job.State})
}

// HandleJob handles GET /v1/judge/jobs/:id.
func (h *Handlers) HandleJob(c *gin.Context) {
	job, ok := h.queue.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No such job",
			Code:  "JOB_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, job)
}

// HandleJobs handles GET /v1/judge/jobs.
func (h *Handlers) HandleJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": h.queue.List()})
}

// HandleLeaderboard handles GET /v1/judge/leaderboard.
//
// Entries are ranked by total score descending; ties break on
// submission ID ascending.
func (h *Handlers) HandleLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.queue.Leaderboard()})
}

// HandleHealth handles GET /v1/judge/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}
