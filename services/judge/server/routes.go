// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all judging routes with the router group.
//
// Endpoints:
//
//	POST /v1/judge/submissions - Enqueue a submission for judging
//	GET  /v1/judge/jobs - List jobs
//	GET  /v1/judge/jobs/:id - Poll one job
//	GET  /v1/judge/leaderboard - Ranked scores of judged submissions
//	GET  /v1/judge/health - Health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	judge := rg.Group("/judge")
	{
		judge.POST("/submissions", handlers.HandleSubmit)
		judge.GET("/jobs", handlers.HandleJobs)
		judge.GET("/jobs/:id", handlers.HandleJob)
		judge.GET("/leaderboard", handlers.HandleLeaderboard)
		judge.GET("/health", handlers.HandleHealth)
	}
}
