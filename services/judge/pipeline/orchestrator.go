// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline runs the stage analyzers in sequence and assembles
// the analysis bundle for one submission.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hackeval/hackeval/services/judge/analyzer"
	"github.com/hackeval/hackeval/services/judge/domain"
)

var tracer = otel.Tracer("hackeval.judge.pipeline")

// ErrPipelineTimeout reports a run that exceeded the configured
// total-runtime ceiling. The caller gets this error and no bundle.
var ErrPipelineTimeout = fmt.Errorf("pipeline exceeded runtime ceiling")

// Orchestrator drives one submission through Video -> Text -> Code in
// that fixed order: the text stage's combined summary consumes the video
// stage's transcript, which is the single legitimate inter-stage data
// dependency. Stages never run concurrently.
type Orchestrator struct {
	video *analyzer.VideoAnalyzer
	text  *analyzer.TextAnalyzer
	code  *analyzer.CodeAnalyzer

	// cache is optional; nil disables bundle caching.
	cache *Cache

	// ceiling is the total wall-clock budget for one run. Zero disables
	// the check. Exceeding it is fatal for the run: an explicit timeout
	// error, not a partial result.
	ceiling time.Duration

	clock func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache attaches a bundle cache.
func WithCache(cache *Cache) Option {
	return func(o *Orchestrator) { o.cache = cache }
}

// WithRuntimeCeiling sets the total wall-clock budget per run.
func WithRuntimeCeiling(d time.Duration) Option {
	return func(o *Orchestrator) { o.ceiling = d }
}

// withClock overrides the time source for tests.
func withClock(clock func() time.Time) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// NewOrchestrator wires the three stage analyzers.
func NewOrchestrator(video *analyzer.VideoAnalyzer, text *analyzer.TextAnalyzer, code *analyzer.CodeAnalyzer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		video: video,
		text:  text,
		code:  code,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run analyzes one submission end to end and returns its bundle.
//
// One stage's catastrophic failure (a panic out of an analyzer) is
// caught at the stage boundary: the stage is recorded as failed with an
// empty result and the remaining stages still run. The only error this
// method returns is the runtime-ceiling timeout.
func (o *Orchestrator) Run(ctx context.Context, sub domain.Submission) (*domain.AnalysisBundle, error) {
	ctx, span := tracer.Start(ctx, "Orchestrator.Run")
	defer span.End()
	span.SetAttributes(attribute.String("judge.submission", sub.ID))

	start := o.clock()

	var fingerprint string
	if o.cache != nil && sub.Root != "" {
		fp, err := Fingerprint(sub.Root)
		if err != nil {
			slog.Warn("fingerprint failed, skipping cache", "submission", sub.ID, "error", err)
		} else {
			fingerprint = fp
			if bundle, ok := o.cache.Get(sub.ID, fingerprint); ok {
				slog.Info("bundle cache hit", "submission", sub.ID)
				span.SetAttributes(attribute.Bool("judge.cache_hit", true))
				return bundle, nil
			}
		}
	}

	bundle := &domain.AnalysisBundle{
		SubmissionID: sub.ID,
		Timings:      make(map[domain.Modality]domain.StageTiming),
		CreatedAt:    start,
	}

	bundle.Video = o.runStage(ctx, bundle, domain.ModalityVideo, func() domain.StageResult {
		return o.video.Analyze(ctx, sub)
	})

	// The transcript is re-resolved rather than pulled out of the video
	// StageResult so a failed video stage cannot corrupt the text stage.
	transcript := o.video.Transcript(sub)
	bundle.Text = o.runStage(ctx, bundle, domain.ModalityText, func() domain.StageResult {
		return o.text.Analyze(ctx, sub, transcript)
	})

	bundle.Code = o.runStage(ctx, bundle, domain.ModalityCode, func() domain.StageResult {
		return o.code.Analyze(ctx, sub)
	})

	elapsed := o.clock().Sub(start)
	if o.ceiling > 0 && elapsed > o.ceiling {
		slog.Error("pipeline exceeded runtime ceiling",
			"submission", sub.ID, "elapsed", elapsed, "ceiling", o.ceiling)
		return nil, fmt.Errorf("%w: %s elapsed, ceiling %s", ErrPipelineTimeout, elapsed, o.ceiling)
	}

	if o.cache != nil && fingerprint != "" {
		if err := o.cache.Put(sub.ID, fingerprint, bundle); err != nil {
			slog.Warn("bundle cache write failed", "submission", sub.ID, "error", err)
		}
	}

	slog.Info("pipeline finished",
		"submission", sub.ID,
		"elapsed", elapsed,
		"video", bundle.Video.Status,
		"text", bundle.Text.Status,
		"code", bundle.Code.Status,
	)
	return bundle, nil
}

// runStage executes one analyzer with panic isolation and timing.
func (o *Orchestrator) runStage(ctx context.Context, bundle *domain.AnalysisBundle, stage domain.Modality, fn func() domain.StageResult) (result domain.StageResult) {
	_, span := tracer.Start(ctx, "Orchestrator.runStage")
	defer span.End()
	span.SetAttributes(attribute.String("judge.stage", string(stage)))

	stageStart := o.clock()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("stage analyzer panicked",
				"stage", stage, "panic", r, "stack", string(debug.Stack()))
			result = domain.EmptyStageResult(stage)
		}
		bundle.Timings[stage] = domain.StageTiming{
			Status:   result.Status,
			Duration: o.clock().Sub(stageStart),
		}
	}()

	result = fn()
	return result
}
