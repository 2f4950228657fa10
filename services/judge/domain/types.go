// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package domain holds the data model shared by the judging pipeline.
//
// The types here are deliberately dumb: a Submission is read-only input,
// a StageResult is written exactly once by the analyzer that owns it, and
// an AnalysisBundle is assembled once per run and never mutated afterwards.
// Anything that needs to combine data across stages does so downstream
// (the text analyzer's transcript merge and the criteria resolver), never
// by reaching into another stage's result.
package domain

import (
	"encoding/json"
	"time"
)

// Modality identifies one analysis stage.
type Modality string

const (
	ModalityVideo Modality = "video"
	ModalityText  Modality = "text"
	ModalityCode  Modality = "code"
)

// Submission is the immutable input to one pipeline run.
//
// Root points at the extracted submission directory; archive extraction
// happens upstream. Optional fields are empty strings when absent.
type Submission struct {
	// ID is the stable submission identifier, used for tie-breaking
	// on the leaderboard.
	ID string

	// Root is the submission content directory.
	Root string

	// TranscriptPath optionally points at a presentation transcript.
	// Transcription itself is an upstream concern.
	TranscriptPath string

	// Description is the written project description.
	Description string

	// CodeDir optionally points at the extracted source tree.
	CodeDir string
}

// AnalysisTask is a (modality, capability) pair. It keys the fallback
// chain that serves the capability.
type AnalysisTask struct {
	Modality   Modality
	Capability string
}

func (t AnalysisTask) String() string {
	return string(t.Modality) + "/" + t.Capability
}

// StageStatus tracks the single-shot lifecycle of a stage analyzer.
type StageStatus string

const (
	StagePending StageStatus = "pending"
	StageRunning StageStatus = "running"
	// StageCompleted means every computation ran with its preferred provider.
	StageCompleted StageStatus = "completed"
	// StageDegraded means the stage finished but at least one fallback
	// chain exhausted its providers and a neutral default was substituted.
	StageDegraded StageStatus = "completed-with-degradation"
	// StageFailed is reserved for programming errors caught at the stage
	// boundary. Provider unavailability never produces this status.
	StageFailed StageStatus = "failed"
)

// MetricKind discriminates the tagged MetricValue union.
type MetricKind int

const (
	// MetricNumber is a numeric metric, scaled to [0,1] by its analyzer.
	MetricNumber MetricKind = iota
	// MetricNotApplicable marks a metric that genuinely does not apply to
	// this submission. It is distinct from a legitimate zero score.
	MetricNotApplicable
	// MetricGroup nests further metrics under one path segment.
	MetricGroup
)

// MetricValue is one entry in a StageResult's metric map.
type MetricValue struct {
	Kind   MetricKind
	Number float64
	Group  map[string]MetricValue
}

// Num builds a numeric metric value.
func Num(v float64) MetricValue {
	return MetricValue{Kind: MetricNumber, Number: v}
}

// NotApplicable builds the explicit not-applicable marker.
func NotApplicable() MetricValue {
	return MetricValue{Kind: MetricNotApplicable}
}

// Group nests a metric map under a single segment.
func Group(m map[string]MetricValue) MetricValue {
	return MetricValue{Kind: MetricGroup, Group: m}
}

// Degradation records one fallback chain that exhausted every provider.
// StageResults carry these so reports can explain why a neutral default
// was scored instead of a real measurement.
type Degradation struct {
	Task   AnalysisTask `json:"task"`
	Detail string       `json:"detail"`
}

// ChainTrace records which provider satisfied a capability and which
// providers were attempted and failed before it, in order.
type ChainTrace struct {
	Task      AnalysisTask `json:"task"`
	Satisfied string       `json:"satisfied_by,omitempty"`
	Failures  []string     `json:"failures,omitempty"`
}

// StageResult is the output of one stage analyzer.
//
// Metrics feed the criteria resolver; Evidence is free-form material for
// report rendering (transcripts, flagged claims, lint messages) and never
// participates in scoring. The owning analyzer writes a StageResult once;
// everything downstream treats it as read-only.
type StageResult struct {
	Stage        Modality               `json:"stage"`
	Status       StageStatus            `json:"status"`
	Metrics      map[string]MetricValue `json:"metrics"`
	Evidence     map[string]any         `json:"evidence,omitempty"`
	Degradations []Degradation          `json:"degradations,omitempty"`
	Traces       []ChainTrace           `json:"provider_traces,omitempty"`
}

// UnmarshalJSON decodes the result and restores the typed evidence
// slices, which plain JSON decoding collapses into []any. A bundle read
// back from a cache must render the same report as a fresh one.
func (r *StageResult) UnmarshalJSON(data []byte) error {
	type plain StageResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = StageResult(p)
	if err := retypeEvidence[[]ClaimFlag](r.Evidence, "suspect_claims"); err != nil {
		return err
	}
	return retypeEvidence[[]SimilarityMatch](r.Evidence, "similarity_matches")
}

func retypeEvidence[T any](evidence map[string]any, key string) error {
	raw, ok := evidence[key]
	if !ok {
		return nil
	}
	if _, ok := raw.(T); ok {
		return nil
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var typed T
	if err := json.Unmarshal(buf, &typed); err != nil {
		return err
	}
	evidence[key] = typed
	return nil
}

// NewStageResult returns an empty result in the running state.
func NewStageResult(stage Modality) StageResult {
	return StageResult{
		Stage:    stage,
		Status:   StageRunning,
		Metrics:  make(map[string]MetricValue),
		Evidence: make(map[string]any),
	}
}

// EmptyStageResult is the neutral substitute the orchestrator installs
// when a stage analyzer fails outright.
func EmptyStageResult(stage Modality) StageResult {
	return StageResult{
		Stage:   stage,
		Status:  StageFailed,
		Metrics: map[string]MetricValue{},
	}
}

// Metric looks up a flat metric by name.
func (r *StageResult) Metric(name string) (MetricValue, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}

// Finish settles the terminal status from the recorded degradations.
func (r *StageResult) Finish() {
	if len(r.Degradations) > 0 {
		r.Status = StageDegraded
		return
	}
	r.Status = StageCompleted
}

// StageTiming captures wall-clock duration and outcome for one stage.
type StageTiming struct {
	Status   StageStatus   `json:"status"`
	Duration time.Duration `json:"duration"`
}

// AnalysisBundle is the unified output of one pipeline run: the three
// stage results plus per-stage timing. Created once, never mutated after
// the orchestrator returns it.
type AnalysisBundle struct {
	SubmissionID string                   `json:"submission_id"`
	Video        StageResult              `json:"video"`
	Text         StageResult              `json:"text"`
	Code         StageResult              `json:"code"`
	Timings      map[Modality]StageTiming `json:"timings"`
	CreatedAt    time.Time                `json:"created_at"`
}

// Stage returns the result for a modality, or false for an unknown one.
func (b *AnalysisBundle) Stage(m Modality) (*StageResult, bool) {
	switch m {
	case ModalityVideo:
		return &b.Video, true
	case ModalityText:
		return &b.Text, true
	case ModalityCode:
		return &b.Code, true
	}
	return nil, false
}

// ClaimFlag is a potentially exaggerated or unverifiable claim pulled
// from the project description. Evidence-only; it never feeds scoring.
type ClaimFlag struct {
	Statement string `json:"statement"`
	Reason    string `json:"reason"`
	Verdict   string `json:"verdict,omitempty"`
	Rationale string `json:"rationale,omitempty"`
}

// SimilarityMatch is a top-k match against the reference corpus.
type SimilarityMatch struct {
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}
