// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package provider implements the fallback-chain execution model used by
// every analyzer capability.
//
// A Provider wraps one concrete way of serving a capability: a cloud AI
// call, a local model invocation, or a pure heuristic. Providers for one
// capability are registered into a Chain in fixed priority order (most
// capable first) and tried strictly sequentially until one succeeds.
//
// Expected failure modes (missing credentials, network errors, model
// unavailable, content filtered, quota) never surface as Go errors or
// panics from Attempt; they come back as a categorized *Failure so the
// chain can fall through. Programming errors are allowed to panic and are
// caught one level up, at the stage boundary.
package provider

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hackeval/hackeval/services/judge/domain"
)

var tracer = otel.Tracer("hackeval.judge.provider")

// FailureKind categorizes the expected ways a provider attempt can fail.
type FailureKind string

const (
	FailureMissingCredentials FailureKind = "missing_credentials"
	FailureNetwork            FailureKind = "network"
	FailureModelUnavailable   FailureKind = "model_unavailable"
	FailureContentFiltered    FailureKind = "content_filtered"
	FailureQuota              FailureKind = "quota"
	FailureTimeout            FailureKind = "timeout"
	// FailureBadResponse covers a provider that answered but whose output
	// could not be parsed into the capability's value type.
	FailureBadResponse FailureKind = "bad_response"
	FailureUnavailable FailureKind = "unavailable"
)

// Failure describes one failed provider attempt.
type Failure struct {
	Provider string
	Kind     FailureKind
	Detail   string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s: %s", f.Provider, f.Kind, f.Detail)
}

// Failf builds a Failure in one line.
func Failf(name string, kind FailureKind, format string, args ...any) *Failure {
	return &Failure{Provider: name, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Input is the task payload handed to every provider in a chain. Fields
// are capability-dependent; a provider reads only what it needs.
type Input struct {
	// Text is the primary text payload (description, transcript, or the
	// merged form, depending on the capability).
	Text string

	// Transcript carries the video transcript when a capability wants it
	// separately from the description.
	Transcript string

	// Files carries source files for code-oriented capabilities.
	Files []SourceFile
}

// SourceFile is one file of a submission's code tree.
type SourceFile struct {
	Path    string
	Content []byte
}

// Provider is one concrete implementation of a capability producing T.
//
// Attempt must map every expected failure mode to a *Failure and must not
// block indefinitely: adapters that talk to the network carry their own
// timeout and convert it to FailureTimeout.
type Provider[T any] interface {
	Name() string
	Attempt(ctx context.Context, in Input) (T, *Failure)
}

// Func adapts a plain function into a Provider. Used for heuristics and
// for test doubles.
type Func[T any] struct {
	ProviderName string
	Fn           func(ctx context.Context, in Input) (T, *Failure)
}

func (f Func[T]) Name() string { return f.ProviderName }

func (f Func[T]) Attempt(ctx context.Context, in Input) (T, *Failure) {
	return f.Fn(ctx, in)
}

// Outcome is the single terminal result of one chain invocation: either
// the first successful provider's value, or an exhaustion marker carrying
// every failure in attempt order. A chain never returns silently.
type Outcome[T any] struct {
	// Task identifies the capability the chain served.
	Task domain.AnalysisTask

	// Value is the successful provider's output; zero when Exhausted.
	Value T

	// Provider names the adapter that satisfied the request.
	Provider string

	// Failures lists every failed attempt in priority order. On success
	// it holds the attempts that preceded the winning provider; on
	// exhaustion it holds all of them.
	Failures []*Failure

	// Exhausted is true when every registered provider failed.
	Exhausted bool
}

// Trace converts the outcome into the evidentiary form stored on a
// StageResult.
func (o Outcome[T]) Trace() domain.ChainTrace {
	t := domain.ChainTrace{Task: o.Task, Satisfied: o.Provider}
	for _, f := range o.Failures {
		t.Failures = append(t.Failures, f.Error())
	}
	return t
}

// Chain executes providers for one capability in fixed priority order.
type Chain[T any] struct {
	task      domain.AnalysisTask
	providers []Provider[T]
}

// NewChain builds a chain for a task. Priority is the argument order:
// the most capable provider first, the cheapest fallback last.
func NewChain[T any](task domain.AnalysisTask, providers ...Provider[T]) *Chain[T] {
	return &Chain[T]{task: task, providers: providers}
}

// Task returns the (modality, capability) pair the chain serves.
func (c *Chain[T]) Task() domain.AnalysisTask { return c.task }

// Len returns the number of registered providers.
func (c *Chain[T]) Len() int { return len(c.providers) }

// Run tries each provider in order and stops at the first success.
//
// A provider that already failed is never retried within the same
// invocation. The call yields exactly one terminal Outcome: the winning
// provider's value annotated with prior failures, or an exhausted marker
// listing every failure reason in order.
func (c *Chain[T]) Run(ctx context.Context, in Input) Outcome[T] {
	ctx, span := tracer.Start(ctx, "Chain.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("judge.task", c.task.String()),
		attribute.Int("judge.providers", len(c.providers)),
	)

	out := Outcome[T]{Task: c.task}
	for _, p := range c.providers {
		value, failure := p.Attempt(ctx, in)
		if failure == nil {
			out.Value = value
			out.Provider = p.Name()
			span.SetAttributes(attribute.String("judge.satisfied_by", p.Name()))
			return out
		}
		out.Failures = append(out.Failures, failure)
	}
	out.Exhausted = true
	span.SetAttributes(attribute.Bool("judge.exhausted", true))
	return out
}
