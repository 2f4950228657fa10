// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackeval/hackeval/services/judge/domain"
)

func succeedWith(name, value string) Provider[string] {
	return Func[string]{
		ProviderName: name,
		Fn: func(ctx context.Context, in Input) (string, *Failure) {
			return value, nil
		},
	}
}

func failWith(name string, kind FailureKind) Provider[string] {
	return Func[string]{
		ProviderName: name,
		Fn: func(ctx context.Context, in Input) (string, *Failure) {
			return "", Failf(name, kind, "induced failure")
		},
	}
}

// countingProvider records how often its Attempt ran.
type countingProvider struct {
	name  string
	calls int
	fail  bool
}

func (p *countingProvider) Name() string { return p.name }

func (p *countingProvider) Attempt(ctx context.Context, in Input) (string, *Failure) {
	p.calls++
	if p.fail {
		return "", Failf(p.name, FailureNetwork, "down")
	}
	return "ok", nil
}

func testTask() domain.AnalysisTask {
	return domain.AnalysisTask{Modality: domain.ModalityText, Capability: "summary"}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	chain := NewChain(testTask(),
		succeedWith("primary", "primary value"),
		succeedWith("secondary", "secondary value"),
	)

	out := chain.Run(context.Background(), Input{Text: "hello"})

	assert.False(t, out.Exhausted)
	assert.Equal(t, "primary", out.Provider)
	assert.Equal(t, "primary value", out.Value)
	assert.Empty(t, out.Failures)
}

func TestChain_FallsThroughToLaterProvider(t *testing.T) {
	tests := []struct {
		name         string
		providers    []Provider[string]
		wantProvider string
		wantFailures int
	}{
		{
			name: "second succeeds",
			providers: []Provider[string]{
				failWith("cloud", FailureMissingCredentials),
				succeedWith("local", "local value"),
				succeedWith("heuristic", "never reached"),
			},
			wantProvider: "local",
			wantFailures: 1,
		},
		{
			name: "last succeeds",
			providers: []Provider[string]{
				failWith("cloud", FailureQuota),
				failWith("local", FailureModelUnavailable),
				succeedWith("heuristic", "heuristic value"),
			},
			wantProvider: "heuristic",
			wantFailures: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(testTask(), tt.providers...)
			out := chain.Run(context.Background(), Input{})

			assert.False(t, out.Exhausted)
			assert.Equal(t, tt.wantProvider, out.Provider)
			// The winning outcome still carries every failure that
			// preceded it, in priority order.
			require.Len(t, out.Failures, tt.wantFailures)
		})
	}
}

func TestChain_ExhaustionRecordsAllFailuresInOrder(t *testing.T) {
	chain := NewChain(testTask(),
		failWith("cloud", FailureMissingCredentials),
		failWith("local", FailureModelUnavailable),
		failWith("heuristic", FailureBadResponse),
	)

	out := chain.Run(context.Background(), Input{})

	assert.True(t, out.Exhausted)
	assert.Empty(t, out.Provider)
	require.Len(t, out.Failures, 3)
	assert.Equal(t, "cloud", out.Failures[0].Provider)
	assert.Equal(t, FailureMissingCredentials, out.Failures[0].Kind)
	assert.Equal(t, "local", out.Failures[1].Provider)
	assert.Equal(t, "heuristic", out.Failures[2].Provider)
}

func TestChain_NoRetryWithinInvocation(t *testing.T) {
	failing := &countingProvider{name: "flaky", fail: true}
	winning := &countingProvider{name: "stable"}
	chain := NewChain[string](testTask(), failing, winning)

	_ = chain.Run(context.Background(), Input{})

	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, winning.calls)
}

func TestChain_SequentialOrder(t *testing.T) {
	var order []string
	mk := func(name string, fail bool) Provider[string] {
		return Func[string]{
			ProviderName: name,
			Fn: func(ctx context.Context, in Input) (string, *Failure) {
				order = append(order, name)
				if fail {
					return "", Failf(name, FailureNetwork, "down")
				}
				return name, nil
			},
		}
	}

	chain := NewChain(testTask(),
		mk("first", true),
		mk("second", true),
		mk("third", false),
	)
	_ = chain.Run(context.Background(), Input{})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestOutcome_Trace(t *testing.T) {
	chain := NewChain(testTask(),
		failWith("cloud", FailureQuota),
		succeedWith("local", "v"),
	)
	out := chain.Run(context.Background(), Input{})

	trace := out.Trace()
	assert.Equal(t, testTask(), trace.Task)
	assert.Equal(t, "local", trace.Satisfied)
	require.Len(t, trace.Failures, 1)
	assert.Contains(t, trace.Failures[0], "cloud")
	assert.Contains(t, trace.Failures[0], string(FailureQuota))
}

func TestFailure_Error(t *testing.T) {
	f := Failf("cloud-summarizer", FailureTimeout, "deadline after %ds", 30)
	assert.Equal(t, "cloud-summarizer: timeout: deadline after 30s", f.Error())
}
