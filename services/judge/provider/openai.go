// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// OpenAIConfig carries the externally supplied credentials and model
// selection for the cloud adapters. The engine never reads environment
// state itself; the CLI/config layer fills this in.
type OpenAIConfig struct {
	APIKey string
	Model  string
	// Timeout bounds a single completion call. A timed-out call comes
	// back as a FailureTimeout, never as a hang.
	Timeout time.Duration
	// RequestsPerSecond throttles outbound calls. Zero disables
	// throttling.
	RequestsPerSecond float64
}

// openAIClient is shared plumbing for every OpenAI-backed provider.
type openAIClient struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	hasKey  bool
}

func newOpenAIClient(cfg OpenAIConfig) *openAIClient {
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
		slog.Warn("openai model not configured, defaulting", "model", model)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &openAIClient{
		api:     openai.NewClient(cfg.APIKey),
		model:   model,
		timeout: timeout,
		limiter: limiter,
		hasKey:  cfg.APIKey != "",
	}
}

// complete runs one chat completion and classifies every expected error
// into a Failure category.
func (c *openAIClient) complete(ctx context.Context, name, system, user string) (string, *Failure) {
	if !c.hasKey {
		return "", Failf(name, FailureMissingCredentials, "no API key configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", Failf(name, FailureTimeout, "rate limiter wait: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	slog.Debug("calling openai", "provider", name, "model", c.model)
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return "", classifyOpenAIError(name, err)
	}
	if len(resp.Choices) == 0 {
		return "", Failf(name, FailureBadResponse, "completion returned no choices")
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return "", Failf(name, FailureContentFiltered, "completion stopped by content filter")
	}
	return strings.TrimSpace(choice.Message.Content), nil
}

func classifyOpenAIError(name string, err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return Failf(name, FailureMissingCredentials, "openai: %v", apiErr)
		case http.StatusTooManyRequests:
			return Failf(name, FailureQuota, "openai: %v", apiErr)
		case http.StatusNotFound:
			return Failf(name, FailureModelUnavailable, "openai: %v", apiErr)
		}
		if apiErr.HTTPStatusCode >= 500 {
			return Failf(name, FailureUnavailable, "openai: %v", apiErr)
		}
		return Failf(name, FailureBadResponse, "openai: %v", apiErr)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Failf(name, FailureTimeout, "openai: %v", err)
	}
	return Failf(name, FailureNetwork, "openai: %v", err)
}

// NewOpenAISummarizer produces short project summaries from description
// plus transcript text.
func NewOpenAISummarizer(cfg OpenAIConfig) Provider[string] {
	c := newOpenAIClient(cfg)
	return Func[string]{
		ProviderName: "openai-summarizer",
		Fn: func(ctx context.Context, in Input) (string, *Failure) {
			text := mergedText(in)
			if text == "" {
				return "", Failf("openai-summarizer", FailureBadResponse, "no text to summarize")
			}
			const system = "You are an impartial hackathon judge. Summarize the project in at most 40 words. Respond with the summary only."
			return c.complete(ctx, "openai-summarizer", system, text)
		},
	}
}

// NewOpenAIClaimExtractor flags exaggerated or unverifiable claims in the
// project description. Zero flagged claims is a legitimate success.
func NewOpenAIClaimExtractor(cfg OpenAIConfig, maxClaims int) Provider[[]domain.ClaimFlag] {
	c := newOpenAIClient(cfg)
	if maxClaims <= 0 {
		maxClaims = 5
	}
	return Func[[]domain.ClaimFlag]{
		ProviderName: "openai-claims",
		Fn: func(ctx context.Context, in Input) ([]domain.ClaimFlag, *Failure) {
			system := fmt.Sprintf(
				"You are an impartial hackathon judge verifying factual claims. "+
					"List up to %d suspect claims from the text, one per line, formatted exactly as: "+
					"statement | reason. If there are none, respond with: NONE", maxClaims)
			raw, failure := c.complete(ctx, "openai-claims", system, in.Text)
			if failure != nil {
				return nil, failure
			}
			return parseClaimLines(raw, maxClaims), nil
		},
	}
}

// parseClaimLines reads "statement | reason" lines. Lines that don't fit
// the shape are kept as a statement with a generic reason rather than
// dropped, so the model's findings survive sloppy formatting.
func parseClaimLines(raw string, maxClaims int) []domain.ClaimFlag {
	claims := []domain.ClaimFlag{}
	if strings.EqualFold(strings.TrimSpace(raw), "NONE") {
		return claims
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line == "" || strings.EqualFold(line, "none") {
			continue
		}
		statement, reason := line, "Flagged by language model"
		if idx := strings.LastIndex(line, "|"); idx > 0 {
			statement = strings.TrimSpace(line[:idx])
			if r := strings.TrimSpace(line[idx+1:]); r != "" {
				reason = r
			}
		}
		claims = append(claims, domain.ClaimFlag{Statement: statement, Reason: reason})
		if len(claims) >= maxClaims {
			break
		}
	}
	return claims
}

// NewOpenAILikelihood estimates the probability that the description was
// AI-generated, as a [0,1] score.
func NewOpenAILikelihood(cfg OpenAIConfig) Provider[float64] {
	c := newOpenAIClient(cfg)
	return Func[float64]{
		ProviderName: "openai-ai-detector",
		Fn: func(ctx context.Context, in Input) (float64, *Failure) {
			const system = "Estimate the probability that the following text was written by a language model rather than a person. Respond with a single decimal number between 0 and 1 and nothing else."
			raw, failure := c.complete(ctx, "openai-ai-detector", system, in.Text)
			if failure != nil {
				return 0, failure
			}
			score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return 0, Failf("openai-ai-detector", FailureBadResponse, "non-numeric likelihood %q", raw)
			}
			return clamp01(score), nil
		},
	}
}

// NewOpenAICodeInsight produces a short qualitative note on the code tree.
// The note is evidence for the report, not a scored metric.
func NewOpenAICodeInsight(cfg OpenAIConfig, maxBytes int) Provider[string] {
	c := newOpenAIClient(cfg)
	if maxBytes <= 0 {
		maxBytes = 16 * 1024
	}
	return Func[string]{
		ProviderName: "openai-code-insight",
		Fn: func(ctx context.Context, in Input) (string, *Failure) {
			if len(in.Files) == 0 {
				return "", Failf("openai-code-insight", FailureBadResponse, "no source files provided")
			}
			const system = "You are reviewing a hackathon code submission. In at most 60 words, note the most important strengths and weaknesses."
			return c.complete(ctx, "openai-code-insight", system, concatFiles(in.Files, maxBytes))
		},
	}
}

func concatFiles(files []SourceFile, maxBytes int) string {
	var b strings.Builder
	for _, f := range files {
		if b.Len() >= maxBytes {
			break
		}
		b.WriteString("--- " + f.Path + "\n")
		remaining := maxBytes - b.Len()
		content := f.Content
		if len(content) > remaining {
			content = content[:remaining]
		}
		b.Write(content)
		b.WriteString("\n")
	}
	return b.String()
}

func mergedText(in Input) string {
	parts := []string{}
	if strings.TrimSpace(in.Text) != "" {
		parts = append(parts, strings.TrimSpace(in.Text))
	}
	if strings.TrimSpace(in.Transcript) != "" {
		parts = append(parts, strings.TrimSpace(in.Transcript))
	}
	return strings.Join(parts, "\n\n")
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
