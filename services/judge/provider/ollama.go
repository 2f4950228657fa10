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
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
)

// OllamaConfig points the local-model adapters at a running Ollama
// instance. The model must already be pulled; a missing model surfaces as
// FailureModelUnavailable at attempt time.
type OllamaConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// ollamaClient lazily constructs the langchaingo binding so that a
// misconfigured base URL is an attempt-time failure, not a constructor
// error the chain never sees.
type ollamaClient struct {
	cfg OllamaConfig
	llm *ollama.LLM
}

func newOllamaClient(cfg OllamaConfig) *ollamaClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &ollamaClient{cfg: cfg}
}

func (c *ollamaClient) generate(ctx context.Context, name, prompt string) (string, *Failure) {
	if c.cfg.BaseURL == "" {
		return "", Failf(name, FailureModelUnavailable, "no ollama base URL configured")
	}
	if c.llm == nil {
		model := c.cfg.Model
		if model == "" {
			model = "llama3.2"
			slog.Warn("ollama model not configured, defaulting", "model", model)
		}
		llm, err := ollama.New(
			ollama.WithServerURL(c.cfg.BaseURL),
			ollama.WithModel(model),
		)
		if err != nil {
			return "", Failf(name, FailureModelUnavailable, "ollama init: %v", err)
		}
		c.llm = llm
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	slog.Debug("calling ollama", "provider", name, "model", c.cfg.Model)
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithTemperature(0.1),
		llms.WithMaxTokens(256),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", Failf(name, FailureTimeout, "ollama: %v", err)
		}
		if strings.Contains(err.Error(), "not found") {
			return "", Failf(name, FailureModelUnavailable, "ollama: %v", err)
		}
		return "", Failf(name, FailureNetwork, "ollama: %v", err)
	}
	return strings.TrimSpace(out), nil
}

// NewOllamaSummarizer summarizes via a local model. Sits between the
// cloud summarizer and the truncation heuristic in the chain.
func NewOllamaSummarizer(cfg OllamaConfig) Provider[string] {
	c := newOllamaClient(cfg)
	return Func[string]{
		ProviderName: "ollama-summarizer",
		Fn: func(ctx context.Context, in Input) (string, *Failure) {
			text := mergedText(in)
			if text == "" {
				return "", Failf("ollama-summarizer", FailureBadResponse, "no text to summarize")
			}
			prompt := "Summarize this hackathon project in at most 40 words. Respond with the summary only.\n\n" + text
			return c.generate(ctx, "ollama-summarizer", prompt)
		},
	}
}

// NewOllamaLikelihood estimates AI-authorship probability with a local
// model, the middle rung of the detection chain.
func NewOllamaLikelihood(cfg OllamaConfig) Provider[float64] {
	c := newOllamaClient(cfg)
	return Func[float64]{
		ProviderName: "ollama-ai-detector",
		Fn: func(ctx context.Context, in Input) (float64, *Failure) {
			prompt := "Estimate the probability that the following text was written by a language model rather than a person. " +
				"Respond with a single decimal number between 0 and 1 and nothing else.\n\n" + in.Text
			raw, failure := c.generate(ctx, "ollama-ai-detector", prompt)
			if failure != nil {
				return 0, failure
			}
			// Local models tend to wrap the number in prose; take the
			// first parseable token.
			for _, tok := range strings.Fields(raw) {
				if v, err := strconv.ParseFloat(strings.Trim(tok, ".,"), 64); err == nil {
					return clamp01(v), nil
				}
			}
			return 0, Failf("ollama-ai-detector", FailureBadResponse, "non-numeric likelihood %q", raw)
		},
	}
}
