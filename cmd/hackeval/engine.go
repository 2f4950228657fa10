// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hackeval/hackeval/cmd/hackeval/config"
	"github.com/hackeval/hackeval/services/judge/analyzer"
	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/pipeline"
	"github.com/hackeval/hackeval/services/judge/provider"
	"github.com/hackeval/hackeval/services/judge/report"
	"github.com/hackeval/hackeval/services/judge/scoring"
)

// engine bundles everything a judging run needs: the stage pipeline,
// the scoring rubric, and the reporter.
type engine struct {
	orch     *pipeline.Orchestrator
	criteria *scoring.Criteria
	reporter *report.Reporter
	cache    *pipeline.Cache
}

// buildEngine assembles the pipeline from the loaded Global config.
func buildEngine(cfg config.HackevalConfig) (*engine, error) {
	openaiCfg := provider.OpenAIConfig{
		APIKey:            cfg.Providers.OpenAI.APIKey(),
		Model:             cfg.Providers.OpenAI.Model,
		Timeout:           time.Duration(cfg.Providers.OpenAI.TimeoutSeconds) * time.Second,
		RequestsPerSecond: cfg.Providers.OpenAI.RequestsPerSecond,
	}
	ollamaCfg := provider.OllamaConfig{
		BaseURL: cfg.Providers.Ollama.BaseURL,
		Model:   cfg.Providers.Ollama.Model,
	}

	topK := cfg.Corpus.TopK
	if topK <= 0 {
		topK = 3
	}

	// Every chain runs cloud first, local model second, heuristic
	// last. The heuristic rungs never fail, so only the AI-likelihood
	// and claim chains can realistically exhaust.
	summaryChain := provider.NewChain(
		domain.AnalysisTask{Modality: domain.ModalityText, Capability: "summary"},
		provider.NewOpenAISummarizer(openaiCfg),
		provider.NewOllamaSummarizer(ollamaCfg),
		provider.NewHeuristicSummarizer(40),
	)
	claimChain := provider.NewChain(
		domain.AnalysisTask{Modality: domain.ModalityText, Capability: "claims"},
		provider.NewOpenAIClaimExtractor(openaiCfg, topK),
		provider.NewKeywordClaimFlagger(topK),
	)
	likelihoodChain := provider.NewChain(
		domain.AnalysisTask{Modality: domain.ModalityText, Capability: "ai_likelihood"},
		provider.NewOpenAILikelihood(openaiCfg),
		provider.NewOllamaLikelihood(ollamaCfg),
		provider.NewStylometricLikelihood(),
	)
	insightChain := provider.NewChain(
		domain.AnalysisTask{Modality: domain.ModalityCode, Capability: "insight"},
		provider.NewOpenAICodeInsight(openaiCfg, 32*1024),
		provider.NewFileCountInsight(),
	)

	// An unset corpus dir loads as an empty corpus, which produces no
	// similarity matches rather than failing.
	corpus, err := analyzer.LoadCorpus(expandHome(cfg.Corpus.Dir))
	if err != nil {
		return nil, fmt.Errorf("load similarity corpus: %w", err)
	}

	video := analyzer.NewVideoAnalyzer()
	text := analyzer.NewTextAnalyzer(corpus, topK, analyzer.TextChains{
		Summary:    summaryChain,
		Claims:     claimChain,
		Likelihood: likelihoodChain,
	})
	code := analyzer.NewCodeAnalyzer(insightChain)

	opts := []pipeline.Option{}
	if cfg.Pipeline.RuntimeCeilingSeconds > 0 {
		opts = append(opts, pipeline.WithRuntimeCeiling(
			time.Duration(cfg.Pipeline.RuntimeCeilingSeconds)*time.Second))
	}

	var cache *pipeline.Cache
	if cfg.Pipeline.CacheEnabled && cfg.Pipeline.CacheDir != "" {
		opened, err := pipeline.OpenCache(pipeline.CacheConfig{
			Path: expandHome(cfg.Pipeline.CacheDir),
		})
		if err != nil {
			// A broken cache degrades to uncached runs.
			slog.Warn("bundle cache unavailable, running uncached", "error", err)
		} else {
			cache = opened
			opts = append(opts, pipeline.WithCache(cache))
		}
	}

	criteria := scoring.Default()
	if cfg.Scoring.CriteriaPath != "" {
		loaded, err := scoring.Load(expandHome(cfg.Scoring.CriteriaPath))
		if err != nil {
			if cache != nil {
				cache.Close()
			}
			return nil, fmt.Errorf("load criteria: %w", err)
		}
		criteria = loaded
	}

	reporter, err := report.NewReporter(expandHome(cfg.Report.OutputDir))
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}

	return &engine{
		orch:     pipeline.NewOrchestrator(video, text, code, opts...),
		criteria: criteria,
		reporter: reporter,
		cache:    cache,
	}, nil
}

// Judge runs the pipeline and the aggregator for one submission and
// writes its report.
func (e *engine) Judge(ctx context.Context, sub domain.Submission) (*scoring.ScoredSubmission, error) {
	sub = normalizeSubmission(sub)
	bundle, err := e.orch.Run(ctx, sub)
	if err != nil {
		return nil, err
	}
	scored := scoring.Score(bundle, e.criteria)
	if path, err := e.reporter.WriteSubmissionReport(bundle, scored); err != nil {
		slog.Warn("report write failed", "submission_id", sub.ID, "error", err)
	} else {
		slog.Info("report written", "submission_id", sub.ID, "path", path)
	}
	return &scored, nil
}

func (e *engine) Close() {
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			slog.Warn("cache close failed", "error", err)
		}
	}
}

// submissionFromDir builds a Submission from a directory layout.
func submissionFromDir(root string) domain.Submission {
	return normalizeSubmission(domain.Submission{
		ID:   filepath.Base(root),
		Root: root,
	})
}

// normalizeSubmission fills unset fields from the conventional layout:
// transcript.txt and description.md at the root, code under src/ or
// the root itself.
func normalizeSubmission(sub domain.Submission) domain.Submission {
	if sub.Root == "" {
		return sub
	}
	if sub.TranscriptPath == "" {
		if _, err := os.Stat(filepath.Join(sub.Root, "transcript.txt")); err == nil {
			sub.TranscriptPath = filepath.Join(sub.Root, "transcript.txt")
		}
	}
	if sub.Description == "" {
		if data, err := os.ReadFile(filepath.Join(sub.Root, "description.md")); err == nil {
			sub.Description = string(data)
		}
	}
	if sub.CodeDir == "" {
		sub.CodeDir = sub.Root
		if info, err := os.Stat(filepath.Join(sub.Root, "src")); err == nil && info.IsDir() {
			sub.CodeDir = filepath.Join(sub.Root, "src")
		}
	}
	return sub
}

func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
