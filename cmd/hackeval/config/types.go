// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
)

type HackevalConfig struct {
	// Logging controls structured log output for all commands.
	Logging LoggingConfig `yaml:"logging"`

	// Providers configures the analysis provider chains.
	Providers ProvidersConfig `yaml:"providers"`

	// Pipeline controls orchestration limits and result caching.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Scoring points at the criteria rubric.
	Scoring ScoringConfig `yaml:"scoring"`

	// Corpus configures the reference corpus for similarity checks.
	Corpus CorpusConfig `yaml:"corpus"`

	// Server configures the HTTP judging service.
	Server ServerConfig `yaml:"server"`

	// Report controls where per-submission reports are written.
	Report ReportConfig `yaml:"report"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // empty disables file logging
	JSON  bool   `yaml:"json"`
}

type ProvidersConfig struct {
	OpenAI OpenAIConfig `yaml:"openai"`
	Ollama OllamaConfig `yaml:"ollama"`
}

type OpenAIConfig struct {
	// APIKeyEnv names the environment variable holding the key. The
	// key itself never lives in the config file.
	APIKeyEnv         string  `yaml:"api_key_env"`
	Model             string  `yaml:"model"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// APIKey resolves the key from the configured environment variable.
func (c OpenAIConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

type OllamaConfig struct {
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type PipelineConfig struct {
	RuntimeCeilingSeconds int    `yaml:"runtime_ceiling_seconds"`
	CacheDir              string `yaml:"cache_dir"`
	CacheEnabled          bool   `yaml:"cache_enabled"`
}

type ScoringConfig struct {
	// CriteriaPath points at a YAML or JSON rubric. Empty means the
	// built-in default rubric.
	CriteriaPath string `yaml:"criteria_path"`
}

type CorpusConfig struct {
	Dir  string `yaml:"dir"`
	TopK int    `yaml:"top_k"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	WatchDir   string `yaml:"watch_dir"`
	QueueDepth int    `yaml:"queue_depth"`
}

type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

func DefaultConfig() HackevalConfig {
	return HackevalConfig{
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "~/.hackeval/logs",
		},
		Providers: ProvidersConfig{
			OpenAI: OpenAIConfig{
				APIKeyEnv:         "OPENAI_API_KEY",
				Model:             "gpt-4o-mini",
				TimeoutSeconds:    30,
				RequestsPerSecond: 1,
			},
			Ollama: OllamaConfig{
				BaseURL: "http://localhost:11434",
				Model:   "mistral",
			},
		},
		Pipeline: PipelineConfig{
			RuntimeCeilingSeconds: 600,
			CacheDir:              "~/.hackeval/cache",
			CacheEnabled:          true,
		},
		Corpus: CorpusConfig{
			TopK: 3,
		},
		Server: ServerConfig{
			Addr:       ":8085",
			QueueDepth: 64,
		},
		Report: ReportConfig{
			OutputDir: "reports",
		},
	}
}
