// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scoring resolves declarative judging criteria against an
// analysis bundle and combines them into a ranked, explainable score.
package scoring

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Criterion is one named, weighted pointer into the analysis bundle.
// Source is a case-sensitive dotted path whose first segment names the
// modality, e.g. "video.clarity_score" or "code.documentation.ratio".
type Criterion struct {
	Key         string  `yaml:"key" json:"key" validate:"required"`
	Label       string  `yaml:"label" json:"label"`
	Source      string  `yaml:"source" json:"source" validate:"required,contains=."`
	Weight      float64 `yaml:"weight" json:"weight" validate:"gt=0"`
	Description string  `yaml:"description" json:"description"`
	MinValue    float64 `yaml:"min_value" json:"min_value"`
	MaxValue    float64 `yaml:"max_value" json:"max_value"`
}

// Clamp maps a raw metric into [0,1] over the criterion's declared
// range. A degenerate range passes the raw value through.
func (c Criterion) Clamp(raw float64) float64 {
	if c.MaxValue <= c.MinValue {
		return raw
	}
	normalized := (raw - c.MinValue) / (c.MaxValue - c.MinValue)
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// Criteria is the ordered criteria list for one judging run. Immutable
// once loaded; order is preserved into the scored output.
type Criteria struct {
	Criteria []Criterion `yaml:"criteria" json:"criteria" validate:"min=1,dive"`
}

var validate = validator.New()

// Load reads a criteria file. YAML and JSON both parse (the yaml
// decoder accepts JSON), so operator configs can be either.
func Load(path string) (*Criteria, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read criteria file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a criteria document.
func Parse(data []byte) (*Criteria, error) {
	var c Criteria
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode criteria: %w", err)
	}
	for i := range c.Criteria {
		item := &c.Criteria[i]
		if item.Label == "" {
			item.Label = item.Key
		}
		// Unset range means the analyzer's native [0,1] scale.
		if item.MinValue == 0 && item.MaxValue == 0 {
			item.MaxValue = 1
		}
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid criteria: %w", err)
	}
	seen := make(map[string]bool, len(c.Criteria))
	for _, item := range c.Criteria {
		if seen[item.Key] {
			return nil, fmt.Errorf("invalid criteria: duplicate key %q", item.Key)
		}
		seen[item.Key] = true
		if strings.TrimSpace(item.Source) != item.Source {
			return nil, fmt.Errorf("invalid criteria: source %q has surrounding whitespace", item.Source)
		}
	}
	return &c, nil
}

// Default returns the stock judging rubric used when no criteria file
// is configured.
func Default() *Criteria {
	return &Criteria{Criteria: []Criterion{
		{
			Key:         "originality",
			Label:       "Originality",
			Weight:      0.30,
			Source:      "text.originality_score",
			Description: "Lexical uniqueness of the description, discounted by corpus similarity.",
			MaxValue:    1,
		},
		{
			Key:         "technical_feasibility",
			Label:       "Technical Feasibility",
			Weight:      0.25,
			Source:      "text.feasibility_score",
			Description: "Log-scaled feasibility estimate derived from description length.",
			MaxValue:    1,
		},
		{
			Key:         "presentation_quality",
			Label:       "Presentation Quality",
			Weight:      0.20,
			Source:      "video.clarity_score",
			Description: "Clarity heuristics computed from the presentation transcript.",
			MaxValue:    1,
		},
		{
			Key:         "code_quality",
			Label:       "Code Quality & Correctness",
			Weight:      0.25,
			Source:      "code.quality_index",
			Description: "Blend of readability, documentation, and coverage signals.",
			MaxValue:    1,
		},
	}}
}
