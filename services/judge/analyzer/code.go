// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/provider"
)

// DefaultMaxFileSize bounds what the code stage will parse per file.
const DefaultMaxFileSize = 1 << 20

// CodeAnalyzer computes deterministic static metrics over the submitted
// source tree (tree-sitter based structure counts, documentation ratio,
// language distribution) and, independently, asks the insight chain for
// a qualitative note. A submission without code yields explicit
// not-applicable metrics, never zeros that read as real scores.
type CodeAnalyzer struct {
	insightChain *provider.Chain[string]
	maxFileSize  int64
}

// NewCodeAnalyzer constructs the code stage. insight may serve any
// priority order; nil disables the insight capability entirely.
func NewCodeAnalyzer(insight *provider.Chain[string]) *CodeAnalyzer {
	return &CodeAnalyzer{insightChain: insight, maxFileSize: DefaultMaxFileSize}
}

// language describes one tree-sitter grammar and the node types that
// count as functions and as branching constructs for the complexity
// estimate.
type language struct {
	name     string
	lang     *sitter.Language
	function map[string]bool
	branch   map[string]bool
}

var languages = map[string]language{
	".py": {
		name: "python",
		lang: python.GetLanguage(),
		function: map[string]bool{
			"function_definition": true,
		},
		branch: map[string]bool{
			"if_statement": true, "for_statement": true, "while_statement": true,
			"try_statement": true, "conditional_expression": true, "boolean_operator": true,
		},
	},
	".go": {
		name: "go",
		lang: golang.GetLanguage(),
		function: map[string]bool{
			"function_declaration": true, "method_declaration": true, "func_literal": true,
		},
		branch: map[string]bool{
			"if_statement": true, "for_statement": true,
			"expression_case": true, "type_case": true, "communication_case": true,
		},
	},
	".js": {
		name: "javascript",
		lang: javascript.GetLanguage(),
		function: map[string]bool{
			"function_declaration": true, "method_definition": true,
			"arrow_function": true, "function_expression": true,
		},
		branch: map[string]bool{
			"if_statement": true, "for_statement": true, "for_in_statement": true,
			"while_statement": true, "do_statement": true, "switch_case": true,
			"ternary_expression": true,
		},
	},
}

// langStats accumulates per-language distribution data.
type langStats struct {
	Files int `json:"files"`
	Lines int `json:"lines"`
}

// Analyze produces the code StageResult.
func (a *CodeAnalyzer) Analyze(ctx context.Context, sub domain.Submission) domain.StageResult {
	ctx, span := tracer.Start(ctx, "CodeAnalyzer.Analyze")
	defer span.End()

	result := domain.NewStageResult(domain.ModalityCode)

	files := a.collectFiles(sub.CodeDir)
	if len(files) == 0 {
		result.Metrics["readability_score"] = domain.NotApplicable()
		result.Metrics["documentation"] = domain.Group(map[string]domain.MetricValue{
			"ratio": domain.NotApplicable(),
		})
		result.Metrics["complexity_score"] = domain.NotApplicable()
		result.Metrics["test_coverage_estimate"] = domain.NotApplicable()
		result.Metrics["quality_index"] = domain.NotApplicable()
		result.Evidence["note"] = "no source files found"
		result.Finish()
		return result
	}

	var (
		distribution = map[string]langStats{}
		functions    int
		branches     int
		docUnits     int
		parsedFiles  int
		testFiles    int
	)
	for _, f := range files {
		ext := filepath.Ext(f.Path)
		langName := languageName(ext)
		stats := distribution[langName]
		stats.Files++
		stats.Lines += strings.Count(string(f.Content), "\n") + 1
		distribution[langName] = stats

		if isTestFile(f.Path) {
			testFiles++
		}
		docUnits += countDocUnits(ext, string(f.Content))

		spec, ok := languages[ext]
		if !ok {
			continue
		}
		fn, br, err := a.parseCounts(ctx, spec, f)
		if err != nil {
			slog.Warn("parse failed, file excluded from structure metrics",
				"file", f.Path, "error", err)
			continue
		}
		parsedFiles++
		functions += fn
		branches += br
	}

	fileCount := len(files)
	readability := 0.3 + minf(0.7, float64(fileCount)/20)
	docRatio := minf(1, float64(docUnits)/float64(fileCount*2))
	coverage := minf(1, float64(fileCount+docUnits)/50)

	result.Metrics["readability_score"] = domain.Num(round3(readability))
	result.Metrics["documentation"] = domain.Group(map[string]domain.MetricValue{
		"ratio": domain.Num(round3(docRatio)),
	})
	result.Metrics["test_coverage_estimate"] = domain.Num(round3(coverage))
	result.Metrics["test_presence_score"] = domain.Num(round3(minf(1, 5*float64(testFiles)/float64(fileCount))))

	quality := []float64{readability, docRatio, coverage}
	if parsedFiles > 0 {
		avgBranches := float64(branches) / maxf(1, float64(functions))
		complexity := 1 - minf(1, avgBranches/10)
		result.Metrics["complexity_score"] = domain.Num(round3(complexity))
		result.Evidence["functions"] = functions
		result.Evidence["branch_nodes"] = branches
		quality = append(quality, complexity)
	} else {
		// No supported grammar matched anything; the metric genuinely
		// does not apply rather than being zero.
		result.Metrics["complexity_score"] = domain.NotApplicable()
	}
	result.Metrics["quality_index"] = domain.Num(round3(mean(quality)))
	result.Evidence["language_distribution"] = distribution
	result.Evidence["file_count"] = fileCount
	result.Evidence["test_files"] = testFiles

	if a.insightChain != nil {
		out := a.insightChain.Run(ctx, provider.Input{Files: files})
		result.Traces = append(result.Traces, out.Trace())
		if out.Exhausted {
			result.Degradations = append(result.Degradations, degradationFor(out.Task, out.Failures))
		} else {
			result.Evidence["insight"] = out.Value
		}
	}

	result.Finish()
	return result
}

// parseCounts parses one file and counts function and branch nodes.
func (a *CodeAnalyzer) parseCounts(ctx context.Context, spec language, f provider.SourceFile) (functions, branches int, err error) {
	parser := sitter.NewParser()
	parser.SetLanguage(spec.lang)
	tree, err := parser.ParseCtx(ctx, nil, f.Content)
	if err != nil {
		return 0, 0, err
	}
	defer tree.Close()

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		t := node.Type()
		if spec.function[t] {
			functions++
		}
		if spec.branch[t] {
			branches++
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			walk(node.NamedChild(i))
		}
	}
	if root := tree.RootNode(); root != nil {
		walk(root)
	}
	return functions, branches, nil
}

var skippedDirs = map[string]bool{
	".git": true, "node_modules": true, "__pycache__": true,
	"vendor": true, ".venv": true, "venv": true, "dist": true,
}

func (a *CodeAnalyzer) collectFiles(dir string) []provider.SourceFile {
	if dir == "" {
		return nil
	}
	var files []provider.SourceFile
	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil || info.Size() > a.maxFileSize {
			return nil
		}
		if !isSourceFile(path) {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil || !utf8.Valid(content) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		files = append(files, provider.SourceFile{Path: filepath.ToSlash(rel), Content: content})
		return nil
	})
	return files
}

var sourceExtensions = map[string]bool{
	".py": true, ".go": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".rs": true, ".java": true, ".c": true, ".cc": true, ".cpp": true, ".h": true,
	".rb": true, ".sh": true, ".sql": true,
}

func isSourceFile(path string) bool {
	return sourceExtensions[filepath.Ext(path)]
}

func languageName(ext string) string {
	if spec, ok := languages[ext]; ok {
		return spec.name
	}
	if ext == "" {
		return "other"
	}
	return strings.TrimPrefix(ext, ".")
}

func isTestFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), "_test") ||
		strings.HasPrefix(base, "test_") ||
		strings.Contains(filepath.ToSlash(path), "tests/")
}

// countDocUnits counts documentation units the way each ecosystem writes
// them: docstring pairs for Python, comment lines elsewhere (scaled down
// so a line of comment is worth less than a docstring).
func countDocUnits(ext, content string) int {
	if ext == ".py" {
		return strings.Count(content, `"""`)/2 + strings.Count(content, "'''")/2
	}
	lines := 0
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			lines++
		}
	}
	return lines / 3
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
