// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackeval/hackeval/services/judge/domain"
	"github.com/hackeval/hackeval/services/judge/provider"
)

const goSample = `package main

func main() {
	if true {
		println("hi")
	}
}

func helper() int {
	for i := 0; i < 3; i++ {
		println(i)
	}
	return 0
}
`

func writeSource(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func codeTask() domain.AnalysisTask {
	return domain.AnalysisTask{Modality: domain.ModalityCode, Capability: "insight"}
}

func TestCodeAnalyzer_NoSourceFiles(t *testing.T) {
	a := NewCodeAnalyzer(nil)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: t.TempDir()})

	// An absent code tree yields explicit not-applicable metrics, not
	// zeros a rubric would read as real scores.
	assert.Equal(t, domain.StageCompleted, result.Status)
	assert.Equal(t, "no source files found", result.Evidence["note"])

	for _, name := range []string{"readability_score", "complexity_score", "test_coverage_estimate", "quality_index"} {
		m, ok := result.Metric(name)
		require.True(t, ok, name)
		assert.Equal(t, domain.MetricNotApplicable, m.Kind, name)
	}
	doc, _ := result.Metric("documentation")
	require.Equal(t, domain.MetricGroup, doc.Kind)
	assert.Equal(t, domain.MetricNotApplicable, doc.Group["ratio"].Kind)
}

func TestCodeAnalyzer_EmptyCodeDir(t *testing.T) {
	a := NewCodeAnalyzer(nil)
	result := a.Analyze(context.Background(), domain.Submission{})

	m, _ := result.Metric("quality_index")
	assert.Equal(t, domain.MetricNotApplicable, m.Kind)
}

func TestCodeAnalyzer_GoStructureCounts(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.go", goSample)

	a := NewCodeAnalyzer(nil)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: dir})

	assert.Equal(t, 2, result.Evidence["functions"])
	assert.Equal(t, 2, result.Evidence["branch_nodes"])
	assert.Equal(t, 1, result.Evidence["file_count"])

	// Two functions with one branch each averages 1 branch per function.
	complexity, _ := result.Metric("complexity_score")
	assert.InDelta(t, 0.9, complexity.Number, 1e-9)

	readability, _ := result.Metric("readability_score")
	assert.InDelta(t, 0.35, readability.Number, 1e-9)

	quality, _ := result.Metric("quality_index")
	assert.InDelta(t, 0.3175, quality.Number, 0.001)
}

func TestCodeAnalyzer_LanguageDistribution(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "app.py", "def run():\n    pass\n")
	writeSource(t, dir, "web/app.js", "function run() {}\n")
	writeSource(t, dir, "query.sql", "SELECT 1;\n")

	a := NewCodeAnalyzer(nil)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: dir})

	dist, ok := result.Evidence["language_distribution"].(map[string]langStats)
	require.True(t, ok)
	assert.Equal(t, 1, dist["python"].Files)
	assert.Equal(t, 1, dist["javascript"].Files)
	assert.Equal(t, 1, dist["sql"].Files)
}

func TestCodeAnalyzer_TestFileDetection(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "thing.go", "package thing\n")
	writeSource(t, dir, "thing_test.go", "package thing\n")
	writeSource(t, dir, "test_app.py", "def test_app():\n    pass\n")
	writeSource(t, dir, "tests/helper.js", "function helper() {}\n")

	a := NewCodeAnalyzer(nil)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: dir})

	assert.Equal(t, 3, result.Evidence["test_files"])
}

func TestCodeAnalyzer_SkipsVendoredDirs(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.go", goSample)
	writeSource(t, dir, "node_modules/dep/index.js", "function dep() {}\n")
	writeSource(t, dir, ".git/hooks/sample.sh", "echo hi\n")
	writeSource(t, dir, "README.md", "docs only")

	a := NewCodeAnalyzer(nil)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: dir})

	assert.Equal(t, 1, result.Evidence["file_count"])
}

func TestCodeAnalyzer_InsightSuccess(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.go", goSample)

	chain := provider.NewChain(codeTask(), ok("cloud-insight", "Coherent single-binary design."))
	a := NewCodeAnalyzer(chain)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: dir})

	assert.Equal(t, domain.StageCompleted, result.Status)
	assert.Equal(t, "Coherent single-binary design.", result.Evidence["insight"])
	require.Len(t, result.Traces, 1)
	assert.Equal(t, "cloud-insight", result.Traces[0].Satisfied)
}

func TestCodeAnalyzer_InsightExhaustionDegrades(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "main.go", goSample)

	chain := provider.NewChain(codeTask(),
		fail[string]("cloud-insight", provider.FailureMissingCredentials, "no api key"))
	a := NewCodeAnalyzer(chain)
	result := a.Analyze(context.Background(), domain.Submission{CodeDir: dir})

	assert.Equal(t, domain.StageDegraded, result.Status)
	assert.NotContains(t, result.Evidence, "insight")
	require.Len(t, result.Degradations, 1)
	assert.Equal(t, "insight", result.Degradations[0].Task.Capability)

	// Structural metrics are unaffected by the insight failure.
	quality, _ := result.Metric("quality_index")
	assert.Equal(t, domain.MetricNumber, quality.Kind)
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"foo_test.go", true},
		{"test_app.py", true},
		{"tests/helper.js", true},
		{"src/main.go", false},
		{"contest.go", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isTestFile(tt.path), tt.path)
	}
}

func TestCountDocUnits(t *testing.T) {
	py := "def f():\n    \"\"\"doc\"\"\"\n    pass\n"
	assert.Equal(t, 1, countDocUnits(".py", py))

	goSrc := "// one\n// two\n// three\npackage x\n"
	assert.Equal(t, 1, countDocUnits(".go", goSrc))

	assert.Equal(t, 0, countDocUnits(".go", "package x\n"))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "python", languageName(".py"))
	assert.Equal(t, "go", languageName(".go"))
	assert.Equal(t, "rs", languageName(".rs"))
	assert.Equal(t, "other", languageName(""))
}
