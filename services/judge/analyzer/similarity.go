// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyzer

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Corpus is the read-only reference corpus used for originality checks.
// It is loaded once and may be shared across concurrent runs; nothing
// mutates it after New.
type Corpus struct {
	docs []corpusDoc
}

type corpusDoc struct {
	name   string
	text   string
	tokens map[string]bool
}

// LoadCorpus reads every .txt file under dir. A missing or empty
// directory yields an empty corpus, which simply produces no matches.
func LoadCorpus(dir string) (*Corpus, error) {
	c := &Corpus{}
	if dir == "" {
		return c, nil
	}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".txt") {
			return err
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), ".txt")
		c.docs = append(c.docs, corpusDoc{name: name, text: text, tokens: tokenSet(text)})
		return nil
	})
	if os.IsNotExist(err) {
		return &Corpus{}, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Len returns the number of corpus documents.
func (c *Corpus) Len() int { return len(c.docs) }

// Match scores the query against every corpus document by Jaccard token
// overlap and returns the topK matches, best first. Deterministic: equal
// scores are ordered by document name.
func (c *Corpus) Match(query string, topK int) []Match {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 || len(c.docs) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(c.docs))
	for _, doc := range c.docs {
		matches = append(matches, Match{
			Source:  doc.name,
			Score:   jaccard(queryTokens, doc.tokens),
			Snippet: snippet(doc.text, 120),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Source < matches[j].Source
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// Match is one similarity hit against the reference corpus.
type Match struct {
	Source  string
	Score   float64
	Snippet string
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		set[tok] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func snippet(text string, max int) string {
	cleaned := strings.Join(strings.Fields(text), " ")
	if len(cleaned) <= max {
		return cleaned
	}
	// Back off to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := max
	for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
		cut--
	}
	return cleaned[:cut] + "..."
}
