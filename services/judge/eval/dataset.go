// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package eval

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Dataset pairs prediction scores with human-labelled outcomes loaded
// from a CSV export of a past event's leaderboard.
type Dataset struct {
	Labels []int
	Scores []float64
}

// LoadCSV reads a headered CSV and extracts the given score and label
// columns. Labels must be 0 or 1.
func LoadCSV(path, scoreColumn, labelColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	header := records[0]
	scoreIdx, err := columnIndex(header, scoreColumn)
	if err != nil {
		return nil, err
	}
	labelIdx, err := columnIndex(header, labelColumn)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Labels: make([]int, 0, len(records)-1),
		Scores: make([]float64, 0, len(records)-1),
	}
	for i, row := range records[1:] {
		score, err := strconv.ParseFloat(strings.TrimSpace(row[scoreIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad score %q: %w", i+2, row[scoreIdx], err)
		}
		label, err := strconv.Atoi(strings.TrimSpace(row[labelIdx]))
		if err != nil || (label != 0 && label != 1) {
			return nil, fmt.Errorf("row %d: label %q must be 0 or 1", i+2, row[labelIdx])
		}
		ds.Scores = append(ds.Scores, score)
		ds.Labels = append(ds.Labels, label)
	}
	return ds, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if strings.TrimSpace(col) == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not present, available: %s", name, strings.Join(header, ", "))
}
