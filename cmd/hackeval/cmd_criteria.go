// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hackeval/hackeval/services/judge/scoring"
)

// runCriteriaValidate parses and validates a rubric file, then prints
// its normalized form.
func runCriteriaValidate(cmd *cobra.Command, args []string) error {
	criteria, err := scoring.Load(args[0])
	if err != nil {
		return fmt.Errorf("invalid rubric: %w", err)
	}
	fmt.Printf("Rubric OK: %d criteria\n", len(criteria.Criteria))
	for _, c := range criteria.Criteria {
		fmt.Printf("- %s (weight %.2f) -> %s\n", c.Label, c.Weight, c.Source)
	}
	return nil
}

// runCriteriaShow prints the built-in default rubric as YAML so it can
// be saved and edited.
func runCriteriaShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(scoring.Default())
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
