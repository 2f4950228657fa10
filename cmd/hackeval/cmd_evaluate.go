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

	"github.com/hackeval/hackeval/services/judge/eval"
)

// runEvaluate compares judge scores against human labels and prints
// classification reliability metrics.
func runEvaluate(cmd *cobra.Command, args []string) error {
	ds, err := eval.LoadCSV(args[0], scoreColumn, labelColumn)
	if err != nil {
		return err
	}

	result, err := eval.EvaluateBinary(ds.Labels, ds.Scores, threshold, targetTPR)
	if err != nil {
		return err
	}

	fmt.Printf("Samples:        %d\n", len(ds.Labels))
	fmt.Printf("Threshold:      %.2f\n", result.Threshold)
	printMetric("AUROC", result.AUROC)
	printMetric("Precision", result.Precision)
	printMetric("Recall", result.Recall)
	printMetric("F1", result.F1)
	if result.FPRAtTargetTPR != nil {
		fmt.Printf("FPR@TPR>=%.2f:   %.6f\n", result.TargetTPR, *result.FPRAtTargetTPR)
	} else {
		fmt.Printf("FPR@TPR>=%.2f:   undefined\n", result.TargetTPR)
	}
	return nil
}

func printMetric(name string, v *float64) {
	if v == nil {
		fmt.Printf("%-15s undefined\n", name+":")
		return
	}
	fmt.Printf("%-15s %.6f\n", name+":", *v)
}
