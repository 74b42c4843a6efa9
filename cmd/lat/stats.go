package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/model"
)

var statsCmd = &cobra.Command{
	Use:     "stats <graph-id>",
	Short:   "Show node, edge, and mastery totals for a graph",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := svc.Stats(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("getting stats for %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(stats)
			return nil
		}

		fmt.Printf("Graph %s\n", stats.GraphID)
		fmt.Printf("  %-16s%d\n", "Nodes:", stats.Nodes)
		fmt.Printf("  %-16s%d\n", "Edges:", stats.Edges)
		for _, t := range model.EdgeTypes() {
			fmt.Printf("    %-14s%d\n", t.String()+":", stats.EdgesByType[t.String()])
		}
		fmt.Printf("  %-16s%d\n", "Mastery Points:", stats.MasteryPoints)
		return nil
	},
}
