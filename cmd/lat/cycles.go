package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/model"
)

var cyclesCmd = &cobra.Command{
	Use:     "cycles <graph-id>",
	Short:   "Detect cyclic chains of one edge type",
	GroupID: "views",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edgeType, _ := cmd.Flags().GetString("type")

		cycles, err := svc.DetectCycles(context.Background(), args[0], model.EdgeType(edgeType))
		if err != nil {
			return fmt.Errorf("detecting cycles: %w", err)
		}

		if jsonOutput {
			printJSON(cycles)
		} else {
			if len(cycles) == 0 {
				fmt.Println("No cycles found.")
				return nil
			}
			for _, c := range cycles {
				fmt.Println(strings.Join(c, " -> "))
			}
		}

		// A found cycle fails the command so scripted checks can gate on it.
		if len(cycles) > 0 {
			return fmt.Errorf("found %d %s cycles", len(cycles), edgeType)
		}
		return nil
	},
}

func init() {
	cyclesCmd.Flags().StringP("type", "t", "prerequisite", "edge type to check (prerequisite or sub-topic)")
}
