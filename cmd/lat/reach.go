package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/graphs"
)

var reachCmd = &cobra.Command{
	Use:     "reach <graph-id> <node-id>",
	Short:   "Show every node connected to a node, ignoring edge type and direction",
	Aliases: []string{"connected"},
	GroupID: "views",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")

		steps, err := collectTraversal(graphs.TraverseInput{
			GraphID:     args[0],
			StartNodeID: args[1],
			Mode:        graphs.ModeConnected,
			MaxDepth:    depth,
		})
		if err != nil {
			return fmt.Errorf("traversing: %w", err)
		}

		if jsonOutput {
			printJSON(steps)
			return nil
		}
		printStepTable(steps)
		return nil
	},
}

func init() {
	reachCmd.Flags().Int("depth", 0, "maximum hop distance (0 means the 10-level cap)")
}
