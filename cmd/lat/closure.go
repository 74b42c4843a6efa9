package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/graphs"
)

var closureCmd = &cobra.Command{
	Use:     "closure <graph-id> <node-id>",
	Short:   "Show every node reachable along one edge type",
	GroupID: "views",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		edgeType, _ := cmd.Flags().GetString("type")
		direction, _ := cmd.Flags().GetString("direction")
		depth, _ := cmd.Flags().GetInt("depth")
		flat, _ := cmd.Flags().GetBool("flat")

		steps, err := collectTraversal(graphs.TraverseInput{
			GraphID:     args[0],
			StartNodeID: args[1],
			Mode:        graphs.TraversalMode(edgeType),
			Direction:   graphs.Direction(direction),
			MaxDepth:    depth,
		})
		if err != nil {
			return fmt.Errorf("traversing: %w", err)
		}

		if jsonOutput {
			printJSON(steps)
			return nil
		}
		if flat {
			printStepTable(steps)
			return nil
		}

		start, err := svc.GetNode(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("getting node %s: %w", args[1], err)
		}
		fmt.Printf("%s [%d] %s\n", start.ID, start.MasteryPoints, start.Title)
		printStepTree(steps)
		return nil
	},
}

// collectTraversal materializes a traversal into a step slice.
func collectTraversal(in graphs.TraverseInput) ([]graphs.TraversalStep, error) {
	seq, err := svc.Traverse(context.Background(), in)
	if err != nil {
		return nil, err
	}
	var steps []graphs.TraversalStep
	for step := range seq {
		steps = append(steps, step)
	}
	return steps, nil
}

// printStepTable renders traversal steps as a flat table.
func printStepTable(steps []graphs.TraversalStep) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDEPTH\tMASTERY\tTITLE")
	for _, s := range steps {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.Node.ID, s.Depth, s.Node.MasteryPoints, truncate(s.Node.Title, 50))
	}
	w.Flush()
	fmt.Printf("\n%d nodes\n", len(steps))
}

// printStepTree renders a depth-first step sequence as an ASCII tree.
// The steps arrive in preorder, so the branch structure can be recovered
// from the depth column alone.
func printStepTree(steps []graphs.TraversalStep) {
	for i, s := range steps {
		var prefix strings.Builder
		for d := 1; d < s.Depth; d++ {
			if hasLaterSibling(steps, i, d) {
				prefix.WriteString("│   ")
			} else {
				prefix.WriteString("    ")
			}
		}
		connector := "├── "
		if !hasLaterSibling(steps, i, s.Depth) {
			connector = "└── "
		}
		fmt.Printf("%s%s%s [%d] %s\n", prefix.String(), connector, s.Node.ID, s.Node.MasteryPoints, s.Node.Title)
	}
}

// hasLaterSibling reports whether another step at the given depth occurs
// after index i before the walk returns to a shallower depth.
func hasLaterSibling(steps []graphs.TraversalStep, i, depth int) bool {
	for j := i + 1; j < len(steps); j++ {
		if steps[j].Depth < depth {
			return false
		}
		if steps[j].Depth == depth {
			return true
		}
	}
	return false
}

func init() {
	closureCmd.Flags().StringP("type", "t", "prerequisite", "edge type to follow (prerequisite or sub-topic)")
	closureCmd.Flags().String("direction", "out", "edge direction to walk (out or in)")
	closureCmd.Flags().Int("depth", 0, "maximum depth (0 means the 10-level cap)")
	closureCmd.Flags().Bool("flat", false, "flat table instead of ASCII tree")
}
