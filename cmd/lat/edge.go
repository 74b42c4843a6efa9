package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/graphs"
	"github.com/alfredjeanlab/lattice/internal/model"
)

var edgeCmd = &cobra.Command{
	Use:     "edge",
	Short:   "Manage edges between nodes",
	GroupID: "content",
}

var edgeAddCmd = &cobra.Command{
	Use:   "add <graph-id> <from-node-id> <to-node-id>",
	Short: "Link two nodes with a typed directed edge",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		edgeType, _ := cmd.Flags().GetString("type")

		e, err := svc.CreateEdge(context.Background(), graphs.CreateEdgeInput{
			GraphID:    args[0],
			FromNodeID: args[1],
			ToNodeID:   args[2],
			Type:       model.EdgeType(edgeType),
		})
		if err != nil {
			return fmt.Errorf("creating edge: %w", err)
		}

		if jsonOutput {
			printJSON(e)
		} else {
			printEdgeTable(e)
		}
		return nil
	},
}

var edgeRemoveCmd = &cobra.Command{
	Use:   "remove <graph-id> [<from-node-id> <to-node-id>]",
	Short: "Remove an edge, addressed by endpoint pair or by --id",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		edgeID, _ := cmd.Flags().GetString("id")
		edgeType, _ := cmd.Flags().GetString("type")

		in := graphs.DeleteEdgeInput{
			GraphID: args[0],
			Type:    model.EdgeType(edgeType),
		}
		switch {
		case edgeID != "" && len(args) == 1:
			in.EdgeID = edgeID
		case edgeID == "" && len(args) == 3:
			in.FromNodeID = args[1]
			in.ToNodeID = args[2]
		default:
			return fmt.Errorf("address the edge with either --id or <from-node-id> <to-node-id>")
		}

		res, err := svc.DeleteEdge(context.Background(), in)
		if err != nil {
			return fmt.Errorf("removing edge: %w", err)
		}

		if jsonOutput {
			printJSON(res)
			return nil
		}
		fmt.Printf("Removed %s (%s -> %s, %s)\n", res.EdgeID, res.FromNodeID, res.ToNodeID, res.Type)
		return nil
	},
}

var edgeListCmd = &cobra.Command{
	Use:   "list <graph-id>",
	Short: "List the edges of a graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edgeType, _ := cmd.Flags().GetString("type")
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")

		edges, err := svc.ListEdges(context.Background(), args[0], model.EdgeFilter{
			Type:       model.EdgeType(edgeType),
			FromNodeID: from,
			ToNodeID:   to,
		})
		if err != nil {
			return fmt.Errorf("listing edges: %w", err)
		}

		if jsonOutput {
			printJSON(edges)
		} else {
			printEdgeListTable(edges)
		}
		return nil
	},
}

func init() {
	edgeAddCmd.Flags().StringP("type", "t", "prerequisite", "edge type (prerequisite or sub-topic)")
	edgeRemoveCmd.Flags().String("id", "", "edge id (alternative to the endpoint pair)")
	edgeRemoveCmd.Flags().StringP("type", "t", "", "edge type discriminator (required when both types link the pair)")
	edgeListCmd.Flags().StringP("type", "t", "", "filter by edge type")
	edgeListCmd.Flags().String("from", "", "filter by source node id")
	edgeListCmd.Flags().String("to", "", "filter by target node id")

	edgeCmd.AddCommand(edgeAddCmd)
	edgeCmd.AddCommand(edgeRemoveCmd)
	edgeCmd.AddCommand(edgeListCmd)
}
