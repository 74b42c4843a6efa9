package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/graphs"
)

var nodeCmd = &cobra.Command{
	Use:     "node",
	Short:   "Manage nodes",
	GroupID: "content",
}

var nodeAddCmd = &cobra.Command{
	Use:   "add <graph-id> <title>",
	Short: "Add a node to a graph",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		mastery, _ := cmd.Flags().GetInt("mastery")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		metadata, err := parseMetadata(metaPairs)
		if err != nil {
			return err
		}

		n, err := svc.CreateNode(context.Background(), graphs.CreateNodeInput{
			GraphID:       args[0],
			Title:         args[1],
			Description:   description,
			MasteryPoints: mastery,
			Metadata:      metadata,
		})
		if err != nil {
			return fmt.Errorf("creating node: %w", err)
		}

		if jsonOutput {
			printJSON(n)
		} else {
			printNodeTable(n)
		}
		return nil
	},
}

var nodeShowCmd = &cobra.Command{
	Use:   "show <graph-id> <node-id>",
	Short: "Show details of a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := svc.GetNode(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("getting node %s: %w", args[1], err)
		}

		if jsonOutput {
			printJSON(n)
		} else {
			printNodeTable(n)
		}
		return nil
	},
}

var nodeListCmd = &cobra.Command{
	Use:   "list <graph-id>",
	Short: "List the nodes of a graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodes, err := svc.ListNodes(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("listing nodes: %w", err)
		}

		if jsonOutput {
			printJSON(nodes)
		} else {
			printNodeListTable(nodes)
		}
		return nil
	},
}

var nodeUpdateCmd = &cobra.Command{
	Use:   "update <graph-id> <node-id>",
	Short: "Update a node",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := graphs.UpdateNodeInput{GraphID: args[0], NodeID: args[1]}

		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			in.Title = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			in.Description = &v
		}
		if cmd.Flags().Changed("mastery") {
			v, _ := cmd.Flags().GetInt("mastery")
			in.MasteryPoints = &v
		}
		if cmd.Flags().Changed("meta") {
			pairs, _ := cmd.Flags().GetStringArray("meta")
			metadata, err := parseMetadata(pairs)
			if err != nil {
				return err
			}
			in.Metadata = metadata
		}

		n, err := svc.UpdateNode(context.Background(), in)
		if err != nil {
			return fmt.Errorf("updating node: %w", err)
		}

		if jsonOutput {
			printJSON(n)
		} else {
			printNodeTable(n)
		}
		return nil
	},
}

var nodeRemoveCmd = &cobra.Command{
	Use:   "remove <graph-id> <node-id>",
	Short: "Remove a node and every edge touching it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.DeleteNode(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("removing node %s: %w", args[1], err)
		}

		if jsonOutput {
			printJSON(res)
			return nil
		}
		fmt.Printf("Removed %s\n", res.NodeID)
		if len(res.DeletedEdgeIDs) > 0 {
			fmt.Printf("Also removed %d incident edges: %s\n", len(res.DeletedEdgeIDs), strings.Join(res.DeletedEdgeIDs, ", "))
		}
		return nil
	},
}

func init() {
	nodeAddCmd.Flags().StringP("description", "d", "", "node description")
	nodeAddCmd.Flags().Int("mastery", 0, "mastery points awarded on completion")
	nodeAddCmd.Flags().StringArrayP("meta", "m", nil, "metadata entry (key=value, repeatable)")

	nodeUpdateCmd.Flags().String("title", "", "node title")
	nodeUpdateCmd.Flags().StringP("description", "d", "", "node description")
	nodeUpdateCmd.Flags().Int("mastery", 0, "mastery points awarded on completion")
	nodeUpdateCmd.Flags().StringArrayP("meta", "m", nil, "metadata entry to merge (key=value, repeatable)")

	nodeCmd.AddCommand(nodeAddCmd)
	nodeCmd.AddCommand(nodeShowCmd)
	nodeCmd.AddCommand(nodeListCmd)
	nodeCmd.AddCommand(nodeUpdateCmd)
	nodeCmd.AddCommand(nodeRemoveCmd)
}
