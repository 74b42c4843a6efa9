package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/lattice/internal/graphs"
)

var graphCmd = &cobra.Command{
	Use:     "graph",
	Short:   "Manage graphs",
	GroupID: "graphs",
}

var graphCreateCmd = &cobra.Command{
	Use:   "create <course-id>",
	Short: "Create an empty graph for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prototype, _ := cmd.Flags().GetBool("prototype")

		g, err := svc.CreateGraph(context.Background(), graphs.CreateGraphInput{CourseID: args[0]})
		if err != nil {
			return fmt.Errorf("creating graph: %w", err)
		}
		if prototype {
			pt := true
			g, err = svc.UpdateGraph(context.Background(), graphs.UpdateGraphInput{GraphID: g.ID, IsPrototype: &pt})
			if err != nil {
				return fmt.Errorf("marking graph as prototype: %w", err)
			}
		}

		if jsonOutput {
			printJSON(g)
		} else {
			printGraphTable(g)
		}
		return nil
	},
}

var graphShowCmd = &cobra.Command{
	Use:   "show <graph-id>",
	Short: "Show details of a graph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := svc.GetGraph(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("getting graph %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(g)
		} else {
			printGraphTable(g)
		}
		return nil
	},
}

var graphListCmd = &cobra.Command{
	Use:   "list",
	Short: "List graphs",
	RunE: func(cmd *cobra.Command, args []string) error {
		course, _ := cmd.Flags().GetString("course")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		in := graphs.ListGraphsInput{
			CourseID: course,
			Limit:    limit,
			Offset:   offset,
		}
		if cmd.Flags().Changed("prototype") {
			v, _ := cmd.Flags().GetBool("prototype")
			in.Prototype = &v
		}

		graphList, total, err := svc.ListGraphs(context.Background(), in)
		if err != nil {
			return fmt.Errorf("listing graphs: %w", err)
		}

		if jsonOutput {
			printJSON(graphList)
		} else {
			printGraphListTable(graphList, total)
		}
		return nil
	},
}

var graphUpdateCmd = &cobra.Command{
	Use:   "update <graph-id>",
	Short: "Update graph metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := graphs.UpdateGraphInput{GraphID: args[0]}
		if cmd.Flags().Changed("prototype") {
			v, _ := cmd.Flags().GetBool("prototype")
			in.IsPrototype = &v
		}

		g, err := svc.UpdateGraph(context.Background(), in)
		if err != nil {
			return fmt.Errorf("updating graph: %w", err)
		}

		if jsonOutput {
			printJSON(g)
		} else {
			printGraphTable(g)
		}
		return nil
	},
}

var graphCopyCmd = &cobra.Command{
	Use:   "copy <graph-id>",
	Short: "Copy a graph with all its nodes and edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := svc.CopyGraph(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("copying graph %s: %w", args[0], err)
		}

		if jsonOutput {
			printJSON(res)
		} else {
			printGraphTable(res.Graph)
			fmt.Printf("\nCopied %d nodes and %d edges from %s\n", res.NodesCopied, res.EdgesCopied, args[0])
		}
		return nil
	},
}

var graphDeleteCmd = &cobra.Command{
	Use:   "delete <graph-id>...",
	Short: "Delete one or more graphs with all their contents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			res, err := svc.DeleteGraph(context.Background(), id)
			if err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}

			fmt.Printf("Deleted %s (%d nodes, %d edges)\n", res.GraphID, res.NodesDeleted, res.EdgesDeleted)
		}
		return nil
	},
}

func init() {
	graphCreateCmd.Flags().Bool("prototype", false, "mark the new graph as a prototype")
	graphListCmd.Flags().StringP("course", "c", "", "filter by course id")
	graphListCmd.Flags().Bool("prototype", false, "filter by prototype flag")
	graphListCmd.Flags().Int("limit", 20, "maximum number of graphs to return")
	graphListCmd.Flags().Int("offset", 0, "offset for pagination")
	graphUpdateCmd.Flags().Bool("prototype", false, "set or clear the prototype flag")

	graphCmd.AddCommand(graphCreateCmd)
	graphCmd.AddCommand(graphShowCmd)
	graphCmd.AddCommand(graphListCmd)
	graphCmd.AddCommand(graphUpdateCmd)
	graphCmd.AddCommand(graphCopyCmd)
	graphCmd.AddCommand(graphDeleteCmd)
}
