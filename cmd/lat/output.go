package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alfredjeanlab/lattice/internal/model"
)

const timeFormat = "2006-01-02 15:04:05"

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printGraphTable(g *model.Graph) {
	fmt.Printf("ID:         %s\n", g.ID)
	fmt.Printf("Course:     %s\n", g.CourseID)
	fmt.Printf("Prototype:  %t\n", g.IsPrototype)
	fmt.Printf("Created At: %s\n", g.CreatedAt.Format(timeFormat))
	fmt.Printf("Updated At: %s\n", g.UpdatedAt.Format(timeFormat))
}

func printGraphListTable(graphList []*model.Graph, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOURSE\tPROTOTYPE\tUPDATED")
	for _, g := range graphList {
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
			g.ID,
			g.CourseID,
			g.IsPrototype,
			g.UpdatedAt.Format(timeFormat),
		)
	}
	w.Flush()
	fmt.Printf("\n%d graphs (%d total)\n", len(graphList), total)
}

func printNodeTable(n *model.Node) {
	fmt.Printf("ID:          %s\n", n.ID)
	fmt.Printf("Graph:       %s\n", n.GraphID)
	fmt.Printf("Title:       %s\n", n.Title)
	if n.Description != "" {
		fmt.Printf("Description: %s\n", n.Description)
	}
	fmt.Printf("Mastery:     %d\n", n.MasteryPoints)
	if len(n.Metadata) > 0 {
		fmt.Printf("Metadata:    %s\n", n.Metadata)
	}
	fmt.Printf("Created At:  %s\n", n.CreatedAt.Format(timeFormat))
	fmt.Printf("Updated At:  %s\n", n.UpdatedAt.Format(timeFormat))
}

func printNodeListTable(nodes []*model.Node) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMASTERY\tTITLE")
	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%d\t%s\n", n.ID, n.MasteryPoints, truncate(n.Title, 50))
	}
	w.Flush()
	fmt.Printf("\n%d nodes\n", len(nodes))
}

func printEdgeTable(e *model.Edge) {
	fmt.Printf("ID:         %s\n", e.ID)
	fmt.Printf("Graph:      %s\n", e.GraphID)
	fmt.Printf("From:       %s\n", e.FromNodeID)
	fmt.Printf("To:         %s\n", e.ToNodeID)
	fmt.Printf("Type:       %s\n", e.Type)
	fmt.Printf("Created At: %s\n", e.CreatedAt.Format(timeFormat))
}

func printEdgeListTable(edges []*model.Edge) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROM\tTO\tTYPE")
	for _, e := range edges {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.ID, e.FromNodeID, e.ToNodeID, e.Type)
	}
	w.Flush()
	fmt.Printf("\n%d edges\n", len(edges))
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}
