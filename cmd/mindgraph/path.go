// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/mindgraph/internal/graph"
)

var pathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Find paths between two concepts",
	Long: `Path prints the shortest path and every simple path up to --max-depth
between two concepts of a mind map. Concepts are node ids (central,
branch-0, branch-0-sub-1) or concept labels; a label resolves to its first
occurrence.`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	file, _ := cmd.Flags().GetString("file")
	id, _ := cmd.Flags().GetString("id")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")

	mm, err := loadMindMap(cmd.Context(), cfg, file, id)
	if err != nil {
		return err
	}
	g := graph.New(mm)

	from, err := resolveNode(g, args[0])
	if err != nil {
		return err
	}
	to, err := resolveNode(g, args[1])
	if err != nil {
		return err
	}

	shortest, ok := g.FindShortestPath(from.ID, to.ID)
	all := g.FindAllPaths(from.ID, to.ID, maxDepth)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		out := struct {
			Shortest *graph.Path  `json:"shortest"`
			All      []graph.Path `json:"all"`
		}{All: all}
		if ok {
			out.Shortest = &shortest
		}
		return printJSON(out)
	}

	if !ok {
		fmt.Printf("No path between %q and %q.\n", from.Label, to.Label)
		return nil
	}
	fmt.Printf("shortest: %s (distance %d, strength %.2f)\n", pathLabels(g, shortest), shortest.Distance, shortest.Strength)
	for i, p := range all {
		fmt.Printf("%3d. %s (distance %d)\n", i+1, pathLabels(g, p), p.Distance)
	}
	return nil
}

// resolveNode accepts a node id or a concept label.
func resolveNode(g *graph.Graph, ref string) (graph.Node, error) {
	if n, ok := g.Node(ref); ok {
		return n, nil
	}
	if n, ok := g.FindNodeByConcept(ref); ok {
		return n, nil
	}
	return graph.Node{}, fmt.Errorf("no concept %q in mind map", ref)
}

func pathLabels(g *graph.Graph, p graph.Path) string {
	labels := make([]string, len(p.Nodes))
	for i, id := range p.Nodes {
		n, _ := g.Node(id)
		labels[i] = n.Label
	}
	return strings.Join(labels, " -> ")
}

func init() {
	pathCmd.Flags().String("file", "", "mind map file (JSON or YAML, - for stdin)")
	pathCmd.Flags().String("id", "", "saved mind map id")
	pathCmd.Flags().Int("max-depth", graph.DefaultMaxDepth, "maximum path length")
	pathCmd.Flags().Bool("json", false, "output paths as JSON")

	rootCmd.AddCommand(pathCmd)
}
