// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report composes graph metrics, the consistency report and the
// semantic analysis for one mind map.
package report

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/mindgraph/internal/consistency"
	"github.com/pdiddy/mindgraph/internal/graph"
	"github.com/pdiddy/mindgraph/internal/semantic"
	"github.com/pdiddy/mindgraph/pkg/types"
)

// Options controls a Build call.
type Options struct {
	// UseAI requests embedding similarity. It has no effect without Embedder.
	UseAI bool

	// Seed pins every clustering random source. Zero means time-seeded.
	Seed uint64

	Embedder     semantic.Embedder
	EmbedTimeout time.Duration
	Logger       *zap.Logger
}

// GraphSummary holds the structural metrics of the concept graph.
type GraphSummary struct {
	NodeCount   int                `json:"nodeCount" yaml:"node_count"`
	EdgeCount   int                `json:"edgeCount" yaml:"edge_count"`
	Nodes       []graph.Node       `json:"nodes" yaml:"nodes"`
	Edges       []graph.Edge       `json:"edges" yaml:"edges"`
	Degree      map[string]int     `json:"degree" yaml:"degree"`
	Betweenness map[string]float64 `json:"betweenness" yaml:"betweenness"`
	Clusters    map[string]int     `json:"clusters" yaml:"clusters"`
}

// Report is the combined analysis of one mind map.
type Report struct {
	Graph       GraphSummary       `json:"graph" yaml:"graph"`
	Consistency consistency.Report `json:"consistency" yaml:"consistency"`
	Semantic    semantic.Result    `json:"semantic" yaml:"semantic"`
}

// Build analyzes mm. The graph summary, consistency check and semantic
// analysis run concurrently; each builds its own graph from the read-only
// map. Build fails only when ctx is done.
func Build(ctx context.Context, mm types.MindMap, opts Options) (Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	graphOpts := func() []graph.Option {
		if opts.Seed == 0 {
			return nil
		}
		return []graph.Option{graph.WithSeed(opts.Seed)}
	}

	var rep Report
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rep.Graph = Summarize(graph.New(mm, graphOpts()...))
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		rep.Consistency = consistency.NewChecker(mm, graphOpts()...).Check()
		return nil
	})

	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		aopts := []semantic.Option{
			semantic.WithLogger(logger),
			semantic.WithGraphOptions(graphOpts()...),
		}
		if opts.Embedder != nil {
			aopts = append(aopts, semantic.WithEmbedder(opts.Embedder))
		}
		if opts.EmbedTimeout > 0 {
			aopts = append(aopts, semantic.WithEmbedTimeout(opts.EmbedTimeout))
		}
		rep.Semantic = semantic.NewAnalyzer(mm, aopts...).Analyze(gctx, opts.UseAI)
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("building report: %w", err)
	}

	logger.Debug("report built",
		zap.Int("nodes", rep.Graph.NodeCount),
		zap.Float64("score", rep.Consistency.Score),
		zap.Int("issues", len(rep.Consistency.Issues)),
		zap.String("strategy", rep.Semantic.Strategy))
	return rep, nil
}

// Summarize computes the structural metrics of g.
func Summarize(g *graph.Graph) GraphSummary {
	return GraphSummary{
		NodeCount:   g.NodeCount(),
		EdgeCount:   g.EdgeCount(),
		Nodes:       g.AllNodes(),
		Edges:       g.Edges(),
		Degree:      g.CalculateDegreeCentrality(),
		Betweenness: g.CalculateBetweennessCentrality(),
		Clusters:    g.FindClusters(),
	}
}

// WriteText prints a human-readable rendering of r.
func (r Report) WriteText(w io.Writer) {
	fmt.Fprintf(w, "graph: %d concepts, %d connections\n", r.Graph.NodeCount, r.Graph.EdgeCount)

	hubs := topBetweenness(r.Graph, 3)
	if len(hubs) > 0 {
		fmt.Fprintln(w, "hubs:")
		for _, n := range hubs {
			fmt.Fprintf(w, "  %-30s betweenness %.2f, degree %d\n", n.Label, r.Graph.Betweenness[n.ID], r.Graph.Degree[n.ID])
		}
	}

	counts := r.Consistency.CountBySeverity()
	fmt.Fprintf(w, "\nconsistency: %.0f/100 (high: %d, medium: %d, low: %d)\n",
		r.Consistency.Score, counts[consistency.SeverityHigh], counts[consistency.SeverityMedium], counts[consistency.SeverityLow])
	for _, is := range r.Consistency.Issues {
		fmt.Fprintf(w, "  [%s] %s: %s\n", is.Severity, is.Type, is.Reason)
		for _, s := range is.Suggestions {
			fmt.Fprintf(w, "      - %s\n", s)
		}
	}
	st := r.Consistency.Statistics
	fmt.Fprintf(w, "  branches: %d, avg depth %.1f, balance %.2f\n", st.BranchCount, st.AvgBranchDepth, st.BalanceScore)

	fmt.Fprintf(w, "\nsemantic: %s\n", r.Semantic.Summary())
	for _, c := range r.Semantic.Clusters {
		fmt.Fprintf(w, "  cluster %q (coherence %.2f): %v\n", c.Theme, c.Coherence, c.Concepts)
	}
	for _, s := range r.Semantic.SuggestedConnections {
		fmt.Fprintf(w, "  suggest %s <-> %s (%.2f)\n", s.From, s.To, s.Confidence)
	}
}

// topBetweenness returns up to n nodes with non-zero betweenness, highest
// first, ties in construction order.
func topBetweenness(s GraphSummary, n int) []graph.Node {
	var nodes []graph.Node
	for _, node := range s.Nodes {
		if s.Betweenness[node.ID] > 0 {
			nodes = append(nodes, node)
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return s.Betweenness[nodes[i].ID] > s.Betweenness[nodes[j].ID]
	})
	if len(nodes) > n {
		nodes = nodes[:n]
	}
	return nodes
}
