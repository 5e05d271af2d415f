// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package semantic discovers non-hierarchical relationships between the
// concepts of a mind map: similar concept pairs, clusters, and suggested
// cross-branch connections.
//
// Similarity is pluggable. TextStrategy needs nothing external;
// EmbeddingStrategy asks an Embedder for vectors once per analysis. When the
// embedder fails the analysis continues on text similarity.
package semantic

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/mindgraph/internal/graph"
	"github.com/pdiddy/mindgraph/internal/textsim"
	"github.com/pdiddy/mindgraph/pkg/types"
)

const (
	// Pairs at or below minRelated are noise; pairs at or above maxRelated
	// are near-duplicates rather than related ideas.
	minRelated = 0.3
	maxRelated = 0.8

	maxSuggestions      = 10
	minClusterSize      = 2
	minThemeWordLength  = 4
	minThemeOccurrences = 2

	defaultEmbedTimeout = 10 * time.Second
)

// ConceptSimilarity is a scored pair of concepts.
type ConceptSimilarity struct {
	Concept1   string  `json:"concept1" yaml:"concept1"`
	Concept2   string  `json:"concept2" yaml:"concept2"`
	NodeID1    string  `json:"nodeId1" yaml:"node_id1"`
	NodeID2    string  `json:"nodeId2" yaml:"node_id2"`
	Similarity float64 `json:"similarity" yaml:"similarity"`
}

// ConceptCluster is a group of concepts that label propagation placed in the
// same community.
type ConceptCluster struct {
	ID        int      `json:"id" yaml:"id"`
	Theme     string   `json:"theme" yaml:"theme"`
	Concepts  []string `json:"concepts" yaml:"concepts"`
	NodeIDs   []string `json:"nodeIds" yaml:"node_ids"`
	Coherence float64  `json:"coherence" yaml:"coherence"`
}

// SuggestedConnection proposes a link between concepts on different branches.
type SuggestedConnection struct {
	From       string  `json:"from" yaml:"from"`
	To         string  `json:"to" yaml:"to"`
	FromID     string  `json:"fromId" yaml:"from_id"`
	ToID       string  `json:"toId" yaml:"to_id"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Reason     string  `json:"reason" yaml:"reason"`
}

// Result is the outcome of a semantic analysis.
type Result struct {
	Strategy             string                `json:"strategy" yaml:"strategy"`
	Similarities         []ConceptSimilarity   `json:"similarities" yaml:"similarities"`
	Clusters             []ConceptCluster      `json:"clusters" yaml:"clusters"`
	SuggestedConnections []SuggestedConnection `json:"suggestedConnections" yaml:"suggested_connections"`
	RelatedConcepts      map[string][]string   `json:"relatedConcepts" yaml:"related_concepts"`
}

// Analyzer runs semantic analysis over one mind map.
type Analyzer struct {
	graph        *graph.Graph
	embedder     Embedder
	embedTimeout time.Duration
	logger       *zap.Logger
	graphOpts    []graph.Option
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEmbedder enables embedding similarity for Analyze(ctx, true).
func WithEmbedder(e Embedder) Option {
	return func(a *Analyzer) { a.embedder = e }
}

// WithEmbedTimeout bounds the embedding call. Non-positive values keep the
// default of 10s.
func WithEmbedTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.embedTimeout = d
		}
	}
}

// WithLogger sets the logger used for degraded-mode warnings.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithGraphOptions passes options to the underlying concept graph, e.g.
// graph.WithSeed for reproducible clusters.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(a *Analyzer) { a.graphOpts = append(a.graphOpts, opts...) }
}

// NewAnalyzer builds the concept graph for mm. The mind map is only read.
func NewAnalyzer(mm types.MindMap, opts ...Option) *Analyzer {
	a := &Analyzer{
		embedTimeout: defaultEmbedTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.graph = graph.New(mm, a.graphOpts...)
	return a
}

// Graph returns the concept graph the analyzer works on.
func (a *Analyzer) Graph() *graph.Graph { return a.graph }

// Analyze computes similarities, clusters, suggested connections and the
// related-concepts map. With useAI and a configured embedder it first tries
// embedding similarity; any embedding failure is logged and the analysis
// proceeds on text similarity. Analyze never fails.
func (a *Analyzer) Analyze(ctx context.Context, useAI bool) Result {
	strategy := a.selectStrategy(ctx, useAI)

	sims := a.FindSimilarConcepts(strategy)
	return Result{
		Strategy:             strategy.Name(),
		Similarities:         sims,
		Clusters:             a.IdentifyClusters(),
		SuggestedConnections: a.SuggestNewConnections(sims),
		RelatedConcepts:      BuildRelatedConceptsMap(sims),
	}
}

func (a *Analyzer) selectStrategy(ctx context.Context, useAI bool) Strategy {
	if !useAI {
		return TextStrategy{}
	}
	if a.embedder == nil {
		a.logger.Warn("embedding similarity requested without an embedder, using text similarity")
		return TextStrategy{}
	}

	ctx, cancel := context.WithTimeout(ctx, a.embedTimeout)
	defer cancel()

	s, err := NewEmbeddingStrategy(ctx, a.embedder, a.graph.AllNodes())
	if err != nil {
		a.logger.Warn("embedding failed, falling back to text similarity",
			zap.Int("concepts", a.graph.NodeCount()),
			zap.Error(err))
		return TextStrategy{}
	}
	return s
}

// FindSimilarConcepts scores every unordered pair of concepts and keeps the
// pairs strictly between 0.3 and 0.8, strongest first.
func (a *Analyzer) FindSimilarConcepts(strategy Strategy) []ConceptSimilarity {
	nodes := a.graph.AllNodes()

	var sims []ConceptSimilarity
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			s := strategy.Similarity(nodes[i], nodes[j])
			if s <= minRelated || s >= maxRelated {
				continue
			}
			sims = append(sims, ConceptSimilarity{
				Concept1:   nodes[i].Label,
				Concept2:   nodes[j].Label,
				NodeID1:    nodes[i].ID,
				NodeID2:    nodes[j].ID,
				Similarity: s,
			})
		}
	}

	sort.SliceStable(sims, func(i, j int) bool {
		return sims[i].Similarity > sims[j].Similarity
	})
	return sims
}

// IdentifyClusters groups concepts by label-propagation community, drops
// the central idea and singleton groups, and names each group by its most
// repeated topical word. Clusters are ordered by descending coherence.
func (a *Analyzer) IdentifyClusters() []ConceptCluster {
	labels := a.graph.FindClusters()

	var (
		clusters []ConceptCluster
		index    = make(map[int]int)
	)
	for _, n := range a.graph.AllNodes() {
		if n.Kind == graph.KindCentral {
			continue
		}
		l := labels[n.ID]
		i, ok := index[l]
		if !ok {
			i = len(clusters)
			index[l] = i
			clusters = append(clusters, ConceptCluster{ID: l})
		}
		clusters[i].Concepts = append(clusters[i].Concepts, n.Label)
		clusters[i].NodeIDs = append(clusters[i].NodeIDs, n.ID)
	}

	kept := clusters[:0]
	for _, c := range clusters {
		if len(c.Concepts) < minClusterSize {
			continue
		}
		c.Theme = theme(c.Concepts)
		c.Coherence = coherence(c.Concepts)
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Coherence > kept[j].Coherence
	})
	return kept
}

// theme returns the most frequent non-stopword longer than three characters
// that occurs at least twice, or the first concept when no word repeats.
func theme(concepts []string) string {
	counts := make(map[string]int)
	var order []string
	for _, c := range concepts {
		for _, w := range textsim.Words(c) {
			if utf8.RuneCountInString(w) < minThemeWordLength || textsim.IsStopword(w) {
				continue
			}
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	best, bestCount := "", 0
	for _, w := range order {
		if counts[w] > bestCount {
			best, bestCount = w, counts[w]
		}
	}
	if bestCount < minThemeOccurrences {
		return capitalize(concepts[0])
	}
	return capitalize(best)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// coherence is the mean pairwise text similarity of the concepts.
func coherence(concepts []string) float64 {
	var sum float64
	pairs := 0
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			sum += textsim.TextSimilarity(concepts[i], concepts[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return sum / float64(pairs)
}

// SuggestNewConnections looks at the ten strongest pairs and proposes a
// connection for each pair whose concepts sit on different branches. Nodes
// are resolved by the ids carried in the similarity, so repeated labels do
// not collapse.
func (a *Analyzer) SuggestNewConnections(sims []ConceptSimilarity) []SuggestedConnection {
	top := sims
	if len(top) > maxSuggestions {
		top = top[:maxSuggestions]
	}

	var out []SuggestedConnection
	for _, s := range top {
		n1, ok1 := a.graph.Node(s.NodeID1)
		n2, ok2 := a.graph.Node(s.NodeID2)
		if !ok1 || !ok2 {
			continue
		}
		if n1.BranchIndex == nil || n2.BranchIndex == nil || n1.SameBranch(n2) {
			continue
		}
		out = append(out, SuggestedConnection{
			From:       n1.Label,
			To:         n2.Label,
			FromID:     n1.ID,
			ToID:       n2.ID,
			Confidence: s.Similarity,
			Reason:     connectionReason(a.graph, n1, n2, s.Similarity),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

func connectionReason(g *graph.Graph, n1, n2 graph.Node, sim float64) string {
	b1, _ := g.Node(graph.BranchID(*n1.BranchIndex))
	b2, _ := g.Node(graph.BranchID(*n2.BranchIndex))
	return fmt.Sprintf("%q (%s) and %q (%s) are %.0f%% similar across branches",
		n1.Label, b1.Label, n2.Label, b2.Label, sim*100)
}

// BuildRelatedConceptsMap indexes the similarity pairs by concept text in
// both directions.
func BuildRelatedConceptsMap(sims []ConceptSimilarity) map[string][]string {
	related := make(map[string][]string)
	for _, s := range sims {
		related[s.Concept1] = append(related[s.Concept1], s.Concept2)
		related[s.Concept2] = append(related[s.Concept2], s.Concept1)
	}
	return related
}

// Summary returns a one-line description of the result for CLI output.
func (r Result) Summary() string {
	return fmt.Sprintf("%d related pairs, %d clusters, %d suggested connections (%s similarity)",
		len(r.Similarities), len(r.Clusters), len(r.SuggestedConnections), r.Strategy)
}
