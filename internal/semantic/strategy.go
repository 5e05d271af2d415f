// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package semantic

import (
	"context"
	"fmt"

	"github.com/pdiddy/mindgraph/internal/graph"
	"github.com/pdiddy/mindgraph/internal/textsim"
)

// Embedder turns texts into vectors, one per text, all of equal length.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Strategy scores the similarity of two concepts.
type Strategy interface {
	Name() string
	Similarity(a, b graph.Node) float64
}

// TextStrategy averages word and character-bigram Jaccard similarity.
type TextStrategy struct{}

// Name returns the strategy identifier.
func (TextStrategy) Name() string { return "text" }

// Similarity compares the labels of a and b.
func (TextStrategy) Similarity(a, b graph.Node) float64 {
	return textsim.TextSimilarity(a.Label, b.Label)
}

// EmbeddingStrategy compares concepts by the cosine of their embedding
// vectors. Vectors are keyed by node id and live only as long as the
// strategy value.
type EmbeddingStrategy struct {
	vectors map[string][]float32
}

// Name returns the strategy identifier.
func (*EmbeddingStrategy) Name() string { return "embedding" }

// Similarity returns the cosine of the two node vectors, or 0 when either
// node has no vector.
func (s *EmbeddingStrategy) Similarity(a, b graph.Node) float64 {
	va, okA := s.vectors[a.ID]
	vb, okB := s.vectors[b.ID]
	if !okA || !okB {
		return 0
	}
	return textsim.Cosine(va, vb)
}

// NewEmbeddingStrategy embeds the label of every node in a single call and
// checks that the provider returned one equal-length vector per node.
func NewEmbeddingStrategy(ctx context.Context, e Embedder, nodes []graph.Node) (*EmbeddingStrategy, error) {
	texts := make([]string, len(nodes))
	for i, n := range nodes {
		texts[i] = n.Label
	}

	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d concepts: %w", len(texts), err)
	}
	if len(vecs) != len(nodes) {
		return nil, fmt.Errorf("embedding returned %d vectors for %d concepts", len(vecs), len(nodes))
	}

	dim := -1
	vectors := make(map[string][]float32, len(nodes))
	for i, v := range vecs {
		if len(v) == 0 {
			return nil, fmt.Errorf("embedding %d is empty", i)
		}
		if dim >= 0 && len(v) != dim {
			return nil, fmt.Errorf("embedding %d has %d dimensions, want %d", i, len(v), dim)
		}
		dim = len(v)
		vectors[nodes[i].ID] = v
	}
	return &EmbeddingStrategy{vectors: vectors}, nil
}
