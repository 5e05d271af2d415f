package semantic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mindgraph/internal/graph"
	"github.com/pdiddy/mindgraph/pkg/types"
)

func twoNodes() []graph.Node {
	return graph.New(types.MindMap{
		CentralIdea: "Cooking",
		Branches:    []types.Branch{{Title: "Baking"}},
	}).AllNodes()
}

func TestNewEmbeddingStrategy(t *testing.T) {
	nodes := twoNodes()
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"Cooking": {1, 0},
		"Baking":  {1, 1},
	}}

	s, err := NewEmbeddingStrategy(context.Background(), emb, nodes)
	require.NoError(t, err)
	assert.Equal(t, "embedding", s.Name())
	assert.InDelta(t, 0.7071, s.Similarity(nodes[0], nodes[1]), 1e-3)
	assert.InDelta(t, 0.7071, s.Similarity(nodes[1], nodes[0]), 1e-3)
	assert.Zero(t, s.Similarity(nodes[0], graph.Node{ID: "unknown"}))
}

func TestNewEmbeddingStrategyRaggedDimensions(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"Cooking": {1, 0},
		"Baking":  {1, 1, 1},
	}}
	_, err := NewEmbeddingStrategy(context.Background(), emb, twoNodes())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimensions")
}

func TestNewEmbeddingStrategyZeroVector(t *testing.T) {
	nodes := twoNodes()
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"Cooking": {0, 0},
		"Baking":  {1, 1},
	}}
	s, err := NewEmbeddingStrategy(context.Background(), emb, nodes)
	require.NoError(t, err)
	assert.Zero(t, s.Similarity(nodes[0], nodes[1]))
}

func TestTextStrategy(t *testing.T) {
	nodes := twoNodes()
	var s TextStrategy
	assert.Equal(t, "text", s.Name())
	assert.InDelta(t, 1.0, s.Similarity(nodes[0], nodes[0]), 1e-9)
	assert.Equal(t, s.Similarity(nodes[0], nodes[1]), s.Similarity(nodes[1], nodes[0]))
}
