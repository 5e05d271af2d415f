// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed computes text embeddings through an OpenAI-compatible API.
package embed

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/pdiddy/mindgraph/pkg/types"
)

// ErrMissingAPIKey is returned when no embedding credentials are configured.
var ErrMissingAPIKey = errors.New("embedding API key is not configured")

const defaultModel = string(openai.SmallEmbedding3)

// OpenAIEmbedder embeds concept labels with the OpenAI embeddings endpoint
// or any service that speaks the same protocol.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

// New returns an embedder for cfg. Providers other than "openai" are
// accepted when BaseURL points at an OpenAI-compatible endpoint.
func New(cfg types.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	switch cfg.Provider {
	case "", "openai":
	default:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("unsupported embedding provider %q without a base URL", cfg.Provider)
		}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed returns one vector per text, in input order. All vectors share the
// same dimension.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d texts", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("embedding response has invalid index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return vectors, nil
}
