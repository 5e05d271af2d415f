// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mindgraph/internal/embed"
	"github.com/pdiddy/mindgraph/internal/generate"
	"github.com/pdiddy/mindgraph/internal/secrets"
	"github.com/pdiddy/mindgraph/internal/semantic"
	"github.com/pdiddy/mindgraph/internal/store"
	"github.com/pdiddy/mindgraph/pkg/types"
)

func setDefaults() {
	viper.SetDefault("generation.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("generation.max_retries", 3)
	viper.SetDefault("generation.timeout", 90*time.Second)
	viper.SetDefault("generation.max_branches", 6)

	viper.SetDefault("embedding.provider", "openai")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.timeout", 10*time.Second)

	viper.SetDefault("store.data_dir", "data")

	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 120*time.Second)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
}

// loadConfig assembles the configuration from defaults, the config file,
// MINDGRAPH_* environment variables, bound flags, and the secrets directory.
func loadConfig() types.Config {
	cfg := types.Config{
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("generation.model"),
				APIKey:     viper.GetString("generation.api_key"),
				MaxRetries: viper.GetInt("generation.max_retries"),
			},
			Timeout:     viper.GetDuration("generation.timeout"),
			MaxBranches: viper.GetInt("generation.max_branches"),
		},
		Embedding: types.EmbeddingConfig{
			Provider:   viper.GetString("embedding.provider"),
			Model:      viper.GetString("embedding.model"),
			BaseURL:    viper.GetString("embedding.base_url"),
			APIKey:     viper.GetString("embedding.api_key"),
			Dimensions: viper.GetInt("embedding.dimensions"),
			Timeout:    viper.GetDuration("embedding.timeout"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Analysis: types.AnalysisConfig{
			UseAI: viper.GetBool("analysis.use_ai"),
			Seed:  viper.GetUint64("analysis.seed"),
		},
		Server: types.ServerConfig{
			Addr:           viper.GetString("server.addr"),
			ReadTimeout:    viper.GetDuration("server.read_timeout"),
			WriteTimeout:   viper.GetDuration("server.write_timeout"),
			AllowedOrigins: viper.GetStringSlice("server.allowed_origins"),
		},
	}
	secrets.Apply(&cfg, loadedSecrets)
	return cfg
}

func openStore(cfg types.Config) (*store.Store, error) {
	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("opening store in %s: %w", cfg.Store.DataDir, err)
	}
	return st, nil
}

func newGenerator(cfg types.Config) *generate.Generator {
	backend := &generate.ClaudeBackend{
		APIKey: cfg.Generation.APIKey,
		Model:  cfg.Generation.Model,
		Client: &http.Client{},
	}
	return generate.New(backend, cfg.Generation)
}

// newEmbedder returns nil when no embedding key is configured; analysis then
// stays on text similarity.
func newEmbedder(cfg types.Config) (semantic.Embedder, error) {
	if cfg.Embedding.APIKey == "" {
		logger.Debug("no embedding API key configured")
		return nil, nil
	}
	e, err := embed.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// readMindMap loads a mind map from a JSON or YAML file. "-" reads JSON
// from stdin.
func readMindMap(path string) (types.MindMap, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return types.MindMap{}, fmt.Errorf("reading mind map: %w", err)
	}

	var mm types.MindMap
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &mm)
	default:
		err = json.Unmarshal(data, &mm)
	}
	if err != nil {
		return types.MindMap{}, fmt.Errorf("parsing mind map %s: %w", path, err)
	}
	if err := mm.Validate(); err != nil {
		return types.MindMap{}, err
	}
	return mm, nil
}

// loadMindMap resolves the --file or --id flag pair.
func loadMindMap(ctx context.Context, cfg types.Config, file, id string) (types.MindMap, error) {
	switch {
	case file != "" && id != "":
		return types.MindMap{}, fmt.Errorf("use either --file or --id, not both")
	case file != "":
		return readMindMap(file)
	case id != "":
		st, err := openStore(cfg)
		if err != nil {
			return types.MindMap{}, err
		}
		defer st.Close()
		rec, err := st.Get(ctx, id)
		if err != nil {
			return types.MindMap{}, err
		}
		return rec.MindMap, nil
	default:
		return types.MindMap{}, fmt.Errorf("a mind map is required: provide --file or --id")
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func logFields(cfg types.Config) []zap.Field {
	return []zap.Field{
		zap.String("data_dir", cfg.Store.DataDir),
		zap.String("model", cfg.Generation.Model),
		zap.Bool("embedding", cfg.Embedding.APIKey != ""),
	}
}
