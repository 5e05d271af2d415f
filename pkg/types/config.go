package types

import "time"

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// GenerationConfig holds settings for mind-map generation.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// Timeout bounds a single generation request (default 90s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxBranches is the number of branches requested from the model (default 6).
	MaxBranches int `json:"max_branches" yaml:"max_branches"`
}

// EmbeddingConfig holds settings for the embedding provider used by
// AI-assisted semantic analysis.
type EmbeddingConfig struct {
	// Provider selects the API flavour: "openai" or any OpenAI-compatible
	// service reached through BaseURL.
	Provider string `json:"provider" yaml:"provider"`

	// Model is the embedding model (e.g. "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// BaseURL overrides the provider endpoint. Empty uses the provider default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// APIKey is the authentication key for the embedding API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Dimensions requests a vector size. Zero uses the model default.
	Dimensions int `json:"dimensions" yaml:"dimensions"`

	// Timeout bounds the embedding call before analysis falls back to text
	// similarity (default 10s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for the saved mind-map store.
type StoreConfig struct {
	// DataDir contains the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// AnalysisConfig holds settings for graph, consistency and semantic analysis.
type AnalysisConfig struct {
	// UseAI enables embedding-based similarity when an embedder is configured.
	UseAI bool `json:"use_ai" yaml:"use_ai"`

	// Seed pins the clustering random source. Zero means time-seeded.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound a single request.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// AllowedOrigins lists browser origins permitted by CORS. Empty disables
	// CORS headers.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins"`
}

// Config groups all component configurations.
type Config struct {
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
	Store      StoreConfig      `json:"store" yaml:"store"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Server     ServerConfig     `json:"server" yaml:"server"`
}
