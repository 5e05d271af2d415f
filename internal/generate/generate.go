// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate turns a free-text topic into a MindMap by prompting a
// Generative AI backend and validating the JSON it returns.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/mindgraph/pkg/types"
)

var (
	// ErrEmptyTopic is returned for a blank topic.
	ErrEmptyTopic = errors.New("topic is empty")

	// ErrMissingAPIKey is returned when the backend has no credentials.
	ErrMissingAPIKey = errors.New("AI provider API key is not configured")
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// Complete sends one prompt and returns the model's text reply.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// StatusError reports a non-success HTTP status from the AI provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("AI provider returned %d: %s", e.StatusCode, e.Body)
}

// Generator produces mind maps from topics.
type Generator struct {
	Backend Backend

	// MaxRetries is the number of retries after a failed backend call
	// (default 3). Parse and validation failures are not retried.
	MaxRetries int

	// MaxBranches is the branch count requested in the prompt (default 6).
	MaxBranches int

	// Timeout bounds one Generate call including retries. Zero means no
	// limit beyond the caller's context.
	Timeout time.Duration
}

// New returns a Generator for the given backend and configuration.
func New(backend Backend, cfg types.GenerationConfig) *Generator {
	return &Generator{
		Backend:     backend,
		MaxRetries:  cfg.MaxRetries,
		MaxBranches: cfg.MaxBranches,
		Timeout:     cfg.Timeout,
	}
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Generate prompts the backend for a mind map about topic. It fails when
// the topic is empty, the backend keeps failing, the reply is not JSON, or
// the reply lacks a central idea or a branches array.
func (g *Generator) Generate(ctx context.Context, topic string) (types.MindMap, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return types.MindMap{}, ErrEmptyTopic
	}

	branches := g.MaxBranches
	if branches <= 0 {
		branches = 6
	}
	prompt, err := renderPrompt(topic, branches)
	if err != nil {
		return types.MindMap{}, fmt.Errorf("rendering prompt: %w", err)
	}

	maxRetries := g.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	reply, err := callWithRetry(ctx, g.Backend, prompt, maxRetries)
	if err != nil {
		return types.MindMap{}, err
	}
	return ParseMindMap(reply)
}

// callWithRetry calls the backend with exponential backoff. Missing
// credentials and client errors are not retried, nor are 503s, which the
// HTTP layer has already backed off on.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		reply, err := backend.Complete(ctx, prompt)
		if err == nil {
			return reply, nil
		}
		var se *StatusError
		if errors.Is(err, ErrMissingAPIKey) || (errors.As(err, &se) && !retryStatus(se.StatusCode)) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// retryStatus reports whether a backend status is worth another attempt.
// 429 and 503 are excluded since httputil.DoWithRetry already backed off on them.
func retryStatus(code int) bool {
	return code >= 500 && code != http.StatusServiceUnavailable
}

// generatedMindMap mirrors MindMap with pointer fields so absent keys can
// be told apart from empty values.
type generatedMindMap struct {
	CentralIdea *string         `json:"centralIdea"`
	Branches    *[]types.Branch `json:"branches"`
}

// ParseMindMap decodes a model reply into a MindMap. Markdown code fences
// and text around the outermost JSON object are ignored.
func ParseMindMap(reply string) (types.MindMap, error) {
	body := extractJSON(reply)

	var gen generatedMindMap
	if err := json.Unmarshal([]byte(body), &gen); err != nil {
		return types.MindMap{}, fmt.Errorf("parsing mind map JSON: %w", err)
	}
	if gen.CentralIdea == nil || strings.TrimSpace(*gen.CentralIdea) == "" {
		return types.MindMap{}, fmt.Errorf("mind map has no centralIdea")
	}
	if gen.Branches == nil {
		return types.MindMap{}, fmt.Errorf("mind map has no branches array")
	}

	mm := types.MindMap{
		CentralIdea: strings.TrimSpace(*gen.CentralIdea),
		Branches:    *gen.Branches,
	}
	for i := range mm.Branches {
		mm.Branches[i].Title = strings.TrimSpace(mm.Branches[i].Title)
		if mm.Branches[i].SubBranches == nil {
			mm.Branches[i].SubBranches = []string{}
		}
	}
	if err := mm.Validate(); err != nil {
		return types.MindMap{}, err
	}
	return mm, nil
}

// extractJSON strips code fences and returns the span from the first '{'
// to the last '}', or the trimmed reply when no braces are present.
func extractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return strings.TrimSpace(s)
	}
	return s[start : end+1]
}
