// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/mindgraph/internal/httputil"
)

// mindMapPromptTmpl asks the model for a single JSON object matching the
// MindMap wire shape.
var mindMapPromptTmpl = template.Must(template.New("mindmap").Parse(`You are a mind mapping assistant. Build a mind map for the topic below.

Rules:
- centralIdea: a short phrase naming the core concept of the topic
- branches: {{.Branches}} or fewer first-level groupings, each with a concise "title"
- subBranches: 2 to 5 short concept phrases under each branch
- keep every concept under six words and avoid repeating the parent's wording

Respond with a single JSON object and nothing else.

Example response:
{"centralIdea": "Learning Guitar", "branches": [{"title": "Technique", "subBranches": ["Chords", "Scales"]}, {"title": "Theory", "subBranches": ["Intervals", "Keys"]}]}

Topic:
{{.Topic}}
`))

// renderPrompt executes the mind map prompt template.
func renderPrompt(topic string, branches int) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Topic    string
		Branches int
	}{Topic: topic, Branches: branches}
	if err := mindMapPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (c *ClaudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	bodyBytes, err := json.Marshal(claudeRequest{
		Model:     c.Model,
		MaxTokens: 4096,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var sb strings.Builder
	for _, block := range cResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}
	return sb.String(), nil
}
