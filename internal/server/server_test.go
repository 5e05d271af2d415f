// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/mindgraph/internal/generate"
	"github.com/pdiddy/mindgraph/internal/report"
	"github.com/pdiddy/mindgraph/internal/store"
	"github.com/pdiddy/mindgraph/pkg/types"
)

// --- fakes and helpers ---

type fakeGenerator struct {
	mm  types.MindMap
	err error
}

func (f fakeGenerator) Generate(_ context.Context, topic string) (types.MindMap, error) {
	if strings.TrimSpace(topic) == "" {
		return types.MindMap{}, generate.ErrEmptyTopic
	}
	return f.mm, f.err
}

func guitarMap() types.MindMap {
	return types.MindMap{
		CentralIdea: "Learn Guitar",
		Branches: []types.Branch{
			{Title: "Technique", SubBranches: []string{"Finger exercises", "Chord transitions"}},
			{Title: "Theory", SubBranches: []string{"Scales", "Key signatures"}},
		},
	}
}

func testServer(t *testing.T, gen Generator) (*httptest.Server, *store.Store) {
	t.Helper()
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	srv := New(st, gen, report.Options{Seed: 1}, nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, st
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// --- tests ---

func TestHealthz(t *testing.T) {
	ts, _ := testServer(t, nil)
	resp := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	ts, st := testServer(t, fakeGenerator{mm: guitarMap()})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/generate", map[string]any{"topic": "guitar", "save": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got generateResponse
	decodeBody(t, resp, &got)
	assert.Equal(t, guitarMap(), got.MindMap)
	require.NotNil(t, got.Record)
	assert.Equal(t, "guitar", got.Record.UserInput)

	saved, err := st.Get(context.Background(), got.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, guitarMap(), saved.MindMap)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		gen    Generator
		body   string
		status int
	}{
		{name: "empty topic", gen: fakeGenerator{}, body: `{"topic": "  "}`, status: http.StatusBadRequest},
		{name: "malformed body", gen: fakeGenerator{}, body: `{"topic":`, status: http.StatusBadRequest},
		{name: "unknown field", gen: fakeGenerator{}, body: `{"subject": "x"}`, status: http.StatusBadRequest},
		{name: "no generator", gen: nil, body: `{"topic": "x"}`, status: http.StatusServiceUnavailable},
		{name: "missing key", gen: fakeGenerator{err: generate.ErrMissingAPIKey}, body: `{"topic": "x"}`, status: http.StatusServiceUnavailable},
		{name: "upstream status", gen: fakeGenerator{err: &generate.StatusError{StatusCode: 500}}, body: `{"topic": "x"}`, status: http.StatusBadGateway},
		{name: "bad reply", gen: fakeGenerator{err: errors.New("parsing mind map JSON")}, body: `{"topic": "x"}`, status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, _ := testServer(t, tt.gen)
			resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.status, resp.StatusCode)
			var e errorResponse
			decodeBody(t, resp, &e)
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestAnalyze(t *testing.T) {
	ts, _ := testServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/analyze", map[string]any{"mindMap": guitarMap()})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep report.Report
	decodeBody(t, resp, &rep)
	assert.Equal(t, 7, rep.Graph.NodeCount)
	assert.Equal(t, 6, rep.Graph.EdgeCount)
	assert.Equal(t, 100.0, rep.Consistency.Score)
	assert.Equal(t, "text", rep.Semantic.Strategy)
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, float32(i + 1)}
	}
	return vecs, nil
}

func TestAnalyzeUseAIOverridesDefault(t *testing.T) {
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	rec, err := st.Save(context.Background(), guitarMap(), "guitar")
	require.NoError(t, err)

	srv := New(st, nil, report.Options{UseAI: true, Seed: 1, Embedder: fakeEmbedder{}}, nil)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	strategy := func(resp *http.Response) string {
		t.Helper()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var rep report.Report
		decodeBody(t, resp, &rep)
		return rep.Semantic.Strategy
	}

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"server default", map[string]any{"mindMap": guitarMap()}, "embedding"},
		{"explicit off", map[string]any{"mindMap": guitarMap(), "useAI": false}, "text"},
		{"explicit on", map[string]any{"mindMap": guitarMap(), "useAI": true}, "embedding"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, strategy(doJSON(t, http.MethodPost, ts.URL+"/api/analyze", tt.body)))
		})
	}

	base := ts.URL + "/api/mindmaps/" + rec.ID + "/analyze"
	assert.Equal(t, "embedding", strategy(doJSON(t, http.MethodGet, base, nil)))
	assert.Equal(t, "text", strategy(doJSON(t, http.MethodGet, base+"?useAI=false", nil)))

	resp := doJSON(t, http.MethodGet, base+"?useAI=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeInvalidMap(t *testing.T) {
	ts, _ := testServer(t, nil)
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/analyze", map[string]any{"mindMap": map[string]any{"branches": []any{}}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyzeSaved(t *testing.T) {
	ts, st := testServer(t, nil)
	rec, err := st.Save(context.Background(), guitarMap(), "guitar")
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps/"+rec.ID+"/analyze?useAI=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep report.Report
	decodeBody(t, resp, &rep)
	// No embedder is configured, so the request falls back to text.
	assert.Equal(t, "text", rep.Semantic.Strategy)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps/missing/analyze", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPath(t *testing.T) {
	ts, _ := testServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/path", map[string]any{
		"mindMap": guitarMap(),
		"from":    "branch-0-sub-0",
		"to":      "branch-1-sub-1",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got pathResponse
	decodeBody(t, resp, &got)
	require.NotNil(t, got.Shortest)
	assert.Equal(t, []string{"branch-0-sub-0", "branch-0", "central", "branch-1", "branch-1-sub-1"}, got.Shortest.Nodes)
	assert.Equal(t, 4, got.Shortest.Distance)
	assert.Len(t, got.All, 1)
}

func TestPathUnknownNode(t *testing.T) {
	ts, _ := testServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/path", map[string]any{
		"mindMap": guitarMap(),
		"from":    "central",
		"to":      "nowhere",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got pathResponse
	decodeBody(t, resp, &got)
	assert.Nil(t, got.Shortest)
	assert.Empty(t, got.All)
}

func TestMindMapCRUD(t *testing.T) {
	ts, _ := testServer(t, nil)

	// create
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/mindmaps", map[string]any{"mindMap": guitarMap(), "userInput": "guitar"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rec types.MindMapRecord
	decodeBody(t, resp, &rec)
	require.NotEmpty(t, rec.ID)

	// list
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []types.MindMapRecord
	decodeBody(t, resp, &all)
	require.Len(t, all, 1)
	assert.Equal(t, rec.ID, all[0].ID)

	// update
	changed := guitarMap()
	changed.CentralIdea = "Master Guitar"
	resp = doJSON(t, http.MethodPut, ts.URL+"/api/mindmaps/"+rec.ID, map[string]any{"mindMap": changed})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// get
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps/"+rec.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got types.MindMapRecord
	decodeBody(t, resp, &got)
	assert.Equal(t, "Master Guitar", got.MindMap.CentralIdea)

	// delete
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/mindmaps/"+rec.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/mindmaps/"+rec.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveInvalidMap(t *testing.T) {
	ts, _ := testServer(t, nil)
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/mindmaps", map[string]any{"mindMap": map[string]any{"centralIdea": ""}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportImport(t *testing.T) {
	src, st := testServer(t, nil)
	_, err := st.Save(context.Background(), guitarMap(), "guitar")
	require.NoError(t, err)

	resp := doJSON(t, http.MethodGet, src.URL+"/api/mindmaps/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	dst, dstStore := testServer(t, nil)
	resp, err = http.Post(dst.URL+"/api/mindmaps/import", "application/json", bytes.NewReader(exported))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ir importResponse
	decodeBody(t, resp, &ir)
	assert.Equal(t, 1, ir.Imported)

	all, err := dstStore.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, guitarMap(), all[0].MindMap)
}

func TestExportYAMLAndUnknownFormat(t *testing.T) {
	ts, _ := testServer(t, nil)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps/export?format=yaml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/mindmaps/export?format=csv", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportMalformed(t *testing.T) {
	ts, _ := testServer(t, nil)
	resp, err := http.Post(ts.URL+"/api/mindmaps/import", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(store.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(types.ErrInvalidMindMap))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("disk full")))
}

func TestMetrics(t *testing.T) {
	ts, _ := testServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/analyze", map[string]any{"mindMap": guitarMap()})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, `mindgraph_analyses_total{strategy="text"} 1`)
	assert.Contains(t, out, `mindgraph_http_requests_total{method="POST",route="/api/analyze",status="200"} 1`)
	assert.Contains(t, out, "mindgraph_consistency_score_count 1")
}

func TestCORS(t *testing.T) {
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	defer st.Close()

	srv := New(st, nil, report.Options{}, nil, WithAllowedOrigins("http://localhost:5173"))
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/mindmaps", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
