package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krish-ai/chat-server/internal/agent/model"
)

type stubRunner struct {
	out   model.OutgoingResponse
	err   error
	got   model.IncomingRequest
	calls int
}

func (s *stubRunner) Invoke(_ context.Context, in model.IncomingRequest) (model.OutgoingResponse, error) {
	s.calls++
	s.got = in
	return s.out, s.err
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestChat_Success(t *testing.T) {
	runner := &stubRunner{out: model.OutgoingResponse{
		Content: "Hey! How can I help you today?",
		SearchInfo: model.SearchInfo{
			Searches:  []model.PlannedSearch{{Query: "q", Purpose: "p"}},
			Reasoning: "why",
		},
	}}
	router := NewRouter(runner, RouterConfig{})

	rec := serve(router, http.MethodPost, "/api/chat", `{"userMessage":"hi","messages":[{"role":"user","content":"earlier"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"content":"Hey! How can I help you today?",
		"searchInfo":{"searches":[{"query":"q","purpose":"p"}],"reasoning":"why"}}`, rec.Body.String())
	assert.Equal(t, "hi", runner.got.UserMessage)
	assert.Equal(t, []model.ConversationTurn{{Role: "user", Content: "earlier"}}, runner.got.Messages)
}

func TestChat_EmptySearchesSerialiseAsArray(t *testing.T) {
	runner := &stubRunner{out: model.OutgoingResponse{Content: "ok", SearchInfo: model.EmptySearchInfo()}}
	rec := serve(NewRouter(runner, RouterConfig{}), http.MethodPost, "/api/chat", `{"userMessage":"hi"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"content":"ok","searchInfo":{"searches":[]}}`, rec.Body.String())
}

func TestChat_InvalidJSON(t *testing.T) {
	runner := &stubRunner{}
	rec := serve(NewRouter(runner, RouterConfig{}), http.MethodPost, "/api/chat", `{not json`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	cause, _ := body["error"].(string)
	assert.NotEmpty(t, cause)
	assert.Equal(t, "Server error: "+cause, body["content"])
	assert.Equal(t, map[string]any{"searches": []any{}}, body["searchInfo"])
	assert.Zero(t, runner.calls)
}

func TestChat_NonObjectBodyUsesEmptyRequest(t *testing.T) {
	runner := &stubRunner{out: model.OutgoingResponse{Content: "ok", SearchInfo: model.EmptySearchInfo()}}
	rec := serve(NewRouter(runner, RouterConfig{}), http.MethodPost, "/api/chat", `[1,2]`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.IncomingRequest{}, runner.got)
}

func TestChat_RunnerFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("graph exploded")}
	rec := serve(NewRouter(runner, RouterConfig{}), http.MethodPost, "/api/chat", `{"userMessage":"hi"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"graph exploded","content":"Server error: graph exploded","searchInfo":{"searches":[]}}`,
		rec.Body.String())
}

func TestChat_Preflight(t *testing.T) {
	rec := serve(NewRouter(&stubRunner{}, RouterConfig{}), http.MethodOptions, "/api/chat", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, rec.Body.String())
}

func TestUnknownRoutes(t *testing.T) {
	router := NewRouter(&stubRunner{}, RouterConfig{})
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/other"},
		{http.MethodGet, "/api/chat"},
		{http.MethodGet, "/"},
		{http.MethodPut, "/api/chat"},
	} {
		rec := serve(router, tc.method, tc.path, "{}")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.Empty(t, rec.Body.String(), "%s %s", tc.method, tc.path)
	}
}

func TestCustomChatPath(t *testing.T) {
	runner := &stubRunner{out: model.OutgoingResponse{SearchInfo: model.EmptySearchInfo()}}
	router := NewRouter(runner, RouterConfig{ChatPath: "/v2/chat"})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodPost, "/v2/chat", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/api/chat", `{}`).Code)
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>chat</h1>"), 0o644))
	router := NewRouter(&stubRunner{}, RouterConfig{StaticDir: dir})

	rec := serve(router, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>chat</h1>")

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/missing.js", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodPost, "/index.html", "{}").Code)
}
