package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/matcher"
	"github.com/questline/gamematch/internal/model"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	m := matcher.New(cfg.Match, nil)
	return New(config.ServerConfig{Port: 8080, RateLimit: 1000, RateBurst: 1000}, m, "model-abc")
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "model-abc", resp.ModelVersion)
}

func TestHandleScore(t *testing.T) {
	rec := postJSON(t, testServer(t).Router(), "/score", scoreRequest{
		Game:      model.CanonicalGame{ID: "g1", Title: "Elden Ring"},
		Candidate: model.Candidate{Title: "ELDEN.RING-CODEX", Trust: model.TrustTrusted},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var res model.MatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Matched)
	assert.Greater(t, res.Score, 70.0)
}

func TestHandleScore_MissingTitle(t *testing.T) {
	rec := postJSON(t, testServer(t).Router(), "/score", scoreRequest{
		Game: model.CanonicalGame{ID: "g1", Title: "Elden Ring"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "candidate.title")
}

func TestHandleScore_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/score", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	testServer(t).Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBatchScore(t *testing.T) {
	rec := postJSON(t, testServer(t).Router(), "/batch_score", batchScoreRequest{
		Game: model.CanonicalGame{ID: "g1", Title: "Elden Ring"},
		Candidates: []model.Candidate{
			{Title: "ELDEN.RING-CODEX", Trust: model.TrustTrusted},
			{Title: "Unrelated Cooking Show S01E02"},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp batchScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, "g1", resp.GameID)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, 1, resp.Matched)
	// Results come back in request order.
	assert.True(t, resp.Results[0].Matched)
	assert.False(t, resp.Results[1].Matched)
}

func TestHandleBatchScore_Validation(t *testing.T) {
	router := testServer(t).Router()

	rec := postJSON(t, router, "/batch_score", batchScoreRequest{
		Candidates: []model.Candidate{{Title: "x"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "game.title")

	rec = postJSON(t, router, "/batch_score", batchScoreRequest{
		Game: model.CanonicalGame{ID: "g1", Title: "Elden Ring"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "candidates")
}

func TestRateLimit(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	s := New(config.ServerConfig{Port: 8080, RateLimit: 1, RateBurst: 1}, matcher.New(cfg.Match, nil), "")
	router := s.Router()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate limit")
}
