package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/model"
)

type scoreRequest struct {
	Game      model.CanonicalGame `json:"game"`
	Candidate model.Candidate     `json:"candidate"`
}

type batchScoreRequest struct {
	Game       model.CanonicalGame `json:"game"`
	Candidates []model.Candidate   `json:"candidates"`
}

type batchScoreResponse struct {
	RequestID string              `json:"request_id"`
	GameID    string              `json:"game_id"`
	Results   []model.MatchResult `json:"results"`
	Matched   int                 `json:"matched"`
}

type healthResponse struct {
	Status       string `json:"status"`
	ModelVersion string `json:"model_version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:       "ok",
		ModelVersion: s.version,
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Game.Title == "" || req.Candidate.Title == "" {
		writeError(w, http.StatusBadRequest, "game.title and candidate.title are required")
		return
	}

	res := s.matcher.Score(req.Game, req.Candidate)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBatchScore(w http.ResponseWriter, r *http.Request) {
	var req batchScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Game.Title == "" {
		writeError(w, http.StatusBadRequest, "game.title is required")
		return
	}
	if len(req.Candidates) == 0 {
		writeError(w, http.StatusBadRequest, "candidates must not be empty")
		return
	}

	results, err := s.matcher.ScoreAll(r.Context(), req.Game, req.Candidates)
	if err != nil {
		zap.L().Error("server: batch score", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "scoring failed")
		return
	}

	matched := 0
	for _, res := range results {
		if res.Matched {
			matched++
		}
	}

	writeJSON(w, http.StatusOK, batchScoreResponse{
		RequestID: uuid.NewString(),
		GameID:    req.Game.ID,
		Results:   results,
		Matched:   matched,
	})
}
