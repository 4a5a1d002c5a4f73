package main

import (
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/rerank"
)

// loadReranker loads the configured model artifact; a blank path means
// rules-only scoring.
func loadReranker(path string) (*rerank.Model, error) {
	if path == "" {
		return nil, nil
	}
	m, err := rerank.Load(path)
	if err != nil {
		return nil, err
	}
	zap.L().Info("reranker model loaded",
		zap.String("path", path),
		zap.String("version", m.Version),
		zap.Float64("cv_auc", m.Metrics.AUC),
	)
	return m, nil
}

func modelVersion(m *rerank.Model) string {
	if m == nil {
		return ""
	}
	return m.Version
}
