package rerank

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() *Model {
	weights := make([]float64, len(featureNames))
	weights[0] = 4 // rule_score dominates
	return &Model{
		Version:   "test-model",
		TrainedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Features:  FeatureNames(),
		Weights:   weights,
		Bias:      -2,
		Metrics:   Metrics{Rows: 500, Folds: 5, Accuracy: 0.91, AUC: 0.95},
	}
}

func TestModel_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, testModel().Save(path))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test-model", m.Version)
	assert.Equal(t, FeatureNames(), m.Features)
	assert.Equal(t, 0.95, m.Metrics.AUC)
}

func TestLoad_RejectsWrongFeatureCount(t *testing.T) {
	m := testModel()
	m.Features = m.Features[:3]
	m.Weights = m.Weights[:3]

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, m.Save(path))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "features")
}

func TestLoad_RejectsRenamedFeature(t *testing.T) {
	m := testModel()
	m.Features[4] = "levenshtein" // not part of the contract

	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, m.Save(path))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "levenshtein")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoad_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestModel_ScoreIsMonotoneInRuleScore(t *testing.T) {
	m := testModel()

	low := m.Score(Features{RuleScore: 0.1})
	high := m.Score(Features{RuleScore: 0.9})
	assert.Greater(t, high, low)
	assert.GreaterOrEqual(t, low, 0.0)
	assert.LessOrEqual(t, high, 1.0)
}
