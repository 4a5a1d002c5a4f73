package train

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/questline/gamematch/internal/rerank"
)

func TestNewModelCard(t *testing.T) {
	m := &rerank.Model{
		Version:   "v-test",
		TrainedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Features:  rerank.FeatureNames(),
		Metrics:   rerank.Metrics{Rows: 60, Folds: 5, Accuracy: 0.92, AUC: 0.97},
	}
	rows := separableRows(60)

	card := NewModelCard(m, rows)
	assert.Equal(t, "v-test", card.Version)
	assert.Equal(t, "2026-03-01T12:00:00Z", card.TrainedAt)
	assert.Equal(t, 60, card.Rows)
	assert.Equal(t, 30, card.Positives)
	assert.Equal(t, 30, card.Negatives)
	assert.Equal(t, 0.97, card.AUC)
}

func TestModelCard_Write(t *testing.T) {
	card := ModelCard{Version: "v-test", Rows: 60, Features: rerank.FeatureNames()}
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, card.Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var back ModelCard
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, card, back)
}
