package train

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/questline/gamematch/internal/model"
	"github.com/questline/gamematch/internal/rerank"
)

// ModelCard is the human-readable companion to a model artifact. It records
// what the model was trained on and how it performed, so an operator can
// decide whether to promote it without parsing the artifact.
type ModelCard struct {
	Version   string   `yaml:"version"`
	TrainedAt string   `yaml:"trained_at"`
	Rows      int      `yaml:"rows"`
	Positives int      `yaml:"positives"`
	Negatives int      `yaml:"negatives"`
	Folds     int      `yaml:"folds"`
	Accuracy  float64  `yaml:"cv_accuracy"`
	AUC       float64  `yaml:"cv_auc"`
	Features  []string `yaml:"features"`
}

// NewModelCard assembles a card from the fitted model and its training rows.
func NewModelCard(m *rerank.Model, rows []model.TrainingRow) ModelCard {
	pos := 0
	for _, r := range rows {
		pos += r.FinalLabel
	}
	return ModelCard{
		Version:   m.Version,
		TrainedAt: m.TrainedAt.Format("2006-01-02T15:04:05Z07:00"),
		Rows:      m.Metrics.Rows,
		Positives: pos,
		Negatives: len(rows) - pos,
		Folds:     m.Metrics.Folds,
		Accuracy:  m.Metrics.Accuracy,
		AUC:       m.Metrics.AUC,
		Features:  m.Features,
	}
}

// Write persists the card as YAML next to the artifact.
func (c ModelCard) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return eris.Wrap(err, "train: marshal model card")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "train: write model card %s", path)
	}
	return nil
}
