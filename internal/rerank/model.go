package rerank

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/rotisserie/eris"
)

// Metrics summarizes cross-validated training quality.
type Metrics struct {
	Rows     int     `json:"rows"`
	Folds    int     `json:"folds"`
	Accuracy float64 `json:"accuracy"`
	AUC      float64 `json:"auc"`
}

// Model is a versioned logistic scoring model. It is opaque to callers: the
// only contract is Score(features) -> probability. Treated as immutable once
// loaded, so one instance serves a whole scoring session concurrently.
type Model struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Metrics   Metrics   `json:"metrics"`
}

// Load reads a model artifact and validates its feature contract.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rerank: read model %s", path)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "rerank: parse model %s", path)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Model) validate() error {
	names := FeatureNames()
	if len(m.Features) != len(names) || len(m.Weights) != len(names) {
		return eris.Errorf("rerank: model wants %d features, engine has %d", len(m.Features), len(names))
	}
	for i, name := range names {
		if m.Features[i] != name {
			return eris.Errorf("rerank: feature %d is %q, engine expects %q", i, m.Features[i], name)
		}
	}
	return nil
}

// Score maps a feature vector to a calibrated match probability in [0,1].
func (m *Model) Score(f Features) float64 {
	z := m.Bias
	for i, v := range f.Vector() {
		z += m.Weights[i] * v
	}
	return sigmoid(z)
}

// Save writes the artifact as indented JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return eris.Wrap(err, "rerank: marshal model")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "rerank: write model %s", path)
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
