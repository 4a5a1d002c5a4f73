package train

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
	"github.com/questline/gamematch/internal/rerank"
)

// Trainer fits a logistic scoring model from a training table. Degenerate
// input (too few rows, single-class labels) fails fast; it is never papered
// over with a default model.
type Trainer struct {
	cfg config.TrainConfig
}

// NewTrainer builds a Trainer.
func NewTrainer(cfg config.TrainConfig) *Trainer {
	return &Trainer{cfg: cfg}
}

// Train fits the model and reports cross-validated metrics.
func (t *Trainer) Train(rows []model.TrainingRow) (*rerank.Model, error) {
	if len(rows) < t.cfg.MinRows {
		return nil, eris.Errorf("train: %d rows, need at least %d", len(rows), t.cfg.MinRows)
	}

	pos := 0
	for _, r := range rows {
		pos += r.FinalLabel
	}
	if pos == 0 || pos == len(rows) {
		return nil, eris.Errorf("train: degenerate label distribution (%d positive of %d)", pos, len(rows))
	}

	features := make([][]float64, len(rows))
	labels := make([]float64, len(rows))
	for i, r := range rows {
		features[i] = rerank.FromAudit(r.AuditRow).Vector()
		labels[i] = float64(r.FinalLabel)
	}

	rng := rand.New(rand.NewSource(t.cfg.Seed))
	order := rng.Perm(len(rows))

	metrics, err := t.crossValidate(features, labels, order)
	if err != nil {
		return nil, err
	}

	weights, bias := t.fit(features, labels, order, rng)

	m := &rerank.Model{
		Version:   uuid.NewString(),
		TrainedAt: time.Now().UTC(),
		Features:  rerank.FeatureNames(),
		Weights:   weights,
		Bias:      bias,
		Metrics:   metrics,
	}

	zap.L().Info("train: model fitted",
		zap.String("version", m.Version),
		zap.Int("rows", metrics.Rows),
		zap.Float64("cv_accuracy", metrics.Accuracy),
		zap.Float64("cv_auc", metrics.AUC),
	)
	return m, nil
}

// crossValidate runs k-fold validation over the shuffled order and averages
// accuracy and AUC across folds.
func (t *Trainer) crossValidate(features [][]float64, labels []float64, order []int) (rerank.Metrics, error) {
	folds := t.cfg.Folds
	if folds > len(order) {
		folds = len(order)
	}

	var accSum, aucSum float64
	scored := 0
	for k := 0; k < folds; k++ {
		var trainIdx, testIdx []int
		for i, idx := range order {
			if i%folds == k {
				testIdx = append(testIdx, idx)
			} else {
				trainIdx = append(trainIdx, idx)
			}
		}
		if len(testIdx) == 0 || !bothClasses(labels, trainIdx) {
			continue
		}

		w, b := t.sgd(features, labels, trainIdx)

		var probs, truth []float64
		correct := 0
		for _, idx := range testIdx {
			p := sigmoid(dot(w, features[idx]) + b)
			probs = append(probs, p)
			truth = append(truth, labels[idx])
			if (p >= 0.5) == (labels[idx] == 1) {
				correct++
			}
		}
		accSum += float64(correct) / float64(len(testIdx))
		aucSum += rankAUC(probs, truth)
		scored++
	}

	if scored == 0 {
		return rerank.Metrics{}, eris.New("train: no usable cross-validation folds")
	}
	return rerank.Metrics{
		Rows:     len(order),
		Folds:    scored,
		Accuracy: accSum / float64(scored),
		AUC:      aucSum / float64(scored),
	}, nil
}

// fit trains on the full set.
func (t *Trainer) fit(features [][]float64, labels []float64, order []int, _ *rand.Rand) ([]float64, float64) {
	return t.sgd(features, labels, order)
}

// sgd runs plain stochastic gradient descent on logistic loss with L2
// regularization.
func (t *Trainer) sgd(features [][]float64, labels []float64, idx []int) ([]float64, float64) {
	dim := len(rerank.FeatureNames())
	w := make([]float64, dim)
	b := 0.0
	lr := t.cfg.LearningRate

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		for _, i := range idx {
			p := sigmoid(dot(w, features[i]) + b)
			g := p - labels[i]
			for j := 0; j < dim; j++ {
				w[j] -= lr * (g*features[i][j] + t.cfg.L2*w[j])
			}
			b -= lr * g
		}
	}
	return w, b
}

// rankAUC computes the Mann-Whitney AUC of probabilities against binary
// truth; 0.5 when a class is absent.
func rankAUC(probs, truth []float64) float64 {
	type pair struct{ p, y float64 }
	pairs := make([]pair, len(probs))
	for i := range probs {
		pairs[i] = pair{probs[i], truth[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].p < pairs[j].p })

	var nPos, nNeg, rankSum float64
	for i, pr := range pairs {
		if pr.y == 1 {
			nPos++
			rankSum += float64(i + 1)
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
}

func bothClasses(labels []float64, idx []int) bool {
	seen0, seen1 := false, false
	for _, i := range idx {
		if labels[i] == 1 {
			seen1 = true
		} else {
			seen0 = true
		}
	}
	return seen0 && seen1
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
