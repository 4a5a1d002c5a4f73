// Package train builds the canonical training table and fits the scoring
// model consumed by the learned reranker.
package train

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
	"github.com/questline/gamematch/internal/config"
	"github.com/questline/gamematch/internal/model"
)

// Builder merges heuristic labels and resolved human labels into a
// deduplicated training table.
type Builder struct {
	policy string
}

// BuildSummary reports what the merge did; it is always surfaced to the
// caller alongside the output.
type BuildSummary struct {
	FromHuman int
	FromAuto  int
	Duplicate int
	Unlabeled int
}

// NewBuilder builds a Builder with the configured dedup policy
// (keep-first or keep-last).
func NewBuilder(cfg config.TrainConfig) *Builder {
	return &Builder{policy: cfg.DedupPolicy}
}

// Build merges human-reviewed rows and auto-labeled rows, keyed by
// (gameId, candidateTitle, candidateSource). Human rows are fed first so the
// default keep-first policy prefers them on conflict; keep-last inverts that
// preference for every duplicate key.
func (b *Builder) Build(human, auto []audit.LabeledRow) ([]model.TrainingRow, BuildSummary) {
	var sum BuildSummary
	byKey := make(map[string]int) // dedup key -> index in out
	var out []model.TrainingRow

	add := func(row model.AuditRow, label int, humanSourced bool) {
		tr := model.TrainingRow{AuditRow: row, FinalLabel: label}
		tr.Label = strconv.Itoa(label)

		key := row.DedupKey()
		if idx, seen := byKey[key]; seen {
			sum.Duplicate++
			if b.policy == "keep-last" {
				out[idx] = tr
			}
			return
		}
		byKey[key] = len(out)
		out = append(out, tr)
		if humanSourced {
			sum.FromHuman++
		} else {
			sum.FromAuto++
		}
	}

	for _, lr := range human {
		label, ok := parseLabel(lr.Row.Label)
		if !ok {
			sum.Unlabeled++
			continue
		}
		add(lr.Row, label, true)
	}
	for _, lr := range auto {
		label, ok := parseLabel(lr.AutoLabel)
		if !ok {
			sum.Unlabeled++
			continue
		}
		add(lr.Row, label, false)
	}

	zap.L().Info("train: training set built",
		zap.Int("rows", len(out)),
		zap.Int("from_human", sum.FromHuman),
		zap.Int("from_auto", sum.FromAuto),
		zap.Int("duplicates", sum.Duplicate),
		zap.Int("unlabeled_dropped", sum.Unlabeled),
	)
	return out, sum
}

// WriteTraining writes the training CSV: audit columns with the label column
// finalized.
func WriteTraining(path string, rows []model.TrainingRow) error {
	records := [][]string{audit.Columns()}
	for _, tr := range rows {
		tr.Label = strconv.Itoa(tr.FinalLabel)
		records = append(records, audit.RowValues(tr.AuditRow))
	}
	return audit.WriteRecords(path, records)
}

// ReadTraining loads a training CSV, dropping rows without a binary label.
func ReadTraining(path string) ([]model.TrainingRow, int, error) {
	rows, skipped, err := audit.ReadAuditRows(path)
	if err != nil {
		return nil, 0, err
	}
	var out []model.TrainingRow
	for _, row := range rows {
		label, ok := parseLabel(row.Label)
		if !ok {
			skipped++
			continue
		}
		out = append(out, model.TrainingRow{AuditRow: row, FinalLabel: label})
	}
	return out, skipped, nil
}

func parseLabel(s string) (int, bool) {
	switch s {
	case "0":
		return 0, true
	case "1":
		return 1, true
	}
	return 0, false
}
