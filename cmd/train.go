package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/train"
)

var (
	trainInputPath string
	trainModelPath string
	trainCardPath  string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the reranker model from the training table",
	Long: `Fits a logistic scoring model on the training CSV with k-fold
cross-validation, then writes the model artifact and a YAML model card.
Training refuses degenerate input: too few rows or single-class labels.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		rows, skipped, err := train.ReadTraining(trainInputPath)
		if err != nil {
			return err
		}
		if skipped > 0 {
			zap.L().Warn("train: unlabeled or malformed rows skipped", zap.Int("skipped", skipped))
		}

		trainer := train.NewTrainer(cfg.Train)
		m, err := trainer.Train(rows)
		if err != nil {
			return err
		}

		if err := m.Save(trainModelPath); err != nil {
			return err
		}
		if trainCardPath != "" {
			if err := train.NewModelCard(m, rows).Write(trainCardPath); err != nil {
				return err
			}
		}

		zap.L().Info("train complete",
			zap.String("version", m.Version),
			zap.Float64("cv_accuracy", m.Metrics.Accuracy),
			zap.Float64("cv_auc", m.Metrics.AUC),
			zap.String("model", trainModelPath),
		)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainInputPath, "training", "", "path to training CSV (required)")
	trainCmd.Flags().StringVar(&trainModelPath, "model", "model.json", "model artifact output path")
	trainCmd.Flags().StringVar(&trainCardPath, "card", "model.yaml", "model card output path (blank to skip)")
	_ = trainCmd.MarkFlagRequired("training")
	rootCmd.AddCommand(trainCmd)
}
