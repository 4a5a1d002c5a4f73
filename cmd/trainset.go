package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
	"github.com/questline/gamematch/internal/train"
)

var (
	trainsetReviewedPath string
	trainsetLabeledPath  string
	trainsetOutputPath   string
)

var trainsetCmd = &cobra.Command{
	Use:   "trainset",
	Short: "Merge human and auto labels into the training table",
	Long: `Merges human-reviewed rows with auto-labeled rows into one deduplicated
training CSV. Human labels win on conflict under the default keep-first
policy.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		var human []audit.LabeledRow
		if trainsetReviewedPath != "" {
			var skipped int
			var err error
			human, skipped, err = audit.ReadReviewed(trainsetReviewedPath)
			if err != nil {
				return err
			}
			if skipped > 0 {
				zap.L().Warn("trainset: malformed reviewed rows skipped", zap.Int("skipped", skipped))
			}
		}

		auto, skipped, err := audit.ReadLabeled(trainsetLabeledPath)
		if err != nil {
			return err
		}
		if skipped > 0 {
			zap.L().Warn("trainset: malformed labeled rows skipped", zap.Int("skipped", skipped))
		}

		builder := train.NewBuilder(cfg.Train)
		rows, sum := builder.Build(human, auto)
		if len(rows) == 0 {
			return eris.New("trainset: no labeled rows to merge")
		}

		if err := train.WriteTraining(trainsetOutputPath, rows); err != nil {
			return err
		}

		zap.L().Info("trainset complete",
			zap.Int("rows", len(rows)),
			zap.Int("from_human", sum.FromHuman),
			zap.Int("from_auto", sum.FromAuto),
			zap.Int("duplicates", sum.Duplicate),
			zap.String("output", trainsetOutputPath),
		)
		return nil
	},
}

func init() {
	trainsetCmd.Flags().StringVar(&trainsetReviewedPath, "reviewed", "", "path to human-reviewed CSV")
	trainsetCmd.Flags().StringVar(&trainsetLabeledPath, "labeled", "", "path to auto-labeled CSV (required)")
	trainsetCmd.Flags().StringVar(&trainsetOutputPath, "output", "training.csv", "training CSV output path")
	_ = trainsetCmd.MarkFlagRequired("labeled")
	rootCmd.AddCommand(trainsetCmd)
}
