package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
)

var (
	reviewLabeledPath string
	reviewOutputPath  string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Sample labeled rows into human review buckets",
	Long: `Partitions undecided rows into concrete review buckets (capped and
shuffled) and draws validation samples from the auto-labeled strata, so a
reviewer spends time where the engine is least certain.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		labeled, skipped, err := audit.ReadLabeled(reviewLabeledPath)
		if err != nil {
			return err
		}

		var decided, undecided []audit.LabeledRow
		for _, lr := range labeled {
			if lr.AutoLabel == "" {
				undecided = append(undecided, lr)
			} else {
				decided = append(decided, lr)
			}
		}

		sampler := audit.NewSampler(cfg.Review)
		review := sampler.Sample(undecided, decided)

		if err := audit.WriteReview(reviewOutputPath, review); err != nil {
			return err
		}

		zap.L().Info("review sample complete",
			zap.Int("rows", len(labeled)),
			zap.Int("skipped", skipped),
			zap.Int("undecided", len(undecided)),
			zap.Int("sampled", len(review)),
			zap.String("output", reviewOutputPath),
		)
		return nil
	},
}

func init() {
	reviewCmd.Flags().StringVar(&reviewLabeledPath, "labeled", "", "path to labeled CSV (required)")
	reviewCmd.Flags().StringVar(&reviewOutputPath, "output", "review.csv", "review CSV output path")
	_ = reviewCmd.MarkFlagRequired("labeled")
	rootCmd.AddCommand(reviewCmd)
}
