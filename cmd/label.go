package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
)

var (
	labelAuditPath  string
	labelOutputPath string
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Auto-label audit rows with conservative heuristics",
	Long: `Runs the heuristic labeler over an audit CSV. Rows the rules decide get
autoLabel 0 or 1 with a rationale; ambiguous rows stay blank and flow to
the review sampler.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}

		rows, skipped, err := audit.ReadAuditRows(labelAuditPath)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return eris.Errorf("label: no usable rows in %s", labelAuditPath)
		}

		labeler := audit.NewLabeler(cfg.Labeler)
		labeled := make([]audit.LabeledRow, 0, len(rows))
		pos, neg, deferred := 0, 0, 0
		for _, row := range rows {
			v := labeler.Label(row)
			switch v.Label {
			case "1":
				pos++
			case "0":
				neg++
			default:
				deferred++
			}
			labeled = append(labeled, audit.LabeledRow{
				Row:        row,
				AutoLabel:  v.Label,
				AutoReason: v.Rationale,
			})
		}

		if err := audit.WriteLabeled(labelOutputPath, labeled); err != nil {
			return err
		}

		zap.L().Info("label complete",
			zap.Int("rows", len(rows)),
			zap.Int("skipped", skipped),
			zap.Int("auto_positive", pos),
			zap.Int("auto_negative", neg),
			zap.Int("deferred", deferred),
			zap.String("output", labelOutputPath),
		)
		return nil
	},
}

func init() {
	labelCmd.Flags().StringVar(&labelAuditPath, "audit", "", "path to audit CSV (required)")
	labelCmd.Flags().StringVar(&labelOutputPath, "output", "labeled.csv", "labeled CSV output path")
	_ = labelCmd.MarkFlagRequired("audit")
	rootCmd.AddCommand(labelCmd)
}
