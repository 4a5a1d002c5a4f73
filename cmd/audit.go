package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
	"github.com/questline/gamematch/internal/store"
)

var (
	auditImportCSVPath string
	auditExportPath    string
	auditExportGameID  string
	auditExportMatched string
	auditExportLimit   int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Manage the audit row store",
}

var auditImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an audit CSV into the store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		rows, skipped, err := audit.ReadAuditRows(auditImportCSVPath)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return eris.Errorf("audit import: no usable rows in %s", auditImportCSVPath)
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}
		saved, err := st.SaveRows(ctx, rows)
		if err != nil {
			return err
		}

		zap.L().Info("audit import complete",
			zap.Int("saved", saved),
			zap.Int("skipped", skipped),
			zap.String("csv", auditImportCSVPath),
		)
		return nil
	},
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored audit rows to CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		filter := store.RowFilter{GameID: auditExportGameID, Limit: auditExportLimit}
		switch auditExportMatched {
		case "":
		case "true", "false":
			matched := auditExportMatched == "true"
			filter.Matched = &matched
		default:
			return eris.Errorf("audit export: --matched must be true or false, got %q", auditExportMatched)
		}

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.ListRows(ctx, filter)
		if err != nil {
			return err
		}

		records := [][]string{audit.Columns()}
		for _, row := range rows {
			records = append(records, audit.RowValues(row))
		}
		if err := audit.WriteRecords(auditExportPath, records); err != nil {
			return err
		}

		zap.L().Info("audit export complete",
			zap.Int("rows", len(rows)),
			zap.String("output", auditExportPath),
		)
		return nil
	},
}

func init() {
	auditImportCmd.Flags().StringVar(&auditImportCSVPath, "csv", "", "path to audit CSV (required)")
	_ = auditImportCmd.MarkFlagRequired("csv")

	auditExportCmd.Flags().StringVar(&auditExportPath, "output", "audit.csv", "CSV output path")
	auditExportCmd.Flags().StringVar(&auditExportGameID, "game", "", "filter by game id")
	auditExportCmd.Flags().StringVar(&auditExportMatched, "matched", "", "filter by matched (true/false)")
	auditExportCmd.Flags().IntVar(&auditExportLimit, "limit", 0, "maximum rows (0 = store default)")

	auditCmd.AddCommand(auditImportCmd)
	auditCmd.AddCommand(auditExportCmd)
	rootCmd.AddCommand(auditCmd)
}
