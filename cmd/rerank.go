package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
	"github.com/questline/gamematch/internal/rerank"
)

var (
	rerankInputPath  string
	rerankModelPath  string
	rerankOutputPath string
)

// rerankScorePrefix tags the probability token appended to the reasons
// column; re-running the command replaces a stale token instead of stacking.
const rerankScorePrefix = "reranker score "

var rerankCmd = &cobra.Command{
	Use:   "rerank",
	Short: "Annotate an audit CSV with reranker probabilities",
	Long: `Scores every row of an audit CSV with the reranker model and appends a
"reranker score" token to the reasons column. Rows missing a game or
candidate title pass through untouched.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		table, err := audit.ReadTable(rerankInputPath)
		if err != nil {
			return err
		}

		m, err := rerank.Load(rerankModelPath)
		if err != nil {
			return err
		}

		scored, passed := 0, 0
		for _, rec := range table.Records {
			if table.Get(rec, "gameName") == "" || table.Get(rec, "candidateTitle") == "" {
				passed++
				continue
			}
			row, err := table.Row(rec)
			if err != nil {
				passed++
				zap.L().Warn("rerank: passing through malformed row", zap.Error(err))
				continue
			}

			p := m.Score(rerank.FromAudit(row))
			reasons := appendScoreToken(table.Get(rec, "reasons"), p)
			if !table.Set(rec, "reasons", reasons) {
				return eris.Errorf("rerank: %s has no reasons column", rerankInputPath)
			}
			scored++
		}

		records := append([][]string{table.Header}, table.Records...)
		if err := audit.WriteRecords(rerankOutputPath, records); err != nil {
			return err
		}

		zap.L().Info("rerank complete",
			zap.String("model", m.Version),
			zap.Int("scored", scored),
			zap.Int("passed_through", passed),
			zap.String("output", rerankOutputPath),
		)
		return nil
	},
}

// appendScoreToken replaces any existing reranker token in the pipe-joined
// reasons with the fresh probability.
func appendScoreToken(reasons string, p float64) string {
	var kept []string
	for _, tok := range strings.Split(reasons, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.HasPrefix(tok, rerankScorePrefix) {
			continue
		}
		kept = append(kept, tok)
	}
	kept = append(kept, fmt.Sprintf("%s%.3f", rerankScorePrefix, p))
	return strings.Join(kept, "|")
}

func init() {
	rerankCmd.Flags().StringVar(&rerankInputPath, "input", "", "path to audit CSV (required)")
	rerankCmd.Flags().StringVar(&rerankModelPath, "model", "", "path to model artifact (required)")
	rerankCmd.Flags().StringVar(&rerankOutputPath, "output", "reranked.csv", "annotated CSV output path")
	_ = rerankCmd.MarkFlagRequired("input")
	_ = rerankCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(rerankCmd)
}
