package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/audit"
	"github.com/questline/gamematch/internal/matcher"
	"github.com/questline/gamematch/internal/model"
)

var (
	matchInputPath  string
	matchOutputPath string
	matchAuditPath  string
)

// matchRequest is the batch scoring input file format.
type matchRequest struct {
	Game       model.CanonicalGame `json:"game"`
	Candidates []model.Candidate   `json:"candidates"`
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score candidate releases against a canonical game",
	Long: `Reads a JSON request file with one game and its candidate listings,
scores every candidate, and writes the results as JSON. With --audit the
scored rows are also appended to an audit CSV for the curation pipeline.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate(); err != nil {
			return err
		}

		data, err := os.ReadFile(matchInputPath)
		if err != nil {
			return eris.Wrapf(err, "match: read %s", matchInputPath)
		}
		var req matchRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return eris.Wrapf(err, "match: parse %s", matchInputPath)
		}
		if req.Game.Title == "" {
			return eris.New("match: game.title is required")
		}
		if len(req.Candidates) == 0 {
			return eris.New("match: candidates must not be empty")
		}

		reranker, err := loadReranker(cfg.Match.ModelPath)
		if err != nil {
			return err
		}

		m := matcher.New(cfg.Match, reranker)
		results, err := m.ScoreAll(ctx, req.Game, req.Candidates)
		if err != nil {
			return eris.Wrap(err, "match: score")
		}

		matched := 0
		for _, res := range results {
			if res.Matched {
				matched++
			}
		}

		out, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return eris.Wrap(err, "match: marshal results")
		}
		if matchOutputPath == "" {
			cmd.Println(string(out))
		} else if err := os.WriteFile(matchOutputPath, out, 0o644); err != nil {
			return eris.Wrapf(err, "match: write %s", matchOutputPath)
		}

		if matchAuditPath != "" {
			records := [][]string{audit.Columns()}
			for _, res := range results {
				records = append(records, audit.RowValues(model.NewAuditRow(req.Game, res)))
			}
			if err := audit.WriteRecords(matchAuditPath, records); err != nil {
				return err
			}
		}

		zap.L().Info("match complete",
			zap.String("game", req.Game.Title),
			zap.Int("scored", len(results)),
			zap.Int("matched", matched),
		)
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchInputPath, "input", "", "path to JSON request file (required)")
	matchCmd.Flags().StringVar(&matchOutputPath, "output", "", "results JSON path (default: stdout)")
	matchCmd.Flags().StringVar(&matchAuditPath, "audit", "", "also write scored rows to this audit CSV")
	_ = matchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(matchCmd)
}
