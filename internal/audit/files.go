package audit

import (
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/questline/gamematch/internal/model"
)

// ReadAuditRows loads an audit CSV. Malformed rows are skipped and counted,
// never fatal: one bad row must not halt a batch.
func ReadAuditRows(path string) ([]model.AuditRow, int, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]model.AuditRow, 0, len(table.Records))
	skipped := 0
	for i, rec := range table.Records {
		row, err := table.Row(rec)
		if err != nil {
			skipped++
			zap.L().Warn("audit: skipping malformed row",
				zap.Int("line", i+2),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// WriteLabeled writes the auto-labeled CSV: audit columns plus autoLabel and
// autoReason.
func WriteLabeled(path string, rows []LabeledRow) error {
	records := [][]string{append(Columns(), colAutoLabel, colAutoReason)}
	for _, lr := range rows {
		records = append(records, append(RowValues(lr.Row), lr.AutoLabel, lr.AutoReason))
	}
	return WriteRecords(path, records)
}

// ReadLabeled loads an auto-labeled CSV back into LabeledRows.
func ReadLabeled(path string) ([]LabeledRow, int, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, 0, err
	}

	rows := make([]LabeledRow, 0, len(table.Records))
	skipped := 0
	for i, rec := range table.Records {
		row, err := table.Row(rec)
		if err != nil {
			skipped++
			zap.L().Warn("audit: skipping malformed row",
				zap.Int("line", i+2),
				zap.Error(err),
			)
			continue
		}
		rows = append(rows, LabeledRow{
			Row:        row,
			AutoLabel:  table.Get(rec, colAutoLabel),
			AutoReason: table.Get(rec, colAutoReason),
		})
	}
	return rows, skipped, nil
}

// WriteReview writes the review CSV: audit columns plus autoLabel, autoReason
// and reviewBucket. Caller passes rows already ordered (concrete buckets
// before validation buckets).
func WriteReview(path string, rows []ReviewRow) error {
	records := [][]string{append(Columns(), colAutoLabel, colAutoReason, colReviewBucket)}
	for _, rr := range rows {
		records = append(records, append(RowValues(rr.Row), rr.AutoLabel, rr.AutoReason, rr.Bucket))
	}
	return WriteRecords(path, records)
}

// ReadReviewed loads a review CSV after human labeling. Only rows whose label
// column was resolved to 0 or 1 are returned.
func ReadReviewed(path string) ([]LabeledRow, int, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, 0, err
	}

	var rows []LabeledRow
	skipped := 0
	for i, rec := range table.Records {
		row, err := table.Row(rec)
		if err != nil {
			skipped++
			zap.L().Warn("audit: skipping malformed row",
				zap.Int("line", i+2),
				zap.Error(err),
			)
			continue
		}
		if row.Label != "0" && row.Label != "1" {
			continue
		}
		rows = append(rows, LabeledRow{
			Row:        row,
			AutoLabel:  table.Get(rec, colAutoLabel),
			AutoReason: table.Get(rec, colAutoReason),
		})
	}
	return rows, skipped, nil
}

// WriteRecords writes a CSV file with RFC 4180 quoting.
func WriteRecords(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "csv: create %s", path)
	}
	defer f.Close()

	if err := WriteCSV(f, records); err != nil {
		return err
	}
	return eris.Wrapf(f.Close(), "csv: close %s", path)
}
