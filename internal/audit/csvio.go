// Package audit implements the offline curation pipeline over persisted
// match results: the CSV codec, the heuristic auto-labeler and the
// review-bucket sampler.
package audit

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/questline/gamematch/internal/model"
)

// auditColumns is the stable audit-file column order. Downstream tooling keys
// off these exact names; append only.
var auditColumns = []string{
	"gameId", "gameName", "gameReleaseDate", "gameReleaseStatus",
	"candidateTitle", "candidateSource", "indexerName",
	"matchScore", "matched", "reasons",
	"size", "sizeBytes", "seeders", "leechers", "grabs",
	"uploader", "publishDate", "releaseType", "type",
	"reviewFlag", "label", "sourceTrustLevel",
}

// Extra columns appended by pipeline stages.
const (
	colAutoLabel    = "autoLabel"
	colAutoReason   = "autoReason"
	colReviewBucket = "reviewBucket"
)

// Columns returns the audit column order.
func Columns() []string {
	out := make([]string, len(auditColumns))
	copy(out, auditColumns)
	return out
}

// ParseCSV reads RFC 4180 records with an explicit two-state machine
// (normal / in-quotes). Embedded commas and newlines inside quoted fields are
// common in release titles, so the quoting states stay explicit rather than
// delegated to a split.
func ParseCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)

	var (
		records  [][]string
		record   []string
		field    strings.Builder
		inQuotes bool
		any      bool // current record has content
	)

	endField := func() {
		record = append(record, field.String())
		field.Reset()
	}
	endRecord := func() {
		endField()
		records = append(records, record)
		record = nil
		any = false
	}

	for {
		ch, _, err := br.ReadRune()
		if err == io.EOF {
			if inQuotes {
				return nil, eris.New("csv: unterminated quoted field")
			}
			if any || field.Len() > 0 || len(record) > 0 {
				endRecord()
			}
			return records, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read")
		}

		if inQuotes {
			if ch == '"' {
				next, _, err := br.ReadRune()
				if err == io.EOF {
					inQuotes = false
					continue
				}
				if err != nil {
					return nil, eris.Wrap(err, "csv: read")
				}
				if next == '"' {
					// escaped quote
					field.WriteRune('"')
					continue
				}
				inQuotes = false
				if err := br.UnreadRune(); err != nil {
					return nil, eris.Wrap(err, "csv: unread")
				}
				continue
			}
			field.WriteRune(ch)
			any = true
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
			any = true
		case ',':
			endField()
			any = true
		case '\r':
			// swallowed; CRLF handled at the \n
		case '\n':
			if any || field.Len() > 0 || len(record) > 0 {
				endRecord()
			}
		default:
			field.WriteRune(ch)
			any = true
		}
	}
}

// WriteCSV writes records with RFC 4180 quoting.
func WriteCSV(w io.Writer, records [][]string) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		for i, f := range rec {
			if i > 0 {
				if _, err := bw.WriteString(","); err != nil {
					return eris.Wrap(err, "csv: write")
				}
			}
			if _, err := bw.WriteString(quoteField(f)); err != nil {
				return eris.Wrap(err, "csv: write")
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return eris.Wrap(err, "csv: write")
		}
	}
	return eris.Wrap(bw.Flush(), "csv: flush")
}

func quoteField(f string) string {
	if !strings.ContainsAny(f, ",\"\n\r") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

// Table pairs a header with its records and resolves columns by name, so
// files with extra or reordered columns still read.
type Table struct {
	Header  []string
	Records [][]string

	index map[string]int
}

// NewTable wraps already-parsed records, treating the first as the header.
func NewTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.New("csv: missing header")
	}
	t := &Table{Header: records[0], Records: records[1:]}
	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		t.index[strings.TrimSpace(name)] = i
	}
	return t, nil
}

// ReadTable parses a CSV file into a Table.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: open %s", path)
	}
	defer f.Close()

	records, err := ParseCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "csv: parse %s", path)
	}
	return NewTable(records)
}

// Get returns the named column of a record, or "" when absent.
func (t *Table) Get(rec []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// Set overwrites the named column of a record in place; false when the
// column is absent.
func (t *Table) Set(rec []string, col, val string) bool {
	i, ok := t.index[col]
	if !ok || i >= len(rec) {
		return false
	}
	rec[i] = val
	return true
}

// Row decodes one record into an AuditRow. Numeric columns that fail to
// parse are a data-quality error for the caller to count and skip.
func (t *Table) Row(rec []string) (model.AuditRow, error) {
	row := model.AuditRow{
		GameID:            t.Get(rec, "gameId"),
		GameName:          t.Get(rec, "gameName"),
		GameReleaseDate:   t.Get(rec, "gameReleaseDate"),
		GameReleaseStatus: model.ReleaseStatus(t.Get(rec, "gameReleaseStatus")),
		CandidateTitle:    t.Get(rec, "candidateTitle"),
		CandidateSource:   t.Get(rec, "candidateSource"),
		IndexerName:       t.Get(rec, "indexerName"),
		Reasons:           t.Get(rec, "reasons"),
		Size:              t.Get(rec, "size"),
		Uploader:          t.Get(rec, "uploader"),
		PublishDate:       t.Get(rec, "publishDate"),
		ReleaseType:       t.Get(rec, "releaseType"),
		Type:              t.Get(rec, "type"),
		ReviewFlag:        t.Get(rec, "reviewFlag"),
		Label:             strings.TrimSpace(t.Get(rec, "label")),
		SourceTrustLevel:  t.Get(rec, "sourceTrustLevel"),
	}

	var err error
	if s := t.Get(rec, "matchScore"); s != "" {
		if row.MatchScore, err = strconv.ParseFloat(s, 64); err != nil {
			return row, eris.Wrapf(err, "csv: matchScore %q", s)
		}
	}
	row.Matched = parseBool(t.Get(rec, "matched"))
	if row.SizeBytes, err = parseInt64(t.Get(rec, "sizeBytes")); err != nil {
		return row, err
	}
	if row.SizeBytes < 0 {
		return row, eris.Errorf("csv: negative sizeBytes %d", row.SizeBytes)
	}
	if row.Seeders, err = parseInt(t.Get(rec, "seeders")); err != nil {
		return row, err
	}
	if row.Leechers, err = parseInt(t.Get(rec, "leechers")); err != nil {
		return row, err
	}
	if row.Grabs, err = parseInt(t.Get(rec, "grabs")); err != nil {
		return row, err
	}
	return row, nil
}

// RowValues serializes an AuditRow in audit column order.
func RowValues(r model.AuditRow) []string {
	return []string{
		r.GameID, r.GameName, r.GameReleaseDate, string(r.GameReleaseStatus),
		r.CandidateTitle, r.CandidateSource, r.IndexerName,
		strconv.FormatFloat(r.MatchScore, 'f', -1, 64),
		strconv.FormatBool(r.Matched),
		r.Reasons,
		r.Size, strconv.FormatInt(r.SizeBytes, 10),
		strconv.Itoa(r.Seeders), strconv.Itoa(r.Leechers), strconv.Itoa(r.Grabs),
		r.Uploader, r.PublishDate, r.ReleaseType, r.Type,
		r.ReviewFlag, r.Label, r.SourceTrustLevel,
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

func parseInt(s string) (int, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, eris.Wrapf(err, "csv: integer %q", s)
	}
	return n, nil
}

func parseInt64(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "csv: integer %q", s)
	}
	return n, nil
}
