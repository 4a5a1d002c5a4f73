package audit

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questline/gamematch/internal/model"
)

func TestParseCSV_Simple(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("a,b,c\n1,2,3\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"1", "2", "3"}}, records)
}

func TestParseCSV_QuotedComma(t *testing.T) {
	records, err := ParseCSV(strings.NewReader(`title,size` + "\n" + `"Total War: WARHAMMER III, Deluxe",50 GB` + "\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Total War: WARHAMMER III, Deluxe", records[1][0])
}

func TestParseCSV_EmbeddedNewlineAndQuote(t *testing.T) {
	in := "reasons\n\"line one\nline \"\"two\"\"\"\n"
	records, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "line one\nline \"two\"", records[1][0])
}

func TestParseCSV_CRLF(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("a,b\r\n1,2\r\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, records)
}

func TestParseCSV_NoTrailingNewline(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("a,b\n1,2"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, records)
}

func TestParseCSV_UnterminatedQuote(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("a\n\"unterminated...\ntruncated file"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}

func TestParseCSV_EmptyFields(t *testing.T) {
	records, err := ParseCSV(strings.NewReader("a,,c\n,,\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "", "c"}, {"", "", ""}}, records)
}

func TestWriteCSV_RoundTripsProblematicFields(t *testing.T) {
	records := [][]string{
		{"title", "reasons"},
		{`Baldur's "Gate" 3, GOG`, "exact name match|all main keywords present"},
		{"multi\nline", ""},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	back, err := ParseCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, records, back)
}

func TestTable_ResolvesColumnsByName(t *testing.T) {
	// Reordered and extra columns still read.
	records := [][]string{
		{"matched", "extraCol", "gameId", "candidateTitle", "matchScore"},
		{"true", "x", "g1", "Elden Ring", "87.5"},
	}
	table, err := NewTable(records)
	require.NoError(t, err)

	row, err := table.Row(table.Records[0])
	require.NoError(t, err)
	assert.Equal(t, "g1", row.GameID)
	assert.Equal(t, "Elden Ring", row.CandidateTitle)
	assert.Equal(t, 87.5, row.MatchScore)
	assert.True(t, row.Matched)
	assert.Empty(t, table.Get(table.Records[0], "uploader"))
}

func TestTable_RowRejectsBadNumbers(t *testing.T) {
	table, err := NewTable([][]string{
		{"gameId", "sizeBytes"},
		{"g1", "lots"},
		{"g2", "-5"},
	})
	require.NoError(t, err)

	_, err = table.Row(table.Records[0])
	require.Error(t, err)

	_, err = table.Row(table.Records[1])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative sizeBytes")
}

func TestTable_Set(t *testing.T) {
	table, err := NewTable([][]string{{"a", "b"}, {"1", "2"}})
	require.NoError(t, err)

	assert.True(t, table.Set(table.Records[0], "b", "9"))
	assert.Equal(t, "9", table.Get(table.Records[0], "b"))
	assert.False(t, table.Set(table.Records[0], "missing", "x"))
}

func TestRowValues_RoundTrip(t *testing.T) {
	row := model.AuditRow{
		GameID:            "g1",
		GameName:          "Elden Ring",
		GameReleaseDate:   "2022-02-25",
		GameReleaseStatus: model.ReleaseStatusReleased,
		CandidateTitle:    "ELDEN.RING-CODEX",
		CandidateSource:   "rss",
		MatchScore:        87.5,
		Matched:           true,
		Reasons:           "exact name match|all main keywords present",
		SizeBytes:         48318382080,
		Seeders:           120,
		SourceTrustLevel:  "trusted",
	}

	path := filepath.Join(t.TempDir(), "audit.csv")
	require.NoError(t, WriteRecords(path, [][]string{Columns(), RowValues(row)}))

	rows, skipped, err := ReadAuditRows(path)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, rows, 1)
	assert.Equal(t, row, rows[0])
}

func TestReadAuditRows_SkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.csv")
	content := "gameId,candidateTitle,sizeBytes\n" +
		"g1,Elden Ring,100\n" +
		"g2,Broken Row,not-a-number\n" +
		"g3,Hades II,200\n"
	require.NoError(t, WriteRecords(path, mustParse(t, content)))

	rows, skipped, err := ReadAuditRows(path)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 2)
	assert.Equal(t, "g1", rows[0].GameID)
	assert.Equal(t, "g3", rows[1].GameID)
}

func mustParse(t *testing.T, s string) [][]string {
	t.Helper()
	records, err := ParseCSV(strings.NewReader(s))
	require.NoError(t, err)
	return records
}
