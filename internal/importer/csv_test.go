package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func requireDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "got %s, want %s", got, want)
}

func TestParseDecimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"100.50", "100.50"},
		{"-42.99", "-42.99"},
		{"$1,234.56", "1234.56"},
		{"-$99.99", "-99.99"},
		{"(500.00)", "-500.00"},
		{"", "0"},
		{"  ", "0"},
		{`"100.00"`, "100.00"},
		{"42", "42"},
		{"$1,234,567.89", "1234567.89"},
	}
	for _, tt := range tests {
		got, err := ParseDecimal(tt.in)
		require.NoError(t, err, "ParseDecimal(%q)", tt.in)
		requireDecimalEqual(t, tt.want, got)
	}

	_, err := ParseDecimal("not_a_number")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not_a_number")
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	jan15 := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	d, err := parseDate("01/15/2024", "%m/%d/%Y")
	require.NoError(t, err)
	require.Equal(t, jan15, d)

	d, err = parseDate("2024-01-15", "%Y-%m-%d")
	require.NoError(t, err)
	require.Equal(t, jan15, d)

	// A wrong primary format falls back through the known ones.
	d, err = parseDate("2024-01-15", "%m/%d/%Y")
	require.NoError(t, err)
	require.Equal(t, jan15, d)

	d, err = parseDate("01/15/24", "%m/%d/%y")
	require.NoError(t, err)
	require.Equal(t, jan15, d)

	d, err = parseDate("01-15-2024", "%m-%d-%Y")
	require.NoError(t, err)
	require.Equal(t, jan15, d)

	_, err = parseDate("not-a-date", "%m/%d/%Y")
	require.Error(t, err)

	_, err = parseDate("", "%m/%d/%Y")
	require.Error(t, err)
}

func TestParseAmountSingleColumn(t *testing.T) {
	t.Parallel()
	row := []string{"01/15/2024", "Coffee", "-4.50"}
	got, err := parseAmount(row, DefaultProfile())
	require.NoError(t, err)
	requireDecimalEqual(t, "-4.50", got)
}

func TestParseAmountDebitCreditColumns(t *testing.T) {
	t.Parallel()
	profile := DefaultProfile()
	profile.AmountColumn = nil
	profile.DebitColumn = col(2)
	profile.CreditColumn = col(3)

	got, err := parseAmount([]string{"01/15/2024", "Coffee", "4.50", ""}, profile)
	require.NoError(t, err)
	requireDecimalEqual(t, "-4.50", got)

	got, err = parseAmount([]string{"01/15/2024", "Deposit", "", "1000.00"}, profile)
	require.NoError(t, err)
	requireDecimalEqual(t, "1000.00", got)

	got, err = parseAmount([]string{"01/15/2024", "Something", "", ""}, profile)
	require.NoError(t, err)
	requireDecimalEqual(t, "0", got)
}

func TestParseAmountNegate(t *testing.T) {
	t.Parallel()
	profile := DefaultProfile()
	profile.NegateAmounts = true

	got, err := parseAmount([]string{"01/15/2024", "Coffee", "4.50"}, profile)
	require.NoError(t, err)
	requireDecimalEqual(t, "-4.50", got)
}

func TestPreviewWithHeaders(t *testing.T) {
	t.Parallel()
	csv := "Date,Description,Amount\n01/15/2024,Coffee,-4.50\n01/16/2024,Lunch,-12.00\n"
	p, err := Preview(strings.NewReader(csv))
	require.NoError(t, err)
	require.True(t, p.HasHeader)
	require.Equal(t, []string{"Date", "Description", "Amount"}, p.Headers)
	require.Len(t, p.Rows, 2)
	require.Equal(t, "Coffee", p.Rows[0][1])
	require.Equal(t, p.Headers, p.DetectHeaders())
}

func TestPreviewWithoutHeaders(t *testing.T) {
	t.Parallel()
	csv := "01/15/2024,-4.50,*,123,COFFEE SHOP\n01/16/2024,-12.00,*,456,RESTAURANT\n"
	p, err := Preview(strings.NewReader(csv))
	require.NoError(t, err)
	require.False(t, p.HasHeader)
	require.Equal(t, []string{"Column 1", "Column 2", "Column 3", "Column 4", "Column 5"}, p.Headers)
	require.Len(t, p.Rows, 2)
	require.Nil(t, p.DetectHeaders())
}

func TestPreviewEmptyFile(t *testing.T) {
	t.Parallel()
	_, err := Preview(strings.NewReader(""))
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestPreviewSingleRowWithHeader(t *testing.T) {
	t.Parallel()
	p, err := Preview(strings.NewReader("Date,Description,Amount\n01/15/2024,Coffee,-4.50\n"))
	require.NoError(t, err)
	require.Len(t, p.Headers, 3)
	require.Len(t, p.Rows, 1)
}

func TestPreviewQuotedFields(t *testing.T) {
	t.Parallel()
	p, err := Preview(strings.NewReader("Date,Description,Amount\n01/15/2024,\"Coffee, Shop\",-4.50\n"))
	require.NoError(t, err)
	require.Equal(t, "Coffee, Shop", p.Rows[0][1])
}

func TestPreviewFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Description,Amount\n01/15/2024,Coffee,-4.50\n"), 0o644))

	p, err := PreviewFile(path)
	require.NoError(t, err)
	require.True(t, p.HasHeader)
	require.Len(t, p.Rows, 1)

	_, err = PreviewFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestPreviewFeedsDetection(t *testing.T) {
	t.Parallel()

	// A headerless export must still be recognizable by shape.
	csv := "01/15/2024,-4.50,*,123,COFFEE SHOP\n"
	p, err := Preview(strings.NewReader(csv))
	require.NoError(t, err)
	profile := Detect(p.DetectHeaders(), p.FirstRow())
	require.NotNil(t, profile)
	require.Equal(t, "Wells Fargo", profile.Name)
}

func TestParseBasicRows(t *testing.T) {
	t.Parallel()
	rows := [][]string{
		{"01/15/2024", "Coffee", "-4.50"},
		{"01/16/2024", "Lunch", "-12.00"},
	}
	txns, err := Parse(rows, DefaultProfile(), 1)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	require.Equal(t, "2024-01-15", txns[0].Date)
	require.Equal(t, "Coffee", txns[0].Description)
	require.Equal(t, "Coffee", txns[0].OriginalDescription)
	requireDecimalEqual(t, "-4.50", txns[0].Amount)
	require.Equal(t, int64(1), txns[0].AccountID)
	require.NotEmpty(t, txns[0].CreatedAt)
	_, err = time.Parse(time.RFC3339, txns[0].CreatedAt)
	require.NoError(t, err)
}

func TestParseSkipsEmptyDates(t *testing.T) {
	t.Parallel()
	rows := [][]string{
		{"01/15/2024", "Coffee", "-4.50"},
		{"", "", ""},
		{"01/16/2024", "Lunch", "-12.00"},
	}
	txns, err := Parse(rows, DefaultProfile(), 1)
	require.NoError(t, err)
	require.Len(t, txns, 2)
}

func TestParseSkipRows(t *testing.T) {
	t.Parallel()
	profile := DefaultProfile()
	profile.SkipRows = 1
	rows := [][]string{
		{"SKIP THIS ROW", "ignore", "0"},
		{"01/15/2024", "Coffee", "-4.50"},
	}
	txns, err := Parse(rows, profile, 1)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	require.Equal(t, "Coffee", txns[0].Description)
}

func TestParseISODates(t *testing.T) {
	t.Parallel()
	profile := DefaultProfile()
	profile.DateFormat = "%Y-%m-%d"
	txns, err := Parse([][]string{{"2024-01-15", "Coffee", "-4.50"}}, profile, 1)
	require.NoError(t, err)
	require.Equal(t, "2024-01-15", txns[0].Date)
}

func TestParseGeneratesImportHash(t *testing.T) {
	t.Parallel()
	txns, err := Parse([][]string{{"01/15/2024", "Coffee", "-4.50"}}, DefaultProfile(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, txns[0].ImportHash)
	require.Len(t, txns[0].ImportHash, 16)
}

func TestParseSetsAccountID(t *testing.T) {
	t.Parallel()
	txns, err := Parse([][]string{{"01/15/2024", "Coffee", "-4.50"}}, DefaultProfile(), 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), txns[0].AccountID)
}

func TestParseEmptyRows(t *testing.T) {
	t.Parallel()
	txns, err := Parse(nil, DefaultProfile(), 1)
	require.NoError(t, err)
	require.Empty(t, txns)
}

func TestParseRowErrors(t *testing.T) {
	t.Parallel()

	_, err := Parse([][]string{
		{"01/15/2024", "Coffee", "-4.50"},
		{"not-a-date", "Lunch", "-12.00"},
	}, DefaultProfile(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), `row 2: failed to parse date "not-a-date"`)

	_, err = Parse([][]string{
		{"01/15/2024", "Coffee", "garbage"},
	}, DefaultProfile(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 1: failed to parse amount")
}
