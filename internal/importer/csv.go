package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

// ErrEmptyFile is returned by Preview when the CSV contains no records at all.
var ErrEmptyFile = errors.New("CSV file is empty")

// PreviewResult is the raw contents of a CSV, read ahead of parsing so the
// caller can detect the bank layout and show the user what is about to be
// imported.
type PreviewResult struct {
	// Headers holds the first row when it looks like a header row, otherwise
	// synthetic "Column N" names sized to the first data row.
	Headers []string
	// Rows holds every data row. When the file has a header row it is
	// excluded here.
	Rows [][]string
	// HasHeader reports whether Headers came from the file itself. Layout
	// detection needs to know: some banks export no header row at all and
	// are recognized purely by shape.
	HasHeader bool
}

// DetectHeaders returns the header row to feed layout detection: the real
// headers when the file has them, nil when it does not.
func (p *PreviewResult) DetectHeaders() []string {
	if !p.HasHeader {
		return nil
	}
	return p.Headers
}

// FirstRow returns the first data row, or nil when the file has none.
func (p *PreviewResult) FirstRow() []string {
	if len(p.Rows) == 0 {
		return nil
	}
	return p.Rows[0]
}

// PreviewFile opens path and previews its contents.
func PreviewFile(path string) (*PreviewResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Preview(f)
}

// Preview reads the whole CSV from r without interpreting it. Bank exports
// disagree on column counts per row and on whether a header row exists, so
// the reader is permissive and the header is sniffed rather than assumed.
func Preview(r io.Reader) (*PreviewResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	if looksLikeHeader(records[0]) {
		return &PreviewResult{Headers: records[0], Rows: records[1:], HasHeader: true}, nil
	}
	headers := make([]string, len(records[0]))
	for i := range headers {
		headers[i] = fmt.Sprintf("Column %d", i+1)
	}
	return &PreviewResult{Headers: headers, Rows: records, HasHeader: false}, nil
}

// looksLikeHeader reports whether row reads as column names: a row where any
// field parses as a number or a date is taken to be data.
func looksLikeHeader(row []string) bool {
	for _, field := range row {
		trimmed := strings.TrimSpace(field)
		if _, err := ParseDecimal(trimmed); err == nil && trimmed != "" {
			return false
		}
		if _, err := time.Parse("01/02/2006", trimmed); err == nil {
			return false
		}
		if _, err := time.Parse("2006-01-02", trimmed); err == nil {
			return false
		}
	}
	return true
}

// Parse converts previewed rows into transactions for accountID using the
// column mapping in profile. Rows whose date cell is blank are skipped, since
// several banks pad exports with summary or separator lines. Any other
// malformed row aborts the parse: a partially imported file is worse than a
// rejected one.
func Parse(rows [][]string, profile *Profile, accountID int64) ([]repository.Transaction, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	txns := make([]repository.Transaction, 0, len(rows))
	for i, row := range rows {
		if i < profile.SkipRows {
			continue
		}
		dateStr := strings.TrimSpace(cell(row, profile.DateColumn))
		if dateStr == "" {
			continue
		}
		date, err := parseDate(dateStr, profile.DateFormat)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse date %q: %w", i+1, dateStr, err)
		}
		desc := strings.TrimSpace(cell(row, profile.DescriptionColumn))
		amount, err := parseAmount(row, profile)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to parse amount: %w", i+1, err)
		}

		txns = append(txns, repository.Transaction{
			AccountID:           accountID,
			Date:                date.Format("2006-01-02"),
			Description:         desc,
			OriginalDescription: desc,
			Amount:              amount,
			ImportHash:          ComputeHash(accountID, i, dateStr, desc, amount),
			CreatedAt:           now,
		})
	}
	return txns, nil
}

// parseDate tries the profile's format first, then every known bank format.
// Fallbacks run in a fixed order so an ambiguous day/month string resolves
// the same way every import.
func parseDate(s, format string) (time.Time, error) {
	if layout, ok := DateLayout(format); ok {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	for _, fallback := range KnownDateFormats {
		if fallback == format {
			continue
		}
		if d, err := time.Parse(dateLayouts[fallback], s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}

// parseAmount reads the signed amount for one row. Single-amount layouts use
// the mapped column directly. Split debit/credit layouts normalize to
// debits negative and credits positive regardless of how the bank signed
// them, and a row with neither cell populated is zero. Card exports that
// report charges as positive set NegateAmounts to flip the result.
func parseAmount(row []string, profile *Profile) (decimal.Decimal, error) {
	var amount decimal.Decimal
	if profile.AmountColumn != nil {
		parsed, err := ParseDecimal(strings.TrimSpace(cell(row, *profile.AmountColumn)))
		if err != nil {
			return decimal.Decimal{}, err
		}
		amount = parsed
	} else {
		debit, credit := "", ""
		if profile.DebitColumn != nil {
			debit = strings.TrimSpace(cell(row, *profile.DebitColumn))
		}
		if profile.CreditColumn != nil {
			credit = strings.TrimSpace(cell(row, *profile.CreditColumn))
		}
		switch {
		case debit != "":
			parsed, err := ParseDecimal(debit)
			if err != nil {
				return decimal.Decimal{}, err
			}
			amount = parsed.Abs().Neg()
		case credit != "":
			parsed, err := ParseDecimal(credit)
			if err != nil {
				return decimal.Decimal{}, err
			}
			amount = parsed.Abs()
		default:
			amount = decimal.Zero
		}
	}
	if profile.NegateAmounts {
		amount = amount.Neg()
	}
	return amount, nil
}

var decimalCleaner = strings.NewReplacer("$", "", ",", "", "(", "-", ")", "")

// ParseDecimal reads a bank-export numeric cell. Currency symbols and
// thousands separators are stripped, accounting-style parentheses mean
// negative, and a blank cell is zero. A second attempt strips stray quote
// characters, which show up in exports with broken quoting.
func ParseDecimal(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(decimalCleaner.Replace(s))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	if d, err := decimal.NewFromString(cleaned); err == nil {
		return d, nil
	}
	if d, err := decimal.NewFromString(strings.ReplaceAll(cleaned, `"`, "")); err == nil {
		return d, nil
	}
	return decimal.Decimal{}, fmt.Errorf("failed to parse '%s' as decimal", s)
}

// cell returns row[i], or "" when the row is too short. Bank exports
// routinely truncate trailing empty fields.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
