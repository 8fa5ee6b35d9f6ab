package importer

import "strings"

// fingerprint pairs a header/shape predicate with a profile builder. The
// list is ordered: more specific fingerprints sit above looser ones and the
// first hit wins.
type fingerprint struct {
	match func(h, firstRow []string) bool
	build func(h []string) *Profile
}

// Detect inspects the column headers, plus the first data row for headerless
// exports, and returns the matching bank profile or nil. Header comparison
// is case-insensitive on trimmed names. Pure function of its inputs.
func Detect(headers, firstRow []string) *Profile {
	h := make([]string, len(headers))
	for i, s := range headers {
		h[i] = strings.ToLower(strings.TrimSpace(s))
	}
	for _, fp := range fingerprints {
		if fp.match(h, firstRow) {
			return fp.build(h)
		}
	}
	return nil
}

var fingerprints = []fingerprint{
	{
		// Wells Fargo exports carry no header row; the shape is five
		// columns with a literal "*" marker in the third.
		match: func(h, firstRow []string) bool {
			return len(h) == 0 && len(firstRow) == 5 && strings.TrimSpace(firstRow[2]) == "*"
		},
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Wells Fargo",
				DateColumn:        0,
				DescriptionColumn: 4,
				AmountColumn:      col(1),
				DateFormat:        "%m/%d/%Y",
			}
		},
	},
	{
		match: func(h, _ []string) bool { return anyContains(h, "card member") },
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "American Express",
				DateColumn:        colIndexOr(h, "date", 0),
				DescriptionColumn: colIndexOr(h, "description", 1),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
				// AmEx inverts the usual polarity: charges positive,
				// payments negative.
				NegateAmounts:   true,
				IsCreditAccount: true,
			}
		},
	},
	{
		match: func(h, _ []string) bool { return hasHeader(h, "reference number") && hasHeader(h, "address") },
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Bank of America Credit Card",
				DateColumn:        colIndexOr(h, "posted date", 0),
				DescriptionColumn: colIndexOr(h, "payee", 2),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
				IsCreditAccount:   true,
			}
		},
	},
	{
		match: func(h, _ []string) bool { return anyContains(h, "running bal") },
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Bank of America Checking",
				DateColumn:        colIndexOr(h, "date", 0),
				DescriptionColumn: colIndexOr(h, "description", 1),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
			}
		},
	},
	{
		match: func(h, _ []string) bool { return hasHeader(h, "original description") },
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "USAA",
				DateColumn:        colIndexOr(h, "date", 0),
				DescriptionColumn: colIndexOr(h, "description", 1),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
			}
		},
	},
	{
		match: func(h, _ []string) bool {
			return len(h) > 0 && h[0] == "status" && hasHeader(h, "debit") && hasHeader(h, "credit")
		},
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Citi",
				DateColumn:        colIndexOr(h, "date", 1),
				DescriptionColumn: colIndexOr(h, "description", 2),
				DebitColumn:       colIndex(h, "debit"),
				CreditColumn:      colIndex(h, "credit"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
				IsCreditAccount:   true,
			}
		},
	},
	{
		match: func(h, _ []string) bool { return hasHeader(h, "card no.") },
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Capital One Credit Card",
				DateColumn:        colIndexOr(h, "transaction date", 0),
				DescriptionColumn: colIndexOr(h, "description", 3),
				DebitColumn:       colIndex(h, "debit"),
				CreditColumn:      colIndex(h, "credit"),
				DateFormat:        "%Y-%m-%d",
				HasHeader:         true,
				IsCreditAccount:   true,
			}
		},
	},
	{
		match: func(h, _ []string) bool {
			return len(h) > 0 && h[0] == "account number" && hasHeader(h, "transaction amount")
		},
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Capital One Checking",
				DateColumn:        colIndexOr(h, "transaction date", 1),
				DescriptionColumn: colIndexOr(h, "transaction description", 4),
				AmountColumn:      colIndex(h, "transaction amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
			}
		},
	},
	{
		match: func(h, _ []string) bool {
			return anyContains(h, "trans. date") || anyContains(h, "trans.date")
		},
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Discover",
				DateColumn:        0,
				DescriptionColumn: colIndexOr(h, "description", 2),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
				IsCreditAccount:   true,
			}
		},
	},
	{
		match: func(h, _ []string) bool { return hasHeader(h, "details") && anyContains(h, "check or slip") },
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Chase Checking",
				DateColumn:        colIndexOr(h, "posting date", 1),
				DescriptionColumn: colIndexOr(h, "description", 2),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
			}
		},
	},
	{
		match: func(h, _ []string) bool {
			return hasHeader(h, "transaction date") && hasHeader(h, "post date") && hasHeader(h, "type")
		},
		build: func(h []string) *Profile {
			return &Profile{
				Name:              "Chase Credit Card",
				DateColumn:        colIndexOr(h, "transaction date", 0),
				DescriptionColumn: colIndexOr(h, "description", 2),
				AmountColumn:      colIndex(h, "amount"),
				DateFormat:        "%m/%d/%Y",
				HasHeader:         true,
				IsCreditAccount:   true,
			}
		},
	},
}

func hasHeader(h []string, name string) bool {
	for _, s := range h {
		if s == name {
			return true
		}
	}
	return false
}

func anyContains(h []string, sub string) bool {
	for _, s := range h {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func colIndex(h []string, name string) *int {
	for i, s := range h {
		if s == name {
			return col(i)
		}
	}
	return nil
}

func colIndexOr(h []string, name string, def int) int {
	if i := colIndex(h, name); i != nil {
		return *i
	}
	return def
}
