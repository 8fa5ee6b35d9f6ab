package importer

// Profile describes how to read one bank's CSV layout: which columns hold
// the date, description and amount, how dates are formatted, and which sign
// convention the export uses. Exactly one of AmountColumn or the
// debit/credit pair is the active amount source; with all three unset the
// amount parses to zero.
type Profile struct {
	Name              string
	DateColumn        int
	DescriptionColumn int
	AmountColumn      *int
	DebitColumn       *int
	CreditColumn      *int
	DateFormat        string
	HasHeader         bool
	SkipRows          int
	NegateAmounts     bool
	IsCreditAccount   bool
}

// KnownDateFormats lists the strptime-style date formats the parser
// understands, in the order they are tried as fallbacks.
var KnownDateFormats = []string{
	"%m/%d/%Y",
	"%Y-%m-%d",
	"%m-%d-%Y",
	"%m/%d/%y",
	"%d/%m/%Y",
}

var dateLayouts = map[string]string{
	"%m/%d/%Y": "01/02/2006",
	"%Y-%m-%d": "2006-01-02",
	"%m-%d-%Y": "01-02-2006",
	"%m/%d/%y": "01/02/06",
	"%d/%m/%Y": "02/01/2006",
}

// DateLayout converts a strptime-style format to its Go time layout.
func DateLayout(format string) (string, bool) {
	layout, ok := dateLayouts[format]
	return layout, ok
}

// DefaultProfile returns the manual-mapping fallback: date, description and
// amount in the first three columns with US-style dates.
func DefaultProfile() *Profile {
	return &Profile{
		Name:              "Custom",
		DateColumn:        0,
		DescriptionColumn: 1,
		AmountColumn:      col(2),
		DateFormat:        "%m/%d/%Y",
		HasHeader:         true,
	}
}

func col(i int) *int { return &i }
