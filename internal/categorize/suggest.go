package categorize

import "strings"

// Suggest derives a short reusable contains pattern from a raw merchant
// description: digits and store-number noise are stripped and the first two
// tokens kept, so "STARBUCKS COFFEE #4821" yields "starbucks coffee". It
// never fails; when nothing survives cleaning the whole description is
// returned lower-cased.
func Suggest(description string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, strings.ToUpper(description))
	cleaned = strings.ReplaceAll(cleaned, "#", "")
	cleaned = strings.ReplaceAll(cleaned, "*", " ")
	cleaned = strings.TrimSpace(cleaned)

	words := strings.Fields(cleaned)
	var pattern string
	switch {
	case len(words) >= 2:
		pattern = words[0] + " " + words[1]
	case len(words) == 1:
		pattern = words[0]
	default:
		pattern = description
	}
	return strings.ToLower(pattern)
}
