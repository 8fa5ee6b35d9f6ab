// Package categorize matches transaction descriptions against user-defined
// rules and drives the interactive assignment of whatever the rules miss.
package categorize

import (
	"regexp"
	"strings"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

type ruleKind int

const (
	kindContains ruleKind = iota
	kindRegex
)

type compiledRule struct {
	kind       ruleKind
	pattern    string         // lower-cased pattern for contains rules
	re         *regexp.Regexp // compiled pattern for regex rules
	categoryID int64
}

// Categorizer assigns category ids by matching descriptions against an
// ordered rule list. Rules are expected already sorted by descending
// priority; the first matching rule wins.
type Categorizer struct {
	rules []compiledRule
}

// NewCategorizer compiles the rule list. Regex patterns are compiled once,
// case-insensitively. Patterns that fail to compile are dropped from the
// matcher and returned so the caller can warn the operator instead of
// aborting the import.
func NewCategorizer(rules []repository.ImportRule) (*Categorizer, []string) {
	compiled := make([]compiledRule, 0, len(rules))
	var invalid []string
	for _, r := range rules {
		if !r.IsRegex {
			compiled = append(compiled, compiledRule{
				kind:       kindContains,
				pattern:    strings.ToLower(r.Pattern),
				categoryID: r.CategoryID,
			})
			continue
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			invalid = append(invalid, r.Pattern)
			continue
		}
		compiled = append(compiled, compiledRule{
			kind:       kindRegex,
			re:         re,
			categoryID: r.CategoryID,
		})
	}
	return &Categorizer{rules: compiled}, invalid
}

// Categorize returns the category id for description, or false when no rule
// matches. Contains rules compare lower-cased on both sides; regex rules run
// against the original description.
func (c *Categorizer) Categorize(description string) (int64, bool) {
	lower := strings.ToLower(description)
	for _, r := range c.rules {
		switch r.kind {
		case kindContains:
			if strings.Contains(lower, r.pattern) {
				return r.categoryID, true
			}
		case kindRegex:
			if r.re.MatchString(description) {
				return r.categoryID, true
			}
		}
	}
	return 0, false
}

// CategorizeBatch fills in categories for transactions that do not have one
// yet. Matching uses the original description, so renaming a transaction
// never breaks its rule. Already categorized rows are left alone, which
// makes repeated invocation a no-op.
func (c *Categorizer) CategorizeBatch(txns []repository.Transaction) {
	for i := range txns {
		if txns[i].CategoryID != nil {
			continue
		}
		if id, ok := c.Categorize(txns[i].OriginalDescription); ok {
			txns[i].CategoryID = &id
		}
	}
}
