// Package service orchestrates the import, export and maintenance flows on
// top of the repositories, so the TUI and the headless CLI share one
// implementation.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ShaneMarusczak/budgetui/internal/categorize"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/importer"
)

// ImportService drives a CSV import from file preview through commit.
type ImportService struct {
	Transactions *repository.TransactionRepo
	Rules        *repository.RuleRepo
	Runs         *repository.ImportRunRepo

	Log zerolog.Logger
}

// ImportPreview pairs the raw file contents with the outcome of bank layout
// detection. Profile is nil when no known layout matched and the user maps
// columns by hand.
type ImportPreview struct {
	File    *importer.PreviewResult
	Profile *importer.Profile
}

// LoadPreview reads the CSV at path and runs bank layout detection on it.
func (s *ImportService) LoadPreview(path string) (ImportPreview, error) {
	file, err := importer.PreviewFile(path)
	if err != nil {
		return ImportPreview{}, err
	}
	profile := importer.Detect(file.DetectHeaders(), file.FirstRow())
	if profile != nil {
		s.Log.Info().Str("file", path).Str("bank", profile.Name).Msg("detected bank layout")
	} else {
		s.Log.Info().Str("file", path).Int("rows", len(file.Rows)).Msg("no bank layout matched")
	}
	return ImportPreview{File: file, Profile: profile}, nil
}

// BuildBatch parses the previewed rows into transactions for accountID.
func (s *ImportService) BuildBatch(rows [][]string, profile *importer.Profile, accountID int64) ([]repository.Transaction, error) {
	txns, err := importer.Parse(rows, profile, accountID)
	if err != nil {
		return nil, err
	}
	s.Log.Info().Int("rows", len(rows)).Int("transactions", len(txns)).Str("profile", profile.Name).Msg("parsed import batch")
	return txns, nil
}

// ApplyAccount sets the profile's credit flags from the account the rows
// will land in. When the layout was hand-mapped rather than detected,
// NegateAmounts follows the account type too: card exports typically list
// charges as positive, and detected layouts already encode their own sign
// convention.
func ApplyAccount(profile *importer.Profile, acct repository.Account, detected bool) {
	isCredit := acct.AccountType.IsCredit()
	profile.IsCreditAccount = isCredit
	if !detected {
		profile.NegateAmounts = isCredit
	}
}

// CategorizeResult reports one auto-categorization pass over a batch.
type CategorizeResult struct {
	// Categorized counts the batch rows holding a category after the pass,
	// including rows the user assigned by hand beforehand.
	Categorized int
	Total       int
	// Invalid lists regex rule patterns that failed to compile and were
	// skipped.
	Invalid []string
	// RuleCount is how many rules were loaded. With zero rules the pass is a
	// no-op and callers stay quiet about it.
	RuleCount int
}

// Categorize loads the current rules and fills in categories for batch rows
// that have none yet. Rows already categorized are left alone.
func (s *ImportService) Categorize(ctx context.Context, batch []repository.Transaction) (CategorizeResult, error) {
	rules, err := s.Rules.List(ctx)
	if err != nil {
		return CategorizeResult{}, fmt.Errorf("load rules: %w", err)
	}
	res := CategorizeResult{Total: len(batch), RuleCount: len(rules)}
	if len(rules) == 0 {
		return res, nil
	}

	matcher, invalid := categorize.NewCategorizer(rules)
	res.Invalid = invalid
	if len(invalid) > 0 {
		s.Log.Warn().Strs("patterns", invalid).Msg("skipping invalid regex rules")
	}
	matcher.CategorizeBatch(batch)
	for _, t := range batch {
		if t.CategoryID != nil {
			res.Categorized++
		}
	}
	s.Log.Info().Int("categorized", res.Categorized).Int("total", res.Total).Msg("auto-categorized batch")
	return res, nil
}

// InvalidRuleWarning formats the operator warning for rule patterns that
// failed to compile.
func InvalidRuleWarning(patterns []string) string {
	return "Warning: invalid regex rule(s): " + strings.Join(patterns, ", ")
}

// RunMeta identifies the import being committed for the audit trail.
type RunMeta struct {
	AccountID   int64
	FileName    string
	ProfileName string
}

// CommitResult reports a committed import.
type CommitResult struct {
	Inserted   int
	Duplicates int
	Status     string
}

// Commit inserts the batch, skipping rows whose import hash already exists
// in the ledger, and records an import run for the audit trail.
func (s *ImportService) Commit(ctx context.Context, batch []repository.Transaction, meta RunMeta) (CommitResult, error) {
	inserted, err := s.Transactions.InsertBatch(ctx, batch)
	if err != nil {
		return CommitResult{}, fmt.Errorf("insert batch: %w", err)
	}
	res := CommitResult{Inserted: inserted, Duplicates: len(batch) - inserted}
	res.Status = fmt.Sprintf("Imported %d new transactions (%d duplicates skipped)", res.Inserted, res.Duplicates)

	run := repository.ImportRun{
		ID:          uuid.NewString(),
		AccountID:   meta.AccountID,
		FileName:    meta.FileName,
		ProfileName: meta.ProfileName,
		Imported:    res.Inserted,
		Duplicates:  res.Duplicates,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Runs.Insert(ctx, run); err != nil {
		// the batch is already committed; the audit row is best-effort
		s.Log.Warn().Err(err).Msg("failed to record import run")
	}

	s.Log.Info().
		Int("inserted", res.Inserted).
		Int("duplicates", res.Duplicates).
		Str("file", meta.FileName).
		Str("profile", meta.ProfileName).
		Msg("import committed")
	return res, nil
}

// SuggestRules derives up to limit contains-rule suggestions from batch rows
// still lacking a category, formatted ready to paste into the command bar.
// Duplicate patterns collapse to one suggestion.
func (s *ImportService) SuggestRules(batch []repository.Transaction, limit int) []string {
	seen := make(map[string]bool, limit)
	var out []string
	for _, t := range batch {
		if len(out) >= limit {
			break
		}
		if t.CategoryID != nil {
			continue
		}
		pattern := categorize.Suggest(t.OriginalDescription)
		if pattern == "" || seen[pattern] {
			continue
		}
		seen[pattern] = true
		out = append(out, fmt.Sprintf(":rule %s <category>", pattern))
	}
	return out
}

// WithSuggestions appends rule suggestions to a commit status line.
func WithSuggestions(status string, suggestions []string) string {
	if len(suggestions) == 0 {
		return status
	}
	return status + ". Suggested rules: " + strings.Join(suggestions, ", ")
}
