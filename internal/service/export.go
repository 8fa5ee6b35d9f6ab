package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
)

// ExportService writes ledger transactions back out as CSV.
type ExportService struct {
	Transactions *repository.TransactionRepo
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo

	Log zerolog.Logger
}

// Export writes the transactions for month ("" meaning all time) to a CSV
// file at path. It returns the number of data rows written; zero means
// nothing matched and no file was created.
func (s *ExportService) Export(ctx context.Context, path, month string) (int, error) {
	txns, err := s.Transactions.ListForExport(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("load transactions: %w", err)
	}
	if len(txns) == 0 {
		return 0, nil
	}
	categories, err := s.Categories.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load categories: %w", err)
	}
	accounts, err := s.Accounts.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load accounts: %w", err)
	}
	accountNames := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		accountNames[a.ID] = a.Name
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Description", "Amount", "Category", "Account", "Notes"}); err != nil {
		return 0, err
	}
	for _, t := range txns {
		var catName string
		if t.CategoryID != nil {
			if c := repository.FindCategoryByID(categories, *t.CategoryID); c != nil {
				catName = c.Name
			}
		}
		record := []string{t.Date, t.Description, t.Amount.String(), catName, accountNames[t.AccountID], t.Notes}
		if err := w.Write(record); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, err
	}

	s.Log.Info().Int("count", len(txns)).Str("path", path).Str("month", month).Msg("exported transactions")
	return len(txns), nil
}

// DefaultExportPath places exports in the home directory as
// budgetui-export-<month>.csv, with "all" standing in when no month filter
// is active.
func DefaultExportPath(month string) string {
	if month == "" {
		month = "all"
	}
	return filepath.Join(homeDir(), fmt.Sprintf("budgetui-export-%s.csv", month))
}

// ExpandPath resolves a leading ~/ to the user's home directory.
func ExpandPath(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	return filepath.Join(homeDir(), rest)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
