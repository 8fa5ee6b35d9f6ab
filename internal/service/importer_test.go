package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ShaneMarusczak/budgetui/internal/database"
	"github.com/ShaneMarusczak/budgetui/internal/database/repository"
	"github.com/ShaneMarusczak/budgetui/internal/importer"
)

// newTestDB gives each test a migrated, seeded database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.SeedDefaults(db))
	return db
}

func newImportService(db *sql.DB) *ImportService {
	return &ImportService{
		Transactions: repository.NewTransactionRepo(db),
		Rules:        repository.NewRuleRepo(db),
		Runs:         repository.NewImportRunRepo(db),
	}
}

func categoryID(t *testing.T, ctx context.Context, db *sql.DB, name string) int64 {
	t.Helper()
	cats, err := repository.NewCategoryRepo(db).List(ctx)
	require.NoError(t, err)
	cat := repository.FindCategoryByName(cats, name)
	require.NotNil(t, cat, "default category %q should be seeded", name)
	return cat.ID
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newImportService(db)
	accounts := repository.NewAccountRepo(db)

	accountID, err := accounts.Insert(ctx, repository.NewAccount("Checking", repository.AccountChecking, ""))
	require.NoError(t, err)

	path := writeCSV(t, "txns.csv", "01/15/2024,Coffee Shop,-4.50\n01/16/2024,Lunch,-12.00\n")
	preview, err := svc.LoadPreview(path)
	require.NoError(t, err)
	require.Nil(t, preview.Profile, "a bare three-column file matches no bank layout")
	require.False(t, preview.File.HasHeader)
	require.Len(t, preview.File.Rows, 2)
	t.Log("preview loaded")

	profile := importer.DefaultProfile()
	batch, err := svc.BuildBatch(preview.File.Rows, profile, accountID)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.Equal(t, "2024-01-15", batch[0].Date)
	require.Equal(t, "Coffee Shop", batch[0].Description)

	coffeeID := categoryID(t, ctx, db, "Coffee Shops")
	_, err = svc.Rules.Insert(ctx, repository.NewContainsRule("coffee", coffeeID))
	require.NoError(t, err)

	catRes, err := svc.Categorize(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, 1, catRes.Categorized)
	require.Equal(t, 2, catRes.Total)
	require.Equal(t, 1, catRes.RuleCount)
	require.Empty(t, catRes.Invalid)
	require.NotNil(t, batch[0].CategoryID)
	require.Nil(t, batch[1].CategoryID)
	t.Log("auto-categorize done")

	res, err := svc.Commit(ctx, batch, RunMeta{AccountID: accountID, FileName: "txns.csv", ProfileName: profile.Name})
	require.NoError(t, err)
	require.Equal(t, 2, res.Inserted)
	require.Equal(t, 0, res.Duplicates)
	require.Equal(t, "Imported 2 new transactions (0 duplicates skipped)", res.Status)

	// Re-importing the same file hits the hash dedup for every row.
	batch2, err := svc.BuildBatch(preview.File.Rows, profile, accountID)
	require.NoError(t, err)
	res2, err := svc.Commit(ctx, batch2, RunMeta{AccountID: accountID, FileName: "txns.csv", ProfileName: profile.Name})
	require.NoError(t, err)
	require.Equal(t, 0, res2.Inserted)
	require.Equal(t, 2, res2.Duplicates)
	require.Equal(t, "Imported 0 new transactions (2 duplicates skipped)", res2.Status)

	count, err := svc.Transactions.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	runs, err := svc.Runs.List(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, "txns.csv", runs[0].FileName)
	t.Log("both runs recorded")
}

func TestImportDetectsBankLayout(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newImportService(db)

	path := writeCSV(t, "chase.csv",
		"Transaction Date,Post Date,Description,Category,Type,Amount,Memo\n"+
			"01/15/2024,01/16/2024,STARBUCKS #123,Food,Sale,-4.50,\n")
	preview, err := svc.LoadPreview(path)
	require.NoError(t, err)
	require.NotNil(t, preview.Profile)
	require.Equal(t, "Chase Credit Card", preview.Profile.Name)
	require.True(t, preview.Profile.IsCreditAccount)
	require.True(t, preview.File.HasHeader)
	require.Len(t, preview.File.Rows, 1)
}

func TestCategorizeSurfacesInvalidRegex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newImportService(db)

	shoppingID := categoryID(t, ctx, db, "Shopping")
	_, err := svc.Rules.Insert(ctx, repository.NewRegexRule("([unclosed", shoppingID))
	require.NoError(t, err)
	_, err = svc.Rules.Insert(ctx, repository.NewContainsRule("amazon", shoppingID))
	require.NoError(t, err)

	batch := []repository.Transaction{
		{OriginalDescription: "AMAZON MARKETPLACE"},
		{OriginalDescription: "SOMETHING ELSE"},
	}
	res, err := svc.Categorize(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, []string{"([unclosed"}, res.Invalid)
	require.Equal(t, 1, res.Categorized)
	require.Equal(t, 2, res.RuleCount)
	require.Equal(t, "Warning: invalid regex rule(s): ([unclosed", InvalidRuleWarning(res.Invalid))
}

func TestCategorizeWithoutRulesIsQuiet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := newTestDB(t)
	svc := newImportService(db)

	batch := []repository.Transaction{{OriginalDescription: "ANYTHING"}}
	res, err := svc.Categorize(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, 0, res.RuleCount)
	require.Equal(t, 0, res.Categorized)
	require.Nil(t, batch[0].CategoryID)
}

func TestApplyAccount(t *testing.T) {
	t.Parallel()

	credit := repository.Account{AccountType: repository.AccountCreditCard}
	checking := repository.Account{AccountType: repository.AccountChecking}

	// Hand-mapped layout for a card account flips the signs.
	p := importer.DefaultProfile()
	ApplyAccount(p, credit, false)
	require.True(t, p.IsCreditAccount)
	require.True(t, p.NegateAmounts)

	// A detected layout already carries its own sign convention.
	p = importer.DefaultProfile()
	ApplyAccount(p, credit, true)
	require.True(t, p.IsCreditAccount)
	require.False(t, p.NegateAmounts)

	p = importer.DefaultProfile()
	p.NegateAmounts = true
	ApplyAccount(p, checking, false)
	require.False(t, p.IsCreditAccount)
	require.False(t, p.NegateAmounts, "hand-mapped debit account clears the negate toggle")
}

func TestSuggestRules(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := newImportService(db)

	food := int64(1)
	batch := []repository.Transaction{
		{OriginalDescription: "STARBUCKS #123"},
		{OriginalDescription: "STARBUCKS #456"},
		{OriginalDescription: "CATEGORIZED ALREADY", CategoryID: &food},
		{OriginalDescription: "SHELL OIL 5771"},
		{OriginalDescription: "WHOLE FOODS MKT"},
		{OriginalDescription: "NETFLIX.COM"},
	}

	sugs := svc.SuggestRules(batch, 3)
	require.Equal(t, []string{
		":rule starbucks <category>",
		":rule shell oil <category>",
		":rule whole foods <category>",
	}, sugs)

	status := WithSuggestions("Imported 6 new transactions (0 duplicates skipped)", sugs)
	require.Equal(t,
		"Imported 6 new transactions (0 duplicates skipped). Suggested rules: "+
			":rule starbucks <category>, :rule shell oil <category>, :rule whole foods <category>",
		status)

	require.Empty(t, svc.SuggestRules(nil, 3))
	require.Equal(t, "done", WithSuggestions("done", nil))
}
