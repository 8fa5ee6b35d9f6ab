package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ShaneMarusczak/budgetui/internal/database"
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

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want amount %s, got %s", want, got)
}

func amount(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seededCategoryID looks up one of the default categories by name.
func seededCategoryID(t *testing.T, ctx context.Context, db *sql.DB, name string) int64 {
	t.Helper()
	cats, err := NewCategoryRepo(db).List(ctx)
	require.NoError(t, err)
	cat := FindCategoryByName(cats, name)
	require.NotNil(t, cat, "default category %q should be seeded", name)
	return cat.ID
}

func makeTxn(accountID int64, date, description, original, amt, hash string) Transaction {
	return Transaction{
		AccountID:           accountID,
		Date:                date,
		Description:         description,
		OriginalDescription: original,
		Amount:              amount(amt),
		ImportHash:          hash,
		CreatedAt:           date + "T00:00:00Z",
	}
}

// seedTransactions inserts one checking account with a salary deposit and
// three expenses across January and February 2024.
func seedTransactions(t *testing.T, ctx context.Context, db *sql.DB) int64 {
	t.Helper()
	accountID, err := NewAccountRepo(db).Insert(ctx, NewAccount("Test", AccountChecking, ""))
	require.NoError(t, err)

	txnRepo := NewTransactionRepo(db)
	txns := []Transaction{
		makeTxn(accountID, "2024-01-10", "Starbucks Coffee", "STARBUCKS #123", "-5.25", "hash-1"),
		makeTxn(accountID, "2024-01-15", "Amazon Purchase", "AMZN MKTP US", "-42.99", "hash-2"),
		makeTxn(accountID, "2024-01-20", "Salary Deposit", "ACME CORP PAYROLL", "3000.00", "hash-3"),
		makeTxn(accountID, "2024-02-05", "Grocery Store", "WHOLE FOODS #456", "-87.30", "hash-4"),
	}
	txns[0].Notes = "morning coffee"
	for _, txn := range txns {
		_, err := txnRepo.Insert(ctx, txn)
		require.NoError(t, err)
	}
	return accountID
}

// seedMultiAccountData inserts a checking account (salary and a coffee) and
// a credit card (a charge and its payment).
func seedMultiAccountData(t *testing.T, ctx context.Context, db *sql.DB) (checkingID, creditID int64) {
	t.Helper()
	acctRepo := NewAccountRepo(db)
	checkingID, err := acctRepo.Insert(ctx, NewAccount("Chase Checking", AccountChecking, ""))
	require.NoError(t, err)
	creditID, err = acctRepo.Insert(ctx, NewAccount("Chase Visa", AccountCreditCard, ""))
	require.NoError(t, err)

	txnRepo := NewTransactionRepo(db)
	for _, txn := range []Transaction{
		makeTxn(checkingID, "2024-01-15", "Salary", "ACME PAYROLL", "3000.00", "chk-1"),
		makeTxn(checkingID, "2024-01-18", "Coffee", "STARBUCKS", "-5.25", "chk-2"),
		makeTxn(creditID, "2024-01-10", "Amazon", "AMZN MKTP", "-45.00", "cc-1"),
		makeTxn(creditID, "2024-01-20", "Payment", "PAYMENT THANK YOU", "45.00", "cc-2"),
	} {
		_, err := txnRepo.Insert(ctx, txn)
		require.NoError(t, err)
	}
	return checkingID, creditID
}
