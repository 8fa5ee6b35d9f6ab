package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
)

// CategorySpend is one category's summed expenses.
type CategorySpend struct {
	Category string
	Total    decimal.Decimal
}

// MonthTotals is one month's income and expense sums. Expenses stay
// negative.
type MonthTotals struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// AnalyticsRepo answers aggregate queries over transactions. Amounts are
// summed as stored TEXT so decimal precision survives; sign tests go
// through CAST(... AS REAL).
type AnalyticsRepo struct{ db *sql.DB }

func NewAnalyticsRepo(db *sql.DB) *AnalyticsRepo { return &AnalyticsRepo{db: db} }

// SpendingByCategory sums expenses per category, biggest spend first
// (most negative sum sorts lowest). Uncategorized rows group under
// "Uncategorized".
func (r *AnalyticsRepo) SpendingByCategory(ctx context.Context, month string) ([]CategorySpend, error) {
	query := `
	SELECT COALESCE(c.name, 'Uncategorized'), CAST(SUM(t.amount) AS TEXT)
	FROM transactions t
	LEFT JOIN categories c ON t.category_id = c.id
	WHERE CAST(t.amount AS REAL) < 0`
	var args []interface{}
	if month != "" {
		query += " AND t.date LIKE ?"
		args = append(args, month+"%")
	}
	query += `
	GROUP BY COALESCE(c.name, 'Uncategorized')
	ORDER BY SUM(t.amount) ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategorySpend
	for rows.Next() {
		var cs CategorySpend
		var total string
		if err := rows.Scan(&cs.Category, &total); err != nil {
			return nil, err
		}
		cs.Total = parseStoredDecimal(total)
		out = append(out, cs)
	}
	return out, rows.Err()
}

// MonthlyTotals returns the income and expense sums, optionally limited to
// a YYYY-MM month.
func (r *AnalyticsRepo) MonthlyTotals(ctx context.Context, month string) (income, expenses decimal.Decimal, err error) {
	sum := func(sign string) (decimal.Decimal, error) {
		query := `SELECT CAST(COALESCE(SUM(amount), 0) AS TEXT) FROM transactions WHERE CAST(amount AS REAL) ` + sign + ` 0`
		var args []interface{}
		if month != "" {
			query += " AND date LIKE ?"
			args = append(args, month+"%")
		}
		return r.sumText(ctx, query, args...)
	}
	if income, err = sum(">"); err != nil {
		return
	}
	expenses, err = sum("<")
	return
}

// NetWorth sums every transaction across all accounts.
func (r *AnalyticsRepo) NetWorth(ctx context.Context) (decimal.Decimal, error) {
	return r.sumText(ctx, `SELECT CAST(COALESCE(SUM(amount), 0) AS TEXT) FROM transactions`)
}

// MonthlyTotalsByAccountType is MonthlyTotals restricted to accounts of the
// given types.
func (r *AnalyticsRepo) MonthlyTotalsByAccountType(ctx context.Context, month string, types []AccountType) (income, expenses decimal.Decimal, err error) {
	ph, typeArgs := accountTypeArgs(types)
	sum := func(sign string) (decimal.Decimal, error) {
		query := `
		SELECT CAST(COALESCE(SUM(t.amount), 0) AS TEXT)
		FROM transactions t JOIN accounts a ON t.account_id = a.id
		WHERE CAST(t.amount AS REAL) ` + sign + ` 0`
		var args []interface{}
		if month != "" {
			query += " AND t.date LIKE ?"
			args = append(args, month+"%")
		}
		query += " AND a.account_type IN (" + ph + ")"
		args = append(args, typeArgs...)
		return r.sumText(ctx, query, args...)
	}
	if income, err = sum(">"); err != nil {
		return
	}
	expenses, err = sum("<")
	return
}

// BalanceByAccountType sums all transactions in accounts of the given types.
func (r *AnalyticsRepo) BalanceByAccountType(ctx context.Context, types []AccountType) (decimal.Decimal, error) {
	ph, args := accountTypeArgs(types)
	query := `
	SELECT CAST(COALESCE(SUM(t.amount), 0) AS TEXT)
	FROM transactions t JOIN accounts a ON t.account_id = a.id
	WHERE a.account_type IN (` + ph + `)`
	return r.sumText(ctx, query, args...)
}

// AccountMonthlyTotals returns one account's income and expense sums,
// optionally limited to a YYYY-MM month.
func (r *AnalyticsRepo) AccountMonthlyTotals(ctx context.Context, accountID int64, month string) (income, expenses decimal.Decimal, err error) {
	sum := func(sign string) (decimal.Decimal, error) {
		query := `SELECT CAST(COALESCE(SUM(amount), 0) AS TEXT) FROM transactions WHERE account_id = ? AND CAST(amount AS REAL) ` + sign + ` 0`
		args := []interface{}{accountID}
		if month != "" {
			query += " AND date LIKE ?"
			args = append(args, month+"%")
		}
		return r.sumText(ctx, query, args...)
	}
	if income, err = sum(">"); err != nil {
		return
	}
	expenses, err = sum("<")
	return
}

// AccountBalance sums all of one account's transactions.
func (r *AnalyticsRepo) AccountBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return r.sumText(ctx, `SELECT CAST(COALESCE(SUM(amount), 0) AS TEXT) FROM transactions WHERE account_id = ?`, accountID)
}

// MonthlyTrend returns up to months of per-month income/expense sums,
// oldest first.
func (r *AnalyticsRepo) MonthlyTrend(ctx context.Context, months int) ([]MonthTotals, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT strftime('%Y-%m', date) AS month,
	       CAST(SUM(CASE WHEN CAST(amount AS REAL) > 0 THEN amount ELSE 0 END) AS TEXT) AS income,
	       CAST(SUM(CASE WHEN CAST(amount AS REAL) < 0 THEN amount ELSE 0 END) AS TEXT) AS expenses
	FROM transactions
	GROUP BY month
	ORDER BY month DESC
	LIMIT ?;
	`, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MonthTotals
	for rows.Next() {
		var mt MonthTotals
		var income, expenses string
		if err := rows.Scan(&mt.Month, &income, &expenses); err != nil {
			return nil, err
		}
		mt.Income = parseStoredDecimal(income)
		mt.Expenses = parseStoredDecimal(expenses)
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *AnalyticsRepo) sumText(ctx context.Context, query string, args ...interface{}) (decimal.Decimal, error) {
	var s string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&s); err != nil {
		return decimal.Zero, err
	}
	return parseStoredDecimal(s), nil
}

func accountTypeArgs(types []AccountType) (string, []interface{}) {
	ph := make([]string, len(types))
	args := make([]interface{}, len(types))
	for i, t := range types {
		ph[i] = "?"
		args[i] = string(t)
	}
	return strings.Join(ph, ","), args
}
