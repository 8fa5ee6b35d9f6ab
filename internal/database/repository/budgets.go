package repository

import (
	"context"
	"database/sql"
)

// BudgetRepo handles per-month category budgets.
type BudgetRepo struct{ db *sql.DB }

func NewBudgetRepo(db *sql.DB) *BudgetRepo { return &BudgetRepo{db: db} }

// Upsert inserts the budget or, when one exists for the same category and
// month, replaces its limit.
func (r *BudgetRepo) Upsert(ctx context.Context, b Budget) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO budgets(category_id, month, limit_amount)
	VALUES(?, ?, ?)
	ON CONFLICT(category_id, month) DO UPDATE SET limit_amount = excluded.limit_amount;
	`, b.CategoryID, b.Month, b.LimitAmount.String())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns budgets, optionally only for one YYYY-MM month.
func (r *BudgetRepo) List(ctx context.Context, month string) ([]Budget, error) {
	query := `SELECT id, category_id, month, limit_amount FROM budgets`
	var args []interface{}
	if month != "" {
		query += ` WHERE month = ?`
		args = append(args, month)
	}
	query += ` ORDER BY month DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Budget
	for rows.Next() {
		var b Budget
		var limit string
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.Month, &limit); err != nil {
			return nil, err
		}
		b.LimitAmount = parseStoredDecimal(limit)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BudgetRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	return err
}
