package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionFilters narrows List results. Zero values mean no filter;
// Month is a YYYY-MM prefix.
type TransactionFilters struct {
	Limit      int
	Offset     int
	AccountID  *int64
	CategoryID *int64
	Search     string
	Month      string
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txnColumns = `t.id, t.account_id, t.date, t.description, t.original_description, t.amount, t.category_id, t.notes, t.is_transfer, t.import_hash, t.created_at`

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 account_id, date, description, original_description, amount, category_id, notes, is_transfer, import_hash, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		t.AccountID, t.Date, t.Description, t.OriginalDescription, t.Amount.String(),
		t.CategoryID, t.Notes, t.IsTransfer, t.ImportHash, t.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// InsertBatch inserts txns in one transaction, skipping rows whose non-empty
// import_hash already exists. Returns the number actually inserted.
func (r *TransactionRepo) InsertBatch(ctx context.Context, txns []Transaction) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	inserted := 0
	for _, t := range txns {
		if t.ImportHash != "" {
			var exists bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS(SELECT 1 FROM transactions WHERE import_hash = ? AND import_hash != '')`,
				t.ImportHash).Scan(&exists)
			if err != nil {
				return 0, err
			}
			if exists {
				continue
			}
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions(
		 account_id, date, description, original_description, amount, category_id, notes, is_transfer, import_hash, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
		`,
			t.AccountID, t.Date, t.Description, t.OriginalDescription, t.Amount.String(),
			t.CategoryID, t.Notes, t.IsTransfer, t.ImportHash, t.CreatedAt)
		if err != nil {
			return 0, err
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	query := "SELECT " + txnColumns + " FROM transactions t WHERE 1=1"
	var args []interface{}

	if f.AccountID != nil {
		query += " AND t.account_id = ?"
		args = append(args, *f.AccountID)
	}
	if f.CategoryID != nil {
		query += " AND t.category_id = ?"
		args = append(args, *f.CategoryID)
	}
	if f.Search != "" {
		pat := "%" + escapeLike(f.Search) + "%"
		query += ` AND (t.description LIKE ? ESCAPE '\' OR t.original_description LIKE ? ESCAPE '\' OR t.notes LIKE ? ESCAPE '\')`
		args = append(args, pat, pat, pat)
	}
	if f.Month != "" {
		query += " AND t.date LIKE ?"
		args = append(args, f.Month+"%")
	}

	query += " ORDER BY t.date DESC, t.id DESC"

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListForExport returns every transaction, optionally limited to a YYYY-MM
// month, newest first.
func (r *TransactionRepo) ListForExport(ctx context.Context, month string) ([]Transaction, error) {
	query := "SELECT " + txnColumns + " FROM transactions t"
	var args []interface{}
	if month != "" {
		query += " WHERE t.date LIKE ?"
		args = append(args, month+"%")
	}
	query += " ORDER BY t.date DESC, t.id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

func (r *TransactionRepo) UpdateCategory(ctx context.Context, id int64, categoryID *int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET category_id = ? WHERE id = ?`, categoryID, id)
	return err
}

func (r *TransactionRepo) UpdateDescription(ctx context.Context, id int64, description string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET description = ? WHERE id = ?`, description, id)
	return err
}

func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

// DeleteBatch deletes the given ids in one transaction and returns how many
// rows actually went away.
func (r *TransactionRepo) DeleteBatch(ctx context.Context, ids []int64) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	deleted := 0
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		deleted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// escapeLike makes %, _ and \ match literally under ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// parseStoredDecimal reads an amount column, falling back to zero if the
// stored text is not a valid decimal.
func parseStoredDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var amount string
	var category sql.NullInt64
	if err := row.Scan(&t.ID, &t.AccountID, &t.Date, &t.Description, &t.OriginalDescription,
		&amount, &category, &t.Notes, &t.IsTransfer, &t.ImportHash, &t.CreatedAt); err != nil {
		return Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.Amount = parseStoredDecimal(amount)
	if category.Valid {
		t.CategoryID = &category.Int64
	}
	return t, nil
}
