package repository

import (
	"context"
	"database/sql"
)

// AccountRepo handles accounts.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

func (r *AccountRepo) Insert(ctx context.Context, a Account) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO accounts(name, account_type, institution, currency, notes, created_at)
	VALUES(?, ?, ?, ?, ?, ?);
	`, a.Name, string(a.AccountType), a.Institution, a.Currency, a.Notes, a.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID returns nil when no account has the given id.
func (r *AccountRepo) GetByID(ctx context.Context, id int64) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, account_type, institution, currency, notes, created_at FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, account_type, institution, currency, notes, created_at FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepo) Update(ctx context.Context, a Account) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE accounts SET name = ?, account_type = ?, institution = ?, currency = ?, notes = ?
	WHERE id = ?;
	`, a.Name, string(a.AccountType), a.Institution, a.Currency, a.Notes, a.ID)
	return err
}

func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}

func scanAccount(row scanner) (Account, error) {
	var a Account
	var accountType string
	if err := row.Scan(&a.ID, &a.Name, &accountType, &a.Institution, &a.Currency, &a.Notes, &a.CreatedAt); err != nil {
		return Account{}, err
	}
	a.AccountType = ParseAccountType(accountType)
	return a, nil
}
