package repository

import (
	"context"
	"database/sql"
)

// ImportRunRepo records committed CSV imports.
type ImportRunRepo struct{ db *sql.DB }

func NewImportRunRepo(db *sql.DB) *ImportRunRepo { return &ImportRunRepo{db: db} }

func (r *ImportRunRepo) Insert(ctx context.Context, run ImportRun) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO import_runs(id, account_id, file_name, profile_name, imported, duplicates, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`, run.ID, run.AccountID, run.FileName, run.ProfileName, run.Imported, run.Duplicates, run.CreatedAt)
	return err
}

func (r *ImportRunRepo) List(ctx context.Context) ([]ImportRun, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, account_id, file_name, profile_name, imported, duplicates, created_at FROM import_runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ImportRun
	for rows.Next() {
		var run ImportRun
		if err := rows.Scan(&run.ID, &run.AccountID, &run.FileName, &run.ProfileName, &run.Imported, &run.Duplicates, &run.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
