package repository

import (
	"context"
	"database/sql"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

func (r *CategoryRepo) Insert(ctx context.Context, c Category) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(name, parent_id, icon, color)
	VALUES(?, ?, ?, ?);
	`, c.Name, c.ParentID, c.Icon, c.Color)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, parent_id, icon, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		var parent sql.NullInt64
		if err := rows.Scan(&c.ID, &c.Name, &parent, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		if parent.Valid {
			c.ParentID = &parent.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}
