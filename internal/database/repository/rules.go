package repository

import (
	"context"
	"database/sql"
)

// RuleRepo stores import categorization rules.
type RuleRepo struct{ db *sql.DB }

func NewRuleRepo(db *sql.DB) *RuleRepo { return &RuleRepo{db: db} }

func (r *RuleRepo) Insert(ctx context.Context, rule ImportRule) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO import_rules(pattern, category_id, is_regex, priority)
	VALUES(?, ?, ?, ?);
	`, rule.Pattern, rule.CategoryID, rule.IsRegex, rule.Priority)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// List returns rules in match order: higher priority first, ties broken by
// pattern.
func (r *RuleRepo) List(ctx context.Context) ([]ImportRule, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, pattern, category_id, is_regex, priority FROM import_rules ORDER BY priority DESC, pattern`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ImportRule
	for rows.Next() {
		var rule ImportRule
		if err := rows.Scan(&rule.ID, &rule.Pattern, &rule.CategoryID, &rule.IsRegex, &rule.Priority); err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (r *RuleRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM import_rules WHERE id = ?`, id)
	return err
}
