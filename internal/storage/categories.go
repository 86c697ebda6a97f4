package storage

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// AddCategory creates a category for the user, or returns
// core.ErrAlreadyExists when the user already has one with that name.
func (r *SQLiteRepository) AddCategory(ctx context.Context, userID int64, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		if isUniqueViolation(err) {
			return core.ErrAlreadyExists
		}
		return fmt.Errorf("insert category: %w", err)
	}

	slog.InfoContext(ctx, "Category created", "user_id", userID, "name", name)
	return nil
}

// GetCategories returns the user's category names in creation order.
func (r *SQLiteRepository) GetCategories(ctx context.Context, userID int64) ([]string, error) {
	return r.queryNames(ctx,
		`SELECT name FROM categories WHERE user_id = ? ORDER BY id`, userID)
}

// DeleteCategory removes a category row. Transactions keep their category
// text; deleting a name that does not exist succeeds.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	n, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Category deleted", "user_id", userID, "name", name, "rows", n)
	return nil
}

func (r *SQLiteRepository) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}
