package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
)

// AddTag creates a tag for the user if it does not exist yet.
func (r *SQLiteRepository) AddTag(ctx context.Context, userID int64, name string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO tags (user_id, name) VALUES (?, ?)`, userID, name); err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// GetTags returns the user's tag names in creation order.
func (r *SQLiteRepository) GetTags(ctx context.Context, userID int64) ([]string, error) {
	return r.queryNames(ctx,
		`SELECT name FROM tags WHERE user_id = ? ORDER BY id`, userID)
}

// AddTagsToTransaction attaches each named tag to the transaction, creating
// the user's tag rows on first use. Attaching a tag twice is a no-op.
func (r *SQLiteRepository) AddTagsToTransaction(ctx context.Context, transactionID int64, tags []string, userID int64) error {
	names := core.NormalizeNames(tags)
	if len(names) == 0 {
		return nil
	}

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			tagID, err := ensureTag(ctx, tx, userID, name)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO transaction_tags (transaction_id, tag_id) VALUES (?, ?)`,
				transactionID, tagID); err != nil {
				return fmt.Errorf("associate tag %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Tags attached", "transaction_id", transactionID, "tags", names)
	return nil
}

// GetTagsForTransaction returns the names of the tags on a transaction,
// alphabetically.
func (r *SQLiteRepository) GetTagsForTransaction(ctx context.Context, transactionID int64) ([]string, error) {
	return r.queryNames(ctx, `
		SELECT tg.name
		FROM tags tg
		JOIN transaction_tags tt ON tg.id = tt.tag_id
		WHERE tt.transaction_id = ?
		ORDER BY tg.name`, transactionID)
}

func ensureTag(ctx context.Context, tx *sql.Tx, userID int64, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE user_id = ? AND name = ?`, userID, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("look up tag %q: %w", name, err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tags (user_id, name) VALUES (?, ?)`, userID, name)
	if err != nil {
		return 0, fmt.Errorf("create tag %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read tag id: %w", err)
	}
	return id, nil
}
