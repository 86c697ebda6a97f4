package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const transactionColumns = `t.id, t.user_id, t.amount, t.category, t.type, t.date, t.description`

// AddTransaction inserts t for its owner and returns the new id. Nothing is
// validated here; callers vet the input.
func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, amount, category, type, date, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Amount.InexactFloat64(), t.Category, string(t.Type), t.Date, t.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", t.UserID,
		"amount", t.Amount.String(),
		"category", t.Category,
		"type", t.Type,
		"date", t.Date)

	return id, nil
}

// GetTransactions lists a user's transactions, newest date first. Rows
// sharing a date come most recently inserted first.
func (r *SQLiteRepository) GetTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	return r.GetTransactionsFiltered(ctx, userID, core.Filter{})
}

// GetTransactionsFiltered lists a user's transactions restricted by f. With
// tags, a transaction qualifies when it carries at least one of them and is
// returned once however many match. Ordering matches GetTransactions.
func (r *SQLiteRepository) GetTransactionsFiltered(ctx context.Context, userID int64, f core.Filter) ([]core.Transaction, error) {
	var (
		query strings.Builder
		args  = []any{userID}
	)

	query.WriteString(`SELECT DISTINCT ` + transactionColumns + ` FROM transactions t`)

	tags := core.NormalizeNames(f.Tags)
	if len(tags) > 0 {
		query.WriteString(`
			JOIN transaction_tags tt ON t.id = tt.transaction_id
			JOIN tags tg ON tt.tag_id = tg.id`)
	}

	query.WriteString(` WHERE t.user_id = ?`)

	if len(tags) > 0 {
		query.WriteString(` AND tg.name IN (?` + strings.Repeat(`, ?`, len(tags)-1) + `)`)
		for _, tag := range tags {
			args = append(args, tag)
		}
	}

	if f.Category != nil {
		query.WriteString(` AND t.category = ?`)
		args = append(args, *f.Category)
	}

	query.WriteString(` ORDER BY t.date DESC, t.id DESC`)

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// GetTransaction fetches one transaction by id, or core.ErrNotFound.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, err
	}
	return t, nil
}

// DeleteTransaction removes a transaction and its tag associations. A
// missing id is not an error.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	var affected int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM transaction_tags WHERE transaction_id = ?`, id); err != nil {
			return fmt.Errorf("delete transaction tags: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read affected rows: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if affected == 0 {
		slog.InfoContext(ctx, "Transaction not found, nothing deleted", "id", id)
		return nil
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

// GetFinancialSummary sums a user's income and expenses. Both totals are
// zero when the user has no transactions of that type. Rows are summed as
// decimals so totals carry no float drift.
func (r *SQLiteRepository) GetFinancialSummary(ctx context.Context, userID int64) (core.Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, amount
		FROM transactions
		WHERE user_id = ?`, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("get financial summary: %w", err)
	}
	defer rows.Close()

	sum := core.Summary{Income: decimal.Zero, Expenses: decimal.Zero}
	for rows.Next() {
		var (
			txType string
			amount float64
		)
		if err := rows.Scan(&txType, &amount); err != nil {
			return core.Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch core.TransactionType(txType) {
		case core.Income:
			sum.Income = sum.Income.Add(decimal.NewFromFloat(amount))
		case core.Expense:
			sum.Expenses = sum.Expenses.Add(decimal.NewFromFloat(amount))
		}
	}
	if err := rows.Err(); err != nil {
		return core.Summary{}, fmt.Errorf("get financial summary: %w", err)
	}
	return sum, nil
}

// GetExpensesByCategory sums expense amounts per category name.
func (r *SQLiteRepository) GetExpensesByCategory(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, amount
		FROM transactions
		WHERE user_id = ? AND type = 'expense'`, userID)
	if err != nil {
		return nil, fmt.Errorf("query expenses by category: %w", err)
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			category string
			amount   float64
		)
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out[category] = out[category].Add(decimal.NewFromFloat(amount))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t           core.Transaction
		userID      sql.NullInt64
		amount      float64
		txType      string
		description sql.NullString
	)
	if err := row.Scan(&t.ID, &userID, &amount, &t.Category, &txType, &t.Date, &description); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	t.UserID = userID.Int64
	t.Amount = decimal.NewFromFloat(amount)
	t.Type = core.TransactionType(txType)
	t.Description = description.String
	return t, nil
}
