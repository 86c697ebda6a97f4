package services

import (
	"context"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Ports the services depend on. storage.SQLiteRepository satisfies all of them.
type (
	CredentialStore interface {
		CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
		GetCredentials(ctx context.Context, username string) (id int64, passwordHash string, err error)
	}

	TransactionStore interface {
		AddTransaction(ctx context.Context, t core.Transaction) (int64, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		GetTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
		GetTransactionsFiltered(ctx context.Context, userID int64, f core.Filter) ([]core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	// ReportReader provides the aggregate queries behind summaries and charts.
	ReportReader interface {
		GetFinancialSummary(ctx context.Context, userID int64) (core.Summary, error)
		GetExpensesByCategory(ctx context.Context, userID int64) (map[string]decimal.Decimal, error)
	}

	TaxonomyStore interface {
		AddCategory(ctx context.Context, userID int64, name string) error
		GetCategories(ctx context.Context, userID int64) ([]string, error)
		DeleteCategory(ctx context.Context, userID int64, name string) error
		AddTag(ctx context.Context, userID int64, name string) error
		GetTags(ctx context.Context, userID int64) ([]string, error)
		AddTagsToTransaction(ctx context.Context, transactionID int64, tags []string, userID int64) error
		GetTagsForTransaction(ctx context.Context, transactionID int64) ([]string, error)
	}

	LedgerStore interface {
		TransactionStore
		ReportReader
		TaxonomyStore
	}
)
