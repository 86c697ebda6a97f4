package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
)

// LedgerService is what a front-end talks to once a user is logged in. It
// validates input, gates optional features and delegates to the store.
type LedgerService struct {
	store      LedgerStore
	features   core.Features
	logger     *log.Logger
	categories *cache.LRU[int64, []string]
}

const (
	categoryCacheSize = 64
	categoryCacheTTL  = time.Minute
)

func NewLedgerService(store LedgerStore, features core.Features, logger *log.Logger) *LedgerService {
	if features == nil {
		features = core.Features{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LedgerService{
		store:      store,
		features:   features,
		logger:     logger.WithComponent(log.ComponentLedger),
		categories: cache.NewLRU[int64, []string](categoryCacheSize, categoryCacheTTL),
	}
}

// Features returns the enabled capability set.
func (s *LedgerService) Features() core.Features {
	return s.features
}

// RecordTransaction validates raw input, stores the transaction and, when
// enabled, registers its category and attaches its tags. An empty date means
// today. The tag attachment is a separate write: if it fails the
// transaction stays recorded and the error is returned with its id.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID int64, in core.NewTransaction) (int64, error) {
	amount, err := core.ParseAmount(in.Amount)
	if err != nil {
		return 0, err
	}
	txType, err := core.ParseTransactionType(in.Type)
	if err != nil {
		return 0, err
	}

	date := core.Today()
	if strings.TrimSpace(in.Date) != "" {
		if date, err = core.ParseDate(in.Date); err != nil {
			return 0, err
		}
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = core.DefaultCategory
	}

	tags := core.NormalizeNames(in.Tags)
	if len(tags) > 0 {
		if err := s.features.Require(core.FeatureTags); err != nil {
			return 0, err
		}
	}

	t := core.Transaction{
		UserID:      userID,
		Amount:      amount,
		Category:    category,
		Type:        txType,
		Date:        date,
		Description: strings.TrimSpace(in.Description),
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.AddTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}

	if s.features.Enabled(core.FeatureCategories) {
		err := s.store.AddCategory(ctx, userID, category)
		switch {
		case err == nil:
			s.categories.Delete(userID)
		case !errors.Is(err, core.ErrAlreadyExists):
			s.logger.WarnContext(ctx, "Could not register category",
				log.FieldCategory, category, log.FieldError, err)
		}
	}

	if len(tags) > 0 {
		if err := s.store.AddTagsToTransaction(ctx, id, tags, userID); err != nil {
			return id, fmt.Errorf("attach tags to transaction %d: %w", id, err)
		}
	}

	s.logger.InfoContext(ctx, "Transaction recorded",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithUser(userID).
			WithTransaction(id, amount.String(), category, string(txType), date).
			ToSlice()...)
	return id, nil
}

// Transactions lists every transaction of the user, newest first.
func (s *LedgerService) Transactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := s.store.GetTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// FilteredTransactions applies a category ("All" or empty for any) and a tag
// list.
func (s *LedgerService) FilteredTransactions(ctx context.Context, userID int64, category string, tags []string) ([]core.Transaction, error) {
	f := core.NewCategoryFilter(category, core.NormalizeNames(tags))
	if f.IsEmpty() {
		return s.Transactions(ctx, userID)
	}
	if err := s.features.Require(core.FeatureFilter); err != nil {
		return nil, err
	}

	txs, err := s.store.GetTransactionsFiltered(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("filter transactions: %w", err)
	}
	return txs, nil
}

// Entries is FilteredTransactions with each transaction's tags attached
// when the tags feature is on.
func (s *LedgerService) Entries(ctx context.Context, userID int64, category string, tags []string) ([]core.Entry, error) {
	txs, err := s.FilteredTransactions(ctx, userID, category, tags)
	if err != nil {
		return nil, err
	}

	entries := make([]core.Entry, len(txs))
	for i, t := range txs {
		entries[i].Transaction = t
		if !s.features.Enabled(core.FeatureTags) {
			continue
		}
		if entries[i].Tags, err = s.store.GetTagsForTransaction(ctx, t.ID); err != nil {
			return nil, fmt.Errorf("tags for transaction %d: %w", t.ID, err)
		}
	}
	return entries, nil
}

// TransactionTags returns the tags attached to one of the user's
// transactions.
func (s *LedgerService) TransactionTags(ctx context.Context, userID, transactionID int64) ([]string, error) {
	if err := s.features.Require(core.FeatureTags); err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, userID, transactionID); err != nil {
		return nil, err
	}
	return s.store.GetTagsForTransaction(ctx, transactionID)
}

// Tags lists every tag the user has created.
func (s *LedgerService) Tags(ctx context.Context, userID int64) ([]string, error) {
	if err := s.features.Require(core.FeatureTags); err != nil {
		return nil, err
	}
	return s.store.GetTags(ctx, userID)
}

// AddTags creates tags without attaching them to anything. Existing names
// are left alone.
func (s *LedgerService) AddTags(ctx context.Context, userID int64, names []string) error {
	if err := s.features.Require(core.FeatureTags); err != nil {
		return err
	}
	for _, name := range core.NormalizeNames(names) {
		if err := s.store.AddTag(ctx, userID, name); err != nil {
			return err
		}
	}
	return nil
}

// TagTransaction attaches more tags to one of the user's transactions.
func (s *LedgerService) TagTransaction(ctx context.Context, userID, transactionID int64, tags []string) error {
	if err := s.features.Require(core.FeatureTags); err != nil {
		return err
	}
	if _, err := s.owned(ctx, userID, transactionID); err != nil {
		return err
	}
	return s.store.AddTagsToTransaction(ctx, transactionID, tags, userID)
}

// RemoveTransaction deletes one of the user's transactions along with its
// tag links. Ids that do not exist, or belong to someone else, are left
// alone without error.
func (s *LedgerService) RemoveTransaction(ctx context.Context, userID, transactionID int64) error {
	if _, err := s.owned(ctx, userID, transactionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			s.logger.InfoContext(ctx, "Nothing to delete",
				log.FieldUserID, userID, log.FieldTransactionID, transactionID)
			return nil
		}
		return err
	}
	if err := s.store.DeleteTransaction(ctx, transactionID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldUserID, userID, log.FieldTransactionID, transactionID)
	return nil
}

// Summary returns total income and expenses. Storage failures are reported,
// never folded into zero totals.
func (s *LedgerService) Summary(ctx context.Context, userID int64) (core.Summary, error) {
	sum, err := s.store.GetFinancialSummary(ctx, userID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("financial summary: %w", err)
	}
	return sum, nil
}

// CategoryBreakdown returns expenses per category, largest first, and their
// grand total.
func (s *LedgerService) CategoryBreakdown(ctx context.Context, userID int64) ([]core.CategoryTotal, decimal.Decimal, error) {
	byCategory, err := s.store.GetExpensesByCategory(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("expenses by category: %w", err)
	}

	total := decimal.Zero
	for _, amount := range byCategory {
		total = total.Add(amount)
	}
	return core.SortCategoryTotals(byCategory), total, nil
}

// Categories lists the user's categories.
func (s *LedgerService) Categories(ctx context.Context, userID int64) ([]string, error) {
	if err := s.features.Require(core.FeatureCategories); err != nil {
		return nil, err
	}
	return s.categoryList(ctx, userID)
}

// CategoriesOrDefault is the list a transaction form offers: the user's
// categories, or just the default one when there are none or the feature is
// off.
func (s *LedgerService) CategoriesOrDefault(ctx context.Context, userID int64) ([]string, error) {
	if !s.features.Enabled(core.FeatureCategories) {
		return []string{core.DefaultCategory}, nil
	}
	cats, err := s.categoryList(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cats) == 0 {
		return []string{core.DefaultCategory}, nil
	}
	return cats, nil
}

// AddCategory creates a category; core.ErrAlreadyExists when it is present.
func (s *LedgerService) AddCategory(ctx context.Context, userID int64, name string) error {
	if err := s.features.Require(core.FeatureCategories); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if err := s.store.AddCategory(ctx, userID, name); err != nil {
		return err
	}
	s.categories.Delete(userID)
	return nil
}

// RemoveCategory deletes a category. Transactions filed under it keep the
// name as plain text.
func (s *LedgerService) RemoveCategory(ctx context.Context, userID int64, name string) error {
	if err := s.features.Require(core.FeatureCategories); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyName
	}
	if err := s.store.DeleteCategory(ctx, userID, name); err != nil {
		return err
	}
	s.categories.Delete(userID)
	return nil
}

// categoryList reads through the per-user cache. Callers get their own copy.
func (s *LedgerService) categoryList(ctx context.Context, userID int64) ([]string, error) {
	if cats, ok := s.categories.Get(userID); ok {
		return append([]string(nil), cats...), nil
	}
	cats, err := s.store.GetCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.categories.Set(userID, cats)
	return append([]string(nil), cats...), nil
}

// Export writes all of the user's transactions to w.
func (s *LedgerService) Export(ctx context.Context, userID int64, format export.Format, w io.Writer) error {
	txs, err := s.exportable(ctx, userID)
	if err != nil {
		return err
	}
	if err := export.Write(w, format, txs); err != nil {
		return fmt.Errorf("export %s: %w", format, err)
	}
	s.logger.InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport, log.FieldUserID, userID, log.FieldFormat, format, log.FieldCount, len(txs))
	return nil
}

// ExportFile writes all of the user's transactions to path.
func (s *LedgerService) ExportFile(ctx context.Context, userID int64, format export.Format, path string) error {
	txs, err := s.exportable(ctx, userID)
	if err != nil {
		return err
	}
	if err := export.WriteFile(path, format, txs); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport, log.FieldUserID, userID, log.FieldFormat, format, log.FieldPath, path, log.FieldCount, len(txs))
	return nil
}

// ExportAll writes one file per format into dir and returns their paths.
func (s *LedgerService) ExportAll(ctx context.Context, userID int64, dir, base string) ([]string, error) {
	txs, err := s.exportable(ctx, userID)
	if err != nil {
		return nil, err
	}
	paths, err := export.WriteAll(ctx, dir, base, txs)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Transactions exported",
		log.FieldOperation, log.OpExport, log.FieldUserID, userID, log.FieldPath, dir, log.FieldCount, len(txs))
	return paths, nil
}

func (s *LedgerService) exportable(ctx context.Context, userID int64) ([]core.Transaction, error) {
	if err := s.features.Require(core.FeatureExport); err != nil {
		return nil, err
	}
	txs, err := s.store.GetTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, export.ErrNoTransactions
	}
	return txs, nil
}

// owned loads a transaction and checks it belongs to userID. Foreign
// transactions look exactly like missing ones.
func (s *LedgerService) owned(ctx context.Context, userID, transactionID int64) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Transaction{}, core.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("load transaction: %w", err)
	}
	if t.UserID != userID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}
