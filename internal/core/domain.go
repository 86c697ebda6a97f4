package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DefaultCategory is offered when a user has not created any category yet.
const DefaultCategory = "General"

type (
	TransactionType string

	// Transaction is a single income or expense entry owned by one user.
	Transaction struct {
		ID          int64
		UserID      int64
		Amount      decimal.Decimal
		Category    string
		Type        TransactionType
		Date        string // ISO-8601 calendar date (YYYY-MM-DD)
		Description string
	}

	// Filter narrows a transaction listing. A nil Category and empty Tags
	// select every transaction of the user.
	Filter struct {
		Category *string
		Tags     []string
	}

	// Entry is a transaction together with its tag names, as listed to a
	// user.
	Entry struct {
		Transaction
		Tags []string
	}

	// NewTransaction is the raw input collected by a front-end before it is
	// validated and turned into a Transaction.
	NewTransaction struct {
		Amount      string
		Category    string
		Type        string
		Date        string
		Description string
		Tags        []string
	}
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAuthFailed         = errors.New("invalid username or password")
	ErrInvalidCredentials = errors.New("username and password are required")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyName          = errors.New("empty name")
	ErrFeatureDisabled    = errors.New("feature disabled")
	ErrNotFound           = errors.New("not found")
)

// ParseTransactionType accepts "income" or "expense" in any case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidType
	}
}

func (t TransactionType) String() string {
	return string(t)
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Validate checks the fields a front-end is expected to vet before storing.
// The storage layer itself never calls it.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	return nil
}

// NewCategoryFilter returns a filter restricted to a single category name.
// "All" and the empty string mean no category restriction.
func NewCategoryFilter(category string, tags []string) Filter {
	f := Filter{Tags: tags}
	category = strings.TrimSpace(category)
	if category != "" && !strings.EqualFold(category, "all") {
		f.Category = &category
	}
	return f
}

// IsEmpty reports whether the filter selects everything.
func (f Filter) IsEmpty() bool {
	return f.Category == nil && len(f.Tags) == 0
}
