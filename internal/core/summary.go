package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary holds a user's income and expense totals.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// Balance is income minus expenses.
func (s Summary) Balance() decimal.Decimal {
	return s.Income.Sub(s.Expenses)
}

// CategoryTotal is the summed expense amount of one category.
type CategoryTotal struct {
	Name   string
	Amount decimal.Decimal
}

// SortCategoryTotals turns a category→amount map into a slice ordered by
// amount descending, ties broken by name.
func SortCategoryTotals(m map[string]decimal.Decimal) []CategoryTotal {
	out := make([]CategoryTotal, 0, len(m))
	for name, amount := range m {
		out = append(out, CategoryTotal{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Share returns the fraction of total each category accounts for, as a
// percentage rounded to one decimal place.
func (c CategoryTotal) Share(total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return c.Amount.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}
