// Package report renders ledger summaries, category charts and transaction
// listings for a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

const (
	defaultBarWidth = 30
	nameWidth       = 20
	descWidth       = 32
)

var (
	colorIncome  = lipgloss.Color("#a6e3a1")
	colorExpense = lipgloss.Color("#f38ba8")
	colorMuted   = lipgloss.Color("#7f849c")
	colorAccent  = lipgloss.Color("#89b4fa")
)

// Printer writes styled reports to w. Colors are only emitted when w is a
// terminal that supports them.
type Printer struct {
	w        io.Writer
	BarWidth int

	title   lipgloss.Style
	label   lipgloss.Style
	income  lipgloss.Style
	expense lipgloss.Style
	muted   lipgloss.Style
	bar     lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		BarWidth: defaultBarWidth,
		title:    r.NewStyle().Bold(true).Foreground(colorAccent),
		label:    r.NewStyle().Width(nameWidth),
		income:   r.NewStyle().Foreground(colorIncome),
		expense:  r.NewStyle().Foreground(colorExpense),
		muted:    r.NewStyle().Foreground(colorMuted),
		bar:      r.NewStyle().Foreground(colorAccent),
	}
}

// Summary prints total income, total expenses and the remaining balance.
func (p *Printer) Summary(sum core.Summary) error {
	balance := sum.Balance()
	balanceStyle := p.income
	if balance.IsNegative() {
		balanceStyle = p.expense
	}

	lines := []string{
		p.title.Render("Financial Summary"),
		p.label.Render("Total Income:") + p.income.Render(core.FormatDollars(sum.Income)),
		p.label.Render("Total Expenses:") + p.expense.Render(core.FormatDollars(sum.Expenses)),
		p.label.Render("Remaining Balance:") + balanceStyle.Render(core.FormatDollars(balance)),
	}
	return p.print(lines)
}

// CategoryChart prints one horizontal bar per category, scaled to the
// largest category, with its amount and share of total.
func (p *Printer) CategoryChart(totals []core.CategoryTotal, total decimal.Decimal) error {
	lines := []string{p.title.Render("Expenses by Category")}
	if len(totals) == 0 || total.IsZero() {
		lines = append(lines, p.muted.Render("No expenses recorded."))
		return p.print(lines)
	}

	width := p.BarWidth
	if width <= 0 {
		width = defaultBarWidth
	}

	largest := totals[0].Amount
	for _, c := range totals[1:] {
		if c.Amount.GreaterThan(largest) {
			largest = c.Amount
		}
	}

	for _, c := range totals {
		n := 0
		if largest.IsPositive() && c.Amount.IsPositive() {
			n = int(c.Amount.Div(largest).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart())
		}
		if n == 0 && c.Amount.IsPositive() {
			n = 1
		}
		bar := p.bar.Render(strings.Repeat("█", n)) + strings.Repeat(" ", width-n)
		lines = append(lines, fmt.Sprintf("%s %s %10s %6s%%",
			p.label.Render(truncate(c.Name, nameWidth-1)),
			bar,
			core.FormatDollars(c.Amount),
			c.Share(total).StringFixed(1)))
	}
	lines = append(lines, p.muted.Render("Total: "+core.FormatDollars(total)))
	return p.print(lines)
}

// Transactions prints a listing, newest first as given, with tags when an
// entry has any.
func (p *Printer) Transactions(entries []core.Entry) error {
	if len(entries) == 0 {
		return p.print([]string{p.muted.Render("No transactions found.")})
	}

	lines := []string{p.title.Render(fmt.Sprintf("%-6s %-10s %-8s %12s  %-15s %s",
		"ID", "Date", "Type", "Amount", "Category", "Description"))}
	for _, e := range entries {
		amount := fmt.Sprintf("%12s", core.FormatDollars(e.Amount))
		if e.Type == core.Expense {
			amount = p.expense.Render(amount)
		} else {
			amount = p.income.Render(amount)
		}

		line := fmt.Sprintf("%-6d %-10s %-8s %s  %-15s %s",
			e.ID, e.Date, e.Type, amount, truncate(e.Category, 15), truncate(e.Description, descWidth))
		if len(e.Tags) > 0 {
			line += " " + p.muted.Render("["+strings.Join(e.Tags, ", ")+"]")
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return p.print(lines)
}

// Names prints one name per line, or a placeholder when there are none.
func (p *Printer) Names(heading string, names []string) error {
	lines := []string{p.title.Render(heading)}
	if len(names) == 0 {
		lines = append(lines, p.muted.Render("(none)"))
	}
	for _, n := range names {
		lines = append(lines, "  "+n)
	}
	return p.print(lines)
}

func (p *Printer) print(lines []string) error {
	_, err := io.WriteString(p.w, strings.Join(lines, "\n")+"\n")
	return err
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
