package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/storage"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"init":     {"create or upgrade the database", runInit},
	"register": {"create a user account", runRegister},
	"add":      {"record an income or expense", runAdd},
	"list":     {"list transactions (-category, -tags)", runList},
	"delete":   {"delete a transaction by id", runDelete},
	"summary":  {"show income, expenses and balance", runSummary},
	"chart":    {"chart expenses by category", runChart},
	"category": {"manage categories: add|list|delete NAME", runCategory},
	"tags":     {"list or add tags, optionally for one transaction id", runTags},
	"export":   {"export transactions to csv, xlsx, pdf or all", runExport},
}

var commandOrder = []string{
	"init", "register", "add", "list", "delete", "summary", "chart", "category", "tags", "export",
}

type credentials struct {
	username string
	password string
}

func newFlagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("fintrack "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func credentialFlags(fs *flag.FlagSet) *credentials {
	c := &credentials{}
	fs.StringVar(&c.username, "u", os.Getenv("FINTRACK_USERNAME"), "username")
	fs.StringVar(&c.password, "p", os.Getenv("FINTRACK_PASSWORD"), "password")
	return c
}

// parse parses flags wherever they appear among the positional arguments,
// so "delete 3 -u alice" and "delete -u alice 3" are the same. Everything
// after "--" is positional. The positionals are returned in order.
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, usageError{err}
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func noArgs(positional []string) error {
	if len(positional) > 0 {
		return usagef("unexpected argument %q", positional[0])
	}
	return nil
}

// login resolves the acting user for commands that touch a ledger.
func (a *app) login(ctx context.Context, c *credentials) (int64, error) {
	if c.username == "" || c.password == "" {
		return 0, usagef("credentials required: pass -u and -p or set FINTRACK_USERNAME and FINTRACK_PASSWORD")
	}
	return a.accounts.Authenticate(ctx, c.username, c.password)
}

func runInit(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "init")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}

	version, dirty, err := storage.SchemaVersion(a.repo.Path())
	if err != nil {
		return err
	}
	state := ""
	if dirty {
		state = " (dirty)"
	}
	fmt.Fprintf(a.stdout, "Database ready at %s, schema version %d%s\n", a.repo.Path(), version, state)
	return nil
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "register")
	creds := credentialFlags(fs)
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}

	if _, err := a.accounts.Register(ctx, creds.username, creds.password); err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			return fmt.Errorf("username %q already exists", creds.username)
		}
		return err
	}
	fmt.Fprintln(a.stdout, "Registration successful! You can now log in.")
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "add")
	creds := credentialFlags(fs)
	var in core.NewTransaction
	var tags string
	fs.StringVar(&in.Amount, "amount", "", "amount, e.g. 12.50")
	fs.StringVar(&in.Type, "type", string(core.Expense), "income or expense")
	fs.StringVar(&in.Category, "category", core.DefaultCategory, "category name")
	fs.StringVar(&in.Date, "date", "", "date (defaults to today)")
	fs.StringVar(&in.Description, "desc", "", "description")
	fs.StringVar(&tags, "tags", "", "comma separated tags")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}
	if in.Amount == "" {
		return usagef("-amount is required")
	}
	in.Tags = core.ParseTags(tags)

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	id, err := a.ledger.RecordTransaction(ctx, userID, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Transaction %d added.\n", id)
	return nil
}

func runList(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "list")
	creds := credentialFlags(fs)
	category := fs.String("category", "All", "only this category")
	tags := fs.String("tags", "", "only transactions with any of these comma separated tags")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	entries, err := a.ledger.Entries(ctx, userID, *category, core.ParseTags(*tags))
	if err != nil {
		return err
	}
	return a.printer.Transactions(entries)
}

func runDelete(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "delete")
	creds := credentialFlags(fs)
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	id, err := idArg(positional)
	if err != nil {
		return err
	}

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	if err := a.ledger.RemoveTransaction(ctx, userID, id); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "Transaction deleted.")
	return nil
}

func runSummary(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "summary")
	creds := credentialFlags(fs)
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	sum, err := a.ledger.Summary(ctx, userID)
	if err != nil {
		return err
	}
	return a.printer.Summary(sum)
}

func runChart(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "chart")
	creds := credentialFlags(fs)
	width := fs.Int("width", 30, "bar width in cells")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	totals, total, err := a.ledger.CategoryBreakdown(ctx, userID)
	if err != nil {
		return err
	}
	a.printer.BarWidth = *width
	return a.printer.CategoryChart(totals, total)
}

func runCategory(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "category")
	creds := credentialFlags(fs)
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return usagef("expected add, list or delete")
	}
	action := positional[0]
	name := strings.Join(positional[1:], " ")

	switch action {
	case "add", "delete":
		if strings.TrimSpace(name) == "" {
			return usagef("category name required")
		}
	case "list":
		if name != "" {
			return usagef("list takes no name")
		}
	default:
		return usagef("unknown action %q: expected add, list or delete", action)
	}

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}

	switch action {
	case "add":
		if err := a.ledger.AddCategory(ctx, userID, name); err != nil {
			if errors.Is(err, core.ErrAlreadyExists) {
				return fmt.Errorf("category %q already exists", strings.TrimSpace(name))
			}
			return err
		}
		fmt.Fprintf(a.stdout, "Category %q added.\n", strings.TrimSpace(name))
	case "delete":
		if err := a.ledger.RemoveCategory(ctx, userID, name); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Category %q deleted.\n", strings.TrimSpace(name))
	case "list":
		cats, err := a.ledger.Categories(ctx, userID)
		if err != nil {
			return err
		}
		return a.printer.Names("Categories", cats)
	}
	return nil
}

func runTags(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "tags")
	creds := credentialFlags(fs)
	add := fs.String("add", "", "comma separated tags to create, or attach when an id is given")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	extra := core.ParseTags(*add)

	if len(positional) == 0 {
		userID, err := a.login(ctx, creds)
		if err != nil {
			return err
		}
		if len(extra) > 0 {
			if err := a.ledger.AddTags(ctx, userID, extra); err != nil {
				return err
			}
		}
		tags, err := a.ledger.Tags(ctx, userID)
		if err != nil {
			return err
		}
		return a.printer.Names("Tags", tags)
	}

	id, err := idArg(positional)
	if err != nil {
		return err
	}
	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		if err := a.ledger.TagTransaction(ctx, userID, id, extra); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("transaction %d not found", id)
			}
			return err
		}
	}
	tags, err := a.ledger.TransactionTags(ctx, userID, id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("transaction %d not found", id)
		}
		return err
	}
	return a.printer.Names(fmt.Sprintf("Tags of transaction %d", id), tags)
}

func runExport(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet(a, "export")
	creds := credentialFlags(fs)
	format := fs.String("format", "csv", "csv, xlsx, pdf or all")
	out := fs.String("o", "", "output file, or directory for -format all (default EXPORT_DIR)")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if err := noArgs(positional); err != nil {
		return err
	}

	userID, err := a.login(ctx, creds)
	if err != nil {
		return err
	}

	if strings.EqualFold(*format, "all") {
		dir := *out
		if dir == "" {
			dir = a.cfg.ExportDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
		paths, err := a.ledger.ExportAll(ctx, userID, dir, "transactions")
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(a.stdout, "Exported %s\n", p)
		}
		return nil
	}

	f, err := export.ParseFormat(*format)
	if err != nil {
		return usageError{err}
	}
	path := *out
	if path == "" {
		path = filepath.Join(a.cfg.ExportDir, "transactions"+f.Extension())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	if err := a.ledger.ExportFile(ctx, userID, f, path); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Exported %s\n", path)
	return nil
}

func idArg(positional []string) (int64, error) {
	if len(positional) != 1 {
		return 0, usagef("expected exactly one transaction id")
	}
	id, err := strconv.ParseInt(positional[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("invalid transaction id %q", positional[0])
	}
	return id, nil
}
