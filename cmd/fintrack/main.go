// Command fintrack is a personal finance tracker backed by a local SQLite
// file.
//
// Usage:
//
//	fintrack <command> [flags] [args]
//
// Run "fintrack help" for the list of commands.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// app carries what every command needs once start-up has succeeded.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	repo     *storage.SQLiteRepository
	accounts *services.AccountService
	ledger   *services.LedgerService
	printer  *report.Printer
	stdout   io.Writer
	stderr   io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		if len(args) == 0 {
			return exitUsage
		}
		return exitOK
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "fintrack: unknown command %q\n\n", name)
		usage(stderr)
		return exitUsage
	}

	if err := cli.LoadEnvFile(); err != nil {
		fmt.Fprintf(stderr, "fintrack: %v\n", err)
		return exitError
	}
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintf(stderr, "fintrack: %v\n", err)
		return exitError
	}

	logger, _ := cli.SetupLogger(cfg, stderr)
	logger = logger.With(log.FieldCommand, name)

	ctx, stop := cli.SignalContext(ctx)
	defer stop()

	repo, err := cli.InitSQLite(logger, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(stderr, "fintrack: %v\n", err)
		return exitError
	}
	defer repo.Close()

	a := &app{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		accounts: services.NewAccountService(repo, cfg.BcryptCost, logger),
		ledger:   services.NewLedgerService(repo, cfg.EnabledFeatures(), logger),
		printer:  report.New(stdout),
		stdout:   stdout,
		stderr:   stderr,
	}

	if err := cmd.run(ctx, a, rest); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "fintrack %s: %v\n", name, ue.err)
			return exitUsage
		}
		logger.Debug("Command failed", log.FieldError, err)
		fmt.Fprintf(stderr, "fintrack %s: %v\n", name, err)
		return exitError
	}
	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: fintrack <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags may come before or after arguments, e.g. \"delete 3 -u alice\";")
	fmt.Fprintln(w, "everything after -- is taken as an argument.")
	fmt.Fprintln(w, "Credentials come from -u/-p or FINTRACK_USERNAME/FINTRACK_PASSWORD.")
}

// usageError marks bad command-line input, reported with exit status 2.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}
