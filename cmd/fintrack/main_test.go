package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func setupEnv(t *testing.T) string {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	t.Setenv("FINTRACK_DB_PATH", filepath.Join(dir, "db", "finance_tracker.db"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("FINTRACK_FEATURES", "all")
	t.Setenv("FINTRACK_USERNAME", "")
	t.Setenv("FINTRACK_PASSWORD", "")
	return dir
}

func fintrack(t *testing.T, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	r := fintrack(t, args...)
	if r.code != exitOK {
		t.Fatalf("fintrack %v exited %d\nstdout: %s\nstderr: %s", args, r.code, r.stdout, r.stderr)
	}
	return r.stdout
}

func TestUsage(t *testing.T) {
	r := fintrack(t)
	if r.code != exitUsage || !strings.Contains(r.stdout, "Commands:") {
		t.Fatalf("no args: %+v", r)
	}

	r = fintrack(t, "help")
	if r.code != exitOK {
		t.Fatalf("help exited %d", r.code)
	}

	r = fintrack(t, "frobnicate")
	if r.code != exitUsage || !strings.Contains(r.stderr, `unknown command "frobnicate"`) {
		t.Fatalf("unknown command: %+v", r)
	}
}

func TestInit(t *testing.T) {
	dir := setupEnv(t)

	out := mustRun(t, "init")
	if !strings.Contains(out, "schema version 2") {
		t.Fatalf("init output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "db", "finance_tracker.db")); err != nil {
		t.Fatal(err)
	}
	// Running it again is harmless.
	mustRun(t, "init")
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("FINTRACK_FEATURES", "tags,bogus")

	r := fintrack(t, "init")
	if r.code != exitError || !strings.Contains(r.stderr, "invalid features") {
		t.Fatalf("bad config: %+v", r)
	}
}

func TestLedgerWorkflow(t *testing.T) {
	dir := setupEnv(t)
	creds := []string{"-u", "alice", "-p", "pw1"}
	with := func(args ...string) []string {
		return append(append(args[:1:1], creds...), args[1:]...)
	}

	mustRun(t, with("register")...)
	r := fintrack(t, with("register")...)
	if r.code != exitError || !strings.Contains(r.stderr, "already exists") {
		t.Fatalf("duplicate register: %+v", r)
	}

	r = fintrack(t, "summary", "-u", "alice", "-p", "wrong")
	if r.code != exitError || !strings.Contains(r.stderr, "invalid username or password") {
		t.Fatalf("bad password: %+v", r)
	}

	mustRun(t, with("add", "-amount", "100", "-type", "income", "-category", "Salary", "-date", "2024-01-01")...)
	mustRun(t, with("add", "-amount", "30", "-category", "Food", "-date", "2024-01-02", "-tags", "home, weekly")...)
	out := mustRun(t, with("add", "-amount", "20", "-category", "Rent", "-date", "2024-01-03", "-desc", "march")...)
	if !strings.Contains(out, "Transaction 3 added.") {
		t.Fatalf("add output: %s", out)
	}

	out = mustRun(t, with("list")...)
	if strings.Count(out, "2024-01-") != 3 {
		t.Fatalf("list output:\n%s", out)
	}
	if strings.Index(out, "2024-01-03") > strings.Index(out, "2024-01-01") {
		t.Fatalf("list not newest first:\n%s", out)
	}

	out = mustRun(t, with("list", "-tags", "home")...)
	if strings.Count(out, "2024-01-") != 1 || !strings.Contains(out, "[home, weekly]") {
		t.Fatalf("tag filtered list:\n%s", out)
	}

	out = mustRun(t, with("list", "-category", "Salary")...)
	if strings.Count(out, "2024-01-") != 1 || !strings.Contains(out, "$100.00") {
		t.Fatalf("category filtered list:\n%s", out)
	}

	out = mustRun(t, with("summary")...)
	for _, want := range []string{"$100.00", "$50.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %s:\n%s", want, out)
		}
	}

	out = mustRun(t, with("chart")...)
	if !strings.Contains(out, "Food") || !strings.Contains(out, "60.0%") {
		t.Fatalf("chart:\n%s", out)
	}

	out = mustRun(t, with("tags", "-add", "urgent", "2")...)
	if !strings.Contains(out, "urgent") || !strings.Contains(out, "home") {
		t.Fatalf("tags:\n%s", out)
	}

	out = mustRun(t, with("tags", "-add", "someday")...)
	for _, want := range []string{"home", "weekly", "urgent", "someday"} {
		if !strings.Contains(out, want) {
			t.Fatalf("user tags missing %s:\n%s", want, out)
		}
	}

	r = fintrack(t, with("tags", "99")...)
	if r.code != exitError || !strings.Contains(r.stderr, "transaction 99 not found") {
		t.Fatalf("tags of missing transaction: %+v", r)
	}

	out = mustRun(t, with("category", "list")...)
	for _, want := range []string{"Salary", "Food", "Rent"} {
		if !strings.Contains(out, want) {
			t.Fatalf("categories missing %s:\n%s", want, out)
		}
	}
	mustRun(t, with("category", "add", "Travel")...)
	r = fintrack(t, with("category", "add", "Travel")...)
	if r.code != exitError || !strings.Contains(r.stderr, "already exists") {
		t.Fatalf("duplicate category: %+v", r)
	}
	mustRun(t, with("category", "delete", "Travel")...)

	out = mustRun(t, with("export", "-format", "all")...)
	for _, ext := range []string{".csv", ".xlsx", ".pdf"} {
		path := filepath.Join(dir, "exports", "transactions"+ext)
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("export %s: %v\n%s", ext, err, out)
		}
	}

	csvPath := filepath.Join(dir, "single", "ledger.csv")
	mustRun(t, with("export", "-format", "csv", "-o", csvPath)...)
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "ID,User ID,Price,Category,Type,Date,Description") {
		t.Fatalf("csv:\n%s", data)
	}

	mustRun(t, with("delete", "3")...)
	out = mustRun(t, with("list")...)
	if strings.Contains(out, "2024-01-03") {
		t.Fatalf("deleted transaction still listed:\n%s", out)
	}
}

func TestFlagsAndArgumentsInAnyOrder(t *testing.T) {
	setupEnv(t)

	mustRun(t, "register", "-u", "dave", "-p", "pw")
	mustRun(t, "add", "-u", "dave", "-p", "pw", "-amount", "1", "-date", "2024-02-01")
	mustRun(t, "add", "-amount", "2", "-date", "2024-02-02", "-u", "dave", "-p", "pw")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"category action first", []string{"category", "add", "-u", "dave", "-p", "pw", "Travel"}, `Category "Travel" added.`},
		{"category flags first", []string{"category", "-u", "dave", "-p", "pw", "add", "Books"}, `Category "Books" added.`},
		{"category flags last", []string{"category", "list", "-u", "dave", "-p", "pw"}, "Travel"},
		{"multi word name", []string{"category", "add", "Eating", "out", "-u", "dave", "-p", "pw"}, `Category "Eating out" added.`},
		{"tags id first", []string{"tags", "1", "-u", "dave", "-p", "pw", "-add", "x"}, "x"},
		{"tags flags first", []string{"tags", "-u", "dave", "-p", "pw", "1"}, "x"},
		{"delete id first", []string{"delete", "2", "-u", "dave", "-p", "pw"}, "Transaction deleted."},
		{"delete flags first", []string{"delete", "-u", "dave", "-p", "pw", "1"}, "Transaction deleted."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, tt.args...)
			if !strings.Contains(out, tt.want) {
				t.Fatalf("output missing %q:\n%s", tt.want, out)
			}
		})
	}

	out := mustRun(t, "list", "-u", "dave", "-p", "pw")
	if !strings.Contains(out, "No transactions found.") {
		t.Fatalf("both transactions should be gone:\n%s", out)
	}

	// After "--" a dash-prefixed word is a name, not a flag.
	out = mustRun(t, "category", "add", "-u", "dave", "-p", "pw", "--", "-misc")
	if !strings.Contains(out, `Category "-misc" added.`) {
		t.Fatalf("output:\n%s", out)
	}
}

func TestCredentialsFromEnvironment(t *testing.T) {
	setupEnv(t)
	t.Setenv("FINTRACK_USERNAME", "bob")
	t.Setenv("FINTRACK_PASSWORD", "secret")

	mustRun(t, "register")
	out := mustRun(t, "summary")
	if !strings.Contains(out, "$0.00") {
		t.Fatalf("empty summary:\n%s", out)
	}
}

func TestUsageErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing credentials", []string{"summary"}},
		{"missing amount", []string{"add", "-u", "a", "-p", "b"}},
		{"bad id", []string{"delete", "-u", "a", "-p", "b", "abc"}},
		{"no category action", []string{"category"}},
		{"bad category action", []string{"category", "rename", "-u", "a", "-p", "b", "x"}},
		{"category list with name", []string{"category", "list", "x", "-u", "a", "-p", "b"}},
		{"extra argument", []string{"summary", "-u", "a", "-p", "b", "now"}},
		{"two ids", []string{"delete", "1", "2", "-u", "a", "-p", "b"}},
		{"unknown flag", []string{"list", "-nope"}},
		{"bad export format", []string{"export", "-u", "a", "-p", "b", "-format", "doc"}},
	}

	mustRun(t, "register", "-u", "a", "-p", "b")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := fintrack(t, tt.args...)
			if r.code != exitUsage {
				t.Fatalf("exit %d, want %d\nstderr: %s", r.code, exitUsage, r.stderr)
			}
		})
	}
}

func TestFeaturesDisabled(t *testing.T) {
	setupEnv(t)
	t.Setenv("FINTRACK_FEATURES", "none")
	creds := []string{"-u", "carol", "-p", "pw"}

	mustRun(t, append([]string{"register"}, creds...)...)
	mustRun(t, append([]string{"add", "-amount", "5"}, creds...)...)

	r := fintrack(t, append([]string{"export"}, creds...)...)
	if r.code != exitError || !strings.Contains(r.stderr, "feature disabled") {
		t.Fatalf("export with feature off: %+v", r)
	}
}
