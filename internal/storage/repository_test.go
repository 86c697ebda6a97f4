package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustUser(t *testing.T, repo *SQLiteRepository, name string) int64 {
	t.Helper()
	id, err := repo.CreateUser(context.Background(), name, "hash-"+name)
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return id
}

func mustAdd(t *testing.T, repo *SQLiteRepository, tx core.Transaction) int64 {
	t.Helper()
	id, err := repo.AddTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("add transaction: %v", err)
	}
	return id
}

func tx(userID int64, amount string, category string, typ core.TransactionType, date string) core.Transaction {
	return core.Transaction{
		UserID:   userID,
		Amount:   decimal.RequireFromString(amount),
		Category: category,
		Type:     typ,
		Date:     date,
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 3; i++ {
		if err := RunMigrations(path); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	version, dirty, err := SchemaVersion(path)
	if err != nil {
		t.Fatal(err)
	}
	if version != 2 || dirty {
		t.Fatalf("unexpected schema version %d dirty=%v", version, dirty)
	}
}

func TestRunMigrationsKeepsExistingData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	// A store written before migrations were tracked.
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL
		);
		INSERT INTO users (username, password) VALUES ('legacy', 'x');`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open legacy store: %v", err)
	}
	defer repo.Close()

	id, _, err := repo.GetCredentials(context.Background(), "legacy")
	if err != nil || id != 1 {
		t.Fatalf("legacy user lost: id=%d err=%v", id, err)
	}
}

func TestNewSQLiteRepositoryRejectsEmptyPath(t *testing.T) {
	if _, err := NewSQLiteRepository(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustUser(t, repo, "alice")
	if _, err := repo.CreateUser(ctx, "alice", "other"); !errors.Is(err, core.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	var n int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM users WHERE username = 'alice'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row for alice, got %d", n)
	}

	_, hash, err := repo.GetCredentials(ctx, "alice")
	if err != nil || hash != "hash-alice" {
		t.Fatalf("first credential should survive: hash=%q err=%v", hash, err)
	}
}

func TestGetCredentialsUnknownUser(t *testing.T) {
	repo := newTestRepo(t)
	if _, _, err := repo.GetCredentials(context.Background(), "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
