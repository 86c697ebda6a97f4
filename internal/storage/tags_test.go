package storage

import (
	"context"
	"reflect"
	"testing"

	"fintrack/internal/core"
)

func TestAddTagsToTransactionIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := mustUser(t, repo, "alice")
	id := mustAdd(t, repo, tx(user, "9", "Food", core.Expense, "2024-01-01"))

	if err := repo.AddTagsToTransaction(ctx, id, []string{"lunch", "team"}, user); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddTagsToTransaction(ctx, id, []string{"team", "friday", "friday"}, user); err != nil {
		t.Fatal(err)
	}

	var associations int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM transaction_tags WHERE transaction_id = ?`, id).Scan(&associations); err != nil {
		t.Fatal(err)
	}
	if associations != 3 {
		t.Fatalf("expected 3 associations, got %d", associations)
	}

	got, err := repo.GetTagsForTransaction(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"friday", "lunch", "team"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}

	userTags, err := repo.GetTags(ctx, user)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"lunch", "team", "friday"}; !reflect.DeepEqual(userTags, want) {
		t.Fatalf("tag rows: want %v, got %v", want, userTags)
	}
}

func TestTagsArePerUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := mustUser(t, repo, "alice")
	bob := mustUser(t, repo, "bob")

	a := mustAdd(t, repo, tx(alice, "1", "Food", core.Expense, "2024-01-01"))
	b := mustAdd(t, repo, tx(bob, "1", "Food", core.Expense, "2024-01-01"))

	if err := repo.AddTagsToTransaction(ctx, a, []string{"lunch"}, alice); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddTagsToTransaction(ctx, b, []string{"lunch"}, bob); err != nil {
		t.Fatal(err)
	}

	var rows int
	if err := repo.db.QueryRow(`SELECT COUNT(*) FROM tags WHERE name = 'lunch'`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Fatalf("expected one lunch tag per user, got %d", rows)
	}
}

func TestAddTagAndEmptyInput(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	user := mustUser(t, repo, "alice")

	if err := repo.AddTag(ctx, user, "travel"); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddTag(ctx, user, "travel"); err != nil {
		t.Fatalf("AddTag should ignore duplicates: %v", err)
	}
	if err := repo.AddTagsToTransaction(ctx, 1, []string{" ", ""}, user); err != nil {
		t.Fatalf("blank tag list should be a no-op: %v", err)
	}

	tags, err := repo.GetTags(ctx, user)
	if err != nil || !reflect.DeepEqual(tags, []string{"travel"}) {
		t.Fatalf("unexpected tags %v err=%v", tags, err)
	}

	none, err := repo.GetTagsForTransaction(ctx, 777)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no tags, got %v err=%v", none, err)
	}
}
