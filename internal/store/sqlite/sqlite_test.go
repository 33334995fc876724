package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/vovakirdan/wirechat-ircd/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAccountRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateAccount(ctx, "admin", "hash")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if created.Username != "admin" || created.PasswordHash != "hash" {
		t.Errorf("unexpected account: %+v", created)
	}
	if created.LastLoginAt != nil {
		t.Error("fresh account should have no login timestamp")
	}

	got, err := s.GetAccountByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAccountByUsername failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("expected id %d, got %d", created.ID, got.ID)
	}

	// Usernames collate case-insensitively.
	if _, err := s.GetAccountByUsername(ctx, "ADMIN"); err != nil {
		t.Errorf("case-insensitive lookup failed: %v", err)
	}
	if _, err := s.CreateAccount(ctx, "Admin", "other"); err == nil {
		t.Error("expected unique constraint violation for Admin")
	}
}

func TestGetAccountNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetAccountByUsername(context.Background(), "nobody")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	acc, err := s.CreateAccount(ctx, "admin", "hash")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := s.TouchLogin(ctx, acc.ID); err != nil {
		t.Fatalf("TouchLogin failed: %v", err)
	}
	got, err := s.GetAccountByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetAccountByUsername failed: %v", err)
	}
	if got.LastLoginAt == nil {
		t.Error("expected login timestamp to be set")
	}

	if err := s.TouchLogin(ctx, acc.ID+1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestListAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := s.CreateAccount(ctx, name, "hash"); err != nil {
			t.Fatalf("CreateAccount(%s) failed: %v", name, err)
		}
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(accounts))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if accounts[i].Username != want {
			t.Errorf("expected %s at index %d, got %s", want, i, accounts[i].Username)
		}
	}
}
