package accounts

import (
	"errors"
	"testing"

	"github.com/pkuhner/bartab/internal/infra/pgtestutil"
	"github.com/pkuhner/bartab/internal/repos/accounts"
)

func TestAccounts_Exists(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := db.Exec(`INSERT INTO accounts (id, name, balance) VALUES (1, 'alice', 0)`)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	repo := New(db)

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	err = repo.Exists(tx, 1)
	if err != nil {
		t.Fatalf("existing account: %v", err)
	}

	err = repo.Exists(tx, 404)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("missing account: want ErrAccountNotFound, got %v", err)
	}
}

func TestAccounts_Resolve(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	_, err := db.Exec(`INSERT INTO accounts (id, name, balance) VALUES (1, 'alice', 0)`)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	repo := New(db)

	known, err := repo.Resolve(t.Context(), 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if !known {
		t.Error("seeded account should resolve")
	}

	known, err = repo.Resolve(t.Context(), 404)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if known {
		t.Error("missing account should not resolve")
	}
}
