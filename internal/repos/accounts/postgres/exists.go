package accounts

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkuhner/bartab/internal/repos/accounts"
)

func (r *accountsRepo) Exists(tx *sql.Tx, accountID uint64) error {
	var exists bool

	err := tx.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}

	if !exists {
		return accounts.ErrAccountNotFound
	}

	return nil
}

// Resolve is the lock-free variant used by the history service to decide
// whether an empty history belongs to a real account.
func (r *accountsRepo) Resolve(ctx context.Context, accountID uint64) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)
	`, accountID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("resolve account: %w", err)
	}

	return exists, nil
}
