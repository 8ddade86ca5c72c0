package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pkuhner/bartab/internal/repos/accounts"
)

// Load reads a full account snapshot bound to this repo, suitable as a
// transfer participant.
func (r *accountsRepo) Load(ctx context.Context, accountID uint64) (*accounts.Account, error) {
	var (
		name    string
		balance int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT name, balance
		FROM accounts
		WHERE id = $1
	`, accountID).Scan(&name, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("load account: %w", err)
	}

	return accounts.NewAccount(r, accountID, name, balance), nil
}
