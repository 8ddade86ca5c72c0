package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pkuhner/bartab/internal/repos/accounts"
)

func (r *accountsRepo) GetName(ctx context.Context, accountID uint64) (string, error) {
	var name string

	err := r.db.QueryRowContext(ctx, `
		SELECT name
		FROM accounts
		WHERE id = $1
	`, accountID).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", accounts.ErrAccountNotFound
		}

		return "", fmt.Errorf("get name: %w", err)
	}

	return name, nil
}
