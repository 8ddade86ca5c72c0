package accounts

import (
	"database/sql"
	"fmt"

	"github.com/pkuhner/bartab/internal/repos/accounts"
)

// AdjustBalance applies a signed delta to the row. Relative updates keep
// two adjustments against the same row additive, so a self-transfer nets
// to zero instead of overwriting one side with the other.
func (r *accountsRepo) AdjustBalance(tx *sql.Tx, accountID uint64, delta int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2
		WHERE id = $1
	`, accountID, delta)
	if err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrAccountNotFound
	}

	return nil
}
