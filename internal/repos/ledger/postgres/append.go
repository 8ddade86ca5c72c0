package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkuhner/bartab/internal/repos/ledger"
)

func (r *entriesRepo) Append(tx *sql.Tx, entry ledger.NewEntry) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO transfers (sender, receiver, amount, reason, request_id, registered)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, entry.Sender, entry.Receiver, entry.Amount, entry.Reason, entry.RequestID, entry.Registered).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on request_id
				return 0, ledger.ErrDuplicateRequest
			}
		}

		return 0, fmt.Errorf("append entry: %w", err)
	}

	return id, nil
}
