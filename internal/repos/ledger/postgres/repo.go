package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkuhner/bartab/internal/repos/ledger"
)

var _ ledger.Entries = (*entriesRepo)(nil)

type entriesRepo struct{ db *sql.DB }

func New(db *sql.DB) *entriesRepo {
	return &entriesRepo{db: db}
}

// scanEntries drains a transfers result set in store order.
func scanEntries(rows *sql.Rows) ([]ledger.Entry, error) {
	defer rows.Close()

	var entries []ledger.Entry

	for rows.Next() {
		var (
			e      ledger.Entry
			reason sql.NullString
		)

		err := rows.Scan(&e.ID, &e.Sender, &e.Receiver, &e.Amount, &reason, &e.Registered)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if reason.Valid {
			e.Reason = &reason.String
		}

		e.Registered = e.Registered.UTC()

		entries = append(entries, e)
	}

	err := rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	return entries, nil
}

func (r *entriesRepo) queryEntries(ctx context.Context, query string, args ...any) ([]ledger.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}

	return scanEntries(rows)
}
