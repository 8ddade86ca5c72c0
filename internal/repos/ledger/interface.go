package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrDuplicateRequest = errors.New("duplicate transfer request")

// Entry is one immutable row of the transfers table. Registered is always
// a UTC instant.
type Entry struct {
	ID         int64
	Sender     uint64
	Receiver   uint64
	Amount     int64
	Reason     *string
	Registered time.Time
}

// NewEntry carries the fields of an entry about to be appended. RequestID
// is an optional client-supplied idempotency token; replaying one surfaces
// as ErrDuplicateRequest.
type NewEntry struct {
	Sender     uint64
	Receiver   uint64
	Amount     int64
	Reason     *string
	RequestID  *string
	Registered time.Time
}

// Entries is the append-and-query surface of the ledger store. Append must
// run inside the same atomic unit as the balance mutations; the queries are
// snapshot reads ordered by id (insertion order).
type Entries interface {
	Append(tx *sql.Tx, entry NewEntry) (int64, error)
	BySender(ctx context.Context, accountID uint64) ([]Entry, error)
	ByReceiver(ctx context.Context, accountID uint64) ([]Entry, error)
	ByParticipant(ctx context.Context, accountID uint64) ([]Entry, error)
}
