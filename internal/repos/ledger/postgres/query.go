package ledger

import (
	"context"

	"github.com/pkuhner/bartab/internal/repos/ledger"
)

func (r *entriesRepo) BySender(ctx context.Context, accountID uint64) ([]ledger.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT id, sender, receiver, amount, reason, registered
		FROM transfers
		WHERE sender = $1
		ORDER BY id
	`, accountID)
}

func (r *entriesRepo) ByReceiver(ctx context.Context, accountID uint64) ([]ledger.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT id, sender, receiver, amount, reason, registered
		FROM transfers
		WHERE receiver = $1
		ORDER BY id
	`, accountID)
}

func (r *entriesRepo) ByParticipant(ctx context.Context, accountID uint64) ([]ledger.Entry, error) {
	return r.queryEntries(ctx, `
		SELECT id, sender, receiver, amount, reason, registered
		FROM transfers
		WHERE sender = $1 OR receiver = $1
		ORDER BY id
	`, accountID)
}
