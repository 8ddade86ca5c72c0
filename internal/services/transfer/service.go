package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkuhner/bartab/internal/events"
	"github.com/pkuhner/bartab/internal/infra/pgutils"
	"github.com/pkuhner/bartab/internal/repos/accounts"
	"github.com/pkuhner/bartab/internal/repos/ledger"
)

// Service executes transfer commits against the account and ledger stores.
// It performs no locking of its own; isolation comes entirely from the
// store's transaction primitive.
type Service struct {
	accounts  accounts.Accounts
	entries   ledger.Entries
	publisher events.Publisher

	runTx func(ctx context.Context, fn func(*sql.Tx) error) error
	now   func() time.Time
}

func NewService(db *sql.DB, acc accounts.Accounts, ent ledger.Entries, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}

	return &Service{
		accounts:  acc,
		entries:   ent,
		publisher: pub,
		runTx: func(ctx context.Context, fn func(*sql.Tx) error) error {
			return pgutils.WithTx(ctx, db, fn)
		},
		now: time.Now,
	}
}

// Commit runs the full flow in a single DB transaction:
//
// 1) Lock both account rows (FOR UPDATE, ascending id order).
// 2) Append the ledger entry (RETURNING id).
// 3) Apply -amount to the source and +amount to the destination.
//
// A second Commit on an already-committed transfer is a no-op. On any
// failure nothing is persisted and the transfer stays retryable.
func (s *Service) Commit(ctx context.Context, t *Transfer) error {
	if t.committed {
		return nil
	}

	// Cannot happen through New; a non-positive amount here means the
	// Transfer was corrupted after construction.
	if t.amount <= 0 {
		return fmt.Errorf("commit: non-positive amount %d on constructed transfer", t.amount)
	}

	var entryID int64

	registered := s.now().UTC().Truncate(time.Microsecond)

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		err := s.lockParticipants(tx, t)
		if err != nil {
			return err
		}

		entryID, err = s.entries.Append(tx, ledger.NewEntry{
			Sender:     t.src.AccountID(),
			Receiver:   t.dst.AccountID(),
			Amount:     t.amount,
			Reason:     t.reason,
			RequestID:  t.requestID,
			Registered: registered,
		})
		if err != nil {
			return fmt.Errorf("append entry: %w", err)
		}

		err = s.accounts.AdjustBalance(tx, t.src.AccountID(), -t.amount)
		if err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}

		err = s.accounts.AdjustBalance(tx, t.dst.AccountID(), t.amount)
		if err != nil {
			return fmt.Errorf("credit receiver: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("commit transfer: %w", err)
	}

	t.id = entryID
	t.committed = true

	s.refreshParticipants(ctx, t)

	s.publish(t, registered)

	return nil
}

// lockParticipants takes the row locks that serialize concurrent commits
// touching the same accounts. Locks are acquired in ascending id order so
// two opposite-direction transfers cannot deadlock; a self-transfer locks
// its single row once.
func (s *Service) lockParticipants(tx *sql.Tx, t *Transfer) error {
	first, second := t.src.AccountID(), t.dst.AccountID()
	if first > second {
		first, second = second, first
	}

	_, err := s.accounts.LockAndGetBalance(tx, first)
	if err != nil {
		return fmt.Errorf("lock account %d: %w", first, err)
	}

	if second == first {
		return nil
	}

	_, err = s.accounts.LockAndGetBalance(tx, second)
	if err != nil {
		return fmt.Errorf("lock account %d: %w", second, err)
	}

	return nil
}

// refreshParticipants re-reads both cached balances after the atomic unit
// committed. At this point the transfer is a durable fact; a failed refresh
// only leaves a stale in-memory snapshot, so it is logged rather than
// surfaced as a commit failure.
func (s *Service) refreshParticipants(ctx context.Context, t *Transfer) {
	err := t.src.Refresh(ctx)
	if err != nil {
		slog.Warn("refresh sender after commit", "account", t.src.AccountID(), "error", err)
	}

	err = t.dst.Refresh(ctx)
	if err != nil {
		slog.Warn("refresh receiver after commit", "account", t.dst.AccountID(), "error", err)
	}
}

func (s *Service) publish(t *Transfer, registered time.Time) {
	err := s.publisher.Publish(events.TopicTransferCommitted, events.TransferCommitted{
		TransferID: t.id,
		Sender:     t.src.AccountID(),
		Receiver:   t.dst.AccountID(),
		Amount:     t.amount,
		Reason:     t.reason,
		Registered: registered,
	})
	if err != nil {
		slog.Warn("publish transfer event", "transfer", t.id, "error", err)
	}
}
