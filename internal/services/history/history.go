// Package history reconstructs an account's transfer history from the
// ledger store and independently recomputes the balance the account should
// have, so drift between the cached balance and the recorded entries is
// detectable.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkuhner/bartab/internal/repos/accounts"
	"github.com/pkuhner/bartab/internal/repos/ledger"
)

// ErrConsistencyFault means the ledger store returned an entry that names
// the queried account on neither side. That breaks the query contract and
// aborts the view instead of being filtered away.
var ErrConsistencyFault = errors.New("ledger entry does not involve the queried account")

// Mode selects which direction of transfers a view covers. Only ModeBoth
// can carry a reconciliation verdict; a single direction cannot reproduce
// a balance.
type Mode int

const (
	ModeOutgoing Mode = -1
	ModeBoth     Mode = 0
	ModeIncoming Mode = 1
)

// Log is a read-only snapshot of one account's transfer history plus the
// outcome of reconciling it against the cached balance.
type Log struct {
	accountID uint64
	mode      Mode
	entries   []ledger.Entry
	names     map[uint64]string
	valid     bool
}

func (l *Log) AccountID() uint64 { return l.accountID }

// History returns the raw fetched entries in store order.
func (l *Log) History() []ledger.Entry { return l.entries }

// Valid reports whether the account resolved and, in ModeBoth, whether the
// recomputed balance matches the stored one. Check HasVerdict first: for
// directional views no verdict exists.
func (l *Log) Valid() bool { return l.valid }

// HasVerdict reports whether Valid carries a meaningful reconciliation
// result.
func (l *Log) HasVerdict() bool { return l.mode == ModeBoth }

// Service builds ledger views from the account and ledger stores.
type Service struct {
	accounts accounts.Accounts
	entries  ledger.Entries
}

func New(acc accounts.Accounts, ent ledger.Entries) *Service {
	return &Service{accounts: acc, entries: ent}
}

// Build fetches the history of accountID in the given mode, assuming the
// account started out with a zero balance.
func (s *Service) Build(ctx context.Context, accountID uint64, mode Mode) (*Log, error) {
	return s.BuildFrom(ctx, accountID, mode, 0)
}

// BuildFor is Build for callers holding an account object rather than a
// raw id.
func (s *Service) BuildFor(ctx context.Context, account interface{ AccountID() uint64 }, mode Mode) (*Log, error) {
	return s.Build(ctx, account.AccountID(), mode)
}

// BuildFrom is Build with an explicit baseline: the account's balance at
// creation, before any recorded transfer.
func (s *Service) BuildFrom(ctx context.Context, accountID uint64, mode Mode, baseline int64) (*Log, error) {
	entries, err := s.fetch(ctx, accountID, mode)
	if err != nil {
		return nil, err
	}

	log := &Log{
		accountID: accountID,
		mode:      mode,
		entries:   entries,
		valid:     true,
	}

	// Zero rows for an unknown account most likely means a typo'd id.
	// That is a legitimate outcome, not an error.
	if len(entries) == 0 {
		known, err := s.accounts.Resolve(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("resolve account %d: %w", accountID, err)
		}

		log.valid = known
	}

	err = s.resolveNames(ctx, log)
	if err != nil {
		return nil, err
	}

	if mode == ModeBoth && log.valid {
		expected, err := reconcile(entries, accountID, baseline)
		if err != nil {
			return nil, err
		}

		current, err := s.accounts.GetBalance(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("read balance of %d: %w", accountID, err)
		}

		log.valid = expected == current
	}

	return log, nil
}

func (s *Service) fetch(ctx context.Context, accountID uint64, mode Mode) ([]ledger.Entry, error) {
	switch {
	case mode < 0:
		return s.entries.BySender(ctx, accountID)
	case mode > 0:
		return s.entries.ByReceiver(ctx, accountID)
	default:
		return s.entries.ByParticipant(ctx, accountID)
	}
}

// resolveNames looks up every counterpart's display name up front so the
// rendering operations stay pure.
func (s *Service) resolveNames(ctx context.Context, log *Log) error {
	log.names = make(map[uint64]string)

	for _, e := range log.entries {
		partner, _, err := direction(e, log.accountID)
		if err != nil {
			return err
		}

		if _, ok := log.names[partner]; ok {
			continue
		}

		name, err := s.accounts.GetName(ctx, partner)
		if err != nil {
			return fmt.Errorf("resolve name of %d: %w", partner, err)
		}

		log.names[partner] = name
	}

	return nil
}

// direction classifies an entry relative to the target account, returning
// the counterpart id and whether money left the account.
func direction(e ledger.Entry, accountID uint64) (partner uint64, outgoing bool, err error) {
	switch {
	case e.Receiver == accountID:
		return e.Sender, false, nil
	case e.Sender == accountID:
		return e.Receiver, true, nil
	default:
		return 0, false, fmt.Errorf("entry %d: %w", e.ID, ErrConsistencyFault)
	}
}

// reconcile folds the signed amounts over the full history, starting from
// the baseline.
func reconcile(entries []ledger.Entry, accountID uint64, baseline int64) (int64, error) {
	total := baseline

	for _, e := range entries {
		_, outgoing, err := direction(e, accountID)
		if err != nil {
			return 0, err
		}

		// A self-transfer debits and credits the same row, netting out.
		if e.Sender == e.Receiver {
			continue
		}

		if outgoing {
			total -= e.Amount
		} else {
			total += e.Amount
		}
	}

	return total, nil
}
