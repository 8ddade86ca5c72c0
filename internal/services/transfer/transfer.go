package transfer

import (
	"context"
	"errors"
)

var (
	ErrInvalidAmount      = errors.New("transfer amount must be positive")
	ErrInvalidParticipant = errors.New("transfer endpoint is not an account")
)

// Participant is the account capability a transfer endpoint must satisfy:
// a readable identity and a refreshable cached balance.
type Participant interface {
	AccountID() uint64
	DisplayName() string
	CurrentBalance() int64
	Refresh(ctx context.Context) error
}

// Transfer is one pending or committed money movement between two accounts.
// It carries no persisted state until Service.Commit succeeds; discarding an
// uncommitted Transfer leaves no trace anywhere.
type Transfer struct {
	src    Participant
	dst    Participant
	amount int64
	reason *string

	requestID *string

	committed bool
	id        int64
}

// New validates and builds an uncommitted transfer. The amount is in minor
// units and must be positive; an empty reason means no reason was given.
func New(src, dst Participant, amount int64, reason string) (*Transfer, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	if src == nil || dst == nil {
		return nil, ErrInvalidParticipant
	}

	t := &Transfer{
		src:    src,
		dst:    dst,
		amount: amount,
	}

	if reason != "" {
		t.reason = &reason
	}

	return t, nil
}

// SetRequestID tags the transfer with a client-supplied idempotency token.
// Replaying a token makes Commit fail with ledger.ErrDuplicateRequest
// instead of double-booking.
func (t *Transfer) SetRequestID(id string) {
	t.requestID = &id
}

func (t *Transfer) Src() Participant { return t.src }
func (t *Transfer) Dst() Participant { return t.dst }
func (t *Transfer) Amount() int64    { return t.amount }

// Reason returns the optional reason; nil when absent.
func (t *Transfer) Reason() *string { return t.reason }

func (t *Transfer) Committed() bool { return t.committed }

// ID returns the ledger entry id assigned at commit time. The second value
// is false until the transfer has been committed.
func (t *Transfer) ID() (int64, bool) {
	if !t.committed {
		return 0, false
	}

	return t.id, true
}
