package history

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/pkuhner/bartab/internal/repos/accounts"
	"github.com/pkuhner/bartab/internal/repos/ledger"
)

type fakeAccounts struct {
	balances map[uint64]int64
	names    map[uint64]string
}

var _ accounts.Accounts = (*fakeAccounts)(nil)

func (f *fakeAccounts) Exists(*sql.Tx, uint64) error { return nil }

func (f *fakeAccounts) Resolve(_ context.Context, id uint64) (bool, error) {
	_, ok := f.balances[id]
	return ok, nil
}

func (f *fakeAccounts) GetBalance(_ context.Context, id uint64) (int64, error) {
	bal, ok := f.balances[id]
	if !ok {
		return 0, accounts.ErrAccountNotFound
	}

	return bal, nil
}

func (f *fakeAccounts) GetName(_ context.Context, id uint64) (string, error) {
	name, ok := f.names[id]
	if !ok {
		return "", accounts.ErrAccountNotFound
	}

	return name, nil
}

func (f *fakeAccounts) Load(context.Context, uint64) (*accounts.Account, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAccounts) LockAndGetBalance(*sql.Tx, uint64) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeAccounts) AdjustBalance(*sql.Tx, uint64, int64) error {
	return errors.New("not implemented")
}

type fakeEntries struct{ entries []ledger.Entry }

var _ ledger.Entries = (*fakeEntries)(nil)

func (f *fakeEntries) Append(*sql.Tx, ledger.NewEntry) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *fakeEntries) BySender(_ context.Context, id uint64) ([]ledger.Entry, error) {
	return f.filter(func(e ledger.Entry) bool { return e.Sender == id }), nil
}

func (f *fakeEntries) ByReceiver(_ context.Context, id uint64) ([]ledger.Entry, error) {
	return f.filter(func(e ledger.Entry) bool { return e.Receiver == id }), nil
}

func (f *fakeEntries) ByParticipant(_ context.Context, id uint64) ([]ledger.Entry, error) {
	return f.filter(func(e ledger.Entry) bool { return e.Sender == id || e.Receiver == id }), nil
}

func (f *fakeEntries) filter(keep func(ledger.Entry) bool) []ledger.Entry {
	var out []ledger.Entry
	for _, e := range f.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

var testInstant = time.Date(2024, 4, 2, 12, 30, 0, 0, time.UTC)

// twoSidedHistory: account 10 received 500 from 20 and sent 200 to 30.
func twoSidedHistory() []ledger.Entry {
	return []ledger.Entry{
		{ID: 1, Sender: 20, Receiver: 10, Amount: 500, Registered: testInstant},
		{ID: 2, Sender: 10, Receiver: 30, Amount: 200, Registered: testInstant.Add(time.Minute)},
	}
}

func testService(balances map[uint64]int64, entries []ledger.Entry) *Service {
	return New(
		&fakeAccounts{
			balances: balances,
			names:    map[uint64]string{10: "alice", 20: "bob", 30: "carol"},
		},
		&fakeEntries{entries: entries},
	)
}

func TestBuildReconcilesFullHistory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		stored    int64
		wantValid bool
	}{
		{name: "matching_balance", stored: 300, wantValid: true},
		{name: "drifted_balance", stored: 250, wantValid: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := testService(map[uint64]int64{10: tt.stored}, twoSidedHistory())

			log, err := s.Build(t.Context(), 10, ModeBoth)
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			if !log.HasVerdict() {
				t.Fatal("full view must carry a verdict")
			}

			if log.Valid() != tt.wantValid {
				t.Errorf("valid: want %v, got %v", tt.wantValid, log.Valid())
			}
		})
	}
}

func TestBuildFromBaseline(t *testing.T) {
	t.Parallel()

	// Account opened with 100 in credit before the ledger started.
	s := testService(map[uint64]int64{10: 400}, twoSidedHistory())

	log, err := s.BuildFrom(t.Context(), 10, ModeBoth, 100)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !log.Valid() {
		t.Error("baseline 100 + history 300 should match stored 400")
	}
}

func TestBuildEmptyKnownAccount(t *testing.T) {
	t.Parallel()

	s := testService(map[uint64]int64{10: 0}, nil)

	log, err := s.Build(t.Context(), 10, ModeBoth)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !log.Valid() {
		t.Error("known account with no history must be valid")
	}

	text, err := log.Format(TimezoneUTC)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	if text != "" {
		t.Errorf("empty history must render empty, got %q", text)
	}
}

func TestBuildEmptyUnknownAccount(t *testing.T) {
	t.Parallel()

	s := testService(map[uint64]int64{10: 0}, nil)

	log, err := s.Build(t.Context(), 99, ModeBoth)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if log.Valid() {
		t.Error("unknown account with no history must be invalid")
	}
}

func TestBuildDirectionalFiltering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mode        Mode
		wantIDs     []int64
		wantVerdict bool
	}{
		{name: "outgoing_only", mode: ModeOutgoing, wantIDs: []int64{2}},
		{name: "incoming_only", mode: ModeIncoming, wantIDs: []int64{1}},
		{name: "both", mode: ModeBoth, wantIDs: []int64{1, 2}, wantVerdict: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := testService(map[uint64]int64{10: 300}, twoSidedHistory())

			log, err := s.Build(t.Context(), 10, tt.mode)
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			got := log.History()
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("want %d entries, got %d", len(tt.wantIDs), len(got))
			}

			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("entry %d: want id %d, got %d", i, id, got[i].ID)
				}
			}

			if log.HasVerdict() != tt.wantVerdict {
				t.Errorf("verdict: want %v, got %v", tt.wantVerdict, log.HasVerdict())
			}

			if tt.wantVerdict && !log.Valid() {
				t.Error("full reconciliation should pass")
			}
		})
	}
}

func TestBuildForUnwrapsAccount(t *testing.T) {
	t.Parallel()

	s := testService(map[uint64]int64{10: 300}, twoSidedHistory())

	log, err := s.BuildFor(t.Context(), idOnly(10), ModeBoth)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if log.AccountID() != 10 {
		t.Errorf("account id: got %d", log.AccountID())
	}
}

type idOnly uint64

func (i idOnly) AccountID() uint64 { return uint64(i) }

func TestBuildAbortsOnForeignEntry(t *testing.T) {
	t.Parallel()

	// The store returning an entry between two other accounts breaks the
	// query contract.
	broken := append(twoSidedHistory(),
		ledger.Entry{ID: 3, Sender: 5, Receiver: 6, Amount: 100, Registered: testInstant})

	s := testService(map[uint64]int64{10: 300}, broken)

	_, err := s.Build(t.Context(), 10, ModeBoth)
	if !errors.Is(err, ErrConsistencyFault) {
		t.Fatalf("want ErrConsistencyFault, got %v", err)
	}
}

func TestSelfTransferFoldsToZero(t *testing.T) {
	t.Parallel()

	entries := append(twoSidedHistory(),
		ledger.Entry{ID: 3, Sender: 10, Receiver: 10, Amount: 999, Registered: testInstant})

	s := testService(map[uint64]int64{10: 300}, entries)

	log, err := s.Build(t.Context(), 10, ModeBoth)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if !log.Valid() {
		t.Error("self-transfer must not affect the reconciled balance")
	}
}
