package accounts

import (
	"context"
	"database/sql"
	"errors"
)

var ErrAccountNotFound = errors.New("account not found")

// Accounts is the account-store capability consumed by the transfer and
// history services. Methods taking *sql.Tx must run inside the atomic unit
// that mutates balances; the ctx-based reads run outside of it.
type Accounts interface {
	Exists(tx *sql.Tx, accountID uint64) error
	Resolve(ctx context.Context, accountID uint64) (bool, error)
	GetBalance(ctx context.Context, accountID uint64) (int64, error)
	GetName(ctx context.Context, accountID uint64) (string, error)
	Load(ctx context.Context, accountID uint64) (*Account, error)
	LockAndGetBalance(tx *sql.Tx, accountID uint64) (int64, error)
	AdjustBalance(tx *sql.Tx, accountID uint64, delta int64) error
}

// Account is a refreshable snapshot of one account row. It caches the
// balance as of the last Refresh; the cache is only trusted immediately
// before or after an atomic unit, never across one.
type Account struct {
	id      uint64
	name    string
	balance int64

	repo Accounts
}

// NewAccount binds a snapshot to the repo it was loaded from.
func NewAccount(repo Accounts, id uint64, name string, balance int64) *Account {
	return &Account{id: id, name: name, balance: balance, repo: repo}
}

func (a *Account) AccountID() uint64     { return a.id }
func (a *Account) DisplayName() string   { return a.name }
func (a *Account) CurrentBalance() int64 { return a.balance }

// Refresh re-reads the cached balance from the store.
func (a *Account) Refresh(ctx context.Context) error {
	balance, err := a.repo.GetBalance(ctx, a.id)
	if err != nil {
		return err
	}

	a.balance = balance

	return nil
}
