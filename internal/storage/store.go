package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/K1T3K1/msfin/internal/core"
)

// Store is the persistence boundary of the ledger. Implementations must
// make every mutation atomic: a rejected call leaves no durable trace.
type Store interface {
	CreateAccount(ctx context.Context, account core.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	// DeleteAccount removes the account and every transaction referencing it.
	DeleteAccount(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, category core.Category) error
	ListCategories(ctx context.Context) ([]core.Category, error)
	// DeleteCategory removes the category; referencing transactions keep
	// running with no category.
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	// CreateTransaction inserts the row and adds its value to the account
	// balance in one unit.
	CreateTransaction(ctx context.Context, tx core.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)
	// UpdateTransaction overwrites all fields and moves the value between
	// the old and new account balances in one unit.
	UpdateTransaction(ctx context.Context, tx core.Transaction) error
	// DeleteTransaction removes the row and subtracts its value from the
	// account balance in one unit.
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	GetEntry(ctx context.Context, id uuid.UUID) (core.LedgerEntry, error)
	ListEntries(ctx context.Context) ([]core.LedgerEntry, error)

	Close() error
}
