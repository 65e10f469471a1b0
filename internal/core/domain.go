package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Debit  AccountType = "Debit"
	Cash   AccountType = "Cash"
	Saving AccountType = "Saving"
	Credit AccountType = "Credit"
)

type (
	AccountType string

	// Account holds a running balance derived from its transactions.
	// Balance is written only by the ledger service.
	Account struct {
		ID      uuid.UUID
		Name    string
		Type    AccountType
		Balance decimal.Decimal
	}

	Category struct {
		ID   uuid.UUID
		Name string
		Icon string
	}

	// Transaction references its account and category by id, not by live
	// object; resolution happens at the storage layer.
	Transaction struct {
		ID         uuid.UUID
		Timestamp  time.Time
		Value      decimal.Decimal
		AccountID  uuid.UUID
		Name       string
		CategoryID *uuid.UUID
	}

	// LedgerEntry is a transaction joined with the display names the
	// query and summary layers group by. CategoryName is empty when the
	// transaction has no category.
	LedgerEntry struct {
		Transaction
		AccountName  string
		CategoryName string
	}
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrDuplicateName   = errors.New("name already exists")
	ErrNotFound        = errors.New("not found")
	ErrExternalService = errors.New("external service failure")
)

// Valid reports whether t is one of the four known account types.
func (t AccountType) Valid() bool {
	switch t {
	case Debit, Cash, Saving, Credit:
		return true
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: account name cannot be empty", ErrValidation)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrValidation, a.Type)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.Timestamp.IsZero() {
		return fmt.Errorf("%w: transaction timestamp cannot be zero", ErrValidation)
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: transaction name cannot be empty", ErrValidation)
	}
	if t.AccountID == uuid.Nil {
		return fmt.Errorf("%w: transaction requires an account", ErrValidation)
	}
	return nil
}

// IsExpense reports whether the transaction is an expense (value < 0).
// Everything else, including zero, counts as income.
func (t Transaction) IsExpense() bool {
	return t.Value.IsNegative()
}

func (t Transaction) IsIncome() bool {
	return !t.IsExpense()
}
