package core

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAccountValidate(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr bool
	}{
		{"valid debit", Account{ID: uuid.New(), Name: "Checking", Type: Debit}, false},
		{"valid credit", Account{ID: uuid.New(), Name: "Card", Type: Credit}, false},
		{"blank name", Account{ID: uuid.New(), Name: "   ", Type: Cash}, true},
		{"unknown type", Account{ID: uuid.New(), Name: "Vault", Type: "Crypto"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{ID: uuid.New(), Name: "Food", Icon: "🍔"}).Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	err := (Category{ID: uuid.New(), Name: ""}).Validate()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("Validate() error = %v, want ErrValidation", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Value:     decimal.NewFromInt(-30),
		AccountID: uuid.New(),
		Name:      "Groceries",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
	}{
		{"zero timestamp", func(tx *Transaction) { tx.Timestamp = time.Time{} }},
		{"blank name", func(tx *Transaction) { tx.Name = " " }},
		{"missing account", func(tx *Transaction) { tx.AccountID = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			if err := tx.Validate(); !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestTransactionSign(t *testing.T) {
	expense := Transaction{Value: decimal.NewFromFloat(-0.01)}
	if !expense.IsExpense() || expense.IsIncome() {
		t.Errorf("negative value should be an expense")
	}
	zero := Transaction{Value: decimal.Zero}
	if zero.IsExpense() || !zero.IsIncome() {
		t.Errorf("zero value should count as income")
	}
	income := Transaction{Value: decimal.NewFromInt(100)}
	if !income.IsIncome() {
		t.Errorf("positive value should be income")
	}
}
